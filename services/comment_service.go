package services

import (
	"context"
	"fmt"

	"github.com/jkemta/soutenance-api/model"
	"github.com/jkemta/soutenance-api/utils/authz"
	"gorm.io/gorm"
)

// CommentService manages dossier remarks
type CommentService struct {
	db *gorm.DB
}

// NewCommentService creates a new comment service
func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{db: db}
}

// CreateCommentRequest carries a new remark
type CreateCommentRequest struct {
	DossierID  uint
	AuteurID   uint
	Contenu    string
	EstInterne bool
}

// CreateComment adds a remark on a dossier the actor may see. Candidates
// cannot mark comments internal.
func (s *CommentService) CreateComment(ctx context.Context, actor authz.Actor, req CreateCommentRequest) (*model.Commentaire, error) {
	var visible int64
	err := s.db.WithContext(ctx).Model(&model.Dossier{}).
		Scopes(authz.ScopeDossiers(actor)).
		Where("dossiers.id = ?", req.DossierID).
		Count(&visible).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check dossier: %w", err)
	}
	if visible == 0 {
		return nil, ErrNotFound
	}

	estInterne := req.EstInterne
	if actor.IsCandidat() {
		estInterne = false
	}

	comment := &model.Commentaire{
		DossierID:  req.DossierID,
		AuteurID:   req.AuteurID,
		Contenu:    req.Contenu,
		EstInterne: estInterne,
	}
	if err := s.db.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	if err := s.db.WithContext(ctx).Preload("Auteur").First(comment, comment.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload comment: %w", err)
	}
	return comment, nil
}

// ListComments lists a dossier's remarks, hiding internal ones from
// candidates.
func (s *CommentService) ListComments(ctx context.Context, actor authz.Actor, dossierID uint) ([]model.Commentaire, error) {
	var visible int64
	err := s.db.WithContext(ctx).Model(&model.Dossier{}).
		Scopes(authz.ScopeDossiers(actor)).
		Where("dossiers.id = ?", dossierID).
		Count(&visible).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check dossier: %w", err)
	}
	if visible == 0 {
		return nil, ErrNotFound
	}

	query := s.db.WithContext(ctx).Where("dossier_id = ?", dossierID)
	if !authz.CanSeeInternalComments(actor) {
		query = query.Where("est_interne = ?", false)
	}

	var comments []model.Commentaire
	err = query.Preload("Auteur").Order("created_at ASC").Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch comments: %w", err)
	}
	return comments, nil
}

// DeleteComment removes a remark. Authors may delete their own; admins any.
func (s *CommentService) DeleteComment(ctx context.Context, actor authz.Actor, commentID uint) error {
	var comment model.Commentaire
	err := s.db.WithContext(ctx).First(&comment, commentID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("failed to fetch comment: %w", err)
	}

	if !actor.IsAdmin() && comment.AuteurID != actor.UserID {
		return ErrForbidden
	}

	if err := s.db.WithContext(ctx).Delete(&comment).Error; err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}
