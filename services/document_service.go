package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"

	"github.com/jkemta/soutenance-api/model"
	"github.com/jkemta/soutenance-api/services/storage"
	"github.com/jkemta/soutenance-api/utils/authz"
	"github.com/jkemta/soutenance-api/utils/pdfvalidation"
	"gorm.io/gorm"
)

// DocumentService manages dossier attachments and their stored files
type DocumentService struct {
	db      *gorm.DB
	storage *storage.SpacesClient
}

// NewDocumentService creates a new document service
func NewDocumentService(db *gorm.DB, spaces *storage.SpacesClient) *DocumentService {
	return &DocumentService{db: db, storage: spaces}
}

// UploadDocumentRequest carries an upload
type UploadDocumentRequest struct {
	DossierID      uint
	Nom            string
	TypePiece      model.TypePiece
	EstObligatoire bool
	File           *multipart.FileHeader
}

// UploadDocument validates and stores a file, then records it on the
// dossier. Thesis manuscripts must be PDFs within the page limit. If the
// database insert fails after the upload, the stored object is removed so no
// orphan survives.
func (s *DocumentService) UploadDocument(ctx context.Context, actor authz.Actor, req UploadDocumentRequest) (*model.Document, error) {
	if s.storage == nil {
		return nil, fmt.Errorf("object storage is not configured")
	}
	if !req.TypePiece.Valid() {
		return nil, fmt.Errorf("%w: unknown document type %q", ErrInvalidState, req.TypePiece)
	}

	var dossier model.Dossier
	err := s.db.WithContext(ctx).
		Scopes(authz.ScopeDossiers(actor)).
		Where("dossiers.id = ?", req.DossierID).
		First(&dossier).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch dossier: %w", err)
	}

	if actor.IsCandidat() && dossier.Statut != model.DossierBrouillon && dossier.Statut != model.DossierDepose {
		return nil, fmt.Errorf("%w: dossier can no longer receive documents", ErrInvalidState)
	}

	pageCount := 0
	if req.TypePiece == model.PieceMemoire {
		result, err := pdfvalidation.ValidatePDFFile(req.File, pdfvalidation.MemoireLimits)
		if err != nil {
			return nil, fmt.Errorf("failed to validate PDF: %w", err)
		}
		if !result.Valid {
			return nil, fmt.Errorf("%w: %s", ErrInvalidState, result.Error)
		}
		pageCount = result.PageCount
	}

	file, err := req.File.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}

	key := storage.GenerateKey(fmt.Sprintf("dossiers/%d", dossier.ID), req.File.Filename)
	contentType := storage.GetContentType(req.File.Filename)

	fileURL, err := s.storage.UploadFile(ctx, key, bytes.NewReader(content), contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	document := &model.Document{
		DossierID:      dossier.ID,
		Nom:            req.Nom,
		StorageKey:     key,
		FileURL:        fileURL,
		TypePiece:      req.TypePiece,
		EstObligatoire: req.EstObligatoire,
		FileSize:       req.File.Size,
		PageCount:      pageCount,
	}
	if document.Nom == "" {
		document.Nom = req.File.Filename
	}

	if err := s.db.WithContext(ctx).Create(document).Error; err != nil {
		if delErr := s.storage.DeleteFile(ctx, key); delErr != nil {
			log.Printf("Failed to clean up stored file %s: %v", key, delErr)
		}
		return nil, fmt.Errorf("failed to record document: %w", err)
	}

	return document, nil
}

// ListDocuments lists the documents of a dossier visible to the actor
func (s *DocumentService) ListDocuments(ctx context.Context, actor authz.Actor, dossierID uint) ([]model.Document, error) {
	var dossier model.Dossier
	err := s.db.WithContext(ctx).
		Scopes(authz.ScopeDossiers(actor)).
		Where("dossiers.id = ?", dossierID).
		First(&dossier).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch dossier: %w", err)
	}

	var documents []model.Document
	err = s.db.WithContext(ctx).
		Where("dossier_id = ?", dossierID).
		Order("created_at ASC").
		Find(&documents).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch documents: %w", err)
	}
	return documents, nil
}

// GetDocument loads a single document visible to the actor
func (s *DocumentService) GetDocument(ctx context.Context, actor authz.Actor, documentID uint) (*model.Document, error) {
	var document model.Document
	err := s.db.WithContext(ctx).
		Joins("JOIN dossiers ON dossiers.id = documents.dossier_id").
		Scopes(authz.ScopeDossiers(actor)).
		Where("documents.id = ?", documentID).
		First(&document).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}
	return &document, nil
}

// DeleteDocument removes a document record and its stored file
func (s *DocumentService) DeleteDocument(ctx context.Context, actor authz.Actor, documentID uint) error {
	document, err := s.GetDocument(ctx, actor, documentID)
	if err != nil {
		return err
	}

	if actor.IsCandidat() {
		var dossier model.Dossier
		if err := s.db.WithContext(ctx).First(&dossier, document.DossierID).Error; err != nil {
			return fmt.Errorf("failed to fetch dossier: %w", err)
		}
		if dossier.Statut != model.DossierBrouillon && dossier.Statut != model.DossierDepose {
			return fmt.Errorf("%w: dossier documents are frozen", ErrInvalidState)
		}
	}

	if err := s.db.WithContext(ctx).Delete(document).Error; err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	if document.StorageKey != "" && s.storage != nil {
		if err := s.storage.DeleteFile(ctx, document.StorageKey); err != nil {
			log.Printf("Failed to delete stored file %s: %v", document.StorageKey, err)
		}
	}

	return nil
}
