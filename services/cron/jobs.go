package cron

import (
	"fmt"
	"log"
	"time"

	"github.com/jkemta/soutenance-api/model"
)

// SweepSessionStatuses moves sessions along their lifecycle according to the
// opening and closing dates. Runs every 15 minutes so a session whose window
// has opened or closed does not stay stale between requests.
func (m *CronManager) SweepSessionStatuses() {
	jobName := "sweep_session_statuses"
	now := time.Now()

	var sessions []model.SessionSoutenance
	err := m.db.Where("statut IN ?", []model.SessionStatut{
		model.SessionOuvert,
		model.SessionEnCours,
	}).Find(&sessions).Error

	if err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to query sessions: %w", err))
		return
	}

	updated := 0
	for _, session := range sessions {
		derived := session.DeriveStatut(now)
		if derived == session.Statut {
			continue
		}

		if err := m.db.Model(&session).Update("statut", derived).Error; err != nil {
			log.Printf("[CRON] Failed to update session %d: %v", session.ID, err)
			continue
		}
		updated++
	}

	m.logJobComplete(jobName, fmt.Sprintf("Checked %d sessions, updated %d", len(sessions), updated))
}

// CleanupOldData removes old data to keep the database clean
// Runs daily at 2 AM
func (m *CronManager) CleanupOldData() {
	jobName := "cleanup_old_data"

	totalCleaned := 0

	// 1. Clean up expired JWT tokens from blacklist
	result := m.db.Where("expires_at < ?", time.Now()).Delete(&model.JWTTokenBlacklist{})
	if result.Error != nil {
		log.Printf("[CRON] Failed to clean token blacklist: %v", result.Error)
	} else {
		log.Printf("[CRON] Cleaned %d expired tokens", result.RowsAffected)
		totalCleaned += int(result.RowsAffected)
	}

	// 2. Clean up read notifications older than 90 days
	cutoffNotifs := time.Now().Add(-90 * 24 * time.Hour)
	result = m.db.Where("est_lue = ? AND created_at < ?", true, cutoffNotifs).
		Delete(&model.Notification{})
	if result.Error != nil {
		log.Printf("[CRON] Failed to clean notifications: %v", result.Error)
	} else {
		log.Printf("[CRON] Cleaned %d old notifications", result.RowsAffected)
		totalCleaned += int(result.RowsAffected)
	}

	// 3. Clean up old cron job logs (keep only last 90 days)
	cutoffLogs := time.Now().Add(-90 * 24 * time.Hour)
	result = m.db.Where("created_at < ?", cutoffLogs).Delete(&model.CronJobLog{})
	if result.Error != nil {
		log.Printf("[CRON] Failed to clean cron logs: %v", result.Error)
	} else {
		log.Printf("[CRON] Cleaned %d old cron logs", result.RowsAffected)
		totalCleaned += int(result.RowsAffected)
	}

	m.logJobComplete(jobName, fmt.Sprintf("Cleaned up %d total records", totalCleaned))
}

// SendSoutenanceReminders notifies candidates whose defense is scheduled
// within the next 48 hours. Runs daily at 7 AM; a reminder is sent at most
// once per soutenance.
func (m *CronManager) SendSoutenanceReminders() {
	jobName := "soutenance_reminders"
	now := time.Now()
	horizon := now.Add(48 * time.Hour)

	var soutenances []model.Soutenance
	err := m.db.Preload("Dossier").Preload("Dossier.Candidat").Preload("Salle").
		Where("statut = ? AND date_heure IS NOT NULL AND date_heure BETWEEN ? AND ?",
			model.SoutenancePlanifiee, now, horizon).
		Find(&soutenances).Error

	if err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to query soutenances: %w", err))
		return
	}

	sent := 0
	for _, s := range soutenances {
		userID := s.Dossier.Candidat.UserID
		if userID == 0 {
			continue
		}

		// Skip if a reminder already exists for this soutenance
		var count int64
		m.db.Model(&model.Notification{}).
			Where("user_id = ? AND soutenance_id = ? AND type = ?",
				userID, s.ID, model.NotifSoutenancePlanifiee).
			Where("titre = ?", "Rappel de soutenance").
			Count(&count)
		if count > 0 {
			continue
		}

		salle := "salle à confirmer"
		if s.Salle != nil {
			salle = s.Salle.Nom
		}

		notif := model.Notification{
			UserID:       userID,
			Type:         model.NotifSoutenancePlanifiee,
			Titre:        "Rappel de soutenance",
			Message:      fmt.Sprintf("Votre soutenance est prévue le %s (%s).", s.DateHeure.Format("02/01/2006 15:04"), salle),
			SoutenanceID: &s.ID,
		}
		if err := m.db.Create(&notif).Error; err != nil {
			log.Printf("[CRON] Failed to create reminder for soutenance %d: %v", s.ID, err)
			continue
		}
		sent++
	}

	m.logJobComplete(jobName, fmt.Sprintf("Sent %d reminders for %d upcoming soutenances", sent, len(soutenances)))
}
