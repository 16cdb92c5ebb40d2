package services

import (
	"context"
	"testing"

	"github.com/jkemta/soutenance-api/model"
)

func TestDeleteAllNotifications(t *testing.T) {
	db := newTestDB(t)
	svc := NewNotificationService(db)
	ctx := context.Background()

	userA := seedUser(t, db, "a@univ.cm", model.RoleCandidat)
	userB := seedUser(t, db, "b@univ.cm", model.RoleCandidat)

	for i := 0; i < 3; i++ {
		_, err := svc.CreateNotification(ctx, CreateNotificationRequest{
			UserID:  userA.ID,
			Type:    model.NotifSysteme,
			Titre:   "Info",
			Message: "Message de test",
		})
		if err != nil {
			t.Fatalf("CreateNotification: %v", err)
		}
	}
	if _, err := svc.CreateNotification(ctx, CreateNotificationRequest{
		UserID:  userB.ID,
		Type:    model.NotifSysteme,
		Titre:   "Info",
		Message: "Message de test",
	}); err != nil {
		t.Fatalf("CreateNotification: %v", err)
	}

	deleted, err := svc.DeleteAllNotifications(ctx, userA.ID)
	if err != nil {
		t.Fatalf("DeleteAllNotifications: %v", err)
	}
	if deleted != 3 {
		t.Errorf("deleted = %d, want 3", deleted)
	}

	_, total, err := svc.GetNotificationsByUser(ctx, ListNotificationsOptions{UserID: userA.ID})
	if err != nil {
		t.Fatal(err)
	}
	if total != 0 {
		t.Errorf("remaining notifications for user A = %d, want 0", total)
	}

	_, total, err = svc.GetNotificationsByUser(ctx, ListNotificationsOptions{UserID: userB.ID})
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 {
		t.Errorf("notifications for user B = %d, want 1", total)
	}
}
