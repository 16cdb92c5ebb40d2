package model

import (
	"testing"
	"time"
)

func TestNotificationMarkRead(t *testing.T) {
	var n Notification
	first := time.Date(2026, 5, 2, 9, 30, 0, 0, time.UTC)

	n.MarkRead(first)
	if !n.EstLue {
		t.Fatal("EstLue not set")
	}
	if n.DateLecture == nil || !n.DateLecture.Equal(first) {
		t.Fatalf("DateLecture = %v, want %v", n.DateLecture, first)
	}

	// Marking again keeps the original read time
	n.MarkRead(first.Add(time.Hour))
	if !n.DateLecture.Equal(first) {
		t.Errorf("DateLecture = %v, want original %v", n.DateLecture, first)
	}
}
