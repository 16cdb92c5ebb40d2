package model

import (
	"testing"
	"time"
)

func TestDeriveStatut(t *testing.T) {
	ouverture := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	cloture := time.Date(2026, 6, 30, 18, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		statut SessionStatut
		now    time.Time
		want   SessionStatut
	}{
		{"before opening stays open", SessionOuvert, ouverture.Add(-24 * time.Hour), SessionOuvert},
		{"at opening becomes running", SessionOuvert, ouverture, SessionEnCours},
		{"inside window becomes running", SessionOuvert, ouverture.Add(48 * time.Hour), SessionEnCours},
		{"running stays running inside window", SessionEnCours, cloture.Add(-time.Hour), SessionEnCours},
		{"past closing becomes finished", SessionEnCours, cloture.Add(time.Minute), SessionTermine},
		{"open past closing becomes finished", SessionOuvert, cloture.Add(time.Hour), SessionTermine},
		{"manually closed is untouched", SessionFerme, ouverture.Add(time.Hour), SessionFerme},
		{"manually closed past window is untouched", SessionFerme, cloture.Add(time.Hour), SessionFerme},
		{"finished is untouched", SessionTermine, ouverture, SessionTermine},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := SessionSoutenance{
				DateOuverture: ouverture,
				DateCloture:   cloture,
				Statut:        tc.statut,
			}
			got := s.DeriveStatut(tc.now)
			if got != tc.want {
				t.Errorf("DeriveStatut = %q, want %q", got, tc.want)
			}

			// Idempotence: applying the derived status and deriving again
			// with the same clock must not change it.
			s.Statut = got
			if again := s.DeriveStatut(tc.now); again != got {
				t.Errorf("second DeriveStatut = %q, want %q", again, got)
			}
		})
	}
}
