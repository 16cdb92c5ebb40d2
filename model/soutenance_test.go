package model

import "testing"

func TestMentionFromScore(t *testing.T) {
	cases := []struct {
		score float64
		want  Mention
	}{
		{9.99, MentionAucune},
		{10.00, MentionPassable},
		{11.99, MentionPassable},
		{12.00, MentionAssezBien},
		{13.99, MentionAssezBien},
		{14.00, MentionBien},
		{15.99, MentionBien},
		{16.00, MentionTresBien},
		{17.99, MentionTresBien},
		{18.00, MentionExcellent},
		{20.00, MentionExcellent},
		{0, MentionAucune},
	}

	for _, tc := range cases {
		if got := MentionFromScore(tc.score); got != tc.want {
			t.Errorf("MentionFromScore(%.2f) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestEvaluationAverage(t *testing.T) {
	cases := []struct {
		memoire, presentation, reponses float64
		want                            float64
	}{
		{10, 10, 10, 10},
		{20, 20, 20, 20},
		{0, 0, 0, 0},
		// 0.4*15 + 0.3*12 + 0.3*14 = 6 + 3.6 + 4.2 = 13.8
		{15, 12, 14, 13.8},
		// 0.4*13 + 0.3*11 + 0.3*12 = 5.2 + 3.3 + 3.6 = 12.1
		{13, 11, 12, 12.1},
		// rounding: 0.4*10.11 + 0.3*10.11 + 0.3*10.11 = 10.11
		{10.11, 10.11, 10.11, 10.11},
	}

	for _, tc := range cases {
		got := EvaluationAverage(tc.memoire, tc.presentation, tc.reponses)
		if got != tc.want {
			t.Errorf("EvaluationAverage(%.2f, %.2f, %.2f) = %v, want %v",
				tc.memoire, tc.presentation, tc.reponses, got, tc.want)
		}
	}
}

func TestEvaluationComputeMoyenne(t *testing.T) {
	e := Evaluation{NoteMemoire: 16, NotePresentation: 14, NoteReponses: 15}
	e.ComputeMoyenne()
	// 0.4*16 + 0.3*14 + 0.3*15 = 6.4 + 4.2 + 4.5 = 15.1
	if e.Moyenne != 15.1 {
		t.Errorf("Moyenne = %v, want 15.1", e.Moyenne)
	}
}

func TestSetNoteFinale(t *testing.T) {
	var s Soutenance
	s.SetNoteFinale(16.5)

	if s.NoteFinale == nil || *s.NoteFinale != 16.5 {
		t.Fatalf("NoteFinale = %v, want 16.5", s.NoteFinale)
	}
	if s.Mention != MentionTresBien {
		t.Errorf("Mention = %q, want %q", s.Mention, MentionTresBien)
	}

	s.SetNoteFinale(8)
	if s.Mention != MentionAucune {
		t.Errorf("Mention after failing score = %q, want empty", s.Mention)
	}
}
