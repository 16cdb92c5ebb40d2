package validation

import (
	"strings"
	"testing"
)

func TestValidateMatricule(t *testing.T) {
	valid := []string{"20T2345", "ENS-001", "abc_12", "19P0678"}
	for _, m := range valid {
		if ok, msg := ValidateMatricule(m); !ok {
			t.Errorf("ValidateMatricule(%q) rejected: %s", m, msg)
		}
	}

	invalid := []string{
		"",
		"ab",
		strings.Repeat("A", 51),
		"20T 2345",
		"20T#2345",
	}
	for _, m := range invalid {
		if ok, _ := ValidateMatricule(m); ok {
			t.Errorf("ValidateMatricule(%q) accepted, want rejection", m)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	if !ValidateEmail("candidat@univ.cm") {
		t.Error("valid email rejected")
	}
	for _, e := range []string{"", "not-an-email", "a@", "@b.cm"} {
		if ValidateEmail(e) {
			t.Errorf("ValidateEmail(%q) accepted, want rejection", e)
		}
	}
}
