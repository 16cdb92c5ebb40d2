package model

import "testing"

func TestRoleJuryValid(t *testing.T) {
	for _, r := range []RoleJury{JuryPresident, JuryRapporteur, JuryEncadreur, JuryExaminateur} {
		if !r.Valid() {
			t.Errorf("%q should be valid", r)
		}
	}
	for _, r := range []RoleJury{"", "president", "MEMBRE"} {
		if r.Valid() {
			t.Errorf("%q should be invalid", r)
		}
	}
}

func TestJuryHasMember(t *testing.T) {
	jury := Jury{
		Composition: []MembreJury{
			{EnseignantID: 1, Role: JuryPresident},
			{EnseignantID: 2, Role: JuryRapporteur},
		},
	}

	if !jury.HasMember(1, JuryPresident) {
		t.Error("expected (1, PRESIDENT) to be a member")
	}
	if jury.HasMember(1, JuryRapporteur) {
		t.Error("(1, RAPPORTEUR) should not match a different role")
	}
	if jury.HasMember(3, JuryPresident) {
		t.Error("(3, PRESIDENT) should not be a member")
	}
}

func TestRoleEnumsValid(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleCandidat, RoleEnseignant} {
		if !r.Valid() {
			t.Errorf("role %q should be valid", r)
		}
	}
	if Role("ETUDIANT").Valid() {
		t.Error("ETUDIANT should be invalid")
	}

	for _, c := range []Cycle{CycleIngenieur, CycleScienceIngenieur, CycleMasterPro} {
		if !c.Valid() {
			t.Errorf("cycle %q should be valid", c)
		}
	}
	if Cycle("LICENCE").Valid() {
		t.Error("LICENCE should be invalid")
	}

	for _, g := range []Grade{GradeProfesseur, GradeMaitreConf, GradeChargeCours, GradeAssistant} {
		if !g.Valid() {
			t.Errorf("grade %q should be valid", g)
		}
	}
	if Grade("DOCTEUR").Valid() {
		t.Error("DOCTEUR should be invalid")
	}
}
