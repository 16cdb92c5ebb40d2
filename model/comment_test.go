package model

import "testing"

func TestCommentaireVisibleTo(t *testing.T) {
	public := Commentaire{EstInterne: false}
	internal := Commentaire{EstInterne: true}

	for _, role := range []Role{RoleAdmin, RoleCandidat, RoleEnseignant} {
		if !public.VisibleTo(role) {
			t.Errorf("public comment should be visible to %s", role)
		}
	}

	if internal.VisibleTo(RoleCandidat) {
		t.Error("internal comment should be hidden from candidates")
	}
	if !internal.VisibleTo(RoleAdmin) {
		t.Error("internal comment should be visible to admins")
	}
	if !internal.VisibleTo(RoleEnseignant) {
		t.Error("internal comment should be visible to teachers")
	}
}
