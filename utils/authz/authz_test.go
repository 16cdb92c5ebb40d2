package authz

import (
	"testing"

	"github.com/jkemta/soutenance-api/model"
)

func TestActorRoleHelpers(t *testing.T) {
	admin := Actor{UserID: 1, Role: model.RoleAdmin}
	candidat := Actor{UserID: 2, Role: model.RoleCandidat, ProfileID: 10}
	enseignant := Actor{UserID: 3, Role: model.RoleEnseignant, ProfileID: 20}

	if !admin.IsAdmin() || admin.IsCandidat() || admin.IsEnseignant() {
		t.Error("admin role helpers wrong")
	}
	if !candidat.IsCandidat() || candidat.IsAdmin() || candidat.IsEnseignant() {
		t.Error("candidat role helpers wrong")
	}
	if !enseignant.IsEnseignant() || enseignant.IsAdmin() || enseignant.IsCandidat() {
		t.Error("enseignant role helpers wrong")
	}
}

func TestCanSeeInternalComments(t *testing.T) {
	if CanSeeInternalComments(Actor{Role: model.RoleCandidat}) {
		t.Error("candidates should not see internal comments")
	}
	if !CanSeeInternalComments(Actor{Role: model.RoleAdmin}) {
		t.Error("admins should see internal comments")
	}
	if !CanSeeInternalComments(Actor{Role: model.RoleEnseignant}) {
		t.Error("teachers should see internal comments")
	}
}
