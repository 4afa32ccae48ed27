package access

import (
	"testing"

	"github.com/chetan-code/taskshare/internal/models"
)

const (
	ownerID    = 1
	granteeID  = 2
	strangerID = 3
)

func taskWithGrants(kinds ...models.PermissionKind) *models.Task {
	t := &models.Task{ID: 10, Title: "shared", OwnerID: ownerID}
	for _, k := range kinds {
		t.Grants = append(t.Grants, models.Grant{TaskID: t.ID, UserID: granteeID, Kind: k})
	}
	return t
}

func TestCan(t *testing.T) {
	testCases := []struct {
		name   string
		task   *models.Task
		userID int
		action Action
		want   bool
	}{
		{"owner can read", taskWithGrants(), ownerID, ActionRead, true},
		{"owner can update", taskWithGrants(), ownerID, ActionUpdate, true},
		{"owner can delete", taskWithGrants(), ownerID, ActionDelete, true},

		{"stranger cannot read", taskWithGrants(), strangerID, ActionRead, false},
		{"stranger cannot update", taskWithGrants(), strangerID, ActionUpdate, false},
		{"stranger cannot delete", taskWithGrants(), strangerID, ActionDelete, false},

		{"read grant allows read", taskWithGrants(models.PermissionRead), granteeID, ActionRead, true},
		{"read grant does not allow update", taskWithGrants(models.PermissionRead), granteeID, ActionUpdate, false},
		{"read grant does not allow delete", taskWithGrants(models.PermissionRead), granteeID, ActionDelete, false},

		{"update grant allows update", taskWithGrants(models.PermissionUpdate), granteeID, ActionUpdate, true},
		{"update grant allows read", taskWithGrants(models.PermissionUpdate), granteeID, ActionRead, true},
		{"update grant does not allow delete", taskWithGrants(models.PermissionUpdate), granteeID, ActionDelete, false},

		{"both grants still no delete", taskWithGrants(models.PermissionRead, models.PermissionUpdate), granteeID, ActionDelete, false},
		{"grant for someone else does not help", taskWithGrants(models.PermissionUpdate), strangerID, ActionUpdate, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Can(tc.task, tc.userID, tc.action)
			if got != tc.want {
				t.Errorf("Can() = %t, want %t", got, tc.want)
			}
		})
	}
}

func TestCanAdminister(t *testing.T) {
	task := taskWithGrants(models.PermissionUpdate)

	if !CanAdminister(task, ownerID) {
		t.Error("expected owner to administer grants")
	}
	//an update grant is not ownership
	if CanAdminister(task, granteeID) {
		t.Error("expected grantee not to administer grants")
	}
}

func TestParsePermissionKind(t *testing.T) {
	for _, valid := range []string{"read", "update"} {
		if _, err := models.ParsePermissionKind(valid); err != nil {
			t.Errorf("ParsePermissionKind(%q) unexpected error: %v", valid, err)
		}
	}
	for _, invalid := range []string{"", "delete", "owner", "READ"} {
		if _, err := models.ParsePermissionKind(invalid); err == nil {
			t.Errorf("ParsePermissionKind(%q) expected error", invalid)
		}
	}
}
