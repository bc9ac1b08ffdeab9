package permissions

import (
	"slices"
	"testing"

	"github.com/dmitrijs2005/civicstate/internal/client/models"
	"github.com/stretchr/testify/assert"
)

var samplePerms = []string{
	ReadContent, VotePoll, Comment, ReportContent, CreateDiscussion, SuggestEdit,
	CreateLesson, EditEducational, HostEvent, ModerateContent, HideComment,
	ReviewReports, ViewFlagged, "manage_users", "delete_everything",
	Module("politicians", "create"), Module("documents", "update"), "",
}

func TestHasPermission_AdminAlwaysAllowed(t *testing.T) {
	for _, p := range samplePerms {
		assert.True(t, HasPermission(models.RoleAdmin, p, nil), p)
	}
}

func TestHasPermission_MembershipOfTableOrOverrides(t *testing.T) {
	overrides := []string{"manage_users"}
	for _, role := range models.Roles {
		if role == models.RoleAdmin {
			continue
		}
		for _, p := range samplePerms {
			want := slices.Contains(table[role], p) || slices.Contains(overrides, p)
			assert.Equal(t, want, HasPermission(role, p, overrides), "%s/%s", role, p)
		}
	}
}

func TestHasPermission_WildcardOverride(t *testing.T) {
	assert.True(t, HasPermission(models.RoleAnonymous, "anything", []string{Wildcard}))
}

func TestHasPermission_UnknownRoleOnlyOverrides(t *testing.T) {
	assert.False(t, HasPermission("ghost", ReadContent, nil))
	assert.True(t, HasPermission("ghost", ReadContent, []string{ReadContent}))
}

func TestHasModulePermission(t *testing.T) {
	assert.True(t, HasModulePermission(models.RoleEducator, "documents", "create", nil))
	assert.False(t, HasModulePermission(models.RoleEducator, "politicians", "create", nil))
	assert.True(t, HasModulePermission(models.RoleModerator, "commitments", "update", nil))
	assert.True(t, HasModulePermission(models.RoleAdmin, "politicians", "delete", nil))
}

func TestForRole_ReturnsCopy(t *testing.T) {
	p := ForRole(models.RoleAnonymous)
	p[0] = "mutated"
	assert.Equal(t, ReadContent, table[models.RoleAnonymous][0])
	assert.Nil(t, ForRole("ghost"))
}

func TestEffective_UnionsAndSorts(t *testing.T) {
	got := Effective(models.RoleAnonymous, []string{"extra", Comment}, 2.6)
	assert.True(t, slices.IsSorted(got))
	assert.Contains(t, got, "extra")
	assert.Contains(t, got, FeaturePriorityReport)
	assert.Equal(t, 1, countOf(got, Comment))
}

func countOf(list []string, v string) int {
	n := 0
	for _, s := range list {
		if s == v {
			n++
		}
	}
	return n
}

func TestTrustTier(t *testing.T) {
	assert.Equal(t, "newcomer", TrustTier(0.1).Name)
	assert.Equal(t, "newcomer", TrustTier(1.99).Name)
	assert.Equal(t, "contributor", TrustTier(2.0).Name)
	assert.Equal(t, "verified", TrustTier(2.5).Name)
	assert.Equal(t, "verified", TrustTier(5).Name)
	assert.Equal(t, []float64{2.0, 2.5}, Thresholds())
}

func TestCrossesThreshold(t *testing.T) {
	assert.True(t, CrossesThreshold(1.9, 2.0))
	assert.True(t, CrossesThreshold(2.6, 2.4))
	assert.False(t, CrossesThreshold(2.1, 2.4))
	assert.False(t, CrossesThreshold(0.5, 1.5))
}
