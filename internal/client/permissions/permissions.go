// Package permissions answers "may this role do X" from one canonical,
// flat table. Every function here is pure: no I/O, no shared state.
package permissions

import (
	"slices"
	"sort"

	"github.com/dmitrijs2005/civicstate/internal/client/models"
)

// Wildcard grants everything.
const Wildcard = "*"

const (
	ReadContent      = "read_content"
	VotePoll         = "vote_poll"
	Comment          = "comment"
	ReportContent    = "report_content"
	CreateDiscussion = "create_discussion"
	SuggestEdit      = "suggest_edit"
	CreateLesson     = "create_lesson"
	EditEducational  = "edit_educational_content"
	HostEvent        = "host_event"
	ModerateContent  = "moderate_content"
	HideComment      = "hide_comment"
	ReviewReports    = "review_reports"
	ViewFlagged      = "view_flagged"
)

// table lists each role's permissions independently. Overlap between roles
// is intentional; there is no inheritance.
var table = map[models.Role][]string{
	models.RoleAnonymous: {
		ReadContent, VotePoll, Comment, ReportContent,
	},
	models.RoleTrusted: {
		ReadContent, VotePoll, Comment, ReportContent,
		CreateDiscussion, SuggestEdit,
		Module("timeline-events", "read"), Module("commitments", "read"),
	},
	models.RoleEducator: {
		ReadContent, VotePoll, Comment, ReportContent,
		CreateDiscussion, CreateLesson, EditEducational, HostEvent,
		Module("documents", "read"), Module("documents", "create"), Module("documents", "update"),
	},
	models.RoleModerator: {
		ReadContent, VotePoll, Comment, ReportContent,
		CreateDiscussion, SuggestEdit,
		ModerateContent, HideComment, ReviewReports, ViewFlagged,
		Module("politicians", "read"), Module("timeline-events", "read"), Module("timeline-events", "update"),
		Module("commitments", "read"), Module("commitments", "update"),
		Module("voting-records", "read"), Module("documents", "read"),
	},
	models.RoleAdmin: {Wildcard},
}

// Module builds the "module:action" permission string used by the admin screens.
func Module(module, action string) string {
	return module + ":" + action
}

// ForRole returns a copy of the role's permission list; nil for unknown roles.
func ForRole(role models.Role) []string {
	return slices.Clone(table[role])
}

func IsAdmin(role models.Role) bool {
	return role == models.RoleAdmin
}

// HasPermission reports whether role, together with the per-user overrides,
// grants perm. Admin and a wildcard in either list grant everything.
func HasPermission(role models.Role, perm string, overrides []string) bool {
	if IsAdmin(role) {
		return true
	}
	for _, list := range [][]string{table[role], overrides} {
		for _, p := range list {
			if p == Wildcard || p == perm {
				return true
			}
		}
	}
	return false
}

// HasModulePermission is HasPermission for a module+action pair.
func HasModulePermission(role models.Role, module, action string, overrides []string) bool {
	return HasPermission(role, Module(module, action), overrides)
}

// Effective is the sorted, de-duplicated set a user currently holds: role
// table, overrides and whatever the trust tier unlocks.
func Effective(role models.Role, overrides []string, trust float64) []string {
	seen := make(map[string]struct{})
	for _, list := range [][]string{table[role], overrides, TrustFeatures(trust)} {
		for _, p := range list {
			seen[p] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
