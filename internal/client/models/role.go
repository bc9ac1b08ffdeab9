package models

import (
	"errors"
	"fmt"
	"strings"
)

// Role is an access tier. Roles are flat: no role inherits from another.
type Role string

const (
	RoleAnonymous Role = "anonymous"
	RoleTrusted   Role = "trusted"
	RoleEducator  Role = "educator"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

var ErrUnknownRole = errors.New("unknown role")

// Roles lists every role in ascending order of privilege.
var Roles = []Role{RoleAnonymous, RoleTrusted, RoleEducator, RoleModerator, RoleAdmin}

func (r Role) Valid() bool {
	switch r {
	case RoleAnonymous, RoleTrusted, RoleEducator, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}
