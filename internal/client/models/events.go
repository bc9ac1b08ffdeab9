package models

import "time"

// XPTransaction is the payload of POST /xp/transaction.
type XPTransaction struct {
	UserID     string  `json:"userUuid"`
	Action     string  `json:"action"`
	XPEarned   int64   `json:"xpEarned"`
	Multiplier float64 `json:"multiplier"`
	TrustBonus bool    `json:"trustBonus"`
}

// TrustEvent is the payload of POST /trust/event.
type TrustEvent struct {
	UserID      string  `json:"userUuid"`
	EventType   string  `json:"eventType"`
	TrustChange float64 `json:"trustChange"`
	Reason      string  `json:"reason"`
}

const (
	TrustEventIncrease = "trust_increase"
	TrustEventDecrease = "trust_decrease"
)

// StaffSession is what the client keeps after a staff login.
type StaffSession struct {
	Token       string   `json:"token"`
	UserID      string   `json:"id"`
	Email       string   `json:"email"`
	Role        Role     `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
}

// AdminUser is one row of GET /admin/users.
type AdminUser struct {
	ID          string    `json:"id"`
	Email       string    `json:"email,omitempty"`
	DisplayName string    `json:"display_name,omitempty"`
	Role        Role      `json:"role"`
	TrustScore  float64   `json:"trust_score"`
	CreatedAt   time.Time `json:"created_at"`
}

// RoleChange is one row of GET /admin/users/:id/role-history.
type RoleChange struct {
	UserID    string    `json:"user_id"`
	Role      Role      `json:"role"`
	Action    string    `json:"action"`
	ChangedBy string    `json:"changed_by"`
	Reason    string    `json:"reason,omitempty"`
	ChangedAt time.Time `json:"changed_at"`
}

// RoleAssignment is the payload of POST /admin/assign-role and /admin/revoke-role.
type RoleAssignment struct {
	UserID string `json:"userId"`
	Role   Role   `json:"role"`
	Reason string `json:"reason,omitempty"`
}
