package client

import (
	"context"

	"github.com/dmitrijs2005/civicstate/internal/client/models"
)

type Client interface {
	Ping(ctx context.Context) error
	SetToken(token string)

	GetUser(ctx context.Context, id string) (*models.User, error)
	SyncUser(ctx context.Context, u *models.User) (*models.User, error)
	RecordXP(ctx context.Context, tx models.XPTransaction) error
	RecordTrustEvent(ctx context.Context, ev models.TrustEvent) error

	StaffLogin(ctx context.Context, email, password string) (*models.StaffSession, error)
	GlobalLogout(ctx context.Context) error

	AssignRole(ctx context.Context, a models.RoleAssignment) error
	RevokeRole(ctx context.Context, a models.RoleAssignment) error
	ListUsers(ctx context.Context) ([]models.AdminUser, error)
	RoleHistory(ctx context.Context, userID string) ([]models.RoleChange, error)

	ListContent(ctx context.Context, kind models.ContentKind) ([]models.Envelope, error)
	SaveContent(ctx context.Context, e models.Envelope) (models.Envelope, error)
	DeleteContent(ctx context.Context, kind models.ContentKind, id string) error
}
