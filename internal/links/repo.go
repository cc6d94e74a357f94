package links

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence accessor for links and the user directory
// lookup the service needs. It carries no authorization logic; every method
// touches at most one row, except FindByOwner which only reads.
//
// Errors are errx.Errors: NotFound when nothing matched, Conflict on a
// duplicate user, Unavailable for store failures.
type Repository interface {
	Create(ctx context.Context, link Link) (Link, error)
	FindByID(ctx context.Context, id uuid.UUID) (Link, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID, filter ListFilter) ([]Link, error)
	Update(ctx context.Context, id uuid.UUID, patch LinkPatch) (Link, error)
	Delete(ctx context.Context, id uuid.UUID) error

	FindUserByExternalID(ctx context.Context, externalID string) (User, error)
	CreateUser(ctx context.Context, user User) (User, error)

	Ping(ctx context.Context) error
}
