package links

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	db "github.com/sundayezeilo/linkshelf/internal/db/sqlc"
	"github.com/sundayezeilo/linkshelf/internal/errx"
	"github.com/sundayezeilo/linkshelf/internal/idgen"
)

// querier is the subset of *db.Queries the repository uses.
type querier interface {
	CreateLink(ctx context.Context, arg db.CreateLinkParams) (db.Link, error)
	GetLink(ctx context.Context, id uuid.UUID) (db.Link, error)
	ListLinksByUser(ctx context.Context, arg db.ListLinksByUserParams) ([]db.Link, error)
	UpdateLink(ctx context.Context, arg db.UpdateLinkParams) (db.Link, error)
	DeleteLink(ctx context.Context, id uuid.UUID) (int64, error)
	GetUserByExternalID(ctx context.Context, externalID string) (db.User, error)
	CreateUser(ctx context.Context, arg db.CreateUserParams) (db.User, error)
}

// Pinger reports whether the underlying store is reachable. *pgxpool.Pool
// satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

type repo struct {
	q      querier
	ids    idgen.Generator
	pinger Pinger
}

// RepositoryConfig holds configuration for the repository
type RepositoryConfig struct {
	IDGenerator idgen.Generator
	Pinger      Pinger
}

// NewRepository returns a Postgres-backed Repository over sqlc queries.
func NewRepository(q querier, config *RepositoryConfig) Repository {
	if config == nil {
		config = &RepositoryConfig{}
	}

	// v7 so (saved_at, id) ordering is stable within one timestamp
	ids := config.IDGenerator
	if ids == nil {
		ids = idgen.NewV7(idgen.WithRetries(1))
	}

	return &repo{
		q:      q,
		ids:    ids,
		pinger: config.Pinger,
	}
}

func mustTime(ts pgtype.Timestamptz, field string) (time.Time, error) {
	if !ts.Valid {
		return time.Time{}, fmt.Errorf("%s unexpectedly NULL", field)
	}
	return ts.Time, nil
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

func toText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func toDomainLink(x db.Link) (Link, error) {
	savedAt, err := mustTime(x.SavedAt, "saved_at")
	if err != nil {
		return Link{}, err
	}

	return Link{
		ID:          x.ID,
		UserID:      x.UserID,
		Title:       x.Title,
		URL:         x.Url,
		Description: textPtr(x.Description),
		Category:    textPtr(x.Category),
		SavedAt:     savedAt,
	}, nil
}

func toDomainUser(x db.User) (User, error) {
	createdAt, err := mustTime(x.CreatedAt, "created_at")
	if err != nil {
		return User{}, err
	}

	return User{
		ID:         x.ID,
		ExternalID: x.ExternalID,
		Name:       x.Name.String,
		Email:      x.Email.String,
		CreatedAt:  createdAt,
	}, nil
}

func mapRepoError(op string, err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return errx.E(op, errx.NotFound, errNoRow)

	case isExternalIDUniqueViolation(err):
		return errx.E(op, errx.Conflict, err)

	default:
		return errx.E(op, errx.Unavailable, err)
	}
}

// likePattern turns a free-text query into an ILIKE pattern that matches it
// literally anywhere in the column.
func likePattern(q string) pgtype.Text {
	q = strings.TrimSpace(q)
	if q == "" {
		return pgtype.Text{}
	}
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return pgtype.Text{String: "%" + r.Replace(q) + "%", Valid: true}
}

func optionalText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func (r *repo) Create(ctx context.Context, link Link) (Link, error) {
	const op = "links.repo.Create"

	if link.ID == uuid.Nil {
		id, err := r.ids.Generate()
		if err != nil {
			return Link{}, errx.E(op, errx.Unavailable, err)
		}
		link.ID = id
	}

	row, err := r.q.CreateLink(ctx, db.CreateLinkParams{
		ID:          link.ID,
		UserID:      link.UserID,
		Title:       link.Title,
		Url:         link.URL,
		Description: toText(link.Description),
		Category:    toText(link.Category),
	})
	if err != nil {
		return Link{}, mapRepoError(op, err)
	}

	return toDomainLink(row)
}

func (r *repo) FindByID(ctx context.Context, id uuid.UUID) (Link, error) {
	const op = "links.repo.FindByID"

	row, err := r.q.GetLink(ctx, id)
	if err != nil {
		return Link{}, mapRepoError(op, err)
	}
	return toDomainLink(row)
}

func (r *repo) FindByOwner(ctx context.Context, ownerID uuid.UUID, filter ListFilter) ([]Link, error) {
	const op = "links.repo.FindByOwner"

	rows, err := r.q.ListLinksByUser(ctx, db.ListLinksByUserParams{
		UserID:   ownerID,
		Category: optionalText(filter.Category),
		Pattern:  likePattern(filter.Query),
	})
	if err != nil {
		return nil, mapRepoError(op, err)
	}

	out := make([]Link, 0, len(rows))
	for _, row := range rows {
		l, err := toDomainLink(row)
		if err != nil {
			return nil, errx.E(op, errx.Internal, err)
		}
		out = append(out, l)
	}
	return out, nil
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, patch LinkPatch) (Link, error) {
	const op = "links.repo.Update"

	row, err := r.q.UpdateLink(ctx, db.UpdateLinkParams{
		ID:          id,
		Title:       toText(patch.Title),
		Url:         toText(patch.URL),
		Description: toText(patch.Description),
		Category:    toText(patch.Category),
	})
	if err != nil {
		return Link{}, mapRepoError(op, err)
	}
	return toDomainLink(row)
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "links.repo.Delete"

	n, err := r.q.DeleteLink(ctx, id)
	if err != nil {
		return mapRepoError(op, err)
	}
	if n == 0 {
		return errx.E(op, errx.NotFound, errNoRow)
	}
	return nil
}

func (r *repo) FindUserByExternalID(ctx context.Context, externalID string) (User, error) {
	const op = "links.repo.FindUserByExternalID"

	row, err := r.q.GetUserByExternalID(ctx, externalID)
	if err != nil {
		return User{}, mapRepoError(op, err)
	}
	return toDomainUser(row)
}

func (r *repo) CreateUser(ctx context.Context, user User) (User, error) {
	const op = "links.repo.CreateUser"

	if user.ID == uuid.Nil {
		id, err := r.ids.Generate()
		if err != nil {
			return User{}, errx.E(op, errx.Unavailable, err)
		}
		user.ID = id
	}

	row, err := r.q.CreateUser(ctx, db.CreateUserParams{
		ID:         user.ID,
		ExternalID: user.ExternalID,
		Name:       optionalText(user.Name),
		Email:      optionalText(user.Email),
	})
	if err != nil {
		return User{}, mapRepoError(op, err)
	}
	return toDomainUser(row)
}

func (r *repo) Ping(ctx context.Context) error {
	const op = "links.repo.Ping"

	if r.pinger == nil {
		return nil
	}
	if err := r.pinger.Ping(ctx); err != nil {
		return errx.E(op, errx.Unavailable, err)
	}
	return nil
}
