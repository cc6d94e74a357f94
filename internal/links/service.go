package links

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/sundayezeilo/linkshelf/internal/errx"
	"github.com/sundayezeilo/linkshelf/internal/identity"
)

// Service is the authorization-scoped link API. Every method takes the caller
// explicitly and resolves it to an owner before touching any link.
//
// Delete and UpdateCategory check, in order: caller present, link id given,
// link exists, caller maps to a user, user owns the link. The first failing
// check decides the error.
type Service interface {
	Create(ctx context.Context, caller identity.Subject, in NewLink) (Link, error)
	List(ctx context.Context, caller identity.Subject, filter ListFilter) ([]Link, error)
	Delete(ctx context.Context, caller identity.Subject, linkID string) error
	UpdateCategory(ctx context.Context, caller identity.Subject, linkID, category string) (Link, error)
}

type service struct {
	repo Repository
}

// NewService creates a new service instance.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, caller identity.Subject, in NewLink) (Link, error) {
	const op = "links.service.Create"

	if caller.IsZero() {
		return Link{}, errx.E(op, errx.Unauthorized, ErrUnauthenticated)
	}
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.URL) == "" {
		return Link{}, errx.E(op, errx.Invalid, ErrMissingParameter)
	}

	owner, err := s.resolveOwner(ctx, op, caller)
	if err != nil {
		return Link{}, err
	}

	created, err := s.repo.Create(ctx, Link{
		UserID:      owner.ID,
		Title:       in.Title,
		URL:         in.URL,
		Description: in.Description,
		Category:    in.Category,
	})
	if err != nil {
		return Link{}, internal(op, err)
	}
	return created, nil
}

func (s *service) List(ctx context.Context, caller identity.Subject, filter ListFilter) ([]Link, error) {
	const op = "links.service.List"

	if caller.IsZero() {
		return nil, errx.E(op, errx.Unauthorized, ErrUnauthenticated)
	}

	owner, err := s.resolveOwner(ctx, op, caller)
	if err != nil {
		return nil, err
	}

	out, err := s.repo.FindByOwner(ctx, owner.ID, filter)
	if err != nil {
		return nil, internal(op, err)
	}
	return out, nil
}

func (s *service) Delete(ctx context.Context, caller identity.Subject, linkID string) error {
	const op = "links.service.Delete"

	link, err := s.authorize(ctx, op, caller, linkID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, link.ID); err != nil {
		// lost a race with another delete of the same link
		if errx.KindOf(err) == errx.NotFound {
			return errx.E(op, errx.NotFound, ErrLinkNotFound)
		}
		return internal(op, err)
	}
	return nil
}

func (s *service) UpdateCategory(ctx context.Context, caller identity.Subject, linkID, category string) (Link, error) {
	const op = "links.service.UpdateCategory"

	link, err := s.authorize(ctx, op, caller, linkID)
	if err != nil {
		return Link{}, err
	}

	updated, err := s.repo.Update(ctx, link.ID, LinkPatch{Category: &category})
	if err != nil {
		if errx.KindOf(err) == errx.NotFound {
			return Link{}, errx.E(op, errx.NotFound, ErrLinkNotFound)
		}
		return Link{}, internal(op, err)
	}
	return updated, nil
}

// authorize runs the shared checks of Delete and UpdateCategory and returns
// the link the caller is allowed to mutate.
func (s *service) authorize(ctx context.Context, op string, caller identity.Subject, linkID string) (Link, error) {
	if caller.IsZero() {
		return Link{}, errx.E(op, errx.Unauthorized, ErrUnauthenticated)
	}

	linkID = strings.TrimSpace(linkID)
	if linkID == "" {
		return Link{}, errx.E(op, errx.Invalid, ErrMissingParameter)
	}

	// an id we could never have issued cannot name an existing link
	id, err := uuid.Parse(linkID)
	if err != nil {
		return Link{}, errx.E(op, errx.NotFound, ErrLinkNotFound)
	}

	link, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errx.KindOf(err) == errx.NotFound {
			return Link{}, errx.E(op, errx.NotFound, ErrLinkNotFound)
		}
		return Link{}, internal(op, err)
	}

	owner, err := s.resolveOwner(ctx, op, caller)
	if err != nil {
		return Link{}, err
	}

	if link.UserID != owner.ID {
		return Link{}, errx.E(op, errx.Forbidden, ErrForbidden)
	}
	return link, nil
}

func (s *service) resolveOwner(ctx context.Context, op string, caller identity.Subject) (User, error) {
	u, err := s.repo.FindUserByExternalID(ctx, caller.String())
	if err != nil {
		if errx.KindOf(err) == errx.NotFound {
			return User{}, errx.E(op, errx.NotFound, ErrOwnerNotFound)
		}
		return User{}, internal(op, err)
	}
	return u, nil
}

// internal hides an accessor failure behind the Internal kind while keeping
// the cause in the chain for logging.
func internal(op string, err error) error {
	return errx.E(op, errx.Internal, err)
}
