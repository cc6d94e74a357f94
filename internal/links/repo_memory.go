package links

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sundayezeilo/linkshelf/internal/errx"
	"github.com/sundayezeilo/linkshelf/internal/idgen"
)

type memoryRepo struct {
	mu    sync.RWMutex
	links map[uuid.UUID]Link
	users map[string]User // keyed by external id
	ids   idgen.Generator
	now   func() time.Time
}

// MemoryOption configures NewMemoryRepository.
type MemoryOption func(*memoryRepo)

// WithClock overrides the time source used for SavedAt and CreatedAt.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *memoryRepo) { m.now = now }
}

// NewMemoryRepository returns a Repository that keeps everything in process
// memory. It orders and fails exactly like the Postgres one, which makes it
// suitable for local development and service tests.
func NewMemoryRepository(opts ...MemoryOption) Repository {
	m := &memoryRepo{
		links: make(map[uuid.UUID]Link),
		users: make(map[string]User),
		ids:   idgen.NewV7(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// stamp mirrors the microsecond resolution of timestamptz.
func (m *memoryRepo) stamp() time.Time {
	return m.now().UTC().Truncate(time.Microsecond)
}

func cloneLink(l Link) Link {
	if l.Description != nil {
		d := *l.Description
		l.Description = &d
	}
	if l.Category != nil {
		c := *l.Category
		l.Category = &c
	}
	return l
}

func (m *memoryRepo) Create(_ context.Context, link Link) (Link, error) {
	const op = "links.memory.Create"

	if link.ID == uuid.Nil {
		id, err := m.ids.Generate()
		if err != nil {
			return Link{}, errx.E(op, errx.Unavailable, err)
		}
		link.ID = id
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.links[link.ID]; exists {
		return Link{}, errx.E(op, errx.Conflict, errors.New("duplicate link id"))
	}
	if !m.ownerExistsLocked(link.UserID) {
		return Link{}, errx.E(op, errx.Unavailable, errors.New("owner does not exist"))
	}

	link.SavedAt = m.stamp()
	link = cloneLink(link)
	m.links[link.ID] = link
	return cloneLink(link), nil
}

func (m *memoryRepo) ownerExistsLocked(id uuid.UUID) bool {
	for _, u := range m.users {
		if u.ID == id {
			return true
		}
	}
	return false
}

func (m *memoryRepo) FindByID(_ context.Context, id uuid.UUID) (Link, error) {
	const op = "links.memory.FindByID"

	m.mu.RLock()
	defer m.mu.RUnlock()

	l, ok := m.links[id]
	if !ok {
		return Link{}, errx.E(op, errx.NotFound, errNoRow)
	}
	return cloneLink(l), nil
}

func (m *memoryRepo) FindByOwner(_ context.Context, ownerID uuid.UUID, filter ListFilter) ([]Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(filter.Query))
	out := make([]Link, 0)
	for _, l := range m.links {
		if l.UserID != ownerID {
			continue
		}
		if filter.Category != "" && (l.Category == nil || *l.Category != filter.Category) {
			continue
		}
		if q != "" && !matchesQuery(l, q) {
			continue
		}
		out = append(out, cloneLink(l))
	}

	slices.SortFunc(out, func(a, b Link) int {
		if c := b.SavedAt.Compare(a.SavedAt); c != 0 {
			return c
		}
		return bytes.Compare(b.ID[:], a.ID[:])
	})
	return out, nil
}

func matchesQuery(l Link, q string) bool {
	if strings.Contains(strings.ToLower(l.Title), q) || strings.Contains(strings.ToLower(l.URL), q) {
		return true
	}
	return l.Description != nil && strings.Contains(strings.ToLower(*l.Description), q)
}

func (m *memoryRepo) Update(_ context.Context, id uuid.UUID, patch LinkPatch) (Link, error) {
	const op = "links.memory.Update"

	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.links[id]
	if !ok {
		return Link{}, errx.E(op, errx.NotFound, errNoRow)
	}
	if patch.Title != nil {
		l.Title = *patch.Title
	}
	if patch.URL != nil {
		l.URL = *patch.URL
	}
	if patch.Description != nil {
		d := *patch.Description
		l.Description = &d
	}
	if patch.Category != nil {
		c := *patch.Category
		l.Category = &c
	}
	m.links[id] = l
	return cloneLink(l), nil
}

func (m *memoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	const op = "links.memory.Delete"

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.links[id]; !ok {
		return errx.E(op, errx.NotFound, errNoRow)
	}
	delete(m.links, id)
	return nil
}

func (m *memoryRepo) FindUserByExternalID(_ context.Context, externalID string) (User, error) {
	const op = "links.memory.FindUserByExternalID"

	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[externalID]
	if !ok {
		return User{}, errx.E(op, errx.NotFound, errNoRow)
	}
	return u, nil
}

func (m *memoryRepo) CreateUser(_ context.Context, user User) (User, error) {
	const op = "links.memory.CreateUser"

	if user.ID == uuid.Nil {
		id, err := m.ids.Generate()
		if err != nil {
			return User{}, errx.E(op, errx.Unavailable, err)
		}
		user.ID = id
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.users[user.ExternalID]; exists {
		return User{}, errx.E(op, errx.Conflict, errors.New("external id already mapped"))
	}
	user.CreatedAt = m.stamp()
	m.users[user.ExternalID] = user
	return user, nil
}

func (m *memoryRepo) Ping(context.Context) error { return nil }
