package links

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sundayezeilo/linkshelf/internal/errx"
	"github.com/sundayezeilo/linkshelf/internal/identity"
)

const (
	alice identity.Subject = "user_alice"
	bob   identity.Subject = "user_bob"
	carol identity.Subject = "user_carol" // signed in, but no user record
)

func newTestService(t *testing.T) (Service, Repository) {
	t.Helper()
	repo := NewMemoryRepository(WithClock(tickingClock(time.Now(), time.Millisecond)))
	seedUser(t, repo, alice.String())
	seedUser(t, repo, bob.String())
	return NewService(repo), repo
}

func createLink(t *testing.T, svc Service, caller identity.Subject, title string) Link {
	t.Helper()
	l, err := svc.Create(context.Background(), caller, NewLink{Title: title, URL: "https://example.com/" + title})
	require.NoError(t, err)
	return l
}

// failingRepo fails the methods named in failOn with a store error.
type failingRepo struct {
	Repository
	failOn map[string]bool
}

var errStore = errors.New("connection reset by peer")

func (f *failingRepo) fail(op string) error {
	if f.failOn[op] {
		return errx.E("links.memory."+op, errx.Unavailable, errStore)
	}
	return nil
}

func (f *failingRepo) Create(ctx context.Context, l Link) (Link, error) {
	if err := f.fail("Create"); err != nil {
		return Link{}, err
	}
	return f.Repository.Create(ctx, l)
}

func (f *failingRepo) FindByID(ctx context.Context, id uuid.UUID) (Link, error) {
	if err := f.fail("FindByID"); err != nil {
		return Link{}, err
	}
	return f.Repository.FindByID(ctx, id)
}

func (f *failingRepo) FindByOwner(ctx context.Context, owner uuid.UUID, filter ListFilter) ([]Link, error) {
	if err := f.fail("FindByOwner"); err != nil {
		return nil, err
	}
	return f.Repository.FindByOwner(ctx, owner, filter)
}

func (f *failingRepo) Update(ctx context.Context, id uuid.UUID, p LinkPatch) (Link, error) {
	if err := f.fail("Update"); err != nil {
		return Link{}, err
	}
	return f.Repository.Update(ctx, id, p)
}

func (f *failingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := f.fail("Delete"); err != nil {
		return err
	}
	return f.Repository.Delete(ctx, id)
}

func (f *failingRepo) FindUserByExternalID(ctx context.Context, externalID string) (User, error) {
	if err := f.fail("FindUserByExternalID"); err != nil {
		return User{}, err
	}
	return f.Repository.FindUserByExternalID(ctx, externalID)
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	link, err := svc.Create(ctx, alice, NewLink{Title: "Docs", URL: "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Docs", link.Title)
	assert.Equal(t, "https://example.com", link.URL)
	assert.Nil(t, link.Category)

	list, err := svc.List(ctx, alice, ListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, link.ID, list[0].ID)
	assert.Equal(t, "Docs", list[0].Title)
	assert.Equal(t, "https://example.com", list[0].URL)
	assert.Nil(t, list[0].Category)
}

func TestService_Create_Errors(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	tests := []struct {
		name   string
		caller identity.Subject
		in     NewLink
		want   error
		kind   errx.Kind
	}{
		{"no caller", "", NewLink{Title: "Docs", URL: "https://example.com"}, ErrUnauthenticated, errx.Unauthorized},
		{"no caller and no title", "", NewLink{URL: "https://example.com"}, ErrUnauthenticated, errx.Unauthorized},
		{"blank title", alice, NewLink{Title: "  ", URL: "https://example.com"}, ErrMissingParameter, errx.Invalid},
		{"missing url", alice, NewLink{Title: "Docs"}, ErrMissingParameter, errx.Invalid},
		{"no user record", carol, NewLink{Title: "Docs", URL: "https://example.com"}, ErrOwnerNotFound, errx.NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.caller, tt.in)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.kind, errx.KindOf(err))
			assert.Equal(t, "links.service.Create", errx.OpOf(err))
		})
	}
}

func TestService_List_NewestFirstAndScoped(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	first := createLink(t, svc, alice, "first")
	second := createLink(t, svc, alice, "second")
	bobs := createLink(t, svc, bob, "bobs")

	assert.False(t, second.SavedAt.Before(first.SavedAt), "savedAt must not go backwards")

	list, err := svc.List(ctx, alice, ListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
	assert.True(t, list[0].SavedAt.After(list[1].SavedAt))

	for _, l := range list {
		assert.NotEqual(t, bobs.ID, l.ID, "another user's link leaked into the list")
	}

	bobList, err := svc.List(ctx, bob, ListFilter{})
	require.NoError(t, err)
	require.Len(t, bobList, 1)
	assert.Equal(t, bobs.ID, bobList[0].ID)
}

func TestService_List_Errors(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.List(ctx, "", ListFilter{})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.List(ctx, carol, ListFilter{})
	assert.ErrorIs(t, err, ErrOwnerNotFound)
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)

	own := createLink(t, svc, alice, "mine")

	require.NoError(t, svc.Delete(ctx, alice, own.ID.String()))

	_, err := repo.FindByID(ctx, own.ID)
	assert.Equal(t, errx.NotFound, errx.KindOf(err))

	err = svc.Delete(ctx, alice, own.ID.String())
	assert.ErrorIs(t, err, ErrLinkNotFound)
	assert.Equal(t, errx.NotFound, errx.KindOf(err))
}

func TestService_Delete_OtherOwnerIsForbidden(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)

	bobs := createLink(t, svc, bob, "bobs")

	err := svc.Delete(ctx, alice, bobs.ID.String())
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, errx.Forbidden, errx.KindOf(err))

	still, err := repo.FindByID(ctx, bobs.ID)
	require.NoError(t, err)
	assert.Equal(t, bobs.ID, still.ID)
}

// Checks for Delete and UpdateCategory short-circuit in a fixed order. Each
// row breaks exactly the checks up to and including the expected one.
func TestService_MutationPrecedence(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	bobs := createLink(t, svc, bob, "bobs")
	missing := uuid.New().String()

	tests := []struct {
		name   string
		caller identity.Subject
		linkID string
		want   error
	}{
		{"unauthenticated beats missing id", "", "", ErrUnauthenticated},
		{"unauthenticated beats unknown link", "", missing, ErrUnauthenticated},
		{"missing id", carol, "", ErrMissingParameter},
		{"blank id", alice, "   ", ErrMissingParameter},
		{"unknown link beats unknown user", carol, missing, ErrLinkNotFound},
		{"malformed id is not found", alice, "not-a-uuid", ErrLinkNotFound},
		{"unknown user beats forbidden", carol, bobs.ID.String(), ErrOwnerNotFound},
		{"forbidden", alice, bobs.ID.String(), ErrForbidden},
	}

	for _, tt := range tests {
		t.Run("delete/"+tt.name, func(t *testing.T) {
			err := svc.Delete(ctx, tt.caller, tt.linkID)
			assert.ErrorIs(t, err, tt.want)
		})
		t.Run("update/"+tt.name, func(t *testing.T) {
			_, err := svc.UpdateCategory(ctx, tt.caller, tt.linkID, "Work")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestService_UpdateCategory(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	desc := "the manual"
	original, err := svc.Create(ctx, alice, NewLink{
		Title:       "Docs",
		URL:         "https://example.com",
		Description: &desc,
		Category:    strPtr("Reading"),
	})
	require.NoError(t, err)

	updated, err := svc.UpdateCategory(ctx, alice, original.ID.String(), "Work")
	require.NoError(t, err)
	require.NotNil(t, updated.Category)
	assert.Equal(t, "Work", *updated.Category)

	list, err := svc.List(ctx, alice, ListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)

	got := list[0]
	require.NotNil(t, got.Category)
	assert.Equal(t, "Work", *got.Category)
	assert.Equal(t, original.ID, got.ID)
	assert.Equal(t, original.UserID, got.UserID)
	assert.Equal(t, original.Title, got.Title)
	assert.Equal(t, original.URL, got.URL)
	assert.Equal(t, original.Description, got.Description)
	assert.True(t, original.SavedAt.Equal(got.SavedAt))
}

func TestService_UpdateCategory_OtherOwnerUnchanged(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)

	bobs := createLink(t, svc, bob, "bobs")

	_, err := svc.UpdateCategory(ctx, alice, bobs.ID.String(), "Hijacked")
	assert.ErrorIs(t, err, ErrForbidden)

	still, err := repo.FindByID(ctx, bobs.ID)
	require.NoError(t, err)
	assert.Nil(t, still.Category)
}

func TestService_StoreFailuresAreInternal(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		failOn string
		call   func(Service, Link) error
	}{
		{"create", "Create", func(s Service, _ Link) error {
			_, err := s.Create(ctx, alice, NewLink{Title: "t", URL: "u"})
			return err
		}},
		{"list", "FindByOwner", func(s Service, _ Link) error {
			_, err := s.List(ctx, alice, ListFilter{})
			return err
		}},
		{"user lookup", "FindUserByExternalID", func(s Service, _ Link) error {
			_, err := s.List(ctx, alice, ListFilter{})
			return err
		}},
		{"delete lookup", "FindByID", func(s Service, l Link) error {
			return s.Delete(ctx, alice, l.ID.String())
		}},
		{"delete", "Delete", func(s Service, l Link) error {
			return s.Delete(ctx, alice, l.ID.String())
		}},
		{"update", "Update", func(s Service, l Link) error {
			_, err := s.UpdateCategory(ctx, alice, l.ID.String(), "Work")
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, repo := newTestService(t)
			owner, err := repo.FindUserByExternalID(ctx, alice.String())
			require.NoError(t, err)
			link, err := repo.Create(ctx, Link{UserID: owner.ID, Title: "t", URL: "u"})
			require.NoError(t, err)

			svc := NewService(&failingRepo{Repository: repo, failOn: map[string]bool{tt.failOn: true}})

			err = tt.call(svc, link)
			require.Error(t, err)
			assert.Equal(t, errx.Internal, errx.KindOf(err))
			assert.ErrorIs(t, err, errStore)
		})
	}
}
