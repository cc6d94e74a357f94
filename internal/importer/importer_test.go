package importer

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sundayezeilo/linkshelf/internal/errx"
	"github.com/sundayezeilo/linkshelf/internal/links"
)

const chromeExport = `{
  "checksum": "abc",
  "roots": {
    "bookmark_bar": {
      "name": "Bookmarks bar",
      "type": "folder",
      "children": [
        {"type": "url", "name": "Go", "url": "https://go.dev", "date_added": "13300000000000000"},
        {"type": "folder", "name": "Work", "children": [
          {"type": "url", "name": "Postgres", "url": "https://postgresql.org"},
          {"type": "folder", "name": "Infra", "children": [
            {"type": "url", "name": "", "url": "https://k8s.io"}
          ]}
        ]}
      ]
    },
    "other": {
      "name": "Other bookmarks",
      "type": "folder",
      "children": [
        {"type": "url", "name": "No url", "url": ""}
      ]
    }
  },
  "version": 1
}`

const firefoxExport = `{
  "title": "",
  "typeCode": 2,
  "children": [
    {"title": "menu", "typeCode": 2, "children": [
      {"title": "Reading", "typeCode": 2, "children": [
        {"title": "Blog", "typeCode": 1, "uri": "https://blog.example"}
      ]}
    ]},
    {"title": "toolbar", "typeCode": 2, "children": [
      {"title": "MDN", "typeCode": 1, "uri": "https://developer.mozilla.org"},
      {"title": "separator", "typeCode": 3}
    ]}
  ]
}`

func TestParse_Chrome(t *testing.T) {
	got, err := Parse(FormatChrome, []byte(chromeExport))
	require.NoError(t, err)

	assert.Equal(t, []Bookmark{
		{Title: "Go", URL: "https://go.dev"},
		{Title: "Postgres", URL: "https://postgresql.org", Folder: "Work"},
		{Title: "https://k8s.io", URL: "https://k8s.io", Folder: "Work/Infra"},
	}, got)
}

func TestParse_Firefox(t *testing.T) {
	got, err := Parse(FormatFirefox, []byte(firefoxExport))
	require.NoError(t, err)

	assert.Equal(t, []Bookmark{
		{Title: "Blog", URL: "https://blog.example", Folder: "Reading"},
		{Title: "MDN", URL: "https://developer.mozilla.org"},
	}, got)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse(FormatChrome, []byte(`{"roots":`))
	assert.Error(t, err)

	_, err = Parse("safari", []byte(`{}`))
	assert.ErrorContains(t, err, "unsupported bookmark format")
}

func TestBookmark_Category(t *testing.T) {
	assert.Nil(t, Bookmark{}.Category())
	assert.Equal(t, "Work", *Bookmark{Folder: "Work"}.Category())
	assert.Equal(t, "Work", *Bookmark{Folder: "Work/Infra"}.Category())
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	repo := links.NewMemoryRepository()
	_, err := repo.CreateUser(ctx, links.User{ExternalID: "user_a"})
	require.NoError(t, err)
	svc := links.NewService(repo)

	bookmarks, err := Parse(FormatChrome, []byte(chromeExport))
	require.NoError(t, err)
	bookmarks = append(bookmarks, Bookmark{Title: "   ", URL: "https://blank.example"})

	res, err := Import(ctx, svc, "user_a", bookmarks, logger)
	require.NoError(t, err)
	assert.Equal(t, Result{Imported: 3, Skipped: 1}, res)

	work, err := svc.List(ctx, "user_a", links.ListFilter{Category: "Work"})
	require.NoError(t, err)
	assert.Len(t, work, 2)
}

func TestImport_UnknownUserStops(t *testing.T) {
	svc := links.NewService(links.NewMemoryRepository())

	res, err := Import(context.Background(), svc, "nobody", []Bookmark{{Title: "Go", URL: "https://go.dev"}}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, links.ErrOwnerNotFound)
	assert.Equal(t, errx.NotFound, errx.KindOf(err))
	assert.Zero(t, res.Imported)
}
