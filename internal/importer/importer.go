// Package importer turns browser bookmark exports into links owned by a
// caller. Chrome's Bookmarks file and Firefox's JSON backup are supported.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/sundayezeilo/linkshelf/internal/errx"
	"github.com/sundayezeilo/linkshelf/internal/identity"
	"github.com/sundayezeilo/linkshelf/internal/links"
)

const (
	FormatChrome  = "chrome"
	FormatFirefox = "firefox"
)

// Bookmark is one entry found in an export. Folder is the slash-joined path
// below the browser's root folders, empty for top-level bookmarks.
type Bookmark struct {
	Title  string
	URL    string
	Folder string
}

// Category is the top-level folder of the bookmark, or nil when it has none.
func (b Bookmark) Category() *string {
	if b.Folder == "" {
		return nil
	}
	top, _, _ := strings.Cut(b.Folder, "/")
	return &top
}

// Parse extracts bookmarks from data in the given export format.
func Parse(format string, data []byte) ([]Bookmark, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("bookmark export is not valid JSON")
	}

	switch format {
	case FormatChrome:
		return parseChrome(data), nil
	case FormatFirefox:
		return parseFirefox(data), nil
	default:
		return nil, fmt.Errorf("unsupported bookmark format %q (must be one of: chrome, firefox)", format)
	}
}

// Chrome keeps bookmark_bar, other and synced under "roots"; each is a
// folder node whose own name is not part of the user's folder path.
func parseChrome(data []byte) []Bookmark {
	var out []Bookmark
	gjson.GetBytes(data, "roots").ForEach(func(_, root gjson.Result) bool {
		root.Get("children").ForEach(func(_, node gjson.Result) bool {
			walkChrome(node, "", &out)
			return true
		})
		return true
	})
	return out
}

func walkChrome(node gjson.Result, folder string, out *[]Bookmark) {
	switch node.Get("type").String() {
	case "url":
		appendBookmark(out, node.Get("name").String(), node.Get("url").String(), folder)
	case "folder":
		sub := joinFolder(folder, node.Get("name").String())
		node.Get("children").ForEach(func(_, child gjson.Result) bool {
			walkChrome(child, sub, out)
			return true
		})
	}
}

// Firefox backups nest menu, toolbar, unfiled and mobile under the root.
func parseFirefox(data []byte) []Bookmark {
	var out []Bookmark
	gjson.GetBytes(data, "children").ForEach(func(_, root gjson.Result) bool {
		root.Get("children").ForEach(func(_, node gjson.Result) bool {
			walkFirefox(node, "", &out)
			return true
		})
		return true
	})
	return out
}

func walkFirefox(node gjson.Result, folder string, out *[]Bookmark) {
	switch node.Get("typeCode").Int() {
	case 1:
		appendBookmark(out, node.Get("title").String(), node.Get("uri").String(), folder)
	case 2:
		sub := joinFolder(folder, node.Get("title").String())
		node.Get("children").ForEach(func(_, child gjson.Result) bool {
			walkFirefox(child, sub, out)
			return true
		})
	}
}

func joinFolder(parent, name string) string {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return parent
	case parent == "":
		return name
	default:
		return parent + "/" + name
	}
}

func appendBookmark(out *[]Bookmark, title, url, folder string) {
	title, url = strings.TrimSpace(title), strings.TrimSpace(url)
	if url == "" {
		return
	}
	// untitled bookmarks are saved under their url
	if title == "" {
		title = url
	}
	*out = append(*out, Bookmark{Title: title, URL: url, Folder: folder})
}

// Result counts what Import did.
type Result struct {
	Imported int
	Skipped  int
}

// Import saves every bookmark as a link owned by caller. Bookmarks the
// service rejects as incomplete are skipped; any other failure stops the
// import and is returned together with the counts so far.
func Import(ctx context.Context, svc links.Service, caller identity.Subject, bookmarks []Bookmark, logger *slog.Logger) (Result, error) {
	const op = "importer.Import"

	if logger == nil {
		logger = slog.Default()
	}

	var res Result
	for _, b := range bookmarks {
		_, err := svc.Create(ctx, caller, links.NewLink{
			Title:    b.Title,
			URL:      b.URL,
			Category: b.Category(),
		})
		switch {
		case err == nil:
			res.Imported++
		case errors.Is(err, links.ErrMissingParameter):
			res.Skipped++
			logger.WarnContext(ctx, "skipping bookmark", "url", b.URL, "error", err.Error())
		default:
			return res, errx.E(op, errx.KindOf(err), err)
		}
	}

	logger.InfoContext(ctx, "bookmarks imported",
		"subject", caller.String(),
		"imported", res.Imported,
		"skipped", res.Skipped,
	)
	return res, nil
}
