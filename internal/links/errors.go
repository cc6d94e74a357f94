package links

import "errors"

// Sentinels returned (wrapped in errx.Error) by the service. Handlers match
// them with errors.Is.
var (
	ErrUnauthenticated  = errors.New("unauthorized")
	ErrOwnerNotFound    = errors.New("user not found")
	ErrMissingParameter = errors.New("missing required parameter")
	ErrLinkNotFound     = errors.New("link not found")
	ErrForbidden        = errors.New("link belongs to another user")
)

// errNoRow is what repositories wrap when a lookup or delete matched nothing.
var errNoRow = errors.New("no matching row")
