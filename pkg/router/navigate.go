package router

import (
	"fmt"
	"net/url"

	"github.com/ledgerdash/ledgerdash/pkg/routepath"
)

// NavigateOptions configures navigation behavior.
type NavigateOptions struct {
	// Replace replaces the current history entry instead of pushing.
	Replace bool

	// Query holds query parameters to add to the URL.
	Query map[string]any

	// Scroll controls whether the view scrolls to top after navigation.
	// Defaults to true.
	Scroll bool
}

// NavigateOption is a functional option for navigation.
type NavigateOption func(*NavigateOptions)

// WithReplace replaces the current history entry instead of pushing.
func WithReplace() NavigateOption {
	return func(o *NavigateOptions) {
		o.Replace = true
	}
}

// WithQuery adds query parameters to the navigation URL.
func WithQuery(query map[string]any) NavigateOption {
	return func(o *NavigateOptions) {
		o.Query = query
	}
}

// WithoutScroll disables scrolling to top after navigation.
func WithoutScroll() NavigateOption {
	return func(o *NavigateOptions) {
		o.Scroll = false
	}
}

// NavigationRequest is a resolved navigation handed to the history.
type NavigationRequest struct {
	// Path is the canonical path that was resolved.
	Path string

	// URL is Path plus the query string.
	URL string

	// Match is the resolution of Path.
	Match Match

	// Options are the options the navigation was made with.
	Options NavigateOptions
}

// History records navigations and moves through them. The browser history
// (or a desktop shell's equivalent) implements it outside this package;
// MemoryHistory is the in-process implementation.
type History interface {
	// Push appends a new entry after the current one.
	Push(req NavigationRequest)

	// Replace overwrites the current entry.
	Replace(req NavigationRequest)

	// Go moves delta entries from the current one and returns the new
	// current entry. It returns false, without moving, when out of range.
	Go(delta int) (NavigationRequest, bool)

	// Location returns the current entry.
	Location() (NavigationRequest, bool)
}

// Navigator is the programmatic navigation API for the rest of the
// application. It validates every target against the route table before the
// history sees it.
type Navigator struct {
	table   *Table
	history History
}

// NewNavigator creates a navigator over table recording into history.
func NewNavigator(table *Table, history History) *Navigator {
	return &Navigator{table: table, history: history}
}

// Navigate navigates to the named route.
// It fails with *UnknownRouteError or *MissingParameterError when the path
// cannot be built; nothing is recorded in that case.
func (n *Navigator) Navigate(name string, params map[string]string, opts ...NavigateOption) (NavigationRequest, error) {
	path, err := n.table.BuildPath(name, params)
	if err != nil {
		return NavigationRequest{}, err
	}
	return n.NavigateTo(path, opts...)
}

// NavigateTo navigates to an app-relative path, which may carry a query
// string. It fails with *NotFoundError when no route matches.
func (n *Navigator) NavigateTo(path string, opts ...NavigateOption) (NavigationRequest, error) {
	options := NavigateOptions{Scroll: true}
	for _, opt := range opts {
		opt(&options)
	}

	target, err := routepath.ValidateNavPath(path)
	if err != nil {
		return NavigationRequest{}, fmt.Errorf("navigate to %q: %w", path, err)
	}

	canonical, query := routepath.SplitPathAndQuery(target)
	match, ok := n.table.Resolve(canonical)
	if !ok {
		return NavigationRequest{}, &NotFoundError{Path: canonical}
	}

	req := NavigationRequest{
		Path:    canonical,
		Match:   match,
		Options: options,
	}
	req.URL, err = buildURL(canonical, query, options.Query)
	if err != nil {
		return NavigationRequest{}, err
	}

	if options.Replace {
		n.history.Replace(req)
	} else {
		n.history.Push(req)
	}
	return req, nil
}

// Back moves one entry back in history.
func (n *Navigator) Back() (NavigationRequest, bool) {
	return n.history.Go(-1)
}

// Forward moves one entry forward in history.
func (n *Navigator) Forward() (NavigationRequest, bool) {
	return n.history.Go(1)
}

// Current returns the match of the current history entry.
func (n *Navigator) Current() (Match, bool) {
	req, ok := n.history.Location()
	if !ok {
		return Match{}, false
	}
	return req.Match, true
}

// buildURL joins a canonical path, its original query and extra parameters.
// Extra parameters override keys of the original query.
func buildURL(path, rawQuery string, extra map[string]any) (string, error) {
	u := url.URL{Path: path}
	if len(extra) == 0 {
		u.RawQuery = rawQuery
		return u.String(), nil
	}

	q, err := url.ParseQuery(rawQuery)
	if err != nil {
		return "", fmt.Errorf("invalid query %q: %w", rawQuery, err)
	}
	for k, v := range extra {
		q.Set(k, fmt.Sprintf("%v", v))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
