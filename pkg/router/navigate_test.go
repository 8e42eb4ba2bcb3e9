package router

import (
	"errors"
	"testing"

	"github.com/ledgerdash/ledgerdash/pkg/routepath"
)

func newTestNavigator(t *testing.T) (*Navigator, *MemoryHistory) {
	t.Helper()
	history := NewMemoryHistory()
	return NewNavigator(newDashboardTable(t), history), history
}

func TestNavigateOptionFunctions(t *testing.T) {
	opts := NavigateOptions{Scroll: true}

	WithReplace()(&opts)
	if !opts.Replace {
		t.Error("WithReplace should set Replace to true")
	}

	query := map[string]any{"page": 1, "sort": "name"}
	WithQuery(query)(&opts)
	if opts.Query["page"] != 1 {
		t.Error("WithQuery should set query")
	}

	WithoutScroll()(&opts)
	if opts.Scroll {
		t.Error("WithoutScroll should set Scroll to false")
	}
}

func TestNavigatorNavigate(t *testing.T) {
	nav, history := newTestNavigator(t)

	req, err := nav.Navigate("AccountDetail", map[string]string{"id": "42"})
	if err != nil {
		t.Fatalf("Navigate() error: %v", err)
	}
	if req.Path != "/account/42" || req.URL != "/account/42" {
		t.Errorf("req = {Path:%q URL:%q}, want /account/42", req.Path, req.URL)
	}
	if req.Match.Name != "AccountDetail" || req.Match.Props["id"] != "42" {
		t.Errorf("req.Match = %+v", req.Match)
	}
	if !req.Options.Scroll {
		t.Error("Scroll should default to true")
	}
	if history.Len() != 1 {
		t.Errorf("history.Len() = %d, want 1", history.Len())
	}

	current, ok := nav.Current()
	if !ok || current.Name != "AccountDetail" {
		t.Errorf("Current() = %q, %v", current.Name, ok)
	}
}

func TestNavigatorNavigateErrors(t *testing.T) {
	nav, history := newTestNavigator(t)

	_, err := nav.Navigate("AccountDetail", nil)
	if !errors.Is(err, ErrMissingParameter) {
		t.Errorf("Navigate without id error = %v, want ErrMissingParameter", err)
	}

	_, err = nav.Navigate("Budgets", nil)
	if !errors.Is(err, ErrUnknownRoute) {
		t.Errorf("Navigate(Budgets) error = %v, want ErrUnknownRoute", err)
	}

	_, err = nav.NavigateTo("/unknown/path")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) || notFound.Path != "/unknown/path" {
		t.Errorf("NavigateTo(/unknown/path) error = %v, want *NotFoundError", err)
	}

	_, err = nav.Navigate("AccountDetail", map[string]string{"id": ".."})
	if !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("Navigate with id \"..\" error = %v, want ErrInvalidParameter", err)
	}

	_, err = nav.NavigateTo("https://evil.example/accounts")
	if !errors.Is(err, routepath.ErrInvalidPath) {
		t.Errorf("NavigateTo(absolute URL) error = %v, want ErrInvalidPath", err)
	}

	if history.Len() != 0 {
		t.Errorf("failed navigations were recorded: Len() = %d", history.Len())
	}
}

func TestNavigatorQuery(t *testing.T) {
	nav, _ := newTestNavigator(t)

	req, err := nav.NavigateTo("/accounts/?archived=true", WithQuery(map[string]any{"sort": "name", "page": 2}))
	if err != nil {
		t.Fatalf("NavigateTo() error: %v", err)
	}
	if req.Path != "/accounts" {
		t.Errorf("Path = %q, want /accounts", req.Path)
	}
	want := "/accounts?archived=true&page=2&sort=name"
	if req.URL != want {
		t.Errorf("URL = %q, want %q", req.URL, want)
	}

	req, err = nav.NavigateTo("/categories?tab=expenses")
	if err != nil {
		t.Fatalf("NavigateTo() error: %v", err)
	}
	if req.URL != "/categories?tab=expenses" {
		t.Errorf("URL = %q, want original query kept", req.URL)
	}
}

func TestNavigatorBackForwardReplace(t *testing.T) {
	nav, history := newTestNavigator(t)

	mustNavigate := func(path string, opts ...NavigateOption) {
		t.Helper()
		if _, err := nav.NavigateTo(path, opts...); err != nil {
			t.Fatalf("NavigateTo(%q) error: %v", path, err)
		}
	}

	mustNavigate("/")
	mustNavigate("/accounts")
	mustNavigate("/account/7")

	req, ok := nav.Back()
	if !ok || req.Match.Name != "AccountManagement" {
		t.Errorf("Back() = %q, %v, want AccountManagement", req.Match.Name, ok)
	}

	req, ok = nav.Forward()
	if !ok || req.Match.Params["id"] != "7" {
		t.Errorf("Forward() = %+v, %v", req.Match, ok)
	}

	if _, ok := nav.Forward(); ok {
		t.Error("Forward() past the end should fail")
	}

	// Replace keeps the history length.
	mustNavigate("/categories", WithReplace())
	if history.Len() != 3 {
		t.Errorf("Len() after replace = %d, want 3", history.Len())
	}
	current, _ := nav.Current()
	if current.Name != "CategoryManagement" {
		t.Errorf("Current() = %q, want CategoryManagement", current.Name)
	}

	// Pushing after going back drops forward entries.
	nav.Back()
	nav.Back()
	mustNavigate("/account/9")
	if history.Len() != 2 {
		t.Errorf("Len() after push from middle = %d, want 2", history.Len())
	}
	if _, ok := nav.Forward(); ok {
		t.Error("forward entries should have been discarded")
	}

	if _, ok := nav.Back(); !ok {
		t.Error("Back() to first entry should succeed")
	}
	if _, ok := nav.Back(); ok {
		t.Error("Back() before the first entry should fail")
	}
}

func TestMemoryHistoryEmpty(t *testing.T) {
	var history MemoryHistory

	if _, ok := history.Location(); ok {
		t.Error("Location() on empty history should fail")
	}
	if _, ok := history.Go(-1); ok {
		t.Error("Go(-1) on empty history should fail")
	}

	history.Replace(NavigationRequest{Path: "/"})
	loc, ok := history.Location()
	if !ok || loc.Path != "/" {
		t.Errorf("Location() after Replace = %+v, %v", loc, ok)
	}
	if history.Len() != 1 {
		t.Errorf("Len() = %d, want 1", history.Len())
	}
}

func TestNavigatorCurrentEmpty(t *testing.T) {
	nav, _ := newTestNavigator(t)
	if _, ok := nav.Current(); ok {
		t.Error("Current() before any navigation should fail")
	}
}
