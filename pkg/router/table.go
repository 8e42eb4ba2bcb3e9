package router

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/ledgerdash/ledgerdash/pkg/routepath"
)

// entry is a route with its pattern parsed once.
type entry struct {
	route    Route
	segments []Segment
	captures int
}

// capture matches decoded input segments against the pattern.
// The caller guarantees len(segments) == len(e.segments).
func (e *entry) capture(segments []string) (map[string]string, bool) {
	params := make(map[string]string, e.captures)
	for i, seg := range e.segments {
		in := segments[i]
		switch seg.Kind {
		case SegmentLiteral:
			if !strings.EqualFold(in, seg.Value) {
				return nil, false
			}
		case SegmentCapture:
			if ValidateParam(in, seg.Type) != nil {
				return nil, false
			}
			params[seg.Value] = in
		}
	}
	return params, true
}

// Table is an immutable route table. It is safe for concurrent use; every
// operation is a pure lookup.
type Table struct {
	entries []entry

	// names maps route name -> index into entries.
	names map[string]int

	// exact maps the path of literal routes -> index into entries.
	exact map[string]int

	// byLen holds parameterized routes by segment count, in registration order.
	byLen map[int][]int
}

// New builds a route table from routes in order.
// It returns a *ConfigurationError when two routes share a name or a route is
// malformed.
func New(routes ...Route) (*Table, error) {
	t := &Table{
		entries: make([]entry, 0, len(routes)),
		names:   make(map[string]int, len(routes)),
		exact:   make(map[string]int),
		byLen:   make(map[int][]int),
	}

	for i, r := range routes {
		if r.Name == "" {
			return nil, &ConfigurationError{Index: i, Path: r.Path, Reason: "route name is empty"}
		}
		if prev, dup := t.names[r.Name]; dup {
			return nil, &ConfigurationError{
				Index:  i,
				Name:   r.Name,
				Path:   r.Path,
				Reason: "name already used by route with path " + strconv.Quote(t.entries[prev].route.Path),
			}
		}

		segments, err := parsePattern(r.Path)
		if err != nil {
			return nil, &ConfigurationError{Index: i, Name: r.Name, Path: r.Path, Reason: err.Error()}
		}

		e := entry{route: r, segments: segments}
		for _, seg := range segments {
			if seg.Kind == SegmentCapture {
				e.captures++
			}
		}

		idx := len(t.entries)
		t.entries = append(t.entries, e)
		t.names[r.Name] = idx

		if isLiteral(segments) {
			key := literalKey(segments)
			// First registration wins for identical literal paths.
			if _, exists := t.exact[key]; !exists {
				t.exact[key] = idx
			}
			continue
		}
		t.byLen[len(segments)] = append(t.byLen[len(segments)], idx)
	}

	return t, nil
}

// MustNew is like New but panics on error. It is meant for static tables
// declared at init time.
func MustNew(routes ...Route) *Table {
	t, err := New(routes...)
	if err != nil {
		panic(err)
	}
	return t
}

// Resolve finds the route for a path.
// The path is canonicalized first (query and fragment dropped, trailing slash
// removed, dot segments resolved) and its segments percent-decoded. Exact
// literal routes are tried before parameterized ones. A false result is the
// NotFound outcome; the caller renders its fallback view.
func (t *Table) Resolve(path string) (Match, bool) {
	canonical, err := routepath.CanonicalizePath(path)
	if err != nil {
		return Match{}, false
	}

	raw := routepath.Split(canonical.Path)
	segments := make([]string, len(raw))
	for i, seg := range raw {
		decoded, err := routepath.DecodeSegment(seg)
		if err != nil {
			return Match{}, false
		}
		segments[i] = decoded
	}

	if idx, ok := t.exact[strings.ToLower(joinSegments(segments))]; ok {
		return t.entries[idx].match(nil), true
	}

	for _, idx := range t.byLen[len(segments)] {
		e := &t.entries[idx]
		if params, ok := e.capture(segments); ok {
			return e.match(params), true
		}
	}

	return Match{}, false
}

// match builds the result for a matched entry.
func (e *entry) match(params map[string]string) Match {
	if params == nil {
		params = make(map[string]string)
	}
	m := Match{
		Name:   e.route.Name,
		View:   e.route.View,
		Params: params,
		Route:  e.route,
	}
	if e.route.PropsFromParams {
		m.Props = make(map[string]string, len(params))
		for k, v := range params {
			m.Props[k] = v
		}
	}
	return m
}

// BuildPath substitutes params into the named route's pattern.
// Values are path-escaped. Parameters the pattern does not use are ignored.
// A value that could not be captured back by Resolve ("." or "..", or one
// containing "/" or a NUL byte) fails with *InvalidParameterError, so the
// built path always resolves to the named route.
func (t *Table) BuildPath(name string, params map[string]string) (string, error) {
	idx, ok := t.names[name]
	if !ok {
		return "", &UnknownRouteError{Name: name}
	}

	e := t.entries[idx]
	if len(e.segments) == 0 {
		return "/", nil
	}

	var b strings.Builder
	for _, seg := range e.segments {
		b.WriteByte('/')
		if seg.Kind == SegmentLiteral {
			b.WriteString(url.PathEscape(seg.Value))
			continue
		}

		value, ok := params[seg.Value]
		if !ok || value == "" {
			return "", &MissingParameterError{Route: name, Param: seg.Value}
		}
		err := validateSegmentValue(value)
		if err == nil {
			err = ValidateParam(value, seg.Type)
		}
		if err != nil {
			return "", &InvalidParameterError{Route: name, Param: seg.Value, Value: value, Type: seg.Type, Err: err}
		}
		b.WriteString(url.PathEscape(value))
	}

	return b.String(), nil
}

// Routes returns the route definitions in registration order.
func (t *Table) Routes() []Route {
	routes := make([]Route, len(t.entries))
	for i, e := range t.entries {
		routes[i] = e.route
	}
	return routes
}

// Lookup returns the route registered under name.
func (t *Table) Lookup(name string) (Route, bool) {
	idx, ok := t.names[name]
	if !ok {
		return Route{}, false
	}
	return t.entries[idx].route, true
}

// Segments returns the parsed pattern of the named route.
func (t *Table) Segments(name string) ([]Segment, bool) {
	idx, ok := t.names[name]
	if !ok {
		return nil, false
	}
	return append([]Segment(nil), t.entries[idx].segments...), true
}

// Len returns the number of routes.
func (t *Table) Len() int {
	return len(t.entries)
}
