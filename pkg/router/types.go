package router

// View identifies the view component the rendering layer mounts when a route
// matches (for example "Dashboard" or "AccountDetail").
type View string

// Route maps a path pattern to a named view.
type Route struct {
	// Path is the pattern (e.g., "/account/:id").
	Path string `json:"path"`

	// Name is the unique symbolic identifier of the route.
	Name string `json:"name"`

	// View is the component to render.
	View View `json:"view"`

	// PropsFromParams forwards captured parameters to the view as inputs.
	PropsFromParams bool `json:"props"`
}

// SegmentKind tags a pattern segment.
type SegmentKind uint8

const (
	// SegmentLiteral must equal the input segment.
	SegmentLiteral SegmentKind = iota

	// SegmentCapture absorbs the input segment as a named parameter.
	SegmentCapture
)

// String returns the kind name.
func (k SegmentKind) String() string {
	switch k {
	case SegmentLiteral:
		return "literal"
	case SegmentCapture:
		return "capture"
	default:
		return "unknown"
	}
}

// Segment is one parsed segment of a route pattern.
type Segment struct {
	Kind SegmentKind

	// Value is the literal text, or the parameter name for a capture.
	Value string

	// Type is the capture's type constraint ("string", "int", "uint", "uuid").
	// Empty for literals.
	Type string
}

// Match is the result of resolving a path.
type Match struct {
	// Name is the matched route's name.
	Name string `json:"name"`

	// View is the matched route's view.
	View View `json:"view"`

	// Params maps parameter names to decoded captured values.
	// It is empty, never nil, for routes without captures.
	Params map[string]string `json:"params"`

	// Props holds the inputs to pass to the view: a copy of Params when the
	// route sets PropsFromParams, nil otherwise.
	Props map[string]string `json:"props,omitempty"`

	// Route is the matched route definition.
	Route Route `json:"-"`
}
