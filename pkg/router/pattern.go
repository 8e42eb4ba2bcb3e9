package router

import (
	"fmt"
	"strings"

	"github.com/ledgerdash/ledgerdash/pkg/routepath"
)

// parsePattern splits a route path into tagged segments.
// Input: "/account/:id:int" -> [literal "account", capture "id" (int)]
func parsePattern(path string) ([]Segment, error) {
	if !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("path must begin with \"/\"")
	}

	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil, nil
	}

	parts := strings.Split(trimmed, "/")
	segments := make([]Segment, 0, len(parts))
	seen := make(map[string]bool)

	for _, part := range parts {
		switch {
		case part == "":
			return nil, fmt.Errorf("empty segment")
		case part == "." || part == "..":
			return nil, fmt.Errorf("dot segment %q is never matched", part)
		case strings.HasPrefix(part, "*"):
			return nil, fmt.Errorf("catch-all segment %q is not supported", part)
		case strings.HasPrefix(part, ":"):
			name, paramType := parseCaptureSegment(part)
			if name == "" {
				return nil, fmt.Errorf("capture segment %q has no name", part)
			}
			if !knownParamType(paramType) {
				return nil, fmt.Errorf("capture %q has unknown type %q", name, paramType)
			}
			if seen[name] {
				return nil, fmt.Errorf("capture %q appears more than once", name)
			}
			seen[name] = true
			segments = append(segments, Segment{Kind: SegmentCapture, Value: name, Type: paramType})
		default:
			segments = append(segments, Segment{Kind: SegmentLiteral, Value: part})
		}
	}

	return segments, nil
}

// parseCaptureSegment extracts name and type from a capture segment.
// Input: ":id" or ":id:int" -> name="id", type="string" or "int"
func parseCaptureSegment(seg string) (name, paramType string) {
	seg = seg[1:]
	if idx := strings.Index(seg, ":"); idx != -1 {
		return seg[:idx], seg[idx+1:]
	}
	return seg, ParamString
}

// isLiteral reports whether a parsed pattern has no captures.
func isLiteral(segments []Segment) bool {
	for _, seg := range segments {
		if seg.Kind == SegmentCapture {
			return false
		}
	}
	return true
}

// joinSegments builds the lookup key for a sequence of decoded segments.
func joinSegments(segments []string) string {
	return "/" + strings.Join(segments, "/")
}

// literalKey builds the case-folded lookup key for a literal pattern.
func literalKey(segments []Segment) string {
	values := make([]string, len(segments))
	for i, seg := range segments {
		values[i] = seg.Value
	}
	return strings.ToLower(joinSegments(values))
}

// validateSegmentValue rejects capture values that would not survive
// canonicalization as a single path segment.
func validateSegmentValue(value string) error {
	switch {
	case value == "." || value == "..":
		return fmt.Errorf("dot segment %q cannot be a parameter value", value)
	case strings.Contains(value, "/"):
		return routepath.ErrEncodedSlashInSegment
	case strings.Contains(value, "\x00"):
		return routepath.ErrNullByteInPath
	}
	return nil
}
