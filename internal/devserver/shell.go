package devserver

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/ledgerdash/ledgerdash/pkg/router"
)

// RouteGlobalName is the window property holding the resolved route.
const RouteGlobalName = "__LEDGERDASH_ROUTE__"

// defaultShell is used when the static directory has no index.html.
const defaultShell = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>ledgerdash</title>
</head>
<body>
<div id="app"></div>
</body>
</html>
`

// shellPage is what the shell injects into the page head.
type shellPage struct {
	// Match is the resolved route; nil renders the client's fallback view.
	Match *router.Match

	EnvScript    string
	ReloadScript string
}

// loadShellTemplate returns index.html from dir, or the built-in shell.
func loadShellTemplate(dir string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(dir, "index.html"))
	if err != nil {
		if os.IsNotExist(err) {
			return []byte(defaultShell), nil
		}
		return nil, err
	}
	return data, nil
}

// renderShell injects the page scripts into tmpl, before </head> when
// present, else before </body>, else at the end.
func renderShell(tmpl []byte, page shellPage) ([]byte, error) {
	// json.Marshal escapes <, > and &, keeping the payload inert in a script.
	match, err := json.Marshal(page.Match)
	if err != nil {
		return nil, err
	}

	var inject bytes.Buffer
	inject.WriteString("<script>window." + RouteGlobalName + "=")
	inject.Write(match)
	inject.WriteString(";</script>\n")
	inject.WriteString(page.EnvScript)
	if page.EnvScript != "" {
		inject.WriteByte('\n')
	}
	if page.ReloadScript != "" {
		inject.WriteString(page.ReloadScript)
		inject.WriteByte('\n')
	}

	for _, marker := range [][]byte{[]byte("</head>"), []byte("</body>")} {
		if idx := bytes.Index(tmpl, marker); idx != -1 {
			out := make([]byte, 0, len(tmpl)+inject.Len())
			out = append(out, tmpl[:idx]...)
			out = append(out, inject.Bytes()...)
			out = append(out, tmpl[idx:]...)
			return out, nil
		}
	}

	out := make([]byte, 0, len(tmpl)+inject.Len())
	out = append(out, tmpl...)
	return append(out, inject.Bytes()...), nil
}
