// Package clientenv collects the environment variables exposed to the
// dashboard's client code.
//
// Only variables whose name starts with one of the configured prefixes are
// exposed. Values come from, lowest to highest priority:
//
//	.env
//	.env.local
//	.env.<mode>
//	.env.<mode>.local
//	the process environment
//
// MODE, DEV and PROD are always present.
package clientenv

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"

	"github.com/ledgerdash/ledgerdash/internal/errors"
)

// GlobalName is the window property the client reads the variables from.
const GlobalName = "__LEDGERDASH_ENV__"

// Options configures Collect.
type Options struct {
	// Dir is the directory holding the .env files.
	Dir string

	// Mode selects the .env.<mode> files.
	Mode string

	// Prefixes lists the allowed variable name prefixes.
	Prefixes []string

	// Environ is the process environment in os.Environ form.
	// Nil means os.Environ().
	Environ []string
}

// Env is an immutable set of client-visible variables.
type Env struct {
	mode   string
	vars   map[string]string
	source map[string]string
}

// Files returns the .env file names read for mode, lowest priority first.
func Files(mode string) []string {
	return []string{
		".env",
		".env.local",
		".env." + mode,
		".env." + mode + ".local",
	}
}

// Collect reads the .env files and the process environment and keeps the
// variables with an allowed prefix. Missing files are skipped.
func Collect(opts Options) (Env, error) {
	for _, prefix := range opts.Prefixes {
		if prefix == "" {
			return Env{}, errors.New("E103").
				WithSuggestion(`Use a prefix such as "VITE_"`)
		}
	}

	e := Env{
		mode:   opts.Mode,
		vars:   make(map[string]string),
		source: make(map[string]string),
	}

	for _, name := range Files(opts.Mode) {
		path := filepath.Join(opts.Dir, name)
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return Env{}, errors.New("E303").WithDetail(err.Error()).Wrap(err)
		}

		values, err := godotenv.Read(path)
		if err != nil {
			return Env{}, errors.New("E303").
				WithDetail(name + ": " + err.Error()).
				WithSuggestion("Each line must be KEY=value").
				Wrap(err)
		}
		e.merge(values, name, opts.Prefixes)
	}

	environ := opts.Environ
	if environ == nil {
		environ = os.Environ()
	}
	process := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			process[k] = v
		}
	}
	e.merge(process, "environment", opts.Prefixes)

	return e, nil
}

func (e *Env) merge(values map[string]string, source string, prefixes []string) {
	for k, v := range values {
		if !allowed(k, prefixes) {
			continue
		}
		e.vars[k] = v
		e.source[k] = source
	}
}

func allowed(key string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

// Mode returns the mode the variables were collected for.
func (e Env) Mode() string {
	return e.mode
}

// Get returns a collected variable.
func (e Env) Get(key string) (string, bool) {
	v, ok := e.vars[key]
	return v, ok
}

// Source returns where a variable's value came from: a .env file name or
// "environment".
func (e Env) Source(key string) string {
	return e.source[key]
}

// Keys returns the collected variable names, sorted. The built-in MODE, DEV
// and PROD are not included.
func (e Env) Keys() []string {
	keys := make([]string, 0, len(e.vars))
	for k := range e.vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of collected variables.
func (e Env) Len() int {
	return len(e.vars)
}

// Values returns the object handed to the client: the collected variables
// plus MODE, DEV and PROD.
func (e Env) Values() map[string]any {
	out := make(map[string]any, len(e.vars)+3)
	for k, v := range e.vars {
		out[k] = v
	}
	prod := e.mode == "production"
	out["MODE"] = e.mode
	out["DEV"] = !prod
	out["PROD"] = prod
	return out
}

// JSON returns Values encoded as JSON. HTML special characters are escaped,
// so the result is safe inside a <script> element.
func (e Env) JSON() ([]byte, error) {
	return json.Marshal(e.Values())
}

// Script returns an inline script assigning the variables to
// window.__LEDGERDASH_ENV__.
func (e Env) Script() (string, error) {
	data, err := e.JSON()
	if err != nil {
		return "", err
	}
	return "<script>window." + GlobalName + "=" + string(data) + ";</script>", nil
}
