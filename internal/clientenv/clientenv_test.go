package clientenv

import (
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ledgerdash/ledgerdash/internal/errors"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestCollectPrecedence(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "VITE_API=base\nVITE_TITLE=Ledger\nSECRET_KEY=hunter2\n")
	writeFile(t, dir, ".env.local", "VITE_API=local\n")
	writeFile(t, dir, ".env.development", "VITE_API=dev\nTAURI_PLATFORM=linux\n")
	writeFile(t, dir, ".env.development.local", "VITE_API=dev-local\n")
	writeFile(t, dir, ".env.production", "VITE_API=prod\n")

	env, err := Collect(Options{
		Dir:      dir,
		Mode:     "development",
		Prefixes: []string{"VITE_", "TAURI_"},
		Environ:  []string{"TAURI_DEBUG=true", "HOME=/root", "DATABASE_URL=postgres://x"},
	})
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}

	want := []string{"TAURI_DEBUG", "TAURI_PLATFORM", "VITE_API", "VITE_TITLE"}
	if !reflect.DeepEqual(env.Keys(), want) {
		t.Errorf("Keys() = %v, want %v", env.Keys(), want)
	}

	if v, _ := env.Get("VITE_API"); v != "dev-local" {
		t.Errorf("VITE_API = %q, want dev-local", v)
	}
	if env.Source("VITE_API") != ".env.development.local" {
		t.Errorf("Source(VITE_API) = %q", env.Source("VITE_API"))
	}
	if env.Source("TAURI_DEBUG") != "environment" {
		t.Errorf("Source(TAURI_DEBUG) = %q", env.Source("TAURI_DEBUG"))
	}
	for _, hidden := range []string{"SECRET_KEY", "HOME", "DATABASE_URL"} {
		if _, ok := env.Get(hidden); ok {
			t.Errorf("%s should not be exposed", hidden)
		}
	}
}

func TestCollectProcessEnvWins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "VITE_API=file\n")

	env, err := Collect(Options{
		Dir:      dir,
		Mode:     "development",
		Prefixes: []string{"VITE_"},
		Environ:  []string{"VITE_API=process=with=equals"},
	})
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	if v, _ := env.Get("VITE_API"); v != "process=with=equals" {
		t.Errorf("VITE_API = %q", v)
	}
}

func TestCollectNoFiles(t *testing.T) {
	env, err := Collect(Options{
		Dir:      t.TempDir(),
		Mode:     "production",
		Prefixes: []string{"VITE_"},
		Environ:  []string{},
	})
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	if env.Len() != 0 {
		t.Errorf("Len() = %d, want 0", env.Len())
	}

	values := env.Values()
	if values["MODE"] != "production" || values["PROD"] != true || values["DEV"] != false {
		t.Errorf("Values() = %v", values)
	}
}

func TestCollectNoPrefixes(t *testing.T) {
	env, err := Collect(Options{Dir: t.TempDir(), Mode: "development", Environ: []string{"VITE_X=1"}})
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	if env.Len() != 0 {
		t.Errorf("without prefixes nothing should be exposed, got %v", env.Keys())
	}
}

func TestCollectEmptyPrefix(t *testing.T) {
	_, err := Collect(Options{Prefixes: []string{"VITE_", ""}})
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Code != "E103" {
		t.Errorf("Collect() error = %v, want E103", err)
	}
}

func TestCollectInvalidFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "VITE_OK=1\nVITE-BAD=1\n")

	_, err := Collect(Options{Dir: dir, Mode: "development", Prefixes: []string{"VITE_"}, Environ: []string{}})
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Code != "E303" {
		t.Errorf("Collect() error = %v, want E303", err)
	}
}

func TestScript(t *testing.T) {
	env, err := Collect(Options{
		Dir:      t.TempDir(),
		Mode:     "development",
		Prefixes: []string{"VITE_"},
		Environ:  []string{"VITE_BANNER=</script><script>alert(1)</script>"},
	})
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}

	script, err := env.Script()
	if err != nil {
		t.Fatalf("Script() error: %v", err)
	}
	if !strings.HasPrefix(script, "<script>window.__LEDGERDASH_ENV__={") {
		t.Errorf("Script() = %q", script)
	}
	if strings.Count(script, "</script>") != 1 {
		t.Errorf("Script() should escape embedded closing tags: %q", script)
	}

	data, err := env.JSON()
	if err != nil {
		t.Fatalf("JSON() error: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("JSON() is invalid: %v", err)
	}
	if decoded["VITE_BANNER"] != "</script><script>alert(1)</script>" {
		t.Errorf("VITE_BANNER = %v", decoded["VITE_BANNER"])
	}
	if decoded["DEV"] != true {
		t.Errorf("DEV = %v, want true", decoded["DEV"])
	}
}

func TestFiles(t *testing.T) {
	want := []string{".env", ".env.local", ".env.staging", ".env.staging.local"}
	if got := Files("staging"); !reflect.DeepEqual(got, want) {
		t.Errorf("Files() = %v, want %v", got, want)
	}
}
