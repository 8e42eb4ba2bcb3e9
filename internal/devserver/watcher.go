package devserver

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ChangeType represents the type of file change.
type ChangeType int

const (
	ChangeAsset ChangeType = iota
	ChangeCSS
	ChangeHTML
	ChangeEnv
)

// String returns the change type name.
func (t ChangeType) String() string {
	switch t {
	case ChangeCSS:
		return "css"
	case ChangeHTML:
		return "html"
	case ChangeEnv:
		return "env"
	default:
		return "asset"
	}
}

// Change represents a detected file change.
type Change struct {
	Path string
	Type ChangeType
}

// WatcherConfig configures the file watcher.
type WatcherConfig struct {
	// Paths are the files and directories to watch. Paths that do not
	// exist yet are picked up once they appear.
	Paths []string

	// Ignore patterns to skip (globs).
	Ignore []string

	// Interval is the polling interval.
	Interval time.Duration
}

// DefaultIgnore contains default patterns to ignore.
var DefaultIgnore = []string{
	".git",
	"node_modules",
	"*.map",
	"*.tmp",
	"*.swp",
	"*~",
	".DS_Store",
}

// Watcher polls files for changes.
type Watcher struct {
	config      WatcherConfig
	onChange    func(Change)
	mu          sync.Mutex
	running     bool
	initialized bool
	stopCh      chan struct{}
	timestamps  map[string]time.Time
}

// NewWatcher creates a new file watcher.
func NewWatcher(config WatcherConfig) *Watcher {
	if config.Interval == 0 {
		config.Interval = 100 * time.Millisecond
	}
	if len(config.Ignore) == 0 {
		config.Ignore = DefaultIgnore
	}

	return &Watcher{
		config:     config,
		timestamps: make(map[string]time.Time),
	}
}

// OnChange sets the callback for file changes.
func (w *Watcher) OnChange(fn func(Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start polls until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	stopCh := w.stopCh
	w.mu.Unlock()

	w.scanInitial()

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			w.checkForChanges()
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		close(w.stopCh)
		w.running = false
	}
}

// IsRunning returns whether the watcher is running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// walk calls fn for every non-ignored file under the watched paths.
func (w *Watcher) walk(fn func(p string, info os.FileInfo)) {
	for _, root := range w.config.Paths {
		filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return nil
			}
			if info.IsDir() {
				if p != root && w.shouldIgnore(p) {
					return filepath.SkipDir
				}
				return nil
			}
			if !w.shouldIgnore(p) {
				fn(p, info)
			}
			return nil
		})
	}
}

func (w *Watcher) scanInitial() {
	w.walk(func(p string, info os.FileInfo) {
		w.mu.Lock()
		w.timestamps[p] = info.ModTime()
		w.mu.Unlock()
	})

	w.mu.Lock()
	w.initialized = true
	w.mu.Unlock()
}

// checkForChanges scans for new, modified and deleted files and reports
// the first change of each type.
func (w *Watcher) checkForChanges() {
	w.mu.Lock()
	callback := w.onChange
	w.mu.Unlock()

	if callback == nil {
		return
	}

	var changes []Change
	seen := make(map[string]bool)

	w.walk(func(p string, info os.FileInfo) {
		seen[p] = true

		w.mu.Lock()
		lastMod, exists := w.timestamps[p]
		modTime := info.ModTime()
		if !exists || !modTime.Equal(lastMod) {
			w.timestamps[p] = modTime
			changes = append(changes, Change{Path: p, Type: classifyChange(p)})
		}
		w.mu.Unlock()
	})

	w.mu.Lock()
	for p := range w.timestamps {
		if !seen[p] {
			delete(w.timestamps, p)
			changes = append(changes, Change{Path: p, Type: classifyChange(p)})
		}
	}
	w.mu.Unlock()

	reported := make(map[ChangeType]bool)
	for _, change := range changes {
		if !reported[change.Type] {
			reported[change.Type] = true
			callback(change)
		}
	}
}

// shouldIgnore checks if a path should be ignored.
func (w *Watcher) shouldIgnore(fullPath string) bool {
	name := filepath.Base(fullPath)
	normalized := filepath.ToSlash(fullPath)

	for _, pattern := range w.config.Ignore {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if name == pattern {
			return true
		}

		hasPathSep := strings.Contains(pattern, "/")
		if strings.ContainsAny(pattern, "*?[") {
			target := name
			if hasPathSep {
				target = normalized
			}
			if matched, _ := path.Match(pattern, target); matched {
				return true
			}
			continue
		}

		if hasPathSep {
			if strings.Contains("/"+normalized+"/", "/"+strings.Trim(pattern, "/")+"/") {
				return true
			}
			continue
		}

		for _, part := range strings.Split(normalized, "/") {
			if part == pattern {
				return true
			}
		}
	}

	return false
}

// classifyChange determines the type of change from the file name.
func classifyChange(p string) ChangeType {
	base := filepath.Base(p)
	if base == ".env" || strings.HasPrefix(base, ".env.") {
		return ChangeEnv
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".css":
		return ChangeCSS
	case ".html", ".htm":
		return ChangeHTML
	default:
		return ChangeAsset
	}
}
