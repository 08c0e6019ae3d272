package profiles

import (
	"embed"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

//go:embed defaults/*.yaml defaults/*.toml defaults/scripts/*.tengo defaults/traces/*.yaml
var DefaultsFS embed.FS

// Store loads profile files from Dir, falling back to the embedded defaults.
type Store struct {
	// Dir is checked first; empty disables the disk override.
	Dir    string
	Logger *slog.Logger
}

// NewStore returns a store overriding the defaults with files under dir.
func NewStore(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{Dir: dir, Logger: logger}
}

func (s *Store) logger() *slog.Logger {
	if s == nil || s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}

func (s *Store) Load(name string) ([]byte, error) {
	clean := cleanPath(name)
	if s != nil && s.Dir != "" {
		if data, err := os.ReadFile(s.diskPath(clean)); err == nil {
			return data, nil
		}
	}
	return DefaultsFS.ReadFile(path.Join("defaults", clean))
}

func (s *Store) LoadScript(name string) ([]byte, error) {
	return s.Load(cleanScriptPath(name))
}

func (s *Store) ModTime(name string) (time.Time, bool) {
	if s == nil || s.Dir == "" {
		return time.Time{}, false
	}
	info, err := os.Stat(s.diskPath(cleanPath(name)))
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// List returns the profile names available on disk or embedded, sorted.
func (s *Store) List() []string {
	seen := make(map[string]struct{})
	entries, _ := fs.ReadDir(DefaultsFS, "defaults")
	for _, e := range entries {
		if !e.IsDir() && isProfile(e.Name()) {
			seen[e.Name()] = struct{}{}
		}
	}
	if s != nil && s.Dir != "" {
		if entries, err := os.ReadDir(s.Dir); err == nil {
			for _, e := range entries {
				if !e.IsDir() && isProfile(e.Name()) {
					seen[e.Name()] = struct{}{}
				}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

func (s *Store) diskPath(clean string) string {
	return filepath.Join(s.Dir, filepath.FromSlash(clean))
}

func cleanPath(p string) string {
	if p == "" {
		return ""
	}
	s := filepath.ToSlash(p)
	if after, ok := strings.CutPrefix(s, "profiles/"); ok {
		s = after
	}
	if after, ok := strings.CutPrefix(s, "defaults/"); ok {
		s = after
	}
	return s
}

func cleanScriptPath(p string) string {
	s := cleanPath(p)
	if after, ok := strings.CutPrefix(s, "scripts/"); ok {
		s = after
	}
	return "scripts/" + s
}

func isProfile(name string) bool {
	_, ok := profileFormat(name)
	return ok
}
