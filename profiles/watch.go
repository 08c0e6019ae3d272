package profiles

import (
	"errors"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrNoDir is returned by Store.Watch when the store has no disk override.
var ErrNoDir = errors.New("profiles: store has no directory to watch")

const debounce = 100 * time.Millisecond

// ChangeKind says which part of the store a changed file belongs to.
type ChangeKind int

const (
	ChangeProfile ChangeKind = iota
	ChangeScript
	ChangeTrace
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeScript:
		return "script"
	case ChangeTrace:
		return "trace"
	}
	return "profile"
}

// Change is one file the store would now read differently. Name is relative
// to the store, e.g. "platformer.yaml" or "scripts/double_tap.tengo".
type Change struct {
	Name    string
	Kind    ChangeKind
	Removed bool
}

// Affects reports whether a pipeline built from profile should be rebuilt.
// Scripts are resolved by file name at build time, so any script counts.
func (c Change) Affects(profile string) bool {
	switch c.Kind {
	case ChangeScript:
		return true
	case ChangeProfile:
		return c.Name == cleanPath(profile)
	}
	return false
}

// Watcher delivers Changes for a store's directory, dropping repeats of the
// same file within the debounce window.
type Watcher struct {
	store   *Store
	fs      *fsnotify.Watcher
	Changes chan Change
	Errors  chan error
	closeCh chan struct{}
	once    sync.Once
}

// Watch follows Dir along with its scripts/ and traces/ directories when
// they exist.
func (s *Store) Watch() (*Watcher, error) {
	if s == nil || s.Dir == "" {
		return nil, ErrNoDir
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(s.Dir); err != nil {
		_ = fw.Close()
		return nil, err
	}
	for _, sub := range []string{"scripts", "traces"} {
		dir := filepath.Join(s.Dir, sub)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}

	w := &Watcher{
		store:   s,
		fs:      fw,
		Changes: make(chan Change, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
	}
	go w.run()
	s.logger().Debug("profiles: watching", "dir", s.Dir)
	return w, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.fs.Close()
	})
	return err
}

// Drain hands every pending change and error to the callbacks without
// blocking. It returns false once the watcher has shut down, after which it
// must not be polled again.
func (w *Watcher) Drain(onChange func(Change), onError func(error)) bool {
	for {
		select {
		case c, ok := <-w.Changes:
			if !ok {
				return false
			}
			if onChange != nil {
				onChange(c)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return false
			}
			if onError != nil {
				onError(err)
			}
		default:
			return true
		}
	}
}

func (w *Watcher) run() {
	defer close(w.Changes)
	defer close(w.Errors)

	last := make(map[string]time.Time)
	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			c, ok := w.store.classify(event.Name)
			if !ok {
				continue
			}
			c.Removed = event.Op&(fsnotify.Rename|fsnotify.Remove) != 0
			now := time.Now()
			if t, seen := last[c.Name]; seen && now.Sub(t) < debounce && !c.Removed {
				continue
			}
			last[c.Name] = now
			select {
			case w.Changes <- c:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

// classify maps a path under Dir to the store entry it would shadow.
func (s *Store) classify(file string) (Change, bool) {
	rel, err := filepath.Rel(s.Dir, file)
	if err != nil || strings.HasPrefix(rel, "..") {
		return Change{}, false
	}
	name := filepath.ToSlash(rel)
	dir, base := path.Split(name)
	switch dir {
	case "":
		if _, ok := profileFormat(base); ok {
			return Change{Name: name, Kind: ChangeProfile}, true
		}
	case "scripts/":
		if strings.EqualFold(path.Ext(base), scriptExt) {
			return Change{Name: name, Kind: ChangeScript}, true
		}
	case "traces/":
		if f, ok := profileFormat(base); ok && f == YAML {
			return Change{Name: name, Kind: ChangeTrace}, true
		}
	}
	return Change{}, false
}
