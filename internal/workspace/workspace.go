// Package workspace ties the board to durable storage: it loads the persisted
// state, saves it after changes and handles backup files.
package workspace

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"weekplan/internal/autosave"
	"weekplan/internal/board"
	"weekplan/internal/config"
	"weekplan/internal/pool"
	"weekplan/internal/snapshot"
	"weekplan/internal/storage"
	"weekplan/internal/week"
)

// Store is the key-value gateway the workspace persists through.
type Store interface {
	Get(key string) ([]byte, bool, error)
	SetAll(values map[string][]byte) error
	UpdatedAt(key string) (time.Time, bool, error)
}

type Options struct {
	Now           func() time.Time
	DailyCapacity int
	SaveDelay     time.Duration
	DefaultTheme  string
}

type Workspace struct {
	store     Store
	board     *board.Board
	saver     *autosave.Saver
	now       func() time.Time
	recovered error

	mu    sync.Mutex
	theme string
}

// Load reads the persisted state. Stored data that fails validation is
// replaced by the default state as a whole; Recovered reports why.
func Load(store Store, opts Options) (*Workspace, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	state, err := readState(store)
	var recovered error
	switch {
	case errors.Is(err, snapshot.ErrInvalid):
		log.Printf("[workspace] discarding stored state: %v", err)
		state, recovered = snapshot.Default(opts.Now()), err
	case err != nil:
		return nil, err
	}

	w := &Workspace{
		store:     store,
		now:       opts.Now,
		recovered: recovered,
		theme:     loadTheme(store, opts.DefaultTheme),
	}
	w.board = board.New(
		pool.New(state.TodoPool...),
		week.RepositoryFrom(state.AllWeeks),
		board.Options{Now: opts.Now, DailyCapacity: opts.DailyCapacity},
	)
	w.saver = autosave.New(opts.SaveDelay, w.Save)
	w.board.Subscribe(func(board.Change) { w.saver.Schedule() })
	return w, nil
}

// readState decodes the persisted pool and weeks. A missing pool means a
// fresh planner and gets the seed backlog.
func readState(store Store) (snapshot.State, error) {
	poolData, havePool, err := store.Get(storage.KeyPool)
	if err != nil {
		return snapshot.State{}, fmt.Errorf("load pool: %w", err)
	}
	weekData, haveWeeks, err := store.Get(storage.KeyWeeks)
	if err != nil {
		return snapshot.State{}, fmt.Errorf("load weeks: %w", err)
	}

	state := snapshot.State{TodoPool: snapshot.Seed(), AllWeeks: map[week.Key]week.Week{}}
	if havePool {
		if state.TodoPool, err = snapshot.DecodePool(poolData); err != nil {
			return snapshot.State{}, fmt.Errorf("stored pool: %w", err)
		}
	}
	if haveWeeks {
		if state.AllWeeks, err = snapshot.DecodeWeeks(weekData); err != nil {
			return snapshot.State{}, fmt.Errorf("stored weeks: %w", err)
		}
	}
	if err := state.Validate(); err != nil {
		return snapshot.State{}, fmt.Errorf("stored state: %w", err)
	}
	return state, nil
}

func loadTheme(store Store, fallback string) string {
	if fallback == "" {
		fallback = config.ThemeBlue
	}
	data, ok, err := store.Get(storage.KeyTheme)
	if err != nil || !ok {
		return fallback
	}
	var theme string
	if err := json.Unmarshal(data, &theme); err != nil || !validTheme(theme) {
		log.Printf("[workspace] ignoring stored theme %q", data)
		return fallback
	}
	return theme
}

func validTheme(t string) bool {
	return t == config.ThemeBlue || t == config.ThemeDark
}

func (w *Workspace) Board() *board.Board {
	return w.board
}

// Recovered is the validation error that made Load fall back to defaults.
func (w *Workspace) Recovered() error {
	return w.recovered
}

// Save writes pool and weeks together.
func (w *Workspace) Save() error {
	tasks, weeks := w.board.Snapshot()
	poolData, err := snapshot.EncodePool(tasks)
	if err != nil {
		return fmt.Errorf("encode pool: %w", err)
	}
	weekData, err := snapshot.EncodeWeeks(weeks)
	if err != nil {
		return fmt.Errorf("encode weeks: %w", err)
	}
	if err := w.store.SetAll(map[string][]byte{
		storage.KeyPool:  poolData,
		storage.KeyWeeks: weekData,
	}); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// Flush writes any pending change now.
func (w *Workspace) Flush() error {
	return w.saver.Flush()
}

// Unsaved reports changes still waiting for the debounced save.
func (w *Workspace) Unsaved() bool {
	return w.saver.Pending()
}

// LastSaved is when the planner state was last written.
func (w *Workspace) LastSaved() (time.Time, bool) {
	t, ok, err := w.store.UpdatedAt(storage.KeyPool)
	if err != nil {
		log.Printf("[workspace] read save time: %v", err)
		return time.Time{}, false
	}
	return t, ok
}

// Close flushes pending changes. The store stays open; its owner closes it.
func (w *Workspace) Close() error {
	return w.saver.Stop()
}

// Export writes every week and the pool to path. An empty path or a
// directory gets the dated default file name.
func (w *Workspace) Export(path string) (string, error) {
	name := snapshot.BackupName(w.now())
	if path == "" {
		path = name
	} else if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, name)
	}
	tasks, weeks := w.board.Snapshot()
	if err := snapshot.WriteFile(path, snapshot.State{AllWeeks: weeks, TodoPool: tasks}); err != nil {
		return "", err
	}
	return path, nil
}

// Import replaces the whole state with the file's content and returns to the
// current week. A file that fails validation changes nothing.
func (w *Workspace) Import(path string) error {
	state, err := snapshot.ReadFile(path)
	if err != nil {
		return err
	}
	w.board.Replace(state.TodoPool, state.AllWeeks)
	return nil
}

func (w *Workspace) Theme() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.theme
}

func (w *Workspace) SetTheme(theme string) error {
	if !validTheme(theme) {
		return fmt.Errorf("unknown theme %q", theme)
	}
	data, err := json.Marshal(theme)
	if err != nil {
		return err
	}
	if err := w.store.SetAll(map[string][]byte{storage.KeyTheme: data}); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	w.mu.Lock()
	w.theme = theme
	w.mu.Unlock()
	return nil
}

// ToggleTheme switches between blue and dark.
func (w *Workspace) ToggleTheme() (string, error) {
	next := config.ThemeDark
	if w.Theme() == config.ThemeDark {
		next = config.ThemeBlue
	}
	if err := w.SetTheme(next); err != nil {
		return w.Theme(), err
	}
	return next, nil
}
