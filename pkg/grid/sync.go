package grid

import (
	"context"

	"github.com/presu/presu/pkg/moneyfmt"
	log "github.com/sirupsen/logrus"
)

// CellState tracks a cell through one edit cycle.
type CellState string

const (
	StateCommitted CellState = "committed"
	StateEditing   CellState = "editing"
	StateSaving    CellState = "saving"
	// StateReloaded marks a cell whose save was rejected; its value was rolled
	// back and the grid reloaded from the store.
	StateReloaded CellState = "reloaded"
)

// CellStore persists one cell. Save must insert when the cell does not exist
// yet and update in place otherwise.
type CellStore interface {
	Save(ctx context.Context, key CellKey, value float64) error
	Delete(ctx context.Context, key CellKey) error
}

// ReloadFunc replaces the grid's committed values with the store's current
// state after a failed write.
type ReloadFunc func(ctx context.Context) error

// Sync couples a Grid to its backing store with optimistic writes: the local
// value and totals change immediately, the remote write follows, and a
// rejection rolls the cell back and reloads the whole grid.
type Sync struct {
	grid   *Grid
	store  CellStore
	reload ReloadFunc
}

func NewSync(grid *Grid, store CellStore, reload ReloadFunc) *Sync {
	return &Sync{grid: grid, store: store, reload: reload}
}

// Grid returns the synchronized grid.
func (s *Sync) Grid() *Grid {
	return s.grid
}

// BeginEdit puts a cell into the editing state, seeding the overlay with the
// committed value's display text.
func (s *Sync) BeginEdit(key CellKey) {
	s.grid.overlay[key] = moneyfmt.FormatForDisplay(s.grid.Value(key))
	s.grid.states[key] = StateEditing
}

// Keystroke replaces the cell's overlay with the normalized keystroke buffer.
func (s *Sync) Keystroke(key CellKey, raw string) {
	s.grid.overlay[key] = moneyfmt.FormatWhileTyping(raw)
	s.grid.states[key] = StateEditing
}

// State returns the cell's current edit state.
func (s *Sync) State(key CellKey) CellState {
	if state, ok := s.grid.states[key]; ok {
		return state
	}
	return StateCommitted
}

// CommitEdit ends an edit (blur): the overlay text is parsed, the local value
// is updated optimistically and the remote write is issued. A committed zero
// deletes the remote row, keeping the table sparse. On rejection the local
// value is rolled back, the grid reloaded and the error returned exactly once.
func (s *Sync) CommitEdit(ctx context.Context, key CellKey) error {
	raw, editing := s.grid.overlay[key]
	if !editing {
		return nil
	}

	value := moneyfmt.ParseNumber(raw)
	prev := s.grid.Value(key)
	existed := s.grid.Exists(key)
	retain := s.grid.retainOverlay(key.Row)

	mutate := func() {
		s.grid.SetCommitted(key, value)
		s.grid.states[key] = StateSaving
		if !retain {
			delete(s.grid.overlay, key)
		}
	}
	commit := func(ctx context.Context) error {
		switch {
		case value == 0 && !existed:
			// cell was never stored; nothing to write
			return nil
		case value == 0:
			return s.store.Delete(ctx, key)
		default:
			return s.store.Save(ctx, key, value)
		}
	}
	rollback := func() {
		// prev == 0 means the cell did not exist; SetCommitted removes it again
		s.grid.SetCommitted(key, prev)
	}

	err := ApplyOptimistic(ctx, mutate, commit, rollback, s.reload)
	if err != nil {
		delete(s.grid.overlay, key)
		s.grid.states[key] = StateReloaded
		return err
	}
	if retain && s.reload != nil {
		// later columns derive from this cell; the raw text stays visible
		// until the refreshed values are in place
		if rerr := s.reload(ctx); rerr != nil {
			log.Errorf("could not reload grid after save: %v", rerr)
		}
	}
	delete(s.grid.overlay, key)
	s.grid.states[key] = StateCommitted
	return nil
}

// ApplyOptimistic runs the optimistic-update protocol used for every cell
// edit: mutate local state, issue the remote write, and on rejection undo the
// local mutation and reload from the store so no total stays inconsistent for
// longer than one reload cycle.
func ApplyOptimistic(ctx context.Context, mutate func(), commit func(context.Context) error, rollback func(), reload ReloadFunc) error {
	mutate()
	if err := commit(ctx); err != nil {
		rollback()
		if reload != nil {
			if rerr := reload(ctx); rerr != nil {
				log.Errorf("could not reload state after rejected write: %v", rerr)
			}
		}
		return err
	}
	return nil
}
