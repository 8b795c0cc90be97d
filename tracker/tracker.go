// Package tracker owns the in-memory task, note and goal collections. Every
// write goes through a Tracker method that validates input, mutates memory,
// writes the collections through to storage and broadcasts a change event.
package tracker

import (
	"context"
	"slices"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"prism-tracker/domain"
	"prism-tracker/storage"
)

// Storage persists whole-store snapshots.
type Storage interface {
	Load(ctx context.Context) storage.Snapshot
	Save(ctx context.Context, snap storage.Snapshot) error
}

// Tracker is the single source of truth for all entities. Operations are
// serialized, so each one completes before the next starts.
type Tracker struct {
	mu     sync.Mutex
	store  Storage
	logger *log.Logger
	ids    *domain.IDGenerator
	now    func() time.Time
	broker *broker

	tasks  []domain.Task
	notes  []domain.Note
	goals  []domain.Goal
	filter domain.Filter
	edit   *domain.NoteDraft
}

// New returns an empty Tracker. Call Load before serving any reads.
func New(store Storage, logger *log.Logger) *Tracker {
	if store == nil {
		panic("tracker.New: storage is nil")
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Tracker{
		store:  store,
		logger: logger,
		ids:    domain.NewIDGenerator(),
		now:    time.Now,
		broker: newBroker(),
		tasks:  []domain.Task{},
		notes:  []domain.Note{},
		goals:  []domain.Goal{},
		filter: domain.FilterAll,
	}
}

// Load replaces all collections with the persisted state. Missing or corrupt
// entries load as empty collections, so Load cannot fail.
func (t *Tracker) Load(ctx context.Context) {
	snap := t.store.Load(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.tasks = snap.Tasks
	t.notes = snap.Notes
	t.goals = snap.Goals
	t.edit = nil
	for _, tk := range t.tasks {
		t.ids.Observe(tk.ID)
	}
	for _, n := range t.notes {
		t.ids.Observe(n.ID)
	}
	for _, g := range t.goals {
		t.ids.Observe(g.ID)
	}
	t.logger.WithFields(log.Fields{
		"tasks": len(t.tasks),
		"notes": len(t.notes),
		"goals": len(t.goals),
	}).Info("tracker state loaded")
	t.broker.publish(t.change(domain.StateLoaded, domain.EntityState, 0))
}

// Subscribe registers for change events. Delivery never blocks an operation:
// a subscriber that falls behind misses events and should re-read state. The
// returned func unsubscribes and closes the channel.
func (t *Tracker) Subscribe() (<-chan domain.Change, func()) {
	ch := t.broker.subscribe()
	return ch, func() { t.broker.unsubscribe(ch) }
}

func (t *Tracker) Tasks() []domain.Task {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.tasks)
}

func (t *Tracker) Notes() []domain.Note {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.notes)
}

func (t *Tracker) Goals() []domain.Goal {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.goals)
}

func (t *Tracker) Filter() domain.Filter {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.filter
}

// EditingNote returns the edit buffer when a note is under edit.
func (t *Tracker) EditingNote() (domain.NoteDraft, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.edit == nil {
		return domain.NoteDraft{}, false
	}
	return *t.edit, true
}

// Snapshot copies the persisted part of the state.
func (t *Tracker) Snapshot() storage.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Tracker) snapshotLocked() storage.Snapshot {
	return storage.Snapshot{
		Tasks: slices.Clone(t.tasks),
		Notes: slices.Clone(t.notes),
		Goals: slices.Clone(t.goals),
	}
}

// commitLocked writes the collections through and announces ch. Memory is
// already mutated and stays so when the write fails.
func (t *Tracker) commitLocked(ctx context.Context, ch domain.Change) error {
	err := t.store.Save(ctx, storage.Snapshot{Tasks: t.tasks, Notes: t.notes, Goals: t.goals})
	if err != nil {
		t.logger.WithError(err).WithFields(log.Fields{
			"change": ch.Type,
			"entity": ch.EntityID,
		}).Error("write-through failed, keeping in-memory state")
	}
	t.broker.publish(ch)
	return err
}

func (t *Tracker) change(typ, entity string, id int64) domain.Change {
	return domain.Change{Type: typ, EntityType: entity, EntityID: id, At: t.now().UTC()}
}
