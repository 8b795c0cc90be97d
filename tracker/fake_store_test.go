package tracker

import (
	"context"
	"slices"
	"sync"

	"prism-tracker/domain"
	"prism-tracker/storage"
)

type fakeStore struct {
	mu      sync.Mutex
	initial storage.Snapshot
	saved   []storage.Snapshot
	saveErr error
}

func (f *fakeStore) Load(ctx context.Context) storage.Snapshot {
	snap := f.initial
	if snap.Tasks == nil {
		snap.Tasks = []domain.Task{}
	}
	if snap.Notes == nil {
		snap.Notes = []domain.Note{}
	}
	if snap.Goals == nil {
		snap.Goals = []domain.Goal{}
	}
	return snap
}

func (f *fakeStore) Save(ctx context.Context, snap storage.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, storage.Snapshot{
		Tasks: slices.Clone(snap.Tasks),
		Notes: slices.Clone(snap.Notes),
		Goals: slices.Clone(snap.Goals),
	})
	return f.saveErr
}

func (f *fakeStore) saves() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

func (f *fakeStore) last() storage.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saved[len(f.saved)-1]
}
