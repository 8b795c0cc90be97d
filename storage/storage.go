package storage

import (
	"context"
	"errors"

	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"

	"prism-tracker/domain"
)

// DefaultKeyPrefix matches the key names used by the browser version of the tracker.
const DefaultKeyPrefix = "productivity_"

var codec = sonic.ConfigStd

// Snapshot holds the three collections exactly as persisted.
type Snapshot struct {
	Tasks []domain.Task `json:"tasks"`
	Notes []domain.Note `json:"notes"`
	Goals []domain.Goal `json:"goals"`
}

// Keys names the substrate entries holding each collection.
type Keys struct {
	Tasks string
	Notes string
	Goals string
}

// KeysFor derives the collection keys from prefix.
func KeysFor(prefix string) Keys {
	return Keys{Tasks: prefix + "todos", Notes: prefix + "notes", Goals: prefix + "goals"}
}

// Storage serializes collections to and from a Substrate.
type Storage struct {
	sub    Substrate
	keys   Keys
	logger *log.Logger
}

// New creates a Storage writing under the keys derived from prefix.
func New(sub Substrate, prefix string, logger *log.Logger) *Storage {
	if sub == nil {
		panic("storage.New: substrate is nil")
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Storage{sub: sub, keys: KeysFor(prefix), logger: logger}
}

func (s *Storage) Keys() Keys { return s.keys }

// Load reads all collections. A missing, unreadable or malformed entry yields
// an empty collection; Load itself never fails.
func (s *Storage) Load(ctx context.Context) Snapshot {
	return Snapshot{
		Tasks: loadCollection[domain.Task](ctx, s, s.keys.Tasks),
		Notes: loadCollection[domain.Note](ctx, s, s.keys.Notes),
		Goals: loadCollection[domain.Goal](ctx, s, s.keys.Goals, s.warnDroppedDeadlines),
	}
}

func loadCollection[T any](ctx context.Context, s *Storage, key string, inspect ...func(key string, data []byte)) []T {
	data, err := s.sub.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.WithError(&domain.PersistenceError{Op: "load", Key: key, Err: err}).
				Warn("unable to read collection, starting empty")
		}
		return []T{}
	}
	var items []T
	if err := codec.Unmarshal(data, &items); err != nil {
		s.logger.WithError(&domain.PersistenceError{Op: "decode", Key: key, Err: err}).
			Warn("malformed collection, starting empty")
		return []T{}
	}
	if items == nil {
		items = []T{}
	}
	for _, fn := range inspect {
		fn(key, data)
	}
	s.logger.WithFields(log.Fields{"key": key, "count": len(items)}).Debug("collection loaded")
	return items
}

// warnDroppedDeadlines logs goals whose stored deadline could not be parsed
// and was loaded as "no deadline".
func (s *Storage) warnDroppedDeadlines(key string, data []byte) {
	var stored []struct {
		ID       any `json:"id"`
		Deadline any `json:"deadline"`
	}
	if err := codec.Unmarshal(data, &stored); err != nil {
		return
	}
	for _, g := range stored {
		if g.Deadline == nil {
			continue
		}
		if raw, ok := g.Deadline.(string); ok && domain.IsStoredDate(raw) {
			continue
		}
		s.logger.WithFields(log.Fields{
			"key":      key,
			"goal":     g.ID,
			"deadline": g.Deadline,
		}).Warn("unparseable goal deadline, loading without deadline")
	}
}

// Save writes every collection. Each failed key contributes a
// *domain.PersistenceError to the joined result; successful keys stay written.
func (s *Storage) Save(ctx context.Context, snap Snapshot) error {
	return errors.Join(
		s.put(ctx, s.keys.Tasks, orEmpty(snap.Tasks)),
		s.put(ctx, s.keys.Notes, orEmpty(snap.Notes)),
		s.put(ctx, s.keys.Goals, orEmpty(snap.Goals)),
	)
}

func (s *Storage) put(ctx context.Context, key string, v any) error {
	data, err := codec.Marshal(v)
	if err != nil {
		return &domain.PersistenceError{Op: "encode", Key: key, Err: err}
	}
	if err := s.sub.Set(ctx, key, data); err != nil {
		return &domain.PersistenceError{Op: "save", Key: key, Err: err}
	}
	return nil
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
