package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sam-maryland/league-sim-mcp-server/internal/league"
	"github.com/sirupsen/logrus"
)

const maxLeagueNameLength = 64

// Entry is a stored league with its metadata
type Entry struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	League    *league.League `json:"league"`
}

// Repository owns league snapshots. Mutations of one league are serialized, and
// every read decodes a fresh copy so callers never share state.
type Repository struct {
	store  Store
	logger *logrus.Logger
	now    func() time.Time

	mu    sync.Mutex
	locks map[string]*leagueLock
}

// leagueLock is held in the lock table only while some caller uses it
type leagueLock struct {
	sync.Mutex
	refs int
}

func NewRepository(store Store, logger *logrus.Logger) *Repository {
	return &Repository{
		store:  store,
		logger: logger,
		now:    time.Now,
		locks:  make(map[string]*leagueLock),
	}
}

func (r *Repository) lock(id string) func() {
	r.mu.Lock()
	l, ok := r.locks[id]
	if !ok {
		l = &leagueLock{}
		r.locks[id] = l
	}
	l.refs++
	r.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		r.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(r.locks, id)
		}
		r.mu.Unlock()
	}
}

// Create stores a new league under a fresh ID
func (r *Repository) Create(ctx context.Context, name string, l *league.League) (*Entry, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxLeagueNameLength {
		return nil, fmt.Errorf("%w: must be 1 to %d characters", ErrInvalidName, maxLeagueNameLength)
	}
	if l == nil {
		l = league.NewLeague()
	}

	now := r.now().UTC()
	entry := &Entry{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
		League:    l,
	}
	if err := r.save(ctx, entry); err != nil {
		return nil, err
	}

	r.logger.WithFields(logrus.Fields{
		"league_id": entry.ID,
		"name":      entry.Name,
	}).Info("Created league")
	return entry, nil
}

// Get returns a private copy of a stored league
func (r *Repository) Get(ctx context.Context, id string) (*Entry, error) {
	if err := uuid.Validate(id); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	data, err := r.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to decode league %s: %w", id, err)
	}
	if entry.League == nil {
		entry.League = league.NewLeague()
	}
	return &entry, nil
}

// List returns every stored league, oldest first. Unreadable snapshots are logged and skipped.
func (r *Repository) List(ctx context.Context) ([]*Entry, error) {
	ids, err := r.store.List(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]*Entry, 0, len(ids))
	for _, id := range ids {
		entry, err := r.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			r.logger.WithError(err).WithField("league_id", id).Warn("Skipping unreadable league")
			continue
		}
		entries = append(entries, entry)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries, nil
}

// IDs returns every stored league ID
func (r *Repository) IDs(ctx context.Context) ([]string, error) {
	return r.store.List(ctx)
}

// Update applies fn to a private copy of the league and stores the result only
// when fn succeeds. Concurrent updates of the same league run one at a time.
func (r *Repository) Update(ctx context.Context, id string, fn func(*Entry) error) (*Entry, error) {
	unlock := r.lock(id)
	defer unlock()

	entry, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(entry); err != nil {
		return nil, err
	}
	entry.UpdatedAt = r.now().UTC()
	if err := r.save(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := uuid.Validate(id); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	unlock := r.lock(id)
	defer unlock()

	if err := r.store.Delete(ctx, id); err != nil {
		return err
	}
	r.logger.WithField("league_id", id).Info("Deleted league")
	return nil
}

func (r *Repository) save(ctx context.Context, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode league %s: %w", entry.ID, err)
	}
	return r.store.Save(ctx, entry.ID, data)
}
