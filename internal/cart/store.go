package cart

import (
	"context"
	"errors"
	"sync"

	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/models"
	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/repository"
	"go.uber.org/zap"
)

// Store is the process-wide cart container. It owns the current State and
// serializes transitions; subscribers are called after each transition with
// the new snapshot, outside the lock.
type Store struct {
	mu     sync.RWMutex
	state  State
	subs   map[int]func(State)
	nextID int

	repo   repository.CartRepository
	owner  string
	saveMu sync.Mutex
	log    *zap.Logger
}

type Option func(*Store)

// WithRepository persists the cart under owner after every change.
func WithRepository(repo repository.CartRepository, owner string) Option {
	return func(s *Store) {
		s.repo = repo
		s.owner = owner
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(s *Store) {
		s.log = log
	}
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		state: NewState(),
		subs:  make(map[int]func(State)),
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore loads the persisted snapshot, if any.
func (s *Store) Restore(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	items, err := s.repo.Load(ctx, s.owner)
	if errors.Is(err, repository.ErrCartNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	s.apply(ctx, func(State) (State, error) { return NewState(items...), nil }, false)
	return nil
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers fn for future transitions and returns a function that
// removes it.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) Add(ctx context.Context, item models.CartLineItem) (State, error) {
	return s.apply(ctx, func(st State) (State, error) { return Add(st, item) }, true)
}

func (s *Store) UpdateQuantity(ctx context.Context, dishID string, selection []models.SelectedOption, quantity int) (State, error) {
	return s.apply(ctx, func(st State) (State, error) {
		return UpdateQuantity(st, dishID, selection, quantity)
	}, true)
}

func (s *Store) Remove(ctx context.Context, dishID string, selection []models.SelectedOption) State {
	st, _ := s.apply(ctx, func(st State) (State, error) { return Remove(st, dishID, selection), nil }, true)
	return st
}

func (s *Store) Clear(ctx context.Context) State {
	st, _ := s.apply(ctx, func(st State) (State, error) { return Clear(st), nil }, true)
	return st
}

func (s *Store) apply(ctx context.Context, transition func(State) (State, error), persist bool) (State, error) {
	s.mu.Lock()
	next, err := transition(s.state)
	s.state = next
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}

	if err == nil && persist {
		s.save(ctx)
	}
	return next, err
}

// save writes the latest snapshot, not the one a caller produced, so that
// concurrent transitions cannot persist out of order.
func (s *Store) save(ctx context.Context) {
	if s.repo == nil {
		return
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	st := s.Snapshot()
	var err error
	if st.IsEmpty() {
		err = s.repo.Delete(ctx, s.owner)
	} else {
		err = s.repo.Save(ctx, s.owner, st.Items())
	}
	if err != nil {
		// the in-memory cart stays authoritative
		s.log.Warn("failed to persist cart", zap.String("owner", s.owner), zap.Error(err))
	}
}
