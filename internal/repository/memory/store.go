// Package memory is an in-process implementation of the service
// repositories, used when no DATABASE_URL is configured and in tests.
package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"fxvps/platform/internal/model"

	"github.com/google/uuid"
)

type Store struct {
	mu sync.Mutex

	accounts map[string]model.Account
	txs      []model.Transaction
	plans    map[uuid.UUID]model.VPSPlan
	algos    map[uuid.UUID]model.Algo
	orders   map[uuid.UUID]model.Order
	events   map[string]time.Time
}

func NewStore() *Store {
	return &Store{
		accounts: make(map[string]model.Account),
		plans:    make(map[uuid.UUID]model.VPSPlan),
		algos:    make(map[uuid.UUID]model.Algo),
		orders:   make(map[uuid.UUID]model.Order),
		events:   make(map[string]time.Time),
	}
}

type txKey struct{}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

// lock takes the store mutex unless ctx already holds it through RunAtomic.
func (s *Store) lock(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

type snapshot struct {
	accounts map[string]model.Account
	txs      []model.Transaction
	plans    map[uuid.UUID]model.VPSPlan
	algos    map[uuid.UUID]model.Algo
	orders   map[uuid.UUID]model.Order
	events   map[string]time.Time
}

// RunAtomic holds the store lock for the duration of fn and rolls every
// change back if fn fails.
func (s *Store) RunAtomic(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := snapshot{
		accounts: maps.Clone(s.accounts),
		txs:      slices.Clone(s.txs),
		plans:    maps.Clone(s.plans),
		algos:    maps.Clone(s.algos),
		orders:   maps.Clone(s.orders),
		events:   maps.Clone(s.events),
	}

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.accounts, s.txs, s.plans = snap.accounts, snap.txs, snap.plans
		s.algos, s.orders, s.events = snap.algos, snap.orders, snap.events
		return err
	}
	return nil
}

func (s *Store) LockAccount(ctx context.Context, userID string) error {
	defer s.lock(ctx)()
	if _, ok := s.accounts[userID]; !ok {
		s.accounts[userID] = model.Account{UserID: userID, CreatedAt: time.Now().UTC()}
	}
	return nil
}

func (s *Store) ListTransactions(ctx context.Context, userID string) ([]model.Transaction, error) {
	defer s.lock(ctx)()
	var out []model.Transaction
	for i := len(s.txs) - 1; i >= 0; i-- {
		if s.txs[i].UserID == userID {
			out = append(out, s.txs[i])
		}
	}
	return out, nil
}

func (s *Store) CreateTransaction(ctx context.Context, t *model.Transaction) error {
	defer s.lock(ctx)()
	for _, existing := range s.txs {
		if existing.ID == t.ID {
			return fmt.Errorf("transaction %s already exists", t.ID)
		}
	}
	s.txs = append(s.txs, *t)
	return nil
}

func (s *Store) GetTransactionForUpdate(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	defer s.lock(ctx)()
	for _, t := range s.txs {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("transaction %s: %w", id, model.ErrNotFound)
}

func (s *Store) UpdateTransactionStatus(ctx context.Context, id uuid.UUID, status model.TxStatus, at time.Time) error {
	defer s.lock(ctx)()
	for i := range s.txs {
		if s.txs[i].ID == id {
			s.txs[i].Status = status
			s.txs[i].UpdatedAt = at
			return nil
		}
	}
	return fmt.Errorf("transaction %s: %w", id, model.ErrNotFound)
}

func (s *Store) CreatePlan(ctx context.Context, p *model.VPSPlan) error {
	defer s.lock(ctx)()
	if _, ok := s.plans[p.ID]; ok {
		return fmt.Errorf("plan %s already exists", p.ID)
	}
	s.plans[p.ID] = *p
	return nil
}

func (s *Store) GetPlan(ctx context.Context, id uuid.UUID) (*model.VPSPlan, error) {
	defer s.lock(ctx)()
	p, ok := s.plans[id]
	if !ok {
		return nil, fmt.Errorf("plan %s: %w", id, model.ErrNotFound)
	}
	return &p, nil
}

func (s *Store) GetPlanForUpdate(ctx context.Context, id uuid.UUID) (*model.VPSPlan, error) {
	return s.GetPlan(ctx, id)
}

func (s *Store) ListPlans(ctx context.Context, userID string) ([]model.VPSPlan, error) {
	defer s.lock(ctx)()
	var out []model.VPSPlan
	for _, p := range s.plans {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *Store) ListPlansByStatus(ctx context.Context, status model.VPSStatus) ([]model.VPSPlan, error) {
	defer s.lock(ctx)()
	var out []model.VPSPlan
	for _, p := range s.plans {
		if p.Status == status {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StatusChangedAt.Before(out[j].StatusChangedAt)
	})
	return out, nil
}

func (s *Store) UpdatePlanStatus(ctx context.Context, id uuid.UUID, status model.VPSStatus, at time.Time) error {
	defer s.lock(ctx)()
	p, ok := s.plans[id]
	if !ok {
		return fmt.Errorf("plan %s: %w", id, model.ErrNotFound)
	}
	p.Status = status
	p.StatusChangedAt = at
	s.plans[id] = p
	return nil
}

func (s *Store) CreateAlgo(ctx context.Context, a *model.Algo) error {
	defer s.lock(ctx)()
	s.algos[a.ID] = *a
	return nil
}

func (s *Store) GetAlgo(ctx context.Context, id uuid.UUID) (*model.Algo, error) {
	defer s.lock(ctx)()
	a, ok := s.algos[id]
	if !ok {
		return nil, fmt.Errorf("algo %s: %w", id, model.ErrNotFound)
	}
	return &a, nil
}

func (s *Store) ListVerifiedAlgos(ctx context.Context) ([]model.Algo, error) {
	defer s.lock(ctx)()
	var out []model.Algo
	for _, a := range s.algos {
		if a.Verified {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *Store) SetAlgoVerified(ctx context.Context, id uuid.UUID) error {
	defer s.lock(ctx)()
	a, ok := s.algos[id]
	if !ok {
		return fmt.Errorf("algo %s: %w", id, model.ErrNotFound)
	}
	a.Verified = true
	s.algos[id] = a
	return nil
}

func (s *Store) CreateOrder(ctx context.Context, o *model.Order) error {
	defer s.lock(ctx)()
	for _, existing := range s.orders {
		if existing.TxRef == o.TxRef {
			return fmt.Errorf("order tx_ref %q already exists", o.TxRef)
		}
	}
	s.orders[o.ID] = *o
	return nil
}

func (s *Store) GetOrderByTxRefForUpdate(ctx context.Context, txRef string) (*model.Order, error) {
	defer s.lock(ctx)()
	for _, o := range s.orders {
		if o.TxRef == txRef {
			return &o, nil
		}
	}
	return nil, fmt.Errorf("order %q: %w", txRef, model.ErrNotFound)
}

func (s *Store) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus, at time.Time) error {
	defer s.lock(ctx)()
	o, ok := s.orders[id]
	if !ok {
		return fmt.Errorf("order %s: %w", id, model.ErrNotFound)
	}
	o.Status = status
	o.UpdatedAt = at
	s.orders[id] = o
	return nil
}

func (s *Store) RecordEvent(ctx context.Context, provider, key, event string, at time.Time) (bool, error) {
	defer s.lock(ctx)()
	k := provider + "/" + key
	if _, seen := s.events[k]; seen {
		return false, nil
	}
	s.events[k] = at
	return true, nil
}
