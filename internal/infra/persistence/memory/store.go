// Package memory provides an in-memory implementation of the core
// persistence store used for tests and ephemeral environments.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"refcore/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain
// persistence interface.
var _ domain.PersistentStore = (*Store)(nil)

// Snapshot captures a point-in-time clone of the store state.
type Snapshot struct {
	OTUs map[string]domain.OTU `json:"otus"`
}

// Store provides an in-memory transactional store for OTU descriptors.
type Store struct {
	mu     sync.RWMutex
	state  map[string]domain.OTU
	engine *domain.RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs an in-memory store backed by the provided rules
// engine. A nil engine means no rules are evaluated.
func NewStore(engine *domain.RulesEngine) *Store {
	return &Store{
		state:  make(map[string]domain.OTU),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

func cloneState(state map[string]domain.OTU) map[string]domain.OTU {
	out := make(map[string]domain.OTU, len(state))
	for id, otu := range state {
		out[id] = otu.Clone()
	}
	return out
}

// Transaction represents a mutation set applied to the store state.
type Transaction struct {
	store   *Store
	state   map[string]domain.OTU
	changes []domain.Change
	now     time.Time
}

var _ domain.Transaction = (*Transaction)(nil)

// view exposes a read-only snapshot of transactional state to rules.
type view struct {
	state map[string]domain.OTU
}

var _ domain.TransactionView = view{}

// ListOTUs returns all OTUs within the snapshot, ordered by id.
func (v view) ListOTUs() []domain.OTU {
	out := make([]domain.OTU, 0, len(v.state))
	for _, otu := range v.state {
		out = append(out, otu.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// FindOTU retrieves an OTU by id from the snapshot.
func (v view) FindOTU(id string) (domain.OTU, bool) {
	otu, ok := v.state[id]
	if !ok {
		return domain.OTU{}, false
	}
	return otu.Clone(), true
}

// FindOTUByTaxid retrieves an OTU by taxonomy id from the snapshot.
func (v view) FindOTUByTaxid(taxid int) (domain.OTU, bool) {
	for _, otu := range v.state {
		if otu.Taxid == taxid {
			return otu.Clone(), true
		}
	}
	return domain.OTU{}, false
}

// RunInTransaction executes fn within a transactional copy of the store
// state, evaluates the rules engine, and commits only when no blocking
// violations are present.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Transaction{
		store: s,
		state: cloneState(s.state),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return domain.Result{}, err
	}

	var result domain.Result
	if s.engine != nil {
		res, err := s.engine.Evaluate(ctx, view{state: tx.state}, tx.changes)
		if err != nil {
			return domain.Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(domain.TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(view{state: cloneState(s.state)})
}

// Snapshot exposes the transactional state to rules mid-transaction.
func (tx *Transaction) Snapshot() domain.TransactionView {
	return view{state: tx.state}
}

// CreateOTU stores a new OTU within the transaction.
func (tx *Transaction) CreateOTU(otu domain.OTU) (domain.OTU, error) {
	if otu.ID == "" {
		otu.ID = uuid.NewString()
	}
	if _, exists := tx.state[otu.ID]; exists {
		return domain.OTU{}, fmt.Errorf("otu %q already exists", otu.ID)
	}
	if _, exists := tx.FindOTUByTaxid(otu.Taxid); exists {
		return domain.OTU{}, fmt.Errorf("otu for taxid %d already exists", otu.Taxid)
	}
	otu.CreatedAt = tx.now
	otu.UpdatedAt = tx.now
	tx.state[otu.ID] = otu.Clone()
	tx.changes = append(tx.changes, domain.Change{Entity: domain.EntityOTU, Action: domain.ActionCreate, After: otu.Clone()})
	return otu.Clone(), nil
}

// UpdateOTU mutates an OTU using the provided mutator function.
func (tx *Transaction) UpdateOTU(id string, mutator func(*domain.OTU) error) (domain.OTU, error) {
	current, ok := tx.state[id]
	if !ok {
		return domain.OTU{}, fmt.Errorf("otu %q not found", id)
	}
	before := current.Clone()
	working := current.Clone()
	if err := mutator(&working); err != nil {
		return domain.OTU{}, err
	}
	working.ID = id
	working.CreatedAt = before.CreatedAt
	working.UpdatedAt = tx.now
	tx.state[id] = working.Clone()
	tx.changes = append(tx.changes, domain.Change{Entity: domain.EntityOTU, Action: domain.ActionUpdate, Before: before, After: working.Clone()})
	return working.Clone(), nil
}

// DeleteOTU removes an OTU from the transaction state.
func (tx *Transaction) DeleteOTU(id string) error {
	current, ok := tx.state[id]
	if !ok {
		return fmt.Errorf("otu %q not found", id)
	}
	delete(tx.state, id)
	tx.changes = append(tx.changes, domain.Change{Entity: domain.EntityOTU, Action: domain.ActionDelete, Before: current.Clone()})
	return nil
}

// FindOTU retrieves an OTU by id from the transaction state.
func (tx *Transaction) FindOTU(id string) (domain.OTU, bool) {
	return view{state: tx.state}.FindOTU(id)
}

// FindOTUByTaxid retrieves an OTU by taxonomy id from the transaction state.
func (tx *Transaction) FindOTUByTaxid(taxid int) (domain.OTU, bool) {
	return view{state: tx.state}.FindOTUByTaxid(taxid)
}

// GetOTU retrieves an OTU by id from committed state.
func (s *Store) GetOTU(id string) (domain.OTU, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	otu, ok := s.state[id]
	if !ok {
		return domain.OTU{}, false
	}
	return otu.Clone(), true
}

// GetOTUByTaxid retrieves an OTU by taxonomy id from committed state.
func (s *Store) GetOTUByTaxid(taxid int) (domain.OTU, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return view{state: s.state}.FindOTUByTaxid(taxid)
}

// ListOTUs returns all OTUs from committed state, ordered by id.
func (s *Store) ListOTUs() []domain.OTU {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return view{state: s.state}.ListOTUs()
}

// ExportState returns a deep-copied snapshot of committed state for
// durable backends to persist.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{OTUs: cloneState(s.state)}
}

// ImportState replaces committed state with the supplied snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if snapshot.OTUs == nil {
		s.state = make(map[string]domain.OTU)
		return
	}
	s.state = cloneState(snapshot.OTUs)
}
