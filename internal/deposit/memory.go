package deposit

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryStore struct {
	mu       sync.RWMutex
	deposits map[string]Deposit
	// order preserves creation order so equal submission times list stably.
	order []string
	txns  []Transaction
	seq   int64
}

// NewMemoryStore creates a concurrency-safe in-memory store useful for
// unit tests and development runs without Postgres.
func NewMemoryStore() Store {
	return &memoryStore{deposits: make(map[string]Deposit)}
}

func (s *memoryStore) CreateWithTransaction(_ context.Context, dep Deposit, txn Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.deposits {
		if existing.UserID == dep.UserID && existing.Status.Active() {
			return ErrActiveDepositExists
		}
	}
	s.deposits[dep.ID] = dep
	s.order = append(s.order, dep.ID)
	s.appendTxn(txn)
	return nil
}

func (s *memoryStore) ByID(_ context.Context, id string) (Deposit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dep, ok := s.deposits[id]
	if !ok {
		return Deposit{}, ErrDepositNotFound
	}
	return dep, nil
}

func (s *memoryStore) ActiveByUser(_ context.Context, userID string) (Deposit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, dep := range s.deposits {
		if dep.UserID == userID && dep.Status.Active() {
			return dep, nil
		}
	}
	return Deposit{}, ErrDepositNotFound
}

func (s *memoryStore) ApprovedByUser(_ context.Context, userID string) (Deposit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, dep := range s.deposits {
		if dep.UserID == userID && dep.Status == StatusApproved {
			return dep, nil
		}
	}
	return Deposit{}, ErrDepositNotFound
}

func (s *memoryStore) ListPending(_ context.Context) ([]Deposit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var pending []Deposit
	for _, id := range s.order {
		if dep := s.deposits[id]; dep.Status == StatusPending {
			pending = append(pending, dep)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].SubmittedAt.Before(pending[j].SubmittedAt)
	})
	return pending, nil
}

func (s *memoryStore) ListAll(_ context.Context) ([]Deposit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]Deposit, 0, len(s.order))
	for _, id := range s.order {
		all = append(all, s.deposits[id])
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].SubmittedAt.After(all[j].SubmittedAt)
	})
	return all, nil
}

func (s *memoryStore) Decide(_ context.Context, id string, to Status, by string, at time.Time) (Deposit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dep, ok := s.deposits[id]
	if !ok {
		return Deposit{}, ErrDepositNotFound
	}

	var (
		updated Deposit
		err     error
	)
	switch to {
	case StatusApproved:
		updated, err = dep.Approved(by, at)
	case StatusRejected:
		updated, err = dep.Rejected(by, at)
	default:
		return Deposit{}, ErrDepositNotFound
	}
	if err != nil {
		return Deposit{}, err
	}

	s.deposits[id] = updated
	return updated, nil
}

func (s *memoryStore) CloseWithTransaction(_ context.Context, id string, txn Transaction) (Deposit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dep, ok := s.deposits[id]
	if !ok {
		return Deposit{}, ErrDepositNotFound
	}
	updated, err := dep.Closed()
	if err != nil {
		return Deposit{}, err
	}
	s.deposits[id] = updated
	s.appendTxn(txn)
	return updated, nil
}

func (s *memoryStore) RenewWithTransaction(_ context.Context, id string, approvedAt time.Time, txn Transaction) (Deposit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dep, ok := s.deposits[id]
	if !ok {
		return Deposit{}, ErrDepositNotFound
	}
	updated, err := dep.Renewed(approvedAt)
	if err != nil {
		return Deposit{}, err
	}
	s.deposits[id] = updated
	s.appendTxn(txn)
	return updated, nil
}

func (s *memoryStore) Transactions(_ context.Context, userID string) ([]Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Transaction
	for _, txn := range s.txns {
		if txn.UserID == userID {
			out = append(out, txn)
		}
	}
	// txns is already in insertion order; a stable sort keeps that order
	// for entries sharing a timestamp.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

// appendTxn assigns the insertion sequence. Callers must hold mu.
func (s *memoryStore) appendTxn(txn Transaction) {
	s.seq++
	txn.Seq = s.seq
	s.txns = append(s.txns, txn)
}
