package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"sternwerk/internal/database"
	"sternwerk/internal/models"
	"sternwerk/internal/repository"
)

var (
	// ErrInvalidAmount is returned for a zero delta
	ErrInvalidAmount = errors.New("amount must not be zero")
)

// LedgerService is the star accounting engine. Every star movement goes
// through ApplyDelta: the journal records the requested amount verbatim while
// the cached balance is clamped at zero. All writes for one child are
// serialized through a per-child lock, and journal insert plus balance update
// happen in a single transaction.
type LedgerService struct {
	db         *database.DB
	childRepo  *repository.ChildRepository
	ledgerRepo *repository.LedgerRepository

	mu         sync.Mutex
	childLocks map[string]*sync.Mutex
}

// NewLedgerService creates a new ledger service
func NewLedgerService(db *database.DB, childRepo *repository.ChildRepository, ledgerRepo *repository.LedgerRepository) *LedgerService {
	return &LedgerService{
		db:         db,
		childRepo:  childRepo,
		ledgerRepo: ledgerRepo,
		childLocks: make(map[string]*sync.Mutex),
	}
}

// childLock returns the mutex serializing one child's star movements
func (s *LedgerService) childLock(childID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.childLocks[childID]
	if !ok {
		lock = &sync.Mutex{}
		s.childLocks[childID] = lock
	}
	return lock
}

// WithChildLock runs fn while holding the child's ledger lock. Callers that
// combine a star movement with other writes in one transaction use this to
// keep the movement serialized.
func (s *LedgerService) WithChildLock(childID string, fn func() error) error {
	lock := s.childLock(childID)
	lock.Lock()
	defer lock.Unlock()
	return fn()
}

// GetBalance returns the child's current star balance. Unknown children have
// a balance of zero.
func (s *LedgerService) GetBalance(childID string) (int, error) {
	child, err := s.childRepo.GetByID(childID)
	if err != nil {
		return 0, fmt.Errorf("failed to load child: %w", err)
	}
	if child == nil {
		return 0, nil
	}
	return child.TotalStars, nil
}

// ApplyDelta moves stars for a child: the journal entry records amount as
// requested, the balance absorbs the clamped effect. Returns the entry and
// the balance after the movement.
func (s *LedgerService) ApplyDelta(childID string, amount int, reason string, source models.StarSource, sourceID string) (*models.StarLedgerEntry, int, error) {
	if amount == 0 {
		return nil, 0, ErrInvalidAmount
	}

	var entry *models.StarLedgerEntry
	var newTotal int

	err := s.WithChildLock(childID, func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback()

		entry, newTotal, err = s.ApplyDeltaTx(tx, childID, amount, reason, source, sourceID)
		if err != nil {
			return err
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit star movement: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return entry, newTotal, nil
}

// ApplyDeltaTx performs the journal insert and balance update inside an
// existing transaction. The caller must hold the child's ledger lock (see
// WithChildLock) and commit or roll back the transaction.
func (s *LedgerService) ApplyDeltaTx(tx *database.Tx, childID string, amount int, reason string, source models.StarSource, sourceID string) (*models.StarLedgerEntry, int, error) {
	if amount == 0 {
		return nil, 0, ErrInvalidAmount
	}

	now := time.Now()

	current, found, err := s.childRepo.TotalStars(tx, childID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read balance: %w", err)
	}

	newTotal := current + amount
	if newTotal < 0 {
		newTotal = 0
	}

	if found {
		if err := s.childRepo.SetTotalStars(tx, childID, newTotal); err != nil {
			return nil, 0, fmt.Errorf("failed to update balance: %w", err)
		}
	} else {
		// First movement for an unknown child creates a balance stub row.
		if err := s.childRepo.CreateBalanceStub(tx, childID, newTotal, now); err != nil {
			return nil, 0, fmt.Errorf("failed to create balance: %w", err)
		}
	}

	entry := &models.StarLedgerEntry{
		ID:        uuid.New().String(),
		ChildID:   childID,
		Amount:    amount,
		Reason:    reason,
		Source:    source,
		SourceID:  sourceID,
		CreatedAt: now,
	}
	if err := s.ledgerRepo.Insert(tx, entry); err != nil {
		return nil, 0, fmt.Errorf("failed to record ledger entry: %w", err)
	}

	return entry, newTotal, nil
}

// Credit adds stars to a child's balance
func (s *LedgerService) Credit(childID string, amount int, reason string, source models.StarSource, sourceID string) (*models.StarLedgerEntry, int, error) {
	if amount <= 0 {
		return nil, 0, ErrInvalidAmount
	}
	return s.ApplyDelta(childID, amount, reason, source, sourceID)
}

// Debit removes stars from a child's balance, clamping at zero
func (s *LedgerService) Debit(childID string, amount int, reason string, source models.StarSource, sourceID string) (*models.StarLedgerEntry, int, error) {
	if amount <= 0 {
		return nil, 0, ErrInvalidAmount
	}
	return s.ApplyDelta(childID, -amount, reason, source, sourceID)
}

// ListEntries returns a child's journal, newest first
func (s *LedgerService) ListEntries(childID string) ([]models.StarLedgerEntry, error) {
	return s.ledgerRepo.ListByChild(childID)
}
