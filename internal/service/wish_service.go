package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"sternwerk/internal/database"
	"sternwerk/internal/models"
	"sternwerk/internal/repository"
	"sternwerk/internal/validation"
)

// SettingRefundOnReject switches the reject policy: when enabled, rejecting a
// pending wish credits the debited stars back. Off by default.
const SettingRefundOnReject = "wish_refund_on_reject"

var (
	ErrWishNotFound      = errors.New("wish not found")
	ErrInsufficientStars = errors.New("not enough stars")
	ErrInvalidWishState  = errors.New("wish is not in a state that allows this")
)

// WishService runs the reward wish lifecycle: active, pending, then approved
// or rejected, with approved wishes fulfillable. Redemption debits the star
// price and flips the wish to pending in one transaction; a failed balance
// check leaves both wish and ledger untouched.
type WishService struct {
	db       *database.DB
	wishRepo *repository.WishRepository
	settings *repository.SettingsRepository
	userRepo *repository.UserRepository
	ledger   *LedgerService
	emails   *EmailService
	logs     *DebugLogService
}

// NewWishService creates a new wish service
func NewWishService(db *database.DB, wishRepo *repository.WishRepository, settings *repository.SettingsRepository, userRepo *repository.UserRepository, ledger *LedgerService, emails *EmailService, logs *DebugLogService) *WishService {
	return &WishService{
		db:       db,
		wishRepo: wishRepo,
		settings: settings,
		userRepo: userRepo,
		ledger:   ledger,
		emails:   emails,
		logs:     logs,
	}
}

// CreateWish records a new wish in the active state
func (s *WishService) CreateWish(childID, title string, starPrice int) (*models.RewardWish, error) {
	if err := validation.ValidateTitle(title); err != nil {
		return nil, err
	}
	if err := validation.ValidateStarPrice(starPrice); err != nil {
		return nil, err
	}

	wish := &models.RewardWish{
		ID:        uuid.New().String(),
		ChildID:   childID,
		Title:     title,
		StarPrice: starPrice,
		Status:    models.WishActive,
		CreatedAt: time.Now(),
	}
	if err := s.wishRepo.Create(wish); err != nil {
		return nil, fmt.Errorf("failed to create wish: %w", err)
	}
	return wish, nil
}

// GetWish returns one wish
func (s *WishService) GetWish(wishID string) (*models.RewardWish, error) {
	wish, err := s.wishRepo.GetByID(s.db, wishID)
	if err != nil {
		return nil, fmt.Errorf("failed to load wish: %w", err)
	}
	if wish == nil {
		return nil, ErrWishNotFound
	}
	return wish, nil
}

// ListWishes returns a child's wishes
func (s *WishService) ListWishes(childID string) ([]models.RewardWish, error) {
	return s.wishRepo.ListByChild(childID)
}

// ListWishesByStatus returns all wishes in one lifecycle state, for the
// parent approval queue
func (s *WishService) ListWishesByStatus(status models.WishStatus) ([]models.RewardWish, error) {
	return s.wishRepo.ListByStatus(status)
}

// RequestRedemption spends stars on an active wish. The balance check, the
// star debit and the move to pending happen under the child's ledger lock in
// one transaction; with too few stars, nothing changes and
// ErrInsufficientStars is returned. Returns the wish and the balance after.
func (s *WishService) RequestRedemption(wishID string) (*models.RewardWish, int, error) {
	// Resolve the child before taking its lock.
	wish, err := s.GetWish(wishID)
	if err != nil {
		return nil, 0, err
	}

	var newTotal int
	err = s.ledger.WithChildLock(wish.ChildID, func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback()

		// Re-read and re-check the state under the lock; a concurrent
		// redemption may have moved the wish to pending already.
		wish, err = s.wishRepo.GetByID(tx, wishID)
		if err != nil {
			return fmt.Errorf("failed to load wish: %w", err)
		}
		if wish == nil {
			return ErrWishNotFound
		}
		if wish.Status != models.WishActive {
			return fmt.Errorf("%w: cannot redeem a %s wish", ErrInvalidWishState, wish.Status)
		}

		balance, _, err := s.ledger.childRepo.TotalStars(tx, wish.ChildID)
		if err != nil {
			return fmt.Errorf("failed to read balance: %w", err)
		}
		if balance < wish.StarPrice {
			return ErrInsufficientStars
		}

		reason := fmt.Sprintf("Wunsch eingelöst: %s", wish.Title)
		if _, newTotal, err = s.ledger.ApplyDeltaTx(tx, wish.ChildID, -wish.StarPrice, reason, models.SourceWishRedeemed, wish.ID); err != nil {
			return err
		}

		now := time.Now()
		wish.Status = models.WishPending
		wish.RequestedAt = &now
		if err := s.wishRepo.Update(tx, wish); err != nil {
			return fmt.Errorf("failed to update wish: %w", err)
		}

		return tx.Commit()
	})
	if err != nil {
		return nil, 0, err
	}

	s.logs.Info("WishService.RequestRedemption", "wish redemption requested", map[string]interface{}{
		"wishId":  wish.ID,
		"childId": wish.ChildID,
		"price":   wish.StarPrice,
		"balance": newTotal,
	})
	s.notifyParents(wish)

	return wish, newTotal, nil
}

// Approve moves a pending wish to approved
func (s *WishService) Approve(wishID string, parentNote *string) (*models.RewardWish, error) {
	return s.decide(wishID, models.WishApproved, parentNote)
}

// Reject moves a pending wish to rejected. The debited stars stay spent
// unless the refund-on-reject setting is enabled.
func (s *WishService) Reject(wishID string, parentNote *string) (*models.RewardWish, error) {
	return s.decide(wishID, models.WishRejected, parentNote)
}

// decide applies a parent decision to a pending wish
func (s *WishService) decide(wishID string, decision models.WishStatus, parentNote *string) (*models.RewardWish, error) {
	wish, err := s.GetWish(wishID)
	if err != nil {
		return nil, err
	}
	if !wish.CanTransition(decision) {
		return nil, fmt.Errorf("%w: cannot move a %s wish to %s", ErrInvalidWishState, wish.Status, decision)
	}

	now := time.Now()
	wish.Status = decision
	wish.ParentNote = parentNote
	switch decision {
	case models.WishApproved:
		wish.ApprovedAt = &now
	case models.WishRejected:
		wish.RejectedAt = &now
	}

	if decision == models.WishRejected && s.settings.GetBool(SettingRefundOnReject, false) {
		if err := s.rejectWithRefund(wish); err != nil {
			return nil, err
		}
	} else {
		if err := s.wishRepo.Update(s.db, wish); err != nil {
			return nil, fmt.Errorf("failed to update wish: %w", err)
		}
	}

	s.logs.Info("WishService.decide", fmt.Sprintf("wish %s", decision), map[string]interface{}{
		"wishId":  wish.ID,
		"childId": wish.ChildID,
	})
	return wish, nil
}

// rejectWithRefund commits the rejected status and the star refund together
func (s *WishService) rejectWithRefund(wish *models.RewardWish) error {
	return s.ledger.WithChildLock(wish.ChildID, func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback()

		if err := s.wishRepo.Update(tx, wish); err != nil {
			return fmt.Errorf("failed to update wish: %w", err)
		}

		reason := fmt.Sprintf("Wunsch abgelehnt, Sterne zurück: %s", wish.Title)
		if _, _, err := s.ledger.ApplyDeltaTx(tx, wish.ChildID, wish.StarPrice, reason, models.SourceWishRedeemed, wish.ID); err != nil {
			return err
		}

		return tx.Commit()
	})
}

// Fulfill marks an approved wish as handed over. Fulfilled is terminal.
func (s *WishService) Fulfill(wishID string) (*models.RewardWish, error) {
	wish, err := s.GetWish(wishID)
	if err != nil {
		return nil, err
	}
	if !wish.CanTransition(models.WishFulfilled) {
		return nil, fmt.Errorf("%w: cannot fulfill a %s wish", ErrInvalidWishState, wish.Status)
	}

	now := time.Now()
	wish.Status = models.WishFulfilled
	wish.FulfilledAt = &now
	if err := s.wishRepo.Update(s.db, wish); err != nil {
		return nil, fmt.Errorf("failed to update wish: %w", err)
	}
	return wish, nil
}

// DeleteWish removes a wish that has not entered redemption yet
func (s *WishService) DeleteWish(wishID string) error {
	wish, err := s.GetWish(wishID)
	if err != nil {
		return err
	}
	if wish.Status != models.WishActive {
		return fmt.Errorf("%w: only active wishes can be deleted", ErrInvalidWishState)
	}
	return s.wishRepo.Delete(wishID)
}

// notifyParents emails every parent account about a new pending wish.
// Notification failures are logged, never surfaced.
func (s *WishService) notifyParents(wish *models.RewardWish) {
	if s.emails == nil || !s.emails.Enabled() {
		return
	}

	users, err := s.userRepo.ListUsers()
	if err != nil {
		s.logs.Warning("WishService.notifyParents", "failed to list parent accounts", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	child, err := s.ledger.childRepo.GetByID(wish.ChildID)
	childName := wish.ChildID
	if err == nil && child != nil {
		childName = child.Name
	}

	for _, user := range users {
		if err := s.emails.SendWishRequestedEmail(user.Email, childName, wish); err != nil {
			s.logs.Warning("WishService.notifyParents", "failed to send wish email", map[string]interface{}{
				"email": user.Email,
				"error": err.Error(),
			})
		}
	}
}
