package models

import "time"

// WishStatus is the lifecycle state of a reward wish
type WishStatus string

const (
	WishActive    WishStatus = "active"    // created by the child, not yet redeemed
	WishPending   WishStatus = "pending"   // stars debited, waiting for parent decision
	WishApproved  WishStatus = "approved"  // parent approved
	WishRejected  WishStatus = "rejected"  // parent rejected (terminal)
	WishFulfilled WishStatus = "fulfilled" // handed over (terminal)
)

// RewardWish is a parent-gated reward a child can redeem with stars
type RewardWish struct {
	ID          string     `json:"id"`
	ChildID     string     `json:"childId"`
	Title       string     `json:"title"`
	StarPrice   int        `json:"starPrice"`
	Status      WishStatus `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	RequestedAt *time.Time `json:"requestedAt,omitempty"`
	ApprovedAt  *time.Time `json:"approvedAt,omitempty"`
	RejectedAt  *time.Time `json:"rejectedAt,omitempty"`
	FulfilledAt *time.Time `json:"fulfilledAt,omitempty"`
	ParentNote  *string    `json:"parentNote,omitempty"`
}

// wishTransitions is the allowed lifecycle graph
var wishTransitions = map[WishStatus][]WishStatus{
	WishActive:   {WishPending},
	WishPending:  {WishApproved, WishRejected},
	WishApproved: {WishFulfilled},
}

// CanTransition reports whether a wish in its current status may move to next
func (w *RewardWish) CanTransition(next WishStatus) bool {
	for _, s := range wishTransitions[w.Status] {
		if s == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible
func (w *RewardWish) IsTerminal() bool {
	return len(wishTransitions[w.Status]) == 0
}
