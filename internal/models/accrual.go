package models

import "fmt"

// ApplyVisit credits one visit. Passing the end of a cycle starts a new one
// at 1 and banks a reward.
func ApplyVisit(s LoyaltyState) (next LoyaltyState, rewardGranted bool) {
	next = s
	next.VisitsTotal++
	next.CycleVisits++
	if next.CycleVisits > CycleLength {
		next.CycleVisits = 1
		next.RewardsAvailable++
		rewardGranted = true
	}
	return next, rewardGranted
}

// CanRedeem reports whether a reward is banked.
func (s LoyaltyState) CanRedeem() bool {
	return s.RewardsAvailable > 0
}

// ApplyRedemption consumes one banked reward. Visit counters are untouched.
// Callers check CanRedeem first; the floor at zero keeps the invariant even
// if they do not.
func ApplyRedemption(s LoyaltyState) LoyaltyState {
	next := s
	next.RewardsAvailable--
	if next.RewardsAvailable < 0 {
		next.RewardsAvailable = 0
	}
	next.RewardsRedeemed++
	return next
}

// AccrualResult is returned to the operator after an accepted scan.
type AccrualResult struct {
	CustomerID    string   `json:"customer_id"`
	DisplayName   string   `json:"display_name"`
	Mode          ScanMode `json:"mode"`
	RewardGranted bool     `json:"reward_granted"`
	LoyaltyState
	Summary string `json:"summary"`
}

func NewAccrualResult(c *Customer, mode ScanMode, state LoyaltyState, rewardGranted bool) *AccrualResult {
	label := "Visit"
	if mode == ScanModeRedemption {
		label = "Reward redemption"
	}

	return &AccrualResult{
		CustomerID:    c.ID.Hex(),
		DisplayName:   c.DisplayName(),
		Mode:          mode,
		RewardGranted: rewardGranted,
		LoyaltyState:  state,
		Summary: fmt.Sprintf("%s registered for %s. Cycle: %d | Total visits: %d | Rewards: %d",
			label, c.DisplayName(), state.CycleVisits, state.VisitsTotal, state.RewardsAvailable),
	}
}
