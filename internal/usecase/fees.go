package usecase

import (
	"fmt"

	"github.com/productscout/backend/internal/domain"
)

// FeeProfile describes the simplified fee structure of one marketplace,
// used for net-revenue estimation.
type FeeProfile struct {
	ReferralFeePct   float64
	ClosingFee       float64
	ShippingEstimate float64
}

// FeeSchedule maps each supported marketplace to its fee profile. The
// schedule is plain injected configuration rather than a process-wide
// singleton so tests can run against alternate fee tables.
type FeeSchedule struct {
	profiles map[domain.Marketplace]FeeProfile
}

// NewFeeSchedule builds a fee schedule and verifies that every marketplace
// in required has a profile. A missing profile is a deployment configuration
// error and must fail loudly at startup, never per-request.
func NewFeeSchedule(profiles map[domain.Marketplace]FeeProfile, required []domain.Marketplace) (*FeeSchedule, error) {
	for _, marketplace := range required {
		if _, ok := profiles[marketplace]; !ok {
			return nil, fmt.Errorf("%w: no fee profile for %q", domain.ErrUnknownMarketplace, marketplace)
		}
	}

	// Copy so later mutation of the input map cannot change the schedule
	copied := make(map[domain.Marketplace]FeeProfile, len(profiles))
	for marketplace, profile := range profiles {
		copied[marketplace] = profile
	}

	return &FeeSchedule{profiles: copied}, nil
}

// EstimateNetRevenue returns the seller's revenue after marketplace fees:
// price minus the referral percentage, the closing fee, and the shipping
// estimate. The result can be negative, which signals a likely unprofitable
// item at that price point; it is not clamped here.
func (s *FeeSchedule) EstimateNetRevenue(price float64, marketplace domain.Marketplace) float64 {
	profile, ok := s.profiles[marketplace]
	if !ok {
		// The schedule is validated against the deployed marketplace set at
		// startup, so reaching this is a programming error.
		panic(fmt.Sprintf("fees: no fee profile for marketplace %q", marketplace))
	}

	referralFee := price * profile.ReferralFeePct
	return price - referralFee - profile.ClosingFee - profile.ShippingEstimate
}
