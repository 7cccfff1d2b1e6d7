package usecase

import (
	"github.com/productscout/backend/internal/domain"
)

// Scoring weights and priors. Every product is scored against these fixed
// absolute thresholds, never percentile-ranked against the rest of the
// result set, so scores are comparable across searches.
const (
	// Demand: review volume saturates at 500 reviews and carries most of
	// the weight; the star rating is a secondary signal.
	reviewSaturation    = 500.0
	reviewWeight        = 0.7
	ratingWeight        = 0.3
	unknownReviewSignal = 0.3 // mildly pessimistic prior
	unknownRatingSignal = 0.5 // neutral prior

	// Competition: seller count saturates at 10 sellers; a best-seller rank
	// inside the top 1000 lowers the competition estimate.
	sellerSaturation    = 10.0
	sellerWeight        = 0.6
	bsrWeight           = 0.4
	bsrSaturation       = 1000.0
	unknownSellerSignal = 0.4
	unknownBSRFactor    = 0.5

	// Profit: when the caller supplies no COGS estimate, assume cost of
	// goods is 40% of net revenue.
	defaultCOGSShare = 0.4

	// Opportunity blend: demand matters most, low competition second,
	// margin least (margin leans on the COGS heuristic and is the noisiest).
	demandBlendWeight      = 0.45
	competitionBlendWeight = 0.35
	marginBlendWeight      = 0.20
)

// Scorer computes demand, competition, profit and opportunity signals for
// normalized products. It is a pure per-product computation; the fee
// schedule is its only dependency.
type Scorer struct {
	fees *FeeSchedule
}

// NewScorer creates a scorer backed by the given fee schedule.
func NewScorer(fees *FeeSchedule) *Scorer {
	return &Scorer{fees: fees}
}

// ScoreProducts derives the opportunity signals for each product
// independently. cogs is the caller's cost-of-goods estimate; nil means
// unknown and triggers the 40%-of-net-revenue default.
func (s *Scorer) ScoreProducts(products []domain.NormalizedProduct, cogs *float64) []domain.ScoredProduct {
	scored := make([]domain.ScoredProduct, 0, len(products))
	for _, product := range products {
		scored = append(scored, s.scoreProduct(product, cogs))
	}
	return scored
}

func (s *Scorer) scoreProduct(product domain.NormalizedProduct, cogs *float64) domain.ScoredProduct {
	demandScore := demandScore(product)
	competitionScore := competitionScore(product)

	netRevenue := s.fees.EstimateNetRevenue(product.Price, product.Marketplace)

	assumedCOGS := netRevenue * defaultCOGSShare
	if cogs != nil {
		assumedCOGS = *cogs
	}

	// Net revenue may be negative upstream; the estimate itself is floored
	// at zero.
	profitEstimate := netRevenue - assumedCOGS
	if profitEstimate < 0 {
		profitEstimate = 0
	}

	profitMarginPct := 0.0
	if product.Price > 0 {
		profitMarginPct = clamp(profitEstimate / product.Price * 100)
	}

	opportunityScore := clamp(
		demandBlendWeight*demandScore +
			competitionBlendWeight*(100-competitionScore) +
			marginBlendWeight*profitMarginPct,
	)

	return domain.ScoredProduct{
		NormalizedProduct: product,
		DemandScore:       demandScore,
		CompetitionScore:  competitionScore,
		ProfitEstimate:    profitEstimate,
		ProfitMarginPct:   profitMarginPct,
		OpportunityScore:  opportunityScore,
	}
}

// demandScore blends review volume and star rating into a 0-100 signal.
// Unknown fields fall back to fixed priors rather than zero: no review count
// is weak evidence, not evidence of zero demand.
func demandScore(product domain.NormalizedProduct) float64 {
	reviewSignal := unknownReviewSignal
	if product.Reviews != nil {
		reviewSignal = min(float64(*product.Reviews)/reviewSaturation, 1)
	}

	ratingSignal := unknownRatingSignal
	if product.Rating != nil {
		ratingSignal = *product.Rating / 5
	}

	return clamp((reviewWeight*reviewSignal + ratingWeight*ratingSignal) * 100)
}

// competitionScore blends seller count and inverted best-seller rank into a
// 0-100 signal; higher means more crowded and worse for a new seller.
func competitionScore(product domain.NormalizedProduct) float64 {
	sellerSignal := unknownSellerSignal
	if product.SellersCount != nil {
		sellerSignal = min(float64(*product.SellersCount)/sellerSaturation, 1)
	}

	// bsrFactor is 1 at rank 1 and decays to 0 past rank 1000; the inverted
	// factor is the competition contribution.
	bsrFactor := unknownBSRFactor
	if product.BestSellerRank != nil {
		bsrFactor = max(1-float64(*product.BestSellerRank)/bsrSaturation, 0)
	}

	return clamp((sellerWeight*sellerSignal + bsrWeight*(1-bsrFactor)) * 100)
}

// clamp bounds a score to the canonical [0,100] range.
func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
