package service

import (
	"context"
	"math"
	"strings"

	"github.com/Pranav-6954/Carpooling/pkg/maps"
)

// Fare constants. The passenger rate prices a single seat; the ceiling rate
// prices the whole vehicle and is split across capacity to bound driver-set
// per-seat prices. They are deliberately different constants and must not be
// conflated.
const (
	BaseFare         = 50.0
	RatePerKm        = 2.0
	CeilingRatePerKm = 10.0
)

type FareQuote struct {
	DistanceKm      float64  `json:"distance_km"`
	PricePerSeat    float64  `json:"price_per_seat"`
	TotalPrice      float64  `json:"total_price"`
	MaxAllowedPrice float64  `json:"max_allowed_price"`
	SuggestedRoute  []string `json:"suggested_route"`
}

type FareService interface {
	Quote(ctx context.Context, from, to string, seats int, routeOverride string) FareQuote
	MaxSeatPrice(ctx context.Context, from, to string, capacity int) float64
	SegmentPrice(fullPrice float64, route, userFrom, userTo string) float64
}

type fareService struct {
	distance maps.DistanceProvider
}

func NewFareService(distance maps.DistanceProvider) FareService {
	return &fareService{distance: distance}
}

// Round2 rounds a money value to two decimals, ties away from zero. Applied
// to every money value so repeated rounding is a no-op.
func Round2(v float64) float64 {
	return math.Round(v*100.0) / 100.0
}

func (s *fareService) Quote(ctx context.Context, from, to string, seats int, routeOverride string) FareQuote {
	if seats < 1 {
		seats = 1
	}

	meters := s.distance.DistanceMeters(ctx, from, to, "")
	distKm := float64(meters) / 1000.0

	pricePerSeat := Round2(BaseFare + RatePerKm*distKm)
	total := Round2(pricePerSeat * float64(seats))

	route := s.distance.Waypoints(from, to)
	if routeOverride != "" {
		// The user edited the route by hand; trust their version for display.
		route = strings.Split(routeOverride, " -> ")
	}

	return FareQuote{
		DistanceKm:      distKm,
		PricePerSeat:    pricePerSeat,
		TotalPrice:      total,
		MaxAllowedPrice: maxSeatPrice(distKm, seats),
		SuggestedRoute:  route,
	}
}

// MaxSeatPrice is the fare ceiling for driver-set per-seat prices, enforced
// at offering creation and update only. Booking-time price overrides bypass
// it by design (negotiated offers).
func (s *fareService) MaxSeatPrice(ctx context.Context, from, to string, capacity int) float64 {
	meters := s.distance.DistanceMeters(ctx, from, to, "")
	return maxSeatPrice(float64(meters)/1000.0, capacity)
}

func maxSeatPrice(distKm float64, capacity int) float64 {
	if capacity < 1 {
		capacity = 1
	}
	return Round2((BaseFare + CeilingRatePerKm*distKm) / float64(capacity))
}

// SegmentPrice prices a partial trip as a linear fraction of hops travelled
// along the route string ("A -> B -> C"), floored at 20% of the full price.
// Unmatched or out-of-order endpoints fall back to the full price.
func (s *fareService) SegmentPrice(fullPrice float64, route, userFrom, userTo string) float64 {
	if route == "" {
		return fullPrice
	}

	stops := strings.Split(route, " -> ")
	startIdx, endIdx := -1, -1
	for i, stop := range stops {
		lower := strings.ToLower(stop)
		if strings.Contains(lower, strings.ToLower(userFrom)) {
			startIdx = i
		}
		if strings.Contains(lower, strings.ToLower(userTo)) {
			endIdx = i
		}
	}

	totalHops := len(stops) - 1
	if startIdx == -1 || endIdx == -1 || startIdx >= endIdx || totalHops <= 0 {
		return fullPrice
	}

	fraction := float64(endIdx-startIdx) / float64(totalHops)
	return Round2(math.Max(fullPrice*fraction, fullPrice*0.2))
}
