package maps

import (
	"context"
	"fmt"
	"strings"

	gmaps "googlemaps.github.io/maps"
)

// DistanceProvider resolves a driving distance between two free-form location
// strings. Implementations must always return a best-effort value: when every
// network provider fails, a deterministic offline estimate is used instead of
// an error.
type DistanceProvider interface {
	DistanceMeters(ctx context.Context, from, to, via string) int64
	Waypoints(from, to string) []string
}

// GoogleProvider queries the Distance Matrix API and falls back to the
// offline estimate when the API key is missing or the call fails.
type GoogleProvider struct {
	client *gmaps.Client
}

func NewGoogleProvider(apiKey string) (*GoogleProvider, error) {
	if apiKey == "" {
		return &GoogleProvider{}, nil
	}
	client, err := gmaps.NewClient(gmaps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	return &GoogleProvider{client: client}, nil
}

func (p *GoogleProvider) DistanceMeters(ctx context.Context, from, to, via string) int64 {
	if p.client != nil {
		if meters, err := p.googleDistance(ctx, from, to); err == nil {
			return meters
		}
	}
	return FallbackDistanceMeters(from, to, via)
}

func (p *GoogleProvider) googleDistance(ctx context.Context, from, to string) (int64, error) {
	resp, err := p.client.DistanceMatrix(ctx, &gmaps.DistanceMatrixRequest{
		Origins:      []string{from},
		Destinations: []string{to},
		Mode:         gmaps.TravelModeDriving,
	})
	if err != nil {
		return 0, fmt.Errorf("distance matrix: %w", err)
	}
	if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return 0, fmt.Errorf("no distance in response")
	}
	el := resp.Rows[0].Elements[0]
	if el.Status != "OK" {
		return 0, fmt.Errorf("distance matrix element status %s", el.Status)
	}
	return int64(el.Distance.Meters), nil
}

// FallbackDistanceMeters is the deterministic offline estimate keyed by input
// length, plus 5km per waypoint. Determinism matters for tests.
func FallbackDistanceMeters(from, to, via string) int64 {
	seed := int64(len(from) + len(to))
	total := 10000 + seed*1000
	if via != "" {
		points := strings.Split(via, ",")
		total += int64(len(points)) * 5000
	}
	return total
}

// corridor is a known intercity route with its intermediate stops, in travel
// order from the first endpoint to the second.
type corridor struct {
	a, b  string
	stops []string
}

var corridors = []corridor{
	{"chennai", "hyderabad", []string{"Nellore", "Ongole", "Vijayawada", "Suryapet"}},
	{"bangalore", "chennai", []string{"Hosur", "Krishnagiri", "Vellore", "Kanchipuram"}},
	{"hyderabad", "vizag", []string{"Suryapet", "Vijayawada", "Eluru", "Rajahmundry", "Tuni", "Anakapalle"}},
	{"vizag", "vizianagram", []string{"Maddilapalem", "Yendada", "Kommadi", "Anandhapuram", "Thagarapuvalasa"}},
	{"vizag", "araku", []string{"Pendurthi", "Kothavalasa", "Srungavarapukota", "Tyda", "Borra Caves"}},
	{"vizag", "srikakulam", []string{"Madhurawada", "Tagarapuvalasa", "Bhogapuram", "Pusapatirega", "Etcherla"}},
}

// Waypoints returns a best-effort ordered stop list for the route. Unknown
// routes get a generic two-hop placeholder. Purely cosmetic; never priced.
func (p *GoogleProvider) Waypoints(from, to string) []string {
	f := strings.ToLower(from)
	t := strings.ToLower(to)

	route := []string{from}
	matched := false
	for _, c := range corridors {
		if strings.Contains(f, c.a) && strings.Contains(t, c.b) {
			route = append(route, c.stops...)
			matched = true
			break
		}
		if strings.Contains(f, c.b) && strings.Contains(t, c.a) {
			for i := len(c.stops) - 1; i >= 0; i-- {
				route = append(route, c.stops[i])
			}
			matched = true
			break
		}
	}
	if !matched {
		route = append(route, "Check Post", "Midway Plaza")
	}
	return append(route, to)
}
