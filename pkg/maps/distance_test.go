package maps

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFallbackDistance_Deterministic(t *testing.T) {
	a := FallbackDistanceMeters("Chennai", "Hyderabad", "")
	b := FallbackDistanceMeters("Chennai", "Hyderabad", "")
	assert.Equal(t, a, b)

	// 10000 + (7+9)*1000
	assert.Equal(t, int64(26000), a)
}

func TestFallbackDistance_WaypointsAddFiveKmEach(t *testing.T) {
	base := FallbackDistanceMeters("A", "B", "")
	one := FallbackDistanceMeters("A", "B", "Vellore")
	two := FallbackDistanceMeters("A", "B", "Vellore,Kanchipuram")

	assert.Equal(t, base+5000, one)
	assert.Equal(t, base+10000, two)
}

func TestGoogleProvider_NoKeyUsesFallback(t *testing.T) {
	p, err := NewGoogleProvider("")
	assert.NoError(t, err)

	got := p.DistanceMeters(context.Background(), "Chennai", "Hyderabad", "")
	assert.Equal(t, FallbackDistanceMeters("Chennai", "Hyderabad", ""), got)
}

func TestWaypoints_KnownCorridor(t *testing.T) {
	p, _ := NewGoogleProvider("")

	route := p.Waypoints("Chennai", "Hyderabad")
	assert.Equal(t, []string{"Chennai", "Nellore", "Ongole", "Vijayawada", "Suryapet", "Hyderabad"}, route)
}

func TestWaypoints_ReverseDirectionReverses(t *testing.T) {
	p, _ := NewGoogleProvider("")

	route := p.Waypoints("Hyderabad", "Chennai")
	assert.Equal(t, []string{"Hyderabad", "Suryapet", "Vijayawada", "Ongole", "Nellore", "Chennai"}, route)
}

func TestWaypoints_UnknownRouteGetsPlaceholder(t *testing.T) {
	p, _ := NewGoogleProvider("")

	route := p.Waypoints("Pune", "Goa")
	assert.Equal(t, []string{"Pune", "Check Post", "Midway Plaza", "Goa"}, route)
}
