//go:build api

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseURL = getEnv("API_BASE_URL", "http://localhost:8080")

const (
	driverEmail    = "driver@example.com"
	passengerEmail = "rider@example.com"
)

// TestAPI_FullFlow exercises the whole ride lifecycle against a running
// service: post an offering, search it, book a seat, accept, pay online,
// complete the ride.
func TestAPI_FullFlow(t *testing.T) {
	waitForService(t)

	var offeringID, bookingID float64
	var externalRef string

	t.Run("Step1_PostOffering", func(t *testing.T) {
		resp := post(t, "/api/v1/offerings", driverEmail, map[string]interface{}{
			"from_location": "Chennai",
			"to_location":   "Hyderabad",
			"travel_date":   "2026-09-15",
			"capacity":      4,
		})
		require.Equal(t, 201, resp.StatusCode)

		var offering map[string]interface{}
		decodeJSON(t, resp, &offering)
		offeringID = offering["id"].(float64)

		assert.Equal(t, "OPEN", offering["status"])
		assert.Equal(t, float64(4), offering["available_seats"])
		assert.Greater(t, offering["price_per_seat"].(float64), 0.0)
	})

	t.Run("Step2_SearchFindsIt", func(t *testing.T) {
		resp := get(t, "/api/v1/offerings/search?from=chennai&to=hyderabad", "")
		require.Equal(t, 200, resp.StatusCode)

		var results []map[string]interface{}
		decodeJSON(t, resp, &results)
		require.NotEmpty(t, results)
	})

	t.Run("Step3_BookSeats", func(t *testing.T) {
		resp := post(t, "/api/v1/bookings", passengerEmail, map[string]interface{}{
			"offering_id":    offeringID,
			"seats":          2,
			"payment_method": "ONLINE",
		})
		require.Equal(t, 201, resp.StatusCode)

		var booking map[string]interface{}
		decodeJSON(t, resp, &booking)
		bookingID = booking["id"].(float64)

		assert.Equal(t, "PENDING", booking["status"])
		assert.Equal(t, "UNPAID", booking["payment_status"])
	})

	t.Run("Step4_DriverAccepts", func(t *testing.T) {
		resp := put(t, fmt.Sprintf("/api/v1/bookings/%v/status", bookingID), driverEmail, map[string]interface{}{
			"status": "ACCEPTED",
		})
		require.Equal(t, 200, resp.StatusCode)

		var booking map[string]interface{}
		decodeJSON(t, resp, &booking)
		assert.Equal(t, "ACCEPTED", booking["status"])
	})

	t.Run("Step5_SeatsWereReserved", func(t *testing.T) {
		resp := get(t, fmt.Sprintf("/api/v1/offerings/%v", offeringID), "")
		require.Equal(t, 200, resp.StatusCode)

		var offering map[string]interface{}
		decodeJSON(t, resp, &offering)
		assert.Equal(t, float64(2), offering["available_seats"])
	})

	t.Run("Step6_CreatePaymentIntent", func(t *testing.T) {
		resp := post(t, "/api/v1/payments/intent", passengerEmail, map[string]interface{}{
			"booking_id": bookingID,
		})
		require.Equal(t, 201, resp.StatusCode)

		var intent map[string]interface{}
		decodeJSON(t, resp, &intent)
		payment := intent["payment"].(map[string]interface{})
		externalRef = payment["external_ref"].(string)

		assert.Equal(t, "PENDING", payment["status"])
		assert.NotEmpty(t, intent["client_secret"])
	})

	t.Run("Step7_ConfirmPayment", func(t *testing.T) {
		resp := post(t, "/api/v1/payments/confirm", "", map[string]interface{}{
			"external_ref": externalRef,
			"method_ref":   "card_visa",
		})
		require.Equal(t, 200, resp.StatusCode)

		bresp := get(t, fmt.Sprintf("/api/v1/bookings/%v", bookingID), "")
		var booking map[string]interface{}
		decodeJSON(t, bresp, &booking)
		assert.Equal(t, "PAID", booking["status"])
	})

	t.Run("Step8_CompleteRide", func(t *testing.T) {
		resp := put(t, fmt.Sprintf("/api/v1/offerings/%v/complete", offeringID), driverEmail, nil)
		require.Equal(t, 200, resp.StatusCode)

		bresp := get(t, fmt.Sprintf("/api/v1/bookings/%v", bookingID), "")
		var booking map[string]interface{}
		decodeJSON(t, bresp, &booking)
		assert.Equal(t, "COMPLETED", booking["status"])
	})

	t.Run("Step9_PassengerHasNotifications", func(t *testing.T) {
		resp := get(t, "/api/v1/notifications", passengerEmail)
		require.Equal(t, 200, resp.StatusCode)

		var notifications []map[string]interface{}
		decodeJSON(t, resp, &notifications)
		assert.NotEmpty(t, notifications)
	})
}

func TestAPI_OverbookingRejected(t *testing.T) {
	waitForService(t)

	resp := post(t, "/api/v1/offerings", driverEmail, map[string]interface{}{
		"from_location": "Bangalore",
		"to_location":   "Chennai",
		"travel_date":   "2026-09-20",
		"capacity":      1,
	})
	require.Equal(t, 201, resp.StatusCode)
	var offering map[string]interface{}
	decodeJSON(t, resp, &offering)

	resp = post(t, "/api/v1/bookings", "first@example.com", map[string]interface{}{
		"offering_id": offering["id"],
		"seats":       1,
	})
	require.Equal(t, 201, resp.StatusCode)
	resp.Body.Close()

	resp = post(t, "/api/v1/bookings", "second@example.com", map[string]interface{}{
		"offering_id": offering["id"],
		"seats":       1,
	})
	defer resp.Body.Close()
	assert.Equal(t, 409, resp.StatusCode)
}

// --- helpers ---

func waitForService(t *testing.T) {
	t.Helper()
	for i := 0; i < 30; i++ {
		resp, err := http.Get(baseURL + "/health")
		if err == nil && resp.StatusCode == 200 {
			resp.Body.Close()
			return
		}
		time.Sleep(time.Second)
	}
	t.Fatal("service did not become ready")
}

func doJSON(t *testing.T, method, path, email string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, baseURL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if email != "" {
		req.Header.Set("X-User-Email", email)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func post(t *testing.T, path, email string, body interface{}) *http.Response {
	return doJSON(t, http.MethodPost, path, email, body)
}

func put(t *testing.T, path, email string, body interface{}) *http.Response {
	return doJSON(t, http.MethodPut, path, email, body)
}

func get(t *testing.T, path, email string) *http.Response {
	return doJSON(t, http.MethodGet, path, email, nil)
}

func decodeJSON(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
