package directions

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient("test-key")
	require.NoError(t, err)
	client.baseURL = server.URL
	client.session = server.Client()
	return client
}

func TestOptimizeWaypoints(t *testing.T) {
	var gotQuery map[string][]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"OK","routes":[{"waypoint_order":[2,0,1]}]}`))
	})

	order, err := client.OptimizeWaypoints(context.Background(), "Depot", "Depot", []string{"A", "B", "C"})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 0, 1}, order)

	assert.Equal(t, "Depot", gotQuery["origin"][0])
	assert.Equal(t, "Depot", gotQuery["destination"][0])
	assert.Equal(t, "optimize:true|A|B|C", gotQuery["waypoints"][0])
	assert.Equal(t, "test-key", gotQuery["key"][0])
}

func TestOptimizeWaypointsAPIStatusError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"REQUEST_DENIED","error_message":"The provided API key is invalid."}`))
	})

	_, err := client.OptimizeWaypoints(context.Background(), "Depot", "Depot", []string{"A"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REQUEST_DENIED")
	assert.Contains(t, err.Error(), "API key is invalid")
}

func TestOptimizeWaypointsRetriesServerErrors(t *testing.T) {
	attempts := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"status":"OK","routes":[{"waypoint_order":[0]}]}`))
	})

	order, err := client.OptimizeWaypoints(context.Background(), "Depot", "Depot", []string{"A"})
	require.NoError(t, err)
	assert.Equal(t, []int{0}, order)
	assert.Equal(t, 3, attempts)
}

func TestOptimizeWaypointsDoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := client.OptimizeWaypoints(context.Background(), "Depot", "Depot", []string{"A"})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestOptimizeWaypointsIndexCountMismatch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"OK","routes":[{"waypoint_order":[0]}]}`))
	})

	_, err := client.OptimizeWaypoints(context.Background(), "Depot", "Depot", []string{"A", "B"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "waypoint indexes")
}

func TestOptimizeWaypointsEmptyInput(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for empty waypoints")
	})

	order, err := client.OptimizeWaypoints(context.Background(), "Depot", "Depot", nil)
	require.NoError(t, err)
	assert.Empty(t, order)
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient("")
	require.Error(t, err)
}
