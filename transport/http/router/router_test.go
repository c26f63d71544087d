package router_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roombooking/permissions"
	"roombooking/transport/http/router"
)

func routes(t *testing.T) map[string]bool {
	t.Helper()

	mux := chi.NewRouter()
	r := router.New(router.DomainHandlers{}, nil, nil, nil)
	r.SetupRoutes(mux)

	found := map[string]bool{}
	err := chi.Walk(mux, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		found[method+" "+route] = true

		return nil
	})
	require.NoError(t, err)

	return found
}

func TestSetupRoutes(t *testing.T) {
	found := routes(t)

	for _, route := range []string{
		"POST /api/auth/login",
		"GET /api/auth/user/me",
		"GET /api/users/",
		"GET /api/meeting_rooms",
		"PUT /api/rooms/{id}/facilities",
		"DELETE /api/facilities/{id}",
		"PUT /api/bookings/{id}/checkout",
		"GET /api/bookings/export",
		"POST /api/photo_usage/upload",
	} {
		assert.True(t, found[route], route)
	}
}

// Every guarded entry must point at a real route, otherwise a typo silently opens the endpoint to every role.
func TestPermissionsMatchRoutes(t *testing.T) {
	found := routes(t)

	data := permissions.Get()
	require.NotNil(t, data)

	for _, endpoint := range data.Endpoints {
		if !strings.HasPrefix(endpoint.Path, "/api/") {
			continue
		}

		assert.True(t, found[endpoint.Method+" "+endpoint.Path], "%s %s", endpoint.Method, endpoint.Path)
	}
}
