package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientImpl_CreatePreference(t *testing.T) {
	t.Run("posts the checkout and decodes the redirect urls", func(t *testing.T) {
		// given
		var received preferenceBody
		var authHeader string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader = r.Header.Get("Authorization")
			assert.Equal(t, "POST", r.Method)
			assert.Equal(t, "/checkout/preferences", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(Preference{
				Id:               "pref-1",
				InitPoint:        "https://pay.example/p/1",
				SandboxInitPoint: "https://sandbox.pay.example/p/1",
			})
		}))
		defer server.Close()
		client := NewClient(Config{AccessToken: "token-123", BaseURL: server.URL})

		// when
		preference, err := client.CreatePreference(context.Background(), PreferenceRequest{
			Title:     "Suscripción mensual",
			Quantity:  3,
			UnitPrice: 1500.50,
			TenantRef: "tenant-uid-1",
			Users:     3,
		})

		// then
		require.NoError(t, err)
		assert.Equal(t, "pref-1", preference.Id)
		assert.Equal(t, "https://pay.example/p/1", preference.InitPoint)
		assert.Equal(t, "https://sandbox.pay.example/p/1", preference.SandboxInitPoint)
		assert.Equal(t, "Bearer token-123", authHeader)
		require.Len(t, received.Items, 1)
		assert.Equal(t, "Suscripción mensual", received.Items[0].Title)
		assert.Equal(t, 3, received.Items[0].Quantity)
		assert.InDelta(t, 1500.50, received.Items[0].UnitPrice, 1e-9)
		assert.Equal(t, "tenant-uid-1", received.ExternalReference)
	})

	t.Run("fails on a non 2xx answer", func(t *testing.T) {
		// given
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "invalid token", http.StatusUnauthorized)
		}))
		defer server.Close()
		client := NewClient(Config{AccessToken: "bad", BaseURL: server.URL})

		// when
		_, err := client.CreatePreference(context.Background(), PreferenceRequest{Title: "x", Quantity: 1, UnitPrice: 1})

		// then
		assert.Error(t, err)
	})
}
