package secret

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vaultServer(t *testing.T) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if req.Header.Get("X-Vault-Token") != "test-token" {
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"errors":["permission denied"]}`))
				return
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Get("/v1/secret/data/psktron", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"data":{"api_key":"vault-key","other":42},"metadata":{"version":3}}}`))
	})
	r.Get("/v1/kv/psktron", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"api_key":"v1-key"}}`))
	})
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"errors":[]}`))
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func newTestVault(t *testing.T, addr, path, field string) *Vault {
	t.Helper()
	v, err := NewVault(addr, path, field)
	require.NoError(t, err)
	v.SetToken("test-token")
	return v
}

func TestVault_KVv2(t *testing.T) {
	srv := vaultServer(t)
	v := newTestVault(t, srv.URL, "/secret/data/psktron/", "")

	key, err := v.APIKey(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "vault-key", key)
	assert.Equal(t, "vault:secret/data/psktron", v.String())
}

func TestVault_KVv1(t *testing.T) {
	srv := vaultServer(t)
	v := newTestVault(t, srv.URL, "kv/psktron", "api_key")

	key, err := v.APIKey(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v1-key", key)
}

func TestVault_Errors(t *testing.T) {
	srv := vaultServer(t)

	tests := []struct {
		name  string
		path  string
		field string
		want  string
	}{
		{"missing secret", "secret/data/nothing", "", "no secret at"},
		{"missing field", "secret/data/psktron", "token", `has no field "token"`},
		{"non-string field", "secret/data/psktron", "other", "is not a string"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestVault(t, srv.URL, tt.path, tt.field)
			_, err := v.APIKey(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestVault_PermissionDenied(t *testing.T) {
	srv := vaultServer(t)
	v := newTestVault(t, srv.URL, "secret/data/psktron", "")
	v.SetToken("wrong")

	_, err := v.APIKey(context.Background())
	assert.Error(t, err)
}

func TestNewVault_RequiresPath(t *testing.T) {
	_, err := NewVault("http://127.0.0.1:8200", "", "")
	assert.Error(t, err)
}
