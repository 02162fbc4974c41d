// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/dashkeys/internal/config"
	"github.com/MKhiriev/dashkeys/internal/logger"
)

type stubSource struct {
	key   string
	ok    bool
	err   error
	calls int
}

func (s *stubSource) Retrieve(context.Context) (string, bool, error) {
	s.calls++
	return s.key, s.ok, s.err
}

func newTestClient(t *testing.T, src *stubSource) KeyedClient {
	t.Helper()
	lookup := func(service string) (CredentialSource, error) {
		if service == "" {
			return nil, errors.New("empty service name")
		}
		return src, nil
	}
	return NewKeyedHTTPClient(config.Adapter{RequestTimeout: 5 * time.Second}, lookup, logger.Nop())
}

func TestKeyedClient_Placement(t *testing.T) {
	tests := []struct {
		name      string
		placement KeyPlacement
		param     string
		check     func(t *testing.T, r *http.Request)
	}{
		{
			name:      "bearer",
			placement: PlaceBearer,
			check: func(t *testing.T, r *http.Request) {
				assert.Equal(t, "Bearer sk-test-1234567890", r.Header.Get("Authorization"))
			},
		},
		{
			name:      "default is bearer",
			placement: "",
			check: func(t *testing.T, r *http.Request) {
				assert.Equal(t, "Bearer sk-test-1234567890", r.Header.Get("Authorization"))
			},
		},
		{
			name:      "default header",
			placement: PlaceHeader,
			check: func(t *testing.T, r *http.Request) {
				assert.Equal(t, "sk-test-1234567890", r.Header.Get("X-API-Key"))
				assert.Empty(t, r.Header.Get("Authorization"))
			},
		},
		{
			name:      "custom header",
			placement: PlaceHeader,
			param:     "X-Finnhub-Token",
			check: func(t *testing.T, r *http.Request) {
				assert.Equal(t, "sk-test-1234567890", r.Header.Get("X-Finnhub-Token"))
			},
		},
		{
			name:      "query",
			placement: PlaceQuery,
			param:     "token",
			check: func(t *testing.T, r *http.Request) {
				assert.Equal(t, "sk-test-1234567890", r.URL.Query().Get("token"))
				assert.Empty(t, r.Header.Get("Authorization"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/query", r.URL.Path)
				tt.check(t, r)
				_, _ = w.Write([]byte(`{"ok":true}`))
			}))
			defer srv.Close()

			src := &stubSource{key: "sk-test-1234567890", ok: true}
			c := newTestClient(t, src)

			resp, err := c.Get(context.Background(), Endpoint{
				Service:   "alpha-vantage",
				BaseURL:   srv.URL + "/",
				Placement: tt.placement,
				Param:     tt.param,
			}, "/query")
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.JSONEq(t, `{"ok":true}`, string(resp.Body))
			assert.Equal(t, 1, src.calls)
		})
	}
}

func TestKeyedClient_KeyNotSet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request must be sent without a key")
	}))
	defer srv.Close()

	c := newTestClient(t, &stubSource{})
	_, err := c.Get(context.Background(), Endpoint{Service: "polygon", BaseURL: srv.URL}, "/")
	assert.ErrorIs(t, err, ErrKeyNotSet)
}

func TestKeyedClient_RetrieveError(t *testing.T) {
	decryptErr := errors.New("failed to decrypt")
	c := newTestClient(t, &stubSource{err: decryptErr})

	_, err := c.Get(context.Background(), Endpoint{Service: "polygon", BaseURL: "https://example.com"}, "/")
	assert.ErrorIs(t, err, decryptErr)
}

func TestKeyedClient_LookupError(t *testing.T) {
	c := newTestClient(t, &stubSource{})

	_, err := c.Get(context.Background(), Endpoint{Service: "", BaseURL: "https://example.com"}, "/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolve credential")
}

func TestKeyedClient_InvalidEndpoint(t *testing.T) {
	src := &stubSource{key: "k", ok: true}
	c := newTestClient(t, src)

	_, err := c.Get(context.Background(), Endpoint{Service: "s", BaseURL: ""}, "/")
	assert.ErrorIs(t, err, ErrInvalidEndpoint)

	_, err = c.Get(context.Background(), Endpoint{Service: "s", BaseURL: "https://example.com", Placement: "cookie"}, "/")
	assert.ErrorIs(t, err, ErrInvalidEndpoint)
}

func TestKeyedClient_MapsStatus(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, ErrBadRequest},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusTooManyRequests, ErrTooManyRequests},
		{http.StatusInternalServerError, ErrInternalServerError},
		{http.StatusBadGateway, ErrBadGateway},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("upstream says no"))
			}))
			defer srv.Close()

			c := newTestClient(t, &stubSource{key: "k", ok: true})
			_, err := c.Get(context.Background(), Endpoint{Service: "s", BaseURL: srv.URL}, "/")
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), "upstream says no")
		})
	}
}

func TestKeyedClient_UnmappedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	c := newTestClient(t, &stubSource{key: "k", ok: true})
	_, err := c.Get(context.Background(), Endpoint{Service: "s", BaseURL: srv.URL}, "/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http 418")
}

func TestNormalizeBaseURL(t *testing.T) {
	got, err := normalizeBaseURL(" api.example.com/v1/ ")
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/v1", got)

	_, err = normalizeBaseURL("http://")
	assert.Error(t, err)
}

func TestRedactKey(t *testing.T) {
	base := errors.New(`Get "https://x/q?apikey=s%2Bk": dial tcp: refused`)

	err := redactKey(base, "s+k")
	assert.NotContains(t, err.Error(), "s%2Bk")
	assert.Contains(t, err.Error(), "REDACTED")
	assert.ErrorIs(t, err, base)

	assert.Same(t, base, redactKey(base, "absent"))
}
