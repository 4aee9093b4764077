package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRateClient(t *testing.T, status int, body string) *RateClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "warthog", r.URL.Query().Get("ids"))
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	c := NewRateClient("Warthog", "USD")
	c.baseURL = srv.URL
	return c
}

func TestRate(t *testing.T) {
	c := newTestRateClient(t, http.StatusOK, `{"warthog": {"usd": 0.01234567891}}`)

	rate, err := c.Rate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0.01234567891", rate.String())
	assert.Equal(t, "usd", c.Currency())
}

func TestRateErrors(t *testing.T) {
	tests := map[string]struct {
		status int
		body   string
	}{
		"status":   {http.StatusTooManyRequests, `{}`},
		"missing":  {http.StatusOK, `{}`},
		"not json": {http.StatusOK, `oops`},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			c := newTestRateClient(t, tc.status, tc.body)
			_, err := c.Rate(context.Background())
			assert.Error(t, err)
		})
	}
}
