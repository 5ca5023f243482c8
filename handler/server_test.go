package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lending/core"
	"lending/handler/hc"
	"lending/internal/clock"
	"lending/service/fee"
	"lending/service/ledger"
	"lending/service/oracle"
	"lending/service/registry"
	"lending/service/vault"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, probes map[string]hc.Probe) *httptest.Server {
	c := clock.NewManual(time.Unix(1_700_000_000, 0))
	l := ledger.New(c, oracle.New(oracle.NewStaticFeed(), c, oracle.Config{}), registry.New(), fee.New(), vault.New(), &core.Config{}, ledger.DefaultConfig())

	s := New(l, "test", probes, true)
	mux := chi.NewMux()
	mux.Mount("/hc", s.HandleHealthCheck())
	mux.Mount("/", s.HandleRestAPI())

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func TestHandleRestAPI(t *testing.T) {
	ts := newServer(t, nil)

	resp, err := http.Get(ts.URL + "/pools")
	require.Nil(t, err)
	defer resp.Body.Close()

	var body struct {
		Data []interface{} `json:"data"`
	}
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Nil(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotNil(t, body.Data)
	assert.Empty(t, body.Data)

	t.Run("errors are not wrapped", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/pools/ETH")
		require.Nil(t, err)
		defer resp.Body.Close()

		var body map[string]interface{}
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		require.Nil(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.NotContains(t, body, "data")
		assert.Equal(t, float64(core.ErrPoolNotFound), body["code"])
	})
}

func TestHandleHealthCheck(t *testing.T) {
	probe := func(err error) map[string]hc.Probe {
		return map[string]hc.Probe{
			"db": func(ctx context.Context) error { return err },
		}
	}

	for status, probes := range map[int]map[string]hc.Probe{
		http.StatusOK:                 probe(nil),
		http.StatusServiceUnavailable: probe(errors.New("connection refused")),
	} {
		ts := newServer(t, probes)

		resp, err := http.Get(ts.URL + "/hc")
		require.Nil(t, err)
		resp.Body.Close()
		assert.Equal(t, status, resp.StatusCode)
	}
}
