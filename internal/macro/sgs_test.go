package macro

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(url string) *SGSClient {
	c := NewSGSClient(5 * time.Second)
	c.BaseURL = url
	c.NewBackOff = func() backoff.BackOff {
		return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 2)
	}
	return c
}

func TestSGSClient_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/dados/serie/bcdata.sgs.11/dados", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("formato"))
		assert.Equal(t, "01/01/2000", r.URL.Query().Get("dataInicial"))
		assert.Equal(t, "31/12/2009", r.URL.Query().Get("dataFinal"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"data":"03/01/2000","valor":"0.069186"},{"data":"04/01/2000","valor":""},{"data":"05/01/2000","valor":"0.069035"}]`))
	}))
	defer srv.Close()

	got, err := testClient(srv.URL).Fetch(context.Background(), 11, ymd(2000, 1, 1), ymd(2009, 12, 31))
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, obs(ymd(2000, 1, 3), 0.069186), got[0])
	assert.Equal(t, Observation{Date: ymd(2000, 1, 4)}, got[1])
	assert.Equal(t, obs(ymd(2000, 1, 5), 0.069035), got[2])
}

func TestSGSClient_RetriesServerErrors(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[{"data":"01/02/2020","valor":"0.25"}]`))
	}))
	defer srv.Close()

	got, err := testClient(srv.URL).Fetch(context.Background(), 433, ymd(2020, 1, 1), ymd(2020, 12, 31))
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestSGSClient_ClientErrorIsPermanent(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.Error(w, `{"erro":"O sistema aceita uma janela de consulta de, no máximo, 10 anos"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Fetch(context.Background(), 11, ymd(2000, 1, 1), ymd(2025, 1, 1))
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusBadRequest))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestSGSClient_RetriesExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Fetch(context.Background(), 11, ymd(2000, 1, 1), ymd(2001, 1, 1))
	assert.True(t, IsStatus(err, http.StatusTooManyRequests))
}

func TestSGSClient_BadPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"data":"2020-01-01","valor":"1"}]`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Fetch(context.Background(), 11, ymd(2020, 1, 1), ymd(2020, 2, 1))
	assert.Error(t, err)
}
