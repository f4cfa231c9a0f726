package bricklink

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brickbot/bricklink-telegram-bot/internal/catalog"
	"github.com/brickbot/bricklink-telegram-bot/internal/storage"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(ClientOpts{
		BaseURL: server.URL + "/",
		Credentials: Credentials{
			ConsumerKey:    "ck",
			ConsumerSecret: "cs",
			AccessToken:    "at",
			TokenSecret:    "ts",
		},
		RatePerSecond: 1000,
		Burst:         100,
	})
}

func TestClientGet(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/items/SET/6031-1/price", r.URL.Path)
		assert.Equal(t, "stock", r.URL.Query().Get("guide_type"))
		assert.Equal(t, "N", r.URL.Query().Get("new_or_used"))
		assert.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "OAuth "), "request is signed")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"meta":{"code":200,"message":"OK","description":"OK"},"data":{"item":{"no":"6031-1","type":"SET"}}}`))
	})

	data, err := client.Get(context.Background(), "items/SET/6031-1/price", map[string]string{
		"guide_type":  "stock",
		"new_or_used": "N",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"item":{"no":"6031-1","type":"SET"}}`, string(data))
}

func TestClientGet_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"meta":{"code":404,"message":"RESOURCE_NOT_FOUND","description":"no item"},"data":{}}`))
	})

	_, err := client.Get(context.Background(), "items/SET/1-1", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, catalog.ErrNotFound))
}

func TestClientGet_Malformed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"meta":{"code":400,"message":"PARAMETER_MISSING_OR_INVALID","description":"guide_type is invalid"},"data":{}}`))
	})

	_, err := client.Get(context.Background(), "items/SET/6031-1/price", nil)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.Malformed())
	assert.Equal(t, "guide_type is invalid", apiErr.Error())
	assert.False(t, errors.Is(err, catalog.ErrNotFound))
}

func TestClientGet_MalformedThroughResolver(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"meta":{"code":400,"message":"INVALID_URI","description":"Invalid URI"},"data":{}}`))
	})
	resolver := catalog.NewResolver(client)

	_, err := resolver.Info(context.Background(), catalog.ItemRef{Kind: catalog.KindSet, Number: "6031-1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, catalog.ErrMalformedRequest))
	assert.Equal(t, "Invalid URI", err.Error())
}

func TestClientGet_InvalidBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`<html>bad gateway</html>`))
	})

	_, err := client.Get(context.Background(), "items/SET/6031-1", nil)
	require.Error(t, err)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Code)
	assert.False(t, apiErr.Malformed())
}

func TestCachedGateway(t *testing.T) {
	var hits atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"meta":{"code":200,"message":"OK","description":"OK"},"data":{"no":"sw0547"}}`))
	})
	store, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	gw := NewCachedGateway(client, store, time.Hour, nil)
	params := map[string]string{"type": "MINIFIG"}

	for i := 0; i < 3; i++ {
		data, err := gw.Get(context.Background(), "items/MINIFIG/sw0547", params)
		require.NoError(t, err)
		assert.JSONEq(t, `{"no":"sw0547"}`, string(data))
	}
	assert.Equal(t, int32(1), hits.Load())

	_, err = gw.Get(context.Background(), "items/MINIFIG/sw0548", params)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestCachedGateway_ErrorsAreNotCached(t *testing.T) {
	var hits atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"meta":{"code":404,"message":"RESOURCE_NOT_FOUND","description":"missing"},"data":{}}`))
	})

	gw := NewCachedGateway(client, storage.NopCache{}, time.Hour, nil)
	for i := 0; i < 2; i++ {
		_, err := gw.Get(context.Background(), "items/SET/1-1", nil)
		assert.True(t, errors.Is(err, catalog.ErrNotFound))
	}
	assert.Equal(t, int32(2), hits.Load())
}

func TestRequestKeyIgnoresParamOrder(t *testing.T) {
	a := requestKey("items/SET/1-1/price", map[string]string{"a": "1", "b": "2"})
	b := requestKey("items/SET/1-1/price", map[string]string{"b": "2", "a": "1"})
	assert.Equal(t, a, b)
}
