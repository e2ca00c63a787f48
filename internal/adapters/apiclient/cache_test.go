package apiclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/api-framework/internal/adapters/apiclient"
	"github.com/ammerola/api-framework/internal/adapters/cache"
	"github.com/ammerola/api-framework/test/helpers"
)

func newCountingServer(t *testing.T, status int) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"data":[{"id":"1","type":"group"}]}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newResponseCache(t *testing.T) (*cache.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := cache.NewCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute, helpers.TestLogger())
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestClient_Cache(t *testing.T) {
	ctx := context.Background()

	t.Run("second_get_is_served_from_cache", func(t *testing.T) {
		srv, hits := newCountingServer(t, http.StatusOK)
		rc, mr := newResponseCache(t)
		client := newClient(t, srv.URL+"/api/v2/", apiclient.WithCache(rc, time.Minute))

		first, err := client.Get(ctx, "groups", nil, nil)
		require.NoError(t, err)
		assert.False(t, first.Cached)

		second, err := client.Get(ctx, "groups", nil, nil)
		require.NoError(t, err)
		assert.True(t, second.Cached)
		assert.Equal(t, int32(1), hits.Load())

		assert.Equal(t, first.Body, second.Body)
		assert.Equal(t, first.URL, second.URL)
		assert.Equal(t, http.StatusOK, second.StatusCode)
		assert.Equal(t, "application/json", second.Header.Get("Content-Type"))

		key := cache.BuildKey(cache.PrefixResponse, http.MethodGet, first.URL)
		assert.True(t, mr.Exists(key))
		assert.Equal(t, time.Minute, mr.TTL(key))
	})

	t.Run("fresh_response_skips_lookup_and_refreshes", func(t *testing.T) {
		srv, hits := newCountingServer(t, http.StatusOK)
		rc, mr := newResponseCache(t)
		client := newClient(t, srv.URL, apiclient.WithCache(rc, time.Minute))

		_, err := client.Get(ctx, "groups", nil, nil)
		require.NoError(t, err)
		mr.FastForward(30 * time.Second)

		fresh, err := client.Get(apiclient.WithFreshResponse(ctx), "groups", nil, nil)
		require.NoError(t, err)
		assert.False(t, fresh.Cached)
		assert.Equal(t, int32(2), hits.Load())

		key := cache.BuildKey(cache.PrefixResponse, http.MethodGet, fresh.URL)
		assert.Equal(t, time.Minute, mr.TTL(key))

		srv.Close()
		_, err = client.Get(apiclient.WithFreshResponse(ctx), "groups", nil, nil)
		assert.Error(t, err)

		cached, err := client.Get(ctx, "groups", nil, nil)
		require.NoError(t, err)
		assert.True(t, cached.Cached)
	})

	t.Run("entry_expires", func(t *testing.T) {
		srv, hits := newCountingServer(t, http.StatusOK)
		rc, mr := newResponseCache(t)
		client := newClient(t, srv.URL, apiclient.WithCache(rc, time.Second))

		_, err := client.Get(ctx, "groups", nil, nil)
		require.NoError(t, err)
		mr.FastForward(2 * time.Second)

		resp, err := client.Get(ctx, "groups", nil, nil)
		require.NoError(t, err)
		assert.False(t, resp.Cached)
		assert.Equal(t, int32(2), hits.Load())
	})

	t.Run("error_status_is_not_cached", func(t *testing.T) {
		srv, hits := newCountingServer(t, http.StatusServiceUnavailable)
		rc, _ := newResponseCache(t)
		client := newClient(t, srv.URL, apiclient.WithCache(rc, time.Minute))

		for range 2 {
			resp, err := client.Get(ctx, "groups", nil, nil)
			require.NoError(t, err)
			assert.False(t, resp.Cached)
		}
		assert.Equal(t, int32(2), hits.Load())
	})

	t.Run("other_methods_bypass_cache", func(t *testing.T) {
		srv, hits := newCountingServer(t, http.StatusOK)
		rc, _ := newResponseCache(t)
		client := newClient(t, srv.URL, apiclient.WithCache(rc, time.Minute))

		for range 2 {
			_, err := client.Post(ctx, "groups", map[string]string{"name": "x"})
			require.NoError(t, err)
			_, err = client.Delete(ctx, "groups", nil)
			require.NoError(t, err)
		}
		assert.Equal(t, int32(4), hits.Load())
	})

	t.Run("query_is_part_of_the_key", func(t *testing.T) {
		srv, hits := newCountingServer(t, http.StatusOK)
		rc, _ := newResponseCache(t)
		client := newClient(t, srv.URL, apiclient.WithCache(rc, time.Minute))

		_, err := client.Get(ctx, "breeds", map[string][]string{"page[number]": {"1"}}, nil)
		require.NoError(t, err)
		_, err = client.Get(ctx, "breeds", map[string][]string{"page[number]": {"2"}}, nil)
		require.NoError(t, err)
		assert.Equal(t, int32(2), hits.Load())
	})
}
