package storage_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/api-framework/internal/adapters/storage"
	"github.com/ammerola/api-framework/test/helpers"
)

// fakeS3 serves the path-style subset of the S3 API the storage uses.
type fakeS3 struct {
	mu           sync.Mutex
	buckets      map[string]bool
	objects      map[string][]byte
	contentTypes map[string]string
	putHeaders   http.Header
}

func newFakeS3(t *testing.T, buckets ...string) (*fakeS3, *httptest.Server) {
	t.Helper()
	f := &fakeS3{
		buckets:      map[string]bool{},
		objects:      map[string][]byte{},
		contentTypes: map[string]string{},
	}
	for _, b := range buckets {
		f.buckets[b] = true
	}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	bucket, key, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/"), "/")

	if key == "" {
		switch r.Method {
		case http.MethodHead:
			if !f.buckets[bucket] {
				w.WriteHeader(http.StatusNotFound)
				return
			}
		case http.MethodPut:
			f.buckets[bucket] = true
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.WriteHeader(http.StatusOK)
		return
	}

	object := bucket + "/" + key
	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[object] = body
		f.contentTypes[object] = r.Header.Get("Content-Type")
		f.putHeaders = r.Header.Clone()
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodGet, http.MethodHead:
		body, ok := f.objects[object]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			if r.Method == http.MethodGet {
				_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
			}
			return
		}
		w.Header().Set("Content-Type", f.contentTypes[object])
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodGet {
			_, _ = w.Write(body)
		}
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeS3) object(key string) ([]byte, string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	body, ok := f.objects[key]
	return body, f.contentTypes[key], ok
}

func (f *fakeS3) lastPutHeaders() http.Header {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.putHeaders
}

func (f *fakeS3) hasBucket(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buckets[name]
}

func s3Config(endpoint, bucket string) *storage.S3Config {
	return &storage.S3Config{
		Region:          "us-east-1",
		Bucket:          bucket,
		Prefix:          "harness/reports",
		AccessKeyID:     "test",
		SecretAccessKey: "test",
		Endpoint:        endpoint,
		UsePathStyle:    true,
	}
}

func TestNewS3Storage(t *testing.T) {
	ctx := context.Background()

	t.Run("bucket_required", func(t *testing.T) {
		_, err := storage.NewS3Storage(ctx, &storage.S3Config{Region: "us-east-1"}, helpers.TestLogger())
		assert.ErrorIs(t, err, storage.ErrBucketRequired)
	})

	t.Run("creates_missing_bucket", func(t *testing.T) {
		fake, srv := newFakeS3(t)

		_, err := storage.NewS3Storage(ctx, s3Config(srv.URL, "reports"), helpers.TestLogger())
		require.NoError(t, err)
		assert.True(t, fake.hasBucket("reports"))
	})
}

func TestS3Storage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	fake, srv := newFakeS3(t, "reports")

	store, err := storage.NewS3Storage(ctx, s3Config(srv.URL, "reports"), helpers.TestLogger())
	require.NoError(t, err)
	assert.Equal(t, "harness/reports/check.json", store.Key("check.json"))

	exists, err := store.Exists(ctx, "check.json")
	require.NoError(t, err)
	assert.False(t, exists)

	report := `{"endpoints":[{"name":"groups","status_code":200}]}`
	location, err := store.Upload(ctx, "check.json", strings.NewReader(report), "")
	require.NoError(t, err)
	assert.Contains(t, location, "/reports/harness/reports/check.json")

	body, contentType, ok := fake.object("reports/harness/reports/check.json")
	require.True(t, ok)
	assert.Equal(t, report, string(body))
	assert.Equal(t, "application/json", contentType)

	exists, err = store.Exists(ctx, "check.json")
	require.NoError(t, err)
	assert.True(t, exists)

	downloaded, err := store.Download(ctx, "check.json")
	require.NoError(t, err)
	assert.JSONEq(t, report, string(downloaded))
}

func TestS3Storage_DownloadMissing(t *testing.T) {
	ctx := context.Background()
	_, srv := newFakeS3(t, "reports")

	store, err := storage.NewS3Storage(ctx, s3Config(srv.URL, "reports"), helpers.TestLogger())
	require.NoError(t, err)

	_, err = store.Download(ctx, "missing.json")
	assert.ErrorContains(t, err, "failed to download missing.json")
}

func TestS3Storage_CustomEndpointSendsPlainBody(t *testing.T) {
	ctx := context.Background()
	fake, srv := newFakeS3(t)

	store, err := storage.NewS3Storage(ctx, s3Config(srv.URL, "reports"), helpers.TestLogger())
	require.NoError(t, err)
	require.True(t, fake.hasBucket("reports"))

	_, err = store.Upload(ctx, "plain.json", strings.NewReader(`{"ok":true}`), "application/json")
	require.NoError(t, err)

	headers := fake.lastPutHeaders()
	require.NotNil(t, headers)
	assert.NotContains(t, headers.Get("Content-Encoding"), "aws-chunked")
	assert.Empty(t, headers.Get("X-Amz-Trailer"))

	body, _, ok := fake.object("reports/harness/reports/plain.json")
	require.True(t, ok)
	assert.JSONEq(t, `{"ok":true}`, string(body))
}
