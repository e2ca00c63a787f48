// test/benchmarks/helpers.go
package benchmarks

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// newActivitiesServer answers every request with a fixed activity list.
func newActivitiesServer(b *testing.B) *httptest.Server {
	b.Helper()
	body := []byte(`[{"id":1,"title":"Activity 1","dueDate":"2024-12-31T23:59:59Z","completed":false}]`)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	b.Cleanup(srv.Close)
	return srv
}
