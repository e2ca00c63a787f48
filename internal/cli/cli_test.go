package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/api-framework/internal/adapters/apiclient"
	"github.com/ammerola/api-framework/internal/cli"
	"github.com/ammerola/api-framework/internal/core/endpoints"
	"github.com/ammerola/api-framework/internal/core/ports"
	"github.com/ammerola/api-framework/internal/pkg/config"
	"github.com/ammerola/api-framework/test/helpers"
	"github.com/ammerola/api-framework/test/mocks"
)

type harness struct {
	out      bytes.Buffer
	errOut   bytes.Buffer
	database *mocks.MockDatabase
	client   *mocks.MockAPIClient
	store    *mocks.MockReportStore
	baseURLs []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("APP_ENV", "test")
	t.Setenv("HARNESS_CONFIG", "")

	ctrl := gomock.NewController(t)
	return &harness{
		database: mocks.NewMockDatabase(ctrl),
		client:   mocks.NewMockAPIClient(ctrl),
		store:    mocks.NewMockReportStore(ctrl),
	}
}

func (h *harness) run(args ...string) error {
	root := cli.NewRootCommand(cli.Options{
		Out: &h.out,
		Err: &h.errOut,
		OpenDatabase: func(context.Context, *config.Config, *slog.Logger) (ports.Database, error) {
			return h.database, nil
		},
		NewAPIClient: func(_ *config.Config, baseURL string, _ *slog.Logger) (ports.APIClient, error) {
			h.baseURLs = append(h.baseURLs, baseURL)
			return h.client, nil
		},
		NewReportStore: func(context.Context, *config.Config, *slog.Logger) (ports.ReportStore, error) {
			return h.store, nil
		},
	})
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func okResponse(url string) *apiclient.Response {
	return &apiclient.Response{StatusCode: http.StatusOK, URL: url, Duration: 12 * time.Millisecond}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	root := cli.NewRootCommand(cli.Options{Out: &out, Err: &out})
	root.SetArgs([]string{"version"})

	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "harness ")
}

func TestCheckCommand_EndpointsOnly(t *testing.T) {
	h := newHarness(t)

	h.client.EXPECT().
		Get(gomock.Any(), endpoints.Activities, nil, nil).
		Return(okResponse("https://fakerestapi.azurewebsites.net/api/v1/Activities"), nil)
	h.client.EXPECT().
		Get(gomock.Any(), endpoints.Groups, nil, nil).
		Return(okResponse("https://dogapi.dog/api/v2/groups"), nil)

	require.NoError(t, h.run("check", "--skip-db", "-e", "activities,groups"))

	assert.Equal(t, []string{"https://fakerestapi.azurewebsites.net/", "https://dogapi.dog/api/v2/"}, h.baseURLs)

	var result struct {
		Endpoints []struct {
			Name       string `json:"name"`
			StatusCode int    `json:"status_code"`
			DurationMS int64  `json:"duration_ms"`
		} `json:"endpoints"`
	}
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &result))
	require.Len(t, result.Endpoints, 2)
	assert.Equal(t, "activities", result.Endpoints[0].Name)
	assert.Equal(t, http.StatusOK, result.Endpoints[0].StatusCode)
	assert.Equal(t, int64(12), result.Endpoints[0].DurationMS)
}

func TestCheckCommand_DatabaseHealth(t *testing.T) {
	h := newHarness(t)

	gomock.InOrder(
		h.database.EXPECT().Health(gomock.Any()).Return(map[string]any{
			"status":          "healthy",
			"max_connections": int32(10),
		}),
		h.database.EXPECT().Close().Return(nil),
	)
	h.client.EXPECT().
		Get(gomock.Any(), endpoints.Breeds, nil, nil).
		Return(okResponse("https://dogapi.dog/api/v2/breeds"), nil)

	require.NoError(t, h.run("check", "-e", "breeds"))
	assert.Contains(t, h.out.String(), `"status": "healthy"`)
}

func TestCheckCommand_Failures(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		expect func(h *harness)
	}{
		{
			name: "non_success_status",
			args: []string{"check", "--skip-db", "-e", "activities"},
			expect: func(h *harness) {
				h.client.EXPECT().Get(gomock.Any(), endpoints.Activities, nil, nil).
					Return(&apiclient.Response{StatusCode: http.StatusServiceUnavailable}, nil)
			},
		},
		{
			name: "transport_error",
			args: []string{"check", "--skip-db", "-e", "groups"},
			expect: func(h *harness) {
				h.client.EXPECT().Get(gomock.Any(), endpoints.Groups, nil, nil).
					Return(nil, errors.New("dial tcp: no such host"))
			},
		},
		{
			name:   "unknown_endpoint",
			args:   []string{"check", "--skip-db", "-e", "users"},
			expect: func(*harness) {},
		},
		{
			name:   "endpoint_with_placeholders",
			args:   []string{"check", "--skip-db", "-e", "activity_by_id"},
			expect: func(*harness) {},
		},
		{
			name: "unhealthy_database",
			args: []string{"check", "-e", "activities"},
			expect: func(h *harness) {
				h.database.EXPECT().Health(gomock.Any()).Return(map[string]any{"status": "unhealthy"})
				h.database.EXPECT().Close().Return(nil)
				h.client.EXPECT().Get(gomock.Any(), endpoints.Activities, nil, nil).
					Return(okResponse("https://fakerestapi.azurewebsites.net/api/v1/Activities"), nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			tt.expect(h)

			err := h.run(tt.args...)
			assert.ErrorIs(t, err, cli.ErrCheckFailed)
		})
	}
}

type seedHarness struct {
	out  bytes.Buffer
	mock sqlmock.Sqlmock
	root func(args ...string) error
}

// newSeedHarness serves the seed command a sqlmock-backed accessor so the
// transaction boundaries are visible to the test.
func newSeedHarness(t *testing.T) *seedHarness {
	t.Helper()
	t.Setenv("APP_ENV", "test")
	t.Setenv("HARNESS_CONFIG", "")

	database, mock := helpers.SetupMockDatabase(t, nil)
	h := &seedHarness{mock: mock}
	h.root = func(args ...string) error {
		root := cli.NewRootCommand(cli.Options{
			Out: &h.out,
			Err: io.Discard,
			OpenDatabase: func(context.Context, *config.Config, *slog.Logger) (ports.Database, error) {
				return database, nil
			},
		})
		root.SetArgs(append([]string{"seed"}, args...))
		return root.ExecuteContext(context.Background())
	}
	return h
}

func TestSeedCommand(t *testing.T) {
	h := newSeedHarness(t)

	h.mock.ExpectBegin()
	h.mock.ExpectExec(`DELETE FROM people`).WillReturnResult(sqlmock.NewResult(0, 3))
	for range 4 {
		h.mock.ExpectExec(`INSERT INTO people`).WillReturnResult(sqlmock.NewResult(0, 1))
	}
	h.mock.ExpectQuery(`SELECT setval`).
		WillReturnRows(sqlmock.NewRows([]string{"setval"}).AddRow(int64(4)))
	h.mock.ExpectCommit()
	h.mock.ExpectClose()

	require.NoError(t, h.root())
	assert.Contains(t, h.out.String(), "seeded people: 3 deleted, 4 inserted")
	require.NoError(t, h.mock.ExpectationsWereMet())
}

func TestSeedCommand_File(t *testing.T) {
	h := newSeedHarness(t)

	path := filepath.Join(t.TempDir(), "people.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`people:
  - {id: 10, fname: Erin, age: 28}
  - {id: 11, fname: Frank, age: 52}
`), 0o600))

	h.mock.ExpectBegin()
	h.mock.ExpectExec(`DELETE FROM people`).WillReturnResult(sqlmock.NewResult(0, 4))
	h.mock.ExpectExec(`INSERT INTO people`).
		WithArgs(int64(10), "Erin", sqlmock.AnyArg(), int64(28), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(10, 1))
	h.mock.ExpectExec(`INSERT INTO people`).
		WithArgs(int64(11), "Frank", sqlmock.AnyArg(), int64(52), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(11, 1))
	h.mock.ExpectQuery(`SELECT setval`).
		WillReturnRows(sqlmock.NewRows([]string{"setval"}).AddRow(int64(11)))
	h.mock.ExpectCommit()
	h.mock.ExpectClose()

	require.NoError(t, h.root("--file", path))
	assert.Contains(t, h.out.String(), "seeded people: 4 deleted, 2 inserted")
	require.NoError(t, h.mock.ExpectationsWereMet())
}

func TestSeedCommand_FailedInsertRollsBackDelete(t *testing.T) {
	h := newSeedHarness(t)
	cause := errors.New(`duplicate key value violates unique constraint "people_pkey"`)

	path := filepath.Join(t.TempDir(), "people.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`people:
  - {id: 10, fname: Erin, age: 28}
  - {id: 10, fname: Frank, age: 52}
`), 0o600))

	h.mock.ExpectBegin()
	h.mock.ExpectExec(`DELETE FROM people`).WillReturnResult(sqlmock.NewResult(0, 4))
	h.mock.ExpectExec(`INSERT INTO people`).WillReturnResult(sqlmock.NewResult(10, 1))
	h.mock.ExpectExec(`INSERT INTO people`).WillReturnError(cause)
	h.mock.ExpectRollback()
	h.mock.ExpectClose()

	err := h.root("--file", path)
	assert.ErrorIs(t, err, cause)
	assert.Empty(t, h.out.String())
	require.NoError(t, h.mock.ExpectationsWereMet())
}

func TestSeedCommand_BadFileSkipsDatabase(t *testing.T) {
	h := newHarness(t)

	err := h.run("seed", "-f", filepath.Join(t.TempDir(), "people.csv"))
	assert.ErrorContains(t, err, "unsupported dataset format")
}

func TestSeedCommand_DatabaseUnavailable(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	cause := errors.New("connection refused")

	root := cli.NewRootCommand(cli.Options{
		Out: &bytes.Buffer{},
		Err: &bytes.Buffer{},
		OpenDatabase: func(context.Context, *config.Config, *slog.Logger) (ports.Database, error) {
			return nil, cause
		},
	})
	root.SetArgs([]string{"seed"})

	err := root.ExecuteContext(context.Background())
	assert.ErrorIs(t, err, cause)
}

func TestMigrateForce_InvalidVersion(t *testing.T) {
	h := newHarness(t)

	err := h.run("migrate", "force", "latest")
	assert.ErrorContains(t, err, `invalid migration version "latest"`)
}

func TestInvalidConfiguration(t *testing.T) {
	h := newHarness(t)
	t.Setenv("DB_MAX_CONNECTIONS", "0")

	err := h.run("seed")
	assert.Error(t, err)
}

func TestLogFlagsOverrideConfig(t *testing.T) {
	h := newHarness(t)
	h.client.EXPECT().Get(gomock.Any(), endpoints.Groups, nil, nil).
		Return(okResponse("https://dogapi.dog/api/v2/groups"), nil)

	require.NoError(t, h.run("check", "--skip-db", "-e", "groups", "--log-level", "debug", "--log-format", "json"))
	assert.Contains(t, h.errOut.String(), `"msg":"configuration loaded"`)
	assert.Contains(t, h.errOut.String(), `"command":"harness check"`)
}

func TestCheckCommand_Upload(t *testing.T) {
	h := newHarness(t)
	t.Setenv("REPORTS_BUCKET", "harness-reports")

	h.client.EXPECT().Get(gomock.Any(), endpoints.Groups, nil, nil).
		Return(&apiclient.Response{StatusCode: http.StatusBadGateway}, nil)
	h.store.EXPECT().
		Upload(gomock.Any(), gomock.Any(), gomock.Any(), "application/json").
		DoAndReturn(func(_ context.Context, key string, data io.Reader, _ string) (string, error) {
			assert.True(t, strings.HasPrefix(key, "check-"), key)
			assert.True(t, strings.HasSuffix(key, ".json"), key)

			body, err := io.ReadAll(data)
			require.NoError(t, err)
			assert.Contains(t, string(body), `"status_code": 502`)
			return "s3://harness-reports/harness/reports/" + key, nil
		})

	err := h.run("check", "--skip-db", "-e", "groups", "--upload")
	assert.ErrorIs(t, err, cli.ErrCheckFailed, "a failed check is still uploaded")
}

func TestCheckCommand_UploadError(t *testing.T) {
	h := newHarness(t)
	h.client.EXPECT().Get(gomock.Any(), endpoints.Groups, nil, nil).
		Return(okResponse("https://dogapi.dog/api/v2/groups"), nil)
	h.store.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", errors.New("AccessDenied"))

	err := h.run("check", "--skip-db", "-e", "groups", "--upload")
	assert.ErrorContains(t, err, "upload check report: AccessDenied")
}

func TestCheckCommand_AlwaysReachesService(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	mr := miniredis.RunT(t)

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	t.Setenv("API_BASE_URL", srv.URL+"/")
	t.Setenv("REDIS_URL", "redis://"+mr.Addr()+"/0")

	check := func() error {
		root := cli.NewRootCommand(cli.Options{Out: io.Discard, Err: io.Discard})
		root.SetArgs([]string{"check", "--skip-db", "-e", "activities"})
		return root.ExecuteContext(context.Background())
	}

	require.NoError(t, check())
	require.NoError(t, check())
	assert.Equal(t, int32(2), hits.Load())

	// the response is still cached for other callers
	require.Len(t, mr.Keys(), 1)
	assert.True(t, strings.HasPrefix(mr.Keys()[0], "resp:GET:"+srv.URL))

	srv.Close()
	assert.ErrorIs(t, check(), cli.ErrCheckFailed)
}

func TestCacheClearCommand(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	mr := miniredis.RunT(t)
	t.Setenv("REDIS_URL", "redis://"+mr.Addr()+"/0")

	require.NoError(t, mr.Set("resp:GET:https://dogapi.dog/api/v2/groups", "{}"))
	require.NoError(t, mr.Set("resp:GET:https://dogapi.dog/api/v2/breeds", "{}"))
	require.NoError(t, mr.Set("unrelated", "1"))

	var out bytes.Buffer
	root := cli.NewRootCommand(cli.Options{Out: &out, Err: io.Discard})
	root.SetArgs([]string{"cache", "clear"})

	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.Equal(t, "removed 2 cached responses\n", out.String())
	assert.Equal(t, []string{"unrelated"}, mr.Keys())
}

func TestCacheClearCommand_NotConfigured(t *testing.T) {
	h := newHarness(t)
	t.Setenv("REDIS_URL", "")

	err := h.run("cache", "clear")
	assert.ErrorContains(t, err, "redis is not configured")
}
