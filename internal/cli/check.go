package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ammerola/api-framework/internal/adapters/apiclient"
	"github.com/ammerola/api-framework/internal/core/endpoints"
)

var ErrCheckFailed = errors.New("environment check failed")

type checkResult struct {
	CheckedAt time.Time       `json:"checked_at"`
	Database  map[string]any  `json:"database,omitempty"`
	Endpoints []endpointCheck `json:"endpoints,omitempty"`
}

type endpointCheck struct {
	Name       string `json:"name"`
	URL        string `json:"url,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`
	DurationMS int64  `json:"duration_ms,omitempty"`
	Error      string `json:"error,omitempty"`
}

func (a *app) newCheckCommand() *cobra.Command {
	var (
		names  []string
		skipDB bool
		upload bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the database and the services under test are reachable",
		Long: `check pings the database, reports pool statistics and issues a GET for each
requested endpoint. Endpoints on dogapi.dog resolve against DOG_API_BASE_URL,
the rest against API_BASE_URL. Any failure or non-2xx status fails the check.

With --upload the JSON report is also stored in REPORTS_BUCKET.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			var (
				result = checkResult{CheckedAt: time.Now().UTC()}
				failed []string
			)
			defer a.closeCache(ctx)

			if !skipDB {
				database, err := a.database(ctx)
				if err != nil {
					return err
				}
				defer a.closeDatabase(ctx, database)

				result.Database = database.Health(ctx)
				if result.Database["status"] != "healthy" {
					failed = append(failed, "database")
				}
			}

			for _, name := range names {
				ec := a.checkEndpoint(cmd, name)
				if ec.Error != "" || ec.StatusCode < 200 || ec.StatusCode > 299 {
					failed = append(failed, name)
				}
				result.Endpoints = append(result.Endpoints, ec)
			}

			var report bytes.Buffer
			enc := json.NewEncoder(&report)
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				return fmt.Errorf("encode check result: %w", err)
			}
			if _, err := cmd.OutOrStdout().Write(report.Bytes()); err != nil {
				return fmt.Errorf("write check result: %w", err)
			}

			if upload {
				if err := a.uploadReport(cmd, result.CheckedAt, report.Bytes()); err != nil {
					return err
				}
			}

			if len(failed) > 0 {
				return fmt.Errorf("%w: %s", ErrCheckFailed, strings.Join(failed, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&names, "endpoint", "e", []string{"activities", "groups"},
		"Endpoints to GET ("+strings.Join(endpointNames(), ", ")+")")
	cmd.Flags().BoolVar(&skipDB, "skip-db", false, "Skip the database check")
	cmd.Flags().BoolVar(&upload, "upload", false, "Upload the report to the configured S3 bucket")

	return cmd
}

func (a *app) checkEndpoint(cmd *cobra.Command, name string) endpointCheck {
	ctx := cmd.Context()
	ec := endpointCheck{Name: name}

	endpoint, ok := endpoints.Lookup(name)
	if !ok {
		ec.Error = "unknown endpoint"
		return ec
	}
	if names, err := endpoint.Placeholders(); err != nil || len(names) > 0 {
		ec.Error = "endpoint needs path params"
		return ec
	}

	baseURL := a.cfg.API.BaseURL
	if isDogAPI(name) {
		baseURL = a.cfg.API.DogAPIBaseURL
	}

	client, err := a.opts.NewAPIClient(a.cfg, baseURL, a.log.Logger)
	if err != nil {
		ec.Error = err.Error()
		return ec
	}

	// check must reach the service even when responses are cached
	resp, err := client.Get(apiclient.WithFreshResponse(ctx), endpoint, nil, nil)
	if err != nil {
		ec.Error = err.Error()
		a.log.WarnContext(ctx, "endpoint check failed",
			slog.String("endpoint", name),
			slog.String("error", err.Error()))
		return ec
	}

	ec.URL = resp.URL
	ec.StatusCode = resp.StatusCode
	ec.DurationMS = resp.Duration.Milliseconds()
	return ec
}

func (a *app) uploadReport(cmd *cobra.Command, at time.Time, report []byte) error {
	ctx := cmd.Context()

	store, err := a.opts.NewReportStore(ctx, a.cfg, a.log.Logger)
	if err != nil {
		return fmt.Errorf("open report store: %w", err)
	}

	key := reportKey(at)
	location, err := store.Upload(ctx, key, bytes.NewReader(report), "application/json")
	if err != nil {
		return fmt.Errorf("upload check report: %w", err)
	}

	a.log.InfoContext(ctx, "check report uploaded",
		slog.String("key", key),
		slog.String("location", location))
	return nil
}

func reportKey(at time.Time) string {
	return fmt.Sprintf("check-%s-%s.json", at.UTC().Format("20060102T150405Z"), uuid.NewString()[:8])
}

func isDogAPI(name string) bool {
	return strings.HasPrefix(name, "group") || strings.HasPrefix(name, "breed")
}

func endpointNames() []string {
	all := endpoints.All()
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
