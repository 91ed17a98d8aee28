package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/pankaj-dahiya-devops/shcx/internal/output"
	"github.com/pankaj-dahiya-devops/shcx/internal/pipeline"
	"github.com/pankaj-dahiya-devops/shcx/internal/runner"
)

func testExportDeps(aws *mockAWSProvider, fetcher *mockFetcher) exportDeps {
	return exportDeps{
		provider:   aws,
		catalogFor: catalogOf(&mockCatalog{}),
		fetcherFor: fetcherOf(fetcher),
		now:        func() time.Time { return time.Date(2025, 3, 4, 5, 6, 0, 0, time.UTC) },
	}
}

// ── runExport ─────────────────────────────────────────────────────────────────

func TestRunExport_WritesSortedRows(t *testing.T) {
	cfg := testConfig()
	cfg.Export.Output = filepath.Join(t.TempDir(), "controls.json")
	fetcher := &mockFetcher{body: iamPage}

	var out bytes.Buffer
	path, err := runExport(context.Background(), testExportDeps(goodMockAWS(), fetcher), cfg, &out, output.TableOptions{})
	if err != nil {
		t.Fatalf("runExport: %v", err)
	}
	if path != cfg.Export.Output {
		t.Errorf("path = %q; want %q", path, cfg.Export.Output)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err != nil {
		t.Fatalf("invalid export: %v", err)
	}

	var ids []string
	for _, r := range rows {
		ids = append(ids, r["Security Control ID"].(string))
	}
	if diff := cmp.Diff([]string{"IAM.1", "IAM.2", "IAM.10"}, ids); diff != "" {
		t.Errorf("row order (-want +got):\n%s", diff)
	}
	if rows[0]["Category"] != "Protect > Secure access management" {
		t.Errorf("IAM.1 category = %v", rows[0]["Category"])
	}
	if rows[0]["NbStandardsImplementedIn"] != float64(1) || rows[1]["ImplementedInStandards"] != "N/A" {
		t.Errorf("membership columns = %v / %v", rows[0]["NbStandardsImplementedIn"], rows[1]["ImplementedInStandards"])
	}
	for col := range rows[0] {
		if strings.HasPrefix(col, pipeline.ImplementedInPrefix) {
			t.Errorf("narrow export has column %q", col)
		}
	}

	if len(fetcher.urls) != 1 {
		t.Errorf("page fetches = %v; want the shared IAM page once", fetcher.urls)
	}
	for _, want := range []string{"STAGE", "detail", "crawl", "HIGH", "Exported 3 controls across 1 standards"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("summary missing %q\ngot:\n%s", want, out.String())
		}
	}
}

func TestRunExport_WideAddsStandardColumns(t *testing.T) {
	cfg := testConfig()
	cfg.Export.Output = filepath.Join(t.TempDir(), "controls.yaml")
	cfg.Export.Format = "yaml"
	cfg.Export.Wide = true

	path, err := runExport(context.Background(), testExportDeps(goodMockAWS(), &mockFetcher{body: iamPage}), cfg, &bytes.Buffer{}, output.TableOptions{})
	if err != nil {
		t.Fatalf("runExport: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Implemented in AWS Foundational Security Best Practices v1.0.0: true") {
		t.Errorf("wide column missing:\n%s", data)
	}
}

func TestRunExport_DefaultFilename(t *testing.T) {
	dir := t.TempDir()
	origDir, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck

	cfg := testConfig()
	cfg.Export.Format = "xlsx"
	path, err := runExport(context.Background(), testExportDeps(goodMockAWS(), &mockFetcher{body: iamPage}), cfg, &bytes.Buffer{}, output.TableOptions{})
	if err != nil {
		t.Fatalf("runExport: %v", err)
	}
	if path != "securityhub_controls_250304_0506.xlsx" {
		t.Errorf("path = %q", path)
	}
	if _, err := os.Stat(filepath.Join(dir, path)); err != nil {
		t.Errorf("export file not written: %v", err)
	}
}

func TestRunExport_ForwardsProfileAndRegion(t *testing.T) {
	cfg := testConfig()
	cfg.AWS.Profile = "audit"
	cfg.AWS.Region = "eu-west-1"
	cfg.Export.Output = filepath.Join(t.TempDir(), "out.json")
	aws := goodMockAWS()

	if _, err := runExport(context.Background(), testExportDeps(aws, &mockFetcher{body: iamPage}), cfg, &bytes.Buffer{}, output.TableOptions{}); err != nil {
		t.Fatal(err)
	}
	if aws.lastProfile != "audit" || aws.lastRegion != "eu-west-1" {
		t.Errorf("LoadProfile(%q, %q); want audit, eu-west-1", aws.lastProfile, aws.lastRegion)
	}
}

func TestRunExport_CredentialFailure(t *testing.T) {
	cfg := testConfig()
	cfg.Export.Output = filepath.Join(t.TempDir(), "out.json")
	aws := &mockAWSProvider{profileErr: errBoom}

	_, err := runExport(context.Background(), testExportDeps(aws, &mockFetcher{body: iamPage}), cfg, &bytes.Buffer{}, output.TableOptions{})
	if !errors.Is(err, errBoom) {
		t.Fatalf("err = %v; want the provider error", err)
	}
	if _, statErr := os.Stat(cfg.Export.Output); !os.IsNotExist(statErr) {
		t.Error("no file must be written when credentials fail")
	}
}

func TestRunExport_CrawlFailureStillExports(t *testing.T) {
	cfg := testConfig()
	cfg.Export.Output = filepath.Join(t.TempDir(), "out.json")

	var out bytes.Buffer
	_, err := runExport(context.Background(), testExportDeps(goodMockAWS(), &mockFetcher{err: errBoom}), cfg, &out, output.TableOptions{ShowFailures: true})
	if err != nil {
		t.Fatalf("runExport: %v", err)
	}
	if !strings.Contains(out.String(), "crawl failures (3)") {
		t.Errorf("crawl failures not listed\ngot:\n%s", out.String())
	}
}

// ── command wiring ────────────────────────────────────────────────────────────

func TestExportCmd_RejectsUnknownFormat(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"export", "--format", "csv"})

	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "export.format") {
		t.Fatalf("err = %v; want a config validation error", err)
	}
}

func TestExportCmd_Flags(t *testing.T) {
	cmd := newExportCmd(&globalOptions{})
	for _, name := range []string{
		"profile", "region", "base-url", "max-in-flight", "rps", "retries",
		"workers", "format", "output", "wide", "timeout", "color", "show-failures",
	} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("missing --%s", name)
		}
	}
}

// ── writeExport ───────────────────────────────────────────────────────────────

// truncatingWriter writes part of a file and then fails.
type truncatingWriter struct{}

func (truncatingWriter) Write(w io.Writer, _ *pipeline.Table) error {
	_, _ = io.WriteString(w, "[{\"ID\":")
	return errBoom
}

func TestWriteExport_FailedWriteLeavesNoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	err := writeExport(path, truncatingWriter{}, &pipeline.Table{})
	if !errors.Is(err, errBoom) {
		t.Fatalf("err = %v; want errBoom", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Errorf("partial export file left behind: %v", statErr)
	}
}

func TestMaxInFlight_DefaultsWhenUnset(t *testing.T) {
	cfg := testConfig()
	if got := maxInFlight(cfg.Crawl); got != 2 {
		t.Errorf("maxInFlight = %d; want 2", got)
	}
	cfg.Crawl.MaxInFlight = 0
	if got := maxInFlight(cfg.Crawl); got != runner.DefaultMaxInFlight {
		t.Errorf("maxInFlight = %d; want %d", got, runner.DefaultMaxInFlight)
	}
}
