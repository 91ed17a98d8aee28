package main

import (
	"context"
	"errors"
	"iter"
	"sync"
	"time"

	"github.com/pankaj-dahiya-devops/shcx/internal/config"
	"github.com/pankaj-dahiya-devops/shcx/internal/docs"
	"github.com/pankaj-dahiya-devops/shcx/internal/models"
	"github.com/pankaj-dahiya-devops/shcx/internal/pipeline"
	"github.com/pankaj-dahiya-devops/shcx/internal/providers/aws/common"
)

// ── AWS mock ──────────────────────────────────────────────────────────────────

type mockAWSProvider struct {
	profileResult *common.ProfileConfig
	profileErr    error
	lastProfile   string
	lastRegion    string
}

func (m *mockAWSProvider) LoadProfile(_ context.Context, profile, region string) (*common.ProfileConfig, error) {
	m.lastProfile = profile
	m.lastRegion = region
	return m.profileResult, m.profileErr
}

func goodMockAWS() *mockAWSProvider {
	return &mockAWSProvider{
		profileResult: &common.ProfileConfig{
			ProfileName: "default",
			AccountID:   "123456789012",
			Region:      "us-east-1",
		},
	}
}

// ── catalog mock ──────────────────────────────────────────────────────────────

type mockCatalog struct {
	standardsErr error
}

func (m *mockCatalog) ListStandards(_ context.Context) iter.Seq2[models.Standard, error] {
	return func(yield func(models.Standard, error) bool) {
		if m.standardsErr != nil {
			yield(models.Standard{}, m.standardsErr)
			return
		}
		yield(models.Standard{ARN: "arn:fsbp", Name: "AWS Foundational Security Best Practices v1.0.0"}, nil)
	}
}

func (m *mockCatalog) ListControlsForStandard(_ context.Context, _ string) iter.Seq2[models.ControlSummary, error] {
	return func(yield func(models.ControlSummary, error) bool) {
		for _, id := range []string{"IAM.1", "IAM.10"} {
			if !yield(models.ControlSummary{ID: id}, nil) {
				return
			}
		}
	}
}

func (m *mockCatalog) ListAllControls(_ context.Context) iter.Seq2[models.ControlSummary, error] {
	return func(yield func(models.ControlSummary, error) bool) {
		for _, id := range []string{"IAM.10", "IAM.1", "IAM.2"} {
			if !yield(models.ControlSummary{ID: id}, nil) {
				return
			}
		}
	}
}

func (m *mockCatalog) GetControlDetail(_ context.Context, id string) (*models.ControlDetail, error) {
	return &models.ControlDetail{
		ID:                 id,
		Title:              id + " title",
		Description:        id + " description",
		Severity:           models.SeverityHigh,
		RegionAvailability: "AVAILABLE",
		RemediationURL:     models.NotAvailable,
	}, nil
}

func catalogOf(c pipeline.Catalog) func(*common.ProfileConfig) pipeline.Catalog {
	return func(*common.ProfileConfig) pipeline.Catalog { return c }
}

// ── fetcher mock ──────────────────────────────────────────────────────────────

const iamPage = `<html><body>
<h2 id="iam-1">[IAM.1] IAM policies should not allow full administrative privileges</h2>
<p><b>Category:</b> Protect &gt; Secure access management</p>
<p><b>Schedule type:</b> Change triggered</p>
<h2 id="iam-2">[IAM.2] IAM users should not have IAM policies attached</h2>
<p><b>Schedule type:</b> Change triggered</p>
</body></html>`

type mockFetcher struct {
	body string
	err  error

	mu   sync.Mutex
	urls []string
}

func (m *mockFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	m.mu.Lock()
	m.urls = append(m.urls, url)
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return []byte(m.body), nil
}

func fetcherOf(f docs.Fetcher) func(config.CrawlConfig) docs.Fetcher {
	return func(config.CrawlConfig) docs.Fetcher { return f }
}

// ── config mock ───────────────────────────────────────────────────────────────

type staticLoader struct {
	cfg  *config.Config
	err  error
	path string
}

func (l staticLoader) Load() (*config.Config, error) { return l.cfg, l.err }
func (l staticLoader) ConfigPath() string            { return l.path }

func testConfig() *config.Config {
	return &config.Config{
		Crawl: config.CrawlConfig{
			BaseURL:     "https://docs.test/guide",
			MaxInFlight: 2,
		},
		Export:  config.ExportConfig{Format: "json"},
		Timeout: 2 * time.Minute,
	}
}

var errBoom = errors.New("boom")
