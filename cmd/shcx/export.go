package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pankaj-dahiya-devops/shcx/internal/config"
	"github.com/pankaj-dahiya-devops/shcx/internal/docs"
	"github.com/pankaj-dahiya-devops/shcx/internal/export"
	"github.com/pankaj-dahiya-devops/shcx/internal/logger"
	"github.com/pankaj-dahiya-devops/shcx/internal/models"
	"github.com/pankaj-dahiya-devops/shcx/internal/output"
	"github.com/pankaj-dahiya-devops/shcx/internal/pipeline"
	"github.com/pankaj-dahiya-devops/shcx/internal/providers/aws/common"
	awssecurityhub "github.com/pankaj-dahiya-devops/shcx/internal/providers/aws/securityhub"
	"github.com/pankaj-dahiya-devops/shcx/internal/runner"
	"github.com/pankaj-dahiya-devops/shcx/internal/version"
)

// exportDeps are the collaborators of an export run. Tests replace them with
// fakes.
type exportDeps struct {
	provider   common.AWSClientProvider
	catalogFor func(*common.ProfileConfig) pipeline.Catalog
	fetcherFor func(config.CrawlConfig) docs.Fetcher
	now        func() time.Time
}

func defaultExportDeps() exportDeps {
	return exportDeps{
		provider:   common.NewDefaultAWSClientProvider(),
		catalogFor: securityHubCatalog,
		fetcherFor: httpFetcher,
		now:        time.Now,
	}
}

func securityHubCatalog(p *common.ProfileConfig) pipeline.Catalog {
	return awssecurityhub.NewCatalog(p.Clients.SecurityHub)
}

func httpFetcher(c config.CrawlConfig) docs.Fetcher {
	return docs.NewHTTPFetcher(docs.FetcherOptions{
		Client:      &http.Client{},
		Timeout:     c.RequestTimeout,
		MaxRetries:  c.MaxRetries,
		BackoffBase: c.BackoffBase,
		UserAgent:   version.UserAgent(),
		Limiter:     docs.NewLimiter(c.RequestsPerSecond, maxInFlight(c)),
	})
}

func maxInFlight(c config.CrawlConfig) int {
	if c.MaxInFlight > 0 {
		return c.MaxInFlight
	}
	return runner.DefaultMaxInFlight
}

func newExportCmd(g *globalOptions) *cobra.Command {
	var colored, showFailures bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Aggregate every Security Hub control into one spreadsheet",
		Long: `Enumerates the Security Hub standards and controls, fetches every control
definition, crawls the Security Hub user guide for the category, resource
type, AWS Config rule, schedule type and remediation of each control, and
writes one sorted row per control.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindFlags(g.viper, cmd, map[string]string{
				"profile":       "aws.profile",
				"region":        "aws.region",
				"base-url":      "crawl.base_url",
				"max-in-flight": "crawl.max_in_flight",
				"rps":           "crawl.requests_per_second",
				"retries":       "crawl.max_retries",
				"workers":       "fetch.workers",
				"format":        "export.format",
				"output":        "export.output",
				"wide":          "export.wide",
				"timeout":       "timeout",
			})
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			opts := output.TableOptions{Colored: colored, ShowFailures: showFailures}
			_, err = runExport(cmd.Context(), defaultExportDeps(), cfg, cmd.OutOrStdout(), opts)
			return err
		},
	}

	cmd.Flags().String("profile", "", "AWS profile name (default: uses environment / default profile)")
	cmd.Flags().String("region", "", "AWS region the catalog is read from (default: profile region, then us-east-1)")
	cmd.Flags().String("base-url", docs.DefaultBaseURL, "Root of the Security Hub user guide")
	cmd.Flags().Int("max-in-flight", runner.DefaultMaxInFlight, "Maximum concurrent documentation requests")
	cmd.Flags().Float64("rps", config.DefaultRequestsPerSecond, "Documentation requests per second (0 disables pacing)")
	cmd.Flags().Int("retries", docs.DefaultMaxRetries, "Retries per documentation page on 429, 5xx or transport errors")
	cmd.Flags().Int("workers", 0, "Control definition workers (default: number of CPUs)")
	cmd.Flags().String("format", string(export.FormatXLSX), "Output format: xlsx, json or yaml")
	cmd.Flags().String("output", "", "Output file (default: securityhub_controls_<yymmdd_HHMM>.<format>)")
	cmd.Flags().Bool("wide", false, "Add one \"Implemented in <standard>\" column per standard")
	cmd.Flags().Duration("timeout", config.DefaultTimeout, "Overall time limit for the run")
	cmd.Flags().BoolVar(&colored, "color", false, "Colorize the summary tables")
	cmd.Flags().BoolVar(&showFailures, "show-failures", false, "List every per-control failure after the stage summary")

	return cmd
}

// runExport executes the pipeline and writes the export file. It returns the
// path written.
func runExport(ctx context.Context, deps exportDeps, cfg *config.Config, w io.Writer, opts output.TableOptions) (string, error) {
	log := logger.FromContext(ctx)

	format, err := export.ParseFormat(cfg.Export.Format)
	if err != nil {
		return "", err
	}
	writer, err := export.NewWriter(format)
	if err != nil {
		return "", err
	}
	layout := pipeline.LayoutNarrow
	if cfg.Export.Wide {
		layout = pipeline.LayoutWide
	}
	path := cfg.Export.Output
	if path == "" {
		path = export.DefaultFilename(format, deps.now())
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	profile, err := deps.provider.LoadProfile(ctx, cfg.AWS.Profile, cfg.AWS.Region)
	if err != nil {
		return "", err
	}
	log.Infow("loaded AWS profile",
		"profile", profile.ProfileName,
		"account", profile.AccountID,
		"region", profile.Region)

	documents := docs.NewDocuments(deps.fetcherFor(cfg.Crawl))
	p := pipeline.New(deps.catalogFor(profile), documents, pipeline.Options{
		BaseURL:     cfg.Crawl.BaseURL,
		Workers:     cfg.Fetch.Workers,
		MaxInFlight: cfg.Crawl.MaxInFlight,
		Layout:      layout,
		OnStage: func(s models.StageSummary) {
			log.Infow("stage complete",
				"stage", s.Stage,
				"succeeded", s.Succeeded,
				"dropped", s.Dropped,
				"failed", len(s.Failures))
		},
	})

	res, err := p.Run(ctx)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}
	log.Infow("documentation pages fetched", "pages", documents.Len())

	if err := writeExport(path, writer, res.Table); err != nil {
		return "", err
	}

	output.RenderStageSummaries(w, res.Summaries, opts)
	fmt.Fprintln(w)
	output.RenderSeverityCounts(w, res.Records, opts)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Exported %d controls across %d standards to %s\n", len(res.Records), len(res.Standards), path)
	return path, nil
}

// writeExport writes the table to path, creating or overwriting the file.
// A failed write removes the partial file.
func writeExport(path string, writer export.Writer, t *pipeline.Table) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file %q: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close export file %q: %w", path, cerr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()
	if err := writer.Write(f, t); err != nil {
		return fmt.Errorf("write export file %q: %w", path, err)
	}
	return nil
}
