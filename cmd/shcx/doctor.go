package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pankaj-dahiya-devops/shcx/internal/config"
	"github.com/pankaj-dahiya-devops/shcx/internal/docs"
	"github.com/pankaj-dahiya-devops/shcx/internal/pipeline"
	"github.com/pankaj-dahiya-devops/shcx/internal/providers/aws/common"
)

// doctorProbeControl is the control whose documentation page is fetched to
// check that the user guide is reachable.
const doctorProbeControl = "IAM.1"

// DoctorResult is the structured output of shcx doctor. It can be serialised
// to JSON via --format=json or rendered as a human-readable table (default).
type DoctorResult struct {
	Config struct {
		Path  string `json:"path,omitempty"`
		Valid bool   `json:"valid"`
		Error string `json:"error,omitempty"`
	} `json:"config"`

	AWS struct {
		Profile     string `json:"profile,omitempty"`
		Region      string `json:"region,omitempty"`
		Credentials bool   `json:"credentials_ok"`
		AccountID   string `json:"account_id,omitempty"`
		CatalogOK   bool   `json:"catalog_ok"`
		Error       string `json:"error,omitempty"`
	} `json:"aws"`

	Docs struct {
		URL       string `json:"url,omitempty"`
		Reachable bool   `json:"reachable"`
		Error     string `json:"error,omitempty"`
	} `json:"docs"`

	OverallHealthy bool `json:"overall_healthy"`
}

// doctorDeps are the collaborators probed by doctor.
type doctorDeps struct {
	provider   common.AWSClientProvider
	catalogFor func(*common.ProfileConfig) pipeline.Catalog
	fetcherFor func(config.CrawlConfig) docs.Fetcher
}

func newDoctorCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "doctor",
		Short:         "Check AWS credentials, Security Hub access and user guide reachability",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindFlags(g.viper, cmd, map[string]string{
				"profile":  "aws.profile",
				"region":   "aws.region",
				"base-url": "crawl.base_url",
			})
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, _ := cmd.Flags().GetString("format")
			deps := doctorDeps{
				provider:   common.NewDefaultAWSClientProvider(),
				catalogFor: securityHubCatalog,
				fetcherFor: httpFetcher,
			}
			loader := config.NewLoader(g.viper, g.configPath)
			result, err := runDoctor(cmd.Context(), deps, loader, cmd.OutOrStdout(), format)
			if err != nil {
				// Rendering failure; let main handle it.
				return err
			}
			if !result.OverallHealthy {
				// Exit directly so no error text reaches main's stderr path.
				os.Exit(1)
			}
			return nil
		},
	}
	cmd.Flags().String("format", "table", `Output format: "table" or "json"`)
	cmd.Flags().String("profile", "", "AWS profile to use (default: credential chain)")
	cmd.Flags().String("region", "", "AWS region to probe")
	cmd.Flags().String("base-url", docs.DefaultBaseURL, "Root of the Security Hub user guide")
	return cmd
}

// runDoctor collects all diagnostic results, renders them to w in the
// requested format, and returns the result. The returned error covers only
// rendering failures; callers inspect result.OverallHealthy.
func runDoctor(ctx context.Context, deps doctorDeps, loader config.Loader, w io.Writer, format string) (DoctorResult, error) {
	result := collectDoctorResult(ctx, deps, loader)

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return result, fmt.Errorf("encode doctor result: %w", err)
		}
	default:
		renderDoctorTable(result, w)
	}
	return result, nil
}

// collectDoctorResult runs every check. Later checks are skipped when the
// ones they depend on fail.
func collectDoctorResult(ctx context.Context, deps doctorDeps, loader config.Loader) DoctorResult {
	var result DoctorResult

	// Config: an invalid file stops everything else.
	result.Config.Path = loader.ConfigPath()
	cfg, err := loader.Load()
	if err != nil {
		result.Config.Error = err.Error()
		return result
	}
	result.Config.Valid = true

	// AWS: credentials → STS account ID → first page of standards.
	result.AWS.Profile = cfg.AWS.Profile
	profile, err := deps.provider.LoadProfile(ctx, cfg.AWS.Profile, cfg.AWS.Region)
	if err != nil {
		result.AWS.Error = err.Error()
	} else {
		result.AWS.Credentials = true
		result.AWS.AccountID = profile.AccountID
		result.AWS.Region = profile.Region
		if err := probeCatalog(ctx, deps.catalogFor(profile)); err != nil {
			result.AWS.Error = err.Error()
		} else {
			result.AWS.CatalogOK = true
		}
	}

	// Docs: one control page from the user guide.
	u, err := docs.DeriveURL(cfg.Crawl.BaseURL, doctorProbeControl)
	if err != nil {
		result.Docs.Error = err.Error()
	} else {
		result.Docs.URL = docs.PageURL(u)
		if _, err := deps.fetcherFor(cfg.Crawl).Fetch(ctx, result.Docs.URL); err != nil {
			result.Docs.Error = err.Error()
		} else {
			result.Docs.Reachable = true
		}
	}

	result.OverallHealthy = result.Config.Valid &&
		result.AWS.Credentials &&
		result.AWS.CatalogOK &&
		result.Docs.Reachable
	return result
}

// probeCatalog reads the first standard, which needs only
// securityhub:DescribeStandards.
func probeCatalog(ctx context.Context, cat pipeline.Catalog) error {
	for _, err := range cat.ListStandards(ctx) {
		return err
	}
	return errors.New("no standards returned by DescribeStandards")
}

// renderDoctorTable writes the human-readable diagnostic output from result to w.
func renderDoctorTable(result DoctorResult, w io.Writer) {
	fmt.Fprintln(w, "Environment Diagnostics")

	fmt.Fprintln(w, "\nConfig:")
	path := result.Config.Path
	if path == "" {
		path = "defaults"
	}
	if result.Config.Valid {
		doctorPrint(w, "Configuration", "OK", path)
	} else {
		doctorPrint(w, "Configuration", "FAIL", result.Config.Error)
		return
	}

	if result.AWS.Profile != "" {
		fmt.Fprintf(w, "\nAWS (profile: %s):\n", result.AWS.Profile)
	} else {
		fmt.Fprintln(w, "\nAWS:")
	}
	if !result.AWS.Credentials {
		doctorPrint(w, "Credentials", "FAIL", result.AWS.Error)
		doctorPrint(w, "STS Identity", "FAIL", "skipped")
		doctorPrint(w, "Security Hub", "FAIL", "skipped")
	} else {
		doctorPrint(w, "Credentials", "OK", "")
		doctorPrint(w, "STS Identity", "OK", "Account: "+result.AWS.AccountID)
		if result.AWS.CatalogOK {
			doctorPrint(w, "Security Hub", "OK", "Region: "+result.AWS.Region)
		} else {
			doctorPrint(w, "Security Hub", "FAIL", result.AWS.Error)
		}
	}

	fmt.Fprintln(w, "\nUser guide:")
	if result.Docs.Reachable {
		doctorPrint(w, "Reachable", "OK", result.Docs.URL)
	} else {
		doctorPrint(w, "Reachable", "FAIL", result.Docs.Error)
	}
}

// doctorPrint writes a single diagnostic check line to w.
// When detail is non-empty it is appended in parentheses.
func doctorPrint(w io.Writer, label, status, detail string) {
	if detail != "" {
		fmt.Fprintf(w, "  %s: %s (%s)\n", label, status, detail)
	} else {
		fmt.Fprintf(w, "  %s: %s\n", label, status)
	}
}
