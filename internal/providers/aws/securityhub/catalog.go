// Package awssecurityhub reads the Security Hub control catalog through the
// AWS SDK v2 and converts it into internal models. Pagination is handled
// here; callers see lazy sequences that end at the first error.
package awssecurityhub

import (
	"context"
	"fmt"
	"iter"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/securityhub"
	shtypes "github.com/aws/aws-sdk-go-v2/service/securityhub/types"

	"github.com/pankaj-dahiya-devops/shcx/internal/models"
	"github.com/pankaj-dahiya-devops/shcx/internal/providers/aws/common"
)

// Catalog is the production control catalog.
type Catalog struct {
	client common.SecurityHubClient
}

// NewCatalog returns a Catalog reading through client.
func NewCatalog(client common.SecurityHubClient) *Catalog {
	return &Catalog{client: client}
}

// ListStandards yields every standard published in the catalog.
func (c *Catalog) ListStandards(ctx context.Context) iter.Seq2[models.Standard, error] {
	return func(yield func(models.Standard, error) bool) {
		paginator := securityhub.NewDescribeStandardsPaginator(c.client, &securityhub.DescribeStandardsInput{})
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				yield(models.Standard{}, fmt.Errorf("describe standards: %w", err))
				return
			}
			for _, s := range page.Standards {
				if !yield(toStandard(s), nil) {
					return
				}
			}
		}
	}
}

// ListControlsForStandard yields the controls contained in the standard
// identified by standardARN.
func (c *Catalog) ListControlsForStandard(ctx context.Context, standardARN string) iter.Seq2[models.ControlSummary, error] {
	return c.listControls(ctx, &securityhub.ListSecurityControlDefinitionsInput{
		StandardsArn: aws.String(standardARN),
	})
}

// ListAllControls yields every control in the catalog regardless of
// standard membership.
func (c *Catalog) ListAllControls(ctx context.Context) iter.Seq2[models.ControlSummary, error] {
	return c.listControls(ctx, &securityhub.ListSecurityControlDefinitionsInput{})
}

func (c *Catalog) listControls(ctx context.Context, input *securityhub.ListSecurityControlDefinitionsInput) iter.Seq2[models.ControlSummary, error] {
	return func(yield func(models.ControlSummary, error) bool) {
		paginator := securityhub.NewListSecurityControlDefinitionsPaginator(c.client, input)
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				if input.StandardsArn != nil {
					err = fmt.Errorf("list controls for standard %s: %w", aws.ToString(input.StandardsArn), err)
				} else {
					err = fmt.Errorf("list security control definitions: %w", err)
				}
				yield(models.ControlSummary{}, err)
				return
			}
			for _, d := range page.SecurityControlDefinitions {
				summary := models.ControlSummary{
					ID:    aws.ToString(d.SecurityControlId),
					Title: aws.ToString(d.Title),
				}
				if !yield(summary, nil) {
					return
				}
			}
		}
	}
}

// GetControlDetail fetches the authoritative definition of one control.
func (c *Catalog) GetControlDetail(ctx context.Context, controlID string) (*models.ControlDetail, error) {
	out, err := c.client.GetSecurityControlDefinition(ctx, &securityhub.GetSecurityControlDefinitionInput{
		SecurityControlId: aws.String(controlID),
	})
	if err != nil {
		return nil, fmt.Errorf("get security control definition %s: %w", controlID, err)
	}
	if out.SecurityControlDefinition == nil {
		return nil, fmt.Errorf("get security control definition %s: response has no definition", controlID)
	}
	return toControlDetail(*out.SecurityControlDefinition)
}

// ---------------------------------------------------------------------------
// SDK type conversion
// ---------------------------------------------------------------------------

func toStandard(s shtypes.Standard) models.Standard {
	return models.Standard{
		ARN:              aws.ToString(s.StandardsArn),
		Name:             aws.ToString(s.Name),
		Description:      aws.ToString(s.Description),
		EnabledByDefault: aws.ToBool(s.EnabledByDefault),
	}
}

// toControlDetail projects an SDK definition onto ControlDetail. Identifier,
// title, and severity are required; a definition missing any of them is an
// error for that control.
func toControlDetail(d shtypes.SecurityControlDefinition) (*models.ControlDetail, error) {
	id := aws.ToString(d.SecurityControlId)
	if id == "" {
		return nil, fmt.Errorf("security control definition has no SecurityControlId")
	}
	if d.Title == nil {
		return nil, fmt.Errorf("security control definition %s has no Title", id)
	}
	if d.SeverityRating == "" {
		return nil, fmt.Errorf("security control definition %s has no SeverityRating", id)
	}

	remediation := aws.ToString(d.RemediationUrl)
	if remediation == "" {
		remediation = models.NotAvailable
	}

	return &models.ControlDetail{
		ID:                 id,
		Title:              aws.ToString(d.Title),
		Description:        aws.ToString(d.Description),
		Severity:           models.Severity(d.SeverityRating),
		RegionAvailability: string(d.CurrentRegionAvailability),
		RemediationURL:     remediation,
		Parameters:         toParameters(d.ParameterDefinitions),
	}, nil
}

// toParameters converts the parameter map, ordered by parameter name so the
// rendered blob is stable between runs.
func toParameters(defs map[string]shtypes.ParameterDefinition) []models.ParameterDefinition {
	if len(defs) == 0 {
		return nil
	}
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)

	params := make([]models.ParameterDefinition, 0, len(defs))
	for _, name := range names {
		def := defs[name]
		description := aws.ToString(def.Description)
		if description == "" {
			description = models.NotAvailable
		}
		p := models.ParameterDefinition{Name: name, Description: description}
		if opt, ok := toOption(def.ConfigurationOptions); ok {
			p.Options = []models.ParameterOption{opt}
		}
		params = append(params, p)
	}
	return params
}
