package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"sync"

	"golang.org/x/net/html"

	"github.com/pankaj-dahiya-devops/shcx/internal/docs"
	"github.com/pankaj-dahiya-devops/shcx/internal/models"
)

// ── fake catalog ─────────────────────────────────────────────────────────────

type fakeCatalog struct {
	standards []models.Standard
	members   map[string][]string // standard ARN -> control IDs
	all       []string
	details   map[string]*models.ControlDetail

	standardsErr error
	membersErr   map[string]error
	allErr       error
	detailErr    map[string]error

	mu       sync.Mutex
	detailed []string
}

func (f *fakeCatalog) ListStandards(_ context.Context) iter.Seq2[models.Standard, error] {
	return func(yield func(models.Standard, error) bool) {
		for _, s := range f.standards {
			if !yield(s, nil) {
				return
			}
		}
		if f.standardsErr != nil {
			yield(models.Standard{}, f.standardsErr)
		}
	}
}

func (f *fakeCatalog) ListControlsForStandard(_ context.Context, arn string) iter.Seq2[models.ControlSummary, error] {
	return func(yield func(models.ControlSummary, error) bool) {
		if err := f.membersErr[arn]; err != nil {
			yield(models.ControlSummary{}, err)
			return
		}
		for _, id := range f.members[arn] {
			if !yield(models.ControlSummary{ID: id}, nil) {
				return
			}
		}
	}
}

func (f *fakeCatalog) ListAllControls(_ context.Context) iter.Seq2[models.ControlSummary, error] {
	return func(yield func(models.ControlSummary, error) bool) {
		for _, id := range f.all {
			if !yield(models.ControlSummary{ID: id}, nil) {
				return
			}
		}
		if f.allErr != nil {
			yield(models.ControlSummary{}, f.allErr)
		}
	}
}

func (f *fakeCatalog) GetControlDetail(_ context.Context, id string) (*models.ControlDetail, error) {
	f.mu.Lock()
	f.detailed = append(f.detailed, id)
	f.mu.Unlock()

	if err := f.detailErr[id]; err != nil {
		return nil, err
	}
	if d, ok := f.details[id]; ok {
		cp := *d
		return &cp, nil
	}
	return &models.ControlDetail{
		ID:                 id,
		Title:              id + " title",
		Description:        id + " description",
		Severity:           models.SeverityMedium,
		RegionAvailability: "AVAILABLE",
		RemediationURL:     models.NotAvailable,
	}, nil
}

// twoStandards is S1{IAM.1,IAM.5} and S2{IAM.5}. Control
// identifiers are real-looking so they survive URL derivation.
func twoStandards() *fakeCatalog {
	return &fakeCatalog{
		standards: []models.Standard{
			{ARN: "arn:s1", Name: "S1"},
			{ARN: "arn:s2", Name: "S2"},
		},
		members: map[string][]string{
			"arn:s1": {"IAM.1", "IAM.5"},
			"arn:s2": {"IAM.5"},
		},
		all: []string{"IAM.5", "IAM.1"},
	}
}

// ── fake documents ───────────────────────────────────────────────────────────

type fakeDocuments struct {
	pages map[string]string // page URL without fragment -> HTML
	errs  map[string]error
}

func (f *fakeDocuments) Get(_ context.Context, url string) (*html.Node, error) {
	page := docs.PageURL(url)
	if err := f.errs[page]; err != nil {
		return nil, err
	}
	body, ok := f.pages[page]
	if !ok {
		return nil, fmt.Errorf("GET %s: %w", page, errors.New("404 Not Found"))
	}
	return html.Parse(strings.NewReader(body))
}

const iamPage = `<html><body>
<h2 id="iam-1">[IAM.1] First</h2>
<p><b>Category:</b> Protect &gt; Secure access management</p>
<p><b>Resource type:</b> <code>AWS::IAM::Policy</code></p>
<p><b>AWS Config rule:</b> <a href="#">iam-policy-no-statements-with-admin-access</a></p>
<p><b>Schedule type:</b> Change triggered</p>
<h3 id="iam-1-remediation">Remediation</h3>
<p>Detach the policy.</p>
<h2 id="iam-5">[IAM.5] Fifth</h2>
<p><b>Category:</b> Protect &gt; Secure access management</p>
<p><b>Schedule type:</b> Periodic</p>
</body></html>`
