package models_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pankaj-dahiya-devops/shcx/internal/models"
)

// ── MembershipIndex ──────────────────────────────────────────────────────────

func TestMembershipIndex_CountMatchesStandards(t *testing.T) {
	idx := models.NewMembershipIndex()
	idx.Add("C1", "S1")
	idx.Add("C2", "S1")
	idx.Add("C2", "S2")
	idx.Add("C2", "S2")

	c2, ok := idx.Lookup("C2")
	if !ok {
		t.Fatal("C2 not indexed")
	}
	if c2.Count != 2 || c2.Count != len(c2.Standards) {
		t.Errorf("C2 count = %d, standards = %v", c2.Count, c2.Sorted())
	}
	if !c2.Has("S2") || c2.Has("S3") {
		t.Errorf("Has mismatch for %v", c2.Sorted())
	}
	if diff := cmp.Diff([]string{"S1", "S2"}, c2.Sorted()); diff != "" {
		t.Errorf("Sorted (-want +got):\n%s", diff)
	}
}

func TestMembershipIndex_LookupMissing(t *testing.T) {
	m, ok := models.NewMembershipIndex().Lookup("nope")
	if ok || m.Count != 0 || len(m.Standards) != 0 {
		t.Errorf("Lookup(nope) = %+v, %v", m, ok)
	}
	if m.Joined() != models.NotAvailable {
		t.Errorf("Joined = %q; want N/A", m.Joined())
	}
}

func TestMembership_Joined(t *testing.T) {
	idx := models.NewMembershipIndex()
	idx.Add("C", "PCI DSS v3.2.1")
	idx.Add("C", "CIS AWS Foundations Benchmark v1.4.0")
	m, _ := idx.Lookup("C")
	if got := m.Joined(); got != "CIS AWS Foundations Benchmark v1.4.0, PCI DSS v3.2.1" {
		t.Errorf("Joined = %q", got)
	}
}

// ── errors ───────────────────────────────────────────────────────────────────

func TestErrors_Unwrap(t *testing.T) {
	cause := errors.New("throttled")

	fatal := &models.FatalIndexError{Op: "list standards", Err: cause}
	if !errors.Is(fatal, cause) {
		t.Error("FatalIndexError does not unwrap")
	}
	if fatal.Error() != "build standards index: list standards: throttled" {
		t.Errorf("FatalIndexError = %q", fatal.Error())
	}

	ce := &models.ControlError{ControlID: "IAM.5", Stage: models.StageCrawl, Err: cause}
	if !errors.Is(ce, cause) {
		t.Error("ControlError does not unwrap")
	}
	if ce.Error() != "crawl IAM.5: throttled" {
		t.Errorf("ControlError = %q", ce.Error())
	}
}

func TestCrawlFields_Empty(t *testing.T) {
	if !(models.CrawlFields{}).Empty() {
		t.Error("zero fields should be empty")
	}
	if (models.CrawlFields{Remediation: "x"}).Empty() {
		t.Error("fields with a value are not empty")
	}
}
