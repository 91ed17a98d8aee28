package pipeline

import (
	"strings"

	"github.com/pankaj-dahiya-devops/shcx/internal/models"
)

// NewRecord projects a control definition and its membership onto a flat
// record. standards is the full standard universe; the record gets one
// ImplementedIn entry per name.
func NewRecord(detail models.ControlDetail, m models.Membership, standards []string) *models.ControlRecord {
	implemented := make(map[string]bool, len(standards))
	for _, name := range standards {
		implemented[name] = m.Has(name)
	}
	return &models.ControlRecord{
		Detail:         detail,
		ParametersText: RenderParameters(detail.Parameters),
		StandardsCount: m.Count,
		StandardsList:  m.Joined(),
		ImplementedIn:  implemented,
	}
}

// RenderParameters writes one block per parameter, each closed by "---".
func RenderParameters(params []models.ParameterDefinition) string {
	var b strings.Builder
	for _, p := range params {
		b.WriteString("Parameter: " + p.Name + "\n")
		b.WriteString("Description: " + orNA(p.Description) + "\n")
		for _, o := range p.Options {
			b.WriteString("Type: " + orNA(o.Type) + "\n")
			b.WriteString("Default Value: " + orNA(o.Default) + "\n")
			b.WriteString("Min: " + orNA(o.Min) + "\n")
			b.WriteString("Max: " + orNA(o.Max) + "\n")
		}
		b.WriteString("---\n")
	}
	return b.String()
}

func orNA(s string) string {
	if s == "" {
		return models.NotAvailable
	}
	return s
}
