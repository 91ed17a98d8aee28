package docs

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/pankaj-dahiya-devops/shcx/internal/models"
)

// Extract reads the five documentation fields of controlID from doc.
//
// The control's section starts at the heading whose id is AnchorID(controlID)
// and ends at the next heading of the same or a higher level. A document
// without that heading yields empty fields. Each field is resolved
// independently, so a missing label never blocks the others. Extract only
// reads doc and is safe to call concurrently on a shared document.
func Extract(doc *html.Node, controlID string) models.CrawlFields {
	var fields models.CrawlFields
	if doc == nil {
		return fields
	}
	anchor := findByID(doc, AnchorID(controlID))
	if anchor == nil {
		return fields
	}
	s := newSection(anchor)
	for _, r := range fieldRules {
		if v := r.extract(s); v != "" {
			r.set(&fields, v)
		}
	}
	return fields
}

// fieldRule extracts one field from a control section.
type fieldRule struct {
	name    string
	extract func(section) string
	set     func(*models.CrawlFields, string)
}

var fieldRules = []fieldRule{
	{
		name:    "Category",
		extract: textAfterLabel("Category:"),
		set:     func(f *models.CrawlFields, v string) { f.Category = v },
	},
	{
		name:    "Resource type",
		extract: codeAfterLabel("Resource type:"),
		set:     func(f *models.CrawlFields, v string) { f.ResourceType = v },
	},
	{
		name:    "AWS Config rule",
		extract: extractConfigRule,
		set:     func(f *models.CrawlFields, v string) { f.ConfigRule = v },
	},
	{
		name:    "Schedule type",
		extract: textAfterLabel("Schedule type:"),
		set:     func(f *models.CrawlFields, v string) { f.ScheduleType = v },
	},
	{
		name:    "Remediation",
		extract: extractRemediation,
		set:     func(f *models.CrawlFields, v string) { f.Remediation = v },
	},
}

// boldLabel matches a <b> element whose whole text is label.
func boldLabel(label string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.DataAtom == atom.B && strings.TrimSpace(textOf(n)) == label
	}
}

// textAfterLabel returns the text of the node right after the bold label.
func textAfterLabel(label string) func(section) string {
	return func(s section) string {
		b := s.findNext(s.anchor, boldLabel(label))
		if b == nil || b.NextSibling == nil {
			return ""
		}
		return collapseSpace(textOf(b.NextSibling))
	}
}

// codeAfterLabel returns the text of the first <code> after the bold label.
func codeAfterLabel(label string) func(section) string {
	return func(s section) string {
		b := s.findNext(s.anchor, boldLabel(label))
		if b == nil {
			return ""
		}
		code := s.findNext(b, tag(atom.Code))
		if code == nil {
			return ""
		}
		return strings.TrimSpace(textOf(code))
	}
}

// ---------------------------------------------------------------------------
// AWS Config rule
// ---------------------------------------------------------------------------

// configRuleLabels are the spellings the user guide uses for the label.
var configRuleLabels = []string{
	"AWS Config rule:",
	"AWS Config Rule:",
	"AWS Configrule:",
}

const (
	customRulePhrase = "(custom Security Hub rule)"
	noConfigRule     = "None " + customRulePhrase
)

// configRuleStep resolves the rule name from the labelled paragraph.
// stripped is the paragraph text with every label removed and trimmed.
type configRuleStep struct {
	name    string
	resolve func(p *html.Node, text, stripped string) string
}

// configRuleSteps are tried in order; the first non-empty result wins.
var configRuleSteps = []configRuleStep{
	{
		name: "no config rule",
		resolve: func(_ *html.Node, text, _ string) string {
			if strings.Contains(text, noConfigRule) {
				return noConfigRule
			}
			return ""
		},
	},
	{
		name: "link",
		resolve: func(p *html.Node, text, _ string) string {
			return childText(p, atom.A, text)
		},
	},
	{
		name: "code",
		resolve: func(p *html.Node, text, _ string) string {
			return childText(p, atom.Code, text)
		},
	},
	{
		name: "plain text",
		resolve: func(_ *html.Node, text, stripped string) string {
			plain := strings.TrimSpace(strings.ReplaceAll(stripped, customRulePhrase, ""))
			return withCustomSuffix(plain, text)
		},
	},
}

func extractConfigRule(s section) string {
	p := s.nextSiblingMatching(s.anchor, func(n *html.Node) bool {
		if n.DataAtom != atom.P {
			return false
		}
		text := textOf(n)
		for _, l := range configRuleLabels {
			if strings.Contains(text, l) {
				return true
			}
		}
		return false
	})
	if p == nil {
		return ""
	}

	text := textOf(p)
	stripped := text
	for _, l := range configRuleLabels {
		stripped = strings.ReplaceAll(stripped, l, "")
	}
	stripped = strings.TrimSpace(stripped)

	for _, step := range configRuleSteps {
		if v := step.resolve(p, text, stripped); v != "" {
			return v
		}
	}
	return ""
}

// childText returns the trimmed text of the first t element inside p,
// suffixed when the paragraph marks the rule as custom.
func childText(p *html.Node, t atom.Atom, paragraph string) string {
	el := findFirst(p, tag(t))
	if el == nil {
		return ""
	}
	return withCustomSuffix(strings.TrimSpace(textOf(el)), paragraph)
}

func withCustomSuffix(v, paragraph string) string {
	if v == "" {
		return ""
	}
	if strings.Contains(paragraph, customRulePhrase) {
		return v + " " + customRulePhrase
	}
	return v
}

// ---------------------------------------------------------------------------
// Remediation
// ---------------------------------------------------------------------------

// extractRemediation collects the block elements under the section's
// remediation heading into one line of text.
func extractRemediation(s section) string {
	heading := s.findNext(s.anchor, func(n *html.Node) bool {
		return headingLevel(n) > s.level &&
			strings.Contains(strings.ToLower(getAttr(n, "id")), "remediation")
	})
	if heading == nil {
		return ""
	}
	level := headingLevel(heading)

	var fragments []string
	for n := heading.NextSibling; n != nil; n = n.NextSibling {
		if n.Type != html.ElementNode {
			continue
		}
		if lvl := headingLevel(n); lvl > 0 && lvl <= level {
			break
		}
		switch n.DataAtom {
		case atom.Ul, atom.Ol:
			for _, li := range findAll(n, tag(atom.Li)) {
				if t := collapseSpace(textOf(li)); t != "" {
					fragments = append(fragments, t)
				}
			}
		case atom.P, atom.Div:
			if t := collapseSpace(textOf(n)); t != "" {
				fragments = append(fragments, t)
			}
		}
	}
	return strings.Join(fragments, " ")
}
