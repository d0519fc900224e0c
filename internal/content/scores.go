package content

import (
	"unicode"
	"unicode/utf8"

	"github.com/lsk7209/coindrop/internal/engine"
)

// QualityScores grades a draft on three publication axes, each 0-100.
type QualityScores struct {
	SEO   int `json:"seo"`
	AEO   int `json:"aeo"`
	GenEO int `json:"geneo"`
}

const (
	titleMinLen = 10
	titleMaxLen = 120

	viralMinLen = 20
)

// ComputeScores applies fixed penalties per quality axis, then an extra
// deduction per lint finding, and clamps everything to [0, 100].
func ComputeScores(g *engine.Generated, findings []LintFinding) QualityScores {
	seo, aeo, geneo := 100, 100, 100

	titleLen := utf8.RuneCountInString(g.Title)
	summaryLen := utf8.RuneCountInString(g.Summary)

	if titleLen < titleMinLen || titleLen > titleMaxLen {
		seo -= 20
	}
	if summaryLen < summaryMinLen || summaryLen > summaryMaxLen {
		seo -= 15
	}
	if len(g.Hashtags) < 2 {
		seo -= 10
	}

	if summaryLen < summaryMinLen {
		aeo -= 30
	}
	if len(g.HowTo) < howtoMinSteps {
		aeo -= 20
	}
	if !hasEvidence(g.FAQ) {
		aeo -= 25
	}

	if len(g.HowTo) < howtoMinSteps || len(g.HowTo) > howtoMaxSteps {
		geneo -= 20
	}
	if len(g.FAQ) < faqMinEntries {
		geneo -= 25
	}
	if utf8.RuneCountInString(g.Viral) < viralMinLen {
		geneo -= 15
	}

	var errors, warnings int
	for _, f := range findings {
		switch f.Severity {
		case SeverityError:
			errors++
		case SeverityWarning:
			warnings++
		}
	}
	deduction := errors*10 + warnings*5
	seo -= deduction
	aeo -= deduction
	geneo -= deduction

	return QualityScores{
		SEO:   clamp(seo),
		AEO:   clamp(aeo),
		GenEO: clamp(geneo),
	}
}

// hasEvidence reports whether any FAQ answer backs its claim with a
// number or date.
func hasEvidence(faq []engine.FAQEntry) bool {
	for _, f := range faq {
		for _, r := range f.Answer {
			if unicode.IsDigit(r) {
				return true
			}
		}
	}
	return false
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
