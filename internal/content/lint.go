// Package content validates, scores, and packages generated guide
// drafts for publication.
package content

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/lsk7209/coindrop/internal/engine"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

type FindingType string

const (
	FindingLength  FindingType = "length"
	FindingKeyword FindingType = "keyword"
	FindingFormat  FindingType = "format"
)

// LintFinding is one quality issue in a generated draft. Error-severity
// findings lower quality scores harder but never block publication.
type LintFinding struct {
	Type     FindingType `json:"type"`
	Message  string      `json:"message"`
	Severity Severity    `json:"severity"`
}

const (
	summaryMinLen      = 50
	summaryMaxLen      = 110
	summaryCriticalLen = 30

	howtoMinSteps = 3
	howtoMaxSteps = 5

	faqMinEntries = 3
)

// deniedWords never belong in published guides.
var deniedWords = []string{"스캠", "사기", "피싱"}

// Lint checks a draft against the publication quality rules. Lengths are
// measured in runes, not bytes.
func Lint(g *engine.Generated) []LintFinding {
	var findings []LintFinding

	summaryLen := utf8.RuneCountInString(g.Summary)
	if summaryLen < summaryMinLen || summaryLen > summaryMaxLen {
		severity := SeverityWarning
		if summaryLen < summaryCriticalLen {
			severity = SeverityError
		}
		findings = append(findings, LintFinding{
			Type:     FindingLength,
			Message:  fmt.Sprintf("Summary 길이: %d자 (요구: %d-%d자)", summaryLen, summaryMinLen, summaryMaxLen),
			Severity: severity,
		})
	}

	if len(g.HowTo) < howtoMinSteps || len(g.HowTo) > howtoMaxSteps {
		findings = append(findings, LintFinding{
			Type:     FindingFormat,
			Message:  fmt.Sprintf("HowTo 단계 수: %d개 (요구: %d-%d개)", len(g.HowTo), howtoMinSteps, howtoMaxSteps),
			Severity: SeverityWarning,
		})
	}

	if len(g.FAQ) < faqMinEntries {
		findings = append(findings, LintFinding{
			Type:     FindingFormat,
			Message:  fmt.Sprintf("FAQ 수: %d개 (요구: 최소 %d개)", len(g.FAQ), faqMinEntries),
			Severity: SeverityError,
		})
	}

	allText := draftText(g)
	for _, word := range deniedWords {
		if strings.Contains(allText, word) {
			findings = append(findings, LintFinding{
				Type:     FindingKeyword,
				Message:  fmt.Sprintf("금칙어 발견: %s", word),
				Severity: SeverityError,
			})
		}
	}

	return findings
}

func draftText(g *engine.Generated) string {
	var b strings.Builder
	b.WriteString(g.Title)
	b.WriteString(g.Summary)
	for _, s := range g.HowTo {
		b.WriteString(s.Title)
		b.WriteString(s.Description)
	}
	for _, f := range g.FAQ {
		b.WriteString(f.Question)
		b.WriteString(f.Answer)
	}
	for _, tip := range g.Tips {
		b.WriteString(tip)
	}
	b.WriteString(g.Viral)
	for _, h := range g.Hashtags {
		b.WriteString(h)
	}
	return b.String()
}
