package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lsk7209/coindrop/internal/engine"
)

func TestComputeScores_PerfectDraft(t *testing.T) {
	g := cleanDraft()
	scores := ComputeScores(g, Lint(g))
	assert.Equal(t, QualityScores{SEO: 100, AEO: 100, GenEO: 100}, scores)
}

func TestComputeScores_ShortSummary(t *testing.T) {
	g := cleanDraft()
	g.Summary = strings.Repeat("가", 40)
	findings := Lint(g)

	scores := ComputeScores(g, findings)
	// SEO: -15 length band, -5 for one warning finding.
	assert.Equal(t, 80, scores.SEO)
	// AEO: -30 under minimum, -5 warning.
	assert.Equal(t, 65, scores.AEO)
	// GenEO: only the warning deduction.
	assert.Equal(t, 95, scores.GenEO)
}

func TestComputeScores_NoEvidenceInFAQ(t *testing.T) {
	g := cleanDraft()
	for i := range g.FAQ {
		g.FAQ[i].Answer = "확정된 정보가 없습니다"
	}

	scores := ComputeScores(g, Lint(g))
	assert.Equal(t, 75, scores.AEO)
	assert.Equal(t, 100, scores.SEO)
}

func TestComputeScores_ClampedAtZero(t *testing.T) {
	g := &engine.Generated{Title: "짧음", Summary: "요약", Viral: ""}
	scores := ComputeScores(g, Lint(g))

	// Band penalties plus two errors and one warning (deduction 25).
	assert.Equal(t, 30, scores.SEO)
	assert.Equal(t, 0, scores.AEO)
	assert.Equal(t, 15, scores.GenEO)
}

func TestComputeScores_FewHashtags(t *testing.T) {
	g := cleanDraft()
	g.Hashtags = []string{"#에어드랍"}

	scores := ComputeScores(g, Lint(g))
	assert.Equal(t, 90, scores.SEO)
	assert.Equal(t, 100, scores.AEO)
}
