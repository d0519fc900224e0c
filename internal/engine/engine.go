// Package engine turns an airdrop candidate into a Korean guide draft
// via a generative model.
package engine

import (
	"context"

	"github.com/lsk7209/coindrop/internal/domain/model"
)

// GenerateRequest carries the protocol facts fed into the prompt.
type GenerateRequest struct {
	ProjectName string
	ProjectSlug string
	Chains      []model.Chain
	TVLUSD      float64
	Website     string
	SourceRef   string
	Status      model.AirdropStatus
}

// HowToStep is one participation step.
type HowToStep struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// FAQEntry is one question/answer pair.
type FAQEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Generated is the structured draft returned by the model.
type Generated struct {
	Title    string      `json:"title"`
	Summary  string      `json:"summary"`
	HowTo    []HowToStep `json:"howto"`
	FAQ      []FAQEntry  `json:"faq"`
	Tips     []string    `json:"tips"`
	Viral    string      `json:"viral"`
	Hashtags []string    `json:"hashtags"`
}

// Engine generates guide drafts.
type Engine interface {
	Generate(ctx context.Context, req GenerateRequest) (*Generated, error)
}
