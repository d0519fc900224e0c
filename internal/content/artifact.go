package content

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lsk7209/coindrop/internal/domain/model"
	"github.com/lsk7209/coindrop/internal/engine"
)

// Artifact is the full published payload stored in blob storage. The
// database row keeps only the summary columns; readers fetch this
// envelope for the complete guide plus its JSON-LD blocks.
type Artifact struct {
	Project   ArtifactProject   `json:"project"`
	Airdrop   ArtifactAirdrop   `json:"airdrop"`
	Generated *engine.Generated `json:"generated"`
	JSONLD    []any             `json:"jsonld"`
	Meta      ArtifactMeta      `json:"meta"`
}

type ArtifactProject struct {
	Slug   string        `json:"slug"`
	Name   string        `json:"name"`
	Chains []model.Chain `json:"chains"`
	TVLUSD float64       `json:"tvl_usd"`
}

type ArtifactAirdrop struct {
	Status     model.AirdropStatus `json:"status"`
	RewardType *model.RewardType   `json:"reward_type"`
	SnapshotAt *time.Time          `json:"snapshot_at"`
	DeadlineAt *time.Time          `json:"deadline_at"`
	Tasks      json.RawMessage     `json:"tasks"`
}

type ArtifactMeta struct {
	Lang          string `json:"lang"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
	SchemaVersion int    `json:"schema_version"`
}

// BuildArtifact assembles the publication envelope for one generated
// draft, including BlogPosting, HowTo, and FAQPage JSON-LD.
func BuildArtifact(project *model.Project, airdrop *model.Airdrop, generated *engine.Generated, baseURL string, now time.Time) *Artifact {
	tasks := airdrop.TasksJSON
	if len(tasks) == 0 {
		tasks = json.RawMessage(`[]`)
	}

	timestamp := now.UTC().Format(time.RFC3339)
	meta := ArtifactMeta{
		Lang:          "ko",
		CreatedAt:     timestamp,
		UpdatedAt:     timestamp,
		SchemaVersion: model.CurrentSchemaVersion,
	}

	return &Artifact{
		Project: ArtifactProject{
			Slug:   project.Slug,
			Name:   project.Name,
			Chains: project.Chains,
			TVLUSD: project.TVLUSD,
		},
		Airdrop: ArtifactAirdrop{
			Status:     airdrop.Status,
			RewardType: airdrop.RewardType,
			SnapshotAt: airdrop.SnapshotAt,
			DeadlineAt: airdrop.DeadlineAt,
			Tasks:      tasks,
		},
		Generated: generated,
		JSONLD: []any{
			blogPostingLD(project, generated, baseURL, meta),
			howToLD(generated),
			faqPageLD(generated),
		},
		Meta: meta,
	}
}

type blogPosting struct {
	Context          string     `json:"@context"`
	Type             string     `json:"@type"`
	Headline         string     `json:"headline"`
	Description      string     `json:"description"`
	DatePublished    string     `json:"datePublished"`
	DateModified     string     `json:"dateModified"`
	Author           personLD   `json:"author"`
	Publisher        orgLD      `json:"publisher"`
	MainEntityOfPage wegPageRef `json:"mainEntityOfPage"`
}

type personLD struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

type orgLD struct {
	Type string      `json:"@type"`
	Name string      `json:"name"`
	Logo imageObject `json:"logo"`
}

type imageObject struct {
	Type string `json:"@type"`
	URL  string `json:"url"`
}

type wegPageRef struct {
	Type string `json:"@type"`
	ID   string `json:"@id"`
}

func blogPostingLD(project *model.Project, g *engine.Generated, baseURL string, meta ArtifactMeta) blogPosting {
	url := fmt.Sprintf("%s/airdrops/%s/%s", baseURL, project.PrimaryChain(), project.Slug)
	return blogPosting{
		Context:       "https://schema.org",
		Type:          "BlogPosting",
		Headline:      g.Title,
		Description:   g.Summary,
		DatePublished: meta.CreatedAt,
		DateModified:  meta.UpdatedAt,
		Author:        personLD{Type: "Person", Name: "CoinDrop.kr"},
		Publisher: orgLD{
			Type: "Organization",
			Name: "CoinDrop.kr",
			Logo: imageObject{Type: "ImageObject", URL: baseURL + "/logo.png"},
		},
		MainEntityOfPage: wegPageRef{Type: "WebPage", ID: url},
	}
}

type howTo struct {
	Context     string      `json:"@context"`
	Type        string      `json:"@type"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Step        []howToStep `json:"step"`
}

type howToStep struct {
	Type     string `json:"@type"`
	Position int    `json:"position"`
	Name     string `json:"name"`
	Text     string `json:"text"`
}

func howToLD(g *engine.Generated) howTo {
	steps := make([]howToStep, len(g.HowTo))
	for i, s := range g.HowTo {
		name := s.Title
		if name == "" {
			name = fmt.Sprintf("단계 %d", i+1)
		}
		steps[i] = howToStep{
			Type:     "HowToStep",
			Position: i + 1,
			Name:     name,
			Text:     s.Description,
		}
	}
	return howTo{
		Context:     "https://schema.org",
		Type:        "HowTo",
		Name:        g.Title + " - 참여 방법",
		Description: g.Summary,
		Step:        steps,
	}
}

type faqPage struct {
	Context    string        `json:"@context"`
	Type       string        `json:"@type"`
	MainEntity []faqQuestion `json:"mainEntity"`
}

type faqQuestion struct {
	Type           string    `json:"@type"`
	Name           string    `json:"name"`
	AcceptedAnswer faqAnswer `json:"acceptedAnswer"`
}

type faqAnswer struct {
	Type string `json:"@type"`
	Text string `json:"text"`
}

func faqPageLD(g *engine.Generated) faqPage {
	entries := make([]faqQuestion, len(g.FAQ))
	for i, f := range g.FAQ {
		entries[i] = faqQuestion{
			Type: "Question",
			Name: f.Question,
			AcceptedAnswer: faqAnswer{
				Type: "Answer",
				Text: f.Answer,
			},
		}
	}
	return faqPage{
		Context:    "https://schema.org",
		Type:       "FAQPage",
		MainEntity: entries,
	}
}
