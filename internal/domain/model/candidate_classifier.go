package model

import "strings"

// Confidence weights and thresholds for airdrop candidacy. A protocol
// with no tradable token, meaningful TVL, and presence on a major chain
// is the archetypal candidate.
const (
	confidenceNoToken    = 0.4
	confidenceTVLHigh    = 0.4 // >= $10M
	confidenceTVLMid     = 0.3 // >= $1M
	confidenceTVLLow     = 0.2 // >= $100K
	confidenceMajorChain = 0.2

	tvlHighUSD = 10_000_000
	tvlMidUSD  = 1_000_000
	tvlLowUSD  = 100_000

	// Below this TVL the accumulated score is halved to suppress noise
	// from dust protocols.
	tvlNoisePenaltyUSD = 50_000

	// CandidateThreshold classifies; DispatchThreshold gates generation.
	// Classification is deliberately looser than action-worthiness.
	CandidateThreshold = 0.5
	DispatchThreshold  = 0.6
)

// CandidateScore is the classifier verdict for one protocol record.
type CandidateScore struct {
	IsCandidate bool
	Confidence  float64
}

// ScoreCandidate scores a protocol record for airdrop candidacy.
// tokenSymbol is the raw symbol from the source ("" or "-" means no
// token); chains must already be normalized.
func ScoreCandidate(tokenSymbol string, tvlUSD float64, chains []Chain) CandidateScore {
	confidence := 0.0

	if !hasTokenSymbol(tokenSymbol) {
		confidence += confidenceNoToken
	}

	switch {
	case tvlUSD >= tvlHighUSD:
		confidence += confidenceTVLHigh
	case tvlUSD >= tvlMidUSD:
		confidence += confidenceTVLMid
	case tvlUSD >= tvlLowUSD:
		confidence += confidenceTVLLow
	}

	for _, c := range chains {
		if MajorChains[c] {
			confidence += confidenceMajorChain
			break
		}
	}

	if tvlUSD < tvlNoisePenaltyUSD {
		confidence *= 0.5
	}

	if confidence > 1.0 {
		confidence = 1.0
	}

	return CandidateScore{
		IsCandidate: confidence >= CandidateThreshold,
		Confidence:  confidence,
	}
}

func hasTokenSymbol(symbol string) bool {
	trimmed := strings.TrimSpace(symbol)
	return trimmed != "" && trimmed != "-"
}
