package model

import (
	"strings"
	"unicode"
)

type Chain string

const (
	ChainEthereum  Chain = "ethereum"
	ChainBSC       Chain = "bsc"
	ChainPolygon   Chain = "polygon"
	ChainArbitrum  Chain = "arbitrum"
	ChainOptimism  Chain = "optimism"
	ChainBase      Chain = "base"
	ChainAvalanche Chain = "avalanche"
	ChainSolana    Chain = "solana"
	ChainCosmos    Chain = "cosmos"
	ChainPolkadot  Chain = "polkadot"
)

func (c Chain) String() string {
	return string(c)
}

// DefaultChain is used when a protocol record lists no usable chains.
const DefaultChain = ChainEthereum

// MajorChains are the chains that contribute to candidate confidence.
var MajorChains = map[Chain]bool{
	ChainEthereum:  true,
	ChainBSC:       true,
	ChainPolygon:   true,
	ChainArbitrum:  true,
	ChainOptimism:  true,
	ChainBase:      true,
	ChainAvalanche: true,
	ChainSolana:    true,
}

// NormalizeChain maps a source chain name onto the canonical form:
// lowercase, whitespace collapsed to hyphens, everything outside
// [a-z0-9-] stripped. "zkSync Era" becomes "zksync-era".
func NormalizeChain(name string) Chain {
	lower := strings.ToLower(strings.TrimSpace(name))

	var b strings.Builder
	b.Grow(len(lower))
	pendingHyphen := false
	for _, r := range lower {
		if unicode.IsSpace(r) {
			pendingHyphen = b.Len() > 0
			continue
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			if pendingHyphen {
				b.WriteByte('-')
				pendingHyphen = false
			}
			b.WriteRune(r)
		}
	}
	return Chain(b.String())
}

// NormalizeChains normalizes every chain name, drops entries that
// normalize to empty, and falls back to DefaultChain when nothing
// survives.
func NormalizeChains(names []string) []Chain {
	out := make([]Chain, 0, len(names))
	for _, n := range names {
		c := NormalizeChain(n)
		if c == "" {
			continue
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return []Chain{DefaultChain}
	}
	return out
}
