// Package ident derives the deterministic identifiers the pipeline keys
// on: URL slugs for projects and contents, and the idempotency hash that
// deduplicates candidate detections.
package ident

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"
)

// MaxSlugLen bounds every generated slug.
const MaxSlugLen = 60

// Slugify normalises text into a lowercase hyphen-separated slug of at
// most MaxSlugLen characters. It is idempotent: Slugify(Slugify(x)) ==
// Slugify(x).
func Slugify(text string) string {
	lower := strings.ToLower(strings.TrimSpace(text))

	var b strings.Builder
	b.Grow(len(lower))
	pendingHyphen := false
	for _, r := range lower {
		switch {
		case unicode.IsSpace(r) || r == '-' || r == '_':
			pendingHyphen = b.Len() > 0
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingHyphen {
				b.WriteByte('-')
				pendingHyphen = false
			}
			b.WriteRune(r)
		}
		if b.Len() >= MaxSlugLen {
			break
		}
	}

	return strings.TrimRight(b.String(), "-")
}

// ContentSlug is the conflict key for a generated guide: one per
// (project, chain) pair.
func ContentSlug(projectSlug, chain string) string {
	return Slugify(projectSlug + "-" + chain + "-guide")
}

// ArtifactSlug keys the blob payload for a (project, chain) pair.
func ArtifactSlug(projectSlug, chain string) string {
	return Slugify(projectSlug + "-" + chain)
}

// IdempotencyKey hashes (source protocol id, project id, detection
// timestamp in unix seconds) into the natural conflict key for airdrop
// candidate rows. Re-detection in the same second converges onto one row.
func IdempotencyKey(protocolID string, projectID int64, detectedAtUnix int64) string {
	payload := fmt.Sprintf(`{"protocol_id":%q,"project_id":%d,"timestamp":%d}`,
		protocolID, projectID, detectedAtUnix)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
