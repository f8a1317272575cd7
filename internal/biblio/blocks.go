package biblio

import (
	"regexp"
	"strings"
)

var (
	blockSplitRe      = regexp.MustCompile(`\n[ \t]*\n`)
	blockCommaNameRe  = regexp.MustCompile(`[А-ЯЁA-Z][а-яёa-z]+,[ \t]*[А-ЯЁA-Z]`)
	blockDashColonRe  = regexp.MustCompile(`[—–:-]`)
	blockYearRe       = regexp.MustCompile(`(?:^|\D)(?:1[89]|20)\d{2}(?:\D|$)`)
)

const (
	minCandidateScore = 3
	minPrimaryLength  = 60
)

// Blocks splits text at blank lines and returns the non-empty blocks.
func Blocks(text string) []string {
	var blocks []string
	for _, b := range blockSplitRe.Split(text, -1) {
		if b = strings.TrimSpace(b); b != "" {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

// BlockScore rates how much a block looks like a catalog entry.
func BlockScore(block string) int {
	score := 0
	if blockCommaNameRe.MatchString(block) {
		score += 2
	}
	if blockDashColonRe.MatchString(block) {
		score++
	}
	if blockYearRe.MatchString(block) {
		score++
	}
	if strings.Contains(block, "/") {
		score++
	}
	if len([]rune(block)) > 80 {
		score++
	}
	return score
}

// PrimaryBlock returns the longest block that scores as a catalog entry and
// is at least 60 characters long, or "" when there is none.
func PrimaryBlock(text string) string {
	best := ""
	for _, b := range Blocks(text) {
		if BlockScore(b) < minCandidateScore || len([]rune(b)) < minPrimaryLength {
			continue
		}
		if len([]rune(b)) > len([]rune(best)) {
			best = b
		}
	}
	return best
}
