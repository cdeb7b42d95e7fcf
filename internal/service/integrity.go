package service

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"unicode"

	"merit/internal/domain"
	"merit/internal/models"
	"merit/internal/repository"
)

// templatePhrases is the boilerplate library: generic filler that farms
// rewards without tripping exact-duplicate detection. Matched as substrings
// of the canonical text.
var templatePhrases = []string{
	"i am grateful for everything",
	"thank you universe",
	"today is a beautiful day",
	"i am blessed",
	"life is a journey",
	"everything happens for a reason",
	"peace and love to all",
	"sending positive vibes",
	"may all beings be happy",
	"grateful for another day",
	"the universe has a plan",
	"love and light",
	"one day at a time",
	"blessed and thankful",
	"con xin cam on",
	"biet on cuoc song",
	"cam on vu tru",
}

// greetingPhrases marks no-op submissions that earn nothing.
var greetingPhrases = []string{
	"hello", "hi", "hey", "good morning", "good evening", "good night",
	"thanks", "thank you", "ok", "okay", "yes", "no", "namaste",
	"xin chao", "chao ban", "cam on",
}

// Canonicalize lowercases, strips punctuation and collapses whitespace.
// All integrity decisions and the content hash work off this form.
func Canonicalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// ContentHash returns the SHA-256 hex digest of the canonical text.
func ContentHash(canonical string) string {
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// WordSet returns the sorted unique words of the canonical text, keeping
// only words longer than 2 runes (articles and particles carry no signal).
func WordSet(canonical string) []string {
	seen := make(map[string]struct{})
	for _, w := range strings.Fields(canonical) {
		if len([]rune(w)) > 2 {
			seen[w] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for w := range seen {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// JaccardSimilarity computes |A∩B| / |A∪B| over two word sets.
func JaccardSimilarity(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, w := range a {
		set[w] = struct{}{}
	}
	inter := 0
	union := len(set)
	seen := make(map[string]struct{}, len(b))
	for _, w := range b {
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		if _, ok := set[w]; ok {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// IsGreeting reports whether the text is a greeting/no-op: very short and
// matching a known greeting phrase.
func IsGreeting(text string) bool {
	canonical := Canonicalize(text)
	if canonical == "" {
		return true
	}
	if len(strings.Fields(canonical)) > 4 {
		return false
	}
	for _, g := range greetingPhrases {
		if canonical == g || strings.HasPrefix(canonical, g+" ") {
			return true
		}
	}
	return false
}

// IntegrityResult carries the verdict plus the content metrics the rest of
// the pipeline reuses (hash, word set, length).
type IntegrityResult struct {
	OK          bool
	Reason      string
	ContentHash string
	Canonical   string
	Chars       int
	WordCount   int
	UniqueWords []string
	UniqueRatio float64
}

// CheckIntegrity runs the full content gate: minimum length, exact
// duplicate, near-duplicate similarity, then template detection. Pure: the
// caller supplies the actor's recent fingerprints; nothing is persisted here.
func CheckIntegrity(text string, minChars int, th models.IntegrityThresholds, recent []repository.ContentFingerprint) IntegrityResult {
	canonical := Canonicalize(text)
	words := strings.Fields(canonical)
	unique := WordSet(canonical)

	res := IntegrityResult{
		ContentHash: ContentHash(canonical),
		Canonical:   canonical,
		Chars:       len([]rune(canonical)),
		WordCount:   len(words),
		UniqueWords: unique,
	}
	if len(words) > 0 {
		uniqAll := make(map[string]struct{}, len(words))
		for _, w := range words {
			uniqAll[w] = struct{}{}
		}
		res.UniqueRatio = float64(len(uniqAll)) / float64(len(words))
	}

	if res.Chars < minChars {
		res.Reason = domain.ReasonTooShort
		return res
	}

	for _, fp := range recent {
		if fp.Hash == res.ContentHash {
			res.Reason = domain.ReasonDuplicateContent
			return res
		}
	}

	simMax := th.SimilarityMax
	if simMax <= 0 {
		simMax = 0.80
	}
	for _, fp := range recent {
		if len(fp.Words) == 0 {
			continue
		}
		if JaccardSimilarity(unique, fp.Words) > simMax {
			res.Reason = domain.ReasonSimilarContent
			return res
		}
	}

	matches := 0
	for _, p := range templatePhrases {
		if strings.Contains(canonical, p) {
			matches++
		}
	}
	minMatches := th.TemplateMinMatches
	if minMatches <= 0 {
		minMatches = 3
	}
	shortWords := th.TemplateShortWordCount
	if shortWords <= 0 {
		shortWords = 30
	}
	shortMatches := th.TemplateShortMinMatches
	if shortMatches <= 0 {
		shortMatches = 2
	}
	uniqRatio := th.TemplateUniqueRatio
	if uniqRatio <= 0 {
		uniqRatio = 0.6
	}
	if matches >= minMatches ||
		(res.WordCount < shortWords && matches >= shortMatches && res.UniqueRatio < uniqRatio) {
		res.Reason = domain.ReasonTemplateContent
		return res
	}

	res.OK = true
	return res
}
