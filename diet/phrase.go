package diet

import (
	"regexp"
	"sort"
	"strings"

	prose "github.com/jdkato/prose/v2"
)

// DefaultMaxPhraseLen bounds the length of a noun run accepted as one
// candidate phrase. Longer runs tend to be instruction fragments rather than
// atomic ingredient names.
const DefaultMaxPhraseLen = 3

// nounTags are the Penn Treebank tags kept by the phrase extractor.
var nounTags = map[string]struct{}{
	"NN": {}, "NNS": {}, "NNP": {}, "NNPS": {},
}

// ExtractPhrase reduces scrubbed ingredient text to its noun-phrase core.
// Consecutive noun tokens are collected into runs; runs of length one through
// maxLen are emitted, joined with single spaces. When nothing qualifies the
// scrubbed text is returned verbatim so that a non-empty input always yields
// a phrase.
func ExtractPhrase(scrubbed string, maxLen int) string {
	phrases := nounRuns(scrubbed, maxLen)
	if len(phrases) == 0 {
		return scrubbed
	}
	return strings.Join(phrases, " ")
}

// segmentSplitRE breaks a raw line into candidate segments before scrubbing,
// so phrases never merge across ingredient boundaries.
var segmentSplitRE = regexp.MustCompile(`(?i)[,;\n]+|\s+and\s+|\s+[–-]\s+`)

// ExtractPhrases is the multi-phrase variant used for bulk vocabulary
// building. Each comma/"and"-delimited segment is scrubbed and reduced to
// noun runs independently; results are deduped by exact string equality and
// returned sorted. Segments that scrub to nothing are dropped, which is fine
// for vocabulary building (classification keeps its own fallback).
func ExtractPhrases(raw string, maxLen int) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, seg := range segmentSplitRE.Split(raw, -1) {
		scrubbed := Normalize(seg)
		if scrubbed == "" {
			continue
		}
		runs := nounRuns(scrubbed, maxLen)
		if len(runs) == 0 {
			runs = []string{scrubbed}
		}
		for _, p := range runs {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// nounRuns tags the text and walks tokens left to right, buffering
// consecutive nouns. A tagger failure on pathological input is contained
// here and reported as no runs.
func nounRuns(text string, maxLen int) (phrases []string) {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if maxLen <= 0 {
		maxLen = DefaultMaxPhraseLen
	}
	defer func() {
		if recover() != nil {
			phrases = nil
		}
	}()
	doc, err := prose.NewDocument(text,
		prose.WithSegmentation(false),
		prose.WithExtraction(false))
	if err != nil {
		return nil
	}

	var buf []string
	flush := func() {
		if n := len(buf); n > 0 && n <= maxLen {
			phrases = append(phrases, strings.Join(buf, " "))
		}
		buf = buf[:0]
	}
	for _, tok := range doc.Tokens() {
		if _, ok := nounTags[tok.Tag]; ok {
			buf = append(buf, singularize(strings.ToLower(tok.Text)))
			continue
		}
		flush()
	}
	flush()
	return phrases
}

// singularize collapses plural drift so "walnuts" and "walnut" classify the
// same way. Heuristic, not a full lemmatizer.
func singularize(w string) string {
	switch {
	case len(w) > 3 && strings.HasSuffix(w, "ies"):
		return w[:len(w)-3] + "y"
	case len(w) > 3 && strings.HasSuffix(w, "es") &&
		(w[len(w)-3] == 's' || w[len(w)-3] == 'x' || w[len(w)-3] == 'z'):
		return w[:len(w)-2]
	case len(w) > 2 && strings.HasSuffix(w, "s") &&
		!strings.HasSuffix(w, "ss") && !strings.HasSuffix(w, "us") && !strings.HasSuffix(w, "is"):
		return w[:len(w)-1]
	}
	return w
}
