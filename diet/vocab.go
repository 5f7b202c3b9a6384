package diet

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Vocabulary bundles the deterministic rule sets consulted before any learned
// model. The sets are configuration data: domain experts edit them in a flat
// JSON file without a rebuild.
type Vocabulary struct {
	// KetoAllow entries short-circuit an ingredient to keto-friendly.
	KetoAllow []string `json:"ketoAllow"`
	// KetoBlock entries are high-carbohydrate staples; checked before allow.
	KetoBlock []string `json:"ketoBlock"`
	// VeganBlock entries are animal-product tokens, matched token-wise.
	VeganBlock []string `json:"veganBlock"`
	// PlantBases are leading tokens that mark a compound as plant-derived
	// ("almond milk") regardless of trailing animal-sounding words.
	PlantBases []string `json:"plantBases"`
}

// DefaultVocabulary returns the built-in rule sets.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		KetoAllow: []string{
			"avocado", "bacon", "olive oil", "egg", "butter", "cream",
			"cheese", "almond", "coconut", "stevia", "erythritol",
			"mushroom", "pesto", "cilantro", "shallot", "asparagus",
			"artichoke", "bay leaf", "sherry", "lemon", "ginger",
			"green bean", "spinach", "vinegar", "olive", "walnut",
			"caper", "lime juice", "salmon fillet", "flank steak",
			"anchovy fillet", "vodka", "liqueur", "ice", "pepper sauce",
			"sweetener", "yogurt", "bean",
		},
		KetoBlock: []string{
			"sugar", "flour", "rice", "pasta", "bread", "potato", "corn",
			"oat", "lentil", "banana", "apple", "orange", "carrot",
			"honey", "jam", "cereal", "cooking spray",
		},
		VeganBlock: []string{
			"egg", "cheese", "butter", "cream", "yogurt", "honey",
			"anchovy", "chicken", "beef", "shrimp", "sausage", "fish",
			"pork", "lamb", "goat", "duck", "turkey", "bacon", "milk",
			"gelatin", "honeycomb", "caviar", "oyster", "clam", "crab",
			"lobster", "scallop", "squid", "octopus", "mollusk",
			"shellfish",
		},
		PlantBases: []string{
			"almond", "cashew", "soy", "oat", "rice", "coconut", "hemp",
			"macadamia", "peanut", "walnut", "hazelnut",
		},
	}
}

// LoadVocabulary reads rule sets from the given JSON file. An empty path
// returns the defaults. When the file does not exist the defaults are
// written there so users have a starting point for editing; any set left
// empty in the file falls back to the built-in one. The boolean reports
// whether a custom file was loaded.
func LoadVocabulary(path string) (Vocabulary, bool, error) {
	defaults := DefaultVocabulary()
	clean := strings.TrimSpace(path)
	if clean == "" {
		return defaults, false, nil
	}
	clean = filepath.Clean(clean)

	data, err := os.ReadFile(clean)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if werr := writeDefaultVocabulary(clean, defaults); werr != nil {
				return defaults, false, werr
			}
			return defaults, false, nil
		}
		return defaults, false, fmt.Errorf("read vocabulary: %w", err)
	}
	var v Vocabulary
	if err := json.Unmarshal(data, &v); err != nil {
		return defaults, false, fmt.Errorf("decode vocabulary: %w", err)
	}
	if len(v.KetoAllow) == 0 {
		v.KetoAllow = defaults.KetoAllow
	}
	if len(v.KetoBlock) == 0 {
		v.KetoBlock = defaults.KetoBlock
	}
	if len(v.VeganBlock) == 0 {
		v.VeganBlock = defaults.VeganBlock
	}
	if len(v.PlantBases) == 0 {
		v.PlantBases = defaults.PlantBases
	}
	return v, true, nil
}

func writeDefaultVocabulary(path string, v Vocabulary) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create vocabulary dir: %w", err)
		}
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode vocabulary: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write vocabulary: %w", err)
	}
	return nil
}

// compiledVocabulary holds lowercased, deduped copies plus a set view of the
// plant bases for first-token lookup. Read-only after construction.
type compiledVocabulary struct {
	ketoAllow  []string
	ketoBlock  []string
	veganBlock map[string]struct{}
	plantBases map[string]struct{}
}

func compileVocabulary(v Vocabulary) compiledVocabulary {
	return compiledVocabulary{
		ketoAllow:  normalizeTermList(v.KetoAllow),
		ketoBlock:  normalizeTermList(v.KetoBlock),
		veganBlock: termSet(v.VeganBlock),
		plantBases: termSet(v.PlantBases),
	}
}

func normalizeTermList(terms []string) []string {
	if len(terms) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func termSet(terms []string) map[string]struct{} {
	set := make(map[string]struct{}, len(terms))
	for _, t := range normalizeTermList(terms) {
		set[t] = struct{}{}
	}
	return set
}

// matchTerm returns the first vocabulary entry found inside the phrase, with
// word-boundary checks so that "rice" does not fire on "price".
func matchTerm(phrase string, terms []string) (string, bool) {
	for _, t := range terms {
		if containsAsWord(phrase, t) {
			return t, true
		}
	}
	return "", false
}

func containsAsWord(text, word string) bool {
	if word == "" {
		return false
	}
	start := 0
	for start < len(text) {
		idx := strings.Index(text[start:], word)
		if idx < 0 {
			return false
		}
		idx += start
		var before rune
		if idx > 0 {
			before, _ = utf8.DecodeLastRuneInString(text[:idx])
		}
		var after rune
		if end := idx + len(word); end < len(text) {
			after, _ = utf8.DecodeRuneInString(text[end:])
		}
		if !isAlphaNumRune(before) && !isAlphaNumRune(after) {
			return true
		}
		start = idx + len(word)
	}
	return false
}

func isAlphaNumRune(r rune) bool {
	if r == 0 || r == utf8.RuneError {
		return false
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
