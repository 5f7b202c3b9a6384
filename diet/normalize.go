package diet

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// vulgarFractions are the Unicode fraction glyphs that show up in recipe
// quantities.
const vulgarFractions = "¼½¾⅓⅔⅛⅜⅝⅞"

// unitWords is the fixed measurement vocabulary stripped from ingredient
// lines. Entries are regex fragments matched as whole words.
var unitWords = []string{
	"cups?", "tablespoons?", "tbsp", "tbs", "teaspoons?", "tsp",
	"pounds?", "lbs?", "ounces?", "oz", "grams?", "kilograms?", "kg",
	"milliliters?", "ml", "liters?", "litres?", "l",
	"pints?", "pt", "quarts?", "qt", "gallons?", "gal",
	"fluid", "inch(?:es)?", "cm", "mm",
	"cans?", "sticks?", "cloves?", "packages?", "pkg", "jars?", "scoops?",
}

// descriptorWords modify preparation, not food identity, and are removed
// during normalization.
var descriptorWords = []string{
	"fresh", "freshly", "large", "medium", "small", "whole", "boneless",
	"skinless", "washed", "peeled", "pitted", "chopped", "diced", "sliced",
	"shredded", "grated", "minced", "crushed", "trimmed", "cleaned",
	"melted", "ground", "deveined", "pieces?", "slices?", "pinch", "dash",
	"taste", "optional", "divided", "bite", "head",
}

var (
	numberPattern = `\d+(?:[./]\d+)?|[` + vulgarFractions + `]`
	unitPattern   = strings.Join(unitWords, "|")

	parenUnitRE  = regexp.MustCompile(`(?i)\([^)]*\b(?:` + unitPattern + `)\b[^)]*\)`)
	unitRE       = regexp.MustCompile(`(?i)\b(?:` + unitPattern + `)\b`)
	numberRE     = regexp.MustCompile(numberPattern)
	descriptorRE = regexp.MustCompile(`(?i)\b(?:` + strings.Join(descriptorWords, "|") + `|to taste)\b`)
	spaceRE      = regexp.MustCompile(`\s+`)
)

// Normalize scrubs a raw ingredient line into a canonical lowercase ASCII
// token stream with quantities, units and descriptor noise removed. The step
// order is fixed: later steps assume earlier ones already ran. Normalize is
// idempotent and its output contains no digits or unit words.
func Normalize(raw string) string {
	t := parenUnitRE.ReplaceAllString(raw, " ")
	t = foldASCII(t)
	t = strings.ToLower(t)
	t = unitRE.ReplaceAllString(t, " ")
	t = numberRE.ReplaceAllString(t, " ")
	t = stripPunct(t)
	t = descriptorRE.ReplaceAllString(t, " ")
	return strings.TrimSpace(spaceRE.ReplaceAllString(t, " "))
}

// foldASCII decomposes the text and drops combining marks and any remaining
// non-ASCII runes, so "jalapeño" becomes "jalapeno". Vulgar fraction glyphs
// decompose to plain digits here and are removed by the number pass.
func foldASCII(s string) string {
	t := transform.Chain(
		norm.NFKD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
	)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// stripPunct replaces punctuation and symbol runes with spaces. Hyphens stay
// because they occur inside meaningful compound food terms.
func stripPunct(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' {
			return r
		}
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return ' '
		}
		return r
	}, s)
}
