package diet

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	singleQuotedRE = regexp.MustCompile(`'([^']+)'`)
	// leadingQtyRE strips a quantity plus optional unit prefix from one piece.
	leadingQtyRE = regexp.MustCompile(`(?i)^\s*(?:` + numberPattern + `)(?:\s*(?:` + numberPattern + `))*\s*(?:(?:` + unitPattern + `)\b)?\s*`)
	pieceSplitRE = regexp.MustCompile(`[\n,]+`)
)

// DetectFieldKind classifies a string cell before parsing.
func DetectFieldKind(s string) FieldKind {
	t := strings.TrimSpace(s)
	if strings.HasPrefix(t, "[") && strings.HasSuffix(t, "]") {
		return FieldBracketedList
	}
	return FieldDelimited
}

// ToList converts one raw recipe-ingredients field into an ordered sequence
// of raw ingredient strings. Parsing strategies are tried in order and
// malformed input degrades to best-effort splitting; ToList never fails.
func ToList(field RawField) []string {
	switch field.Kind {
	case FieldSequence:
		out := make([]string, 0, len(field.Items))
		for _, it := range field.Items {
			if s := strings.TrimSpace(it); s != "" {
				out = append(out, s)
			}
		}
		return out
	case FieldBracketedList:
		if items := parseBracketed(field.Text); items != nil {
			return items
		}
		// Not a parseable list literal; split the bracket interior instead.
		return splitFreeText(strings.Trim(strings.TrimSpace(field.Text), "[]"))
	default:
		return splitFreeText(field.Text)
	}
}

// parseBracketed handles stringified list encodings. Single-quoted substrings
// are tried first, then a JSON array when the content carries a comma. A nil
// return means the caller should fall through to free-text splitting.
func parseBracketed(text string) []string {
	t := strings.TrimSpace(text)
	if hits := singleQuotedRE.FindAllStringSubmatch(t, -1); len(hits) > 0 {
		out := make([]string, 0, len(hits))
		for _, h := range hits {
			if s := strings.TrimSpace(h[1]); s != "" {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	if strings.Contains(t, ",") {
		var arr []string
		if err := json.Unmarshal([]byte(t), &arr); err == nil {
			out := make([]string, 0, len(arr))
			for _, s := range arr {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
			return out
		}
	}
	return nil
}

// splitFreeText is the fallback heuristic: break before each quantity token
// (so "2 eggs 1 cup flour" becomes two lines), then on commas and newlines,
// then strip any leading quantity-plus-unit prefix from each piece.
func splitFreeText(text string) []string {
	marked := insertBreaksBeforeQuantities(text)
	var out []string
	for _, p := range pieceSplitRE.Split(marked, -1) {
		p = leadingQtyRE.ReplaceAllString(p, "")
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if out == nil {
		return []string{}
	}
	return out
}

func insertBreaksBeforeQuantities(text string) string {
	runes := []rune(text)
	var b strings.Builder
	b.Grow(len(text) + 8)
	for i, r := range runes {
		// Break before a fresh quantity token, but never inside one
		// ("1/2" and "1.5" stay whole).
		if i > 0 && startsQuantity(r) && !partOfQuantity(runes[i-1]) {
			b.WriteByte('\n')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func startsQuantity(r rune) bool {
	if r >= '0' && r <= '9' {
		return true
	}
	return strings.ContainsRune(vulgarFractions, r)
}

func partOfQuantity(r rune) bool {
	return startsQuantity(r) || r == '/' || r == '.'
}
