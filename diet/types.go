package diet

// Predicate identifies one of the dietary properties evaluated per ingredient.
type Predicate string

const (
	// Keto marks the low-carbohydrate predicate.
	Keto Predicate = "keto"
	// Vegan marks the animal-product-free predicate.
	Vegan Predicate = "vegan"
)

// Predicates lists every supported predicate in evaluation order.
var Predicates = []Predicate{Keto, Vegan}

// FieldKind tags the serialization a raw ingredients field arrived in.
type FieldKind int

const (
	// FieldSequence is an already-structured list of ingredient strings.
	FieldSequence FieldKind = iota
	// FieldBracketedList is a string encoding a list, e.g. "['egg', 'flour']".
	FieldBracketedList
	// FieldDelimited is free text with implicit or comma/newline delimiters.
	FieldDelimited
)

// RawField is one recipe's ingredients column value. Exactly one of Items or
// Text is meaningful depending on Kind.
type RawField struct {
	Kind  FieldKind
	Items []string
	Text  string
}

// SequenceField wraps an already-parsed ingredient list.
func SequenceField(items []string) RawField {
	return RawField{Kind: FieldSequence, Items: items}
}

// TextField classifies a string cell and wraps it as a RawField.
func TextField(s string) RawField {
	return RawField{Kind: DetectFieldKind(s), Text: s}
}

// Tier names the classification stage that produced a verdict.
type Tier string

const (
	// TierPlantBase fired the vegan plant-base first-token rule.
	TierPlantBase Tier = "plant-base"
	// TierBlock matched an explicit block vocabulary entry.
	TierBlock Tier = "block"
	// TierAllow matched an explicit allow vocabulary entry.
	TierAllow Tier = "allow"
	// TierModel deferred to the fallback learned classifier.
	TierModel Tier = "model"
	// TierDefault is the verdict when no rule matched and no model is loaded,
	// or the model failed on this input.
	TierDefault Tier = "default"
)

// Trace records how a single (ingredient, predicate) verdict was reached.
type Trace struct {
	Raw       string    `json:"raw"`
	Phrase    string    `json:"phrase"`
	Predicate Predicate `json:"predicate"`
	Verdict   bool      `json:"verdict"`
	Tier      Tier      `json:"tier"`
	// Term is the vocabulary entry that fired, empty for model/default tiers.
	Term string `json:"term,omitempty"`
}
