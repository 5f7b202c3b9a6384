package batch

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"dietcheck/diet"
)

// Row is one ground-truth record: a raw ingredients field plus the labeled
// verdict for each predicate.
type Row struct {
	Index       int
	Ingredients diet.RawField
	Truth       map[diet.Predicate]bool
}

// column header candidates for auto-detection, checked case-insensitively.
var (
	ingredientColumns = []string{"ingredients", "ingredient", "ingredient_list"}
	predicateColumns  = map[diet.Predicate][]string{
		diet.Keto:  {"keto", "is_keto", "keto_friendly"},
		diet.Vegan: {"vegan", "is_vegan"},
	}
)

// LoadGroundTruth reads a labeled CSV. The ingredients column may hold any
// cell shape the list parser accepts; label columns accept 1/0, true/false
// and the float-ish "1.0"/"0.0" seen in exported datasets.
func LoadGroundTruth(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ground truth: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	ingIdx := findColumn(header, ingredientColumns)
	if ingIdx < 0 {
		return nil, fmt.Errorf("no ingredients column in %v", header)
	}
	labelIdx := make(map[diet.Predicate]int, len(predicateColumns))
	for pred, names := range predicateColumns {
		idx := findColumn(header, names)
		if idx < 0 {
			return nil, fmt.Errorf("no %s label column in %v", pred, header)
		}
		labelIdx[pred] = idx
	}

	var rows []Row
	for i := 0; ; i++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", i, err)
		}
		row := Row{
			Index:       i,
			Ingredients: diet.TextField(field(rec, ingIdx)),
			Truth:       make(map[diet.Predicate]bool, len(labelIdx)),
		}
		for pred, idx := range labelIdx {
			truth, err := parseLabel(field(rec, idx))
			if err != nil {
				return nil, fmt.Errorf("row %d, %s label: %w", i, pred, err)
			}
			row.Truth[pred] = truth
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// LoadColumn reads one named column (or the auto-detected ingredients column
// when name is empty) from a CSV file, for bulk vocabulary building.
func LoadColumn(path, name string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	candidates := ingredientColumns
	if name != "" {
		candidates = []string{strings.ToLower(strings.TrimSpace(name))}
	}
	idx := findColumn(header, candidates)
	if idx < 0 {
		return nil, fmt.Errorf("no column %v in %v", candidates, header)
	}
	var out []string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read dataset: %w", err)
		}
		if s := strings.TrimSpace(field(rec, idx)); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

func findColumn(header, candidates []string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, c := range candidates {
			if h == c {
				return i
			}
		}
	}
	return -1
}

func field(rec []string, idx int) string {
	if idx < 0 || idx >= len(rec) {
		return ""
	}
	return rec[idx]
}

func parseLabel(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "1.0", "true", "t", "yes":
		return true, nil
	case "0", "0.0", "false", "f", "no", "":
		return false, nil
	}
	return false, fmt.Errorf("unrecognized label %q", s)
}
