package pipeline

import (
	"path"
	"strings"
)

// Pair is one matched label-document/ground-truth pairing.
type Pair struct {
	LabelKey string
	CSVKey   string
}

// Matches is the result of pairing label documents with per-document
// ground-truth tables by filename stem.
type Matches struct {
	Pairs      []Pair
	LabelsOnly []string // label documents with no ground truth
	CSVOnly    []string // ground-truth files with no label document
}

// MatchPairs pairs `<stem>.pdf.labels.json` keys with `<stem>.csv` keys.
// Stems compare case-insensitively: upstream exports disagree on casing.
// Leftovers on either side are reported, not errors.
func MatchPairs(labelKeys, csvKeys []string) Matches {
	csvByStem := make(map[string]string, len(csvKeys))
	for _, key := range csvKeys {
		csvByStem[normalizeStem(key)] = key
	}

	var m Matches
	used := make(map[string]bool)

	for _, labelKey := range labelKeys {
		stem := normalizeStem(labelKey)
		csvKey, ok := csvByStem[stem]
		if !ok {
			m.LabelsOnly = append(m.LabelsOnly, labelKey)
			continue
		}
		m.Pairs = append(m.Pairs, Pair{LabelKey: labelKey, CSVKey: csvKey})
		used[stem] = true
	}

	for _, csvKey := range csvKeys {
		if !used[normalizeStem(csvKey)] {
			m.CSVOnly = append(m.CSVOnly, csvKey)
		}
	}

	return m
}

// normalizeStem reduces an object key to its case-folded filename stem.
func normalizeStem(key string) string {
	name := path.Base(key)
	name = strings.ToLower(name)
	for _, suffix := range []string{".pdf.labels.json", ".labels.json", ".json", ".csv"} {
		if strings.HasSuffix(name, suffix) {
			return strings.TrimSuffix(name, suffix)
		}
	}
	return name
}
