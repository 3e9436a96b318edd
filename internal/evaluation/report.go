package evaluation

import (
	"maps"
	"slices"

	"github.com/JaimeStill/umleval/internal/diagram"
)

// AggregationMicro pools TP, FP, and FN across categories before deriving
// the overall metrics.
const AggregationMicro = "micro"

// Report is the result of comparing a prediction with its ground truth.
type Report struct {
	PerCategory map[diagram.Category]Score  `json:"per_category"`
	Overall     Score                       `json:"overall"`
	Aggregation string                      `json:"aggregation"`
	Details     map[diagram.Category]Detail `json:"details"`
}

// Detail lists element labels per outcome in normalized key order.
// Matched and Missing use ground truth labels; Extra uses prediction labels.
type Detail struct {
	Matched []string `json:"matched"`
	Missing []string `json:"missing"`
	Extra   []string `json:"extra"`
}

// Evaluate scores pred against truth category by category by exact key
// equality and micro-averages the result.
func Evaluate(truth, pred diagram.Description) *Report {
	report := &Report{
		PerCategory: make(map[diagram.Category]Score, len(diagram.Categories)),
		Details:     make(map[diagram.Category]Detail, len(diagram.Categories)),
		Aggregation: AggregationMicro,
	}

	var tp, fp, fn int
	for _, cat := range diagram.Categories {
		detail := compareSets(truth.Set(cat), pred.Set(cat))

		score := NewScore(len(detail.Matched), len(detail.Extra), len(detail.Missing))
		report.PerCategory[cat] = score
		report.Details[cat] = detail

		tp += score.TP
		fp += score.FP
		fn += score.FN
	}

	report.Overall = NewScore(tp, fp, fn)
	return report
}

func compareSets(truth, pred diagram.Set) Detail {
	d := Detail{
		Matched: []string{},
		Missing: []string{},
		Extra:   []string{},
	}

	for _, key := range slices.Sorted(maps.Keys(truth)) {
		if _, ok := pred[key]; ok {
			d.Matched = append(d.Matched, truth[key].Label)
		} else {
			d.Missing = append(d.Missing, truth[key].Label)
		}
	}

	for _, key := range slices.Sorted(maps.Keys(pred)) {
		if _, ok := truth[key]; !ok {
			d.Extra = append(d.Extra, pred[key].Label)
		}
	}

	return d
}
