package evaluation

import "math"

// Score holds set-overlap counts and the metrics derived from them.
// Metrics are rounded to four decimal places.
type Score struct {
	TP        int     `json:"tp"`
	FP        int     `json:"fp"`
	FN        int     `json:"fn"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// NewScore derives precision, recall, and F1 from raw counts.
//
// A zero denominator is vacuously perfect: precision is 1 when nothing was
// predicted and recall is 1 when nothing was expected. F1 is 0 when
// precision and recall are both 0.
func NewScore(tp, fp, fn int) Score {
	p := ratio(tp, tp+fp)
	r := ratio(tp, tp+fn)

	f1 := 0.0
	if p+r > 0 {
		f1 = 2 * (p * r) / (p + r)
	}

	return Score{
		TP:        tp,
		FP:        fp,
		FN:        fn,
		Precision: round(p),
		Recall:    round(r),
		F1:        round(f1),
	}
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 1
	}
	return float64(num) / float64(den)
}

func round(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
