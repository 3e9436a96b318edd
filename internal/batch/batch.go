// Package batch runs the comparator across a matrix of sample identifiers
// and model names using the dataset naming convention.
package batch

import (
	"cmp"
	"path"
	"strconv"
)

// File name suffixes of the dataset naming convention.
const (
	GroundTruthSuffix = "-GroundTruth.json"
	predictionInfix   = "-Pred-"
	resultInfix       = "-Result-"
)

// Pair is one (sample, model) comparison.
type Pair struct {
	Sample string
	Model  string
}

// Matrix is the cross product of samples and models to evaluate.
type Matrix struct {
	Samples []string
	Models  []string
}

// Pairs returns every (sample, model) combination in sample-major order.
func (m Matrix) Pairs() []Pair {
	pairs := make([]Pair, 0, len(m.Samples)*len(m.Models))
	for _, s := range m.Samples {
		for _, mod := range m.Models {
			pairs = append(pairs, Pair{Sample: s, Model: mod})
		}
	}
	return pairs
}

// Layout resolves document keys for a pair. Results are written to
// OutputDir, or beside the dataset when OutputDir is empty.
type Layout struct {
	DatasetDir string
	OutputDir  string
}

func (l Layout) GroundTruth(sample string) string {
	return path.Join(l.DatasetDir, sample+GroundTruthSuffix)
}

func (l Layout) Prediction(p Pair) string {
	return path.Join(l.DatasetDir, p.Sample+predictionInfix+p.Model+".json")
}

func (l Layout) Result(p Pair) string {
	dir := l.OutputDir
	if dir == "" {
		dir = l.DatasetDir
	}
	return path.Join(dir, p.Sample+resultInfix+p.Model+".json")
}

// compareSamples orders numeric identifiers by value and everything else
// lexically, numbers first.
func compareSamples(a, b string) int {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)

	switch {
	case errA == nil && errB == nil:
		return cmp.Compare(na, nb)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	default:
		return cmp.Compare(a, b)
	}
}
