package results

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/umleval/internal/diagram"
	"github.com/JaimeStill/umleval/internal/evaluation"
	"github.com/JaimeStill/umleval/pkg/query"
	"github.com/JaimeStill/umleval/pkg/repository"
)

// Record is the stored summary of one comparison.
type Record struct {
	ID          uuid.UUID                             `json:"id"`
	RunID       uuid.UUID                             `json:"run_id"`
	SampleID    string                                `json:"sample_id"`
	Model       string                                `json:"model"`
	PerCategory map[diagram.Category]evaluation.Score `json:"per_category"`
	Overall     evaluation.Score                      `json:"overall"`
	Aggregation string                                `json:"aggregation"`
	EvaluatedAt time.Time                             `json:"evaluated_at"`
}

// NewRecord summarizes report for storage. Details are not persisted.
func NewRecord(runID uuid.UUID, sample, model string, report *evaluation.Report) Record {
	return Record{
		RunID:       runID,
		SampleID:    sample,
		Model:       model,
		PerCategory: report.PerCategory,
		Overall:     report.Overall,
		Aggregation: report.Aggregation,
	}
}

// Filters narrow List results. Zero-valued fields are ignored.
type Filters struct {
	RunID    uuid.UUID
	Model    string
	SampleID string
}

// Apply adds the set filters to qb.
func (f Filters) Apply(qb *query.Builder) *query.Builder {
	return qb.
		WhereEquals("RunID", f.RunID).
		WhereEquals("Model", f.Model).
		WhereEquals("SampleID", f.SampleID)
}

var projection = query.NewProjectionMap("evaluation_results").
	Project("id", "ID").
	Project("run_id", "RunID").
	Project("sample_id", "SampleID").
	Project("model", "Model").
	Project("per_category", "PerCategory").
	Project("tp", "TP").
	Project("fp", "FP").
	Project("fn", "FN").
	Project("precision", "Precision").
	Project("recall", "Recall").
	Project("f1", "F1").
	Project("aggregation", "Aggregation").
	Project("evaluated_at", "EvaluatedAt")

var defaultSort = []query.SortField{
	{Field: "SampleID"},
	{Field: "Model"},
	{Field: "EvaluatedAt"},
}

func scanRecord(s repository.Scanner) (Record, error) {
	var (
		r           Record
		perCategory string
	)

	err := s.Scan(
		&r.ID, &r.RunID, &r.SampleID, &r.Model, &perCategory,
		&r.Overall.TP, &r.Overall.FP, &r.Overall.FN,
		&r.Overall.Precision, &r.Overall.Recall, &r.Overall.F1,
		&r.Aggregation, &r.EvaluatedAt,
	)
	if err != nil {
		return r, err
	}

	if err := json.Unmarshal([]byte(perCategory), &r.PerCategory); err != nil {
		return r, fmt.Errorf("decode per_category for %s: %w", r.ID, err)
	}
	return r, nil
}
