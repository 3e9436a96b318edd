// Package results persists comparison summaries so batch runs can be
// queried after the fact.
package results

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/umleval/internal/evaluation"
	"github.com/JaimeStill/umleval/pkg/pagination"
	"github.com/JaimeStill/umleval/pkg/query"
	"github.com/JaimeStill/umleval/pkg/repository"
)

// System stores and queries comparison results.
type System interface {
	// Save inserts rec, assigning its ID and EvaluatedAt when unset.
	// A second record for the same run, sample, and model is ErrDuplicate.
	Save(ctx context.Context, rec Record) (*Record, error)
	Find(ctx context.Context, id uuid.UUID) (*Record, error)
	// List returns one page of matching records, by default ordered by
	// sample then model.
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Record], error)
	// Record saves the summary of report. It satisfies batch.Recorder.
	Record(ctx context.Context, runID uuid.UUID, sample, model string, report *evaluation.Report) error
}

type repo struct {
	db         *sql.DB
	driver     string
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a results store over db. driver selects the placeholder
// dialect (database.DriverPostgres or database.DriverSQLite).
func New(db *sql.DB, driver string, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		driver:     driver,
		logger:     logger.With("system", "results"),
		pagination: pagination,
	}
}

func (r *repo) Save(ctx context.Context, rec Record) (*Record, error) {
	if rec.SampleID == "" || rec.Model == "" {
		return nil, fmt.Errorf("%w: sample and model required", ErrInvalidRecord)
	}
	if rec.RunID == uuid.Nil {
		return nil, fmt.Errorf("%w: run id required", ErrInvalidRecord)
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.EvaluatedAt.IsZero() {
		rec.EvaluatedAt = time.Now().UTC().Truncate(time.Microsecond)
	}

	perCategory, err := json.Marshal(rec.PerCategory)
	if err != nil {
		return nil, fmt.Errorf("encode per_category: %w", err)
	}

	q := repository.Rebind(r.driver, fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		projection.Table(), projection.Columns(),
	))

	args := []any{
		rec.ID, rec.RunID, rec.SampleID, rec.Model, string(perCategory),
		rec.Overall.TP, rec.Overall.FP, rec.Overall.FN,
		rec.Overall.Precision, rec.Overall.Recall, rec.Overall.F1,
		rec.Aggregation, rec.EvaluatedAt,
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (sql.Result, error) {
		return tx.ExecContext(ctx, q, args...)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Debug("result saved",
		"id", rec.ID,
		"run_id", rec.RunID,
		"sample", rec.SampleID,
		"model", rec.Model,
	)
	return &rec, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Record, error) {
	if id == uuid.Nil {
		return nil, ErrNotFound
	}

	q, args := query.NewBuilder(projection).WhereEquals("ID", id).Build()

	rec, err := repository.QueryOne(ctx, r.db, repository.Rebind(r.driver, q), args, scanRecord)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &rec, nil
}

func (r *repo) List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Record], error) {
	page.Normalize(r.pagination)

	qb := filters.Apply(query.NewBuilder(projection, defaultSort...))
	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, repository.Rebind(r.driver, countSQL), countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count results: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.PageSize, page.Offset())
	records, err := repository.QueryMany(ctx, r.db, repository.Rebind(r.driver, pageSQL), pageArgs, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}

	result := pagination.NewPageResult(records, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Record(ctx context.Context, runID uuid.UUID, sample, model string, report *evaluation.Report) error {
	_, err := r.Save(ctx, NewRecord(runID, sample, model, report))
	return err
}
