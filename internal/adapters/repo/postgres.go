package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"feedback-platform/internal/domain"
	"feedback-platform/internal/infra/metrics"
)

// Postgres реализует domain.FeedbackStore на pgxpool.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ domain.FeedbackStore = (*Postgres)(nil)

// NewPostgres создаёт адаптер БД.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) connCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, 5*time.Second)
}

// Put сохраняет отзыв. Запись создаётся один раз и никогда не обновляется.
func (p *Postgres) Put(ctx context.Context, record domain.FeedbackRecord) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
INSERT INTO feedback (id, user_name, comments, rating, company_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
`, record.ID, record.UserName, record.Comments, record.Rating, record.CompanyID, record.CreatedAt)
	metrics.ObserveNetworkRequest("postgres", "feedback_insert", "feedback", start, err)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDependencyUnavailable, err)
	}
	return nil
}

// QueryByCompany возвращает все отзывы компании.
func (p *Postgres) QueryByCompany(ctx context.Context, companyID int) ([]domain.FeedbackRecord, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT id, user_name, comments, rating, company_id, created_at
FROM feedback
WHERE company_id = $1
ORDER BY created_at
`, companyID)
	metrics.ObserveNetworkRequest("postgres", "feedback_query", "feedback", start, err)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDependencyUnavailable, err)
	}
	defer rows.Close()

	var records []domain.FeedbackRecord
	for rows.Next() {
		var record domain.FeedbackRecord
		if err := rows.Scan(&record.ID, &record.UserName, &record.Comments, &record.Rating, &record.CompanyID, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDependencyUnavailable, err)
	}
	return records, nil
}

// GetByID возвращает отзыв по идентификатору и компании.
func (p *Postgres) GetByID(ctx context.Context, id string, companyID int) (domain.FeedbackRecord, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	var record domain.FeedbackRecord
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
SELECT id, user_name, comments, rating, company_id, created_at
FROM feedback
WHERE id = $1 AND company_id = $2
`, id, companyID).Scan(&record.ID, &record.UserName, &record.Comments, &record.Rating, &record.CompanyID, &record.CreatedAt)
	metrics.ObserveNetworkRequest("postgres", "feedback_get", "feedback", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.FeedbackRecord{}, domain.ErrFeedbackNotFound
	}
	if err != nil {
		return domain.FeedbackRecord{}, fmt.Errorf("%w: %v", domain.ErrDependencyUnavailable, err)
	}
	return record, nil
}
