package feedback

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"feedback-platform/internal/domain"
	"feedback-platform/internal/infra/metrics"
)

// Service реализует приём отзывов и расчёт ценовой сводки.
type Service struct {
	catalog  domain.PricingCatalog
	store    domain.FeedbackStore
	queue    domain.FollowUpQueue
	validate *validator.Validate
	log      zerolog.Logger
}

// NewService создаёт сервис отзывов.
func NewService(catalog domain.PricingCatalog, store domain.FeedbackStore, queue domain.FollowUpQueue, logger zerolog.Logger) *Service {
	return &Service{
		catalog:  catalog,
		store:    store,
		queue:    queue,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      logger,
	}
}

// Submit проверяет отправку, сохраняет отзыв и при необходимости публикует
// follow-up событие. Порядок строго store-then-publish: событие никогда не
// ссылается на отзыв, которого нет в хранилище. Сбой публикации не
// откатывает уже сохранённый отзыв — запись возвращается вместе с
// ошибкой ErrFollowUpPublish.
func (s *Service) Submit(ctx context.Context, submission domain.FeedbackSubmission) (domain.FeedbackRecord, error) {
	if err := s.validateSubmission(submission); err != nil {
		metrics.IncSubmission("invalid")
		return domain.FeedbackRecord{}, err
	}

	company, err := s.catalog.Company(ctx, submission.CompanyID)
	if err != nil {
		metrics.IncSubmission("rejected")
		return domain.FeedbackRecord{}, fmt.Errorf("резолв компании %d: %w", submission.CompanyID, err)
	}
	tier, err := s.catalog.Subscription(ctx, company.SubscriptionID)
	if err != nil {
		metrics.IncSubmission("rejected")
		return domain.FeedbackRecord{}, fmt.Errorf("резолв тарифа %d: %w", company.SubscriptionID, err)
	}

	record := domain.FeedbackRecord{
		ID:        uuid.NewString(),
		UserName:  submission.UserName,
		Comments:  submission.Comments,
		Rating:    submission.Rating,
		CompanyID: submission.CompanyID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Put(ctx, record); err != nil {
		metrics.IncSubmission("failed")
		return domain.FeedbackRecord{}, fmt.Errorf("сохранение отзыва: %w", err)
	}
	metrics.IncSubmission("accepted")

	if !domain.NeedsFollowUp(record.Rating, tier.Name) {
		return record, nil
	}

	event := domain.FollowUpEvent{
		FeedbackID:   record.ID,
		UserName:     record.UserName,
		Comments:     record.Comments,
		Rating:       record.Rating,
		CompanyID:    record.CompanyID,
		CompanyName:  company.Name,
		Subscription: tier.Name,
	}
	if err := s.queue.Publish(ctx, event); err != nil {
		s.log.Error().Err(err).Str("feedback_id", record.ID).Msg("feedback: не удалось опубликовать follow-up")
		metrics.IncFollowUpPublishError()
		return record, fmt.Errorf("%w: %v", domain.ErrFollowUpPublish, err)
	}
	metrics.IncFollowUpPublished()
	return record, nil
}

// PriceOverview считает ценовую сводку компании: количество отзывов,
// умноженное на цену сообщения, и среднюю оценку с одним знаком после
// запятой. Сводка пересчитывается при каждом запросе.
func (s *Service) PriceOverview(ctx context.Context, companyID int) (domain.PriceOverview, error) {
	company, err := s.catalog.Company(ctx, companyID)
	if err != nil {
		return domain.PriceOverview{}, fmt.Errorf("резолв компании %d: %w", companyID, err)
	}
	tier, err := s.catalog.Subscription(ctx, company.SubscriptionID)
	if err != nil {
		return domain.PriceOverview{}, fmt.Errorf("резолв тарифа %d: %w", company.SubscriptionID, err)
	}
	records, err := s.store.QueryByCompany(ctx, companyID)
	if err != nil {
		return domain.PriceOverview{}, fmt.Errorf("выборка отзывов: %w", err)
	}

	overview := domain.PriceOverview{
		CompanyName: company.Name,
		TotalPrice:  domain.Money{Currency: tier.PricePerMessage.Currency},
	}
	if len(records) == 0 {
		return overview, nil
	}

	overview.TotalPrice = tier.PricePerMessage.Mul(int64(len(records)))
	sum := 0
	for _, record := range records {
		sum += record.Rating
	}
	overview.AverageRating = roundRatingTenths(sum, len(records))
	return overview, nil
}

// Feedback возвращает сохранённый отзыв по идентификатору и компании.
func (s *Service) Feedback(ctx context.Context, id string, companyID int) (domain.FeedbackRecord, error) {
	record, err := s.store.GetByID(ctx, id, companyID)
	if err != nil {
		return domain.FeedbackRecord{}, fmt.Errorf("чтение отзыва %s: %w", id, err)
	}
	return record, nil
}

// roundRatingTenths считает среднее в десятых долях с округлением
// половины от нуля: среднее 2.25 даёт 2.3.
func roundRatingTenths(sum, count int) float64 {
	tenths := (20*sum + count) / (2 * count)
	return float64(tenths) / 10
}

// validateSubmission выполняет структурные проверки в фиксированном
// порядке (имя, комментарий, оценка, компания) и возвращает первую
// неудачу до любого внешнего вызова.
func (s *Service) validateSubmission(submission domain.FeedbackSubmission) error {
	err := s.validate.Struct(submission)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &domain.ValidationError{Field: "body", Reason: "invalid request body"}
	}
	// validator обходит поля в порядке объявления структуры,
	// поэтому первая ошибка и есть первая по фиксированному порядку.
	switch fieldErrs[0].Field() {
	case "UserName":
		return &domain.ValidationError{Field: "userName", Reason: "userName is required"}
	case "Comments":
		return &domain.ValidationError{Field: "comments", Reason: "comments is required"}
	case "Rating":
		return &domain.ValidationError{Field: "rating", Reason: "rating must be between 1 and 5"}
	case "CompanyID":
		return &domain.ValidationError{Field: "companyId", Reason: "companyId must be a positive number"}
	}
	return &domain.ValidationError{Field: fieldErrs[0].Field(), Reason: "invalid value"}
}
