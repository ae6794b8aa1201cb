package domain

import "time"

// Company описывает компанию из внешнего справочника.
type Company struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	SubscriptionID int    `json:"subscriptionId"`
}

// SubscriptionTier описывает тариф подписки компании.
type SubscriptionTier struct {
	ID              int    `json:"id"`
	Name            string `json:"type"`
	PricePerMessage Money  `json:"pricePerMessage"`
}

// FeedbackSubmission — входной DTO отправки отзыва.
type FeedbackSubmission struct {
	UserName  string `json:"userName" validate:"required"`
	Comments  string `json:"comments" validate:"required"`
	Rating    int    `json:"rating" validate:"min=1,max=5"`
	CompanyID int    `json:"companyId" validate:"gt=0"`
}

// FeedbackRecord — сохранённый отзыв. CompanyID одновременно служит
// ключом партиции хранилища; запись создаётся один раз и не изменяется.
type FeedbackRecord struct {
	ID        string    `json:"id"`
	UserName  string    `json:"userName"`
	Comments  string    `json:"comments"`
	Rating    int       `json:"rating"`
	CompanyID int       `json:"companyId"`
	CreatedAt time.Time `json:"createdAt"`
}

// FollowUpEvent — событие очереди последующей обработки отзыва.
// После публикации не изменяется; транспорт может доставить его повторно.
type FollowUpEvent struct {
	FeedbackID   string `json:"feedbackId"`
	UserName     string `json:"userName"`
	Comments     string `json:"comments"`
	Rating       int    `json:"rating"`
	CompanyID    int    `json:"companyId"`
	CompanyName  string `json:"companyName"`
	Subscription string `json:"subscription"`
}

// PriceOverview — расчётная ценовая сводка по компании.
type PriceOverview struct {
	CompanyName   string  `json:"companyName"`
	TotalPrice    Money   `json:"totalPrice"`
	AverageRating float64 `json:"averageRating"`
}
