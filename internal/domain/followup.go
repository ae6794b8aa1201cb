package domain

import "strings"

// NeedsFollowUp определяет, требует ли отзыв последующей обработки:
// низкая оценка при тарифе Premium или Enterprise (без учёта регистра).
func NeedsFollowUp(rating int, tierName string) bool {
	if rating >= 3 {
		return false
	}
	switch strings.ToLower(tierName) {
	case "premium", "enterprise":
		return true
	}
	return false
}
