package followup

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"feedback-platform/internal/domain"
	"feedback-platform/internal/infra/metrics"
)

// ledgerHeader перечисляет пять полей строки журнала в порядке записи.
const ledgerHeader = "UserName;Comments;Rating;Company;Subscription"

const fieldDelimiter = ";"

const (
	defaultMaxAttempts  = 5
	defaultRetryBackoff = 50 * time.Millisecond
)

// fieldEscaper заменяет разделитель на запятую и переводы строк на пробел:
// строка журнала всегда остаётся одной физической строкой из пяти полей.
var fieldEscaper = strings.NewReplacer(fieldDelimiter, ",", "\r\n", " ", "\n", " ", "\r", " ")

// Config задаёт бюджет повторов при конфликте версий журнала.
type Config struct {
	MaxAttempts  int
	RetryBackoff time.Duration
}

// Appender дописывает строки в журналы компаний поверх условной записи.
type Appender struct {
	store domain.LedgerStore
	cfg   Config
	log   zerolog.Logger
}

// NewAppender создаёт аппендер журнала.
func NewAppender(store domain.LedgerStore, cfg Config, logger zerolog.Logger) *Appender {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = defaultRetryBackoff
	}
	return &Appender{store: store, cfg: cfg, log: logger}
}

// LedgerKey возвращает имя объекта журнала для компании.
func LedgerKey(companyID int) string {
	return fmt.Sprintf("feedback-%d.csv", companyID)
}

// Append дописывает одну строку журнала. Хранилище умеет только полную
// перезапись объекта, поэтому цикл читает содержимое вместе с токеном
// версии, собирает новое содержимое (с заголовком, если объекта ещё нет)
// и пишет его условно. Несовпадение токена означает параллельную запись:
// цикл перезапускается целиком, чтобы ни одна чужая строка не потерялась.
// Таймаут чтения или записи расходует одну попытку, как и конфликт.
// После исчерпания бюджета возвращается последняя ошибка; для конфликтов
// это ErrLedgerContention.
func (a *Appender) Append(ctx context.Context, event domain.FollowUpEvent) error {
	key := LedgerKey(event.CompanyID)
	row := FormatRow(event)
	start := time.Now()
	defer metrics.ObserveLedgerAppend(start)

	var lastErr error
	for attempt := 1; attempt <= a.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(a.cfg.RetryBackoff):
			}
		}

		content, version, err := a.store.Read(ctx, key)
		if err != nil {
			lastErr = fmt.Errorf("чтение журнала %s: %w", key, err)
			continue
		}

		var next string
		if version == "" {
			next = ledgerHeader + "\n" + row + "\n"
		} else {
			next = content + row + "\n"
		}

		ok, err := a.store.ConditionalWrite(ctx, key, next, version)
		if err != nil {
			lastErr = fmt.Errorf("запись журнала %s: %w", key, err)
			continue
		}
		if ok {
			return nil
		}

		metrics.IncLedgerConflict()
		a.log.Debug().Str("ledger", key).Int("attempt", attempt).Msg("followup: конфликт версии журнала")
		lastErr = fmt.Errorf("%w: %s", domain.ErrLedgerContention, key)
	}
	return lastErr
}

// FormatRow собирает строку журнала из события: пять полей
// в фиксированном порядке, совпадающем с заголовком.
func FormatRow(event domain.FollowUpEvent) string {
	return strings.Join([]string{
		escapeField(event.UserName),
		escapeField(event.Comments),
		strconv.Itoa(event.Rating),
		escapeField(event.CompanyName),
		escapeField(event.Subscription),
	}, fieldDelimiter)
}

func escapeField(field string) string {
	return fieldEscaper.Replace(field)
}
