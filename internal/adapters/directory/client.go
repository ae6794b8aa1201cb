package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"feedback-platform/internal/domain"
	"feedback-platform/internal/infra/metrics"
)

// Client обращается к внешнему справочнику компаний и тарифов.
// API справочника не отличает "записи нет" от "справочник недоступен":
// клиент логирует причину и в обоих случаях возвращает "не найдено".
// Это осознанное ограничение исходного API, а не дефект клиента.
type Client struct {
	httpClient *http.Client
	baseURL    string
	log        zerolog.Logger
}

var _ domain.PricingCatalog = (*Client)(nil)

// NewClient создаёт клиент справочника.
func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		log:        logger,
	}
}

// Company возвращает компанию по идентификатору.
func (c *Client) Company(ctx context.Context, id int) (domain.Company, error) {
	var company domain.Company
	if err := c.getJSON(ctx, fmt.Sprintf("/companies/%d", id), "companies", &company); err != nil {
		c.log.Warn().Err(err).Int("company_id", id).Msg("directory: компания не получена")
		return domain.Company{}, domain.ErrCompanyNotFound
	}
	return company, nil
}

// Subscription возвращает тариф по идентификатору.
func (c *Client) Subscription(ctx context.Context, id int) (domain.SubscriptionTier, error) {
	var tier domain.SubscriptionTier
	if err := c.getJSON(ctx, fmt.Sprintf("/subscriptions/%d", id), "subscriptions", &tier); err != nil {
		c.log.Warn().Err(err).Int("subscription_id", id).Msg("directory: тариф не получен")
		return domain.SubscriptionTier{}, domain.ErrSubscriptionNotFound
	}
	return tier, nil
}

// Companies возвращает список всех компаний; при сбое справочника
// список пуст.
func (c *Client) Companies(ctx context.Context) ([]domain.Company, error) {
	var companies []domain.Company
	if err := c.getJSON(ctx, "/companies", "companies", &companies); err != nil {
		c.log.Warn().Err(err).Msg("directory: список компаний не получен")
		return []domain.Company{}, nil
	}
	return companies, nil
}

func (c *Client) getJSON(ctx context.Context, path, target string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.ObserveNetworkRequest("directory", "get", target, start, err)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
