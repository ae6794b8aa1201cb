package directory

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"feedback-platform/internal/domain"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, time.Second, zerolog.Nop())
}

func TestCompanyFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/companies/7" {
			t.Fatalf("неожиданный путь: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":7,"name":"Acme","subscriptionId":3}`))
	}))

	company, err := client.Company(context.Background(), 7)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if company.Name != "Acme" || company.SubscriptionID != 3 {
		t.Fatalf("компания разобрана неверно: %+v", company)
	}
}

func TestCompanyNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.Company(context.Background(), 404)
	if !errors.Is(err, domain.ErrCompanyNotFound) {
		t.Fatalf("ожидали ErrCompanyNotFound, получили %v", err)
	}
}

func TestCompanyNetworkFailureMapsToNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	client := NewClient(srv.URL, time.Second, zerolog.Nop())

	_, err := client.Company(context.Background(), 7)
	if !errors.Is(err, domain.ErrCompanyNotFound) {
		t.Fatalf("сетевой сбой должен отображаться в ErrCompanyNotFound, получили %v", err)
	}
}

func TestSubscriptionFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/subscriptions/3" {
			t.Fatalf("неожиданный путь: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":3,"type":"Premium","pricePerMessage":{"amount":200,"currency":"EUR"}}`))
	}))

	tier, err := client.Subscription(context.Background(), 3)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if tier.Name != "Premium" || tier.PricePerMessage.Amount != 200 {
		t.Fatalf("тариф разобран неверно: %+v", tier)
	}
}

func TestSubscriptionNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.Subscription(context.Background(), 3)
	if !errors.Is(err, domain.ErrSubscriptionNotFound) {
		t.Fatalf("ожидали ErrSubscriptionNotFound, получили %v", err)
	}
}

func TestCompaniesListFailureGivesEmptyList(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	companies, err := client.Companies(context.Background())
	if err != nil {
		t.Fatalf("сбой списка не должен быть ошибкой: %v", err)
	}
	if len(companies) != 0 {
		t.Fatalf("ожидали пустой список")
	}
}
