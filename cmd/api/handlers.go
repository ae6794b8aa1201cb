package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	chi "github.com/go-chi/chi/v5"

	"feedback-platform/internal/domain"
	feedbackusecase "feedback-platform/internal/usecase/feedback"
)

type companyLister interface {
	Companies(ctx context.Context) ([]domain.Company, error)
}

// submitResponse дополняет сохранённый отзыв предупреждением о сбое
// публикации follow-up события: отзыв уже долговечен, и его результат
// сбой публикации не отменяет.
type submitResponse struct {
	domain.FeedbackRecord
	Warning string `json:"warning,omitempty"`
}

func registerRoutes(r chi.Router, service *feedbackusecase.Service, companies companyLister) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/feedback", handleSubmit(service))
		r.Get("/companies", handleListCompanies(companies))
		r.Get("/companies/{companyID}/price-overview", handlePriceOverview(service))
		r.Get("/companies/{companyID}/feedback/{feedbackID}", handleFeedback(service))
	})
}

func handleSubmit(service *feedbackusecase.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var submission domain.FeedbackSubmission
		if err := json.NewDecoder(r.Body).Decode(&submission); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON format")
			return
		}
		record, err := service.Submit(r.Context(), submission)
		switch {
		case err == nil:
			writeJSON(w, http.StatusCreated, submitResponse{FeedbackRecord: record})
		case errors.Is(err, domain.ErrFollowUpPublish):
			writeJSON(w, http.StatusCreated, submitResponse{FeedbackRecord: record, Warning: "follow-up publish failed"})
		default:
			writeSubmitError(w, err)
		}
	}
}

func handlePriceOverview(service *feedbackusecase.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID, ok := companyIDParam(w, r)
		if !ok {
			return
		}
		overview, err := service.PriceOverview(r.Context(), companyID)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, overview)
		case errors.Is(err, domain.ErrCompanyNotFound), errors.Is(err, domain.ErrSubscriptionNotFound):
			writeError(w, http.StatusNotFound, "company not found")
		case errors.Is(err, domain.ErrDependencyUnavailable):
			writeError(w, http.StatusServiceUnavailable, "dependency unavailable")
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}
	}
}

func handleFeedback(service *feedbackusecase.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID, ok := companyIDParam(w, r)
		if !ok {
			return
		}
		record, err := service.Feedback(r.Context(), chi.URLParam(r, "feedbackID"), companyID)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, record)
		case errors.Is(err, domain.ErrFeedbackNotFound):
			writeError(w, http.StatusNotFound, "feedback not found")
		case errors.Is(err, domain.ErrDependencyUnavailable):
			writeError(w, http.StatusServiceUnavailable, "dependency unavailable")
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}
	}
}

func handleListCompanies(companies companyLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := companies.Companies(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func writeSubmitError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, validationErr.Reason)
	case errors.Is(err, domain.ErrCompanyNotFound):
		writeError(w, http.StatusBadRequest, "company not found")
	case errors.Is(err, domain.ErrSubscriptionNotFound):
		writeError(w, http.StatusBadRequest, "subscription not found")
	case errors.Is(err, domain.ErrDependencyUnavailable):
		writeError(w, http.StatusServiceUnavailable, "dependency unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func companyIDParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	companyID, err := strconv.Atoi(chi.URLParam(r, "companyID"))
	if err != nil || companyID <= 0 {
		writeError(w, http.StatusBadRequest, "companyId must be a positive number")
		return 0, false
	}
	return companyID, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
