package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avoronov/budgetly/internal/apperrors"
	"github.com/avoronov/budgetly/internal/handlers/render"
	"github.com/avoronov/budgetly/internal/handlers/userctx"
	"github.com/avoronov/budgetly/internal/logger"
	"github.com/avoronov/budgetly/internal/models"
	"github.com/avoronov/budgetly/internal/repository"
)

type transactionResponse struct {
	ID         uuid.UUID       `json:"id"`
	CategoryID *uuid.UUID      `json:"categoryId,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Kind       string          `json:"kind"`
	Note       string          `json:"note,omitempty"`
	OccurredAt time.Time       `json:"occurredAt"`
	CreatedAt  time.Time       `json:"createdAt"`
}

func toTransactionResponse(t models.Transaction) transactionResponse {
	return transactionResponse{
		ID:         t.ID,
		CategoryID: t.CategoryID,
		Amount:     t.Amount,
		Kind:       t.Kind,
		Note:       t.Note,
		OccurredAt: t.OccurredAt,
		CreatedAt:  t.CreatedAt,
	}
}

type transactionRequest struct {
	CategoryID *uuid.UUID      `json:"categoryId"`
	Amount     decimal.Decimal `json:"amount" validate:"required"`
	Kind       string          `json:"kind" validate:"required,oneof=income expense"`
	Note       string          `json:"note" validate:"max=500"`
	OccurredAt time.Time       `json:"occurredAt" validate:"required"`
}

func handleCreateTransaction(s financeService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		data, err := render.BindAndValidate[transactionRequest](w, r)
		if err != nil {
			return
		}

		tr, err := s.CreateTransaction(r.Context(), user.ID, repository.CreateTransactionParams{
			CategoryID: data.CategoryID,
			Amount:     data.Amount,
			Kind:       data.Kind,
			Note:       data.Note,
			OccurredAt: data.OccurredAt,
		})

		switch {
		case err == nil:
			render.JSONWithStatus(w, toTransactionResponse(tr), http.StatusCreated)
		case errors.Is(err, apperrors.ErrAmountInvalid):
			render.ServiceError(w, "Amount must be positive", http.StatusUnprocessableEntity)
		case errors.Is(err, apperrors.ErrKindInvalid):
			render.ServiceError(w, "Kind must be income or expense", http.StatusUnprocessableEntity)
		case errors.Is(err, apperrors.ErrCategoryNotFound):
			render.ServiceError(w, "Category not found", http.StatusNotFound)
		default:
			l.Error("Failed to create transaction", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleListTransactions(s financeService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		var filter repository.TransactionFilter
		if raw := r.URL.Query().Get("categoryId"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				render.ServiceError(w, "Invalid categoryId filter", http.StatusBadRequest)
				return
			}
			filter.CategoryID = &id
		}

		transactions, err := s.ListTransactions(r.Context(), user.ID, filter)
		if err != nil {
			l.Error("Failed to list transactions", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		response := make([]transactionResponse, 0, len(transactions))
		for _, t := range transactions {
			response = append(response, toTransactionResponse(t))
		}
		render.JSON(w, response)
	})
}

func handleUpdateTransaction(s financeService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Invalid transaction id", http.StatusBadRequest)
			return
		}

		data, err := render.BindAndValidate[transactionRequest](w, r)
		if err != nil {
			return
		}

		tr, err := s.UpdateTransaction(r.Context(), user.ID, id, repository.UpdateTransactionParams{
			CategoryID: data.CategoryID,
			Amount:     data.Amount,
			Kind:       data.Kind,
			Note:       data.Note,
			OccurredAt: data.OccurredAt,
		})

		switch {
		case err == nil:
			render.JSON(w, toTransactionResponse(tr))
		case errors.Is(err, apperrors.ErrTransactionNotFound):
			render.ServiceError(w, "Transaction not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrAmountInvalid):
			render.ServiceError(w, "Amount must be positive", http.StatusUnprocessableEntity)
		case errors.Is(err, apperrors.ErrKindInvalid):
			render.ServiceError(w, "Kind must be income or expense", http.StatusUnprocessableEntity)
		case errors.Is(err, apperrors.ErrCategoryNotFound):
			render.ServiceError(w, "Category not found", http.StatusNotFound)
		default:
			l.Error("Failed to update transaction", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleDeleteTransaction(s financeService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Invalid transaction id", http.StatusBadRequest)
			return
		}

		err = s.DeleteTransaction(r.Context(), user.ID, id)

		switch {
		case err == nil:
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, apperrors.ErrTransactionNotFound):
			render.ServiceError(w, "Transaction not found", http.StatusNotFound)
		default:
			l.Error("Failed to delete transaction", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}
