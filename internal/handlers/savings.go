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

type goalResponse struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	TargetAmount decimal.Decimal `json:"targetAmount"`
	SavedAmount  decimal.Decimal `json:"savedAmount"`
	Deadline     *time.Time      `json:"deadline,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

func toGoalResponse(g models.SavingsGoal) goalResponse {
	return goalResponse{
		ID:           g.ID,
		Name:         g.Name,
		TargetAmount: g.TargetAmount,
		SavedAmount:  g.SavedAmount,
		Deadline:     g.Deadline,
		CreatedAt:    g.CreatedAt,
	}
}

func handleCreateGoal(s financeService, l logger.Logger) http.Handler {
	type request struct {
		Name         string          `json:"name" validate:"required,max=100"`
		TargetAmount decimal.Decimal `json:"targetAmount" validate:"required"`
		Deadline     *time.Time      `json:"deadline"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		goal, err := s.CreateGoal(r.Context(), user.ID, repository.CreateSavingsGoalParams{
			Name:         data.Name,
			TargetAmount: data.TargetAmount,
			Deadline:     data.Deadline,
		})

		switch {
		case err == nil:
			render.JSONWithStatus(w, toGoalResponse(goal), http.StatusCreated)
		case errors.Is(err, apperrors.ErrAmountInvalid):
			render.ServiceError(w, "Target amount must be positive", http.StatusUnprocessableEntity)
		default:
			l.Error("Failed to create savings goal", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleListGoals(s financeService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		goals, err := s.ListGoals(r.Context(), user.ID)
		if err != nil {
			l.Error("Failed to list savings goals", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		response := make([]goalResponse, 0, len(goals))
		for _, g := range goals {
			response = append(response, toGoalResponse(g))
		}
		render.JSON(w, response)
	})
}

func handleUpdateGoal(s financeService, l logger.Logger) http.Handler {
	type request struct {
		Name         string          `json:"name" validate:"required,max=100"`
		TargetAmount decimal.Decimal `json:"targetAmount" validate:"required"`
		Deadline     *time.Time      `json:"deadline"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Invalid goal id", http.StatusBadRequest)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		goal, err := s.UpdateGoal(r.Context(), user.ID, id, repository.UpdateSavingsGoalParams{
			Name:         data.Name,
			TargetAmount: data.TargetAmount,
			Deadline:     data.Deadline,
		})

		switch {
		case err == nil:
			render.JSON(w, toGoalResponse(goal))
		case errors.Is(err, apperrors.ErrSavingsGoalNotFound):
			render.ServiceError(w, "Savings goal not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrAmountInvalid):
			render.ServiceError(w, "Target amount must be positive", http.StatusUnprocessableEntity)
		default:
			l.Error("Failed to update savings goal", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleDeposit(s financeService, l logger.Logger) http.Handler {
	type request struct {
		Amount decimal.Decimal `json:"amount" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Invalid goal id", http.StatusBadRequest)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		goal, err := s.Deposit(r.Context(), user.ID, id, data.Amount)

		switch {
		case err == nil:
			render.JSON(w, toGoalResponse(goal))
		case errors.Is(err, apperrors.ErrSavingsGoalNotFound):
			render.ServiceError(w, "Savings goal not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrAmountInvalid):
			render.ServiceError(w, "Amount must be positive", http.StatusUnprocessableEntity)
		default:
			l.Error("Failed to deposit to savings goal", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleDeleteGoal(s financeService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Invalid goal id", http.StatusBadRequest)
			return
		}

		err = s.DeleteGoal(r.Context(), user.ID, id)

		switch {
		case err == nil:
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, apperrors.ErrSavingsGoalNotFound):
			render.ServiceError(w, "Savings goal not found", http.StatusNotFound)
		default:
			l.Error("Failed to delete savings goal", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

type toolResponse struct {
	ID         uuid.UUID        `json:"id"`
	Name       string           `json:"name"`
	Kind       string           `json:"kind"`
	AnnualRate *decimal.Decimal `json:"annualRate,omitempty"`
	Notes      string           `json:"notes,omitempty"`
	CreatedAt  time.Time        `json:"createdAt"`
}

func toToolResponse(t models.SavingsTool) toolResponse {
	return toolResponse{
		ID:         t.ID,
		Name:       t.Name,
		Kind:       t.Kind,
		AnnualRate: t.AnnualRate,
		Notes:      t.Notes,
		CreatedAt:  t.CreatedAt,
	}
}

func handleCreateTool(s financeService, l logger.Logger) http.Handler {
	type request struct {
		Name       string           `json:"name" validate:"required,max=100"`
		Kind       string           `json:"kind" validate:"required,max=50"`
		AnnualRate *decimal.Decimal `json:"annualRate"`
		Notes      string           `json:"notes" validate:"max=500"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		tool, err := s.CreateTool(r.Context(), user.ID, repository.CreateSavingsToolParams{
			Name:       data.Name,
			Kind:       data.Kind,
			AnnualRate: data.AnnualRate,
			Notes:      data.Notes,
		})
		if err != nil {
			l.Error("Failed to create savings tool", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSONWithStatus(w, toToolResponse(tool), http.StatusCreated)
	})
}

func handleListTools(s financeService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		tools, err := s.ListTools(r.Context(), user.ID)
		if err != nil {
			l.Error("Failed to list savings tools", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		response := make([]toolResponse, 0, len(tools))
		for _, t := range tools {
			response = append(response, toToolResponse(t))
		}
		render.JSON(w, response)
	})
}

func handleDeleteTool(s financeService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Invalid tool id", http.StatusBadRequest)
			return
		}

		err = s.DeleteTool(r.Context(), user.ID, id)

		switch {
		case err == nil:
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, apperrors.ErrSavingsToolNotFound):
			render.ServiceError(w, "Savings tool not found", http.StatusNotFound)
		default:
			l.Error("Failed to delete savings tool", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}
