package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/avoronov/budgetly/internal/apperrors"
	"github.com/avoronov/budgetly/internal/handlers/render"
	"github.com/avoronov/budgetly/internal/handlers/userctx"
	"github.com/avoronov/budgetly/internal/logger"
	"github.com/avoronov/budgetly/internal/models"
)

type categoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"createdAt"`
}

func toCategoryResponse(c models.Category) categoryResponse {
	return categoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		Kind:      c.Kind,
		CreatedAt: c.CreatedAt,
	}
}

func handleCreateCategory(s financeService, l logger.Logger) http.Handler {
	type request struct {
		Name string `json:"name" validate:"required,max=100"`
		Kind string `json:"kind" validate:"required,oneof=income expense"`
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

		category, err := s.CreateCategory(r.Context(), user.ID, data.Name, data.Kind)

		switch {
		case err == nil:
			render.JSONWithStatus(w, toCategoryResponse(category), http.StatusCreated)
		case errors.Is(err, apperrors.ErrCategoryNameTaken):
			render.ServiceError(w, "Category name already exists", http.StatusConflict)
		case errors.Is(err, apperrors.ErrKindInvalid):
			render.ServiceError(w, "Kind must be income or expense", http.StatusUnprocessableEntity)
		default:
			l.Error("Failed to create category", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleListCategories(s financeService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		categories, err := s.ListCategories(r.Context(), user.ID)
		if err != nil {
			l.Error("Failed to list categories", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		response := make([]categoryResponse, 0, len(categories))
		for _, c := range categories {
			response = append(response, toCategoryResponse(c))
		}
		render.JSON(w, response)
	})
}

func handleRenameCategory(s financeService, l logger.Logger) http.Handler {
	type request struct {
		Name string `json:"name" validate:"required,max=100"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Invalid category id", http.StatusBadRequest)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		category, err := s.RenameCategory(r.Context(), user.ID, id, data.Name)

		switch {
		case err == nil:
			render.JSON(w, toCategoryResponse(category))
		case errors.Is(err, apperrors.ErrCategoryNotFound):
			render.ServiceError(w, "Category not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrCategoryNameTaken):
			render.ServiceError(w, "Category name already exists", http.StatusConflict)
		default:
			l.Error("Failed to rename category", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleDeleteCategory(s financeService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Invalid category id", http.StatusBadRequest)
			return
		}

		err = s.DeleteCategory(r.Context(), user.ID, id)

		switch {
		case err == nil:
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, apperrors.ErrCategoryNotFound):
			render.ServiceError(w, "Category not found", http.StatusNotFound)
		default:
			l.Error("Failed to delete category", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}
