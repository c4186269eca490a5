package cart

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/treatly/backend-treats/internal/catalog"
	"github.com/treatly/backend-treats/internal/common"
	"github.com/treatly/backend-treats/internal/obs"
	"github.com/treatly/backend-treats/internal/pricing"
)

// Handler wires cart operations to HTTP.
type Handler struct {
	Carts    *Service
	Catalog  *catalog.Service
	Validate *validator.Validate
}

type upsertItemRequest struct {
	Name     string `json:"name" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=0"`
}

// Create mints a new cart identifier. The cart itself materialises lazily on
// the first write.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	common.JSON(w, http.StatusCreated, map[string]any{
		"data": map[string]any{"cartId": id},
	})
}

// UpsertItem sets the quantity for one product, replacing any previous value.
func (h *Handler) UpsertItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.cartID(w, r)
	if !ok {
		return
	}
	var payload upsertItemRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON payload", nil)
		return
	}
	payload.Name = strings.TrimSpace(payload.Name)
	if h.Validate != nil {
		if err := h.Validate.Struct(payload); err != nil {
			common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", "name is required and quantity must not be negative", err.Error())
			return
		}
	}
	if _, err := h.Catalog.Lookup(payload.Name); err != nil {
		common.JSONAppError(w, &common.AppError{
			Code:       "UNKNOWN_PRODUCT",
			Message:    "product is not in the catalog",
			HTTPStatus: http.StatusUnprocessableEntity,
			Err:        err,
			Details:    payload.Name,
		})
		return
	}

	c := New(h.Carts.StoreFor(id))
	if err := c.Add(r.Context(), payload.Name, payload.Quantity); err != nil {
		if errors.Is(err, ErrInvalidInput) {
			common.JSONAppError(w, common.NewAppError("VALIDATION", err.Error(), http.StatusUnprocessableEntity, err))
			return
		}
		obs.CountCartMutation("upsert", "error")
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to persist cart entry", nil)
		return
	}
	obs.CountCartMutation("upsert", "ok")
	common.JSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"cartId":   id,
			"name":     payload.Name,
			"quantity": payload.Quantity,
		},
	})
}

// Clear empties the cart.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	id, ok := h.cartID(w, r)
	if !ok {
		return
	}
	c := New(h.Carts.StoreFor(id))
	if err := c.Clear(r.Context()); err != nil {
		obs.CountCartMutation("clear", "error")
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to clear cart", nil)
		return
	}
	obs.CountCartMutation("clear", "ok")
	w.WriteHeader(http.StatusNoContent)
}

// Total prices the cart on the requested date. The date is mandatory input;
// the server clock is never consulted, which keeps totals reproducible.
func (h *Handler) Total(w http.ResponseWriter, r *http.Request) {
	id, ok := h.cartID(w, r)
	if !ok {
		return
	}
	dateParam := strings.TrimSpace(r.URL.Query().Get("date"))
	if dateParam == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "date query parameter is required (YYYY-MM-DD)", nil)
		return
	}
	date, err := time.Parse("2006-01-02", dateParam)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "date must be formatted YYYY-MM-DD", nil)
		return
	}

	store := h.Carts.StoreFor(id)
	entries, err := store.Get(r.Context())
	if err != nil {
		obs.CountCartTotal("error")
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to load cart", nil)
		return
	}
	total, err := pricing.Total(entries, h.Catalog.List(), date)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			obs.CountCartTotal("catalog_mismatch")
			common.JSONAppError(w, &common.AppError{
				Code:       "CATALOG_MISMATCH",
				Message:    "cart references a product absent from the catalog",
				HTTPStatus: http.StatusConflict,
				Err:        err,
				Details:    err.Error(),
			})
			return
		}
		obs.CountCartTotal("error")
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to price cart", nil)
		return
	}
	obs.CountCartTotal("ok")
	common.JSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"cartId": id,
			"date":   dateParam,
			"items":  len(entries),
			"total":  total.String(),
		},
	})
}

func (h *Handler) cartID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid cart id", nil)
		return "", false
	}
	return id, true
}
