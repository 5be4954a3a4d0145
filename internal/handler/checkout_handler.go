package handler

import (
	"net/http"
	"strings"

	"github.com/01fe23bcs183/paaji-client-sub000/internal/model"
	"github.com/01fe23bcs183/paaji-client-sub000/internal/service"

	"github.com/rs/zerolog"
)

// IdempotencyKeyHeader carries the client's key for order placement.
const IdempotencyKeyHeader = "Idempotency-Key"

// CheckoutHandler handles pricing previews and order placement.
type CheckoutHandler struct {
	service service.CheckoutService
	logger  zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(service service.CheckoutService, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		logger:  logger.With().Str("handler", "checkout").Logger(),
	}
}

// Price handles POST /api/checkout/price.
func (h *CheckoutHandler) Price(w http.ResponseWriter, r *http.Request) {
	var req model.PriceCartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	quote, err := h.service.PriceCart(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

// PlaceOrder handles POST /api/checkout/orders. A new order answers 201; a
// replayed idempotency key answers 200 with the original order.
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
	if key == "" {
		writeServiceError(w, model.ErrMissingIdempotencyKey, h.logger)
		return
	}

	var req model.PlaceOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	req.IdempotencyKey = key

	order, created, err := h.service.PlaceOrder(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, order)
}
