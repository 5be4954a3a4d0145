package handler

import (
	"net/http"

	"github.com/01fe23bcs183/paaji-client-sub000/internal/model"
	"github.com/01fe23bcs183/paaji-client-sub000/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderHandler handles order tracking and back-office order requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// GetByNumber handles GET /api/orders/{orderNumber}.
func (h *OrderHandler) GetByNumber(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.GetByOrderNumber(r.Context(), chi.URLParam(r, "orderNumber"))
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// List handles GET /api/admin/orders?status=&limit=&offset=.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	if filter.Limit, filter.Offset, err = parsePage(r); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	orders, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// UpdateStatus handles PATCH /api/admin/orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	var req model.StatusUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	order, err := h.service.TransitionOrder(r.Context(), id, req.Status)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// UpdateTracking handles PATCH /api/admin/orders/{id}/tracking.
func (h *OrderHandler) UpdateTracking(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	var req model.TrackingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	if err := h.service.UpdateTracking(r.Context(), id, &req); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export handles GET /api/admin/orders/export.csv?status=.
func (h *OrderHandler) Export(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	out := &csvResponse{ResponseWriter: w}
	if err := h.service.ExportCSV(r.Context(), out, filter); err != nil {
		if !out.started {
			writeServiceError(w, err, h.logger)
			return
		}
		// The status line is already on the wire.
		h.logger.Error().Err(err).Msg("order export aborted")
	}
}

// csvResponse sets the download headers on the first write, so an export
// that fails before producing output can still be answered with an error.
type csvResponse struct {
	http.ResponseWriter
	started bool
}

func (c *csvResponse) Write(p []byte) (int, error) {
	if !c.started {
		c.started = true
		c.Header().Set("Content-Type", "text/csv; charset=utf-8")
		c.Header().Set("Content-Disposition", `attachment; filename="orders.csv"`)
	}
	return c.ResponseWriter.Write(p)
}

func (h *OrderHandler) orderID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidParameter, "invalid order ID format", h.logger)
		return uuid.Nil, false
	}
	return id, true
}

func parseFilter(r *http.Request) (model.OrderFilter, error) {
	var filter model.OrderFilter
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := model.ParseOrderStatus(raw)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}
	return filter, nil
}
