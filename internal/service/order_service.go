package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/01fe23bcs183/paaji-client-sub000/internal/events"
	"github.com/01fe23bcs183/paaji-client-sub000/internal/model"
	"github.com/01fe23bcs183/paaji-client-sub000/internal/order"
	"github.com/01fe23bcs183/paaji-client-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// exportHeader is the first row of the order CSV export.
var exportHeader = []string{
	"order_number", "date", "customer_name", "customer_email", "items",
	"subtotal", "discount", "coupon_code", "shipping", "total", "status",
}

// orderService implements OrderService.
type orderService struct {
	orderRepo repository.OrderRepository
	publisher events.Publisher
	now       func() time.Time
	logger    zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	publisher events.Publisher,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		publisher: publisher,
		now:       time.Now,
		logger:    logger.With().Str("service", "order").Logger(),
	}
}

// GetByOrderNumber retrieves an order for the tracking view.
func (s *orderService) GetByOrderNumber(ctx context.Context, number string) (*model.Order, error) {
	o, err := s.orderRepo.GetByOrderNumber(ctx, strings.TrimSpace(number))
	if err != nil {
		s.logger.Error().Err(err).Str("order_number", number).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if o == nil {
		s.logger.Debug().Str("order_number", number).Msg("order not found")
		return nil, model.ErrOrderNotFound.WithDetails(map[string]any{"orderNumber": number})
	}

	return o, nil
}

// List returns orders newest first.
func (s *orderService) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	filter.Limit, filter.Offset = clampPage(filter.Limit, filter.Offset)

	orders, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// TransitionOrder moves an order to status under a row lock.
func (s *orderService) TransitionOrder(ctx context.Context, id uuid.UUID, status string) (*model.Order, error) {
	to, err := model.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}

	var previous model.OrderStatus
	o, err := s.transition(ctx, id, func(o *model.Order) error {
		previous = o.Status
		return order.Transition(o, to, s.now())
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("order_number", o.OrderNumber).
		Str("from", string(previous)).
		Str("to", string(o.Status)).
		Msg("order status changed")

	if err := s.publisher.Publish(ctx, events.StatusChanged(o, previous)); err != nil {
		s.logger.Warn().Err(err).Str("order_number", o.OrderNumber).Msg("failed to publish status change event")
	}
	return o, nil
}

func (s *orderService) transition(ctx context.Context, id uuid.UUID, apply func(*model.Order) error) (o *model.Order, err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	o, err = s.orderRepo.GetForUpdate(ctx, tx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to lock order")
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	if o == nil {
		err = model.ErrOrderNotFound.WithDetails(map[string]any{"id": id.String()})
		return nil, err
	}

	if err = apply(o); err != nil {
		return nil, err
	}

	if err = s.orderRepo.AppendStatus(ctx, tx, o); err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to save order status")
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	return o, nil
}

// UpdateTracking replaces the carrier details on an order.
func (s *orderService) UpdateTracking(ctx context.Context, id uuid.UUID, req *model.TrackingRequest) error {
	carrier := strings.TrimSpace(req.Carrier)
	number := strings.TrimSpace(req.TrackingNumber)
	if carrier == "" {
		return model.NewDomainError(model.ErrCodeMissingField, "carrier is required")
	}
	if number == "" {
		return model.NewDomainError(model.ErrCodeMissingField, "trackingNumber is required")
	}

	tracking := model.Tracking{
		Carrier:        carrier,
		TrackingNumber: number,
		URL:            strings.TrimSpace(req.URL),
		UpdatedAt:      s.now().UTC(),
	}
	if err := s.orderRepo.UpdateTracking(ctx, id, tracking); err != nil {
		if _, ok := model.AsDomainError(err); ok {
			return err
		}
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update tracking")
		return fmt.Errorf("failed to update tracking: %w", err)
	}

	s.logger.Info().Str("order_id", id.String()).Str("carrier", carrier).Msg("tracking updated")
	return nil
}

// ExportCSV streams matching orders as CSV rows.
func (s *orderService) ExportCSV(ctx context.Context, w io.Writer, filter model.OrderFilter) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	count := 0
	err := s.orderRepo.Export(ctx, filter, func(o *model.Order) error {
		count++
		return cw.Write(exportRow(o))
	})
	if err != nil {
		s.logger.Error().Err(err).Int("rows", count).Msg("order export failed")
		return fmt.Errorf("failed to export orders: %w", err)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}

	s.logger.Info().Int("rows", count).Msg("orders exported")
	return nil
}

func exportRow(o *model.Order) []string {
	coupon := ""
	if o.Pricing.CouponCode != nil {
		coupon = *o.Pricing.CouponCode
	}
	return []string{
		o.OrderNumber,
		o.CreatedAt.UTC().Format(time.RFC3339),
		csvSafe(o.Customer.Name),
		csvSafe(o.Customer.Email),
		csvSafe(itemsSummary(o.Items)),
		o.Pricing.Subtotal.String(),
		o.Pricing.Discount.String(),
		csvSafe(coupon),
		o.Pricing.ShippingCost.String(),
		o.Pricing.Total.String(),
		string(o.Status),
	}
}

// csvSafe quotes free-text cells that a spreadsheet would evaluate as a
// formula.
func csvSafe(s string) string {
	if s != "" && strings.ContainsRune("=+-@", rune(s[0])) {
		return "'" + s
	}
	return s
}

// itemsSummary renders items as "P1/RED x2; P2 x1".
func itemsSummary(items []model.LineItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		id := item.ProductID
		if item.VariantID != "" {
			id += "/" + item.VariantID
		}
		parts = append(parts, id+" x"+strconv.Itoa(item.Quantity))
	}
	return strings.Join(parts, "; ")
}
