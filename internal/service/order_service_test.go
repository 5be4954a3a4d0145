package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/01fe23bcs183/paaji-client-sub000/internal/events"
	"github.com/01fe23bcs183/paaji-client-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func pendingOrder() *model.Order {
	created := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	return &model.Order{
		ID:            uuid.New(),
		OrderNumber:   "ORD-2026-000001",
		Status:        model.OrderStatusPending,
		StatusHistory: []model.StatusChange{{Status: model.OrderStatusPending, At: created}},
		CreatedAt:     created,
		UpdatedAt:     created,
	}
}

func TestOrderService_GetByOrderNumber(t *testing.T) {
	ctx := context.Background()
	repo := new(MockOrderRepository)
	svc := NewOrderService(repo, new(MockPublisher), zerolog.Nop())

	o := pendingOrder()
	repo.On("GetByOrderNumber", ctx, "ORD-2026-000001").Return(o, nil)
	repo.On("GetByOrderNumber", ctx, "ORD-2026-999999").Return(nil, nil)
	repo.On("GetByOrderNumber", ctx, "ORD-2026-000500").Return(nil, errors.New("database error"))

	got, err := svc.GetByOrderNumber(ctx, " ORD-2026-000001 ")
	require.NoError(t, err)
	assert.Same(t, o, got)

	_, err = svc.GetByOrderNumber(ctx, "ORD-2026-999999")
	assert.ErrorIs(t, err, model.ErrOrderNotFound)

	_, err = svc.GetByOrderNumber(ctx, "ORD-2026-000500")
	require.Error(t, err)
	_, isDomain := model.AsDomainError(err)
	assert.False(t, isDomain)
}

func TestOrderService_List_ClampsPage(t *testing.T) {
	ctx := context.Background()
	repo := new(MockOrderRepository)
	svc := NewOrderService(repo, new(MockPublisher), zerolog.Nop())

	shipped := model.OrderStatusShipped
	repo.On("List", ctx, model.OrderFilter{Status: &shipped, Limit: 100, Offset: 0}).
		Return([]model.Order{*pendingOrder()}, nil)

	orders, err := svc.List(ctx, model.OrderFilter{Status: &shipped, Limit: 500, Offset: -1})
	require.NoError(t, err)
	assert.Len(t, orders, 1)
	repo.AssertExpectations(t)
}

func TestOrderService_TransitionOrder(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		status     string
		current    *model.Order
		wantErr    error
		wantStatus model.OrderStatus
	}{
		{name: "Pending to Processing", status: "Processing", current: pendingOrder(), wantStatus: model.OrderStatusProcessing},
		{name: "Pending to Cancelled", status: "Cancelled", current: pendingOrder(), wantStatus: model.OrderStatusCancelled},
		{name: "Pending to Shipped skips a step", status: "Shipped", current: pendingOrder(), wantErr: model.ErrIllegalStatusTransition},
		{name: "Same status", status: "Pending", current: pendingOrder(), wantErr: model.ErrIllegalStatusTransition},
		{name: "Unknown order", status: "Processing", current: nil, wantErr: model.ErrOrderNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockOrderRepository)
			publisher := new(MockPublisher)
			mockTx := new(MockTx)
			svc := NewOrderService(repo, publisher, zerolog.Nop())

			id := uuid.New()
			repo.On("BeginTx", ctx).Return(mockTx, nil)
			repo.On("GetForUpdate", ctx, mockTx, id).Return(tt.current, nil)
			if tt.wantErr == nil {
				repo.On("AppendStatus", ctx, mockTx, tt.current).Return(nil)
				mockTx.On("Commit", ctx).Return(nil)
				publisher.On("Publish", ctx, mock.MatchedBy(func(e events.Event) bool {
					return e.Type == events.TypeOrderStatusChanged &&
						e.PreviousStatus == model.OrderStatusPending &&
						e.Status == tt.wantStatus
				})).Return(nil)
			} else {
				mockTx.On("Rollback", ctx).Return(nil)
			}

			o, err := svc.TransitionOrder(ctx, id, tt.status)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, o)
				assert.True(t, mockTx.rolledBack)
				repo.AssertNotCalled(t, "AppendStatus", mock.Anything, mock.Anything, mock.Anything)
				publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, o.Status)
			require.Len(t, o.StatusHistory, 2)
			assert.Equal(t, tt.wantStatus, o.StatusHistory[1].Status)
			assert.True(t, mockTx.committed)
			repo.AssertExpectations(t)
			publisher.AssertExpectations(t)
		})
	}
}

func TestOrderService_TransitionOrder_InvalidStatus(t *testing.T) {
	repo := new(MockOrderRepository)
	svc := NewOrderService(repo, new(MockPublisher), zerolog.Nop())

	_, err := svc.TransitionOrder(context.Background(), uuid.New(), "Lost")

	assert.ErrorIs(t, err, model.ErrInvalidStatus)
	repo.AssertNotCalled(t, "BeginTx", mock.Anything)
}

func TestOrderService_TransitionOrder_CommitFailure(t *testing.T) {
	ctx := context.Background()
	repo := new(MockOrderRepository)
	publisher := new(MockPublisher)
	mockTx := new(MockTx)
	svc := NewOrderService(repo, publisher, zerolog.Nop())

	o := pendingOrder()
	repo.On("BeginTx", ctx).Return(mockTx, nil)
	repo.On("GetForUpdate", ctx, mockTx, o.ID).Return(o, nil)
	repo.On("AppendStatus", ctx, mockTx, o).Return(nil)
	mockTx.On("Commit", ctx).Return(errors.New("connection reset"))
	mockTx.On("Rollback", ctx).Return(nil)

	_, err := svc.TransitionOrder(ctx, o.ID, "Processing")

	require.Error(t, err)
	assert.True(t, mockTx.rolledBack)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestOrderService_UpdateTracking(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	tests := []struct {
		name    string
		req     *model.TrackingRequest
		repoErr error
		wantErr error
		callsDB bool
	}{
		{name: "Success", req: &model.TrackingRequest{Carrier: " BlueDart ", TrackingNumber: "BD1"}, callsDB: true},
		{name: "Missing carrier", req: &model.TrackingRequest{TrackingNumber: "BD1"}, wantErr: model.NewDomainError(model.ErrCodeMissingField, "")},
		{name: "Missing number", req: &model.TrackingRequest{Carrier: "BlueDart"}, wantErr: model.NewDomainError(model.ErrCodeMissingField, "")},
		{name: "Unknown order", req: &model.TrackingRequest{Carrier: "BlueDart", TrackingNumber: "BD1"}, repoErr: model.ErrOrderNotFound, wantErr: model.ErrOrderNotFound, callsDB: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockOrderRepository)
			svc := NewOrderService(repo, new(MockPublisher), zerolog.Nop())
			repo.On("UpdateTracking", ctx, id, mock.MatchedBy(func(tr model.Tracking) bool {
				return tr.Carrier == "BlueDart" && tr.TrackingNumber == "BD1" && !tr.UpdatedAt.IsZero()
			})).Return(tt.repoErr)

			err := svc.UpdateTracking(ctx, id, tt.req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			if tt.callsDB {
				repo.AssertExpectations(t)
			} else {
				repo.AssertNotCalled(t, "UpdateTracking", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestOrderService_ExportCSV(t *testing.T) {
	ctx := context.Background()
	repo := new(MockOrderRepository)
	svc := NewOrderService(repo, new(MockPublisher), zerolog.Nop())

	code := "SAVE20"
	first := pendingOrder()
	first.Customer = model.Customer{Name: "Asha Rao", Email: "asha@example.com"}
	first.Items = []model.LineItem{
		{ProductID: "P1", VariantID: "RED", UnitPrice: 25000, Quantity: 2},
		{ProductID: "P2", UnitPrice: 50000, Quantity: 1},
	}
	first.Pricing = model.PricingResult{Subtotal: 100000, Discount: 15050, CouponCode: &code, ShippingCost: 5000, Total: 89950}

	second := pendingOrder()
	second.OrderNumber = "ORD-2026-000002"
	second.Customer = model.Customer{Name: "Rao, Vikram", Email: "vikram@example.com"}
	second.Items = []model.LineItem{{ProductID: "P3", UnitPrice: 999, Quantity: 3}}
	second.Pricing = model.PricingResult{Subtotal: 2997, ShippingCost: 0, Total: 2997}
	second.Status = model.OrderStatusCancelled

	repo.On("Export", ctx, model.OrderFilter{}, mock.Anything).Return([]model.Order{*first, *second}, nil)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(ctx, &buf, model.OrderFilter{}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, exportHeader, rows[0])
	assert.Equal(t, []string{
		"ORD-2026-000001", "2026-03-01T09:30:00Z", "Asha Rao", "asha@example.com",
		"P1/RED x2; P2 x1", "1000.00", "150.50", "SAVE20", "50.00", "899.50", "Pending",
	}, rows[1])
	assert.Equal(t, "Rao, Vikram", rows[2][2])
	assert.Equal(t, "", rows[2][7])
	assert.Equal(t, "29.97", rows[2][9])
	assert.Equal(t, "Cancelled", rows[2][10])
}

func TestOrderService_ExportCSV_NeutralisesFormulas(t *testing.T) {
	ctx := context.Background()
	repo := new(MockOrderRepository)
	svc := NewOrderService(repo, new(MockPublisher), zerolog.Nop())

	code := "+SAVE"
	o := pendingOrder()
	o.Customer = model.Customer{Name: `=HYPERLINK("http://evil.example","x")`, Email: "@sum(A1)"}
	o.Items = []model.LineItem{{ProductID: "-P1", UnitPrice: 100, Quantity: 1}}
	o.Pricing = model.PricingResult{Subtotal: 100, CouponCode: &code, Total: 100}
	repo.On("Export", ctx, model.OrderFilter{}, mock.Anything).Return([]model.Order{*o}, nil)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(ctx, &buf, model.OrderFilter{}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, `'=HYPERLINK("http://evil.example","x")`, rows[1][2])
	assert.Equal(t, "'@sum(A1)", rows[1][3])
	assert.Equal(t, "'-P1 x1", rows[1][4])
	assert.Equal(t, "'+SAVE", rows[1][7])
	assert.Equal(t, "1.00", rows[1][5], "amounts are left alone")
}

func TestOrderService_ExportCSV_RepositoryError(t *testing.T) {
	ctx := context.Background()
	repo := new(MockOrderRepository)
	svc := NewOrderService(repo, new(MockPublisher), zerolog.Nop())

	repo.On("Export", ctx, model.OrderFilter{}, mock.Anything).Return(nil, errors.New("query failed"))

	var buf bytes.Buffer
	err := svc.ExportCSV(ctx, &buf, model.OrderFilter{})
	require.Error(t, err)
	assert.Zero(t, buf.Len(), "nothing may reach the writer when the export fails")
}
