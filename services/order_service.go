package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/dat564/e-commerce-sub001/apperrors"
	"github.com/dat564/e-commerce-sub001/kafka"
	"github.com/dat564/e-commerce-sub001/models"
	"github.com/dat564/e-commerce-sub001/repository"
)

// CreateOrderRequest is the checkout payload. Shipping fee, discount, and
// total come from the client-side quote; the server recomputes the subtotal
// from live product prices and rejects a total that breaks the invariant.
type CreateOrderRequest struct {
	Items []struct {
		ProductID string `json:"product_id" binding:"required"`
		Quantity  int    `json:"quantity" binding:"required,min=1"`
	} `json:"items" binding:"required,dive"`
	Address       models.ShippingAddress `json:"address" binding:"required"`
	PaymentMethod models.PaymentMethod   `json:"payment_method" binding:"required"`
	ShippingFee   int64                  `json:"shipping_fee" binding:"gte=0"`
	Discount      int64                  `json:"discount" binding:"gte=0"`
	Total         int64                  `json:"total" binding:"gte=0"`
}

// UpdateStatusRequest is the admin transition payload.
type UpdateStatusRequest struct {
	Status         models.OrderStatus `json:"status" binding:"required"`
	CancelReason   string             `json:"cancel_reason,omitempty"`
	TrackingNumber string             `json:"tracking_number,omitempty"`
}

type OrderListResponse struct {
	Orders []models.Order `json:"orders"`
	Meta   MetaData       `json:"meta"`
}

type MetaData struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasMore    bool  `json:"has_more"`
}

// OrderService owns the order state machine: creation, admin transitions,
// payment confirmation, and the expiry sweep. All coordination is pushed to
// the repository's conditional writes; the service holds no locks.
type OrderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	producer    kafka.ProducerAPI
	orderExpiry time.Duration
	now         func() time.Time
	log         *zap.Logger
}

func NewOrderService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository, producer kafka.ProducerAPI, orderExpiry time.Duration, log *zap.Logger) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		producer:    producer,
		orderExpiry: orderExpiry,
		now:         time.Now,
		log:         log,
	}
}

// Create builds an order from the checkout request. Line items snapshot the
// product name and price at creation time; they are never re-read from the
// catalog afterwards. Order-number uniqueness is enforced by the storage
// index, with exactly one in-process retry on collision.
func (s *OrderService) Create(ctx context.Context, userID primitive.ObjectID, req *CreateOrderRequest) (*models.Order, error) {
	if !req.PaymentMethod.Valid() {
		return nil, apperrors.ErrValidation
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	var subtotal int64
	for _, line := range req.Items {
		productID, err := primitive.ObjectIDFromHex(line.ProductID)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrValidation, fmt.Errorf("invalid product id %q", line.ProductID))
		}
		product, err := s.productRepo.FindByID(ctx, productID)
		if err != nil {
			if errors.Is(err, repository.ErrNoDocument) {
				return nil, apperrors.ErrNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, err)
		}
		if !product.IsActive {
			return nil, apperrors.ErrNotFound
		}
		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  line.Quantity,
			Price:     product.Price,
		})
		subtotal += product.Price * int64(line.Quantity)
	}

	now := s.now().UTC()
	order := &models.Order{
		UserID:        userID,
		Items:         items,
		Address:       req.Address,
		PaymentMethod: req.PaymentMethod,
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
		Subtotal:      subtotal,
		ShippingFee:   req.ShippingFee,
		Discount:      req.Discount,
		Total:         req.Total,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := order.ValidateItems(); err != nil {
		return nil, err
	}
	if err := order.ValidateTotals(); err != nil {
		return nil, err
	}

	// one retry on an order-number collision, then surface it
	for attempt := 0; attempt < 2; attempt++ {
		order.ID = primitive.NilObjectID
		order.OrderNumber = generateOrderNumber(now)
		err := s.orderRepo.Create(ctx, order)
		if err == nil {
			return order, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, err)
		}
		s.log.Warn("order number collision, retrying",
			zap.String("order_number", order.OrderNumber),
			zap.Int("attempt", attempt+1),
		)
	}
	return nil, apperrors.ErrOrderNumberCollision
}

// UpdateStatus applies an admin transition: one step forward, or cancelled
// from any non-terminal state. The write is filtered on the status the
// decision was made against, so a concurrent sweep or admin losing the race
// surfaces as an invalid transition rather than a partial overwrite.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID primitive.ObjectID, req *UpdateStatusRequest) (*models.Order, error) {
	if !req.Status.Valid() {
		return nil, apperrors.ErrInvalidTransition
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNoDocument) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, err)
	}

	if !order.Status.CanTransitionTo(req.Status) {
		return nil, apperrors.Wrap(apperrors.ErrInvalidTransition,
			fmt.Errorf("%s -> %s", order.Status, req.Status))
	}

	now := s.now().UTC()
	set := bson.M{"status": req.Status}
	switch req.Status {
	case models.OrderStatusCancelled:
		set["cancelled_at"] = now
		if req.CancelReason != "" {
			set["cancel_reason"] = req.CancelReason
		}
	case models.OrderStatusDelivered:
		set["delivered_at"] = now
	case models.OrderStatusShipped:
		if req.TrackingNumber != "" {
			set["tracking_number"] = req.TrackingNumber
		}
	}

	matched, err := s.orderRepo.UpdateIfStatus(ctx, orderID, order.Status, set)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, err)
	}
	if !matched {
		// a concurrent writer moved the order first
		return nil, apperrors.ErrInvalidTransition
	}

	updated, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, err)
	}

	s.publishEvent(ctx, updated)
	return updated, nil
}

// ConfirmPayment consumes an external payment confirmation. It moves
// payment_status to paid without advancing status. Confirmations are
// idempotent: a repeat for an already-paid or already-swept order is a
// no-op.
func (s *OrderService) ConfirmPayment(ctx context.Context, orderNumber string) error {
	matched, err := s.orderRepo.MarkPaid(ctx, orderNumber, s.now().UTC())
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorageUnavailable, err)
	}
	if !matched {
		// distinguish an unknown order from a repeat confirmation
		order, ferr := s.orderRepo.FindByOrderNumber(ctx, orderNumber)
		if ferr != nil {
			if errors.Is(ferr, repository.ErrNoDocument) {
				return apperrors.ErrNotFound
			}
			return apperrors.Wrap(apperrors.ErrStorageUnavailable, ferr)
		}
		s.log.Info("payment confirmation ignored, order no longer pending",
			zap.String("order_number", orderNumber),
			zap.String("payment_status", string(order.PaymentStatus)),
		)
	}
	return nil
}

// SweepExpired cancels every order still pending on both fields whose
// creation time is older than the expiry window as of now. Selection and
// mutation run as a single batch write, so the sweep is idempotent and safe
// against concurrent payment confirmations.
func (s *OrderService) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	if now.IsZero() {
		now = s.now()
	}
	now = now.UTC()
	cutoff := now.Add(-s.orderExpiry)

	count, err := s.orderRepo.SweepExpired(ctx, cutoff, now)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrStorageUnavailable, err)
	}
	if count > 0 {
		s.log.Info("expired orders cancelled", zap.Int64("count", count))
	}
	return count, nil
}

// GetUserOrders returns paginated orders owned by a user.
func (s *OrderService) GetUserOrders(ctx context.Context, userID primitive.ObjectID, page, limit int) (*OrderListResponse, error) {
	filter := repository.OrderFilter{UserID: &userID}
	return s.list(ctx, filter, page, limit)
}

// GetOrderForUser returns a single order if it belongs to the user.
func (s *OrderService) GetOrderForUser(ctx context.Context, orderID, userID primitive.ObjectID) (*models.Order, error) {
	order, err := s.orderRepo.FindByIDAndUserID(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNoDocument) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, err)
	}
	return order, nil
}

// ListOrders is the admin listing with search and equality filters.
func (s *OrderService) ListOrders(ctx context.Context, filter repository.OrderFilter, page, limit int) (*OrderListResponse, error) {
	return s.list(ctx, filter, page, limit)
}

func (s *OrderService) list(ctx context.Context, filter repository.OrderFilter, page, limit int) (*OrderListResponse, error) {
	orders, total, err := s.orderRepo.FindAll(ctx, filter, page, limit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return &OrderListResponse{
		Orders: orders,
		Meta: MetaData{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: calculateTotalPages(total, limit),
			HasMore:    total > int64(page*limit),
		},
	}, nil
}

// publishEvent emits a status-change event; delivery is best-effort and
// never fails the request.
func (s *OrderService) publishEvent(ctx context.Context, order *models.Order) {
	if s.producer == nil {
		return
	}
	evt := kafka.OrderEvent{
		OrderNumber:   order.OrderNumber,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		OccurredAt:    s.now().UTC(),
	}
	if err := s.producer.PublishOrderEvent(ctx, evt); err != nil {
		s.log.Warn("order event publish failed", zap.String("order_number", order.OrderNumber), zap.Error(err))
	}
}

// generateOrderNumber derives a human-readable order number from the
// creation timestamp plus a random suffix. Collisions are possible under
// concurrent load; the caller retries once against the unique index.
func generateOrderNumber(t time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("ORD%s-%s", t.Format("20060102150405"), suffix)
}

func calculateTotalPages(total int64, limit int) int64 {
	if limit == 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
