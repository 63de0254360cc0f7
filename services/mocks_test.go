package services_test

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/dat564/e-commerce-sub001/models"
	"github.com/dat564/e-commerce-sub001/repository"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

// mockOrderRepository is an in-memory implementation of OrderRepository. It
// mirrors the store's conditional-write semantics: updates apply only while
// their filter still matches, under a single lock standing in for the
// store's per-write atomicity.
type mockOrderRepository struct {
	mu     sync.Mutex
	orders map[primitive.ObjectID]*models.Order
	byNum  map[string]primitive.ObjectID

	failCreates int // inject this many duplicate-key errors
}

func newMockOrderRepository() *mockOrderRepository {
	return &mockOrderRepository{
		orders: make(map[primitive.ObjectID]*models.Order),
		byNum:  make(map[string]primitive.ObjectID),
	}
}

// duplicateKeyError mimics the server-side unique index violation shape that
// mongo.IsDuplicateKeyError recognizes.
func duplicateKeyError() error {
	return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
}

func (m *mockOrderRepository) Create(_ context.Context, order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failCreates > 0 {
		m.failCreates--
		return duplicateKeyError()
	}
	if _, exists := m.byNum[order.OrderNumber]; exists {
		return duplicateKeyError()
	}

	order.ID = primitive.NewObjectID()
	cp := *order
	m.orders[order.ID] = &cp
	m.byNum[order.OrderNumber] = order.ID
	return nil
}

func (m *mockOrderRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrNoDocument
	}
	cp := *order
	return &cp, nil
}

func (m *mockOrderRepository) FindByIDAndUserID(_ context.Context, id, userID primitive.ObjectID) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[id]
	if !ok || order.UserID != userID {
		return nil, repository.ErrNoDocument
	}
	cp := *order
	return &cp, nil
}

func (m *mockOrderRepository) FindByOrderNumber(_ context.Context, orderNumber string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byNum[orderNumber]
	if !ok {
		return nil, repository.ErrNoDocument
	}
	cp := *m.orders[id]
	return &cp, nil
}

func (m *mockOrderRepository) FindAll(_ context.Context, filter repository.OrderFilter, page, limit int) ([]models.Order, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []models.Order
	for _, order := range m.orders {
		if filter.UserID != nil && order.UserID != *filter.UserID {
			continue
		}
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		if filter.PaymentStatus != "" && order.PaymentStatus != filter.PaymentStatus {
			continue
		}
		matched = append(matched, *order)
	}

	total := int64(len(matched))
	start := (page - 1) * limit
	if start >= len(matched) {
		return []models.Order{}, total, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (m *mockOrderRepository) UpdateIfStatus(_ context.Context, id primitive.ObjectID, from models.OrderStatus, set bson.M) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[id]
	if !ok || order.Status != from {
		return false, nil
	}
	applySet(order, set)
	return true, nil
}

func (m *mockOrderRepository) MarkPaid(_ context.Context, orderNumber string, paidAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byNum[orderNumber]
	if !ok {
		return false, nil
	}
	order := m.orders[id]
	if order.PaymentStatus != models.PaymentStatusPending {
		return false, nil
	}
	order.PaymentStatus = models.PaymentStatusPaid
	order.PaidAt = &paidAt
	return true, nil
}

func (m *mockOrderRepository) SweepExpired(_ context.Context, cutoff, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var count int64
	for _, order := range m.orders {
		if order.Status == models.OrderStatusPending &&
			order.PaymentStatus == models.PaymentStatusPending &&
			order.CreatedAt.Before(cutoff) {
			order.Status = models.OrderStatusCancelled
			order.PaymentStatus = models.PaymentStatusFailed
			cancelledAt := now
			order.CancelledAt = &cancelledAt
			order.CancelReason = "payment window expired"
			count++
		}
	}
	return count, nil
}

func applySet(order *models.Order, set bson.M) {
	for k, v := range set {
		switch k {
		case "status":
			order.Status = v.(models.OrderStatus)
		case "payment_status":
			order.PaymentStatus = v.(models.PaymentStatus)
		case "cancelled_at":
			t := v.(time.Time)
			order.CancelledAt = &t
		case "delivered_at":
			t := v.(time.Time)
			order.DeliveredAt = &t
		case "cancel_reason":
			order.CancelReason = v.(string)
		case "tracking_number":
			order.TrackingNumber = v.(string)
		case "updated_at":
			order.UpdatedAt = v.(time.Time)
		}
	}
}

// mockProductRepository backs order creation with a fixed catalog.
type mockProductRepository struct {
	products map[primitive.ObjectID]*models.Product
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{products: make(map[primitive.ObjectID]*models.Product)}
}

func (m *mockProductRepository) add(name string, price int64) primitive.ObjectID {
	id := primitive.NewObjectID()
	m.products[id] = &models.Product{ID: id, Name: name, Price: price, IsActive: true}
	return id
}

func (m *mockProductRepository) Create(_ context.Context, product *models.Product) error {
	product.ID = primitive.NewObjectID()
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	product, ok := m.products[id]
	if !ok {
		return nil, repository.ErrNoDocument
	}
	return product, nil
}

func (m *mockProductRepository) FindAll(_ context.Context, _ repository.ProductFilter, _, _ int) ([]models.Product, int64, error) {
	var out []models.Product
	for _, p := range m.products {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (m *mockProductRepository) Update(_ context.Context, id primitive.ObjectID, _ bson.M) error {
	if _, ok := m.products[id]; !ok {
		return repository.ErrNoDocument
	}
	return nil
}

func (m *mockProductRepository) Deactivate(_ context.Context, id primitive.ObjectID) error {
	p, ok := m.products[id]
	if !ok {
		return repository.ErrNoDocument
	}
	p.IsActive = false
	return nil
}

// mockUserRepository is an in-memory implementation of UserRepository.
type mockUserRepository struct {
	mu      sync.Mutex
	users   map[primitive.ObjectID]*models.User
	byEmail map[string]primitive.ObjectID
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users:   make(map[primitive.ObjectID]*models.User),
		byEmail: make(map[string]primitive.ObjectID),
	}
}

func (m *mockUserRepository) Create(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byEmail[user.Email]; exists {
		return duplicateKeyError()
	}
	user.ID = primitive.NewObjectID()
	cp := *user
	m.users[user.ID] = &cp
	m.byEmail[user.Email] = user.ID
	return nil
}

func (m *mockUserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byEmail[email]
	if !ok {
		return nil, repository.ErrNoDocument
	}
	cp := *m.users[id]
	return &cp, nil
}

func (m *mockUserRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNoDocument
	}
	cp := *user
	return &cp, nil
}

func (m *mockUserRepository) Update(_ context.Context, id primitive.ObjectID, updates bson.M) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return repository.ErrNoDocument
	}
	for k, v := range updates {
		switch k {
		case "is_active":
			user.IsActive = v.(bool)
		case "name":
			user.Name = v.(string)
		case "phone":
			user.Phone = v.(string)
		case "address":
			user.Address = v.(string)
		}
	}
	return nil
}

func (m *mockUserRepository) FindAll(_ context.Context, page, limit int) ([]models.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.User
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}
