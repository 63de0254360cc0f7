package controllers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dat564/e-commerce-sub001/controllers"
	"github.com/dat564/e-commerce-sub001/models"
	"github.com/dat564/e-commerce-sub001/repository"
	"github.com/dat564/e-commerce-sub001/services"
)

// sweepOnlyOrderRepo satisfies repository.OrderRepository for the endpoint
// contract test; only SweepExpired matters here.
type sweepOnlyOrderRepo struct {
	count int64
	err   error
}

func (r *sweepOnlyOrderRepo) Create(_ context.Context, _ *models.Order) error { return nil }

func (r *sweepOnlyOrderRepo) FindByID(_ context.Context, _ primitive.ObjectID) (*models.Order, error) {
	return nil, repository.ErrNoDocument
}

func (r *sweepOnlyOrderRepo) FindByIDAndUserID(_ context.Context, _, _ primitive.ObjectID) (*models.Order, error) {
	return nil, repository.ErrNoDocument
}

func (r *sweepOnlyOrderRepo) FindByOrderNumber(_ context.Context, _ string) (*models.Order, error) {
	return nil, repository.ErrNoDocument
}

func (r *sweepOnlyOrderRepo) FindAll(_ context.Context, _ repository.OrderFilter, _, _ int) ([]models.Order, int64, error) {
	return nil, 0, nil
}

func (r *sweepOnlyOrderRepo) UpdateIfStatus(_ context.Context, _ primitive.ObjectID, _ models.OrderStatus, _ bson.M) (bool, error) {
	return false, nil
}

func (r *sweepOnlyOrderRepo) MarkPaid(_ context.Context, _ string, _ time.Time) (bool, error) {
	return false, nil
}

func (r *sweepOnlyOrderRepo) SweepExpired(_ context.Context, _, _ time.Time) (int64, error) {
	return r.count, r.err
}

func sweepRouter(repo repository.OrderRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()
	orderService := services.NewOrderService(repo, nil, nil, 10*time.Minute, log)
	sc := controllers.NewSweepController(orderService, log)

	r := gin.New()
	r.GET("/api/cron/expire-orders", sc.ExpireOrders)
	return r
}

func TestExpireOrders_ReportsCount(t *testing.T) {
	r := sweepRouter(&sweepOnlyOrderRepo{count: 3})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/cron/expire-orders", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success": true, "count": 3}`, w.Body.String())
}

func TestExpireOrders_NothingToCancel(t *testing.T) {
	r := sweepRouter(&sweepOnlyOrderRepo{count: 0})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/cron/expire-orders", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success": true, "count": 0}`, w.Body.String())
}

func TestExpireOrders_StorageFailure(t *testing.T) {
	r := sweepRouter(&sweepOnlyOrderRepo{err: context.DeadlineExceeded})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/cron/expire-orders", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success": false, "message": "sweep failed"}`, w.Body.String())
}
