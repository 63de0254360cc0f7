package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dat564/e-commerce-sub001/models"
)

// OrderFilter holds the admin listing filters.
type OrderFilter struct {
	Search        string
	Status        models.OrderStatus
	PaymentStatus models.PaymentStatus
	UserID        *primitive.ObjectID
}

// OrderRepository defines the interface for order data access. Every
// mutation is a single conditional write; coordination between the sweep,
// payment callbacks, and admin transitions happens entirely through the
// filters on these updates.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	FindByIDAndUserID(ctx context.Context, id, userID primitive.ObjectID) (*models.Order, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	FindAll(ctx context.Context, filter OrderFilter, page, limit int) ([]models.Order, int64, error)
	UpdateIfStatus(ctx context.Context, id primitive.ObjectID, from models.OrderStatus, set bson.M) (bool, error)
	MarkPaid(ctx context.Context, orderNumber string, paidAt time.Time) (bool, error)
	SweepExpired(ctx context.Context, cutoff, now time.Time) (int64, error)
}

type MongoOrderRepository struct {
	collection *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{collection: db.Collection("orders")}
}

func (r *MongoOrderRepository) Create(ctx context.Context, order *models.Order) error {
	res, err := r.collection.InsertOne(ctx, order)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		order.ID = oid
	}
	return nil
}

func (r *MongoOrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *MongoOrderRepository) FindByIDAndUserID(ctx context.Context, id, userID primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *MongoOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	var order models.Order
	err := r.collection.FindOne(ctx, bson.M{"order_number": orderNumber}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *MongoOrderRepository) FindAll(ctx context.Context, filter OrderFilter, page, limit int) ([]models.Order, int64, error) {
	query := bson.M{}
	if filter.UserID != nil {
		query["user_id"] = *filter.UserID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.PaymentStatus != "" {
		query["payment_status"] = filter.PaymentStatus
	}
	if filter.Search != "" {
		query["order_number"] = bson.M{"$regex": primitive.Regex{Pattern: filter.Search, Options: "i"}}
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	findOptions := options.Find().
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// UpdateIfStatus applies set only if the order is currently in the given
// status. Returns false when the filter no longer matches, which means a
// concurrent writer (sweep, payment callback, another admin) got there
// first.
func (r *MongoOrderRepository) UpdateIfStatus(ctx context.Context, id primitive.ObjectID, from models.OrderStatus, set bson.M) (bool, error) {
	set["updated_at"] = time.Now().UTC()
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": set},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

// MarkPaid moves payment_status from pending to paid. The pending filter
// makes the write a no-op when the order was already paid or swept.
func (r *MongoOrderRepository) MarkPaid(ctx context.Context, orderNumber string, paidAt time.Time) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"order_number": orderNumber, "payment_status": models.PaymentStatusPending},
		bson.M{"$set": bson.M{
			"payment_status": models.PaymentStatusPaid,
			"paid_at":        paidAt,
			"updated_at":     time.Now().UTC(),
		}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

// SweepExpired cancels every order still pending on both status and payment
// whose creation timestamp is older than cutoff. Predicate and mutation run
// as one UpdateMany, so an order paid between selection and application
// simply stops matching. Running the sweep again cannot re-match anything it
// already cancelled.
func (r *MongoOrderRepository) SweepExpired(ctx context.Context, cutoff, now time.Time) (int64, error) {
	res, err := r.collection.UpdateMany(ctx,
		bson.M{
			"status":         models.OrderStatusPending,
			"payment_status": models.PaymentStatusPending,
			"created_at":     bson.M{"$lt": cutoff},
		},
		bson.M{"$set": bson.M{
			"status":         models.OrderStatusCancelled,
			"payment_status": models.PaymentStatusFailed,
			"cancelled_at":   now,
			"cancel_reason":  "payment window expired",
			"updated_at":     now,
		}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
