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

// ProductFilter holds catalog listing filters.
type ProductFilter struct {
	Search     string
	Brand      string
	CategoryID *primitive.ObjectID
	ActiveOnly bool
}

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindAll(ctx context.Context, filter ProductFilter, page, limit int) ([]models.Product, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, updates bson.M) error
	Deactivate(ctx context.Context, id primitive.ObjectID) error
}

type MongoProductRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{collection: db.Collection("products")}
}

func (r *MongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now
	res, err := r.collection.InsertOne(ctx, product)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		product.ID = oid
	}
	return nil
}

func (r *MongoProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *MongoProductRepository) FindAll(ctx context.Context, filter ProductFilter, page, limit int) ([]models.Product, int64, error) {
	query := bson.M{}
	if filter.ActiveOnly {
		query["is_active"] = true
	}
	if filter.Brand != "" {
		query["brand"] = filter.Brand
	}
	if filter.CategoryID != nil {
		query["category_id"] = *filter.CategoryID
	}
	if filter.Search != "" {
		query["name"] = bson.M{"$regex": primitive.Regex{Pattern: filter.Search, Options: "i"}}
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

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *MongoProductRepository) Update(ctx context.Context, id primitive.ObjectID, updates bson.M) error {
	updates["updated_at"] = time.Now().UTC()
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": updates})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNoDocument
	}
	return nil
}

// Deactivate performs a soft delete.
func (r *MongoProductRepository) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	return r.Update(ctx, id, bson.M{"is_active": false})
}
