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

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	FindAll(ctx context.Context) ([]models.Category, error)
	Update(ctx context.Context, id primitive.ObjectID, updates bson.M) error
	Deactivate(ctx context.Context, id primitive.ObjectID) error
}

type MongoCategoryRepository struct {
	collection *mongo.Collection
}

func NewCategoryRepository(db *mongo.Database) *MongoCategoryRepository {
	return &MongoCategoryRepository{collection: db.Collection("categories")}
}

func (r *MongoCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	now := time.Now().UTC()
	category.CreatedAt = now
	category.UpdatedAt = now
	res, err := r.collection.InsertOne(ctx, category)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		category.ID = oid
	}
	return nil
}

func (r *MongoCategoryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	var category models.Category
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&category)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *MongoCategoryRepository) FindAll(ctx context.Context) ([]models.Category, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"is_active": true}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var categories []models.Category
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *MongoCategoryRepository) Update(ctx context.Context, id primitive.ObjectID, updates bson.M) error {
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

func (r *MongoCategoryRepository) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	return r.Update(ctx, id, bson.M{"is_active": false})
}
