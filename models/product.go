package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Slug        string             `json:"slug" bson:"slug"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Brand       string             `json:"brand,omitempty" bson:"brand,omitempty"`
	CategoryID  primitive.ObjectID `json:"category_id" bson:"category_id"`
	Price       int64              `json:"price" bson:"price"`
	Stock       int                `json:"stock" bson:"stock"`
	Images      []string           `json:"images" bson:"images"`
	IsActive    bool               `json:"is_active" bson:"is_active"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}
