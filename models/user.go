package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID       primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Email    string             `json:"email" bson:"email"`
	Password string             `json:"-" bson:"password"`
	Name     string             `json:"name" bson:"name"`
	Phone    string             `json:"phone,omitempty" bson:"phone,omitempty"`
	Address  string             `json:"address,omitempty" bson:"address,omitempty"`
	Role     Role               `json:"role" bson:"role"`
	IsActive bool               `json:"is_active" bson:"is_active"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}
