package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// User roles
const (
	RoleCitizen    = "citizen"
	RoleStaff      = "staff"
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor"
)

// User account statuses
const (
	UserActive   = "active"
	UserInactive = "inactive"
)

// User represents a citizen, staff investigator, supervisor or admin account.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name       string             `bson:"name" json:"name"`
	Email      string             `bson:"email" json:"email"`
	Password   string             `bson:"password" json:"-"`
	Role       string             `bson:"role" json:"role"`
	Status     string             `bson:"status" json:"status"`
	Department string             `bson:"department,omitempty" json:"department,omitempty"`
	CreatedAt  primitive.DateTime `bson:"createdAt" json:"createdAt"`
	UpdatedAt  primitive.DateTime `bson:"updatedAt" json:"updatedAt"`
}

// RegisterUserRequest is the payload for citizen self-registration.
type RegisterUserRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// CreateStaffRequest is the payload for an admin creating a staff account.
type CreateStaffRequest struct {
	Name       string `json:"name" validate:"required,min=2,max=100"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8,max=72"`
	Department string `json:"department" validate:"required,min=2,max=100"`
}
