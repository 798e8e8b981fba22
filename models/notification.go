package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Notification kinds
const (
	NotificationAssignment   = "assignment"
	NotificationStatusChange = "status_change"
	NotificationSLABreach    = "sla_breach"
)

// Notification is a persisted per-user event record. New notifications are
// also pushed over websocket to connected users, but the collection is the
// system of record.
type Notification struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID     string             `bson:"userId" json:"userId"`
	CaseNumber string             `bson:"caseNumber,omitempty" json:"caseNumber,omitempty"`
	Type       string             `bson:"type" json:"type"`
	Message    string             `bson:"message" json:"message"`
	Read       bool               `bson:"read" json:"read"`
	CreatedAt  primitive.DateTime `bson:"createdAt" json:"createdAt"`
}
