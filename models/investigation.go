package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// InvestigationTypes is the fixed set of field-report types.
var InvestigationTypes = []string{
	"Interview",
	"Site Visit",
	"Forensic Analysis",
	"Surveillance",
	"Background Check",
	"Other",
}

// Investigation is a staff field report tied to a case by case number.
type Investigation struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	CaseNumber      string             `bson:"caseNumber" json:"caseNumber"`
	Author          string             `bson:"author" json:"author"`
	Type            string             `bson:"type" json:"type"`
	Notes           string             `bson:"notes" json:"notes"`
	HoursSpent      float64            `bson:"hoursSpent" json:"hoursSpent"`
	Witnesses       []string           `bson:"witnesses,omitempty" json:"witnesses,omitempty"`
	Suspects        []string           `bson:"suspects,omitempty" json:"suspects,omitempty"`
	NextActions     []string           `bson:"nextActions,omitempty" json:"nextActions,omitempty"`
	LocationMarkers []CaseLocation     `bson:"locationMarkers,omitempty" json:"locationMarkers,omitempty"`
	Attachments     []Evidence         `bson:"attachments,omitempty" json:"attachments,omitempty"`
	Status          CaseStatus         `bson:"statusUpdate,omitempty" json:"statusUpdate,omitempty"`
	CreatedAt       primitive.DateTime `bson:"createdAt" json:"createdAt"`
}

// InvestigationAttachment carries inline attachment bytes on a create request.
type InvestigationAttachment struct {
	OriginalName string `json:"originalName" validate:"required,max=255"`
	MediaType    string `json:"mediaType" validate:"required,max=100"`
	Data         []byte `json:"data" validate:"required"`
	Description  string `json:"description" validate:"max=500"`
}

// CreateInvestigationRequest is the payload for adding a field report.
// A non-empty Status triggers a transition on the parent case.
type CreateInvestigationRequest struct {
	Type            string                    `json:"type" validate:"required,investigationtype"`
	Notes           string                    `json:"notes" validate:"required,min=5,max=5000"`
	HoursSpent      float64                   `json:"hoursSpent" validate:"gte=0,lte=1000"`
	Witnesses       []string                  `json:"witnesses" validate:"max=50,dive,max=200"`
	Suspects        []string                  `json:"suspects" validate:"max=50,dive,max=200"`
	NextActions     []string                  `json:"nextActions" validate:"max=50,dive,max=500"`
	LocationMarkers []CaseLocation            `json:"locationMarkers" validate:"max=20"`
	Attachments     []InvestigationAttachment `json:"attachments" validate:"max=10"`
	Status          CaseStatus                `json:"statusUpdate" validate:"omitempty,casestatus"`
}
