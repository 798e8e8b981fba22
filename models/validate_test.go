package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/civicwatch/crime-report-api/models"
)

func validCreateCaseRequest() models.CreateCaseRequest {
	return models.CreateCaseRequest{
		Title:       "Bicycle stolen from garage",
		Description: "My bicycle was stolen from my garage overnight, the lock was cut.",
		CrimeType:   "Theft",
		Priority:    models.PriorityMedium,
		Location: models.CaseLocation{
			Latitude:  51.51,
			Longitude: -0.12,
			Address:   "12 Example Street",
		},
	}
}

func TestValidateCreateCaseRequest(t *testing.T) {
	assert.Nil(t, models.Validate(validCreateCaseRequest()))
}

func TestValidateRejectsUnknownCrimeType(t *testing.T) {
	req := validCreateCaseRequest()
	req.CrimeType = "Jaywalking"

	violations := models.Validate(req)
	assert.Len(t, violations, 1)
	assert.Equal(t, "CrimeType", violations[0].Field)
	assert.Contains(t, violations[0].Message, "must be one of")
}

func TestValidateRejectsShortTitle(t *testing.T) {
	req := validCreateCaseRequest()
	req.Title = "Hi"

	violations := models.Validate(req)
	assert.Len(t, violations, 1)
	assert.Equal(t, "Title", violations[0].Field)
	assert.Equal(t, "must be at least 5", violations[0].Message)
}

func TestValidateRejectsOutOfRangeCoordinates(t *testing.T) {
	req := validCreateCaseRequest()
	req.Location.Latitude = 91

	violations := models.Validate(req)
	assert.Len(t, violations, 1)
	assert.Equal(t, "Location.Latitude", violations[0].Field)
}

func TestValidateCollectsMultipleViolations(t *testing.T) {
	req := validCreateCaseRequest()
	req.Title = ""
	req.Priority = "Urgent"

	violations := models.Validate(req)
	assert.Len(t, violations, 2)
}

func TestValidateUpdateStatusRequest(t *testing.T) {
	assert.Nil(t, models.Validate(models.UpdateStatusRequest{Status: models.StatusAssigned}))

	violations := models.Validate(models.UpdateStatusRequest{Status: "In Progress"})
	assert.Len(t, violations, 1)
	assert.Equal(t, "is not a recognized case status", violations[0].Message)
}

func TestValidateAssignStaffRequest(t *testing.T) {
	assert.Nil(t, models.Validate(models.AssignStaffRequest{StaffID: "5fc51f58c72ff10004dca382"}))

	violations := models.Validate(models.AssignStaffRequest{StaffID: "not-an-id"})
	assert.NotEmpty(t, violations)
	assert.Equal(t, "StaffID", violations[0].Field)
}

func TestValidateRegisterUserRequest(t *testing.T) {
	violations := models.Validate(models.RegisterUserRequest{
		Name:     "Jo",
		Email:    "not-an-email",
		Password: "short",
	})
	assert.Len(t, violations, 2)
}

func TestValidateCreateInvestigationRequest(t *testing.T) {
	req := models.CreateInvestigationRequest{
		Type:  "Interview",
		Notes: "Interviewed the shop owner about the break-in.",
	}
	assert.Nil(t, models.Validate(req))

	req.Type = "Guesswork"
	violations := models.Validate(req)
	assert.Len(t, violations, 1)
	assert.Equal(t, "Type", violations[0].Field)
}
