package config_test

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/civicwatch/crime-report-api/config"
	"github.com/civicwatch/crime-report-api/models"
)

func TestNew(t *testing.T) {
	t.Setenv("DB_URI", "mongodb://127.0.0.1:27017")
	t.Setenv("DB_NAME", "crime-report-test")
	t.Setenv("PORT", "8080")
	t.Setenv("SLA_SWEEP_SPEC", "@hourly")

	conf := config.New()

	assert.Equal(t, "mongodb://127.0.0.1:27017", conf.URL)
	assert.Equal(t, "crime-report-test", conf.DatabaseName)
	assert.Equal(t, "8080", conf.Port)
	assert.Equal(t, "@hourly", conf.SLASweepSpec)
}

func TestErrorStatus(t *testing.T) {
	rr := httptest.NewRecorder()

	config.ErrorStatus("failed to get case by ID", 404, rr, errors.New("mongo: no documents in result"))

	assert.Equal(t, 404, rr.Code)

	var body models.ErrorMessageResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "failed to get case by ID", body.Response.Message)
	assert.Equal(t, "mongo: no documents in result", body.Response.Error)
}

func TestValidationErrorStatus(t *testing.T) {
	rr := httptest.NewRecorder()

	config.ValidationErrorStatus(rr, []models.FieldViolation{
		{Field: "Title", Message: "Title must be at least 5 characters in length"},
	})

	assert.Equal(t, 400, rr.Code)

	var body models.ValidationErrorResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "validation failed", body.Message)
	assert.Len(t, body.Violations, 1)
	assert.Equal(t, "Title", body.Violations[0].Field)
}
