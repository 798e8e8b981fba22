package config

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/civicwatch/crime-report-api/models"
)

// Config holds the project config values
type Config struct {
	URL            string
	DatabaseName   string
	BaseURL        string
	Port           string
	JWTSecret      string
	SendgridAPIKey string
	AlertFromEmail string
	SLASweepSpec   string
}

// New sets up all config related services
func New() *Config {

	// load .env when present, real env vars win
	_ = godotenv.Load()

	//setup zap logger and replace default logger
	logger := zap.NewExample()
	defer logger.Sync()
	_ = zap.ReplaceGlobals(logger)

	return &Config{
		URL:            os.Getenv("DB_URI"),
		DatabaseName:   os.Getenv("DB_NAME"),
		BaseURL:        os.Getenv("BASE_URL"),
		Port:           os.Getenv("PORT"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		SendgridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		AlertFromEmail: os.Getenv("ALERT_FROM_EMAIL"),
		SLASweepSpec:   os.Getenv("SLA_SWEEP_SPEC"),
	}
}

// ErrorStatus logs the error and writes a structured error body with the
// given message and status code.
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().With(err).Error(message)
	w.WriteHeader(httpStatusCode)
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	b, _ := json.Marshal(models.ErrorMessageResponse{Response: models.MessageError{Message: message, Error: errMsg}})
	w.Write(b)
}

// ValidationErrorStatus writes a 400 with the per-field violations.
func ValidationErrorStatus(w http.ResponseWriter, violations []models.FieldViolation) {
	zap.S().Warnw("request validation failed", "violations", len(violations))
	w.WriteHeader(http.StatusBadRequest)
	b, _ := json.Marshal(models.ValidationErrorResponse{Message: "validation failed", Violations: violations})
	w.Write(b)
}
