package models

// ErrorMessageResponse returns the error message response struct
type ErrorMessageResponse struct {
	Response MessageError
}

// MessageError contains the inner details for the error message response
type MessageError struct {
	Message string
	Error   string
}

// FieldViolation describes one invalid request field.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrorResponse is the body returned for structurally invalid
// input, listing every violated field.
type ValidationErrorResponse struct {
	Message    string           `json:"message"`
	Violations []FieldViolation `json:"violations"`
}
