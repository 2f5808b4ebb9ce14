// Package api defines the JSON envelope shared by every endpoint.
package api

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// FieldError describes one invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Response is the body of every API reply.
type Response struct {
	Status  string       `json:"status"`
	Message string       `json:"message,omitempty"`
	Data    any          `json:"data,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// Success builds a success envelope. data may be nil.
func Success(message string, data any) Response {
	return Response{Status: StatusSuccess, Message: message, Data: data}
}

// Error builds an error envelope with a message.
func Error(message string) Response {
	return Response{Status: StatusError, Message: message}
}

// ValidationFailed builds an error envelope listing invalid fields.
func ValidationFailed(fields []FieldError) Response {
	return Response{Status: StatusError, Message: "Validation failed", Errors: fields}
}
