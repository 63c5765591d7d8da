package response

import (
	"courtside/shared/constant"
	"courtside/shared/failure"
	"courtside/shared/logger"
	"encoding/json"
	"errors"
	"net/http"
)

// Envelope wraps every payload the API writes.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
	Data    *T     `json:"data,omitempty"`
}

type Error = Envelope[any]

type Message = Envelope[any]

// WithMessage sends a response with a simple text message
func WithMessage(writer http.ResponseWriter, code int, message string) {
	write(writer, code, Message{Success: isSuccess(code), Code: code, Message: message})
}

// WithJSON sends a response containing a JSON object
func WithJSON[T any](writer http.ResponseWriter, code int, payload T) {
	write(writer, code, Envelope[T]{Success: isSuccess(code), Code: code, Data: &payload})
}

// WithError sends a response with an error message. Errors that are not a failure keep their detail out of the body.
func WithError(writer http.ResponseWriter, err error) {
	code := failure.GetCode(err)

	message := constant.ResponseErrorUnexpected

	var fail *failure.Failure
	if errors.As(err, &fail) {
		message = fail.Message
	}

	write(writer, code, Error{Code: code, Message: message})
}

// WithRequestLimitExceeded sends a default response for when the request limit is exceeded
func WithRequestLimitExceeded(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusTooManyRequests, constant.ResponseErrorRequestLimitExceeded)
}

// WithPreparingShutdown sends a default response for when the server is preparing to shut down
func WithPreparingShutdown(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusServiceUnavailable, constant.ResponseErrorPrepareShutdown)
}

// WithUnhealthy sends a default response for when the server is unhealthy
func WithUnhealthy(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusServiceUnavailable, constant.ResponseErrorUnhealthy)
}

func isSuccess(code int) bool {
	return code >= http.StatusOK && code < http.StatusBadRequest
}

func write(writer http.ResponseWriter, code int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		logger.ErrorWithStack(err)

		return
	}

	writer.Header().Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)
	writer.WriteHeader(code)

	if _, err = writer.Write(body); err != nil {
		logger.ErrorWithStack(err)
	}
}
