package failure

import (
	"errors"
	"net/http"
)

// Failure is an error carrying the HTTP status it should be reported with.
type Failure struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

var ForbiddenError = &Failure{Code: http.StatusForbidden, Message: "You don't have the required permissions"}

func (e *Failure) Error() string {
	return e.Message
}

func newFailure(code int, msg string) error {
	return &Failure{Code: code, Message: msg}
}

// BadRequest keeps err's message. A nil err stays nil.
func BadRequest(err error) error {
	if err == nil {
		return nil
	}

	return newFailure(http.StatusBadRequest, err.Error())
}

func BadRequestFromString(msg string) error {
	return newFailure(http.StatusBadRequest, msg)
}

func Unauthorized(msg string) error {
	return newFailure(http.StatusUnauthorized, msg)
}

// InternalError keeps err's message. Use it only for messages that are safe to show.
func InternalError(err error) error {
	if err == nil {
		return nil
	}

	return newFailure(http.StatusInternalServerError, err.Error())
}

func NotFound(msg string) error {
	return newFailure(http.StatusNotFound, msg)
}

// Conflict reports a request that lost against current state, such as a taken slot or a closed booking.
func Conflict(msg string) error {
	return newFailure(http.StatusConflict, msg)
}

func Forbidden(msg string) error {
	return newFailure(http.StatusForbidden, msg)
}

// Storage returns a new Failure for persistence errors. The cause stays reachable through errors.Unwrap.
func Storage(err error) error {
	if err == nil {
		return nil
	}

	return &storageFailure{
		Failure: Failure{
			Code:    http.StatusInternalServerError,
			Message: "failed to save changes",
		},
		cause: err,
	}
}

type storageFailure struct {
	Failure
	cause error
}

func (e *storageFailure) Unwrap() error {
	return e.cause
}

func (e *storageFailure) As(target any) bool {
	fail, ok := target.(**Failure)
	if ok {
		*fail = &e.Failure
	}

	return ok
}

// GetCode returns the status carried by err, 500 for anything that is not a Failure.
func GetCode(err error) int {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Code
	}

	return http.StatusInternalServerError
}
