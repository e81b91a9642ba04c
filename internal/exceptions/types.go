package exceptions

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

type ServiceError struct {
	StatusCode int
	Cause      error
}

func (se *ServiceError) Error() string {
	return se.Cause.Error()
}

func (se *ServiceError) Unwrap() error {
	return se.Cause
}

type RequestError interface {
	ToServiceError() *ServiceError
	Error() string
}

// StatusCode resolves the HTTP status for any error in the chain, falling
// back to 500.
func StatusCode(err error) int {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	var re RequestError
	if errors.As(err, &re) {
		return re.ToServiceError().StatusCode
	}
	return http.StatusInternalServerError
}

type ConflictError struct {
	Resource string
	Id       string
}

func (ce *ConflictError) Error() string {
	return fmt.Sprintf("Found conflicting %s with id: %s", ce.Resource, ce.Id)
}

func (ce *ConflictError) ToServiceError() *ServiceError {
	return &ServiceError{
		StatusCode: http.StatusConflict,
		Cause:      ce,
	}
}

func Conflict(resource string, id string) *ConflictError {
	return &ConflictError{
		Resource: resource,
		Id:       id,
	}
}

type NotFoundError struct {
	Resource string
	Id       string
}

func (nfe *NotFoundError) Error() string {
	return fmt.Sprintf("Could not find a %s with id: %s", nfe.Resource, nfe.Id)
}

func (nfe *NotFoundError) ToServiceError() *ServiceError {
	return &ServiceError{
		StatusCode: http.StatusNotFound,
		Cause:      nfe,
	}
}

func NotFound(resource string, id string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		Id:       id,
	}
}

type InvalidInputError struct {
	Message string
}

func (ie *InvalidInputError) Error() string {
	return ie.Message
}

func (ie *InvalidInputError) ToServiceError() *ServiceError {
	return &ServiceError{
		StatusCode: http.StatusBadRequest,
		Cause:      ie,
	}
}

func InvalidInput(message string) *InvalidInputError {
	return &InvalidInputError{
		Message: message,
	}
}

// ValidationError carries one message per offending field.
type ValidationError struct {
	Fields map[string]string
}

func (ve *ValidationError) Error() string {
	names := make([]string, 0, len(ve.Fields))
	for name := range ve.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	messages := make([]string, len(names))
	for i, name := range names {
		messages[i] = fmt.Sprintf("%s: %s", name, ve.Fields[name])
	}
	return "Validation failed: " + strings.Join(messages, "; ")
}

func (ve *ValidationError) ToServiceError() *ServiceError {
	return &ServiceError{
		StatusCode: http.StatusBadRequest,
		Cause:      ve,
	}
}

func Validation(field string, message string) *ValidationError {
	return &ValidationError{
		Fields: map[string]string{field: message},
	}
}

type InvalidOperationError struct {
	Message string
}

func (ioe *InvalidOperationError) Error() string {
	return ioe.Message
}

func (ioe *InvalidOperationError) ToServiceError() *ServiceError {
	return &ServiceError{
		StatusCode: http.StatusBadRequest,
		Cause:      ioe,
	}
}

func InvalidOperation(message string) *InvalidOperationError {
	return &InvalidOperationError{
		Message: message,
	}
}

type UnauthorizedError struct{}

func (ue *UnauthorizedError) Error() string {
	return "Unauthorized"
}

func (ue *UnauthorizedError) ToServiceError() *ServiceError {
	return &ServiceError{
		StatusCode: http.StatusUnauthorized,
		Cause:      ue,
	}
}

func Unauthorized() *UnauthorizedError {
	return &UnauthorizedError{}
}

type ForbiddenError struct {
	Resource string
	Id       string
}

func (fe *ForbiddenError) Error() string {
	return fmt.Sprintf("Not allowed to modify %s with id: %s", fe.Resource, fe.Id)
}

func (fe *ForbiddenError) ToServiceError() *ServiceError {
	return &ServiceError{
		StatusCode: http.StatusForbidden,
		Cause:      fe,
	}
}

func Forbidden(resource string, id string) *ForbiddenError {
	return &ForbiddenError{
		Resource: resource,
		Id:       id,
	}
}

func InternalServer(message string) *ServiceError {
	return &ServiceError{
		StatusCode: http.StatusInternalServerError,
		Cause:      errors.New(message),
	}
}
