package response

import (
	"errors"
	"net/http"

	"github.com/dissertrack/backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

// Response is the unified API response format.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Kind classifies an application error.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindUnauthorized
	KindPermission
	KindNotFound
	KindConflict
	KindPersistence
)

// AppError is a structured application error carrying an HTTP status and a
// stable error kind. Validation, permission, conflict and not-found errors
// carry their message to the client; persistence errors never do.
type AppError struct {
	Kind       Kind
	HTTPStatus int
	Message    string
	Err        error // wrapped cause, logged but not surfaced
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewValidation(msg string) *AppError {
	return &AppError{Kind: KindValidation, HTTPStatus: http.StatusBadRequest, Message: msg}
}

func NewUnauthorized(msg string) *AppError {
	return &AppError{Kind: KindUnauthorized, HTTPStatus: http.StatusUnauthorized, Message: msg}
}

func NewPermission(msg string) *AppError {
	return &AppError{Kind: KindPermission, HTTPStatus: http.StatusForbidden, Message: msg}
}

func NewNotFound(msg string) *AppError {
	return &AppError{Kind: KindNotFound, HTTPStatus: http.StatusNotFound, Message: msg}
}

func NewConflict(msg string) *AppError {
	return &AppError{Kind: KindConflict, HTTPStatus: http.StatusConflict, Message: msg}
}

// NewPersistence wraps a database or transaction failure. The cause is kept
// for logging; clients only ever see the generic message.
func NewPersistence(err error) *AppError {
	return &AppError{Kind: KindPersistence, HTTPStatus: http.StatusInternalServerError, Message: "internal server error", Err: err}
}

func isKind(err error, kind Kind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

func IsValidation(err error) bool   { return isKind(err, KindValidation) }
func IsUnauthorized(err error) bool { return isKind(err, KindUnauthorized) }
func IsPermission(err error) bool   { return isKind(err, KindPermission) }
func IsNotFound(err error) bool     { return isKind(err, KindNotFound) }
func IsConflict(err error) bool     { return isKind(err, KindConflict) }
func IsPersistence(err error) bool  { return isKind(err, KindPersistence) }

// --- Gin response helpers ---

// Success sends a 200 OK response with data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "ok",
		Data:    data,
	})
}

// Created sends a 201 Created response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: "created",
		Data:    data,
	})
}

// Error sends an error response. AppErrors map to their HTTP status; any
// other error is logged and reported as a generic 500 so raw database
// messages never reach the client.
func Error(c *gin.Context, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Kind == KindPersistence {
			logger.Error().Err(appErr.Err).Str("path", c.Request.URL.Path).Msg("persistence failure")
		}
		c.JSON(appErr.HTTPStatus, Response{
			Code:    appErr.HTTPStatus,
			Message: appErr.Message,
		})
		return
	}
	logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("unhandled error")
	c.JSON(http.StatusInternalServerError, Response{
		Code:    http.StatusInternalServerError,
		Message: "internal server error",
	})
}

// Convenience error response functions

func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Code: 400, Message: msg})
}

func Unauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, Response{Code: 401, Message: msg})
}

func Forbidden(c *gin.Context, msg string) {
	c.JSON(http.StatusForbidden, Response{Code: 403, Message: msg})
}

func NotFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, Response{Code: 404, Message: msg})
}
