package services

import (
	"errors"

	"github.com/dissertrack/backend/pkg/response"
)

// wrapErr passes AppErrors through untouched and wraps everything else
// as a persistence failure so raw database errors never reach clients.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	var appErr *response.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return response.NewPersistence(err)
}
