package api

import (
	"errors"
	"net/http"

	errs "gympoint/internal/errors"
	"gympoint/internal/repository"
	"gympoint/internal/service"
)

// httpError maps a domain outcome onto a transport error. Conflict-class
// outcomes stay distinguishable from validation and not-found so clients can
// branch (retry vs report).
func httpError(err error) *errs.HTTPError {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return errs.ErrNotFound(err.Error())
	case errors.Is(err, repository.ErrConflict),
		errors.Is(err, repository.ErrCapacityReached),
		errors.Is(err, repository.ErrAlreadyCheckedIn),
		errors.Is(err, repository.ErrAttendanceSet),
		errors.Is(err, repository.ErrNotActive):
		return errs.ErrConflict(err.Error())
	case errors.Is(err, service.ErrInvalidInterval),
		errors.Is(err, service.ErrResourceUnavailable):
		return errs.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	default:
		return errs.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}

func writeError(w http.ResponseWriter, err error) {
	he := httpError(err)
	http.Error(w, he.Message, he.Code)
}
