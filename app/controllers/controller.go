// Package controllers exposes the commerce engine over HTTP. Controllers
// stay thin: decode the request, call one service method, map the result.
package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shashiranjanraj/mandi/app/services"
	"github.com/shashiranjanraj/mandi/pkg/logger"
	"github.com/shashiranjanraj/mandi/pkg/response"
)

// decode reads a JSON body into dst. A malformed body gets a 400 and
// returns false so the handler can bail out early.
func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.Error(w, http.StatusBadRequest, "Malformed JSON body")
		return false
	}
	return true
}

// fail maps service errors onto HTTP status codes. Validation failures are
// 422, missing orders 404, terminal-state edits 409, role violations 403.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidProduct),
		errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, services.ErrMissingField):
		response.Error(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, services.ErrOrderNotFound):
		response.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidTransition):
		response.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrForbidden):
		response.Error(w, http.StatusForbidden, err.Error())
	default:
		logger.WithCtx(r.Context()).Error("unhandled service error", "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal Server Error")
	}
}
