package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"grocery-list/internal/model"
)

type errorResponse struct {
	Error string `json:"error"`
}

// errorHandler maps service errors onto status codes. Internal failures are
// logged with detail and answered with a generic message.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, msg := classify(err)
	if status >= http.StatusInternalServerError {
		log.WithFields(log.Fields{
			"method":     c.Request().Method,
			"path":       c.Request().URL.Path,
			"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
		}).WithError(err).Error("request failed")
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(status)
	} else {
		werr = c.JSON(status, errorResponse{Error: msg})
	}
	if werr != nil {
		log.WithError(werr).Warn("write error response")
	}
}

func classify(err error) (int, string) {
	var verr *model.ValidationError
	var herr *echo.HTTPError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Error()
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.As(err, &herr):
		if herr.Code >= http.StatusInternalServerError {
			return herr.Code, http.StatusText(herr.Code)
		}
		return herr.Code, fmt.Sprint(herr.Message)
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		return 0, model.Invalid("id", "must be a positive integer")
	}
	return uint(id), nil
}

func parseLimit(c echo.Context) (int, error) {
	raw := c.QueryParam("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, model.Invalid("limit", "must be a positive integer")
	}
	return n, nil
}

func decodeJSON(c echo.Context, v any) error {
	return c.Echo().JSONSerializer.Deserialize(c, v)
}
