package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"grocery-list/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{name: "validation", err: fmt.Errorf("wrap: %w", model.Invalid("name", "must not be empty")), code: http.StatusBadRequest, msg: "name: must not be empty"},
		{name: "not found", err: fmt.Errorf("entry 7: %w", model.ErrNotFound), code: http.StatusNotFound, msg: "entry 7: not found"},
		{name: "http error", err: echo.NewHTTPError(http.StatusMethodNotAllowed, "nope"), code: http.StatusMethodNotAllowed, msg: "nope"},
		{name: "internal http error hides detail", err: echo.NewHTTPError(http.StatusBadGateway, "upstream said x"), code: http.StatusBadGateway, msg: "Bad Gateway"},
		{name: "anything else", err: errors.New("disk on fire"), code: http.StatusInternalServerError, msg: "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, msg := classify(tt.err)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.msg, msg)
		})
	}
}
