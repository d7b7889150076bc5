package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"grocery-list/internal/model"
	"grocery-list/internal/repository"
	"grocery-list/internal/service"
)

type clearCompletedResponse struct {
	Removed int64 `json:"removed"`
}

func listEntries(svc EntryService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var filter repository.EntryFilter
		if raw := c.QueryParam("categoryId"); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 0)
			if err != nil {
				return model.Invalid("categoryId", "must be a positive integer")
			}
			categoryID := uint(id)
			filter.CategoryID = &categoryID
		}
		entries, err := svc.List(c.Request().Context(), filter)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, nonNil(entries))
	}
}

func createEntry(svc EntryService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req service.EntryInput
		if err := decodeJSON(c, &req); err != nil {
			return err
		}
		entry, err := svc.Create(c.Request().Context(), req)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, entry)
	}
}

func updateEntry(svc EntryService) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		var req model.EntryUpdate
		if err := decodeJSON(c, &req); err != nil {
			return err
		}
		entry, err := svc.Update(c.Request().Context(), id, req)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, entry)
	}
}

func deleteEntry(svc EntryService) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		if err := svc.Delete(c.Request().Context(), id); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func reorderEntries(svc EntryService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req reorderRequest
		if err := decodeJSON(c, &req); err != nil {
			return err
		}
		entries, err := svc.Reorder(c.Request().Context(), req)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, nonNil(entries))
	}
}

func clearCompleted(svc EntryService) echo.HandlerFunc {
	return func(c echo.Context) error {
		n, err := svc.ClearCompleted(c.Request().Context())
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, clearCompletedResponse{Removed: n})
	}
}

func entrySuggestions(svc EntryService) echo.HandlerFunc {
	return func(c echo.Context) error {
		limit, err := parseLimit(c)
		if err != nil {
			return err
		}
		names, err := svc.Suggestions(c.Request().Context(), c.QueryParam("q"), limit)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, nonNil(names))
	}
}
