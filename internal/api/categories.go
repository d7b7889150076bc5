package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"grocery-list/internal/model"
)

type createCategoryRequest struct {
	Name string `json:"name"`
}

func listCategories(svc CategoryService) echo.HandlerFunc {
	return func(c echo.Context) error {
		categories, err := svc.List(c.Request().Context())
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, nonNil(categories))
	}
}

func createCategory(svc CategoryService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req createCategoryRequest
		if err := decodeJSON(c, &req); err != nil {
			return err
		}
		category, err := svc.Create(c.Request().Context(), req.Name)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, category)
	}
}

func updateCategory(svc CategoryService) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		var req model.CategoryUpdate
		if err := decodeJSON(c, &req); err != nil {
			return err
		}
		category, err := svc.Update(c.Request().Context(), id, req)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, category)
	}
}

func deleteCategory(svc CategoryService) echo.HandlerFunc {
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

func reorderCategories(svc CategoryService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req reorderRequest
		if err := decodeJSON(c, &req); err != nil {
			return err
		}
		categories, err := svc.Reorder(c.Request().Context(), req)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, nonNil(categories))
	}
}

func categorySuggestions(svc CategoryService) echo.HandlerFunc {
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

// nonNil makes empty results encode as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
