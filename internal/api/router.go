package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"grocery-list/internal/metrics"
	"grocery-list/internal/model"
	"grocery-list/internal/repository"
	"grocery-list/internal/service"
)

// CategoryService is the category behaviour the HTTP layer depends on.
type CategoryService interface {
	List(ctx context.Context) ([]model.Category, error)
	Create(ctx context.Context, name string) (*model.Category, error)
	Update(ctx context.Context, id uint, upd model.CategoryUpdate) (*model.Category, error)
	Delete(ctx context.Context, id uint) error
	Reorder(ctx context.Context, ids []uint) ([]model.Category, error)
	Suggestions(ctx context.Context, query string, limit int) ([]string, error)
}

// EntryService is the entry behaviour the HTTP layer depends on.
type EntryService interface {
	List(ctx context.Context, filter repository.EntryFilter) ([]model.Entry, error)
	Create(ctx context.Context, input service.EntryInput) (*model.Entry, error)
	Update(ctx context.Context, id uint, upd model.EntryUpdate) (*model.Entry, error)
	Delete(ctx context.Context, id uint) error
	Reorder(ctx context.Context, ids []uint) ([]model.Entry, error)
	ClearCompleted(ctx context.Context) (int64, error)
	Suggestions(ctx context.Context, query string, limit int) ([]string, error)
}

// New builds the echo instance with middleware and every route registered.
func New(categories CategoryService, entries EntryService, static *StaticHandler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = sonicSerializer{}
	e.HTTPErrorHandler = errorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger())
	e.Use(middleware.CORS())
	e.Use(metrics.Middleware())

	Register(e, categories, entries, static)
	return e
}

// Register wires up all routes on the provided Echo instance.
func Register(e *echo.Echo, categories CategoryService, entries EntryService, static *StaticHandler) {
	api := e.Group("/api")

	api.GET("/entries", listEntries(entries))
	api.POST("/entries", createEntry(entries))
	api.PUT("/entries/reorder", reorderEntries(entries))
	api.GET("/entries/suggestions", entrySuggestions(entries))
	api.DELETE("/entries/completed", clearCompleted(entries))
	api.PUT("/entries/:id", updateEntry(entries))
	api.DELETE("/entries/:id", deleteEntry(entries))

	api.GET("/categories", listCategories(categories))
	api.POST("/categories", createCategory(categories))
	api.PUT("/categories/reorder", reorderCategories(categories))
	api.GET("/categories/suggestions", categorySuggestions(categories))
	api.PUT("/categories/:id", updateCategory(categories))
	api.DELETE("/categories/:id", deleteCategory(categories))

	api.Any("/*", apiFallback)

	e.GET("/health", health)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	e.GET("/", static.Serve)
	e.GET("/*", static.Serve)
}

// apiFallback answers /api requests no route handles: 405 when the path is
// routed for other methods, otherwise a JSON 404 instead of the web app.
func apiFallback(c echo.Context) error {
	if allowed := allowedMethods(c.Echo(), c.Request().URL.Path); len(allowed) > 0 {
		c.Response().Header().Set(echo.HeaderAllow, strings.Join(allowed, ", "))
		return echo.ErrMethodNotAllowed
	}
	return echo.NewHTTPError(http.StatusNotFound, "no such endpoint")
}

var routedMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
}

// allowedMethods lists the methods for which path resolves to a concrete
// route rather than a wildcard.
func allowedMethods(e *echo.Echo, path string) []string {
	var out []string
	for _, m := range routedMethods {
		ctx := e.NewContext(nil, nil)
		e.Router().Find(m, path, ctx)
		if p := ctx.Path(); p != "" && !strings.HasSuffix(p, "*") {
			out = append(out, m)
		}
	}
	return out
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

func health(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.WithFields(log.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency,
				"request_id": v.RequestID,
			}).Debug("request")
			return nil
		},
	})
}
