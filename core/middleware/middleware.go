package middleware

import (
	"net/http"
	"time"

	"event-service/core/background"
	"event-service/core/controller"
	"event-service/core/database"
	"event-service/core/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sourcegraph/conc/panics"
)

const ContextKeyRequestID = "request_id"

type Middleware struct {
	pool database.Pool
	lane *background.Lane
}

func NewMiddleware(pool database.Pool, lane *background.Lane) *Middleware {
	return &Middleware{pool: pool, lane: lane}
}

// RequestID propagates X-Request-ID, generating one when the client sent none.
func (m *Middleware) RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Request().Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = uuid.NewString()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, rid)
			c.Set(ContextKeyRequestID, rid)
			return next(c)
		}
	}
}

// RequestLogger renders handler errors itself so the logged status is final.
func (m *Middleware) RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}

			req, res := c.Request(), c.Response()
			args := []any{
				"request_id", c.Get(ContextKeyRequestID),
				"method", req.Method,
				"path", req.URL.Path,
				"status", res.Status,
				"latency", time.Since(start).String(),
			}
			if res.Status >= http.StatusInternalServerError {
				logger.Error("HTTP request", args...)
			} else {
				logger.Info("HTTP request", args...)
			}
			return nil
		}
	}
}

// Recover turns a handler panic into a 500.
func (m *Middleware) Recover() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var err error
			var pc panics.Catcher
			pc.Try(func() { err = next(c) })
			if r := pc.Recovered(); r != nil {
				logger.Error("Recover: handler panicked",
					"request_id", c.Get(ContextKeyRequestID),
					"path", c.Request().URL.Path,
					"panic", r.Value,
					"stack", string(r.Stack),
				)
				return controller.NewErrorResponse(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
			}
			return err
		}
	}
}

// Background defers tasks queued by the handler until the response is sent.
func (m *Middleware) Background() echo.MiddlewareFunc {
	return background.Middleware(m.lane)
}

// StoreHandle acquires one store handle per request and releases it once the
// handler is done, whatever the outcome.
func (m *Middleware) StoreHandle() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			h, err := m.pool.Acquire(req.Context())
			if err != nil {
				logger.ErrorStack("StoreHandle: acquire", err, "request_id", c.Get(ContextKeyRequestID))
				return controller.NewErrorResponse(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)).SetInternal(err)
			}
			defer func() {
				if closeErr := h.Close(); closeErr != nil {
					logger.Warn("StoreHandle: release", "request_id", c.Get(ContextKeyRequestID), "error", closeErr)
				}
			}()

			c.SetRequest(req.WithContext(database.WithHandle(req.Context(), h)))
			return next(c)
		}
	}
}
