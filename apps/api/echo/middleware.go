package echoapi

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shoyeabaslam/kcet-cams-sub000/core"
)

// roleMiddleware lets the request through when the token carries any of roles.
func roleMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			for _, role := range roles {
				if claims.HasRole(role) {
					return next(ctx)
				}
			}
			return errHttpForbidden
		}
	}
}

func adminMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(RoleAdmin)
}

func requestLogger(logger core.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			err := next(ctx)
			if err != nil {
				// let the error handler write the status before logging it
				ctx.Error(err)
			}

			req, res := ctx.Request(), ctx.Response()
			fields := map[string]interface{}{
				"status":     res.Status,
				"method":     req.Method,
				"path":       req.URL.Path,
				"query":      req.URL.RawQuery,
				"ip":         ctx.RealIP(),
				"latency":    time.Since(start).String(),
				"request_id": res.Header().Get(echo.HeaderXRequestID),
			}
			switch {
			case res.Status >= 500:
				logger.Error("request failed", fields)
			case res.Status >= 400:
				logger.Warn("client error", fields)
			default:
				logger.Debug("request completed", fields)
			}
			return nil
		}
	}
}
