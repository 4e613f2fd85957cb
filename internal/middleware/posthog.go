package middleware

import (
	"net/http"
	"strings"

	"github.com/gestionale-jos/jos_backend/internal/utils"
	"github.com/gin-gonic/gin"
)

// untrackedRoutes are never sent to PostHog. The event stream is long lived and
// would report one event per connection, not per action.
var untrackedRoutes = map[string]bool{
	"/health":        true,
	"/api/v1/events": true,
}

// PosthogMiddleware records every successful authenticated API call as a PostHog event
// named after its route, e.g. POST /api/v1/cash/days/:date/close becomes
// "post_cash_days_:date_close".
func PosthogMiddleware(posthogClient *utils.PosthogClientWrapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		if posthogClient == nil || !posthogClient.IsInitialized() || untrackedRoutes[c.FullPath()] {
			c.Next()
			return
		}

		c.Next()

		// Only actions that went through are interesting
		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}
		userID, exists := GetUserIDFromContext(c)
		if !exists {
			return
		}
		eventName := routeEventName(c.Request.Method, c.FullPath())
		if eventName == "" {
			return
		}

		props := map[string]any{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status_code": c.Writer.Status(),
		}
		if date := c.Param("date"); date != "" {
			props["business_date"] = date
		}
		if len(c.Params) > 0 {
			params := make(map[string]string, len(c.Params))
			for _, param := range c.Params {
				params[param.Key] = param.Value
			}
			props["params"] = params
		}

		posthogClient.Enqueue(userID, eventName, props)
	}
}

// routeEventName turns a route template into an event name; unmatched routes give "".
func routeEventName(method, fullPath string) string {
	route := strings.TrimPrefix(fullPath, "/api/v1")
	route = strings.Trim(route, "/")
	if route == "" {
		return ""
	}
	return strings.ToLower(method) + "_" + strings.ReplaceAll(route, "/", "_")
}
