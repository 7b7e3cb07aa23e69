package telegram

import (
	"github.com/m3rciful/rompostbot/core/telegram/middleware"
)

// DefaultMiddlewares builds the shared middleware chain for bots.
// Recover runs outermost so panics in logging or metrics are caught too.
func DefaultMiddlewares() []Middleware {
	return []Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware},
		{Name: "logger", Use: middleware.LoggerMiddleware},
		{Name: "metrics", Use: middleware.MessageMetricsMiddleware},
	}
}
