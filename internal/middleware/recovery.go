package middleware

import (
	"net/http"

	"github.com/gorilla/handlers"
	"go.uber.org/zap"
)

type zapRecoveryLogger struct {
	logger *zap.SugaredLogger
}

func (l zapRecoveryLogger) Println(v ...interface{}) {
	l.logger.Error(v...)
}

// Recovery turns a handler panic into a 500 and logs it.
func Recovery(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(zapRecoveryLogger{logger: logger}),
		handlers.PrintRecoveryStack(false),
	)
}
