package logger

import (
	"go.uber.org/zap"
)

var L *zap.Logger = zap.NewNop()

// Init builds the process-wide logger. Call once from main before serving.
func Init(env string) *zap.Logger {
	var err error
	if env == "production" {
		L, err = zap.NewProduction()
	} else {
		L, err = zap.NewDevelopment()
	}
	if err != nil {
		L = zap.NewNop()
	}
	return L
}
