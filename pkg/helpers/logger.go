package helpers

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the process-wide logger. Development gets readable text
// at debug level; any other environment logs JSON at info for ingestion.
// Workers pass a suffixed service name so their lines are distinguishable
// from the API's.
func NewLogger(service, env string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	switch env {
	case "development":
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	logger.WithFields(logrus.Fields{"service": service, "env": env}).Info("logger ready")
	return logger
}
