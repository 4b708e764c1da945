package config

import (
	"os"

	"github.com/sirupsen/logrus"
)

var logg *logrus.Logger

func init() {
	logg = logrus.New()
	logg.SetFormatter(&logrus.JSONFormatter{})
	logg.SetLevel(logrus.InfoLevel)
	logg.SetOutput(os.Stdout)
}

// GetLogger returns the process-wide logger.
func GetLogger() *logrus.Logger {
	return logg
}

// SetLogLevel applies a textual level such as "debug" or "warn".
// Unknown levels leave the current level untouched.
func SetLogLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logg.Warnf("unknown LOG_LEVEL %q, keeping %s", level, logg.GetLevel())
		return
	}
	logg.SetLevel(lvl)
}

// LogError writes err with the module/function it came from.
func LogError(moduleName, funcName, context string, data any, err error) {
	fields := logrus.Fields{
		"module":   moduleName,
		"funcName": funcName,
		"context":  context,
	}
	if data != nil {
		fields["data"] = data
	}
	logg.WithFields(fields).Error(err.Error())
}
