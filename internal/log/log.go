package log

import (
	"github.com/csr-ugra/yellowpages-parser/internal/util"
	"github.com/google/uuid"
	"github.com/nullseed/logruseq"
	"github.com/sirupsen/logrus"
	"os"
)

var entry *logrus.Entry

type Logger = *logrus.Entry

func InitLogger(config *util.Config) {

	logger := &logrus.Logger{
		Out:   os.Stdout,
		Hooks: make(logrus.LevelHooks),
		Level: logrus.DebugLevel,
	}

	if config.Environment.Value == "production" {
		logger.Formatter = &logrus.JSONFormatter{}
	} else {
		logger.Formatter = &logrus.TextFormatter{
			ForceColors:      true,
			FullTimestamp:    false,
			QuoteEmptyFields: true,
		}
	}

	if config.SeqUrl.Value != "" {
		seqHook := logruseq.NewSeqHook(config.SeqUrl.Value, logruseq.OptionAPIKey(config.SeqToken.Value))
		logger.AddHook(seqHook)
	} else {
		logger.Warn("logger running without seq hook")
	}

	entry = logger.WithField("TraceId", uuid.New().String())
}

func AddGlobalField(name string, value interface{}) Logger {
	entry = GetLogger().WithField(name, value)
	return entry
}

// GetLogger returns the process logger. Before InitLogger is called it falls
// back to a plain stderr logger so packages can be used from tests.
func GetLogger() Logger {
	if entry == nil {
		logger := logrus.New()
		logger.SetLevel(logrus.DebugLevel)
		entry = logrus.NewEntry(logger)
	}

	return entry
}

// TraceId returns the id attached to every log line of this run.
func TraceId() string {
	if v, ok := GetLogger().Data["TraceId"].(string); ok {
		return v
	}

	return ""
}
