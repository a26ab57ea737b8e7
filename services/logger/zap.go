package logsvc

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/shoyeabaslam/kcet-cams-sub000/core"
)

// NewZapLogger builds the process logger from conf.Log.
// "console" gives the human-readable development encoder; anything else is JSON.
func NewZapLogger(conf *core.Config) (*zap.Logger, error) {
	var zapConf zap.Config
	switch conf.Log.Format {
	case "console":
		zapConf = zap.NewDevelopmentConfig()
		zapConf.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		zapConf = zap.NewProductionConfig()
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(conf.Log.Level)); err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", conf.Log.Level)
	}
	zapConf.Level = zap.NewAtomicLevelAt(level)
	zapConf.InitialFields = map[string]interface{}{
		"app":   conf.AppName,
		"env":   conf.Env,
		"build": conf.Build,
	}

	logger, err := zapConf.Build()
	if err != nil {
		return nil, errors.Wrap(err, "building logger")
	}
	return logger, nil
}
