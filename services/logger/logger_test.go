package logsvc

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/shoyeabaslam/kcet-cams-sub000/core"
)

func newObservedLogger(t *testing.T) (*RollbarLogger, *observer.ObservedLogs) {
	t.Helper()
	obs, logs := observer.New(zapcore.DebugLevel)
	conf := testConf
	l := NewRollbarLogger(zap.New(obs), &conf)
	l.Enable(false)
	return l, logs
}

var testConf = core.Config{AppName: "test", Env: "TEST", Build: "test"}

func TestRollbarLogger_Levels(t *testing.T) {
	l, logs := newObservedLogger(t)

	l.Debug("debug msg")
	l.Info("info msg")
	l.Warn("warn msg")
	l.Error("error msg")

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
	assert.Equal(t, "error msg", entries[3].Message)
}

func TestRollbarLogger_Fields(t *testing.T) {
	l, logs := newObservedLogger(t)

	l.Info("payment recorded",
		map[string]interface{}{"student_id": "abc", "amount": int64(1000)},
		core.Actor{ID: "off-1", Name: "Officer"},
		core.Actor{ID: "off-2"},
	)

	entries := logs.All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "abc", ctx["student_id"])
	assert.Equal(t, int64(1000), ctx["amount"])
	assert.Equal(t, "off-1", ctx["actor"])
}

func TestRollbarLogger_Error(t *testing.T) {
	l, logs := newObservedLogger(t)

	l.Error("failed", errors.New("boom"))

	entries := logs.FilterMessage("failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "boom", entries[0].ContextMap()["error"])
}

func TestNewZapLogger(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		wantErr bool
	}{
		{name: "console debug", level: "debug", format: "console"},
		{name: "json info", level: "info", format: "json"},
		{name: "invalid level", level: "loud", format: "json", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			conf := testConf
			conf.Log = core.LogConfig{Level: tc.level, Format: tc.format}
			logger, err := NewZapLogger(&conf)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}
