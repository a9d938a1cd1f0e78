package main

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type logger struct {
	level zap.AtomicLevel
	base  *zap.Logger
	sugar *zap.SugaredLogger
}

var log = newLogger()

func newLogger() *logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	base := zap.New(zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(os.Stderr),
		level,
	))
	return &logger{level: level, base: base, sugar: base.Sugar()}
}

// SetDebug toggles debug output, used in development mode.
func (l *logger) SetDebug(debug bool) {
	if debug {
		l.level.SetLevel(zap.DebugLevel)
	} else {
		l.level.SetLevel(zap.InfoLevel)
	}
}

// Zap returns the structured logger for packages that take one.
func (l *logger) Zap() *zap.Logger {
	return l.base
}

func (l *logger) Debug(format string, value ...any) {
	l.sugar.Debugf(strings.TrimSuffix(format, "\n"), value...)
}

func (l *logger) Warn(format string, value ...any) {
	l.sugar.Warnf(strings.TrimSuffix(format, "\n"), value...)
}

func (l *logger) Err(format string, value ...any) {
	l.sugar.Errorf(strings.TrimSuffix(format, "\n"), value...)
}

func (l *logger) Info(format string, value ...any) {
	l.sugar.Infof(strings.TrimSuffix(format, "\n"), value...)
}

func (l *logger) Fatal(format string, value ...any) {
	l.sugar.Fatalf(strings.TrimSuffix(format, "\n"), value...)
}
