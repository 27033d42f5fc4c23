package main

import (
	applog "sindicatorest/pkg/logger"

	"go.uber.org/zap"
)

// zapLogger expõe o zap do CLI com a interface de log dos serviços
type zapLogger struct {
	z *zap.Logger
}

func zapFields(fields []map[string]interface{}) []zap.Field {
	var out []zap.Field
	for _, m := range fields {
		for k, v := range m {
			out = append(out, zap.Any(k, v))
		}
	}
	return out
}

func (l zapLogger) Debug(message string, fields ...map[string]interface{}) {
	l.z.Debug(message, zapFields(fields)...)
}

func (l zapLogger) Info(message string, fields ...map[string]interface{}) {
	l.z.Info(message, zapFields(fields)...)
}

func (l zapLogger) Warn(message string, fields ...map[string]interface{}) {
	l.z.Warn(message, zapFields(fields)...)
}

func (l zapLogger) Error(message string, err error, fields ...map[string]interface{}) {
	l.z.Error(message, append(zapFields(fields), zap.Error(err))...)
}

// Fatal não encerra o processo; quem chama decide
func (l zapLogger) Fatal(message string, err error, fields ...map[string]interface{}) {
	l.z.Error(message, append(zapFields(fields), zap.Error(err), zap.Bool("fatal", true))...)
}

func (l zapLogger) WithContext(level applog.LogLevel, message string, ctx applog.LogContext) {
	fields := zapFields([]map[string]interface{}{ctx.Fields})
	if ctx.Error != nil {
		fields = append(fields, zap.Any("error", ctx.Error))
	}
	switch level {
	case applog.LevelDebug:
		l.z.Debug(message, fields...)
	case applog.LevelWarn:
		l.z.Warn(message, fields...)
	case applog.LevelError, applog.LevelFatal:
		l.z.Error(message, fields...)
	default:
		l.z.Info(message, fields...)
	}
}

func (l zapLogger) Close() error {
	return l.z.Sync()
}

var _ applog.Logger = zapLogger{}
