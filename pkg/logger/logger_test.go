package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestBuildConfigLevels(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, buildConfig("DEBUG").Level.Level())
	assert.Equal(t, zapcore.InfoLevel, buildConfig("").Level.Level())
	assert.Equal(t, zapcore.WarnLevel, buildConfig("warning").Level.Level())
	assert.Equal(t, zapcore.ErrorLevel, buildConfig("error").Level.Level())

	assert.True(t, buildConfig("info").Development)
	assert.False(t, buildConfig("error").Development)
}

func TestFieldAttribute(t *testing.T) {
	assert.Equal(t, attribute.Bool("b", true), fieldAttribute(zap.Bool("b", true)))
	assert.Equal(t, attribute.Int64("i", -3), fieldAttribute(zap.Int8("i", -3)))
	assert.Equal(t, attribute.Int64("u", 200), fieldAttribute(zap.Uint8("u", 200)))
	assert.Equal(t, attribute.Int64("n", 42), fieldAttribute(zap.Int("n", 42)))
	assert.Equal(t, attribute.Float64("f", 0.25), fieldAttribute(zap.Float64("f", 0.25)))
	assert.Equal(t, attribute.Float64("f32", 1.5), fieldAttribute(zap.Float32("f32", 1.5)))
	assert.Equal(t, attribute.String("s", "v"), fieldAttribute(zap.String("s", "v")))
	assert.Equal(t, attribute.String("error", "boom"), fieldAttribute(zap.Error(errors.New("boom"))))
	assert.Equal(t, attribute.String("any", "[1 2]"), fieldAttribute(zap.Any("any", []int{1, 2})))
}
