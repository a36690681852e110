package logging

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLevelToZapLevel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		level    string
		expected zapcore.Level
	}{
		{name: "debug", level: "debug", expected: zapcore.DebugLevel},
		{name: "upper_case", level: "WARN", expected: zapcore.WarnLevel},
		{name: "padded", level: " error ", expected: zapcore.ErrorLevel},
		{name: "empty", level: "", expected: zapcore.InfoLevel},
		{name: "unknown", level: "verbose", expected: zapcore.InfoLevel},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			if got := levelToZapLevel(test.level); got != test.expected {
				t.Errorf("parsing the log level got: %v, expected: %v", got, test.expected)
			}
		})
	}
}

func TestContext(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	if FromContext(ctx) != DefaultLogger() {
		t.Errorf("a context without a logger must return the default logger")
	}

	logger := zap.NewNop().Sugar()
	ctx = WithLogger(ctx, logger)
	if got := FromContext(ctx); got != logger {
		t.Errorf("the logger from context got: %v, expected: %v", got, logger)
	}
}
