package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestLoggingInterceptor(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		level   string
		message string
	}{
		{name: "success", level: `"level":"INFO"`, message: `"msg":"RPC ok"`},
		{name: "connect error", err: connect.NewError(connect.CodeNotFound, errors.New("network not found")), level: `"level":"WARN"`, message: `"code":"not_found"`},
		{name: "plain error", err: errors.New("boom"), level: `"level":"ERROR"`, message: `"error":"boom"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLogs(t)

			handler := LoggingInterceptor()(func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
				return nil, tt.err
			})
			_, err := handler(context.Background(), connect.NewRequest(&struct{}{}))
			require.Equal(t, tt.err, err)

			assert.Contains(t, buf.String(), tt.level)
			assert.Contains(t, buf.String(), tt.message)
			assert.Contains(t, buf.String(), `"duration_ms"`)
		})
	}
}
