package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitRejectsBadInput(t *testing.T) {
	_, err := Init("loud", "json")
	require.Error(t, err)

	_, err = Init("info", "xml")
	require.Error(t, err)
}

func TestCtxCarriesRequestFields(t *testing.T) {
	var buf bytes.Buffer
	_, err := InitWriter("info", "json", &buf)
	require.NoError(t, err)

	ctx := WithContext(context.Background(), L().With(zap.String("request_id", "req-42")))
	Ctx(ctx).Info("project created")
	Ctx(context.Background()).Info("no request")
	Sync()

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &first))
	require.Equal(t, "project created", first["message"])
	require.Equal(t, "req-42", first["request_id"])

	var second map[string]any
	require.NoError(t, json.Unmarshal(lines[1], &second))
	require.NotContains(t, second, "request_id")
}
