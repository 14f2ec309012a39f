package logging

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("trace")
	require.NoError(t, err)
	require.Equal(t, TraceLevel, lvl)

	lvl, err = ParseLevel("WARN")
	require.NoError(t, err)
	require.Equal(t, zapcore.WarnLevel, lvl)

	_, err = ParseLevel("loud")
	require.Error(t, err)
}

func TestJSON(t *testing.T) {
	var out bytes.Buffer
	log, sync, err := NewTo(&out, "info", true)
	require.NoError(t, err)

	log.Info("Resolved", "addr", "10.0.0.1")
	log.V(1).Info("hidden at info")
	log.Error(errors.New("boom"), "Fetch failed")
	require.NoError(t, sync())

	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	require.Contains(t, string(lines[0]), `"msg":"Resolved"`)
	require.Contains(t, string(lines[0]), `"addr":"10.0.0.1"`)
	require.Contains(t, string(lines[0]), `"ts":`)
	require.Contains(t, string(lines[1]), `"error":"boom"`)
}

func TestTraceShowsV1(t *testing.T) {
	var out bytes.Buffer
	log, sync, err := NewTo(&out, "trace", false)
	require.NoError(t, err)

	log.V(1).Info("TLS: handshake complete")
	require.NoError(t, sync())

	require.Contains(t, out.String(), "TLS: handshake complete")
}
