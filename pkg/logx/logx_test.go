package logx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebugToggle(t *testing.T) {
	SetDebug(false)
	assert.False(t, IsDebugEnabled("agent"))

	SetDebug(true)
	assert.True(t, IsDebugEnabled("agent"))

	SetDebug(false)
}

func TestDebugDomainsFromEnv(t *testing.T) {
	t.Setenv("DEBUG", "1")
	t.Setenv("DEBUG_DOMAINS", "agent,orchestrator")
	initDebugFromEnv()
	defer func() {
		os.Unsetenv("DEBUG")
		os.Unsetenv("DEBUG_DOMAINS")
		mu.Lock()
		debug = debugConfig{}
		mu.Unlock()
	}()

	assert.True(t, IsDebugEnabled("agent"))
	assert.True(t, IsDebugEnabled("orchestrator"))
	assert.False(t, IsDebugEnabled("server"))
}

func TestFileSinkWritesJSONL(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, EnableFileSink(dir))
	defer CloseFileSink()

	logger := NewLogger("test")
	logger.InfoReq("req-123", "hello %s", "world")

	data, err := os.ReadFile(dir + "/assistant.log")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"hello world"`)
	assert.Contains(t, string(data), `"request_id":"req-123"`)
	assert.Contains(t, string(data), `"component":"test"`)
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "context"))
	err := Wrap(os.ErrNotExist, "reading config")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "reading config")
}
