package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLevel(t *testing.T) {
	defer SetLevel("info")

	SetLevel("debug")
	assert.Equal(t, "debug", GetLevel())

	SetLevel("  WARN ")
	assert.Equal(t, "warning", GetLevel())

	SetLevel("nonsense")
	assert.Equal(t, "info", GetLevel())
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetLevel("info")

	Init("warn")
	Infof("dropped %d", 1)
	assert.Zero(t, buf.Len())

	Warnf("kept %d", 2)
	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "kept 2", line["message"])
	assert.Equal(t, "warning", line["severity"])
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	Init("info")

	WithFields(map[string]interface{}{"session": "abc"}).Info("hello")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "abc", line["session"])
}
