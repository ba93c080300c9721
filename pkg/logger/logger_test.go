package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Local(t *testing.T) {
	var buf bytes.Buffer
	New("local", &buf).Debug("polling", "deposit_address", "0xabc")

	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "deposit_address=0xabc")
}

func TestNew_Dev(t *testing.T) {
	var buf bytes.Buffer
	New("dev", &buf).Debug("polling", "status", "PROCESSING")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "DEBUG", rec["level"])
	assert.Equal(t, "PROCESSING", rec["status"])
}

func TestNew_ProdDropsDebug(t *testing.T) {
	var buf bytes.Buffer
	log := New("prod", &buf)
	log.Debug("hidden")
	assert.Zero(t, buf.Len())

	log.Info("shown")
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "shown", rec["msg"])
}

func TestNew_UnknownEnvActsLikeProd(t *testing.T) {
	var buf bytes.Buffer
	New("staging", &buf).Debug("hidden")
	assert.Zero(t, buf.Len())
}
