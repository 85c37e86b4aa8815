package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name      string
		verbose   bool
		wantDebug bool
	}{
		{name: "quiet drops debug", verbose: false, wantDebug: false},
		{name: "verbose keeps debug", verbose: true, wantDebug: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			logger := New(Config{Verbose: tt.verbose, Output: &buf})
			logger.Debug("scanning", "path", "a.py")
			logger.Warn("skipped", "path", "b.py")

			assert.Equal(t, tt.wantDebug, bytes.Contains(buf.Bytes(), []byte("scanning")))
			assert.Contains(t, buf.String(), "skipped")
			assert.Contains(t, buf.String(), "service=burnlist")
		})
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer

	New(Config{JSON: true, Output: &buf}).Warn("parse failed", "path", "a.py")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "parse failed", record["msg"])
	assert.Equal(t, "a.py", record["path"])
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() {
		Discard().Error("ignored")
	})
}
