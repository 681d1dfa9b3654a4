package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KevinKickass/OpenDACCore/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sqliteConfig(t *testing.T) *config.Config {
	return &config.Config{
		Topics: config.TopicsConfig{
			Backend:    config.TopicBackendSQLite,
			SQLitePath: filepath.Join(t.TempDir(), "topics.sqlite"),
		},
		Actor: config.ActorConfig{Name: "slow_dac"},
	}
}

func TestSeedThenInvoke(t *testing.T) {
	ctx := context.Background()
	cfg := sqliteConfig(t)

	boardPath := filepath.Join(t.TempDir(), "board.yaml")
	require.NoError(t, os.WriteFile(boardPath, []byte(`
board: slow_dac
channels:
  - label: ch1
    physical_index: B
    min_voltage: 0
    max_voltage: 5
`), 0o644))

	require.NoError(t, runSeed(ctx, cfg, zap.NewNop(), boardPath))

	var out bytes.Buffer
	in := strings.NewReader(`{"arguments":{"actor_channel_selected":{"String":"ch1"},"voltage_value":{"f64":5.0}},"parameters":{}}`)
	require.NoError(t, runInvoke(ctx, cfg, zap.NewNop(), "update", in, &out))

	assert.JSONEq(t, `{
		"parameters": {
			"command": {"u32": 3},
			"dac_channel_code": {"u32": 1},
			"tx_enable": {"bool": true},
			"value": {"u32": 65535}
		},
		"followups": [{"actor_name": "", "function": "tx_disable", "parameters": {}}]
	}`, out.String())
}

func TestInvokeTxDisable(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader(`{"arguments":{},"parameters":{"tx_enable":{"bool":true}}}`)
	require.NoError(t, runInvoke(context.Background(), sqliteConfig(t), zap.NewNop(), "tx_disable", in, &out))

	assert.JSONEq(t, `{"parameters":{"tx_enable":{"bool":false}}}`, out.String())
}

func TestInvokeMissingCalibration(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader(`{"arguments":{"actor_channel_selected":{"String":"ch9"},"raw_value":{"u64":1}},"parameters":{}}`)
	require.NoError(t, runInvoke(context.Background(), sqliteConfig(t), zap.NewNop(), "update", in, &out))

	assert.JSONEq(t, `{"message":"Error - Failed to read the file."}`, out.String())
}

func TestSeedRejectsBadBoard(t *testing.T) {
	boardPath := filepath.Join(t.TempDir(), "board.yaml")
	require.NoError(t, os.WriteFile(boardPath, []byte("board: x\nchannels: []\n"), 0o644))

	assert.Error(t, runSeed(context.Background(), sqliteConfig(t), zap.NewNop(), boardPath))
}
