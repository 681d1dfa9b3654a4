package system

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/KevinKickass/OpenDACCore/internal/config"
	"github.com/KevinKickass/OpenDACCore/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(t *testing.T, backend string) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		Server: config.ServerConfig{HTTPPort: 8080, GRPCPort: 50051},
		Topics: config.TopicsConfig{
			Backend:     backend,
			SearchPaths: []string{dir},
			SQLitePath:  filepath.Join(dir, "topics.sqlite"),
		},
		Dispatch: config.DispatchConfig{Backend: config.DispatchBackendLocal, Journal: true},
		Actor:    config.ActorConfig{Name: "slow_dac"},
	}
}

func TestOpenTopicStore(t *testing.T) {
	for _, backend := range []string{config.TopicBackendFile, config.TopicBackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			store, closeStore, err := OpenTopicStore(ctx, testConfig(t, backend))
			require.NoError(t, err)
			defer closeStore()

			require.NoError(t, store.WriteTopic(ctx, "ch1.json", "x"))
			content, err := store.ReadTopic(ctx, "ch1.json")
			require.NoError(t, err)
			assert.Equal(t, "x", content)
		})
	}

	cfg := testConfig(t, "redis")
	_, _, err := OpenTopicStore(context.Background(), cfg)
	assert.Error(t, err)
}

func TestLifecycleManager_Wiring(t *testing.T) {
	ctx := context.Background()
	lm, err := NewLifecycleManager(ctx, testConfig(t, config.TopicBackendSQLite), zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, StateInitializing, lm.State())

	_, ok := lm.Actor("ghost")
	assert.False(t, ok)
	caller, ok := lm.Actor("slow_dac")
	require.True(t, ok)

	require.NoError(t, lm.Topics().WriteTopic(ctx, "ch1.json",
		`{"max_voltage": 5.0, "min_voltage": 0.0, "physical_index": "C"}`))

	out := caller.Call(ctx, "update",
		[]byte(`{"arguments":{"actor_channel_selected":{"String":"ch1"},"raw_value":{"u64":1000}},"parameters":{}}`))
	res, err := types.ParseResult(out)
	require.NoError(t, err)
	require.False(t, res.IsMessage(), string(out))

	require.NoError(t, lm.Runner().Apply(ctx, "slow_dac", res))

	require.NotNil(t, lm.Inspector())
	snap, ok := lm.Inspector().Snapshot("slow_dac")
	require.True(t, ok)
	code, _ := snap.Parameters.Get("dac_channel_code")
	assert.Equal(t, types.U32(2), code)

	status := lm.GetCurrentStatus()
	assert.Equal(t, "INITIALIZING", status.State)
	assert.False(t, status.Accepting)
	assert.Equal(t, []string{"slow_dac"}, status.Actors)

	require.NoError(t, lm.Shutdown(ctx))
	assert.Equal(t, StateStopped, lm.State())
	select {
	case <-lm.Done():
	default:
		t.Fatal("Done not closed after Shutdown")
	}
}
