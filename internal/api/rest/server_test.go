package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/KevinKickass/OpenDACCore/internal/config"
	"github.com/KevinKickass/OpenDACCore/internal/dac"
	"github.com/KevinKickass/OpenDACCore/internal/dispatch"
	"github.com/KevinKickass/OpenDACCore/internal/host"
	"github.com/KevinKickass/OpenDACCore/internal/interfaces"
	"github.com/KevinKickass/OpenDACCore/internal/notify"
	"github.com/KevinKickass/OpenDACCore/internal/topic"
	"github.com/KevinKickass/OpenDACCore/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeLifecycle struct {
	cfg        *config.Config
	store      host.TopicStore
	actor      *dac.Actor
	dispatcher *dispatch.LocalDispatcher
	runner     *dispatch.Runner
	inspect    bool
	messages   []string
}

func (f *fakeLifecycle) Config() *config.Config { return f.cfg }
func (f *fakeLifecycle) Topics() host.TopicStore { return f.store }

func (f *fakeLifecycle) Actor(name string) (dispatch.Caller, bool) {
	if name != "slow_dac" {
		return nil, false
	}
	return f.actor, true
}

func (f *fakeLifecycle) Runner() interfaces.ResultApplier { return f.runner }

func (f *fakeLifecycle) Inspector() interfaces.ActorInspector {
	if !f.inspect {
		return nil
	}
	return f.dispatcher
}

func (f *fakeLifecycle) GetCurrentStatus() interfaces.SystemStatus {
	return interfaces.SystemStatus{State: "RUNNING", Accepting: true, Actors: []string{"slow_dac"}}
}

func (f *fakeLifecycle) Shutdown(context.Context) error { return nil }

func newTestServer(t *testing.T) (*Server, *fakeLifecycle) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := topic.NewFileStore([]string{t.TempDir()})
	require.NoError(t, err)
	require.NoError(t, store.WriteTopic(context.Background(), "ch1.json",
		`{"max_voltage": 5.0, "min_voltage": 0.0, "physical_index": "A"}`))

	lm := &fakeLifecycle{
		cfg:     &config.Config{Server: config.ServerConfig{HTTPPort: 8080}},
		store:   store,
		inspect: true,
	}
	record := host.NotifierFunc(func(_ context.Context, msg string) error {
		lm.messages = append(lm.messages, msg)
		return nil
	})
	notifier := notify.Fanout{record}

	lm.actor, err = dac.NewActor(store, notifier, zap.NewNop())
	require.NoError(t, err)
	lm.dispatcher = dispatch.NewLocalDispatcher(store, zap.NewNop())
	lm.dispatcher.Register("slow_dac", lm.actor)
	lm.runner = dispatch.NewRunner(lm.dispatcher, notifier, zap.NewNop())

	return NewServer(lm, zap.NewNop(), nil), lm
}

func do(s *Server, method, path, body string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)

	w := do(s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
}

func TestRequestIDIsEchoed(t *testing.T) {
	s, _ := newTestServer(t)

	w := do(s, http.MethodGet, "/health", "", HeaderRequestID, "abc-123")
	assert.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))
}

func TestUpdateAppliesResult(t *testing.T) {
	s, lm := newTestServer(t)

	body := `{"arguments":{"actor_channel_selected":{"String":"ch1"},"voltage_value":{"f64":2.5}},"parameters":{}}`
	w := do(s, http.MethodPost, "/api/v1/actors/slow_dac/update", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.JSONEq(t,
		`{"command":{"u32":3},"dac_channel_code":{"u32":0},"tx_enable":{"bool":true},"value":{"u32":32768}}`,
		string(res["parameters"]))
	assert.JSONEq(t,
		`[{"actor_name":"slow_dac","function":"tx_disable","parameters":{}}]`,
		string(res["followups"]))

	// the follow-up already ran against the local dispatcher
	snap, ok := lm.dispatcher.Snapshot("slow_dac")
	require.True(t, ok)
	assert.Equal(t, dispatch.TxIdle, snap.TxState)

	journal, err := lm.store.ReadTopic(context.Background(), dispatch.JournalTopic("slow_dac"))
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(journal, "\n"))
}

func TestUpdateMessageGoesToUser(t *testing.T) {
	s, lm := newTestServer(t)

	w := do(s, http.MethodPost, "/api/v1/actors/slow_dac/update", `{"arguments":{},"parameters":{}}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		`{"message":"Error - There is problem in your 'actor_channel_selected', you probably forgot it."}`,
		w.Body.String())
	assert.Equal(t, []string{"Error - There is problem in your 'actor_channel_selected', you probably forgot it."}, lm.messages)
}

func TestTxDisable(t *testing.T) {
	s, _ := newTestServer(t)

	w := do(s, http.MethodPost, "/api/v1/actors/slow_dac/tx_disable",
		`{"arguments":{},"parameters":{"value":{"u32":7},"tx_enable":{"bool":true}}}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"parameters":{"tx_enable":{"bool":false},"value":{"u32":7}}}`, w.Body.String())
}

func TestInvokeRejects(t *testing.T) {
	s, _ := newTestServer(t)

	w := do(s, http.MethodPost, "/api/v1/actors/ghost/update", `{}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(s, http.MethodPost, "/api/v1/actors/slow_dac/update", `{"arguments":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetActor(t *testing.T) {
	s, lm := newTestServer(t)

	w := do(s, http.MethodGet, "/api/v1/actors/slow_dac", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"actor":"slow_dac","parameters":{},"tx_state":"idle"}`, w.Body.String())

	w = do(s, http.MethodGet, "/api/v1/actors/ghost", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	lm.inspect = false
	w = do(s, http.MethodGet, "/api/v1/actors/slow_dac", "")
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestTopics(t *testing.T) {
	s, _ := newTestServer(t)

	w := do(s, http.MethodGet, "/api/v1/topics/ch1.json", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"physical_index": "A"`)

	w = do(s, http.MethodPut, "/api/v1/topics/notes", "first")
	require.Equal(t, http.StatusNoContent, w.Code)
	w = do(s, http.MethodPost, "/api/v1/topics/notes/append", " second")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(s, http.MethodGet, "/api/v1/topics/notes", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "first second", w.Body.String())

	w = do(s, http.MethodGet, "/api/v1/topics/missing.json", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSystemStatus(t *testing.T) {
	s, _ := newTestServer(t)

	w := do(s, http.MethodGet, "/api/v1/system/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"RUNNING"`)
}

func TestSystemStatusIncludesSnapshots(t *testing.T) {
	s, _ := newTestServer(t)

	body := `{"arguments":{"actor_channel_selected":{"String":"ch1"},"raw_value":{"u64":7}},"parameters":{}}`
	w := do(s, http.MethodPost, "/api/v1/actors/slow_dac/update", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(s, http.MethodGet, "/api/v1/system/status", "")
	require.Equal(t, http.StatusOK, w.Code)

	var status struct {
		State       string                   `json:"state"`
		LiveClients int                      `json:"live_clients"`
		Snapshots   []dispatch.ActorSnapshot `json:"snapshots"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "RUNNING", status.State)
	assert.Zero(t, status.LiveClients)
	require.Len(t, status.Snapshots, 1)
	assert.Equal(t, "slow_dac", status.Snapshots[0].Actor)
	assert.Equal(t, dispatch.TxIdle, status.Snapshots[0].TxState)

	value, ok := status.Snapshots[0].Parameters.Get("value")
	require.True(t, ok)
	assert.Equal(t, types.U32(7), value)
}
