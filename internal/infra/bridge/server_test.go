package bridge_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ChrisRuff/obsidian-localai/internal/application"
	"github.com/ChrisRuff/obsidian-localai/internal/infra/bridge"
	"github.com/ChrisRuff/obsidian-localai/internal/infra/localai"
	"github.com/ChrisRuff/obsidian-localai/internal/infra/vault"
	"github.com/ChrisRuff/obsidian-localai/internal/settings"
)

type recordingNotifier struct {
	messages []string
}

func (r *recordingNotifier) Notify(_ context.Context, message string) error {
	r.messages = append(r.messages, message)
	return nil
}

type env struct {
	handler   http.Handler
	upstream  *httptest.Server
	uploads   atomic.Int32
	lastAudio []byte
	notifier  *recordingNotifier
	failNext  atomic.Bool
}

func newEnv(t *testing.T, cfg bridge.Config) *env {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	e := &env{notifier: &recordingNotifier{}}

	e.upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if e.failNext.Swap(false) {
			http.Error(w, "model not loaded", http.StatusInternalServerError)
			return
		}
		switch r.URL.Path {
		case "/v1/audio/transcriptions":
			e.uploads.Add(1)
			file, _, err := r.FormFile("file")
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			e.lastAudio, _ = io.ReadAll(file)
			io.WriteString(w, `{"segments":[{"start":1000000000,"text":"hello"}]}`)
		case "/v1/chat/completions":
			io.WriteString(w, `{"choices":[{"message":{"content":"summary"}}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(e.upstream.Close)

	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "audio.mp3"), []byte("ID3\x00audio"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	index := vault.NewIndex(root, logger)
	if err := index.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	store := settings.NewMemoryStore()
	seed := settings.Defaults()
	seed.ServerURL = e.upstream.URL
	if err := store.Save(seed); err != nil {
		t.Fatalf("Save: %v", err)
	}
	holder := settings.NewHolder(store)

	client := localai.NewClient(logger)
	plugin := application.NewPlugin(holder, index, client, client, e.notifier, nil, logger)
	if err := plugin.Activate(context.Background()); err != nil {
		t.Fatalf("Activate: %v", err)
	}

	server := bridge.NewServer(cfg, plugin, settings.NewPanel(holder), nil, nil, logger)
	e.handler = server.Handler()
	return e
}

func (e *env) do(method, path string, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decoding %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestServer_TranscribeCommand(t *testing.T) {
	e := newEnv(t, bridge.Config{})

	rec := e.do(http.MethodPost, "/commands/transcribe-selected",
		`{"selection":"![[audio.mp3]]","from":{"line":3,"ch":0},"to":{"line":3,"ch":14}}`, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	out := decode(t, rec)
	if out["changed"] != true {
		t.Errorf("changed: got %v", out["changed"])
	}
	if out["text"] != "![[audio.mp3]]\n\\[1 s\\]: hello" {
		t.Errorf("text: got %q", out["text"])
	}
	if e.uploads.Load() != 1 {
		t.Errorf("uploads: got %d, want 1", e.uploads.Load())
	}
	if !bytes.Equal(e.lastAudio, []byte("ID3\x00audio")) {
		t.Errorf("audio: got %q", e.lastAudio)
	}
}

func TestServer_TranscribeNoEmbedIsNoop(t *testing.T) {
	e := newEnv(t, bridge.Config{})

	rec := e.do(http.MethodPost, "/commands/transcribe-selected", `{"selection":"plain text"}`, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if decode(t, rec)["changed"] != false {
		t.Error("expected changed=false")
	}
	if e.uploads.Load() != 0 {
		t.Errorf("uploads: got %d, want 0", e.uploads.Load())
	}
}

func TestServer_SummarizeCommand(t *testing.T) {
	e := newEnv(t, bridge.Config{})

	rec := e.do(http.MethodPost, "/commands/summarize-selected", `{"selection":"hello world"}`, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	if got := decode(t, rec)["text"]; got != "hello world\nsummary" {
		t.Errorf("text: got %q", got)
	}
}

func TestServer_UpstreamFailure(t *testing.T) {
	e := newEnv(t, bridge.Config{})
	e.failNext.Store(true)

	rec := e.do(http.MethodPost, "/commands/transcribe-selected", `{"selection":"![[audio.mp3]]"}`, nil)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status: got %d", rec.Code)
	}
	if len(e.notifier.messages) != 1 || e.notifier.messages[0] != "Error transcribing audio" {
		t.Errorf("notifications: %v", e.notifier.messages)
	}
}

func TestServer_UnknownCommand(t *testing.T) {
	e := newEnv(t, bridge.Config{})

	rec := e.do(http.MethodPost, "/commands/open-sample-modal", `{}`, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d", rec.Code)
	}

	rec = e.do(http.MethodPost, "/commands/summarize-selected", `not json`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad body status: got %d", rec.Code)
	}
}

func TestServer_ListCommands(t *testing.T) {
	e := newEnv(t, bridge.Config{})

	rec := e.do(http.MethodGet, "/commands", "", nil)
	var cmds []map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &cmds); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(cmds) != 2 || cmds[1]["name"] != "Transcribe Selected" {
		t.Errorf("commands: %v", cmds)
	}
}

func TestServer_SettingsPanel(t *testing.T) {
	e := newEnv(t, bridge.Config{})

	rec := e.do(http.MethodPut, "/settings/text_generation_model", "llama3", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status: got %d", rec.Code)
	}

	rec = e.do(http.MethodGet, "/settings", "", nil)
	var fields []settings.Field
	if err := json.Unmarshal(rec.Body.Bytes(), &fields); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if fields[4].Value != "llama3" {
		t.Errorf("model field: got %q", fields[4].Value)
	}

	rec = e.do(http.MethodPut, "/settings/api_key", "secret", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown key status: got %d", rec.Code)
	}
}

func TestServer_AuthToken(t *testing.T) {
	token := "test-secret-token-123"
	e := newEnv(t, bridge.Config{AuthToken: token})

	tests := []struct {
		name       string
		path       string
		header     map[string]string
		wantStatus int
	}{
		{"valid header", "/commands", map[string]string{"X-Auth-Token": token}, http.StatusOK},
		{"valid query", "/commands?token=" + token, nil, http.StatusOK},
		{"wrong token", "/commands", map[string]string{"X-Auth-Token": "nope"}, http.StatusUnauthorized},
		{"missing token", "/settings", nil, http.StatusUnauthorized},
		{"health is open", "/health", nil, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(http.MethodGet, tt.path, "", tt.header)
			if rec.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestServer_RateLimit(t *testing.T) {
	e := newEnv(t, bridge.Config{RateLimitPerMinute: 2})

	var codes []int
	for i := 0; i < 3; i++ {
		codes = append(codes, e.do(http.MethodGet, "/commands", "", nil).Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes: %v", codes)
	}
}

func TestServer_StartServesOnBoundAddr(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	holder := settings.NewHolder(settings.NewMemoryStore())
	plugin := application.NewPlugin(holder, vault.NewIndex(t.TempDir(), logger), nil, nil, &recordingNotifier{}, nil, logger)

	server := bridge.NewServer(bridge.Config{Addr: "127.0.0.1:0"}, plugin, settings.NewPanel(holder), nil, nil, logger)
	if err := server.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { server.Stop() })

	resp, err := http.Get("http://" + server.Addr() + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status: got %d", resp.StatusCode)
	}
}

func TestServer_StartReturnsBindError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	holder := settings.NewHolder(settings.NewMemoryStore())
	plugin := application.NewPlugin(holder, vault.NewIndex(t.TempDir(), logger), nil, nil, &recordingNotifier{}, nil, logger)

	taken, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer taken.Close()

	server := bridge.NewServer(bridge.Config{Addr: taken.Addr().String()}, plugin, settings.NewPanel(holder), nil, nil, logger)
	if err := server.Start(context.Background()); err == nil {
		server.Stop()
		t.Fatal("expected error for an address already in use")
	}
	if server.Addr() != "" {
		t.Errorf("addr set after failed start: %q", server.Addr())
	}
}
