package out

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/ggonzalez94/near-cli/internal/config"
	"github.com/ggonzalez94/near-cli/internal/model"
)

func TestRenderJSONSelectResultsOnly(t *testing.T) {
	env := model.Envelope{
		Version: "v1",
		Success: true,
		Data:    []map[string]any{{"id": "tx_1", "status": "signed"}},
		Meta:    model.EnvelopeMeta{Timestamp: time.Now()},
	}
	settings := config.Settings{OutputMode: "json", SelectFields: []string{"id"}, ResultsOnly: true}
	var buf bytes.Buffer
	if err := Render(&buf, env, settings); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	var out []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("json decode failed: %v", err)
	}
	if len(out) != 1 || out[0]["id"] != "tx_1" {
		t.Fatalf("unexpected output: %s", buf.String())
	}
	if _, ok := out[0]["status"]; ok {
		t.Fatalf("field projection failed: %s", buf.String())
	}
}

func TestRenderJSONEnvelope(t *testing.T) {
	env := model.Envelope{Version: "v1", Success: true, Data: map[string]any{"nonce": 3}, Meta: model.EnvelopeMeta{Command: "view nonce"}}
	var buf bytes.Buffer
	if err := Render(&buf, env, config.Settings{OutputMode: "json"}); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("json decode failed: %v", err)
	}
	if out["success"] != true || out["meta"].(map[string]any)["command"] != "view nonce" {
		t.Fatalf("unexpected envelope: %s", buf.String())
	}
}

func TestRenderPlainData(t *testing.T) {
	env := model.Envelope{
		Version: "v1",
		Success: true,
		Data:    []map[string]any{{"account_id": "alice.testnet", "nonce": 42}},
	}
	var buf bytes.Buffer
	if err := Render(&buf, env, config.Settings{OutputMode: "plain"}); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "account_id=alice.testnet nonce=42" {
		t.Fatalf("unexpected plain output: %s", got)
	}
}

func TestRenderPlainError(t *testing.T) {
	env := model.Envelope{
		Success: false,
		Error:   &model.ErrorBody{Code: 2, Type: "usage_error", Message: "missing sender"},
		Meta:    model.EnvelopeMeta{Command: "construct-transaction"},
	}
	var buf bytes.Buffer
	if err := Render(&buf, env, config.Settings{OutputMode: "plain", ResultsOnly: true}); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if got := buf.String(); got != "Error: missing sender\n" {
		t.Fatalf("unexpected plain error: %q", got)
	}
}

func TestRenderJSONErrorIgnoresResultsOnly(t *testing.T) {
	env := model.Envelope{
		Success: false,
		Error:   &model.ErrorBody{Code: 16, Type: "blocked", Message: "blocked"},
	}
	var buf bytes.Buffer
	if err := Render(&buf, env, config.Settings{OutputMode: "json", ResultsOnly: true}); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("json decode failed: %v", err)
	}
	if out["success"] != false || out["error"] == nil {
		t.Fatalf("expected the error envelope, got %s", buf.String())
	}
}

func TestRenderPlainNestedValues(t *testing.T) {
	env := model.Envelope{
		Success: true,
		Data:    map[string]any{"id": "tx_1", "actions": []string{"AddKey"}, "hash": nil},
	}
	var buf bytes.Buffer
	if err := Render(&buf, env, config.Settings{OutputMode: "plain"}); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != `actions=["AddKey"] hash=null id=tx_1` {
		t.Fatalf("unexpected plain output: %s", got)
	}
}
