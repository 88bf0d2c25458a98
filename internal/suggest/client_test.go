package suggest_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/twinlab/twin/internal/domain"
	"github.com/twinlab/twin/internal/suggest"
)

// fakeModel is an httptest server speaking the chat-completions shape,
// always answering with the given content.
func fakeModel(t *testing.T, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewClient_EmptyURLDisabled(t *testing.T) {
	if c := suggest.NewClient("", "m", "", time.Second); c != nil {
		t.Error("empty URL should yield nil client")
	}
}

func TestGeneratePlan(t *testing.T) {
	srv := fakeModel(t, `Here is your plan:
{"blocks":[
  {"title":"Deep work","startTime":"09:00","endTime":"11:00","type":"work","reason":"morning focus"},
  {"title":"Walk","startTime":"11:00","endTime":"11:30","type":"exercise"}
]}`)
	c := suggest.NewClient(srv.URL, "test-model", "", time.Second)

	blocks, err := c.GeneratePlan(context.Background(), []string{"ship the report"}, "", "en")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if !strings.HasPrefix(blocks[0].ID, "ai-") {
		t.Errorf("generated ids carry the ai- prefix, got %q", blocks[0].ID)
	}
	if blocks[0].Notes != "morning focus" {
		t.Errorf("rationale should land in Notes, got %q", blocks[0].Notes)
	}
	if blocks[0].Type != domain.BlockWork {
		t.Errorf("expected work type, got %q", blocks[0].Type)
	}
}

func TestGeneratePlan_UnknownTypeFallsToOther(t *testing.T) {
	srv := fakeModel(t, `{"blocks":[{"title":"Nap","startTime":"14:00","endTime":"14:30","type":"siesta"}]}`)
	c := suggest.NewClient(srv.URL, "test-model", "", time.Second)

	blocks, err := c.GeneratePlan(context.Background(), []string{"rest"}, "", "en")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if blocks[0].Type != domain.BlockOther {
		t.Errorf("unknown type should map to other, got %q", blocks[0].Type)
	}
}

func TestGeneratePlan_FailsClosed(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"not json", "Sure! I suggest starting with a walk."},
		{"empty blocks", `{"blocks":[]}`},
		{"missing title", `{"blocks":[{"startTime":"09:00","endTime":"10:00","type":"work"}]}`},
		{"bad time", `{"blocks":[{"title":"X","startTime":"9am","endTime":"10:00","type":"work"}]}`},
	}
	for _, tt := range cases {
		srv := fakeModel(t, tt.content)
		c := suggest.NewClient(srv.URL, "test-model", "", time.Second)

		_, err := c.GeneratePlan(context.Background(), []string{"anything"}, "", "en")
		if !errors.Is(err, domain.ErrSuggestionFailed) {
			t.Errorf("%s: expected ErrSuggestionFailed, got %v", tt.name, err)
		}
	}
}

func TestGeneratePlan_ServiceDown(t *testing.T) {
	srv := fakeModel(t, "{}")
	c := suggest.NewClient(srv.URL, "test-model", "", time.Second)
	srv.Close()

	_, err := c.GeneratePlan(context.Background(), []string{"anything"}, "", "en")
	if !errors.Is(err, domain.ErrSuggestionFailed) {
		t.Errorf("expected ErrSuggestionFailed on dead service, got %v", err)
	}
}

func TestSuggestHabits(t *testing.T) {
	srv := fakeModel(t, "1. Stretch\n2. Journal\n3. Walk")
	c := suggest.NewClient(srv.URL, "test-model", "", time.Second)

	got, err := c.SuggestHabits(context.Background(), "morning energy")
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if !strings.Contains(got, "Journal") {
		t.Errorf("unexpected suggestion text: %q", got)
	}
}

func TestRenderAvatarPreview_UseBaseSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"useBaseAvatar": true})
	}))
	defer srv.Close()
	c := suggest.NewClient(srv.URL, "test-model", "", time.Second)

	got := c.RenderAvatarPreview(context.Background(), suggest.ProfileSnapshot{Name: "Ada"})
	if got != suggest.BaseAvatarURL("Ada") {
		t.Errorf("sentinel should resolve to the placeholder, got %q", got)
	}
}

func TestRenderAvatarPreview_FailureFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	c := suggest.NewClient(srv.URL, "test-model", "", time.Second)

	got := c.RenderAvatarPreview(context.Background(), suggest.ProfileSnapshot{Name: "Ada"})
	if got != suggest.BaseAvatarURL("Ada") {
		t.Errorf("failure should resolve to the placeholder, got %q", got)
	}
}

func TestBaseAvatarURL_Deterministic(t *testing.T) {
	a := suggest.BaseAvatarURL("Ada")
	b := suggest.BaseAvatarURL("Ada")
	if a != b {
		t.Errorf("same name should map to the same image: %q vs %q", a, b)
	}
	if !strings.HasPrefix(a, "/static/avatars/base-") {
		t.Errorf("unexpected placeholder path: %q", a)
	}
}
