// Package suggest is the generative suggestion collaborator: day-plan
// generation from goals, free-text habit suggestions, and the avatar
// preview. Every call fails closed: an unreachable service or a
// malformed response is a total failure, never a partial plan.
package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/twinlab/twin/internal/domain"
	"github.com/twinlab/twin/internal/infra/metrics"
)

// Client talks to an OpenAI-compatible completion endpoint.
type Client struct {
	baseURL string
	model   string
	apiKey  string
	http    *http.Client
}

// NewClient creates a suggestion client. An empty baseURL yields nil,
// which callers treat as "suggestions disabled".
func NewClient(baseURL, model, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		model:   model,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// ─── Plan generation ────────────────────────────────────────────────────────

// planResponse is the JSON shape the model is asked to produce.
type planResponse struct {
	Blocks []struct {
		Title     string `json:"title"`
		StartTime string `json:"startTime"`
		EndTime   string `json:"endTime"`
		Type      string `json:"type"`
		Reason    string `json:"reason,omitempty"`
	} `json:"blocks"`
}

// GeneratePlan asks for a day plan matching the user's goals. The
// returned blocks carry ai- ids and the model's rationale in Notes.
// No guarantee of non-overlap or full-day coverage.
func (c *Client) GeneratePlan(ctx context.Context, goals []string, preferences, locale string) ([]domain.TimeBlock, error) {
	prompt := fmt.Sprintf(
		"Build a one-day time-block plan for these goals: %s.\nPreferences: %s.\nRespond in locale %q.\n"+
			`Reply with JSON only: {"blocks":[{"title":...,"startTime":"HH:MM","endTime":"HH:MM","type":"work|rest|habit|exercise|social|health|other","reason":...}]}`,
		strings.Join(goals, "; "), preferences, locale,
	)

	content, err := c.complete(ctx, prompt)
	if err != nil {
		metrics.SuggestionRequests.WithLabelValues("plan", "error").Inc()
		return nil, err
	}

	var parsed planResponse
	if err := json.Unmarshal([]byte(extractJSON(content)), &parsed); err != nil {
		metrics.SuggestionRequests.WithLabelValues("plan", "malformed").Inc()
		return nil, fmt.Errorf("%w: %v", domain.ErrSuggestionFailed, err)
	}
	if len(parsed.Blocks) == 0 {
		metrics.SuggestionRequests.WithLabelValues("plan", "malformed").Inc()
		return nil, domain.ErrSuggestionFailed
	}

	blocks := make([]domain.TimeBlock, 0, len(parsed.Blocks))
	for _, b := range parsed.Blocks {
		if b.Title == "" || !domain.ValidHHMM(b.StartTime) || !domain.ValidHHMM(b.EndTime) {
			metrics.SuggestionRequests.WithLabelValues("plan", "malformed").Inc()
			return nil, domain.ErrSuggestionFailed
		}
		btype := domain.BlockType(b.Type)
		if !domain.ValidBlockType(btype) {
			btype = domain.BlockOther
		}
		blocks = append(blocks, domain.TimeBlock{
			ID:        domain.NewGeneratedBlockID(),
			Title:     b.Title,
			StartTime: b.StartTime,
			EndTime:   b.EndTime,
			Type:      btype,
			Notes:     b.Reason,
		})
	}

	metrics.SuggestionRequests.WithLabelValues("plan", "ok").Inc()
	return blocks, nil
}

// SuggestHabits returns free-text habit ideas for a query.
func (c *Client) SuggestHabits(ctx context.Context, query string) (string, error) {
	content, err := c.complete(ctx,
		"Suggest 3 concrete daily habits for: "+query+". Short, one per line.")
	if err != nil {
		metrics.SuggestionRequests.WithLabelValues("habits", "error").Inc()
		return "", err
	}
	metrics.SuggestionRequests.WithLabelValues("habits", "ok").Inc()
	return content, nil
}

// ─── Avatar preview ─────────────────────────────────────────────────────────

// ProfileSnapshot is what the avatar renderer sees.
type ProfileSnapshot struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
	Title string `json:"title"`
	Theme string `json:"theme"`
}

type avatarResponse struct {
	URL           string `json:"url,omitempty"`
	UseBaseAvatar bool   `json:"useBaseAvatar,omitempty"`
}

// RenderAvatarPreview returns an image URL for the profile. The
// service's useBaseAvatar sentinel, and any failure at all, resolves
// to the deterministic placeholder.
func (c *Client) RenderAvatarPreview(ctx context.Context, snap ProfileSnapshot) string {
	body, _ := json.Marshal(snap)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/avatar/preview", bytes.NewReader(body))
	if err != nil {
		return BaseAvatarURL(snap.Name)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return BaseAvatarURL(snap.Name)
	}
	defer resp.Body.Close()

	var parsed avatarResponse
	if resp.StatusCode != http.StatusOK ||
		json.NewDecoder(resp.Body).Decode(&parsed) != nil ||
		parsed.UseBaseAvatar || parsed.URL == "" {
		return BaseAvatarURL(snap.Name)
	}
	return parsed.URL
}

// BaseAvatarURL is the deterministic placeholder: the same name always
// maps to the same stock image.
func BaseAvatarURL(name string) string {
	var h uint32 = 2166136261
	for i := 0; i < len(name); i++ {
		h ^= uint32(name[i])
		h *= 16777619
	}
	return fmt.Sprintf("/static/avatars/base-%d.png", h%8)
}

// ─── Completion transport ───────────────────────────────────────────────────

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	body, _ := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrSuggestionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", domain.ErrSuggestionFailed, resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrSuggestionFailed, err)
	}
	if len(parsed.Choices) == 0 {
		return "", domain.ErrSuggestionFailed
	}
	return parsed.Choices[0].Message.Content, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// extractJSON trims the content down to the outermost JSON object, so
// fenced or prefixed model output still parses.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return s
	}
	return s[start : end+1]
}
