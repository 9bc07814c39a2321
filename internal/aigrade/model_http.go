package aigrade

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPModel posts prompts to a completion endpoint. The wire shape is
// the minimal {model, system, prompt} -> {completion} contract; any
// gateway fronting an actual LLM can satisfy it.
type HTTPModel struct {
	URL    string
	Model  string
	APIKey string
	Client *http.Client
}

func NewHTTPModel(url, model, apiKey string) *HTTPModel {
	return &HTTPModel{
		URL:    url,
		Model:  model,
		APIKey: apiKey,
		Client: &http.Client{Timeout: 60 * time.Second},
	}
}

func (m *HTTPModel) Complete(ctx context.Context, system, user string) (string, error) {
	body, err := json.Marshal(map[string]string{
		"model":  m.Model,
		"system": system,
		"prompt": user,
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.URL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if m.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+m.APIKey)
	}
	resp, err := m.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("completion endpoint returned %d: %s", resp.StatusCode, snippet)
	}
	var out struct {
		Completion string `json:"completion"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Completion, nil
}
