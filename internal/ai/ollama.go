package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// OllamaGenerator talks to Ollama's /api/generate endpoint with a single
// prompt string. The streaming response is newline-delimited JSON, one
// fragment per line in the "response" field.
type OllamaGenerator struct {
	BaseURL string
	Model   string
	Client  *http.Client
}

func NewOllamaGenerator(baseURL, model string) *OllamaGenerator {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "phi"
	}
	return &OllamaGenerator{
		BaseURL: baseURL,
		Model:   model,
		// No global timeout: generation can run long, ctx controls it.
		Client: &http.Client{},
	}
}

type ollamaGenerateReq struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResp struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

func (g *OllamaGenerator) post(ctx context.Context, stream bool, prompt string) (*http.Response, error) {
	b, err := json.Marshal(ollamaGenerateReq{Model: g.Model, Prompt: prompt, Stream: stream})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	url := fmt.Sprintf("%s/api/generate", g.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	return resp, nil
}

// Generate runs one non-streaming completion.
func (g *OllamaGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.post(ctx, false, prompt)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var decoded ollamaGenerateResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", err
	}
	if decoded.Error != "" {
		return "", errors.New(decoded.Error)
	}
	return decoded.Response, nil
}

// GenerateStream opens a streaming completion and forwards each fragment as
// it arrives. Lines that fail to parse as JSON are skipped, never fatal.
// Both channels are closed when the upstream stream ends.
func (g *OllamaGenerator) GenerateStream(ctx context.Context, prompt string) (<-chan string, <-chan error) {
	fragments := make(chan string, 16)
	errs := make(chan error, 1)

	go func() {
		defer close(fragments)
		defer close(errs)

		resp, err := g.post(ctx, true, prompt)
		if err != nil {
			errs <- err
			return
		}
		defer resp.Body.Close()

		sc := bufio.NewScanner(resp.Body)
		// Long JSON lines need a bigger buffer than the scanner default.
		buf := make([]byte, 0, 64*1024)
		sc.Buffer(buf, 2*1024*1024)

		for sc.Scan() {
			line := sc.Bytes()
			if len(line) == 0 {
				continue
			}

			var decoded ollamaGenerateResp
			if err := json.Unmarshal(line, &decoded); err != nil {
				// Malformed record: skip it, keep the stream alive.
				continue
			}

			if decoded.Response != "" {
				select {
				case fragments <- decoded.Response:
				case <-ctx.Done():
					return
				}
			}

			if decoded.Done {
				return
			}
		}
		// A read error here means the upstream connection closed mid-stream;
		// whatever arrived before it still counts, so it is not surfaced.
	}()

	return fragments, errs
}

var _ Generator = (*OllamaGenerator)(nil)
var _ StreamGenerator = (*OllamaGenerator)(nil)
