package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

const (
	defaultHFInferenceBaseURL = "https://api-inference.huggingface.co/models"
	defaultHFPipelineBaseURL  = "https://api-inference.huggingface.co/pipeline/feature-extraction"
)

type hfConfig struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url"`
}

type hfProvider struct {
	apiKey  string
	baseURL string
}

type hfGenerateRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	MaxNewTokens int     `json:"max_new_tokens"`
	Temperature  float64 `json:"temperature"`
	TopP         float64 `json:"top_p"`
	DoSample     bool    `json:"do_sample"`
}

// completion is the normalized form of a generation response. The
// inference API returns either a list of {generated_text} objects or a
// single such object; both collapse into this one value at the HTTP
// boundary so nothing downstream inspects raw shapes.
type completion struct {
	text string
}

type hfGeneratedText struct {
	GeneratedText *string `json:"generated_text"`
}

func completionFromList(raw json.RawMessage) (completion, bool) {
	var items []hfGeneratedText
	if err := json.Unmarshal(raw, &items); err != nil {
		return completion{}, false
	}
	if len(items) == 0 || items[0].GeneratedText == nil {
		return completion{}, false
	}
	return completion{text: *items[0].GeneratedText}, true
}

func completionFromObject(raw json.RawMessage) (completion, bool) {
	var item hfGeneratedText
	if err := json.Unmarshal(raw, &item); err != nil {
		return completion{}, false
	}
	if item.GeneratedText == nil {
		return completion{}, false
	}
	return completion{text: *item.GeneratedText}, true
}

func normalizeCompletion(raw json.RawMessage) (completion, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 {
		switch trimmed[0] {
		case '[':
			if c, ok := completionFromList(trimmed); ok {
				return c, nil
			}
		case '{':
			if c, ok := completionFromObject(trimmed); ok {
				return c, nil
			}
		}
	}
	return completion{}, fmt.Errorf("unexpected response format from generation api")
}

func (p *hfProvider) Name() string {
	return "huggingface"
}

func (p *hfProvider) Generate(ctx context.Context, model string, prompt string, params GenerateParams) (string, error) {
	if p.apiKey == "" {
		return "", ErrUnavailable
	}
	endpoint := strings.TrimRight(p.baseURL, "/") + "/" + model
	reqBody := hfGenerateRequest{
		Inputs: prompt,
		Parameters: hfParameters{
			MaxNewTokens: params.MaxNewTokens,
			Temperature:  params.Temperature,
			TopP:         params.TopP,
			DoSample:     params.DoSample,
		},
	}
	raw, err := p.post(ctx, endpoint, reqBody)
	if err != nil {
		return "", err
	}
	c, err := normalizeCompletion(raw)
	if err != nil {
		return "", err
	}
	// The API may echo prompt+continuation; keep only the continuation.
	return strings.TrimSpace(strings.ReplaceAll(c.text, prompt, "")), nil
}

func (p *hfProvider) post(ctx context.Context, endpoint string, body interface{}) (json.RawMessage, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("huggingface request failed: %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}
	return payload, nil
}

type hfEmbedProvider struct {
	hfProvider
}

type hfEmbedRequest struct {
	Inputs []string `json:"inputs"`
}

func (p *hfEmbedProvider) Embed(ctx context.Context, model string, text string, taskType string) ([]float32, error) {
	_ = taskType // the feature-extraction pipeline has no task hint
	if p.apiKey == "" {
		return nil, ErrUnavailable
	}
	endpoint := strings.TrimRight(p.baseURL, "/") + "/" + model
	raw, err := p.post(ctx, endpoint, hfEmbedRequest{Inputs: []string{text}})
	if err != nil {
		return nil, err
	}
	// The pipeline answers [[...]] for a batch of one, or [...] for some
	// sentence-transformer deployments.
	var batch [][]float32
	if err := json.Unmarshal(raw, &batch); err == nil && len(batch) > 0 && len(batch[0]) > 0 {
		return batch[0], nil
	}
	var single []float32
	if err := json.Unmarshal(raw, &single); err == nil && len(single) > 0 {
		return single, nil
	}
	return nil, fmt.Errorf("unexpected response format from embedding api")
}

func createHFFactory(args interface{}) (IGenProvider, error) {
	cfg := &hfConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		apiKey = strings.TrimSpace(os.Getenv("HF_TOKEN"))
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultHFInferenceBaseURL
	}
	return &hfProvider{apiKey: apiKey, baseURL: baseURL}, nil
}

func createHFEmbedFactory(args interface{}) (IEmbedProvider, error) {
	cfg := &hfConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		apiKey = strings.TrimSpace(os.Getenv("HF_TOKEN"))
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultHFPipelineBaseURL
	}
	return &hfEmbedProvider{hfProvider{apiKey: apiKey, baseURL: baseURL}}, nil
}

func init() {
	Register("huggingface", createHFFactory)
	RegisterEmbed("huggingface", createHFEmbedFactory)
}
