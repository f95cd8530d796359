package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newHFGenProvider(baseURL string) *hfProvider {
	return &hfProvider{apiKey: "test-token", baseURL: baseURL}
}

func testParams() GenerateParams {
	return GenerateParams{MaxNewTokens: 512, Temperature: 0.3, TopP: 0.9, DoSample: true}
}

func TestHFGenerate_ListResponse(t *testing.T) {
	var gotAuth string
	var gotBody hfGenerateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`[{"generated_text": "the answer"}]`))
	}))
	defer srv.Close()

	p := newHFGenProvider(srv.URL)
	got, err := p.Generate(context.Background(), "some-model", "the prompt", testParams())
	require.NoError(t, err)
	require.Equal(t, "the answer", got)

	require.Equal(t, "Bearer test-token", gotAuth)
	require.Equal(t, "the prompt", gotBody.Inputs)
	require.Equal(t, 512, gotBody.Parameters.MaxNewTokens)
	require.Equal(t, 0.3, gotBody.Parameters.Temperature)
	require.Equal(t, 0.9, gotBody.Parameters.TopP)
	require.True(t, gotBody.Parameters.DoSample)
}

func TestHFGenerate_ObjectResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"generated_text": "object answer"}`))
	}))
	defer srv.Close()

	got, err := newHFGenProvider(srv.URL).Generate(context.Background(), "m", "p", testParams())
	require.NoError(t, err)
	require.Equal(t, "object answer", got)
}

func TestHFGenerate_StripsEchoedPrompt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req hfGenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		resp := []map[string]string{{"generated_text": req.Inputs + " continuation text"}}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	got, err := newHFGenProvider(srv.URL).Generate(context.Background(), "m", "<s>[INST] question [/INST]", testParams())
	require.NoError(t, err)
	require.Equal(t, "continuation text", got)
}

func TestHFGenerate_UnexpectedShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty list", body: `[]`},
		{name: "empty object", body: `{}`},
		{name: "null", body: `null`},
		{name: "bare string", body: `"text"`},
		{name: "list without generated_text", body: `[{"foo": "bar"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newHFGenProvider(srv.URL).Generate(context.Background(), "m", "p", testParams())
			require.Error(t, err)
			require.Contains(t, err.Error(), "unexpected response format")
		})
	}
}

func TestHFGenerate_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error": "model loading"}`))
	}))
	defer srv.Close()

	_, err := newHFGenProvider(srv.URL).Generate(context.Background(), "m", "p", testParams())
	require.Error(t, err)
	require.Contains(t, err.Error(), "503")
}

func TestHFGenerate_MissingAPIKey(t *testing.T) {
	p := &hfProvider{baseURL: "http://127.0.0.1:1"}
	_, err := p.Generate(context.Background(), "m", "p", testParams())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestHFEmbed_BatchShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req hfEmbedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, []string{"some text"}, req.Inputs)
		_, _ = w.Write([]byte(`[[0.1, 0.2, 0.3]]`))
	}))
	defer srv.Close()

	p := &hfEmbedProvider{hfProvider{apiKey: "k", baseURL: srv.URL}}
	got, err := p.Embed(context.Background(), "m", "some text", "RETRIEVAL_QUERY")
	require.NoError(t, err)
	require.Equal(t, []float32{0.1, 0.2, 0.3}, got)
}

func TestHFEmbed_FlatShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[0.5, 0.6]`))
	}))
	defer srv.Close()

	p := &hfEmbedProvider{hfProvider{apiKey: "k", baseURL: srv.URL}}
	got, err := p.Embed(context.Background(), "m", "text", "RETRIEVAL_DOCUMENT")
	require.NoError(t, err)
	require.Equal(t, []float32{0.5, 0.6}, got)
}

func TestHFEmbed_UnexpectedShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"embeddings": [1, 2]}`))
	}))
	defer srv.Close()

	p := &hfEmbedProvider{hfProvider{apiKey: "k", baseURL: srv.URL}}
	_, err := p.Embed(context.Background(), "m", "text", "RETRIEVAL_QUERY")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unexpected response format")
}

func TestProviderRegistry(t *testing.T) {
	p, err := NewProvider("huggingface", map[string]interface{}{"api_key": "k"})
	require.NoError(t, err)
	require.Equal(t, "huggingface", p.Name())

	_, err = NewProvider("unknown", nil)
	require.Error(t, err)

	e, err := NewEmbedProvider("HuggingFace", map[string]interface{}{"api_key": "k"})
	require.NoError(t, err)
	require.Equal(t, "huggingface", e.Name())
}
