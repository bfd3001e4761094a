package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glycoanalyzer/internal/shared/config"
	"glycoanalyzer/internal/shared/errors"
	"glycoanalyzer/internal/shared/logger"
)

// =============================================================================
// ExtractValue
// =============================================================================

func TestExtractValue(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    float64
		wantErr bool
	}{
		{"bare number", "1.20", 1.20, false},
		{"labelled reply", "Valeur: 1.20 g/L", 1.20, false},
		{"integer", "1", 1.0, false},
		{"leading text", "La glycémie est 0.85", 0.85, false},
		{"no number", "erreur", 0, true},
		{"empty", "", 0, true},
		{"only punctuation", "...", 0, true},
		{"two numbers merge digits", "0.70", 0.70, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractValue(tt.reply)
			if tt.wantErr {
				require.Error(t, err)
				cErr := errors.GetClassifyError(err)
				require.NotNil(t, cErr)
				assert.Equal(t, errors.ClassifyParseError, cErr.Kind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// =============================================================================
// VisionClassifier against a stub endpoint
// =============================================================================

func newStubClassifier(t *testing.T, handler http.HandlerFunc) *VisionClassifier {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewVisionClassifier(&config.ClassifierConfig{
		APIKey:         "test-key",
		BaseURL:        server.URL,
		Model:          "gpt-4-vision-preview",
		TimeoutSeconds: 5,
	}, logger.NewLogger())
}

func chatReply(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
}

func TestAnalyzeSuccess(t *testing.T) {
	c := newStubClassifier(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4-vision-preview", req.Model)
		assert.Equal(t, maxReplyTokens, req.MaxTokens)
		require.Len(t, req.Messages, 1)
		require.Len(t, req.Messages[0].Content, 2)
		assert.Equal(t, extractionPrompt, req.Messages[0].Content[0].Text)
		assert.Contains(t, req.Messages[0].Content[1].ImageURL.URL, "data:image/jpeg;base64,")

		_ = json.NewEncoder(w).Encode(chatReply("1.20"))
	})

	value, err := c.Analyze(context.Background(), []byte("photo-bytes"))
	require.NoError(t, err)
	assert.Equal(t, 1.20, value)
}

func TestAnalyzeVerboseReplyStillParses(t *testing.T) {
	c := newStubClassifier(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(chatReply("Valeur: 0.95 g/L"))
	})

	value, err := c.Analyze(context.Background(), []byte("photo"))
	require.NoError(t, err)
	assert.Equal(t, 0.95, value)
}

func TestAnalyzeParseError(t *testing.T) {
	c := newStubClassifier(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(chatReply("erreur"))
	})

	_, err := c.Analyze(context.Background(), []byte("photo"))
	require.Error(t, err)
	assert.Equal(t, errors.ClassifyParseError, errors.GetClassifyError(err).Kind)
}

func TestAnalyzeServiceError(t *testing.T) {
	c := newStubClassifier(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"upstream exploded"}}`))
	})

	_, err := c.Analyze(context.Background(), []byte("photo"))
	require.Error(t, err)
	assert.Equal(t, errors.ClassifyServiceError, errors.GetClassifyError(err).Kind)
}

func TestAnalyzeTimeoutIsServiceError(t *testing.T) {
	c := newStubClassifier(t, func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_ = json.NewEncoder(w).Encode(chatReply("1.00"))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Analyze(ctx, []byte("photo"))
	require.Error(t, err)
	assert.Equal(t, errors.ClassifyServiceError, errors.GetClassifyError(err).Kind)
}

func TestAnalyzeEmptyChoices(t *testing.T) {
	c := newStubClassifier(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := c.Analyze(context.Background(), []byte("photo"))
	require.Error(t, err)
	assert.Equal(t, errors.ClassifyServiceError, errors.GetClassifyError(err).Kind)
}

// =============================================================================
// FakeClassifier
// =============================================================================

func TestFakeClassifierScript(t *testing.T) {
	fake := NewFakeClassifier(
		FakeReply{Value: 0.65},
		FakeReply{Err: errors.NewParseError("erreur")},
		FakeReply{Value: 1.20},
	)

	v, err := fake.Analyze(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0.65, v)

	_, err = fake.Analyze(context.Background(), nil)
	assert.Error(t, err)

	v, err = fake.Analyze(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1.20, v)

	// Exhausted script refuses further calls.
	_, err = fake.Analyze(context.Background(), nil)
	assert.Error(t, err)
	assert.Equal(t, 4, fake.Calls())
}
