package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taxproc/tax-document-processor/dto"
)

const openAIEndpoint = "https://api.openai.com/v1/chat/completions"

// OpenAIClient extracts tax-form field values from page text using the
// OpenAI Chat Completions API.
type OpenAIClient struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

// NewOpenAIClient creates a field-extraction client.
func NewOpenAIClient(apiKey, model string, timeout time.Duration, logger *slog.Logger) *OpenAIClient {
	return newOpenAIClient(apiKey, model, timeout, openAIEndpoint, logger)
}

// NewOpenAIClientWithEndpoint creates a client pointing at a custom API
// endpoint (for testing).
func NewOpenAIClientWithEndpoint(apiKey, model string, timeout time.Duration, endpoint string, logger *slog.Logger) *OpenAIClient {
	return newOpenAIClient(apiKey, model, timeout, endpoint, logger)
}

func newOpenAIClient(apiKey, model string, timeout time.Duration, endpoint string, logger *slog.Logger) *OpenAIClient {
	if model == "" {
		model = "gpt-4o"
	}
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OpenAIClient{
		apiKey:   apiKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// apiResponse models the OpenAI Chat Completions API response.
type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// ExtractFields asks the model to fill every requested field label from the
// given page context. Values it cannot find come back as the "N/A" sentinel.
func (c *OpenAIClient) ExtractFields(ctx context.Context, docType dto.DocumentType, defs []dto.FieldDefinition, contextText string) (map[string]string, error) {
	labels := make([]string, 0, len(defs))
	var instructions strings.Builder
	for _, def := range defs {
		labels = append(labels, def.Label)
		fmt.Fprintf(&instructions, "- **%s**: %s\n", def.Label, def.Hint)
	}
	labelJSON, err := json.MarshalIndent(labels, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling field labels: %w", err)
	}

	systemPrompt := fmt.Sprintf(
		"You are an expert AI assistant extracting structured data from US tax forms. "+
			"The current document type is **%s**. Use these definitions:\n%s"+
			"Return one JSON object. If a value is not found, use 'N/A'.",
		docType, instructions.String())
	userPrompt := fmt.Sprintf(
		"Based on this context from a %s, extract values for these fields:\n\nCONTEXT:\n---\n%s\n---\n\nFIELDS_TO_EXTRACT:\n%s",
		docType, contextText, labelJSON)

	reqBody := map[string]interface{}{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userPrompt},
		},
		"response_format": map[string]string{"type": "json_object"},
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	reqID := uuid.New().String()
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	c.logger.Info("openai.extract.request", "req_id", reqID, "doc_type", docType, "context_bytes", len(contextText))

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("openai.extract.send_error", "req_id", reqID, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, fmt.Errorf("calling openai API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	c.logger.Info("openai.extract.response", "req_id", reqID, "status", resp.StatusCode, "elapsed_ms", time.Since(start).Milliseconds())

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openai API error (status %d): %s", resp.StatusCode, truncate(string(respBody), 500))
	}

	return parseFieldResponse(respBody)
}

func parseFieldResponse(body []byte) (map[string]string, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from API: no choices")
	}
	if resp.Choices[0].FinishReason == "length" {
		return nil, fmt.Errorf("output truncated (finish_reason: length)")
	}

	content := resp.Choices[0].Message.Content
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("parsing extracted JSON: %w (raw: %s)", err, truncate(content, 500))
	}

	// Models occasionally return numbers for monetary boxes; keep everything
	// as strings so downstream coercion is uniform.
	fields := make(map[string]string, len(raw))
	for label, value := range raw {
		switch v := value.(type) {
		case string:
			fields[label] = v
		case float64:
			fields[label] = trimTrailingZeros(v)
		case bool:
			fields[label] = fmt.Sprintf("%t", v)
		case nil:
			fields[label] = "N/A"
		default:
			b, _ := json.Marshal(v)
			fields[label] = string(b)
		}
	}
	return fields, nil
}

func trimTrailingZeros(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	if strings.HasSuffix(s, ".00") {
		return strings.TrimSuffix(s, ".00")
	}
	return s
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
