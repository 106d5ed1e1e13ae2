package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// OllamaClassifier implements Classifier using a local Ollama instance.
type OllamaClassifier struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllamaClassifier creates a new Ollama-backed classifier.
func NewOllamaClassifier(baseURL, model string) *OllamaClassifier {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3"
	}
	return &OllamaClassifier{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{},
	}
}

// ClassifyTestimonial implements Classifier.
func (o *OllamaClassifier) ClassifyTestimonial(ctx context.Context, senderName, senderEmail, message string) (*Analysis, error) {
	url := o.baseURL + "/api/generate"

	prompt := SystemInstruction + "\n\n" + BuildPrompt(senderName, message)

	payload := map[string]interface{}{
		"model":  o.model,
		"prompt": prompt,
		"stream": false,
		"format": "json",
		"options": map[string]interface{}{
			"temperature": 0.1,
			"num_predict": 300,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama API error: %s", string(respBody))
	}

	var result struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse ollama response: %w", err)
	}
	if result.Response == "" {
		return nil, fmt.Errorf("empty response from ollama")
	}

	return ParseAnalysis(result.Response)
}
