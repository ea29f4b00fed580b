package narrative

import (
	"context"
	"fmt"
	"time"

	"KryptoPulse/internal/domain/models"
	drepo "KryptoPulse/internal/domain/repository"
	xhttp "KryptoPulse/pkg/http"
)

// Annotator turns a finished analysis into a short prose summary via an
// OpenAI-compatible chat completions endpoint. Best effort: callers replace
// any error with their own deterministic summary, so a failure here never
// affects the numeric fields.
type Annotator struct {
	baseURL string
	apiKey  string
	model   string
	client  *xhttp.Client
}

// New creates an Annotator.
func New(baseURL, apiKey, model string, timeout time.Duration) drepo.Narrator {
	return &Annotator{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Summarize produces a two-sentence plain-language read of the result.
func (a *Annotator) Summarize(ctx context.Context, res *models.AnalysisResult) (string, error) {
	prompt := fmt.Sprintf(
		"In at most two sentences, summarize this technical read of %s priced in %s: "+
			"signal %s, confidence %.0f%%, expected 24h move between %.2f%% and %.2f%%. "+
			"Plain language, no advice.",
		res.Symbol, res.VS, res.Signal, res.Confidence*100,
		res.Prediction.BandPct[0]*100, res.Prediction.BandPct[1]*100,
	)

	var payload chatResponse
	err := a.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    a.baseURL + "/chat/completions",
		Headers: map[string]string{
			"Authorization": "Bearer " + a.apiKey,
		},
		Body: chatRequest{
			Model:       a.model,
			Messages:    []chatMessage{{Role: "user", Content: prompt}},
			MaxTokens:   120,
			Temperature: 0.4,
		},
	}, &payload)
	if err != nil {
		return "", fmt.Errorf("narrative request: %w", err)
	}

	if len(payload.Choices) == 0 || payload.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("narrative response empty")
	}
	return payload.Choices[0].Message.Content, nil
}
