package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"LinguaReel-server/metrics"
	"LinguaReel-server/pipeline"
)

const replicateBaseURL = "https://api.replicate.com/v1"

// Replicate is the image-generation adapter: submit a prediction for the
// configured model, then poll it by id. Results usually come back as URLs;
// some models return inline data, which Poll passes through unchanged.
type Replicate struct {
	APIToken string
	Model    string // e.g. "black-forest-labs/flux-schnell"
	Client   *http.Client
}

func NewReplicate(apiToken, model string) *Replicate {
	return &Replicate{
		APIToken: apiToken,
		Model:    model,
		Client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type predictionRequest struct {
	Input struct {
		Prompt string `json:"prompt"`
	} `json:"input"`
}

type predictionResponse struct {
	ID     string   `json:"id"`
	Status string   `json:"status"`
	Output []string `json:"output"`
	Error  string   `json:"error"`
}

func (r *Replicate) Submit(ctx context.Context, prompt string) (jobID string, err error) {
	defer func() { metrics.ObserveCall("replicate", err) }()

	var reqBody predictionRequest
	reqBody.Input.Prompt = prompt
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s/predictions", replicateBaseURL, r.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.APIToken)

	resp, err := r.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("replicate request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("replicate status %d: %s", resp.StatusCode, msg)
	}

	var prediction predictionResponse
	if err := json.NewDecoder(resp.Body).Decode(&prediction); err != nil {
		return "", fmt.Errorf("decode replicate response: %w", err)
	}
	return prediction.ID, nil
}

func (r *Replicate) Poll(ctx context.Context, jobID string) (pipeline.ImageJob, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/predictions/%s", replicateBaseURL, jobID), nil)
	if err != nil {
		return pipeline.ImageJob{}, err
	}
	req.Header.Set("Authorization", "Bearer "+r.APIToken)

	resp, err := r.Client.Do(req)
	if err != nil {
		return pipeline.ImageJob{}, fmt.Errorf("replicate poll failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return pipeline.ImageJob{}, fmt.Errorf("replicate status %d: %s", resp.StatusCode, msg)
	}

	var prediction predictionResponse
	if err := json.NewDecoder(resp.Body).Decode(&prediction); err != nil {
		return pipeline.ImageJob{}, fmt.Errorf("decode replicate response: %w", err)
	}

	switch prediction.Status {
	case "succeeded":
		job := pipeline.ImageJob{State: pipeline.JobSucceeded}
		if len(prediction.Output) > 0 {
			job.ResultURL = prediction.Output[0]
		}
		return job, nil
	case "failed", "canceled":
		return pipeline.ImageJob{State: pipeline.JobFailed, Err: prediction.Error}, nil
	default:
		return pipeline.ImageJob{State: pipeline.JobPending}, nil
	}
}

// HTTPFetcher downloads image results returned by URL.
type HTTPFetcher struct {
	Client *http.Client
}

func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{Client: &http.Client{Timeout: time.Minute}}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download status: %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
