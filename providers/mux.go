package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"LinguaReel-server/metrics"
	"LinguaReel-server/pipeline"
)

const muxBaseURL = "https://api.mux.com/video/v1"

// Mux is the video-hosting adapter. CreateAsset submits the source URL with
// per-language generated subtitles, then polls until the asset is playable.
type Mux struct {
	TokenID      string
	TokenSecret  string
	Client       *http.Client
	PollInterval time.Duration
	MaxAttempts  int
}

func NewMux(tokenID, tokenSecret string, pollInterval time.Duration, maxAttempts int) *Mux {
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	if maxAttempts <= 0 {
		maxAttempts = 60
	}
	return &Mux{
		TokenID:      tokenID,
		TokenSecret:  tokenSecret,
		Client:       &http.Client{Timeout: 30 * time.Second},
		PollInterval: pollInterval,
		MaxAttempts:  maxAttempts,
	}
}

type muxAssetResponse struct {
	Data struct {
		ID          string `json:"id"`
		Status      string `json:"status"`
		PlaybackIDs []struct {
			ID string `json:"id"`
		} `json:"playback_ids"`
		Errors struct {
			Messages []string `json:"messages"`
		} `json:"errors"`
	} `json:"data"`
}

func (m *Mux) CreateAsset(ctx context.Context, sourceURL, languageID string) (asset pipeline.HostAsset, err error) {
	defer func() { metrics.ObserveCall("mux", err) }()

	// Generated subtitles are unsupported for these languages.
	if languageID == "ar" || languageID == "zh" {
		return pipeline.HostAsset{}, fmt.Errorf("subtitles not supported for language %q", languageID)
	}

	reqBody := map[string]interface{}{
		"input": []map[string]interface{}{
			{
				"url": sourceURL,
				"generated_subtitles": []map[string]string{
					{
						"language_code": languageID,
						"name":          strings.ToUpper(languageID) + " CC",
					},
				},
			},
		},
		"playback_policy":     []string{"public"},
		"max_resolution_tier": "2160p",
		"video_quality":       "premium",
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return pipeline.HostAsset{}, err
	}

	created, err := m.doRequest(ctx, http.MethodPost, muxBaseURL+"/assets", body)
	if err != nil {
		return pipeline.HostAsset{}, err
	}
	if len(created.Data.PlaybackIDs) == 0 {
		return pipeline.HostAsset{}, errors.New("no playback id returned from mux")
	}

	asset = pipeline.HostAsset{
		AssetID:    created.Data.ID,
		PlaybackID: created.Data.PlaybackIDs[0].ID,
	}
	if err := m.waitUntilReady(ctx, asset.AssetID); err != nil {
		return pipeline.HostAsset{}, err
	}
	return asset, nil
}

func (m *Mux) waitUntilReady(ctx context.Context, assetID string) error {
	for attempt := 0; attempt < m.MaxAttempts; attempt++ {
		current, err := m.doRequest(ctx, http.MethodGet, muxBaseURL+"/assets/"+assetID, nil)
		if err != nil {
			return err
		}
		switch current.Data.Status {
		case "ready":
			return nil
		case "errored":
			msg := "unknown error"
			if len(current.Data.Errors.Messages) > 0 {
				msg = current.Data.Errors.Messages[0]
			}
			return fmt.Errorf("mux asset creation failed: %s", msg)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.PollInterval):
		}
	}
	return errors.New("mux asset creation timed out")
}

func (m *Mux) doRequest(ctx context.Context, method, url string, body []byte) (*muxAssetResponse, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(m.TokenID, m.TokenSecret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := m.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mux request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("mux status %d: %s", resp.StatusCode, msg)
	}

	var parsed muxAssetResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode mux response: %w", err)
	}
	return &parsed, nil
}
