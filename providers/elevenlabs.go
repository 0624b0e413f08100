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
)

const elevenLabsBaseURL = "https://api.elevenlabs.io/v1"

// ElevenLabs is the speech-synthesis adapter. One sentence per call; the
// previous/next text fields reduce prosody seams between sentences.
type ElevenLabs struct {
	APIKey  string
	VoiceID string
	ModelID string
	Client  *http.Client
}

func NewElevenLabs(apiKey, voiceID, modelID string) *ElevenLabs {
	return &ElevenLabs{
		APIKey:  apiKey,
		VoiceID: voiceID,
		ModelID: modelID,
		Client:  &http.Client{Timeout: 2 * time.Minute},
	}
}

type ttsRequest struct {
	Text         string `json:"text"`
	ModelID      string `json:"model_id"`
	PreviousText string `json:"previous_text,omitempty"`
	NextText     string `json:"next_text,omitempty"`
}

func (e *ElevenLabs) Synthesize(ctx context.Context, text, previousText, nextText string) (data []byte, err error) {
	defer func() { metrics.ObserveCall("elevenlabs", err) }()

	body, err := json.Marshal(ttsRequest{
		Text:         text,
		ModelID:      e.ModelID,
		PreviousText: previousText,
		NextText:     nextText,
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/text-to-speech/%s?output_format=mp3_44100_128", elevenLabsBaseURL, e.VoiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", e.APIKey)

	resp, err := e.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("elevenlabs status %d: %s", resp.StatusCode, msg)
	}
	return io.ReadAll(resp.Body)
}
