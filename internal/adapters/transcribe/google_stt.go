package transcribe

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"delivery-log-service/internal/platform/obs"
)

// Fixed vocabulary the recognizer is primed with: the feed phrases and site
// names the extractor expects, the client digits as spoken words, and the
// price figures that come up in practice. Passed through verbatim on every
// call.
var phraseHints = []string{
	"crumbs", "pellets", "day old chicks", "layer mash",
	"debt", "overpaid", "client", "price", "location",
	"matangi", "kitengela", "mihang'o",
	"one", "two", "three", "four", "five", "six", "seven",
	"500", "1000", "2000", "1200", "delivered",
}

// GoogleTranscriber calls the Cloud Speech synchronous recognize endpoint.
// WhatsApp voice notes arrive as OGG/Opus at 16 kHz, so the recognition
// config is fixed.
type GoogleTranscriber struct {
	apiKey  string
	baseURL string
	session *http.Client
}

func NewGoogleTranscriber(apiKey string) (*GoogleTranscriber, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("google transcriber: api key is required")
	}

	return &GoogleTranscriber{
		apiKey:  apiKey,
		baseURL: "https://speech.googleapis.com/v1",
		session: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type recognizeRequest struct {
	Config recognitionConfig `json:"config"`
	Audio  recognitionAudio  `json:"audio"`
}

type recognitionConfig struct {
	Encoding        string          `json:"encoding"`
	SampleRateHertz int             `json:"sampleRateHertz"`
	LanguageCode    string          `json:"languageCode"`
	SpeechContexts  []speechContext `json:"speechContexts"`
}

type speechContext struct {
	Phrases []string `json:"phrases"`
}

type recognitionAudio struct {
	Content string `json:"content"`
}

type recognizeResponse struct {
	Results []struct {
		Alternatives []struct {
			Transcript string `json:"transcript"`
		} `json:"alternatives"`
	} `json:"results"`
}

// Transcribe returns the provider's best transcript for the audio, or ""
// when recognition produced no results.
func (g *GoogleTranscriber) Transcribe(ctx context.Context, audio []byte) (_ string, err error) {
	defer obs.Time(ctx, "stt.recognize")(&err)

	payload := recognizeRequest{
		Config: recognitionConfig{
			Encoding:        "OGG_OPUS",
			SampleRateHertz: 16000,
			LanguageCode:    "en-US",
			SpeechContexts:  []speechContext{{Phrases: phraseHints}},
		},
		Audio: recognitionAudio{
			Content: base64.StdEncoding.EncodeToString(audio),
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("transcribe: encode request: %w", err)
	}

	endpoint := g.baseURL + "/speech:recognize?key=" + g.apiKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("transcribe: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.session.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcribe: execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("transcribe: unexpected status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var decoded recognizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("transcribe: decode response: %w", err)
	}

	if len(decoded.Results) == 0 || len(decoded.Results[0].Alternatives) == 0 {
		return "", nil
	}

	return decoded.Results[0].Alternatives[0].Transcript, nil
}
