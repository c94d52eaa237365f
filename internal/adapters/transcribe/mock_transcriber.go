package transcribe

import (
	"context"
	"fmt"
)

// MockTranscriber returns canned transcripts keyed by the audio payload.
// Useful in tests and for running the service without speech credentials.
type MockTranscriber struct {
	m map[string]string
}

func NewMockTranscriber(transcripts map[string]string) *MockTranscriber {
	m := make(map[string]string, len(transcripts))
	for audio, text := range transcripts {
		m[audio] = text
	}
	return &MockTranscriber{m: m}
}

func (t *MockTranscriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	text, ok := t.m[string(audio)]
	if !ok {
		return "", fmt.Errorf("no transcript for payload %q", string(audio))
	}
	return text, nil
}
