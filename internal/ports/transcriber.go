package ports

import "context"

// Contract for turning raw voice-note audio into text.
type Transcriber interface {
	// Return the provider's single best transcript for the audio, or ""
	// when recognition produced no result at all.
	Transcribe(ctx context.Context, audio []byte) (string, error)
}
