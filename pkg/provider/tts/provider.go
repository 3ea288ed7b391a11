// Package tts defines the Provider interface for text-to-speech backends.
//
// Voxmate speaks short phrases (move confirmations, coach replies), so the
// interface is batch oriented: one text in, one complete WAV payload out.
// Implementations wrap a local Piper binary or a Coqui TTS server.
//
// Implementations must be safe for concurrent use.
package tts

import "context"

// Provider is the abstraction over any TTS backend.
type Provider interface {
	// Synthesize converts text into a complete WAV payload using the given
	// voice. An empty voice selects the provider default; empty text is an
	// error.
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)

	// Voices returns all voices available from this provider.
	//
	// Returns an error if the provider cannot be reached or if ctx is
	// cancelled before the list is retrieved.
	Voices(ctx context.Context) ([]Voice, error)
}
