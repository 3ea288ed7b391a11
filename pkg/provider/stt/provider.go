// Package stt defines the Provider interface for speech-to-text backends.
//
// Voxmate records complete utterances in the browser and submits each one as
// a single WAV payload, so the interface is batch oriented: one upload in,
// one Transcript out. Implementations wrap either a local whisper.cpp model
// or a whisper-server HTTP endpoint.
//
// Implementations must be safe for concurrent use; several sessions may
// transcribe simultaneously.
package stt

import (
	"context"
	"time"
)

// Transcript is the result of transcribing one utterance.
type Transcript struct {
	// Text is the transcribed speech content.
	Text string

	// Confidence is the overall confidence score (0.0-1.0). May be zero if
	// the provider does not report confidence.
	Confidence float64

	// Duration is the length of the submitted audio.
	Duration time.Duration
}

// Provider is the abstraction over any STT backend.
type Provider interface {
	// Transcribe converts one complete WAV-encoded utterance to text. The
	// payload must be a RIFF/WAVE container holding 16-bit signed
	// little-endian PCM.
	//
	// Returns an error if the audio cannot be decoded or the backend fails;
	// silence or unintelligible speech yields an empty Transcript.Text, not
	// an error.
	Transcribe(ctx context.Context, wav []byte) (Transcript, error)
}
