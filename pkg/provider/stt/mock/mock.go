// Package mock provides a test double for the stt.Provider interface.
//
// Use Provider to feed controlled Transcript values and inspect which audio
// payloads were delivered.
//
// Example:
//
//	p := &mock.Provider{Transcript: stt.Transcript{Text: "knight f six"}}
//	tr, _ := p.Transcribe(ctx, wav)
package mock

import (
	"context"
	"sync"

	"github.com/voxmate/voxmate/pkg/provider/stt"
)

// TranscribeCall records a single invocation of Provider.Transcribe.
type TranscribeCall struct {
	// Ctx is the context passed to Transcribe.
	Ctx context.Context
	// WAV is a copy of the audio bytes that were passed to Transcribe.
	WAV []byte
}

// Provider is a mock implementation of stt.Provider.
type Provider struct {
	mu sync.Mutex

	// Transcript is returned from Transcribe when TranscribeFn is nil.
	Transcript stt.Transcript

	// TranscribeErr, if non-nil, is returned as the error from Transcribe.
	TranscribeErr error

	// TranscribeFn, if non-nil, overrides the canned Transcript/TranscribeErr
	// behaviour entirely.
	TranscribeFn func(ctx context.Context, wav []byte) (stt.Transcript, error)

	// TranscribeCalls records every call to Transcribe.
	TranscribeCalls []TranscribeCall
}

// Transcribe records the call and returns the configured result.
func (p *Provider) Transcribe(ctx context.Context, wav []byte) (stt.Transcript, error) {
	p.mu.Lock()
	cp := make([]byte, len(wav))
	copy(cp, wav)
	p.TranscribeCalls = append(p.TranscribeCalls, TranscribeCall{Ctx: ctx, WAV: cp})
	fn := p.TranscribeFn
	p.mu.Unlock()

	if fn != nil {
		return fn(ctx, wav)
	}
	if p.TranscribeErr != nil {
		return stt.Transcript{}, p.TranscribeErr
	}
	return p.Transcript, nil
}

// Calls returns a snapshot of recorded calls. Thread-safe.
func (p *Provider) Calls() []TranscribeCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]TranscribeCall(nil), p.TranscribeCalls...)
}

// Reset clears all recorded calls. Thread-safe.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.TranscribeCalls = nil
}

// Ensure Provider implements stt.Provider at compile time.
var _ stt.Provider = (*Provider)(nil)
