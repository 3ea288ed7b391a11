// Package mock provides a test double for the tts.Provider interface.
package mock

import (
	"context"
	"sync"

	"github.com/voxmate/voxmate/pkg/provider/tts"
)

// SynthesizeCall records a single invocation of Provider.Synthesize.
type SynthesizeCall struct {
	Text  string
	Voice string
}

// Provider is a mock implementation of tts.Provider.
type Provider struct {
	mu sync.Mutex

	// WAV is returned from Synthesize when SynthesizeFn is nil.
	WAV []byte

	// SynthesizeErr, if non-nil, is returned as the error from Synthesize.
	SynthesizeErr error

	// SynthesizeFn, if non-nil, overrides the canned behaviour entirely.
	SynthesizeFn func(ctx context.Context, text, voice string) ([]byte, error)

	// VoiceList is returned from Voices.
	VoiceList []tts.Voice

	// VoicesErr, if non-nil, is returned as the error from Voices.
	VoicesErr error

	// SynthesizeCalls records every call to Synthesize.
	SynthesizeCalls []SynthesizeCall
}

// Synthesize records the call and returns the configured result.
func (p *Provider) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	p.mu.Lock()
	p.SynthesizeCalls = append(p.SynthesizeCalls, SynthesizeCall{Text: text, Voice: voice})
	fn := p.SynthesizeFn
	p.mu.Unlock()

	if fn != nil {
		return fn(ctx, text, voice)
	}
	if p.SynthesizeErr != nil {
		return nil, p.SynthesizeErr
	}
	return p.WAV, nil
}

// Voices returns the configured voice list.
func (p *Provider) Voices(context.Context) ([]tts.Voice, error) {
	if p.VoicesErr != nil {
		return nil, p.VoicesErr
	}
	return p.VoiceList, nil
}

// Calls returns a snapshot of recorded calls. Thread-safe.
func (p *Provider) Calls() []SynthesizeCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]SynthesizeCall(nil), p.SynthesizeCalls...)
}

// Ensure Provider implements tts.Provider at compile time.
var _ tts.Provider = (*Provider)(nil)
