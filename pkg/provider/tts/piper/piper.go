// Package piper provides a local Piper-backed TTS provider. It shells out to
// the piper binary for each synthesis request: the text is written to stdin
// and the generated WAV is read back from a temporary file.
//
// Usage:
//
//	p, err := piper.New("piper",
//	    piper.WithVoice("bryce", "voices/en_US-bryce-medium.onnx"),
//	    piper.WithVoice("hfc_male", "voices/en_US-hfc_male-medium.onnx"),
//	    piper.WithDefaultVoice("bryce"),
//	)
//	wav, err := p.Synthesize(ctx, "Knight takes on f seven.", "")
package piper

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/voxmate/voxmate/pkg/provider/tts"
)

// Compile-time interface assertion.
var _ tts.Provider = (*Provider)(nil)

const defaultTimeout = 30 * time.Second

// ErrEmptyText is returned when Synthesize is called with blank input.
var ErrEmptyText = errors.New("piper: text must not be empty")

// ErrUnknownVoice is returned when the requested voice has no registered model.
var ErrUnknownVoice = errors.New("piper: unknown voice")

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithVoice registers a voice name and the Piper model path that backs it.
// The first registered voice becomes the default unless WithDefaultVoice is
// used.
func WithVoice(name, modelPath string) Option {
	return func(p *Provider) {
		p.voices[name] = modelPath
		if p.defaultVoice == "" {
			p.defaultVoice = name
		}
	}
}

// WithDefaultVoice selects which registered voice is used when the caller
// passes an empty voice name.
func WithDefaultVoice(name string) Option {
	return func(p *Provider) {
		p.defaultVoice = name
	}
}

// WithTimeout bounds each piper invocation. Defaults to 30 s.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) {
		p.timeout = d
	}
}

// Provider implements tts.Provider by running the piper binary per request.
type Provider struct {
	binary       string
	voices       map[string]string
	defaultVoice string
	timeout      time.Duration
}

// New creates a Provider that invokes the given piper binary. At least one
// voice must be registered via WithVoice.
func New(binary string, opts ...Option) (*Provider, error) {
	if binary == "" {
		return nil, errors.New("piper: binary path must not be empty")
	}
	p := &Provider{
		binary:  binary,
		voices:  make(map[string]string),
		timeout: defaultTimeout,
	}
	for _, o := range opts {
		o(p)
	}
	if len(p.voices) == 0 {
		return nil, errors.New("piper: at least one voice must be registered")
	}
	if _, ok := p.voices[p.defaultVoice]; !ok {
		return nil, fmt.Errorf("piper: default voice %q is not registered", p.defaultVoice)
	}
	return p, nil
}

// Synthesize runs piper with the voice's model, feeding text on stdin and
// collecting the WAV it writes to a temporary file.
func (p *Provider) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	if voice == "" {
		voice = p.defaultVoice
	}
	model, ok := p.voices[voice]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVoice, voice)
	}

	outDir, err := os.MkdirTemp("", "piper-tts-*")
	if err != nil {
		return nil, fmt.Errorf("piper: create temp dir: %w", err)
	}
	defer os.RemoveAll(outDir)
	outFile := filepath.Join(outDir, "speech.wav")

	runCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, p.binary, "-m", model, "-f", outFile)
	cmd.Stdin = strings.NewReader(text)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("piper: run %q: %w: %s", p.binary, err, strings.TrimSpace(string(out)))
	}

	wav, err := os.ReadFile(outFile)
	if err != nil {
		return nil, fmt.Errorf("piper: read output: %w", err)
	}
	return wav, nil
}

// Voices lists the registered voices in stable name order.
func (p *Provider) Voices(_ context.Context) ([]tts.Voice, error) {
	names := make([]string, 0, len(p.voices))
	for name := range p.voices {
		names = append(names, name)
	}
	sort.Strings(names)

	voices := make([]tts.Voice, 0, len(names))
	for _, name := range names {
		voices = append(voices, tts.Voice{ID: name, Name: name})
	}
	return voices, nil
}
