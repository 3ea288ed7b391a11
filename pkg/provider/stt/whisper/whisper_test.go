package whisper_test

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/voxmate/voxmate/pkg/provider/stt"
	"github.com/voxmate/voxmate/pkg/provider/stt/whisper"
)

// ---- helpers ----------------------------------------------------------------

// newMockServer creates a test server that responds to POST /inference with a
// JSON body containing the provided responseText. It increments *callCount on
// every matched request.
func newMockServer(t *testing.T, responseText string, callCount *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/inference" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if callCount != nil {
			callCount.Add(1)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"text": responseText})
	}))
}

// makeSpeechWAV generates a mono 16 kHz WAV containing a 440 Hz sine wave
// with the given number of samples.
func makeSpeechWAV(samples int) []byte {
	const amplitude = 10_000.0
	pcm := make([]byte, samples*2)
	for i := 0; i < samples; i++ {
		v := int16(amplitude * math.Sin(2*math.Pi*440*float64(i)/16000))
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(v))
	}
	return stt.EncodeWAV(pcm, 16000, 1)
}

// ---- provider construction --------------------------------------------------

func TestNew_EmptyServerURL_ReturnsError(t *testing.T) {
	_, err := whisper.New("")
	if err == nil {
		t.Fatal("expected error for empty serverURL, got nil")
	}
}

func TestNew_ValidServerURL_ReturnsProvider(t *testing.T) {
	p, err := whisper.New("http://localhost:8080")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p == nil {
		t.Fatal("New returned nil provider")
	}
}

// ---- transcription ----------------------------------------------------------

func TestTranscribe_ReturnsServerText(t *testing.T) {
	var calls atomic.Int32
	srv := newMockServer(t, "knight f six", &calls)
	defer srv.Close()

	p, err := whisper.New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tr, err := p.Transcribe(context.Background(), makeSpeechWAV(16000))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if tr.Text != "knight f six" {
		t.Errorf("Text=%q, want %q", tr.Text, "knight f six")
	}
	if calls.Load() != 1 {
		t.Errorf("server calls=%d, want 1", calls.Load())
	}
	if tr.Duration <= 0 {
		t.Errorf("Duration=%v, want > 0", tr.Duration)
	}
}

func TestTranscribe_RejectsNonWAVPayload(t *testing.T) {
	var calls atomic.Int32
	srv := newMockServer(t, "ignored", &calls)
	defer srv.Close()

	p, err := whisper.New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = p.Transcribe(context.Background(), []byte("not a wav"))
	if err == nil {
		t.Fatal("expected error for non-WAV payload, got nil")
	}
	if calls.Load() != 0 {
		t.Errorf("server calls=%d, want 0 (payload must be rejected locally)", calls.Load())
	}
}

func TestTranscribe_ServerErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p, err := whisper.New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = p.Transcribe(context.Background(), makeSpeechWAV(1600))
	if err == nil {
		t.Fatal("expected error for HTTP 503, got nil")
	}
}

func TestTranscribe_ContextCancelled(t *testing.T) {
	srv := newMockServer(t, "unused", nil)
	defer srv.Close()

	p, err := whisper.New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Transcribe(ctx, makeSpeechWAV(1600))
	if err == nil {
		t.Fatal("expected error for cancelled context, got nil")
	}
}

func TestTranscribe_SendsLanguageAndModelFields(t *testing.T) {
	gotLanguage := ""
	gotModel := ""
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotLanguage = r.FormValue("language")
		gotModel = r.FormValue("model")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"text": "ok"})
	}))
	defer srv.Close()

	p, err := whisper.New(srv.URL, whisper.WithLanguage("de"), whisper.WithModel("base.en"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := p.Transcribe(context.Background(), makeSpeechWAV(1600)); err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if gotLanguage != "de" {
		t.Errorf("language field=%q, want %q", gotLanguage, "de")
	}
	if gotModel != "base.en" {
		t.Errorf("model field=%q, want %q", gotModel, "base.en")
	}
}
