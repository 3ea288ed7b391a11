// Command voxmate is the main entry point for the Voxmate blindfold chess
// trainer server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"go.opentelemetry.io/otel"

	"github.com/voxmate/voxmate/internal/archive"
	"github.com/voxmate/voxmate/internal/chessengine"
	"github.com/voxmate/voxmate/internal/config"
	"github.com/voxmate/voxmate/internal/observe"
	"github.com/voxmate/voxmate/internal/resilience"
	"github.com/voxmate/voxmate/internal/server"
	"github.com/voxmate/voxmate/pkg/provider/llm"
	"github.com/voxmate/voxmate/pkg/provider/llm/anyllm"
	oaillm "github.com/voxmate/voxmate/pkg/provider/llm/openai"
	"github.com/voxmate/voxmate/pkg/provider/stt"
	"github.com/voxmate/voxmate/pkg/provider/stt/whisper"
	"github.com/voxmate/voxmate/pkg/provider/tts"
	"github.com/voxmate/voxmate/pkg/provider/tts/coqui"
	"github.com/voxmate/voxmate/pkg/provider/tts/piper"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "voxmate: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "voxmate: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	// A LevelVar so the config watcher can flip verbosity without a restart.
	levelVar := &slog.LevelVar{}
	levelVar.Set(slogLevel(cfg.Server.LogLevel))
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: levelVar}))
	slog.SetDefault(logger)

	slog.Info("voxmate starting",
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	shutdownTelemetry, err := observe.InitProvider(ctx, observe.ProviderConfig{})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	metrics, err := observe.NewMetrics(otel.GetMeterProvider())
	if err != nil {
		slog.Error("failed to create metrics", "err", err)
		return 1
	}

	// ── Provider registry ─────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	sttProvider, err := buildSTT(cfg, reg)
	if err != nil {
		slog.Error("failed to build STT provider", "err", err)
		return 1
	}
	ttsProvider, err := buildTTS(cfg, reg)
	if err != nil {
		slog.Error("failed to build TTS provider", "err", err)
		return 1
	}
	llmProvider, err := buildLLM(cfg, reg)
	if err != nil {
		slog.Error("failed to build LLM provider", "err", err)
		return 1
	}

	// ── Game archive ──────────────────────────────────────────────────────────
	var store archive.Store
	if cfg.Archive.PostgresDSN != "" {
		store, err = archive.NewPostgresStore(ctx, cfg.Archive.PostgresDSN)
		if err != nil {
			slog.Error("failed to connect to the game archive", "err", err)
			return 1
		}
		slog.Info("game archive connected", "backend", "postgres")
	} else {
		store = archive.NewMemoryStore()
		slog.Info("game archive in memory only")
	}
	defer store.Close()

	// ── Engine factory ────────────────────────────────────────────────────────
	moveTime := time.Duration(cfg.Engine.MoveTimeMS) * time.Millisecond
	newEngine := func(elo int) (server.Engine, error) {
		opts := []chessengine.Option{chessengine.WithElo(elo)}
		if moveTime > 0 {
			opts = append(opts, chessengine.WithMoveTime(moveTime))
		}
		return chessengine.New(cfg.Engine.Path, opts...)
	}

	// ── Server ────────────────────────────────────────────────────────────────
	serverCfg := server.Config{
		NewEngine:  newEngine,
		STT:        sttProvider,
		TTS:        ttsProvider,
		Voice:      cfg.Providers.TTS.Voice,
		Grader:     llmProvider,
		Archive:    store,
		DefaultElo: cfg.Engine.Elo,
		Logger:     logger,
		Metrics:    metrics,
	}
	if tls := cfg.Server.TLS; tls != nil {
		serverCfg.TLSCertFile = tls.CertFile
		serverCfg.TLSKeyFile = tls.KeyFile
	}
	srv := server.New(serverCfg)

	// ── Config hot reload ─────────────────────────────────────────────────────
	watcher, err := config.NewWatcher(*configPath, func(old, new *config.Config) {
		d := config.Diff(old, new)
		if !d.Any() {
			return
		}
		if d.LogLevelChanged {
			levelVar.Set(slogLevel(d.NewLogLevel))
			slog.Info("log level changed", "level", d.NewLogLevel)
		}
		if d.VoiceChanged {
			srv.SetVoice(d.NewVoice)
			slog.Info("tts voice changed", "voice", d.NewVoice)
		}
		if d.EngineChanged {
			srv.SetDefaultElo(new.Engine.Elo)
			slog.Info("engine strength changed; applies to new games", "elo", new.Engine.Elo)
		}
	})
	if err != nil {
		slog.Warn("config watcher disabled", "err", err)
	} else {
		defer watcher.Stop()
	}

	printStartupSummary(cfg)
	slog.Info("server ready — press Ctrl+C to shut down")

	addr := cfg.Server.ListenAddr
	if addr == "" {
		addr = ":8000"
	}
	if err := srv.Run(ctx, addr); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// registerBuiltinProviders wires all built-in provider factories into reg.
// Each factory receives a config.ProviderEntry and constructs the appropriate
// provider from the real implementation packages.
func registerBuiltinProviders(reg *config.Registry) {
	// ── LLM ───────────────────────────────────────────────────────────────────

	// openai goes through the official SDK.
	reg.RegisterLLM("openai", func(entry config.ProviderEntry) (llm.Provider, error) {
		var opts []oaillm.Option
		if entry.BaseURL != "" {
			opts = append(opts, oaillm.WithBaseURL(entry.BaseURL))
		}
		return oaillm.New(entry.APIKey, entry.Model, opts...)
	})

	// anthropic, gemini, deepseek, mistral, groq, llamacpp and llamafile all
	// share the any-llm pattern: optional APIKey + optional BaseURL.
	for _, providerName := range []string{
		"anthropic", "gemini",
		"deepseek", "mistral", "groq", "llamacpp", "llamafile",
	} {
		reg.RegisterLLM(providerName, func(entry config.ProviderEntry) (llm.Provider, error) {
			var opts []anyllmlib.Option
			if entry.APIKey != "" {
				opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
			}
			if entry.BaseURL != "" {
				opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
			}
			return anyllm.New(providerName, entry.Model, opts...)
		})
	}

	// ollama is a local server; it uses BaseURL for the address, not an API key.
	reg.RegisterLLM("ollama", func(entry config.ProviderEntry) (llm.Provider, error) {
		var opts []anyllmlib.Option
		if entry.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
		}
		return anyllm.New("ollama", entry.Model, opts...)
	})

	// ── STT ───────────────────────────────────────────────────────────────────

	reg.RegisterSTT("whisper", func(entry config.ProviderEntry) (stt.Provider, error) {
		var opts []whisper.Option
		if entry.Model != "" {
			opts = append(opts, whisper.WithModel(entry.Model))
		}
		if lang := optString(entry.Options, "language"); lang != "" {
			opts = append(opts, whisper.WithLanguage(lang))
		}
		return whisper.New(entry.BaseURL, opts...)
	})

	reg.RegisterSTT("whisper-native", func(entry config.ProviderEntry) (stt.Provider, error) {
		modelPath := entry.Model
		if modelPath == "" {
			modelPath = optString(entry.Options, "model_path")
		}
		var opts []whisper.NativeOption
		if lang := optString(entry.Options, "language"); lang != "" {
			opts = append(opts, whisper.WithNativeLanguage(lang))
		}
		return whisper.NewNative(modelPath, opts...)
	})

	// ── TTS ───────────────────────────────────────────────────────────────────

	reg.RegisterTTS("piper", func(entry config.ProviderEntry) (tts.Provider, error) {
		if entry.Model == "" {
			return nil, errors.New("piper provider requires model (path to an .onnx voice model)")
		}
		binary := optString(entry.Options, "binary")
		if binary == "" {
			binary = "piper"
		}
		voice := entry.Voice
		if voice == "" {
			voice = "default"
		}
		return piper.New(binary,
			piper.WithVoice(voice, entry.Model),
			piper.WithDefaultVoice(voice),
		)
	})

	reg.RegisterTTS("coqui", func(entry config.ProviderEntry) (tts.Provider, error) {
		var opts []coqui.Option
		if lang := optString(entry.Options, "language"); lang != "" {
			opts = append(opts, coqui.WithLanguage(lang))
		}
		if mode := optString(entry.Options, "api_mode"); mode != "" {
			opts = append(opts, coqui.WithAPIMode(coqui.APIMode(mode)))
		}
		return coqui.New(entry.BaseURL, opts...), nil
	})
}

// buildSTT creates the configured STT provider, wrapped in a fallback group
// when the entry lists fallbacks. Returns nil when none is configured.
func buildSTT(cfg *config.Config, reg *config.Registry) (stt.Provider, error) {
	entry := cfg.Providers.STT
	if entry.Name == "" {
		return nil, nil
	}
	primary, err := reg.CreateSTT(entry)
	if err != nil {
		return nil, fmt.Errorf("create stt provider %q: %w", entry.Name, err)
	}
	slog.Info("provider created", "kind", "stt", "name", entry.Name)
	if len(entry.Fallbacks) == 0 {
		return primary, nil
	}

	group := resilience.NewSTTFallback(primary, entry.Name, resilience.FallbackConfig{})
	for _, fb := range entry.Fallbacks {
		p, err := reg.CreateSTT(fb)
		if err != nil {
			slog.Warn("skipping stt fallback", "name", fb.Name, "err", err)
			continue
		}
		group.AddFallback(fb.Name, p)
		slog.Info("fallback registered", "kind", "stt", "name", fb.Name)
	}
	return group, nil
}

// buildTTS mirrors buildSTT for text-to-speech.
func buildTTS(cfg *config.Config, reg *config.Registry) (tts.Provider, error) {
	entry := cfg.Providers.TTS
	if entry.Name == "" {
		return nil, nil
	}
	primary, err := reg.CreateTTS(entry)
	if err != nil {
		return nil, fmt.Errorf("create tts provider %q: %w", entry.Name, err)
	}
	slog.Info("provider created", "kind", "tts", "name", entry.Name)
	if len(entry.Fallbacks) == 0 {
		return primary, nil
	}

	group := resilience.NewTTSFallback(primary, entry.Name, resilience.FallbackConfig{})
	for _, fb := range entry.Fallbacks {
		p, err := reg.CreateTTS(fb)
		if err != nil {
			slog.Warn("skipping tts fallback", "name", fb.Name, "err", err)
			continue
		}
		group.AddFallback(fb.Name, p)
		slog.Info("fallback registered", "kind", "tts", "name", fb.Name)
	}
	return group, nil
}

// buildLLM mirrors buildSTT for the quiz-grading LLM.
func buildLLM(cfg *config.Config, reg *config.Registry) (llm.Provider, error) {
	entry := cfg.Providers.LLM
	if entry.Name == "" {
		return nil, nil
	}
	primary, err := reg.CreateLLM(entry)
	if err != nil {
		return nil, fmt.Errorf("create llm provider %q: %w", entry.Name, err)
	}
	slog.Info("provider created", "kind", "llm", "name", entry.Name, "model", entry.Model)
	if len(entry.Fallbacks) == 0 {
		return primary, nil
	}

	group := resilience.NewLLMFallback(primary, entry.Name, resilience.FallbackConfig{})
	for _, fb := range entry.Fallbacks {
		p, err := reg.CreateLLM(fb)
		if err != nil {
			slog.Warn("skipping llm fallback", "name", fb.Name, "err", err)
			continue
		}
		group.AddFallback(fb.Name, p)
		slog.Info("fallback registered", "kind", "llm", "name", fb.Name)
	}
	return group, nil
}

// ── Startup summary ───────────────────────────────────────────────────────────

func printStartupSummary(cfg *config.Config) {
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Println("║         Voxmate — startup summary     ║")
	fmt.Println("╠═══════════════════════════════════════╣")
	printProvider("STT", cfg.Providers.STT.Name, cfg.Providers.STT.Model)
	printProvider("TTS", cfg.Providers.TTS.Name, cfg.Providers.TTS.Voice)
	printProvider("LLM", cfg.Providers.LLM.Name, cfg.Providers.LLM.Model)
	printProvider("Engine", cfg.Engine.Path, "")
	if cfg.Archive.PostgresDSN != "" {
		fmt.Printf("║  Archive         : %-19s ║\n", "postgres")
	} else {
		fmt.Printf("║  Archive         : %-19s ║\n", "in-memory")
	}
	if cfg.Server.ListenAddr != "" {
		fmt.Printf("║  Listen addr     : %-19s ║\n", cfg.Server.ListenAddr)
	}
	fmt.Println("╚═══════════════════════════════════════╝")
}

func printProvider(kind, name, model string) {
	value := name
	if value == "" {
		value = "(not configured)"
	} else if model != "" {
		value = name + " / " + model
	}
	if len(value) > 19 {
		value = value[:16] + "…"
	}
	fmt.Printf("║  %-12s    : %-19s ║\n", kind, value)
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func slogLevel(level config.LogLevel) slog.Level {
	switch level {
	case config.LogDebug:
		return slog.LevelDebug
	case config.LogWarn:
		return slog.LevelWarn
	case config.LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// optString extracts a string value from a provider Options map[string]any.
// Returns "" if the map is nil, the key is absent, or the value is not a string.
func optString(opts map[string]any, key string) string {
	if opts == nil {
		return ""
	}
	v, ok := opts[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}
