package config

// ConfigDiff describes what changed between two configs.
// Only fields that can be safely hot-reloaded are tracked; network addresses
// and provider wiring require a restart.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	// EngineChanged is true when Elo or move time changed. New games pick up
	// the new strength; games in progress keep their engine.
	EngineChanged bool

	// VoiceChanged is true when the default TTS voice changed.
	VoiceChanged bool
	NewVoice     string
}

// Any reports whether the diff contains at least one change.
func (d ConfigDiff) Any() bool {
	return d.LogLevelChanged || d.EngineChanged || d.VoiceChanged
}

// Diff compares old and new configs and returns what changed.
// Only tracks changes that are safe to apply without restart.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}

	if old.Engine.Elo != new.Engine.Elo || old.Engine.MoveTimeMS != new.Engine.MoveTimeMS {
		d.EngineChanged = true
	}

	if old.Providers.TTS.Voice != new.Providers.TTS.Voice {
		d.VoiceChanged = true
		d.NewVoice = new.Providers.TTS.Voice
	}

	return d
}
