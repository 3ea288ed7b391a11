package tts

// Voice describes one selectable synthesis voice.
type Voice struct {
	// ID is the provider-specific voice identifier (e.g., a Piper model name).
	ID string

	// Name is the human-readable voice name.
	Name string

	// Language is the BCP-47 language tag of the voice, if known.
	Language string
}
