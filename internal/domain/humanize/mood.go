// Package humanize mutates generated replies into casual, human-feeling
// text. Every probabilistic transform draws from an injected random
// source so output is reproducible in tests.
package humanize

import "strings"

// Energy is the mood's energy axis
type Energy string

const (
	EnergyTired   Energy = "tired"
	EnergyHyper   Energy = "hyper"
	EnergyChill   Energy = "chill"
	EnergyHorny   Energy = "horny"
	EnergyPlayful Energy = "playful"
)

// Confidence is the mood's confidence axis
type Confidence string

const (
	ConfidenceShy        Confidence = "shy"
	ConfidenceBold       Confidence = "bold"
	ConfidenceTeasing    Confidence = "teasing"
	ConfidenceVulnerable Confidence = "vulnerable"
)

// TextingStyle is the mood's pacing axis
type TextingStyle string

const (
	StyleQuick      TextingStyle = "quick"
	StyleRambling   TextingStyle = "rambling"
	StyleDistracted TextingStyle = "distracted"
	StyleFocused    TextingStyle = "focused"
)

// Mood is the derived tri-axis descriptor driving humanization. It is
// ephemeral and never persisted.
type Mood struct {
	Energy       Energy       `json:"energy"`
	Confidence   Confidence   `json:"confidence"`
	TextingStyle TextingStyle `json:"textingStyle"`
}

// DetectMood infers a mood from the user's message and the local hour.
// The late-night window biases toward horny or vulnerable; nervous emoji
// cues bias toward playful teasing; message length sets the pacing.
func DetectMood(message string, hourOfDay int) Mood {
	lower := strings.ToLower(message)

	if hourOfDay >= 23 || hourOfDay <= 2 {
		if strings.Contains(lower, "lonely") || strings.Contains(lower, "alone") {
			return Mood{EnergyTired, ConfidenceVulnerable, StyleRambling}
		}
		return Mood{EnergyHorny, ConfidenceBold, StyleQuick}
	}

	if strings.Contains(message, "😅") || strings.Contains(message, "😬") {
		return Mood{EnergyPlayful, ConfidenceTeasing, StyleQuick}
	}

	words := len(strings.Fields(message))
	if words <= 3 {
		return Mood{EnergyChill, ConfidenceBold, StyleQuick}
	}
	if words > 15 {
		return Mood{EnergyChill, ConfidenceTeasing, StyleFocused}
	}

	return Mood{EnergyPlayful, ConfidenceTeasing, StyleQuick}
}
