// Package tuning defines the hot-reloadable heuristics document that
// parameterizes classification, humanization and mood inference.
package tuning

import "time"

// FillerChances controls how often filler tokens are injected
type FillerChances struct {
	StartChance  float64 `json:"startChance"`
	MiddleChance float64 `json:"middleChance"`
	EndChance    float64 `json:"endChance"`
}

// PersonalityChances controls the optional personality transforms
type PersonalityChances struct {
	FollowUpChance     float64 `json:"followUpChance"`
	CapsEmphasisChance float64 `json:"capsEmphasisChance"`
	CatchphraseChance  float64 `json:"catchphraseChance"`
}

// ContextualFlags gates which filler pools are eligible per context
type ContextualFlags struct {
	SexualEndingsOnly    bool `json:"sexualEndingsOnly"`
	NervousLmaoAllowed   bool `json:"nervousLmaoAllowed"`
	MatchUserPunctuation bool `json:"matchUserPunctuation"`
}

// MoodWeights biases mood inference when no lexical cue dominates
type MoodWeights struct {
	Playful float64 `json:"playful"`
	Teasing float64 `json:"teasing"`
	Bold    float64 `json:"bold"`
}

// RuleWeights holds every classifier rule weight, grouped by archetype.
// Each weight is the confidence contribution of one fired rule.
type RuleWeights struct {
	// MARRIED_GUILTY
	GuiltyAvoidance   float64 `json:"guiltyAvoidance"`
	GuiltyHesitation  float64 `json:"guiltyHesitation"`
	GuiltyTypingStops float64 `json:"guiltyTypingStops"`
	GuiltyLateNight   float64 `json:"guiltyLateNight"`
	GuiltyDiscretion  float64 `json:"guiltyDiscretion"`
	GuiltyAdmission   float64 `json:"guiltyAdmission"`

	// HORNY_ADDICT
	AddictInstant        float64 `json:"addictInstant"`
	AddictExplicitToken  float64 `json:"addictExplicitToken"`
	AddictDemanding      float64 `json:"addictDemanding"`
	AddictEscalation     float64 `json:"addictEscalation"`
	AddictSustainedShort float64 `json:"addictSustainedShort"`

	// LONELY_SINGLE
	LonelyOversharing    float64 `json:"lonelyOversharing"`
	LonelyDirectWord     float64 `json:"lonelyDirectWord"`
	LonelyKeywords       float64 `json:"lonelyKeywords"`
	LonelyPoliteGreeting float64 `json:"lonelyPoliteGreeting"`
	LonelyMultiQuestion  float64 `json:"lonelyMultiQuestion"`
	LonelyIsolationCombo float64 `json:"lonelyIsolationCombo"`

	// CURIOUS_TOURIST
	TouristLanguage   float64 `json:"touristLanguage"`
	TouristPriceProbe float64 `json:"touristPriceProbe"`
	TouristGreeting   float64 `json:"touristGreeting"`
	TouristShort      float64 `json:"touristShort"`
}

// Classification groups the classifier tuning knobs
type Classification struct {
	ActivationThreshold float64     `json:"activationThreshold"`
	Rules               RuleWeights `json:"rules"`
}

// Config is the single mutable heuristics document. Readers always get a
// value snapshot, never a shared pointer into the store.
type Config struct {
	TypoFrequency   float64            `json:"typoFrequency"`
	LowercaseChance float64            `json:"lowercaseChance"`
	Fillers         FillerChances      `json:"fillers"`
	Personality     PersonalityChances `json:"personality"`
	Contextual      ContextualFlags    `json:"contextual"`
	Weights         MoodWeights        `json:"weights"`
	Classification  Classification     `json:"classification"`
	LastUpdated     time.Time          `json:"lastUpdated"`
	Version         string             `json:"version"`
}

// Defaults returns the documented default configuration
func Defaults() Config {
	return Config{
		TypoFrequency:   0.25,
		LowercaseChance: 0.6,
		Fillers: FillerChances{
			StartChance:  0.6,
			MiddleChance: 0.4,
			EndChance:    0.7,
		},
		Personality: PersonalityChances{
			FollowUpChance:     0.15,
			CapsEmphasisChance: 0.3,
			CatchphraseChance:  0.4,
		},
		Contextual: ContextualFlags{
			SexualEndingsOnly:    true,
			NervousLmaoAllowed:   true,
			MatchUserPunctuation: true,
		},
		Weights: MoodWeights{
			Playful: 0.3,
			Teasing: 0.4,
			Bold:    0.3,
		},
		Classification: Classification{
			ActivationThreshold: 0.3,
			Rules: RuleWeights{
				GuiltyAvoidance:   0.9,
				GuiltyHesitation:  0.2,
				GuiltyTypingStops: 0.2,
				GuiltyLateNight:   0.15,
				GuiltyDiscretion:  0.3,
				GuiltyAdmission:   0.6,

				AddictInstant:        0.4,
				AddictExplicitToken:  0.5,
				AddictDemanding:      0.3,
				AddictEscalation:     0.3,
				AddictSustainedShort: 0.2,

				LonelyOversharing:    0.4,
				LonelyDirectWord:     0.5,
				LonelyKeywords:       0.3,
				LonelyPoliteGreeting: 0.3,
				LonelyMultiQuestion:  0.2,
				LonelyIsolationCombo: 0.3,

				TouristLanguage:   0.5,
				TouristPriceProbe: 0.4,
				TouristGreeting:   0.3,
				TouristShort:      0.2,
			},
		},
		Version: "1.0.0",
	}
}
