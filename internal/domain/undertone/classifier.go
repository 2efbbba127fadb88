// Package undertone classifies the behavioral disposition behind an
// incoming message from its text, timing signals and conversational
// context. Classification is pure given a tuning snapshot.
package undertone

import (
	"regexp"
	"strings"

	"github.com/VelourMedia/pulsetrack-go/internal/domain/tuning"
)

// Archetype is the classifier's typed hypothesis about a visitor
type Archetype string

const (
	MarriedGuilty  Archetype = "MARRIED_GUILTY"
	LonelySingle   Archetype = "LONELY_SINGLE"
	HornyAddict    Archetype = "HORNY_ADDICT"
	CuriousTourist Archetype = "CURIOUS_TOURIST"
	Unknown        Archetype = "UNKNOWN"
)

// priorityOrder breaks confidence ties between archetypes
var priorityOrder = []Archetype{MarriedGuilty, HornyAddict, LonelySingle, CuriousTourist}

// Result is the classification output. Not durable state, but logged and
// optionally surfaced in debug responses.
type Result struct {
	UserType         Archetype `json:"userType"`
	Confidence       float64   `json:"confidence"`
	Indicators       []string  `json:"indicators"`
	HiddenMeaning    string    `json:"hiddenMeaning,omitempty"`
	RevenuePotential string    `json:"revenuePotential,omitempty"`
}

// Context carries the message plus its timing and conversational signals
type Context struct {
	Message               string
	PreviousAssistantTurn string
	MessageNumber         int
	ResponseTimeMs        int
	TypingStops           int
	HourOfDay             int
	SessionMinutes        float64
}

const (
	maxResponseTimeMs = 10 * 60 * 1000
	maxTypingStops    = 100
)

var (
	avoidanceOpeners  = []string{"idk", "maybe", "kinda", "sometimes", "not really", "haha", "lol"}
	avoidanceAnywhere = []string{"complicated", "depends", "why?"}
	probingTokens     = []string{"bad", "naughty", "single", "relationship"}

	discretionTokens = []string{"discrete", "discreet", "private", "secret", "between us"}
	admissionTokens  = []string{"wife", "married", "kids"}

	explicitWords   = []string{"horny", "hard", "wet", "fuck", "dick", "pussy", "tits", "hot", "naked", "nude", "xxx", "cum"}
	explicitPhrases = []string{"show me", "send me", "want to see"}
	demandingWords  = []string{"now", "hurry", "quick", "asap"}
	escalationWords = []string{"more", "else", "other", "special"}

	lonelyKeywords = []string{"alone", "nobody", "understand", "listen", "care", "bored", "depressed", "sad", "empty", "work from home", "no friends", "just moved"}

	touristPhrases = []string{"just looking", "checking out", "new here", "first time"}
	priceTokens    = []string{"how much", "cost", "price", "free"}
	bareGreetings  = []string{"hey", "hi", "sup", "yo"}

	politeGreetingRe = regexp.MustCompile(`(?i)(hi.*how are you|hello.*doing)`)
)

// Classify scores the message against every archetype's rule list and
// returns the best match. The winning archetype must clear the configured
// activation threshold or the result is Unknown with zero confidence.
func Classify(ctx Context, cfg tuning.Config) Result {
	message := strings.ToLower(strings.TrimSpace(ctx.Message))
	if message == "" {
		return unknownResult()
	}

	ctx = clamp(ctx)
	rules := cfg.Classification.Rules

	scores := map[Archetype]*archetypeScore{
		MarriedGuilty:  checkMarriedGuilty(message, ctx, rules),
		HornyAddict:    checkHornyAddict(message, ctx, rules),
		LonelySingle:   checkLonelySingle(message, ctx, rules),
		CuriousTourist: checkCuriousTourist(message, ctx, rules),
	}

	best := Unknown
	bestScore := 0.0
	for _, archetype := range priorityOrder {
		if s := scores[archetype].confidence(); s > bestScore {
			best = archetype
			bestScore = s
		}
	}

	if best == Unknown || bestScore < cfg.Classification.ActivationThreshold {
		return unknownResult()
	}

	meaning, revenue := archetypeProfile(best)
	return Result{
		UserType:         best,
		Confidence:       bestScore,
		Indicators:       scores[best].indicators,
		HiddenMeaning:    meaning,
		RevenuePotential: revenue,
	}
}

type archetypeScore struct {
	score      float64
	indicators []string
}

func (a *archetypeScore) add(weight float64, indicator string) {
	a.score += weight
	a.indicators = append(a.indicators, indicator)
}

// confidence is the capped sum of fired rule weights
func (a *archetypeScore) confidence() float64 {
	if a.score > 1.0 {
		return 1.0
	}
	if a.score < 0 {
		return 0
	}
	return a.score
}

func checkMarriedGuilty(message string, ctx Context, rules tuning.RuleWeights) *archetypeScore {
	s := &archetypeScore{}

	// Avoidance only counts as an answer to a probing question.
	if containsAny(strings.ToLower(ctx.PreviousAssistantTurn), probingTokens) {
		if hasAvoidanceAnswer(message) {
			s.add(rules.GuiltyAvoidance, "avoidance answer to probing question")
		}
	}

	if ctx.ResponseTimeMs > 5000 {
		s.add(rules.GuiltyHesitation, "long hesitation before responding")
	}
	if ctx.TypingStops > 2 {
		s.add(rules.GuiltyTypingStops, "multiple typing stops (self-censoring)")
	}
	if ctx.HourOfDay >= 22 || ctx.HourOfDay <= 2 {
		s.add(rules.GuiltyLateNight, "late night activity")
	}
	if containsAny(message, discretionTokens) {
		s.add(rules.GuiltyDiscretion, "discretion language")
	}
	if matchesAnyWord(message, admissionTokens) {
		s.add(rules.GuiltyAdmission, "directly mentioned marriage")
	}

	return s
}

func checkHornyAddict(message string, ctx Context, rules tuning.RuleWeights) *archetypeScore {
	s := &archetypeScore{}

	if ctx.ResponseTimeMs > 0 && ctx.ResponseTimeMs < 2000 {
		s.add(rules.AddictInstant, "instant response (impulsive)")
	}

	words := tokenize(message)
	for _, token := range explicitWords {
		if wordSetContains(words, token) {
			s.add(rules.AddictExplicitToken, "explicit language: "+token)
		}
	}
	for _, phrase := range explicitPhrases {
		if strings.Contains(message, phrase) {
			s.add(rules.AddictExplicitToken, "explicit request: "+phrase)
		}
	}

	if matchesAnyWord(message, demandingWords) {
		s.add(rules.AddictDemanding, "impatient/demanding")
	}
	if matchesAnyWord(message, escalationWords) {
		s.add(rules.AddictEscalation, "requesting escalation")
	}
	if len(words) < 5 && ctx.MessageNumber > 2 {
		s.add(rules.AddictSustainedShort, "short direct messages")
	}

	return s
}

func checkLonelySingle(message string, ctx Context, rules tuning.RuleWeights) *archetypeScore {
	s := &archetypeScore{}

	words := tokenize(message)
	if len(words) > 15 {
		s.add(rules.LonelyOversharing, "long message (oversharing)")
	}
	if wordSetContains(words, "lonely") {
		s.add(rules.LonelyDirectWord, "strong loneliness indicator: lonely")
	}
	for _, keyword := range lonelyKeywords {
		if strings.Contains(message, keyword) {
			s.add(rules.LonelyKeywords, "lonely keyword: "+keyword)
		}
	}
	if strings.Contains(message, "work from home") && strings.Contains(message, "lonely") {
		s.add(rules.LonelyIsolationCombo, "isolation combo")
	}
	if politeGreetingRe.MatchString(message) {
		s.add(rules.LonelyPoliteGreeting, "polite greeting (seeking connection)")
	}
	if strings.Count(message, "?") > 1 {
		s.add(rules.LonelyMultiQuestion, "multiple questions (wants conversation)")
	}

	return s
}

func checkCuriousTourist(message string, ctx Context, rules tuning.RuleWeights) *archetypeScore {
	s := &archetypeScore{}

	if containsAny(message, touristPhrases) {
		s.add(rules.TouristLanguage, "tourist language")
	}
	if containsAny(message, priceTokens) {
		s.add(rules.TouristPriceProbe, "asking about price")
	}
	for _, greeting := range bareGreetings {
		if message == greeting {
			s.add(rules.TouristGreeting, "low effort greeting")
			break
		}
	}
	if ctx.MessageNumber > 5 && len(tokenize(message)) < 5 {
		s.add(rules.TouristShort, "still sending short messages")
	}

	return s
}

func hasAvoidanceAnswer(message string) bool {
	for _, opener := range avoidanceOpeners {
		if message == opener || strings.HasPrefix(message, opener+" ") {
			return true
		}
	}
	return containsAny(message, avoidanceAnywhere)
}

func archetypeProfile(a Archetype) (hiddenMeaning, revenuePotential string) {
	switch a {
	case MarriedGuilty:
		return "likely attached, feeling guilty, needs discretion", "HIGH"
	case HornyAddict:
		return "impulsive, needs constant escalation", "HIGH"
	case LonelySingle:
		return "isolated, needs connection and validation", "MEDIUM"
	case CuriousTourist:
		return "just browsing, low commitment", "LOW"
	default:
		return "", "MEDIUM"
	}
}

func unknownResult() Result {
	return Result{UserType: Unknown, Confidence: 0, Indicators: []string{}}
}

func clamp(ctx Context) Context {
	if ctx.ResponseTimeMs < 0 {
		ctx.ResponseTimeMs = 0
	}
	if ctx.ResponseTimeMs > maxResponseTimeMs {
		ctx.ResponseTimeMs = maxResponseTimeMs
	}
	if ctx.TypingStops < 0 {
		ctx.TypingStops = 0
	}
	if ctx.TypingStops > maxTypingStops {
		ctx.TypingStops = maxTypingStops
	}
	if ctx.HourOfDay < 0 {
		ctx.HourOfDay = 0
	}
	if ctx.HourOfDay > 23 {
		ctx.HourOfDay = 23
	}
	if ctx.MessageNumber < 0 {
		ctx.MessageNumber = 0
	}
	return ctx
}

func containsAny(s string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(s, token) {
			return true
		}
	}
	return false
}

// matchesAnyWord checks whole-word membership so "now" never fires on
// "know" and "hard" never fires on "hardly".
func matchesAnyWord(message string, tokens []string) bool {
	words := tokenize(message)
	for _, token := range tokens {
		if wordSetContains(words, token) {
			return true
		}
	}
	return false
}

var wordSplitRe = regexp.MustCompile(`[^a-z0-9']+`)

func tokenize(message string) []string {
	fields := wordSplitRe.Split(message, -1)
	words := fields[:0]
	for _, f := range fields {
		if f != "" {
			words = append(words, f)
		}
	}
	return words
}

func wordSetContains(words []string, token string) bool {
	for _, w := range words {
		if w == token {
			return true
		}
	}
	return false
}
