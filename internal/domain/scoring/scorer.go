// Package scoring evaluates humanized replies for human-likeness across
// independent textual axes and aggregates them into a 0-10 overall score.
package scoring

import (
	"regexp"
	"strings"
)

// Context carries the classification flags relevant to scoring
type Context struct {
	UserType  string `json:"userType,omitempty"`
	IsSexual  bool   `json:"isSexual,omitempty"`
	IsNervous bool   `json:"isNervous,omitempty"`
}

// Details is the boolean breakdown surfaced alongside the sub-scores
type Details struct {
	HasTypos          bool `json:"hasTypos"`
	HasPersonality    bool `json:"hasPersonality"`
	IsLowercase       bool `json:"isLowercase"`
	HasEmojis         bool `json:"hasEmojis"`
	HasFillers        bool `json:"hasFillers"`
	AppropriateEnding bool `json:"appropriateEnding"`
	MatchesPunct      bool `json:"matchesPunctuation"`
	NaturalLength     bool `json:"naturalLength"`
}

// Breakdown is the full scoring result
type Breakdown struct {
	Overall     float64  `json:"overall"`
	Typos       float64  `json:"typos"`
	Personality float64  `json:"personality"`
	Context     float64  `json:"context"`
	Flow        float64  `json:"flow"`
	Punctuation float64  `json:"punctuation"`
	Issues      []string `json:"issues"`
	Suggestions []string `json:"suggestions"`
	Details     Details  `json:"details"`
}

// Sub-score weights for the overall mean
const (
	weightTypos       = 0.25
	weightPersonality = 0.20
	weightContext     = 0.30
	weightFlow        = 0.15
	weightPunctuation = 0.10
)

var (
	typoTokensRe    = regexp.MustCompile(`(?i)\b(u|ur|yu|yourr|youre|tho|bc|cuz|prolly|rlly|rly|gonna|wanna|omg|wat|wut|ok|kk|tn|tmrw|acc|def|smth|nthn)\b`)
	personalityRe   = regexp.MustCompile(`(?i)(stoppp|obsessed|dying|cant even|literally|lowkey|ngl|fr|wait|omg|fuck|lol|haha)`)
	fillerRe        = regexp.MustCompile(`(?i)(like|literally|lowkey|honestly|ngl|fr|tho)`)
	strongTypoRe    = regexp.MustCompile(`(?i)\b(u|ur|prolly|gonna|wanna)\b`)
	strongPersonaRe = regexp.MustCompile(`(?i)(stoppp|obsessed|dying|literally)`)
	detailFillerRe  = regexp.MustCompile(`(?i)(like|literally|lowkey|ngl)`)
	emojiRe         = regexp.MustCompile(`[\x{1F300}-\x{1F9FF}]`)
	dashRe          = regexp.MustCompile(`-|—|--`)
	endPunctRe      = regexp.MustCompile(`[.!?]$`)
	sexualEndingRe  = regexp.MustCompile(`🥵|😈|\.\.\.|fuck$`)
	nervousEndingRe = regexp.MustCompile(`lmao|haha|😅|lol`)
	casualEndingRe  = regexp.MustCompile(`lol|haha|tho|\.\.\.|[?!]|😭|💀`)
	sentenceBreakRe = regexp.MustCompile(`[.!?]`)
)

// Score rates a reply against its prompting message and context. Each
// sub-score comes from independent textual checks; overall is their
// weighted mean.
func Score(response, userMessage string, ctx Context) Breakdown {
	b := Breakdown{
		Typos:       scoreTypos(response),
		Personality: scorePersonality(response),
		Context:     scoreContext(response, userMessage, ctx),
		Flow:        scoreFlow(response),
		Punctuation: scorePunctuation(response, userMessage),
		Issues:      []string{},
		Suggestions: []string{},
	}

	b.Overall = b.Typos*weightTypos +
		b.Personality*weightPersonality +
		b.Context*weightContext +
		b.Flow*weightFlow +
		b.Punctuation*weightPunctuation

	analyzeIssues(&b, response)
	b.Details = buildDetails(&b, response, ctx)

	return b
}

// scoreTypos rewards an informal-token ratio in the 15-35% sweet spot
func scoreTypos(response string) float64 {
	words := strings.Split(response, " ")
	typoCount := len(typoTokensRe.FindAllString(response, -1))
	ratio := float64(typoCount) / float64(len(words))

	switch {
	case ratio >= 0.15 && ratio <= 0.35:
		return 10
	case ratio >= 0.10 && ratio <= 0.40:
		return 8
	case ratio < 0.10:
		return 5
	default:
		return 4
	}
}

func scorePersonality(response string) float64 {
	score := 5.0

	if personalityRe.MatchString(response) {
		score += 2
	}
	if fillerRe.MatchString(response) {
		score += 1
	}
	if startsLowercase(response) {
		score += 1
	}

	emojiCount := len(emojiRe.FindAllString(response, -1))
	if emojiCount == 1 || emojiCount == 2 {
		score += 1
	} else if emojiCount > 3 {
		score -= 1
	}

	return clampScore(score)
}

func scoreContext(response, userMessage string, ctx Context) float64 {
	score := 7.0

	lowerResponse := strings.ToLower(response)
	lowerUser := strings.ToLower(userMessage)

	if containsAny(lowerUser, "partner", "wife", "husband") &&
		containsAny(lowerResponse, "sneak", "secret", "naughty") {
		score += 2
	}
	if containsAny(lowerUser, "sleep", "go", "leave") &&
		containsAny(lowerResponse, "stay", "wait", "already") {
		score += 2
	}

	// lmao in a sexual context reads as mockery
	if ctx.IsSexual && strings.Contains(lowerResponse, "lmao") {
		score -= 3
	}
	if ctx.IsSexual && sexualEndingRe.MatchString(response) {
		score += 1
	}
	if ctx.IsNervous && nervousEndingRe.MatchString(response) {
		score += 1
	}

	return clampScore(score)
}

func scoreFlow(response string) float64 {
	score := 7.0

	wordCount := len(strings.Split(response, " "))
	if wordCount >= 8 && wordCount <= 30 {
		score += 1
	} else if wordCount < 5 || wordCount > 40 {
		score -= 2
	}

	if dashRe.MatchString(response) {
		score -= 3
	}

	sentences := 0
	for _, s := range sentenceBreakRe.Split(response, -1) {
		if strings.TrimSpace(s) != "" {
			sentences++
		}
	}
	if sentences >= 2 && sentences <= 4 {
		score += 1
	}

	words := strings.Split(strings.ToLower(response), " ")
	unique := map[string]bool{}
	for _, w := range words {
		unique[w] = true
	}
	if float64(len(unique))/float64(len(words)) > 0.7 {
		score += 1
	}

	return clampScore(score)
}

func scorePunctuation(response, userMessage string) float64 {
	userHas := endPunctRe.MatchString(strings.TrimSpace(userMessage))
	responseHas := endPunctRe.MatchString(strings.TrimSpace(response))

	if userHas == responseHas {
		return 10
	}
	return 5
}

func analyzeIssues(b *Breakdown, response string) {
	if b.Typos < 7 {
		if len(strongTypoRe.FindAllString(response, -1)) < 2 {
			b.Issues = append(b.Issues, "Too few typos - feels too formal")
			b.Suggestions = append(b.Suggestions, `Add more casual typos like "ur", "prolly", "gonna"`)
		} else {
			b.Issues = append(b.Issues, "Too many typos - hard to read")
			b.Suggestions = append(b.Suggestions, "Reduce typo frequency to 20-30% of words")
		}
	}

	if b.Personality < 7 {
		b.Issues = append(b.Issues, "Lacks personality phrases")
		b.Suggestions = append(b.Suggestions, `Add phrases like "stoppp", "obsessed", "ngl", "literally"`)
	}

	if b.Context < 7 {
		b.Issues = append(b.Issues, "Doesn't address user's actual message")
		b.Suggestions = append(b.Suggestions, "Respond more directly to what they said")
	}

	if b.Flow < 7 {
		if dashRe.MatchString(response) {
			b.Issues = append(b.Issues, "Contains dashes/hyphens")
			b.Suggestions = append(b.Suggestions, "Remove all dashes and hyphens")
		}
		if len(strings.Split(response, " ")) < 8 {
			b.Issues = append(b.Issues, "Response too short")
			b.Suggestions = append(b.Suggestions, "Add more substance to the response")
		}
	}

	if b.Punctuation < 7 {
		b.Issues = append(b.Issues, "Punctuation doesn't match user style")
		b.Suggestions = append(b.Suggestions, "Match user's punctuation usage")
	}
}

func buildDetails(b *Breakdown, response string, ctx Context) Details {
	wordCount := len(strings.Split(response, " "))

	return Details{
		HasTypos:          strongTypoRe.MatchString(response),
		HasPersonality:    strongPersonaRe.MatchString(response),
		IsLowercase:       startsLowercase(response),
		HasEmojis:         emojiRe.MatchString(response),
		HasFillers:        detailFillerRe.MatchString(response),
		AppropriateEnding: appropriateEnding(response, ctx),
		MatchesPunct:      b.Punctuation == 10,
		NaturalLength:     wordCount >= 8 && wordCount <= 30,
	}
}

func appropriateEnding(response string, ctx Context) bool {
	if ctx.IsSexual {
		return sexualEndingRe.MatchString(response) && !strings.Contains(response, "lmao")
	}
	if ctx.IsNervous {
		return nervousEndingRe.MatchString(response)
	}
	return casualEndingRe.MatchString(response)
}

func startsLowercase(s string) bool {
	if s == "" {
		return false
	}
	first := s[:1]
	return first == strings.ToLower(first)
}

func containsAny(s string, tokens ...string) bool {
	for _, token := range tokens {
		if strings.Contains(s, token) {
			return true
		}
	}
	return false
}

func clampScore(score float64) float64 {
	if score > 10 {
		return 10
	}
	if score < 0 {
		return 0
	}
	return score
}
