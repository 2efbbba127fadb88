package humanize

import (
	"math/rand"
	"regexp"
	"strings"

	"github.com/VelourMedia/pulsetrack-go/internal/domain/tuning"
)

// typoMap holds informal variants real people type for common words
var typoMap = map[string][]string{
	"you":        {"u", "youu", "yu"},
	"your":       {"ur", "yourr"},
	"you're":     {"ur", "your", "youre"},
	"though":     {"tho", "thoo"},
	"because":    {"bc", "cuz", "cause"},
	"probably":   {"prob", "prolly", "probs"},
	"really":     {"rlly", "reallyyy", "rly"},
	"what":       {"wat", "wut", "whatt"},
	"okay":       {"ok", "okayy", "k", "kk"},
	"tonight":    {"tonite", "tn"},
	"tomorrow":   {"tmrw", "tom"},
	"actually":   {"acc", "actualy"},
	"definitely": {"def", "deff"},
	"something":  {"smth", "somethin"},
	"nothing":    {"nothin", "nthn"},
	"everything": {"everythin", "errything"},
}

var fillers = struct {
	start      []string
	middle     []string
	end        []string
	sexualEnd  []string
	nervousEnd []string
}{
	start:      []string{"ok so", "wait", "omg", "lol", "fuck", "ugh", "mmm", "sooo"},
	middle:     []string{"like", "literally", "lowkey", "honestly", "ngl", "fr"},
	end:        []string{"lol", "haha", "tho", "...", "??", "😭", "💀"},
	sexualEnd:  []string{"fuck", "...", "🥵", "😈"},
	nervousEnd: []string{"lmao", "haha", "😅", "lol"},
}

var followUps = []string{
	"wait that sounded weird lol",
	"actually... nvm",
	"*weird sorry",
	"fuck why did I say that",
	"ignore that last part",
	"...unless? 😏",
}

var (
	sexualContextRe = regexp.MustCompile(`fuck|sex|horny|wet|hard|cock|pussy|ass|bend|legs`)
	trailingPunctRe = regexp.MustCompile(`[.!?]+$`)
	endsWithPunctRe = regexp.MustCompile(`[.!?]$`)
	multiSpaceRe    = regexp.MustCompile(`\s+`)
	dashVariantsRe  = regexp.MustCompile(`—|--|-\s|\s-`)
)

// Result is the humanized reply plus an optional independent follow-up
// line that is never merged into the primary message.
type Result struct {
	Primary  string `json:"primary"`
	FollowUp string `json:"followUp,omitempty"`
}

// Humanize mutates a draft reply. Transforms run in a fixed order with
// independently rolled probabilities so the same rng sequence always
// produces the same output: dash strip, typo substitution, filler
// injection, lowercase roll, caps emphasis, punctuation matching,
// whitespace cleanup, follow-up roll.
func Humanize(draft string, mood Mood, userMessage string, cfg tuning.Config, rng *rand.Rand) Result {
	result := dashVariantsRe.ReplaceAllString(draft, " ")

	result = applyTypos(result, cfg.TypoFrequency, rng)
	result = addFillers(result, draft, userMessage, cfg, rng)

	if rng.Float64() < cfg.LowercaseChance {
		result = strings.ToLower(result)
	}

	if mood.Energy == EnergyHyper && rng.Float64() < cfg.Personality.CapsEmphasisChance {
		words := strings.Fields(result)
		if len(words) > 0 {
			i := rng.Intn(len(words))
			words[i] = strings.ToUpper(words[i])
			result = strings.Join(words, " ")
		}
	}

	if cfg.Contextual.MatchUserPunctuation && userMessage != "" {
		if !endsWithPunctRe.MatchString(strings.TrimSpace(userMessage)) {
			result = trailingPunctRe.ReplaceAllString(result, "")
		}
	}

	result = strings.TrimSpace(multiSpaceRe.ReplaceAllString(result, " "))

	out := Result{Primary: result}
	if rng.Float64() < cfg.Personality.FollowUpChance {
		out.FollowUp = followUps[rng.Intn(len(followUps))]
	}
	return out
}

// applyTypos rolls once per word; mapped words swap to a random informal
// variant, unmapped words are untouched.
func applyTypos(text string, frequency float64, rng *rand.Rand) string {
	words := strings.Split(text, " ")
	for i, word := range words {
		if rng.Float64() < frequency {
			if variants, ok := typoMap[strings.ToLower(word)]; ok {
				words[i] = variants[rng.Intn(len(variants))]
			}
		}
	}
	return strings.Join(words, " ")
}

// addFillers prepends, inserts and appends filler tokens with the
// configured independent chances. The ending pool depends on context:
// sexual drafts use the sexual pool, nervous users get the lmao pool.
func addFillers(result, draft, userMessage string, cfg tuning.Config, rng *rand.Rand) string {
	if rng.Float64() < cfg.Fillers.StartChance {
		result = fillers.start[rng.Intn(len(fillers.start))] + " " + result
	}

	if rng.Float64() < cfg.Fillers.MiddleChance && strings.Contains(result, " ") {
		words := strings.Split(result, " ")
		insert := fillers.middle[rng.Intn(len(fillers.middle))]
		pos := len(words) / 2
		words = append(words[:pos], append([]string{insert}, words[pos:]...)...)
		result = strings.Join(words, " ")
	}

	if rng.Float64() < cfg.Fillers.EndChance {
		pool := fillers.end
		switch {
		case cfg.Contextual.SexualEndingsOnly && sexualContextRe.MatchString(strings.ToLower(draft)):
			pool = fillers.sexualEnd
		case cfg.Contextual.NervousLmaoAllowed && strings.Contains(userMessage, "😅"):
			pool = fillers.nervousEnd
		}
		result = result + " " + pool[rng.Intn(len(pool))]
	}

	return result
}
