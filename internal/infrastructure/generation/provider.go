// Package generation wraps the upstream text-generation service behind a
// small Provider interface. Replies that break character are rejected here
// so callers can substitute an in-character fallback.
package generation

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/VelourMedia/pulsetrack-go/internal/domain/strategy"
)

// Message is one turn in an OpenAI-style chat payload
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider produces a raw draft reply for the chat pipeline
type Provider interface {
	Generate(ctx context.Context, messages []Message, personality strategy.Personality) (string, error)
}

var (
	thinkBlockRe = regexp.MustCompile(`(?s)<think>.*?</think>`)
	roboticRe    = regexp.MustCompile(`(?i)(i('m| am)? an? (ai|bot|language model|assistant)|as an? (ai|language model)|i (can't|cannot) (assist|help) with|\[system\]|\[assistant\])`)
)

// cleanReply strips reasoning blocks and wrapping quotes from a raw reply
func cleanReply(reply string) string {
	reply = thinkBlockRe.ReplaceAllString(reply, "")
	reply = strings.TrimSpace(reply)

	if len(reply) >= 2 {
		quotes := []struct{ open, close string }{
			{`"`, `"`}, {`'`, `'`}, {"“", "”"}, {"‘", "’"},
		}
		for _, q := range quotes {
			if strings.HasPrefix(reply, q.open) && strings.HasSuffix(reply, q.close) {
				reply = strings.TrimSuffix(strings.TrimPrefix(reply, q.open), q.close)
				reply = strings.TrimSpace(reply)
				break
			}
		}
	}
	return reply
}

// validateReply rejects drafts that would expose the persona
func validateReply(reply string) error {
	if len(strings.TrimSpace(reply)) < 5 {
		return fmt.Errorf("reply too short")
	}
	if strings.Contains(strings.ToLower(reply), "<html") {
		return fmt.Errorf("reply is html")
	}
	if roboticRe.MatchString(reply) {
		return fmt.Errorf("reply breaks character")
	}
	return nil
}

// systemPrompt renders the persona instructions for one request
func systemPrompt(p strategy.Personality) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, a real person chatting on a private messaging platform. Never mention being an AI, bot, assistant or language model, and never break character.\n\n", p.DisplayName)
	fmt.Fprintf(&b, "Personality: %s\n", strings.Join(p.Traits, ", "))
	fmt.Fprintf(&b, "Tone: %s\n", p.Tone)
	fmt.Fprintf(&b, "Style: %s\n", p.ResponseStyle)
	fmt.Fprintf(&b, "Flirtation level: %d/5\n", p.FlirtLevel)
	fmt.Fprintf(&b, "Explicitness level: %d/5\n", p.ExplicitLevel)
	b.WriteString("\nKeep replies short and texting-natural. If asked whether you are real, deflect playfully and stay in character.")
	return b.String()
}
