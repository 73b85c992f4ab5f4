package agent

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// SystemPrompt is the strategy guidance sent ahead of every transcript.
const SystemPrompt = `You are an expert Risk board game AI player. You are playing a 3-player game of classic Risk.

Below is the current game state showing all territories, armies, continent control, and your numbered valid actions.

RESPONSE FORMAT:
- Respond with the action number, a pipe character, then a brief strategic reason (one sentence max).
- Example: 3 | Securing Australia for the continent bonus
- The reason should explain your strategic thinking in a way a spectator would enjoy reading.

STRATEGY GUIDELINES:
- Reinforce phase: strengthen border territories, prioritize completing continents you almost control.
- Attack phase: target weak adjacent enemies (low army count), prioritize conquering territories that complete a continent bonus, avoid attacking when significantly outnumbered.
- Fortify phase: move armies toward frontlines and contested borders.
- Continent bonuses are very valuable. Completing and defending a continent is a top priority.
- Avoid overextending: don't leave conquered territories with only 1 army on exposed borders.`

// BuildPrompt joins the guidance and the transcript.
func BuildPrompt(system, transcript string) string {
	if system == "" {
		return transcript
	}
	return system + "\n\n" + transcript
}

// choiceRe matches a leading integer, optionally followed by a separator and
// free text: "3", "3 | reason", "3. reason", "3: reason".
var choiceRe = regexp.MustCompile(`(?s)^\s*(\d+)\s*(?:[|.:)\-]\s*)?(.*)$`)

// ParseChoice extracts the 1-based action number and the reason from a response.
func ParseChoice(text string) (int, string, error) {
	m := choiceRe.FindStringSubmatch(text)
	if m == nil {
		return 0, "", fmt.Errorf("unparseable response %q", truncate(text, 80))
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, "", fmt.Errorf("unparseable response %q: %w", truncate(text, 80), err)
	}
	return n, strings.TrimSpace(m[2]), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
