package narration

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	speakerPrefixRe = regexp.MustCompile(`^(?i)(AI|Storyteller)\s*:\s*`)
	jsonObjectRe    = regexp.MustCompile(`(?s)\{.*\}`)
)

// cleanNarrative normalizes a free-text model response for the conversation
// log. Role prefixes the model sometimes adds are stripped; an empty response
// becomes a visible placeholder rather than a blank log line.
func cleanNarrative(raw string) string {
	text := strings.TrimSpace(raw)
	text = speakerPrefixRe.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)
	if text == "" {
		return MutedStoryteller
	}
	return text
}

// stripFences removes a surrounding markdown code fence, if present.
func stripFences(raw string) string {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// decodeJSON unmarshals a structured model response into v. Models wrap JSON
// in fences or preamble text often enough that one recovery attempt, on the
// first brace-delimited fragment, is worth the regexp.
func decodeJSON(raw string, v any) error {
	text := stripFences(raw)
	if err := json.Unmarshal([]byte(text), v); err == nil {
		return nil
	}
	fragment := jsonObjectRe.FindString(text)
	if fragment == "" {
		return fmt.Errorf("no JSON object in response: %q", truncate(text, 200))
	}
	if err := json.Unmarshal([]byte(fragment), v); err != nil {
		return fmt.Errorf("parsing recovered JSON fragment: %w", err)
	}
	return nil
}

// parseYesNo reads a literal YES/NO answer; anything other than an exact
// YES, embellished answers included, reads as NO.
func parseYesNo(raw string) bool {
	return strings.ToUpper(strings.TrimSpace(stripFences(raw))) == "YES"
}

// parseVerdict reads a literal YES / SUGGEST_TASK / NO answer; anything
// unrecognized reads as NO.
func parseVerdict(raw string) Verdict {
	switch strings.ToUpper(strings.TrimSpace(stripFences(raw))) {
	case "YES":
		return VerdictYes
	case "SUGGEST_TASK":
		return VerdictSuggestTask
	default:
		return VerdictNo
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
