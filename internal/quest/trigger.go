// Package quest implements the declarative step-completion triggers and the
// structured rewards attached to quest content.
package quest

import (
	"log"
	"regexp"
	"strings"

	"github.com/tatianab/daydream/internal/models"
)

var (
	triggerRe  = regexp.MustCompile(`^\s*(\w+)\s*:\s*(.*)$`)
	stateVarRe = regexp.MustCompile(`(?i)^\s*(\w+)\s*==\s*(true|false)\s*$`)
)

// EvaluateTrigger checks a step's trigger condition against the character's
// state. It returns whether the condition is already satisfied and, for
// ai_check triggers, the criterion the caller must hand to the narration
// gateway. ai_check triggers never report satisfied here; the AI judgment
// happens in the turn orchestrator. Malformed or unknown triggers are
// content defects: logged, never satisfied, never deferred.
func EvaluateTrigger(condition string, ch *models.Character) (bool, string) {
	if ch == nil || strings.TrimSpace(condition) == "" {
		log.Printf("quest: empty trigger condition or missing character")
		return false, ""
	}

	m := triggerRe.FindStringSubmatch(condition)
	if m == nil {
		log.Printf("quest: invalid trigger format %q, expected type:condition", condition)
		return false, ""
	}
	kind := strings.ToLower(strings.TrimSpace(m[1]))
	cond := strings.TrimSpace(m[2])

	switch kind {
	case "state_var":
		sm := stateVarRe.FindStringSubmatch(cond)
		if sm == nil {
			log.Printf("quest: invalid state_var condition %q, expected 'flag == True|False'", cond)
			return false, ""
		}
		flag := sm[1]
		expected := strings.EqualFold(sm[2], "true")
		// Absent flags read as false.
		return ch.QuestFlags[flag] == expected, ""

	case "inventory_has":
		var required []string
		for _, item := range strings.Split(cond, " and ") {
			if item = strings.TrimSpace(item); item != "" {
				required = append(required, item)
			}
		}
		if len(required) == 0 {
			log.Printf("quest: inventory_has trigger names no items: %q", cond)
			return false, ""
		}
		for _, item := range required {
			if !ch.HasItem(item) {
				return false, ""
			}
		}
		return true, ""

	case "ai_check":
		if cond == "" {
			log.Printf("quest: ai_check trigger has an empty criterion")
			return false, ""
		}
		return false, cond

	default:
		log.Printf("quest: unknown trigger kind %q in %q", kind, condition)
		return false, ""
	}
}
