package quest

import (
	"fmt"
	"strings"

	"github.com/tatianab/daydream/internal/content"
)

// CheckTriggerSyntax reports whether a trigger condition would parse. Used at
// startup to reject bad content before a player hits it.
func CheckTriggerSyntax(condition string) error {
	m := triggerRe.FindStringSubmatch(condition)
	if m == nil {
		return fmt.Errorf("invalid trigger format %q, expected type:condition", condition)
	}
	kind := strings.ToLower(strings.TrimSpace(m[1]))
	cond := strings.TrimSpace(m[2])

	switch kind {
	case "state_var":
		if stateVarRe.FindStringSubmatch(cond) == nil {
			return fmt.Errorf("invalid state_var condition %q", cond)
		}
	case "inventory_has", "ai_check":
		if cond == "" {
			return fmt.Errorf("%s trigger has an empty condition", kind)
		}
	default:
		return fmt.Errorf("unknown trigger kind %q", kind)
	}
	return nil
}

// ValidateContent checks every authored quest step: trigger syntax, step
// links, and that the starting step exists.
func ValidateContent(repo *content.Repository) error {
	for id, q := range repo.Quests() {
		if _, ok := q.Steps[q.StartingStep]; !ok {
			return fmt.Errorf("quest %s: starting step %q not found", id, q.StartingStep)
		}
		for stepID, step := range q.Steps {
			if err := CheckTriggerSyntax(step.TriggerCondition); err != nil {
				return fmt.Errorf("quest %s step %s: %w", id, stepID, err)
			}
			if step.NextStep != "" {
				if _, ok := q.Steps[step.NextStep]; !ok {
					return fmt.Errorf("quest %s step %s: next step %q not found", id, stepID, step.NextStep)
				}
			}
		}
	}
	return nil
}
