package quest

import (
	"fmt"
	"log"
	"strings"

	"github.com/tatianab/daydream/internal/content"
	"github.com/tatianab/daydream/internal/models"
)

// ApplyReward applies a reward to the character in place and returns the
// player-facing announcement, or "" when the reward is silent, absent or
// malformed. Reward application must never abort a turn: a panic from
// unexpected content is converted into a generic announcement.
func ApplyReward(ch *models.Character, r *content.Reward) (announcement string) {
	if ch == nil || r == nil {
		return ""
	}

	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("quest: reward application panicked for character %s: %v", ch.ID, rec)
			announcement = "An error occurred while processing a reward."
		}
	}()

	switch r.Type {
	case "fate_points":
		if r.Value == 0 {
			return ""
		}
		ch.FatePoints += models.FatePoints(r.Value)
		if r.Silent {
			return ""
		}
		if r.Value > 0 {
			return fmt.Sprintf("You gain %d Fate Point(s).", r.Value)
		}
		return fmt.Sprintf("You lose %d Fate Point(s).", -r.Value)

	case "info":
		for name, raw := range r.SetFlag {
			value, ok := raw.(bool)
			if !ok {
				log.Printf("quest: skipping set_flag entry %q: value %v is not a boolean", name, raw)
				continue
			}
			ch.QuestFlags[name] = value
		}
		if r.Details != "" && !r.Silent {
			return "Info: " + r.Details
		}
		return ""

	case "item":
		if r.Name == "" {
			log.Printf("quest: item reward for character %s is missing a name", ch.ID)
			return ""
		}
		// Duplicates are allowed on purpose.
		ch.Inventory = append(ch.Inventory, r.Name)
		if r.Silent {
			return ""
		}
		return fmt.Sprintf("You obtained: %s.", r.Name)

	case "relationship":
		if r.Target == "" {
			log.Printf("quest: relationship reward is missing a target")
			return ""
		}
		if r.Change == 0 {
			return ""
		}
		key := RelationshipKey(r.Target)
		ch.Relationships[key] += r.Change
		if r.Silent {
			return ""
		}
		if r.Details != "" {
			return r.Details
		}
		return fmt.Sprintf("Your relationship with %s changed (%+d).", r.Target, r.Change)

	default:
		log.Printf("quest: unknown reward type %q", r.Type)
		return ""
	}
}

// RelationshipKey normalizes a target name into its counter key.
func RelationshipKey(target string) string {
	return "relationship_" + strings.ToLower(strings.ReplaceAll(target, " ", "_"))
}

// CompletedFlag is the quest-flag name marking a finished quest.
func CompletedFlag(questID string) string {
	return fmt.Sprintf("quest_%s_completed", questID)
}
