package engine

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/tatianab/daydream/internal/models"
	"github.com/tatianab/daydream/internal/narration"
)

const storytellerUnavailable = "Error: The Storyteller is unavailable right now."

var (
	directionAliases = map[string]string{
		"n": "north", "s": "south", "e": "east", "w": "west", "u": "up", "d": "down",
	}

	movementVerbs = map[string]bool{
		"go": true, "move": true,
		"n": true, "s": true, "e": true, "w": true, "u": true, "d": true,
		"north": true, "south": true, "east": true, "west": true, "up": true, "down": true,
	}

	lookVerbs = map[string]bool{"look": true, "l": true, "examine": true}

	journalViews = map[string]View{
		"sheet": ViewCharacterSheet, "char": ViewCharacterSheet, "status": ViewCharacterSheet,
		"inventory": ViewCharacterSheet, "inv": ViewCharacterSheet,
		"journal": ViewVocabReport, "quest": ViewVocabReport, "log": ViewVocabReport,
		"vocab": ViewVocabReport, "words": ViewVocabReport, "report": ViewVocabReport,
		"reports": ViewVocabReport,
	}

	interactionVerbs = []string{"talk", "ask", "speak", "say", "greet", "tell", "question"}
)

// splitCommand separates the verb (lowercased first token) from its argument.
func splitCommand(input string) (verb, arg string) {
	parts := strings.SplitN(strings.ToLower(input), " ", 2)
	verb = parts[0]
	if len(parts) > 1 {
		arg = strings.TrimSpace(parts[1])
	}
	return verb, arg
}

// classifyAndNarrate dispatches one normal-mode command, appends the
// resulting narration to the log, and reports the narrated text plus whether
// the character moved.
func (e *Engine) classifyAndNarrate(ctx context.Context, ch *models.Character, out *TurnOutcome, input, verb, arg string) (narrated string, moved bool) {
	switch {
	case movementVerbs[verb]:
		narrated, moved = e.handleMovement(ctx, ch, verb, arg)
	case verb == "use":
		narrated = e.handleAbility(ctx, ch, arg)
	case lookVerbs[verb]:
		narrated = e.lookAround(ctx, ch)
	default:
		narrated = e.interpretFreeCommand(ctx, ch, input)
	}
	if narrated != "" {
		e.say(ch, out, models.SpeakerStoryteller, narrated)
	}
	return narrated, moved
}

func (e *Engine) handleMovement(ctx context.Context, ch *models.Character, verb, arg string) (string, bool) {
	direction := verb
	if verb == "go" || verb == "move" {
		direction = arg
	}
	if direction == "" {
		return "Which direction would you like to go?", false
	}
	// First word only, abbreviation-expanded.
	direction = strings.Fields(strings.ToLower(direction))[0]
	if full, ok := directionAliases[direction]; ok {
		direction = full
	}

	loc := e.location(ch.CurrentLocation)
	if dest, ok := loc.Exits[direction]; ok {
		ch.CurrentLocation = dest
		return fmt.Sprintf("You move %s...", direction), true
	}

	text, err := e.gateway.InvalidDirection(ctx, narration.MoveInput{
		Base:      e.turnContext(ch),
		Direction: direction,
		Exits:     exitNames(loc),
	})
	if err != nil {
		log.Printf("engine: invalid-direction narration failed for %s: %v", ch.ID, err)
		return storytellerUnavailable, false
	}
	return text, false
}

func (e *Engine) handleAbility(ctx context.Context, ch *models.Character, arg string) string {
	if arg == "" {
		return "Use what ability?"
	}
	ability := e.repo.NormalizeAbility(arg)
	in := narration.AbilityInput{
		Base:    e.turnContext(ch),
		Ability: ability,
		NPCs:    e.repo.NPCsAt(ch.CurrentLocation),
	}

	if !ch.HasAbility(ability) {
		in.Reason = fmt.Sprintf("Your character does not have the ability '%s'.", ability)
		text, err := e.gateway.InvalidAbility(ctx, in)
		if err != nil {
			log.Printf("engine: invalid-ability narration failed for %s: %v", ch.ID, err)
			return storytellerUnavailable
		}
		return text
	}

	text, err := e.gateway.AbilityUse(ctx, in)
	if err != nil {
		log.Printf("engine: ability narration failed for %s: %v", ch.ID, err)
		return storytellerUnavailable
	}
	return text
}

func (e *Engine) lookAround(ctx context.Context, ch *models.Character) string {
	loc := e.location(ch.CurrentLocation)
	text, err := e.gateway.Describe(ctx, narration.DescribeInput{
		Base:                e.turnContext(ch),
		LocationDescription: loc.Description,
		Mood:                loc.Mood,
		NPCs:                e.repo.NPCsAt(ch.CurrentLocation),
		Exits:               exitNames(loc),
	})
	if err != nil {
		log.Printf("engine: look narration failed for %s: %v", ch.ID, err)
		return storytellerUnavailable
	}
	return text
}

func (e *Engine) interpretFreeCommand(ctx context.Context, ch *models.Character, input string) string {
	loc := e.location(ch.CurrentLocation)
	in := narration.CommandInput{
		Base:                e.turnContext(ch),
		Command:             input,
		LocationDescription: loc.Description,
		NPCs:                e.repo.NPCsAt(ch.CurrentLocation),
		Abilities:           ch.Abilities,
	}
	if name, ok := matchNPC(input, in.NPCs); ok {
		if npc := e.repo.NPC(name); npc != nil {
			in.Target = &narration.NPCDetail{
				Name:        name,
				Description: npc.Description,
				Personality: npc.Personality,
				Knowledge:   npc.Knowledge,
				Greetings:   npc.Greetings,
			}
		}
	}

	text, err := e.gateway.InterpretCommand(ctx, in)
	if err != nil {
		log.Printf("engine: command narration failed for %s: %v", ch.ID, err)
		return storytellerUnavailable
	}
	return text
}

// matchNPC resolves the conversation target of an interaction command by
// best-effort substring match against the roster. The longest matching name
// wins; equal lengths go to the first-declared NPC.
func matchNPC(input string, roster []string) (string, bool) {
	lowered := strings.ToLower(input)
	target := ""
	for _, verb := range interactionVerbs {
		if strings.HasPrefix(lowered, verb+" ") {
			target = strings.TrimSpace(lowered[len(verb)+1:])
			break
		}
	}
	if target == "" {
		return "", false
	}

	best := ""
	for _, name := range roster {
		if strings.Contains(target, strings.ToLower(name)) && len(name) > len(best) {
			best = name
		}
	}
	return best, best != ""
}
