// Package engine runs the per-turn game loop: command classification,
// movement, ability use, quest step completion, vocabulary crediting and the
// end-of-chapter suggestion schedule.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/tatianab/daydream/internal/content"
	"github.com/tatianab/daydream/internal/models"
	"github.com/tatianab/daydream/internal/narration"
	"github.com/tatianab/daydream/internal/quest"
	"github.com/tatianab/daydream/internal/store"
	"github.com/tatianab/daydream/internal/vocab"
)

const (
	// MaxInputLength is the hard cap on one player input.
	MaxInputLength = 500

	eocCheckStartTurn = 10
	eocCheckInterval  = 4
	minInputsForEOC   = 10
	sideQuestMaxTurns = 3
)

// ErrChapterInProgress is returned when a turn arrives while the character is
// inside the end-of-chapter flow; those inputs belong to the chapter
// controller, not the turn loop.
var ErrChapterInProgress = errors.New("engine: end-of-chapter flow in progress")

// Store is the persistence surface the turn loop needs.
type Store interface {
	SaveCharacter(ctx context.Context, ch *models.Character) error
	AddPlayerXP(ctx context.Context, userID string, xp int) (store.Profile, bool, error)
}

// View selects what the client should render after a turn.
type View int

const (
	ViewGame View = iota
	ViewCharacterSheet
	ViewVocabReport
)

// TurnOutcome reports everything one processed turn produced.
type TurnOutcome struct {
	View    View
	Entries []models.ConversationEntry

	// ChapterEnded means the end-of-chapter flow starts now.
	ChapterEnded bool

	XPGained    int
	NewWords    []string
	LeveledUp   bool
	PlayerLevel int
}

type Engine struct {
	gateway narration.Gateway
	store   Store
	repo    *content.Repository
}

func New(gateway narration.Gateway, st Store, repo *content.Repository) *Engine {
	return &Engine{gateway: gateway, store: st, repo: repo}
}

// say appends a line to both the character's log and the turn outcome.
func (e *Engine) say(ch *models.Character, out *TurnOutcome, speaker, text string) {
	ch.AppendConversation(speaker, text)
	out.Entries = append(out.Entries, models.ConversationEntry{Speaker: speaker, Text: text})
}

func (e *Engine) turnContext(ch *models.Character) narration.TurnContext {
	return narration.TurnContext{
		PlayerName:      ch.Name,
		Race:            ch.Race,
		Class:           ch.Class,
		Philosophy:      ch.Philosophy,
		FatePoints:      int(ch.FatePoints),
		Location:        ch.CurrentLocation,
		QuestTitle:      ch.CurrentQuestTitle,
		StepDescription: ch.CurrentStepDescription,
	}
}

// ProcessTurn runs one player input through the full turn algorithm and
// persists the mutated character. The persistence write is the only fatal
// failure; gateway errors degrade to visible log lines.
func (e *Engine) ProcessTurn(ctx context.Context, ch *models.Character, rawInput string) (*TurnOutcome, error) {
	if ch.ChapterState != models.ChapterIdle {
		return nil, ErrChapterInProgress
	}

	out := &TurnOutcome{View: ViewGame}
	input := strings.TrimSpace(rawInput)
	if input == "" {
		return out, nil
	}
	if len(input) > MaxInputLength {
		e.say(ch, out, models.SpeakerSystem,
			fmt.Sprintf("Input too long (Max %d). Be concise.", MaxInputLength))
		return out, e.save(ctx, ch)
	}

	if ch.EOCPrompted {
		return e.handleEOCConfirm(ctx, ch, out, input)
	}
	if ch.SideQuestActive {
		return e.handleSideQuest(ctx, ch, out, input)
	}

	verb, arg := splitCommand(input)
	if view, ok := journalViews[verb]; ok {
		// Journal shortcuts never touch game state.
		out.View = view
		return out, nil
	}

	e.say(ch, out, models.SpeakerPlayer, input)
	ch.ChapterInputs = append(ch.ChapterInputs, input)
	ch.TurnCount++

	e.creditVocabulary(ctx, ch, out, input)

	narrated, movedThisTurn := e.classifyAndNarrate(ctx, ch, out, input, verb, arg)

	chapterEnded, stepCompleted := e.checkStepCompletion(ctx, ch, out, input, narrated)

	if !chapterEnded && e.shouldSuggestEOC(ch, stepCompleted) {
		e.suggestEOC(ctx, ch, out)
	}

	// After quest and chapter logic so the description context sees the new
	// objective.
	if movedThisTurn && !chapterEnded {
		e.describeLocation(ctx, ch, out)
	}

	if chapterEnded {
		out.ChapterEnded = true
		ch.ChapterState = models.ChapterStart
	}

	return out, e.save(ctx, ch)
}

func (e *Engine) save(ctx context.Context, ch *models.Character) error {
	if err := e.store.SaveCharacter(ctx, ch); err != nil {
		return fmt.Errorf("saving turn state: %w", err)
	}
	return nil
}

func (e *Engine) handleEOCConfirm(ctx context.Context, ch *models.Character, out *TurnOutcome, input string) (*TurnOutcome, error) {
	switch strings.ToLower(input) {
	case "yes":
		ch.EOCPrompted = false
		ch.TurnCount = 0
		ch.ChapterState = models.ChapterStart
		out.ChapterEnded = true
	case "no":
		ch.EOCPrompted = false
		e.say(ch, out, models.SpeakerSystem, "Okay, continuing the adventure!")
	default:
		e.say(ch, out, models.SpeakerPlayer, input)
		e.say(ch, out, models.SpeakerSystem, "Please respond with 'yes' or 'no'.")
		ch.EOCPrompted = true
	}
	return out, e.save(ctx, ch)
}

func (e *Engine) handleSideQuest(ctx context.Context, ch *models.Character, out *TurnOutcome, input string) (*TurnOutcome, error) {
	e.say(ch, out, models.SpeakerPlayer, input)

	if ch.SideQuestObjective == "" {
		objective, err := e.gateway.ConvertSideQuestIdea(ctx, narration.SideQuestInput{
			Base: e.turnContext(ch),
			Idea: input,
		})
		if err != nil {
			log.Printf("engine: side quest conversion failed for %s: %v", ch.ID, err)
			e.say(ch, out, models.SpeakerSystem,
				"Let's try simpler. What would you like to observe or interact with briefly?")
			return out, e.save(ctx, ch)
		}
		ch.SideQuestObjective = objective
		ch.SideQuestTurns = 0
		e.say(ch, out, models.SpeakerSystem, "Task: "+objective)
		return out, e.save(ctx, ch)
	}

	ch.SideQuestTurns++
	base := e.turnContext(ch)
	base.QuestTitle = "(Side Quest)"
	base.StepDescription = ch.SideQuestObjective
	loc := e.location(ch.CurrentLocation)
	text, err := e.gateway.InterpretCommand(ctx, narration.CommandInput{
		Base:                base,
		Command:             input,
		LocationDescription: loc.Description,
		NPCs:                e.repo.NPCsAt(ch.CurrentLocation),
		Abilities:           ch.Abilities,
	})
	if err != nil {
		log.Printf("engine: side quest narration failed for %s: %v", ch.ID, err)
		text = storytellerUnavailable
	}
	e.say(ch, out, models.SpeakerStoryteller, text)

	if ch.SideQuestTurns >= sideQuestMaxTurns {
		e.say(ch, out, models.SpeakerSystem,
			"Finished with that detour. Now, let's reflect on the main chapter...")
		ch.ClearSideQuest()
		ch.TurnCount = 0
		ch.ChapterState = models.ChapterStart
		out.ChapterEnded = true
	}
	return out, e.save(ctx, ch)
}

func (e *Engine) creditVocabulary(ctx context.Context, ch *models.Character, out *TurnOutcome, input string) {
	xp, words := vocab.Score(input, ch.LearnedVocab)
	if xp == 0 {
		return
	}
	for _, w := range words {
		ch.LearnedVocab[w] = true
	}
	out.XPGained = xp
	out.NewWords = words

	profile, leveled, err := e.store.AddPlayerXP(ctx, ch.UserID, xp)
	if err != nil {
		// Learned words still persist with the character; only the profile
		// counter missed this turn.
		log.Printf("engine: failed to add %d player xp for %s: %v", xp, ch.UserID, err)
		return
	}
	out.LeveledUp = leveled
	out.PlayerLevel = profile.Level
	if leveled {
		e.say(ch, out, models.SpeakerSystem,
			fmt.Sprintf("Congratulations! You've reached Player Level %d!", profile.Level))
	}
}

func (e *Engine) shouldSuggestEOC(ch *models.Character, stepCompleted bool) bool {
	return ch.TurnCount >= eocCheckStartTurn &&
		ch.TurnCount%eocCheckInterval == eocCheckStartTurn%eocCheckInterval &&
		!stepCompleted
}

func (e *Engine) suggestEOC(ctx context.Context, ch *models.Character, out *TurnOutcome) {
	verdict, err := e.gateway.CheckChapterProgress(ctx, narration.ProgressInput{
		Base:               e.turnContext(ch),
		TurnCount:          ch.TurnCount,
		InputCount:         len(ch.ChapterInputs),
		RecentConversation: recentConversation(ch),
	})
	if err != nil {
		log.Printf("engine: chapter progress check failed for %s: %v", ch.ID, err)
		ch.EOCPrompted = false
		return
	}

	switch verdict {
	case narration.VerdictYes:
		e.say(ch, out, models.SpeakerSystem,
			"This feels like a good place to pause and reflect on this chapter. Shall we conclude it? (yes/no)")
		ch.EOCPrompted = true
	case narration.VerdictSuggestTask:
		text, err := e.gateway.InitiateSideQuest(ctx, narration.SideQuestInput{Base: e.turnContext(ch)})
		if err != nil {
			log.Printf("engine: side quest initiation failed for %s: %v", ch.ID, err)
			ch.EOCPrompted = false
			return
		}
		e.say(ch, out, models.SpeakerStoryteller, text)
		ch.SideQuestActive = true
		ch.SideQuestObjective = ""
		ch.SideQuestTurns = 0
		ch.EOCPrompted = false
	default:
		ch.EOCPrompted = false
	}
}

// recentConversation summarizes the tail of the log for readiness checks.
func recentConversation(ch *models.Character) string {
	entries := ch.ConversationLog
	if len(entries) > 6 {
		entries = entries[len(entries)-6:]
	}
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		text := entry.Text
		if len(text) > 100 {
			text = text[:100]
		}
		lines = append(lines, entry.Speaker+": "+text)
	}
	if len(lines) == 0 {
		return "(no recent conversation)"
	}
	return strings.Join(lines, "\n")
}

// location looks up world lore, substituting an empty node for unknown keys
// so narration still runs.
func (e *Engine) location(key string) *content.Location {
	if loc := e.repo.Location(key); loc != nil {
		return loc
	}
	log.Printf("engine: no lore for location %q", key)
	return &content.Location{}
}

func (e *Engine) describeLocation(ctx context.Context, ch *models.Character, out *TurnOutcome) {
	loc := e.location(ch.CurrentLocation)
	text, err := e.gateway.Describe(ctx, narration.DescribeInput{
		Base:                e.turnContext(ch),
		LocationDescription: loc.Description,
		Mood:                loc.Mood,
		NPCs:                e.repo.NPCsAt(ch.CurrentLocation),
		Exits:               exitNames(loc),
	})
	if err != nil {
		log.Printf("engine: location description failed for %s: %v", ch.ID, err)
		text = storytellerUnavailable
	}
	e.say(ch, out, models.SpeakerStoryteller, text)
}

func exitNames(loc *content.Location) []string {
	names := make([]string, 0, len(loc.Exits))
	for d := range loc.Exits {
		names = append(names, d)
	}
	return names
}

// checkStepCompletion evaluates the active quest step and applies completion
// effects. It reports whether the chapter just force-ended and whether a step
// completed this turn.
func (e *Engine) checkStepCompletion(ctx context.Context, ch *models.Character, out *TurnOutcome, input, narrated string) (chapterEnded, stepCompleted bool) {
	if !ch.OnQuest() {
		return false, false
	}
	step := e.repo.Step(ch.CurrentQuestID, ch.CurrentStepID)
	if step == nil {
		log.Printf("engine: no step data for %s/%s", ch.CurrentQuestID, ch.CurrentStepID)
		return false, false
	}

	done, criterion := quest.EvaluateTrigger(step.TriggerCondition, ch)
	if !done && criterion != "" {
		outcome := narrated
		if outcome == "" {
			outcome = "(No AI response this turn)"
		}
		yes, err := e.gateway.EvaluateStepCompletion(ctx, narration.StepCheckInput{
			Base:         e.turnContext(ch),
			Criterion:    fmt.Sprintf("if the action fulfilled: '%s'", criterion),
			PlayerAction: input,
			Outcome:      outcome,
		})
		if err != nil {
			log.Printf("engine: step completion check failed for %s: %v", ch.ID, err)
		}
		done = err == nil && yes
	}
	if !done {
		return false, false
	}

	e.say(ch, out, models.SpeakerSystem,
		fmt.Sprintf("Objective Complete: '%s'!", ch.CurrentStepDescription))
	if msg := quest.ApplyReward(ch, step.StepReward); msg != "" {
		e.say(ch, out, models.SpeakerSystem, msg)
	}

	questID := ch.CurrentQuestID
	isFinal := step.NextStep == ""
	triggersEOC := (step.MajorPlotPoint || isFinal) && len(ch.ChapterInputs) >= minInputsForEOC

	switch {
	case triggersEOC:
		if step.MajorPlotPoint {
			e.say(ch, out, models.SpeakerSystem, "A significant moment in your journey...")
		}
		if isFinal {
			e.finalizeQuest(ch, out, questID)
		}
		ch.ClearQuest()
		ch.TurnCount = 0
		return true, true

	case !isFinal:
		next := e.repo.Step(questID, step.NextStep)
		if next == nil {
			log.Printf("engine: next step %s missing in quest %s, ending quest", step.NextStep, questID)
			ch.ClearQuest()
			return false, true
		}
		ch.CurrentStepID = step.NextStep
		ch.CurrentStepDescription = next.Description
		e.say(ch, out, models.SpeakerSystem, "New Objective: "+next.Description)
		return false, true

	default:
		// Final step, but the chapter is too thin to evaluate. Finish the
		// quest quietly and keep playing.
		e.finalizeQuest(ch, out, questID)
		ch.ClearQuest()
		return false, true
	}
}

func (e *Engine) finalizeQuest(ch *models.Character, out *TurnOutcome, questID string) {
	if q := e.repo.Quest(questID); q != nil {
		if msg := quest.ApplyReward(ch, q.CompletionReward); msg != "" {
			e.say(ch, out, models.SpeakerSystem, msg)
		}
	}
	ch.QuestFlags[quest.CompletedFlag(questID)] = true
}
