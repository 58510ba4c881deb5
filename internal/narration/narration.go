// Package narration is the boundary between the deterministic game core and
// the Storyteller model. Every call kind gets its own method and input struct;
// the core never builds prompt strings itself.
package narration

import (
	"context"
	"fmt"

	"github.com/tatianab/daydream/internal/models"
)

// MutedStoryteller stands in for an empty but otherwise successful narration.
const MutedStoryteller = "(The Storyteller seems lost in thought...)"

// Verdict is the three-way answer to a chapter-readiness check.
type Verdict int

const (
	VerdictNo Verdict = iota
	VerdictYes
	VerdictSuggestTask
)

func (v Verdict) String() string {
	switch v {
	case VerdictYes:
		return "YES"
	case VerdictSuggestTask:
		return "SUGGEST_TASK"
	default:
		return "NO"
	}
}

// TurnContext frames every in-world narrative call: who the player is, where
// they are and what they are trying to do.
type TurnContext struct {
	PlayerName      string
	Race            string
	Class           string
	Philosophy      string
	FatePoints      int
	Location        string
	QuestTitle      string
	StepDescription string
}

// QuestLine renders the current-situation line used in prompts.
func (c TurnContext) QuestLine() string {
	if c.QuestTitle == "" && c.StepDescription == "" {
		return "Currently exploring freely."
	}
	return fmt.Sprintf("Current Quest: '%s'. Objective: '%s'.", c.QuestTitle, c.StepDescription)
}

// Profile renders the compact character tag used in prompts.
func (c TurnContext) Profile() string {
	return fmt.Sprintf("P=%s(%s/%s/%s)", c.PlayerName, c.Race, c.Class, c.Philosophy)
}

type SetupInput struct {
	Base                TurnContext
	LocationDescription string
	Mood                string
	NPCs                []string
}

type DescribeInput struct {
	Base                TurnContext
	LocationDescription string
	Mood                string
	NPCs                []string
	Exits               []string
}

type AbilityInput struct {
	Base    TurnContext
	Ability string
	NPCs    []string
	// Reason is only set for invalid-ability narration.
	Reason string
}

type MoveInput struct {
	Base      TurnContext
	Direction string
	Exits     []string
}

// NPCDetail carries roster lore for a matched conversation target.
type NPCDetail struct {
	Name        string
	Description string
	Personality []string
	Knowledge   []string
	Greetings   []string
}

type CommandInput struct {
	Base                TurnContext
	Command             string
	LocationDescription string
	NPCs                []string
	Abilities           []string
	// Target is non-nil when the command addressed a present NPC.
	Target *NPCDetail
}

type StepCheckInput struct {
	Base         TurnContext
	Criterion    string
	PlayerAction string
	Outcome      string
}

type ProgressInput struct {
	Base               TurnContext
	TurnCount          int
	InputCount         int
	RecentConversation string
}

type SideQuestInput struct {
	Base TurnContext
	// Idea is the raw player proposal (conversion call).
	Idea string
	// Objective is the converted mini-objective (initiation narration leaves
	// it empty).
	Objective string
}

type ComprehensionInput struct {
	Questions []string
	Answers   []string
}

type AnalysisInput struct {
	ChapterText string
}

type NextQuestInput struct {
	PlayerName       string
	Race             string
	Class            string
	Philosophy       string
	Backstory        string
	Abilities        []string
	CharacterID      string
	ChapterNumber    int
	LastSummary      string
	StageTitle       string
	StageDescription string
	StageKeywords    []string
}

// QuestSeed is the structured result of next-quest generation.
type QuestSeed struct {
	QuestID                 string `json:"quest_id"`
	Title                   string `json:"title"`
	Description             string `json:"description"`
	StartingStepID          string `json:"starting_step_id"`
	StartingStepDescription string `json:"starting_step_description"`
}

// complete reports whether every field the lifecycle controller needs to bind
// the quest is present. Description is optional flavor.
func (s QuestSeed) complete() bool {
	return s.QuestID != "" && s.Title != "" &&
		s.StartingStepID != "" && s.StartingStepDescription != ""
}

// Gateway is the full set of Storyteller calls the game core consumes.
// Implementations make exactly one model attempt per call; retry policy, if
// any, lives below this interface.
type Gateway interface {
	InitialSetup(ctx context.Context, in SetupInput) (string, error)
	Describe(ctx context.Context, in DescribeInput) (string, error)
	AbilityUse(ctx context.Context, in AbilityInput) (string, error)
	InvalidDirection(ctx context.Context, in MoveInput) (string, error)
	InvalidAbility(ctx context.Context, in AbilityInput) (string, error)
	InterpretCommand(ctx context.Context, in CommandInput) (string, error)
	EvaluateStepCompletion(ctx context.Context, in StepCheckInput) (bool, error)
	CheckChapterProgress(ctx context.Context, in ProgressInput) (Verdict, error)
	InitiateSideQuest(ctx context.Context, in SideQuestInput) (string, error)
	ConvertSideQuestIdea(ctx context.Context, in SideQuestInput) (string, error)
	ScoreComprehension(ctx context.Context, in ComprehensionInput) (float64, error)
	AnalyzeWriting(ctx context.Context, in AnalysisInput) (models.WritingAnalysis, error)
	GenerateNextQuest(ctx context.Context, in NextQuestInput) (QuestSeed, error)
}
