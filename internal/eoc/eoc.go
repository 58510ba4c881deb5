// Package eoc drives the end-of-chapter flow: reflection questions,
// comprehension scoring, writing analysis, the chapter report and the next
// quest handoff.
package eoc

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/tatianab/daydream/internal/content"
	"github.com/tatianab/daydream/internal/models"
	"github.com/tatianab/daydream/internal/narration"
	"github.com/tatianab/daydream/internal/store"
)

// ErrIncompleteAnswers is returned when a reflection question was left blank;
// the caller re-prompts with the same questions.
var ErrIncompleteAnswers = errors.New("eoc: all questions must be answered")

// ErrWrongState is returned when an operation arrives out of order.
var ErrWrongState = errors.New("eoc: operation does not match chapter state")

// The reflection questions asked at the close of every chapter.
var reflectionQuestions = []string{
	"What was your main objective or focus in this chapter?",
	"Describe a key interaction or challenge you faced.",
	"How did your character approach the situations encountered?",
}

// Store is the persistence surface the chapter flow needs.
type Store interface {
	SaveCharacter(ctx context.Context, ch *models.Character) error
	AddPlayerXP(ctx context.Context, userID string, xp int) (store.Profile, bool, error)
}

type Controller struct {
	gateway narration.Gateway
	store   Store
	repo    *content.Repository
}

func New(gateway narration.Gateway, st Store, repo *content.Repository) *Controller {
	return &Controller{gateway: gateway, store: st, repo: repo}
}

// Begin opens the chapter flow: stores the reflection questions on the
// record and moves to the answer-collection state.
func (c *Controller) Begin(ctx context.Context, ch *models.Character) ([]string, error) {
	switch ch.ChapterState {
	case models.ChapterStart:
		ch.EOCQuestions = append([]string(nil), reflectionQuestions...)
		ch.ChapterState = models.ChapterAwaitAnswers
		if err := c.store.SaveCharacter(ctx, ch); err != nil {
			return nil, fmt.Errorf("saving chapter state: %w", err)
		}
		return ch.EOCQuestions, nil
	case models.ChapterAwaitAnswers:
		// Re-display without state change.
		return ch.EOCQuestions, nil
	default:
		return nil, ErrWrongState
	}
}

// Result is what one concluded chapter produced.
type Result struct {
	Report        string
	XPGained      int
	Comprehension float64
	LeveledUp     bool
	PlayerLevel   int
}

// SubmitAnswers scores the chapter and appends the report record. Gateway
// failures degrade: comprehension defaults to 0, analysis to an empty
// object. Every question must have a non-empty answer.
func (c *Controller) SubmitAnswers(ctx context.Context, ch *models.Character, answers []string) (*Result, error) {
	if ch.ChapterState != models.ChapterAwaitAnswers {
		return nil, ErrWrongState
	}
	if len(answers) != len(ch.EOCQuestions) {
		return nil, ErrIncompleteAnswers
	}
	for _, a := range answers {
		if strings.TrimSpace(a) == "" {
			return nil, ErrIncompleteAnswers
		}
	}

	comprehension, err := c.gateway.ScoreComprehension(ctx, narration.ComprehensionInput{
		Questions: ch.EOCQuestions,
		Answers:   answers,
	})
	if err != nil {
		log.Printf("eoc: comprehension scoring failed for %s: %v", ch.ID, err)
		comprehension = 0
	}

	chapterText := strings.Join(ch.ChapterInputs, "\n---\n")
	if chapterText == "" {
		chapterText = "(No player inputs recorded for this chapter)"
	}
	analysis, err := c.gateway.AnalyzeWriting(ctx, narration.AnalysisInput{ChapterText: chapterText})
	if err != nil {
		log.Printf("eoc: writing analysis failed for %s: %v", ch.ID, err)
		analysis = models.WritingAnalysis{}
	}

	xp := ChapterXP(analysis, comprehension)

	result := &Result{XPGained: xp, Comprehension: comprehension}
	if profile, leveled, err := c.store.AddPlayerXP(ctx, ch.UserID, xp); err != nil {
		log.Printf("eoc: failed to add %d chapter xp for %s: %v", xp, ch.UserID, err)
	} else {
		result.LeveledUp = leveled
		result.PlayerLevel = profile.Level
	}

	chapter := len(ch.ReportSummaries) + 1
	report := buildReport(comprehension, xp, analysis)
	ch.ReportSummaries = append(ch.ReportSummaries, models.ReportSummary{
		Chapter:            chapter,
		Summary:            report,
		ComprehensionScore: comprehension,
		PlayerXPGained:     xp,
		Analysis:           analysis,
	})
	ch.ChapterInputs = []string{}
	ch.EOCQuestions = nil
	ch.EOCReport = report
	ch.ChapterState = models.ChapterAwaitAck
	result.Report = report

	if err := c.store.SaveCharacter(ctx, ch); err != nil {
		return nil, fmt.Errorf("saving chapter report: %w", err)
	}
	return result, nil
}

// Acknowledge closes the report view, generates the next chapter's quest and
// hands the character back to the turn loop.
func (c *Controller) Acknowledge(ctx context.Context, ch *models.Character) (narration.QuestSeed, error) {
	if ch.ChapterState != models.ChapterAwaitAck {
		return narration.QuestSeed{}, ErrWrongState
	}

	nextChapter := len(ch.ReportSummaries) + 1
	stage := c.repo.StageFor(nextChapter)

	lastSummary := "(First Chapter)"
	if n := len(ch.ReportSummaries); n > 0 {
		lastSummary = ch.ReportSummaries[n-1].Summary
	}

	seed, err := c.gateway.GenerateNextQuest(ctx, narration.NextQuestInput{
		PlayerName:       ch.Name,
		Race:             ch.Race,
		Class:            ch.Class,
		Philosophy:       ch.Philosophy,
		Backstory:        ch.Backstory,
		Abilities:        ch.Abilities,
		CharacterID:      ch.ID,
		ChapterNumber:    nextChapter,
		LastSummary:      lastSummary,
		StageTitle:       stage.Title,
		StageDescription: stage.Description,
		StageKeywords:    stage.Keywords,
	})
	if err != nil {
		log.Printf("eoc: next quest generation failed for %s: %v", ch.ID, err)
		seed = fallbackQuest()
	}

	ch.CurrentQuestID = seed.QuestID
	ch.CurrentStepID = seed.StartingStepID
	ch.CurrentQuestTitle = seed.Title
	ch.CurrentStepDescription = seed.StartingStepDescription
	ch.ChapterInputs = []string{}
	ch.TurnCount = 0
	ch.EOCQuestions = nil
	ch.EOCReport = ""
	ch.EOCPrompted = false
	ch.ChapterState = models.ChapterIdle

	if err := c.store.SaveCharacter(ctx, ch); err != nil {
		return narration.QuestSeed{}, fmt.Errorf("saving new chapter: %w", err)
	}
	return seed, nil
}

// fallbackQuest is the free-exploration placeholder used when generation
// fails or comes back incomplete.
func fallbackQuest() narration.QuestSeed {
	return narration.QuestSeed{
		Title:                   "Explore Thetopia",
		StartingStepDescription: "Forge your own path or seek rumors.",
	}
}

var (
	lengthBonus = map[string]int{"S": 1, "M": 3, "L": 5}
	ratingBonus = map[string]int{"L": 1, "M": 3, "H": 5}
)

// ChapterXP computes the deterministic chapter XP award, floored at 0.
func ChapterXP(a models.WritingAnalysis, comprehension float64) int {
	xp := 5 +
		lengthBonus[a.AvgLengthCategory] +
		2*len(a.AWLWordsUsed) +
		a.RelevanceCoherence +
		ratingBonus[a.StyleRating] +
		ratingBonus[a.ThinkingRating] +
		ratingBonus[a.DescriptiveRating] +
		max(0, int(comprehension)-5)
	return max(0, xp)
}

func buildReport(comprehension float64, xp int, a models.WritingAnalysis) string {
	var b strings.Builder
	b.WriteString("**Chapter Complete!**\n\n")
	fmt.Fprintf(&b, "* **Comprehension Score:** %.1f / 10\n", comprehension)
	fmt.Fprintf(&b, "* **Player XP Gained:** +%d\n\n", xp)
	b.WriteString("* **Writing Analysis:**\n")
	awl := "None"
	if len(a.AWLWordsUsed) > 0 {
		awl = strings.Join(a.AWLWordsUsed, ", ")
	}
	fmt.Fprintf(&b, "    * AWL Words Used (%d): %s\n", len(a.AWLWordsUsed), awl)
	fmt.Fprintf(&b, "    * Relevance & Coherence: %s / 5\n", orUnknown(fmt.Sprint(a.RelevanceCoherence), a.RelevanceCoherence != 0))
	fmt.Fprintf(&b, "    * Style Complexity: %s\n", orUnknown(a.StyleRating, a.StyleRating != ""))
	fmt.Fprintf(&b, "    * Critical Thinking: %s\n", orUnknown(a.ThinkingRating, a.ThinkingRating != ""))
	fmt.Fprintf(&b, "    * Average Length: %s\n", orUnknown(a.AvgLengthCategory, a.AvgLengthCategory != ""))
	fmt.Fprintf(&b, "    * Descriptive Language: %s\n", orUnknown(a.DescriptiveRating, a.DescriptiveRating != ""))
	return b.String()
}

func orUnknown(value string, ok bool) string {
	if !ok {
		return "?"
	}
	return value
}
