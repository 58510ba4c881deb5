// Package models defines the persisted player character record and the
// value types stored inside it.
package models

import (
	"encoding/json"

	"github.com/google/uuid"
)

// MaxConvoLines is the maximum number of conversation entries retained on a
// character record. Older entries are dropped first.
const MaxConvoLines = 100

// BaseFatePoints is the starting fate point allotment for every character.
const BaseFatePoints = 1

// Speaker labels used in the conversation log.
const (
	SpeakerPlayer      = "Player"
	SpeakerStoryteller = "Storyteller"
	SpeakerSystem      = "System"
)

// ChapterState tracks where a character is in the end-of-chapter flow.
type ChapterState string

const (
	ChapterIdle         ChapterState = ""
	ChapterStart        ChapterState = "START"
	ChapterAwaitAnswers ChapterState = "AWAIT_COMP_ANSWERS"
	ChapterAwaitAck     ChapterState = "AWAIT_REPORT_ACK"
)

// ConversationEntry is one line of the game transcript.
type ConversationEntry struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// WritingAnalysis is the structured result of the end-of-chapter writing
// review. A zero value contributes nothing to the XP formula.
type WritingAnalysis struct {
	RelevanceCoherence int      `json:"relevance_coherence_score"`
	AWLWordsUsed       []string `json:"awl_words_used"`
	StyleRating        string   `json:"style_rating"`
	ThinkingRating     string   `json:"thinking_rating"`
	AvgLengthCategory  string   `json:"avg_length_category"`
	DescriptiveRating  string   `json:"descriptive_language_rating"`
}

// ReportSummary is one chapter's analysis record. Chapters number
// contiguously from 1 and summaries are append-only.
type ReportSummary struct {
	Chapter            int             `json:"chapter"`
	Summary            string          `json:"summary"`
	ComprehensionScore float64         `json:"comprehension_score"`
	PlayerXPGained     int             `json:"player_xp_gained"`
	Analysis           WritingAnalysis `json:"analysis"`
}

// FatePoints is an int that survives corrupted documents: any stored value
// that does not decode as a number falls back to the base allotment.
type FatePoints int

func (f *FatePoints) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		*f = BaseFatePoints
		return nil
	}
	*f = FatePoints(n)
	return nil
}

// Character is the full persisted record for one player character. The
// record is the single source of truth for turn, chapter and side-quest
// state; nothing game-relevant lives only in a session.
type Character struct {
	ID         string   `json:"id"`
	UserID     string   `json:"user_id"`
	Name       string   `json:"name"`
	Race       string   `json:"race_name"`
	Class      string   `json:"class_name"`
	Philosophy string   `json:"philosophy_name"`
	Backstory  string   `json:"backstory,omitempty"`
	Abilities  []string `json:"abilities"`

	CurrentLocation        string `json:"current_location"`
	CurrentQuestID         string `json:"current_quest_id"`
	CurrentStepID          string `json:"current_step_id"`
	CurrentQuestTitle      string `json:"current_quest_title"`
	CurrentStepDescription string `json:"current_step_description"`

	TurnCount  int             `json:"turn_count"`
	FatePoints FatePoints      `json:"fate_points"`
	Inventory  []string        `json:"inventory"`
	QuestFlags map[string]bool `json:"quest_flags"`
	// Relationships holds signed counters keyed by a normalized
	// "relationship_<target>" name.
	Relationships map[string]int `json:"relationships"`

	ConversationLog []ConversationEntry `json:"conversation_log"`
	ChapterInputs   []string            `json:"current_chapter_inputs"`
	LearnedVocab    map[string]bool     `json:"learned_vocab"`
	ReportSummaries []ReportSummary     `json:"report_summaries"`

	// EOCPrompted marks that the next input answers a pending
	// "conclude this chapter?" prompt. It must survive a save/load cycle.
	EOCPrompted  bool         `json:"eoc_prompted_this_turn"`
	ChapterState ChapterState `json:"chapter_state,omitempty"`
	EOCQuestions []string     `json:"eoc_questions,omitempty"`
	EOCReport    string       `json:"eoc_report,omitempty"`

	SideQuestActive    bool   `json:"side_quest_active,omitempty"`
	SideQuestObjective string `json:"side_quest_objective,omitempty"`
	SideQuestTurns     int    `json:"side_quest_turns,omitempty"`
}

// NewCharacter builds a fresh character with all progress fields defaulted.
func NewCharacter(userID, name, race, class, philosophy string) *Character {
	c := &Character{
		ID:         uuid.NewString(),
		UserID:     userID,
		Name:       name,
		Race:       race,
		Class:      class,
		Philosophy: philosophy,
		FatePoints: BaseFatePoints,
	}
	c.EnsureDefaults()
	return c
}

// EnsureDefaults guarantees that collection fields are usable after any
// load. Quest flags and inventory in particular are always present.
func (c *Character) EnsureDefaults() {
	if c.QuestFlags == nil {
		c.QuestFlags = map[string]bool{}
	}
	if c.Relationships == nil {
		c.Relationships = map[string]int{}
	}
	if c.Inventory == nil {
		c.Inventory = []string{}
	}
	if c.LearnedVocab == nil {
		c.LearnedVocab = map[string]bool{}
	}
	if c.ChapterInputs == nil {
		c.ChapterInputs = []string{}
	}
}

// AppendConversation adds one transcript line, evicting the oldest entries
// beyond MaxConvoLines.
func (c *Character) AppendConversation(speaker, text string) {
	c.ConversationLog = append(c.ConversationLog, ConversationEntry{Speaker: speaker, Text: text})
	if n := len(c.ConversationLog); n > MaxConvoLines {
		c.ConversationLog = c.ConversationLog[n-MaxConvoLines:]
	}
}

// HasItem reports whether the inventory contains the exact item name.
func (c *Character) HasItem(name string) bool {
	for _, item := range c.Inventory {
		if item == name {
			return true
		}
	}
	return false
}

// HasAbility reports whether the character possesses the named ability.
func (c *Character) HasAbility(name string) bool {
	for _, a := range c.Abilities {
		if a == name {
			return true
		}
	}
	return false
}

// OnQuest reports whether a quest step is currently active.
func (c *Character) OnQuest() bool {
	return c.CurrentQuestID != "" && c.CurrentStepID != ""
}

// ClearQuest drops the active quest pointer and its denormalized text.
func (c *Character) ClearQuest() {
	c.CurrentQuestID = ""
	c.CurrentStepID = ""
	c.CurrentQuestTitle = ""
	c.CurrentStepDescription = ""
}

// ClearSideQuest resets all side-quest fields.
func (c *Character) ClearSideQuest() {
	c.SideQuestActive = false
	c.SideQuestObjective = ""
	c.SideQuestTurns = 0
}
