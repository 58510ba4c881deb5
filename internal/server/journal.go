package server

import (
	"log"
	"net/http"
	"sort"

	"github.com/tatianab/daydream/internal/models"
	"github.com/tatianab/daydream/internal/vocab"
)

// handleJournal serves both journal pages: the character sheet and the
// vocabulary/chapter report. The view query parameter selects one; by default
// both are returned.
func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	ch, ok := s.character(w, r)
	if !ok {
		return
	}

	resp := map[string]any{}
	view := r.URL.Query().Get("view")
	if view == "" || view == "sheet" {
		resp["character_sheet"] = characterSheet(ch)
	}
	if view == "" || view == "vocab" {
		report := vocabReport(ch)
		if profile, err := s.store.Profile(r.Context(), ch.UserID); err == nil {
			report["total_player_xp"] = profile.TotalXP
			report["player_level"] = profile.Level
		} else {
			log.Printf("server: loading profile for journal: %v", err)
		}
		resp["vocab_report"] = report
	}
	if len(resp) == 0 {
		writeError(w, http.StatusBadRequest, "unknown journal view")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func characterSheet(ch *models.Character) map[string]any {
	return map[string]any{
		"name":             ch.Name,
		"race_name":        ch.Race,
		"class_name":       ch.Class,
		"philosophy_name":  ch.Philosophy,
		"backstory":        ch.Backstory,
		"abilities":        ch.Abilities,
		"fate_points":      int(ch.FatePoints),
		"current_location": ch.CurrentLocation,
		"inventory":        ch.Inventory,
		"relationships":    ch.Relationships,
		"quest_title":      ch.CurrentQuestTitle,
		"step_description": ch.CurrentStepDescription,
		"turn_count":       ch.TurnCount,
	}
}

type learnedWord struct {
	Word string `json:"word"`
	XP   int    `json:"xp"`
}

func vocabReport(ch *models.Character) map[string]any {
	words := make([]learnedWord, 0, len(ch.LearnedVocab))
	totalXP := 0
	for w := range ch.LearnedVocab {
		xp := vocab.XPFor(w)
		totalXP += xp
		words = append(words, learnedWord{Word: w, XP: xp})
	}
	sort.Slice(words, func(i, j int) bool { return words[i].Word < words[j].Word })

	return map[string]any{
		"learned_words":    words,
		"word_count":       len(words),
		"vocab_xp_earned":  totalXP,
		"report_summaries": ch.ReportSummaries,
	}
}
