// Command simulate_game plays Daydream end to end with a second model acting
// as the student: it creates a character, takes turns, and walks the chapter
// review whenever one concludes. Useful for eyeballing prompt quality against
// the live Storyteller.
package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/tatianab/daydream/internal/config"
	"github.com/tatianab/daydream/internal/content"
	"github.com/tatianab/daydream/internal/engine"
	"github.com/tatianab/daydream/internal/eoc"
	"github.com/tatianab/daydream/internal/models"
	"github.com/tatianab/daydream/internal/narration"
	"github.com/tatianab/daydream/internal/quest"
	"github.com/tatianab/daydream/internal/store"
)

const maxTurns = 20

func main() {
	ctx := context.Background()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	repo, err := content.Load()
	if err != nil {
		log.Fatalf("Failed to load content: %v", err)
	}
	if err := quest.ValidateContent(repo); err != nil {
		log.Fatalf("Content validation failed: %v", err)
	}

	st, err := store.Open("simulate.db")
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	gateway, err := narration.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Fatalf("Failed to create Storyteller gateway: %v", err)
	}
	defer gateway.Close()

	eng := engine.New(gateway, st, repo)
	chapters := eoc.New(gateway, st, repo)

	// The player LLM gets its own client so its chatter never shares state
	// with the Storyteller.
	playerClient, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		log.Fatalf("Failed to create player client: %v", err)
	}
	defer playerClient.Close()
	player := playerClient.GenerativeModel(cfg.GeminiModel)

	ch := models.NewCharacter("simulation", "Cog", "Android", "Inventor", "Becoming Awesome")
	ch.Abilities = repo.Abilities(ch.Race, ch.Class)
	ch.CurrentLocation = content.StartingLocation
	if q := repo.Quest(content.StarterQuest); q != nil {
		ch.CurrentQuestID = content.StarterQuest
		ch.CurrentStepID = q.StartingStep
		ch.CurrentQuestTitle = q.Title
		if step := q.Steps[q.StartingStep]; step != nil {
			ch.CurrentStepDescription = step.Description
		}
	}
	if err := st.SaveCharacter(ctx, ch); err != nil {
		log.Fatalf("Failed to save character: %v", err)
	}
	fmt.Printf("Playing as %s (%s %s) on %q\n\n", ch.Name, ch.Race, ch.Class, ch.CurrentQuestTitle)

	for turn := 1; turn <= maxTurns; turn++ {
		fmt.Printf("--- Turn %d ---\n", turn)

		action := playerAction(ctx, player, ch)
		fmt.Printf("Player: %s\n", action)

		out, err := eng.ProcessTurn(ctx, ch, action)
		if err != nil {
			log.Fatalf("Turn failed: %v", err)
		}
		for _, entry := range out.Entries {
			if entry.Speaker != models.SpeakerPlayer {
				fmt.Printf("%s: %s\n", entry.Speaker, entry.Text)
			}
		}
		if out.XPGained > 0 {
			fmt.Printf("XP: +%d (%s)\n", out.XPGained, strings.Join(out.NewWords, ", "))
		}
		fmt.Printf("State: location=%s fate=%d objective=%q\n\n",
			ch.CurrentLocation, int(ch.FatePoints), ch.CurrentStepDescription)

		if out.ChapterEnded {
			if err := runChapterReview(ctx, chapters, player, ch); err != nil {
				log.Fatalf("Chapter review failed: %v", err)
			}
		}
	}
	fmt.Printf("Done after %d turns, %d chapters completed.\n", maxTurns, len(ch.ReportSummaries))
}

func runChapterReview(ctx context.Context, chapters *eoc.Controller, player *genai.GenerativeModel, ch *models.Character) error {
	fmt.Println("=== Chapter Review ===")
	questions, err := chapters.Begin(ctx, ch)
	if err != nil {
		return err
	}

	answers := make([]string, len(questions))
	for i, q := range questions {
		answers[i] = ask(ctx, player, fmt.Sprintf(
			"You just played a chapter of a text adventure in Thetopia. Answer this reflection question in 2-3 sentences: %s", q))
		fmt.Printf("Q: %s\nA: %s\n", q, answers[i])
	}

	result, err := chapters.SubmitAnswers(ctx, ch, answers)
	if err != nil {
		return err
	}
	fmt.Printf("%s\n", result.Report)

	seed, err := chapters.Acknowledge(ctx, ch)
	if err != nil {
		return err
	}
	fmt.Printf("Next chapter: %s\n\n", seed.Title)
	return nil
}

func playerAction(ctx context.Context, player *genai.GenerativeModel, ch *models.Character) string {
	var history strings.Builder
	entries := ch.ConversationLog
	if len(entries) > 10 {
		entries = entries[len(entries)-10:]
	}
	for _, entry := range entries {
		fmt.Fprintf(&history, "%s: %s\n", entry.Speaker, entry.Text)
	}

	prompt := fmt.Sprintf(`You are playing a text adventure as %s, a %s %s in the city of Thetopia.
Current location: %s
Current objective: %s
Abilities: %v

Recent transcript:
%s
What do you do next? Use a short imperative command ("go north", "use Tinker", "talk to Widget", or a one-sentence action). Occasionally use an advanced vocabulary word. Return ONLY the command.`,
		ch.Name, ch.Race, ch.Class,
		ch.CurrentLocation, ch.CurrentStepDescription, ch.Abilities,
		history.String())

	if action := ask(ctx, player, prompt); action != "" {
		return action
	}
	return "look around"
}

func ask(ctx context.Context, player *genai.GenerativeModel, prompt string) string {
	resp, err := player.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return ""
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return ""
	}
	return strings.TrimSpace(fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]))
}
