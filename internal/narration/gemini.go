package narration

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"math"
	"strings"
	"text/template"

	"github.com/google/generative-ai-go/genai"
	"github.com/tatianab/daydream/internal/models"
	"google.golang.org/api/option"
)

//go:embed prompts/*.txt
var promptFS embed.FS

var prompts = template.Must(template.New("prompts").Funcs(template.FuncMap{
	"join": strings.Join,
}).ParseFS(promptFS, "prompts/*.txt"))

// Gemini implements Gateway against the Gemini API. One generation attempt
// per call.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGemini dials the Gemini API. modelName falls back to a sensible default
// when empty.
func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}
	return &Gemini{
		client: client,
		model:  client.GenerativeModel(modelName),
	}, nil
}

func (g *Gemini) Close() {
	g.client.Close()
}

// generate renders the named prompt template and makes a single model call.
// A blocked or empty response is an error regardless of cause; callers do
// not distinguish safety blocks from transport failures.
func (g *Gemini) generate(ctx context.Context, name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := prompts.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("rendering prompt %s: %w", name, err)
	}

	resp, err := g.model.GenerateContent(ctx, genai.Text(buf.String()))
	if err != nil {
		return "", fmt.Errorf("storyteller call %s: %w", name, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("storyteller call %s: no content returned", name)
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("storyteller call %s: unexpected response part type", name)
	}
	return string(text), nil
}

func (g *Gemini) narrate(ctx context.Context, name string, data any) (string, error) {
	raw, err := g.generate(ctx, name, data)
	if err != nil {
		return "", err
	}
	return cleanNarrative(raw), nil
}

func (g *Gemini) InitialSetup(ctx context.Context, in SetupInput) (string, error) {
	return g.narrate(ctx, "initial_setup.txt", in)
}

func (g *Gemini) Describe(ctx context.Context, in DescribeInput) (string, error) {
	return g.narrate(ctx, "describe.txt", in)
}

func (g *Gemini) AbilityUse(ctx context.Context, in AbilityInput) (string, error) {
	return g.narrate(ctx, "ability_use.txt", in)
}

func (g *Gemini) InvalidDirection(ctx context.Context, in MoveInput) (string, error) {
	return g.narrate(ctx, "invalid_direction.txt", in)
}

func (g *Gemini) InvalidAbility(ctx context.Context, in AbilityInput) (string, error) {
	return g.narrate(ctx, "invalid_ability.txt", in)
}

func (g *Gemini) InterpretCommand(ctx context.Context, in CommandInput) (string, error) {
	return g.narrate(ctx, "interpret_command.txt", in)
}

func (g *Gemini) EvaluateStepCompletion(ctx context.Context, in StepCheckInput) (bool, error) {
	raw, err := g.generate(ctx, "evaluate_step.txt", in)
	if err != nil {
		return false, err
	}
	return parseYesNo(raw), nil
}

func (g *Gemini) CheckChapterProgress(ctx context.Context, in ProgressInput) (Verdict, error) {
	raw, err := g.generate(ctx, "chapter_progress.txt", in)
	if err != nil {
		return VerdictNo, err
	}
	return parseVerdict(raw), nil
}

func (g *Gemini) InitiateSideQuest(ctx context.Context, in SideQuestInput) (string, error) {
	return g.narrate(ctx, "side_quest_offer.txt", in)
}

func (g *Gemini) ConvertSideQuestIdea(ctx context.Context, in SideQuestInput) (string, error) {
	raw, err := g.generate(ctx, "side_quest_idea.txt", in)
	if err != nil {
		return "", err
	}
	var out struct {
		SideQuestObjective string `json:"side_quest_objective"`
	}
	if err := decodeJSON(raw, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.SideQuestObjective) == "" {
		return "", fmt.Errorf("side quest conversion returned an empty objective")
	}
	return out.SideQuestObjective, nil
}

func (g *Gemini) ScoreComprehension(ctx context.Context, in ComprehensionInput) (float64, error) {
	raw, err := g.generate(ctx, "comprehension.txt", in)
	if err != nil {
		return 0, err
	}
	var out struct {
		OverallComprehensionScore float64 `json:"overall_comprehension_score"`
	}
	if err := decodeJSON(raw, &out); err != nil {
		return 0, err
	}
	return math.Min(10, math.Max(1, out.OverallComprehensionScore)), nil
}

func (g *Gemini) AnalyzeWriting(ctx context.Context, in AnalysisInput) (models.WritingAnalysis, error) {
	raw, err := g.generate(ctx, "analyze_writing.txt", in)
	if err != nil {
		return models.WritingAnalysis{}, err
	}
	var out models.WritingAnalysis
	if err := decodeJSON(raw, &out); err != nil {
		return models.WritingAnalysis{}, err
	}
	return out, nil
}

func (g *Gemini) GenerateNextQuest(ctx context.Context, in NextQuestInput) (QuestSeed, error) {
	raw, err := g.generate(ctx, "next_quest.txt", in)
	if err != nil {
		return QuestSeed{}, err
	}
	var seed QuestSeed
	if err := decodeJSON(raw, &seed); err != nil {
		return QuestSeed{}, err
	}
	if !seed.complete() {
		return QuestSeed{}, fmt.Errorf("incomplete quest seed: %+v", seed)
	}
	return seed, nil
}
