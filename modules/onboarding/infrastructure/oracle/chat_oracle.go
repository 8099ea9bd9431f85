package oracle

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const systemPrompt = `You are a data-quality assistant for bulk employee imports.
You receive normalized rows and the validation issues already found.
Respond with ONLY a JSON object of this exact shape:
{
  "autoFixes": [{"row": 1, "field": "email", "suggestedValue": "...", "confidence": 0.0, "category": "email_typo", "issue": "..."}],
  "duplicateClusters": [{"rowNumbers": [1, 3], "reason": "...", "confidence": 0.0}],
  "qualityScore": 0,
  "notes": "...",
  "riskFlags": ["..."]
}
Valid fields: firstName, lastName, email, department, jobTitle, level, startDate.
Valid categories: name_casing, email_typo, email_completion, department_match, title_match, level_clamp, date_format, cleanup.
Confidence must be in [0,1]; qualityScore in [0,100]. Suggest departments and job
titles only from the provided reference lists. Do not invent rows.`

type ChatOracleConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// ChatOracle asks a chat-completions model to refine the heuristic analysis.
// Every failure collapses to ErrUnavailable so analyze can degrade instead of
// failing.
type ChatOracle struct {
	config ChatOracleConfig
}

func NewChatOracle(config ChatOracleConfig) *ChatOracle {
	return &ChatOracle{config: config}
}

func (o *ChatOracle) Analyze(ctx context.Context, req Request) (Analysis, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return Analysis{}, gerrors.Wrap(ErrUnavailable, err.Error())
	}

	opts := []option.RequestOption{option.WithAPIKey(o.config.APIKey)}
	if o.config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(o.config.BaseURL))
	}
	client := openai.NewClient(opts...)

	ctx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	response, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: o.config.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(string(payload)),
		},
		Temperature: openai.Float(0),
	})
	if err != nil {
		return Analysis{}, gerrors.Wrap(ErrUnavailable, err.Error())
	}
	if len(response.Choices) == 0 {
		return Analysis{}, gerrors.Wrap(ErrUnavailable, "empty completion")
	}

	var out Analysis
	if err := json.Unmarshal([]byte(stripFences(response.Choices[0].Message.Content)), &out); err != nil {
		return Analysis{}, gerrors.Wrap(ErrUnavailable, "malformed oracle response")
	}
	return out, nil
}

// stripFences removes a ```json ... ``` wrapper some models insist on.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
