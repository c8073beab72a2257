package orchestrator

import (
	"context"
	"fmt"

	"github.com/yungbote/myu-chat-backend/internal/domain/chat"
	"github.com/yungbote/myu-chat-backend/internal/modules/chat/prompt"
	"github.com/yungbote/myu-chat-backend/internal/modules/chat/scoring"
)

const (
	msgCalculateNeedsData   = "Để tính điểm, vui lòng cung cấp: điểm 3 môn và tổ hợp.\nVí dụ: 'Tính điểm tổ hợp A00: Toán 8, Lý 7.5, Hóa 9'"
	msgEligibilityNeedsData = "Để kiểm tra đủ điểm, vui lòng cho biết tổng điểm hoặc điểm 3 môn của bạn."
	msgSuggestNeedsData     = "Để gợi ý tổ hợp, vui lòng cho biết điểm các môn của bạn.\nVí dụ: 'Toán 8, Văn 7, Anh 9, Lý 7.5'"

	defaultProgramCode = "default"
)

// toolTurn extracts tool parameters with one model call, runs the scoring
// tools locally and has the model phrase the result. Any error means the
// caller falls back to the grounded QA path.
func (o *Orchestrator) toolTurn(ctx context.Context, message string, history []chat.Turn) (string, error) {
	prior := prompt.PriorFromHistory(prompt.RecentForQA(history, message))

	raw, err := o.gen.Raw(ctx, prompt.Extract(message, prior))
	if err != nil {
		return "", fmt.Errorf("extract tool params: %w", err)
	}
	ex, err := prompt.ParseExtraction(raw)
	if err != nil {
		return "", err
	}

	outcome := runTools(ex, prior, message)
	o.log.Debug("tool intents processed", "intents", ex.Intents, "results", len(outcome.Results))

	formatPrompt, err := prompt.ToolResult(message, outcome)
	if err != nil {
		return "", err
	}
	answer, err := o.gen.Raw(ctx, formatPrompt)
	if err != nil {
		return "", fmt.Errorf("format tool result: %w", err)
	}
	return answer, nil
}

// runTools executes the extracted intents in order. Later intents may reuse
// the total computed by calculate_score. Unknown intents are skipped.
func runTools(ex prompt.Extraction, prior prompt.Prior, message string) prompt.ToolOutcome {
	scores := scoring.Scores(ex.ScoreMap())
	combination := string(ex.Combination)

	var priorTotal float64
	if prior.HasTotal && len(scores) == 0 && prompt.RefersToPriorScore(message) {
		priorTotal = prior.TotalScore
	}

	results := map[string]any{}
	var calculated float64
	for _, name := range ex.Intents {
		switch name {
		case prompt.IntentCalculateScore:
			if len(scores) == 0 || combination == "" {
				results[name] = prompt.ToolError{Error: msgCalculateNeedsData}
				continue
			}
			r, err := scoring.CalculateAdmissionScore(scores, combination)
			if err != nil {
				results[name] = prompt.ToolError{Error: err.Error()}
				continue
			}
			results[name] = r
			calculated = r.TotalScore

		case prompt.IntentCheckEligibility:
			total := calculated
			if total == 0 {
				total = priorTotal
			}
			if total == 0 && len(scores) > 0 && combination != "" {
				if r, err := scoring.CalculateAdmissionScore(scores, combination); err == nil {
					total = r.TotalScore
				}
			}
			if total == 0 {
				results[name] = prompt.ToolError{Error: msgEligibilityNeedsData}
				continue
			}
			results[name] = scoring.CheckEligibility(total, programCode(ex))

		case prompt.IntentSuggestCombinations:
			if len(scores) == 0 {
				results[name] = prompt.ToolError{Error: msgSuggestNeedsData}
				continue
			}
			results[name] = scoring.SuggestBestCombinations(scores)
		}
	}
	return prompt.ToolOutcome{MultiIntent: len(ex.Intents) > 1, Results: results}
}

func programCode(ex prompt.Extraction) string {
	if code := string(ex.MajorCode); code != "" {
		return code
	}
	if ex.MajorName != "" {
		if code, ok := scoring.ResolveMajorCode(ex.MajorName); ok {
			return code
		}
	}
	return defaultProgramCode
}
