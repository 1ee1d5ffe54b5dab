package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	contractx "github.com/tsukimori/yoyaku-agent/agent/contract"
)

const rejectToken = "INVALID"

const datetimeSystemPrompt = "あなたは日時抽出の専門家です。"

const datetimePromptTemplate = `現在の日時: %s

ユーザーの入力から予約日時を抽出してください。
入力: "%s"

以下の形式で日時を返してください（ISO形式）:
YYYY-MM-DDTHH:MM:SS

例:
- "明日の19時" -> 翌日の19:00:00
- "今週土曜日の12時" -> 今週土曜日の12:00:00
- "12月25日18時30分" -> 該当年の12月25日18:30:00

注意:
- 過去の日時は無効です（現在より後の日時のみ）
- 年が指定されていない場合は、現在の年または翌年を適切に推測してください
- 時刻が指定されていない場合は19:00をデフォルトとします

日時のみを返してください。他の説明は不要です。
抽出できない場合は"%s"と返してください。`

// DatetimeExtractor delegates natural-language datetime parsing to the
// language-model collaborator. The model must answer with a strict
// ISO-8601 timestamp or the rejection token; anything else, and any
// timestamp not strictly in the future, is an extraction failure.
type DatetimeExtractor struct {
	completer contractx.TextCompleter
}

var _ contractx.DatetimeExtractor = (*DatetimeExtractor)(nil)

func NewDatetimeExtractor(completer contractx.TextCompleter) *DatetimeExtractor {
	return &DatetimeExtractor{completer: completer}
}

func (e *DatetimeExtractor) Extract(ctx context.Context, text string, now time.Time) (time.Time, error) {
	if e.completer == nil {
		return time.Time{}, fmt.Errorf("%w: datetime completer is not configured", contractx.ErrInternal)
	}

	prompt := fmt.Sprintf(datetimePromptTemplate, now.Format("2006年01月02日 15時04分"), text, rejectToken)
	raw, err := e.completer.Complete(ctx, datetimeSystemPrompt, prompt)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: datetime completion: %v", contractx.ErrValidation, err)
	}

	answer := strings.TrimSpace(raw)
	if answer == "" || strings.Contains(answer, rejectToken) {
		return time.Time{}, fmt.Errorf("%w: model rejected datetime input %q", contractx.ErrValidation, text)
	}

	parsed, err := parseISOLocal(answer)
	if err != nil {
		log.Debug().Str("answer", answer).Msg("datetime answer is not ISO-8601")
		return time.Time{}, fmt.Errorf("%w: %v", contractx.ErrValidation, err)
	}

	if !parsed.After(now) {
		return time.Time{}, fmt.Errorf("%w: %s is not in the future", contractx.ErrValidation, answer)
	}
	return parsed, nil
}

func parseISOLocal(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04", time.RFC3339} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable datetime %q", s)
}
