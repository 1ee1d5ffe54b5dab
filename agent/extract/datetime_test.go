package extract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	answer string
	err    error
	prompt string
}

func (f *fakeCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	f.prompt = user
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func TestDatetimeExtract(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.Local)
	completer := &fakeCompleter{answer: "2026-08-28T19:00:00"}
	e := NewDatetimeExtractor(completer)

	got, err := e.Extract(context.Background(), "明日の19時", now)
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 8, 28, 19, 0, 0, 0, time.Local), got)
	require.Contains(t, completer.prompt, "明日の19時")
	require.Contains(t, completer.prompt, "2026年08月27日 12時00分")
}

func TestDatetimeExtractShortForm(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.Local)
	e := NewDatetimeExtractor(&fakeCompleter{answer: "2026-09-01T18:30"})

	got, err := e.Extract(context.Background(), "来週", now)
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 9, 1, 18, 30, 0, 0, time.Local), got)
}

func TestDatetimeExtractRejected(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.Local)
	e := NewDatetimeExtractor(&fakeCompleter{answer: "INVALID"})

	_, err := e.Extract(context.Background(), "よくわからない", now)
	require.Error(t, err)
}

func TestDatetimeExtractPast(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.Local)
	e := NewDatetimeExtractor(&fakeCompleter{answer: "2026-08-26T19:00:00"})

	_, err := e.Extract(context.Background(), "昨日の19時", now)
	require.Error(t, err)
}

func TestDatetimeExtractCompleterError(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.Local)
	e := NewDatetimeExtractor(&fakeCompleter{err: errors.New("upstream down")})

	_, err := e.Extract(context.Background(), "明日", now)
	require.Error(t, err)
}

func TestDatetimeExtractGarbageAnswer(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.Local)
	e := NewDatetimeExtractor(&fakeCompleter{answer: "明日の19時ですね"})

	_, err := e.Extract(context.Background(), "明日の19時", now)
	require.Error(t, err)
}
