package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestExtractReservationID(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 27, 19, 30, 0, 0, time.UTC)

	cases := []struct {
		content string
		want    string
	}{
		{"ご予約ありがとうございます。予約番号: ABC-1234567 です。", "ABC-1234567"},
		{"予約ID：XYZ-7654321", "XYZ-7654321"},
		{"受付番号: R-2026-001", "R-2026-001"},
		{"確認番号: 98765XYZ", "98765XYZ"},
		{"お控え TBL-0123456789 をお持ちください", "TBL-0123456789"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, ExtractReservationID(tc.content, "TBL", now), tc.content)
	}

	// No marker anywhere falls back to a synthesized id.
	require.Equal(t, "TRT-20260827193000", ExtractReservationID("予約が完了しました", "TRT", now))
}

func TestCompletionDetected(t *testing.T) {
	t.Parallel()

	require.True(t, CompletionDetected("https://example.com/form", "予約が完了しました"))
	require.True(t, CompletionDetected("https://example.com/booking/complete", "ありがとうございました"))
	require.True(t, CompletionDetected("https://example.com/thanks", ""))
	require.False(t, CompletionDetected("https://example.com/form", "入力内容をご確認ください"))
}

func TestURLBlocked(t *testing.T) {
	t.Parallel()

	markers := []string{"ai_request_booking"}
	require.True(t, URLBlocked("https://tabelog.com/ai_request_booking?from=x", markers))
	require.False(t, URLBlocked("https://tabelog.com/tokyo/A1301/", markers))
}
