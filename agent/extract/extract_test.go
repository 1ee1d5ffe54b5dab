package extract

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPartySize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want int
	}{
		{"2名", 2},
		{"4人でお願いします", 4},
		{"12", 12},
		{"三人", 3},
		{"六名です", 6},
	}
	for _, tc := range cases {
		got, err := PartySize(tc.in)
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.want, got, tc.in)
	}

	_, err := PartySize("大勢で")
	require.Error(t, err)

	_, err = PartySize("0人")
	require.Error(t, err)
}

func TestContact(t *testing.T) {
	t.Parallel()

	c, err := Contact("田中太郎 090-1234-5678")
	require.NoError(t, err)
	require.Equal(t, "田中太郎", c.Name)
	require.Equal(t, "090-1234-5678", c.Phone)

	c, err = Contact("山田花子、0312345678")
	require.NoError(t, err)
	require.Equal(t, "山田花子", c.Name)
	require.Equal(t, "0312345678", c.Phone)
}

func TestContactPrefersMobilePattern(t *testing.T) {
	t.Parallel()

	c, err := Contact("佐藤 08012345678")
	require.NoError(t, err)
	require.Equal(t, "08012345678", c.Phone)
}

func TestContactIncomplete(t *testing.T) {
	t.Parallel()

	_, err := Contact("090-1234-5678")
	require.Error(t, err, "phone without a name")

	_, err = Contact("田中太郎")
	require.Error(t, err, "name without a phone")
}

func TestEmail(t *testing.T) {
	t.Parallel()

	got, err := Email("  tanaka@example.com ")
	require.NoError(t, err)
	require.Equal(t, "tanaka@example.com", got)

	for _, bad := range []string{"tanaka@example", "not-an-email", "a@b", ""} {
		_, err := Email(bad)
		require.Error(t, err, bad)
	}
}

func TestBulkForm(t *testing.T) {
	t.Parallel()

	text := "日時: 2026-12-25 19:00, 人数: 4名, 名前: 田中太郎, 電話: 090-1234-5678, メール: tanaka@example.com, 要望: 窓際の席"

	require.True(t, IsBulkForm(text))

	form, missing, err := ParseBulkForm(text)
	require.NoError(t, err)
	require.Empty(t, missing)
	require.Equal(t, "2026-12-25T19:00:00", form.Datetime)
	require.Equal(t, 4, form.PartySize)
	require.Equal(t, "田中太郎", form.Contact.Name)
	require.Equal(t, "090-1234-5678", form.Contact.Phone)
	require.Equal(t, "tanaka@example.com", form.Contact.Email)
	require.Equal(t, "窓際の席", form.SpecialRequests)
}

func TestBulkFormNoRequests(t *testing.T) {
	t.Parallel()

	text := "日時: 2026-12-25 19:00, 人数: 2名, 名前: 山田花子, 電話: 03-1234-5678, メール: hanako@example.com, 要望: なし"

	form, _, err := ParseBulkForm(text)
	require.NoError(t, err)
	require.Empty(t, form.SpecialRequests)
}

func TestBulkFormMissingFields(t *testing.T) {
	t.Parallel()

	text := "日時: 2026-12-25 19:00, 人数: 4名, 名前: 田中太郎"

	_, missing, err := ParseBulkForm(text)
	require.Error(t, err)
	require.Equal(t, []string{"電話番号", "メールアドレス"}, missing)
}

func TestIsBulkFormRejectsPlainText(t *testing.T) {
	t.Parallel()

	require.False(t, IsBulkForm("明日の19時にお願いします"))
}
