package assess

import (
	"testing"

	"github.com/stretchr/testify/require"

	contractx "github.com/tsukimori/yoyaku-agent/agent/contract"
)

func TestRunChainRestaurant(t *testing.T) {
	t.Parallel()

	a := Run(contractx.Restaurant{
		Name:    "くら寿司 渋谷店",
		Website: "https://tabelog.com/tokyo/A1301/13000001/",
	})
	require.True(t, a.Available)
	require.Equal(t, contractx.MethodWebForm, a.Method)
	require.InDelta(t, 0.8, a.Confidence, 0.001)
}

func TestRunReservationWebsite(t *testing.T) {
	t.Parallel()

	a := Run(contractx.Restaurant{
		Name:    "ビストロ青山",
		Website: "https://aoyama-bistro.example.com/reservation",
	})
	require.True(t, a.Available)
	require.Equal(t, contractx.MethodWebForm, a.Method)
	require.InDelta(t, 0.9, a.Confidence, 0.001)
}

func TestRunLuxuryPhoneOnly(t *testing.T) {
	t.Parallel()

	a := Run(contractx.Restaurant{
		Name:  "懐石 花見",
		Phone: "03-1234-5678",
	})
	require.False(t, a.Available)
	require.Equal(t, contractx.MethodPhoneOnly, a.Method)
	require.Equal(t, "03-1234-5678", a.FallbackPhone)
	require.NotEmpty(t, a.Alternatives)
}

func TestRunPhoneFallback(t *testing.T) {
	t.Parallel()

	a := Run(contractx.Restaurant{
		Name:  "居酒屋一番",
		Phone: "03-9876-5432",
	})
	require.True(t, a.Available)
	require.Equal(t, contractx.MethodWebForm, a.Method)
	require.InDelta(t, 0.7, a.Confidence, 0.001)
	require.Equal(t, "03-9876-5432", a.FallbackPhone)
}

func TestRunNoInformation(t *testing.T) {
	t.Parallel()

	a := Run(contractx.Restaurant{Name: "名無し食堂"})
	require.False(t, a.Available)
	require.Equal(t, contractx.MethodUnknown, a.Method)
	require.NotEmpty(t, a.Alternatives)
}

func TestRunChainWithoutContactInfo(t *testing.T) {
	t.Parallel()

	// A chain name alone is not enough without a website or phone.
	a := Run(contractx.Restaurant{Name: "ガスト 新宿店"})
	require.False(t, a.Available)
	require.Equal(t, contractx.MethodUnknown, a.Method)
}
