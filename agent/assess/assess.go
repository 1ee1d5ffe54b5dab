// Package assess classifies a restaurant record into a booking-method
// recommendation before any automation is attempted. Pure heuristics
// over the record; no network calls.
package assess

import (
	"fmt"
	"strings"

	contractx "github.com/tsukimori/yoyaku-agent/agent/contract"
)

// Large chains usually run their own online reservation system.
var chainKeywords = []string{
	"すかいらーく", "ガスト", "ジョナサン", "バーミヤン", "ココス",
	"くら寿司", "スシロー", "はま寿司", "かっぱ寿司",
	"マクドナルド", "ケンタッキー", "モスバーガー",
	"デニーズ", "ロイヤルホスト", "ビッグボーイ",
	"鳥貴族", "和民", "魚民", "白木屋", "笑笑",
}

// The narrow luxury subset that takes reservations by phone only.
var exclusivePhoneOnlyKeywords = []string{"割烹", "懐石", "料亭", "会席"}

var reservationSiteKeywords = []string{"reservation", "予約", "booking", "table"}

// Run evaluates the decision table in order; the first matching rule
// wins. The result is computed once per session and never revisited.
func Run(r contractx.Restaurant) contractx.Assessment {
	name := strings.ToLower(r.Name)
	website := strings.ToLower(r.Website)

	if containsAny(name, chainKeywords) && (r.Website != "" || r.Phone != "") {
		return contractx.Assessment{
			Available:  true,
			Method:     contractx.MethodWebForm,
			Confidence: 0.8,
			Reason:     "オンライン予約システム（チェーン店）",
		}
	}

	if r.Website != "" && containsAny(website, reservationSiteKeywords) {
		return contractx.Assessment{
			Available:  true,
			Method:     contractx.MethodWebForm,
			Confidence: 0.9,
			Reason:     "ウェブサイト予約フォーム",
		}
	}

	if r.Phone != "" {
		if containsAny(name, exclusivePhoneOnlyKeywords) {
			return contractx.Assessment{
				Available:     false,
				Method:        contractx.MethodPhoneOnly,
				Reason:        "このレストランは電話予約のみ対応しています（高級店のため）",
				FallbackPhone: r.Phone,
				Alternatives: []string{
					fmt.Sprintf("📞 直接お電話: %s", r.Phone),
					"🌐 予約サイト（ぐるなび、食べログ、ホットペッパーなど）",
					"🚶 店舗への直接来店",
				},
			}
		}
		return contractx.Assessment{
			Available:     true,
			Method:        contractx.MethodWebForm,
			Confidence:    0.7,
			Reason:        "ウェブサイトまたは電話予約",
			FallbackPhone: r.Phone,
		}
	}

	return contractx.Assessment{
		Available: false,
		Method:    contractx.MethodUnknown,
		Reason:    "予約システムの情報が不足しています",
		Alternatives: []string{
			"🌐 レストランの公式サイトを確認",
			"🚶 店舗への直接来店",
		},
	}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, strings.ToLower(k)) {
			return true
		}
	}
	return false
}
