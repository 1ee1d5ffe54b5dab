// Package booking selects and supports the site automation drivers.
package booking

import (
	"fmt"
	"strings"

	contractx "github.com/tsukimori/yoyaku-agent/agent/contract"
)

// SupportedSystems enumerates exactly the reservation systems a driver
// exists for, in user-facing form.
var SupportedSystems = []string{"食べログ (tabelog.com)", "Toreta (toreta.in)"}

// Dispatcher picks a driver from the restaurant's website URL by
// domain signature. No driver is invoked for unsupported sites.
type Dispatcher struct {
	tabelog contractx.Driver
	toreta  contractx.Driver
}

func NewDispatcher(tabelog, toreta contractx.Driver) *Dispatcher {
	return &Dispatcher{tabelog: tabelog, toreta: toreta}
}

func (d *Dispatcher) Dispatch(websiteURL string) (contractx.Driver, error) {
	switch {
	case strings.Contains(websiteURL, "tabelog.com"):
		return d.tabelog, nil
	case strings.Contains(websiteURL, "toreta.in"), strings.Contains(websiteURL, "toreta-reserve"):
		return d.toreta, nil
	}
	return nil, fmt.Errorf("%w: %s", contractx.ErrUnsupportedSite, websiteURL)
}

// UnsupportedResult is the booking outcome for a site no driver
// covers: the supported systems plus phone and generic-site fallback.
func UnsupportedResult(websiteURL, phone string) contractx.BookingResult {
	return contractx.BookingResult{
		Success:          false,
		ErrorKind:        contractx.ErrorKindNotSupported,
		Message:          "申し訳ございません。現在対応している予約システムは、食べログとToretaのみです。",
		RestaurantURL:    websiteURL,
		PhoneNumber:      phone,
		SupportedSystems: append([]string(nil), SupportedSystems...),
	}
}
