package stockweeks

import (
	"errors"
	"fmt"
	"strings"

	"github.com/andresuchdata/stockweeks/internal/domain"
)

// Channel selects which stock/sales population a weeks metric describes.
type Channel uint8

const (
	ChannelTotal Channel = iota
	// ChannelWholesale is stock held by third-party distributors (agency channel).
	ChannelWholesale
	// ChannelWarehouse is direct stock not yet earmarked for direct sales.
	ChannelWarehouse
)

// Channels lists every channel in display order.
var Channels = []Channel{ChannelTotal, ChannelWholesale, ChannelWarehouse}

var (
	ErrUnknownChannel          = errors.New("unknown channel")
	ErrPeriodMismatch          = errors.New("records span more than one period")
	ErrInvalidSellThroughWeeks = errors.New("direct sell-through weeks must be a finite non-negative number")
)

func (c Channel) String() string {
	switch c {
	case ChannelTotal:
		return "total"
	case ChannelWholesale:
		return "wholesale"
	case ChannelWarehouse:
		return "warehouse"
	default:
		return fmt.Sprintf("channel(%d)", uint8(c))
	}
}

// ParseChannel parses a channel name. "agency" is accepted for wholesale.
func ParseChannel(raw string) (Channel, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "total", "":
		return ChannelTotal, nil
	case "wholesale", "agency":
		return ChannelWholesale, nil
	case "warehouse":
		return ChannelWarehouse, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownChannel, raw)
}

// PeriodKey identifies a calendar month.
type PeriodKey struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func (p PeriodKey) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// PeriodFigures ties base figures to the month they describe. Figures may be
// nil for a category that has no record in that month.
type PeriodFigures struct {
	Period  PeriodKey
	Figures *domain.BaseFigures
}

// AggregatedFigures is the field-wise sum of same-period base figures.
type AggregatedFigures struct {
	Period PeriodKey `json:"period"`
	domain.BaseFigures
}
