package core

import (
	"fmt"
	"time"
)

// Interval represents a bar granularity
type Interval string

const (
	IntervalDay   Interval = "1d"
	IntervalWeek  Interval = "1wk"
	IntervalMonth Interval = "1mo"
)

// Side represents the direction of a simulated position
type Side string

const (
	SideLong  Side = "long"
	SideShort Side = "short"
)

// Bar represents one OHLCV observation. Histories are chronological slices
// with no duplicate timestamps, immutable once handed to the engine.
type Bar struct {
	Symbol   string    `json:"symbol,omitempty"`
	Interval Interval  `json:"interval,omitempty"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   int64     `json:"volume"`
	Time     time.Time `json:"time"`
}

// IsValid checks if the bar has a usable price range
func (b Bar) IsValid() bool {
	return b.High >= b.Low && b.Low > 0 && !b.Time.IsZero()
}

// Signal is a per-bar strategy decision
type Signal int

const (
	SignalHold Signal = iota
	SignalEnterLong
	SignalEnterShort
	SignalExit
)

func (s Signal) String() string {
	switch s {
	case SignalEnterLong:
		return "enter_long"
	case SignalEnterShort:
		return "enter_short"
	case SignalExit:
		return "exit"
	default:
		return "hold"
	}
}

// IsEntry returns true for signals that open a position
func (s Signal) IsEntry() bool {
	return s == SignalEnterLong || s == SignalEnterShort
}

// ExitReason records why a simulated position was closed
type ExitReason string

const (
	ExitStop   ExitReason = "stop"
	ExitTarget ExitReason = "target"
	ExitSignal ExitReason = "signal"
	ExitTime   ExitReason = "time"
)

// ValidateHistory checks that bars are chronological with no duplicate
// timestamps and that every bar carries a usable price range.
func ValidateHistory(bars []Bar) error {
	for i, b := range bars {
		if !b.IsValid() {
			return WrapError(ErrInvalidBar,
				fmt.Errorf("bar %d at %s has invalid OHLC range", i, b.Time.Format("2006-01-02")))
		}
		if i > 0 && !b.Time.After(bars[i-1].Time) {
			return WrapError(ErrInvalidBar,
				fmt.Errorf("bar %d at %s is not strictly after its predecessor", i, b.Time.Format("2006-01-02")))
		}
	}
	return nil
}
