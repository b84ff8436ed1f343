package core

import (
	"errors"
	"testing"
	"time"
)

func TestBar_IsValid(t *testing.T) {
	b := Bar{
		Symbol: "AAPL",
		Open:   100, High: 105, Low: 99, Close: 102,
		Volume: 1000,
		Time:   time.Now(),
	}

	if !b.IsValid() {
		t.Error("expected valid bar")
	}

	inverted := Bar{Open: 100, High: 99, Low: 105, Close: 102, Time: time.Now()}
	if inverted.IsValid() {
		t.Error("expected invalid bar for high < low")
	}

	noTime := Bar{Open: 100, High: 105, Low: 99, Close: 102}
	if noTime.IsValid() {
		t.Error("expected invalid bar for zero time")
	}
}

func TestSignal_String(t *testing.T) {
	signals := []Signal{SignalHold, SignalEnterLong, SignalEnterShort, SignalExit}
	expected := []string{"hold", "enter_long", "enter_short", "exit"}

	for i, s := range signals {
		if s.String() != expected[i] {
			t.Errorf("expected %s, got %s", expected[i], s)
		}
	}
}

func TestSignal_IsEntry(t *testing.T) {
	if !SignalEnterLong.IsEntry() || !SignalEnterShort.IsEntry() {
		t.Error("entry signals should report IsEntry")
	}
	if SignalHold.IsEntry() || SignalExit.IsEntry() {
		t.Error("hold/exit should not report IsEntry")
	}
}

func TestExitReason_Constants(t *testing.T) {
	reasons := []ExitReason{ExitStop, ExitTarget, ExitSignal, ExitTime}
	expected := []string{"stop", "target", "signal", "time"}

	for i, r := range reasons {
		if string(r) != expected[i] {
			t.Errorf("expected %s, got %s", expected[i], r)
		}
	}
}

func TestValidateHistory(t *testing.T) {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	mk := func(day int) Bar {
		return Bar{Open: 100, High: 101, Low: 99, Close: 100, Time: base.AddDate(0, 0, day)}
	}

	tests := []struct {
		name    string
		bars    []Bar
		wantErr bool
	}{
		{"empty", nil, false},
		{"chronological", []Bar{mk(0), mk(1), mk(2)}, false},
		{"duplicate timestamp", []Bar{mk(0), mk(0)}, true},
		{"out of order", []Bar{mk(1), mk(0)}, true},
		{"inverted range", []Bar{{Open: 100, High: 99, Low: 105, Close: 100, Time: base}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHistory(tt.bars)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateHistory() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidBar) {
				t.Errorf("expected ErrInvalidBar, got %v", err)
			}
		})
	}
}
