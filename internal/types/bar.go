package types

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Bar represents a single OHLCV price observation. Bars are expected to be
// strictly time-ascending; gaps are tolerated.
type Bar struct {
	Time   time.Time `csv:"time" json:"time,omitempty"`
	Open   float64   `csv:"open" json:"open"`
	High   float64   `csv:"high" json:"high"`
	Low    float64   `csv:"low" json:"low"`
	Close  float64   `csv:"close" json:"close"`
	Volume float64   `csv:"volume" json:"volume"`
}

// barJSON mirrors Bar with lenient field types. The trading engine serializes
// bars with numbers sometimes quoted, volume sometimes reported as tick_volume,
// and time either as RFC3339 or epoch seconds.
type barJSON struct {
	Time       json.RawMessage `json:"time"`
	Open       flexFloat       `json:"open"`
	High       flexFloat       `json:"high"`
	Low        flexFloat       `json:"low"`
	Close      flexFloat       `json:"close"`
	Volume     *flexFloat      `json:"volume"`
	TickVolume *flexFloat      `json:"tick_volume"`
}

// UnmarshalJSON implements lenient decoding for Bar.
func (b *Bar) UnmarshalJSON(data []byte) error {
	var raw barJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	b.Open = float64(raw.Open)
	b.High = float64(raw.High)
	b.Low = float64(raw.Low)
	b.Close = float64(raw.Close)

	// volume takes precedence over tick_volume; both absent means 0
	switch {
	case raw.Volume != nil:
		b.Volume = float64(*raw.Volume)
	case raw.TickVolume != nil:
		b.Volume = float64(*raw.TickVolume)
	default:
		b.Volume = 0
	}

	if len(raw.Time) > 0 {
		t, err := parseBarTime(raw.Time)
		if err != nil {
			return err
		}

		b.Time = t
	}

	return nil
}

// flexFloat decodes a JSON number or a numeric string into a float64.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		*f = 0

		return nil
	}

	s = strings.Trim(s, `"`)

	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}

	*f = flexFloat(value)

	return nil
}

func parseBarTime(raw json.RawMessage) (time.Time, error) {
	s := strings.TrimSpace(string(raw))
	if s == "null" {
		return time.Time{}, nil
	}

	if strings.HasPrefix(s, `"`) {
		var t time.Time
		if err := json.Unmarshal(raw, &t); err != nil {
			return time.Time{}, err
		}

		return t, nil
	}

	// epoch seconds
	seconds, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return time.Time{}, err
	}

	return time.Unix(int64(seconds), 0).UTC(), nil
}
