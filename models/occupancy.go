package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// Occupancy is the isOccupied flag as sent by sensors. Firmware in the field
// sends booleans, 0/1 and "yes"/"no" strings, so decoding is lenient: any
// well-formed JSON value is accepted and folded to a bool.
type Occupancy bool

func (o *Occupancy) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*o = false
		return nil
	}

	switch data[0] {
	case 'n':
		*o = false
		return nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*o = Occupancy(b)
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*o = Occupancy(parseOccupancyString(s))
		return nil
	case '[', '{':
		*o = true
		return nil
	}

	// Overflow yields ±Inf with ErrRange, which is still a nonzero reading.
	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return err
	}
	*o = n != 0
	return nil
}

func parseOccupancyString(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "false", "no", "off", "0":
		return false
	}
	return true
}
