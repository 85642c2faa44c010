package model

import (
	"encoding"
	"encoding/json"
	"fmt"
	"strings"
)

// Difficulty is the problem difficulty shown next to each item.
type Difficulty int

const (
	Easy Difficulty = iota + 1
	Medium
	Hard
)

var (
	difficultyNames  = [...]string{Easy: "Easy", Medium: "Medium", Hard: "Hard"}
	difficultyByName = map[string]Difficulty{
		"easy":   Easy,
		"medium": Medium,
		"hard":   Hard,
	}
)

// Difficulties lists every valid difficulty in display order.
var Difficulties = []Difficulty{Easy, Medium, Hard}

var (
	_ fmt.Stringer             = Difficulty(0)
	_ json.Marshaler           = Difficulty(0)
	_ json.Unmarshaler         = (*Difficulty)(nil)
	_ encoding.TextMarshaler   = Difficulty(0)
	_ encoding.TextUnmarshaler = (*Difficulty)(nil)
)

// Valid reports whether d is one of Easy, Medium or Hard.
func (d Difficulty) Valid() bool {
	return d >= Easy && d <= Hard
}

func (d Difficulty) String() string {
	if d.Valid() {
		return difficultyNames[d]
	}
	return fmt.Sprintf("Difficulty(%d)", int(d))
}

// ParseDifficulty accepts "Easy", "Medium" or "Hard" in any case.
func ParseDifficulty(s string) (Difficulty, error) {
	d, ok := difficultyByName[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("%w: unknown difficulty %q", ErrValidation, s)
	}
	return d, nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Difficulty) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid difficulty: %d", int(d))
	}
	return []byte(difficultyNames[d]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Difficulty) UnmarshalText(text []byte) error {
	v, err := ParseDifficulty(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// MarshalJSON implements json.Marshaler. Difficulty serializes as a JSON string.
func (d Difficulty) MarshalJSON() ([]byte, error) {
	text, err := d.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Difficulty) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid difficulty: %s", data)
	}
	return d.UnmarshalText([]byte(s))
}
