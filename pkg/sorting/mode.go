package sorting

import (
	"strings"

	"github.com/matzehuels/sortgroup/pkg/errors"
)

// Mode selects how a group orders its direct members.
type Mode int

const (
	// ModeManual keeps the member list as authored. New members append.
	ModeManual Mode = iota
	// ModeHierarchy orders members by their accumulated sibling index below
	// the group's node; later siblings draw on top.
	ModeHierarchy
	// ModeIsometric orders members by world-space Y; lower Y draws behind.
	ModeIsometric
)

var modeNames = map[Mode]string{
	ModeManual:    "manual",
	ModeHierarchy: "hierarchy",
	ModeIsometric: "isometric",
}

// String returns the lowercase mode name.
func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return "unknown"
}

// ParseMode parses a mode name case-insensitively. The empty string parses
// as ModeManual.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ModeManual, nil
	}
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return ModeManual, errors.New(errors.ErrCodeInvalidMode, "unknown sorting mode %q (want manual, hierarchy or isometric)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if _, ok := modeNames[m]; !ok {
		return nil, errors.New(errors.ErrCodeInvalidMode, "unknown sorting mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
