package sorting

import (
	"encoding/json"
	"testing"

	sgerrors "github.com/matzehuels/sortgroup/pkg/errors"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"manual", ModeManual, false},
		{"Hierarchy", ModeHierarchy, false},
		{" ISOMETRIC ", ModeIsometric, false},
		{"", ModeManual, false},
		{"depth", ModeManual, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				if !sgerrors.Is(err, sgerrors.ErrCodeInvalidMode) {
					t.Errorf("ParseMode(%q) error = %v, want INVALID_MODE", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMode(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestModeString(t *testing.T) {
	if s := ModeIsometric.String(); s != "isometric" {
		t.Errorf("String() = %q", s)
	}
	if s := Mode(42).String(); s != "unknown" {
		t.Errorf("String() of invalid mode = %q, want unknown", s)
	}
}

func TestModeJSON(t *testing.T) {
	type cfg struct {
		Mode Mode `json:"mode"`
	}

	data, err := json.Marshal(cfg{Mode: ModeHierarchy})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"mode":"hierarchy"}` {
		t.Errorf("Marshal = %s", data)
	}

	var c cfg
	if err := json.Unmarshal([]byte(`{"mode":"Isometric"}`), &c); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if c.Mode != ModeIsometric {
		t.Errorf("Mode = %v, want isometric", c.Mode)
	}

	if _, err := json.Marshal(cfg{Mode: Mode(7)}); err == nil {
		t.Error("Marshal of invalid mode should fail")
	}
	if err := json.Unmarshal([]byte(`{"mode":"sideways"}`), &c); err == nil {
		t.Error("Unmarshal of unknown mode should fail")
	}
}
