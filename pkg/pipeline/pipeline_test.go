package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sortgroup/pkg/cache"
	sgerrors "github.com/matzehuels/sortgroup/pkg/errors"
	sgio "github.com/matzehuels/sortgroup/pkg/io"
	"github.com/matzehuels/sortgroup/pkg/sorting"
)

const roomScene = `{
  "nodes": [
    {"id": "room", "group": {"mode": "hierarchy"}},
    {"id": "rug", "parent": "room", "renderer": {}},
    {"id": "table", "parent": "room", "position": {"y": 2},
     "group": {"mode": "manual", "members": ["plate", "cup"]}},
    {"id": "cup", "parent": "table", "renderer": {}},
    {"id": "plate", "parent": "table", "renderer": {}}
  ]
}`

func writeScene(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "room.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func quietRunner(c cache.Cache) *Runner {
	return NewRunner(c, nil, log.New(&bytes.Buffer{}))
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"dot", false},
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"SVG", true},
		{"gif", true},
		{"", true},
	}
	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !sgerrors.Is(err, sgerrors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, sgerrors.GetCode(err))
		}
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("empty formats should pass: %v", err)
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"svg", []string{"svg"}},
		{"SVG, png ,", []string{"svg", "png"}},
	}
	for _, tt := range tests {
		if got := ParseFormats(tt.in); !slices.Equal(got, tt.want) {
			t.Errorf("ParseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	opts.SetDefaults()
	if opts.Scale != DefaultScale {
		t.Errorf("Scale = %g, want %g", opts.Scale, DefaultScale)
	}
	if opts.Logger == nil {
		t.Error("Logger should be set")
	}

	opts.Scale = -1
	if err := opts.Validate(); !sgerrors.Is(err, sgerrors.ErrCodeInvalidInput) {
		t.Errorf("negative scale: err = %v", err)
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{Roots: []string{"b", "a"}, Scale: 3, Mode: sorting.ModeIsometric}
	svg := opts.ArtifactKeyOpts(FormatSVG)
	if svg.Scale != 0 {
		t.Errorf("svg key carries scale %g", svg.Scale)
	}
	if !slices.Equal(svg.Roots, []string{"a", "b"}) {
		t.Errorf("Roots = %v, want sorted", svg.Roots)
	}
	if svg.Mode != "isometric" {
		t.Errorf("Mode = %q", svg.Mode)
	}
	if png := opts.ArtifactKeyOpts(FormatPNG); png.Scale != 3 {
		t.Errorf("png key scale = %g, want 3", png.Scale)
	}
}

func TestExecuteAssignsOrders(t *testing.T) {
	path := writeScene(t, roomScene)
	res, err := quietRunner(nil).Execute(context.Background(), path, Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	var got []string
	for _, row := range res.Orders {
		got = append(got, row.Node)
	}
	if want := []string{"plate", "cup", "rug"}; !slices.Equal(got, want) {
		t.Errorf("order rows = %v, want %v", got, want)
	}
	if res.Stats.Renderers != 3 || res.Stats.Groups != 2 {
		t.Errorf("Stats = %+v", res.Stats)
	}
	if len(res.Stats.Passes) != 1 || res.Stats.Written() != 3 {
		t.Errorf("passes = %+v, want one pass writing 3", res.Stats.Passes)
	}
	if res.Artifacts != nil {
		t.Error("no formats requested, artifacts should be nil")
	}
	if len(res.SceneHash) != 64 {
		t.Errorf("SceneHash = %q", res.SceneHash)
	}
}

func TestExecuteData(t *testing.T) {
	runner := quietRunner(nil)
	fromFile, err := runner.Execute(context.Background(), writeScene(t, roomScene), Options{})
	if err != nil {
		t.Fatal(err)
	}
	fromData, err := runner.ExecuteData(context.Background(), []byte(roomScene), sgio.FormatJSON, Options{})
	if err != nil {
		t.Fatalf("ExecuteData: %v", err)
	}
	if !slices.Equal(fromData.Orders, fromFile.Orders) {
		t.Errorf("orders from data = %+v, want %+v", fromData.Orders, fromFile.Orders)
	}
	if fromData.SceneHash != fromFile.SceneHash {
		t.Error("same bytes should hash the same from memory and from disk")
	}

	_, err = runner.ExecuteData(context.Background(), []byte("nodes: ["), sgio.FormatYAML, Options{})
	if !sgerrors.Is(err, sgerrors.ErrCodeInvalidFormat) {
		t.Errorf("broken YAML: err = %v, want INVALID_FORMAT", err)
	}
}

func TestExecuteRendersDOTAndJSON(t *testing.T) {
	path := writeScene(t, roomScene)
	res, err := quietRunner(nil).Execute(context.Background(), path, Options{
		Formats: []string{FormatDOT, FormatJSON},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	dot := string(res.Artifacts[FormatDOT])
	for _, want := range []string{"digraph G", `"g:room"`, `"r:plate"`} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %s:\n%s", want, dot)
		}
	}

	var rows []sgio.OrderRow
	if err := json.Unmarshal(res.Artifacts[FormatJSON], &rows); err != nil {
		t.Fatalf("orders JSON: %v", err)
	}
	if len(rows) != 3 || rows[0].Node != "plate" || rows[0].Order != 3 {
		t.Errorf("rows = %+v", rows)
	}
}

func TestExecuteUsesCache(t *testing.T) {
	path := writeScene(t, roomScene)
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := quietRunner(c)
	ctx := context.Background()
	opts := Options{Formats: []string{FormatDOT}}

	first, err := r.Execute(ctx, path, opts)
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	if first.CacheHit {
		t.Error("first run should miss")
	}
	second, err := r.Execute(ctx, path, opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !second.CacheHit {
		t.Error("second run should hit")
	}
	if !bytes.Equal(first.Artifacts[FormatDOT], second.Artifacts[FormatDOT]) {
		t.Error("cached DOT differs")
	}

	opts.Refresh = true
	third, err := r.Execute(ctx, path, opts)
	if err != nil {
		t.Fatalf("refresh Execute: %v", err)
	}
	if third.CacheHit {
		t.Error("refresh should bypass the cache")
	}

	opts.Refresh = false
	opts.Detailed = true
	fourth, err := r.Execute(ctx, path, opts)
	if err != nil {
		t.Fatalf("detailed Execute: %v", err)
	}
	if fourth.CacheHit {
		t.Error("changed render options should miss")
	}
}

func TestExecuteSelectedRoot(t *testing.T) {
	path := writeScene(t, roomScene)
	res, err := quietRunner(nil).Execute(context.Background(), path, Options{
		Formats: []string{FormatDOT},
		Roots:   []string{"table"},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	dot := string(res.Artifacts[FormatDOT])
	if strings.Contains(dot, `"g:room"`) || !strings.Contains(dot, `"g:table"`) {
		t.Errorf("DOT should start at table:\n%s", dot)
	}
}

func TestExecuteErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		path string
		opts Options
		code sgerrors.Code
	}{
		{"missing file", filepath.Join(dir, "none.json"), Options{}, sgerrors.ErrCodeNotFound},
		{"unknown extension", filepath.Join(dir, "scene.xml"), Options{}, sgerrors.ErrCodeInvalidFormat},
		{"bad format", writeScene(t, roomScene), Options{Formats: []string{"gif"}}, sgerrors.ErrCodeInvalidFormat},
		{"unknown root", writeScene(t, roomScene), Options{Formats: []string{FormatDOT}, Roots: []string{"rug"}}, sgerrors.ErrCodeNotFound},
		{"broken scene", writeScene(t, `{"nodes": [{"id": "a", "parent": "b"}]}`), Options{}, sgerrors.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := quietRunner(nil).Execute(context.Background(), tt.path, tt.opts)
			if err == nil {
				t.Fatal("Execute should fail")
			}
			if got := sgerrors.GetCode(err); got != tt.code {
				t.Errorf("code = %s, want %s (err: %v)", got, tt.code, err)
			}
		})
	}
}

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	if r.Cache == nil || r.Keyer == nil || r.Logger == nil {
		t.Errorf("NewRunner(nil, nil, nil) = %+v", r)
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
