package render

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"

	sgerrors "github.com/matzehuels/sortgroup/pkg/errors"
)

// rsvgTool is the librsvg command line converter.
const rsvgTool = "rsvg-convert"

// Available reports whether the SVG converter is on PATH.
func Available() bool {
	_, err := exec.LookPath(rsvgTool)
	return err == nil
}

// ToPDF converts an SVG document to PDF.
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	return convert(ctx, svg, "pdf")
}

// ToPNG converts an SVG document to PNG, zoomed by scale. A scale of zero
// or less renders at 1x.
func ToPNG(ctx context.Context, svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = 1
	}
	return convert(ctx, svg, "png", "--zoom", strconv.FormatFloat(scale, 'f', 2, 64))
}

func convert(ctx context.Context, svg []byte, format string, args ...string) ([]byte, error) {
	if !Available() {
		return nil, sgerrors.New(sgerrors.ErrCodeUnsupported,
			"%s output needs %s (brew install librsvg, or apt install librsvg2-bin)", format, rsvgTool)
	}

	cmd := exec.CommandContext(ctx, rsvgTool, append([]string{"--format", format}, args...)...)
	cmd.Stdin = bytes.NewReader(svg)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, sgerrors.Wrap(sgerrors.ErrCodeInternal, err, "%s %s: %s", rsvgTool, format, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
