package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sgerrors "github.com/matzehuels/sortgroup/pkg/errors"
	"github.com/matzehuels/sortgroup/pkg/pipeline"
)

// outputSuffix keeps generated files from colliding with the scene file,
// e.g. level.json renders to level.sorting.json.
const outputSuffix = ".sorting"

// basePath derives the base output path. Without an output it is the input
// without its extension plus outputSuffix; an output that ends in a known
// format extension loses that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input)) + outputSuffix
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// artifactPaths returns the file each format is written to. A single
// format goes to output verbatim when one is given.
func artifactPaths(formats []string, input, output string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

// writeArtifacts writes each format in order and returns the paths written.
// Output "-" sends a single format to the CLI's output.
func (c *CLI) writeArtifacts(artifacts map[string][]byte, formats []string, input, output string) ([]string, error) {
	if output == "-" {
		if len(formats) != 1 {
			return nil, sgerrors.New(sgerrors.ErrCodeInvalidInput, "-o - needs exactly one format, got %d", len(formats))
		}
		_, err := c.out.Write(artifacts[formats[0]])
		return nil, err
	}

	paths := artifactPaths(formats, input, output)
	inputAbs, _ := filepath.Abs(input)
	var written []string
	for _, f := range formats {
		path := paths[f]
		if abs, _ := filepath.Abs(path); abs == inputAbs {
			return written, sgerrors.New(sgerrors.ErrCodeInvalidPath, "refusing to overwrite scene file %s", input)
		}
		if err := os.WriteFile(path, artifacts[f], 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}
