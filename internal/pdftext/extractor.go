package pdftext

import (
	"context"
	"errors"
	"os/exec"
	"strings"

	"orgscan/internal/services"
)

var commandContext = exec.CommandContext

// Extractor converts an uploaded document into plain text.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// Option configures the CLI extractor.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the pdftotext command-line tool from Poppler.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI extractor using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "pdftotext"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Extract runs pdftotext and returns the normalized document text. Pages are
// delimited by form feeds in the tool output; each page is normalized and the
// pages are joined by single spaces, preserving document order.
func (c *CLI) Extract(ctx context.Context, path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New("input path required")
	}

	// "-" streams the text to stdout instead of a sidecar file.
	cmd := commandContext(ctx, c.binary, "-layout", "-enc", "UTF-8", path, "-") //nolint:gosec
	output, err := cmd.Output()
	if err != nil {
		detail := strings.TrimSpace(stderrOf(err))
		if detail == "" {
			detail = err.Error()
		}
		return "", services.Wrap(services.ErrExternalTool, "pdftext", "pdftotext", detail, err)
	}

	return JoinPages(SplitPages(string(output))), nil
}

func stderrOf(err error) string {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return string(exitErr.Stderr)
	}
	return ""
}
