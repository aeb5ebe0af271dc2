package pdftext

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"testing"

	"orgscan/internal/services"
)

func TestFormatPageText(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "hello world", "hello world"},
		{"embedded newlines", "hello\nworld\ntoday", "hello world today"},
		{"windows newlines", "hello\r\nworld", "hello world"},
		{"surrounding whitespace", "  hello world \n", "hello world"},
		{"empty", "\n \n", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatPageText(tc.input); got != tc.want {
				t.Fatalf("FormatPageText(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestSplitPagesPreservesOrder(t *testing.T) {
	raw := "page one\nline two\fpage two\f\fpage three\n"
	pages := SplitPages(raw)
	want := []string{"page one line two", "page two", "page three"}
	if len(pages) != len(want) {
		t.Fatalf("expected %d pages, got %d: %#v", len(want), len(pages), pages)
	}
	for i := range want {
		if pages[i] != want[i] {
			t.Fatalf("page %d: got %q, want %q", i, pages[i], want[i])
		}
	}
	if JoinPages(pages) != "page one line two page two page three" {
		t.Fatalf("unexpected joined text: %q", JoinPages(pages))
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	raw := "alpha\nbeta\fgamma\n"
	first := JoinPages(SplitPages(raw))
	second := JoinPages(SplitPages(raw))
	if first != second {
		t.Fatalf("identical bytes produced different text: %q vs %q", first, second)
	}
}

func TestCLIExtractRequiresPath(t *testing.T) {
	cli := NewCLI()
	if _, err := cli.Extract(context.Background(), "  "); err == nil {
		t.Fatal("expected error when path is empty")
	}
}

func TestCLIExtractNormalizesOutput(t *testing.T) {
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "PDFTEXT_HELPER_MODE=success")
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})

	cli := NewCLI()
	text, err := cli.Extract(context.Background(), "/tmp/sample.pdf")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	want := "We partner with Google's cloud team. Second page here."
	if text != want {
		t.Fatalf("Extract = %q, want %q", text, want)
	}
}

func TestCLIExtractWrapsToolFailure(t *testing.T) {
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "PDFTEXT_HELPER_MODE=corrupt")
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})

	cli := NewCLI()
	_, err := cli.Extract(context.Background(), "/tmp/broken.pdf")
	if err == nil {
		t.Fatal("expected error for corrupt document")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	switch os.Getenv("PDFTEXT_HELPER_MODE") {
	case "success":
		fmt.Fprint(os.Stdout, "We partner with\nGoogle's cloud team.\fSecond page\nhere.\n\f")
		os.Exit(0)
	case "corrupt":
		fmt.Fprintln(os.Stderr, "Syntax Error: Document stream is empty")
		os.Exit(1)
	default:
		os.Exit(0)
	}
}
