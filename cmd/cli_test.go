package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// resetFlags restores every flag to its default so invocations do not leak
// Changed state into each other.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmd executes the root command with args and returns stdout and stderr.
func runCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	cfg = nil
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, errOut, err := runCmd(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v\n%s", args, err, errOut)
	}
	return out
}

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}

func TestCLI_ImportSummary(t *testing.T) {
	home := isolateHome(t)
	in := writeInput(t, home, "ragged.csv", "x,y\n1,2\n3\n4,5\n")

	out, errOut, err := runCmd(t, "import", in, "--separator", "comma", "--numeric")
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if !strings.Contains(out, "Table: ragged") || !strings.Contains(out, "Rows: 3") {
		t.Fatalf("summary = %q", out)
	}
	if !strings.Contains(out, "- y (Y): numeric (valid 2, invalid 33.3%)") {
		t.Fatalf("schema line missing: %q", out)
	}
	if !strings.Contains(errOut, "short row") {
		t.Fatalf("stderr = %q, want short row warning", errOut)
	}
}

func TestCLI_ImportExports(t *testing.T) {
	home := isolateHome(t)
	in := writeInput(t, home, "scan.dat", "# generated\nt  v\n0  1.5\n1  2.5\n")
	dir := filepath.Join(home, "out")

	out := mustRun(t, "import", in,
		"--separator", "space", "--whitespace", "simplify", "--ignore-lines", "1", "--numeric",
		"--xlsx", filepath.Join(dir, "scan.xlsx"),
		"--arrow", filepath.Join(dir, "scan.arrow"),
		"--parquet", filepath.Join(dir, "scan.parquet"),
		"--json", filepath.Join(dir, "scan.json"),
		"--output", filepath.Join(dir, "scan.md"),
	)
	for _, name := range []string{"scan.xlsx", "scan.arrow", "scan.parquet", "scan.json", "scan.md"} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil || info.Size() == 0 {
			t.Fatalf("%s not written: %v", name, err)
		}
	}
	if !strings.Contains(out, "✓ Wrote Parquet") || !strings.Contains(out, "✓ Wrote summary") {
		t.Fatalf("stdout = %q", out)
	}
	md, _ := os.ReadFile(filepath.Join(dir, "scan.md"))
	if !strings.Contains(string(md), "- t ~ v: r=1.000 (n=2)") {
		t.Fatalf("summary = %q", md)
	}
}

func TestCLI_ImportUsesConfigDefaults(t *testing.T) {
	home := isolateHome(t)
	in := writeInput(t, home, "de.txt", "a;b\n1,5;2\n")

	mustRun(t, "config", "set", "separator", "semicolon")
	mustRun(t, "config", "set", "numeric_locale", "de")
	mustRun(t, "config", "set", "convert_to_numeric", "true")

	show := mustRun(t, "config", "show")
	if !strings.Contains(show, "separator: semicolon") || !strings.Contains(show, "numeric_locale: de") {
		t.Fatalf("config show = %q", show)
	}
	out := mustRun(t, "import", in)
	if !strings.Contains(out, "- a (X): numeric (valid 1, invalid 0.0%) — min 1.5") {
		t.Fatalf("summary = %q", out)
	}
}

func TestCLI_ImportErrors(t *testing.T) {
	home := isolateHome(t)
	in := writeInput(t, home, "a.txt", "a\tb\n")
	tests := [][]string{
		{"import", filepath.Join(home, "missing.txt")},
		{"import", in, "--whitespace", "squash"},
		{"import", in, "--locale", "!!"},
		{"config", "set", "workers", "many"},
	}
	for _, args := range tests {
		if _, _, err := runCmd(t, args...); err == nil {
			t.Errorf("%v: expected error, got nil", args)
		}
	}
}

func TestCLI_Plot(t *testing.T) {
	home := isolateHome(t)
	in := writeInput(t, home, "curve.txt", "x\ty\n1\t1\n2\t4\n3\t9\n")
	png := filepath.Join(home, "curve.png")

	mustRun(t, "plot", in, "--output", png, "--width", "200", "--height", "120")
	b, err := os.ReadFile(png)
	if err != nil || !bytes.HasPrefix(b, []byte("\x89PNG")) {
		t.Fatalf("plot not a PNG: %v", err)
	}
	if _, _, err := runCmd(t, "plot", in, "--output", filepath.Join(home, "curve.bmp")); err == nil {
		t.Fatal("expected error for unsupported image format")
	}
}

func TestCLI_Formats(t *testing.T) {
	isolateHome(t)
	out := mustRun(t, "formats")
	if !strings.Contains(out, "input:  txt, csv, dat") {
		t.Fatalf("formats = %q", out)
	}
}
