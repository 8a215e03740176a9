package internal

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/mindbox/internal/apperr"
	"github.com/starford/mindbox/internal/testutil"
)

const sampleJournal = `# 2025-11-09 2041 mindbox:yoda-quotes my first entry
Do or do not.
# 2025-11-09 2042 Regular entry
Not tagged.
`

func testConfig(t *testing.T, journal string) *Config {
	t.Helper()
	cfg := NewDefaultConfig()
	cfg.App.LogLevel = slog.LevelError
	cfg.Journal.Path = testutil.TestJournal(t, journal)
	cfg.Output.Dir = filepath.Join(t.TempDir(), "mindboxes")
	return cfg
}

func TestRun_RequiresConfig(t *testing.T) {
	if err := Run(context.Background()); err == nil {
		t.Fatal("expected error without config")
	}
}

func TestRun_SampleJournal(t *testing.T) {
	cfg := testConfig(t, sampleJournal)
	var out bytes.Buffer

	if err := Run(context.Background(), WithConfig(cfg), WithStdout(&out)); err != nil {
		t.Fatalf("Run: %v", err)
	}

	files, err := os.ReadDir(cfg.Output.Dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || files[0].Name() != "yoda-quotes.mb" {
		t.Fatalf("output files = %v, want [yoda-quotes.mb]", files)
	}

	data, _ := os.ReadFile(filepath.Join(cfg.Output.Dir, "yoda-quotes.mb"))
	want := "*mindbox-yoda-quotes* Mindbox topic: yoda-quotes\n" +
		strings.Repeat("=", 79) + "\n" +
		"2025-11-09 2041 (journal.txt:1)\n" +
		"Title: mindbox:yoda-quotes my first entry\n" +
		"Do or do not.\n" +
		"\n" +
		"# vim: ft=plog:\n"
	if string(data) != want {
		t.Errorf("content mismatch:\n got: %q\nwant: %q", data, want)
	}
	if got := out.String(); got != "Wrote 1 mindbox file(s) to "+cfg.Output.Dir+"\n" {
		t.Errorf("stdout = %q", got)
	}
}

func TestRun_MissingJournal(t *testing.T) {
	cfg := testConfig(t, "")
	cfg.Journal.Path = filepath.Join(t.TempDir(), "nope.txt")

	err := Run(context.Background(), WithConfig(cfg), WithStdout(&bytes.Buffer{}))
	if !errors.Is(err, apperr.ErrJournalNotFound) {
		t.Fatalf("err = %v, want ErrJournalNotFound", err)
	}
	if _, statErr := os.Stat(cfg.Output.Dir); !os.IsNotExist(statErr) {
		t.Error("output dir should not be created")
	}
}

func TestRun_NoTaggedEntriesLeavesOutputAlone(t *testing.T) {
	cfg := testConfig(t, "# 2025-01-01 1000 plain\nbody\n")
	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		t.Fatal(err)
	}
	stale := filepath.Join(cfg.Output.Dir, "old.mb")
	_ = os.WriteFile(stale, []byte("old"), 0o644)

	var out bytes.Buffer
	if err := Run(context.Background(), WithConfig(cfg), WithStdout(&out)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.String() != "No mindbox entries found.\n" {
		t.Errorf("stdout = %q", out.String())
	}
	if _, err := os.Stat(stale); err != nil {
		t.Error("existing output must be untouched when nothing is tagged")
	}
}

func TestRun_NoTaggedEntriesCreatesNothing(t *testing.T) {
	cfg := testConfig(t, "just text\n")
	if err := Run(context.Background(), WithConfig(cfg), WithStdout(&bytes.Buffer{})); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(cfg.Output.Dir); !os.IsNotExist(err) {
		t.Error("output dir should not be created")
	}
}

func TestRun_MergedSpellingsNewestFirst(t *testing.T) {
	journal := "# 2025-01-01 1000 mindbox:Yoda-Quotes old\nA\n# 2025-02-01 1000 mindbox:yoda_quotes other\n# 2025-03-01 1000 mindbox:yoda@quotes new\nC\n"
	cfg := testConfig(t, journal)
	if err := Run(context.Background(), WithConfig(cfg), WithStdout(&bytes.Buffer{})); err != nil {
		t.Fatalf("Run: %v", err)
	}
	files, _ := os.ReadDir(cfg.Output.Dir)
	if len(files) != 2 {
		t.Fatalf("files = %v, want yoda-quotes.mb and yoda_quotes.mb", files)
	}
	data, _ := os.ReadFile(filepath.Join(cfg.Output.Dir, "yoda-quotes.mb"))
	out := string(data)
	if strings.Index(out, "(journal.txt:4)") > strings.Index(out, "(journal.txt:1)") {
		t.Errorf("newest entry should come first:\n%s", out)
	}
}

func TestRun_Idempotent(t *testing.T) {
	cfg := testConfig(t, sampleJournal)
	_ = Run(context.Background(), WithConfig(cfg), WithStdout(&bytes.Buffer{}))
	first, _ := os.ReadFile(filepath.Join(cfg.Output.Dir, "yoda-quotes.mb"))
	_ = Run(context.Background(), WithConfig(cfg), WithStdout(&bytes.Buffer{}))
	second, _ := os.ReadFile(filepath.Join(cfg.Output.Dir, "yoda-quotes.mb"))
	if len(first) == 0 || !bytes.Equal(first, second) {
		t.Error("runs on unchanged input should produce identical output")
	}
}

func TestRun_WatchRepublishes(t *testing.T) {
	cfg := testConfig(t, sampleJournal)
	cfg.Watch.Enabled = true
	cfg.Watch.Debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, WithConfig(cfg), WithStdout(&bytes.Buffer{}))
	}()

	first := filepath.Join(cfg.Output.Dir, "yoda-quotes.mb")
	waitFor(t, func() bool {
		_, err := os.Stat(first)
		return err == nil
	}, "initial publish did not happen")

	time.Sleep(100 * time.Millisecond)
	_ = os.WriteFile(cfg.Journal.Path, []byte("# 2025-11-10 0800 mindbox:ideas new\n"), 0o644)

	waitFor(t, func() bool {
		_, errNew := os.Stat(filepath.Join(cfg.Output.Dir, "ideas.mb"))
		_, errOld := os.Stat(first)
		return errNew == nil && os.IsNotExist(errOld)
	}, "watch did not republish after journal change")

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func waitFor(t *testing.T, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(25 * time.Millisecond)
	}
	t.Fatal(msg)
}

func withWatcher(fn func(ctx context.Context, path string, debounce time.Duration, logger *slog.Logger, fn func() error) error) Option {
	return func(a *application) {
		a.watcher = fn
	}
}

func TestRun_ReturnsWhenWatcherStops(t *testing.T) {
	cfg := testConfig(t, sampleJournal)
	cfg.Watch.Enabled = true

	stopped := func(context.Context, string, time.Duration, *slog.Logger, func() error) error {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- Run(context.Background(), WithConfig(cfg), WithStdout(&bytes.Buffer{}), withWatcher(stopped))
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after the watcher stopped")
	}
}

func TestRun_WatcherErrorIsReturned(t *testing.T) {
	cfg := testConfig(t, sampleJournal)
	cfg.Watch.Enabled = true

	boom := errors.New("watch failed")
	failing := func(context.Context, string, time.Duration, *slog.Logger, func() error) error {
		return boom
	}

	done := make(chan error, 1)
	go func() {
		done <- Run(context.Background(), WithConfig(cfg), WithStdout(&bytes.Buffer{}), withWatcher(failing))
	}()

	select {
	case err := <-done:
		if !errors.Is(err, boom) {
			t.Fatalf("Run error = %v, want %v", err, boom)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after the watcher failed")
	}
}
