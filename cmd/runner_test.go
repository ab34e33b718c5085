package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/founders/internal/models"
	"github.com/desertthunder/founders/internal/search"
	"github.com/desertthunder/founders/internal/shared"
	tu "github.com/desertthunder/founders/internal/testing"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Logger:     logger,
				Output:     output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Fatal("expected default config to be set")
			}
			if runner.config.Server.Port != 8000 {
				t.Errorf("expected default port 8000, got %d", runner.config.Server.Port)
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("writePlainln pads with newlines", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			runner.writePlainln("Next %d", 1)
			if output.String() != "\nNext 1\n" {
				t.Errorf("expected padded line, got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		names := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}
		for _, want := range []string{"setup", "serve", "import", "imports", "export", "seed", "founders", "search"} {
			if !names[want] {
				t.Errorf("expected %q command to be registered", want)
			}
		}
	})

	t.Run("authenticator", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(&bytes.Buffer{})})

		authn, err := runner.authenticator([]string{"tok:ana@x.com"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		p, err := authn.Authenticate(context.Background(), "tok")
		if err != nil || p.Email != "ana@x.com" {
			t.Errorf("expected ana@x.com principal, got %+v, %v", p, err)
		}

		if _, err := runner.authenticator([]string{"no-email"}); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}

		runner.config.Auth.UserInfoURL = ""
		authn, err = runner.authenticator(nil)
		if err != nil || authn != nil {
			t.Errorf("expected anonymous access without a userinfo url, got %v, %v", authn, err)
		}
	})
}

const testConfig = `
[database]
path = "founders.db"
max_open_conns = 1
max_idle_conns = 1

[storage]
driver = "fs"
dir = "uploads"
public_url = "/uploads"

[import]
dedupe_mode = "update"
archive = true

[log]
level = "error"
`

// cliEnv drives the real command tree inside a temporary working directory.
type cliEnv struct {
	t      *testing.T
	output *bytes.Buffer
	logs   *bytes.Buffer
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	tempDir := t.TempDir()
	originalDir := tu.MustGetwd(t)
	tu.MustChdir(t, tempDir)
	t.Cleanup(func() { tu.MustChdir(t, originalDir) })

	if err := os.WriteFile("config.toml", []byte(testConfig), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return &cliEnv{t: t, output: &bytes.Buffer{}, logs: &bytes.Buffer{}}
}

func (e *cliEnv) run(args ...string) (string, error) {
	e.t.Helper()
	e.output.Reset()
	runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(e.logs), Output: e.output})
	err := newApp(runner).Run(context.Background(), append([]string{"founders", "--config", "config.toml"}, args...))
	return e.output.String(), err
}

func (e *cliEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run(args...)
	if err != nil {
		e.t.Fatalf("%s failed: %v\nlogs:\n%s", strings.Join(args, " "), err, e.logs.String())
	}
	return out
}

func decodeOutput[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out)
	}
	return v
}

func TestCommands(t *testing.T) {
	env := newCLIEnv(t)
	sheet := tu.CSV("Name,Email,LinkedIn URL,Startup Name,Skills Offered",
		"Ana,ana@x.com,http://li/ana,Acme,Go",
		"Bo,,http://li/bo,Acme,",
	)
	if err := os.WriteFile("people.csv", sheet, 0644); err != nil {
		t.Fatalf("failed to write sheet: %v", err)
	}

	t.Run("setup database", func(t *testing.T) {
		env.mustRun("setup", "database")
		tu.AssertFileExists(t, "founders.db")

		status := decodeOutput[shared.MigrationStatus](t, env.mustRun("setup", "status", "--json"))
		if status.Pending || status.Dirty {
			t.Errorf("expected migrated database, got %+v", status)
		}
		if status.CurrentVersion != status.LatestVersion {
			t.Errorf("expected current %d to equal latest %d", status.CurrentVersion, status.LatestVersion)
		}
	})

	t.Run("import dry run writes nothing", func(t *testing.T) {
		result := decodeOutput[models.ImportResult](t, env.mustRun("import", "--dry-run", "--json", "people.csv"))
		if !result.DryRun || result.Created != 1 || result.Skipped != 1 {
			t.Errorf("expected dry run with 1 created and 1 skipped, got %+v", result)
		}

		founders := decodeOutput[[]founderJSON](t, env.mustRun("founders", "list", "--json", "--hidden"))
		if len(founders) != 0 {
			t.Errorf("expected no founders after a dry run, got %d", len(founders))
		}
	})

	t.Run("import", func(t *testing.T) {
		out := env.mustRun("import", "--json", "--report", "report.md", "people.csv")
		result := decodeOutput[models.ImportResult](t, out)
		if result.Processed != 2 || result.Created != 1 || result.Skipped != 1 {
			t.Errorf("expected 1 created and 1 skipped, got %+v", result)
		}
		if result.Details[1].Reason != "missing email" {
			t.Errorf("expected missing email reason, got %q", result.Details[1].Reason)
		}

		if content := tu.MustReadFile(t, "report.md"); !strings.Contains(content, "# Import Report") {
			t.Errorf("expected markdown report, got %s", content)
		}
		tu.AssertDirExists(t, filepath.Join("uploads", "imports"))
	})

	t.Run("import prints a summary", func(t *testing.T) {
		out := env.mustRun("import", "--mode", "skip", "people.csv")
		if !strings.Contains(out, "Import complete") {
			t.Errorf("expected summary, got %s", out)
		}
		if !strings.Contains(out, "already exists") {
			t.Errorf("expected existing founder to be reported, got %s", out)
		}
	})

	t.Run("import rejects bad input", func(t *testing.T) {
		if _, err := env.run("import"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
		if _, err := env.run("import", "missing.csv"); err == nil {
			t.Error("expected error for a missing file")
		}
		if _, err := env.run("import", "--mode", "merge", "people.csv"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("founders list", func(t *testing.T) {
		founders := decodeOutput[[]founderJSON](t, env.mustRun("founders", "list", "--json"))
		if len(founders) != 1 {
			t.Fatalf("expected 1 founder, got %d", len(founders))
		}
		if founders[0].Email != "ana@x.com" || founders[0].StartupID == "" || len(founders[0].SkillIDs) != 1 {
			t.Errorf("unexpected founder: %+v", founders[0])
		}

		out := env.mustRun("founders", "list")
		if !strings.Contains(out, "Founders (1)") || !strings.Contains(out, "ana@x.com") {
			t.Errorf("expected plain listing, got %s", out)
		}
	})

	t.Run("export founders", func(t *testing.T) {
		env.mustRun("export", "founders", "-o", "out.csv")

		content := tu.MustReadFile(t, "out.csv")
		for _, want := range []string{"ana@x.com", "Acme", "Go"} {
			if !strings.Contains(content, want) {
				t.Errorf("expected export to contain %q, got %s", want, content)
			}
		}
	})

	t.Run("seed", func(t *testing.T) {
		out := env.mustRun("seed", "skills")
		if !strings.Contains(out, "skills:") || strings.Contains(out, "hobbies:") {
			t.Errorf("expected only skills to be seeded, got %s", out)
		}

		out = env.mustRun("seed")
		if !strings.Contains(out, "skills: 0 created") {
			t.Errorf("expected reseeding skills to create nothing, got %s", out)
		}
		if !strings.Contains(out, "hobbies:") {
			t.Errorf("expected hobbies to be seeded, got %s", out)
		}

		if _, err := env.run("seed", "planets"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("imports list", func(t *testing.T) {
		runs := decodeOutput[[]importRunJSON](t, env.mustRun("imports", "list", "--json"))
		if len(runs) != 3 {
			t.Fatalf("expected 3 runs, got %d", len(runs))
		}
		if runs[0].Mode != "skip" || runs[2].DryRun != true {
			t.Errorf("expected newest first, got %+v", runs)
		}
		for _, run := range runs {
			if run.Actor != "cli" || run.Status != models.RunCompleted || run.ArchiveKey == "" {
				t.Errorf("unexpected run: %+v", run)
			}
		}

		if _, err := env.run("imports", "list", "--status", "done"); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("search", func(t *testing.T) {
		hits := decodeOutput[[]search.Hit](t, env.mustRun("search", "--json", "ana"))
		if len(hits) == 0 || hits[0].Label != "Ana" {
			t.Errorf("expected Ana as the first hit, got %+v", hits)
		}

		if out := env.mustRun("search", "zzzz"); !strings.Contains(out, "No matches") {
			t.Errorf("expected no matches, got %s", out)
		}
		if _, err := env.run("search"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("fail on errors", func(t *testing.T) {
		bad := tu.CSV("Name,Email,LinkedIn URL,Startup Name", "Cy,not-an-email,http://li/cy,Acme")
		if err := os.WriteFile("bad.csv", bad, 0644); err != nil {
			t.Fatalf("failed to write sheet: %v", err)
		}

		if _, err := env.run("import", "--json", "bad.csv"); err != nil {
			t.Errorf("expected row errors to be reported, not returned: %v", err)
		}
		if _, err := env.run("import", "--json", "--fail-on-errors", "bad.csv"); err == nil {
			t.Error("expected --fail-on-errors to fail the command")
		}
	})
}
