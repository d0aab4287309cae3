package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"weekplan/internal/config"
	"weekplan/internal/planner"
	"weekplan/internal/snapshot"
	"weekplan/internal/task"
	"weekplan/internal/workspace"
)

func newConfigPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "config.toml")
}

func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd("test")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, cfgPath string, args ...string) string {
	t.Helper()
	out, err := run(t, cfgPath, args...)
	if err != nil {
		t.Fatalf("weekplan %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

// readOnlyDB creates the database for cfgPath and then points the planner at
// a read-only connection to it.
func readOnlyDB(t *testing.T, cfgPath string) string {
	t.Helper()
	mustRun(t, cfgPath, "list")
	db := filepath.Join(filepath.Dir(cfgPath), config.DefaultDBName)
	t.Setenv("WEEKPLAN_DB_PATH", "file:"+db+"?mode=ro")
	return db
}

func TestFailedSaveFailsCommand(t *testing.T) {
	cfg := newConfigPath(t)
	db := readOnlyDB(t, cfg)

	if _, err := run(t, cfg, "add", "never", "stored"); err == nil {
		t.Fatal("expected add to fail when the database is read-only")
	}
	if _, err := run(t, cfg, "done", "101"); err == nil {
		t.Fatal("expected done to fail when the database is read-only")
	}
	if _, err := run(t, cfg, "list"); err != nil {
		t.Fatalf("list without changes must still succeed: %v", err)
	}

	t.Setenv("WEEKPLAN_DB_PATH", db)
	if out := mustRun(t, cfg, "list"); strings.Contains(out, "never stored") {
		t.Fatalf("task reported as added was not expected in the store:\n%s", out)
	}
}

func TestTUIFinalSaveFailureIsLogged(t *testing.T) {
	cfg := newConfigPath(t)
	readOnlyDB(t, cfg)
	orig := runUI
	t.Cleanup(func() { runUI = orig })
	runUI = func(ws *workspace.Workspace, _ config.Config, _ planner.Planner) error {
		_, err := ws.Board().AddTask("late change", task.KindSoon, 15)
		return err
	}

	if _, err := run(t, cfg); err == nil {
		t.Fatal("expected the final save to fail")
	}
	data, err := os.ReadFile(filepath.Join(filepath.Dir(cfg), config.DefaultLogName))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "[cli] final save failed") {
		t.Fatalf("final save failure missing from the log:\n%s", data)
	}
}

func TestAddScheduleUnschedule(t *testing.T) {
	cfg := newConfigPath(t)
	if out := mustRun(t, cfg, "list"); strings.Contains(out, "Last saved") {
		t.Fatalf("nothing was saved yet:\n%s", out)
	}
	out := mustRun(t, cfg, "add", "Write", "report", "--kind", "soon", "-d", "45")
	var id int64
	if _, err := fmt.Sscanf(out, "Added task %d:", &id); err != nil {
		t.Fatalf("unexpected add output %q: %v", out, err)
	}

	if out := mustRun(t, cfg, "list", "--backlog"); !strings.Contains(out, "Write report") || !strings.Contains(out, "Last saved") {
		t.Fatalf("backlog missing new task or save time:\n%s", out)
	}

	out = mustRun(t, cfg, "schedule", fmt.Sprint(id), "monday", "focus")
	if !strings.Contains(out, "Moved") {
		t.Fatalf("schedule output %q", out)
	}
	out = mustRun(t, cfg, "list")
	week := out[strings.Index(out, "Week "):]
	if !strings.Contains(week, "Write report") {
		t.Fatalf("week missing scheduled task:\n%s", out)
	}

	out = mustRun(t, cfg, "unschedule", fmt.Sprint(id))
	if !strings.Contains(out, "Returned") {
		t.Fatalf("unschedule output %q", out)
	}
}

func TestSecondGoalFails(t *testing.T) {
	cfg := newConfigPath(t)
	mustRun(t, cfg, "schedule", "101", "monday", "goal")
	_, err := run(t, cfg, "schedule", "102", "monday", "goal")
	if err == nil || !strings.Contains(err.Error(), "goal slot already holds a task") {
		t.Fatalf("expected goal rejection, got %v", err)
	}
}

func TestScheduleHabitKeepsTemplate(t *testing.T) {
	cfg := newConfigPath(t)
	out := mustRun(t, cfg, "schedule", "201", "tuesday", "basics")
	if !strings.Contains(out, "Scheduled habit") {
		t.Fatalf("schedule output %q", out)
	}
	out = mustRun(t, cfg, "list")
	if !strings.Contains(out, "(habit 201)") || !strings.Contains(out, "(scheduled this week)") {
		t.Fatalf("list output:\n%s", out)
	}
}

func TestScheduleNextWeek(t *testing.T) {
	cfg := newConfigPath(t)
	mustRun(t, cfg, "schedule", "103", "friday", "work", "--week", "1")
	if out := mustRun(t, cfg, "list"); strings.Contains(out[strings.Index(out, "Week "):], "Client presentation") {
		t.Fatalf("task shows up in the current week:\n%s", out)
	}
	if out := mustRun(t, cfg, "list", "--week", "1"); !strings.Contains(out[strings.Index(out, "Week "):], "Client presentation") {
		t.Fatalf("task missing from next week:\n%s", out)
	}
}

func TestRmUnknownTask(t *testing.T) {
	_, err := run(t, newConfigPath(t), "rm", "999")
	if err == nil || !strings.Contains(err.Error(), "task not found") {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestOrganizeFromPlanFile(t *testing.T) {
	cfg := newConfigPath(t)
	plan := filepath.Join(t.TempDir(), "plan.json")
	doc := `{"plan": [
		{"id": 101, "day": "WEDNESDAY", "category": "work"},
		{"id": 201, "day": "MONDAY", "category": "basics"}
	]}`
	if err := os.WriteFile(plan, []byte(doc), 0o644); err != nil {
		t.Fatalf("write plan: %v", err)
	}

	out := mustRun(t, cfg, "organize", "--plan-file", plan)
	if !strings.Contains(out, "Placed 1 tasks") || !strings.Contains(out, "habit template") {
		t.Fatalf("organize output:\n%s", out)
	}
	out = mustRun(t, cfg, "list")
	if !strings.Contains(out[strings.Index(out, "Week "):], "Review Report") {
		t.Fatalf("planned task missing from the week:\n%s", out)
	}
}

func TestOrganizeDryRunPrintsPrompt(t *testing.T) {
	out := mustRun(t, newConfigPath(t), "organize", "--dry-run")
	if !strings.Contains(out, "Review Report") {
		t.Fatalf("prompt missing backlog:\n%s", out)
	}
}

func TestExportImport(t *testing.T) {
	cfg := newConfigPath(t)
	dir := t.TempDir()
	out := mustRun(t, cfg, "export", dir)
	path := strings.TrimSpace(strings.TrimPrefix(out, "Exported to "))
	if filepath.Dir(path) != dir || !strings.HasPrefix(filepath.Base(path), "planner-backup-") {
		t.Fatalf("export path %q", path)
	}

	mustRun(t, cfg, "rm", "101")
	if out := mustRun(t, cfg, "list"); strings.Contains(out, "Review Report") {
		t.Fatal("rm did not delete the task")
	}
	if out := mustRun(t, cfg, "import", path); !strings.Contains(out, "in 1 weeks") {
		t.Fatalf("import output %q", out)
	}
	if out := mustRun(t, cfg, "list"); !strings.Contains(out, "Review Report") {
		t.Fatal("import did not restore the task")
	}
}

func TestImportInvalidFile(t *testing.T) {
	cfg := newConfigPath(t)
	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte(`{"todoPool": []}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := run(t, cfg, "import", bad)
	if !errors.Is(err, snapshot.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if out := mustRun(t, cfg, "list"); !strings.Contains(out, "Review Report") {
		t.Fatal("failed import changed the planner")
	}
}

func TestClearNeedsConfirmation(t *testing.T) {
	cfg := newConfigPath(t)
	if _, err := run(t, cfg, "clear"); err == nil {
		t.Fatal("expected clear without --yes to fail")
	}
	mustRun(t, cfg, "clear", "--yes")
	out := mustRun(t, cfg, "list", "--backlog")
	if strings.Contains(out, "Review Report") || !strings.Contains(out, "Vacuum") {
		t.Fatalf("clear must keep only habits:\n%s", out)
	}
}

func TestTheme(t *testing.T) {
	cfg := newConfigPath(t)
	if out := mustRun(t, cfg, "theme"); !strings.Contains(out, "Theme: blue") {
		t.Fatalf("default theme output %q", out)
	}
	mustRun(t, cfg, "theme", "dark")
	if out := mustRun(t, cfg, "theme"); !strings.Contains(out, "Theme: dark") {
		t.Fatalf("theme not persisted: %q", out)
	}
	if _, err := run(t, cfg, "theme", "neon"); err == nil {
		t.Fatal("expected error for unknown theme")
	}
}

func TestDoneToggles(t *testing.T) {
	cfg := newConfigPath(t)
	if out := mustRun(t, cfg, "done", "101"); !strings.Contains(out, "is done") {
		t.Fatalf("done output %q", out)
	}
	if out := mustRun(t, cfg, "done", "#101"); !strings.Contains(out, "is open") {
		t.Fatalf("second done output %q", out)
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		in      string
		want    task.ID
		wantErr bool
	}{
		{in: "101", want: 101},
		{in: " #7 ", want: 7},
		{in: "0", wantErr: true},
		{in: "-3", wantErr: true},
		{in: "abc", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseID(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Fatalf("parseID(%q) = %d, %v", tt.in, got, err)
		}
	}
}
