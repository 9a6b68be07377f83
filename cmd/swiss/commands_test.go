package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Dosada05/swiss-tournament/brackets"
	"github.com/Dosada05/swiss-tournament/models"
	"github.com/Dosada05/swiss-tournament/services"
	"github.com/Dosada05/swiss-tournament/utils"
)

type cli struct {
	t   *testing.T
	dsn string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	path := filepath.Join(t.TempDir(), "swiss.db")
	return &cli{t: t, dsn: "file:" + path + "?_foreign_keys=on"}
}

func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(append([]string{"--driver", "sqlite3", "--dsn", c.dsn}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	if err != nil {
		c.t.Fatalf("swiss %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func TestCLITournament(t *testing.T) {
	c := newCLI(t)

	if out := c.mustRun("migrate"); out != "schema at version 1\n" {
		t.Errorf("migrate output = %q", out)
	}

	out := c.mustRun("register", "A", "B", "C", "D")
	if !strings.Contains(out, "registered #1 A") || !strings.Contains(out, "registered #4 D") {
		t.Errorf("register output = %q", out)
	}
	if out := c.mustRun("count"); out != "4\n" {
		t.Errorf("count output = %q", out)
	}

	c.mustRun("report", "1", "2")
	c.mustRun("report", "3", "4")
	c.mustRun("report", "1", "3")

	var standings []models.Standing
	if err := json.Unmarshal([]byte(c.mustRun("--json", "standings")), &standings); err != nil {
		t.Fatalf("standings JSON: %v", err)
	}
	wantOrder := []int{1, 3, 2, 4}
	for i, id := range wantOrder {
		if standings[i].ID != id {
			t.Errorf("standings[%d].ID = %d; want %d", i, standings[i].ID, id)
		}
	}

	table := c.mustRun("standings")
	if table != brackets.BuildStandingsOutput(standings) {
		t.Errorf("standings table = %q", table)
	}

	pairings := c.mustRun("pairings")
	lines := strings.Split(strings.TrimSpace(pairings), "\n")
	if len(lines) != 3 || !strings.Contains(lines[1], "A(1)") || !strings.Contains(lines[1], "C(3)") ||
		!strings.Contains(lines[2], "B(2)") || !strings.Contains(lines[2], "D(4)") {
		t.Errorf("pairings table = %q", pairings)
	}

	if out := c.mustRun("reset"); out != "deleted 3 matches\n" {
		t.Errorf("reset output = %q", out)
	}
	if out := c.mustRun("reset"); out != "deleted 0 matches\n" {
		t.Errorf("second reset output = %q", out)
	}
	if out := c.mustRun("reset", "--players"); !strings.Contains(out, "deleted 4 players") {
		t.Errorf("reset --players output = %q", out)
	}
	if out := c.mustRun("standings"); out != "No players registered\n" {
		t.Errorf("empty standings output = %q", out)
	}
}

func TestCLIErrors(t *testing.T) {
	c := newCLI(t)
	c.mustRun("register", "A", "B", "C")

	if _, err := c.run("pairings"); !errors.Is(err, brackets.ErrOddCompetitorCount) {
		t.Errorf("odd pairings err = %v; want ErrOddCompetitorCount", err)
	}
	out, err := c.run("--odd-policy", "bye", "pairings")
	if err != nil || !strings.Contains(out, "BYE") {
		t.Errorf("bye pairings = %q, %v", out, err)
	}
	if _, err := c.run("--odd-policy", "coinflip", "pairings"); !errors.Is(err, brackets.ErrUnknownOddPolicy) {
		t.Errorf("unknown policy err = %v", err)
	}

	if _, err := c.run("report", "1", "1"); !errors.Is(err, services.ErrSelfMatch) {
		t.Errorf("self report err = %v; want ErrSelfMatch", err)
	}
	if _, err := c.run("report", "1", "x"); err == nil {
		t.Error("report with non-numeric id returned nil error")
	}
	if _, err := c.run("report", "1"); err == nil {
		t.Error("report with one argument returned nil error")
	}

	var out2, errOut bytes.Buffer
	cmd := newRootCmd(&out2, &errOut)
	cmd.SetArgs([]string{"--driver", "sqlite3", "--dsn", "", "count"})
	if err := cmd.Execute(); err == nil {
		t.Error("count without dsn returned nil error")
	}
}

func TestCLIHashPassword(t *testing.T) {
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetIn(strings.NewReader("from-stdin\n"))
	cmd.SetArgs([]string{"hash-password"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("hash-password: %v", err)
	}
	hash := strings.TrimSpace(out.String())
	if !utils.CheckPasswordHash("from-stdin", hash) {
		t.Errorf("hash %q does not match the stdin password", hash)
	}

	out.Reset()
	cmd = newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{"hash-password", "inline"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("hash-password inline: %v", err)
	}
	if !utils.CheckPasswordHash("inline", strings.TrimSpace(out.String())) {
		t.Error("inline hash does not match")
	}
}
