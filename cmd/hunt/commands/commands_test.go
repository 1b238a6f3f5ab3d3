package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dyluth/hunt/internal/config"
	"github.com/dyluth/hunt/internal/printer"
	"github.com/dyluth/hunt/pkg/records"
	"github.com/dyluth/hunt/pkg/stages"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runHunt executes the root command with args and returns what was printed
// to stdout and stderr.
func runHunt(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	// Flag variables survive between Execute calls; put them back to their
	// defaults so each run only sees its own arguments.
	configPath = config.DefaultPath
	verbose = false
	dataDir = ""
	modeFlag = ""
	visitHint = false
	stagesOutputFormat = "default"
	watchDevice = "self"
	watchSlug = ""
	watchTimeout = 5 * time.Minute

	prevNoColor := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prevNoColor }()

	var stdout, stderr bytes.Buffer
	printer.SetOutput(&stdout, &stderr)
	defer printer.SetOutput(nil, nil)

	rootCmd.SetArgs(args)
	err := Execute()
	return stdout.String(), stderr.String(), err
}

// localArgs prefixes args with flags selecting local storage in dir.
func localArgs(dir string, args ...string) []string {
	return append([]string{"--mode", "local", "--data-dir", dir}, args...)
}

func TestWhoami_StableAcrossRuns(t *testing.T) {
	dir := t.TempDir()

	first, _, err := runHunt(t, localArgs(dir, "whoami")...)
	require.NoError(t, err)
	second, _, err := runHunt(t, localArgs(dir, "whoami")...)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, strings.TrimSpace(first), 36, "device ID is a UUID")
	assert.FileExists(t, filepath.Join(dir, config.StateFileName))
}

func TestVisit_NoSlugShowsEntryStage(t *testing.T) {
	entry, _ := stages.BySlug(stages.EntrySlug)

	stdout, _, err := runHunt(t, localArgs(t.TempDir(), "visit")...)
	require.NoError(t, err)
	assert.Contains(t, stdout, entry.Title)
	assert.Contains(t, stdout, "◉ ○ ○ ○ ○ ○")
}

func TestVisit_LockedStage(t *testing.T) {
	stdout, stderr, err := runHunt(t, localArgs(t.TempDir(), "visit", "bd91e2")...)
	require.Error(t, err)
	assert.Equal(t, "stage 'bd91e2' is locked", err.Error())
	assert.Contains(t, stdout, "is locked")
	assert.Contains(t, stderr, "hunt stages")
}

func TestVisit_UnknownSlugIsLocked(t *testing.T) {
	_, _, err := runHunt(t, localArgs(t.TempDir(), "visit", "nope")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "locked")
}

func TestVisit_Hint(t *testing.T) {
	entry, _ := stages.BySlug(stages.EntrySlug)

	stdout, _, err := runHunt(t, localArgs(t.TempDir(), "visit", stages.EntrySlug, "--hint")...)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Hint: "+entry.NextHint)
}

func TestComplete_WalksTheWholeHunt(t *testing.T) {
	dir := t.TempDir()
	reg := stages.Default()

	for i, s := range reg.Stages() {
		stdout, _, err := runHunt(t, localArgs(dir, "complete", s.Slug)...)
		require.NoError(t, err, "completing stage %d (%s)", i, s.Slug)

		if s.IsFinal {
			assert.Contains(t, stdout, "Hunt finished!")
		} else {
			assert.Contains(t, stdout, "Next stage: "+s.NextSlug)
		}
	}

	stdout, _, err := runHunt(t, localArgs(dir, "stages")...)
	require.NoError(t, err)
	assert.Contains(t, stdout, "6 of 6 stages completed")
}

func TestComplete_LockedStageIsRejected(t *testing.T) {
	dir := t.TempDir()

	_, _, err := runHunt(t, localArgs(dir, "complete", "k9m2x1")...)
	require.Error(t, err)

	stdout, _, err := runHunt(t, localArgs(dir, "stages", "-o", "jsonl")...)
	require.NoError(t, err)
	assert.NotContains(t, stdout, `"completed"`, "nothing was recorded")
}

func TestComplete_Idempotent(t *testing.T) {
	dir := t.TempDir()

	for i := 0; i < 2; i++ {
		_, _, err := runHunt(t, localArgs(dir, "complete", stages.EntrySlug)...)
		require.NoError(t, err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, config.StateFileName))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(raw), stages.EntrySlug))
}

func TestStages_JSONL(t *testing.T) {
	dir := t.TempDir()
	_, _, err := runHunt(t, localArgs(dir, "complete", stages.EntrySlug)...)
	require.NoError(t, err)

	stdout, _, err := runHunt(t, localArgs(dir, "stages", "--output", "jsonl")...)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 6)

	var statuses []string
	for _, line := range lines {
		var row struct {
			Slug   string `json:"slug"`
			Status string `json:"status"`
		}
		require.NoError(t, json.Unmarshal([]byte(line), &row))
		statuses = append(statuses, row.Status)
	}
	assert.Equal(t, []string{"completed", "unlocked", "locked", "locked", "locked", "locked"}, statuses)
}

func TestStages_InvalidFormat(t *testing.T) {
	_, stderr, err := runHunt(t, localArgs(t.TempDir(), "stages", "-o", "xml")...)
	require.Error(t, err)
	assert.Equal(t, "invalid output format", err.Error())
	assert.Contains(t, stderr, "Valid formats: default, jsonl")
}

func TestStatus_Local(t *testing.T) {
	dir := t.TempDir()
	_, _, err := runHunt(t, localArgs(dir, "complete", stages.EntrySlug)...)
	require.NoError(t, err)

	stdout, _, err := runHunt(t, localArgs(dir, "status")...)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Backend:  local")
	assert.Contains(t, stdout, "Progress: 1/6")
	assert.Contains(t, stdout, "● ◉ ○ ○ ○ ○")
	assert.Contains(t, stdout, "Next: hunt visit bd91e2")
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "hunt.yml")
	require.NoError(t, os.WriteFile(configFile, []byte(`version: "1.0"
storage:
  mode: local
  data_dir: `+filepath.Join(dir, "state")+`
stages:
  - slug: door
    title: The Door
    next_slug: attic
  - slug: attic
    title: The Attic
    is_final: true
`), 0644))

	stdout, _, err := runHunt(t, "--config", configFile, "visit")
	require.NoError(t, err)
	assert.Contains(t, stdout, "The Door")

	stdout, _, err = runHunt(t, "--config", configFile, "complete", "door")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Next stage: attic")
}

func TestConfigFile_Missing(t *testing.T) {
	_, _, err := runHunt(t, "--config", filepath.Join(t.TempDir(), "absent.yml"), "whoami")
	require.Error(t, err)
	assert.Equal(t, "failed to load configuration", err.Error())
}

func TestInvalidModeFlag(t *testing.T) {
	_, _, err := runHunt(t, "--mode", "sideways", "--data-dir", t.TempDir(), "whoami")
	require.Error(t, err)
	assert.Equal(t, "invalid configuration", err.Error())
}

func TestRemote_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Setenv("HUNT_REDIS_URL", "redis://"+mr.Addr())
	t.Setenv("HUNT_NAMESPACE", "clitest")

	dir := t.TempDir()
	remote := func(args ...string) []string {
		return append([]string{"--mode", "remote", "--data-dir", dir}, args...)
	}

	out, _, err := runHunt(t, remote("whoami")...)
	require.NoError(t, err)
	deviceID := strings.TrimSpace(out)

	_, _, err = runHunt(t, remote("complete", stages.EntrySlug)...)
	require.NoError(t, err)
	assert.True(t, mr.Exists(records.ProgressKey("clitest", deviceID)))

	stdout, _, err := runHunt(t, remote("status")...)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Backend:  remote")
	assert.Contains(t, stdout, "Record store reachable")
	assert.Contains(t, stdout, "Progress: 1/6")

	// The stage is already recorded, so the poll returns on its first tick.
	stdout, _, err = runHunt(t, remote("watch", "--slug", stages.EntrySlug, "--timeout", "3s")...)
	require.NoError(t, err)
	assert.Contains(t, stdout, "has completed 1 stage(s): "+stages.EntrySlug)

	// A store failure surfaces as a network error, not as a locked stage.
	mr.SetError("LOADING Redis is loading the dataset in memory")
	_, _, err = runHunt(t, remote("visit", stages.EntrySlug)...)
	require.Error(t, err)
	assert.Equal(t, "could not load progress", err.Error())
}

func TestWatch_RequiresRemote(t *testing.T) {
	_, _, err := runHunt(t, localArgs(t.TempDir(), "watch", "--slug", "bd91e2", "--timeout", "1s")...)
	require.Error(t, err)
	assert.Equal(t, "watch requires a remote record store", err.Error())
}

func TestModeFlagOverridesEnvironment(t *testing.T) {
	t.Setenv("HUNT_STORAGE_MODE", "remote")
	dir := t.TempDir()

	stdout, _, err := runHunt(t, localArgs(dir, "whoami")...)
	require.NoError(t, err, "--mode local wins over HUNT_STORAGE_MODE")
	assert.Len(t, strings.TrimSpace(stdout), 36)

	// Without the flag the environment alone is incomplete.
	_, _, err = runHunt(t, "--data-dir", dir, "whoami")
	require.Error(t, err)
	assert.Equal(t, "invalid configuration", err.Error())
}

func TestStatus_CountsOnlyKnownStages(t *testing.T) {
	dir := t.TempDir()
	stateDir := filepath.Join(dir, "state")

	// Progress recorded against the built-in hunt.
	for _, slug := range []string{"7f3a9c", "bd91e2", "k9m2x1"} {
		_, _, err := runHunt(t, localArgs(stateDir, "complete", slug)...)
		require.NoError(t, err)
	}

	// The same state viewed through a smaller, overriding registry.
	configFile := filepath.Join(dir, "hunt.yml")
	require.NoError(t, os.WriteFile(configFile, []byte(`version: "1.0"
storage:
  mode: local
  data_dir: `+stateDir+`
stages:
  - slug: door
    title: The Door
    next_slug: attic
  - slug: attic
    title: The Attic
    is_final: true
`), 0644))

	stdout, _, err := runHunt(t, "--config", configFile, "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Progress: 0/2")
}

func TestWhoamiHelp_DescribesFixedIdentity(t *testing.T) {
	assert.Contains(t, whoamiCmd.Long, "never changes")
	assert.NotContains(t, whoamiCmd.Long, "Set the same ID")
	assert.NotNil(t, watchCmd.Flags().Lookup("device"), "help points at watch --device")
}
