package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dsmmcken/bnetdata/internal/bnetapi"
	"github.com/dsmmcken/bnetdata/internal/discovery"
	"github.com/dsmmcken/bnetdata/internal/output"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execRoot(t *testing.T, args ...string) (stdout string, err error) {
	t.Helper()
	c := NewRootCmd()
	buf := new(bytes.Buffer)
	c.SetOut(buf)
	c.SetErr(new(bytes.Buffer))
	c.SetArgs(append([]string{"--config-dir", t.TempDir()}, args...))
	err = c.Execute()
	return buf.String(), err
}

type cannedRunner map[string]string

func (r cannedRunner) Run(_ context.Context, name string, _ ...string) (string, error) {
	out, ok := r[name]
	if !ok {
		return "", &discovery.ExecutionError{Command: name, Err: errors.New("not available")}
	}
	return out, nil
}

func withRunner(t *testing.T, r discovery.Runner) {
	t.Helper()
	prevRunner, prevPlatform := listingRunner, hostPlatform
	listingRunner, hostPlatform = r, discovery.PlatformPOSIX
	t.Cleanup(func() { listingRunner, hostPlatform = prevRunner, prevPlatform })
}

const psHeader = "USER PID %CPU %MEM VSZ RSS TT STAT STARTED TIME COMMAND\n"

const (
	psGame = psHeader +
		"root 1 0.0 0.0 1 1 ?? Ss 9:00AM 0:00.00 /sbin/launchd\n" +
		"player 4242 3.0 2.0 1 1 ?? S 10:01AM 1:00.00 /Applications/StarCraft/x86_64/StarCraft.app/Contents/MacOS/StarCraft -launch\n"

	psNoGame = psHeader + "root 1 0.0 0.0 1 1 ?? Ss 9:00AM 0:00.00 /sbin/launchd\n"

	lsofGame = "COMMAND PID USER FD TYPE DEVICE SIZE/OFF NODE NAME\n" +
		"StarCraft 4242 player 32u IPv4 0x1 0t0 TCP localhost:57421 (LISTEN)\n"
)

var (
	gameRunning    = cannedRunner{"ps": psGame, "lsof": lsofGame}
	gameNotRunning = cannedRunner{"ps": psNoGame}
)

func TestVersion(t *testing.T) {
	out, err := execRoot(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "bnetdata v")
}

func TestHelp(t *testing.T) {
	out, err := execRoot(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "bnetdata [")
}

func TestVerboseQuietMutualExclusion(t *testing.T) {
	_, err := execRoot(t, "--verbose", "--quiet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestUnknownArgs(t *testing.T) {
	_, err := execRoot(t, "nonexistent")
	require.Error(t, err)
}

func TestSubcommandsRegistered(t *testing.T) {
	root := NewRootCmd()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"process", "port", "ladder", "player", "search", "config", "doctor"} {
		assert.True(t, names[name], "%q subcommand not registered", name)
	}

	ladder, _, err := root.Find([]string{"ladder"})
	require.NoError(t, err)
	assert.Equal(t, "100", ladder.Flags().Lookup("length").DefValue)
	assert.Equal(t, "0", ladder.Flags().Lookup("offset").DefValue)
}

func TestProcessCommand(t *testing.T) {
	withRunner(t, gameRunning)

	out, err := execRoot(t, "process")
	require.NoError(t, err)
	assert.Equal(t, "4242\n", out)

	out, err = execRoot(t, "--json", "process")
	require.NoError(t, err)
	var res map[string]int
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 4242, res["pid"])
}

func TestPortCommandSingleCandidate(t *testing.T) {
	withRunner(t, gameRunning)

	out, err := execRoot(t, "port")
	require.NoError(t, err)
	assert.Equal(t, "57421\n", out)

	out, err = execRoot(t, "--json", "port")
	require.NoError(t, err)
	var res discovery.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, discovery.Result{PID: 4242, Port: 57421}, res)
}

func TestNotRunning(t *testing.T) {
	withRunner(t, gameNotRunning)

	for _, args := range [][]string{{"process"}, {"port"}, {"ladder"}, {"player", "Dada78641"}} {
		_, err := execRoot(t, args...)
		require.Error(t, err, args)
		assert.Equal(t, "StarCraft is not running.", err.Error())
		assert.Equal(t, output.ExitNotFound, ExitCode(err))
	}
}

func TestNoCandidatePorts(t *testing.T) {
	withRunner(t, cannedRunner{"ps": psGame, "lsof": ""})

	_, err := execRoot(t, "port")
	assert.ErrorIs(t, err, discovery.ErrNoCandidates)
	assert.Equal(t, output.ExitNotReady, ExitCode(err))
}

func TestListingFailure(t *testing.T) {
	withRunner(t, cannedRunner{})

	_, err := execRoot(t, "process")
	var execErr *discovery.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, output.ExitError, ExitCode(err))
}

// ladderServer serves a one-season leaderboard index and two ladder rows.
func ladderServer(t *testing.T) (host, port string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/web-api/v1/leaderboard":
			fmt.Fprint(w, `{"gamemodes":{"1":{"name":"1v1"}},"gateways":{"10":{"name":"U.S. West","region":"USW"}},
				"leaderboards":{"12931":{"id":12931,"name":"Global","gamemode_id":1,"season_id":12,"last_update_time":1700000000}}}`)
		case "/web-api/v1/leaderboard/12931":
			fmt.Fprint(w, `{"columns":["rank","points","wins","losses","toon","battletag","feature_stat","bucket"],
				"rows":[[1,3000,100,20,"Dada78641","Dada78641#1234","protoss",7],[2,2900,90,30,"Shuttle","Shuttle#1","zerg",6]]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	return u.Hostname(), u.Port()
}

func TestLadderWithExplicitPort(t *testing.T) {
	withRunner(t, cannedRunner{}) // discovery must not run
	host, port := ladderServer(t)

	out, err := execRoot(t, "--json", "--host", host, "--port", port, "ladder", "--length", "2")
	require.NoError(t, err)

	var standings bnetapi.Standings
	require.NoError(t, json.Unmarshal([]byte(out), &standings))
	require.Len(t, standings.Entries, 2)
	assert.Equal(t, "Dada78641", standings.Entries[0].Toon)
	assert.Equal(t, 3000, standings.Entries[0].Points)
	assert.Equal(t, int64(1700000000), standings.Updated.Unix())
}

func TestLadderText(t *testing.T) {
	host, port := ladderServer(t)

	out, err := execRoot(t, "--no-color", "--host", host, "--port", port, "ladder")
	require.NoError(t, err)
	assert.Contains(t, out, "StarCraft Remastered ladder")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, []string{"RANK", "POINTS", "W", "L", "TIER", "RACE", "TOON", "BATTLETAG"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"1", "3000", "100", "20", "S", "P", "Dada78641", "Dada78641#1234"}, strings.Fields(lines[2]))
}

func TestLadderFlagValidation(t *testing.T) {
	_, err := execRoot(t, "--port", "1", "ladder", "--length", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--length")

	_, err = execRoot(t, "--port", "70000", "ladder")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--port")
}

func TestSearchTooShort(t *testing.T) {
	host, port := ladderServer(t)

	_, err := execRoot(t, "--host", host, "--port", port, "search", "abc")
	assert.ErrorIs(t, err, bnetapi.ErrSearchTooShort)
	assert.Equal(t, output.ExitError, ExitCode(err))
}

func TestConfigCommands(t *testing.T) {
	dir := t.TempDir()
	run := func(args ...string) (string, error) {
		c := NewRootCmd()
		buf := new(bytes.Buffer)
		c.SetOut(buf)
		c.SetErr(buf)
		c.SetArgs(append([]string{"--no-color", "--config-dir", dir}, args...))
		err := c.Execute()
		return buf.String(), err
	}

	out, err := run("config", "path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.toml")+"\n", out)

	out, err = run("config", "set", "probe.timeout", "2s")
	require.NoError(t, err)
	assert.Equal(t, "Set probe.timeout = 2s\n", out)

	out, err = run("config", "get", "probe.timeout")
	require.NoError(t, err)
	assert.Equal(t, "2s\n", out)

	out, err = run("config")
	require.NoError(t, err)
	assert.Contains(t, out, "probe.timeout = 2s")
	assert.Contains(t, out, "host = \n")

	_, err = run("config", "set", "probe.timeout", "never")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid probe.timeout")

	_, err = run("config", "get", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config key")
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, output.ExitSuccess},
		{"plain", errors.New("boom"), output.ExitError},
		{"exit error", &ExitError{Code: 42, Err: errors.New("x")}, 42},
		{"wrapped exit error", fmt.Errorf("ctx: %w", errNotRunning), output.ExitNotFound},
		{"no candidates", discovery.ErrNoCandidates, output.ExitNotReady},
		{"all failed with deadline", &discovery.AllPortsFailedError{Failures: []discovery.ProbeOutcome{
			{Port: 1, Err: context.DeadlineExceeded},
		}}, output.ExitNetwork},
		{"cancelled", context.Canceled, output.ExitInterrupted},
		{"deadline", fmt.Errorf("fetching: %w", context.DeadlineExceeded), output.ExitTimeout},
		{"player not found", &bnetapi.PlayerNotFoundError{Query: "x"}, output.ExitNotFound},
		{"api error", &bnetapi.APIError{URL: "u", Status: 500}, output.ExitNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestReportErrorJSON(t *testing.T) {
	output.SetFlags(true, true, false, true)
	defer output.SetFlags(false, false, false, false)

	buf := new(bytes.Buffer)
	code := ReportError(buf, errNotRunning)
	assert.Equal(t, output.ExitNotFound, code)

	var env map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.Equal(t, "not_found", env["error"])
	assert.Equal(t, "StarCraft is not running.", env["message"])
}

func TestReportErrorText(t *testing.T) {
	output.SetFlags(false, false, false, true)
	defer output.SetFlags(false, false, false, false)

	buf := new(bytes.Buffer)
	code := ReportError(buf, discovery.ErrNoCandidates)
	assert.Equal(t, output.ExitNotReady, code)
	assert.Equal(t, "Error: no candidate ports open\n", buf.String())
}
