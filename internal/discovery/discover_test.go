package discovery

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner answers listing commands from canned output keyed by command
// name and records every call.
type fakeRunner struct {
	mu      sync.Mutex
	outputs map[string]string
	errs    map[string]error
	calls   []string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, strings.Join(append([]string{name}, args...), " "))
	if err := f.errs[name]; err != nil {
		return "", err
	}
	return f.outputs[name], nil
}

func (f *fakeRunner) commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// probeOnly returns a ProbeFunc that succeeds for port and refuses the rest.
func probeOnly(port int, calls *atomic.Int32) ProbeFunc {
	return func(ctx context.Context, p int) error {
		calls.Add(1)
		if p == port {
			return nil
		}
		return errRefused
	}
}

func TestDiscoverPOSIX(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{"ps": psFixture, "lsof": lsofFixture}}
	var calls atomic.Int32
	d := New(Options{Platform: PlatformPOSIX, Runner: runner, Probe: probeOnly(57422, &calls)})

	res, err := d.Discover(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, Result{PID: 4242, Port: 57422}, res)
	assert.True(t, res.Running())
	assert.Equal(t, []string{"ps aux", "lsof -aPi -p 4242"}, runner.commands())
	assert.Positive(t, calls.Load())
}

func TestDiscoverOnlyProcess(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{"ps": psFixture, "lsof": lsofFixture}}
	var calls atomic.Int32
	d := New(Options{Platform: PlatformPOSIX, Runner: runner, Probe: probeOnly(57422, &calls)})

	res, err := d.Discover(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, Result{PID: 4242}, res)
	assert.Equal(t, []string{"ps aux"}, runner.commands(), "no socket listing in process-only mode")
	assert.Zero(t, calls.Load(), "no probing in process-only mode")
}

func TestDiscoverNotRunning(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{
		"ps": "USER PID %CPU %MEM VSZ RSS TT STAT STARTED TIME COMMAND\nroot 1 0.0 0.0 1 1 ?? Ss 9:00AM 0:00.00 /sbin/launchd\n",
	}}
	var calls atomic.Int32
	d := New(Options{Platform: PlatformPOSIX, Runner: runner, Probe: probeOnly(1, &calls)})

	for _, onlyProcess := range []bool{true, false} {
		res, err := d.Discover(context.Background(), onlyProcess)
		require.NoError(t, err)
		assert.Equal(t, Result{}, res)
		assert.False(t, res.Running())
	}
	assert.Equal(t, []string{"ps aux", "ps aux"}, runner.commands())
	assert.Zero(t, calls.Load())
}

func TestDiscoverWindows(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{
		"tasklist": tasklistFixture(
			[3]string{"explorer.exe", "1200", `DESKTOP\player`},
			[3]string{"StarCraft.exe", "4242", `DESKTOP\player`},
		),
		"netstat": netstatFixture,
	}}
	var calls atomic.Int32
	d := New(Options{Platform: PlatformWindows, Runner: runner, Probe: probeOnly(6113, &calls)})

	res, err := d.Discover(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, Result{PID: 4242, Port: 6113}, res)
	assert.Equal(t, []string{"tasklist /v /fo table", "netstat -ano -p TCP"}, runner.commands())
}

func TestDiscoverExecutionErrorPropagates(t *testing.T) {
	execErr := &ExecutionError{Command: "ps aux", Signal: "SIGKILL"}
	runner := &fakeRunner{errs: map[string]error{"ps": execErr}}
	d := New(Options{Platform: PlatformPOSIX, Runner: runner})

	_, err := d.Discover(context.Background(), true)
	var got *ExecutionError
	require.ErrorAs(t, err, &got)
	assert.Same(t, execErr, got)
}

func TestDiscoverSocketListingErrorPropagates(t *testing.T) {
	execErr := &ExecutionError{Command: "lsof -aPi -p 4242", Err: errors.New("exec: \"lsof\": executable file not found in $PATH")}
	runner := &fakeRunner{
		outputs: map[string]string{"ps": psFixture},
		errs:    map[string]error{"lsof": execErr},
	}
	d := New(Options{Platform: PlatformPOSIX, Runner: runner})

	_, err := d.Discover(context.Background(), false)
	assert.Same(t, error(execErr), err)
}

func TestDiscoverNoPorts(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{"ps": psFixture, "lsof": ""}}
	var calls atomic.Int32
	d := New(Options{Platform: PlatformPOSIX, Runner: runner, Probe: probeOnly(1, &calls)})

	res, err := d.Discover(context.Background(), false)
	assert.ErrorIs(t, err, ErrNoCandidates)
	assert.Equal(t, Result{}, res)
	assert.Zero(t, calls.Load())
}

func TestDiscoverAllPortsFail(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{"ps": psFixture, "lsof": lsofFixture}}
	var calls atomic.Int32
	d := New(Options{Platform: PlatformPOSIX, Runner: runner, Probe: probeOnly(1, &calls)})

	_, err := d.Discover(context.Background(), false)
	var allFailed *AllPortsFailedError
	require.ErrorAs(t, err, &allFailed)
	// 57421..57424 from the lsof fixture
	assert.Len(t, allFailed.Failures, 4)
	assert.EqualValues(t, 4, calls.Load())
}

func TestDiscoverExtraPatterns(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{"ps": psFixture}}
	d := New(Options{Platform: PlatformPOSIX, Runner: runner, Patterns: []string{"WindowServer"}})

	assert.Equal(t, append(PlatformPOSIX.Patterns(), "WindowServer"), d.Patterns())

	proc, found, err := d.FindProcess(context.Background())
	require.NoError(t, err)
	assert.True(t, found)
	// the game is listed before WindowServer
	assert.Equal(t, 4242, proc.PID)
}

func TestDiscoverPatternsIsACopy(t *testing.T) {
	d := New(Options{Platform: PlatformWindows})
	p := d.Patterns()
	p[0] = "mutated"
	assert.Equal(t, []string{"StarCraft.exe"}, d.Patterns())
}
