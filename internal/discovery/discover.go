// Package discovery finds the port StarCraft's local web API listens on.
//
// The game binds two or three loopback ports at startup, picked at random,
// and only one of them serves the API. Discovery lists processes to find the
// game, lists the sockets it holds, then probes all candidates at once and
// keeps the first that answers.
package discovery

import (
	"context"
	"time"

	"github.com/dsmmcken/bnetdata/internal/logging"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Result is what Discover found. A zero PID means the game is not running; a
// zero Port means ports were not looked up.
type Result struct {
	PID  int `json:"pid,omitempty"`
	Port int `json:"port,omitempty"`
}

// Running reports whether the game process was found.
func (r Result) Running() bool {
	return r.PID > 0
}

// Options configures a Discoverer. The zero value uses ps and lsof, the
// default prober and no logging; callers pass DetectPlatform() for the host.
type Options struct {
	Platform Platform
	// Runner defaults to ExecRunner.
	Runner Runner
	// Patterns are matched in addition to the platform's own patterns.
	Patterns []string
	// Probe defaults to an HTTPProber built from ProbeEndpoint and
	// ProbeTimeout.
	Probe         ProbeFunc
	ProbeEndpoint string
	ProbeTimeout  time.Duration
	Logger        logrus.FieldLogger
}

// Discoverer runs the find process, list ports, probe ports pipeline. It
// holds no state between calls; every Discover starts from scratch since the
// game picks new ports each launch.
type Discoverer struct {
	platform Platform
	runner   Runner
	patterns []string
	probe    ProbeFunc
	log      logrus.FieldLogger
}

// New creates a Discoverer.
func New(opts Options) *Discoverer {
	runner := opts.Runner
	if runner == nil {
		runner = ExecRunner{}
	}
	probe := opts.Probe
	if probe == nil {
		probe = NewHTTPProber(opts.ProbeEndpoint, opts.ProbeTimeout).Probe
	}
	patterns := append(opts.Platform.Patterns(), opts.Patterns...)

	return &Discoverer{
		platform: opts.Platform,
		runner:   runner,
		patterns: patterns,
		probe:    probe,
		log:      logging.WithComponent(logging.OrDiscard(opts.Logger), "discovery"),
	}
}

// Patterns returns the executable patterns the Discoverer matches.
func (d *Discoverer) Patterns() []string {
	return append([]string(nil), d.patterns...)
}

// Discover finds the game process and, unless onlyProcess is set, its working
// API port.
//
// If the game is not running the zero Result is returned with a nil error.
// Errors from the listing commands (*ExecutionError) and from probing
// (ErrNoCandidates, *AllPortsFailedError) are returned unwrapped.
func (d *Discoverer) Discover(ctx context.Context, onlyProcess bool) (Result, error) {
	log := d.log.WithFields(logrus.Fields{
		logging.FieldRunID:    uuid.NewString(),
		logging.FieldPlatform: d.platform.String(),
	})
	start := time.Now()

	proc, found, err := d.FindProcess(ctx)
	if err != nil {
		log.WithField(logging.FieldError, err.Error()).Warn("process listing failed")
		return Result{}, err
	}
	if !found {
		log.Debug("game process not found")
		return Result{}, nil
	}
	log = log.WithField(logging.FieldPID, proc.PID)
	log.Debug("game process found")

	if onlyProcess {
		return Result{PID: proc.PID}, nil
	}

	ports, err := d.ListOpenPorts(ctx, proc.PID)
	if err != nil {
		log.WithField(logging.FieldError, err.Error()).Warn("socket listing failed")
		return Result{}, err
	}
	log.WithField(logging.FieldPorts, ports).Debug("candidate ports")

	port, err := d.FindWorkingPort(ctx, ports)
	if err != nil {
		log.WithField(logging.FieldError, err.Error()).Warn("no working port")
		return Result{}, err
	}

	log.WithFields(logrus.Fields{
		logging.FieldPort:     port,
		logging.FieldDuration: time.Since(start).Milliseconds(),
	}).Debug("discovered API port")
	return Result{PID: proc.PID, Port: port}, nil
}

// FindProcess lists processes and returns the first that matches the game.
func (d *Discoverer) FindProcess(ctx context.Context) (ProcessRecord, bool, error) {
	records, err := ListProcesses(ctx, d.runner, d.platform.ProcessParser())
	if err != nil {
		return ProcessRecord{}, false, err
	}
	proc, found := FindTargetProcess(records, d.patterns)
	return proc, found, nil
}

// ListOpenPorts returns the loopback ports held by pid.
func (d *Discoverer) ListOpenPorts(ctx context.Context, pid int) ([]int, error) {
	return ListOpenPorts(ctx, d.runner, d.platform.SocketParser(), pid)
}

// FindWorkingPort races the configured probe over candidates.
func (d *Discoverer) FindWorkingPort(ctx context.Context, candidates []int) (int, error) {
	return FindWorkingPort(ctx, candidates, d.loggedProbe)
}

func (d *Discoverer) loggedProbe(ctx context.Context, port int) error {
	start := time.Now()
	err := d.probe(ctx, port)
	entry := d.log.WithFields(logrus.Fields{
		logging.FieldPort:     port,
		logging.FieldDuration: time.Since(start).Milliseconds(),
	})
	if err != nil {
		entry.WithField(logging.FieldError, err.Error()).Debug("probe failed")
	} else {
		entry.Debug("probe succeeded")
	}
	return err
}
