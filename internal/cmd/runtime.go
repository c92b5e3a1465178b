package cmd

import (
	"context"

	"github.com/dsmmcken/bnetdata/internal/bnetapi"
	"github.com/dsmmcken/bnetdata/internal/config"
	"github.com/dsmmcken/bnetdata/internal/discovery"
	"github.com/dsmmcken/bnetdata/internal/logging"
	"github.com/dsmmcken/bnetdata/internal/output"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Overridden in tests.
var (
	listingRunner discovery.Runner = discovery.ExecRunner{}
	hostPlatform                   = discovery.DetectPlatform()
)

// runtime holds what every data command needs: effective settings and a
// logger built from them.
type runtime struct {
	settings *config.Settings
	log      *logrus.Logger
}

func newRuntime(cmd *cobra.Command) (*runtime, error) {
	s, err := config.Resolve()
	if err != nil {
		return nil, &ExitError{Code: output.ExitError, Err: err}
	}
	if hostFlag != "" {
		s.Host = hostFlag
	}

	level := s.LogLevel
	switch {
	case verboseFlag:
		level = "debug"
	case quietFlag && level == "":
		level = "error"
	}
	log := logging.New(logging.Options{
		Level:  level,
		Format: s.LogFormat,
		Out:    cmd.ErrOrStderr(),
	})
	return &runtime{settings: s, log: log}, nil
}

func (r *runtime) discoverer() *discovery.Discoverer {
	return discovery.New(discovery.Options{
		Platform:      hostPlatform,
		Runner:        listingRunner,
		Patterns:      r.settings.Patterns,
		ProbeEndpoint: r.settings.ProbeEndpoint,
		ProbeTimeout:  r.settings.ProbeTimeout,
		Logger:        r.log,
	})
}

// discover runs discovery and turns "not running" into errNotRunning.
func (r *runtime) discover(ctx context.Context, onlyProcess bool) (discovery.Result, error) {
	res, err := r.discoverer().Discover(ctx, onlyProcess)
	if err != nil {
		return discovery.Result{}, err
	}
	if !res.Running() {
		return discovery.Result{}, errNotRunning
	}
	return res, nil
}

// apiPort returns --port if set, otherwise the discovered API port.
func (r *runtime) apiPort(ctx context.Context) (int, error) {
	if portFlag > 0 {
		return portFlag, nil
	}
	res, err := r.discover(ctx, false)
	if err != nil {
		return 0, err
	}
	return res.Port, nil
}

func (r *runtime) apiClient(ctx context.Context) (*bnetapi.Client, error) {
	port, err := r.apiPort(ctx)
	if err != nil {
		return nil, err
	}
	return bnetapi.New(port, bnetapi.Options{
		Host:    r.settings.Host,
		Timeout: r.settings.APITimeout,
		Logger:  r.log,
	}), nil
}
