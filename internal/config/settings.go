package config

import (
	"time"
)

// Settings are the effective values after merging config.toml, the
// environment and the built-in defaults. Flags are applied on top by the
// caller.
type Settings struct {
	Host          string        `json:"host"`
	ProbeTimeout  time.Duration `json:"probe_timeout"`
	ProbeEndpoint string        `json:"probe_endpoint"`
	APITimeout    time.Duration `json:"api_timeout"`
	Patterns      []string      `json:"process_patterns"`
	LogLevel      string        `json:"log_level"`
	LogFormat     string        `json:"log_format"`
}

// Resolve loads config.toml and the environment and returns the effective
// settings. Precedence: BNETDATA_* env > config.toml > defaults.
func Resolve() (*Settings, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	e, err := loadEnv()
	if err != nil {
		return nil, err
	}
	return resolve(cfg, e)
}

func resolve(cfg *Config, e env) (*Settings, error) {
	s := &Settings{
		Host:          first(e.Host, cfg.Host, DefaultHost),
		ProbeEndpoint: first(e.ProbeEndpoint, cfg.Probe.Endpoint, DefaultProbeEndpoint),
		LogLevel:      first(e.LogLevel, cfg.Log.Level),
		LogFormat:     first(e.LogFormat, cfg.Log.Format, DefaultLogFormat),
		Patterns:      cfg.Process.Patterns,
	}
	if len(e.ProcessPatterns) > 0 {
		s.Patterns = e.ProcessPatterns
	}

	var err error
	if s.ProbeTimeout, err = durationSetting("probe.timeout", first(e.ProbeTimeout, cfg.Probe.Timeout), DefaultProbeTimeout); err != nil {
		return nil, err
	}
	if s.APITimeout, err = durationSetting("api.timeout", first(e.APITimeout, cfg.API.Timeout), DefaultAPITimeout); err != nil {
		return nil, err
	}
	for key, value := range map[string]string{"log.level": s.LogLevel, "log.format": s.LogFormat} {
		if err := validate(key, value); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func durationSetting(key, value string, def time.Duration) (time.Duration, error) {
	if value == "" {
		return def, nil
	}
	return parseDuration(key, value)
}

// first returns the first non-empty value.
func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
