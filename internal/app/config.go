package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ConfigPath string // hcl files describing modules and cues

	// AudioServerURL is the socket.io endpoint of the signal engine. When
	// empty the offline engine is used, which records commands instead of
	// producing sound.
	AudioServerURL string

	LogFormat   string
	LogLevel    string
	ControlPort int
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.ConfigPath == "" {
		return nil, errors.New("ConfigPath is a required configuration field and cannot be empty")
	}

	return &cfg, nil
}
