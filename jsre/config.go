package jsre

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EvalOptions mirrors the option bag accepted by Eval (§6). Eval reads only
// Filename, Strict and NoScriptRval; Lineno, Column, MutedErrors,
// SelfHosting, Module and FromHostFrame are carried but have no effect.
type EvalOptions struct {
	Filename      string `yaml:"filename"`
	Lineno        uint   `yaml:"lineno"`
	Column        uint   `yaml:"column"`
	MutedErrors   bool   `yaml:"mutedErrors"`
	NoScriptRval  bool   `yaml:"noScriptRval"`
	SelfHosting   bool   `yaml:"selfHosting"`
	Strict        bool   `yaml:"strict"`
	Module        bool   `yaml:"module"`
	FromHostFrame bool   `yaml:"fromHostFrame"`
}

// DefaultEvalOptions matches the engine's own defaults: no special
// filename, zero-based line/column, nothing muted or forced.
func DefaultEvalOptions() EvalOptions {
	return EvalOptions{Filename: "<eval>"}
}

// Config is the ambient configuration surface for a Runtime, analogous to
// go-ethereum's node/eth Config structs but far smaller, since this module
// has no genesis-file-shaped config to justify a TOML layer on top.
type Config struct {
	// Eval holds default EvalOptions. Eval uses its Filename when the
	// caller's is empty and ORs its Strict into the caller's; its other
	// fields are not consulted.
	Eval EvalOptions `yaml:"eval"`

	// JobQueueCapacity is loaded and carried, but nothing reads it: it does
	// not bound the event loop's queue or DispatchOffThread.
	JobQueueCapacity int `yaml:"jobQueueCapacity"`

	// TimerCapacity is loaded and carried, but nothing reads it: the number
	// of live timers is not bounded.
	TimerCapacity int `yaml:"timerCapacity"`

	// Verbosity is a glog-style verbosity level. It is loaded and carried,
	// but New does not apply it to any logger.
	Verbosity int `yaml:"verbosity"`

	// FatalUnhandledRejections, when true, treats an unhandled promise
	// rejection the same as an uncaught host panic instead of merely
	// logging it through the rejections Feed.
	FatalUnhandledRejections bool `yaml:"fatalUnhandledRejections"`

	// ShutdownGrace bounds how long Stop waits for in-flight Eval calls to
	// finish before shutting down anyway.
	ShutdownGrace time.Duration `yaml:"shutdownGrace"`

	// LogFile, if set, receives the Runtime's log output in place of the
	// root logger, rotated via NewRotatingFileWriter once it exceeds
	// LogFileMaxSizeMB.
	LogFile          string `yaml:"logFile"`
	LogFileMaxSizeMB int    `yaml:"logFileMaxSizeMB"`
}

// DefaultConfig returns the configuration a Runtime uses when none is
// supplied explicitly.
func DefaultConfig() Config {
	return Config{
		Eval:             DefaultEvalOptions(),
		JobQueueCapacity: 1024,
		TimerCapacity:    4096,
		Verbosity:        3,
		ShutdownGrace:    5 * time.Second,
		LogFileMaxSizeMB: 50,
	}
}

// LoadConfig reads a YAML-encoded Config from path, starting from
// DefaultConfig so an incomplete file only overrides what it mentions.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
