// Package config provides configuration management for taskmcp.
// Configuration is loaded from (highest to lowest priority):
// 1. Command-line flags
// 2. Environment variables (TASKMCP_*)
// 3. Project config (.taskmcp/config.yaml in cwd)
// 4. Home config (~/.taskmcp/config.yaml)
// 5. Defaults
package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all taskmcp configuration.
type Config struct {
	// Output controls the CLI output format (text, json).
	Output string `yaml:"output" json:"output"`

	// WorkDir is where documents, the task plan and wizard state live (default: docs).
	WorkDir string `yaml:"work_dir" json:"work_dir"`

	// Verbose enables debug logging.
	Verbose bool `yaml:"verbose" json:"verbose"`

	Log LogConfig `yaml:"log" json:"log"`

	Server ServerConfig `yaml:"server" json:"server"`

	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`

	Paths PathsConfig `yaml:"paths" json:"paths"`

	Wizard WizardConfig `yaml:"wizard" json:"wizard"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is a zerolog level name (debug, info, warn, error).
	Level string `yaml:"level" json:"level"`
	// Format is "auto" (console on a terminal, JSON otherwise), "console" or "json".
	Format string `yaml:"format" json:"format"`
}

// ServerConfig holds MCP server settings.
type ServerConfig struct {
	// Name is the server name announced during initialization.
	Name string `yaml:"name" json:"name"`
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	// Addr is the listen address for /metrics. Empty disables the endpoint.
	Addr string `yaml:"addr" json:"addr"`
}

// PathsConfig holds configurable paths.
type PathsConfig struct {
	// CommandsDir is where slash-command files are installed.
	// Default: ~/.claude/commands
	CommandsDir string `yaml:"commands_dir" json:"commands_dir"`
}

// WizardConfig holds question wizard settings.
type WizardConfig struct {
	// StateFile is the wizard state record name inside WorkDir.
	StateFile string `yaml:"state_file" json:"state_file"`
}

// Default config values (used in resolution and validation).
const (
	defaultOutput     = "text"
	defaultWorkDir    = "docs"
	defaultLogLevel   = "info"
	defaultLogFormat  = "auto"
	defaultServerName = "task-manager"
	defaultStateFile  = ".task_new_state.json"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Output:  defaultOutput,
		WorkDir: defaultWorkDir,
		Verbose: false,
		Log: LogConfig{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Server: ServerConfig{
			Name: defaultServerName,
		},
		Paths: PathsConfig{
			CommandsDir: defaultCommandsDir(),
		},
		Wizard: WizardConfig{
			StateFile: defaultStateFile,
		},
	}
}

func defaultCommandsDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".claude", "commands")
}

// Load loads configuration with proper precedence.
// Priority: flags > env > project > home > defaults
func Load(flagOverrides *Config) (*Config, error) {
	cfg := Default()

	homeConfig, _ := loadFromPath(homeConfigPath())
	if homeConfig != nil {
		cfg = merge(cfg, homeConfig)
	}

	projectConfig, err := loadFromPath(projectConfigPath())
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if projectConfig != nil {
		cfg = merge(cfg, projectConfig)
	}

	cfg = applyEnv(cfg)

	if flagOverrides != nil {
		cfg = merge(cfg, flagOverrides)
	}

	return cfg, nil
}

// homeConfigPath returns the home config path.
func homeConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".taskmcp", "config.yaml")
}

// projectConfigPath returns the project config path.
func projectConfigPath() string {
	if override := strings.TrimSpace(os.Getenv("TASKMCP_CONFIG")); override != "" {
		return override
	}
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return filepath.Join(cwd, ".taskmcp", "config.yaml")
}

// loadFromPath loads config from a YAML file.
func loadFromPath(path string) (*Config, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnv applies environment variable overrides.
func applyEnv(cfg *Config) *Config {
	if v := os.Getenv("TASKMCP_OUTPUT"); v != "" {
		cfg.Output = v
	}
	if v := os.Getenv("TASKMCP_WORK_DIR"); v != "" {
		cfg.WorkDir = v
	}
	if v, ok := getEnvBool("TASKMCP_VERBOSE"); ok {
		cfg.Verbose = v
	}
	if v := os.Getenv("TASKMCP_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("TASKMCP_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("TASKMCP_SERVER_NAME"); v != "" {
		cfg.Server.Name = v
	}
	if v := os.Getenv("TASKMCP_METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
	if v := os.Getenv("TASKMCP_COMMANDS_DIR"); v != "" {
		cfg.Paths.CommandsDir = v
	}
	if v := os.Getenv("TASKMCP_STATE_FILE"); v != "" {
		cfg.Wizard.StateFile = v
	}
	return cfg
}

// mergeStr overwrites dst with src when src is non-empty.
func mergeStr(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

// merge merges src into dst, with src values taking precedence.
// Verbose can only be switched on by a higher layer.
func merge(dst, src *Config) *Config {
	mergeStr(&dst.Output, src.Output)
	mergeStr(&dst.WorkDir, src.WorkDir)
	if src.Verbose {
		dst.Verbose = true
	}

	mergeStr(&dst.Log.Level, src.Log.Level)
	mergeStr(&dst.Log.Format, src.Log.Format)
	mergeStr(&dst.Server.Name, src.Server.Name)
	mergeStr(&dst.Metrics.Addr, src.Metrics.Addr)
	mergeStr(&dst.Paths.CommandsDir, src.Paths.CommandsDir)
	mergeStr(&dst.Wizard.StateFile, src.Wizard.StateFile)

	return dst
}

// Source represents where a config value came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceHome    Source = "~/.taskmcp/config.yaml"
	SourceProject Source = ".taskmcp/config.yaml"
	SourceEnv     Source = "environment"
	SourceFlag    Source = "flag"
)

// getEnvString returns the value and whether the env var was set.
func getEnvString(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

// getEnvBool returns the boolean value and whether it was truthy.
func getEnvBool(key string) (bool, bool) {
	v := os.Getenv(key)
	if v == "true" || v == "1" {
		return true, true
	}
	return false, false
}

// resolveStringField resolves a string through the precedence chain.
func resolveStringField(home, project, env, flag, def string) resolved {
	result := resolved{Value: def, Source: SourceDefault}
	if home != "" {
		result = resolved{Value: home, Source: SourceHome}
	}
	if project != "" {
		result = resolved{Value: project, Source: SourceProject}
	}
	if env != "" {
		result = resolved{Value: env, Source: SourceEnv}
	}
	if flag != "" {
		result = resolved{Value: flag, Source: SourceFlag}
	}
	return result
}

// ResolvedConfig shows config values with their sources.
type ResolvedConfig struct {
	Output      resolved `json:"output"`
	WorkDir     resolved `json:"work_dir"`
	Verbose     resolved `json:"verbose"`
	LogLevel    resolved `json:"log_level"`
	LogFormat   resolved `json:"log_format"`
	ServerName  resolved `json:"server_name"`
	MetricsAddr resolved `json:"metrics_addr"`
	CommandsDir resolved `json:"commands_dir"`
	StateFile   resolved `json:"state_file"`
}

type resolved struct {
	Value  interface{} `json:"value"`
	Source Source      `json:"source"`
}

// fileLayer returns cfg or an empty config so field access is nil-safe.
func fileLayer(cfg *Config) *Config {
	if cfg == nil {
		return &Config{}
	}
	return cfg
}

// Resolve returns configuration with source tracking.
// Uses precedence chain: flags > env > project > home > defaults.
func Resolve(flagOutput, flagWorkDir string, flagVerbose bool) *ResolvedConfig {
	homeConfig, _ := loadFromPath(homeConfigPath())
	projectConfig, _ := loadFromPath(projectConfigPath())
	home := fileLayer(homeConfig)
	project := fileLayer(projectConfig)

	envOutput, _ := getEnvString("TASKMCP_OUTPUT")
	envWorkDir, _ := getEnvString("TASKMCP_WORK_DIR")
	envVerbose, envVerboseSet := getEnvBool("TASKMCP_VERBOSE")
	envLogLevel, _ := getEnvString("TASKMCP_LOG_LEVEL")
	envLogFormat, _ := getEnvString("TASKMCP_LOG_FORMAT")
	envServerName, _ := getEnvString("TASKMCP_SERVER_NAME")
	envMetricsAddr, _ := getEnvString("TASKMCP_METRICS_ADDR")
	envCommandsDir, _ := getEnvString("TASKMCP_COMMANDS_DIR")
	envStateFile, _ := getEnvString("TASKMCP_STATE_FILE")

	rc := &ResolvedConfig{
		Output:      resolveStringField(home.Output, project.Output, envOutput, flagOutput, defaultOutput),
		WorkDir:     resolveStringField(home.WorkDir, project.WorkDir, envWorkDir, flagWorkDir, defaultWorkDir),
		Verbose:     resolved{Value: false, Source: SourceDefault},
		LogLevel:    resolveStringField(home.Log.Level, project.Log.Level, envLogLevel, "", defaultLogLevel),
		LogFormat:   resolveStringField(home.Log.Format, project.Log.Format, envLogFormat, "", defaultLogFormat),
		ServerName:  resolveStringField(home.Server.Name, project.Server.Name, envServerName, "", defaultServerName),
		MetricsAddr: resolveStringField(home.Metrics.Addr, project.Metrics.Addr, envMetricsAddr, "", ""),
		CommandsDir: resolveStringField(home.Paths.CommandsDir, project.Paths.CommandsDir, envCommandsDir, "", defaultCommandsDir()),
		StateFile:   resolveStringField(home.Wizard.StateFile, project.Wizard.StateFile, envStateFile, "", defaultStateFile),
	}

	// Verbose has OR semantics through the chain.
	if home.Verbose {
		rc.Verbose = resolved{Value: true, Source: SourceHome}
	}
	if project.Verbose {
		rc.Verbose = resolved{Value: true, Source: SourceProject}
	}
	if envVerboseSet && envVerbose {
		rc.Verbose = resolved{Value: true, Source: SourceEnv}
	}
	if flagVerbose {
		rc.Verbose = resolved{Value: true, Source: SourceFlag}
	}

	return rc
}
