// Package config provides configuration management for ghcommit.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultCommitMessage is the headline used when none is configured
const DefaultCommitMessage = "Committed via ghcommit"

// Config holds the configuration of a run
type Config struct {
	GitHubToken string
	APIURL      string // empty for github.com
	Repository  string // owner/repo
	Workdir     string

	Files         []string
	BranchName    string
	CommitMessage string
	CommitBody    string

	Verbose          bool
	LogFile          string
	TelemetryEnabled bool
	OTLPEndpoint     string
}

// Load loads configuration from environment variables
func Load() (Config, error) {
	config := Config{
		GitHubToken:   os.Getenv("GITHUB_TOKEN"),
		APIURL:        os.Getenv("GITHUB_API_URL"),
		Repository:    os.Getenv("GITHUB_REPOSITORY"),
		Workdir:       os.Getenv("GITHUB_WORKSPACE"),
		CommitMessage: DefaultCommitMessage,
		LogFile:       os.Getenv("GHCOMMIT_LOG_FILE"),
		OTLPEndpoint:  os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}
	if config.Workdir == "" {
		config.Workdir = "."
	}

	if err := parseOptionalFromEnv(&config.Verbose, "RUNNER_DEBUG", parseBool); err != nil {
		return Config{}, err
	}
	if err := parseOptionalFromEnv(&config.TelemetryEnabled, "GHCOMMIT_TELEMETRY", parseBool); err != nil {
		return Config{}, err
	}

	return config, nil
}

// Validate checks that the configuration is complete enough to run
func (c Config) Validate() error {
	if c.GitHubToken == "" {
		return fmt.Errorf("missing GitHub token: set the token input or GITHUB_TOKEN")
	}
	if _, _, err := SplitRepository(c.Repository); err != nil {
		return err
	}
	if c.TelemetryEnabled && c.OTLPEndpoint == "" {
		return fmt.Errorf("telemetry is enabled but OTEL_EXPORTER_OTLP_ENDPOINT is not set")
	}
	return nil
}

// OwnerRepo returns the owner and name of the configured repository
func (c Config) OwnerRepo() (string, string, error) {
	return SplitRepository(c.Repository)
}

// SplitRepository parses a qualified repository name of the form owner/repo
func SplitRepository(qualified string) (string, string, error) {
	parts := strings.Split(qualified, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository format '%s', expected owner/repo", qualified)
	}
	return parts[0], parts[1], nil
}

func parseOptionalFromEnv[T any](dest *T, key string, parseFn func(string) (T, error)) error {
	str := os.Getenv(key)
	if str == "" {
		return nil // Leave default value
	}
	v, err := parseFn(str)
	if err != nil {
		return fmt.Errorf("failed to parse environment variable '%s' value '%s' as '%T': %w", key, str, *dest, err)
	}
	*dest = v
	return nil
}

func parseBool(s string) (bool, error) {
	return strconv.ParseBool(strings.TrimSpace(s))
}

// File is the layout of an optional YAML configuration file
type File struct {
	Repository string   `yaml:"repository"`
	APIURL     string   `yaml:"api_url"`
	Token      string   `yaml:"token"` // inline or ${ENV_VAR}
	Workdir    string   `yaml:"workdir"`
	Branch     string   `yaml:"branch"`
	Message    string   `yaml:"message"`
	Body       string   `yaml:"body"`
	Files      []string `yaml:"files"`
	LogFile    string   `yaml:"log_file"`
}

// envVarPattern matches ${VAR_NAME} placeholders
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// LoadFile reads a YAML configuration file and applies its non-empty values on top of c
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse config file %q: %w", path, err)
	}

	overlay(&c.Repository, file.Repository)
	overlay(&c.APIURL, file.APIURL)
	overlay(&c.GitHubToken, expandEnv(file.Token))
	overlay(&c.Workdir, file.Workdir)
	overlay(&c.BranchName, file.Branch)
	overlay(&c.CommitMessage, file.Message)
	overlay(&c.CommitBody, file.Body)
	overlay(&c.LogFile, file.LogFile)
	if len(file.Files) > 0 {
		c.Files = file.Files
	}
	return nil
}

func overlay(dest *string, v string) {
	if v != "" {
		*dest = v
	}
}

func expandEnv(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envVarPattern.FindStringSubmatch(match)[1])
	})
}
