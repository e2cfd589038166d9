package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ProgramName     = "lsh"
	EndpointEnv     = "SSH_CLIENT"
	AllowListFile   = "list"
	CredentialFile  = "data"
	AcceptedLogFile = "login_log"
	RejectedLogFile = "failed_log"
	SessionLimit    = 1
	MaxPasswordLen  = 10
	Prompt          = "> "
	IDPrompt        = "ID : "
	PasswordPrompt  = "PW : "
)

// Settings holds the file locations and limits used by one shell process.
// Relative paths are resolved against Dir.
type Settings struct {
	Dir            string `yaml:"dir"`
	AllowListFile  string `yaml:"allow_list"`
	CredentialFile string `yaml:"credentials"`
	AcceptedLog    string `yaml:"accepted_log"`
	RejectedLog    string `yaml:"rejected_log"`
	LastLoginDB    string `yaml:"lastlog_db"`
	ProgramName    string `yaml:"program_name"`
	SessionLimit   int    `yaml:"session_limit"`
	EndpointEnv    string `yaml:"endpoint_env"`
}

// Defaults returns the settings the shell uses when nothing is configured.
func Defaults() Settings {
	return Settings{
		Dir:            ".",
		AllowListFile:  AllowListFile,
		CredentialFile: CredentialFile,
		AcceptedLog:    AcceptedLogFile,
		RejectedLog:    RejectedLogFile,
		ProgramName:    ProgramName,
		SessionLimit:   SessionLimit,
		EndpointEnv:    EndpointEnv,
	}
}

// Load builds Settings from defaults, an optional YAML file, an optional
// dotenv file and LSH_* environment variables, in that order of precedence.
// Empty paths skip the corresponding source.
func Load(configPath, envFile string) (Settings, error) {
	s := Defaults()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return s, fmt.Errorf("failed to read config %s: %w", configPath, err)
		}
		if err := yaml.Unmarshal(data, &s); err != nil {
			return s, fmt.Errorf("failed to parse config %s: %w", configPath, err)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return s, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	overlay(&s.Dir, "LSH_DIR")
	overlay(&s.AllowListFile, "LSH_ALLOW_LIST")
	overlay(&s.CredentialFile, "LSH_CREDENTIALS")
	overlay(&s.AcceptedLog, "LSH_ACCEPTED_LOG")
	overlay(&s.RejectedLog, "LSH_REJECTED_LOG")
	overlay(&s.LastLoginDB, "LSH_LASTLOG_DB")
	overlay(&s.ProgramName, "LSH_PROGRAM")
	overlay(&s.EndpointEnv, "LSH_ENDPOINT_ENV")

	if v := os.Getenv("LSH_SESSION_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return s, fmt.Errorf("invalid LSH_SESSION_LIMIT %q: %w", v, err)
		}
		s.SessionLimit = n
	}

	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// Validate reports settings the shell cannot run with.
func (s Settings) Validate() error {
	if s.SessionLimit < 1 {
		return fmt.Errorf("session limit must be at least 1, got %d", s.SessionLimit)
	}
	if s.ProgramName == "" {
		return errors.New("program name must not be empty")
	}
	if s.AllowListFile == "" || s.CredentialFile == "" {
		return errors.New("allow list and credential files must be set")
	}
	if s.AcceptedLog == "" || s.RejectedLog == "" {
		return errors.New("accepted and rejected log files must be set")
	}
	if s.EndpointEnv == "" {
		return errors.New("endpoint environment variable must be set")
	}
	return nil
}

// Path resolves name against Dir. Absolute names are returned unchanged.
func (s Settings) Path(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.Dir, name)
}

func overlay(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
