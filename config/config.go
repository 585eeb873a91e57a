package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	apperr "github.com/diatide/diatide/errors"
)

const DEFAULT_FILE = ".diatide.cfg"

// Config holds the Tidepool account and device settings.
type Config struct {
	Email         string `yaml:"email"`
	Password      string `yaml:"password"`
	CGMDeviceID   string `yaml:"cgm_device_id"`
	MeterDeviceID string `yaml:"bg_meter_device_id"`
	DateFormat    string `yaml:"date_format"`
	APIURL        string `yaml:"api_url,omitempty"`
	UploadURL     string `yaml:"upload_url,omitempty"`
}

// Defaults returns the placeholder configuration written to a new configuration file.
func Defaults() Config {
	return Config{
		Email:         "example@example.com",
		Password:      "your_password_here",
		CGMDeviceID:   "yourcgmdevicename",
		MeterDeviceID: "yourbgmetername",
		DateFormat:    "%d/%m/%Y %H:%M",
	}
}

// DefaultPath returns ~/.diatide.cfg, or .diatide.cfg in the current directory if the home
// directory cannot be determined.
func DefaultPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, DEFAULT_FILE)
	}

	return DEFAULT_FILE
}

// Load reads the configuration file and applies any DIATIDE_ environment variable overrides.
// If the file does not exist a template is created and a configuration error is returned.
func Load(path string) (*Config, error) {
	bytes, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := Save(path, Defaults()); err != nil {
			return nil, err
		}

		return nil, apperr.NewConfigError("configuration file %v not found - created a template, please edit it before continuing", path).
			WithContext("file", path)
	} else if err != nil {
		return nil, apperr.Wrap(err, apperr.ErrorTypeConfig, "error reading configuration file")
	}

	c := Config{}
	if err := yaml.Unmarshal(bytes, &c); err != nil {
		return nil, apperr.Wrap(err, apperr.ErrorTypeConfig, "invalid configuration file").WithContext("file", path)
	}

	c.Email = getEnv("DIATIDE_EMAIL", c.Email)
	c.Password = getEnv("DIATIDE_PASSWORD", c.Password)
	c.CGMDeviceID = getEnv("DIATIDE_CGM_DEVICE_ID", c.CGMDeviceID)
	c.MeterDeviceID = getEnv("DIATIDE_BG_METER_DEVICE_ID", c.MeterDeviceID)
	c.DateFormat = getEnv("DIATIDE_DATE_FORMAT", c.DateFormat)
	c.APIURL = getEnv("DIATIDE_API_URL", c.APIURL)
	c.UploadURL = getEnv("DIATIDE_UPLOAD_URL", c.UploadURL)

	if strings.TrimSpace(c.DateFormat) == "" {
		c.DateFormat = Defaults().DateFormat
	}

	if err := c.Validate(); err != nil {
		return nil, err.WithContext("file", path)
	}

	return &c, nil
}

// Save writes the configuration to a YAML file, creating the parent directory if necessary.
func Save(path string, c Config) error {
	bytes, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}

	return os.WriteFile(path, bytes, 0600)
}

// Validate checks that the account and device settings are present and have been edited.
func (c Config) Validate() *apperr.AppError {
	if c.HasRemnantsOf(Defaults()) {
		return apperr.NewConfigError("the default configuration has not been fully edited")
	}

	switch {
	case strings.TrimSpace(c.Email) == "":
		return apperr.NewConfigError("missing 'email'")

	case strings.TrimSpace(c.Password) == "":
		return apperr.NewConfigError("missing 'password'")

	case strings.TrimSpace(c.CGMDeviceID) == "":
		return apperr.NewConfigError("missing 'cgm_device_id'")

	case strings.TrimSpace(c.MeterDeviceID) == "":
		return apperr.NewConfigError("missing 'bg_meter_device_id'")
	}

	return nil
}

// HasRemnantsOf returns true if any of the account or device settings is unchanged from other.
// The date format is not compared since the default is a valid setting.
func (c Config) HasRemnantsOf(other Config) bool {
	return c.Email == other.Email ||
		c.Password == other.Password ||
		c.CGMDeviceID == other.CGMDeviceID ||
		c.MeterDeviceID == other.MeterDeviceID
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}
