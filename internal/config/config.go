// Package config provides configuration management for the docs assistant.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"docs-assistant/internal/logger"
	"docs-assistant/internal/types"
)

const (
	// DefaultConfigFileName is the default configuration file name
	DefaultConfigFileName = "docs-assistant-config.json"
	// EnvOpenAIAPIKey is the environment variable name for OpenAI API key
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	// EnvOpenAIBaseURL is the environment variable name for OpenAI base URL
	EnvOpenAIBaseURL = "OPENAI_BASE_URL"
	// DefaultBaseURL is the default OpenAI API base URL
	DefaultBaseURL = "https://api.openai.com/v1"
	// DefaultModel is the default model to use
	DefaultModel = "gpt-4o"
	// DefaultRefereeTimeoutSeconds bounds the referee review call
	DefaultRefereeTimeoutSeconds = 20
)

// Manager manages application configuration
type Manager struct {
	configPath string
	config     *types.Config
}

// NewManager creates a new Manager with the specified config path.
// If configPath is empty, it uses the default path in user's home directory.
func NewManager(configPath string) (*Manager, error) {
	if configPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			logger.Error("failed to get user home directory", err)
			return nil, types.NewAppError(types.ErrConfig, "failed to get user home directory", err)
		}
		configPath = filepath.Join(homeDir, ".config", "docs-assistant", DefaultConfigFileName)
	}

	logger.Info("config manager initialized", logger.String("configPath", configPath))
	return &Manager{
		configPath: configPath,
		config:     defaultConfig(),
	}, nil
}

// defaultConfig returns a Config with default values
func defaultConfig() *types.Config {
	return &types.Config{
		OpenAIAPIKey:          "",
		OpenAIBaseURL:         DefaultBaseURL,
		OpenAIModel:           DefaultModel,
		RefereeEnabled:        false,
		RefereeTimeoutSeconds: DefaultRefereeTimeoutSeconds,
	}
}

// Load loads configuration from the config file.
// If the file doesn't exist, it uses default values.
// Environment variables take precedence for API key if config file value is empty.
func (m *Manager) Load() error {
	logger.Debug("loading configuration", logger.String("path", m.configPath))

	data, err := os.ReadFile(m.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("config file not found, using defaults", logger.String("path", m.configPath))
			m.config = defaultConfig()
		} else {
			logger.Error("failed to read config file", err, logger.String("path", m.configPath))
			return types.NewAppError(types.ErrConfig, "failed to read config file", err)
		}
	} else {
		config := &types.Config{}
		if err := json.Unmarshal(data, config); err != nil {
			// Invalid JSON, use defaults
			logger.Warn("invalid config file format, using defaults",
				logger.String("path", m.configPath), logger.Err(err))
			m.config = defaultConfig()
		} else {
			logger.Info("configuration loaded successfully",
				logger.String("path", m.configPath),
				logger.Int("apiKeyLength", len(config.OpenAIAPIKey)),
				logger.String("baseURL", config.OpenAIBaseURL),
				logger.String("model", config.OpenAIModel))
			m.config = config
		}
	}

	// Apply defaults for empty fields
	if m.config.OpenAIModel == "" {
		m.config.OpenAIModel = DefaultModel
	}
	if m.config.OpenAIBaseURL == "" {
		m.config.OpenAIBaseURL = DefaultBaseURL
	}
	if m.config.RefereeTimeoutSeconds == 0 {
		m.config.RefereeTimeoutSeconds = DefaultRefereeTimeoutSeconds
	}

	return nil
}

// Save saves the current configuration to the config file.
func (m *Manager) Save() error {
	logger.Debug("saving configuration", logger.String("path", m.configPath))

	dir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		logger.Error("failed to create config directory", err, logger.String("dir", dir))
		return types.NewAppError(types.ErrConfig, "failed to create config directory", err)
	}

	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		logger.Error("failed to marshal config", err)
		return types.NewAppError(types.ErrConfig, "failed to marshal config", err)
	}

	if err := os.WriteFile(m.configPath, data, 0600); err != nil {
		logger.Error("failed to write config file", err, logger.String("path", m.configPath))
		return types.NewAppError(types.ErrConfig, "failed to write config file", err)
	}

	logger.Info("configuration saved successfully", logger.String("path", m.configPath))
	return nil
}

// GetAPIKey returns the OpenAI API key.
// It first checks the config file value, then falls back to the environment variable.
func (m *Manager) GetAPIKey() string {
	if m.config != nil && m.config.OpenAIAPIKey != "" {
		return m.config.OpenAIAPIKey
	}
	return os.Getenv(EnvOpenAIAPIKey)
}

// SetAPIKey sets the OpenAI API key and saves the configuration.
func (m *Manager) SetAPIKey(key string) error {
	logger.Info("setting API key")
	if m.config == nil {
		m.config = defaultConfig()
	}
	m.config.OpenAIAPIKey = key
	return m.Save()
}

// GetBaseURL returns the OpenAI API base URL.
// It first checks the config file value, then falls back to the environment variable.
func (m *Manager) GetBaseURL() string {
	if m.config != nil && m.config.OpenAIBaseURL != "" && m.config.OpenAIBaseURL != DefaultBaseURL {
		return m.config.OpenAIBaseURL
	}

	envURL := os.Getenv(EnvOpenAIBaseURL)
	if envURL != "" {
		return envURL
	}

	return DefaultBaseURL
}

// GetModel returns the model to use.
func (m *Manager) GetModel() string {
	if m.config != nil && m.config.OpenAIModel != "" {
		return m.config.OpenAIModel
	}
	return DefaultModel
}

// GetRefereeModel returns the referee model, falling back to the main model.
func (m *Manager) GetRefereeModel() string {
	if m.config != nil && m.config.RefereeModel != "" {
		return m.config.RefereeModel
	}
	return m.GetModel()
}

// RefereeEnabled reports whether the second-model review pass is on.
func (m *Manager) RefereeEnabled() bool {
	return m.config != nil && m.config.RefereeEnabled
}

// GetRefereeTimeoutSeconds returns the referee call timeout.
func (m *Manager) GetRefereeTimeoutSeconds() int {
	if m.config != nil && m.config.RefereeTimeoutSeconds > 0 {
		return m.config.RefereeTimeoutSeconds
	}
	return DefaultRefereeTimeoutSeconds
}

// GetConfig returns the current configuration.
func (m *Manager) GetConfig() *types.Config {
	if m.config == nil {
		return defaultConfig()
	}
	return m.config
}

// SetConfig sets the entire configuration.
func (m *Manager) SetConfig(config *types.Config) {
	m.config = config
}

// GetConfigPath returns the path to the config file.
func (m *Manager) GetConfigPath() string {
	return m.configPath
}

// GetLastFileRef returns the most recently used file reference.
func (m *Manager) GetLastFileRef() string {
	if m.config != nil {
		return m.config.LastFileRef
	}
	return ""
}

// SetLastFileRef remembers the last file reference and saves the configuration.
func (m *Manager) SetLastFileRef(ref string) {
	if m.config == nil {
		m.config = defaultConfig()
	}
	m.config.LastFileRef = ref
	// Save silently, don't fail if it doesn't work
	_ = m.Save()
}
