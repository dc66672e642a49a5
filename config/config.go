package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gostudio/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	Studio   StudioConfig   `json:"studio"`
	Telegram TelegramConfig `json:"telegram"`
	Notify   NotifyConfig   `json:"notify"`
	API      APIConfig      `json:"api"`
	Debug    bool           `json:"debug"`
}

type StudioConfig struct {
	BaseURL   string `json:"base_url"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	TokenFile string `json:"token_file"`
}

type TelegramConfig struct {
	BotToken string `json:"bot_token"`
}

type NotifyConfig struct {
	// NoticeList entries use the form "platform:channelId"
	NoticeList []string `json:"notice_list"`
}

type APIConfig struct {
	Enabled bool   `json:"enabled"`
	Port    string `json:"port"`
}

// GetConfig loads configuration and handles errors internally
func GetConfig() *Config {
	log := logger.GetLogger()

	workDir, err := os.Getwd()
	if err != nil {
		log.Error("Failed to get working directory", map[string]interface{}{
			"error": err.Error(),
		})
		os.Exit(1)
	}

	configPath := filepath.Join(workDir, "config", "config.json")
	config, err := loadConfig(configPath)
	if err != nil {
		log.Error("Failed to load config", map[string]interface{}{
			"error": err.Error(),
			"path":  configPath,
		})
		os.Exit(1)
	}

	log.Info("Successfully loaded config", map[string]interface{}{
		"path":        configPath,
		"base_url":    config.Studio.BaseURL,
		"notice_list": config.Notify.NoticeList,
		"api_enabled": config.API.Enabled,
	})

	return config
}

// loadConfig reads the JSON config file, applies .env overrides and
// fills defaults.
func loadConfig(path string) (*Config, error) {
	// .env is optional; values there override the JSON file so secrets
	// can stay out of config.json
	godotenv.Load()

	configFile, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(configFile, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnvOverrides(&config)
	applyDefaults(&config)

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func applyEnvOverrides(config *Config) {
	if v := os.Getenv("GOSTUDIO_EMAIL"); v != "" {
		config.Studio.Email = v
	}
	if v := os.Getenv("GOSTUDIO_PASSWORD"); v != "" {
		config.Studio.Password = v
	}
	if v := os.Getenv("GOSTUDIO_BOT_TOKEN"); v != "" {
		config.Telegram.BotToken = v
	}
}

func applyDefaults(config *Config) {
	if config.Studio.TokenFile == "" {
		config.Studio.TokenFile = filepath.Join("config", "token.txt")
	}
	if config.API.Port == "" {
		config.API.Port = "8080"
	}
}

func (c *Config) validate() error {
	if c.Studio.BaseURL == "" {
		return fmt.Errorf("studio base_url is required")
	}
	if c.Studio.Email == "" || c.Studio.Password == "" {
		return fmt.Errorf("studio email and password are required")
	}
	return nil
}
