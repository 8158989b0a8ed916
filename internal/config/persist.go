package config

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/viper"
)

// ConfigFilename is the name of the config file
const ConfigFilename = "config"

// ConfigType is the type of config file (yaml, json, toml)
const ConfigType = "yaml"

// InitViper initializes Viper with proper search paths and defaults
// Priority (highest to lowest):
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (SLURMJOBS_*)
// 3. User config file (~/.config/slurmjobs/config.yaml)
// 4. System config file (/etc/slurmjobs/config.yaml)
// 5. Defaults
func InitViper() error {
	viper.SetConfigName(ConfigFilename)
	viper.SetConfigType(ConfigType)

	// Set config search paths (order matters)
	// User config (highest priority)
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		viper.AddConfigPath(filepath.Join(userConfigDir, "slurmjobs"))
	}

	// Home directory fallback
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".slurmjobs"))
	}

	// System-wide config (lower priority)
	viper.AddConfigPath("/etc/slurmjobs")

	// Current directory (for development)
	viper.AddConfigPath(".")

	// Environment variables
	viper.SetEnvPrefix("SLURMJOBS")
	viper.AutomaticEnv()

	// Set defaults (lowest priority)
	setDefaults()

	// Read config file (non-fatal if not found)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; will use defaults
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// setDefaults sets default values for all config keys
func setDefaults() {
	viper.SetDefault("sbatch_bin", "sbatch")
	viper.SetDefault("submit_job", true)

	viper.SetDefault("job.partition", "shared")
	viper.SetDefault("job.memory", "10G")
	viper.SetDefault("job.cores", 1)
	viper.SetDefault("job.time", "1-00:00:00")
	viper.SetDefault("job.email", "ALL")
	viper.SetDefault("job.log_dir", "logs")
}

// GetUserConfigPath returns the path to the user config file
func GetUserConfigPath() (string, error) {
	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".slurmjobs", ConfigFilename+"."+ConfigType), nil
	}

	return filepath.Join(userConfigDir, "slurmjobs", ConfigFilename+"."+ConfigType), nil
}

// SaveConfig saves current Viper config to user config file
func SaveConfig() error {
	configPath, err := GetUserConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	// Create directory if it doesn't exist
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Write config file
	if err := viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ValidateBinary checks if a binary exists and is executable
func ValidateBinary(binPath string) bool {
	if binPath == "" {
		return false
	}

	// If it's a full path, check directly
	if filepath.IsAbs(binPath) {
		info, err := os.Stat(binPath)
		if err != nil {
			return false
		}
		// Check if it's executable (unix-style check)
		return info.Mode()&0111 != 0
	}

	// Otherwise, try to find it in PATH
	_, err := exec.LookPath(binPath)
	return err == nil
}

// LoadFromViper loads config from Viper into Global struct
func LoadFromViper() {
	if bin := viper.GetString("sbatch_bin"); bin != "" {
		Global.SbatchBin = bin
	}

	if submitJob := viper.GetBool("submit_job"); !submitJob {
		Global.SubmitJob = submitJob
	}

	if partition := viper.GetString("job.partition"); partition != "" {
		Global.DefaultPartition = partition
	}

	if memory := viper.GetString("job.memory"); memory != "" {
		Global.DefaultMemory = memory
	}

	if cores := viper.GetInt("job.cores"); cores > 0 {
		Global.DefaultCores = cores
	}

	if timeLimit := viper.GetString("job.time"); timeLimit != "" {
		Global.DefaultTime = timeLimit
	}

	if email := viper.GetString("job.email"); email != "" {
		Global.DefaultEmail = email
	}

	if logDir := viper.GetString("job.log_dir"); logDir != "" {
		Global.LogDir = logDir
	}
}
