package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hobbyhub/hobbyhub/internal/client/clientconfig"
	"github.com/hobbyhub/hobbyhub/internal/client/session"
)

// DefaultConfigFile is the default name of the config file
const DefaultConfigFile = "config.yaml"

// DefaultSettingsFile is the default name of the application settings file,
// kept next to the config file.
const DefaultSettingsFile = "settings.toml"

// Config represents the configuration for the hobbyhub CLI. It holds the
// server connection and the persisted session state between invocations.
type Config struct {
	// Version of the configuration file format
	Version string `yaml:"version"`
	// ServerURL is the URL of the hobbyhub server
	ServerURL string `yaml:"server_url"`
	// Session is the persisted token pair and user identity
	Session session.State `yaml:"session"`
}

var config *Config

// GetDefaultConfigPath returns the default path for the config file
// It uses the OS-specific config directory (e.g., ~/.config/hobbyhub on Linux)
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "hobbyhub", DefaultConfigFile), nil
}

// GetDefaultSettingsPath returns the default path of the settings file.
func GetDefaultSettingsPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "hobbyhub", DefaultSettingsFile), nil
}

// LoadConfig loads the configuration from the specified file
// If no file is specified, it uses the default config location
func LoadConfig(file string) error {
	if file == "" {
		var err error
		file, err = GetDefaultConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get default config path: %w", err)
		}
	}

	yamlStr, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("unable to read config file: %w", err)
	}

	var c Config
	if err = yaml.Unmarshal(yamlStr, &c); err != nil {
		return fmt.Errorf("unable to parse config file: %w", err)
	}

	if c.ServerURL == "" {
		return errors.New("server_url is required")
	}
	c.ServerURL = MorphServer(c.ServerURL)

	config = &c
	return nil
}

// GetConfig returns the current configuration
func GetConfig() *Config {
	return config
}

// WriteConfig writes the current configuration to the specified file
func (cfg *Config) WriteConfig(file string) error {
	if file == "" {
		return errors.New("file path cannot be empty")
	}

	err := os.MkdirAll(filepath.Dir(file), os.ModePerm)
	if err != nil {
		return fmt.Errorf("unable to create config directory: %w", err)
	}

	yamlStr, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("unable to generate configuration: %w", err)
	}

	err = os.WriteFile(file, yamlStr, os.FileMode(0600))
	if err != nil {
		return fmt.Errorf("unable to write config file: %w", err)
	}

	return nil
}

// MorphServer ensures the server URL is properly formatted
// Adds https:// prefix if missing and removes trailing slashes
func MorphServer(server string) string {
	if server == "" {
		return server
	}

	server = strings.TrimRight(server, "/")

	if !strings.HasPrefix(server, "http://") && !strings.HasPrefix(server, "https://") {
		server = "https://" + server
	}

	return server
}

// GetServerURL returns the properly formatted server URL
func (cfg *Config) GetServerURL() string {
	return MorphServer(cfg.ServerURL)
}

// loadSettings loads the application settings file, falling back to
// defaults when it does not exist.
func loadSettings() (clientconfig.Settings, error) {
	path, err := GetDefaultSettingsPath()
	if err != nil {
		return clientconfig.Default(), nil
	}
	return clientconfig.Load(path)
}

// newSessionStore builds a session store from the loaded config, restoring
// any persisted token state.
func newSessionStore() (*session.Store, error) {
	cfg := GetConfig()
	if cfg == nil {
		return nil, errors.New("no configuration loaded")
	}
	store := session.New(cfg.GetServerURL())
	store.Restore(cfg.Session)
	return store, nil
}

// saveSession writes the session state back into the config file. Tokens can
// change during any command through the transparent refresh, so commands that
// carry auth call this before returning.
func saveSession(store *session.Store) error {
	cfg := GetConfig()
	if cfg == nil {
		return errors.New("no configuration loaded")
	}
	cfg.Session = store.Snapshot()
	if err := cfg.WriteConfig(configFile); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	return nil
}

// persistSession writes the session back on command exit, success or
// failure. A failed refresh downgrades the session mid-command; if the
// cleared state were not saved, the next invocation would restore the stale
// tokens and repeat the doomed refresh. Deferred with the command's named
// return error.
func persistSession(store *session.Store, retErr *error) {
	if err := saveSession(store); err != nil && *retErr == nil {
		*retErr = err
	}
}

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long:  `Manage CLI configuration settings like the server connection.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		serverFlag, _ := cmd.Flags().GetString("server")
		if serverFlag != "" {
			return setServerConfig(serverFlag)
		}

		cmd.Help()
		return nil
	},
}

// configClearCmd represents the config clear command
var configClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the stored session",
	Long: `Clear the stored session. This removes the access token, the refresh
token, and the user identity from the config file, returning the CLI to the
public (unauthenticated) state.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := LoadConfig(configFile); err != nil {
			if os.IsNotExist(err) {
				fmt.Println("hobbyhub config file not found. Configure hobbyhub with \"hobbyhub config --server <url>\" first.")
				os.Exit(1)
			}
			fmt.Printf("Unable to load config file: %s\n", err.Error())
			os.Exit(1)
		}
		cfg := GetConfig()
		cfg.Session = session.State{}

		if err := cfg.WriteConfig(configFile); err != nil {
			return fmt.Errorf("failed to save config: %v", err)
		}

		if jsonOutput {
			printJSON(map[string]int{"result": 1})
		} else {
			fmt.Println("Session cleared. Log in again with \"hobbyhub login\"")
		}

		return nil
	},
}

func init() {
	configCmd.Flags().String("server", "", "Set the server URL (e.g., https://api.hobbyhub.io)")

	configCmd.AddCommand(configClearCmd)
	rootCmd.AddCommand(configCmd)
}

// setServerConfig sets the server configuration in the config file
func setServerConfig(server string) error {
	configPath := configFile
	if configPath == "" {
		var err error
		configPath, err = GetDefaultConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get default config path: %w", err)
		}
	}

	cfg := &Config{
		Version:   "0.1.0",
		ServerURL: MorphServer(server),
	}

	if err := cfg.WriteConfig(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if jsonOutput {
		printJSON(map[string]string{
			"server":      cfg.ServerURL,
			"config_file": configPath,
		})
	} else {
		fmt.Printf("Server configured: %s\n", cfg.ServerURL)
		fmt.Printf("Config file: %s\n", configPath)
	}

	return nil
}
