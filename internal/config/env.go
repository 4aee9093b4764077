package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/AlexZinkM/wart-wallet/internal/crypto"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/term"
)

// Config contains all configuration parameters for the application.
// Note: Password is prompted at runtime and stored in memory - use GetPasswordBytes()
type Config struct {
	Port           string        `envconfig:"PORT" default:"8080"`
	WalletFilePath string        `envconfig:"WALLET_FILE_PATH" required:"true"`
	NodeURL        string        `envconfig:"NODE_URL" default:"https://node.wartscan.io"`
	NodeTimeout    time.Duration `envconfig:"NODE_TIMEOUT" default:"15s"`
	NodeRateLimit  int           `envconfig:"NODE_RATE_LIMIT" default:"10"`
	PayCooldown    int           `envconfig:"PAY_COOLDOWN_SECONDS" default:"0"`
	RateCoinID     string        `envconfig:"RATE_COIN_ID" default:"warthog"`
	RateCurrency   string        `envconfig:"RATE_CURRENCY" default:"usd"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`
	LogPretty      bool          `envconfig:"LOG_PRETTY" default:"false"`
	ScryptN        int           `envconfig:"SCRYPT_N" default:"262144"`
}

// cfg is the global configuration instance
var cfg *Config

// Init loads configuration from environment variables.
func Init() error {
	c, err := Load()
	if err != nil {
		return err
	}
	cfg = c
	return nil
}

// Load reads a Config from the environment without touching the global instance
func Load() (*Config, error) {
	c := &Config{}
	if err := envconfig.Process("", c); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if c.WalletFilePath == "" {
		return nil, errors.New("WALLET_FILE_PATH cannot be empty")
	}
	if c.ScryptN < 2 || c.ScryptN > crypto.MaxN || c.ScryptN&(c.ScryptN-1) != 0 {
		return nil, fmt.Errorf("SCRYPT_N must be a power of two in [2, %d], got %d", crypto.MaxN, c.ScryptN)
	}
	if c.PayCooldown < 0 {
		return nil, fmt.Errorf("PAY_COOLDOWN_SECONDS cannot be negative, got %d", c.PayCooldown)
	}
	return c, nil
}

// Get returns the global configuration instance.
// Panics if Init() was not called.
func Get() *Config {
	if cfg == nil {
		panic("config not initialized, call Init() first")
	}
	return cfg
}

// GetPort returns port from configuration
func GetPort() string {
	return Get().Port
}

// GetPayCooldown returns the minimum delay between two sends
func GetPayCooldown() time.Duration {
	return time.Duration(Get().PayCooldown) * time.Second
}

// GetWalletFilePath returns path to the encrypted wallet file
func GetWalletFilePath() string {
	return Get().WalletFilePath
}

// GetNodeURL returns the base URL of the Warthog node
func GetNodeURL() string {
	return Get().NodeURL
}

var passwordBytes []byte

// PromptForPassword prompts the user for the wallet password in the terminal.
// The password is read without echoing (hidden input) and stored in memory.
// Call this at startup before the server begins handling requests.
func PromptForPassword() error {
	raw, err := ReadPassword("Enter wallet password: ")
	if err != nil {
		return err
	}
	SetPassword(raw)
	clear(raw)
	return nil
}

// ReadPassword reads one hidden line from the terminal
func ReadPassword(prompt string) ([]byte, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, errors.New("stdin is not a terminal: run the app interactively to enter password")
	}
	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("password cannot be empty")
	}
	return raw, nil
}

// SetPassword stores a copy of raw as the in-memory password
func SetPassword(raw []byte) {
	clear(passwordBytes)
	passwordBytes = make([]byte, len(raw))
	copy(passwordBytes, raw)
}

// GetPasswordBytes returns the password stored in memory (from PromptForPassword).
// Returns an error if the password was not set.
// Caller must zero the returned slice after use for security.
func GetPasswordBytes() ([]byte, error) {
	if len(passwordBytes) == 0 {
		return nil, errors.New("password not set: call PromptForPassword at startup")
	}
	out := make([]byte, len(passwordBytes))
	copy(out, passwordBytes)
	return out, nil
}
