package config

import (
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/mosaicnetworks/waybill/src/common"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// Default filenames.
const (
	// DefaultBadgerFile is the default name of the folder containing the Badger
	// database of the dev ledger
	DefaultBadgerFile = "badger_db"

	// DefaultContentDir is the default name of the folder of the local content
	// store
	DefaultContentDir = "content"
)

// Ledger backends.
const (
	// LedgerInmem runs the document contract in-process.
	LedgerInmem = "inmem"
	// LedgerSocket connects to a ledger served over JSON-RPC.
	LedgerSocket = "socket"
)

// Content store backends.
const (
	ContentInmem = "inmem"
	ContentLocal = "local"
	ContentIPFS  = "ipfs"
)

// Default configuration values.
const (
	DefaultLogLevel      = "debug"
	DefaultServiceAddr   = "127.0.0.1:8081"
	DefaultMaxUploadSize = 25 << 20
	DefaultLedger        = LedgerInmem
	DefaultLedgerAddr    = "127.0.0.1:1338"
	DefaultLedgerTimeout = 1000 * time.Millisecond
	DefaultStore         = false
	DefaultContent       = ContentInmem
	DefaultIPFSBin       = "ipfs"
	DefaultFetchTimeout  = 5000 * time.Millisecond
)

// Config contains all the configuration properties of a waybill node.
type Config struct {
	// DataDir is the top-level directory containing the configuration file,
	// the node list and data
	DataDir string `mapstructure:"datadir"`

	// LogLevel determines the chattiness of the log output.
	LogLevel string `mapstructure:"log"`

	// ServiceAddr is the address:port of the HTTP API.
	ServiceAddr string `mapstructure:"service-listen"`

	// MaxUploadSize is the largest accepted document, in bytes.
	MaxUploadSize int64 `mapstructure:"max-upload"`

	// Ledger selects the ledger backend: "inmem" runs the document contract
	// in-process, "socket" connects to LedgerAddr.
	Ledger string `mapstructure:"ledger"`

	// LedgerAddr is the address:port of the ledger JSON-RPC server. It is
	// where "waybill ledger" listens and where "socket" ledgers connect.
	LedgerAddr string `mapstructure:"ledger-addr"`

	// LedgerTimeout bounds every call to a socket ledger.
	LedgerTimeout time.Duration `mapstructure:"ledger-timeout"`

	// Unsupported lists transactions the in-process ledger refuses, to
	// emulate older contract deployments.
	Unsupported []string `mapstructure:"unsupported"`

	// Store activates persistant storage of the in-process ledger.
	Store bool `mapstructure:"store"`

	// DatabaseDir is the directory containing database files.
	DatabaseDir string `mapstructure:"db"`

	// Content selects the content store: "inmem", "local" or "ipfs".
	Content string `mapstructure:"content"`

	// ContentDir is the root of the "local" content store.
	ContentDir string `mapstructure:"content-dir"`

	// IPFSBin is the Kubo binary used by the "ipfs" content store.
	IPFSBin string `mapstructure:"ipfs-bin"`

	// FetchTimeout bounds each per-node fetch of network-wide views.
	FetchTimeout time.Duration `mapstructure:"fetch-timeout"`

	logger *logrus.Logger
}

// NewDefaultConfig returns a config object with default values.
func NewDefaultConfig() *Config {
	config := &Config{
		DataDir:       DefaultDataDir(),
		LogLevel:      DefaultLogLevel,
		ServiceAddr:   DefaultServiceAddr,
		MaxUploadSize: DefaultMaxUploadSize,
		Ledger:        DefaultLedger,
		LedgerAddr:    DefaultLedgerAddr,
		LedgerTimeout: DefaultLedgerTimeout,
		Unsupported:   []string{},
		Store:         DefaultStore,
		DatabaseDir:   DefaultDatabaseDir(),
		Content:       DefaultContent,
		ContentDir:    DefaultContentPath(),
		IPFSBin:       DefaultIPFSBin,
		FetchTimeout:  DefaultFetchTimeout,
	}

	return config
}

// NewTestConfig returns a config object with default values and a special
// logger for debugging tests.
func NewTestConfig(t testing.TB, level logrus.Level) *Config {
	config := NewDefaultConfig()
	config.logger = common.NewTestLogger(t, level)
	return config
}

// SetDataDir sets the top-level directory, and moves the database and content
// directories along with it if they are still at their defaults.
func (c *Config) SetDataDir(dataDir string) {
	c.DataDir = dataDir
	if c.DatabaseDir == DefaultDatabaseDir() {
		c.DatabaseDir = filepath.Join(dataDir, DefaultBadgerFile)
	}
	if c.ContentDir == DefaultContentPath() {
		c.ContentDir = filepath.Join(dataDir, DefaultContentDir)
	}
}

// SetLogger overrides the logger.
func (c *Config) SetLogger(logger *logrus.Logger) {
	c.logger = logger
}

// Logger returns a formatted logrus Entry, with prefix set to "waybill".
func (c *Config) Logger() *logrus.Entry {
	if c.logger == nil {
		c.logger = logrus.New()
		c.logger.Level = LogLevel(c.LogLevel)
		c.logger.Formatter = new(prefixed.TextFormatter)
	}
	return c.logger.WithField("prefix", "waybill")
}

// DefaultDatabaseDir returns the default path for the badger database files.
func DefaultDatabaseDir() string {
	return filepath.Join(DefaultDataDir(), DefaultBadgerFile)
}

// DefaultContentPath returns the default root of the local content store.
func DefaultContentPath() string {
	return filepath.Join(DefaultDataDir(), DefaultContentDir)
}

// DefaultDataDir return the default directory name for top-level waybill
// config based on the underlying OS, attempting to respect conventions.
func DefaultDataDir() string {
	home := HomeDir()
	if home != "" {
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, ".Waybill")
		} else if runtime.GOOS == "windows" {
			return filepath.Join(home, "AppData", "Roaming", "Waybill")
		} else {
			return filepath.Join(home, ".waybill")
		}
	}
	return ""
}

// HomeDir returns the user's home directory.
func HomeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

// LogLevel parses a string into a Logrus log level.
func LogLevel(l string) logrus.Level {
	switch l {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.DebugLevel
	}
}
