package commands

import (
	"os"

	"github.com/mosaicnetworks/waybill/src/config"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

//CLIConfig contains configuration for the waybill commands
type CLIConfig struct {
	Waybill  config.Config `mapstructure:",squash"`
	LogFiles bool          `mapstructure:"log-files"`
}

//NewDefaultCLIConfig creates a CLIConfig with default values
func NewDefaultCLIConfig() *CLIConfig {
	return &CLIConfig{
		Waybill:  *config.NewDefaultConfig(),
		LogFiles: false,
	}
}

// Bind all flags and read the config into viper
func bindFlagsLoadViper(cmd *cobra.Command) error {
	// Register flags with viper. Include flags from this command and all other
	// persistent flags from the parent
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// first unmarshal to read from CLI flags
	if err := viper.Unmarshal(_config); err != nil {
		return err
	}

	// look for config file in [datadir]/waybill.toml (.json, .yaml also work)
	viper.SetConfigName("waybill")
	viper.AddConfigPath(_config.Waybill.DataDir)

	if err := viper.ReadInConfig(); err == nil {
		_config.Waybill.Logger().Debugf("Using config file: %s", viper.ConfigFileUsed())
	} else if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		_config.Waybill.Logger().Debugf("No config file found in: %s", _config.Waybill.DataDir)
	} else {
		return err
	}

	// second unmarshal to read from config file
	if err := viper.Unmarshal(_config); err != nil {
		return err
	}

	// If --datadir was explicitely set, but not --db or --content-dir, this
	// moves them inside the new datadir
	_config.Waybill.SetDataDir(_config.Waybill.DataDir)

	_config.Waybill.SetLogger(newLogger())

	return nil
}

// newLogger creates the logger of the process. With --log-files, info and
// debug entries are also appended to waybill_info.log and waybill_debug.log
// in the current directory.
func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.Level = config.LogLevel(_config.Waybill.LogLevel)
	logger.Formatter = new(prefixed.TextFormatter)

	if !_config.LogFiles {
		return logger
	}

	pathMap := lfshook.PathMap{}

	_, err := os.OpenFile("waybill_info.log", os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		logger.Info("Failed to open waybill_info.log file, using default stderr")
	} else {
		pathMap[logrus.InfoLevel] = "waybill_info.log"
		pathMap[logrus.WarnLevel] = "waybill_info.log"
		pathMap[logrus.ErrorLevel] = "waybill_info.log"
	}

	_, err = os.OpenFile("waybill_debug.log", os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		logger.Info("Failed to open waybill_debug.log file, using default stderr")
	} else {
		pathMap[logrus.DebugLevel] = "waybill_debug.log"
	}

	logger.Hooks.Add(lfshook.NewHook(
		pathMap,
		&logrus.TextFormatter{},
	))

	return logger
}

func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().String("datadir", _config.Waybill.DataDir, "Top-level directory for configuration and data")
	cmd.Flags().String("log", _config.Waybill.LogLevel, "debug, info, warn, error, fatal, panic")
	cmd.Flags().Bool("log-files", _config.LogFiles, "Also write logs to waybill_info.log and waybill_debug.log")
}
