package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/mosaicnetworks/waybill/src/waybill"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

//NewRunCmd returns the command that starts a waybill node
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Run node",
		PreRunE: loadRunConfig,
		RunE:    runWaybill,
	}
	AddRunFlags(cmd)
	return cmd
}

/*******************************************************************************
* RUN
*******************************************************************************/

func runWaybill(cmd *cobra.Command, args []string) error {
	engine := waybill.NewWaybill(&_config.Waybill)

	if err := engine.Init(); err != nil {
		_config.Waybill.Logger().Error("Cannot initialize engine:", err)
		return err
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		_config.Waybill.Logger().Info("Shutting down")
		engine.Close()
		os.Exit(0)
	}()

	engine.Run()

	return engine.Close()
}

/*******************************************************************************
* CONFIG
*******************************************************************************/

//AddRunFlags adds flags to the Run command
func AddRunFlags(cmd *cobra.Command) {
	addCommonFlags(cmd)

	// Service
	cmd.Flags().StringP("service-listen", "s", _config.Waybill.ServiceAddr, "Listen IP:Port for HTTP service")
	cmd.Flags().Int64("max-upload", _config.Waybill.MaxUploadSize, "Largest accepted document in bytes")
	cmd.Flags().Duration("fetch-timeout", _config.Waybill.FetchTimeout, "Timeout of each per-node fetch in network-wide views")

	// Ledger
	cmd.Flags().String("ledger", _config.Waybill.Ledger, "Ledger backend: inmem, socket")
	cmd.Flags().StringP("ledger-addr", "l", _config.Waybill.LedgerAddr, "IP:Port of the socket ledger")
	cmd.Flags().DurationP("ledger-timeout", "t", _config.Waybill.LedgerTimeout, "Timeout of socket ledger calls")
	cmd.Flags().StringSlice("unsupported", _config.Waybill.Unsupported, "Transactions the inmem ledger refuses")

	// Store
	cmd.Flags().Bool("store", _config.Waybill.Store, "Use badgerDB instead of in-mem DB for the inmem ledger")
	cmd.Flags().String("db", _config.Waybill.DatabaseDir, "Database directory")

	// Content
	cmd.Flags().String("content", _config.Waybill.Content, "Content store: inmem, local, ipfs")
	cmd.Flags().String("content-dir", _config.Waybill.ContentDir, "Root directory of the local content store")
	cmd.Flags().String("ipfs-bin", _config.Waybill.IPFSBin, "ipfs binary used by the ipfs content store")
}

func loadRunConfig(cmd *cobra.Command, args []string) error {
	if err := bindFlagsLoadViper(cmd); err != nil {
		return err
	}

	logFields := logrus.Fields{
		"waybill.DataDir":       _config.Waybill.DataDir,
		"waybill.LogLevel":      _config.Waybill.LogLevel,
		"waybill.ServiceAddr":   _config.Waybill.ServiceAddr,
		"waybill.MaxUploadSize": _config.Waybill.MaxUploadSize,
		"waybill.FetchTimeout":  _config.Waybill.FetchTimeout,
		"waybill.Ledger":        _config.Waybill.Ledger,
		"waybill.Content":       _config.Waybill.Content,
	}

	switch _config.Waybill.Ledger {
	case "socket":
		logFields["waybill.LedgerAddr"] = _config.Waybill.LedgerAddr
		logFields["waybill.LedgerTimeout"] = _config.Waybill.LedgerTimeout
	default:
		logFields["waybill.Store"] = _config.Waybill.Store
		logFields["waybill.Unsupported"] = _config.Waybill.Unsupported
		if _config.Waybill.Store {
			logFields["waybill.DatabaseDir"] = _config.Waybill.DatabaseDir
		}
	}

	if _config.Waybill.Content == "local" {
		logFields["waybill.ContentDir"] = _config.Waybill.ContentDir
	}

	_config.Waybill.Logger().WithFields(logFields).Debug("RUN")

	return nil
}
