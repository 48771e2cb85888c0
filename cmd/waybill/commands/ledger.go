package commands

import (
	"github.com/mosaicnetworks/waybill/src/ledger"
	"github.com/mosaicnetworks/waybill/src/waybill"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

//NewLedgerCmd returns the command that serves the dev ledger over JSON-RPC
func NewLedgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Serve the document contract over a JSON-RPC socket",
		Long: `Serve the document contract over a JSON-RPC socket.

Nodes started with --ledger=socket connect to it, so that several nodes share
the same document state.`,
		PreRunE: loadLedgerConfig,
		RunE:    runLedger,
	}
	AddLedgerFlags(cmd)
	return cmd
}

func runLedger(cmd *cobra.Command, args []string) error {
	logger := _config.Waybill.Logger()

	reg, err := waybill.LoadRegistry(_config.Waybill.DataDir, logger)
	if err != nil {
		return err
	}

	local, err := waybill.NewLocalLedger(&_config.Waybill, reg)
	if err != nil {
		logger.Error("Cannot create ledger:", err)
		return err
	}
	defer local.Close()

	server, err := ledger.NewSocketServer(
		_config.Waybill.LedgerAddr,
		local,
		_config.Waybill.LedgerTimeout,
		logger.WithField("component", "ledger-server"),
	)
	if err != nil {
		logger.Error("Cannot start ledger server:", err)
		return err
	}

	return server.Serve()
}

//AddLedgerFlags adds flags to the Ledger command
func AddLedgerFlags(cmd *cobra.Command) {
	addCommonFlags(cmd)

	cmd.Flags().StringP("ledger-addr", "l", _config.Waybill.LedgerAddr, "Listen IP:Port of the ledger")
	cmd.Flags().DurationP("ledger-timeout", "t", _config.Waybill.LedgerTimeout, "Timeout of ledger calls")
	cmd.Flags().StringSlice("unsupported", _config.Waybill.Unsupported, "Transactions the ledger refuses")
	cmd.Flags().Bool("store", _config.Waybill.Store, "Use badgerDB instead of in-mem DB")
	cmd.Flags().String("db", _config.Waybill.DatabaseDir, "Database directory")
}

func loadLedgerConfig(cmd *cobra.Command, args []string) error {
	if err := bindFlagsLoadViper(cmd); err != nil {
		return err
	}

	logFields := logrus.Fields{
		"waybill.DataDir":       _config.Waybill.DataDir,
		"waybill.LedgerAddr":    _config.Waybill.LedgerAddr,
		"waybill.LedgerTimeout": _config.Waybill.LedgerTimeout,
		"waybill.Unsupported":   _config.Waybill.Unsupported,
		"waybill.Store":         _config.Waybill.Store,
	}

	if _config.Waybill.Store {
		logFields["waybill.DatabaseDir"] = _config.Waybill.DatabaseDir
	}

	_config.Waybill.Logger().WithFields(logFields).Debug("LEDGER")

	return nil
}
