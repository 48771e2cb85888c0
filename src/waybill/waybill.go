// Package waybill wires the components of a node together: registry, ledger,
// content store, workflow engine, message feed, aggregation and HTTP service.
package waybill

import (
	"fmt"
	"io"
	"os"

	"github.com/mosaicnetworks/waybill/src/access"
	"github.com/mosaicnetworks/waybill/src/aggregate"
	"github.com/mosaicnetworks/waybill/src/config"
	"github.com/mosaicnetworks/waybill/src/content"
	"github.com/mosaicnetworks/waybill/src/ledger"
	"github.com/mosaicnetworks/waybill/src/messages"
	"github.com/mosaicnetworks/waybill/src/registry"
	"github.com/mosaicnetworks/waybill/src/service"
	"github.com/mosaicnetworks/waybill/src/workflow"
	"github.com/sirupsen/logrus"
)

// Waybill is a node of the document network.
type Waybill struct {
	Config    *config.Config
	Registry  *registry.Registry
	Ledger    ledger.Port
	Content   content.Store
	Engine    *workflow.Engine
	Feed      *messages.Feed
	Collector *aggregate.Collector
	Service   *service.Service

	closers []io.Closer
	logger  *logrus.Entry
}

// NewWaybill is a factory method to produce a Waybill instance.
func NewWaybill(c *config.Config) *Waybill {
	return &Waybill{
		Config: c,
		logger: c.Logger(),
	}
}

// Init initialises the node based on its configuration.
func (w *Waybill) Init() error {
	w.logger.Debug("Init Waybill")

	if err := w.initRegistry(); err != nil {
		w.logger.WithError(err).Error("waybill.go:Init() initRegistry")
		return err
	}

	if err := w.initLedger(); err != nil {
		w.logger.WithError(err).Error("waybill.go:Init() initLedger")
		return err
	}

	if err := w.initContent(); err != nil {
		w.logger.WithError(err).Error("waybill.go:Init() initContent")
		return err
	}

	w.initEngines()
	w.initService()

	return nil
}

// Run starts the HTTP service. This is a blocking call.
func (w *Waybill) Run() {
	if w.Service == nil {
		w.logger.Warn("No service address, nothing to run")
		return
	}
	w.Service.Serve()
}

// Close releases the ledger connection or database.
func (w *Waybill) Close() error {
	var firstErr error
	for _, c := range w.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (w *Waybill) initRegistry() error {
	if w.Registry != nil {
		return nil
	}

	reg, err := LoadRegistry(w.Config.DataDir, w.logger)
	if err != nil {
		return err
	}

	w.Registry = reg

	return nil
}

func (w *Waybill) initLedger() error {
	if w.Ledger != nil {
		return nil
	}

	switch w.Config.Ledger {
	case config.LedgerInmem:
		l, err := NewLocalLedger(w.Config, w.Registry)
		if err != nil {
			return err
		}
		w.Ledger = l
		w.closers = append(w.closers, l)
	case config.LedgerSocket:
		c := ledger.NewSocketClient(w.Config.LedgerAddr, w.Config.LedgerTimeout)
		w.Ledger = c
		w.closers = append(w.closers, c)

		w.logger.WithField("addr", w.Config.LedgerAddr).Debug("Using socket ledger")
	default:
		return fmt.Errorf("unknown ledger %q", w.Config.Ledger)
	}

	return nil
}

func (w *Waybill) initContent() error {
	if w.Content != nil {
		return nil
	}

	switch w.Config.Content {
	case config.ContentInmem:
		w.Content = content.NewInmemStore()
	case config.ContentLocal:
		s, err := content.NewLocalStore(w.Config.ContentDir)
		if err != nil {
			return err
		}
		w.Content = s
	case config.ContentIPFS:
		w.Content = content.NewIPFSStore(content.IPFSOptions{Bin: w.Config.IPFSBin})
	default:
		return fmt.Errorf("unknown content store %q", w.Config.Content)
	}

	w.logger.WithField("content", w.Config.Content).Debug("Content store")

	return nil
}

func (w *Waybill) initEngines() {
	w.Engine = workflow.NewEngine(
		w.Registry,
		access.NewValidator(w.Registry),
		w.Ledger,
		w.Content,
		w.Config.MaxUploadSize,
		w.logger.WithField("component", "workflow"),
	)

	w.Feed = messages.NewFeed(w.Engine, w.Ledger, w.logger.WithField("component", "messages"))

	w.Collector = aggregate.NewCollector(
		w.Registry,
		w.Engine,
		w.Config.FetchTimeout,
		w.logger.WithField("component", "aggregate"),
	)
}

func (w *Waybill) initService() {
	if w.Config.ServiceAddr == "" {
		return
	}

	w.Service = service.NewService(
		w.Config.ServiceAddr,
		w.Engine,
		w.Feed,
		w.Collector,
		w.logger.WithField("component", "service"),
	)
}

// LoadRegistry reads nodes.json from dataDir, or falls back to the reference
// corridor when the file does not exist.
func LoadRegistry(dataDir string, logger *logrus.Entry) (*registry.Registry, error) {
	store := registry.NewJSONRegistry(dataDir)

	reg, err := store.Registry()
	if err == nil {
		logger.WithFields(logrus.Fields{
			"path":  store.Path(),
			"nodes": reg.Len(),
		}).Debug("Loaded node registry")
		return reg, nil
	}

	if !os.IsNotExist(err) {
		return nil, err
	}

	logger.WithField("path", store.Path()).Warn("No nodes.json, using default nodes")

	return registry.NewDefaultRegistry(), nil
}

// NewLocalLedger creates the in-process ledger described by the configuration.
func NewLocalLedger(c *config.Config, reg *registry.Registry) (*ledger.LocalLedger, error) {
	logger := c.Logger().WithField("component", "ledger")

	var store ledger.Store
	if c.Store {
		bs, err := ledger.NewBadgerStore(c.DatabaseDir, logger)
		if err != nil {
			return nil, err
		}
		store = bs
		logger.WithField("path", c.DatabaseDir).Debug("Using badger store")
	} else {
		store = ledger.NewInmemStore()
		logger.Debug("Using in-mem store")
	}

	faction := func(id string) string {
		f, _ := reg.Faction(id)
		return string(f)
	}

	if len(c.Unsupported) > 0 {
		logger.WithField("unsupported", c.Unsupported).Warn("Ledger emulates a partial contract")
	}

	return ledger.NewLocalLedger(
		ledger.NewContract(store, faction, logger),
		logger,
		ledger.WithUnsupported(c.Unsupported...),
	), nil
}
