package waybill

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/mosaicnetworks/waybill/src/common"
	"github.com/mosaicnetworks/waybill/src/config"
	"github.com/mosaicnetworks/waybill/src/ledger"
	"github.com/mosaicnetworks/waybill/src/registry"
	"github.com/mosaicnetworks/waybill/src/workflow"
)

func TestInitDefaults(t *testing.T) {
	conf := config.NewTestConfig(t, common.TestLogLevel)
	conf.SetDataDir(t.TempDir())
	conf.ServiceAddr = ""

	w := NewWaybill(conf)
	if err := w.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer w.Close()

	if w.Registry.Len() != 8 {
		t.Fatalf("default registry should have 8 nodes, not %d", w.Registry.Len())
	}
	if w.Service != nil {
		t.Fatalf("no service should be created without an address")
	}
}

func TestInitFromNodesFile(t *testing.T) {
	dir := t.TempDir()

	nodes := []*registry.Node{
		{ID: "a", Faction: registry.Origin},
		{ID: "b", Faction: registry.Dest},
	}
	if err := registry.NewJSONRegistry(dir).Write(nodes); err != nil {
		t.Fatal(err)
	}

	conf := config.NewTestConfig(t, common.TestLogLevel)
	conf.SetDataDir(dir)
	conf.Content = config.ContentLocal

	w := NewWaybill(conf)
	if err := w.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer w.Close()

	if !reflect.DeepEqual(w.Registry.IDs(), []string{"a", "b"}) {
		t.Fatalf("registry should come from nodes.json, got %v", w.Registry.IDs())
	}

	res, err := w.Engine.Submit(context.Background(), workflow.SubmitRequest{
		Sender: "a", Recipient: "b", FileName: "f.txt", Content: []byte("payload"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.ContentUnavailable() {
		t.Fatalf("local content store should accept the payload: %v", res.ContentErr)
	}
}

func TestPersistentLedger(t *testing.T) {
	dir := t.TempDir()

	conf := config.NewTestConfig(t, common.TestLogLevel)
	conf.SetDataDir(dir)
	conf.Store = true
	conf.ServiceAddr = ""

	w := NewWaybill(conf)
	if err := w.Init(); err != nil {
		t.Fatal(err)
	}

	res, err := w.Engine.Submit(context.Background(), workflow.SubmitRequest{
		Sender: "origin-station", Recipient: "dest-station", FileName: "f.txt", Content: []byte("payload"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	if conf.DatabaseDir != filepath.Join(dir, config.DefaultBadgerFile) {
		t.Fatalf("database should live in the data dir, got %s", conf.DatabaseDir)
	}

	w = NewWaybill(conf)
	if err := w.Init(); err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	view, err := w.Engine.View(context.Background(), res.Document.DocID, "dest-station")
	if err != nil {
		t.Fatalf("document should survive a restart: %v", err)
	}
	if view.Document.Status != workflow.Pending {
		t.Fatalf("unexpected status %s", view.Document.Status)
	}
}

func TestSocketLedger(t *testing.T) {
	logger := common.NewTestEntry(t, common.TestLogLevel)

	serverConf := config.NewTestConfig(t, common.TestLogLevel)
	serverConf.Unsupported = []string{ledger.GetMessagesForNode}

	local, err := NewLocalLedger(serverConf, registry.NewDefaultRegistry())
	if err != nil {
		t.Fatal(err)
	}

	server, err := ledger.NewSocketServer("127.0.0.1:0", local, time.Second, logger)
	if err != nil {
		t.Fatal(err)
	}
	defer server.Close()
	go server.Serve()

	conf := config.NewTestConfig(t, common.TestLogLevel)
	conf.SetDataDir(t.TempDir())
	conf.Ledger = config.LedgerSocket
	conf.LedgerAddr = server.Addr().String()
	conf.ServiceAddr = ""

	w := NewWaybill(conf)
	if err := w.Init(); err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if _, err := w.Engine.Submit(context.Background(), workflow.SubmitRequest{
		Sender: "origin-station", Recipient: "dest-station", FileName: "f.txt", Content: []byte("payload"),
	}); err != nil {
		t.Fatal(err)
	}

	feed, err := w.Feed.For(context.Background(), "dest-station")
	if err != nil {
		t.Fatal(err)
	}
	if !feed.Derived || len(feed.Messages) != 1 {
		t.Fatalf("feed should be derived over the socket: %+v", feed)
	}
}

func TestInitUnknownLedger(t *testing.T) {
	conf := config.NewTestConfig(t, common.TestLogLevel)
	conf.SetDataDir(t.TempDir())
	conf.Ledger = "fabric"

	if err := NewWaybill(conf).Init(); err == nil {
		t.Fatalf("unknown ledger should fail Init")
	}
}
