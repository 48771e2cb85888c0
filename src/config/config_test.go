package config

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestSetDataDir(t *testing.T) {
	c := NewDefaultConfig()
	c.SetDataDir("/tmp/waybill")

	if c.DatabaseDir != filepath.Join("/tmp/waybill", DefaultBadgerFile) {
		t.Fatalf("database dir should follow the data dir, got %s", c.DatabaseDir)
	}
	if c.ContentDir != filepath.Join("/tmp/waybill", DefaultContentDir) {
		t.Fatalf("content dir should follow the data dir, got %s", c.ContentDir)
	}

	c = NewDefaultConfig()
	c.DatabaseDir = "/var/lib/waybill/db"
	c.SetDataDir("/tmp/waybill")

	if c.DatabaseDir != "/var/lib/waybill/db" {
		t.Fatalf("explicit database dir should be kept, got %s", c.DatabaseDir)
	}
}

func TestLogLevel(t *testing.T) {
	cases := map[string]logrus.Level{
		"debug":   logrus.DebugLevel,
		"info":    logrus.InfoLevel,
		"warn":    logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"verbose": logrus.DebugLevel,
	}

	for in, expected := range cases {
		if l := LogLevel(in); l != expected {
			t.Fatalf("%s should parse to %v, not %v", in, expected, l)
		}
	}
}
