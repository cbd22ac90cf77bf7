package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"kvstore/internal/address"
)

func newObserved() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return New(zap.New(core)), logs
}

func TestNew_NilFallsBackToNop(t *testing.T) {
	l := New(nil)
	l.NodeAdd(address.New(1, 0), address.New(2, 0)) // must not panic
}

func TestNodeAdd_LogsInfo(t *testing.T) {
	l, logs := newObserved()
	self, peer := address.New(1, 0), address.New(2, 0)
	l.NodeAdd(self, peer)

	entries := logs.All()
	if len(entries) != 1 || entries[0].Level != zapcore.InfoLevel || entries[0].Message != "node added" {
		t.Fatalf("unexpected log entries: %+v", entries)
	}
}

func TestCreateSuccess_LogsAtInfo(t *testing.T) {
	l, logs := newObserved()
	l.CreateSuccess(address.New(1, 0), true, 5, "k", "v")

	entries := logs.All()
	if len(entries) != 1 || entries[0].Level != zapcore.InfoLevel {
		t.Fatalf("expected one info entry, got %+v", entries)
	}
	ctx := entries[0].ContextMap()
	if ctx["transID"] != int64(5) || ctx["key"] != "k" || ctx["value"] != "v" || ctx["isCoordinator"] != true {
		t.Fatalf("unexpected fields: %+v", ctx)
	}
}

func TestCreateFail_LogsAtWarn(t *testing.T) {
	l, logs := newObserved()
	l.CreateFail(address.New(1, 0), false, 5, "k", "v")

	entries := logs.All()
	if len(entries) != 1 || entries[0].Level != zapcore.WarnLevel {
		t.Fatalf("expected one warn entry, got %+v", entries)
	}
}

func TestReadFail_OmitsEmptyValue(t *testing.T) {
	l, logs := newObserved()
	l.ReadFail(address.New(1, 0), true, 7, "missing")

	ctx := logs.All()[0].ContextMap()
	if _, present := ctx["value"]; present {
		t.Fatalf("expected no value field on ReadFail, got %+v", ctx)
	}
}
