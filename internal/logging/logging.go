package logging

import (
	"go.uber.org/zap"

	"kvstore/internal/address"
)

// Logger records membership and KV events. A nil *zap.Logger passed to New
// falls back to a no-op logger, so tests can construct nodes without
// standing up a real sink.
type Logger struct {
	zl *zap.Logger
}

// New wraps zl. Pass zap.NewNop() (or nil) to discard all output.
func New(zl *zap.Logger) *Logger {
	if zl == nil {
		zl = zap.NewNop()
	}
	return &Logger{zl: zl}
}

// NodeAdd logs that peer entered self's membership view.
func (l *Logger) NodeAdd(self, peer address.Address) {
	l.zl.Info("node added",
		zap.String("self", self.String()),
		zap.String("peer", peer.String()))
}

// NodeRemove logs that peer was evicted from self's membership view.
func (l *Logger) NodeRemove(self, peer address.Address) {
	l.zl.Info("node removed",
		zap.String("self", self.String()),
		zap.String("peer", peer.String()))
}

func (l *Logger) kv(ok bool, op string, self address.Address, isCoordinator bool, transID int, key, value string) {
	fields := []zap.Field{
		zap.String("self", self.String()),
		zap.Bool("isCoordinator", isCoordinator),
		zap.Int("transID", transID),
		zap.String("key", key),
	}
	if value != "" {
		fields = append(fields, zap.String("value", value))
	}
	if ok {
		l.zl.Info(op+" success", fields...)
		return
	}
	l.zl.Warn(op+" failed", fields...)
}

func (l *Logger) CreateSuccess(self address.Address, isCoordinator bool, transID int, key, value string) {
	l.kv(true, "create", self, isCoordinator, transID, key, value)
}

func (l *Logger) CreateFail(self address.Address, isCoordinator bool, transID int, key, value string) {
	l.kv(false, "create", self, isCoordinator, transID, key, value)
}

func (l *Logger) ReadSuccess(self address.Address, isCoordinator bool, transID int, key, value string) {
	l.kv(true, "read", self, isCoordinator, transID, key, value)
}

func (l *Logger) ReadFail(self address.Address, isCoordinator bool, transID int, key string) {
	l.kv(false, "read", self, isCoordinator, transID, key, "")
}

func (l *Logger) UpdateSuccess(self address.Address, isCoordinator bool, transID int, key, value string) {
	l.kv(true, "update", self, isCoordinator, transID, key, value)
}

func (l *Logger) UpdateFail(self address.Address, isCoordinator bool, transID int, key, value string) {
	l.kv(false, "update", self, isCoordinator, transID, key, value)
}

func (l *Logger) DeleteSuccess(self address.Address, isCoordinator bool, transID int, key string) {
	l.kv(true, "delete", self, isCoordinator, transID, key, "")
}

func (l *Logger) DeleteFail(self address.Address, isCoordinator bool, transID int, key string) {
	l.kv(false, "delete", self, isCoordinator, transID, key, "")
}
