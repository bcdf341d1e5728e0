package tree

import (
	"sync"

	"github.com/benz9527/xtree/xlog"
)

type treeConfig struct {
	checkInvariants bool
	logger          xlog.XLogger
}

type TreeOption func(cfg *treeConfig)

// WithInvariantCheck validates the whole tree after every attach and
// detach, as the treedebug build tag does.
func WithInvariantCheck() TreeOption {
	return func(cfg *treeConfig) {
		cfg.checkInvariants = true
	}
}

// WithTreeLogger sets the logger used to report invariant failures.
func WithTreeLogger(logger xlog.XLogger) TreeOption {
	return func(cfg *treeConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

var defaultTreeLogger = sync.OnceValue(func() xlog.XLogger {
	return xlog.NewXLogger(
		xlog.WithXLoggerLevel(xlog.LogLevelError),
		xlog.WithXLoggerStdOutWriter(),
	)
})
