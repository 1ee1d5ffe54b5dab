// Package autoload initializes the global logger from the LOG_*
// environment on import.
package autoload

import (
	configx "github.com/tsukimori/yoyaku-agent/pkg/config"
	logx "github.com/tsukimori/yoyaku-agent/pkg/logger"
)

func init() {
	logx.Init(*configx.MustNew[logx.Config]("LOG"))
}
