package logging

import (
	"os"

	"github.com/hashicorp/go-hclog"
)

// New builds the root logger. Components derive their own via Named().
func New(level string) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:       "automation",
		Level:      hclog.LevelFromString(level),
		Output:     os.Stdout,
		JSONFormat: true,
	})
}
