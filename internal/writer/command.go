package writer

import (
	"context"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/conduit-lang/cppbind/internal/errors"
)

// RunCommands runs each command in dir and stops at the first failure.
// The returned error is a PRC401 BindError carrying the combined output.
func RunCommands(ctx context.Context, dir string, commands [][]string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	for _, args := range commands {
		if len(args) == 0 {
			continue
		}
		line := strings.Join(args, " ")
		logger.Info("running command", zap.String("command", line), zap.String("dir", dir))

		cmd := exec.CommandContext(ctx, args[0], args[1:]...)
		cmd.Dir = dir
		output, err := cmd.CombinedOutput()
		if err != nil {
			logger.Error("command failed", zap.String("command", line), zap.Error(err))
			return errors.NewCommandFailed(line, err.Error(), string(output))
		}
		logger.Debug("command finished", zap.String("command", line), zap.Int("output_bytes", len(output)))
	}
	return nil
}
