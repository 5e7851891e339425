package scheduler

import (
	"context"

	"github.com/MrSnakeDoc/fleetview/internal/index"
	"github.com/MrSnakeDoc/fleetview/internal/logger"
	"github.com/MrSnakeDoc/fleetview/internal/status"
	redisstore "github.com/MrSnakeDoc/fleetview/internal/store/redis"
)

// RedisMirror copies the matrix to Redis after each poll cycle
type RedisMirror struct {
	store  *redisstore.Store
	matrix *index.Matrix
	logger logger.Logger
}

// NewRedisMirror creates a new Redis mirror
func NewRedisMirror(
	store *redisstore.Store,
	matrix *index.Matrix,
	log logger.Logger,
) *RedisMirror {
	return &RedisMirror{
		store:  store,
		matrix: matrix,
		logger: log,
	}
}

// Sync writes the current snapshot. Failures are logged, the matrix stays
// the primary source. Its signature matches CycleHook.
func (rm *RedisMirror) Sync(ctx context.Context, scanned int) {
	snap := rm.matrix.Snapshot()

	written, err := rm.store.SaveSnapshot(ctx, snap, status.Render(snap))
	if err != nil {
		rm.logger.Warn("failed to mirror observations to redis",
			logger.Error(err))
		return
	}

	rm.logger.Debug("mirrored observations to redis",
		logger.Int("observations", written),
		logger.Int("scanned", scanned))
}
