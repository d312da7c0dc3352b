package rollout

import (
	"go.uber.org/zap"

	"github.com/san-kum/trajsim/internal/dynamo"
)

// LogObserver logs every n-th step at debug level.
type LogObserver struct {
	logger *zap.Logger
	every  int
}

func NewLogObserver(logger *zap.Logger, every int) *LogObserver {
	if every <= 0 {
		every = 1
	}
	return &LogObserver{logger: logger, every: every}
}

func (o *LogObserver) OnStep(step int, x dynamo.State, u dynamo.Control, t float64) {
	if step%o.every != 0 {
		return
	}
	o.logger.Debug("step",
		zap.Int("step", step),
		zap.Float64("t", t),
		zap.Float64("state_norm", x.Norm()),
		zap.Bool("final", u == nil),
	)
}
