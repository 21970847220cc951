package actors

import (
	stdctx "context"
	"time"

	"gator-commons/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

// DefaultStoreTimeout bounds each store call an actor makes on behalf of a message.
const DefaultStoreTimeout = 5 * time.Second

// GetCountsMsg asks an actor for the size of the collection it fronts.
type GetCountsMsg struct{}

// base carries what every actor needs to call into a service and answer the sender.
type base struct {
	name         string
	metrics      *utils.MetricsCollector
	logger       *zap.Logger
	storeTimeout time.Duration
}

func newBase(name string, metrics *utils.MetricsCollector, logger *zap.Logger, storeTimeout time.Duration) base {
	if metrics == nil {
		metrics = utils.NewMetricsCollector()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if storeTimeout <= 0 {
		storeTimeout = DefaultStoreTimeout
	}
	return base{
		name:         name,
		metrics:      metrics,
		logger:       logger.Named(name),
		storeTimeout: storeTimeout,
	}
}

func (b *base) storeContext() (stdctx.Context, stdctx.CancelFunc) {
	return stdctx.WithTimeout(stdctx.Background(), b.storeTimeout)
}

// lifecycle logs system messages and reports whether msg was one.
func (b *base) lifecycle(msg interface{}) bool {
	switch msg.(type) {
	case *actor.Started:
		b.logger.Debug("actor started")
	case *actor.Stopping:
		b.logger.Debug("actor stopping")
	case *actor.Stopped:
		b.logger.Debug("actor stopped")
	case *actor.Restarting:
		b.logger.Warn("actor restarting")
	default:
		return false
	}
	return true
}

// respond records the operation and answers with either the result or the error.
func (b *base) respond(context actor.Context, operation string, start time.Time, result interface{}, err error) {
	b.metrics.Observe(operation, start, err)
	if err != nil {
		if !utils.IsErrorCode(err, utils.ErrInvalidInput) && !utils.IsErrorCode(err, utils.ErrNotFound) {
			b.logger.Warn("operation failed", zap.String("operation", operation), zap.Error(err))
		}
		context.Respond(err)
		return
	}
	context.Respond(result)
}

// unknown rejects a message the actor has no case for, so a waiting future fails fast.
func (b *base) unknown(context actor.Context, msg interface{}) {
	b.logger.Warn("unknown message type", zap.String("type", typeName(msg)))
	context.Respond(utils.NewAppError(utils.ErrMessageRejected, "unsupported message "+typeName(msg), nil))
}
