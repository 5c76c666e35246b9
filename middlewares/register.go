package middlewares

import (
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/pressgate/pkg/db"
	"github.com/dmitrymomot/pressgate/pkg/pipeline"
)

// Registered middleware names.
const (
	NameRequestID     = "request_id"
	NameRecover       = "recover"
	NameTimeout       = "timeout"
	NameMetrics       = "metrics"
	NameDBTransaction = "db_transaction"
)

// Deps are the services the built-in middleware need.
type Deps struct {
	// Logger receives panic and timeout reports.
	Logger *slog.Logger
	// Registerer receives the request metrics. Nil means the default registerer.
	Registerer prometheus.Registerer
	// DB enables db_transaction.
	DB db.TxStarter
	// RequestID configures request_id.
	RequestID []RequestIDOption
}

// Register adds the built-in middleware to reg under their names, keeping
// factories the application registered first:
//
//	request_id       RequestID
//	recover          Recover
//	timeout:<secs>   Timeout, 30 seconds without an argument
//	metrics          Metrics
//	db_transaction   Transaction, only when deps.DB is set
func Register(reg *pipeline.Registry, deps Deps) {
	reg.RegisterIfAbsent(NameRequestID, pipeline.Static(RequestID(deps.RequestID...)))
	reg.RegisterIfAbsent(NameRecover, pipeline.Static(Recover(WithRecoverLogger(deps.Logger))))
	reg.RegisterIfAbsent(NameTimeout, timeoutFactory(deps.Logger))

	metrics := sync.OnceValues(func() (*Metrics, error) {
		return NewMetrics(deps.Registerer)
	})
	reg.RegisterIfAbsent(NameMetrics, func(args ...any) (pipeline.Middleware, error) {
		m, err := metrics()
		if err != nil {
			return nil, err
		}
		return pipeline.Static(m.Middleware())(args...)
	})

	if deps.DB != nil {
		reg.RegisterIfAbsent(NameDBTransaction, pipeline.Static(Transaction(deps.DB)))
	}
}
