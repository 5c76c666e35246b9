package middlewares

import (
	"context"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/pressgate/pkg/db"
	"github.com/dmitrymomot/pressgate/pkg/pipeline"
	"github.com/dmitrymomot/pressgate/pkg/response"
)

var errRollback = errors.New("middlewares: rollback")

// Transaction returns middleware running the rest of the chain inside a
// database transaction stored in the request context (see db.Conn).
// The transaction is rolled back when the chain returns an error or a 5xx
// response, and committed otherwise. Delegated requests are served by the
// host after the transaction has ended.
func Transaction(starter db.TxStarter) pipeline.Middleware {
	return func(next pipeline.HandlerFunc) pipeline.HandlerFunc {
		return func(r *http.Request) (*response.Response, error) {
			var resp *response.Response
			err := db.WithTx(r.Context(), starter, func(ctx context.Context, _ pgx.Tx) error {
				var err error
				resp, err = next(r.WithContext(ctx))
				if err != nil {
					return err
				}
				if resp != nil && resp.Status() >= http.StatusInternalServerError {
					return errRollback
				}
				return nil
			})
			if errors.Is(err, errRollback) {
				return resp, nil
			}
			if err != nil {
				return nil, err
			}
			return resp, nil
		}
	}
}
