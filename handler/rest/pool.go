package rest

import (
	"context"
	"net/http"
	"strings"

	"lending/core"
	"lending/handler/codes"
	"lending/handler/render"
	"lending/handler/views"
	"lending/pkg/number"
	"lending/pkg/pool"

	"github.com/fox-one/pkg/logger"
	"github.com/go-chi/chi"
)

func poolsHandler(ledger core.LedgerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		pools, err := ledger.Pools(ctx)
		if err != nil {
			render.Error(w, codes.FromLedger(err))
			return
		}

		fields := splitFields(r.URL.Query().Get("fields"))
		items := make([]map[string]interface{}, 0, len(pools))
		for _, p := range pools {
			items = append(items, views.Fields(poolView(ctx, p), fields...))
		}

		render.JSON(w, items)
	}
}

func poolHandler(ledger core.LedgerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		p, err := ledger.Pool(ctx, chi.URLParam(r, "token"))
		if err != nil {
			render.Error(w, codes.FromLedger(err))
			return
		}

		fields := splitFields(r.URL.Query().Get("fields"))
		render.JSON(w, views.Fields(poolView(ctx, p), fields...))
	}
}

// poolView p is already accrued to now, the deposit rate derives from it
func poolView(ctx context.Context, p *core.Pool) *views.Pool {
	rate, err := pool.DepositRate(p)
	if err != nil {
		logger.FromContext(ctx).WithError(err).WithField("token", p.Token).Warnln("rest: deposit rate")
		rate = number.Zero()
	}

	return views.PoolView(p, number.WadToDecimal(rate))
}

func splitFields(s string) []string {
	var fields []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}

	return fields
}
