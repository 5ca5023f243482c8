package rest

import (
	"context"
	"net/http"

	"lending/core"
	"lending/handler/codes"
	"lending/handler/render"
	"lending/handler/views"
	"lending/pkg/id"
	"lending/pkg/number"

	"github.com/fox-one/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

func positionHandler(ledger core.LedgerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		n, err := id.ParsePosition(chi.URLParam(r, "id"))
		if err != nil {
			render.BadRequest(w, err)
			return
		}
		pid := core.PositionID(n)

		pos, err := ledger.Position(ctx, pid)
		if err != nil {
			render.Error(w, codes.FromLedger(err))
			return
		}

		locked, err := ledger.IsLocked(ctx, pid)
		if err != nil {
			render.Error(w, codes.FromLedger(err))
			return
		}

		pools := make(map[string]*core.Pool)
		tokens := append(pos.LendingTokens.Items(), pos.BorrowTokens.Items()...)
		for _, token := range tokens {
			if _, ok := pools[token]; ok {
				continue
			}

			p, err := ledger.Pool(ctx, token)
			if err != nil {
				render.Error(w, codes.FromLedger(err))
				return
			}
			pools[token] = p
		}

		view, err := views.PositionView(pos, locked, pools, valuation(ctx, ledger, pid))
		if err != nil {
			render.Error(w, codes.FromLedger(err))
			return
		}

		render.JSON(w, view)
	}
}

// valuation oracle figures of the position, missing or stale prices leave
// the affected figures empty
func valuation(ctx context.Context, ledger core.LedgerService, pid core.PositionID) views.Valuation {
	log := logger.FromContext(ctx).WithField("position", uint64(pid))

	wad := func(name string, fn func(context.Context, core.PositionID) (*uint256.Int, error)) *decimal.Decimal {
		v, err := fn(ctx, pid)
		if err != nil {
			log.WithError(err).Debugf("rest: %s unavailable", name)
			return nil
		}

		d := number.WadToDecimal(v)
		return &d
	}

	return views.Valuation{
		CollateralValue: wad("collateral value", ledger.CollateralValue),
		BorrowValue:     wad("borrow value", ledger.BorrowValue),
		DebtRatio:       wad("debt ratio", ledger.DebtRatio),
	}
}
