package ledger

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"lending/core"
	"lending/pkg/id"
	"lending/pkg/lasa"
	"lending/pkg/number"

	"github.com/fox-one/pkg/logger"
	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"
)

// Config risk parameters of the ledger
type Config struct {
	MaxDebtRatio         *uint256.Int
	CloseFactor          *uint256.Int
	LiquidationIncentive *uint256.Int
	// seconds between two rate curve adjustments
	AdjustmentWindow uint64
	FlatTolerance    *uint256.Int
}

// DefaultConfig fully collateralized debt, half of a borrow per liquidation
// and a 5% liquidation incentive
func DefaultConfig() Config {
	return Config{
		MaxDebtRatio:         number.Wad(),
		CloseFactor:          number.MustParse("0.5"),
		LiquidationIncentive: number.MustParse("0.05"),
		AdjustmentWindow:     lasa.DefaultAdjustmentWindow,
		FlatTolerance:        number.MustParse("0.001"),
	}
}

type service struct {
	clock    core.Clock
	oracle   core.Oracle
	registry core.PositionRegistry
	fees     core.FeeLedger
	vault    core.Vault
	system   *core.Config
	cfg      Config

	// set while a call runs its vault transfers and fee credits
	external atomic.Bool

	// serializes every call, state below is only touched while holding it
	mu        sync.Mutex
	tokens    []string
	pools     map[string]*core.Pool
	positions map[core.PositionID]*core.Position
	locked    map[core.PositionID]bool
}

// New new ledger service
func New(
	clock core.Clock,
	oracle core.Oracle,
	registry core.PositionRegistry,
	fees core.FeeLedger,
	vault core.Vault,
	system *core.Config,
	cfg Config,
) core.LedgerService {
	return &service{
		clock:     clock,
		oracle:    oracle,
		registry:  registry,
		fees:      fees,
		vault:     vault,
		system:    system,
		cfg:       cfg,
		pools:     make(map[string]*core.Pool),
		positions: make(map[core.PositionID]*core.Position),
		locked:    make(map[core.PositionID]bool),
	}
}

type callKey struct{}

func inCall(ctx context.Context) bool {
	return ctx.Value(callKey{}) != nil
}

func (s *service) now() uint64 {
	return uint64(s.clock.Now().Unix())
}

// mutate runs fn as one atomic ledger call. Ledger changes made by fn are
// rolled back when fn or any queued transfer fails.
func (s *service) mutate(ctx context.Context, op string, fields logrus.Fields, fn func(ctx context.Context, tx *txn) error) error {
	log := logger.FromContext(ctx).WithFields(fields).WithFields(logrus.Fields{
		"op":    op,
		"trace": id.TraceID(),
	})

	if inCall(ctx) || s.external.Load() {
		log.Warnln("reentrant call rejected")
		return core.ErrReentrantCall
	}

	ctx = context.WithValue(ctx, callKey{}, op)
	ctx = logger.WithContext(ctx, log)

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.begin()
	err := fn(ctx, tx)
	if err == nil {
		err = tx.commit(ctx)
	}

	if err != nil {
		tx.rollback()
		var code core.ErrorCode
		if errors.As(err, &code) {
			log.WithError(err).Infoln("skip: rejected")
		} else {
			log.WithError(err).Errorln("call failed")
		}
		return err
	}

	log.Debugln("done")
	return nil
}

// view runs fn against a throwaway transaction, nothing it changes survives.
// Views called from within a ledger call reuse the caller's lock.
func (s *service) view(ctx context.Context, fn func(ctx context.Context, tx *txn) error) error {
	if !inCall(ctx) {
		if s.external.Load() {
			return core.ErrReentrantCall
		}

		s.mu.Lock()
		defer s.mu.Unlock()
	}

	tx := s.begin()
	defer tx.rollback()
	return fn(ctx, tx)
}

func (s *service) isAdmin(caller string) bool {
	return s.system != nil && s.system.IsAdmin(caller)
}

// checkPosition position must be known to the registry and open for user calls
func (s *service) checkPosition(ctx context.Context, pid core.PositionID) (string, error) {
	if pid.Reserved() {
		return "", core.ErrInvalidAction
	}

	owner, err := s.registry.OwnerOf(ctx, pid)
	if err != nil {
		return "", err
	}

	if s.locked[pid] {
		return "", core.ErrPositionLocked
	}

	return owner, nil
}

// checkOwner like checkPosition, caller must also hold the position
func (s *service) checkOwner(ctx context.Context, caller string, pid core.PositionID) error {
	owner, err := s.checkPosition(ctx, pid)
	if err != nil {
		return err
	}

	if owner != caller {
		return core.ErrNotOwner
	}

	return nil
}

func positive(v *uint256.Int) error {
	if v == nil || v.IsZero() {
		return core.ErrInvalidAction
	}

	return nil
}
