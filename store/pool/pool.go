package pool

import (
	"context"
	"time"

	"lending/core"
	"lending/pkg/number"

	"github.com/fox-one/pkg/store"
	"github.com/fox-one/pkg/store/db"
	"github.com/holiman/uint256"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

// Pool persisted pool record, raw integers in decimal(78,0) columns
type Pool struct {
	Token string `sql:"size:64;PRIMARY_KEY"`
	// registration order of the pool
	Seq                     int             `sql:"default:0"`
	Decimals                uint8           `sql:"default:0"`
	TotalDeposited          decimal.Decimal `sql:"type:decimal(78,0)"`
	TotalBorrowed           decimal.Decimal `sql:"type:decimal(78,0)"`
	PseudoTotalPool         decimal.Decimal `sql:"type:decimal(78,0)"`
	PseudoTotalBorrowAmount decimal.Decimal `sql:"type:decimal(78,0)"`
	TotalDepositShares      decimal.Decimal `sql:"type:decimal(78,0)"`
	TotalBorrowShares       decimal.Decimal `sql:"type:decimal(78,0)"`
	TotalPureCollateral     decimal.Decimal `sql:"type:decimal(78,0)"`
	Utilization             decimal.Decimal `sql:"type:decimal(78,0)"`
	BorrowRate              decimal.Decimal `sql:"type:decimal(78,0)"`
	LastSyncTimestamp       int64
	TimeStampScaling        int64
	PoolFee                 decimal.Decimal `sql:"type:decimal(78,0)"`
	CollateralFactor        decimal.Decimal `sql:"type:decimal(78,0)"`
	MaxDepositAmount        decimal.Decimal `sql:"type:decimal(78,0)"`
	Pole                    decimal.Decimal `sql:"type:decimal(78,0)"`
	MinPole                 decimal.Decimal `sql:"type:decimal(78,0)"`
	MaxPole                 decimal.Decimal `sql:"type:decimal(78,0)"`
	DeltaPole               decimal.Decimal `sql:"type:decimal(78,0)"`
	MultiplicativeFactor    decimal.Decimal `sql:"type:decimal(78,0)"`
	BestPole                decimal.Decimal `sql:"type:decimal(78,0)"`
	MaxValue                decimal.Decimal `sql:"type:decimal(78,0)"`
	IncreasePole            bool
	LastUtilization         decimal.Decimal `sql:"type:decimal(78,0)"`
	Lock                    bool
	// bumped on every save
	Version   int64     `sql:"default:0"`
	UpdatedAt time.Time `sql:"default:CURRENT_TIMESTAMP"`
}

// TableName gorm table name
func (Pool) TableName() string {
	return "pools"
}

type poolStore struct {
	db *db.DB
}

// New new pool store
func New(db *db.DB) core.IPoolStore {
	return &poolStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(Pool{})
		if err := tx.AutoMigrate(Pool{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func raw(x *uint256.Int) decimal.Decimal {
	return number.ToDecimal(x, 0)
}

// decoder collects the first conversion error of a row
type decoder struct {
	err error
}

func (d *decoder) int(v decimal.Decimal) *uint256.Int {
	if d.err != nil {
		return nil
	}

	x, err := number.Scale(v, 0)
	if err != nil {
		d.err = err
		return nil
	}

	return x
}

// FromCore record of p
func FromCore(p *core.Pool) *Pool {
	c := p.Curve
	return &Pool{
		Token:                   p.Token,
		Decimals:                p.Decimals,
		TotalDeposited:          raw(p.TotalDeposited),
		TotalBorrowed:           raw(p.TotalBorrowed),
		PseudoTotalPool:         raw(p.PseudoTotalPool),
		PseudoTotalBorrowAmount: raw(p.PseudoTotalBorrowAmount),
		TotalDepositShares:      raw(p.TotalDepositShares),
		TotalBorrowShares:       raw(p.TotalBorrowShares),
		TotalPureCollateral:     raw(p.TotalPureCollateral),
		Utilization:             raw(p.Utilization),
		BorrowRate:              raw(p.BorrowRate),
		LastSyncTimestamp:       int64(p.LastSyncTimestamp),
		TimeStampScaling:        int64(p.TimeStampScaling),
		PoolFee:                 raw(p.PoolFee),
		CollateralFactor:        raw(p.CollateralFactor),
		MaxDepositAmount:        raw(p.MaxDepositAmount),
		Pole:                    raw(c.Pole),
		MinPole:                 raw(c.MinPole),
		MaxPole:                 raw(c.MaxPole),
		DeltaPole:               raw(c.DeltaPole),
		MultiplicativeFactor:    raw(c.MultiplicativeFactor),
		BestPole:                raw(c.BestPole),
		MaxValue:                raw(c.MaxValue),
		IncreasePole:            c.IncreasePole,
		LastUtilization:         raw(c.LastUtilization),
		Lock:                    c.Lock,
	}
}

// ToCore ledger pool of the record
func (r *Pool) ToCore() (*core.Pool, error) {
	var d decoder
	p := &core.Pool{
		Token:                   r.Token,
		Decimals:                r.Decimals,
		TotalDeposited:          d.int(r.TotalDeposited),
		TotalBorrowed:           d.int(r.TotalBorrowed),
		PseudoTotalPool:         d.int(r.PseudoTotalPool),
		PseudoTotalBorrowAmount: d.int(r.PseudoTotalBorrowAmount),
		TotalDepositShares:      d.int(r.TotalDepositShares),
		TotalBorrowShares:       d.int(r.TotalBorrowShares),
		TotalPureCollateral:     d.int(r.TotalPureCollateral),
		Utilization:             d.int(r.Utilization),
		BorrowRate:              d.int(r.BorrowRate),
		LastSyncTimestamp:       uint64(r.LastSyncTimestamp),
		TimeStampScaling:        uint64(r.TimeStampScaling),
		PoolFee:                 d.int(r.PoolFee),
		CollateralFactor:        d.int(r.CollateralFactor),
		MaxDepositAmount:        d.int(r.MaxDepositAmount),
		Curve: core.RateCurve{
			Pole:                 d.int(r.Pole),
			MinPole:              d.int(r.MinPole),
			MaxPole:              d.int(r.MaxPole),
			DeltaPole:            d.int(r.DeltaPole),
			MultiplicativeFactor: d.int(r.MultiplicativeFactor),
			BestPole:             d.int(r.BestPole),
			MaxValue:             d.int(r.MaxValue),
			IncreasePole:         r.IncreasePole,
			LastUtilization:      d.int(r.LastUtilization),
			Lock:                 r.Lock,
		},
	}

	if d.err != nil {
		return nil, d.err
	}

	return p, nil
}

// Save upserts every pool, keyed by token
func (s *poolStore) Save(ctx context.Context, tx *db.DB, pools []*core.Pool) error {
	for i, p := range pools {
		r := FromCore(p)
		r.Seq = i
		if err := tx.Update().Omit("version").Save(r).Error; err != nil {
			return err
		}

		if err := tx.Update().Model(Pool{}).Where("token = ?", r.Token).UpdateColumn("version", gorm.Expr("version + 1")).Error; err != nil {
			return err
		}
	}

	return nil
}

func (s *poolStore) Find(ctx context.Context, token string) (*core.Pool, error) {
	var r Pool
	if err := s.db.View().Where("token = ?", token).First(&r).Error; err != nil {
		if store.IsErrNotFound(err) {
			return nil, core.ErrPoolNotFound
		}

		return nil, err
	}

	return r.ToCore()
}

func (s *poolStore) All(ctx context.Context) ([]*core.Pool, error) {
	var rows []*Pool
	if err := s.db.View().Order("seq").Find(&rows).Error; err != nil {
		return nil, err
	}

	pools := make([]*core.Pool, 0, len(rows))
	for _, r := range rows {
		p, err := r.ToCore()
		if err != nil {
			return nil, err
		}
		pools = append(pools, p)
	}

	return pools, nil
}
