package position

import (
	"context"
	"sort"
	"time"

	"lending/core"
	"lending/pkg/id"
	"lending/pkg/number"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// Entry one token of one position. Position ids are stored as strings, the
// reserved fee position does not fit a signed bigint.
type Entry struct {
	ID             uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT"`
	PositionID     string          `sql:"size:20;unique_index:position_token_idx"`
	Token          string          `sql:"size:64;unique_index:position_token_idx"`
	LendingShares  decimal.Decimal `sql:"type:decimal(78,0)"`
	Collateral     bool
	BorrowShares   decimal.Decimal `sql:"type:decimal(78,0)"`
	PureCollateral decimal.Decimal `sql:"type:decimal(78,0)"`
	CreatedAt      time.Time       `sql:"default:CURRENT_TIMESTAMP"`
}

// TableName gorm table name
func (Entry) TableName() string {
	return "position_entries"
}

// Lock restricted position
type Lock struct {
	PositionID string    `sql:"size:20;PRIMARY_KEY"`
	CreatedAt  time.Time `sql:"default:CURRENT_TIMESTAMP"`
}

// TableName gorm table name
func (Lock) TableName() string {
	return "position_locks"
}

type positionStore struct {
	db *db.DB
}

// New new position store
func New(db *db.DB) core.IPositionStore {
	return &positionStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(Entry{})
		if err := tx.AutoMigrate(Entry{}).Error; err != nil {
			return err
		}

		tx = db.Update().Model(Lock{})
		if err := tx.AutoMigrate(Lock{}).Error; err != nil {
			return err
		}

		return nil
	})
}

// Entries one record per token the position has any balance in
func Entries(pos *core.Position) []*Entry {
	tokens := append(pos.LendingTokens.Items(), pos.BorrowTokens.Items()...)
	seen := make(map[string]bool, len(tokens))

	entries := make([]*Entry, 0, len(tokens))
	for _, token := range tokens {
		if seen[token] {
			continue
		}
		seen[token] = true

		e := &Entry{
			PositionID:     id.Position(uint64(pos.ID)),
			Token:          token,
			LendingShares:  number.ToDecimal(pos.LendingShares(token), 0),
			BorrowShares:   number.ToDecimal(pos.BorrowShares(token), 0),
			PureCollateral: number.ToDecimal(pos.PureCollateralOf(token), 0),
		}
		if l, ok := pos.Lending[token]; ok {
			e.Collateral = l.Collateral
		}

		entries = append(entries, e)
	}

	return entries
}

// Positions groups entries back into positions, ordered by id
func Positions(entries []*Entry) ([]*core.Position, error) {
	positions := make(map[core.PositionID]*core.Position)
	for _, e := range entries {
		n, err := id.ParsePosition(e.PositionID)
		if err != nil {
			return nil, err
		}

		pid := core.PositionID(n)
		pos, ok := positions[pid]
		if !ok {
			pos = core.NewPosition(pid)
			positions[pid] = pos
		}

		lending, err := number.Scale(e.LendingShares, 0)
		if err != nil {
			return nil, err
		}

		borrow, err := number.Scale(e.BorrowShares, 0)
		if err != nil {
			return nil, err
		}

		pure, err := number.Scale(e.PureCollateral, 0)
		if err != nil {
			return nil, err
		}

		pos.SetLendingShares(e.Token, lending)
		if l, ok := pos.Lending[e.Token]; ok {
			l.Collateral = e.Collateral
		}
		pos.SetBorrowShares(e.Token, borrow)
		pos.SetPureCollateral(e.Token, pure)
	}

	out := make([]*core.Position, 0, len(positions))
	for _, pos := range positions {
		out = append(out, pos)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})

	return out, nil
}

func (s *positionStore) Save(ctx context.Context, tx *db.DB, positions []*core.Position, locked []core.PositionID) error {
	if err := tx.Update().Delete(Entry{}).Error; err != nil {
		return err
	}

	for _, pos := range positions {
		for _, e := range Entries(pos) {
			if err := tx.Update().Create(e).Error; err != nil {
				return err
			}
		}
	}

	if err := tx.Update().Delete(Lock{}).Error; err != nil {
		return err
	}

	for _, pid := range locked {
		if err := tx.Update().Create(&Lock{PositionID: id.Position(uint64(pid))}).Error; err != nil {
			return err
		}
	}

	return nil
}

func (s *positionStore) All(ctx context.Context) ([]*core.Position, []core.PositionID, error) {
	var entries []*Entry
	if err := s.db.View().Order("id").Find(&entries).Error; err != nil {
		return nil, nil, err
	}

	positions, err := Positions(entries)
	if err != nil {
		return nil, nil, err
	}

	var locks []*Lock
	if err := s.db.View().Find(&locks).Error; err != nil {
		return nil, nil, err
	}

	locked := make([]core.PositionID, 0, len(locks))
	for _, l := range locks {
		n, err := id.ParsePosition(l.PositionID)
		if err != nil {
			return nil, nil, err
		}
		locked = append(locked, core.PositionID(n))
	}
	sort.Slice(locked, func(i, j int) bool {
		return locked[i] < locked[j]
	})

	return positions, locked, nil
}
