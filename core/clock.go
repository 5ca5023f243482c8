package core

import "time"

// Clock global time source, ledger timestamps are unix seconds
type Clock interface {
	Now() time.Time
}
