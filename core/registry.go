package core

import "context"

// PositionRegistry issues position ids and tracks their holders
type PositionRegistry interface {
	OwnerOf(ctx context.Context, id PositionID) (string, error)
}
