package ports

import "context"

// Port: persistent storage for matrices keyed by route group.
type MatrixCache interface {
	// Return the cached matrix for key; ok is false on a miss.
	Get(ctx context.Context, key string) (matrix [][]int64, ok bool, err error)
	// Store matrix under key, replacing any previous value.
	Put(ctx context.Context, key string, matrix [][]int64) error
}
