package out

import (
	"context"
	"time"

	"studydesk/internal/modules/desk/domain"
	"studydesk/internal/platform/future"
)

// FieldStore is synchronous key-value persistence for scalar fields.
type FieldStore interface {
	Get(ctx context.Context, key, def string) (string, error)
	Set(ctx context.Context, key, value string) error
	// SetAll writes every pair or none of them.
	SetAll(ctx context.Context, values map[string]string) error
	Close() error
}

type Record struct {
	ID        int64
	Payload   []byte
	CreatedAt time.Time
}

// Collection operations resolve after commit. Operations on one collection
// apply in submission order; nothing orders operations across collections.
type Collection interface {
	Name() string
	Append(ctx context.Context, payload []byte) *future.Future[int64]
	ListAll(ctx context.Context) *future.Future[[]Record]
	Remove(ctx context.Context, id int64) *future.Future[struct{}]
	ReplaceAll(ctx context.Context, payloads [][]byte) *future.Future[[]int64]
}

type RecordStore interface {
	Open(ctx context.Context, name string) *future.Future[Collection]
	Close() error
}

type PageCounter interface {
	CountPages(ctx context.Context, path string) (int, error)
}

type ImageViewer interface {
	Show(ctx context.Context, image domain.ReviewImage) error
}
