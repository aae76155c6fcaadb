package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"sync"
	"testing"
	"time"

	deskadapter "studydesk/internal/modules/desk/adapter/out"
	"studydesk/internal/modules/desk/domain"
	deskin "studydesk/internal/modules/desk/port/in"
	deskout "studydesk/internal/modules/desk/port/out"
	"studydesk/internal/modules/desk/service"
	"studydesk/internal/modules/desk/usecase"
	"studydesk/internal/platform/clock"
	"studydesk/internal/platform/future"
	"studydesk/internal/platform/logging"
)

const tenMiB = 10 * 1024 * 1024

var (
	errDiskFull = errors.New("disk full")
	testNow     = time.Date(2026, 10, 16, 9, 30, 0, 0, time.Local)
)

type memoryFields struct {
	mu     sync.Mutex
	values map[string]string
	writes []string
	fail   bool
}

func newMemoryFields() *memoryFields {
	return &memoryFields{values: map[string]string{}}
}

func (m *memoryFields) Get(_ context.Context, key, def string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.values[key]; ok {
		return v, nil
	}
	return def, nil
}

func (m *memoryFields) Set(_ context.Context, key, value string) error {
	return m.SetAll(context.Background(), map[string]string{key: value})
}

func (m *memoryFields) SetAll(_ context.Context, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errDiskFull
	}
	for k, v := range values {
		m.values[k] = v
		m.writes = append(m.writes, k+"="+v)
	}
	return nil
}

func (m *memoryFields) Close() error { return nil }

func (m *memoryFields) setFail(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = fail
}

func (m *memoryFields) value(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *memoryFields) writesFor(key string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []string{}
	prefix := key + "="
	for _, w := range m.writes {
		if len(w) >= len(prefix) && w[:len(prefix)] == prefix {
			out = append(out, w[len(prefix):])
		}
	}
	return out
}

// flakyRecords wraps a real record store and injects failures.
type flakyRecords struct {
	deskout.RecordStore

	mu          sync.Mutex
	openFails   map[string]int
	failWrites  bool
	collections map[string]*flakyCollection
}

func newFlakyRecords(inner deskout.RecordStore) *flakyRecords {
	return &flakyRecords{RecordStore: inner, openFails: map[string]int{}, collections: map[string]*flakyCollection{}}
}

func (f *flakyRecords) Open(ctx context.Context, name string) *future.Future[deskout.Collection] {
	f.mu.Lock()
	if f.openFails[name] > 0 {
		f.openFails[name]--
		f.mu.Unlock()
		return future.Failed[deskout.Collection](errDiskFull)
	}
	f.mu.Unlock()
	coll, err := f.RecordStore.Open(ctx, name).Await(ctx)
	if err != nil {
		return future.Failed[deskout.Collection](err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	wrapped := &flakyCollection{Collection: coll, parent: f}
	f.collections[name] = wrapped
	out := future.New[deskout.Collection]()
	out.Resolve(wrapped, nil)
	return out
}

func (f *flakyRecords) setFailWrites(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWrites = fail
}

func (f *flakyRecords) writesFail() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failWrites
}

type flakyCollection struct {
	deskout.Collection
	parent *flakyRecords
}

func (c *flakyCollection) Append(ctx context.Context, payload []byte) *future.Future[int64] {
	if c.parent.writesFail() {
		return future.Failed[int64](errDiskFull)
	}
	return c.Collection.Append(ctx, payload)
}

func (c *flakyCollection) Remove(ctx context.Context, id int64) *future.Future[struct{}] {
	if c.parent.writesFail() {
		return future.Failed[struct{}](errDiskFull)
	}
	return c.Collection.Remove(ctx, id)
}

func (c *flakyCollection) ReplaceAll(ctx context.Context, payloads [][]byte) *future.Future[[]int64] {
	if c.parent.writesFail() {
		return future.Failed[[]int64](errDiskFull)
	}
	return c.Collection.ReplaceAll(ctx, payloads)
}

type fakePages struct {
	total int
	err   error
}

func (f fakePages) CountPages(context.Context, string) (int, error) {
	return f.total, f.err
}

type recordingViewer struct {
	shown []domain.ReviewImage
}

func (v *recordingViewer) Show(_ context.Context, img domain.ReviewImage) error {
	v.shown = append(v.shown, img)
	return nil
}

type deps struct {
	fields  deskout.FieldStore
	records deskout.RecordStore
	pages   deskout.PageCounter
	viewer  deskout.ImageViewer
	opts    usecase.Options
}

func newController(t *testing.T, d deps) deskin.Usecase {
	t.Helper()
	if d.pages == nil {
		d.pages = fakePages{}
	}
	if d.viewer == nil {
		d.viewer = &recordingViewer{}
	}
	ctl := usecase.NewController(
		clock.Fixed(testNow),
		logging.Discard(),
		d.fields,
		d.records,
		service.NewImageService(clock.Fixed(testNow), tenMiB),
		d.pages,
		d.viewer,
		d.opts,
	)
	t.Cleanup(func() { _ = ctl.Close(context.Background()) })
	return ctl
}

// sqliteDeps opens both stores on files under dir so that a second
// controller over the same dir sees what the first one wrote.
func sqliteDeps(t *testing.T, dir string) deps {
	t.Helper()
	fields, err := deskadapter.NewSQLiteFieldStore(filepath.Join(dir, "fields.db"))
	if err != nil {
		t.Fatalf("open field store: %v", err)
	}
	return deps{
		fields:  fields,
		records: deskadapter.NewSQLiteRecordStore(filepath.Join(dir, "records.db")),
	}
}

func hydrated(t *testing.T, ctl deskin.Usecase) {
	t.Helper()
	if _, err := ctl.Hydrate(context.Background()); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{G: 255, A: 255})
	buf := bytes.Buffer{}
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func day(offset int) string {
	return domain.Midnight(testNow).AddDate(0, 0, offset).Format(domain.DateLayout)
}
