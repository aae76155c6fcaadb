package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"studydesk/internal/modules/desk/domain"
	"studydesk/internal/modules/desk/dto"
	deskin "studydesk/internal/modules/desk/port/in"
	deskout "studydesk/internal/modules/desk/port/out"
	"studydesk/internal/modules/desk/service"
	"studydesk/internal/platform/clock"
	"studydesk/internal/platform/debounce"
	apperrors "studydesk/internal/platform/errors"
	"studydesk/internal/platform/logging"
)

const (
	defaultPanels        = 3
	defaultNotesDebounce = 800 * time.Millisecond
)

type Options struct {
	Panels        int
	NotesDebounce time.Duration
}

// Controller is the only writer to the field and record stores. It owns
// the in-memory mirror that every snapshot is rendered from.
type Controller struct {
	clock   clock.Clock
	log     logrus.FieldLogger
	fields  deskout.FieldStore
	records deskout.RecordStore
	images  *service.ImageService
	codec   service.RecordCodec
	pages   deskout.PageCounter
	viewer  deskout.ImageViewer
	notes   *debounce.Debouncer

	hydrateMu sync.Mutex

	mu          sync.Mutex
	state       domain.State
	editors     []*domain.Editor[domain.SchoolDraft]
	todos       deskout.Collection
	gallery     deskout.Collection
	hydrated    bool
	todosReady  bool
	imagesReady bool
	todosGen    uint64
	imagesGen   uint64
	notesDirty  bool
	unsaved     map[string]struct{}
	closed      bool
}

func NewController(
	clk clock.Clock,
	logger logrus.FieldLogger,
	fields deskout.FieldStore,
	records deskout.RecordStore,
	images *service.ImageService,
	pages deskout.PageCounter,
	viewer deskout.ImageViewer,
	opts Options,
) deskin.Usecase {
	return newController(clk, logger, fields, records, images, pages, viewer, opts)
}

func newController(
	clk clock.Clock,
	logger logrus.FieldLogger,
	fields deskout.FieldStore,
	records deskout.RecordStore,
	images *service.ImageService,
	pages deskout.PageCounter,
	viewer deskout.ImageViewer,
	opts Options,
) *Controller {
	if opts.Panels <= 0 {
		opts.Panels = defaultPanels
	}
	if opts.NotesDebounce <= 0 {
		opts.NotesDebounce = defaultNotesDebounce
	}
	if logger == nil {
		logger = logging.Discard()
	}
	editors := make([]*domain.Editor[domain.SchoolDraft], opts.Panels)
	for i := range editors {
		editors[i] = &domain.Editor[domain.SchoolDraft]{}
	}
	return &Controller{
		clock:   clk,
		log:     logger.WithField("component", "desk"),
		fields:  fields,
		records: records,
		images:  images,
		pages:   pages,
		viewer:  viewer,
		notes:   debounce.New(opts.NotesDebounce),
		state:   domain.NewState(opts.Panels),
		editors: editors,
		unsaved: map[string]struct{}{},
	}
}

// Hydrate reads every persisted field into the mirror, then opens and lists
// the record collections concurrently. Each collection becomes ready only
// once its own listing succeeds; a failed collection stays gated until the
// next Hydrate call.
func (c *Controller) Hydrate(ctx context.Context) (dto.Snapshot, error) {
	c.hydrateMu.Lock()
	defer c.hydrateMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return dto.Snapshot{}, fmt.Errorf("%w: controller closed", apperrors.ErrStoreUnavailable)
	}
	c.flushNotesLocked(ctx)
	fieldErr := c.loadFieldsLocked(ctx)
	todosGen, imagesGen := c.todosGen, c.imagesGen
	c.mu.Unlock()

	var g errgroup.Group
	g.Go(func() error {
		return c.hydrateTodos(ctx, todosGen)
	})
	g.Go(func() error {
		return c.hydrateImages(ctx, imagesGen)
	})
	recordErr := g.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	snap := c.snapshotLocked()
	if err := errors.Join(fieldErr, recordErr); err != nil {
		return snap, err
	}
	c.log.WithFields(logrus.Fields{
		"todos":  len(c.state.Todos),
		"images": len(c.state.Images),
	}).Debug("hydrated")
	return snap, nil
}

func (c *Controller) loadFieldsLocked(ctx context.Context) error {
	loc := c.clock.Now().Location()
	next := domain.NewState(len(c.state.Schools))
	read := func(key string) (string, error) {
		v, err := c.fields.Get(ctx, key, "")
		if err != nil {
			return "", fmt.Errorf("%w: read %s: %w", apperrors.ErrStoreUnavailable, key, err)
		}
		return v, nil
	}
	for i := range next.Schools {
		name, err := read(domain.SchoolNameKey(i + 1))
		if err != nil {
			c.log.WithError(err).Warn("field hydration failed")
			return err
		}
		date, err := read(domain.SchoolDateKey(i + 1))
		if err != nil {
			c.log.WithError(err).Warn("field hydration failed")
			return err
		}
		next.Schools[i] = domain.SchoolTarget{Name: name, ExamDate: domain.LoadExamDate(date, loc)}
	}
	values := map[string]string{}
	for _, key := range []string{domain.KeyMaterialName, domain.KeyMaterialTotal, domain.KeyMaterialCurrent, domain.KeyNotes} {
		v, err := read(key)
		if err != nil {
			c.log.WithError(err).Warn("field hydration failed")
			return err
		}
		values[key] = v
	}
	next.Material = domain.MaterialProgress{
		Name:        values[domain.KeyMaterialName],
		TotalPages:  domain.ParsePages(values[domain.KeyMaterialTotal]),
		CurrentPage: domain.ParsePages(values[domain.KeyMaterialCurrent]),
	}
	next.Notes = values[domain.KeyNotes]

	c.state.Schools = next.Schools
	c.state.Material = next.Material
	c.state.Notes = next.Notes
	for _, e := range c.editors {
		e.Cancel()
	}
	c.unsaved = map[string]struct{}{}
	c.hydrated = true
	return nil
}

func (c *Controller) openCollection(ctx context.Context, name string) (deskout.Collection, error) {
	coll, err := c.records.Open(ctx, name).Await(ctx)
	if err != nil {
		return nil, storeErr("open "+name, err)
	}
	return coll, nil
}

func (c *Controller) hydrateTodos(ctx context.Context, gen uint64) error {
	coll, err := c.openCollection(ctx, domain.CollectionTodos)
	if err != nil {
		c.log.WithError(err).Warn("todo hydration failed")
		return err
	}
	records, err := coll.ListAll(ctx).Await(ctx)
	if err != nil {
		err = storeErr("list todos", err)
		c.log.WithError(err).Warn("todo hydration failed")
		return err
	}
	items, err := c.codec.DecodeTodos(records)
	if err != nil {
		c.log.WithError(err).WithField("kept", len(items)).Warn("skipped unreadable todo records")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.todos = coll
	if c.todosGen == gen {
		c.state.Todos = domain.TodoList(items)
	}
	c.todosReady = true
	return nil
}

func (c *Controller) hydrateImages(ctx context.Context, gen uint64) error {
	coll, err := c.openCollection(ctx, domain.CollectionImages)
	if err != nil {
		c.log.WithError(err).Warn("image hydration failed")
		return err
	}
	records, err := coll.ListAll(ctx).Await(ctx)
	if err != nil {
		err = storeErr("list images", err)
		c.log.WithError(err).Warn("image hydration failed")
		return err
	}
	images, err := c.codec.DecodeImages(records)
	if err != nil {
		c.log.WithError(err).WithField("kept", len(images)).Warn("skipped unreadable image records")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gallery = coll
	if c.imagesGen == gen {
		c.state.Images = images
	}
	c.imagesReady = true
	return nil
}

func (c *Controller) Snapshot(_ context.Context) dto.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Close persists pending notes and releases both stores.
func (c *Controller) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.flushNotesLocked(ctx)
	c.closed = true
	return errors.Join(c.records.Close(), c.fields.Close())
}

// snapshotLocked re-runs every derived value against the current mirror.
func (c *Controller) snapshotLocked() dto.Snapshot {
	today := domain.Midnight(c.clock.Now())
	snap := dto.Snapshot{
		Today:        today,
		Hydrated:     c.hydrated,
		TodosReady:   c.todosReady,
		ImagesReady:  c.imagesReady,
		Countdowns:   make([]dto.Countdown, 0, len(c.state.Schools)),
		Todos:        make([]dto.Todo, 0, len(c.state.Todos)),
		OpenTodos:    c.state.Todos.Pending(),
		Images:       make([]dto.Image, 0, len(c.state.Images)),
		Notes:        c.state.Notes,
		NotesPending: c.notesDirty,
	}
	for i, school := range c.state.Schools {
		cd := dto.Countdown{
			Panel:         i + 1,
			Name:          school.Name,
			ExamDate:      school.DateString(),
			DaysRemaining: domain.DaysRemaining(school.ExamDate, today),
		}
		if draft, editing := c.editors[i].Draft(); editing {
			cd.Editing = true
			cd.DraftName = draft.Name
			cd.DraftDate = draft.Date
		}
		snap.Countdowns = append(snap.Countdowns, cd)
	}

	days := domain.DaysRemaining(c.state.Primary().ExamDate, today)
	pace := domain.ComputePace(c.state.Material, days)
	snap.Material = dto.Material{
		Name:           c.state.Material.Name,
		TotalPages:     c.state.Material.TotalPages,
		CurrentPage:    c.state.Material.CurrentPage,
		DaysRemaining:  days,
		RemainingPages: pace.RemainingPages,
		PagesPerDay:    pace.PagesPerDay,
		Percent:        pace.Percent,
		Completed:      pace.Completed,
	}

	for i, item := range c.state.Todos {
		snap.Todos = append(snap.Todos, dto.Todo{Index: i + 1, Text: item.Text, Completed: item.Completed})
	}
	for _, img := range c.state.Images {
		snap.Images = append(snap.Images, toImageDTO(img))
	}
	for key := range c.unsaved {
		snap.Unsaved = append(snap.Unsaved, key)
	}
	sort.Strings(snap.Unsaved)
	return snap
}

// writeFieldsLocked persists values in one transaction. A failure is not
// returned: the mirror keeps the new values and the keys are reported as
// unsaved until a later write succeeds.
func (c *Controller) writeFieldsLocked(ctx context.Context, values map[string]string) {
	var err error
	if len(values) == 1 {
		for key, value := range values {
			err = c.fields.Set(ctx, key, value)
		}
	} else {
		err = c.fields.SetAll(ctx, values)
	}
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	if err != nil {
		c.log.WithError(err).WithField("keys", keys).Warn("field write failed")
		for _, key := range keys {
			c.unsaved[key] = struct{}{}
		}
		return
	}
	for _, key := range keys {
		delete(c.unsaved, key)
	}
}

func storeErr(op string, err error) error {
	if errors.Is(err, apperrors.ErrStoreUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", apperrors.ErrStoreUnavailable, op, err)
}

func toImageDTO(img domain.ReviewImage) dto.Image {
	return dto.Image{
		ID:        img.ID,
		Name:      img.Name,
		MIME:      img.MIME,
		Size:      img.Size,
		Width:     img.Width,
		Height:    img.Height,
		CreatedAt: img.CreatedAt,
	}
}
