package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	"studydesk/internal/modules/desk/domain"
	deskout "studydesk/internal/modules/desk/port/out"
)

type todoRecord struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

type imageRecord struct {
	Data      string    `json:"data"`
	Name      string    `json:"name"`
	MIME      string    `json:"mime"`
	Size      int64     `json:"size"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Timestamp time.Time `json:"timestamp"`
}

// RecordCodec maps domain values to record store payloads.
type RecordCodec struct{}

func (RecordCodec) EncodeTodos(items []domain.TodoItem) ([][]byte, error) {
	out := make([][]byte, 0, len(items))
	for _, item := range items {
		b, err := sonic.Marshal(todoRecord{Text: item.Text, Completed: item.Completed})
		if err != nil {
			return nil, fmt.Errorf("encode todo: %w", err)
		}
		out = append(out, b)
	}
	return out, nil
}

// DecodeTodos decodes every readable record. Records that fail to decode
// are skipped and reported together in the returned error.
func (RecordCodec) DecodeTodos(records []deskout.Record) ([]domain.TodoItem, error) {
	out := make([]domain.TodoItem, 0, len(records))
	var skipped []error
	for _, rec := range records {
		var r todoRecord
		if err := sonic.Unmarshal(rec.Payload, &r); err != nil {
			skipped = append(skipped, fmt.Errorf("decode todo %d: %w", rec.ID, err))
			continue
		}
		out = append(out, domain.TodoItem{Text: r.Text, Completed: r.Completed})
	}
	return out, errors.Join(skipped...)
}

func (RecordCodec) EncodeImage(img domain.ReviewImage) ([]byte, error) {
	b, err := sonic.Marshal(imageRecord{
		Data:      img.Data,
		Name:      img.Name,
		MIME:      img.MIME,
		Size:      img.Size,
		Width:     img.Width,
		Height:    img.Height,
		Timestamp: img.CreatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return b, nil
}

// DecodeImages works like DecodeTodos. Identity always comes from the store.
func (RecordCodec) DecodeImages(records []deskout.Record) ([]domain.ReviewImage, error) {
	out := make([]domain.ReviewImage, 0, len(records))
	var skipped []error
	for _, rec := range records {
		var r imageRecord
		if err := sonic.Unmarshal(rec.Payload, &r); err != nil {
			skipped = append(skipped, fmt.Errorf("decode image %d: %w", rec.ID, err))
			continue
		}
		created := r.Timestamp
		if created.IsZero() {
			created = rec.CreatedAt
		}
		out = append(out, domain.ReviewImage{
			ID:        rec.ID,
			Data:      r.Data,
			Name:      r.Name,
			MIME:      r.MIME,
			Size:      r.Size,
			Width:     r.Width,
			Height:    r.Height,
			CreatedAt: created,
		})
	}
	return out, errors.Join(skipped...)
}
