package service_test

import (
	"testing"
	"time"

	"studydesk/internal/modules/desk/domain"
	deskout "studydesk/internal/modules/desk/port/out"
	"studydesk/internal/modules/desk/service"
)

func TestDecodeImagesTakesIdentityFromStore(t *testing.T) {
	t.Parallel()
	codec := service.RecordCodec{}
	payload, err := codec.EncodeImage(domain.ReviewImage{ID: 99, Name: "a.png", MIME: "image/png", Data: "data:image/png;base64,AA=="})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	stored := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	images, err := codec.DecodeImages([]deskout.Record{{ID: 7, Payload: payload, CreatedAt: stored}})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(images) != 1 || images[0].ID != 7 || images[0].Name != "a.png" {
		t.Fatalf("unexpected decode: %+v", images)
	}
	if !images[0].CreatedAt.Equal(stored) {
		t.Fatalf("missing timestamp should fall back to store time, got %v", images[0].CreatedAt)
	}
}

func TestDecodeSkipsCorruptPayloads(t *testing.T) {
	t.Parallel()
	codec := service.RecordCodec{}
	todos, err := codec.DecodeTodos([]deskout.Record{
		{ID: 1, Payload: []byte("{nope")},
		{ID: 2, Payload: []byte(`{"text":"read ch. 4","completed":true}`)},
	})
	if err == nil {
		t.Fatalf("expected the corrupt todo to be reported")
	}
	if len(todos) != 1 || todos[0].Text != "read ch. 4" || !todos[0].Completed {
		t.Fatalf("readable todo should survive, got %+v", todos)
	}

	good, err := codec.EncodeImage(domain.ReviewImage{Name: "b.png", MIME: "image/png", Data: "data:image/png;base64,AA=="})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	images, err := codec.DecodeImages([]deskout.Record{
		{ID: 3, Payload: []byte("{not json")},
		{ID: 4, Payload: good},
	})
	if err == nil {
		t.Fatalf("expected the corrupt image to be reported")
	}
	if len(images) != 1 || images[0].ID != 4 {
		t.Fatalf("readable image should survive, got %+v", images)
	}
}
