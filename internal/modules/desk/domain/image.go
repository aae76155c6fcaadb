package domain

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	apperrors "studydesk/internal/platform/errors"
)

// ReviewImage is one scrapbook entry. ID is assigned by the record store.
type ReviewImage struct {
	ID        int64
	Data      string
	Name      string
	MIME      string
	Size      int64
	Width     int
	Height    int
	CreatedAt time.Time
}

func EncodeDataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func DecodeDataURL(s string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, fmt.Errorf("%w: not a data url", apperrors.ErrInvalidInput)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: data url without payload", apperrors.ErrInvalidInput)
	}
	mimeType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return mimeType, []byte(payload), nil
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: decode data url: %v", apperrors.ErrInvalidInput, err)
	}
	return mimeType, raw, nil
}

func (i ReviewImage) Bytes() ([]byte, error) {
	_, raw, err := DecodeDataURL(i.Data)
	return raw, err
}
