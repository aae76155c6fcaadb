package out

import (
	"context"
	"fmt"

	deskout "studydesk/internal/modules/desk/port/out"
	apperrors "studydesk/internal/platform/errors"
	"rsc.io/pdf"
)

type PDFPageCounter struct{}

func NewPDFPageCounter() deskout.PageCounter {
	return &PDFPageCounter{}
}

// CountPages reads the page tree of the PDF at path. Malformed files are
// reported as invalid input instead of crashing the reader.
func (c *PDFPageCounter) CountPages(_ context.Context, path string) (total int, err error) {
	defer func() {
		if r := recover(); r != nil {
			total = 0
			err = fmt.Errorf("%w: read pdf %s: %v", apperrors.ErrInvalidInput, path, r)
		}
	}()
	doc, err := pdf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("%w: open pdf: %v", apperrors.ErrInvalidInput, err)
	}
	return doc.NumPage(), nil
}
