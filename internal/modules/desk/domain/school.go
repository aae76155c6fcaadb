package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	apperrors "studydesk/internal/platform/errors"
)

const DateLayout = "2006-01-02"

// SchoolTarget is one countdown panel. A zero ExamDate means no date set.
type SchoolTarget struct {
	Name     string
	ExamDate time.Time
}

// SchoolDraft holds the raw form values while a panel is being edited.
type SchoolDraft struct {
	Name string
	Date string
}

func (s SchoolTarget) HasDate() bool {
	return !s.ExamDate.IsZero()
}

func (s SchoolTarget) DateString() string {
	if s.ExamDate.IsZero() {
		return ""
	}
	return s.ExamDate.Format(DateLayout)
}

func (s SchoolTarget) Draft() SchoolDraft {
	return SchoolDraft{Name: s.Name, Date: s.DateString()}
}

var isoShaped = regexp.MustCompile(`^\d{4}[-/]\d{1,2}[-/]\d{1,2}$`)

var dateParser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// ParseExamDate accepts ISO dates (2006-01-02 or 2006/01/02) and English
// phrases such as "next friday" or "in 30 days", resolved against now. A
// phrase must make up the whole input.
// Blank input yields the zero time. Results are local midnight.
func ParseExamDate(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{DateLayout, "2006/01/02"} {
		if t, err := time.ParseInLocation(layout, raw, now.Location()); err == nil {
			return Midnight(t), nil
		}
	}
	if isoShaped.MatchString(raw) {
		return time.Time{}, fmt.Errorf("%w: no such date %q", apperrors.ErrInvalidInput, raw)
	}
	res, err := dateParser.Parse(raw, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: parse date %q: %v", apperrors.ErrInvalidInput, raw, err)
	}
	// A phrase matched inside longer text is not a date.
	if res == nil || res.Index != 0 || len(res.Text) != len(raw) {
		return time.Time{}, fmt.Errorf("%w: unrecognized date %q", apperrors.ErrInvalidInput, raw)
	}
	return Midnight(res.Time.In(now.Location())), nil
}

// LoadExamDate reads a persisted date value. Unparseable values read as no date.
func LoadExamDate(raw string, loc *time.Location) time.Time {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(raw), loc)
	if err != nil {
		return time.Time{}
	}
	return t
}
