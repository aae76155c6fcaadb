package dto

import "time"

type SchoolInput struct {
	Panel int
	Name  string
	Date  string
}

type AddImageInput struct {
	Name string
	Data []byte
}

type Countdown struct {
	Panel         int
	Name          string
	ExamDate      string
	DaysRemaining int
	Editing       bool
	DraftName     string
	DraftDate     string
}

type Todo struct {
	Index     int
	Text      string
	Completed bool
}

type Material struct {
	Name           string
	TotalPages     int
	CurrentPage    int
	DaysRemaining  int
	RemainingPages int
	PagesPerDay    int
	Percent        int
	Completed      bool
}

type Image struct {
	ID        int64
	Name      string
	MIME      string
	Size      int64
	Width     int
	Height    int
	CreatedAt time.Time
}

type ImageDetail struct {
	Image
	Data []byte
}

type AddImageOutput struct {
	Image    Image
	Snapshot Snapshot
}

// Snapshot is the rendered view of the mirror plus freshly derived values.
type Snapshot struct {
	Today        time.Time
	Hydrated     bool
	TodosReady   bool
	ImagesReady  bool
	Countdowns   []Countdown
	Todos        []Todo
	OpenTodos    int
	Material     Material
	Images       []Image
	Notes        string
	NotesPending bool
	Unsaved      []string
}
