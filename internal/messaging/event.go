package messaging

import "time"

// ActivityEvent announces newly published course content.
type ActivityEvent struct {
	Kind       string    `json:"kind"`
	CourseID   int       `json:"courseId"`
	Title      string    `json:"title"`
	OccurredAt time.Time `json:"occurredAt"`
}
