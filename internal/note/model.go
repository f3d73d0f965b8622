package note

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/notashwinii/kucms-backend/internal/course"
)

// Note is lecture material published to a course. Unlike assignments the
// attachment is mandatory.
type Note struct {
	bun.BaseModel `bun:"table:notes,alias:n"`

	ID          int            `bun:"id,pk,autoincrement" json:"id"`
	CourseID    int            `bun:"course_id,notnull" json:"courseId" validate:"required"`
	Title       string         `bun:"title,notnull" json:"title" validate:"required"`
	Description string         `bun:"description" json:"description"`
	FileURL     string         `bun:"file_url,notnull" json:"fileUrl"`
	CreatedAt   time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	Course      *course.Course `bun:"rel:belongs-to,join:course_id=id,on_delete:CASCADE" json:"course,omitempty"`
}
