package assignment

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/notashwinii/kucms-backend/internal/course"
	"github.com/notashwinii/kucms-backend/internal/user"
)

type Assignment struct {
	bun.BaseModel `bun:"table:assignments,alias:a"`

	ID          int            `bun:"id,pk,autoincrement" json:"id"`
	CourseID    int            `bun:"course_id,notnull" json:"courseId" validate:"required"`
	Title       string         `bun:"title,notnull" json:"title" validate:"required"`
	Description string         `bun:"description" json:"description"`
	FileURL     string         `bun:"file_url,nullzero" json:"fileUrl,omitempty"`
	DueDate     time.Time      `bun:"due_date,notnull" json:"dueDate" validate:"required"`
	CreatedAt   time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	Course      *course.Course `bun:"rel:belongs-to,join:course_id=id,on_delete:CASCADE" json:"course,omitempty"`
}

// Comment is immutable once created; there is no edit endpoint.
type Comment struct {
	bun.BaseModel `bun:"table:assignment_comments,alias:ac"`

	ID           int         `bun:"id,pk,autoincrement" json:"id"`
	AssignmentID int         `bun:"assignment_id,notnull" json:"assignmentId"`
	UserID       int         `bun:"user_id,notnull" json:"userId"`
	Comment      string      `bun:"comment,notnull" json:"comment" validate:"required"`
	CreatedAt    time.Time   `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	Assignment   *Assignment `bun:"rel:belongs-to,join:assignment_id=id,on_delete:CASCADE" json:"-"`
	User         *user.User  `bun:"rel:belongs-to,join:user_id=id,on_delete:CASCADE" json:"user,omitempty"`
}
