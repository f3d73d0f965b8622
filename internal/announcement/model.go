package announcement

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/notashwinii/kucms-backend/internal/course"
	"github.com/notashwinii/kucms-backend/internal/user"
)

type Announcement struct {
	bun.BaseModel `bun:"table:announcements,alias:ann"`

	ID        int            `bun:"id,pk,autoincrement" json:"id"`
	CourseID  int            `bun:"course_id,notnull" json:"courseId" validate:"required"`
	Title     string         `bun:"title,notnull" json:"title" validate:"required"`
	Content   string         `bun:"content,notnull" json:"content" validate:"required"`
	CreatedAt time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	Course    *course.Course `bun:"rel:belongs-to,join:course_id=id,on_delete:CASCADE" json:"course,omitempty"`
}

// Comment is immutable once created; there is no edit endpoint.
type Comment struct {
	bun.BaseModel `bun:"table:announcement_comments,alias:anc"`

	ID             int           `bun:"id,pk,autoincrement" json:"id"`
	AnnouncementID int           `bun:"announcement_id,notnull" json:"announcementId"`
	UserID         int           `bun:"user_id,notnull" json:"userId"`
	Comment        string        `bun:"comment,notnull" json:"comment" validate:"required"`
	CreatedAt      time.Time     `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	Announcement   *Announcement `bun:"rel:belongs-to,join:announcement_id=id,on_delete:CASCADE" json:"-"`
	User           *user.User    `bun:"rel:belongs-to,join:user_id=id,on_delete:CASCADE" json:"user,omitempty"`
}
