package faculty

import (
	"github.com/uptrace/bun"

	"github.com/notashwinii/kucms-backend/internal/academic"
	"github.com/notashwinii/kucms-backend/internal/user"
)

// Rank mirrors the faculty_type tags of the enrollment records.
type Rank string

const (
	RankLecturer           Rank = "lecturer"
	RankAssistantProfessor Rank = "assistant_professor"
	RankProfessor          Rank = "professor"
)

type Faculty struct {
	bun.BaseModel `bun:"table:faculty,alias:f"`

	ID           int                  `bun:"id,pk,autoincrement" json:"id"`
	UserID       int                  `bun:"user_id,unique,notnull" json:"userId" validate:"required"`
	DepartmentID int                  `bun:"department_id,notnull" json:"departmentId" validate:"required"`
	Rank         Rank                 `bun:"rank,notnull" json:"rank" validate:"required,oneof=lecturer assistant_professor professor"`
	User         *user.User           `bun:"rel:belongs-to,join:user_id=id,on_delete:CASCADE" json:"user,omitempty"`
	Department   *academic.Department `bun:"rel:belongs-to,join:department_id=id,on_delete:CASCADE" json:"department,omitempty"`
}
