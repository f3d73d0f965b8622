package student

import (
	"github.com/uptrace/bun"

	"github.com/notashwinii/kucms-backend/internal/academic"
	"github.com/notashwinii/kucms-backend/internal/user"
)

type Student struct {
	bun.BaseModel `bun:"table:students,alias:s"`

	ID                 int               `bun:"id,pk,autoincrement" json:"id"`
	UserID             int               `bun:"user_id,unique,notnull" json:"userId" validate:"required"`
	RegistrationNumber string            `bun:"registration_number,unique,notnull" json:"registrationNumber" validate:"required"`
	ProgramID          int               `bun:"program_id,notnull" json:"programId" validate:"required"`
	CurrentSemester    int               `bun:"current_semester,notnull,default:1" json:"currentSemester"`
	User               *user.User        `bun:"rel:belongs-to,join:user_id=id,on_delete:CASCADE" json:"user,omitempty"`
	Program            *academic.Program `bun:"rel:belongs-to,join:program_id=id,on_delete:CASCADE" json:"program,omitempty"`
}
