package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notashwinii/kucms-backend/internal/academic"
	"github.com/notashwinii/kucms-backend/internal/access"
	"github.com/notashwinii/kucms-backend/internal/course"
	"github.com/notashwinii/kucms-backend/internal/db"
	"github.com/notashwinii/kucms-backend/internal/faculty"
	"github.com/notashwinii/kucms-backend/internal/student"
	"github.com/notashwinii/kucms-backend/internal/testutil"
	"github.com/notashwinii/kucms-backend/internal/user"
)

type fixture struct {
	courseID  int
	studentID int
}

func seedCourse(t *testing.T, pg *testutil.PostgresContainer) fixture {
	t.Helper()
	ctx := context.Background()

	school := &academic.School{Name: "School of Engineering"}
	_, err := pg.DB.NewInsert().Model(school).Exec(ctx)
	require.NoError(t, err)
	dept := &academic.Department{Name: "DoCSE", SchoolID: school.ID}
	_, err = pg.DB.NewInsert().Model(dept).Exec(ctx)
	require.NoError(t, err)
	program := &academic.Program{Name: "Computer Engineering", DepartmentID: dept.ID}
	_, err = pg.DB.NewInsert().Model(program).Exec(ctx)
	require.NoError(t, err)
	class := &academic.Class{ProgramID: program.ID, Semester: 3, AcademicYear: "2026"}
	_, err = pg.DB.NewInsert().Model(class).Exec(ctx)
	require.NoError(t, err)

	facultyUser := &user.User{Email: "prof@ku.edu.np", Password: "x", Role: user.RoleFaculty, IsActive: true}
	_, err = pg.DB.NewInsert().Model(facultyUser).Exec(ctx)
	require.NoError(t, err)
	f := &faculty.Faculty{UserID: facultyUser.ID, DepartmentID: dept.ID, Rank: faculty.RankLecturer}
	_, err = pg.DB.NewInsert().Model(f).Exec(ctx)
	require.NoError(t, err)

	studentUser := &user.User{Email: "stud@ku.edu.np", Password: "x", Role: user.RoleStudent, IsActive: true}
	_, err = pg.DB.NewInsert().Model(studentUser).Exec(ctx)
	require.NoError(t, err)
	s := &student.Student{UserID: studentUser.ID, RegistrationNumber: "REG1", ProgramID: program.ID, CurrentSemester: 3}
	_, err = pg.DB.NewInsert().Model(s).Exec(ctx)
	require.NoError(t, err)

	c := &course.Course{Name: "Data Structures", Code: "COMP202", ClassID: class.ID, FacultyID: f.ID}
	_, err = pg.DB.NewInsert().Model(c).Exec(ctx)
	require.NoError(t, err)

	return fixture{courseID: c.ID, studentID: s.ID}
}

func TestAttendanceRepository(t *testing.T) {
	pg := testutil.SetupSharedPostgres(t)
	defer pg.Cleanup(t)

	pg.RunMigrations(t,
		(*user.User)(nil),
		(*academic.School)(nil),
		(*academic.Department)(nil),
		(*academic.Program)(nil),
		(*academic.Class)(nil),
		(*faculty.Faculty)(nil),
		(*student.Student)(nil),
		(*course.Course)(nil),
		(*Attendance)(nil),
	)

	repo := NewRepository(pg.DB)
	ctx := context.Background()
	allTables := []string{"attendance", "courses", "students", "faculty", "classes", "programs", "departments", "schools", "users"}

	t.Run("DuplicateDay_Conflicts", func(t *testing.T) {
		testutil.CleanupTables(t, pg.DB, allTables...)
		fix := seedCourse(t, pg)

		day := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
		first, err := repo.Create(ctx, &Attendance{
			CourseID: fix.courseID, StudentID: fix.studentID, Date: day, Present: true,
		})
		require.NoError(t, err)

		_, err = repo.Create(ctx, &Attendance{
			CourseID: fix.courseID, StudentID: fix.studentID, Date: day, Present: false,
		})
		require.Error(t, err)
		assert.True(t, db.IsUniqueViolation(err))

		// The first mark is untouched.
		got, err := repo.GetByID(ctx, access.Unrestricted(), first.ID)
		require.NoError(t, err)
		assert.True(t, got.Present)
	})

	t.Run("BulkCreate_DuplicateAbortsBatch", func(t *testing.T) {
		testutil.CleanupTables(t, pg.DB, allTables...)
		fix := seedCourse(t, pg)

		day := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
		err := repo.BulkCreate(ctx, []Attendance{
			{CourseID: fix.courseID, StudentID: fix.studentID, Date: day, Present: true},
			{CourseID: fix.courseID, StudentID: fix.studentID, Date: day, Present: false},
		})
		require.Error(t, err)
		assert.True(t, db.IsUniqueViolation(err))

		// The batch is one statement; nothing from it is committed.
		count, err := pg.DB.NewSelect().Model((*Attendance)(nil)).Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("StudentScope_SeesOnlyOwnRows", func(t *testing.T) {
		testutil.CleanupTables(t, pg.DB, allTables...)
		fix := seedCourse(t, pg)

		otherUser := &user.User{Email: "other@ku.edu.np", Password: "x", Role: user.RoleStudent, IsActive: true}
		_, err := pg.DB.NewInsert().Model(otherUser).Exec(ctx)
		require.NoError(t, err)
		var programID int
		err = pg.DB.NewSelect().Model((*student.Student)(nil)).Column("s.program_id").
			Where("s.id = ?", fix.studentID).Scan(ctx, &programID)
		require.NoError(t, err)
		other := &student.Student{UserID: otherUser.ID, RegistrationNumber: "REG2", ProgramID: programID, CurrentSemester: 3}
		_, err = pg.DB.NewInsert().Model(other).Exec(ctx)
		require.NoError(t, err)

		day := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)
		require.NoError(t, repo.BulkCreate(ctx, []Attendance{
			{CourseID: fix.courseID, StudentID: fix.studentID, Date: day, Present: true},
			{CourseID: fix.courseID, StudentID: other.ID, Date: day, Present: true},
		}))

		mine, err := repo.GetAll(ctx, access.ForStudent(fix.studentID, programID, 3))
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, fix.studentID, mine[0].StudentID)
	})
}
