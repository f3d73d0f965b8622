package grade

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notashwinii/kucms-backend/internal/academic"
	"github.com/notashwinii/kucms-backend/internal/access"
	"github.com/notashwinii/kucms-backend/internal/course"
	"github.com/notashwinii/kucms-backend/internal/faculty"
	"github.com/notashwinii/kucms-backend/internal/student"
	"github.com/notashwinii/kucms-backend/internal/testutil"
	"github.com/notashwinii/kucms-backend/internal/user"
)

func seedCourse(t *testing.T, pg *testutil.PostgresContainer) (courseID, studentID int) {
	t.Helper()
	ctx := context.Background()

	school := &academic.School{Name: "School of Management"}
	_, err := pg.DB.NewInsert().Model(school).Exec(ctx)
	require.NoError(t, err)
	dept := &academic.Department{Name: "MBA", SchoolID: school.ID}
	_, err = pg.DB.NewInsert().Model(dept).Exec(ctx)
	require.NoError(t, err)
	program := &academic.Program{Name: "BBA", DepartmentID: dept.ID}
	_, err = pg.DB.NewInsert().Model(program).Exec(ctx)
	require.NoError(t, err)
	class := &academic.Class{ProgramID: program.ID, Semester: 2, AcademicYear: "2026"}
	_, err = pg.DB.NewInsert().Model(class).Exec(ctx)
	require.NoError(t, err)

	facultyUser := &user.User{Email: "prof@ku.edu.np", Password: "x", Role: user.RoleFaculty, IsActive: true}
	_, err = pg.DB.NewInsert().Model(facultyUser).Exec(ctx)
	require.NoError(t, err)
	f := &faculty.Faculty{UserID: facultyUser.ID, DepartmentID: dept.ID, Rank: faculty.RankProfessor}
	_, err = pg.DB.NewInsert().Model(f).Exec(ctx)
	require.NoError(t, err)

	studentUser := &user.User{Email: "stud@ku.edu.np", Password: "x", Role: user.RoleStudent, IsActive: true}
	_, err = pg.DB.NewInsert().Model(studentUser).Exec(ctx)
	require.NoError(t, err)
	s := &student.Student{UserID: studentUser.ID, RegistrationNumber: "REG1", ProgramID: program.ID, CurrentSemester: 2}
	_, err = pg.DB.NewInsert().Model(s).Exec(ctx)
	require.NoError(t, err)

	c := &course.Course{Name: "Accounting", Code: "ACC101", ClassID: class.ID, FacultyID: f.ID}
	_, err = pg.DB.NewInsert().Model(c).Exec(ctx)
	require.NoError(t, err)

	return c.ID, s.ID
}

func TestGradeRepository(t *testing.T) {
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
		(*Grade)(nil),
	)

	repo := NewRepository(pg.DB)
	ctx := context.Background()
	allTables := []string{"grades", "courses", "students", "faculty", "classes", "programs", "departments", "schools", "users"}

	t.Run("RoundTrip", func(t *testing.T) {
		testutil.CleanupTables(t, pg.DB, allTables...)
		courseID, studentID := seedCourse(t, pg)

		created, err := repo.Create(ctx, &Grade{
			CourseID:      courseID,
			StudentID:     studentID,
			Label:         "Midterm",
			MarksObtained: 45,
			TotalMarks:    50,
			Remarks:       "solid work",
			Date:          time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		require.NotZero(t, created.ID)

		got, err := repo.GetByID(ctx, access.Unrestricted(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Midterm", got.Label)
		assert.Equal(t, 45.0, got.MarksObtained)
		assert.Equal(t, 50.0, got.TotalMarks)
		assert.Equal(t, "solid work", got.Remarks)
		assert.InDelta(t, 90.0, got.Percentage(), 0.001)
	})

	t.Run("BulkCreate_AllRows", func(t *testing.T) {
		testutil.CleanupTables(t, pg.DB, allTables...)
		courseID, studentID := seedCourse(t, pg)

		rows := []Grade{
			{CourseID: courseID, StudentID: studentID, Label: "Quiz 1", MarksObtained: 8, TotalMarks: 10, Date: time.Now()},
			{CourseID: courseID, StudentID: studentID, Label: "Quiz 2", MarksObtained: 9, TotalMarks: 10, Date: time.Now()},
		}
		require.NoError(t, repo.BulkCreate(ctx, rows))

		count, err := pg.DB.NewSelect().Model((*Grade)(nil)).Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("StudentScope_SeesOnlyOwnRows", func(t *testing.T) {
		testutil.CleanupTables(t, pg.DB, allTables...)
		courseID, studentID := seedCourse(t, pg)

		_, err := repo.Create(ctx, &Grade{
			CourseID: courseID, StudentID: studentID, Label: "Final",
			MarksObtained: 70, TotalMarks: 100, Date: time.Now(),
		})
		require.NoError(t, err)

		visible, err := repo.GetAll(ctx, access.ForStudent(studentID, 0, 0))
		require.NoError(t, err)
		assert.Len(t, visible, 1)

		invisible, err := repo.GetAll(ctx, access.ForStudent(studentID+1, 0, 0))
		require.NoError(t, err)
		assert.Empty(t, invisible)
	})
}
