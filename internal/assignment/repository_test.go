package assignment

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

// twoCohorts seeds two (program, semester) cohorts with one course and one
// faculty each.
type twoCohorts struct {
	programID            int
	facultyA, facultyB   int
	courseA, courseB     int
	semesterA, semesterB int
}

func seedTwoCohorts(t *testing.T, pg *testutil.PostgresContainer) twoCohorts {
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

	classA := &academic.Class{ProgramID: program.ID, Semester: 3, AcademicYear: "2026"}
	_, err = pg.DB.NewInsert().Model(classA).Exec(ctx)
	require.NoError(t, err)
	classB := &academic.Class{ProgramID: program.ID, Semester: 4, AcademicYear: "2026"}
	_, err = pg.DB.NewInsert().Model(classB).Exec(ctx)
	require.NoError(t, err)

	userA := &user.User{Email: "profa@ku.edu.np", Password: "x", Role: user.RoleFaculty, IsActive: true}
	_, err = pg.DB.NewInsert().Model(userA).Exec(ctx)
	require.NoError(t, err)
	facA := &faculty.Faculty{UserID: userA.ID, DepartmentID: dept.ID, Rank: faculty.RankLecturer}
	_, err = pg.DB.NewInsert().Model(facA).Exec(ctx)
	require.NoError(t, err)

	userB := &user.User{Email: "profb@ku.edu.np", Password: "x", Role: user.RoleFaculty, IsActive: true}
	_, err = pg.DB.NewInsert().Model(userB).Exec(ctx)
	require.NoError(t, err)
	facB := &faculty.Faculty{UserID: userB.ID, DepartmentID: dept.ID, Rank: faculty.RankProfessor}
	_, err = pg.DB.NewInsert().Model(facB).Exec(ctx)
	require.NoError(t, err)

	courseA := &course.Course{Name: "Data Structures", Code: "COMP202", ClassID: classA.ID, FacultyID: facA.ID}
	_, err = pg.DB.NewInsert().Model(courseA).Exec(ctx)
	require.NoError(t, err)
	courseB := &course.Course{Name: "Operating Systems", Code: "COMP307", ClassID: classB.ID, FacultyID: facB.ID}
	_, err = pg.DB.NewInsert().Model(courseB).Exec(ctx)
	require.NoError(t, err)

	return twoCohorts{
		programID: program.ID,
		facultyA:  facA.ID, facultyB: facB.ID,
		courseA: courseA.ID, courseB: courseB.ID,
		semesterA: 3, semesterB: 4,
	}
}

func TestAssignmentRepository(t *testing.T) {
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
		(*Assignment)(nil),
		(*Comment)(nil),
	)

	repo := NewRepository(pg.DB)
	ctx := context.Background()
	allTables := []string{"assignment_comments", "assignments", "courses", "students", "faculty", "classes", "programs", "departments", "schools", "users"}

	due := time.Now().Add(7 * 24 * time.Hour)

	t.Run("Visibility", func(t *testing.T) {
		testutil.CleanupTables(t, pg.DB, allTables...)
		fix := seedTwoCohorts(t, pg)

		inA, err := repo.Create(ctx, &Assignment{CourseID: fix.courseA, Title: "Linked Lists", DueDate: due})
		require.NoError(t, err)
		inB, err := repo.Create(ctx, &Assignment{CourseID: fix.courseB, Title: "Scheduling", DueDate: due})
		require.NoError(t, err)

		// A semester-3 student sees exactly cohort A's assignments.
		visible, err := repo.GetAll(ctx, access.ForStudent(1, fix.programID, fix.semesterA))
		require.NoError(t, err)
		require.Len(t, visible, 1)
		assert.Equal(t, inA.ID, visible[0].ID)

		// Faculty B sees exactly their own course's assignments.
		visible, err = repo.GetAll(ctx, access.ForFaculty(fix.facultyB))
		require.NoError(t, err)
		require.Len(t, visible, 1)
		assert.Equal(t, inB.ID, visible[0].ID)

		// Admins see everything.
		visible, err = repo.GetAll(ctx, access.Unrestricted())
		require.NoError(t, err)
		assert.Len(t, visible, 2)
	})

	t.Run("GetByID_OutOfScopeLooksMissing", func(t *testing.T) {
		testutil.CleanupTables(t, pg.DB, allTables...)
		fix := seedTwoCohorts(t, pg)

		inB, err := repo.Create(ctx, &Assignment{CourseID: fix.courseB, Title: "Paging", DueDate: due})
		require.NoError(t, err)

		_, err = repo.GetByID(ctx, access.ForStudent(1, fix.programID, fix.semesterA), inB.ID)
		assert.ErrorIs(t, err, ErrAssignmentNotFound)

		got, err := repo.GetByID(ctx, access.ForStudent(1, fix.programID, fix.semesterB), inB.ID)
		require.NoError(t, err)
		assert.Equal(t, "Paging", got.Title)
	})

	t.Run("Comments", func(t *testing.T) {
		testutil.CleanupTables(t, pg.DB, allTables...)
		fix := seedTwoCohorts(t, pg)

		a, err := repo.Create(ctx, &Assignment{CourseID: fix.courseA, Title: "Trees", DueDate: due})
		require.NoError(t, err)

		commenter := &user.User{Email: "commenter@ku.edu.np", Password: "x", Role: user.RoleStudent, IsActive: true}
		_, err = pg.DB.NewInsert().Model(commenter).Exec(ctx)
		require.NoError(t, err)

		created, err := repo.CreateComment(ctx, &Comment{
			AssignmentID: a.ID,
			UserID:       commenter.ID,
			Comment:      "is AVL balancing in scope?",
		})
		require.NoError(t, err)
		assert.NotZero(t, created.ID)
		assert.False(t, created.CreatedAt.IsZero())

		comments, err := repo.GetComments(ctx, a.ID)
		require.NoError(t, err)
		require.Len(t, comments, 1)
		assert.Equal(t, "is AVL balancing in scope?", comments[0].Comment)
		require.NotNil(t, comments[0].User)
		assert.Equal(t, "commenter@ku.edu.np", comments[0].User.Email)
	})
}
