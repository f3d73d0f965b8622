package student

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notashwinii/kucms-backend/internal/academic"
	"github.com/notashwinii/kucms-backend/internal/testutil"
	"github.com/notashwinii/kucms-backend/internal/user"
)

func seedProgram(t *testing.T, pg *testutil.PostgresContainer) int {
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

	return program.ID
}

func seedStudent(t *testing.T, pg *testutil.PostgresContainer, repo Repository, email, regNo string, programID, semester int, active bool) *Student {
	t.Helper()

	u := &user.User{
		Email:    email,
		Password: "x",
		Role:     user.RoleStudent,
		IsActive: active,
	}
	s := &Student{
		RegistrationNumber: regNo,
		ProgramID:          programID,
		CurrentSemester:    semester,
	}
	require.NoError(t, repo.CreateWithUser(context.Background(), u, s))
	return s
}

func TestStudentRepository(t *testing.T) {
	pg := testutil.SetupSharedPostgres(t)
	defer pg.Cleanup(t)

	pg.RunMigrations(t,
		(*user.User)(nil),
		(*academic.School)(nil),
		(*academic.Department)(nil),
		(*academic.Program)(nil),
		(*Student)(nil),
	)

	repo := NewRepository(pg.DB)
	ctx := context.Background()

	t.Run("CreateWithUser_LinksPair", func(t *testing.T) {
		testutil.CleanupTables(t, pg.DB, "students", "users", "programs", "departments", "schools")
		programID := seedProgram(t, pg)

		s := seedStudent(t, pg, repo, "pair@ku.edu.np", "REG100", programID, 1, true)
		require.NotZero(t, s.ID)
		require.NotZero(t, s.UserID)

		got, err := repo.GetByID(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, s.UserID, got.UserID)
		require.NotNil(t, got.User)
		assert.Equal(t, "pair@ku.edu.np", got.User.Email)
	})

	t.Run("CreateWithUser_DuplicateEmailRollsBackPair", func(t *testing.T) {
		testutil.CleanupTables(t, pg.DB, "students", "users", "programs", "departments", "schools")
		programID := seedProgram(t, pg)

		seedStudent(t, pg, repo, "taken@ku.edu.np", "REG200", programID, 1, true)

		err := repo.CreateWithUser(ctx,
			&user.User{Email: "taken@ku.edu.np", Password: "x", Role: user.RoleStudent, IsActive: true},
			&Student{RegistrationNumber: "REG201", ProgramID: programID, CurrentSemester: 1},
		)
		require.Error(t, err)

		// The failed pair left no student row behind.
		count, err := pg.DB.NewSelect().Model((*Student)(nil)).Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("AdvanceSemesters_NotIdempotent", func(t *testing.T) {
		testutil.CleanupTables(t, pg.DB, "students", "users", "programs", "departments", "schools")
		programID := seedProgram(t, pg)

		s1 := seedStudent(t, pg, repo, "s1@ku.edu.np", "REG301", programID, 2, true)
		s2 := seedStudent(t, pg, repo, "s2@ku.edu.np", "REG302", programID, 4, true)
		inactive := seedStudent(t, pg, repo, "gone@ku.edu.np", "REG303", programID, 6, false)

		affected, err := repo.AdvanceSemesters(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, affected)

		assertSemester(t, pg, s1.ID, 3)
		assertSemester(t, pg, s2.ID, 5)
		assertSemester(t, pg, inactive.ID, 6)

		// A second invocation advances everyone again; nothing guards
		// against it.
		_, err = repo.AdvanceSemesters(ctx)
		require.NoError(t, err)

		assertSemester(t, pg, s1.ID, 4)
		assertSemester(t, pg, s2.ID, 6)
		assertSemester(t, pg, inactive.ID, 6)
	})

	t.Run("ScopeByUser", func(t *testing.T) {
		testutil.CleanupTables(t, pg.DB, "students", "users", "programs", "departments", "schools")
		programID := seedProgram(t, pg)

		s := seedStudent(t, pg, repo, "scope@ku.edu.np", "REG400", programID, 3, true)

		studentID, gotProgram, semester, err := repo.ScopeByUser(ctx, s.UserID)
		require.NoError(t, err)
		assert.Equal(t, s.ID, studentID)
		assert.Equal(t, programID, gotProgram)
		assert.Equal(t, 3, semester)

		_, _, _, err = repo.ScopeByUser(ctx, 999999)
		assert.ErrorIs(t, err, ErrStudentNotFound)
	})
}

func assertSemester(t *testing.T, pg *testutil.PostgresContainer, studentID, want int) {
	t.Helper()

	var semester int
	err := pg.DB.NewSelect().
		Model((*Student)(nil)).
		Column("s.current_semester").
		Where("s.id = ?", studentID).
		Scan(context.Background(), &semester)
	require.NoError(t, err)
	assert.Equal(t, want, semester)
}
