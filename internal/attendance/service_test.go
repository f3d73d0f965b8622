package attendance

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notashwinii/kucms-backend/internal/access"
	"github.com/notashwinii/kucms-backend/internal/auth"
	"github.com/notashwinii/kucms-backend/internal/course"
	"github.com/notashwinii/kucms-backend/internal/faculty"
	"github.com/notashwinii/kucms-backend/internal/user"
)

type fakeRepository struct {
	batches [][]Attendance
	rows    []Attendance
}

func (f *fakeRepository) BulkCreate(_ context.Context, rows []Attendance) error {
	f.batches = append(f.batches, rows)
	return nil
}

func (f *fakeRepository) GetByStudentCourse(_ context.Context, _ access.Scope, studentID, courseID int, since time.Time) ([]Attendance, error) {
	var out []Attendance
	for _, r := range f.rows {
		if r.StudentID != studentID || r.CourseID != courseID {
			continue
		}
		if !since.IsZero() && r.Date.Before(since) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeRepository) Create(_ context.Context, a *Attendance) (*Attendance, error) {
	return a, nil
}
func (f *fakeRepository) GetAll(context.Context, access.Scope) ([]Attendance, error) {
	return nil, nil
}
func (f *fakeRepository) GetByID(context.Context, access.Scope, int) (*Attendance, error) {
	return nil, nil
}
func (f *fakeRepository) Update(context.Context, *Attendance) error { return nil }
func (f *fakeRepository) Delete(context.Context, int) error         { return nil }

type fakeCourses struct {
	owners map[int]int
}

func (f *fakeCourses) CourseFacultyID(_ context.Context, id int) (int, error) {
	owner, ok := f.owners[id]
	if !ok {
		return 0, course.ErrCourseNotFound
	}
	return owner, nil
}

func (f *fakeCourses) Create(context.Context, *course.Course) (*course.Course, error) {
	return nil, nil
}
func (f *fakeCourses) GetAll(context.Context, access.Scope) ([]course.Course, error) {
	return nil, nil
}
func (f *fakeCourses) GetByID(context.Context, access.Scope, int) (*course.Course, error) {
	return nil, nil
}
func (f *fakeCourses) GetByFaculty(context.Context, access.Scope, int) ([]course.Course, error) {
	return nil, nil
}
func (f *fakeCourses) GetByProgramSemester(context.Context, access.Scope, int, int) ([]course.Course, error) {
	return nil, nil
}
func (f *fakeCourses) Update(context.Context, *course.Course) error { return nil }
func (f *fakeCourses) Delete(context.Context, int) error            { return nil }

type fakeFacultyDirectory struct {
	byUser map[int]int
}

func (f *fakeFacultyDirectory) FacultyIDByUser(_ context.Context, userID int) (int, error) {
	id, ok := f.byUser[userID]
	if !ok {
		return 0, faculty.ErrFacultyNotFound
	}
	return id, nil
}

func newTestService(repo *fakeRepository) *Service {
	// Course 100 is taught by faculty 3 (user 10); user 11 owns faculty 4.
	owners := course.NewAuthorizer(
		&fakeCourses{owners: map[int]int{100: 3}},
		&fakeFacultyDirectory{byUser: map[int]int{10: 3, 11: 4}},
	)
	return NewService(repo, owners, slog.Default())
}

func TestBulkCreate_Owner(t *testing.T) {
	repo := &fakeRepository{}
	svc := newTestService(repo)

	date := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	records := []BulkRecord{
		{StudentID: 1, Present: true},
		{StudentID: 2, Present: false},
	}

	inserted, err := svc.BulkCreate(context.Background(),
		auth.Principal{UserID: 10, Role: user.RoleFaculty}, 100, date, records)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	// One batch, all rows in it.
	require.Len(t, repo.batches, 1)
	require.Len(t, repo.batches[0], 2)
	assert.Equal(t, 100, repo.batches[0][0].CourseID)
	assert.Equal(t, date, repo.batches[0][1].Date)
	assert.False(t, repo.batches[0][1].Present)
}

// A foreign faculty is rejected before any row is built: 403, zero inserts.
func TestBulkCreate_NotOwner(t *testing.T) {
	repo := &fakeRepository{}
	svc := newTestService(repo)

	_, err := svc.BulkCreate(context.Background(),
		auth.Principal{UserID: 11, Role: user.RoleFaculty}, 100, time.Now(),
		[]BulkRecord{{StudentID: 1, Present: true}})

	assert.ErrorIs(t, err, course.ErrNotCourseOwner)
	assert.Empty(t, repo.batches)
}

func TestBulkCreate_MissingCourse(t *testing.T) {
	repo := &fakeRepository{}
	svc := newTestService(repo)

	_, err := svc.BulkCreate(context.Background(),
		auth.Principal{UserID: 10, Role: user.RoleFaculty}, 999, time.Now(),
		[]BulkRecord{{StudentID: 1, Present: true}})

	assert.ErrorIs(t, err, course.ErrCourseNotFound)
	assert.Empty(t, repo.batches)
}

func TestStudentReport(t *testing.T) {
	now := time.Now()
	repo := &fakeRepository{rows: []Attendance{
		{CourseID: 100, StudentID: 7, Date: now.AddDate(0, 0, -2), Present: true},
		{CourseID: 100, StudentID: 7, Date: now.AddDate(0, 0, -1), Present: false},
		{CourseID: 100, StudentID: 7, Date: now.AddDate(0, 0, -60), Present: true},
	}}
	svc := newTestService(repo)

	t.Run("all", func(t *testing.T) {
		report, err := svc.StudentReport(context.Background(), access.Unrestricted(), 7, 100, "all")
		require.NoError(t, err)
		assert.Equal(t, 3, report.Total)
		assert.Equal(t, 2, report.Present)
		assert.Equal(t, 1, report.Absent)
	})

	t.Run("month excludes old rows", func(t *testing.T) {
		report, err := svc.StudentReport(context.Background(), access.Unrestricted(), 7, 100, "month")
		require.NoError(t, err)
		assert.Equal(t, 2, report.Total)
	})

	t.Run("bad period", func(t *testing.T) {
		_, err := svc.StudentReport(context.Background(), access.Unrestricted(), 7, 100, "year")
		assert.ErrorIs(t, err, ErrInvalidPeriod)
	})
}
