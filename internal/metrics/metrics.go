package metrics

import (
	"context"

	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	studentsImported   metric.Int64Counter
	sessionsRolled     metric.Int64Counter
	attendanceRecorded metric.Int64Counter
	gradesRecorded     metric.Int64Counter
	contentPublished   metric.Int64Counter
	commentsAdded      metric.Int64Counter
}

func New(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.studentsImported, err = meter.Int64Counter(
		"kucms.students.imported",
		metric.WithDescription("Total number of students created via CSV import"),
		metric.WithUnit("{student}"),
	)
	if err != nil {
		return nil, err
	}

	m.sessionsRolled, err = meter.Int64Counter(
		"kucms.sessions.rolled",
		metric.WithDescription("Total number of semester rollover invocations"),
		metric.WithUnit("{rollover}"),
	)
	if err != nil {
		return nil, err
	}

	m.attendanceRecorded, err = meter.Int64Counter(
		"kucms.attendance.recorded",
		metric.WithDescription("Total number of attendance rows recorded"),
		metric.WithUnit("{row}"),
	)
	if err != nil {
		return nil, err
	}

	m.gradesRecorded, err = meter.Int64Counter(
		"kucms.grades.recorded",
		metric.WithDescription("Total number of grade rows recorded"),
		metric.WithUnit("{row}"),
	)
	if err != nil {
		return nil, err
	}

	m.contentPublished, err = meter.Int64Counter(
		"kucms.content.published",
		metric.WithDescription("Total number of assignments, notes and announcements created"),
		metric.WithUnit("{item}"),
	)
	if err != nil {
		return nil, err
	}

	m.commentsAdded, err = meter.Int64Counter(
		"kucms.comments.added",
		metric.WithDescription("Total number of comments added"),
		metric.WithUnit("{comment}"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Metrics) RecordStudentsImported(ctx context.Context, n int) {
	if m != nil && m.studentsImported != nil {
		m.studentsImported.Add(ctx, int64(n))
	}
}

func (m *Metrics) RecordSessionRolled(ctx context.Context) {
	if m != nil && m.sessionsRolled != nil {
		m.sessionsRolled.Add(ctx, 1)
	}
}

func (m *Metrics) RecordAttendance(ctx context.Context, n int) {
	if m != nil && m.attendanceRecorded != nil {
		m.attendanceRecorded.Add(ctx, int64(n))
	}
}

func (m *Metrics) RecordGrades(ctx context.Context, n int) {
	if m != nil && m.gradesRecorded != nil {
		m.gradesRecorded.Add(ctx, int64(n))
	}
}

func (m *Metrics) RecordContentPublished(ctx context.Context) {
	if m != nil && m.contentPublished != nil {
		m.contentPublished.Add(ctx, 1)
	}
}

func (m *Metrics) RecordCommentAdded(ctx context.Context) {
	if m != nil && m.commentsAdded != nil {
		m.commentsAdded.Add(ctx, 1)
	}
}
