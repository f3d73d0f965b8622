package academic

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
)

var (
	ErrSchoolNotFound     = errors.New("school not found")
	ErrDepartmentNotFound = errors.New("department not found")
	ErrProgramNotFound    = errors.New("program not found")
	ErrClassNotFound      = errors.New("class not found")
)

// Repository is the reference-hierarchy store. Rows here are created by
// admins and rarely mutated, so the CRUD surface stays deliberately plain.
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

func notFound(err error, sentinel error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel
	}
	return err
}

// Schools

func (r *Repository) CreateSchool(ctx context.Context, s *School) error {
	_, err := r.db.NewInsert().Model(s).Returning("*").Exec(ctx)
	return err
}

func (r *Repository) GetSchools(ctx context.Context) ([]School, error) {
	var schools []School
	err := r.db.NewSelect().Model(&schools).Order("id").Scan(ctx)
	return schools, err
}

func (r *Repository) GetSchool(ctx context.Context, id int) (*School, error) {
	s := new(School)
	if err := r.db.NewSelect().Model(s).Where("sch.id = ?", id).Scan(ctx); err != nil {
		return nil, notFound(err, ErrSchoolNotFound)
	}
	return s, nil
}

func (r *Repository) UpdateSchool(ctx context.Context, s *School) error {
	res, err := r.db.NewUpdate().Model(s).Column("name").WherePK().Exec(ctx)
	return checkAffected(res, err, ErrSchoolNotFound)
}

func (r *Repository) DeleteSchool(ctx context.Context, id int) error {
	res, err := r.db.NewDelete().Model(&School{ID: id}).WherePK().Exec(ctx)
	return checkAffected(res, err, ErrSchoolNotFound)
}

// Departments

func (r *Repository) CreateDepartment(ctx context.Context, d *Department) error {
	_, err := r.db.NewInsert().Model(d).Returning("*").Exec(ctx)
	return err
}

func (r *Repository) GetDepartments(ctx context.Context) ([]Department, error) {
	var departments []Department
	err := r.db.NewSelect().Model(&departments).Relation("School").Order("dep.id").Scan(ctx)
	return departments, err
}

func (r *Repository) GetDepartment(ctx context.Context, id int) (*Department, error) {
	d := new(Department)
	err := r.db.NewSelect().Model(d).Relation("School").Where("dep.id = ?", id).Scan(ctx)
	if err != nil {
		return nil, notFound(err, ErrDepartmentNotFound)
	}
	return d, nil
}

func (r *Repository) UpdateDepartment(ctx context.Context, d *Department) error {
	res, err := r.db.NewUpdate().Model(d).Column("name", "school_id").WherePK().Exec(ctx)
	return checkAffected(res, err, ErrDepartmentNotFound)
}

func (r *Repository) DeleteDepartment(ctx context.Context, id int) error {
	res, err := r.db.NewDelete().Model(&Department{ID: id}).WherePK().Exec(ctx)
	return checkAffected(res, err, ErrDepartmentNotFound)
}

// Programs

func (r *Repository) CreateProgram(ctx context.Context, p *Program) error {
	_, err := r.db.NewInsert().Model(p).Returning("*").Exec(ctx)
	return err
}

func (r *Repository) GetPrograms(ctx context.Context) ([]Program, error) {
	var programs []Program
	err := r.db.NewSelect().Model(&programs).Relation("Department").Order("prg.id").Scan(ctx)
	return programs, err
}

func (r *Repository) GetProgram(ctx context.Context, id int) (*Program, error) {
	p := new(Program)
	err := r.db.NewSelect().Model(p).Relation("Department").Where("prg.id = ?", id).Scan(ctx)
	if err != nil {
		return nil, notFound(err, ErrProgramNotFound)
	}
	return p, nil
}

func (r *Repository) UpdateProgram(ctx context.Context, p *Program) error {
	res, err := r.db.NewUpdate().Model(p).Column("name", "department_id").WherePK().Exec(ctx)
	return checkAffected(res, err, ErrProgramNotFound)
}

func (r *Repository) DeleteProgram(ctx context.Context, id int) error {
	res, err := r.db.NewDelete().Model(&Program{ID: id}).WherePK().Exec(ctx)
	return checkAffected(res, err, ErrProgramNotFound)
}

// Classes

func (r *Repository) CreateClass(ctx context.Context, c *Class) error {
	_, err := r.db.NewInsert().Model(c).Returning("*").Exec(ctx)
	return err
}

func (r *Repository) GetClasses(ctx context.Context) ([]Class, error) {
	var classes []Class
	err := r.db.NewSelect().Model(&classes).Relation("Program").Order("cls.id").Scan(ctx)
	return classes, err
}

func (r *Repository) GetClass(ctx context.Context, id int) (*Class, error) {
	c := new(Class)
	err := r.db.NewSelect().Model(c).Relation("Program").Where("cls.id = ?", id).Scan(ctx)
	if err != nil {
		return nil, notFound(err, ErrClassNotFound)
	}
	return c, nil
}

func (r *Repository) UpdateClass(ctx context.Context, c *Class) error {
	res, err := r.db.NewUpdate().
		Model(c).
		Column("program_id", "semester", "academic_year").
		WherePK().
		Exec(ctx)
	return checkAffected(res, err, ErrClassNotFound)
}

func (r *Repository) DeleteClass(ctx context.Context, id int) error {
	res, err := r.db.NewDelete().Model(&Class{ID: id}).WherePK().Exec(ctx)
	return checkAffected(res, err, ErrClassNotFound)
}

func checkAffected(res sql.Result, err error, sentinel error) error {
	if err != nil {
		return err
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sentinel
	}
	return nil
}
