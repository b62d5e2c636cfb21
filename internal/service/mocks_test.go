package service

import (
	"context"
	"database/sql"
	"sort"

	"github.com/noah-isme/edu-manager/internal/models"
)

type mockModuleRepo struct {
	items     map[int64]*models.Module
	nextID    int64
	deleteErr error
}

func (m *mockModuleRepo) List(ctx context.Context) ([]models.Module, error) {
	out := make([]models.Module, 0, len(m.items))
	for _, item := range m.items {
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *mockModuleRepo) FindByID(ctx context.Context, id int64) (*models.Module, error) {
	if item, ok := m.items[id]; ok {
		cp := *item
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockModuleRepo) FirstID(ctx context.Context) (int64, error) {
	var first int64
	for id := range m.items {
		if first == 0 || id < first {
			first = id
		}
	}
	if first == 0 {
		return 0, sql.ErrNoRows
	}
	return first, nil
}

func (m *mockModuleRepo) Create(ctx context.Context, module *models.Module) (int64, error) {
	if m.items == nil {
		m.items = make(map[int64]*models.Module)
	}
	m.nextID++
	module.ID = m.nextID
	cp := *module
	m.items[module.ID] = &cp
	return module.ID, nil
}

func (m *mockModuleRepo) Update(ctx context.Context, module *models.Module) error {
	cp := *module
	m.items[module.ID] = &cp
	return nil
}

func (m *mockModuleRepo) Delete(ctx context.Context, id int64) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.items, id)
	return nil
}

type mockSectionRepo struct {
	items  map[int64]*models.Section
	nextID int64
}

func (m *mockSectionRepo) List(ctx context.Context) ([]models.Section, error) {
	out := make([]models.Section, 0, len(m.items))
	for _, item := range m.items {
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *mockSectionRepo) Titles(ctx context.Context) ([]string, error) {
	var titles []string
	for _, item := range m.items {
		if item.Title != nil {
			titles = append(titles, *item.Title)
		}
	}
	sort.Strings(titles)
	return titles, nil
}

func (m *mockSectionRepo) FindByID(ctx context.Context, id int64) (*models.Section, error) {
	if item, ok := m.items[id]; ok {
		cp := *item
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSectionRepo) FindByTitle(ctx context.Context, title string) (*models.Section, error) {
	for _, item := range m.items {
		if item.Title != nil && *item.Title == title {
			cp := *item
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockSectionRepo) Create(ctx context.Context, section *models.Section) (int64, error) {
	if m.items == nil {
		m.items = make(map[int64]*models.Section)
	}
	m.nextID++
	section.ID = m.nextID
	cp := *section
	m.items[section.ID] = &cp
	return section.ID, nil
}

func (m *mockSectionRepo) Update(ctx context.Context, section *models.Section) error {
	cp := *section
	m.items[section.ID] = &cp
	return nil
}

func (m *mockSectionRepo) Delete(ctx context.Context, id int64) error {
	delete(m.items, id)
	return nil
}

type mockLessonRepo struct {
	items    map[int64]*models.Lesson
	nextID   int64
	sections *mockSectionRepo
}

func (m *mockLessonRepo) List(ctx context.Context) ([]models.LessonRow, error) {
	out := make([]models.LessonRow, 0, len(m.items))
	for id := range m.items {
		row, _ := m.FindByID(ctx, id)
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *mockLessonRepo) FindByID(ctx context.Context, id int64) (*models.LessonRow, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	row := &models.LessonRow{Lesson: *item}
	if item.SectionID != nil && m.sections != nil {
		if sec, ok := m.sections.items[*item.SectionID]; ok {
			row.SectionTitle = sec.Title
		}
	}
	return row, nil
}

func (m *mockLessonRepo) Create(ctx context.Context, lesson *models.Lesson) (int64, error) {
	if m.items == nil {
		m.items = make(map[int64]*models.Lesson)
	}
	m.nextID++
	lesson.ID = m.nextID
	cp := *lesson
	m.items[lesson.ID] = &cp
	return lesson.ID, nil
}

func (m *mockLessonRepo) Update(ctx context.Context, lesson *models.Lesson) error {
	cp := *lesson
	m.items[lesson.ID] = &cp
	return nil
}

func (m *mockLessonRepo) Delete(ctx context.Context, id int64) error {
	delete(m.items, id)
	return nil
}

type mockTeacherRepo struct {
	items  map[int64]*models.Teacher
	nextID int64
}

func (m *mockTeacherRepo) List(ctx context.Context) ([]models.Teacher, error) {
	out := make([]models.Teacher, 0, len(m.items))
	for _, item := range m.items {
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *mockTeacherRepo) FindByID(ctx context.Context, id int64) (*models.Teacher, error) {
	if item, ok := m.items[id]; ok {
		cp := *item
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockTeacherRepo) FindIDByName(ctx context.Context, fullName string) (int64, error) {
	var found int64
	for id, item := range m.items {
		if item.FullName != nil && *item.FullName == fullName && (found == 0 || id < found) {
			found = id
		}
	}
	if found == 0 {
		return 0, sql.ErrNoRows
	}
	return found, nil
}

func (m *mockTeacherRepo) Create(ctx context.Context, teacher *models.Teacher) (int64, error) {
	if m.items == nil {
		m.items = make(map[int64]*models.Teacher)
	}
	m.nextID++
	teacher.ID = m.nextID
	cp := *teacher
	m.items[teacher.ID] = &cp
	return teacher.ID, nil
}

func (m *mockTeacherRepo) Update(ctx context.Context, teacher *models.Teacher) error {
	cp := *teacher
	m.items[teacher.ID] = &cp
	return nil
}

func (m *mockTeacherRepo) Delete(ctx context.Context, id int64) error {
	delete(m.items, id)
	return nil
}

type mockStudentRepo struct {
	items  map[int64]*models.Student
	nextID int64
}

func (m *mockStudentRepo) List(ctx context.Context) ([]models.Student, error) {
	out := make([]models.Student, 0, len(m.items))
	for _, item := range m.items {
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	if item, ok := m.items[id]; ok {
		cp := *item
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) FindIDByName(ctx context.Context, fullName string) (int64, error) {
	var found int64
	for id, item := range m.items {
		if item.FullName != nil && *item.FullName == fullName && (found == 0 || id < found) {
			found = id
		}
	}
	if found == 0 {
		return 0, sql.ErrNoRows
	}
	return found, nil
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) (int64, error) {
	if m.items == nil {
		m.items = make(map[int64]*models.Student)
	}
	m.nextID++
	student.ID = m.nextID
	cp := *student
	m.items[student.ID] = &cp
	return student.ID, nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	cp := *student
	m.items[student.ID] = &cp
	return nil
}

func (m *mockStudentRepo) Delete(ctx context.Context, id int64) error {
	delete(m.items, id)
	return nil
}

type mockGradeRepo struct {
	items  map[int64]*models.GradeReport
	nextID int64
}

func (m *mockGradeRepo) List(ctx context.Context) ([]models.GradeReportRow, error) {
	out := make([]models.GradeReportRow, 0, len(m.items))
	for _, item := range m.items {
		out = append(out, models.GradeReportRow{GradeReport: *item})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *mockGradeRepo) FindByID(ctx context.Context, id int64) (*models.GradeReport, error) {
	if item, ok := m.items[id]; ok {
		cp := *item
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockGradeRepo) Create(ctx context.Context, report *models.GradeReport) (int64, error) {
	if m.items == nil {
		m.items = make(map[int64]*models.GradeReport)
	}
	m.nextID++
	report.ID = m.nextID
	cp := *report
	m.items[report.ID] = &cp
	return report.ID, nil
}

func (m *mockGradeRepo) Update(ctx context.Context, report *models.GradeReport) error {
	cp := *report
	m.items[report.ID] = &cp
	return nil
}

func (m *mockGradeRepo) Delete(ctx context.Context, id int64) error {
	delete(m.items, id)
	return nil
}

type mockClassPlanRepo struct {
	items  map[int64]*models.ClassPlan
	nextID int64
}

func (m *mockClassPlanRepo) List(ctx context.Context) ([]models.ClassPlanRow, error) {
	out := make([]models.ClassPlanRow, 0, len(m.items))
	for _, item := range m.items {
		out = append(out, models.ClassPlanRow{ClassPlan: *item})
	}
	return out, nil
}

func (m *mockClassPlanRepo) FindByID(ctx context.Context, id int64) (*models.ClassPlan, error) {
	if item, ok := m.items[id]; ok {
		cp := *item
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockClassPlanRepo) Create(ctx context.Context, plan *models.ClassPlan) (int64, error) {
	if m.items == nil {
		m.items = make(map[int64]*models.ClassPlan)
	}
	m.nextID++
	plan.ID = m.nextID
	cp := *plan
	m.items[plan.ID] = &cp
	return plan.ID, nil
}

func (m *mockClassPlanRepo) Update(ctx context.Context, plan *models.ClassPlan) error {
	cp := *plan
	m.items[plan.ID] = &cp
	return nil
}

func (m *mockClassPlanRepo) Delete(ctx context.Context, id int64) error {
	delete(m.items, id)
	return nil
}

type mockExamProtocolRepo struct {
	items  map[int64]*models.ExamProtocol
	nextID int64
}

func (m *mockExamProtocolRepo) List(ctx context.Context) ([]models.ExamProtocolRow, error) {
	out := make([]models.ExamProtocolRow, 0, len(m.items))
	for _, item := range m.items {
		out = append(out, models.ExamProtocolRow{ExamProtocol: *item})
	}
	return out, nil
}

func (m *mockExamProtocolRepo) FindByID(ctx context.Context, id int64) (*models.ExamProtocol, error) {
	if item, ok := m.items[id]; ok {
		cp := *item
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockExamProtocolRepo) Create(ctx context.Context, p *models.ExamProtocol) (int64, error) {
	if m.items == nil {
		m.items = make(map[int64]*models.ExamProtocol)
	}
	m.nextID++
	p.ID = m.nextID
	cp := *p
	m.items[p.ID] = &cp
	return p.ID, nil
}

func (m *mockExamProtocolRepo) Update(ctx context.Context, p *models.ExamProtocol) error {
	cp := *p
	m.items[p.ID] = &cp
	return nil
}

func (m *mockExamProtocolRepo) Delete(ctx context.Context, id int64) error {
	delete(m.items, id)
	return nil
}

type mockPassportRepo struct {
	items  map[int64]*models.SocialPassport
	nextID int64
}

func (m *mockPassportRepo) List(ctx context.Context) ([]models.SocialPassport, error) {
	out := make([]models.SocialPassport, 0, len(m.items))
	for _, item := range m.items {
		out = append(out, *item)
	}
	return out, nil
}

func (m *mockPassportRepo) FindByID(ctx context.Context, id int64) (*models.SocialPassport, error) {
	if item, ok := m.items[id]; ok {
		cp := *item
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockPassportRepo) Create(ctx context.Context, p *models.SocialPassport) (int64, error) {
	if m.items == nil {
		m.items = make(map[int64]*models.SocialPassport)
	}
	m.nextID++
	p.ID = m.nextID
	cp := *p
	m.items[p.ID] = &cp
	return p.ID, nil
}

func (m *mockPassportRepo) Update(ctx context.Context, p *models.SocialPassport) error {
	cp := *p
	m.items[p.ID] = &cp
	return nil
}

func (m *mockPassportRepo) Delete(ctx context.Context, id int64) error {
	delete(m.items, id)
	return nil
}

func strPtr(v string) *string { return &v }

func intPtr(v int) *int { return &v }
