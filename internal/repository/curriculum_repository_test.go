package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edu-manager/internal/models"
)

func TestModuleRepositoryListAndFirstID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewModuleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, code, title, total_hours FROM module ORDER BY id DESC")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "title", "total_hours"}).
			AddRow(2, "ПМ7", "Second", 40).
			AddRow(1, "ПМ6", "Автосозданный модуль", 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM module ORDER BY id LIMIT 1")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	modules, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, modules, 2)
	assert.Equal(t, int64(2), modules[0].ID)
	assert.Equal(t, "ПМ6", *modules[1].Code)

	id, err := repo.FirstID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestModuleRepositoryCreateUpdateDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewModuleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO module (code, title, total_hours) VALUES (?, ?, ?)")).
		WithArgs("ПМ7", "Networks", 72).
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE module SET code = ?, title = ?, total_hours = ? WHERE id = ?")).
		WithArgs("ПМ7", "Networks II", 72, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM module WHERE id = ?")).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))

	module := &models.Module{Code: strPtr("ПМ7"), Title: strPtr("Networks"), TotalHours: intPtr(72)}
	id, err := repo.Create(context.Background(), module)
	require.NoError(t, err)
	assert.Equal(t, int64(5), id)
	assert.Equal(t, int64(5), module.ID)

	module.Title = strPtr("Networks II")
	require.NoError(t, repo.Update(context.Background(), module))
	require.NoError(t, repo.Delete(context.Background(), 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestModuleRepositoryDeletePropagatesDriverError(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewModuleRepository(db)

	restrict := errors.New("foreign key constraint fails")
	mock.ExpectExec("DELETE FROM module").WithArgs(1).WillReturnError(restrict)

	err := repo.Delete(context.Background(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, restrict)
}

func TestModuleRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewModuleRepository(db)

	mock.ExpectQuery("FROM module WHERE id = ").WithArgs(9).WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), 9)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestSectionRepositoryFindByTitleAndCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, module_id, code, title, hours FROM ro_sections WHERE title = ? ORDER BY id LIMIT 1")).
		WithArgs("РО 6.1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ro_sections (module_id, code, title, hours) VALUES (?, ?, ?, ?)")).
		WithArgs(1, "РО 6.1", "РО 6.1", 0).
		WillReturnResult(sqlmock.NewResult(3, 1))

	_, err := repo.FindByTitle(context.Background(), "РО 6.1")
	require.ErrorIs(t, err, sql.ErrNoRows)

	section := &models.Section{ModuleID: int64Ptr(1), Code: strPtr("РО 6.1"), Title: strPtr("РО 6.1"), Hours: intPtr(0)}
	id, err := repo.Create(context.Background(), section)
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepositoryTitles(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT title FROM ro_sections WHERE title IS NOT NULL ORDER BY title")).
		WillReturnRows(sqlmock.NewRows([]string{"title"}).AddRow("РО 6.1").AddRow("РО 6.2"))

	titles, err := repo.Titles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"РО 6.1", "РО 6.2"}, titles)
}

func TestLessonRepositoryListJoinsSectionTitle(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	rows := sqlmock.NewRows([]string{"id", "ro_id", "number", "criteria", "total_hours", "type", "section_title"}).
		AddRow(2, 3, 1, "Knows the OSI model", 2, "комбинированный", "РО 6.1").
		AddRow(1, nil, 4, "Orphan", 1, nil, nil)
	mock.ExpectQuery("FROM lessons l\\s+LEFT JOIN ro_sections s ON s.id = l.ro_id\\s+ORDER BY l.id DESC").
		WillReturnRows(rows)

	lessons, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, lessons, 2)
	assert.Equal(t, "РО 6.1", *lessons[0].SectionTitle)
	assert.Equal(t, int64(3), *lessons[0].SectionID)
	assert.Nil(t, lessons[1].SectionTitle)
	assert.Nil(t, lessons[1].Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryCreateAndUpdate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO lessons (ro_id, number, criteria, total_hours, type) VALUES (?, ?, ?, ?, ?)")).
		WithArgs(3, 1, "Criteria", 2, "практический").
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE lessons SET ro_id = ?, number = ?, criteria = ?, total_hours = ?, type = ? WHERE id = ?")).
		WithArgs(3, 2, "Criteria", 2, "практический", 11).
		WillReturnResult(sqlmock.NewResult(0, 1))

	lesson := &models.Lesson{SectionID: int64Ptr(3), Number: intPtr(1), Criteria: strPtr("Criteria"), TotalHours: intPtr(2), Type: strPtr("практический")}
	_, err := repo.Create(context.Background(), lesson)
	require.NoError(t, err)

	lesson.Number = intPtr(2)
	require.NoError(t, repo.Update(context.Background(), lesson))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	mock.ExpectQuery("LEFT JOIN ro_sections s ON s.id = l.ro_id\\s+WHERE l.id = \\?").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "ro_id", "number", "criteria", "total_hours", "type", "section_title"}).
			AddRow(7, 3, 1, "Criteria", 2, "практический", "РО 6.2"))

	lesson, err := repo.FindByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), lesson.ID)
	assert.Equal(t, "РО 6.2", *lesson.SectionTitle)
	assert.NoError(t, mock.ExpectationsWereMet())
}
