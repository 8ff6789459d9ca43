package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"petpal/internal/domain/appointments"
	"petpal/internal/domain/medical"
	"petpal/internal/domain/pets"
	"petpal/internal/domain/users"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

var ts = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func TestApply_RunsEveryMigration(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS pets").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS appointments").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS medical_records").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, Apply(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApply_StopsOnError(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnError(errors.New("boom"))

	err := Apply(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0001_users.sql")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsersRepo_DuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUsersRepo(db)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value"})

	err := repo.Create(context.Background(), users.Identity{ID: "u-1", Email: "a@x.com", CreatedAt: ts, UpdatedAt: ts})
	assert.ErrorIs(t, err, users.ErrEmailTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsersRepo_GetByEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUsersRepo(db)
	cols := []string{"id", "email", "password_hash", "name", "phone", "address", "created_at", "updated_at"}

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
		WithArgs("a@x.com").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("u-1", "a@x.com", "hash", "Ana", "555", "", ts, ts))
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
		WithArgs("nadie@x.com").
		WillReturnRows(sqlmock.NewRows(cols))

	u, err := repo.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "u-1", u.ID)
	assert.Equal(t, "hash", u.PasswordHash)

	_, err = repo.GetByEmail(context.Background(), "nadie@x.com")
	assert.ErrorIs(t, err, users.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsersRepo_UpdateDoesNotTouchCredentials(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUsersRepo(db)

	mock.ExpectExec(`UPDATE users\s+SET\s+name = \$2,\s+phone = \$3,\s+address = \$4,\s+updated_at = \$5\s+WHERE id = \$1`).
		WithArgs("u-1", "Ana", "555", "calle 1", ts).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), users.Identity{
		ID: "u-1", Email: "otro@x.com", PasswordHash: "x", Name: "Ana", Phone: "555", Address: "calle 1", UpdatedAt: ts,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPetsRepo_OwnerScopedMutations(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPetsRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $1 AND user_id = $2")).
		WithArgs("p-1", "u-2", "Rex", "dog", "mix", 3.0, nil, "", "", "", "", ts).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM pets WHERE id = $1 AND user_id = $2")).
		WithArgs("p-1", "u-2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), pets.Pet{
		ID: "p-1", UserID: "u-2", Name: "Rex", Species: "dog", Breed: "mix", Age: 3, UpdatedAt: ts,
	})
	assert.ErrorIs(t, err, pets.ErrNotFound)

	err = repo.Delete(context.Background(), "p-1", "u-2")
	assert.ErrorIs(t, err, pets.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPetsRepo_GetByIDAndOwner(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPetsRepo(db)
	cols := []string{"id", "user_id", "name", "species", "breed", "age", "weight", "color", "gender", "microchip_id", "notes", "created_at", "updated_at"}

	mock.ExpectQuery(regexp.QuoteMeta("FROM pets")).
		WithArgs("p-1", "u-1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("p-1", "u-1", "Rex", "dog", "mix", 3.5, nil, "", "", "", "", ts, ts))

	p, err := repo.GetByIDAndOwner(context.Background(), "p-1", "u-1")
	require.NoError(t, err)
	assert.Equal(t, 3.5, p.Age)
	assert.Nil(t, p.Weight)

	// id vacío no pega a la base
	_, err = repo.GetByIDAndOwner(context.Background(), " ", "u-1")
	assert.ErrorIs(t, err, pets.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentsRepo_ListUpcoming(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAppointmentsRepo(db)
	cols := []string{"id", "user_id", "pet_id", "appointment_date", "appointment_time", "appointment_type", "veterinarian", "clinic", "reason", "notes", "status", "created_at", "updated_at"}

	mock.ExpectQuery(`status IN \('scheduled', 'confirmed'\)\s+ORDER BY appointment_date ASC`).
		WithArgs("u-1", ts).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("a-1", "u-1", "p-1", ts.Add(time.Hour), "11:00", "checkup", "", "", "", "", "scheduled", ts, ts))

	out, err := repo.ListUpcoming(context.Background(), "u-1", ts)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, appointments.StatusScheduled, out[0].Status)
	assert.Equal(t, "11:00", out[0].AppointmentTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMedicalRepo_ListByPetAndRecent(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMedicalRepo(db)
	cols := []string{"id", "user_id", "pet_id", "visit_date", "record_type", "veterinarian", "diagnosis", "treatment", "medications", "notes", "clinic", "weight", "temperature", "follow_up_date", "created_at", "updated_at"}

	mock.ExpectQuery(regexp.QuoteMeta("($3 = '' OR record_type = $3)")).
		WithArgs("u-1", "p-1", medical.TypeVaccination).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("r-1", "u-1", "p-1", ts, "vaccination", "Dr. Paz", "", "", "", "", "", 12.5, nil, ts.AddDate(0, 1, 0), ts, ts))
	mock.ExpectQuery(regexp.QuoteMeta("LIMIT $2")).
		WithArgs("u-1", 10).
		WillReturnRows(sqlmock.NewRows(cols))

	out, err := repo.ListByPet(context.Background(), "u-1", "p-1", medical.TypeVaccination)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.NotNil(t, out[0].Weight)
	assert.Equal(t, 12.5, *out[0].Weight)
	assert.Nil(t, out[0].Temperature)
	require.NotNil(t, out[0].FollowUpDate)

	recent, err := repo.ListRecent(context.Background(), "u-1", 10)
	require.NoError(t, err)
	assert.Empty(t, recent)
	assert.NotNil(t, recent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMedicalRepo_DeleteNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMedicalRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM medical_records")).
		WithArgs("r-1", "u-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), "r-1", "u-1"), medical.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
