package accounts

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrijs2005/wildcard-newsfeed/internal/common"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

var columns = []string{"id", "login_code", "password_hash", "name", "email", "introduction", "status", "role",
	"status_changed_at", "profile_image_url", "created_at", "updated_at"}

func sampleAccount(now time.Time) *models.Account {
	return &models.Account{
		ID:              "acc-1",
		LoginCode:       "testId1234",
		PasswordHash:    "hash",
		Name:            "tester",
		Email:           "test@gmail.com",
		Status:          models.StatusUnauthorized,
		Role:            models.RoleUser,
		StatusChangedAt: now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func accountRow(a *models.Account) *sqlmock.Rows {
	return sqlmock.NewRows(columns).AddRow(a.ID, a.LoginCode, a.PasswordHash, a.Name, a.Email, a.Introduction,
		string(a.Status), string(a.Role), a.StatusChangedAt, a.ProfileImageURL, a.CreatedAt, a.UpdatedAt)
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	a := sampleAccount(now)

	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+accounts\b.*VALUES\s*\(\$1,.*\$12\)\s*$`).
		WithArgs(a.ID, a.LoginCode, a.PasswordHash, a.Name, a.Email, a.Introduction, a.Status, a.Role,
			a.StatusChangedAt, a.ProfileImageURL, a.CreatedAt, a.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	got, err := repo.Create(context.Background(), a)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got != a {
		t.Fatalf("expected the same account back")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_UniqueViolation(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT\s+INTO\s+accounts`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "accounts_login_code_key"})

	_, err := repo.Create(context.Background(), sampleAccount(time.Now()))
	if !errors.Is(err, common.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT\s+INTO\s+accounts`).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), sampleAccount(time.Now()))
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	want := sampleAccount(now)
	want.Status = models.StatusEnabled

	mock.ExpectQuery(`(?s)^SELECT\s+id,.*FROM\s+accounts\s+WHERE\s+id\s*=\s*\$1$`).
		WithArgs("acc-1").
		WillReturnRows(accountRow(want))

	got, err := repo.GetByID(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.LoginCode != want.LoginCode || got.Status != models.StatusEnabled || got.Role != models.RoleUser {
		t.Fatalf("unexpected account: %+v", got)
	}
}

func TestGetByIDForUpdate_LocksRow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)FROM\s+accounts\s+WHERE\s+id\s*=\s*\$1\s+FOR\s+UPDATE$`).
		WithArgs("acc-1").
		WillReturnRows(accountRow(sampleAccount(time.Now())))

	if _, err := repo.GetByIDForUpdate(context.Background(), "acc-1"); err != nil {
		t.Fatalf("GetByIDForUpdate error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetByLoginCode_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`WHERE\s+login_code\s*=\s*\$1`).
		WithArgs("nobody1234").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByLoginCode(context.Background(), "nobody1234")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestExistsByLoginCodeOrEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+EXISTS .* OR lower\(email\) = lower\(\$2\)`).
		WithArgs("testId1234", "test@gmail.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.ExistsByLoginCodeOrEmail(context.Background(), "testId1234", "test@gmail.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected true")
	}
}

func TestUpdate(t *testing.T) {
	tests := []struct {
		name     string
		result   sql.Result
		execErr  error
		checkErr func(error) bool
	}{
		{"updated", sqlmock.NewResult(0, 1), nil, func(err error) bool { return err == nil }},
		{"missing", sqlmock.NewResult(0, 0), nil, func(err error) bool { return errors.Is(err, common.ErrorNotFound) }},
		{"email taken", nil, &pgconn.PgError{Code: "23505"}, func(err error) bool { return errors.Is(err, common.ErrConflict) }},
		{"too many rows", sqlmock.NewResult(0, 2), nil, func(err error) bool { return err != nil && err.Error() == "unexpected rows affected: 2" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()

			exp := mock.ExpectExec(`(?s)^UPDATE\s+accounts\s+SET\b.*WHERE\s+id\s*=\s*\$1\s*$`)
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(tt.result)
			}

			err := repo.Update(context.Background(), sampleAccount(time.Now()))
			if !tt.checkErr(err) {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
