package identity

import (
	"context"
	"testing"
	"time"

	"github.com/ariefcatur/go-storefront/internal/apperr"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var profileCols = []string{"id", "full_name", "phone", "avatar_url", "role", "created_at", "updated_at"}

func TestProfileRepoGet(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM profiles").WithArgs("u1").
		WillReturnRows(pgxmock.NewRows(profileCols).AddRow("u1", "Asha Rao", "", "", "admin", now, now))
	mock.ExpectQuery("FROM profiles").WithArgs("u2").WillReturnError(pgx.ErrNoRows)

	r := &ProfileRepo{DB: mock}
	p, err := r.Get(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, RoleAdmin, p.Role)

	missing, err := r.Get(context.Background(), "u2")
	assert.NoError(t, err)
	assert.Nil(t, missing)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepoUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO profiles").WithArgs("u1", "Asha Rao", "+91 9876 543210").
		WillReturnRows(pgxmock.NewRows(profileCols).AddRow("u1", "Asha Rao", "+91 9876 543210", "", "customer", now, now))

	r := &ProfileRepo{DB: mock}
	p, err := r.Update(context.Background(), "u1", ProfileInput{FullName: "  Asha Rao ", Phone: "+91 9876 543210"})
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", p.FullName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepoUpdateValidates(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := &ProfileRepo{DB: mock}
	_, err = r.Update(context.Background(), "u1", ProfileInput{FullName: "", Phone: "call me"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.NoError(t, mock.ExpectationsWereMet())
}
