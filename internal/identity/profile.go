package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/ariefcatur/go-storefront/internal/apperr"
	"github.com/ariefcatur/go-storefront/internal/postgres"
	"github.com/ariefcatur/go-storefront/internal/validate"
	"github.com/jackc/pgx/v5"
)

type ProfileInput struct {
	FullName string `json:"full_name" validate:"required,max=120"`
	Phone    string `json:"phone" validate:"omitempty,phone"`
}

type ProfileRepo struct{ DB postgres.DB }

const profileColumns = `id, full_name, COALESCE(phone, ''), COALESCE(avatar_url, ''), role, created_at, updated_at`

func scanProfile(row pgx.Row) (Profile, error) {
	var p Profile
	err := row.Scan(&p.ID, &p.FullName, &p.Phone, &p.AvatarURL, &p.Role, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *ProfileRepo) Get(ctx context.Context, userID string) (*Profile, error) {
	p, err := scanProfile(r.DB.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Persistence("profile.get", err)
	}
	return &p, nil
}

// Update writes the editable fields, creating the row on first save. Role is
// never changed here.
func (r *ProfileRepo) Update(ctx context.Context, userID string, in ProfileInput) (Profile, error) {
	in.FullName, in.Phone = strings.TrimSpace(in.FullName), strings.TrimSpace(in.Phone)
	if err := validate.Struct(in); err != nil {
		return Profile{}, err
	}
	p, err := scanProfile(r.DB.QueryRow(ctx, `
		INSERT INTO profiles(id, full_name, phone) VALUES ($1, $2, NULLIF($3, ''))
		ON CONFLICT (id) DO UPDATE SET full_name = EXCLUDED.full_name, phone = EXCLUDED.phone, updated_at = now()
		RETURNING `+profileColumns, userID, in.FullName, in.Phone))
	if err != nil {
		return Profile{}, apperr.Persistence("profile.update", err)
	}
	return p, nil
}
