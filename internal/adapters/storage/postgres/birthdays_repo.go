package postgres

import (
	"context"
	"database/sql"
	"strings"

	"birthday-reminders/internal/domain/birthdays"
)

type BirthdaysRepo struct {
	db *sql.DB
}

func NewBirthdaysRepo(db *sql.DB) *BirthdaysRepo {
	return &BirthdaysRepo{db: db}
}

const birthdayColumns = `
	id, owner_user_id,
	name, relationship, bdate,
	image_url, memo,
	created_at, updated_at
`

func (r *BirthdaysRepo) Create(ctx context.Context, b birthdays.Birthday) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO birthdays (`+birthdayColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		b.ID,
		b.OwnerUserID,
		b.Name,
		b.Relationship,
		b.BirthDate,
		b.ImageURL,
		b.Memo,
		b.CreatedAt,
		b.UpdatedAt,
	)
	return err
}

func (r *BirthdaysRepo) Update(ctx context.Context, b birthdays.Birthday) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE birthdays
		SET
			name = $3,
			relationship = $4,
			bdate = $5,
			image_url = $6,
			memo = $7,
			updated_at = $8
		WHERE id = $1 AND owner_user_id = $2
	`,
		b.ID,
		b.OwnerUserID,
		b.Name,
		b.Relationship,
		b.BirthDate,
		b.ImageURL,
		b.Memo,
		b.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *BirthdaysRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM birthdays WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *BirthdaysRepo) GetByID(ctx context.Context, id string) (birthdays.Birthday, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return birthdays.Birthday{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+birthdayColumns+`
		FROM birthdays
		WHERE id = $1
	`, id)

	b, err := scanBirthday(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return birthdays.Birthday{}, ErrNotFound
		}
		return birthdays.Birthday{}, err
	}
	return b, nil
}

func (r *BirthdaysRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]birthdays.Birthday, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+birthdayColumns+`
		FROM birthdays
		WHERE owner_user_id = $1
		ORDER BY created_at ASC, id ASC
	`, ownerUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]birthdays.Birthday, 0)
	for rows.Next() {
		b, err := scanBirthday(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}

	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBirthday(row rowScanner) (birthdays.Birthday, error) {
	var b birthdays.Birthday
	err := row.Scan(
		&b.ID,
		&b.OwnerUserID,
		&b.Name,
		&b.Relationship,
		&b.BirthDate,
		&b.ImageURL,
		&b.Memo,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	return b, err
}
