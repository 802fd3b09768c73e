package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/quizify/internal/quizify/domain"
	"github.com/aussiebroadwan/quizify/internal/quizify/store"
)

type usersRepo struct {
	q *queries
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	created := u.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	var expires sql.NullTime
	if u.VerificationExpires != nil {
		expires = sql.NullTime{Time: u.VerificationExpires.UTC(), Valid: true}
	}

	err := r.q.CreateUser(ctx, createUserParams{
		ID:                  u.ID,
		FirstName:           u.FirstName,
		LastName:            u.LastName,
		Email:               u.Email,
		PasswordHash:        u.PasswordHash,
		Role:                u.Role,
		IsVerified:          u.IsVerified,
		VerificationToken:   mapStringNull(u.VerificationTokenHash),
		VerificationExpires: expires,
		CreatedAt:           created.UTC(),
	})
	return mapConstraint(err)
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row, err := r.q.GetUserByID(ctx, id)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row, err := r.q.GetUserByEmail(ctx, email)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) GetUserByVerificationToken(ctx context.Context, tokenHash string) (domain.User, error) {
	row, err := r.q.GetUserByVerificationToken(ctx, tokenHash)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) SetVerificationToken(ctx context.Context, userID, tokenHash string, expires time.Time) error {
	n, err := r.q.SetVerificationToken(ctx, userID, tokenHash, expires.UTC(), time.Now().UTC())
	if err != nil {
		return mapConstraint(err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *usersRepo) ConsumeVerificationToken(ctx context.Context, tokenHash string, now time.Time) (domain.User, error) {
	row, err := r.q.ConsumeVerificationToken(ctx, tokenHash, now.UTC())
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) AddPoints(ctx context.Context, userID string, delta int) error {
	n, err := r.q.AddUserPoints(ctx, userID, delta, time.Now().UTC())
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func mapUser(row userRow) domain.User {
	return domain.User{
		ID:                    row.ID,
		FirstName:             row.FirstName,
		LastName:              row.LastName,
		Email:                 row.Email,
		PasswordHash:          row.PasswordHash,
		Role:                  row.Role,
		IsVerified:            row.IsVerified,
		VerificationTokenHash: mapNullString(row.VerificationToken),
		VerificationExpires:   mapNullTimePtr(row.VerificationExpires),
		TotalPoints:           row.TotalPoints,
		CreatedAt:             row.CreatedAt.UTC(),
		UpdatedAt:             row.UpdatedAt.UTC(),
	}
}
