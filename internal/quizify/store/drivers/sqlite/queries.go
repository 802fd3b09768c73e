package sqlite

import (
	"context"
	"database/sql"
	"time"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx so the same queries run
// inside and outside transactions.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type queries struct {
	db dbtx
}

func newQueries(db dbtx) *queries {
	return &queries{db: db}
}

type userRow struct {
	ID                  string
	FirstName           string
	LastName            string
	Email               string
	PasswordHash        string
	Role                string
	IsVerified          bool
	VerificationToken   sql.NullString
	VerificationExpires sql.NullTime
	TotalPoints         int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

const userColumns = `id, first_name, last_name, email, password_hash, role, is_verified,
	verification_token, verification_expires, total_points, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (userRow, error) {
	var u userRow
	err := row.Scan(
		&u.ID,
		&u.FirstName,
		&u.LastName,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.IsVerified,
		&u.VerificationToken,
		&u.VerificationExpires,
		&u.TotalPoints,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

type createUserParams struct {
	ID                  string
	FirstName           string
	LastName            string
	Email               string
	PasswordHash        string
	Role                string
	IsVerified          bool
	VerificationToken   sql.NullString
	VerificationExpires sql.NullTime
	CreatedAt           time.Time
}

const createUser = `INSERT INTO users (
	id, first_name, last_name, email, password_hash, role, is_verified,
	verification_token, verification_expires, total_points, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`

func (q *queries) CreateUser(ctx context.Context, arg createUserParams) error {
	_, err := q.db.ExecContext(ctx, createUser,
		arg.ID,
		arg.FirstName,
		arg.LastName,
		arg.Email,
		arg.PasswordHash,
		arg.Role,
		arg.IsVerified,
		arg.VerificationToken,
		arg.VerificationExpires,
		arg.CreatedAt,
		arg.CreatedAt,
	)
	return err
}

const getUserByID = `SELECT ` + userColumns + ` FROM users WHERE id = ?`

func (q *queries) GetUserByID(ctx context.Context, id string) (userRow, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByID, id))
}

const getUserByEmail = `SELECT ` + userColumns + ` FROM users WHERE email = ?`

func (q *queries) GetUserByEmail(ctx context.Context, email string) (userRow, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByEmail, email))
}

const getUserByVerificationToken = `SELECT ` + userColumns + ` FROM users WHERE verification_token = ?`

func (q *queries) GetUserByVerificationToken(ctx context.Context, tokenHash string) (userRow, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByVerificationToken, tokenHash))
}

const setVerificationToken = `UPDATE users
SET verification_token = ?, verification_expires = ?, updated_at = ?
WHERE id = ?`

func (q *queries) SetVerificationToken(ctx context.Context, id, tokenHash string, expires, now time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, setVerificationToken, tokenHash, expires, now, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const consumeVerificationToken = `UPDATE users
SET is_verified = 1, verification_token = NULL, verification_expires = NULL, updated_at = ?
WHERE verification_token = ? AND verification_expires > ?
RETURNING ` + userColumns

func (q *queries) ConsumeVerificationToken(ctx context.Context, tokenHash string, now time.Time) (userRow, error) {
	return scanUser(q.db.QueryRowContext(ctx, consumeVerificationToken, now, tokenHash, now))
}

const addUserPoints = `UPDATE users
SET total_points = total_points + ?, updated_at = ?
WHERE id = ?`

func (q *queries) AddUserPoints(ctx context.Context, id string, delta int, now time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, addUserPoints, delta, now, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type historyRow struct {
	ID          string
	UserID      string
	QuizID      string
	Score       int
	CompletedAt time.Time
}

const historyColumns = `id, user_id, quiz_id, score, completed_at`

func scanHistory(row interface{ Scan(...any) error }) (historyRow, error) {
	var h historyRow
	err := row.Scan(&h.ID, &h.UserID, &h.QuizID, &h.Score, &h.CompletedAt)
	return h, err
}

const getHistoryResult = `SELECT ` + historyColumns + ` FROM quiz_history WHERE user_id = ? AND quiz_id = ?`

func (q *queries) GetHistoryResult(ctx context.Context, userID, quizID string) (historyRow, error) {
	return scanHistory(q.db.QueryRowContext(ctx, getHistoryResult, userID, quizID))
}

const upsertHistoryResult = `INSERT INTO quiz_history (id, user_id, quiz_id, score, completed_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (user_id, quiz_id) DO UPDATE
SET score = excluded.score, completed_at = excluded.completed_at
RETURNING ` + historyColumns

func (q *queries) UpsertHistoryResult(ctx context.Context, arg historyRow) (historyRow, error) {
	return scanHistory(q.db.QueryRowContext(ctx, upsertHistoryResult,
		arg.ID,
		arg.UserID,
		arg.QuizID,
		arg.Score,
		arg.CompletedAt,
	))
}

const countHistoryByUser = `SELECT COUNT(*) FROM quiz_history WHERE user_id = ?`

func (q *queries) CountHistoryByUser(ctx context.Context, userID string) (int, error) {
	var n int
	err := q.db.QueryRowContext(ctx, countHistoryByUser, userID).Scan(&n)
	return n, err
}

const listHistoryByUser = `SELECT ` + historyColumns + ` FROM quiz_history
WHERE user_id = ?
ORDER BY completed_at DESC, id DESC
LIMIT ? OFFSET ?`

func (q *queries) ListHistoryByUser(ctx context.Context, userID string, limit, offset int) ([]historyRow, error) {
	rows, err := q.db.QueryContext(ctx, listHistoryByUser, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []historyRow
	for rows.Next() {
		h, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
