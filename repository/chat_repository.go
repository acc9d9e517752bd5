package repository

import (
	"context"

	"lexcase-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ChatRepository handles database operations for the append-only chat log
type ChatRepository struct {
	db *pgxpool.Pool
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{db: db}
}

// Insert appends a chat turn and assigns its ID. Turns are never updated or
// deleted afterwards.
func (r *ChatRepository) Insert(ctx context.Context, turn *models.ChatTurn) error {
	query := `
		INSERT INTO chat_turns (user_id, case_id, query, response, document)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRow(
		ctx, query,
		turn.UserID,
		turn.CaseID,
		turn.Query,
		turn.Response,
		turn.Document,
	).Scan(&turn.ID, &turn.CreatedAt)

	return err
}

// ListByUserID retrieves a user's chat turns, newest first. A non-nil caseID
// restricts the listing to that case's history.
func (r *ChatRepository) ListByUserID(ctx context.Context, userID uuid.UUID, caseID *uuid.UUID) ([]*models.ChatTurn, error) {
	query := `
		SELECT id, user_id, case_id, query, response, document, created_at
		FROM chat_turns
		WHERE user_id = $1`

	args := []interface{}{userID}
	if caseID != nil {
		query += " AND case_id = $2"
		args = append(args, *caseID)
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []*models.ChatTurn
	for rows.Next() {
		turn := &models.ChatTurn{}
		err := rows.Scan(
			&turn.ID,
			&turn.UserID,
			&turn.CaseID,
			&turn.Query,
			&turn.Response,
			&turn.Document,
			&turn.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		turns = append(turns, turn)
	}

	return turns, rows.Err()
}
