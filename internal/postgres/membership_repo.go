package postgres

import (
	"context"

	"github.com/chat-relay/relay-service/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MembershipRepository manages room_members, the per-room authorized user
// list consulted on every register.
type MembershipRepository struct {
	db *pgxpool.Pool
}

func NewMembershipRepository(db *pgxpool.Pool) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// Grant authorizes userID for the room. Grant is guarded against races with
// a concurrent grant for the same pair via ON CONFLICT.
func (r *MembershipRepository) Grant(ctx context.Context, roomID string, userID int64) error {
	cmd, err := r.db.Exec(ctx, `
		INSERT INTO room_members (room_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, roomID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrAlreadyMember
	}
	return nil
}

func (r *MembershipRepository) Revoke(ctx context.Context, roomID string, userID int64) error {
	cmd, err := r.db.Exec(ctx,
		`DELETE FROM room_members WHERE room_id=$1 AND user_id=$2`, roomID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotMember
	}
	return nil
}

func (r *MembershipRepository) ListByRoom(ctx context.Context, roomID string) ([]int64, error) {
	rows, err := r.db.Query(ctx,
		`SELECT user_id FROM room_members WHERE room_id=$1 ORDER BY user_id ASC`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var uid int64
		if err := rows.Scan(&uid); err != nil {
			return nil, err
		}
		ids = append(ids, uid)
	}
	return ids, rows.Err()
}
