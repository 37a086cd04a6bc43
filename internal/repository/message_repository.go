package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/blood-uber/server/internal/model"
)

// MessageRepo provides the messaging inbox: direct messages between
// two users, plus the conversation list that shows one entry per
// counterpart with the latest message.
type MessageRepo struct{ db *sql.DB }

func NewMessageRepo(db *sql.DB) *MessageRepo { return &MessageRepo{db: db} }

// Create inserts a message and stamps its creation time.
func (r *MessageRepo) Create(ctx context.Context, m *model.Message) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO messages (sender_id, recipient_id, content, is_read, created_at)
		 VALUES (?,?,?,?,?)`,
		m.SenderID, m.RecipientID, m.Content, m.IsRead, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	m.CreatedAt = now
	return nil
}

// ListBetween returns the full thread between two users in
// chronological ascending order, regardless of direction.
func (r *MessageRepo) ListBetween(ctx context.Context, a, b uint64) ([]model.Message, error) {
	const q = `SELECT id, sender_id, recipient_id, content, is_read, created_at
		FROM messages
		WHERE (sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)
		ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q, a, b, b, a)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Message, 0)
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Content, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Conversation is one inbox entry: the counterpart's identity and the
// most recent message exchanged with them.
type Conversation struct {
	User        model.User    `json:"user"`
	LastMessage model.Message `json:"lastMessage"`
}

// ConversationsForUser returns one entry per distinct counterpart of
// userID, each carrying the chronologically latest message, ordered
// most recent first. The grouped subquery keys the latest message by
// MAX(id), which tracks creation order for the append-only table.
func (r *MessageRepo) ConversationsForUser(ctx context.Context, userID uint64) ([]Conversation, error) {
	const q = `SELECT m.id, m.sender_id, m.recipient_id, m.content, m.is_read, m.created_at,
			u.id, u.username, u.email, u.first_name, u.last_name, u.phone, u.blood_group,
			u.user_type, u.location, u.availability, u.is_verified, u.lat, u.lng, u.created_at, u.updated_at
		FROM messages m
		JOIN (
			SELECT CASE WHEN sender_id = ? THEN recipient_id ELSE sender_id END AS counterpart,
			       MAX(id) AS last_id
			FROM messages
			WHERE sender_id = ? OR recipient_id = ?
			GROUP BY counterpart
		) latest ON latest.last_id = m.id
		JOIN users u ON u.id = latest.counterpart
		ORDER BY m.created_at DESC, m.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Conversation, 0)
	for rows.Next() {
		var c Conversation
		var phone, availability sql.NullString
		if err := rows.Scan(
			&c.LastMessage.ID, &c.LastMessage.SenderID, &c.LastMessage.RecipientID,
			&c.LastMessage.Content, &c.LastMessage.IsRead, &c.LastMessage.CreatedAt,
			&c.User.ID, &c.User.Username, &c.User.Email, &c.User.FirstName, &c.User.LastName,
			&phone, &c.User.BloodGroup, &c.User.UserType, &c.User.Location, &availability,
			&c.User.IsVerified, &c.User.Lat, &c.User.Lng, &c.User.CreatedAt, &c.User.UpdatedAt,
		); err != nil {
			return nil, err
		}
		c.User.Phone = phone.String
		c.User.Availability = availability.String
		out = append(out, c)
	}
	return out, rows.Err()
}

// MarkRead flags every unread message sent by counterpart to userID as
// read and returns the number of rows updated.
func (r *MessageRepo) MarkRead(ctx context.Context, userID, counterpartID uint64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE messages SET is_read = TRUE
		 WHERE recipient_id = ? AND sender_id = ? AND is_read = FALSE`,
		userID, counterpartID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
