package application

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Views answers read-after-write queries outside any unit of work. A row can
// be located either by its entity id or by the correlation id of the command
// that produced it, so the API layer can find what an in-flight write
// created before the handler's return value is available.
type Views struct {
	pool *pgxpool.Pool
}

func NewViews(pool *pgxpool.Pool) *Views {
	return &Views{pool: pool}
}

// viewTables is the closed set of tables exposed to identifier lookup; table
// names are never taken from request input directly.
var viewTables = map[string]bool{
	"users":           true,
	"profiles":        true,
	"friend_requests": true,
	"friends":         true,
}

// Fetch returns the row whose id or message_id equals identifier, or nil if
// no such row exists.
func (v *Views) Fetch(ctx context.Context, table, identifier string) (map[string]any, error) {
	if !viewTables[table] {
		return nil, fmt.Errorf("views: unknown table %q", table)
	}
	sql := fmt.Sprintf(`SELECT * FROM %s WHERE id::text = $1 OR message_id::text = $1`, table)
	rows, err := v.pool.Query(ctx, sql, identifier)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	values, err := rows.Values()
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(values))
	for i, fd := range rows.FieldDescriptions() {
		out[fd.Name] = values[i]
	}
	return out, rows.Err()
}

// FetchProfileByUser returns the profile row owned by userID, or nil.
func (v *Views) FetchProfileByUser(ctx context.Context, userID string) (map[string]any, error) {
	rows, err := v.pool.Query(ctx, `SELECT * FROM profiles WHERE user_id::text = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	values, err := rows.Values()
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(values))
	for i, fd := range rows.FieldDescriptions() {
		out[fd.Name] = values[i]
	}
	return out, rows.Err()
}

// FriendsOf lists the users on the other end of every friend edge touching
// userID.
func (v *Views) FriendsOf(ctx context.Context, userID string) ([]map[string]any, error) {
	rows, err := v.pool.Query(ctx, `
		SELECT u.id::text, u.username, u.email
		FROM friends f
		JOIN users u ON u.id = CASE WHEN f.sender_id::text = $1 THEN f.receiver_id ELSE f.sender_id END
		WHERE f.sender_id::text = $1 OR f.receiver_id::text = $1
		ORDER BY f.created_time
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []map[string]any
	for rows.Next() {
		var id, username, email string
		if err := rows.Scan(&id, &username, &email); err != nil {
			return nil, err
		}
		out = append(out, map[string]any{"id": id, "username": username, "email": email})
	}
	return out, rows.Err()
}
