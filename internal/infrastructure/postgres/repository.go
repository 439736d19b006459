package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"user-service/internal/domain/entity"
	"user-service/internal/domain/repository"
)

// filterColumns whitelists the attributes each table can be filtered on.
// Filtering on anything else is a programmer error and panics.
var filterColumns = map[string]map[string]bool{
	"users": {
		"id": true, "username": true, "email": true,
		"secret_token": true, "message_id": true,
	},
	"profiles": {
		"id": true, "user_id": true, "message_id": true,
	},
	"friend_requests": {
		"id": true, "sender_id": true, "receiver_id": true, "message_id": true,
	},
	"friends": {
		"id": true, "sender_id": true, "receiver_id": true, "message_id": true,
	},
}

// Repo is a pgx-backed repository bound to one transaction. Entities passed
// to Add or returned by a query are recorded as seen, in append order, so
// the unit of work can harvest their events deterministically.
type Repo struct {
	tx      pgx.Tx
	seen    []entity.Aggregate
	seenIDs map[string]bool
	removed map[string]bool
}

func newRepo(tx pgx.Tx) *Repo {
	return &Repo{
		tx:      tx,
		seenIDs: make(map[string]bool),
		removed: make(map[string]bool),
	}
}

func (r *Repo) markSeen(ag entity.Aggregate) {
	if r.seenIDs[ag.EntityID()] {
		return
	}
	r.seenIDs[ag.EntityID()] = true
	r.seen = append(r.seen, ag)
}

func (r *Repo) Seen() []entity.Aggregate { return r.seen }

func (r *Repo) Add(ctx context.Context, ag entity.Aggregate) error {
	if err := r.persist(ctx, ag); err != nil {
		return err
	}
	r.markSeen(ag)
	return nil
}

func (r *Repo) Remove(ctx context.Context, ag entity.Aggregate) error {
	var table string
	switch ag.(type) {
	case *entity.User:
		table = "users"
	case *entity.Profile:
		table = "profiles"
	case *entity.FriendRequest:
		table = "friend_requests"
	case *entity.Friend:
		table = "friends"
	default:
		panic(fmt.Sprintf("postgres: unknown aggregate %T", ag))
	}
	if _, err := r.tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), ag.EntityID()); err != nil {
		return err
	}
	r.removed[ag.EntityID()] = true
	return nil
}

// persist upserts, so Add and the commit-time flush of mutated entities go
// through the same statement.
func (r *Repo) persist(ctx context.Context, ag entity.Aggregate) error {
	var err error
	switch e := ag.(type) {
	case *entity.User:
		_, err = r.tx.Exec(ctx, `
			INSERT INTO users (id, username, email, password, secret_token, two_factor_auth_enabled, locked, message_id, created_time, updated_time)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (id) DO UPDATE SET
				username = EXCLUDED.username,
				email = EXCLUDED.email,
				password = EXCLUDED.password,
				secret_token = EXCLUDED.secret_token,
				two_factor_auth_enabled = EXCLUDED.two_factor_auth_enabled,
				locked = EXCLUDED.locked,
				updated_time = EXCLUDED.updated_time
		`, e.ID, e.Username, e.Email, e.Password, e.SecretToken, e.TwoFactorAuthEnabled, e.Locked, e.MessageID, e.CreatedTime, e.UpdatedTime)
	case *entity.Profile:
		_, err = r.tx.Exec(ctx, `
			INSERT INTO profiles (id, user_id, first_name, last_name, backup_email, gender, date_of_birth, avatar_url, friends, followers, message_id, created_time, updated_time)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			ON CONFLICT (id) DO UPDATE SET
				first_name = EXCLUDED.first_name,
				last_name = EXCLUDED.last_name,
				backup_email = EXCLUDED.backup_email,
				gender = EXCLUDED.gender,
				date_of_birth = EXCLUDED.date_of_birth,
				avatar_url = EXCLUDED.avatar_url,
				friends = EXCLUDED.friends,
				followers = EXCLUDED.followers,
				updated_time = EXCLUDED.updated_time
		`, e.ID, e.UserID, e.FirstName, e.LastName, e.BackupEmail, e.Gender, e.DateOfBirth, e.AvatarURL, e.Friends, e.Followers, e.MessageID, e.CreatedTime, e.UpdatedTime)
	case *entity.FriendRequest:
		_, err = r.tx.Exec(ctx, `
			INSERT INTO friend_requests (id, sender_id, receiver_id, message_id, created_time, updated_time)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET updated_time = EXCLUDED.updated_time
		`, e.ID, e.SenderID, e.ReceiverID, e.MessageID, e.CreatedTime, e.UpdatedTime)
	case *entity.Friend:
		_, err = r.tx.Exec(ctx, `
			INSERT INTO friends (id, sender_id, receiver_id, message_id, created_time)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO NOTHING
		`, e.ID, e.SenderID, e.ReceiverID, e.MessageID, e.CreatedTime)
	default:
		panic(fmt.Sprintf("postgres: unknown aggregate %T", ag))
	}
	return err
}

// flush re-persists every seen, not removed entity so mutations made after
// load reach the database before commit.
func (r *Repo) flush(ctx context.Context) error {
	for _, ag := range r.seen {
		if r.removed[ag.EntityID()] {
			continue
		}
		if err := r.persist(ctx, ag); err != nil {
			return err
		}
	}
	return nil
}

func whereClause(table string, by repository.Filters) (string, []any) {
	allowed := filterColumns[table]
	conds := make([]string, 0, len(by))
	args := make([]any, 0, len(by))
	for attr, val := range by {
		if !allowed[attr] {
			panic(fmt.Sprintf("postgres: table %s has no filterable attribute %q", table, attr))
		}
		args = append(args, val)
		conds = append(conds, fmt.Sprintf("%s::text = $%d", attr, len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *Repo) Users(ctx context.Context, by repository.Filters) ([]*entity.User, error) {
	where, args := whereClause("users", by)
	rows, err := r.tx.Query(ctx, `
		SELECT id, username, email, password, secret_token, two_factor_auth_enabled, locked, message_id, created_time, updated_time
		FROM users`+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.User
	for rows.Next() {
		u := &entity.User{}
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.SecretToken,
			&u.TwoFactorAuthEnabled, &u.Locked, &u.MessageID, &u.CreatedTime, &u.UpdatedTime); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, u := range out {
		r.markSeen(u)
	}
	return out, nil
}

func (r *Repo) Profiles(ctx context.Context, by repository.Filters) ([]*entity.Profile, error) {
	where, args := whereClause("profiles", by)
	rows, err := r.tx.Query(ctx, `
		SELECT id, user_id, first_name, last_name, backup_email, gender, date_of_birth, avatar_url, friends, followers, message_id, created_time, updated_time
		FROM profiles`+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Profile
	for rows.Next() {
		p := &entity.Profile{}
		if err := rows.Scan(&p.ID, &p.UserID, &p.FirstName, &p.LastName, &p.BackupEmail, &p.Gender,
			&p.DateOfBirth, &p.AvatarURL, &p.Friends, &p.Followers, &p.MessageID, &p.CreatedTime, &p.UpdatedTime); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, p := range out {
		r.markSeen(p)
	}
	return out, nil
}

func (r *Repo) FriendRequests(ctx context.Context, by repository.Filters) ([]*entity.FriendRequest, error) {
	where, args := whereClause("friend_requests", by)
	rows, err := r.tx.Query(ctx, `
		SELECT id, sender_id, receiver_id, message_id, created_time, updated_time
		FROM friend_requests`+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.FriendRequest
	for rows.Next() {
		f := &entity.FriendRequest{}
		if err := rows.Scan(&f.ID, &f.SenderID, &f.ReceiverID, &f.MessageID, &f.CreatedTime, &f.UpdatedTime); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, f := range out {
		r.markSeen(f)
	}
	return out, nil
}

func (r *Repo) Friends(ctx context.Context, by repository.Filters) ([]*entity.Friend, error) {
	where, args := whereClause("friends", by)
	rows, err := r.tx.Query(ctx, `
		SELECT id, sender_id, receiver_id, message_id, created_time
		FROM friends`+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Friend
	for rows.Next() {
		f := &entity.Friend{}
		if err := rows.Scan(&f.ID, &f.SenderID, &f.ReceiverID, &f.MessageID, &f.CreatedTime); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, f := range out {
		r.markSeen(f)
	}
	return out, nil
}

var _ repository.Repository = (*Repo)(nil)
