// Package memory is an in-memory unit of work and repository used by tests
// and local tooling. It mirrors the transactional surface of the postgres
// implementation: adds and removes are staged per scope and applied on
// Commit, so a handler error leaves the store untouched.
//
// Field mutations on loaded entities are NOT staged: entities are shared
// pointers into the store, so a mutation survives an uncommitted scope here
// even though postgres would roll it back. Tests must not depend on
// rollback of in-place mutations.
package memory

import (
	"context"
	"fmt"

	"user-service/internal/domain/entity"
	"user-service/internal/domain/message"
	"user-service/internal/domain/repository"
)

type store struct {
	users          []*entity.User
	profiles       []*entity.Profile
	friendRequests []*entity.FriendRequest
	friends        []*entity.Friend
}

// UnitOfWork is the in-memory repository.UnitOfWork. Committed tells tests
// whether the most recent scope committed; Dispatched records the ids the
// bus marked as fully handled.
type UnitOfWork struct {
	store      store
	last       *Repo
	Committed  bool
	Dispatched []string
}

func NewUnitOfWork() *UnitOfWork { return &UnitOfWork{} }

func (u *UnitOfWork) Enter(ctx context.Context) (repository.Scope, error) {
	repo := &Repo{store: &u.store, seenIDs: make(map[string]bool)}
	u.last = repo
	u.Committed = false
	return &scope{uow: u, repo: repo}, nil
}

func (u *UnitOfWork) CollectNewEvents() []message.Event {
	if u.last == nil {
		return nil
	}
	var evs []message.Event
	for _, ag := range u.last.Seen() {
		for {
			ev, ok := ag.PopEvent()
			if !ok {
				break
			}
			evs = append(evs, ev)
		}
	}
	return evs
}

func (u *UnitOfWork) MarkDispatched(ctx context.Context, ev message.Event) error {
	u.Dispatched = append(u.Dispatched, ev.MessageID())
	return nil
}

type scope struct {
	uow       *UnitOfWork
	repo      *Repo
	committed bool
}

func (s *scope) Repo() repository.Repository { return s.repo }

func (s *scope) Commit(ctx context.Context) error {
	s.repo.apply()
	s.committed = true
	s.uow.Committed = true
	return nil
}

func (s *scope) Exit(ctx context.Context) {
	if !s.committed {
		s.repo.discard()
	}
}

// Repo stages writes against the shared store until commit. Queries see the
// staged state, like reads inside an open transaction would.
type Repo struct {
	store   *store
	added   []entity.Aggregate
	removed map[string]bool
	seen    []entity.Aggregate
	seenIDs map[string]bool
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
	r.added = append(r.added, ag)
	r.markSeen(ag)
	return nil
}

func (r *Repo) Remove(ctx context.Context, ag entity.Aggregate) error {
	if r.removed == nil {
		r.removed = make(map[string]bool)
	}
	r.removed[ag.EntityID()] = true
	return nil
}

func (r *Repo) apply() {
	for _, ag := range r.added {
		switch e := ag.(type) {
		case *entity.User:
			r.store.users = append(r.store.users, e)
		case *entity.Profile:
			r.store.profiles = append(r.store.profiles, e)
		case *entity.FriendRequest:
			r.store.friendRequests = append(r.store.friendRequests, e)
		case *entity.Friend:
			r.store.friends = append(r.store.friends, e)
		default:
			panic(fmt.Sprintf("memory: unknown aggregate %T", ag))
		}
	}
	r.added = nil

	if len(r.removed) == 0 {
		return
	}
	users := r.store.users[:0]
	for _, u := range r.store.users {
		if !r.removed[u.ID] {
			users = append(users, u)
		}
	}
	r.store.users = users
	profiles := r.store.profiles[:0]
	for _, p := range r.store.profiles {
		if !r.removed[p.ID] {
			profiles = append(profiles, p)
		}
	}
	r.store.profiles = profiles
	frs := r.store.friendRequests[:0]
	for _, f := range r.store.friendRequests {
		if !r.removed[f.ID] {
			frs = append(frs, f)
		}
	}
	r.store.friendRequests = frs
	friends := r.store.friends[:0]
	for _, f := range r.store.friends {
		if !r.removed[f.ID] {
			friends = append(friends, f)
		}
	}
	r.store.friends = friends
	r.removed = nil
}

func (r *Repo) discard() {
	r.added = nil
	r.removed = nil
}

func (r *Repo) Users(ctx context.Context, by repository.Filters) ([]*entity.User, error) {
	var out []*entity.User
	for _, u := range r.allUsers() {
		if r.removed[u.ID] {
			continue
		}
		if matchUser(u, by) {
			out = append(out, u)
			r.markSeen(u)
		}
	}
	return out, nil
}

func (r *Repo) Profiles(ctx context.Context, by repository.Filters) ([]*entity.Profile, error) {
	var out []*entity.Profile
	for _, p := range r.allProfiles() {
		if r.removed[p.ID] {
			continue
		}
		if matchProfile(p, by) {
			out = append(out, p)
			r.markSeen(p)
		}
	}
	return out, nil
}

func (r *Repo) FriendRequests(ctx context.Context, by repository.Filters) ([]*entity.FriendRequest, error) {
	var out []*entity.FriendRequest
	for _, f := range r.allFriendRequests() {
		if r.removed[f.ID] {
			continue
		}
		if matchFriendRequest(f, by) {
			out = append(out, f)
			r.markSeen(f)
		}
	}
	return out, nil
}

func (r *Repo) Friends(ctx context.Context, by repository.Filters) ([]*entity.Friend, error) {
	var out []*entity.Friend
	for _, f := range r.allFriends() {
		if r.removed[f.ID] {
			continue
		}
		if matchFriend(f, by) {
			out = append(out, f)
			r.markSeen(f)
		}
	}
	return out, nil
}

func (r *Repo) allUsers() []*entity.User {
	out := append([]*entity.User(nil), r.store.users...)
	for _, ag := range r.added {
		if u, ok := ag.(*entity.User); ok {
			out = append(out, u)
		}
	}
	return out
}

func (r *Repo) allProfiles() []*entity.Profile {
	out := append([]*entity.Profile(nil), r.store.profiles...)
	for _, ag := range r.added {
		if p, ok := ag.(*entity.Profile); ok {
			out = append(out, p)
		}
	}
	return out
}

func (r *Repo) allFriendRequests() []*entity.FriendRequest {
	out := append([]*entity.FriendRequest(nil), r.store.friendRequests...)
	for _, ag := range r.added {
		if f, ok := ag.(*entity.FriendRequest); ok {
			out = append(out, f)
		}
	}
	return out
}

func (r *Repo) allFriends() []*entity.Friend {
	out := append([]*entity.Friend(nil), r.store.friends...)
	for _, ag := range r.added {
		if f, ok := ag.(*entity.Friend); ok {
			out = append(out, f)
		}
	}
	return out
}

func matchUser(u *entity.User, by repository.Filters) bool {
	for attr, val := range by {
		var got string
		switch attr {
		case "id":
			got = u.ID
		case "username":
			got = u.Username
		case "email":
			got = u.Email
		case "secret_token":
			got = u.SecretToken
		case "message_id":
			got = u.MessageID
		default:
			panic(fmt.Sprintf("memory: users have no filterable attribute %q", attr))
		}
		if got != fmt.Sprintf("%v", val) {
			return false
		}
	}
	return true
}

func matchProfile(p *entity.Profile, by repository.Filters) bool {
	for attr, val := range by {
		var got string
		switch attr {
		case "id":
			got = p.ID
		case "user_id":
			got = p.UserID
		case "message_id":
			got = p.MessageID
		default:
			panic(fmt.Sprintf("memory: profiles have no filterable attribute %q", attr))
		}
		if got != fmt.Sprintf("%v", val) {
			return false
		}
	}
	return true
}

func matchFriendRequest(f *entity.FriendRequest, by repository.Filters) bool {
	for attr, val := range by {
		var got string
		switch attr {
		case "id":
			got = f.ID
		case "sender_id":
			got = f.SenderID
		case "receiver_id":
			got = f.ReceiverID
		case "message_id":
			got = f.MessageID
		default:
			panic(fmt.Sprintf("memory: friend requests have no filterable attribute %q", attr))
		}
		if got != fmt.Sprintf("%v", val) {
			return false
		}
	}
	return true
}

func matchFriend(f *entity.Friend, by repository.Filters) bool {
	for attr, val := range by {
		var got string
		switch attr {
		case "id":
			got = f.ID
		case "sender_id":
			got = f.SenderID
		case "receiver_id":
			got = f.ReceiverID
		case "message_id":
			got = f.MessageID
		default:
			panic(fmt.Sprintf("memory: friends have no filterable attribute %q", attr))
		}
		if got != fmt.Sprintf("%v", val) {
			return false
		}
	}
	return true
}

var (
	_ repository.UnitOfWork = (*UnitOfWork)(nil)
	_ repository.Repository = (*Repo)(nil)
)
