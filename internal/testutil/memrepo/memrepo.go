// Package memrepo holds map backed repositories that behave like the gorm
// ones, cascades included. Tests use them in place of PostgreSQL.
package memrepo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"anoa.com/communityforum/internal/entity"
	categoryRepo "anoa.com/communityforum/internal/modules/category/repository"
	commentRepo "anoa.com/communityforum/internal/modules/comment/repository"
	resetRepo "anoa.com/communityforum/internal/modules/resetpassword/repository"
	sujetRepo "anoa.com/communityforum/internal/modules/sujet/repository"
	userRepo "anoa.com/communityforum/internal/modules/user/repository"
	"gorm.io/gorm"
)

type Store struct {
	mu         sync.Mutex
	seq        map[string]uint
	users      map[uint]entity.User
	categories map[uint]entity.Category
	sujets     map[uint]entity.Sujet
	comments   map[uint]entity.Comment
	resets     map[uint]entity.ResetPasswordRequest

	Users         *Users
	Categories    *Categories
	Sujets        *Sujets
	Comments      *Comments
	ResetRequests *ResetRequests
}

func New() *Store {
	s := &Store{
		seq:        make(map[string]uint),
		users:      make(map[uint]entity.User),
		categories: make(map[uint]entity.Category),
		sujets:     make(map[uint]entity.Sujet),
		comments:   make(map[uint]entity.Comment),
		resets:     make(map[uint]entity.ResetPasswordRequest),
	}
	s.Users = &Users{s}
	s.Categories = &Categories{s}
	s.Sujets = &Sujets{s}
	s.Comments = &Comments{s}
	s.ResetRequests = &ResetRequests{s}
	return s
}

func (s *Store) next(table string) uint {
	s.seq[table]++
	return s.seq[table]
}

func (s *Store) userView(u entity.User) *entity.User {
	out := u
	out.Roles = append(entity.RoleSet{}, u.Roles...)
	if u.EmailVerificationToken != nil {
		token := *u.EmailVerificationToken
		out.EmailVerificationToken = &token
	}
	return &out
}

func (s *Store) sujetView(v entity.Sujet) *entity.Sujet {
	out := v
	out.Category = nil
	if c, ok := s.categories[v.CategoryID]; ok {
		out.Category = &c
	}
	return &out
}

func (s *Store) commentView(v entity.Comment) *entity.Comment {
	out := v
	out.Subject, out.AuthorUser = nil, nil
	if sj, ok := s.sujets[v.SubjectID]; ok {
		out.Subject = s.sujetView(sj)
	}
	if v.UserID != nil {
		id := *v.UserID
		out.UserID = &id
		if u, ok := s.users[id]; ok {
			out.AuthorUser = s.userView(u)
		}
	}
	return &out
}

func (s *Store) deleteSujet(id uint) {
	delete(s.sujets, id)
	for cid, c := range s.comments {
		if c.SubjectID == id {
			delete(s.comments, cid)
		}
	}
}

// Users implements the user repository.
type Users struct{ s *Store }

func (r *Users) Create(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email || u.Username == user.Username {
			return gorm.ErrDuplicatedKey
		}
	}
	user.ID = r.s.next("users")
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	if user.Roles == nil {
		user.Roles = entity.RoleSet{}
	}
	r.s.users[user.ID] = *r.s.userView(*user)
	return nil
}

func (r *Users) Update(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, u := range r.s.users {
		if id != user.ID && (u.Email == user.Email || u.Username == user.Username) {
			return gorm.ErrDuplicatedKey
		}
	}
	r.s.users[user.ID] = *r.s.userView(*user)
	return nil
}

func (r *Users) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.users, id)
	for cid, c := range r.s.comments {
		if c.UserID != nil && *c.UserID == id {
			c.UserID = nil
			r.s.comments[cid] = c
		}
	}
	for rid, req := range r.s.resets {
		if req.UserID == id {
			delete(r.s.resets, rid)
		}
	}
	return nil
}

func (r *Users) FindByID(_ context.Context, id uint) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.s.userView(u), nil
}

func (r *Users) findOne(match func(entity.User) bool) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if match(u) {
			return r.s.userView(u), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *Users) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.findOne(func(u entity.User) bool { return u.Email == email })
}

func (r *Users) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	return r.findOne(func(u entity.User) bool { return u.Username == username })
}

func (r *Users) FindByVerificationToken(_ context.Context, token string) (*entity.User, error) {
	return r.findOne(func(u entity.User) bool {
		return u.EmailVerificationToken != nil && *u.EmailVerificationToken == token
	})
}

func (r *Users) sorted(less func(a, b *entity.User) bool) []*entity.User {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	users := make([]*entity.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		users = append(users, r.s.userView(u))
	}
	sort.Slice(users, func(i, j int) bool { return less(users[i], users[j]) })
	return users
}

func (r *Users) FindAll(_ context.Context) ([]*entity.User, error) {
	return r.sorted(func(a, b *entity.User) bool { return a.ID > b.ID }), nil
}

func (r *Users) FindLatest(_ context.Context, limit int) ([]*entity.User, error) {
	users := r.sorted(func(a, b *entity.User) bool {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return a.ID > b.ID
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	return limitSlice(users, limit), nil
}

func (r *Users) Count(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.users)), nil
}

// Categories implements the category repository.
type Categories struct{ s *Store }

func (r *Categories) Create(_ context.Context, category *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	category.ID = r.s.next("categories")
	r.s.categories[category.ID] = *category
	return nil
}

func (r *Categories) Update(_ context.Context, category *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.categories[category.ID] = *category
	return nil
}

func (r *Categories) FindByID(_ context.Context, id uint) (*entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (r *Categories) FindByName(_ context.Context, name string) (*entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.categories {
		if c.Name == name {
			out := c
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *Categories) FindAll(_ context.Context) ([]*entity.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	categories := make([]*entity.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		out := c
		categories = append(categories, &out)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })
	return categories, nil
}

func (r *Categories) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.categories, id)
	for sid, sj := range r.s.sujets {
		if sj.CategoryID == id {
			r.s.deleteSujet(sid)
		}
	}
	return nil
}

func (r *Categories) Count(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.categories)), nil
}

// Sujets implements the subject repository.
type Sujets struct{ s *Store }

func (r *Sujets) Create(_ context.Context, sujet *entity.Sujet) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[sujet.CategoryID]; !ok {
		return gorm.ErrForeignKeyViolated
	}
	sujet.ID = r.s.next("sujets")
	if sujet.CreatedAt.IsZero() {
		sujet.CreatedAt = time.Now()
	}
	stored := *sujet
	stored.Category = nil
	r.s.sujets[sujet.ID] = stored
	return nil
}

func (r *Sujets) Update(_ context.Context, sujet *entity.Sujet) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[sujet.CategoryID]; !ok {
		return gorm.ErrForeignKeyViolated
	}
	stored := *sujet
	stored.Category = nil
	r.s.sujets[sujet.ID] = stored
	return nil
}

func (r *Sujets) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.deleteSujet(id)
	return nil
}

func (r *Sujets) FindByID(_ context.Context, id uint) (*entity.Sujet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sj, ok := r.s.sujets[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.s.sujetView(sj), nil
}

func (r *Sujets) FindByIDs(_ context.Context, ids []uint) ([]*entity.Sujet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sujets := make([]*entity.Sujet, 0, len(ids))
	for _, id := range ids {
		if sj, ok := r.s.sujets[id]; ok {
			sujets = append(sujets, r.s.sujetView(sj))
		}
	}
	return sujets, nil
}

func (r *Sujets) all() []*entity.Sujet {
	sujets := make([]*entity.Sujet, 0, len(r.s.sujets))
	for _, sj := range r.s.sujets {
		sujets = append(sujets, r.s.sujetView(sj))
	}
	sort.Slice(sujets, func(i, j int) bool { return sujets[i].ID < sujets[j].ID })
	return sujets
}

func (r *Sujets) FindAll(_ context.Context, opts sujetRepo.ListOptions) ([]*entity.Sujet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var sujets []*entity.Sujet
	for _, sj := range r.all() {
		if opts.CategoryID == nil || sj.CategoryID == *opts.CategoryID {
			sujets = append(sujets, sj)
		}
	}
	if opts.NewestFirst {
		sort.Slice(sujets, func(i, j int) bool { return sujets[i].ID > sujets[j].ID })
	}
	return limitSlice(sujets, opts.Limit), nil
}

func (r *Sujets) FindLatest(_ context.Context, limit int) ([]*entity.Sujet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sujets := r.all()
	sort.SliceStable(sujets, func(i, j int) bool {
		if sujets[i].CreatedAt.Equal(sujets[j].CreatedAt) {
			return sujets[i].ID > sujets[j].ID
		}
		return sujets[i].CreatedAt.After(sujets[j].CreatedAt)
	})
	return limitSlice(sujets, limit), nil
}

func (r *Sujets) FindTopDiscussed(_ context.Context, limit int) ([]sujetRepo.TopDiscussed, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := make(map[uint]int64)
	for _, c := range r.s.comments {
		counts[c.SubjectID]++
	}
	sujets := r.all()
	sort.SliceStable(sujets, func(i, j int) bool {
		return counts[sujets[i].ID] > counts[sujets[j].ID]
	})
	sujets = limitSlice(sujets, limit)

	result := make([]sujetRepo.TopDiscussed, len(sujets))
	for i, sj := range sujets {
		result[i] = sujetRepo.TopDiscussed{Sujet: sj, NbComments: counts[sj.ID]}
	}
	return result, nil
}

func (r *Sujets) Search(_ context.Context, query string, limit int) ([]*entity.Sujet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var sujets []*entity.Sujet
	for _, sj := range r.all() {
		if strings.Contains(strings.ToLower(sj.Name), strings.ToLower(query)) {
			sujets = append(sujets, sj)
		}
	}
	return limitSlice(sujets, limit), nil
}

func (r *Sujets) Count(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.sujets)), nil
}

// Comments implements the comment repository.
type Comments struct{ s *Store }

func (r *Comments) store(comment *entity.Comment) error {
	if _, ok := r.s.sujets[comment.SubjectID]; !ok {
		return gorm.ErrForeignKeyViolated
	}
	stored := *comment
	stored.Subject, stored.AuthorUser = nil, nil
	r.s.comments[comment.ID] = stored
	return nil
}

func (r *Comments) Create(_ context.Context, comment *entity.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.sujets[comment.SubjectID]; !ok {
		return gorm.ErrForeignKeyViolated
	}
	comment.ID = r.s.next("comments")
	return r.store(comment)
}

func (r *Comments) Update(_ context.Context, comment *entity.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.store(comment)
}

func (r *Comments) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.comments, id)
	return nil
}

func (r *Comments) FindByID(_ context.Context, id uint) (*entity.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.comments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.s.commentView(c), nil
}

func (r *Comments) filter(match func(entity.Comment) bool) []*entity.Comment {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var comments []*entity.Comment
	for _, c := range r.s.comments {
		if match(c) {
			comments = append(comments, r.s.commentView(c))
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		if comments[i].Date.Equal(comments[j].Date) {
			return comments[i].ID > comments[j].ID
		}
		return comments[i].Date.After(comments[j].Date)
	})
	return comments
}

func (r *Comments) FindBySujet(_ context.Context, sujetID uint) ([]*entity.Comment, error) {
	return r.filter(func(c entity.Comment) bool { return c.SubjectID == sujetID }), nil
}

func (r *Comments) FindByUser(_ context.Context, userID uint) ([]*entity.Comment, error) {
	return r.filter(func(c entity.Comment) bool { return c.UserID != nil && *c.UserID == userID }), nil
}

func (r *Comments) FindAll(_ context.Context) ([]*entity.Comment, error) {
	return r.filter(func(entity.Comment) bool { return true }), nil
}

func (r *Comments) Count(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.comments)), nil
}

// ResetRequests implements the reset password request repository.
type ResetRequests struct{ s *Store }

func (r *ResetRequests) Create(_ context.Context, req *entity.ResetPasswordRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.resets {
		if existing.Selector == req.Selector {
			return gorm.ErrDuplicatedKey
		}
	}
	req.ID = r.s.next("reset_password_requests")
	stored := *req
	stored.User = nil
	r.s.resets[req.ID] = stored
	return nil
}

func (r *ResetRequests) FindBySelector(_ context.Context, selector string) (*entity.ResetPasswordRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, req := range r.s.resets {
		if req.Selector == selector {
			out := req
			if u, ok := r.s.users[req.UserID]; ok {
				out.User = r.s.userView(u)
			}
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *ResetRequests) FindMostRecentNonExpired(_ context.Context, userID uint, now time.Time) (*entity.ResetPasswordRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var found *entity.ResetPasswordRequest
	for _, req := range r.s.resets {
		if req.UserID != userID || !req.ExpiresAt.After(now) {
			continue
		}
		if found == nil || req.RequestedAt.After(found.RequestedAt) {
			out := req
			found = &out
		}
	}
	return found, nil
}

func (r *ResetRequests) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.resets, id)
	return nil
}

func (r *ResetRequests) DeleteByUser(_ context.Context, userID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, req := range r.s.resets {
		if req.UserID == userID {
			delete(r.s.resets, id)
		}
	}
	return nil
}

func (r *ResetRequests) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, req := range r.s.resets {
		if !req.ExpiresAt.After(now) {
			delete(r.s.resets, id)
			n++
		}
	}
	return n, nil
}

func (r *ResetRequests) Count() int {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.resets)
}

func limitSlice[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

var (
	_ userRepo.UserRepository                  = (*Users)(nil)
	_ categoryRepo.CategoryRepository          = (*Categories)(nil)
	_ sujetRepo.SujetRepository                = (*Sujets)(nil)
	_ commentRepo.CommentRepository            = (*Comments)(nil)
	_ resetRepo.ResetPasswordRequestRepository = (*ResetRequests)(nil)
)
