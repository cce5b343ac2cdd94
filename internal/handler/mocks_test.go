package handler

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arunprasath/shopcart/internal/model"
	"github.com/arunprasath/shopcart/internal/repository"
)

// memUserStore implements repository.UserStore over a map keyed by id.
type memUserStore struct {
	users map[primitive.ObjectID]*model.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: map[primitive.ObjectID]*model.User{}}
}

func (m *memUserStore) Create(_ context.Context, u *model.User) error {
	for _, ex := range m.users {
		if ex.Email == strings.ToLower(u.Email) {
			return repository.ErrEmailExists
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.Email = strings.ToLower(u.Email)
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUserStore) GetByID(_ context.Context, id primitive.ObjectID) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == strings.ToLower(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUserStore) GetByResetToken(_ context.Context, tokenHash string) (*model.User, error) {
	for _, u := range m.users {
		if u.ResetPasswordToken == tokenHash && u.ResetTokenExpire != nil {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUserStore) Save(_ context.Context, u *model.User) error {
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUserStore) All(_ context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func (m *memUserStore) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := m.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

// memOrderStore implements repository.OrderStore over a map.
type memOrderStore struct {
	orders map[primitive.ObjectID]*model.Order
}

func newMemOrderStore() *memOrderStore {
	return &memOrderStore{orders: map[primitive.ObjectID]*model.Order{}}
}

func (m *memOrderStore) Create(_ context.Context, o *model.Order) error {
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func (m *memOrderStore) GetByID(_ context.Context, id primitive.ObjectID) (*model.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memOrderStore) ByUser(_ context.Context, userID primitive.ObjectID) ([]model.Order, error) {
	var out []model.Order
	for _, o := range m.orders {
		if o.User == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *memOrderStore) All(_ context.Context) ([]model.Order, error) {
	var out []model.Order
	for _, o := range m.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (m *memOrderStore) Save(_ context.Context, o *model.Order) error {
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func (m *memOrderStore) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := m.orders[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.orders, id)
	return nil
}

// mockMailer records outbound mail instead of sending it.
type mockMailer struct {
	otps   []string
	resets []string
	err    error
}

func (m *mockMailer) SendOTP(_, _, otp string) error {
	if m.err != nil {
		return m.err
	}
	m.otps = append(m.otps, otp)
	return nil
}

func (m *mockMailer) SendReset(_, _, resetURL string) error {
	if m.err != nil {
		return m.err
	}
	m.resets = append(m.resets, resetURL)
	return nil
}

// stubProductStore implements repository.ProductStore with canned data.
type stubProductStore struct {
	products  map[primitive.ObjectID]*model.Product
	searchQ   *repository.SearchQuery
	searchRes *repository.SearchResult
	related   []model.Product
}

func newStubProductStore() *stubProductStore {
	return &stubProductStore{products: map[primitive.ObjectID]*model.Product{}}
}

func (s *stubProductStore) add(p *model.Product) *model.Product {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	s.products[p.ID] = p
	return p
}

func (s *stubProductStore) Create(_ context.Context, p *model.Product) error {
	s.add(p)
	return nil
}

func (s *stubProductStore) GetByID(_ context.Context, id primitive.ObjectID) (*model.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *stubProductStore) Save(_ context.Context, p *model.Product) error {
	s.products[p.ID] = p
	return nil
}

func (s *stubProductStore) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := s.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *stubProductStore) All(_ context.Context) ([]model.Product, error) {
	var out []model.Product
	for _, p := range s.products {
		out = append(out, *p)
	}
	return out, nil
}

func (s *stubProductStore) Related(_ context.Context, _ string, _ primitive.ObjectID, _ int64) ([]model.Product, error) {
	return s.related, nil
}

func (s *stubProductStore) Search(_ context.Context, q repository.SearchQuery) (*repository.SearchResult, error) {
	s.searchQ = &q
	if s.searchRes != nil {
		return s.searchRes, nil
	}
	return &repository.SearchResult{}, nil
}

func (s *stubProductStore) AdjustStock(_ context.Context, id primitive.ObjectID, delta int) error {
	p, ok := s.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Stock += delta
	return nil
}
