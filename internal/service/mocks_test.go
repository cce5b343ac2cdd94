package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arunprasath/shopcart/internal/model"
	"github.com/arunprasath/shopcart/internal/repository"
)

// memOrderStore implements repository.OrderStore over a map.
type memOrderStore struct {
	orders  map[primitive.ObjectID]*model.Order
	saveErr error
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
	if m.saveErr != nil {
		return m.saveErr
	}
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

// memProductStore implements repository.ProductStore and counts the
// stock adjustments applied per product.
type memProductStore struct {
	products    map[primitive.ObjectID]*model.Product
	adjustments map[primitive.ObjectID]int
	adjustCalls int
}

func newMemProductStore(products ...*model.Product) *memProductStore {
	m := &memProductStore{
		products:    map[primitive.ObjectID]*model.Product{},
		adjustments: map[primitive.ObjectID]int{},
	}
	for _, p := range products {
		if p.ID.IsZero() {
			p.ID = primitive.NewObjectID()
		}
		m.products[p.ID] = p
	}
	return m
}

func (m *memProductStore) Create(_ context.Context, p *model.Product) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	m.products[p.ID] = p
	return nil
}

func (m *memProductStore) GetByID(_ context.Context, id primitive.ObjectID) (*model.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memProductStore) Save(_ context.Context, p *model.Product) error {
	m.products[p.ID] = p
	return nil
}

func (m *memProductStore) Delete(_ context.Context, id primitive.ObjectID) error {
	delete(m.products, id)
	return nil
}

func (m *memProductStore) All(_ context.Context) ([]model.Product, error) {
	var out []model.Product
	for _, p := range m.products {
		out = append(out, *p)
	}
	return out, nil
}

func (m *memProductStore) Related(_ context.Context, _ string, _ primitive.ObjectID, _ int64) ([]model.Product, error) {
	return nil, nil
}

func (m *memProductStore) Search(_ context.Context, _ repository.SearchQuery) (*repository.SearchResult, error) {
	return &repository.SearchResult{}, nil
}

func (m *memProductStore) AdjustStock(_ context.Context, id primitive.ObjectID, delta int) error {
	p, ok := m.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Stock += delta
	m.adjustments[id] += delta
	m.adjustCalls++
	return nil
}
