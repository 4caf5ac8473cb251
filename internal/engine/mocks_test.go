package engine

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/donaldgifford/free-games-notifier/internal/store"
	domain "github.com/donaldgifford/free-games-notifier/pkg/types"
)

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) FetchCurrentOffers(ctx context.Context) ([]domain.Offer, error) {
	args := m.Called(ctx)
	offers, _ := args.Get(0).([]domain.Offer)
	return offers, args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, offer domain.Offer) error {
	return m.Called(ctx, offer).Error(0)
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Load(ctx context.Context) (store.IDSet, error) {
	args := m.Called(ctx)
	ids, _ := args.Get(0).(store.IDSet)
	return ids, args.Error(1)
}

func (m *mockStore) Save(ctx context.Context, ids store.IDSet) error {
	return m.Called(ctx, ids).Error(0)
}

func (m *mockStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockCycler struct {
	mock.Mock
}

func (m *mockCycler) RunCycle(ctx context.Context, trigger domain.Trigger) (domain.CycleResult, error) {
	args := m.Called(ctx, trigger)
	res, _ := args.Get(0).(domain.CycleResult)
	return res, args.Error(1)
}
