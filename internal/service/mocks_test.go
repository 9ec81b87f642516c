package service

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, topic, key string, event any) error {
	return m.Called(ctx, topic, key, event).Error(0)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) Send(ctx context.Context, to, subject, body string) error {
	return m.Called(ctx, to, subject, body).Error(0)
}

type mockImages struct{ mock.Mock }

func (m *mockImages) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	args := m.Called(ctx, name, r)
	return args.String(0), args.Error(1)
}

func (m *mockImages) Remove(ctx context.Context, url string) error {
	return m.Called(ctx, url).Error(0)
}

type mockIndexer struct{ mock.Mock }

func (m *mockIndexer) IndexProduct(ctx context.Context, p models.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockIndexer) RemoveProduct(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

type mockSearcher struct{ mock.Mock }

func (m *mockSearcher) Search(ctx context.Context, q string, from, size int) (int64, []uint, error) {
	args := m.Called(ctx, q, from, size)
	ids, _ := args.Get(1).([]uint)
	return args.Get(0).(int64), ids, args.Error(2)
}

func eventOfType(typ string) any {
	return mock.MatchedBy(func(ev Event) bool { return ev.Type == typ })
}

func newTestRepo(t *testing.T) *repo.GormRepo {
	t.Helper()
	ctx := context.Background()
	gdb, err := db.Open(ctx, db.DriverSQLite, "file::memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })
	require.NoError(t, db.Migrate(gdb))
	return repo.New(gdb)
}
