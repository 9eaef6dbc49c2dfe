package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/almahra/storefront/internal/cart"
	"github.com/almahra/storefront/pkg/db/models"
)

type persistence interface {
	Load(ctx context.Context) (*cart.State, error)
	Save(ctx context.Context, state cart.State) error
}

func sampleState() cart.State {
	stock := 2
	price := decimal.RequireFromString("149.50")
	state := cart.Reduce(cart.State{}, cart.AddCommand{
		Product: cart.Product{
			ID:             "7",
			Name:           "Aviator",
			SKU:            "AV-1",
			Price:          decimal.RequireFromString("120.00"),
			TrackInventory: true,
			StockQuantity:  5,
			Images:         []string{"https://cdn.test/a.jpg"},
		},
		Variant:  &cart.Variant{ID: "3", Color: "Gold", Price: &price, StockQuantity: &stock},
		Quantity: 2,
	})
	state = cart.Reduce(state, cart.AddCommand{
		Product:  cart.Product{ID: "8", Name: "Round", Price: decimal.RequireFromString("80.25")},
		Quantity: 1,
	})
	return cart.Reduce(state, cart.ToggleOpenCommand{})
}

func assertRoundTrip(t *testing.T, store persistence) {
	t.Helper()
	ctx := context.Background()

	empty, err := store.Load(ctx)
	require.NoError(t, err)
	require.Nil(t, empty, "fresh store has no snapshot")

	want := sampleState()
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assertSameItems(t, want.Items, got.Items)
	assert.True(t, want.Total.Equal(got.Total))
	assert.Equal(t, want.ItemCount, got.ItemCount)
	assert.Equal(t, want.IsOpen, got.IsOpen)

	// overwrite with an empty cart
	require.NoError(t, store.Save(ctx, cart.Reduce(want, cart.ClearCommand{})))
	cleared, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Items)
}

func assertSameItems(t *testing.T, want, got []cart.LineItem) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		w, g := want[i], got[i]
		assert.Equal(t, w.ID, g.ID)
		assert.Equal(t, w.RemoteID, g.RemoteID)
		assert.Equal(t, w.Quantity, g.Quantity)
		assert.Equal(t, w.Product.ID, g.Product.ID)
		assert.Equal(t, w.Product.Name, g.Product.Name)
		assert.Equal(t, w.Product.SKU, g.Product.SKU)
		assert.Equal(t, w.Product.TrackInventory, g.Product.TrackInventory)
		assert.Equal(t, w.Product.StockQuantity, g.Product.StockQuantity)
		assert.Equal(t, w.Product.Images, g.Product.Images)
		assert.True(t, w.Product.Price.Equal(g.Product.Price), "price %s != %s", w.Product.Price, g.Product.Price)
		if w.Variant == nil {
			assert.Nil(t, g.Variant)
			continue
		}
		require.NotNil(t, g.Variant)
		assert.Equal(t, w.Variant.ID, g.Variant.ID)
		assert.Equal(t, w.Variant.Color, g.Variant.Color)
		assert.Equal(t, *w.Variant.StockQuantity, *g.Variant.StockQuantity)
		assert.True(t, w.Variant.Price.Equal(*g.Variant.Price))
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "nested", "cart.json"))
	require.NoError(t, err)
	assertRoundTrip(t, store)
	require.NoError(t, store.Ping(context.Background()))
}

func TestFileStoreLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), sampleState()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	for _, key := range []string{`"items"`, `"total"`, `"itemCount"`, `"isOpen"`} {
		assert.Contains(t, string(raw), key)
	}
}

func TestFileStoreRejectsCorruptSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	store, err := NewFileStore(path)
	require.NoError(t, err)

	_, err = store.Load(context.Background())
	require.Error(t, err)
}

func TestNewFileStoreRequiresPath(t *testing.T) {
	_, err := NewFileStore(" ")
	require.Error(t, err)
}

type mockKV struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newMockKV() *mockKV {
	return &mockKV{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *mockKV) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (m *mockKV) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value.(string)
	m.ttls[key] = ttl
	return nil
}

func (m *mockKV) SnapshotKey(name string) string {
	return "almahra:cart_snapshot:" + name
}

func (m *mockKV) Ping(ctx context.Context) error {
	return nil
}

func TestRedisStoreRoundTrip(t *testing.T) {
	kv := newMockKV()
	store, err := NewRedisStore(kv, "cart", time.Hour)
	require.NoError(t, err)
	assertRoundTrip(t, store)

	_, ok := kv.data["almahra:cart_snapshot:cart"]
	assert.True(t, ok, "snapshot stored under namespaced key")
	assert.Equal(t, time.Hour, kv.ttls["almahra:cart_snapshot:cart"])
}

func TestNewRedisStoreValidates(t *testing.T) {
	_, err := NewRedisStore(nil, "cart", 0)
	require.Error(t, err)
	_, err = NewRedisStore(newMockKV(), "", 0)
	require.Error(t, err)
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestSQLStoreRoundTrip(t *testing.T) {
	db := openTestDB(t)
	store, err := NewSQLStore(context.Background(), db, "cart", true)
	require.NoError(t, err)
	assertRoundTrip(t, store)
	require.NoError(t, store.Ping(context.Background()))

	var rows []models.CartSnapshot
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1, "saves upsert a single row per key")
	assert.Equal(t, "cart", rows[0].SnapshotKey)
	assert.Equal(t, 0, rows[0].ItemCount)
}

func TestSQLStoreKeysAreIsolated(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	first, err := NewSQLStore(ctx, db, "device-a", true)
	require.NoError(t, err)
	second, err := NewSQLStore(ctx, db, "device-b", false)
	require.NoError(t, err)

	require.NoError(t, first.Save(ctx, sampleState()))
	got, err := second.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}
