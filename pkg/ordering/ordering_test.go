package ordering

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/raids-lab/tracker/dao"
	"github.com/raids-lab/tracker/dao/model"
)

func TestReindex(t *testing.T) {
	tests := []struct {
		name   string
		ids    []uint
		moved  uint
		target int
		want   []uint
		ok     bool
	}{
		{"to front", []uint{1, 2, 3}, 3, 0, []uint{3, 1, 2}, true},
		{"to back", []uint{1, 2, 3}, 1, 2, []uint{2, 3, 1}, true},
		{"middle", []uint{1, 2, 3, 4}, 4, 1, []uint{1, 4, 2, 3}, true},
		{"negative clamps to front", []uint{1, 2, 3}, 2, -5, []uint{2, 1, 3}, true},
		{"overflow clamps to back", []uint{1, 2, 3}, 1, 99, []uint{2, 3, 1}, true},
		{"same position", []uint{1, 2, 3}, 2, 1, []uint{1, 2, 3}, true},
		{"single element", []uint{7}, 7, 3, []uint{7}, true},
		{"absent id", []uint{1, 2, 3}, 9, 0, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Reindex(tt.ids, tt.moved, tt.target)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, dao.AutoMigrate(db))
	return db
}

func moduleScope(appID uint) Scope {
	return Scope{Model: &model.Module{}, Query: "app_id = ?", Args: []any{appID}}
}

func seedModules(t *testing.T, db *gorm.DB, appID uint, names ...string) []model.Module {
	t.Helper()
	out := make([]model.Module, 0, len(names))
	for _, name := range names {
		order, err := Append(db, moduleScope(appID))
		require.NoError(t, err)
		m := model.Module{Name: name, Slug: name, AppID: appID, SortOrder: order}
		require.NoError(t, db.Create(&m).Error)
		out = append(out, m)
	}
	return out
}

func orderOf(t *testing.T, db *gorm.DB, appID uint) []uint {
	t.Helper()
	var ids []uint
	require.NoError(t, db.Model(&model.Module{}).
		Where("app_id = ?", appID).
		Order("sort_order ASC, created_at ASC, id ASC").
		Pluck("id", &ids).Error)
	return ids
}

func TestAppendAssignsDenseOrders(t *testing.T) {
	db := openTestDB(t)

	order, err := Append(db, moduleScope(1))
	require.NoError(t, err)
	assert.Equal(t, 0, order, "empty scope starts at zero")

	mods := seedModules(t, db, 1, "A", "B", "C")
	assert.Equal(t, 0, mods[0].SortOrder)
	assert.Equal(t, 1, mods[1].SortOrder)
	assert.Equal(t, 2, mods[2].SortOrder)

	// another app is a different scope and starts over
	other := seedModules(t, db, 2, "X")
	assert.Equal(t, 0, other[0].SortOrder)
}

func TestMoveRenumbersScope(t *testing.T) {
	db := openTestDB(t)
	mods := seedModules(t, db, 1, "A", "B", "C", "D")

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return Move(tx, moduleScope(1), mods[3].ID, 0)
	}))

	assert.Equal(t, []uint{mods[3].ID, mods[0].ID, mods[1].ID, mods[2].ID}, orderOf(t, db, 1))

	// orders are dense after the move
	var orders []int
	require.NoError(t, db.Model(&model.Module{}).
		Where("app_id = ?", 1).Order("sort_order ASC").
		Pluck("sort_order", &orders).Error)
	assert.Equal(t, []int{0, 1, 2, 3}, orders)
}

func TestMoveOutsideScope(t *testing.T) {
	db := openTestDB(t)
	seedModules(t, db, 1, "A", "B")
	other := seedModules(t, db, 2, "X")

	err := db.Transaction(func(tx *gorm.DB) error {
		return Move(tx, moduleScope(1), other[0].ID, 0)
	})
	assert.ErrorIs(t, err, ErrNotInScope)
}

func TestNormalizeClosesGaps(t *testing.T) {
	db := openTestDB(t)
	mods := seedModules(t, db, 1, "A", "B", "C")

	require.NoError(t, db.Unscoped().Delete(&mods[1]).Error)
	require.NoError(t, Normalize(db, moduleScope(1)))

	var orders []int
	require.NoError(t, db.Model(&model.Module{}).
		Where("app_id = ?", 1).Order("sort_order ASC").
		Pluck("sort_order", &orders).Error)
	assert.Equal(t, []int{0, 1}, orders)
	assert.Equal(t, []uint{mods[0].ID, mods[2].ID}, orderOf(t, db, 1))
}

func TestDuplicateOrdersBreakTiesDeterministically(t *testing.T) {
	db := openTestDB(t)
	mods := seedModules(t, db, 1, "A", "B", "C")

	// simulate a lost append race: two rows share an order value
	require.NoError(t, db.Model(&mods[2]).UpdateColumn("sort_order", 1).Error)

	// lower id wins the tie, and the next write re-densifies
	assert.Equal(t, []uint{mods[0].ID, mods[1].ID, mods[2].ID}, orderOf(t, db, 1))
	require.NoError(t, Normalize(db, moduleScope(1)))

	var orders []int
	require.NoError(t, db.Model(&model.Module{}).
		Where("app_id = ?", 1).Order("sort_order ASC").
		Pluck("sort_order", &orders).Error)
	assert.Equal(t, []int{0, 1, 2}, orders)
}
