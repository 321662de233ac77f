package query

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// account doubles as a stand-in for any listable model; it carries a password
// column so the default projection rules can be exercised.
type account struct {
	ID        uint
	Name      string
	Price     float64
	Rating    float64
	Password  string
	CreatedAt time.Time
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&account{}))

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	seed := []account{
		{Name: "alpha", Price: 100, Rating: 4.5, Password: "hash-a", CreatedAt: base},
		{Name: "bravo", Price: 250, Rating: 4.9, Password: "hash-b", CreatedAt: base.Add(time.Hour)},
		{Name: "charlie", Price: 250, Rating: 4.1, Password: "hash-c", CreatedAt: base.Add(2 * time.Hour)},
		{Name: "delta", Price: 999, Rating: 3.8, Password: "hash-d", CreatedAt: base.Add(3 * time.Hour)},
	}
	require.NoError(t, db.Create(&seed).Error)
	return db
}

func runQuery(t *testing.T, db *gorm.DB, params map[string]string) []account {
	t.Helper()
	var out []account
	q := New(db.Model(&account{}), params).
		Filter().
		Sort().
		LimitFields().
		Paginate().
		Query()
	require.NoError(t, q.Find(&out).Error)
	return out
}

func names(rows []account) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Name)
	}
	return out
}

func TestFilterEquality(t *testing.T) {
	db := setupDB(t)

	rows := runQuery(t, db, map[string]string{"name": "bravo"})
	assert.Equal(t, []string{"bravo"}, names(rows))
}

func TestFilterOperators(t *testing.T) {
	db := setupDB(t)

	rows := runQuery(t, db, map[string]string{"price[gte]": "250", "price[lt]": "999"})
	assert.ElementsMatch(t, []string{"bravo", "charlie"}, names(rows))
}

func TestFilterIgnoresReservedKeys(t *testing.T) {
	db := setupDB(t)

	// page/sort/limit/fields must never be treated as column filters.
	rows := runQuery(t, db, map[string]string{"sort": "name", "fields": "name"})
	assert.Len(t, rows, 4)
}

func TestFilterDropsInvalidIdentifiers(t *testing.T) {
	db := setupDB(t)

	rows := runQuery(t, db, map[string]string{"name; DROP TABLE accounts": "x", "Name": "alpha"})
	assert.Len(t, rows, 4, "malformed keys should be dropped, not executed")

	var count int64
	require.NoError(t, db.Model(&account{}).Count(&count).Error)
	assert.EqualValues(t, 4, count)
}

func TestSortMultiField(t *testing.T) {
	db := setupDB(t)

	rows := runQuery(t, db, map[string]string{"sort": "-price,name"})
	assert.Equal(t, []string{"delta", "bravo", "charlie", "alpha"}, names(rows))
}

func TestSortDefaultsToNewestFirst(t *testing.T) {
	db := setupDB(t)

	rows := runQuery(t, db, nil)
	assert.Equal(t, []string{"delta", "charlie", "bravo", "alpha"}, names(rows))
}

func TestLimitFieldsProjection(t *testing.T) {
	db := setupDB(t)

	rows := runQuery(t, db, map[string]string{"fields": "name,price", "sort": "name"})
	require.Len(t, rows, 4)
	assert.Equal(t, "alpha", rows[0].Name)
	assert.Equal(t, 100.0, rows[0].Price)
	assert.Zero(t, rows[0].Rating, "unselected columns stay at their zero value")
	assert.Empty(t, rows[0].Password)
}

func TestPasswordHiddenByDefault(t *testing.T) {
	db := setupDB(t)

	rows := runQuery(t, db, map[string]string{"sort": "name"})
	require.NotEmpty(t, rows)
	assert.Empty(t, rows[0].Password)

	rows = runQuery(t, db, map[string]string{"sort": "name", "fields": "name,password"})
	require.NotEmpty(t, rows)
	assert.Equal(t, "hash-a", rows[0].Password)
}

func TestPaginate(t *testing.T) {
	db := setupDB(t)

	rows := runQuery(t, db, map[string]string{"sort": "name", "page": "2", "limit": "2"})
	assert.Equal(t, []string{"charlie", "delta"}, names(rows))
}

func TestPaginateBeyondLastPage(t *testing.T) {
	db := setupDB(t)

	rows := runQuery(t, db, map[string]string{"page": "9", "limit": "10"})
	assert.Empty(t, rows)
}

func TestPaginateIgnoresGarbage(t *testing.T) {
	db := setupDB(t)

	rows := runQuery(t, db, map[string]string{"page": "zero", "limit": "-3"})
	assert.Len(t, rows, 4)
}
