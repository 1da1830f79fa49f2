package sql

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/preslavrachev/backoffice-actions/core"
)

// Test entities
type TestUser struct {
	ID        uint      `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Age       int       `db:"age"`
	Active    bool      `db:"active"`
	CreatedAt time.Time `db:"created_at"`
}

type TestCategory struct {
	ID       uint
	Name     string
	Priority int
}

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	schema := `
	CREATE TABLE test_users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		age INTEGER NOT NULL,
		active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE test_categories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		priority INTEGER NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	users := []TestUser{
		{Name: "Alice", Email: "alice@example.com", Age: 25, Active: true, CreatedAt: time.Now().Add(-10 * 24 * time.Hour)},
		{Name: "Bob", Email: "bob@example.com", Age: 30, Active: false, CreatedAt: time.Now().Add(-5 * 24 * time.Hour)},
		{Name: "Charlie", Email: "charlie@example.com", Age: 35, Active: true, CreatedAt: time.Now().Add(-2 * 24 * time.Hour)},
		{Name: "David", Email: "david@example.com", Age: 28, Active: false, CreatedAt: time.Now().Add(-1 * 24 * time.Hour)},
		{Name: "Eve", Email: "eve@example.com", Age: 32, Active: true, CreatedAt: time.Now().Add(-3 * 24 * time.Hour)},
	}
	for _, user := range users {
		if _, err := db.Exec(
			`INSERT INTO test_users (name, email, age, active, created_at) VALUES (?, ?, ?, ?, ?)`,
			user.Name, user.Email, user.Age, user.Active, user.CreatedAt,
		); err != nil {
			t.Fatalf("Failed to seed users: %v", err)
		}
	}

	for i, name := range []string{"Electronics", "Books", "Clothing"} {
		if _, err := db.Exec(`INSERT INTO test_categories (name, priority) VALUES (?, ?)`, name, i+1); err != nil {
			t.Fatalf("Failed to seed categories: %v", err)
		}
	}

	return db
}

func createTestResource() *core.Resource {
	return &core.Resource{
		Name:        "TestUser",
		DisplayName: "Test User",
		PluralName:  "Test Users",
		Model:       &TestUser{},
		ModelType:   reflect.TypeOf(&TestUser{}),
		IDField:     "ID",
		TableName:   "test_users",
	}
}

func createCategoryResource() *core.Resource {
	return &core.Resource{
		Name:        "TestCategory",
		DisplayName: "Test Category",
		PluralName:  "Test Categories",
		Model:       &TestCategory{},
		ModelType:   reflect.TypeOf(&TestCategory{}),
		IDField:     "ID",
		TableName:   "test_categories",
	}
}

func userNames(items []any) []string {
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.(*TestUser).Name)
	}
	return names
}

func TestAdapter_Find_Pagination(t *testing.T) {
	adapter := New(setupTestDB(t), zap.NewNop())
	resource := createTestResource()

	query := core.NewQuery().WithSort("Name", core.SortAsc).WithPagination(2, 0)
	result, err := adapter.Find(context.Background(), resource, query)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}

	if got := userNames(result.Items); !reflect.DeepEqual(got, []string{"Alice", "Bob"}) {
		t.Errorf("Expected first page [Alice Bob], got %v", got)
	}
	if result.TotalCount != 5 {
		t.Errorf("Expected total count 5, got %d", result.TotalCount)
	}
	if !result.HasMore {
		t.Error("Expected HasMore on first page")
	}
}

func TestAdapter_Find_UnpaginatedReturnsAllRows(t *testing.T) {
	adapter := New(setupTestDB(t), zap.NewNop())

	query := core.NewQuery().WithPagination(2, 0).Unpaginated()
	result, err := adapter.Find(context.Background(), createTestResource(), query)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}

	if len(result.Items) != 5 {
		t.Errorf("Expected 5 rows, got %d", len(result.Items))
	}
	if result.HasMore {
		t.Error("Unpaginated result should not report more rows")
	}
}

func TestAdapter_Find_DefaultSortUsesCreatedAt(t *testing.T) {
	adapter := New(setupTestDB(t), zap.NewNop())

	result, err := adapter.Find(context.Background(), createTestResource(), core.NewQuery())
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}

	got := userNames(result.Items)
	want := []string{"David", "Charlie", "Eve", "Bob", "Alice"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected newest first %v, got %v", want, got)
	}
}

func TestAdapter_Find_ColumnsWithoutTags(t *testing.T) {
	adapter := New(setupTestDB(t), zap.NewNop())

	query := core.NewQuery().WithSort("Priority", core.SortDesc)
	result, err := adapter.Find(context.Background(), createCategoryResource(), query)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}

	if len(result.Items) != 3 {
		t.Fatalf("Expected 3 categories, got %d", len(result.Items))
	}
	first := result.Items[0].(*TestCategory)
	if first.Name != "Clothing" || first.Priority != 3 {
		t.Errorf("Expected Clothing with priority 3 first, got %+v", first)
	}
}

func TestAdapter_KeySet(t *testing.T) {
	tests := []struct {
		name string
		keys []any
		want int64
	}{
		{name: "matching keys", keys: []any{uint(1), uint(3)}, want: 2},
		{name: "unknown keys", keys: []any{uint(99)}, want: 0},
		{name: "empty key set matches nothing", keys: []any{}, want: 0},
	}

	adapter := New(setupTestDB(t), zap.NewNop())
	resource := createTestResource()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query := core.NewQuery().Unpaginated().WithKeys("ID", tt.keys)
			count, err := adapter.Count(context.Background(), resource, query)
			if err != nil {
				t.Fatalf("Count failed: %v", err)
			}
			if count != tt.want {
				t.Errorf("Expected %d rows, got %d", tt.want, count)
			}
		})
	}
}

func TestAdapter_Count_FiltersAndKeysCombine(t *testing.T) {
	adapter := New(setupTestDB(t), zap.NewNop())

	query := core.NewQuery().
		WithFilters(map[string]any{"Active": true}).
		WithKeys("ID", []any{uint(1), uint(2), uint(3)})

	count, err := adapter.Count(context.Background(), createTestResource(), query)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 active rows among keys 1-3, got %d", count)
	}
}

func TestAdapter_UnknownFilterField(t *testing.T) {
	adapter := New(setupTestDB(t), zap.NewNop())

	query := core.NewQuery().WithFilters(map[string]any{"name; DROP TABLE test_users": "x"})
	if _, err := adapter.Count(context.Background(), createTestResource(), query); err == nil {
		t.Fatal("Expected error for unknown filter field")
	}
}

func TestAdapter_Update(t *testing.T) {
	adapter := New(setupTestDB(t), zap.NewNop())
	resource := createTestResource()

	target := core.NewQuery().Unpaginated().WithKeys("ID", []any{uint(2), uint(4)})
	updated, err := adapter.Update(context.Background(), resource, target, map[string]any{"Active": true})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated != 2 {
		t.Errorf("Expected 2 updated rows, got %d", updated)
	}

	active, err := adapter.Count(context.Background(), resource,
		core.NewQuery().WithFilters(map[string]any{"Active": true}))
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if active != 5 {
		t.Errorf("Expected every user active, got %d", active)
	}
}

func TestAdapter_Update_RejectsPrimaryKey(t *testing.T) {
	adapter := New(setupTestDB(t), zap.NewNop())

	_, err := adapter.Update(context.Background(), createTestResource(), core.NewQuery(), map[string]any{"ID": 7})
	if err == nil {
		t.Fatal("Expected error when updating the primary key")
	}
}

func TestAdapter_Delete(t *testing.T) {
	adapter := New(setupTestDB(t), zap.NewNop())
	resource := createTestResource()

	target := core.NewQuery().Unpaginated().WithFilters(map[string]any{"Active": false})
	deleted, err := adapter.Delete(context.Background(), resource, target)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("Expected 2 deleted rows, got %d", deleted)
	}

	remaining, err := adapter.Count(context.Background(), resource, core.NewQuery())
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if remaining != 3 {
		t.Errorf("Expected 3 remaining rows, got %d", remaining)
	}
}

func TestAdapter_Delete_EmptyKeySetDeletesNothing(t *testing.T) {
	adapter := New(setupTestDB(t), zap.NewNop())
	resource := createTestResource()

	deleted, err := adapter.Delete(context.Background(), resource, core.NewQuery().WithKeys("ID", nil))
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if deleted != 0 {
		t.Errorf("Expected nothing deleted, got %d", deleted)
	}
}

func TestAdapter_ReadOnlyResourceRefusesWrites(t *testing.T) {
	adapter := New(setupTestDB(t), zap.NewNop())
	resource := createTestResource()
	resource.ReadOnly = true

	if _, err := adapter.Delete(context.Background(), resource, core.NewQuery()); err == nil {
		t.Error("Expected Delete to fail on read-only resource")
	}
	if _, err := adapter.Update(context.Background(), resource, core.NewQuery(), map[string]any{"Age": 1}); err == nil {
		t.Error("Expected Update to fail on read-only resource")
	}
}

func TestAdapter_DebugLogging(t *testing.T) {
	observed, logs := observer.New(zapcore.DebugLevel)
	adapter := NewWithDebug(setupTestDB(t), zap.New(observed), true)

	if _, err := adapter.Count(context.Background(), createTestResource(), core.NewQuery()); err != nil {
		t.Fatalf("Count failed: %v", err)
	}

	entries := logs.FilterLoggerName("sql").All()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 SQL log entry, got %d", len(entries))
	}
	if !strings.HasPrefix(entries[0].Message, "SELECT COUNT(*) FROM test_users") {
		t.Errorf("Unexpected logged statement %q", entries[0].Message)
	}

	adapter.SetDebugEnabled(false)
	if _, err := adapter.Count(context.Background(), createTestResource(), core.NewQuery()); err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if logs.Len() != 1 {
		t.Errorf("Expected no new entries with logging disabled, got %d total", logs.Len())
	}
}
