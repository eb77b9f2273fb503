package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"cashgram/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

var seedCategories = []models.Category{
	{Name: models.CategoryFood, Icon: "🍔", Color: "#EF4444"},
	{Name: models.CategoryTransport, Icon: "🚗", Color: "#3B82F6"},
	{Name: models.CategoryOther, Icon: "💰", Color: "#64748B"},
}

// DBTestSuite provides a test suite for database operations
type DBTestSuite struct {
	suite.Suite
	db   *DB
	ctx  context.Context
	user *models.User
}

// SetupTest runs before each test
func (suite *DBTestSuite) SetupTest() {
	db, err := NewDB(":memory:")
	require.NoError(suite.T(), err, "failed to create test database")
	suite.db = db
	suite.ctx = context.Background()

	user, err := suite.db.CreateUser(suite.ctx, "+6281234567890", "hash", "Budi", seedCategories)
	require.NoError(suite.T(), err, "failed to create test user")
	suite.user = user
}

// TearDownTest runs after each test
func (suite *DBTestSuite) TearDownTest() {
	if suite.db != nil {
		suite.db.Close()
	}
}

func (suite *DBTestSuite) category(name string) *models.Category {
	c, err := suite.db.EnsureCategory(suite.ctx, suite.user.ID, name, "", "")
	require.NoError(suite.T(), err)
	return c
}

func (suite *DBTestSuite) otherUser() *models.User {
	u, err := suite.db.CreateUser(suite.ctx, "+6289999999999", "hash", "", seedCategories)
	require.NoError(suite.T(), err)
	return u
}

func (suite *DBTestSuite) TestCreateUserSeedsCategories() {
	categories, err := suite.db.ListCategories(suite.ctx, suite.user.ID)
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), categories, 3)
	for _, c := range categories {
		assert.Equal(suite.T(), suite.user.ID, c.UserID)
	}
}

func (suite *DBTestSuite) TestCreateUserDuplicatePhone() {
	_, err := suite.db.CreateUser(suite.ctx, "+6281234567890", "hash", "", nil)
	assert.ErrorIs(suite.T(), err, ErrDuplicate)
}

func (suite *DBTestSuite) TestGetUserByPhone() {
	u, err := suite.db.GetUserByPhone(suite.ctx, "+6281234567890")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.user.ID, u.ID)
	assert.Equal(suite.T(), "Budi", u.Name)
	assert.Equal(suite.T(), "hash", u.PasswordHash)

	_, err = suite.db.GetUserByPhone(suite.ctx, "+620000")
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *DBTestSuite) TestCreateCategoryDuplicate() {
	_, err := suite.db.CreateCategory(suite.ctx, suite.user.ID, "Kopi", "☕", "#000000")
	require.NoError(suite.T(), err)

	_, err = suite.db.CreateCategory(suite.ctx, suite.user.ID, "Kopi", "", "")
	assert.ErrorIs(suite.T(), err, ErrDuplicate)

	// Same name for another user is fine.
	other := suite.otherUser()
	_, err = suite.db.CreateCategory(suite.ctx, other.ID, "Kopi", "", "")
	assert.NoError(suite.T(), err)
}

func (suite *DBTestSuite) TestEnsureCategoryConcurrent() {
	var wg sync.WaitGroup
	ids := make([]int64, 10)
	errs := make([]error, 10)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := suite.db.EnsureCategory(suite.ctx, suite.user.ID, "Hiburan", "🎮", "#8B5CF6")
			errs[i] = err
			if err == nil {
				ids[i] = c.ID
			}
		}(i)
	}
	wg.Wait()

	for i := range ids {
		require.NoError(suite.T(), errs[i])
		assert.Equal(suite.T(), ids[0], ids[i])
	}

	categories, err := suite.db.ListCategories(suite.ctx, suite.user.ID)
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), categories, 4)
}

func (suite *DBTestSuite) TestCreateExpense() {
	food := suite.category(models.CategoryFood)
	date := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	e, err := suite.db.CreateExpense(suite.ctx, suite.user.ID, food.ID, 20000, "nasi goreng", date)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(20000), e.Amount)
	assert.Equal(suite.T(), "nasi goreng", e.Description)
	assert.Equal(suite.T(), models.CategoryFood, e.CategoryName())
	assert.True(suite.T(), date.Equal(e.Date), "date mismatch: %v", e.Date)
}

func (suite *DBTestSuite) TestCreateExpenseRejectsForeignCategory() {
	other := suite.otherUser()
	foreign, err := suite.db.EnsureCategory(suite.ctx, other.ID, models.CategoryFood, "", "")
	require.NoError(suite.T(), err)

	_, err = suite.db.CreateExpense(suite.ctx, suite.user.ID, foreign.ID, 1000, "x", time.Now())
	assert.ErrorIs(suite.T(), err, ErrCategoryNotFound)
}

func (suite *DBTestSuite) TestCreateExpenseRejectsNonPositiveAmount() {
	food := suite.category(models.CategoryFood)
	_, err := suite.db.CreateExpense(suite.ctx, suite.user.ID, food.ID, 0, "x", time.Now())
	assert.Error(suite.T(), err)
}

func (suite *DBTestSuite) TestListExpenses() {
	food := suite.category(models.CategoryFood)
	transport := suite.category(models.CategoryTransport)
	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	expenses := []struct {
		amount      int64
		description string
		category    int64
		offset      time.Duration
	}{
		{15000, "ojek", transport.ID, time.Hour},
		{5000, "kopi", food.ID, 2 * time.Hour},
		{20000, "nasi goreng", food.ID, 3 * time.Hour},
	}
	for _, exp := range expenses {
		_, err := suite.db.CreateExpense(suite.ctx, suite.user.ID, exp.category, exp.amount, exp.description, base.Add(exp.offset))
		require.NoError(suite.T(), err, "failed to create expense: %s", exp.description)
	}

	result, err := suite.db.ListExpenses(suite.ctx, suite.user.ID, ExpenseFilter{})
	require.NoError(suite.T(), err)
	if assert.Len(suite.T(), result, 3) {
		assert.Equal(suite.T(), "nasi goreng", result[0].Description)
		assert.Equal(suite.T(), "ojek", result[2].Description)
	}

	result, err = suite.db.ListExpenses(suite.ctx, suite.user.ID, ExpenseFilter{CategoryID: food.ID})
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), result, 2)

	result, err = suite.db.ListExpenses(suite.ctx, suite.user.ID, ExpenseFilter{Start: base.Add(90 * time.Minute)})
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), result, 2)

	result, err = suite.db.ListExpenses(suite.ctx, suite.user.ID, ExpenseFilter{End: base.Add(90 * time.Minute)})
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), result, 1)

	result, err = suite.db.ListExpenses(suite.ctx, suite.user.ID, ExpenseFilter{Limit: 1})
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), result, 1)
}

func (suite *DBTestSuite) TestListExpensesScopedToUser() {
	other := suite.otherUser()
	otherFood, err := suite.db.EnsureCategory(suite.ctx, other.ID, models.CategoryFood, "", "")
	require.NoError(suite.T(), err)
	_, err = suite.db.CreateExpense(suite.ctx, other.ID, otherFood.ID, 9000, "teh", time.Now())
	require.NoError(suite.T(), err)

	result, err := suite.db.ListExpenses(suite.ctx, suite.user.ID, ExpenseFilter{})
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), result)
}

func (suite *DBTestSuite) TestUpdateExpense() {
	food := suite.category(models.CategoryFood)
	transport := suite.category(models.CategoryTransport)
	e, err := suite.db.CreateExpense(suite.ctx, suite.user.ID, food.ID, 20000, "nasi", time.Now())
	require.NoError(suite.T(), err)

	amount := int64(25000)
	updated, err := suite.db.UpdateExpense(suite.ctx, suite.user.ID, e.ID, ExpenseUpdate{Amount: &amount, CategoryID: &transport.ID})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(25000), updated.Amount)
	assert.Equal(suite.T(), "nasi", updated.Description)
	assert.Equal(suite.T(), models.CategoryTransport, updated.CategoryName())

	other := suite.otherUser()
	_, err = suite.db.UpdateExpense(suite.ctx, other.ID, e.ID, ExpenseUpdate{Amount: &amount})
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *DBTestSuite) TestDeleteExpense() {
	food := suite.category(models.CategoryFood)
	e, err := suite.db.CreateExpense(suite.ctx, suite.user.ID, food.ID, 20000, "nasi", time.Now())
	require.NoError(suite.T(), err)

	other := suite.otherUser()
	assert.ErrorIs(suite.T(), suite.db.DeleteExpense(suite.ctx, other.ID, e.ID), ErrNotFound)

	require.NoError(suite.T(), suite.db.DeleteExpense(suite.ctx, suite.user.ID, e.ID))
	_, err = suite.db.GetExpense(suite.ctx, suite.user.ID, e.ID)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *DBTestSuite) TestCategoryTotals() {
	food := suite.category(models.CategoryFood)
	transport := suite.category(models.CategoryTransport)
	may := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)
	april := time.Date(2024, 4, 15, 12, 0, 0, 0, time.UTC)

	for _, exp := range []struct {
		category int64
		amount   int64
		date     time.Time
	}{
		{food.ID, 20000, may},
		{food.ID, 10000, may.Add(time.Hour)},
		{transport.ID, 15000, may},
		{transport.ID, 99000, april},
	} {
		_, err := suite.db.CreateExpense(suite.ctx, suite.user.ID, exp.category, exp.amount, "", exp.date)
		require.NoError(suite.T(), err)
	}

	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	totals, err := suite.db.CategoryTotals(suite.ctx, suite.user.ID, start, end)
	require.NoError(suite.T(), err)
	if assert.Len(suite.T(), totals, 2) {
		assert.Equal(suite.T(), models.CategoryFood, totals[0].Category)
		assert.Equal(suite.T(), int64(30000), totals[0].Total)
		assert.Equal(suite.T(), 2, totals[0].Count)
		assert.Equal(suite.T(), int64(15000), totals[1].Total)
	}
}

// ChatSessionTestSuite provides a test suite for chat session operations
type ChatSessionTestSuite struct {
	suite.Suite
	db  *DB
	ctx context.Context
	a   *models.User
	b   *models.User
}

// SetupTest runs before each test
func (suite *ChatSessionTestSuite) SetupTest() {
	db, err := NewDB(":memory:")
	require.NoError(suite.T(), err, "failed to create test database")
	suite.db = db
	suite.ctx = context.Background()

	suite.a, err = db.CreateUser(suite.ctx, "+6281111111111", "hash", "", nil)
	require.NoError(suite.T(), err)
	suite.b, err = db.CreateUser(suite.ctx, "+6282222222222", "hash", "", nil)
	require.NoError(suite.T(), err)
}

// TearDownTest runs after each test
func (suite *ChatSessionTestSuite) TearDownTest() {
	if suite.db != nil {
		suite.db.Close()
	}
}

func (suite *ChatSessionTestSuite) TestUpsertAndGet() {
	require.NoError(suite.T(), suite.db.UpsertChatSession(suite.ctx, "100", suite.a.ID, "tok-1"))

	s, err := suite.db.GetChatSession(suite.ctx, "100")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.a.ID, s.UserID)
	assert.Equal(suite.T(), "tok-1", s.Token)
	assert.True(suite.T(), s.LoggedIn())

	_, err = suite.db.GetChatSession(suite.ctx, "missing")
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *ChatSessionTestSuite) TestUpsertRepointsUser() {
	require.NoError(suite.T(), suite.db.UpsertChatSession(suite.ctx, "100", suite.a.ID, "tok-1"))
	require.NoError(suite.T(), suite.db.UpsertChatSession(suite.ctx, "200", suite.a.ID, "tok-2"))

	_, err := suite.db.GetChatSession(suite.ctx, "100")
	assert.ErrorIs(suite.T(), err, ErrNotFound, "old chat should no longer be mapped")

	s, err := suite.db.GetChatSession(suite.ctx, "200")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "tok-2", s.Token)
}

func (suite *ChatSessionTestSuite) TestUpsertRepointsChat() {
	require.NoError(suite.T(), suite.db.UpsertChatSession(suite.ctx, "100", suite.a.ID, "tok-a"))
	require.NoError(suite.T(), suite.db.UpsertChatSession(suite.ctx, "100", suite.b.ID, "tok-b"))

	s, err := suite.db.GetChatSession(suite.ctx, "100")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.b.ID, s.UserID)
	assert.Equal(suite.T(), "tok-b", s.Token)
}

func (suite *ChatSessionTestSuite) TestDeactivate() {
	require.NoError(suite.T(), suite.db.UpsertChatSession(suite.ctx, "100", suite.a.ID, "tok-1"))
	require.NoError(suite.T(), suite.db.DeactivateChatSession(suite.ctx, "100"))

	s, err := suite.db.GetChatSession(suite.ctx, "100")
	require.NoError(suite.T(), err)
	assert.False(suite.T(), s.Active)
	assert.Empty(suite.T(), s.Token)
	assert.False(suite.T(), s.LoggedIn())

	assert.ErrorIs(suite.T(), suite.db.DeactivateChatSession(suite.ctx, "missing"), ErrNotFound)
}

func (suite *ChatSessionTestSuite) TestDelete() {
	require.NoError(suite.T(), suite.db.UpsertChatSession(suite.ctx, "100", suite.a.ID, "tok-1"))
	require.NoError(suite.T(), suite.db.DeleteChatSession(suite.ctx, "100"))
	require.NoError(suite.T(), suite.db.DeleteChatSession(suite.ctx, "100"))

	_, err := suite.db.GetChatSession(suite.ctx, "100")
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func TestRebind(t *testing.T) {
	db := &DB{dialect: postgresDialect}
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2", db.q("SELECT * FROM t WHERE a = ? AND b = ?"))

	db = &DB{dialect: sqliteDialect}
	assert.Equal(t, "SELECT ?", db.q("SELECT ?"))
}

// Test suite runners
func TestDBSuite(t *testing.T) {
	suite.Run(t, new(DBTestSuite))
}

func TestChatSessionSuite(t *testing.T) {
	suite.Run(t, new(ChatSessionTestSuite))
}
