package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"cashgram/internal/models"
	"cashgram/internal/parser"
	"cashgram/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestStyleFor(t *testing.T) {
	assert.Equal(t, Style{Icon: "🍔", Color: "#EF4444"}, StyleFor(models.CategoryFood))
	assert.Equal(t, Style{Icon: "📱", Color: "#06B6D4"}, StyleFor(models.CategoryCommunication))
	assert.Equal(t, Style{Icon: "💰", Color: "#64748B"}, StyleFor("Kucing"))
}

func TestDefaultCategories(t *testing.T) {
	categories := DefaultCategories()
	require.Len(t, categories, 7)
	assert.Equal(t, models.CategoryFood, categories[0].Name)
	assert.Equal(t, models.CategoryOther, categories[6].Name)
	for _, c := range categories {
		assert.NotEmpty(t, c.Icon)
		assert.NotEmpty(t, c.Color)
	}
}

// LedgerTestSuite runs the ledger against an in-memory database
type LedgerTestSuite struct {
	suite.Suite
	db     *storage.DB
	ledger *Ledger
	ctx    context.Context
	user   *models.User
}

func (suite *LedgerTestSuite) SetupTest() {
	db, err := storage.NewDB(":memory:")
	require.NoError(suite.T(), err)
	suite.db = db
	suite.ledger = New(db)
	suite.ctx = context.Background()

	suite.user, err = db.CreateUser(suite.ctx, "+6281234567890", "hash", "", DefaultCategories())
	require.NoError(suite.T(), err)
}

func (suite *LedgerTestSuite) TearDownTest() {
	suite.db.Close()
}

func (suite *LedgerTestSuite) TestResolveExisting() {
	c, err := suite.ledger.Resolve(suite.ctx, suite.user.ID, models.CategoryFood)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "🍔", c.Icon)

	categories, err := suite.db.ListCategories(suite.ctx, suite.user.ID)
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), categories, 7)
}

func (suite *LedgerTestSuite) TestResolveCreatesWithStyle() {
	c, err := suite.ledger.Resolve(suite.ctx, suite.user.ID, models.CategoryCommunication)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "📱", c.Icon)
	assert.Equal(suite.T(), "#06B6D4", c.Color)

	c, err = suite.ledger.Resolve(suite.ctx, suite.user.ID, "Peliharaan")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "💰", c.Icon)
}

func (suite *LedgerTestSuite) TestResolveBlankIsOther() {
	c, err := suite.ledger.Resolve(suite.ctx, suite.user.ID, "  ")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.CategoryOther, c.Name)
}

func (suite *LedgerTestSuite) TestResolveConcurrent() {
	var wg sync.WaitGroup
	ids := make(chan int64, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := suite.ledger.Resolve(suite.ctx, suite.user.ID, "Kopi")
			if assert.NoError(suite.T(), err) {
				ids <- c.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	var first int64
	for id := range ids {
		if first == 0 {
			first = id
		}
		assert.Equal(suite.T(), first, id)
	}

	categories, err := suite.db.ListCategories(suite.ctx, suite.user.ID)
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), categories, 8)
}

func (suite *LedgerTestSuite) TestRecord() {
	c, err := suite.ledger.Resolve(suite.ctx, suite.user.ID, models.CategoryFood)
	require.NoError(suite.T(), err)

	date := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	e, err := suite.ledger.Record(suite.ctx, suite.user.ID, c.ID, 20000, "nasi goreng", date)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.CategoryFood, e.CategoryName())
	assert.True(suite.T(), date.Equal(e.Date))
}

func (suite *LedgerTestSuite) TestRecordDefaultsToNow() {
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	suite.ledger.now = func() time.Time { return fixed }

	c, err := suite.ledger.Resolve(suite.ctx, suite.user.ID, models.CategoryFood)
	require.NoError(suite.T(), err)
	e, err := suite.ledger.Record(suite.ctx, suite.user.ID, c.ID, 1000, "", time.Time{})
	require.NoError(suite.T(), err)
	assert.True(suite.T(), fixed.Equal(e.Date))
}

func (suite *LedgerTestSuite) TestRecordRejectsBadAmount() {
	c, err := suite.ledger.Resolve(suite.ctx, suite.user.ID, models.CategoryFood)
	require.NoError(suite.T(), err)
	_, err = suite.ledger.Record(suite.ctx, suite.user.ID, c.ID, 0, "x", time.Time{})
	assert.ErrorIs(suite.T(), err, ErrInvalidAmount)
}

func (suite *LedgerTestSuite) TestRecordRejectsForeignCategory() {
	other, err := suite.db.CreateUser(suite.ctx, "+6289999999999", "hash", "", DefaultCategories())
	require.NoError(suite.T(), err)
	foreign, err := suite.ledger.Resolve(suite.ctx, other.ID, models.CategoryFood)
	require.NoError(suite.T(), err)

	_, err = suite.ledger.Record(suite.ctx, suite.user.ID, foreign.ID, 1000, "x", time.Time{})
	assert.ErrorIs(suite.T(), err, storage.ErrCategoryNotFound)
}

func (suite *LedgerTestSuite) TestCapture() {
	e, err := suite.ledger.Capture(suite.ctx, suite.user.ID, parser.Expense{
		Amount: 15000, Description: "ojek", Category: models.CategoryTransport, Confidence: 90,
	})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(15000), e.Amount)
	assert.Equal(suite.T(), models.CategoryTransport, e.CategoryName())
	assert.Equal(suite.T(), "🚗", e.Category.Icon)
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(LedgerTestSuite))
}
