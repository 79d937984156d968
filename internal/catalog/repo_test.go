package catalog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)

	// satu koneksi = satu database in-memory
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Migrate(db))
	return &Repo{DB: db}
}

func addProduct(t *testing.T, repo *Repo, name string, prices ...Price) Product {
	t.Helper()
	p := NewProduct(name, "description", prices...)
	require.NoError(t, repo.AddProduct(context.Background(), &p))
	return p
}

func seedBasket(t *testing.T, repo *Repo, ref string, productID int64, amounts ...int) BasketRecord {
	t.Helper()
	owner := "owner"
	b := BasketRecord{ReferenceNumber: &ref, OwnerName: &owner}
	require.NoError(t, repo.DB.Create(&b).Error)
	for _, a := range amounts {
		amount, pid := a, productID
		require.NoError(t, repo.DB.Create(&ItemRecord{BasketID: b.ID, Amount: &amount, ProductID: &pid}).Error)
	}
	return b
}

type priceKey struct {
	Amount int
	Type   PriceType
}

func priceKeys(ps []Price) []priceKey {
	out := make([]priceKey, 0, len(ps))
	for _, p := range ps {
		out = append(out, priceKey{p.Amount, p.PriceType})
	}
	return out
}

func collect(t *testing.T, repo *Repo, substring string) []Product {
	t.Helper()
	var out []Product
	for p, err := range repo.SearchProductsBySubstring(context.Background(), substring) {
		require.NoError(t, err)
		out = append(out, p)
	}
	return out
}

func countRows(t *testing.T, repo *Repo, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, repo.DB.Model(model).Count(&n).Error)
	return n
}

func TestGetBasketWithCorrectContent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	p := addProduct(t, repo, "name", fullPrices(4)...)
	seedBasket(t, repo, "test_number", p.ID, 4, 10)

	b, err := repo.GetBasketByReferenceNumber(ctx, "test_number")
	require.NoError(t, err)
	assert.Equal(t, "test_number", b.ReferenceNumber)
	assert.Equal(t, "owner", b.OwnerName)
	assert.False(t, b.CreatedAt.IsZero())
	assert.False(t, b.UpdatedAt.IsZero())

	require.Len(t, b.Items, 2)
	assert.Equal(t, 4, b.Items[0].Amount)
	assert.Equal(t, 10, b.Items[1].Amount)
	for _, it := range b.Items {
		assert.Equal(t, p.ID, it.Product.ID)
		assert.Equal(t, "name", it.Product.Name)
		assert.ElementsMatch(t, priceKeys(p.Prices), priceKeys(it.Product.Prices))
	}

	prices, err := b.GetAllPrices()
	require.NoError(t, err)
	require.Len(t, prices, 2)
	for _, pr := range prices {
		assert.Equal(t, 4, pr.Amount)
		assert.Equal(t, PriceTypeOneTime, pr.PriceType)
	}
}

func TestGetBasketWithoutItems(t *testing.T) {
	repo := newTestRepo(t)
	seedBasket(t, repo, "test_number", 0)

	b, err := repo.GetBasketByReferenceNumber(context.Background(), "test_number")
	require.NoError(t, err)
	assert.Empty(t, b.Items)
}

func TestGetBasketNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetBasketByReferenceNumber(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrBasketNotFound)
}

func TestGetBasketAmbiguousReference(t *testing.T) {
	repo := newTestRepo(t)
	p := addProduct(t, repo, "name", fullPrices(1)...)
	seedBasket(t, repo, "dup", p.ID, 1)
	seedBasket(t, repo, "dup", p.ID, 2)

	_, err := repo.GetBasketByReferenceNumber(context.Background(), "dup")
	assert.ErrorIs(t, err, ErrBasketNotFound)
}

func TestBasketTimestampsSetPerInsert(t *testing.T) {
	repo := newTestRepo(t)
	first := seedBasket(t, repo, "first", 0)
	time.Sleep(20 * time.Millisecond)
	second := seedBasket(t, repo, "second", 0)

	assert.True(t, second.CreatedAt.After(first.CreatedAt))
}

func TestAddProductAssignsIDs(t *testing.T) {
	repo := newTestRepo(t)
	p := addProduct(t, repo, "name", fullPrices(3)...)

	assert.NotZero(t, p.ID)
	for _, pr := range p.Prices {
		assert.NotZero(t, pr.ID)
	}
	assert.Equal(t, int64(3), countRows(t, repo, &PriceRecord{}))
}

func TestAddProductRejectsDuplicatePriceType(t *testing.T) {
	repo := newTestRepo(t)
	p := NewProduct("name", "description", NewPrice(1, PriceTypeUsage), NewPrice(2, PriceTypeUsage))

	err := repo.AddProduct(context.Background(), &p)
	assert.ErrorIs(t, err, ErrDuplicatePriceType)
	assert.Zero(t, countRows(t, repo, &ProductRecord{}))
}

func TestProductRoundTripByName(t *testing.T) {
	repo := newTestRepo(t)
	in := []Price{
		NewPrice(3, PriceTypeRecurring),
		NewPrice(3, PriceTypeOneTime),
		NewPrice(3, PriceTypeUsage),
	}
	addProduct(t, repo, "name", in...)

	got, err := repo.SearchProductByName(context.Background(), "name")
	require.NoError(t, err)
	assert.Equal(t, "name", got.Name)
	assert.Equal(t, "description", got.Description)
	assert.ElementsMatch(t, priceKeys(in), priceKeys(got.Prices))

	for _, typ := range PriceTypes {
		pr, err := got.GetPrice(typ)
		require.NoError(t, err)
		assert.Equal(t, typ, pr.PriceType)
	}
}

func TestSearchProductByNameNotFound(t *testing.T) {
	repo := newTestRepo(t)
	addProduct(t, repo, "name")

	_, err := repo.SearchProductByName(context.Background(), "nam")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestSearchProductByNameDuplicatesPickLowestID(t *testing.T) {
	repo := newTestRepo(t)
	first := addProduct(t, repo, "name", NewPrice(1, PriceTypeUsage))
	addProduct(t, repo, "name", NewPrice(2, PriceTypeUsage))

	got, err := repo.SearchProductByName(context.Background(), "name")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
}

func TestSearchProductsBySubstring(t *testing.T) {
	repo := newTestRepo(t)
	addProduct(t, repo, "name", fullPrices(3)...)

	found := collect(t, repo, "na")
	require.Len(t, found, 1)
	assert.Equal(t, "name", found[0].Name)
	assert.Len(t, found[0].Prices, 3)

	assert.Empty(t, collect(t, repo, "ka"))
	assert.Empty(t, collect(t, repo, "NA"), "match is case-sensitive")
}

func TestSearchProductsBySubstringLiteralWildcards(t *testing.T) {
	repo := newTestRepo(t)
	addProduct(t, repo, "100% cotton")
	addProduct(t, repo, "linen")

	found := collect(t, repo, "%")
	require.Len(t, found, 1)
	assert.Equal(t, "100% cotton", found[0].Name)
	assert.Empty(t, collect(t, repo, "_"))
}

func TestSearchProductsBySubstringPagesInNameOrder(t *testing.T) {
	repo := newTestRepo(t)
	const n = searchBatchSize + 12
	for i := n - 1; i >= 0; i-- {
		addProduct(t, repo, fmt.Sprintf("item-%03d", i), NewPrice(i, PriceTypeOneTime))
	}

	found := collect(t, repo, "item-")
	require.Len(t, found, n)
	for i, p := range found {
		assert.Equal(t, fmt.Sprintf("item-%03d", i), p.Name)
	}

	// restartable: ranging again issues a fresh query
	assert.Len(t, collect(t, repo, "item-"), n)
}

func TestSearchProductsBySubstringStopsEarly(t *testing.T) {
	repo := newTestRepo(t)
	for _, name := range []string{"ab", "abc", "abcd"} {
		addProduct(t, repo, name)
	}

	var seen []string
	for p, err := range repo.SearchProductsBySubstring(context.Background(), "ab") {
		require.NoError(t, err)
		seen = append(seen, p.Name)
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"ab", "abc"}, seen)
}

func TestListProducts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	empty, err := repo.ListProducts(ctx, false)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	for _, name := range []string{"b", "c", "a"} {
		addProduct(t, repo, name, fullPrices(1)...)
	}

	unsorted, err := repo.ListProducts(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a"}, names(unsorted))

	sorted, err := repo.ListProducts(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, names(sorted))
	for _, p := range sorted {
		assert.Len(t, p.Prices, 3)
	}
}

func names(ps []Product) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Name)
	}
	return out
}

func TestRemoveProductByIDCascadesPrices(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	p := addProduct(t, repo, "name", fullPrices(1)...)
	keep := addProduct(t, repo, "other", fullPrices(2)...)

	require.NoError(t, repo.RemoveProductByID(ctx, p.ID))

	_, err := repo.SearchProductByName(ctx, "name")
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Equal(t, int64(3), countRows(t, repo, &PriceRecord{}))

	other, err := repo.SearchProductByName(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, keep.ID, other.ID)
}

func TestRemoveProductByIDMissingIsNoop(t *testing.T) {
	repo := newTestRepo(t)
	assert.NoError(t, repo.RemoveProductByID(context.Background(), 999))
}

func TestRemoveProductByIDReferencedByBasket(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	p := addProduct(t, repo, "name", fullPrices(1)...)
	seedBasket(t, repo, "test_number", p.ID, 1)

	err := repo.RemoveProductByID(ctx, p.ID)
	assert.ErrorIs(t, err, ErrProductInUse)

	_, err = repo.SearchProductByName(ctx, "name")
	assert.NoError(t, err)
}

func TestUpdateProductByID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	p := addProduct(t, repo, "name", fullPrices(1)...)

	err := repo.UpdateProductByID(ctx, p.ID, "renamed", "new description", []Price{
		NewPrice(7, PriceTypeOneTime),
		NewPrice(8, PriceTypeUsage),
	})
	require.NoError(t, err)

	got, err := repo.SearchProductByName(ctx, "renamed")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, "new description", got.Description)
	assert.ElementsMatch(t, []priceKey{
		{1, PriceTypeRecurring},
		{7, PriceTypeOneTime},
		{8, PriceTypeUsage},
	}, priceKeys(got.Prices))
}

func TestUpdateProductByIDNotFound(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.UpdateProductByID(context.Background(), 42, "name", "description", nil)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestUpdateProductByIDMissingPriceTypeRollsBack(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	p := addProduct(t, repo, "name", NewPrice(1, PriceTypeRecurring))

	err := repo.UpdateProductByID(ctx, p.ID, "renamed", "changed", []Price{
		NewPrice(5, PriceTypeRecurring),
		NewPrice(5, PriceTypeOneTime),
	})
	assert.ErrorIs(t, err, ErrPriceNotFound)

	got, err := repo.SearchProductByName(ctx, "name")
	require.NoError(t, err)
	assert.Equal(t, "description", got.Description)
	assert.Equal(t, []priceKey{{1, PriceTypeRecurring}}, priceKeys(got.Prices))
	assert.Equal(t, int64(1), countRows(t, repo, &PriceRecord{}))
}

func TestUpdateProductByIDRejectsDuplicatePriceType(t *testing.T) {
	repo := newTestRepo(t)
	p := addProduct(t, repo, "name", fullPrices(1)...)

	err := repo.UpdateProductByID(context.Background(), p.ID, "name", "", []Price{
		NewPrice(1, PriceTypeUsage),
		NewPrice(2, PriceTypeUsage),
	})
	assert.ErrorIs(t, err, ErrDuplicatePriceType)
}
