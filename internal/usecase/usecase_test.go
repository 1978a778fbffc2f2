package usecase_test

import (
	"context"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/infra/cachemem"
	"storefront/internal/infra/memstore"
	"storefront/internal/infra/productfilter"
	"storefront/internal/usecase"

	"github.com/expr-lang/expr/vm"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalog() *usecase.CatalogService {
	return usecase.NewCatalogService(
		memstore.NewProductStore(memstore.SeedProducts()...),
		productfilter.NewCompiler(cachemem.New[*vm.Program](16)),
	)
}

func names(products []domain.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Name)
	}
	return out
}

func TestCatalogListQueries(t *testing.T) {
	ctx := context.Background()
	catalog := newCatalog()

	books, err := catalog.List(ctx, domain.ProductQuery{Category: "books"})
	require.NoError(t, err)
	assert.Equal(t, []string{"The Pragmatic Programmer", "Dune"}, names(books))

	byName, err := catalog.List(ctx, domain.ProductQuery{Name: "heat"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Heat"}, names(byName))

	cheap, err := catalog.List(ctx, domain.ProductQuery{Category: "Books", Filter: "price < 20"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Dune"}, names(cheap))

	_, err = catalog.List(ctx, domain.ProductQuery{Filter: "price +"})
	assert.ErrorIs(t, err, domain.ErrInvalidFilter)
}

func TestCatalogCreateAssignsID(t *testing.T) {
	ctx := context.Background()
	catalog := newCatalog()

	created, err := catalog.Create(ctx, domain.Product{Name: "Blade Runner", CategoryInfo: domain.MoviesCategory{NofMinutes: 117}})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)

	got, err := catalog.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Blade Runner", got.Name)

	_, err = catalog.Create(ctx, created)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCatalogUpdateRequiresID(t *testing.T) {
	_, err := newCatalog().Update(context.Background(), domain.Product{Name: "x"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Errors, "id")
}

func TestCartCreateAndUpdate(t *testing.T) {
	ctx := context.Background()
	carts := usecase.NewCartService(memstore.NewCartStore())
	customer := uuid.New()

	created, err := carts.Create(ctx, domain.ShoppingCart{CustomerID: customer, CustomerName: "Bob"})
	require.NoError(t, err)
	assert.Equal(t, uint16(1), created.Version.Number)
	assert.NotEqual(t, uuid.Nil, created.ID)

	updated, err := carts.Update(ctx, domain.ShoppingCart{CustomerID: customer, CustomerName: "Bobby"})
	require.NoError(t, err)
	assert.Equal(t, uint16(2), updated.Version.Number)
	assert.Equal(t, "Bobby", updated.CustomerName)

	_, err = carts.Create(ctx, domain.ShoppingCart{})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Errors, "customerId")
}

func TestCartCheckout(t *testing.T) {
	ctx := context.Background()
	seeded := memstore.SeedCarts(memstore.SeedProducts())
	store := memstore.NewCartStore(seeded...)
	carts := usecase.NewCartService(store)
	alice := seeded[0].CustomerID

	ok, err := carts.Checkout(ctx, alice)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = carts.Get(ctx, alice)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	ok, err = carts.Checkout(ctx, alice)
	require.NoError(t, err)
	assert.False(t, ok)

	empty := uuid.New()
	_, err = carts.Create(ctx, domain.ShoppingCart{CustomerID: empty})
	require.NoError(t, err)
	ok, err = carts.Checkout(ctx, empty)
	require.NoError(t, err)
	assert.False(t, ok)
}
