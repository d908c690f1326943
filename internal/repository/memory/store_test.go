package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/marketplace/internal/domain"
	"github.com/prn-tf/marketplace/internal/repository"
)

func TestAccounts(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Accounts()

	first := domain.NewAccount("ale", "h", "Ale", "A", true)
	second := domain.NewAccount("deb", "h", "Deb", "D", false)
	second.DateJoined = first.DateJoined.Add(time.Second)
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	err := repo.Create(ctx, domain.NewAccount("ale", "h", "X", "Y", false))
	assert.ErrorIs(t, err, domain.ErrAccountAlreadyExists)

	got, err := repo.GetByUsername(ctx, "deb")
	require.NoError(t, err)
	got.FirstName = "changed"
	again, _ := repo.GetByID(ctx, second.ID)
	assert.Equal(t, "Deb", again.FirstName, "returned records are copies")

	got.Username = "ale"
	assert.ErrorIs(t, repo.Update(ctx, got), domain.ErrAccountAlreadyExists)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	list, err := repo.List(ctx, repository.ListOptions{Offset: 1, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.Total)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "deb", list.Items[0].Username)

	newest, err := repo.ListNewest(ctx, 1)
	require.NoError(t, err)
	require.Len(t, newest, 1)
	assert.Equal(t, "deb", newest[0].Username)

	exists, err := repo.ExistsByUsername(ctx, "ale")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestProductsAndTokens(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	seller := domain.NewAccount("ale", "h", "Ale", "A", true)
	require.NoError(t, store.Accounts().Create(ctx, seller))

	orphan := domain.NewProduct("x", domain.MustParsePrice("1"), 1, uuid.New())
	assert.ErrorIs(t, store.Products().Create(ctx, orphan), domain.ErrSellerNotFound)

	p := domain.NewProduct("Mouse", domain.MustParsePrice("99.75"), 13, seller.ID)
	require.NoError(t, store.Products().Create(ctx, p))

	p.Quantity = 2
	p.SellerID = uuid.New()
	require.NoError(t, store.Products().Update(ctx, p))
	got, err := store.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Quantity)
	assert.Equal(t, seller.ID, got.SellerID, "seller is never reassigned")

	empty, err := store.Products().List(ctx, repository.ListOptions{Offset: 5})
	require.NoError(t, err)
	assert.Empty(t, empty.Items)

	tok := domain.NewToken("k1", seller.ID)
	require.NoError(t, store.Tokens().Create(ctx, tok))
	assert.ErrorIs(t, store.Tokens().Create(ctx, domain.NewToken("k2", seller.ID)), domain.ErrTokenAlreadyExists)
	assert.ErrorIs(t, store.Tokens().Create(ctx, domain.NewToken("k3", uuid.New())), domain.ErrAccountNotFound)

	byAccount, err := store.Tokens().GetByAccountID(ctx, seller.ID)
	require.NoError(t, err)
	assert.Equal(t, "k1", byAccount.Key)

	require.NoError(t, store.Tokens().Delete(ctx, "k1"))
	_, err = store.Tokens().GetByKey(ctx, "k1")
	assert.ErrorIs(t, err, domain.ErrTokenNotFound)
}
