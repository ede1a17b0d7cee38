package postgres_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"memecoin-hunter/internal/domain"
	"memecoin-hunter/internal/storage"
	"memecoin-hunter/internal/storage/migrations"
	"memecoin-hunter/internal/storage/postgres"
)

// setupPool starts a PostgreSQL container and applies the embedded schema the
// same way the hunter does at startup.
func setupPool(t *testing.T) *postgres.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("hunter_test"),
		tcpostgres.WithUsername("hunter"),
		tcpostgres.WithPassword("hunter"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := postgres.NewPool(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, migrations.RunPostgres(ctx, pool))
	return pool
}

func testOpportunity(addr string, createdAt int64) *domain.Opportunity {
	return &domain.Opportunity{
		ID:             "opp-" + addr,
		TokenAddress:   addr,
		Symbol:         "PEPE",
		Name:           "Pepe",
		Chain:          domain.ChainSolana,
		Price:          0.00123,
		MarketCap:      2_500_000,
		Liquidity:      80_000,
		Volume24h:      150_000,
		PriceChange24h: -12.5,
		Narrative: domain.NarrativeIndicators{
			HypeLevel: 72.25, FomoIntensity: 60, CommunityGrowth: 55.5, MemeVirality: 40, RiskAwareness: 12,
		},
		MentionCount:  37,
		SecurityScore: 80,
		SecurityFlags: []string{"Liquidity not locked"},
		OverallScore:  68.9,
		PotentialType: domain.PotentialNewGem,
		Confidence:    100,
		Reasoning:     "Strong social sentiment | Optimal market cap range | Strong security profile | New gem: early stage discovery",
		CreatedAt:     createdAt,
	}
}

func TestStore_SaveOpportunityRoundTrip(t *testing.T) {
	pool := setupPool(t)

	store := postgres.NewStore(pool)
	ctx := context.Background()

	o := testOpportunity("A1", 1700000000000)
	require.NoError(t, store.SaveOpportunity(ctx, o))

	coin, err := store.GetCoin(ctx, "solana:A1")
	require.NoError(t, err)
	assert.Equal(t, "PEPE", coin.Symbol)
	assert.True(t, coin.IsMemecoin)

	prices, err := store.PriceSnapshots(ctx, "solana:A1")
	require.NoError(t, err)
	require.Len(t, prices, 1)
	assert.Equal(t, o.Price, prices[0].Price)

	sentiments, err := store.SentimentSnapshots(ctx, "solana:A1")
	require.NoError(t, err)
	require.Len(t, sentiments, 1)
	assert.Equal(t, 72.25, sentiments[0].AspectScores["hype"])
	assert.Equal(t, 37, sentiments[0].MentionCount)

	got, err := store.OpportunitiesByCoin(ctx, "solana:A1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, o, got[0])
}

func TestStore_AppendCreatesCoin(t *testing.T) {
	pool := setupPool(t)

	store := postgres.NewStore(pool)
	ctx := context.Background()

	err := store.AppendTradingPotential(ctx, &domain.TradingPotential{
		CoinID: "base:0xabc", PotentialType: domain.PotentialDipBuy, ConfidenceScore: 55, IsActive: true, CreatedAt: 10,
	})
	require.NoError(t, err)

	coin, err := store.GetCoin(ctx, "base:0xabc")
	require.NoError(t, err)
	assert.Equal(t, int64(10), coin.FirstDetected)
	assert.Empty(t, coin.Symbol)

	require.NoError(t, store.UpsertCoin(ctx, &domain.Coin{ID: "base:0xabc", Symbol: "ABC", FirstDetected: 20, LastUpdated: 20}))
	coin, err = store.GetCoin(ctx, "base:0xabc")
	require.NoError(t, err)
	assert.Equal(t, "ABC", coin.Symbol)
	assert.Equal(t, int64(10), coin.FirstDetected)
	assert.Equal(t, int64(20), coin.LastUpdated)
}

func TestStore_GetCoinNotFound(t *testing.T) {
	pool := setupPool(t)

	_, err := postgres.NewStore(pool).GetCoin(context.Background(), "nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_FailedSaveRollsBack(t *testing.T) {
	pool := setupPool(t)

	store := postgres.NewStore(pool)
	ctx := context.Background()

	// Force the last insert of the transaction to fail.
	_, err := pool.Exec(ctx, `ALTER TABLE trading_potential ADD CONSTRAINT no_low_confidence CHECK (confidence_score > 95)`)
	require.NoError(t, err)

	o := testOpportunity("R1", 1000)
	o.Confidence = 50
	err = store.SaveOpportunity(ctx, o)
	require.Error(t, err)
	assert.True(t, storage.IsPersistence(err))

	_, err = store.GetCoin(ctx, "solana:R1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	prices, err := store.PriceSnapshots(ctx, "solana:R1")
	require.NoError(t, err)
	assert.Empty(t, prices)
}

func TestStore_LatestOpportunities(t *testing.T) {
	pool := setupPool(t)

	store := postgres.NewStore(pool)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, store.SaveOpportunity(ctx, testOpportunity(fmt.Sprintf("L%d", i), int64(1000+i))))
		}(i)
	}
	wg.Wait()

	got, err := store.LatestOpportunities(ctx, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "L4", got[0].TokenAddress)
	assert.Equal(t, "L2", got[2].TokenAddress)
}

func TestRunPostgres_Idempotent(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()

	store := postgres.NewStore(pool)
	require.NoError(t, store.SaveOpportunity(ctx, testOpportunity("M1", 1000)))

	require.NoError(t, migrations.RunPostgres(ctx, pool))

	got, err := store.OpportunitiesByCoin(ctx, "solana:M1")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
