package integration

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogapp "github.com/minishop/backend/internal/catalog/application"
	catalogdomain "github.com/minishop/backend/internal/catalog/domain"
	catalogpg "github.com/minishop/backend/internal/catalog/infrastructure/postgres"
	orderapp "github.com/minishop/backend/internal/order/application"
	orderkafka "github.com/minishop/backend/internal/order/infrastructure/kafka"
	orderpg "github.com/minishop/backend/internal/order/infrastructure/postgres"
	storagepg "github.com/minishop/backend/internal/storage/postgres"
	"github.com/minishop/backend/pkg/apperr"
	"github.com/minishop/backend/pkg/logging"
	"github.com/minishop/backend/pkg/outbox"
)

// Full create-product -> create-order -> checkout flow against real
// postgres and kafka, including outbox relay delivery.
func TestOrderFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	env, err := Setup(ctx)
	require.NoError(t, err)
	defer env.Teardown(ctx)

	pool, err := pgxpool.New(ctx, env.PGURL)
	require.NoError(t, err)
	defer pool.Close()
	require.NoError(t, storagepg.Migrate(ctx, pool))

	log := logging.New("error")
	catalogRepo := catalogpg.NewRepository(log, pool)
	catalogSvc := catalogapp.NewService(log, catalogRepo)
	orderRepo := orderpg.NewRepository(log, pool)
	orderSvc := orderapp.NewService(log, orderRepo, catalogRepo)

	// Relay pending outbox rows into kafka.
	const topic = "shop.order.events"
	writer := orderkafka.NewWriter(env.KAddr)
	writer.AllowAutoTopicCreation = true
	defer writer.Close()
	store := orderpg.NewOutboxStore(log, pool)
	relay := outbox.NewRelay(log, store, outbox.NewDispatcher(log, writer, topic), "it-relay")
	relayCtx, relayCancel := context.WithCancel(ctx)
	defer relayCancel()
	go func() { _ = relay.Run(relayCtx) }()

	phone, err := catalogSvc.CreateProduct(ctx, "Iphone 16 Pro", "1299.99", 10)
	require.NoError(t, err)

	o, err := orderSvc.CreateOrder(ctx, "customer1", []orderapp.ItemInput{
		{ProductID: phone.ID(), Quantity: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, "2599.98", o.Total().String())

	// Stock decrement committed with the order.
	stored, err := catalogSvc.GetProduct(ctx, phone.ID())
	require.NoError(t, err)
	assert.Equal(t, 8, stored.Stock())

	// Oversell is rejected atomically: nothing is persisted.
	_, err = orderSvc.CreateOrder(ctx, "customer1", []orderapp.ItemInput{
		{ProductID: phone.ID(), Quantity: 9},
	})
	require.ErrorIs(t, err, catalogdomain.ErrInsufficientStock)
	stored, err = catalogSvc.GetProduct(ctx, phone.ID())
	require.NoError(t, err)
	assert.Equal(t, 8, stored.Stock())

	paid, err := orderSvc.Checkout(ctx, o.ID(), "customer1")
	require.NoError(t, err)
	assert.Equal(t, "paid", string(paid.Status()))

	_, err = orderSvc.Checkout(ctx, o.ID(), "customer1")
	assert.Equal(t, apperr.KindDomainViolation, apperr.KindOf(err))

	reloaded, err := orderSvc.GetOrder(ctx, o.ID(), "customer1")
	require.NoError(t, err)
	assert.Equal(t, "paid", string(reloaded.Status()))
	assert.Equal(t, "2599.98", reloaded.Total().String())
	require.Len(t, reloaded.Items(), 1)
	assert.Equal(t, phone.ID(), reloaded.Items()[0].ProductID())

	// Both events arrive on the topic via the relay.
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: env.KAddr,
		Topic:   topic,
		GroupID: "it-consumer",
	})
	defer reader.Close()

	types := map[string]bool{}
	readCtx, readCancel := context.WithTimeout(ctx, 60*time.Second)
	defer readCancel()
	for len(types) < 2 {
		msg, err := reader.ReadMessage(readCtx)
		require.NoError(t, err)
		for _, h := range msg.Headers {
			if h.Key == "event_type" {
				types[string(h.Value)] = true
			}
		}
	}
	assert.True(t, types["OrderCreated"])
	assert.True(t, types["OrderPaid"])
}
