//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/fixgo-platform/service-booking/internal/application"
	paymentDomain "github.com/fixgo-platform/service-booking/internal/domain/payment"
	bookingEvents "github.com/fixgo-platform/service-booking/internal/events"
	"github.com/fixgo-platform/service-booking/internal/platform/database"
	"github.com/fixgo-platform/service-booking/internal/platform/kafka"
	"github.com/fixgo-platform/service-booking/internal/proto/events"
	"github.com/fixgo-platform/service-booking/internal/repository"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// bookingStack holds wired-up booking service components.
type bookingStack struct {
	Service         *application.BookingService
	Consumer        *bookingEvents.PaymentEventConsumer
	Gateway         *recordingGateway
	CleanupProducer func()
}

// recordingGateway accepts every refund and remembers the requests.
type recordingGateway struct {
	mu       sync.Mutex
	requests []paymentDomain.RefundRequest
}

func (g *recordingGateway) Refund(_ context.Context, req paymentDomain.RefundRequest) (*paymentDomain.RefundReceipt, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	return &paymentDomain.RefundReceipt{RefundID: "re_" + req.ChargeReference, Status: "succeeded"}, nil
}

func (g *recordingGateway) Requests() []paymentDomain.RefundRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]paymentDomain.RefundRequest(nil), g.requests...)
}

// setupContainers starts PostgreSQL and Kafka testcontainers, applies the
// migrations and returns a connected GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_booking",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_booking sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	dbURL := fmt.Sprintf("postgres://test:test@%s/test_booking?sslmode=disable", net.JoinHostPort(pgHost, pgPort.Port()))
	require.NoError(t, database.RunMigrations(dbURL, "migrations", zap.NewNop()))

	// confluent-local runs KRaft without ZooKeeper.
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, kafkaBrokers, events.TopicBookingEvents, events.TopicPaymentEvents)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupBookingStack wires up the full booking service stack.
func setupBookingStack(t *testing.T, db *gorm.DB, brokers []string) *bookingStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	bookingRepo := repository.NewGormBookingRepository(db)
	refRepo := repository.NewGormReferenceRepository(db)
	producer := kafka.NewProducer(brokers, logger)
	gw := &recordingGateway{}

	bookingSvc := application.NewBookingService(application.BookingServiceDeps{
		Bookings:  bookingRepo,
		Photos:    repository.NewGormPhotoRepository(db),
		Users:     repository.NewGormUserRepository(db),
		Vehicles:  repository.NewGormVehicleRepository(db),
		Refs:      refRepo,
		UoW:       repository.NewGormUnitOfWork(db),
		Gateway:   gw,
		Publisher: producer,
		Logger:    logger,
	})

	groupID := fmt.Sprintf("test-booking-%s", uuid.New().String()[:8])
	consumer := bookingEvents.NewPaymentEventConsumer(brokers, groupID, bookingSvc, logger)

	return &bookingStack{
		Service:         bookingSvc,
		Consumer:        consumer,
		Gateway:         gw,
		CleanupProducer: func() { _ = producer.Close() },
	}
}

// seedProvider inserts a provider user with the given balance.
func seedProvider(t *testing.T, db *gorm.DB, balance string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, db.Create(&repository.UserModel{
		ID:        id,
		Name:      "Bengkel Maju",
		Role:      "provider",
		Balance:   &balance,
		Version:   1,
		UpdatedAt: time.Now().UTC(),
	}).Error, "failed to seed provider")
	return id
}

// seedPayment inserts a captured payment for bookingID.
func seedPayment(t *testing.T, db *gorm.DB, bookingID uuid.UUID, amount, charge string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	now := time.Now().UTC()
	require.NoError(t, db.Create(&repository.PaymentModel{
		ID:              id,
		BookingID:       bookingID,
		Status:          "completed",
		Amount:          &amount,
		Currency:        "usd",
		ChargeReference: &charge,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}).Error, "failed to seed payment")
	return id
}

// seedBooking inserts a booking with the given facets.
func seedBooking(t *testing.T, db *gorm.DB, bookingID, providerID uuid.UUID, paymentID *uuid.UUID, approval, work, payment string) {
	t.Helper()
	now := time.Now().UTC()
	lat, lng := -6.2088, 106.8456
	model := repository.BookingModel{
		ID:             bookingID,
		BookingNumber:  fmt.Sprintf("BK-INT%s", uuid.New().String()[:6]),
		UserID:         uuid.New(),
		ProviderID:     providerID,
		CategoryID:     uuid.New(),
		PaymentID:      paymentID,
		Description:    "front bumper dent",
		Address:        "Jl. Sudirman 1, Jakarta",
		Latitude:       &lat,
		Longitude:      &lng,
		ApprovalStatus: approval,
		WorkStatus:     work,
		PaymentStatus:  payment,
		RefundState:    "none",
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, db.Create(&model).Error, "failed to seed booking")
}

// publishTestEvent publishes a CloudEvent to Kafka.
func publishTestEvent(t *testing.T, brokers []string, topic, source, eventType string, data interface{}) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	producer := kafka.NewProducer(brokers, logger)
	defer func() { _ = producer.Close() }()

	ce, err := kafka.NewCloudEvent(source, eventType, data)
	require.NoError(t, err, "failed to create cloud event")

	err = producer.PublishEvent(context.Background(), topic, ce)
	require.NoError(t, err, "failed to publish event")
}

// waitForPaymentStatus polls the bookings table until payment_status matches.
func waitForPaymentStatus(t *testing.T, db *gorm.DB, bookingID uuid.UUID, expected string, timeout time.Duration) repository.BookingModel {
	t.Helper()
	var result repository.BookingModel
	require.Eventually(t, func() bool {
		var model repository.BookingModel
		if err := db.Where("id = ?", bookingID).First(&model).Error; err != nil {
			return false
		}
		if model.PaymentStatus == expected {
			result = model
			return true
		}
		return false
	}, timeout, 200*time.Millisecond, "booking payment status did not become %s", expected)
	return result
}

// providerBalance reads the provider balance column as text.
func providerBalance(t *testing.T, db *gorm.DB, providerID uuid.UUID) string {
	t.Helper()
	var user repository.UserModel
	require.NoError(t, db.Where("id = ?", providerID).First(&user).Error)
	require.NotNil(t, user.Balance)
	return *user.Balance
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the
// expected type for bookingID.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, bookingID uuid.UUID, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		if string(msg.Key) != bookingID.String() {
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
