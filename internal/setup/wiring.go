package setup

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/povarna/pet-poison-map/internal/auth"
	"github.com/povarna/pet-poison-map/internal/comments"
	"github.com/povarna/pet-poison-map/internal/config"
	"github.com/povarna/pet-poison-map/internal/events"
	"github.com/povarna/pet-poison-map/internal/executor"
	"github.com/povarna/pet-poison-map/internal/incidents"
	"github.com/povarna/pet-poison-map/internal/redis"
	"github.com/povarna/pet-poison-map/internal/storage"
	"github.com/povarna/pet-poison-map/internal/storage/dynamo"
	"github.com/povarna/pet-poison-map/internal/storage/memory"
	"github.com/povarna/pet-poison-map/internal/storage/postgres"
	"github.com/povarna/pet-poison-map/internal/textsafety"
	"github.com/rs/zerolog"
)

const (
	StorageMemory   = "memory"
	StorageDynamoDB = "dynamodb"
	StoragePostgres = "postgres"

	EventsLog    = "log"
	EventsRedis  = "redis"
	EventsPubSub = "pubsub"
)

type Config struct {
	Port            string
	LogLevel        string
	LogFormat       string
	CORSOrigins     []string
	MaxBodyBytes    int64
	DemoIncidents   bool
	StorageProvider string

	JWTSecret          string
	JWTExpireDays      int
	DouyinClientKey    string
	DouyinClientSecret string

	AWSRegion         string
	DDBIncidentsTable string
	DDBCommentsTable  string
	DatabaseURL       string

	RedisAddr     string
	RedisPassword string

	EventsProviders []string
	EventsStream    string
	EventsMaxLen    int64
	PubSubProjectID string
	PubSubTopic     string
}

// Moderation is the dependency set of the non-HTTP surfaces.
type Moderation struct {
	Policies *config.PoliciesConfig
	Executor *executor.Executor
	closers  []func()
}

func (m *Moderation) Close() {
	for i := len(m.closers) - 1; i >= 0; i-- {
		m.closers[i]()
	}
}

type Dependencies struct {
	*Moderation
	Stores    *storage.Stores
	Incidents *incidents.Service
	Comments  *comments.Service
	Auth      *auth.Service
	Tokens    *auth.TokenIssuer
	Logger    *zerolog.Logger
}

func (d *Dependencies) Close() {
	d.Stores.Close()
	d.Moderation.Close()
}

func LoadConfig() *Config {
	return &Config{
		Port:            getEnv("PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "console"),
		CORSOrigins:     parseOrigins(getEnv("CORS_ORIGINS", "*")),
		MaxBodyBytes:    getEnvInt64("MAX_BODY_BYTES", 64<<10),
		DemoIncidents:   getEnvBool("DEMO_INCIDENTS", true),
		StorageProvider: getEnv("STORAGE_PROVIDER", StorageMemory),

		JWTSecret:          getEnv("APP_JWT_SECRET", ""),
		JWTExpireDays:      int(getEnvInt64("APP_JWT_EXPIRE_DAYS", 7)),
		DouyinClientKey:    getEnv("DOUYIN_CLIENT_KEY", ""),
		DouyinClientSecret: getEnv("DOUYIN_CLIENT_SECRET", ""),

		AWSRegion:         getEnv("AWS_REGION", "ap-northeast-1"),
		DDBIncidentsTable: getEnv("DDB_INCIDENTS_TABLE", ""),
		DDBCommentsTable:  getEnv("DDB_COMMENTS_TABLE", ""),
		DatabaseURL:       getEnv("DATABASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		EventsProviders: splitCSV(getEnv("EVENTS_PROVIDER", EventsLog)),
		EventsStream:    getEnv("EVENTS_STREAM", events.DefaultEventsStream),
		EventsMaxLen:    getEnvInt64("EVENTS_MAX_LEN", 100000),
		PubSubProjectID: getEnv("PUBSUB_PROJECT_ID", ""),
		PubSubTopic:     getEnv("PUBSUB_TOPIC", "moderation-events"),
	}
}

// WireModeration builds the executor with its policies and event emitters.
func WireModeration(ctx context.Context, cfg *Config, logger *zerolog.Logger) (*Moderation, error) {
	policies, err := config.LoadPoliciesConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load policies config: %w", err)
	}

	emitter, closers, err := createEmitter(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	engine := textsafety.NewValidator(textsafety.NewContactAdDetector(), textsafety.NewThreatDetector())

	return &Moderation{
		Policies: policies,
		Executor: executor.NewExecutor(engine, policies, emitter, logger),
		closers:  closers,
	}, nil
}

// Wire builds everything the HTTP API needs.
func Wire(ctx context.Context, cfg *Config, logger *zerolog.Logger) (*Dependencies, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("APP_JWT_SECRET is required")
	}

	moderation, err := WireModeration(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	stores, err := createStores(ctx, cfg, logger)
	if err != nil {
		moderation.Close()
		return nil, err
	}

	incidentSvc := incidents.NewService(stores.Incidents, moderation.Executor, cfg.DemoIncidents, logger)
	commentSvc := comments.NewService(stores.Comments, incidentSvc, moderation.Executor, logger)

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpireDays)
	douyin := auth.NewDouyinClient(auth.DouyinConfig{
		ClientKey:    cfg.DouyinClientKey,
		ClientSecret: cfg.DouyinClientSecret,
	})

	return &Dependencies{
		Moderation: moderation,
		Stores:     stores,
		Incidents:  incidentSvc,
		Comments:   commentSvc,
		Auth:       auth.NewService(douyin, tokens, logger),
		Tokens:     tokens,
		Logger:     logger,
	}, nil
}

func createStores(ctx context.Context, cfg *Config, logger *zerolog.Logger) (*storage.Stores, error) {
	logger.Info().Str("provider", cfg.StorageProvider).Msg("Creating stores")

	switch cfg.StorageProvider {
	case StorageMemory, "":
		return storage.NewStores(memory.NewIncidentStore(), memory.NewCommentStore(), nil), nil

	case StorageDynamoDB:
		if cfg.DDBIncidentsTable == "" || cfg.DDBCommentsTable == "" {
			return nil, fmt.Errorf("DDB_INCIDENTS_TABLE and DDB_COMMENTS_TABLE are required for dynamodb storage")
		}
		client, err := dynamo.NewClient(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, err
		}
		return storage.NewStores(
			dynamo.NewIncidentStore(client, cfg.DDBIncidentsTable),
			dynamo.NewCommentStore(client, cfg.DDBCommentsTable),
			nil,
		), nil

	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for postgres storage")
		}
		db, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		return storage.NewStores(postgres.NewIncidentStore(db), postgres.NewCommentStore(db), db.Close), nil

	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", cfg.StorageProvider)
	}
}

func createEmitter(ctx context.Context, cfg *Config, logger *zerolog.Logger) (executor.EventEmitter, []func(), error) {
	var emitters []events.Emitter
	var closers []func()

	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	for _, provider := range cfg.EventsProviders {
		switch provider {
		case EventsLog:
			emitters = append(emitters, events.NewLogEmitter(logger))

		case EventsRedis:
			client, err := redis.Connect(ctx, redis.Options{
				Addr:       cfg.RedisAddr,
				Password:   cfg.RedisPassword,
				MaxRetries: 3,
			}, logger)
			if err != nil {
				closeAll()
				return nil, nil, err
			}
			closers = append(closers, func() { _ = client.Close() })
			emitters = append(emitters, events.NewRedisStreamEmitter(client, cfg.EventsStream, cfg.EventsMaxLen, logger))

		case EventsPubSub:
			if cfg.PubSubProjectID == "" {
				closeAll()
				return nil, nil, fmt.Errorf("PUBSUB_PROJECT_ID is required for pubsub events")
			}
			emitter, err := events.NewPubSubEmitter(ctx, cfg.PubSubProjectID, cfg.PubSubTopic, logger)
			if err != nil {
				closeAll()
				return nil, nil, err
			}
			closers = append(closers, func() { _ = emitter.Close() })
			emitters = append(emitters, emitter)

		default:
			closeAll()
			return nil, nil, fmt.Errorf("unsupported events provider: %s", provider)
		}
	}

	switch len(emitters) {
	case 0:
		return nil, closers, nil
	case 1:
		return emitters[0], closers, nil
	default:
		return events.NewMultiEmitter(emitters...), closers, nil
	}
}

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}

	return value
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil {
		value = defaultValue
	}

	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		value = defaultValue
	}

	return value
}

func splitCSV(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseOrigins keeps "*" as the single wildcard origin.
func parseOrigins(value string) []string {
	if strings.TrimSpace(value) == "*" {
		return []string{"*"}
	}
	return splitCSV(value)
}
