package stream

import redisstream "github.com/povarna/pet-poison-map/internal/stream/redis"

const ProviderRedis = "redis"

type StreamConfig struct {
	Provider    string // redis is the only provider today
	RedisConfig *redisstream.RedisStreamConfig
}

func NewStreamConfig(provider string, redisConfig *redisstream.RedisStreamConfig) *StreamConfig {
	return &StreamConfig{
		Provider:    provider,
		RedisConfig: redisConfig,
	}
}
