package redis

const (
	DefaultRequestsStream = "moderation-requests"
	DefaultResultsStream  = "moderation-results"
	DefaultGroup          = "moderation"
)

type RedisStreamConfig struct {
	RedisAddr     string
	RedisPassword string
	Stream        string
	Group         string
	ConsumerName  string
	ResultsStream string
	ResultsMaxLen int64
}

// NewRedisStreamConfig fills empty stream and group names with defaults.
func NewRedisStreamConfig(redisAddr, redisPassword, stream, group, consumerName, resultsStream string) *RedisStreamConfig {
	if stream == "" {
		stream = DefaultRequestsStream
	}
	if group == "" {
		group = DefaultGroup
	}
	if resultsStream == "" {
		resultsStream = DefaultResultsStream
	}

	return &RedisStreamConfig{
		RedisAddr:     redisAddr,
		RedisPassword: redisPassword,
		Stream:        stream,
		Group:         group,
		ConsumerName:  consumerName,
		ResultsStream: resultsStream,
		ResultsMaxLen: 10000,
	}
}
