package kafka

import "time"

// ProducerOption configures Producer.
type ProducerOption func(*ProducerConfig)

// ProducerConfig holds producer configuration.
type ProducerConfig struct {
	Brokers      []string
	RequiredAcks int
	Compression  string
	MaxAttempts  int
	WriteTimeout time.Duration
	BatchSize    int
	BatchTimeout time.Duration
	Async        bool
	HashByKey    bool
}

// WithBrokers sets Kafka brokers.
func WithBrokers(brokers []string) ProducerOption {
	return func(c *ProducerConfig) {
		c.Brokers = brokers
	}
}

// WithCompression sets compression type.
func WithCompression(compression string) ProducerOption {
	return func(c *ProducerConfig) {
		c.Compression = compression
	}
}

// WithRequiredAcks sets required acknowledgements (-1 = all).
func WithRequiredAcks(acks int) ProducerOption {
	return func(c *ProducerConfig) {
		c.RequiredAcks = acks
	}
}

// WithBatching sets batch size and flush timeout.
func WithBatching(size int, timeout time.Duration) ProducerOption {
	return func(c *ProducerConfig) {
		c.BatchSize = size
		c.BatchTimeout = timeout
	}
}

// WithWriteTimeout sets the writer timeout.
func WithWriteTimeout(d time.Duration) ProducerOption {
	return func(c *ProducerConfig) {
		c.WriteTimeout = d
	}
}

// WithAsync toggles async writes (fire-and-forget).
func WithAsync(async bool) ProducerOption {
	return func(c *ProducerConfig) {
		c.Async = async
	}
}

// WithHashByKey sets hash balancer for per-key (product) ordering.
func WithHashByKey(hash bool) ProducerOption {
	return func(c *ProducerConfig) {
		c.HashByKey = hash
	}
}
