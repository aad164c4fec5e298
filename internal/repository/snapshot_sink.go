package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"PricePulse/internal/domain/models"
	pkgkafka "PricePulse/pkg/kafka"
)

// KafkaSnapshotSink publishes tick snapshots and market aggregates to
// Kafka. Snapshots flatten to one message per updated product, keyed by
// (platform, product) so per-product ordering survives partitioning.
type KafkaSnapshotSink struct {
	producer   *pkgkafka.Producer
	topic      string
	statsTopic string
}

// NewKafkaSnapshotSink creates a Kafka-backed sink.
func NewKafkaSnapshotSink(producer *pkgkafka.Producer, topic string) *KafkaSnapshotSink {
	return &KafkaSnapshotSink{
		producer:   producer,
		topic:      topic,
		statsTopic: topic + "-signals",
	}
}

func (s *KafkaSnapshotSink) Emit(ctx context.Context, snap *models.MarketSnapshot) error {
	if len(snap.Updated) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(snap.Updated))
	for i, up := range snap.Updated {
		msgs[i] = pkgkafka.Message{
			Key: []byte(up.Platform + ":" + up.ID),
			Value: map[string]interface{}{
				"tick":      snap.Tick,
				"timestamp": snap.Timestamp.Format(time.RFC3339),
				"product":   up,
			},
		}
	}
	return s.producer.PublishBatch(ctx, s.topic, msgs)
}

func (s *KafkaSnapshotSink) EmitStats(ctx context.Context, stats *models.MarketStats) error {
	return s.producer.Publish(ctx, s.statsTopic, []byte(stats.Query), stats)
}

func (s *KafkaSnapshotSink) Close() error {
	if s.producer != nil {
		return s.producer.Close()
	}
	return nil
}

// ClickHouseSnapshotSink stores tick snapshots and market aggregates in
// ClickHouse for trend analysis.
type ClickHouseSnapshotSink struct {
	db *sql.DB
}

// NewClickHouseSnapshotSink creates a ClickHouse-backed sink.
func NewClickHouseSnapshotSink(db *sql.DB) *ClickHouseSnapshotSink {
	return &ClickHouseSnapshotSink{db: db}
}

// SchemaStatements returns the idempotent DDL for the sink tables.
func SchemaStatements() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS price_snapshots (
			ts DateTime,
			tick Int64,
			product_id String,
			platform String,
			price Float64,
			ema_price Float64,
			competitor_avg Float64,
			demand_factor Float64,
			recommended_price Float64,
			confidence Float64,
			model_version String
		) ENGINE = MergeTree() ORDER BY (platform, product_id, tick)`,
		`CREATE TABLE IF NOT EXISTS market_signals (
			ts DateTime,
			query String,
			avg_price Float64,
			min_price Float64,
			max_price Float64,
			trimmed_mean Float64,
			demand_score Float64,
			total_sales Int64,
			sample_size Int32
		) ENGINE = MergeTree() ORDER BY (query, ts)`,
	}
}

func (s *ClickHouseSnapshotSink) Emit(ctx context.Context, snap *models.MarketSnapshot) error {
	if len(snap.Updated) == 0 {
		return nil
	}

	values := make([]string, 0, len(snap.Updated))
	args := make([]interface{}, 0, len(snap.Updated)*11)
	for _, up := range snap.Updated {
		price, _ := up.Price.Float64()
		ema, _ := up.Pricing.EMAPrice.Float64()
		competitor, _ := up.Pricing.CompetitorAvg.Float64()
		demand, _ := up.Pricing.DemandFactor.Float64()
		recommended, _ := up.Pricing.RecommendedPrice.Float64()

		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			snap.Timestamp,
			snap.Tick,
			up.ID,
			up.Platform,
			price,
			ema,
			competitor,
			demand,
			recommended,
			up.Pricing.Confidence,
			up.Pricing.ModelVersion,
		)
	}

	q := fmt.Sprintf(
		"INSERT INTO price_snapshots (ts, tick, product_id, platform, price, ema_price, competitor_avg, demand_factor, recommended_price, confidence, model_version) VALUES %s",
		strings.Join(values, ","),
	)
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("snapshot insert: %w", err)
	}
	return nil
}

func (s *ClickHouseSnapshotSink) EmitStats(ctx context.Context, stats *models.MarketStats) error {
	q := "INSERT INTO market_signals (ts, query, avg_price, min_price, max_price, trimmed_mean, demand_score, total_sales, sample_size) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)"
	_, err := s.db.ExecContext(ctx, q,
		stats.FetchedAt,
		stats.Query,
		stats.AvgPrice,
		stats.MinPrice,
		stats.MaxPrice,
		stats.TrimmedMean,
		stats.DemandScore,
		stats.TotalSales,
		int32(stats.SampleSize),
	)
	if err != nil {
		return fmt.Errorf("signals insert: %w", err)
	}
	return nil
}

func (s *ClickHouseSnapshotSink) Close() error {
	return nil // pool managed by pkg/clickhouse
}
