package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/IBM/sarama"

	"github.com/cognicore/travelcorpus/pkg/travelcorpus/record"
)

// KafkaConfig configures the record producer.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	Retries int      `yaml:"retries"`
	// Timeout in seconds.
	Timeout int `yaml:"timeout"`
}

// DefaultTopic receives records when no topic is configured.
const DefaultTopic = "travel-records"

// KafkaPublisher produces one message per accepted record, keyed by record
// id.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafka connects a synchronous producer to the brokers.
func NewKafka(cfg KafkaConfig) (*KafkaPublisher, error) {
	sc := sarama.NewConfig()
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Retry.Max = cfg.Retries
	sc.Producer.Return.Successes = true
	if cfg.Timeout > 0 {
		sc.Producer.Timeout = time.Duration(cfg.Timeout) * time.Second
	}
	producer, err := sarama.NewSyncProducer(cfg.Brokers, sc)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return newKafka(producer, cfg.Topic), nil
}

func newKafka(producer sarama.SyncProducer, topic string) *KafkaPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &KafkaPublisher{producer: producer, topic: topic}
}

// PublishRecords sends records in order and stops at the first failure.
func (k *KafkaPublisher) PublishRecords(ctx context.Context, runID string, records []record.Record) error {
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := json.Marshal(NewMessage(runID, rec))
		if err != nil {
			return err
		}
		msg := &sarama.ProducerMessage{
			Topic:     k.topic,
			Key:       sarama.StringEncoder(rec.ID),
			Value:     sarama.ByteEncoder(data),
			Headers:   []sarama.RecordHeader{{Key: []byte("run_id"), Value: []byte(runID)}},
			Timestamp: time.Now(),
		}
		if _, _, err := k.producer.SendMessage(msg); err != nil {
			return fmt.Errorf("send record %s: %w", rec.ID, err)
		}
	}
	return nil
}

// PublishFile sends a small artifact, such as run metadata, as a single
// message keyed by run and file name.
func (k *KafkaPublisher) PublishFile(ctx context.Context, runID, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic:     k.topic,
		Key:       sarama.StringEncoder(runID + "/" + filepath.Base(path)),
		Value:     sarama.ByteEncoder(data),
		Headers:   []sarama.RecordHeader{{Key: []byte("run_id"), Value: []byte(runID)}},
		Timestamp: time.Now(),
	}
	if _, _, err := k.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("send file %s: %w", path, err)
	}
	return nil
}

func (k *KafkaPublisher) Close() error {
	return k.producer.Close()
}
