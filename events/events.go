// Package events publishes feed lifecycle events to Kafka, grounded on the
// kafka event broker the teacher wires for chain-data fan-out: a single
// shared async producer, JSON-encoded payloads, one topic per event kind
// (spec §4.3 "publish a domain event").
package events

import (
	"encoding/json"
	"time"

	"github.com/Shopify/sarama"

	flog "github.com/ground-x/feedscore/log"
	"github.com/ground-x/feedscore/types"
)

var logger = flog.NewModuleLogger(flog.Events)

const (
	TopicFeedCreated    = "feeds.events.feed-created"
	TopicMessageCreated = "feeds.events.message-created"
)

// FeedCreated is published once a NewGroupFeed transaction commits.
type FeedCreated struct {
	FeedId       types.FeedId     `json:"feedId"`
	Creator      types.Address    `json:"creator"`
	Participants []types.Address  `json:"participants"`
	AtBlock      types.BlockIndex `json:"atBlock"`
}

// MessageCreated is published once a NewGroupFeedMessage transaction commits.
type MessageCreated struct {
	FeedId    types.FeedId     `json:"feedId"`
	MessageId types.MessageId  `json:"messageId"`
	Sender    types.Address    `json:"sender"`
	AtBlock   types.BlockIndex `json:"atBlock"`
}

// Publisher is the narrow surface transaction handlers depend on, so unit
// tests can swap in a recording fake without a live broker.
type Publisher interface {
	PublishFeedCreated(evt FeedCreated) error
	PublishMessageCreated(evt MessageCreated) error
}

type KafkaPublisher struct {
	producer sarama.AsyncProducer
}

func NewKafkaPublisher(brokers []string) (*KafkaPublisher, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForLocal
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Flush.Frequency = 500 * time.Millisecond
	config.Producer.Return.Successes = false
	config.Producer.Return.Errors = true

	producer, err := sarama.NewAsyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}
	p := &KafkaPublisher{producer: producer}
	go p.drainErrors()
	return p, nil
}

func (p *KafkaPublisher) drainErrors() {
	for err := range p.producer.Errors() {
		logger.Warn("event publish failed", "err", err)
	}
}

func (p *KafkaPublisher) PublishFeedCreated(evt FeedCreated) error {
	return p.publish(TopicFeedCreated, evt.FeedId.String(), evt)
}

func (p *KafkaPublisher) PublishMessageCreated(evt MessageCreated) error {
	return p.publish(TopicMessageCreated, evt.FeedId.String(), evt)
}

func (p *KafkaPublisher) publish(topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	p.producer.Input() <- &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(data),
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
