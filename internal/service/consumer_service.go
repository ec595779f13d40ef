package service

import (
	"context"
	"encoding/json"
	"fmt"

	"trace-journal-be/internal/constant"
	"trace-journal-be/internal/dto"
	"trace-journal-be/internal/pkg/logger"
	"trace-journal-be/internal/repository/specification"
	"trace-journal-be/internal/repository/unitofwork"
	"trace-journal-be/pkg/events"
	pkgNats "trace-journal-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// IConsumerService drains the revision buses. The in-process bus carries
// revisions saved on this instance; the NATS stream mirrors revisions saved
// on other instances onto the in-process bus. Either way a consumed revision
// is reloaded from the database by id and offered to every live session —
// the push is a hint, the row is the truth.
type IConsumerService interface {
	Start(ctx context.Context) error
}

type consumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	natsSubscriber *pkgNats.Subscriber
	publisher      IPublisherService
	sessionService ISessionService
	uowFactory     unitofwork.RepositoryFactory
	instanceID     string
	log            logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	natsSubscriber *pkgNats.Subscriber,
	publisher IPublisherService,
	sessionService ISessionService,
	uowFactory unitofwork.RepositoryFactory,
	instanceID string,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		natsSubscriber: natsSubscriber,
		publisher:      publisher,
		sessionService: sessionService,
		uowFactory:     uowFactory,
		instanceID:     instanceID,
		log:            log,
	}
}

func (s *consumerService) Start(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, s.topicName)
	if err != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", s.topicName, err)
	}

	go func() {
		for msg := range messages {
			s.handleLocal(msg.Context(), msg.Payload)
			msg.Ack()
		}
	}()

	if s.natsSubscriber != nil {
		subject := fmt.Sprintf("events.%s", constant.EventEntryRevision)
		durable := fmt.Sprintf("revision_mirror_%s", s.instanceID)
		if err := s.natsSubscriber.Subscribe(subject, durable, s.handleMirrored); err != nil {
			return fmt.Errorf("failed to subscribe to revision events: %w", err)
		}
	}

	s.log.Info("ConsumerService", "Revision consumers started", map[string]interface{}{
		"topic": s.topicName, "instance": s.instanceID,
	})
	return nil
}

func (s *consumerService) handleLocal(ctx context.Context, payload []byte) {
	var msg dto.RevisionMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		s.log.Error("ConsumerService", "Malformed revision message dropped", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	entry, err := uow.EntryRepository().FindOne(ctx, specification.ByID{ID: msg.EntryId})
	if err != nil {
		s.log.Error("ConsumerService", "Failed to reload revised entry", map[string]interface{}{
			"entry_id": msg.EntryId.String(), "error": err.Error(),
		})
		return
	}
	if entry == nil {
		// Deleted between save and delivery; nothing to offer.
		return
	}

	s.sessionService.DispatchRevision(ctx, entry)
}

// handleMirrored receives revision events from other instances and replays
// them onto the local bus. Our own events echo back through the stream too;
// those are dropped by instance id, the local bus already carried them.
func (s *consumerService) handleMirrored(ctx context.Context, event events.Event) error {
	payload := event.Payload()

	if instance, _ := payload["instance"].(string); instance == s.instanceID {
		return nil
	}

	entryIdRaw, _ := payload["entry_id"].(string)
	entryId, err := uuid.Parse(entryIdRaw)
	if err != nil {
		s.log.Warn("ConsumerService", "Mirrored revision without a valid entry id", map[string]interface{}{
			"entry_id": entryIdRaw,
		})
		return nil // unparseable, retrying will not help
	}

	msg := dto.RevisionMessage{
		EntryId:  entryId,
		Origin:   stringField(payload, "origin"),
		Instance: stringField(payload, "instance"),
	}
	if v, ok := payload["version"].(float64); ok {
		msg.Version = int64(v)
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return s.publisher.Publish(ctx, data)
}

func stringField(m map[string]interface{}, key string) string {
	v, _ := m[key].(string)
	return v
}
