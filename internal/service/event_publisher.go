package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// AssessmentSavedEvent is broadcast after a student's answers change.
type AssessmentSavedEvent struct {
	Source       string    `json:"source"`
	StudentID    uint      `json:"student_id"`
	Alternatives []uint    `json:"alternatives"`
	Mode         string    `json:"mode"`
	Answers      int       `json:"answers"`
	ActorID      uint      `json:"actor_id"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// EventPublisher fans domain events out to the configured brokers.
type EventPublisher interface {
	AssessmentSaved(ctx context.Context, event AssessmentSavedEvent)
}

type eventPublisher struct {
	nats         *nats.Conn
	natsSubject  string
	redis        *redis.Client
	redisChannel string
	logger       zerolog.Logger
	nodeID       string
	now          func() time.Time
}

// NewEventPublisher builds a publisher for NATS and redis pub/sub. Either client may
// be nil; with neither configured every publish is a no-op.
func NewEventPublisher(natsConn *nats.Conn, redisClient *redis.Client, channelBase string, logger zerolog.Logger) EventPublisher {
	base := strings.TrimSpace(channelBase)
	subject := ""
	channel := ""
	if base != "" {
		subject = strings.ReplaceAll(base, ":", ".") + ".assessment.saved"
		channel = base + ":assessment.saved"
	}

	return &eventPublisher{
		nats:         natsConn,
		natsSubject:  subject,
		redis:        redisClient,
		redisChannel: channel,
		logger:       logger.With().Str("component", "event_publisher").Logger(),
		nodeID:       uuid.NewString(),
		now:          time.Now,
	}
}

func (p *eventPublisher) AssessmentSaved(ctx context.Context, event AssessmentSavedEvent) {
	toNATS := p.nats != nil && p.natsSubject != ""
	toRedis := p.redis != nil && p.redisChannel != ""
	if !toNATS && !toRedis {
		return
	}

	event.Source = p.nodeID
	if event.OccurredAt.IsZero() {
		event.OccurredAt = p.now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn().Err(err).Msg("failed to encode assessment event")
		return
	}

	if toNATS {
		if err := p.nats.Publish(p.natsSubject, payload); err != nil {
			p.logger.Warn().Err(err).Str("subject", p.natsSubject).Msg("failed to publish assessment event to nats")
		}
	}

	if toRedis {
		if err := p.redis.Publish(ctx, p.redisChannel, payload).Err(); err != nil {
			p.logger.Warn().Err(err).Str("channel", p.redisChannel).Msg("failed to publish assessment event to redis")
		}
	}
}
