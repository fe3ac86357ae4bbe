package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/spk-prodi-api/internal/models"
	"github.com/noah-isme/spk-prodi-api/internal/repository"
)

func TestDashboardServiceCaching(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	env := newTestEnv(t)
	c := seedCatalog(t, env)
	answerAll(t, env, c)
	svc := NewDashboardService(repository.NewDashboardRepository(env.db), env.criteria, env.alternatives, client, time.Minute, testLogger())
	ctx := context.Background()

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.False(t, summary.CacheHit)
	require.Equal(t, int64(2), summary.TotalCriteria)
	require.Equal(t, int64(6), summary.TotalSubCriteria)
	require.Equal(t, int64(2), summary.TotalAlternatives)
	require.Equal(t, int64(5), summary.TotalQuestions)
	require.Equal(t, int64(3), summary.TotalUsers)
	require.Equal(t, int64(2), summary.TotalStudents)
	require.Equal(t, int64(1), summary.AssessedStudents)
	require.Equal(t, 50.0, summary.AverageWeight)
	require.Equal(t, int64(1), summary.CriteriaByDirection["Benefit"])
	require.Equal(t, int64(1), summary.CriteriaByDirection["Cost"])
	require.Len(t, summary.WeightsChart, 2)
	require.Len(t, summary.LatestAlternatives, 2)

	require.NoError(t, env.db.Create(&models.Alternative{Code: "A3", Name: "Hukum"}).Error)

	cached, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.True(t, cached.CacheHit)
	require.Equal(t, int64(2), cached.TotalAlternatives, "cached summary is served until the TTL expires")

	server.FastForward(2 * time.Minute)

	fresh, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.False(t, fresh.CacheHit)
	require.Equal(t, int64(3), fresh.TotalAlternatives)
	require.Equal(t, "A3", fresh.LatestAlternatives[0].Code)
}

func TestDashboardServiceWithoutCache(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(t, env)
	svc := NewDashboardService(repository.NewDashboardRepository(env.db), env.criteria, env.alternatives, nil, time.Minute, testLogger())

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.False(t, summary.CacheHit)
	require.Zero(t, summary.AssessedStudents)
}

func TestEventPublisherBroadcastsToRedis(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	ctx := context.Background()
	sub := client.Subscribe(ctx, "spk:events:assessment.saved")
	defer sub.Close()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	publisher := NewEventPublisher(nil, client, "spk:events", testLogger())
	publisher.AssessmentSaved(ctx, AssessmentSavedEvent{StudentID: 7, Alternatives: []uint{1, 2}, Mode: SaveModeReplace, Answers: 4, ActorID: 7})

	select {
	case msg := <-sub.Channel():
		var event AssessmentSavedEvent
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &event))
		require.Equal(t, uint(7), event.StudentID)
		require.Equal(t, []uint{1, 2}, event.Alternatives)
		require.Equal(t, SaveModeReplace, event.Mode)
		require.NotEmpty(t, event.Source)
		require.False(t, event.OccurredAt.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("expected assessment event")
	}
}

func TestEventPublisherRedisOnlyChannel(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	ctx := context.Background()
	sub := client.Subscribe(ctx, "spk:assessment")
	defer sub.Close()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	publisher := &eventPublisher{
		redis:        client,
		redisChannel: "spk:assessment",
		logger:       testLogger(),
		nodeID:       "node-a",
		now:          time.Now,
	}
	publisher.AssessmentSaved(ctx, AssessmentSavedEvent{StudentID: 3, Mode: SaveModeReplace, Answers: 2, ActorID: 3})

	select {
	case msg := <-sub.Channel():
		var event AssessmentSavedEvent
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &event))
		require.Equal(t, uint(3), event.StudentID)
		require.Equal(t, "node-a", event.Source)
	case <-time.After(2 * time.Second):
		t.Fatal("expected assessment event without a nats subject")
	}
}

func TestEventPublisherWithoutBrokersIsNoop(t *testing.T) {
	publisher := NewEventPublisher(nil, nil, "spk:events", testLogger())
	require.NotPanics(t, func() {
		publisher.AssessmentSaved(context.Background(), AssessmentSavedEvent{StudentID: 1})
	})

	require.NotPanics(t, func() {
		NewEventPublisher(nil, nil, "", testLogger()).AssessmentSaved(context.Background(), AssessmentSavedEvent{StudentID: 1})
	})
}
