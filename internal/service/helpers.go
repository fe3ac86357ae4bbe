package service

import (
	"context"
	"errors"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Actor identifies the authenticated user behind a write.
type Actor struct {
	ID   uint
	Role string
}

// cleanText strips markup and trims whitespace. Entities are decoded so names such
// as "R&D" survive a round trip through the sanitizer.
func cleanText(policy *bluemonday.Policy, value string) string {
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(value)))
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// recordActivity writes an audit entry. Failures are logged and never fail the caller.
func recordActivity(ctx context.Context, recorder ActivityRecorder, logger zerolog.Logger, actor Actor, action, entityType string, entityID uint, metadata map[string]interface{}) {
	if recorder == nil {
		return
	}

	entry := ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: entityType,
		Metadata:   metadata,
	}
	if entityID > 0 {
		id := entityID
		entry.EntityID = &id
	}

	if _, err := recorder.Record(ctx, entry); err != nil {
		logger.Warn().Err(err).Str("action", action).Str("entity_type", entityType).Msg("failed to record activity")
	}
}

func uniqueUints(values []uint) []uint {
	seen := make(map[uint]struct{}, len(values))
	result := make([]uint, 0, len(values))
	for _, value := range values {
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		result = append(result, value)
	}
	return result
}
