package audit

import (
	"context"
	"encoding/json"

	"gridreserve-backend/internal/domain"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GormRecorder persists events to the AuditEvents table. Write failures are
// swallowed: the sink must never fail a settlement.
type GormRecorder struct {
	DB *gorm.DB
}

func (g *GormRecorder) Record(ctx context.Context, ev Event) {
	payload, err := json.Marshal(ev.Fields)
	if err != nil {
		payload = []byte("{}")
	}
	_ = g.DB.WithContext(ctx).Create(&domain.AuditEvent{
		Kind:    ev.Kind,
		BidID:   ev.BidID,
		Payload: datatypes.JSON(payload),
	}).Error
}

// LogRecorder writes events to a zerolog logger.
type LogRecorder struct {
	Logger zerolog.Logger
}

func (l *LogRecorder) Record(ctx context.Context, ev Event) {
	e := l.Logger.Info().Str("kind", ev.Kind)
	if ev.BidID != nil {
		e = e.Int64("bid_id", *ev.BidID)
	}
	e.Fields(ev.Fields).Msg("audit event")
}
