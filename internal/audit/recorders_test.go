package audit

import (
	"context"
	"testing"

	"gridreserve-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memRecorder struct {
	events []Event
}

func (m *memRecorder) Record(ctx context.Context, ev Event) {
	m.events = append(m.events, ev)
}

func TestMultiFansOut(t *testing.T) {
	a := &memRecorder{}
	b := &memRecorder{}
	sink := Multi{a, b, Discard{}}

	bidID := int64(7)
	sink.Record(context.Background(), Event{Kind: KindBidPlaced, BidID: &bidID})

	require.Len(t, a.events, 1)
	require.Len(t, b.events, 1)
	assert.Equal(t, KindBidPlaced, a.events[0].Kind)
}

func TestGormRecorderPersists(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.AuditEvent{}))

	bidID := int64(3)
	rec := &GormRecorder{DB: db}
	rec.Record(context.Background(), Event{
		Kind:   KindBatterySoCUpdated,
		BidID:  &bidID,
		Fields: map[string]interface{}{"old_soc": 80, "new_soc": 30},
	})

	var stored []domain.AuditEvent
	require.NoError(t, db.Find(&stored).Error)
	require.Len(t, stored, 1)
	assert.Equal(t, KindBatterySoCUpdated, stored[0].Kind)
	require.NotNil(t, stored[0].BidID)
	assert.Equal(t, int64(3), *stored[0].BidID)
	assert.Contains(t, string(stored[0].Payload), "new_soc")
}

// A broken database must not surface: the recorder swallows write errors.
func TestGormRecorderSwallowsErrors(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	// table never migrated

	rec := &GormRecorder{DB: db}
	assert.NotPanics(t, func() {
		rec.Record(context.Background(), Event{Kind: KindBidSelected})
	})
}
