// Package audit records who changed what. Manual balance adjustments and
// lifecycle transitions land here so they stay distinguishable from the
// reconciled transaction history.
package audit

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const (
	ActionBalanceAdjust = "account.balance_adjust"
	ActionSoftDelete    = "entity.soft_delete"
	ActionRestore       = "entity.restore"
)

type Entry struct {
	UserID     uuid.UUID
	Action     string
	EntityType string
	EntityID   uuid.UUID
	IP         string
	Metadata   map[string]any
}

// Recorder writes audit rows. A nil pool makes every Record a no-op, which
// keeps tests free of database wiring.
type Recorder struct {
	db  *pgxpool.Pool
	log zerolog.Logger
}

func NewRecorder(db *pgxpool.Pool, log zerolog.Logger) *Recorder {
	return &Recorder{db: db, log: log.With().Str("component", "audit").Logger()}
}

// Record inserts the entry. Audit failures never abort the request that
// triggered them; they are logged and swallowed.
func (r *Recorder) Record(ctx context.Context, e Entry) {
	if r == nil || r.db == nil {
		return
	}

	var metadata any
	if len(e.Metadata) > 0 {
		raw, err := json.Marshal(e.Metadata)
		if err != nil {
			r.log.Error().Err(err).Str("action", e.Action).Msg("audit metadata not serializable")
			return
		}
		metadata = json.RawMessage(raw)
	}

	_, err := r.db.Exec(ctx, `
INSERT INTO audit_logs (user_id, action, entity_type, entity_id, ip, metadata)
VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)
`, e.UserID, e.Action, e.EntityType, e.EntityID, e.IP, metadata)
	if err != nil {
		r.log.Error().Err(err).
			Str("action", e.Action).
			Str("entity_type", e.EntityType).
			Stringer("entity_id", e.EntityID).
			Msg("audit write failed")
	}
}
