package crud

import (
	"context"
	"encoding/json"

	"sindicatorest/internal/config"
	"sindicatorest/internal/middleware"
	"sindicatorest/internal/repositories/mongo"

	"github.com/gin-gonic/gin"
)

// Audit registra a alteração no log de auditoria. Falhas são apenas logadas.
func Audit(ctx context.Context, c *gin.Context, cfg *config.App, entity, entityID, action string, changes interface{}) {
	if cfg.Audit == nil {
		return
	}
	entry := mongo.AuditEntry{
		Entity:    entity,
		EntityID:  entityID,
		Action:    action,
		RequestID: middleware.GetRequestID(c),
		Changes:   toMap(changes),
	}
	if claims, ok := middleware.CurrentUser(c); ok {
		entry.UserID = claims.UserID
		entry.UserEmail = claims.Email
	}
	if err := cfg.Audit.Record(ctx, entry); err != nil {
		cfg.Logger.Warn("failed to record audit entry", map[string]interface{}{
			"entity":    entity,
			"entity_id": entityID,
			"action":    action,
			"error":     err.Error(),
		})
	}
}

func toMap(v interface{}) map[string]interface{} {
	switch m := v.(type) {
	case nil:
		return nil
	case map[string]interface{}:
		return m
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
