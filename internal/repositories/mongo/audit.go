package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AuditCollection é a coleção da trilha de auditoria
const AuditCollection = "audit_logs"

// Ações registradas
const (
	ActionCreate  = "create"
	ActionUpdate  = "update"
	ActionPatch   = "patch"
	ActionDelete  = "delete"
	ActionPay     = "pay"
	ActionReceive = "receive"
	ActionDismiss = "dismiss"
)

// AuditEntry é uma alteração registrada
type AuditEntry struct {
	ID        primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	Entity    string                 `bson:"entity" json:"entity"`
	EntityID  string                 `bson:"entityId" json:"entityId"`
	Action    string                 `bson:"action" json:"action"`
	UserID    string                 `bson:"userId,omitempty" json:"userId,omitempty"`
	UserEmail string                 `bson:"userEmail,omitempty" json:"userEmail,omitempty"`
	RequestID string                 `bson:"requestId,omitempty" json:"requestId,omitempty"`
	Changes   map[string]interface{} `bson:"changes,omitempty" json:"changes,omitempty"`
	At        time.Time              `bson:"at" json:"at"`
}

// AuditFilter filtra e pagina a consulta
type AuditFilter struct {
	Entity   string
	EntityID string
	UserID   string
	Page     int
	PageSize int
}

func (f AuditFilter) bson() bson.M {
	filter := bson.M{}
	if f.Entity != "" {
		filter["entity"] = f.Entity
	}
	if f.EntityID != "" {
		filter["entityId"] = f.EntityID
	}
	if f.UserID != "" {
		filter["userId"] = f.UserID
	}
	return filter
}

// Auditor grava e consulta a trilha de auditoria
type Auditor interface {
	Record(ctx context.Context, entry AuditEntry) error
	List(ctx context.Context, filter AuditFilter) ([]AuditEntry, int64, error)
}

// AuditLog é o Auditor sobre a coleção audit_logs
type AuditLog struct {
	coll *mongo.Collection
}

// AuditLog retorna o Auditor da base configurada
func (m *MongoInternal) AuditLog() *AuditLog {
	return &AuditLog{coll: m.db.Collection(AuditCollection)}
}

// EnsureIndexes cria os índices de consulta
func (a *AuditLog) EnsureIndexes(ctx context.Context) error {
	_, err := a.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "entity", Value: 1}, {Key: "entityId", Value: 1}, {Key: "at", Value: -1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create audit indexes: %w", err)
	}
	return nil
}

// Record grava uma entrada
func (a *AuditLog) Record(ctx context.Context, entry AuditEntry) error {
	if entry.At.IsZero() {
		entry.At = time.Now().UTC()
	}
	if _, err := a.coll.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	return nil
}

// List retorna as entradas mais recentes primeiro
func (a *AuditLog) List(ctx context.Context, filter AuditFilter) ([]AuditEntry, int64, error) {
	f := filter.bson()

	total, err := a.coll.CountDocuments(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count audit entries: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "at", Value: -1}}).
		SetSkip(int64((filter.Page - 1) * filter.PageSize)).
		SetLimit(int64(filter.PageSize))

	cursor, err := a.coll.Find(ctx, f, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer cursor.Close(ctx)

	entries := []AuditEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, 0, fmt.Errorf("failed to decode audit entries: %w", err)
	}
	return entries, total, nil
}

// NopAuditor descarta as entradas quando o MongoDB está desligado
type NopAuditor struct{}

func (NopAuditor) Record(context.Context, AuditEntry) error { return nil }

func (NopAuditor) List(context.Context, AuditFilter) ([]AuditEntry, int64, error) {
	return []AuditEntry{}, 0, nil
}

var (
	_ Auditor = (*AuditLog)(nil)
	_ Auditor = NopAuditor{}
)
