package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pegasusdeploy/platform-api/internal/core/domain"
	"github.com/pegasusdeploy/platform-api/internal/core/ports"
)

const attemptCollection = "login_attempts"

// AuditLog implements ports.AuditLog on the login_attempts collection.
type AuditLog struct {
	coll *mongo.Collection
}

func NewAuditLog(db *mongo.Database) *AuditLog {
	return &AuditLog{coll: db.Collection(attemptCollection)}
}

// Begin opens a fresh unit of work. Units are single-use and not safe for
// concurrent appenders; each request builds its own.
func (l *AuditLog) Begin() ports.AuditUnit {
	return &auditUnit{coll: l.coll}
}

type auditUnit struct {
	coll *mongo.Collection
	docs []interface{}
}

func (u *auditUnit) AppendAttempt(attempt *domain.LoginAttempt) {
	u.docs = append(u.docs, bson.M{
		"origin":         string(attempt.Origin),
		"username":       attempt.Username,
		"succeeded":      attempt.Succeeded,
		"failure_reason": attempt.FailureReason,
		"at":             attempt.At,
	})
}

// Commit flushes all buffered records as one ordered batch.
func (u *auditUnit) Commit(ctx context.Context) error {
	if len(u.docs) == 0 {
		return nil
	}
	_, err := u.coll.InsertMany(ctx, u.docs, options.InsertMany().SetOrdered(true))
	u.docs = nil
	if err != nil {
		return fmt.Errorf("commit login attempts: %w", err)
	}
	return nil
}
