package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/edu-manager/pkg/database"
)

// Sentinel module values inserted into an empty module table.
const (
	SentinelModuleCode  = "ПМ6"
	SentinelModuleTitle = "Автосозданный модуль"
)

// EnsureSeedModule guarantees at least one module exists and returns the id of
// the first one, which sections fall back to when no module is chosen.
func (b *Bootstrapper) EnsureSeedModule(ctx context.Context) (int64, error) {
	var id int64
	err := b.db.GetContext(ctx, &id, `SELECT id FROM module ORDER BY id LIMIT 1`)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("find module: %w", err)
	}

	id, err = database.InsertID(ctx, b.db, `INSERT INTO module (code, title, total_hours) VALUES (?, ?, ?)`,
		SentinelModuleCode, SentinelModuleTitle, 0)
	if err != nil {
		return 0, fmt.Errorf("insert sentinel module: %w", err)
	}
	b.logger.Info("sentinel module created", zap.Int64("module_id", id))
	return id, nil
}
