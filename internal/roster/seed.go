package roster

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/rootzsu/orderbot/core/bootstrap"
	"github.com/rootzsu/orderbot/core/logger"
)

// OperatorSeeder ensures the initial operator row exists before the bot
// starts taking updates.
func OperatorSeeder(id int64) bootstrap.Seeder {
	return bootstrap.SeederFunc(func(ctx context.Context, storage bootstrap.Storage) error {
		db, ok := storage.(*sqlx.DB)
		if !ok {
			return fmt.Errorf("roster: unexpected storage %T", storage)
		}
		added, err := NewRepository(db).AddOperator(ctx, id)
		if err != nil {
			return fmt.Errorf("roster: seed initial operator: %w", err)
		}
		if added {
			logger.SEED.Info("initial operator seeded",
				slog.String("event", "seed.operator"),
				slog.Int64("user_id", id),
			)
		}
		return nil
	})
}
