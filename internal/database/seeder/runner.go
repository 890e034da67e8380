package seeder

import (
	"context"
	"fmt"

	"getjobs/internal/database"
	"getjobs/internal/pkg/logging"
)

type Runner struct {
	Seeders []Seeder
	Logger  *logging.Logger
}

func (r Runner) Run(ctx context.Context, db database.DB) error {
	if db == nil {
		return database.ErrNilDB
	}
	for _, s := range r.Seeders {
		if s == nil {
			continue
		}
		if err := s.Run(ctx, db); err != nil {
			return fmt.Errorf("seed %s: %w", s.Name(), err)
		}
		r.Logger.Info("seeder applied", "name", s.Name())
	}
	return nil
}
