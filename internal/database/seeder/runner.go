// Package seeder prepares startup rows in the admin database after migrations ran.
package seeder

import (
	"context"
	"errors"
	"fmt"
	"log"

	"careerboard/internal/database"
)

// ErrSkipped is returned by a seeder that had nothing to do.
var ErrSkipped = errors.New("seed skipped")

type Seeder interface {
	Name() string
	Run(ctx context.Context, db database.DB) error
}

// Runner applies seeders in order and stops at the first failure.
type Runner struct {
	Seeders []Seeder
	Logger  *log.Logger
}

func (r Runner) Run(ctx context.Context, db database.DB) error {
	if db == nil {
		return errors.New("[Seeder] nil db")
	}
	logger := r.Logger
	if logger == nil {
		logger = log.Default()
	}

	for _, s := range r.Seeders {
		if s == nil {
			continue
		}
		err := s.Run(ctx, db)
		switch {
		case errors.Is(err, ErrSkipped):
			logger.Printf("[Seeder] skipped %s", s.Name())
		case err != nil:
			return fmt.Errorf("seed %s: %w", s.Name(), err)
		default:
			logger.Printf("[Seeder] applied %s", s.Name())
		}
	}
	return nil
}
