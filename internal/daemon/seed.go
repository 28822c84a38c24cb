package daemon

import (
	"gorm.io/gorm"

	"github.com/rs/zerolog/log"

	"github.com/taskery/taskery/internal/config"
	"github.com/taskery/taskery/internal/db/sequence"
)

func seed(_ *config.Config, db *gorm.DB) {
	// Make sure the id counters exist before the first allocation.
	if err := sequence.Seed(db); err != nil {
		log.Fatal().Err(err).Msg("failed to seed sequence counters")
	}
}
