package repository

import (
	"context"

	constant "github.com/openlearn/certforge/internal/constant"
	"github.com/openlearn/certforge/internal/model"
	"gorm.io/gorm"
)

type SequenceRepository struct {
	*baseRepository
}

// Next reserves the next certificate number for the year in a single atomic
// upsert. Safe under concurrent issuance, no read-increment-write race.
func (sr SequenceRepository) Next(ctx context.Context, tx *gorm.DB, year int) (int, error) {
	sr.logger.Debugf("Reserve next certificate sequence for year: %d", year)

	db := sr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var seq model.CertificateSequence
	err := db.WithContext(ctx).Raw(`
		INSERT INTO certificate_sequences (year, last_value)
		VALUES (?, 1)
		ON CONFLICT (year)
		DO UPDATE SET last_value = certificate_sequences.last_value + 1
		RETURNING year, last_value`, year).Scan(&seq).Error
	if err != nil {
		return 0, err
	}

	return seq.LastValue, nil
}
