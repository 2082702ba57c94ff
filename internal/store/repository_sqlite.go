package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"fleetsim/internal/duel"
)

// OpenDB opens the sqlite database at dsn and migrates the schema.
func OpenDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dsn, err)
	}
	if err := db.AutoMigrate(&DuelRecord{}, &StandingRecord{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

type sqliteRepository struct {
	db *gorm.DB
}

func NewSQLiteRepository(db *gorm.DB) Repository {
	return &sqliteRepository{db: db}
}

func (r *sqliteRepository) SaveDuel(res *duel.Result) (*DuelRecord, error) {
	body, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("encode duel %s: %w", res.ID, err)
	}
	rec := &DuelRecord{
		DuelID: res.ID,
		Seed:   res.Seed,
		Winner: res.Winner,
		Draw:   res.Draw,
		Turns:  res.Turns,
		Result: body,
	}
	if len(res.Entrants) == 2 {
		rec.EntrantA, rec.EntrantB = res.Entrants[0], res.Entrants[1]
	}
	if err := r.db.Create(rec).Error; err != nil {
		return nil, fmt.Errorf("save duel %s: %w", res.ID, err)
	}
	return rec, nil
}

func (r *sqliteRepository) GetDuel(duelID string) (*DuelRecord, error) {
	var rec DuelRecord
	err := r.db.Where("duel_id = ?", duelID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *sqliteRepository) ListDuels(limit int) ([]DuelRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var recs []DuelRecord
	if err := r.db.Model(&DuelRecord{}).
		Omit("result").
		Order("id DESC").
		Limit(limit).
		Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

func (r *sqliteRepository) SaveStandings(tournamentID string, standings []duel.Standing) error {
	if len(standings) == 0 {
		return nil
	}
	recs := make([]StandingRecord, len(standings))
	for i, st := range standings {
		recs[i] = StandingRecord{
			TournamentID: tournamentID,
			Place:        i + 1,
			Name:         st.Name,
			Wins:         st.Wins,
			Draws:        st.Draws,
			Losses:       st.Losses,
			Points:       st.Points,
		}
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tournament_id = ?", tournamentID).Delete(&StandingRecord{}).Error; err != nil {
			return err
		}
		return tx.Create(&recs).Error
	})
}

func (r *sqliteRepository) GetStandings(tournamentID string) ([]StandingRecord, error) {
	var recs []StandingRecord
	if err := r.db.Where("tournament_id = ?", tournamentID).Order("place ASC").Find(&recs).Error; err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrNotFound
	}
	return recs, nil
}

// DecodeResult unpacks the stored duel result.
func DecodeResult(rec *DuelRecord) (*duel.Result, error) {
	var res duel.Result
	if err := json.Unmarshal(rec.Result, &res); err != nil {
		return nil, fmt.Errorf("decode duel %s: %w", rec.DuelID, err)
	}
	return &res, nil
}
