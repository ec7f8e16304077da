package services

import (
	"context"
	"errors"
	"time"

	"competition-system/database"
	"competition-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CompetitionService struct {
	DB *gorm.DB
}

func NewCompetitionService(db *gorm.DB) *CompetitionService {
	return &CompetitionService{DB: db}
}

type CompetitionInput struct {
	Name        string
	Date        time.Time
	Description *string
}

// CompetitionPatch overwrites only the non-nil fields. A nil Description means "not
// supplied", so a patch cannot clear it back to NULL; an empty string blanks it.
type CompetitionPatch struct {
	Name        *string
	Date        *time.Time
	Description *string
}

func (p CompetitionPatch) columns() map[string]any {
	cols := map[string]any{}
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Date != nil {
		cols["date"] = *p.Date
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	return cols
}

var competitionConstraints = constraintErrors{
	database.UniqueCompetitionsName: ErrCompetitionNameTaken,
}

var contributionConstraints = constraintErrors{
	database.PrimaryKeyContributions:            ErrContributionExists,
	database.ForeignKeyContributionsCompetition: ErrCompetitionNotFound,
	database.CheckContributionsMode:             ErrInvalidMode,
}

func (s *CompetitionService) CreateCompetition(ctx context.Context, in CompetitionInput) (*models.Competition, error) {
	competition := models.Competition{
		Name:        in.Name,
		Date:        in.Date,
		Description: in.Description,
	}
	if err := s.DB.WithContext(ctx).Create(&competition).Error; err != nil {
		return nil, translate(err, competitionConstraints)
	}
	return &competition, nil
}

// GetCompetition loads the competition with its contribution tiers.
func (s *CompetitionService) GetCompetition(ctx context.Context, id int) (*models.Competition, error) {
	return loadCompetition(s.DB.WithContext(ctx), id)
}

func loadCompetition(db *gorm.DB, id int) (*models.Competition, error) {
	var competition models.Competition
	err := db.Preload("Contributions", func(db *gorm.DB) *gorm.DB {
		return db.Order("mode")
	}).First(&competition, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompetitionNotFound
		}
		return nil, translate(err, nil)
	}
	return &competition, nil
}

func (s *CompetitionService) ListCompetitions(ctx context.Context) ([]models.Competition, error) {
	competitions := []models.Competition{}
	if err := s.DB.WithContext(ctx).Order("date, id").Find(&competitions).Error; err != nil {
		return nil, translate(err, nil)
	}
	return competitions, nil
}

// UpdateCompetition applies patch and returns the stored competition. An empty patch
// just reads it back.
func (s *CompetitionService) UpdateCompetition(ctx context.Context, id int, patch CompetitionPatch) (*models.Competition, error) {
	cols := patch.columns()
	if len(cols) == 0 {
		return s.GetCompetition(ctx, id)
	}

	var updated *models.Competition
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Competition{}).Where("id = ?", id).Updates(cols)
		if res.Error != nil {
			return translate(res.Error, competitionConstraints)
		}
		if res.RowsAffected == 0 {
			return ErrCompetitionNotFound
		}
		var err error
		updated, err = loadCompetition(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteCompetition removes the competition and everything that hangs off it, children
// first, in one transaction.
func (s *CompetitionService) DeleteCompetition(ctx context.Context, id int) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var competition models.Competition
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&competition, id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCompetitionNotFound
			}
			return translate(err, nil)
		}

		complexIDs := tx.Model(&models.Complex{}).Select("id").Where("competition_id = ?", id)
		participantIDs := tx.Model(&models.Participant{}).Select("id").Where("competition_id = ?", id)

		steps := []struct {
			model any
			query string
			args  []any
		}{
			{&models.Result{}, "complex_id IN (?) OR participant_id IN (?)", []any{complexIDs, participantIDs}},
			{&models.QualifyingVideo{}, "complex_id IN (?) OR participant_id IN (?)", []any{complexIDs, participantIDs}},
			{&models.Payment{}, "competition_id = ? OR participant_id IN (?)", []any{id, participantIDs}},
			{&models.Participant{}, "competition_id = ?", []any{id}},
			{&models.Complex{}, "competition_id = ?", []any{id}},
			{&models.Contribution{}, "competition_id = ?", []any{id}},
			{&models.Competition{}, "id = ?", []any{id}},
		}
		for _, step := range steps {
			if err := tx.Where(step.query, step.args...).Delete(step.model).Error; err != nil {
				return translate(err, nil)
			}
		}
		return nil
	})
}

// CreateContribution adds a fee tier. A second tier with the same mode is rejected by
// the primary key, so concurrent callers cannot both succeed.
func (s *CompetitionService) CreateContribution(ctx context.Context, key models.ContributionKey, price float64) (*models.Contribution, error) {
	contribution := models.Contribution{
		CompetitionID: key.CompetitionID,
		Mode:          key.Mode,
		Price:         price,
	}
	if err := s.DB.WithContext(ctx).Create(&contribution).Error; err != nil {
		return nil, translate(err, contributionConstraints)
	}
	return &contribution, nil
}

func (s *CompetitionService) GetContribution(ctx context.Context, key models.ContributionKey) (*models.Contribution, error) {
	var contribution models.Contribution
	err := s.DB.WithContext(ctx).
		Where("competition_id = ? AND mode = ?", key.CompetitionID, key.Mode).
		First(&contribution).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContributionNotFound
		}
		return nil, translate(err, nil)
	}
	return &contribution, nil
}

func (s *CompetitionService) ListContributions(ctx context.Context, competitionID int) ([]models.Contribution, error) {
	contributions := []models.Contribution{}
	err := s.DB.WithContext(ctx).
		Where("competition_id = ?", competitionID).
		Order("mode").
		Find(&contributions).Error
	if err != nil {
		return nil, translate(err, nil)
	}
	return contributions, nil
}

// ContributionPatch overwrites only the non-nil fields.
type ContributionPatch struct {
	Price *float64
}

func (s *CompetitionService) UpdateContribution(ctx context.Context, key models.ContributionKey, patch ContributionPatch) (*models.Contribution, error) {
	if patch.Price == nil {
		return s.GetContribution(ctx, key)
	}

	var contribution models.Contribution
	res := s.DB.WithContext(ctx).
		Model(&contribution).
		Clauses(clause.Returning{}).
		Where("competition_id = ? AND mode = ?", key.CompetitionID, key.Mode).
		Update("price", *patch.Price)
	if res.Error != nil {
		return nil, translate(res.Error, contributionConstraints)
	}
	if res.RowsAffected == 0 {
		return nil, ErrContributionNotFound
	}
	return &contribution, nil
}

// DeleteContribution removes the tier together with the payments made against it.
func (s *CompetitionService) DeleteContribution(ctx context.Context, key models.ContributionKey) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("competition_id = ? AND mode = ?", key.CompetitionID, key.Mode).
			Delete(&models.Payment{}).Error
		if err != nil {
			return translate(err, nil)
		}
		res := tx.Where("competition_id = ? AND mode = ?", key.CompetitionID, key.Mode).
			Delete(&models.Contribution{})
		if res.Error != nil {
			return translate(res.Error, nil)
		}
		if res.RowsAffected == 0 {
			return ErrContributionNotFound
		}
		return nil
	})
}
