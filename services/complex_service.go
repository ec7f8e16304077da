package services

import (
	"context"
	"errors"

	"competition-system/database"
	"competition-system/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ComplexService struct {
	DB *gorm.DB
}

func NewComplexService(db *gorm.DB) *ComplexService {
	return &ComplexService{DB: db}
}

type ComplexInput struct {
	Name         string
	Description  string
	IsQualifying bool
	StartTime    datatypes.Time
	EndTime      datatypes.Time
}

// ComplexPatch overwrites only the non-nil fields.
type ComplexPatch struct {
	Name         *string
	Description  *string
	IsQualifying *bool
	StartTime    *datatypes.Time
	EndTime      *datatypes.Time
}

func (p ComplexPatch) columns() map[string]any {
	cols := map[string]any{}
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.IsQualifying != nil {
		cols["is_qualifying"] = *p.IsQualifying
	}
	if p.StartTime != nil {
		cols["start_time"] = *p.StartTime
	}
	if p.EndTime != nil {
		cols["end_time"] = *p.EndTime
	}
	return cols
}

var complexConstraints = constraintErrors{
	database.ForeignKeyComplexesCompetition: ErrCompetitionNotFound,
	database.UniqueComplexesID:              ErrConflict,
}

var videoConstraints = constraintErrors{
	database.PrimaryKeyQualifyingVideos:            ErrVideoExists,
	database.ForeignKeyQualifyingVideosComplex:     ErrComplexNotFound,
	database.ForeignKeyQualifyingVideosParticipant: ErrParticipantNotFound,
	database.CheckQualifyingVideosStatus:           ErrInvalidStatus,
}

var resultConstraints = constraintErrors{
	database.PrimaryKeyResults:            ErrResultExists,
	database.ForeignKeyResultsComplex:     ErrComplexNotFound,
	database.ForeignKeyResultsParticipant: ErrParticipantNotFound,
	database.CheckResultsView:             ErrInvalidView,
}

func (s *ComplexService) CreateComplex(ctx context.Context, competitionID int, in ComplexInput) (*models.Complex, error) {
	cx := models.Complex{
		CompetitionID: competitionID,
		Name:          in.Name,
		Description:   in.Description,
		IsQualifying:  in.IsQualifying,
		StartTime:     in.StartTime,
		EndTime:       in.EndTime,
	}
	if err := s.DB.WithContext(ctx).Create(&cx).Error; err != nil {
		return nil, translate(err, complexConstraints)
	}
	return &cx, nil
}

func (s *ComplexService) GetComplex(ctx context.Context, id int) (*models.Complex, error) {
	var cx models.Complex
	if err := s.DB.WithContext(ctx).First(&cx, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrComplexNotFound
		}
		return nil, translate(err, nil)
	}
	return &cx, nil
}

func (s *ComplexService) ListComplexes(ctx context.Context, competitionID int) ([]models.Complex, error) {
	complexes := []models.Complex{}
	err := s.DB.WithContext(ctx).
		Where("competition_id = ?", competitionID).
		Order("start_time, id").
		Find(&complexes).Error
	if err != nil {
		return nil, translate(err, nil)
	}
	return complexes, nil
}

func (s *ComplexService) UpdateComplex(ctx context.Context, id int, patch ComplexPatch) (*models.Complex, error) {
	cols := patch.columns()
	if len(cols) == 0 {
		return s.GetComplex(ctx, id)
	}

	var cx models.Complex
	res := s.DB.WithContext(ctx).
		Model(&cx).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Updates(cols)
	if res.Error != nil {
		return nil, translate(res.Error, complexConstraints)
	}
	if res.RowsAffected == 0 {
		return nil, ErrComplexNotFound
	}
	return &cx, nil
}

// DeleteComplex removes the complex with its qualifying videos and results.
func (s *ComplexService) DeleteComplex(ctx context.Context, id int) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, child := range []any{&models.Result{}, &models.QualifyingVideo{}} {
			if err := tx.Where("complex_id = ?", id).Delete(child).Error; err != nil {
				return translate(err, nil)
			}
		}
		res := tx.Delete(&models.Complex{}, id)
		if res.Error != nil {
			return translate(res.Error, nil)
		}
		if res.RowsAffected == 0 {
			return ErrComplexNotFound
		}
		return nil
	})
}

// RecordQualifyingVideo stores the participant's video for the complex. The pair is the
// primary key, so a second video for it fails and the first stays untouched.
func (s *ComplexService) RecordQualifyingVideo(ctx context.Context, complexID, participantID int, videoURL string) (*models.QualifyingVideo, error) {
	video := models.QualifyingVideo{
		ComplexID:       complexID,
		ParticipantID:   participantID,
		VideoURL:        videoURL,
		QualifierStatus: models.QualifierStatusUnqualified,
	}
	if err := s.DB.WithContext(ctx).Create(&video).Error; err != nil {
		return nil, translate(err, videoConstraints)
	}
	return &video, nil
}

func (s *ComplexService) GetQualifyingVideo(ctx context.Context, complexID, participantID int) (*models.QualifyingVideo, error) {
	var video models.QualifyingVideo
	err := s.DB.WithContext(ctx).
		Where("complex_id = ? AND participant_id = ?", complexID, participantID).
		First(&video).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, translate(err, nil)
	}
	return &video, nil
}

func (s *ComplexService) ListQualifyingVideos(ctx context.Context, complexID int) ([]models.QualifyingVideo, error) {
	videos := []models.QualifyingVideo{}
	err := s.DB.WithContext(ctx).
		Where("complex_id = ?", complexID).
		Order("participant_id").
		Find(&videos).Error
	if err != nil {
		return nil, translate(err, nil)
	}
	return videos, nil
}

// SetQualifierStatus overwrites the review outcome. Any transition is allowed.
func (s *ComplexService) SetQualifierStatus(ctx context.Context, complexID, participantID int, status models.QualifierStatus) (*models.QualifyingVideo, error) {
	var video models.QualifyingVideo
	res := s.DB.WithContext(ctx).
		Model(&video).
		Clauses(clause.Returning{}).
		Where("complex_id = ? AND participant_id = ?", complexID, participantID).
		Update("qualifier_status", status)
	if res.Error != nil {
		return nil, translate(res.Error, videoConstraints)
	}
	if res.RowsAffected == 0 {
		return nil, ErrVideoNotFound
	}
	return &video, nil
}

func (s *ComplexService) RecordResult(ctx context.Context, complexID, participantID int, view models.ViewResult, value string) (*models.Result, error) {
	result := models.Result{
		ComplexID:     complexID,
		ParticipantID: participantID,
		View:          view,
		Value:         value,
	}
	if err := s.DB.WithContext(ctx).Create(&result).Error; err != nil {
		return nil, translate(err, resultConstraints)
	}
	return &result, nil
}

func (s *ComplexService) ListResults(ctx context.Context, complexID int) ([]models.Result, error) {
	results := []models.Result{}
	err := s.DB.WithContext(ctx).
		Where("complex_id = ?", complexID).
		Order("participant_id").
		Find(&results).Error
	if err != nil {
		return nil, translate(err, nil)
	}
	return results, nil
}
