package services

import (
	"context"
	"errors"

	"competition-system/database"
	"competition-system/models"

	"gorm.io/gorm"
)

type ParticipantService struct {
	DB *gorm.DB
}

func NewParticipantService(db *gorm.DB) *ParticipantService {
	return &ParticipantService{DB: db}
}

var participantConstraints = constraintErrors{
	database.UniqueParticipantsEmail:           ErrEmailTaken,
	database.ForeignKeyParticipantsCompetition: ErrCompetitionNotFound,
}

// Registration owes the partial fee, so its payment must point at the partial tier.
var registrationPaymentConstraints = constraintErrors{
	database.ForeignKeyPaymentsContribution: ErrNoPartialContribution,
	database.UniquePaymentsTriple:           ErrPaymentExists,
}

var paymentConstraints = constraintErrors{
	database.ForeignKeyPaymentsContribution: ErrContributionNotFound,
	database.ForeignKeyPaymentsParticipant:  ErrParticipantNotFound,
	database.UniquePaymentsTriple:           ErrPaymentExists,
	database.CheckPaymentsMode:              ErrInvalidMode,
}

// RegisterParticipant inserts the participant and its partial-mode payment in one
// transaction. Either both rows are written or neither is.
func (s *ParticipantService) RegisterParticipant(ctx context.Context, competitionID int, fullname, email string) (*models.Participant, error) {
	participant := models.Participant{
		CompetitionID: competitionID,
		Fullname:      fullname,
		Email:         email,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Payments").Create(&participant).Error; err != nil {
			return translate(err, participantConstraints)
		}

		payment := models.Payment{
			ParticipantID: participant.ID,
			CompetitionID: competitionID,
			Mode:          models.ModePartial,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return translate(err, registrationPaymentConstraints)
		}
		participant.Payments = []models.Payment{payment}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &participant, nil
}

func (s *ParticipantService) GetParticipant(ctx context.Context, id int) (*models.Participant, error) {
	var participant models.Participant
	err := s.DB.WithContext(ctx).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&participant, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, translate(err, nil)
	}
	return &participant, nil
}

func (s *ParticipantService) ListParticipants(ctx context.Context, competitionID int) ([]models.Participant, error) {
	participants := []models.Participant{}
	err := s.DB.WithContext(ctx).
		Where("competition_id = ?", competitionID).
		Order("id").
		Find(&participants).Error
	if err != nil {
		return nil, translate(err, nil)
	}
	return participants, nil
}

// DeleteParticipant removes the participant with its payments, videos and results.
func (s *ParticipantService) DeleteParticipant(ctx context.Context, id int) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, child := range []any{&models.Result{}, &models.QualifyingVideo{}, &models.Payment{}} {
			if err := tx.Where("participant_id = ?", id).Delete(child).Error; err != nil {
				return translate(err, nil)
			}
		}
		res := tx.Delete(&models.Participant{}, id)
		if res.Error != nil {
			return translate(res.Error, nil)
		}
		if res.RowsAffected == 0 {
			return ErrParticipantNotFound
		}
		return nil
	})
}

// RecordPayment adds a payment for another tier of the participant's own competition.
func (s *ParticipantService) RecordPayment(ctx context.Context, participantID int, mode models.Mode) (*models.Payment, error) {
	var payment models.Payment
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var participant models.Participant
		if err := tx.Select("id", "competition_id").First(&participant, participantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrParticipantNotFound
			}
			return translate(err, nil)
		}

		payment = models.Payment{
			ParticipantID: participant.ID,
			CompetitionID: participant.CompetitionID,
			Mode:          mode,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return translate(err, paymentConstraints)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (s *ParticipantService) ListPayments(ctx context.Context, participantID int) ([]models.Payment, error) {
	var exists bool
	err := s.DB.WithContext(ctx).
		Raw("SELECT EXISTS (SELECT 1 FROM participants WHERE id = ?)", participantID).
		Scan(&exists).Error
	if err != nil {
		return nil, translate(err, nil)
	}
	if !exists {
		return nil, ErrParticipantNotFound
	}

	payments := []models.Payment{}
	err = s.DB.WithContext(ctx).
		Where("participant_id = ?", participantID).
		Order("pay_datetime, id").
		Find(&payments).Error
	if err != nil {
		return nil, translate(err, nil)
	}
	return payments, nil
}
