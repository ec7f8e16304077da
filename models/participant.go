package models

import "time"

// Participant is registered for exactly one competition.
// IsQualified and IsArrived are owned by the qualification review and check-in flows.
type Participant struct {
	ID            int    `json:"id" gorm:"primaryKey"`
	CompetitionID int    `json:"competition_id" gorm:"index;not null"`
	Fullname      string `json:"fullname" gorm:"size:255;not null"`
	Email         string `json:"email" gorm:"size:255;uniqueIndex;not null"`
	IsQualified   bool   `json:"is_qualified" gorm:"not null;default:false"`
	IsArrived     bool   `json:"is_arrived" gorm:"not null;default:false"`

	Payments []Payment `json:"payments,omitempty" gorm:"foreignKey:ParticipantID"`
}

func (Participant) TableName() string { return "participants" }

// Payment records that a participant owes or paid one contribution tier.
// (CompetitionID, Mode) must name an existing contribution.
type Payment struct {
	ID            int       `json:"id" gorm:"primaryKey"`
	ParticipantID int       `json:"participant_id" gorm:"not null"`
	CompetitionID int       `json:"competition_id" gorm:"not null"`
	Mode          Mode      `json:"mode" gorm:"type:varchar(7);not null"`
	PayDatetime   time.Time `json:"pay_datetime" gorm:"column:pay_datetime;type:timestamptz;default:now()"`
}

func (Payment) TableName() string { return "payments" }

func (p Payment) ContributionKey() ContributionKey {
	return ContributionKey{CompetitionID: p.CompetitionID, Mode: p.Mode}
}
