package models

import "gorm.io/datatypes"

// Complex groups event stations of a competition held within a time window of the day.
type Complex struct {
	ID            int            `json:"id" gorm:"primaryKey"`
	CompetitionID int            `json:"competition_id" gorm:"index;not null"`
	Name          string         `json:"name" gorm:"size:255;not null"`
	Description   string         `json:"description" gorm:"type:text;not null"`
	IsQualifying  bool           `json:"is_qualifying" gorm:"not null"`
	StartTime     datatypes.Time `json:"start_time" gorm:"not null"`
	EndTime       datatypes.Time `json:"end_time" gorm:"not null"`
}

func (Complex) TableName() string { return "complexes" }

// QualifyingVideo is keyed by (complex_id, participant_id): one video per participant per complex.
type QualifyingVideo struct {
	ComplexID       int             `json:"complex_id" gorm:"primaryKey;autoIncrement:false"`
	ParticipantID   int             `json:"participant_id" gorm:"primaryKey;autoIncrement:false"`
	VideoURL        string          `json:"video_url" gorm:"column:video_url;size:255;not null"`
	QualifierStatus QualifierStatus `json:"qualifier_status" gorm:"type:varchar(11);not null;default:unqualified"`
}

func (QualifyingVideo) TableName() string { return "qualifying_videos" }

// Result is keyed by (complex_id, participant_id). Value is stored as entered;
// its format depends on View (e.g. "102.5" for kg, "04:31" for min).
type Result struct {
	ComplexID     int        `json:"complex_id" gorm:"primaryKey;autoIncrement:false"`
	ParticipantID int        `json:"participant_id" gorm:"primaryKey;autoIncrement:false"`
	View          ViewResult `json:"view" gorm:"type:varchar(6);not null"`
	Value         string     `json:"result" gorm:"column:result;size:255;not null"`
}

func (Result) TableName() string { return "results" }
