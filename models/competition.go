package models

import "time"

// Competition owns its contributions, complexes and participants.
type Competition struct {
	ID          int       `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:255;uniqueIndex;not null"`
	Date        time.Time `json:"date" gorm:"type:timestamptz;not null"`
	Description *string   `json:"description" gorm:"type:text"`

	// Relationships
	Contributions []Contribution `json:"contribution,omitempty" gorm:"foreignKey:CompetitionID"`
}

func (Competition) TableName() string { return "competitions" }

// ContributionKey is the compound key of a contribution tier. Payments reference
// contributions through it, never through its columns separately.
type ContributionKey struct {
	CompetitionID int  `json:"competition_id"`
	Mode          Mode `json:"mode"`
}

// Contribution is one fee tier of a competition, keyed by (competition_id, mode).
type Contribution struct {
	CompetitionID int     `json:"competition_id" gorm:"primaryKey;autoIncrement:false"`
	Mode          Mode    `json:"mode" gorm:"primaryKey;type:varchar(7)"`
	Price         float64 `json:"price" gorm:"type:numeric(10,2);not null"` // whole cents only, checked at the HTTP edge
}

func (Contribution) TableName() string { return "contributions" }

func (c Contribution) Key() ContributionKey {
	return ContributionKey{CompetitionID: c.CompetitionID, Mode: c.Mode}
}
