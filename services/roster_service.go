package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"competition-system/models"

	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	SheetParticipants  = "Participants"
	SheetContributions = "Contributions"
	SheetComplexes     = "Complexes"
	SheetResults       = "Results"
)

// Roster is a competition exported as an xlsx workbook.
type Roster struct {
	Competition models.Competition
	Workbook    []byte
}

type RosterService struct {
	DB *gorm.DB
}

func NewRosterService(db *gorm.DB) *RosterService {
	return &RosterService{DB: db}
}

type rosterResult struct {
	ComplexName string
	Fullname    string
	View        models.ViewResult
	Result      string
}

// Build reads the competition in one snapshot and renders it into a workbook with one
// sheet per table.
func (s *RosterService) Build(ctx context.Context, competitionID int) (*Roster, error) {
	var (
		competition  models.Competition
		participants []models.Participant
		complexes    []models.Complex
		results      []rosterResult
	)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := loadCompetition(tx, competitionID)
		if err != nil {
			return err
		}
		competition = *c

		err = tx.Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("mode") }).
			Where("competition_id = ?", competitionID).
			Order("id").
			Find(&participants).Error
		if err != nil {
			return translate(err, nil)
		}

		if err := tx.Where("competition_id = ?", competitionID).Order("start_time, id").Find(&complexes).Error; err != nil {
			return translate(err, nil)
		}

		err = tx.Table("results AS r").
			Select("c.name AS complex_name, p.fullname, r.view, r.result").
			Joins("JOIN complexes AS c ON c.id = r.complex_id").
			Joins("JOIN participants AS p ON p.id = r.participant_id").
			Where("c.competition_id = ?", competitionID).
			Order("c.start_time, c.id, p.id").
			Scan(&results).Error
		return translate(err, nil)
	}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, err
	}

	workbook, err := renderRoster(competition, participants, complexes, results)
	if err != nil {
		return nil, err
	}
	return &Roster{Competition: competition, Workbook: workbook}, nil
}

func renderRoster(competition models.Competition, participants []models.Participant, complexes []models.Complex, results []rosterResult) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetParticipants); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{SheetContributions, SheetComplexes, SheetResults} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("failed to add sheet %q: %w", name, err)
		}
	}

	sheets := map[string][][]any{
		SheetParticipants:  {{"ID", "Full name", "Email", "Qualified", "Arrived", "Payments"}},
		SheetContributions: {{"Mode", "Price"}},
		SheetComplexes:     {{"ID", "Name", "Qualifying", "Start", "End", "Description"}},
		SheetResults:       {{"Complex", "Participant", "View", "Result"}},
	}

	for _, p := range participants {
		modes := make([]string, 0, len(p.Payments))
		for _, payment := range p.Payments {
			modes = append(modes, string(payment.Mode))
		}
		sheets[SheetParticipants] = append(sheets[SheetParticipants],
			[]any{p.ID, p.Fullname, p.Email, p.IsQualified, p.IsArrived, strings.Join(modes, ", ")})
	}
	for _, c := range competition.Contributions {
		sheets[SheetContributions] = append(sheets[SheetContributions], []any{string(c.Mode), c.Price})
	}
	for _, c := range complexes {
		sheets[SheetComplexes] = append(sheets[SheetComplexes],
			[]any{c.ID, c.Name, c.IsQualifying, clock(c.StartTime), clock(c.EndTime), c.Description})
	}
	for _, r := range results {
		sheets[SheetResults] = append(sheets[SheetResults], []any{r.ComplexName, r.Fullname, string(r.View), r.Result})
	}

	for sheet, rows := range sheets {
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				return nil, err
			}
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				return nil, fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
			}
		}
	}

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   competition.Name,
		Created: time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		return nil, fmt.Errorf("failed to set workbook properties: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func clock(t datatypes.Time) string {
	d := time.Duration(t)
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}
