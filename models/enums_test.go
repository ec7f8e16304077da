package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"full", ModeFull, false},
		{"partial", ModePartial, false},
		{"Full", "", true},
		{"", "", true},
		{"half", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseViewResult(t *testing.T) {
	for _, v := range Views {
		got, err := ParseViewResult(string(v))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}

	_, err := ParseViewResult("seconds")
	assert.Error(t, err)
}

func TestParseQualifierStatus(t *testing.T) {
	got, err := ParseQualifierStatus("qualified")
	require.NoError(t, err)
	assert.Equal(t, QualifierStatusQualified, got)

	_, err = ParseQualifierStatus("pending")
	assert.Error(t, err)
}

func TestPaymentContributionKey(t *testing.T) {
	p := Payment{ParticipantID: 9, CompetitionID: 3, Mode: ModePartial}
	c := Contribution{CompetitionID: 3, Mode: ModePartial, Price: 50}

	assert.Equal(t, c.Key(), p.ContributionKey())
	assert.NotEqual(t, ContributionKey{CompetitionID: 3, Mode: ModeFull}, p.ContributionKey())
}
