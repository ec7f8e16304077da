package database

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"
)

// Constraint names follow pk_<table>, uq_<table>_<col0>, fk_<table>_<col0>_<reftable>
// and ck_<table>_<name>. Services match on them to pick the error they report.
const (
	UniqueUsersUsername = "uq_users_username"
	UniqueUsersPassword = "uq_users_password"

	UniqueCompetitionsName = "uq_competitions_name"

	PrimaryKeyContributions            = "pk_contributions"
	ForeignKeyContributionsCompetition = "fk_contributions_competition_id_competitions"
	CheckContributionsMode             = "ck_contributions_contribution_mode"

	ForeignKeyParticipantsCompetition = "fk_participants_competition_id_competitions"
	UniqueParticipantsEmail           = "uq_participants_email"

	UniquePaymentsTriple           = "uq_payments_competition_id"
	ForeignKeyPaymentsContribution = "fk_payments_competition_id_contributions"
	ForeignKeyPaymentsParticipant  = "fk_payments_participant_id_participants"
	CheckPaymentsMode              = "ck_payments_payment_mode"

	ForeignKeyComplexesCompetition = "fk_complexes_competition_id_competitions"
	UniqueComplexesID              = "uq_complexes_id"

	PrimaryKeyQualifyingVideos            = "pk_qualifying_videos"
	ForeignKeyQualifyingVideosComplex     = "fk_qualifying_videos_complex_id_complexes"
	ForeignKeyQualifyingVideosParticipant = "fk_qualifying_videos_participant_id_participants"
	CheckQualifyingVideosStatus           = "ck_qualifying_videos_qualifier_status"

	PrimaryKeyResults            = "pk_results"
	ForeignKeyResultsComplex     = "fk_results_complex_id_complexes"
	ForeignKeyResultsParticipant = "fk_results_participant_id_participants"
	CheckResultsView             = "ck_results_view"
)

// schema is idempotent so Migrate can run on every start.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id           SERIAL,
	username     VARCHAR(255) NOT NULL,
	password     VARCHAR(255) NOT NULL,
	is_superuser BOOLEAN NOT NULL DEFAULT FALSE,
	CONSTRAINT pk_users PRIMARY KEY (id),
	CONSTRAINT uq_users_username UNIQUE (username),
	CONSTRAINT uq_users_password UNIQUE (password)
);

CREATE TABLE IF NOT EXISTS competitions (
	id          SERIAL,
	name        VARCHAR(255) NOT NULL,
	date        TIMESTAMPTZ NOT NULL,
	description TEXT,
	CONSTRAINT pk_competitions PRIMARY KEY (id),
	CONSTRAINT uq_competitions_name UNIQUE (name)
);

CREATE TABLE IF NOT EXISTS contributions (
	competition_id INTEGER NOT NULL,
	mode           VARCHAR(7) NOT NULL,
	price          NUMERIC(10, 2) NOT NULL,
	CONSTRAINT pk_contributions PRIMARY KEY (competition_id, mode),
	CONSTRAINT fk_contributions_competition_id_competitions
		FOREIGN KEY (competition_id) REFERENCES competitions (id) ON DELETE CASCADE,
	CONSTRAINT ck_contributions_contribution_mode CHECK (mode IN ('partial', 'full'))
);

CREATE TABLE IF NOT EXISTS participants (
	id             SERIAL,
	competition_id INTEGER NOT NULL,
	fullname       VARCHAR(255) NOT NULL,
	email          VARCHAR(255) NOT NULL,
	is_qualified   BOOLEAN NOT NULL DEFAULT FALSE,
	is_arrived     BOOLEAN NOT NULL DEFAULT FALSE,
	CONSTRAINT pk_participants PRIMARY KEY (id),
	CONSTRAINT fk_participants_competition_id_competitions
		FOREIGN KEY (competition_id) REFERENCES competitions (id) ON DELETE CASCADE,
	CONSTRAINT uq_participants_email UNIQUE (email)
);
CREATE INDEX IF NOT EXISTS ix_participants_competition_id ON participants (competition_id);

CREATE TABLE IF NOT EXISTS payments (
	id             SERIAL,
	participant_id INTEGER NOT NULL,
	competition_id INTEGER NOT NULL,
	mode           VARCHAR(7) NOT NULL,
	pay_datetime   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT pk_payments PRIMARY KEY (id),
	CONSTRAINT uq_payments_competition_id UNIQUE (competition_id, participant_id, mode),
	CONSTRAINT fk_payments_competition_id_contributions
		FOREIGN KEY (competition_id, mode) REFERENCES contributions (competition_id, mode) ON DELETE CASCADE,
	CONSTRAINT fk_payments_participant_id_participants
		FOREIGN KEY (participant_id) REFERENCES participants (id) ON DELETE CASCADE,
	CONSTRAINT ck_payments_payment_mode CHECK (mode IN ('partial', 'full'))
);
CREATE INDEX IF NOT EXISTS ix_payments_participant_id ON payments (participant_id);

CREATE TABLE IF NOT EXISTS complexes (
	id             SERIAL,
	name           VARCHAR(255) NOT NULL,
	competition_id INTEGER NOT NULL,
	description    TEXT NOT NULL,
	is_qualifying  BOOLEAN NOT NULL,
	start_time     TIME NOT NULL,
	end_time       TIME NOT NULL,
	CONSTRAINT pk_complexes PRIMARY KEY (id),
	CONSTRAINT fk_complexes_competition_id_competitions
		FOREIGN KEY (competition_id) REFERENCES competitions (id) ON DELETE CASCADE,
	CONSTRAINT uq_complexes_id UNIQUE (id, competition_id, name)
);
CREATE INDEX IF NOT EXISTS ix_complexes_competition_id ON complexes (competition_id);

CREATE TABLE IF NOT EXISTS qualifying_videos (
	complex_id       INTEGER NOT NULL,
	participant_id   INTEGER NOT NULL,
	video_url        VARCHAR(255) NOT NULL,
	qualifier_status VARCHAR(11) NOT NULL DEFAULT 'unqualified',
	CONSTRAINT pk_qualifying_videos PRIMARY KEY (complex_id, participant_id),
	CONSTRAINT fk_qualifying_videos_complex_id_complexes
		FOREIGN KEY (complex_id) REFERENCES complexes (id) ON DELETE CASCADE,
	CONSTRAINT fk_qualifying_videos_participant_id_participants
		FOREIGN KEY (participant_id) REFERENCES participants (id) ON DELETE CASCADE,
	CONSTRAINT ck_qualifying_videos_qualifier_status CHECK (qualifier_status IN ('qualified', 'unqualified'))
);
CREATE INDEX IF NOT EXISTS ix_qualifying_videos_participant_id ON qualifying_videos (participant_id);

CREATE TABLE IF NOT EXISTS results (
	complex_id     INTEGER NOT NULL,
	participant_id INTEGER NOT NULL,
	view           VARCHAR(6) NOT NULL,
	result         VARCHAR(255) NOT NULL,
	CONSTRAINT pk_results PRIMARY KEY (complex_id, participant_id),
	CONSTRAINT fk_results_complex_id_complexes
		FOREIGN KEY (complex_id) REFERENCES complexes (id) ON DELETE CASCADE,
	CONSTRAINT fk_results_participant_id_participants
		FOREIGN KEY (participant_id) REFERENCES participants (id) ON DELETE CASCADE,
	CONSTRAINT ck_results_view CHECK (view IN ('kg', 'meters', 'min', 'reps', 'cl'))
);
CREATE INDEX IF NOT EXISTS ix_results_participant_id ON results (participant_id);
`

// Tables lists every table, parents first.
var Tables = []string{
	"users",
	"competitions",
	"contributions",
	"participants",
	"payments",
	"complexes",
	"qualifying_videos",
	"results",
}

// Migrate creates the schema if it does not exist yet.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).Exec(schema).Error; err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	slog.Info("Database schema is up to date", "tables", len(Tables))
	return nil
}
