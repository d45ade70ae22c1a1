package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Dosada05/rl-prono/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrivateLeagueCreateWithOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	league := &models.PrivateLeague{
		Name: "Office league", InviteCode: "AB12CD34",
		BasedOnLeagueID: uuid.New(), CreatedBy: uuid.New(),
	}
	leagueID := uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO private_leagues`)).
		WithArgs(league.Name, league.InviteCode, league.BasedOnLeagueID, league.CreatedBy).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(leagueID.String(), now, now))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO private_league_members`)).
		WithArgs(leagueID, league.CreatedBy).
		WillReturnRows(sqlmock.NewRows([]string{"id", "joined_at"}).AddRow(uuid.NewString(), now))
	mock.ExpectCommit()

	require.NoError(t, NewPostgresPrivateLeagueRepository(db).CreateWithOwner(context.Background(), league))
	assert.Equal(t, leagueID, league.ID)
	assert.Equal(t, 1, league.MemberCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPrivateLeagueCreateWithOwner_CodeConflictRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO private_leagues`)).
		WillReturnError(&pq.Error{Code: pqUniqueViolation, Constraint: "private_leagues_invite_code_key"})
	mock.ExpectRollback()

	err = NewPostgresPrivateLeagueRepository(db).CreateWithOwner(context.Background(), &models.PrivateLeague{})
	assert.ErrorIs(t, err, ErrInviteCodeConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPrivateLeagueAddMember_AlreadyMember(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO private_league_members`)).
		WillReturnError(&pq.Error{Code: pqUniqueViolation})

	_, err = NewPostgresPrivateLeagueRepository(db).AddMember(context.Background(), nil, uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrAlreadyMember)
}

func TestPrivateLeagueGetByInviteCode_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE pl.invite_code = $1`)).
		WithArgs("NOPE").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = NewPostgresPrivateLeagueRepository(db).GetByInviteCode(context.Background(), "NOPE")
	assert.ErrorIs(t, err, ErrPrivateLeagueNotFound)
}

func TestPrivateLeagueIsMember(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	leagueID, userID := uuid.New(), uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT is_league_member($1, $2)`)).
		WithArgs(leagueID, userID).
		WillReturnRows(sqlmock.NewRows([]string{"is_league_member"}).AddRow(true))

	ok, err := NewPostgresPrivateLeagueRepository(db).IsMember(context.Background(), leagueID, userID)
	require.NoError(t, err)
	assert.True(t, ok)
}
