package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside/tournament-engine/models"
)

func TestArchiveBracket(t *testing.T) {
	champion := 42
	bracket := &models.Bracket{
		ID:             3,
		TournamentID:   1,
		Type:           models.BracketWinners,
		Status:         models.BracketStatusCompleted,
		ChampionTeamID: &champion,
	}
	bracketID := bracket.ID
	matchRepo := newFakeMatchRepo(&models.Match{ID: 1, BracketID: &bracketID, Status: models.MatchStatusCompleted})
	teamRepo := newFakeTeamRepo(&models.Team{ID: 42, TournamentID: 1, Name: "Dink Masters"})
	uploader := newFakeUploader()
	archiver := NewResultsArchiver(uploader, matchRepo, teamRepo, discardLogger())

	archiver.ArchiveBracket(context.Background(), bracket)

	data, ok := uploader.uploads["results/tournament_1/bracket_3.json"]
	require.True(t, ok, "snapshot not uploaded under the expected key")

	var snapshot struct {
		Champion *models.Team    `json:"champion"`
		Matches  []*models.Match `json:"matches"`
	}
	require.NoError(t, json.Unmarshal(data, &snapshot))
	require.NotNil(t, snapshot.Champion)
	assert.Equal(t, "Dink Masters", snapshot.Champion.Name)
	assert.Len(t, snapshot.Matches, 1)
}

func TestRemoveBracket(t *testing.T) {
	bracket := &models.Bracket{ID: 3, TournamentID: 1, Status: models.BracketStatusCompleted}
	bracketID := bracket.ID
	matchRepo := newFakeMatchRepo(&models.Match{ID: 1, BracketID: &bracketID, Status: models.MatchStatusCompleted})
	teamRepo := newFakeTeamRepo()
	uploader := newFakeUploader()
	archiver := NewResultsArchiver(uploader, matchRepo, teamRepo, discardLogger())

	archiver.ArchiveBracket(context.Background(), bracket)
	require.Contains(t, uploader.uploads, "results/tournament_1/bracket_3.json")

	archiver.RemoveBracket(context.Background(), bracket)

	assert.NotContains(t, uploader.uploads, "results/tournament_1/bracket_3.json")
	assert.Equal(t, []string{"results/tournament_1/bracket_3.json"}, uploader.deleted)
}

func TestArchiverDisabled(t *testing.T) {
	// A nil archiver and a nil uploader are both no-ops, so the command
	// path never needs to guard the call.
	var archiver *ResultsArchiver
	archiver.ArchiveBracket(context.Background(), &models.Bracket{ID: 1})
	archiver.RemoveBracket(context.Background(), &models.Bracket{ID: 1})

	disabled := NewResultsArchiver(nil, newFakeMatchRepo(), newFakeTeamRepo(), discardLogger())
	disabled.ArchiveBracket(context.Background(), &models.Bracket{ID: 1})
	disabled.RemoveBracket(context.Background(), &models.Bracket{ID: 1})
}
