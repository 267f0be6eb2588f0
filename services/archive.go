package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/courtside/tournament-engine/models"
	"github.com/courtside/tournament-engine/repositories"
	"github.com/courtside/tournament-engine/storage"
)

// ResultsArchiver exports a completed bracket as a JSON snapshot to object
// storage, so final results survive outside the operational database.
// Uploads are best-effort: a failed archive is logged, never propagated
// into the command path that triggered it.
type ResultsArchiver struct {
	uploader  storage.FileUploader
	matchRepo repositories.MatchRepository
	teamRepo  repositories.TeamRepository
	logger    *slog.Logger
}

func NewResultsArchiver(
	uploader storage.FileUploader,
	matchRepo repositories.MatchRepository,
	teamRepo repositories.TeamRepository,
	logger *slog.Logger,
) *ResultsArchiver {
	return &ResultsArchiver{
		uploader:  uploader,
		matchRepo: matchRepo,
		teamRepo:  teamRepo,
		logger:    logger,
	}
}

type bracketArchive struct {
	ArchivedAt time.Time       `json:"archived_at"`
	Bracket    *models.Bracket `json:"bracket"`
	Champion   *models.Team    `json:"champion,omitempty"`
	Matches    []*models.Match `json:"matches"`
}

// ArchiveBracket uploads the final state of a bracket. Safe to call with a
// nil archiver or without a configured uploader.
func (a *ResultsArchiver) ArchiveBracket(ctx context.Context, bracket *models.Bracket) {
	if a == nil || a.uploader == nil {
		return
	}

	matches, err := a.matchRepo.ListByBracket(ctx, bracket.ID)
	if err != nil {
		a.logger.Error("archive: failed to load bracket matches", slog.Int("bracket_id", bracket.ID), slog.Any("error", err))
		return
	}
	archive := bracketArchive{
		ArchivedAt: time.Now().UTC(),
		Bracket:    bracket,
		Matches:    matches,
	}
	if bracket.ChampionTeamID != nil {
		if champion, err := a.teamRepo.GetByID(ctx, *bracket.ChampionTeamID); err == nil {
			archive.Champion = champion
		}
	}

	data, err := json.Marshal(archive)
	if err != nil {
		a.logger.Error("archive: failed to encode bracket", slog.Int("bracket_id", bracket.ID), slog.Any("error", err))
		return
	}

	key := archiveKey(bracket)
	result, err := a.uploader.Upload(ctx, key, "application/json", bytes.NewReader(data))
	if err != nil {
		a.logger.Error("archive: upload failed", slog.String("key", key), slog.Any("error", err))
		return
	}
	a.logger.Info("bracket results archived", slog.String("key", result.Key), slog.String("location", result.Location))
}

// RemoveBracket deletes a previously archived snapshot. Called when undoing
// the final reopens a bracket, so the store never serves results the
// bracket no longer stands behind. Best-effort like ArchiveBracket.
func (a *ResultsArchiver) RemoveBracket(ctx context.Context, bracket *models.Bracket) {
	if a == nil || a.uploader == nil {
		return
	}
	key := archiveKey(bracket)
	if err := a.uploader.Delete(ctx, key); err != nil {
		a.logger.Error("archive: delete failed", slog.String("key", key), slog.Any("error", err))
		return
	}
	a.logger.Info("bracket results archive removed", slog.String("key", key))
}

func archiveKey(bracket *models.Bracket) string {
	return fmt.Sprintf("results/tournament_%d/bracket_%d.json", bracket.TournamentID, bracket.ID)
}
