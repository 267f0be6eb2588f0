package services

import (
	"context"
	"io"

	"github.com/courtside/tournament-engine/models"
	"github.com/courtside/tournament-engine/repositories"
	"github.com/courtside/tournament-engine/storage"
)

// In-memory doubles for the repository and storage interfaces, enough for
// exercising service orchestration without a database.

type fakeTeamRepo struct {
	teams  map[int]*models.Team
	nextID int
	seeds  map[int]int
}

func newFakeTeamRepo(teams ...*models.Team) *fakeTeamRepo {
	f := &fakeTeamRepo{teams: make(map[int]*models.Team), nextID: 1, seeds: make(map[int]int)}
	for _, t := range teams {
		f.teams[t.ID] = t
		if t.ID >= f.nextID {
			f.nextID = t.ID + 1
		}
	}
	return f
}

func (f *fakeTeamRepo) Create(_ context.Context, _ repositories.SQLExecutor, team *models.Team) error {
	team.ID = f.nextID
	f.nextID++
	f.teams[team.ID] = team
	return nil
}

func (f *fakeTeamRepo) GetByID(_ context.Context, id int) (*models.Team, error) {
	team, ok := f.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	return team, nil
}

func (f *fakeTeamRepo) ListByIDs(_ context.Context, ids []int) ([]*models.Team, error) {
	teams := make([]*models.Team, 0, len(ids))
	for _, id := range ids {
		if team, ok := f.teams[id]; ok {
			teams = append(teams, team)
		}
	}
	return teams, nil
}

func (f *fakeTeamRepo) ListByTournament(_ context.Context, tournamentID int) ([]*models.Team, error) {
	teams := make([]*models.Team, 0)
	for _, team := range f.teams {
		if team.TournamentID == tournamentID {
			teams = append(teams, team)
		}
	}
	return teams, nil
}

func (f *fakeTeamRepo) UpdateSeed(_ context.Context, _ repositories.SQLExecutor, id, seed int) error {
	if _, ok := f.teams[id]; !ok {
		return repositories.ErrTeamNotFound
	}
	f.seeds[id] = seed
	return nil
}

type fakeBracketRepo struct {
	brackets map[int]*models.Bracket
}

func newFakeBracketRepo(brackets ...*models.Bracket) *fakeBracketRepo {
	f := &fakeBracketRepo{brackets: make(map[int]*models.Bracket)}
	for _, b := range brackets {
		f.brackets[b.ID] = b
	}
	return f
}

func (f *fakeBracketRepo) Create(_ context.Context, _ repositories.SQLExecutor, bracket *models.Bracket) error {
	bracket.ID = len(f.brackets) + 1
	f.brackets[bracket.ID] = bracket
	return nil
}

func (f *fakeBracketRepo) GetByID(_ context.Context, id int) (*models.Bracket, error) {
	bracket, ok := f.brackets[id]
	if !ok {
		return nil, repositories.ErrBracketNotFound
	}
	return bracket, nil
}

func (f *fakeBracketRepo) ListByTournament(_ context.Context, tournamentID int) ([]*models.Bracket, error) {
	brackets := make([]*models.Bracket, 0)
	for _, b := range f.brackets {
		if b.TournamentID == tournamentID {
			brackets = append(brackets, b)
		}
	}
	return brackets, nil
}

func (f *fakeBracketRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.BracketStatus, championTeamID *int) error {
	bracket, ok := f.brackets[id]
	if !ok {
		return repositories.ErrBracketNotFound
	}
	bracket.Status = status
	bracket.ChampionTeamID = championTeamID
	return nil
}

type fakePoolRepo struct {
	pools map[int]*models.Pool
}

func newFakePoolRepo(pools ...*models.Pool) *fakePoolRepo {
	f := &fakePoolRepo{pools: make(map[int]*models.Pool)}
	for _, p := range pools {
		f.pools[p.ID] = p
	}
	return f
}

func (f *fakePoolRepo) Create(_ context.Context, _ repositories.SQLExecutor, pool *models.Pool) error {
	pool.ID = len(f.pools) + 1
	f.pools[pool.ID] = pool
	return nil
}

func (f *fakePoolRepo) GetByID(_ context.Context, id int) (*models.Pool, error) {
	pool, ok := f.pools[id]
	if !ok {
		return nil, repositories.ErrPoolNotFound
	}
	return pool, nil
}

func (f *fakePoolRepo) ListByTournament(_ context.Context, tournamentID int) ([]*models.Pool, error) {
	pools := make([]*models.Pool, 0)
	for _, p := range f.pools {
		if p.TournamentID == tournamentID {
			pools = append(pools, p)
		}
	}
	return pools, nil
}

type fakeMatchRepo struct {
	matches map[int]*models.Match

	// updateErr, when set, fails every Update call with it.
	updateErr error
}

func newFakeMatchRepo(matches ...*models.Match) *fakeMatchRepo {
	f := &fakeMatchRepo{matches: make(map[int]*models.Match)}
	for _, m := range matches {
		f.matches[m.ID] = m
	}
	return f
}

func (f *fakeMatchRepo) Create(_ context.Context, _ repositories.SQLExecutor, match *models.Match) error {
	match.ID = len(f.matches) + 1
	match.Version = 1
	f.matches[match.ID] = match
	return nil
}

func (f *fakeMatchRepo) GetByID(_ context.Context, id int) (*models.Match, error) {
	match, ok := f.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return match, nil
}

func (f *fakeMatchRepo) ListByPool(_ context.Context, poolID int) ([]*models.Match, error) {
	matches := make([]*models.Match, 0)
	for _, m := range f.matches {
		if m.PoolID != nil && *m.PoolID == poolID {
			matches = append(matches, m)
		}
	}
	return matches, nil
}

func (f *fakeMatchRepo) ListByBracket(_ context.Context, bracketID int) ([]*models.Match, error) {
	matches := make([]*models.Match, 0)
	for _, m := range f.matches {
		if m.BracketID != nil && *m.BracketID == bracketID {
			matches = append(matches, m)
		}
	}
	return matches, nil
}

func (f *fakeMatchRepo) Update(_ context.Context, _ repositories.SQLExecutor, match *models.Match) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.matches[match.ID]; !ok {
		return repositories.ErrMatchNotFound
	}
	match.Version++
	f.matches[match.ID] = match
	return nil
}

func (f *fakeMatchRepo) UpdateSlots(_ context.Context, _ repositories.SQLExecutor, id int, team1ID, team2ID *int) error {
	match, ok := f.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	match.Team1ID, match.Team2ID = team1ID, team2ID
	return nil
}

func (f *fakeMatchRepo) UpdateAdvancesTo(_ context.Context, _ repositories.SQLExecutor, id int, winnerTo, loserTo *int) error {
	match, ok := f.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	match.WinnerAdvancesTo, match.LoserAdvancesTo = winnerTo, loserTo
	return nil
}

type fakeUploader struct {
	uploads map[string][]byte
	deleted []string
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{uploads: make(map[string][]byte)}
}

func (f *fakeUploader) Upload(_ context.Context, key, _ string, reader io.Reader) (*storage.UploadResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	f.uploads[key] = data
	return &storage.UploadResult{Key: key, Location: "https://results.test/" + key}, nil
}

func (f *fakeUploader) Delete(_ context.Context, key string) error {
	delete(f.uploads, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeUploader) GetPublicURL(key string) string {
	return "https://results.test/" + key
}
