package services

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/rl-prono/models"
	"github.com/Dosada05/rl-prono/repositories"
	"github.com/Dosada05/rl-prono/storage"
	"github.com/google/uuid"
)

type fakeMatchRepo struct {
	matches map[uuid.UUID]*models.Match
	err     error
}

func newFakeMatchRepo(ms ...*models.Match) *fakeMatchRepo {
	r := &fakeMatchRepo{matches: map[uuid.UUID]*models.Match{}}
	for _, m := range ms {
		r.matches[m.ID] = m
	}
	return r
}

func (r *fakeMatchRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Match, error) {
	if r.err != nil {
		return nil, r.err
	}
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *fakeMatchRepo) ListByLeague(_ context.Context, _ uuid.UUID) ([]*models.Match, error) {
	out := make([]*models.Match, 0, len(r.matches))
	for _, m := range r.matches {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out, nil
}

type predictionKey struct{ user, match uuid.UUID }

type fakePredictionRepo struct {
	mu        sync.Mutex
	rows      map[predictionKey]*models.Prediction
	upsertErr error
	upserts   int

	// entered получает сигнал на каждый Upsert, release держит запись до закрытия.
	entered chan struct{}
	release chan struct{}
}

func (r *fakePredictionRepo) upsertCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.upserts
}

func newFakePredictionRepo() *fakePredictionRepo {
	return &fakePredictionRepo{rows: map[predictionKey]*models.Prediction{}}
}

func (r *fakePredictionRepo) Upsert(ctx context.Context, p *models.Prediction) (bool, error) {
	r.mu.Lock()
	r.upserts++
	r.mu.Unlock()

	if r.entered != nil {
		r.entered <- struct{}{}
	}
	if r.release != nil {
		select {
		case <-r.release:
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.upsertErr != nil {
		return false, r.upsertErr
	}
	key := predictionKey{p.UserID, p.MatchID}
	existing, ok := r.rows[key]
	now := time.Now()
	if ok {
		p.ID, p.CreatedAt = existing.ID, existing.CreatedAt
	} else {
		p.ID, p.CreatedAt = uuid.New(), now
	}
	p.UpdatedAt = now
	cp := *p
	r.rows[key] = &cp
	return !ok, nil
}

func (r *fakePredictionRepo) GetByUserAndMatch(_ context.Context, userID, matchID uuid.UUID) (*models.Prediction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[predictionKey{userID, matchID}]
	if !ok {
		return nil, repositories.ErrPredictionNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePredictionRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*models.Prediction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Prediction
	for k, p := range r.rows {
		if k.user == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakePredictionRepo) ListByUserForMatches(_ context.Context, userID uuid.UUID, matchIDs []uuid.UUID) (map[uuid.UUID]*models.Prediction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[uuid.UUID]*models.Prediction{}
	for _, id := range matchIDs {
		if p, ok := r.rows[predictionKey{userID, id}]; ok {
			cp := *p
			out[id] = &cp
		}
	}
	return out, nil
}

type fakeLeagueRepo struct {
	leagues []models.League
}

func (r *fakeLeagueRepo) GetByID(_ context.Context, id uuid.UUID) (*models.League, error) {
	for i := range r.leagues {
		if r.leagues[i].ID == id {
			l := r.leagues[i]
			return &l, nil
		}
	}
	return nil, repositories.ErrLeagueNotFound
}

func (r *fakeLeagueRepo) List(_ context.Context, _ repositories.ListLeaguesFilter) ([]models.League, error) {
	return r.leagues, nil
}

type fakeTeamRepo struct{ teams []models.Team }

func (r *fakeTeamRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Team, error) {
	for i := range r.teams {
		if r.teams[i].ID == id {
			return &r.teams[i], nil
		}
	}
	return nil, repositories.ErrTeamNotFound
}

func (r *fakeTeamRepo) List(context.Context) ([]models.Team, error) { return r.teams, nil }

type fakeProfileRepo struct {
	profiles  map[uuid.UUID]*models.Profile
	updateErr error
}

func newFakeProfileRepo(ps ...*models.Profile) *fakeProfileRepo {
	r := &fakeProfileRepo{profiles: map[uuid.UUID]*models.Profile{}}
	for _, p := range ps {
		r.profiles[p.UserID] = p
	}
	return r
}

func (r *fakeProfileRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*models.Profile, error) {
	p, ok := r.profiles[userID]
	if !ok {
		return nil, repositories.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProfileRepo) Update(_ context.Context, p *models.Profile) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	cp := *p
	r.profiles[p.UserID] = &cp
	return nil
}

func (r *fakeProfileRepo) UpdateAvatarURL(_ context.Context, userID uuid.UUID, avatarURL *string) error {
	p, ok := r.profiles[userID]
	if !ok {
		return repositories.ErrProfileNotFound
	}
	p.AvatarURL = avatarURL
	return nil
}

func (r *fakeProfileRepo) sorted() []*models.Profile {
	out := make([]*models.Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalPoints != out[j].TotalPoints {
			return out[i].TotalPoints > out[j].TotalPoints
		}
		return out[i].Username < out[j].Username
	})
	return out
}

func (r *fakeProfileRepo) ListTop(_ context.Context, limit int) ([]*models.Profile, error) {
	out := r.sorted()
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeProfileRepo) ListByUserIDs(_ context.Context, userIDs []uuid.UUID) ([]*models.Profile, error) {
	want := map[uuid.UUID]bool{}
	for _, id := range userIDs {
		want[id] = true
	}
	var out []*models.Profile
	for _, p := range r.sorted() {
		if want[p.UserID] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProfileRepo) RankOf(_ context.Context, userID uuid.UUID) (int, error) {
	me, ok := r.profiles[userID]
	if !ok {
		return 0, repositories.ErrProfileNotFound
	}
	rank := 1
	for _, p := range r.profiles {
		if p.TotalPoints > me.TotalPoints {
			rank++
		}
	}
	return rank, nil
}

type fakePrivateLeagueRepo struct {
	leagues  map[uuid.UUID]*models.PrivateLeague
	members  map[uuid.UUID][]uuid.UUID
	codes    []string
	createFn func(*models.PrivateLeague) error
}

func newFakePrivateLeagueRepo() *fakePrivateLeagueRepo {
	return &fakePrivateLeagueRepo{
		leagues: map[uuid.UUID]*models.PrivateLeague{},
		members: map[uuid.UUID][]uuid.UUID{},
	}
}

func (r *fakePrivateLeagueRepo) GenerateInviteCode(context.Context) (string, error) {
	if len(r.codes) == 0 {
		return "ABCD1234", nil
	}
	code := r.codes[0]
	r.codes = r.codes[1:]
	return code, nil
}

func (r *fakePrivateLeagueRepo) CreateWithOwner(_ context.Context, l *models.PrivateLeague) error {
	if r.createFn != nil {
		if err := r.createFn(l); err != nil {
			return err
		}
	}
	l.ID = uuid.New()
	l.MemberCount = 1
	cp := *l
	r.leagues[l.ID] = &cp
	r.members[l.ID] = []uuid.UUID{l.CreatedBy}
	return nil
}

func (r *fakePrivateLeagueRepo) GetByID(_ context.Context, id uuid.UUID) (*models.PrivateLeague, error) {
	l, ok := r.leagues[id]
	if !ok {
		return nil, repositories.ErrPrivateLeagueNotFound
	}
	cp := *l
	cp.MemberCount = len(r.members[id])
	return &cp, nil
}

func (r *fakePrivateLeagueRepo) GetByInviteCode(ctx context.Context, code string) (*models.PrivateLeague, error) {
	for id, l := range r.leagues {
		if l.InviteCode == code {
			return r.GetByID(ctx, id)
		}
	}
	return nil, repositories.ErrPrivateLeagueNotFound
}

func (r *fakePrivateLeagueRepo) AddMember(ctx context.Context, _ repositories.SQLExecutor, leagueID, userID uuid.UUID) (*models.PrivateLeagueMember, error) {
	if ok, _ := r.IsMember(ctx, leagueID, userID); ok {
		return nil, repositories.ErrAlreadyMember
	}
	r.members[leagueID] = append(r.members[leagueID], userID)
	return &models.PrivateLeagueMember{ID: uuid.New(), PrivateLeagueID: leagueID, UserID: userID}, nil
}

func (r *fakePrivateLeagueRepo) ListByMember(ctx context.Context, userID uuid.UUID) ([]*models.PrivateLeague, error) {
	var out []*models.PrivateLeague
	for id := range r.leagues {
		if ok, _ := r.IsMember(ctx, id, userID); ok {
			l, _ := r.GetByID(ctx, id)
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakePrivateLeagueRepo) IsMember(_ context.Context, leagueID, userID uuid.UUID) (bool, error) {
	for _, m := range r.members[leagueID] {
		if m == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakePrivateLeagueRepo) ListMemberIDs(_ context.Context, leagueID uuid.UUID) ([]uuid.UUID, error) {
	return r.members[leagueID], nil
}

type sentNotification struct {
	userID  uuid.UUID
	msgType string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (n *recordingNotifier) Notify(userID uuid.UUID, msgType string, _ interface{}) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{userID, msgType})
	return 1
}

type fakeUploader struct {
	base     string
	uploaded map[string]string
	deleted  []string
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{base: "https://cdn.example.com/", uploaded: map[string]string{}}
}

func (u *fakeUploader) Upload(_ context.Context, key, contentType string, r io.Reader) (*storage.UploadResult, error) {
	if _, err := io.ReadAll(r); err != nil {
		return nil, err
	}
	u.uploaded[key] = contentType
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *fakeUploader) Delete(_ context.Context, key string) error {
	u.deleted = append(u.deleted, key)
	return nil
}

func (u *fakeUploader) GetPublicURL(key string) string {
	if key == "/" {
		return u.base
	}
	return u.base + key
}

type fakeMailer struct {
	to, league, inviter, code string
}

func (m *fakeMailer) SendPrivateLeagueInvite(to, leagueName, inviterName, inviteCode string) error {
	m.to, m.league, m.inviter, m.code = to, leagueName, inviterName, inviteCode
	return nil
}
