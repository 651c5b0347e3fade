package usecase

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/eslsoft/revise/internal/entity"
	"github.com/eslsoft/revise/internal/repository"
	"github.com/eslsoft/revise/pkg/srs"
)

var baseNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

// --- users ---

type fakeUserRepo struct {
	mu    sync.RWMutex
	seq   int64
	items map[int64]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{items: make(map[int64]*entity.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, u *entity.User) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	copy := cloneUser(u)
	copy.ID = r.seq
	r.items[copy.ID] = copy
	return cloneUser(copy), nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	return cloneUser(item), nil
}

func (r *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, item := range r.items {
		if item.Username == username {
			return cloneUser(item), nil
		}
	}
	return nil, nil
}

// --- cards ---

type fakeCardRepo struct {
	mu       sync.RWMutex
	seq      int64
	items    map[int64]*entity.Card
	progress *fakeProgressRepo
}

func newFakeCardRepo(progress *fakeProgressRepo) *fakeCardRepo {
	return &fakeCardRepo{items: make(map[int64]*entity.Card), progress: progress}
}

func (r *fakeCardRepo) Create(ctx context.Context, c *entity.Card) (*entity.Card, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	copy := cloneCard(c)
	copy.ID = r.seq
	r.items[copy.ID] = copy
	return cloneCard(copy), nil
}

func (r *fakeCardRepo) GetByID(ctx context.Context, id int64) (*entity.Card, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	return cloneCard(item), nil
}

func (r *fakeCardRepo) ListByDecks(ctx context.Context, deckIDs []int64) ([]entity.Card, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []entity.Card
	for _, item := range r.items {
		if len(deckIDs) > 0 && !containsID(deckIDs, item.DeckID) {
			continue
		}
		out = append(out, *cloneCard(item))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeCardRepo) ListUnseen(ctx context.Context, query *repository.UnseenCardsQuery) ([]entity.Card, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []entity.Card
	for _, item := range r.items {
		if len(query.DeckIDs) > 0 && !containsID(query.DeckIDs, item.DeckID) {
			continue
		}
		if r.progress.has(query.UserID, item.ID) {
			continue
		}
		out = append(out, *cloneCard(item))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if query.Limit > 0 && int(query.Limit) < len(out) {
		out = out[:query.Limit]
	}
	return out, nil
}

func (r *fakeCardRepo) CountUnseen(ctx context.Context, query *repository.UnseenCardsQuery) (int64, error) {
	q := *query
	q.Limit = 0
	out, err := r.ListUnseen(ctx, &q)
	if err != nil {
		return 0, err
	}
	return int64(len(out)), nil
}

// --- card progress ---

type progressKey struct {
	userID int64
	cardID int64
}

type fakeProgressRepo struct {
	mu    sync.RWMutex
	seq   int64
	items map[progressKey]*entity.CardProgress
	cards *fakeCardRepo
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{items: make(map[progressKey]*entity.CardProgress)}
}

func (r *fakeProgressRepo) has(userID, cardID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.items[progressKey{userID, cardID}]
	return ok
}

func (r *fakeProgressRepo) deckOf(cardID int64) int64 {
	if r.cards == nil {
		return 0
	}
	r.cards.mu.RLock()
	defer r.cards.mu.RUnlock()
	if c, ok := r.cards.items[cardID]; ok {
		return c.DeckID
	}
	return 0
}

func (r *fakeProgressRepo) Upsert(ctx context.Context, p *entity.CardProgress) (*entity.CardProgress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	copy := cloneProgress(p)
	key := progressKey{copy.UserID, copy.CardID}
	if existing, ok := r.items[key]; ok {
		copy.ID = existing.ID
	} else {
		r.seq++
		copy.ID = r.seq
	}
	r.items[key] = copy
	return cloneProgress(copy), nil
}

func (r *fakeProgressRepo) FindByUserCard(ctx context.Context, userID, cardID int64) (*entity.CardProgress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[progressKey{userID, cardID}]
	if !ok {
		return nil, nil
	}
	return cloneProgress(item), nil
}

func (r *fakeProgressRepo) ListDue(ctx context.Context, query *repository.DueCardsQuery) ([]entity.CardProgress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	var out []entity.CardProgress
	for key, item := range r.items {
		if key.userID != query.UserID {
			continue
		}
		if item.Memory.Due.After(query.Before) {
			continue
		}
		out = append(out, *cloneProgress(item))
	}
	r.mu.RUnlock()

	if len(query.DeckIDs) > 0 {
		filtered := out[:0]
		for _, p := range out {
			if containsID(query.DeckIDs, r.deckOf(p.CardID)) {
				filtered = append(filtered, p)
			}
		}
		out = filtered
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Memory.Due.Equal(out[j].Memory.Due) {
			return out[i].CardID < out[j].CardID
		}
		return out[i].Memory.Due.Before(out[j].Memory.Due)
	})
	if query.Limit > 0 && int(query.Limit) < len(out) {
		out = out[:query.Limit]
	}
	return out, nil
}

func (r *fakeProgressRepo) CountDue(ctx context.Context, query *repository.DueCardsQuery) (int64, error) {
	q := *query
	q.Limit = 0
	out, err := r.ListDue(ctx, &q)
	if err != nil {
		return 0, err
	}
	return int64(len(out)), nil
}

func (r *fakeProgressRepo) CountByUser(ctx context.Context, userID int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for key := range r.items {
		if key.userID == userID {
			n++
		}
	}
	return n, nil
}

// --- sessions ---

type fakeSessionRepo struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*entity.StudySession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{items: make(map[uuid.UUID]*entity.StudySession)}
}

func (r *fakeSessionRepo) Create(ctx context.Context, s *entity.StudySession) (*entity.StudySession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	copy := cloneSession(s)
	r.items[copy.ID] = copy
	return cloneSession(copy), nil
}

func (r *fakeSessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.StudySession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	return cloneSession(item), nil
}

func (r *fakeSessionRepo) Update(ctx context.Context, s *entity.StudySession) (*entity.StudySession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[s.ID]; !ok {
		return nil, entity.ErrUnknownSession
	}
	copy := cloneSession(s)
	r.items[copy.ID] = copy
	return cloneSession(copy), nil
}

func (r *fakeSessionRepo) List(ctx context.Context, query *repository.ListSessionQuery) ([]entity.StudySession, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var filtered []entity.StudySession
	for _, item := range r.items {
		if item.UserID != query.UserID {
			continue
		}
		if len(query.Statuses) > 0 && !containsStatus(query.Statuses, item.Status) {
			continue
		}
		if !query.From.IsZero() && item.StartedAt.Before(query.From) {
			continue
		}
		if !query.To.IsZero() && !item.StartedAt.Before(query.To) {
			continue
		}
		filtered = append(filtered, *cloneSession(item))
	}
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].StartedAt.After(filtered[j].StartedAt)
	})
	total := int64(len(filtered))
	start := int(query.Offset())
	if start < 0 || start >= len(filtered) {
		return []entity.StudySession{}, total, nil
	}
	end := start + int(query.PageSize)
	if query.PageSize <= 0 || end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end], total, nil
}

// --- wrong answers ---

type fakeWrongAnswerRepo struct {
	mu    sync.RWMutex
	seq   int64
	items map[int64]*entity.WrongAnswerRecord
}

func newFakeWrongAnswerRepo() *fakeWrongAnswerRepo {
	return &fakeWrongAnswerRepo{items: make(map[int64]*entity.WrongAnswerRecord)}
}

func (r *fakeWrongAnswerRepo) Create(ctx context.Context, w *entity.WrongAnswerRecord) (*entity.WrongAnswerRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	copy := cloneWrongAnswer(w)
	copy.ID = r.seq
	r.items[copy.ID] = copy
	return cloneWrongAnswer(copy), nil
}

func (r *fakeWrongAnswerRepo) GetByID(ctx context.Context, userID, id int64) (*entity.WrongAnswerRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok || item.UserID != userID {
		return nil, nil
	}
	return cloneWrongAnswer(item), nil
}

func (r *fakeWrongAnswerRepo) Update(ctx context.Context, w *entity.WrongAnswerRecord) (*entity.WrongAnswerRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[w.ID]; !ok {
		return nil, entity.ErrUnknownWrongAnswer
	}
	copy := cloneWrongAnswer(w)
	r.items[copy.ID] = copy
	return cloneWrongAnswer(copy), nil
}

func (r *fakeWrongAnswerRepo) List(ctx context.Context, query *repository.ListWrongAnswerQuery) ([]entity.WrongAnswerRecord, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var filtered []entity.WrongAnswerRecord
	for _, item := range r.items {
		if item.UserID != query.UserID {
			continue
		}
		filtered = append(filtered, *cloneWrongAnswer(item))
	}
	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].CreatedAt.Equal(filtered[j].CreatedAt) {
			return filtered[i].ID > filtered[j].ID
		}
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})
	total := int64(len(filtered))
	start := int(query.Offset())
	if start < 0 || start >= len(filtered) {
		return []entity.WrongAnswerRecord{}, total, nil
	}
	end := start + int(query.PageSize)
	if query.PageSize <= 0 || end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end], total, nil
}

// --- settings ---

type fakeSettingsRepo struct {
	mu    sync.RWMutex
	items map[int64]*entity.ReviewSettings
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{items: make(map[int64]*entity.ReviewSettings)}
}

func (r *fakeSettingsRepo) Get(ctx context.Context, userID int64) (*entity.ReviewSettings, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[userID]
	if !ok {
		return nil, nil
	}
	return cloneSettings(item), nil
}

func (r *fakeSettingsRepo) Save(ctx context.Context, s *entity.ReviewSettings) (*entity.ReviewSettings, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	copy := cloneSettings(s)
	r.items[copy.UserID] = copy
	return cloneSettings(copy), nil
}

// --- clones ---

func cloneUser(u *entity.User) *entity.User {
	copy := *u
	return &copy
}

func cloneCard(c *entity.Card) *entity.Card {
	copy := *c
	copy.QuizTypes = append([]entity.QuizType(nil), c.QuizTypes...)
	return &copy
}

func cloneProgress(p *entity.CardProgress) *entity.CardProgress {
	copy := *p
	copy.QualityHistory = append([]srs.Grade(nil), p.QualityHistory...)
	return &copy
}

func cloneSession(s *entity.StudySession) *entity.StudySession {
	copy := *s
	copy.Cards = append([]entity.SessionCard(nil), s.Cards...)
	if s.CompletedAt != nil {
		completed := *s.CompletedAt
		copy.CompletedAt = &completed
	}
	return &copy
}

func cloneWrongAnswer(w *entity.WrongAnswerRecord) *entity.WrongAnswerRecord {
	copy := *w
	if w.SessionID != nil {
		id := *w.SessionID
		copy.SessionID = &id
	}
	if w.ReviewedAt != nil {
		at := *w.ReviewedAt
		copy.ReviewedAt = &at
	}
	return &copy
}

func cloneSettings(s *entity.ReviewSettings) *entity.ReviewSettings {
	copy := *s
	copy.SelectedDeckIDs = append([]int64(nil), s.SelectedDeckIDs...)
	return &copy
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func containsStatus(statuses []entity.SessionStatus, s entity.SessionStatus) bool {
	for _, v := range statuses {
		if v == s {
			return true
		}
	}
	return false
}

// --- fixture ---

type fixture struct {
	users    *fakeUserRepo
	cards    *fakeCardRepo
	progress *fakeProgressRepo
	sessions *fakeSessionRepo
	wrong    *fakeWrongAnswerRepo
	settings *fakeSettingsRepo

	review     ReviewUsecase
	settingsUC SettingsUsecase

	now time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	progress := newFakeProgressRepo()
	cards := newFakeCardRepo(progress)
	progress.cards = cards

	fx := &fixture{
		users:    newFakeUserRepo(),
		cards:    cards,
		progress: progress,
		sessions: newFakeSessionRepo(),
		wrong:    newFakeWrongAnswerRepo(),
		settings: newFakeSettingsRepo(),
		now:      baseNow,
	}

	engine, err := srs.NewEngine(srs.Config{})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	fx.review = NewReviewUsecase(fx.users, fx.cards, fx.progress, fx.sessions, fx.wrong, fx.settings, engine, SessionDefaults{})
	fx.review.(*reviewUsecase).clock = func() time.Time { return fx.now }

	fx.settingsUC = NewSettingsUsecase(fx.users, fx.settings)
	fx.settingsUC.(*settingsUsecase).clock = func() time.Time { return fx.now }
	return fx
}

func (fx *fixture) addUser(t *testing.T, username, timezone string) *entity.User {
	t.Helper()
	user, err := fx.users.Create(context.Background(), &entity.User{Username: username, Timezone: timezone})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func (fx *fixture) addCard(t *testing.T, deckID int64, front string) *entity.Card {
	t.Helper()
	card, err := fx.cards.Create(context.Background(), &entity.Card{DeckID: deckID, Front: front, Back: front + " back"})
	if err != nil {
		t.Fatalf("create card: %v", err)
	}
	return card
}

// addDueProgress marks a card as learned with its next review already due.
func (fx *fixture) addDueProgress(t *testing.T, userID, cardID int64, due time.Time) *entity.CardProgress {
	t.Helper()
	p := entity.NewCardProgress(userID, cardID, due.AddDate(0, 0, -3))
	p.Memory.State = srs.StateReview
	p.Memory.Stability = 3
	p.Memory.Difficulty = 5
	p.Memory.IntervalDays = 3
	p.Memory.Repetitions = 2
	p.Memory.Due = due
	p.Memory.LastReview = due.AddDate(0, 0, -3)
	saved, err := fx.progress.Upsert(context.Background(), p)
	if err != nil {
		t.Fatalf("upsert progress: %v", err)
	}
	return saved
}
