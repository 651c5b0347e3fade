package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/eslsoft/revise/internal/entity"
	"github.com/eslsoft/revise/internal/repository"
	"github.com/eslsoft/revise/pkg/srs"
)

const (
	_defaultListLimit = int32(20)
	_maxListLimit     = int32(500)
)

// SessionDefaults caps sessions whose start request leaves the limits
// unset.
type SessionDefaults struct {
	NewCardsLimit    int32
	ReviewCardsLimit int32
}

// StartSessionParams tunes one session. Zero limits fall back to the
// configured defaults.
type StartSessionParams struct {
	NewCardsLimit    int32
	ReviewCardsLimit int32
}

// SubmitAnswerParams carries one answer for the session's current card.
type SubmitAnswerParams struct {
	SessionID  uuid.UUID
	CardID     int64
	Correct    bool
	UserAnswer string
	QuizType   entity.QuizType
}

// SubmitAnswerResult reports the outcome of one answer: the updated
// session snapshot and the card's refreshed schedule.
type SubmitAnswerResult struct {
	Session        *entity.StudySession
	Progress       *entity.CardProgress
	Retrievability float64
	Finished       bool // the answer consumed the session's last card
}

// RecordWrongAnswerParams captures a mistake made outside any session.
type RecordWrongAnswerParams struct {
	CardID        int64
	QuizType      entity.QuizType
	UserAnswer    string
	CorrectAnswer string
}

// ReviewUsecase encapsulates the review scheduling workflow: pending
// work, session lifecycle, and the wrong-answer book.
type ReviewUsecase interface {
	PendingCounts(ctx context.Context, userID int64) (*entity.PendingCounts, error)
	TodayProgress(ctx context.Context, userID int64) (*entity.DailyProgress, error)

	// StartSession composes and persists a new active session. Multiple
	// active sessions per user are permitted; callers that want a
	// single one abandon the previous session first.
	StartSession(ctx context.Context, userID int64, params StartSessionParams) (*entity.StudySession, error)
	SubmitAnswer(ctx context.Context, userID int64, params SubmitAnswerParams) (*SubmitAnswerResult, error)
	CompleteSession(ctx context.Context, userID int64, sessionID uuid.UUID) (*entity.StudySession, error)
	AbandonSession(ctx context.Context, userID int64, sessionID uuid.UUID) (*entity.StudySession, error)
	GetSession(ctx context.Context, userID int64, sessionID uuid.UUID) (*entity.StudySession, error)
	ListSessions(ctx context.Context, query *repository.ListSessionQuery) ([]entity.StudySession, int64, error)

	RecordWrongAnswer(ctx context.Context, userID int64, params RecordWrongAnswerParams) (*entity.WrongAnswerRecord, error)
	ListWrongAnswers(ctx context.Context, query *repository.ListWrongAnswerQuery) ([]entity.WrongAnswerRecord, int64, error)
	MarkWrongAnswerReviewed(ctx context.Context, userID, id int64) (*entity.WrongAnswerRecord, error)
}

// NewReviewUsecase wires the repositories and the scheduling engine.
func NewReviewUsecase(
	users repository.UserRepository,
	cards repository.CardRepository,
	progress repository.CardProgressRepository,
	sessions repository.StudySessionRepository,
	wrongAnswers repository.WrongAnswerRepository,
	settings repository.ReviewSettingsRepository,
	engine *srs.Engine,
	defaults SessionDefaults,
) ReviewUsecase {
	if defaults.NewCardsLimit <= 0 {
		defaults.NewCardsLimit = 10
	}
	if defaults.ReviewCardsLimit <= 0 {
		defaults.ReviewCardsLimit = 20
	}
	return &reviewUsecase{
		users:        users,
		cards:        cards,
		progress:     progress,
		sessions:     sessions,
		wrongAnswers: wrongAnswers,
		settings:     settings,
		engine:       engine,
		defaults:     defaults,
		clock:        time.Now,
		locks:        newKeyedMutex(),
	}
}

// NewReviewUsecaseWithClock builds a review usecase with an explicit
// time source. Simulations drive virtual days through it; production
// wiring sticks to NewReviewUsecase.
func NewReviewUsecaseWithClock(
	users repository.UserRepository,
	cards repository.CardRepository,
	progress repository.CardProgressRepository,
	sessions repository.StudySessionRepository,
	wrongAnswers repository.WrongAnswerRepository,
	settings repository.ReviewSettingsRepository,
	engine *srs.Engine,
	defaults SessionDefaults,
	clock func() time.Time,
) ReviewUsecase {
	uc := NewReviewUsecase(users, cards, progress, sessions, wrongAnswers, settings, engine, defaults).(*reviewUsecase)
	uc.clock = clock
	return uc
}

type reviewUsecase struct {
	users        repository.UserRepository
	cards        repository.CardRepository
	progress     repository.CardProgressRepository
	sessions     repository.StudySessionRepository
	wrongAnswers repository.WrongAnswerRepository
	settings     repository.ReviewSettingsRepository

	engine   *srs.Engine
	defaults SessionDefaults
	clock    func() time.Time
	locks    *keyedMutex
}

// loadSettings returns the user's stored settings or the defaults,
// never nil.
func (u *reviewUsecase) loadSettings(ctx context.Context, userID int64) (*entity.ReviewSettings, error) {
	stored, err := u.settings.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return entity.DefaultReviewSettings(userID), nil
	}
	return stored, nil
}

func (u *reviewUsecase) requireUser(ctx context.Context, userID int64) (*entity.User, error) {
	user, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, entity.ErrUnknownUser
	}
	return user, nil
}

func (u *reviewUsecase) PendingCounts(ctx context.Context, userID int64) (*entity.PendingCounts, error) {
	if _, err := u.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	settings, err := u.loadSettings(ctx, userID)
	if err != nil {
		return nil, err
	}
	if emptySelection(settings) {
		return &entity.PendingCounts{}, nil
	}

	decks := deckFilter(settings)
	due, err := u.progress.CountDue(ctx, &repository.DueCardsQuery{
		UserID:  userID,
		Before:  u.clock(),
		DeckIDs: decks,
	})
	if err != nil {
		return nil, err
	}

	counts := &entity.PendingCounts{DueCount: due}
	if settings.Scope != entity.ScopeAllLearned {
		counts.NewCount, err = u.cards.CountUnseen(ctx, &repository.UnseenCardsQuery{
			UserID:  userID,
			DeckIDs: decks,
		})
		if err != nil {
			return nil, err
		}
	}
	return counts, nil
}

// TodayProgress aggregates every session the user started during their
// local day, whatever its status: answers given in an abandoned session
// still happened.
func (u *reviewUsecase) TodayProgress(ctx context.Context, userID int64) (*entity.DailyProgress, error) {
	user, err := u.requireUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	settings, err := u.loadSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	localNow := u.clock().In(user.Location())
	start := time.Date(localNow.Year(), localNow.Month(), localNow.Day(), 0, 0, 0, 0, user.Location())
	end := start.Add(24 * time.Hour)

	sessions, _, err := u.sessions.List(ctx, &repository.ListSessionQuery{
		Pagination: repository.Pagination{PageNo: 1, PageSize: _maxListLimit},
		UserID:     userID,
		From:       start,
		To:         end,
	})
	if err != nil {
		return nil, err
	}

	progress := &entity.DailyProgress{
		Date: start.Format("2006-01-02"),
		Goal: settings.DailyGoal,
	}
	for i := range sessions {
		s := &sessions[i]
		progress.Reviewed += s.Answered()
		progress.Correct += s.CorrectCount
		progress.Sessions++
	}
	progress.GoalReached = progress.Reviewed >= settings.DailyGoal
	return progress, nil
}

func (u *reviewUsecase) StartSession(ctx context.Context, userID int64, params StartSessionParams) (*entity.StudySession, error) {
	if _, err := u.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	settings, err := u.loadSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	newLimit := params.NewCardsLimit
	if newLimit <= 0 {
		newLimit = u.defaults.NewCardsLimit
	}
	reviewLimit := params.ReviewCardsLimit
	if reviewLimit <= 0 {
		reviewLimit = u.defaults.ReviewCardsLimit
	}

	now := u.clock()
	// One pool may serve the whole session when the other is empty, so
	// fetch enough cards to cover that case.
	fetchLimit := newLimit
	if reviewLimit > fetchLimit {
		fetchLimit = reviewLimit
	}
	if settings.DailyGoal > fetchLimit {
		fetchLimit = settings.DailyGoal
	}

	newPool, duePool, err := u.buildPools(ctx, userID, settings, now, fetchLimit)
	if err != nil {
		return nil, err
	}

	cards := composeSession(newPool, duePool, settings, newLimit, reviewLimit)
	session := entity.NewStudySession(userID, cards, now)
	return u.sessions.Create(ctx, session)
}

func (u *reviewUsecase) SubmitAnswer(ctx context.Context, userID int64, params SubmitAnswerParams) (*SubmitAnswerResult, error) {
	if params.SessionID == uuid.Nil {
		return nil, entity.ErrUnknownSession
	}
	u.locks.lock(params.SessionID)
	defer u.locks.unlock(params.SessionID)

	session, err := u.loadOwnedSession(ctx, userID, params.SessionID)
	if err != nil {
		return nil, err
	}

	now := u.clock()
	if err := session.Advance(params.CardID, params.Correct, now); err != nil {
		return nil, err
	}

	record, err := u.progress.FindByUserCard(ctx, userID, params.CardID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		record = entity.NewCardProgress(userID, params.CardID, now)
	}

	grade := outcomeGrade(params.Correct)
	memory := u.engine.Review(record.Memory, grade, now)
	record.RecordAnswer(memory, grade, params.Correct, now)

	// Progress commits before the session row: the cursor is the
	// in-order source of truth, so a partial failure leaves a submit
	// that can be retried rather than a lost review.
	saved, err := u.progress.Upsert(ctx, record)
	if err != nil {
		return nil, err
	}

	if !params.Correct {
		if err := u.recordSessionMistake(ctx, userID, session, params, now); err != nil {
			return nil, err
		}
	}

	updated, err := u.sessions.Update(ctx, session)
	if err != nil {
		return nil, err
	}

	return &SubmitAnswerResult{
		Session:        updated,
		Progress:       saved,
		Retrievability: u.engine.Retrievability(saved.Memory, now),
		Finished:       updated.Exhausted(),
	}, nil
}

// recordSessionMistake appends a wrong-answer record for a failed
// session answer, pulling the expected answer from the card.
func (u *reviewUsecase) recordSessionMistake(ctx context.Context, userID int64, session *entity.StudySession, params SubmitAnswerParams, now time.Time) error {
	correctAnswer := ""
	card, err := u.cards.GetByID(ctx, params.CardID)
	if err != nil {
		return err
	}
	if card != nil {
		correctAnswer = card.Back
	}

	sessionID := session.ID
	record := &entity.WrongAnswerRecord{
		UserID:        userID,
		CardID:        params.CardID,
		SessionID:     &sessionID,
		QuizType:      params.QuizType,
		UserAnswer:    params.UserAnswer,
		CorrectAnswer: correctAnswer,
	}
	record.Normalize(now)
	_, err = u.wrongAnswers.Create(ctx, record)
	return err
}

func (u *reviewUsecase) CompleteSession(ctx context.Context, userID int64, sessionID uuid.UUID) (*entity.StudySession, error) {
	return u.terminateSession(ctx, userID, sessionID, (*entity.StudySession).Complete)
}

func (u *reviewUsecase) AbandonSession(ctx context.Context, userID int64, sessionID uuid.UUID) (*entity.StudySession, error) {
	return u.terminateSession(ctx, userID, sessionID, (*entity.StudySession).Abandon)
}

func (u *reviewUsecase) terminateSession(ctx context.Context, userID int64, sessionID uuid.UUID, terminate func(*entity.StudySession, time.Time) error) (*entity.StudySession, error) {
	if sessionID == uuid.Nil {
		return nil, entity.ErrUnknownSession
	}
	u.locks.lock(sessionID)
	defer u.locks.unlock(sessionID)

	session, err := u.loadOwnedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := terminate(session, u.clock()); err != nil {
		return nil, err
	}
	return u.sessions.Update(ctx, session)
}

func (u *reviewUsecase) GetSession(ctx context.Context, userID int64, sessionID uuid.UUID) (*entity.StudySession, error) {
	if sessionID == uuid.Nil {
		return nil, entity.ErrUnknownSession
	}
	return u.loadOwnedSession(ctx, userID, sessionID)
}

// loadOwnedSession hides other users' sessions behind ErrUnknownSession
// rather than leaking their existence.
func (u *reviewUsecase) loadOwnedSession(ctx context.Context, userID int64, sessionID uuid.UUID) (*entity.StudySession, error) {
	session, err := u.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil || session.UserID != userID {
		return nil, entity.ErrUnknownSession
	}
	return session, nil
}

func (u *reviewUsecase) ListSessions(ctx context.Context, query *repository.ListSessionQuery) ([]entity.StudySession, int64, error) {
	if query == nil {
		return nil, 0, entity.ErrInvalidArgument
	}
	query.Normalize(_defaultListLimit, _maxListLimit)
	return u.sessions.List(ctx, query)
}

func (u *reviewUsecase) RecordWrongAnswer(ctx context.Context, userID int64, params RecordWrongAnswerParams) (*entity.WrongAnswerRecord, error) {
	if _, err := u.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	card, err := u.cards.GetByID(ctx, params.CardID)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, entity.ErrUnknownCard
	}

	correctAnswer := params.CorrectAnswer
	if correctAnswer == "" {
		correctAnswer = card.Back
	}
	record := &entity.WrongAnswerRecord{
		UserID:        userID,
		CardID:        params.CardID,
		QuizType:      params.QuizType,
		UserAnswer:    params.UserAnswer,
		CorrectAnswer: correctAnswer,
	}
	record.Normalize(u.clock())
	return u.wrongAnswers.Create(ctx, record)
}

func (u *reviewUsecase) ListWrongAnswers(ctx context.Context, query *repository.ListWrongAnswerQuery) ([]entity.WrongAnswerRecord, int64, error) {
	if query == nil {
		return nil, 0, entity.ErrInvalidArgument
	}
	query.Normalize(_defaultListLimit, _maxListLimit)
	return u.wrongAnswers.List(ctx, query)
}

func (u *reviewUsecase) MarkWrongAnswerReviewed(ctx context.Context, userID, id int64) (*entity.WrongAnswerRecord, error) {
	record, err := u.wrongAnswers.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, entity.ErrUnknownWrongAnswer
	}
	record.MarkReviewed(u.clock())
	return u.wrongAnswers.Update(ctx, record)
}

// outcomeGrade maps the binary answer outcome onto the engine's grade
// scale.
func outcomeGrade(correct bool) srs.Grade {
	if correct {
		return srs.GradeGood
	}
	return srs.GradeAgain
}
