package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"skillmatch/internal/auth"
	"skillmatch/internal/ratelimiter"
	"skillmatch/internal/realtime"
	"skillmatch/internal/store"
	"skillmatch/internal/ticket"

	"github.com/9ssi7/exponent"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Mock stores
type MockUsersStore struct{ mock.Mock }
type MockVenuesStore struct{ mock.Mock }
type MockBookingsStore struct{ mock.Mock }
type MockGamesStore struct{ mock.Mock }
type MockTicketsStore struct{ mock.Mock }
type MockJobsStore struct{ mock.Mock }
type MockReviewsStore struct{ mock.Mock }
type MockMessagesStore struct{ mock.Mock }
type MockPushTokensStore struct{ mock.Mock }

func (m *MockUsersStore) Create(ctx context.Context, user *store.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUsersStore) GetByID(ctx context.Context, id int64) (*store.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.User), args.Error(1)
}

func (m *MockUsersStore) GetByEmail(ctx context.Context, email string) (*store.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.User), args.Error(1)
}

func (m *MockUsersStore) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	return m.Called(ctx, id, updates).Error(0)
}

func (m *MockUsersStore) AddSkill(ctx context.Context, id int64, skill store.Skill) error {
	return m.Called(ctx, id, skill).Error(0)
}

func (m *MockUsersStore) Search(ctx context.Context, skill, city string, limit int) ([]store.User, error) {
	args := m.Called(ctx, skill, city, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.User), args.Error(1)
}

func (m *MockUsersStore) GetNearby(ctx context.Context, longitude, latitude float64, maxDistance, limit int) ([]store.User, error) {
	args := m.Called(ctx, longitude, latitude, maxDistance, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.User), args.Error(1)
}

func (m *MockUsersStore) SetProfilePhoto(ctx context.Context, id int64, url string) error {
	return m.Called(ctx, id, url).Error(0)
}

func (m *MockUsersStore) SetRefreshToken(ctx context.Context, id int64, token string) error {
	return m.Called(ctx, id, token).Error(0)
}

func (m *MockUsersStore) GetRefreshToken(ctx context.Context, id int64) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockUsersStore) ListExcept(ctx context.Context, id int64, limit int) ([]store.User, error) {
	args := m.Called(ctx, id, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.User), args.Error(1)
}

func (m *MockVenuesStore) Create(ctx context.Context, venue *store.Venue) error {
	return m.Called(ctx, venue).Error(0)
}

func (m *MockVenuesStore) GetByID(ctx context.Context, id int64) (*store.Venue, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Venue), args.Error(1)
}

func (m *MockVenuesStore) List(ctx context.Context, filter store.VenueFilter) ([]store.Venue, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]store.Venue), args.Int(1), args.Error(2)
}

func (m *MockVenuesStore) GetNearby(ctx context.Context, longitude, latitude float64, maxDistance, limit int) ([]store.Venue, error) {
	args := m.Called(ctx, longitude, latitude, maxDistance, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.Venue), args.Error(1)
}

func (m *MockVenuesStore) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	return m.Called(ctx, id, updates).Error(0)
}

func (m *MockVenuesStore) Deactivate(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockBookingsStore) Create(ctx context.Context, booking *store.Booking) error {
	return m.Called(ctx, booking).Error(0)
}

func (m *MockBookingsStore) GetByID(ctx context.Context, id int64) (*store.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Booking), args.Error(1)
}

func (m *MockBookingsStore) GetByUser(ctx context.Context, userID int64) ([]store.UserBooking, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.UserBooking), args.Error(1)
}

func (m *MockBookingsStore) GetByVenue(ctx context.Context, venueID int64) ([]store.VenueBooking, error) {
	args := m.Called(ctx, venueID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.VenueBooking), args.Error(1)
}

func (m *MockBookingsStore) UpdateStatus(ctx context.Context, id int64, status string) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockGamesStore) Create(ctx context.Context, game *store.Game) error {
	return m.Called(ctx, game).Error(0)
}

func (m *MockGamesStore) GetByID(ctx context.Context, id int64) (*store.Game, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Game), args.Error(1)
}

func (m *MockGamesStore) GetPlayers(ctx context.Context, gameID int64) ([]store.GamePlayer, error) {
	args := m.Called(ctx, gameID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.GamePlayer), args.Error(1)
}

func (m *MockGamesStore) List(ctx context.Context, filter store.GameFilter) ([]store.Game, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]store.Game), args.Int(1), args.Error(2)
}

func (m *MockGamesStore) GetByOrganizer(ctx context.Context, organizerID int64) ([]store.Game, error) {
	args := m.Called(ctx, organizerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.Game), args.Error(1)
}

func (m *MockGamesStore) UpdateStatus(ctx context.Context, id int64, status string) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockGamesStore) Register(ctx context.Context, gameID, userID int64, tk *store.Ticket) error {
	return m.Called(ctx, gameID, userID, tk).Error(0)
}

func (m *MockGamesStore) CancelRegistration(ctx context.Context, gameID, userID int64) error {
	return m.Called(ctx, gameID, userID).Error(0)
}

func (m *MockGamesStore) MarkCompletedGames(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTicketsStore) GetByGameAndUser(ctx context.Context, gameID, userID int64) (*store.Ticket, error) {
	args := m.Called(ctx, gameID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Ticket), args.Error(1)
}

func (m *MockTicketsStore) GetByTicketID(ctx context.Context, ticketID string) (*store.Ticket, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Ticket), args.Error(1)
}

func (m *MockTicketsStore) GetByUser(ctx context.Context, userID int64) ([]store.Ticket, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.Ticket), args.Error(1)
}

func (m *MockJobsStore) Create(ctx context.Context, job *store.Job) error {
	return m.Called(ctx, job).Error(0)
}

func (m *MockJobsStore) GetByID(ctx context.Context, id int64) (*store.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Job), args.Error(1)
}

func (m *MockJobsStore) List(ctx context.Context, filter store.JobFilter) ([]store.Job, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]store.Job), args.Int(1), args.Error(2)
}

func (m *MockJobsStore) Apply(ctx context.Context, jobID, userID int64) error {
	return m.Called(ctx, jobID, userID).Error(0)
}

func (m *MockJobsStore) UpdateApplicantStatus(ctx context.Context, jobID, applicantID int64, status string) error {
	return m.Called(ctx, jobID, applicantID, status).Error(0)
}

func (m *MockJobsStore) Close(ctx context.Context, jobID int64) error {
	return m.Called(ctx, jobID).Error(0)
}

func (m *MockJobsStore) GetByPoster(ctx context.Context, userID int64) ([]store.Job, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.Job), args.Error(1)
}

func (m *MockJobsStore) GetAppliedBy(ctx context.Context, userID int64) ([]store.Job, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.Job), args.Error(1)
}

func (m *MockReviewsStore) Create(ctx context.Context, review *store.Review) error {
	return m.Called(ctx, review).Error(0)
}

func (m *MockReviewsStore) GetByID(ctx context.Context, id int64) (*store.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Review), args.Error(1)
}

func (m *MockReviewsStore) GetForUser(ctx context.Context, userID int64) ([]store.Review, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.Review), args.Error(1)
}

func (m *MockReviewsStore) GetByReviewer(ctx context.Context, userID int64) ([]store.Review, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.Review), args.Error(1)
}

func (m *MockReviewsStore) Update(ctx context.Context, review *store.Review) error {
	return m.Called(ctx, review).Error(0)
}

func (m *MockReviewsStore) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockMessagesStore) Create(ctx context.Context, message *store.Message) error {
	return m.Called(ctx, message).Error(0)
}

func (m *MockMessagesStore) GetByID(ctx context.Context, id int64) (*store.Message, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Message), args.Error(1)
}

func (m *MockMessagesStore) GetThread(ctx context.Context, userID, otherUserID int64) ([]store.Message, error) {
	args := m.Called(ctx, userID, otherUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.Message), args.Error(1)
}

func (m *MockMessagesStore) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockMessagesStore) GetConversations(ctx context.Context, userID int64) ([]store.Conversation, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.Conversation), args.Error(1)
}

func (m *MockPushTokensStore) AddOrUpdate(ctx context.Context, userID int64, token string, deviceInfo []byte) error {
	return m.Called(ctx, userID, token, deviceInfo).Error(0)
}

func (m *MockPushTokensStore) Remove(ctx context.Context, userID int64, token string) error {
	return m.Called(ctx, userID, token).Error(0)
}

func (m *MockPushTokensStore) GetTokensByUserIDs(ctx context.Context, userIDs []int64) (map[int64][]string, error) {
	args := m.Called(ctx, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64][]string), args.Error(1)
}

// mockStores bundles every mock behind a store.Storage.
type mockStores struct {
	users      *MockUsersStore
	venues     *MockVenuesStore
	bookings   *MockBookingsStore
	games      *MockGamesStore
	tickets    *MockTicketsStore
	jobs       *MockJobsStore
	reviews    *MockReviewsStore
	messages   *MockMessagesStore
	pushTokens *MockPushTokensStore
}

func newMockStores() (*mockStores, store.Storage) {
	m := &mockStores{
		users:      &MockUsersStore{},
		venues:     &MockVenuesStore{},
		bookings:   &MockBookingsStore{},
		games:      &MockGamesStore{},
		tickets:    &MockTicketsStore{},
		jobs:       &MockJobsStore{},
		reviews:    &MockReviewsStore{},
		messages:   &MockMessagesStore{},
		pushTokens: &MockPushTokensStore{},
	}
	return m, store.Storage{
		Users:      m.users,
		Venues:     m.venues,
		Bookings:   m.bookings,
		Games:      m.games,
		Tickets:    m.tickets,
		Jobs:       m.jobs,
		Reviews:    m.reviews,
		Messages:   m.messages,
		PushTokens: m.pushTokens,
	}
}

type noopPush struct{}

func (noopPush) Publish(ctx context.Context, msgs []*exponent.Message) ([]*exponent.MessageResponse, error) {
	return nil, nil
}

func (noopPush) PublishSingle(ctx context.Context, msg *exponent.Message) ([]*exponent.MessageResponse, error) {
	return nil, nil
}

type noopMailer struct{}

func (noopMailer) Send(templateFile, username, email string, data any) (int, error) {
	return http.StatusOK, nil
}

func newTestApplication(t *testing.T, st store.Storage) *application {
	t.Helper()

	gen, err := ticket.NewGenerator("test-salt")
	require.NoError(t, err)

	return &application{
		config: config{
			env: "test",
			rateLimiter: ratelimiter.Config{
				Enabled: false,
			},
		},
		store:         st,
		logger:        zap.NewNop().Sugar(),
		mailer:        noopMailer{},
		authenticator: auth.NewJWTAuthenticator("test-secret", "test-refresh-secret", "SkillMatch", "SkillMatch", time.Hour, 24*time.Hour),
		rateLimiter:   ratelimiter.NewFixedWindowLimiter(1000, time.Minute),
		tickets:       gen,
		hub:           realtime.NewHub(),
		push:          noopPush{},
	}
}

func bearerToken(t *testing.T, app *application, user *store.User) string {
	t.Helper()
	access, _, err := app.authenticator.GenerateTokens(user.ID, user.UserType)
	require.NoError(t, err)
	return "Bearer " + access
}

func executeRequest(app *application, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	app.mount().ServeHTTP(rr, req)
	return rr
}

func jsonRequest(t *testing.T, method, target string, payload any) *http.Request {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func testUser(id int64) *store.User {
	return &store.User{
		ID:        id,
		FirstName: "Asha",
		LastName:  "Rai",
		Email:     "asha@example.com",
		Phone:     "9800000000",
		UserType:  "Player",
	}
}
