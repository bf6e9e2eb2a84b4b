package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrConflict          = errors.New("resource already exists")
	QueryTimeoutDuration = time.Second * 5
)

type Storage struct {
	Users interface {
		Create(context.Context, *User) error
		GetByID(context.Context, int64) (*User, error)
		GetByEmail(context.Context, string) (*User, error)
		Update(context.Context, int64, map[string]interface{}) error
		AddSkill(context.Context, int64, Skill) error
		Search(context.Context, string, string, int) ([]User, error)
		GetNearby(context.Context, float64, float64, int, int) ([]User, error)
		SetProfilePhoto(context.Context, int64, string) error
		SetRefreshToken(context.Context, int64, string) error
		GetRefreshToken(context.Context, int64) (string, error)
		ListExcept(context.Context, int64, int) ([]User, error)
	}
	Venues interface {
		Create(context.Context, *Venue) error
		GetByID(context.Context, int64) (*Venue, error)
		List(context.Context, VenueFilter) ([]Venue, int, error)
		GetNearby(context.Context, float64, float64, int, int) ([]Venue, error)
		Update(context.Context, int64, map[string]interface{}) error
		Deactivate(context.Context, int64) error
	}
	Bookings interface {
		Create(context.Context, *Booking) error
		GetByID(context.Context, int64) (*Booking, error)
		GetByUser(context.Context, int64) ([]UserBooking, error)
		GetByVenue(context.Context, int64) ([]VenueBooking, error)
		UpdateStatus(context.Context, int64, string) error
	}
	Games interface {
		Create(context.Context, *Game) error
		GetByID(context.Context, int64) (*Game, error)
		GetPlayers(context.Context, int64) ([]GamePlayer, error)
		List(context.Context, GameFilter) ([]Game, int, error)
		GetByOrganizer(context.Context, int64) ([]Game, error)
		UpdateStatus(context.Context, int64, string) error
		Register(context.Context, int64, int64, *Ticket) error
		CancelRegistration(context.Context, int64, int64) error
		MarkCompletedGames(context.Context) (int64, error)
	}
	Tickets interface {
		GetByGameAndUser(context.Context, int64, int64) (*Ticket, error)
		GetByTicketID(context.Context, string) (*Ticket, error)
		GetByUser(context.Context, int64) ([]Ticket, error)
	}
	Jobs interface {
		Create(context.Context, *Job) error
		GetByID(context.Context, int64) (*Job, error)
		List(context.Context, JobFilter) ([]Job, int, error)
		Apply(context.Context, int64, int64) error
		UpdateApplicantStatus(context.Context, int64, int64, string) error
		Close(context.Context, int64) error
		GetByPoster(context.Context, int64) ([]Job, error)
		GetAppliedBy(context.Context, int64) ([]Job, error)
	}
	Reviews interface {
		Create(context.Context, *Review) error
		GetByID(context.Context, int64) (*Review, error)
		GetForUser(context.Context, int64) ([]Review, error)
		GetByReviewer(context.Context, int64) ([]Review, error)
		Update(context.Context, *Review) error
		Delete(context.Context, int64) error
	}
	Messages interface {
		Create(context.Context, *Message) error
		GetByID(context.Context, int64) (*Message, error)
		GetThread(context.Context, int64, int64) ([]Message, error)
		Delete(context.Context, int64) error
		GetConversations(context.Context, int64) ([]Conversation, error)
	}
	PushTokens interface {
		AddOrUpdate(context.Context, int64, string, []byte) error
		Remove(context.Context, int64, string) error
		GetTokensByUserIDs(context.Context, []int64) (map[int64][]string, error)
	}
}

func NewStorage(db *pgxpool.Pool) Storage {
	return Storage{
		Users:      &UsersStore{db},
		Venues:     &VenuesStore{db},
		Bookings:   &BookingsStore{db},
		Games:      &GamesStore{db},
		Tickets:    &TicketsStore{db},
		Jobs:       &JobsStore{db},
		Reviews:    &ReviewsStore{db},
		Messages:   &MessagesStore{db},
		PushTokens: &PushTokensStore{db},
	}
}
