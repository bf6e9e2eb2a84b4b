package notifications

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"skillmatch/internal/store"

	"github.com/9ssi7/exponent"
)

type BookingEvent string

const (
	BookingCreated   BookingEvent = "Created"
	BookingConfirmed BookingEvent = "Confirmed"
	BookingCancelled BookingEvent = "Cancelled"
	BookingCompleted BookingEvent = "Completed"
)

// SendBookingNotification notifies a user about a booking event. For
// BookingCreated the recipient is the venue manager, otherwise the
// booking owner.
func SendBookingNotification(ctx context.Context, push PushSender, storage store.Storage, userID int64, event BookingEvent, bookingID int64) error {
	tokensMap, err := storage.PushTokens.GetTokensByUserIDs(ctx, []int64{userID})
	if err != nil {
		return err
	}
	tokens := dedupe(tokensMap[userID])
	if len(tokens) == 0 {
		return errors.New("no push tokens")
	}

	var title, body string
	switch event {
	case BookingCreated:
		title = "New Booking Request"
		body = "A new booking was made at your venue"
	case BookingConfirmed:
		title = "Booking Confirmed"
		body = fmt.Sprintf("Your booking (ID: %d) has been confirmed! 🎉", bookingID)
	case BookingCancelled:
		title = "Booking Cancelled"
		body = fmt.Sprintf("Your booking (ID: %d) has been cancelled", bookingID)
	case BookingCompleted:
		title = "Booking Completed"
		body = fmt.Sprintf("Your booking (ID: %d) is complete. Thanks for playing!", bookingID)
	default:
		title = "Booking Update"
		body = fmt.Sprintf("Your booking (ID: %d) has an update", bookingID)
	}

	msgs := make([]*exponent.Message, 0, len(tokens))
	for _, t := range tokens {
		token := exponent.Token(t)
		msgs = append(msgs, &exponent.Message{
			To:    []*exponent.Token{&token},
			Title: title,
			Body:  body,
			Data: map[string]string{
				"type":       "booking",
				"event":      string(event),
				"booking_id": strconv.FormatInt(bookingID, 10),
				"screen":     "user-bookings-screen",
			},
		})
	}

	_, err = push.Publish(ctx, msgs)
	return err
}
