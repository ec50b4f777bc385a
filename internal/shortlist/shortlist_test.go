package shortlist

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/findmydaycare/daycare-server/pkg/sendgrid"
)

type fakeMailer struct {
	sent []sendgrid.Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg sendgrid.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func ptrF(v float64) *float64 { return &v }
func ptrI(v int) *int         { return &v }

func sampleDaycares() []Daycare {
	return []Daycare{
		{
			Name:         "Sunshine Daycare",
			Address:      "123 Queen St W",
			PostalCode:   "M5H 2M9",
			DistanceKM:   0.85,
			Phone:        "416-555-0101",
			Website:      "https://sunshine.example.com",
			Rating:       ptrF(4.6),
			ReviewsCount: ptrI(32),
			CWELCC:       true,
			Subsidy:      true,
		},
		{
			Name:       "Little Steps",
			Address:    "45 Bay St",
			PostalCode: "M5J 2R8",
			DistanceKM: 2.1,
		},
	}
}

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("parent@example.com"))
	assert.True(t, ValidateEmail("first.last+tag@sub.example.co"))
	assert.False(t, ValidateEmail(""))
	assert.False(t, ValidateEmail("not-an-email"))
	assert.False(t, ValidateEmail("two@at@example.com"))
	assert.False(t, ValidateEmail("spaces in@example.com"))
	assert.False(t, ValidateEmail("nodomain@"))
}

func TestSend_Success(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewService(mailer)

	err := svc.Send(context.Background(), "parent@example.com", sampleDaycares(), "100 Queen St W")
	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)

	msg := mailer.sent[0]
	assert.Equal(t, "parent@example.com", msg.ToEmail)
	assert.Equal(t, "Your Find My Daycare Shortlist", msg.Subject)

	assert.Contains(t, msg.PlainText, "Sunshine Daycare")
	assert.Contains(t, msg.PlainText, "0.85 km away")
	assert.Contains(t, msg.PlainText, "Rating: 4.6 (32 reviews)")
	assert.Contains(t, msg.PlainText, "CWELCC, Subsidy")
	assert.Contains(t, msg.PlainText, "2 daycares near 100 Queen St W")

	assert.Contains(t, msg.HTML, "Sunshine Daycare")
	assert.Contains(t, msg.HTML, "Little Steps")
	assert.Contains(t, msg.HTML, "4.6 (32 reviews)")
	assert.Contains(t, msg.HTML, "https://sunshine.example.com")
	assert.Contains(t, msg.HTML, "CWELCC")
}

func TestSend_InvalidEmail(t *testing.T) {
	mailer := &fakeMailer{}
	err := NewService(mailer).Send(context.Background(), "not-an-email", sampleDaycares(), "100 Queen St W")
	assert.ErrorIs(t, err, ErrInvalidRecipient)
	assert.Empty(t, mailer.sent)
}

func TestSend_EmptyShortlist(t *testing.T) {
	mailer := &fakeMailer{}
	err := NewService(mailer).Send(context.Background(), "parent@example.com", nil, "100 Queen St W")
	assert.ErrorIs(t, err, ErrEmptyShortlist)
	assert.Empty(t, mailer.sent)
}

func TestSend_ValidationBeforeDelivery(t *testing.T) {
	// Invalid input wins even when the mailer would also fail.
	mailer := &fakeMailer{err: eris.New("sendgrid: returned status 401")}
	err := NewService(mailer).Send(context.Background(), "bad", nil, "100 Queen St W")
	assert.ErrorIs(t, err, ErrInvalidRecipient)
}

func TestSend_DeliveryFailure(t *testing.T) {
	mailer := &fakeMailer{err: eris.New("sendgrid: returned status 500")}
	err := NewService(mailer).Send(context.Background(), "parent@example.com", sampleDaycares(), "100 Queen St W")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidRecipient)
	assert.NotErrorIs(t, err, ErrEmptyShortlist)
	assert.Contains(t, err.Error(), "deliver")
}

func TestRatingDisplay(t *testing.T) {
	assert.Equal(t, "", Daycare{}.RatingDisplay())
	assert.Equal(t, "4.2", Daycare{Rating: ptrF(4.2)}.RatingDisplay())
	assert.Equal(t, "4.2 (7 reviews)", Daycare{Rating: ptrF(4.2), ReviewsCount: ptrI(7)}.RatingDisplay())
}
