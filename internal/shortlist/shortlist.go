// Package shortlist emails a user-curated subset of search results.
package shortlist

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/findmydaycare/daycare-server/pkg/sendgrid"
)

// Rejected-input errors, distinct from downstream delivery failures.
var (
	ErrInvalidRecipient = eris.New("shortlist: invalid email address")
	ErrEmptyShortlist   = eris.New("shortlist: no daycares selected")
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Daycare is one previously computed search result as echoed back by the
// client. Enrichment fields are optional.
type Daycare struct {
	Name         string   `json:"name"`
	Address      string   `json:"address"`
	PostalCode   string   `json:"postalCode"`
	DistanceKM   float64  `json:"distanceKm"`
	Phone        string   `json:"phone,omitempty"`
	Website      string   `json:"website,omitempty"`
	Rating       *float64 `json:"googleRating,omitempty"`
	ReviewsCount *int     `json:"googleReviewsCount,omitempty"`
	CWELCC       bool     `json:"cwelcc"`
	Subsidy      bool     `json:"subsidy"`
}

// RatingDisplay formats the Google rating and review count for templates,
// or "" when no rating is known.
func (d Daycare) RatingDisplay() string {
	if d.Rating == nil {
		return ""
	}
	if d.ReviewsCount != nil {
		return fmt.Sprintf("%.1f (%d reviews)", *d.Rating, *d.ReviewsCount)
	}
	return fmt.Sprintf("%.1f", *d.Rating)
}

// ValidateEmail reports whether addr has a standard email shape.
func ValidateEmail(addr string) bool {
	return emailPattern.MatchString(addr)
}

// Service sends shortlist emails through an injected mail client.
type Service struct {
	mailer sendgrid.Client
}

// NewService creates a shortlist Service.
func NewService(mailer sendgrid.Client) *Service {
	return &Service{mailer: mailer}
}

// Send validates the request and emails the shortlist. Input problems
// return ErrInvalidRecipient or ErrEmptyShortlist; anything else is a
// delivery failure.
func (s *Service) Send(ctx context.Context, toEmail string, daycares []Daycare, searchAddress string) error {
	if !ValidateEmail(toEmail) {
		return ErrInvalidRecipient
	}
	if len(daycares) == 0 {
		return ErrEmptyShortlist
	}

	msg := sendgrid.Message{
		ToEmail:   toEmail,
		Subject:   "Your Find My Daycare Shortlist",
		PlainText: buildText(daycares, searchAddress),
		HTML:      buildHTML(daycares, searchAddress),
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		return eris.Wrap(err, "shortlist: deliver")
	}

	zap.L().Info("shortlist sent",
		zap.Int("daycares", len(daycares)),
		zap.String("search_address", searchAddress),
	)
	return nil
}

// buildText renders the plain-text part.
func buildText(daycares []Daycare, searchAddress string) string {
	var sb strings.Builder
	sb.WriteString("Your Daycare Shortlist\n")
	fmt.Fprintf(&sb, "%d daycares near %s\n\n", len(daycares), searchAddress)
	sb.WriteString(strings.Repeat("=", 40) + "\n\n")

	for _, d := range daycares {
		sb.WriteString(d.Name + "\n")
		fmt.Fprintf(&sb, "  %s, %s\n", d.Address, d.PostalCode)
		fmt.Fprintf(&sb, "  %.2f km away\n", d.DistanceKM)
		if d.Phone != "" {
			fmt.Fprintf(&sb, "  Phone: %s\n", d.Phone)
		}
		if d.Website != "" {
			fmt.Fprintf(&sb, "  Website: %s\n", d.Website)
		}
		if d.Rating != nil {
			fmt.Fprintf(&sb, "  Rating: %.1f", *d.Rating)
			if d.ReviewsCount != nil {
				fmt.Fprintf(&sb, " (%d reviews)", *d.ReviewsCount)
			}
			sb.WriteString("\n")
		}

		var badges []string
		if d.CWELCC {
			badges = append(badges, "CWELCC")
		}
		if d.Subsidy {
			badges = append(badges, "Subsidy")
		}
		if len(badges) > 0 {
			fmt.Fprintf(&sb, "  %s\n", strings.Join(badges, ", "))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(strings.Repeat("=", 40) + "\n")
	sb.WriteString("Sent from Find My Daycare\n")
	return sb.String()
}
