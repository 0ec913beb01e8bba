package services

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/anonto42/webapps/backend/internal/market/models"
)

// OrderNumber formats AM + YYMMDD + the 4-digit daily sequence.
func OrderNumber(now time.Time, seq int64) string {
	return fmt.Sprintf("AM%s%04d", now.Format("060102"), seq)
}

// DayBounds returns the start of now's day and of the next day.
func DayBounds(now time.Time) (time.Time, time.Time) {
	y, m, d := now.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, 1)
}

func ValidOrderStatus(s string) bool {
	for _, v := range models.OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func reached(status string, steps ...string) bool {
	for _, s := range steps {
		if status == s {
			return true
		}
	}
	return false
}

// Timeline lists the steps an order has been through.
func Timeline(o *models.Order) []models.TimelineEvent {
	var events []models.TimelineEvent
	if !o.CreatedAt.IsZero() {
		events = append(events, models.TimelineEvent{Status: "Order Placed", Date: o.CreatedAt, Description: "Order has been placed successfully"})
	}
	if reached(o.Status, models.OrderConfirmed, models.OrderProcessing, models.OrderShipped, models.OrderDelivered) {
		events = append(events, models.TimelineEvent{Status: "Order Confirmed", Date: o.UpdatedAt, Description: "Order has been confirmed by vendor"})
	}
	if reached(o.Status, models.OrderShipped, models.OrderDelivered) {
		date := o.UpdatedAt
		for _, v := range o.VendorOrders {
			if v.ShippedAt != nil {
				date = *v.ShippedAt
				break
			}
		}
		events = append(events, models.TimelineEvent{Status: "Order Shipped", Date: date, Description: "Order has been shipped"})
	}
	if o.Status == models.OrderDelivered {
		date := o.UpdatedAt
		for _, v := range o.VendorOrders {
			if v.DeliveredAt != nil {
				date = *v.DeliveredAt
				break
			}
		}
		events = append(events, models.TimelineEvent{Status: "Order Delivered", Date: date, Description: "Order has been delivered successfully"})
	}
	return events
}

// ConversationID is the two user ids sorted and joined by "_", so both
// participants derive the same id.
func ConversationID(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return strings.Join(ids, "_")
}

// RoundRating rounds an average to one decimal place.
func RoundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}

// ApplyHelpfulVote records userID's vote. Switching a vote moves the score by
// two; repeating it changes nothing.
func ApplyHelpfulVote(r *models.Review, vote models.HelpfulVote) {
	delta := func(helpful bool) int {
		if helpful {
			return 1
		}
		return -1
	}
	for i := range r.HelpfulVotes {
		existing := &r.HelpfulVotes[i]
		if existing.UserID != vote.UserID {
			continue
		}
		if existing.IsHelpful != vote.IsHelpful {
			existing.IsHelpful = vote.IsHelpful
			existing.VotedAt = vote.VotedAt
			r.IsHelpful += 2 * delta(vote.IsHelpful)
		}
		return
	}
	r.HelpfulVotes = append(r.HelpfulVotes, vote)
	r.IsHelpful += delta(vote.IsHelpful)
}
