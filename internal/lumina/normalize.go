package lumina

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/edwinlov3tt/report-ai-sub000/internal/metrics"
)

// Campaign statuses.
const (
	StatusUpcoming  = "upcoming"
	StatusOngoing   = "ongoing"
	StatusCompleted = "completed"
)

// LineItem is one normalized order line.
type LineItem struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Product    string  `json:"product"`
	SubProduct string  `json:"subProduct"`
	TacticType string  `json:"tacticType,omitempty"`
	Platform   string  `json:"platform,omitempty"`
	StartDate  string  `json:"startDate,omitempty"`
	EndDate    string  `json:"endDate,omitempty"`
	Budget     float64 `json:"budget"`
}

// Campaign is the normalized order.
type Campaign struct {
	ID            string                 `json:"id"`
	OrderNumber   string                 `json:"orderNumber"`
	Name          string                 `json:"name"`
	LineItems     []LineItem             `json:"lineItems"`
	Status        string                 `json:"status"`
	StartDate     string                 `json:"startDate,omitempty"`
	EndDate       string                 `json:"endDate,omitempty"`
	DaysElapsed   int                    `json:"daysElapsed"`
	DaysRemaining int                    `json:"daysRemaining"`
	TotalBudget   float64                `json:"totalBudget"`
	Products      []string               `json:"products"`
	Derived       map[string]interface{} `json:"derived,omitempty"`
}

// Normalize reduces a raw order to a Campaign. now fixes the reference time
// for status and day counts.
func Normalize(raw map[string]interface{}, now time.Time) *Campaign {
	c := &Campaign{
		ID:          str(raw, "_id", "id", "orderId"),
		OrderNumber: str(raw, "orderNumber", "order_number", "number"),
		Name:        str(raw, "name", "campaignName", "orderName", "title"),
		LineItems:   []LineItem{},
		Products:    []string{},
	}

	items, _ := raw["lineItems"].([]interface{})
	if items == nil {
		items, _ = raw["line_items"].([]interface{})
	}
	seen := map[string]bool{}
	for _, it := range items {
		m, ok := it.(map[string]interface{})
		if !ok {
			continue
		}
		li := LineItemFromMap(m)
		c.LineItems = append(c.LineItems, li)
		c.TotalBudget += li.Budget
		if li.Product != "" && !seen[strings.ToLower(li.Product)] {
			seen[strings.ToLower(li.Product)] = true
			c.Products = append(c.Products, li.Product)
		}
	}
	if b := num(raw, "totalBudget", "budget"); b > 0 {
		c.TotalBudget = b
	}

	start, startOK := parseDate(str(raw, "startDate", "start_date", "flightStart"))
	end, endOK := parseDate(str(raw, "endDate", "end_date", "flightEnd"))
	for _, li := range c.LineItems {
		if d, ok := parseDate(li.StartDate); ok && (!startOK || d.Before(start)) {
			start, startOK = d, true
		}
		if d, ok := parseDate(li.EndDate); ok && (!endOK || d.After(end)) {
			end, endOK = d, true
		}
	}
	if startOK {
		c.StartDate = start.Format(dateLayout)
	}
	if endOK {
		c.EndDate = end.Format(dateLayout)
	}
	c.Status, c.DaysElapsed, c.DaysRemaining = schedule(start, startOK, end, endOK, now)
	return c
}

// LineItemFromMap reads a line item from either raw Lumina keys or the
// normalized keys produced by Normalize.
func LineItemFromMap(m map[string]interface{}) LineItem {
	return LineItem{
		ID:         str(m, "_id", "id", "lineItemId"),
		Name:       str(m, "name", "lineItemName", "title"),
		Product:    str(m, "product", "productName", "product_name"),
		SubProduct: str(m, "subProduct", "subproduct", "sub_product", "subProductName"),
		TacticType: str(m, "tacticType", "tactic_type", "tacticTypeSpecial"),
		Platform:   str(m, "platform", "channel"),
		StartDate:  str(m, "startDate", "start_date"),
		EndDate:    str(m, "endDate", "end_date"),
		Budget:     num(m, "budget", "totalBudget", "netBudget", "grossBudget"),
	}
}

const dateLayout = "2006-01-02"

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", dateLayout, "01/02/2006", "1/2/2006"}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func schedule(start time.Time, startOK bool, end time.Time, endOK bool, now time.Time) (string, int, int) {
	today := truncateDay(now)
	switch {
	case startOK && today.Before(truncateDay(start)):
		remaining := 0
		if endOK {
			remaining = days(truncateDay(start), truncateDay(end)) + 1
		}
		return StatusUpcoming, 0, remaining
	case endOK && today.After(truncateDay(end)):
		elapsed := 0
		if startOK {
			elapsed = days(truncateDay(start), truncateDay(end)) + 1
		}
		return StatusCompleted, elapsed, 0
	}

	elapsed, remaining := 0, 0
	if startOK {
		elapsed = days(truncateDay(start), today) + 1
	}
	if endOK {
		remaining = days(today, truncateDay(end))
	}
	return StatusOngoing, elapsed, remaining
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func days(from, to time.Time) int {
	d := int(math.Round(to.Sub(from).Hours() / 24))
	if d < 0 {
		return 0
	}
	return d
}

func str(m map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func num(m map[string]interface{}, keys ...string) float64 {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			return v
		case string:
			if f := metrics.ParseNumber(v); f != 0 {
				return f
			}
		}
	}
	return 0
}
