package lumina

import (
	"regexp"
	"strings"
)

// Tactic is a bucket of line items sharing product and subproduct.
type Tactic struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Product     string     `json:"product"`
	SubProduct  string     `json:"subProduct"`
	TotalBudget float64    `json:"totalBudget"`
	LineItems   []LineItem `json:"lineItems"`
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// Sanitize strips every character outside [a-zA-Z0-9_-].
func Sanitize(s string) string {
	return unsafeChars.ReplaceAllString(s, "")
}

// TacticKey is the bucket key for a product and subproduct.
func TacticKey(product, subProduct string) string {
	return Sanitize(product + "-" + subProduct)
}

// GroupTactics buckets line items by TacticKey in first-seen order.
func GroupTactics(items []LineItem) []Tactic {
	out := []Tactic{}
	index := map[string]int{}
	for _, li := range items {
		key := TacticKey(li.Product, li.SubProduct)
		i, ok := index[key]
		if !ok {
			name := strings.TrimSpace(li.Product)
			if sp := strings.TrimSpace(li.SubProduct); sp != "" {
				name += " - " + sp
			}
			out = append(out, Tactic{ID: key, Name: name, Product: li.Product, SubProduct: li.SubProduct, LineItems: []LineItem{}})
			i = len(out) - 1
			index[key] = i
		}
		out[i].LineItems = append(out[i].LineItems, li)
		out[i].TotalBudget += li.Budget
	}
	return out
}
