package report

import (
	"encoding/json"
	"io"

	"github.com/tillview/tillview/internal/models"
)

// WriteOrderJSON writes the order's summary as indented JSON.
func WriteOrderJSON(w io.Writer, o *models.Order) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(o.Summary())
}

// WriteOrdersJSON writes a list of order summaries as indented JSON.
func WriteOrdersJSON(w io.Writer, orders []*models.Order) error {
	summaries := make([]map[string]any, 0, len(orders))
	for _, o := range orders {
		summaries = append(summaries, o.Summary())
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summaries)
}

// WriteLoyaltyJSON writes loyalty activity summaries as indented JSON.
func WriteLoyaltyJSON(w io.Writer, activities []*models.LoyaltyActivity) error {
	summaries := make([]map[string]any, 0, len(activities))
	for _, a := range activities {
		summaries = append(summaries, a.Summary())
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summaries)
}
