package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/tillview/tillview/internal/models"
)

// csvTimeLayout matches the datetime format of the POS system's own
// exports.
const csvTimeLayout = "2006-01-02 03:04:05 PM"

// WriteOrdersCSV writes a header row followed by every exploded record of
// every order.
func WriteOrdersCSV(w io.Writer, orders []*models.Order) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Fields()); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, o := range orders {
		for _, rec := range Explode(o) {
			if err := cw.Write(csvRow(rec)); err != nil {
				return fmt.Errorf("failed to write csv row: %w", err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteLoyaltyCSV writes loyalty activity records as CSV.
func WriteLoyaltyCSV(w io.Writer, activities []*models.LoyaltyActivity) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Fields()); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, rec := range ExplodeLoyalty(activities) {
		if err := cw.Write(csvRow(rec)); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRow(rec Record) []string {
	fields := Fields()
	row := make([]string, len(fields))
	for i, field := range fields {
		row[i] = csvValue(rec[field])
	}
	return row
}

func csvValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case *string:
		if v == nil {
			return ""
		}
		return *v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case *int64:
		if v == nil {
			return ""
		}
		return strconv.FormatInt(*v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format(csvTimeLayout)
	case *time.Time:
		if v == nil {
			return ""
		}
		return v.Format(csvTimeLayout)
	default:
		return fmt.Sprint(v)
	}
}
