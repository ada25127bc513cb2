package report

import (
	"fmt"
	"log/slog"
	"strconv"

	"ctrlreport/internal/onetrust"
)

const (
	// unknownCompany is the title placeholder when no record carries a
	// company-name hint.
	unknownCompany = "Unknown Company"

	// notApplicable is the placeholder for absent or excluded values
	notApplicable = "N/A"
)

// companyName resolves the company name for the report title: the first
// non-empty orgGroupName scanning records in order, then the first
// non-empty primary entity name, then the placeholder.
func companyName(records []onetrust.ControlRecord) string {
	for _, rec := range records {
		if rec.Control.OrgGroupName != "" {
			return rec.Control.OrgGroupName
		}
	}
	for _, rec := range records {
		if rec.PrimaryEntity.Name != "" {
			return rec.PrimaryEntity.Name
		}
	}
	return unknownCompany
}

// applicable reports whether a raw formula value counts toward the
// average. Missing values, the string "0" and the number 0 mark a control
// as not applicable.
func applicable(raw interface{}) bool {
	switch v := raw.(type) {
	case nil:
		return false
	case string:
		return v != "0"
	case float64:
		return v != 0
	default:
		return true
	}
}

// averageScore computes the arithmetic mean of all applicable formula
// values. Unparsable values are logged and skipped, never fatal. The
// second return is false when no applicable value exists.
func averageScore(records []onetrust.ControlRecord, logger *slog.Logger) (float64, bool) {
	var sum float64
	var count int

	for _, rec := range records {
		raw := rec.FormulaValue()
		if !applicable(raw) {
			continue
		}

		switch v := raw.(type) {
		case float64:
			sum += v
			count++
		case string:
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				logger.Warn("skipping unparsable formula value",
					slog.String("identifier", rec.Control.Identifier),
					slog.String("value", v))
				continue
			}
			sum += f
			count++
		default:
			logger.Warn("skipping formula value of unexpected type",
				slog.String("identifier", rec.Control.Identifier),
				slog.Any("value", v))
		}
	}

	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

// displayValue renders a record's formula value for the report body,
// substituting the placeholder for absent or inapplicable values.
func displayValue(rec onetrust.ControlRecord) string {
	raw := rec.FormulaValue()
	if !applicable(raw) {
		return notApplicable
	}

	switch v := raw.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
