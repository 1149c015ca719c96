package booking

import (
	"fmt"
	"math"

	"gymstay/models"
)

// PriceFor maps a stay duration and an offer's rate tiers to a single
// charge amount. Pure and deterministic: no I/O, no clock.
//
// Training offers bill per day. All other kinds bill in whole-week blocks
// rounded up, except stays of 28 days or more with a monthly rate, which
// bill whole months first: months = floor(d/30) (28 and 29 days count as
// one month), remainder in week blocks rounded up. The amount is rounded
// once, at the end, to a whole minor unit.
func PriceFor(durationDays int, kind models.OfferKind, rates models.RateTable, currency string) (*models.Quote, error) {
	if durationDays < 1 {
		return nil, newValidationError("durationDays", "must be at least 1")
	}
	if err := validateRates(rates); err != nil {
		return nil, err
	}

	var amount float64
	var unit, label string

	switch kind {
	case models.OfferTraining:
		if rates.Daily == nil {
			return nil, &RateUnavailableError{Kind: kind, Message: "training offers require a daily rate"}
		}
		amount = *rates.Daily * float64(durationDays)
		unit = "day"
		label = fmt.Sprintf("%d %s training", durationDays, pluralize("day", durationDays))

	default:
		weekly, err := resolveWeekly(kind, rates)
		if err != nil {
			return nil, err
		}

		if durationDays >= 28 && rates.Monthly != nil {
			months := durationDays / 30
			remainderDays := durationDays % 30
			if months == 0 {
				// 28 and 29 day stays bill as a single month.
				months = 1
				remainderDays = 0
			}
			remainderWeeks := int(math.Ceil(float64(remainderDays) / 7))
			amount = float64(months)*(*rates.Monthly) + float64(remainderWeeks)*weekly
			unit = "month"
			label = fmt.Sprintf("%d %s", months, pluralize("month", months))
			if remainderWeeks > 0 {
				label = fmt.Sprintf("%s + %d %s", label, remainderWeeks, pluralize("week", remainderWeeks))
			}
		} else {
			weeks := int(math.Ceil(float64(durationDays) / 7))
			amount = weekly * float64(weeks)
			unit = "week"
			label = fmt.Sprintf("%d %s", weeks, pluralize("week", weeks))
		}
	}

	// Round to a whole minor unit exactly once. The processor is charged an
	// integer minor-unit amount, so the quoted total must already be one;
	// zero-decimal currencies only differ in display.
	return &models.Quote{
		Amount:   math.Round(amount),
		Unit:     unit,
		Label:    label,
		Currency: currency,
	}, nil
}

// resolveWeekly returns the weekly tier, deriving a synthetic one from the
// monthly rate when weekly is absent.
func resolveWeekly(kind models.OfferKind, rates models.RateTable) (float64, error) {
	if rates.Weekly != nil {
		return *rates.Weekly, nil
	}
	if rates.Monthly != nil {
		return *rates.Monthly / 30 * 7, nil
	}
	return 0, &RateUnavailableError{Kind: kind, Message: "requires a weekly or monthly rate"}
}

func validateRates(rates models.RateTable) error {
	for name, r := range map[string]*float64{"daily": rates.Daily, "weekly": rates.Weekly, "monthly": rates.Monthly} {
		if r != nil && *r < 0 {
			return newValidationError("rates."+name, "must not be negative")
		}
	}
	return nil
}

func pluralize(unit string, n int) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}
