package handlers

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
)

// positiveQuery reads a required query parameter that must be an integer >= 1.
func positiveQuery(c *fiber.Ctx, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}
	return n, nil
}

func positiveParam(c *fiber.Ctx, name string) (int, error) {
	n, err := strconv.Atoi(c.Params(name))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}
	return n, nil
}

// dateLayouts are tried in order for competition dates.
var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q (use RFC3339 or YYYY-MM-DD)", s)
}

// parseClock accepts HH:MM or HH:MM:SS.
func parseClock(s string) (datatypes.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return datatypes.NewTime(t.Hour(), t.Minute(), t.Second(), 0), nil
		}
	}
	return 0, fmt.Errorf("invalid time %q (use HH:MM or HH:MM:SS)", s)
}

// maxText is the width of the VARCHAR(255) columns.
const maxText = 255

// maxPrice is the first value NUMERIC(10,2) cannot hold.
const maxPrice = 1e8

// checkLength rejects values longer than max characters.
func checkLength(field, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return fmt.Errorf("%s must be at most %d characters", field, max)
	}
	return nil
}

// checkPrice accepts amounts in [0, maxPrice) with at most two decimal places.
func checkPrice(price float64) error {
	if math.IsNaN(price) || price < 0 || price >= maxPrice {
		return fmt.Errorf("price must be between 0 and 99999999.99")
	}
	if math.Round(price*100)/100 != price {
		return fmt.Errorf("price must have at most two decimal places")
	}
	return nil
}
