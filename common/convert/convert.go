package convert

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var errNotAnInteger = errors.New("value is not an integer")

var printer = message.NewPrinter(language.English)

// BoolPtr takes in boolean condition and returns pointer version of it
func BoolPtr(condition bool) *bool {
	b := condition
	return &b
}

// FloatToString renders a float in its shortest round-trip form, a missing
// value (NaN) is rendered as an empty string
func FloatToString(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// FloatFromString parses a value written by FloatToString. Empty strings and
// the common spellings of NaN are parsed as missing
func FloatFromString(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "nan", "null", "none":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

// CanonicalIntString parses s as an integer, tolerating a trailing ".0" from
// float formatted labels, and returns its canonical decimal rendering
func CanonicalIntString(s string) (string, error) {
	s = strings.TrimSpace(s)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return strconv.FormatInt(i, 10), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("%w: %q", errNotAnInteger, s)
	}
	return strconv.FormatInt(int64(f), 10), nil
}

// FloatToHumanFriendlyString renders f with thousands separators and a fixed
// number of decimal places
func FloatToHumanFriendlyString(f float64, decimals int) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	if decimals < 0 {
		decimals = 0
	}
	return printer.Sprintf("%."+strconv.Itoa(decimals)+"f", f)
}

// DecimalToHumanFriendlyString renders d with thousands separators rounded
// to the supplied number of decimal places
func DecimalToHumanFriendlyString(d decimal.Decimal, decimals int) string {
	f, _ := d.Round(int32(decimals)).Float64()
	return FloatToHumanFriendlyString(f, decimals)
}

// IntToHumanFriendlyString renders i with thousands separators
func IntToHumanFriendlyString(i int64) string {
	return printer.Sprintf("%d", i)
}
