// Package worktime converts clock-in/clock-out pairs into worked time.
package worktime

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// BreakMinutes is deducted from an entry when a break was taken.
const BreakMinutes = 30

var sixty = decimal.NewFromInt(60)

// ParseClock parses a 24-hour "HH:MM" or "HH:MM:SS" value and returns the
// minutes elapsed since midnight. Seconds are checked but dropped.
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}

	hours, ok := twoDigits(parts[0])
	if !ok || hours > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}

	minutes, ok := twoDigits(parts[1])
	if !ok || minutes > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}

	if len(parts) == 3 {
		if seconds, ok := twoDigits(parts[2]); !ok || seconds > 59 {
			return 0, fmt.Errorf("invalid second in %q", s)
		}
	}

	return hours*60 + minutes, nil
}

// twoDigits parses exactly two ASCII digits.
func twoDigits(s string) (int, bool) {
	if len(s) != 2 || s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// NormalizeClock parses s and returns it in canonical "HH:MM" form, so
// "09:05:30" becomes "09:05".
func NormalizeClock(s string) (string, error) {
	m, err := ParseClock(s)
	if err != nil {
		return "", err
	}
	return FormatClock(m), nil
}

// IsValidClock reports whether s is a valid "HH:MM" value.
func IsValidClock(s string) bool {
	_, err := ParseClock(s)
	return err == nil
}

// WorkedMinutes returns max(0, out-in) minus the break, clamped at zero.
// Clock-out before clock-in yields zero; there is no overnight wrap.
// An unparsable value contributes zero minutes.
func WorkedMinutes(clockIn, clockOut string, breakTaken bool) int {
	in, err := ParseClock(clockIn)
	if err != nil {
		return 0
	}
	out, err := ParseClock(clockOut)
	if err != nil {
		return 0
	}

	worked := out - in
	if worked < 0 {
		worked = 0
	}
	if breakTaken {
		worked -= BreakMinutes
	}
	if worked < 0 {
		return 0
	}
	return worked
}

// Hours returns the unrounded worked hours of a clock pair.
func Hours(clockIn, clockOut string, breakTaken bool) decimal.Decimal {
	return MinutesToHours(WorkedMinutes(clockIn, clockOut, breakTaken))
}

// MinutesToHours converts minutes into decimal hours.
func MinutesToHours(minutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).Div(sixty)
}

// Pay returns minutes * rate / 60 * multiplier, unrounded.
func Pay(minutes int, rate decimal.Decimal, multiplier int64) decimal.Decimal {
	return rate.Mul(decimal.NewFromInt(int64(minutes))).
		Mul(decimal.NewFromInt(multiplier)).
		Div(sixty)
}

// Round rounds to two decimals, half away from zero (half-up for the
// non-negative values produced here).
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// DefaultOvertimeMultiplier prices overtime hours when no multiplier is given.
var DefaultOvertimeMultiplier = decimal.New(15, -1)

// WageBreakdown is the result of a what-if wage calculation.
type WageBreakdown struct {
	RegularPay  decimal.Decimal
	OvertimePay decimal.Decimal
	GrossPay    decimal.Decimal
	Deductions  decimal.Decimal
	NetPay      decimal.Decimal
}

// CalculateWage prices hours at rate and overtime hours at rate*multiplier,
// then subtracts deductions from the gross. Every figure is computed exactly
// and rounded on its own. Net pay goes negative when deductions exceed gross.
func CalculateWage(hours, rate, overtimeHours, multiplier, deductions decimal.Decimal) WageBreakdown {
	regular := hours.Mul(rate)
	overtime := overtimeHours.Mul(rate).Mul(multiplier)
	gross := regular.Add(overtime)

	return WageBreakdown{
		RegularPay:  Round(regular),
		OvertimePay: Round(overtime),
		GrossPay:    Round(gross),
		Deductions:  Round(deductions),
		NetPay:      Round(gross.Sub(deductions)),
	}
}
