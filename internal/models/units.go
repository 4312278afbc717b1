package models

import "fmt"

// Hours and money are stored as int64 in the smallest unit (hundredths of an
// hour, cents) so repeated percentage math never touches binary floats.
// Commission rates are basis points: 10.00% = 1000.

const MeetingSurchargeBP = 1500 // 15% on top of the quoted hours

// HoursFromDecimal converts a DECIMAL(10,2) value read from the database into
// hundredths of an hour.
func HoursFromDecimal(v float64) int64 {
	if v >= 0 {
		return int64(v*100 + 0.5)
	}
	return int64(v*100 - 0.5)
}

// HoursToDecimal converts hundredths back to the DECIMAL(10,2) column value.
func HoursToDecimal(h int64) float64 {
	return float64(h) / 100
}

// FormatHours renders hundredths as a fixed two-decimal string, e.g. "3.50".
func FormatHours(h int64) string {
	sign := ""
	if h < 0 {
		sign = "-"
		h = -h
	}
	return fmt.Sprintf("%s%d.%02d", sign, h/100, h%100)
}

// FormatCents renders cents as a fixed two-decimal string.
func FormatCents(c int64) string {
	return FormatHours(c)
}

// ApplyBasisPoints returns amount*(bp/10000) rounded half up. Used for
// commission amounts and package discounts.
func ApplyBasisPoints(amount, bp int64) int64 {
	return (amount*bp + 5000) / 10000
}

// SurchargedHours returns the quoted hours plus the meeting surcharge,
// rounded up so the platform never under-charges.
func SurchargedHours(requiredHours int64) int64 {
	total := requiredHours * (10000 + MeetingSurchargeBP)
	return (total + 9999) / 10000
}
