package utils

import (
	"strings"
)

var onesWords = []string{
	"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
	"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
	"Seventeen", "Eighteen", "Nineteen",
}

var tensWords = []string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety",
}

func wordsBelowHundred(n int64) string {
	if n < 20 {
		return onesWords[n]
	}
	if n%10 == 0 {
		return tensWords[n/10]
	}
	return tensWords[n/10] + " " + onesWords[n%10]
}

func wordsBelowThousand(n int64) string {
	if n < 100 {
		return wordsBelowHundred(n)
	}
	out := onesWords[n/100] + " Hundred"
	if n%100 != 0 {
		out += " " + wordsBelowHundred(n%100)
	}
	return out
}

// AmountInWords renders a rupee amount using the Indian two-tier
// grouping: crore (1e7), lakh (1e5), thousand, hundred.
// AmountInWords(318000) == "Rupees Three Lakh Eighteen Thousand Only".
func AmountInWords(amount int64) string {
	if amount < 0 {
		return "Minus " + AmountInWords(-amount)
	}
	if amount == 0 {
		return "Rupees Zero Only"
	}

	crore := amount / 10000000
	lakh := (amount / 100000) % 100
	thousand := (amount / 1000) % 100
	rest := amount % 1000

	var parts []string
	if crore > 0 {
		parts = append(parts, wordsBelowThousand(crore)+" Crore")
	}
	if lakh > 0 {
		parts = append(parts, wordsBelowHundred(lakh)+" Lakh")
	}
	if thousand > 0 {
		parts = append(parts, wordsBelowHundred(thousand)+" Thousand")
	}
	if rest > 0 {
		parts = append(parts, wordsBelowThousand(rest))
	}

	return "Rupees " + strings.Join(parts, " ") + " Only"
}

// FormatRupees renders an amount with Indian digit grouping, e.g.
// FormatRupees(1250000) == "Rs. 12,50,000".
func FormatRupees(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}

	s := formatIndianGroups(amount)
	if neg {
		return "Rs. -" + s
	}
	return "Rs. " + s
}

func formatIndianGroups(n int64) string {
	digits := []byte{}
	if n == 0 {
		return "0"
	}
	for n > 0 {
		digits = append(digits, byte('0'+n%10))
		n /= 10
	}

	// Reverse into place, inserting separators after the first three
	// digits and then every two.
	var out []byte
	for i := len(digits) - 1; i >= 0; i-- {
		out = append(out, digits[i])
		if i > 0 {
			if i == 3 || (i > 3 && (i-3)%2 == 0) {
				out = append(out, ',')
			}
		}
	}
	return string(out)
}
