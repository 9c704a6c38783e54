package forms

import (
	"net/url"
	"strconv"
	"strings"

	"restotrack/shared/go/models"
)

// MapsURL links to a Google Maps search for address.
func MapsURL(address string) string {
	return "https://www.google.com/maps/search/?api=1&query=" + url.QueryEscape(address)
}

// PriceLabel renders a range as "¥3,000 ~ ¥5,000". Empty when prt is nil.
func PriceLabel(prt *models.PriceRangeText) string {
	if prt == nil {
		return ""
	}
	return "¥" + groupThousands(prt.Min) + " ~ ¥" + groupThousands(prt.Max)
}

// TierLabel renders a tier as repeated yen signs.
func TierLabel(tier *int) string {
	if tier == nil || *tier < 1 {
		return ""
	}
	return strings.Repeat("¥", *tier)
}

// Stars renders a rating as filled and empty stars out of five.
func Stars(rating *int) string {
	n := 0
	if rating != nil {
		n = min(max(*rating, 0), 5)
	}
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}

func groupThousands(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + frac
}
