package utils

import (
	"fmt"
	"time"
)

// Shop time zone, used when rendering timestamps in emails.
var shopLoc = func() *time.Location {
	if loc, err := time.LoadLocation("Europe/Rome"); err == nil {
		return loc
	}
	return time.FixedZone("CET", 1*3600)
}()

func NowUnixSeconds() int64 { return time.Now().Unix() }

func FormatShopTime(unixSeconds int64) string {
	if unixSeconds <= 0 {
		return "-"
	}
	return time.Unix(unixSeconds, 0).In(shopLoc).Format("02/01/2006 15:04")
}

// FormatCents renders minor units as "12,50 EUR".
func FormatCents(cents int64, currency string) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d,%02d %s", sign, cents/100, cents%100, currency)
}
