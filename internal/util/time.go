package util

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// LatestBusinessDay returns the most recent KRX trading weekday for the
// given instant as a YYYYMMDD string. It converts to Seoul time and steps
// back over weekends; exchange holidays are not modeled — a holiday date
// simply yields empty result sets downstream.
func LatestBusinessDay(input time.Time) string {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		log.Errorf("Failed to load location 'Asia/Seoul': %v. Falling back to UTC.", err)
		loc = time.UTC
	}
	d := input.In(loc)

	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, -1)
	}

	return d.Format("20060102")
}
