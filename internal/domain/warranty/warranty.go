package warranty

import "time"

// Years of statutory warranty from the purchase date.
const Years = 2

// End returns the last day covered by the warranty. A purchase on Feb 29 ends on
// Feb 28 of the target year instead of rolling into March.
func End(purchase time.Time) time.Time {
	y, m, d := purchase.Date()
	target := y + Years
	if m == time.February && d == 29 && !isLeap(target) {
		d = 28
	}
	return time.Date(target, m, d, 0, 0, 0, 0, time.UTC)
}

// Valid reports whether a complaint about a purchase is still covered on today.
func Valid(purchase, today time.Time) bool {
	ty, tm, td := today.Date()
	return !End(purchase).Before(time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC))
}

func isLeap(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}
