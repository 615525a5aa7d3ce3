package model

// Month is a canonical month token ("Jan".."Dec"). Tokens the normalizer could
// not recognize are carried through verbatim and have ordinal 0.
type Month string

const (
	January   Month = "Jan"
	February  Month = "Feb"
	March     Month = "Mar"
	April     Month = "Apr"
	May       Month = "May"
	June      Month = "Jun"
	July      Month = "Jul"
	August    Month = "Aug"
	September Month = "Sep"
	October   Month = "Oct"
	November  Month = "Nov"
	December  Month = "Dec"
)

// Months lists the canonical tokens in calendar order.
var Months = [12]Month{January, February, March, April, May, June, July, August, September, October, November, December}

// Ordinal returns 1..12 for canonical months and 0 otherwise.
func (m Month) Ordinal() int {
	for i, c := range Months {
		if c == m {
			return i + 1
		}
	}
	return 0
}

// Canonical reports whether m is one of the twelve canonical tokens.
func (m Month) Canonical() bool { return m.Ordinal() > 0 }

// MonthOf returns the canonical token for ordinal 1..12.
func MonthOf(ordinal int) (Month, bool) {
	if ordinal < 1 || ordinal > 12 {
		return "", false
	}
	return Months[ordinal-1], true
}
