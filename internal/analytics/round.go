package analytics

import "github.com/shopspring/decimal"

// Round rounds half away from zero at the given number of decimal places. Going
// through decimal avoids 2.675 -> 2.67 style surprises of math.Round(v*100)/100.
func Round(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}
