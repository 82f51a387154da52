// Package quarterly defines the four-quarter-plus-yearly numeric series
// that nearly every budget line item is expressed in.
package quarterly

import (
	"github.com/iwvelando/master-budget/pkg/constants"
	"github.com/iwvelando/master-budget/pkg/mathutil"
)

// Series holds one value per fiscal quarter plus a yearly figure. For
// additive flows Yearly is the sum of the quarters; for rate or ratio
// series Yearly holds a weighted average and the owning schedule documents
// the weighting.
type Series struct {
	Q1     float64 `json:"q1" yaml:"q1"`
	Q2     float64 `json:"q2" yaml:"q2"`
	Q3     float64 `json:"q3" yaml:"q3"`
	Q4     float64 `json:"q4" yaml:"q4"`
	Yearly float64 `json:"yearly" yaml:"yearly"`
}

// New builds an additive series from four quarter values; Yearly is their sum.
func New(q1, q2, q3, q4 float64) Series {
	return Series{Q1: q1, Q2: q2, Q3: q3, Q4: q4, Yearly: q1 + q2 + q3 + q4}
}

// Constant builds an additive series with the same value every quarter.
func Constant(perQuarter float64) Series {
	return New(perQuarter, perQuarter, perQuarter, perQuarter)
}

// FromQuarters builds an additive series from a slice of up to four
// quarter values; missing quarters are zero.
func FromQuarters(vals []float64) Series {
	var q [constants.QuartersPerYear]float64
	for i := 0; i < len(vals) && i < constants.QuartersPerYear; i++ {
		q[i] = vals[i]
	}
	return New(q[0], q[1], q[2], q[3])
}

// Quarter returns the value for quarter n (1-4). Out-of-range quarters
// return 0.
func (s Series) Quarter(n int) float64 {
	switch n {
	case 1:
		return s.Q1
	case 2:
		return s.Q2
	case 3:
		return s.Q3
	case 4:
		return s.Q4
	}
	return 0
}

// Quarters returns the four quarter values in order.
func (s Series) Quarters() [constants.QuartersPerYear]float64 {
	return [constants.QuartersPerYear]float64{s.Q1, s.Q2, s.Q3, s.Q4}
}

// Map applies fn to each quarter and resums Yearly.
func (s Series) Map(fn func(q int, v float64) float64) Series {
	return New(fn(1, s.Q1), fn(2, s.Q2), fn(3, s.Q3), fn(4, s.Q4))
}

// Add returns the quarter-wise sum of s and others, with Yearly resummed.
func (s Series) Add(others ...Series) Series {
	out := s
	for _, o := range others {
		out = New(out.Q1+o.Q1, out.Q2+o.Q2, out.Q3+o.Q3, out.Q4+o.Q4)
	}
	return out
}

// Sub returns the quarter-wise difference s - o, with Yearly resummed.
func (s Series) Sub(o Series) Series {
	return New(s.Q1-o.Q1, s.Q2-o.Q2, s.Q3-o.Q3, s.Q4-o.Q4)
}

// Scale multiplies every quarter by factor, with Yearly resummed.
func (s Series) Scale(factor float64) Series {
	return New(s.Q1*factor, s.Q2*factor, s.Q3*factor, s.Q4*factor)
}

// Mul returns the quarter-wise product of s and o, with Yearly resummed.
// Used when one series is a quantity and the other a per-unit rate.
func (s Series) Mul(o Series) Series {
	return New(s.Q1*o.Q1, s.Q2*o.Q2, s.Q3*o.Q3, s.Q4*o.Q4)
}

// Sum adds any number of additive series together.
func Sum(series ...Series) Series {
	var out Series
	for _, s := range series {
		out = out.Add(s)
	}
	return out
}

// WeightedAverage builds a rate series whose Yearly is the value-weighted
// average of the quarter rates (weights typically being units or cost).
// Quarters with zero total weight average to zero.
func WeightedAverage(rates, weights Series) Series {
	out := rates
	total := weights.Q1 + weights.Q2 + weights.Q3 + weights.Q4
	out.Yearly = mathutil.SafeDivide(
		rates.Q1*weights.Q1+rates.Q2*weights.Q2+rates.Q3*weights.Q3+rates.Q4*weights.Q4,
		total)
	return out
}

// IsAdditive reports whether Yearly matches the sum of the quarters within
// the shared series tolerance.
func (s Series) IsAdditive() bool {
	return mathutil.WithinTolerance(s.Yearly, s.Q1+s.Q2+s.Q3+s.Q4, constants.SeriesTolerance)
}

// IsZero reports whether every quarter and the yearly value are zero
// within currency tolerance.
func (s Series) IsZero() bool {
	return mathutil.IsZero(s.Q1) && mathutil.IsZero(s.Q2) &&
		mathutil.IsZero(s.Q3) && mathutil.IsZero(s.Q4) && mathutil.IsZero(s.Yearly)
}

// HasNegative reports whether any quarter is negative.
func (s Series) HasNegative() bool {
	return s.Q1 < 0 || s.Q2 < 0 || s.Q3 < 0 || s.Q4 < 0
}
