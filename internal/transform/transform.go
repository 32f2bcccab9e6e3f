// Package transform maps one raw feed row into a typed DailyMetric.
package transform

import (
	"fmt"

	"github.com/AngelCh415/brandpulse/internal/locale"
	"github.com/AngelCh415/brandpulse/internal/models"
)

// Kind classifies a Result. The zero value is KindUnknown, so an unset Result is
// never mistaken for a valid one.
type Kind int

const (
	KindUnknown Kind = iota
	KindValid
	KindEmpty
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindValid:
		return "valid"
	case KindEmpty:
		return "empty"
	case KindInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Result is exactly one of: a valid metric, an empty marker, or an invalid marker
// with a reason. Metric is only meaningful when Kind is KindValid.
type Result struct {
	Kind   Kind
	Metric models.DailyMetric
	Reason string
}

func Valid(m models.DailyMetric) Result { return Result{Kind: KindValid, Metric: m} }
func Empty() Result                      { return Result{Kind: KindEmpty} }
func Invalid(reason string) Result       { return Result{Kind: KindInvalid, Reason: reason} }

// Transform classifies and parses one row of the primary feed.
func Transform(row map[string]string, source models.Source) Result {
	return TransformWith(row, source, models.DefaultAttribution)
}

func TransformWith(row map[string]string, source models.Source, attr models.Attribution) Result {
	f := NewFields(row)
	rawDate := f.Get(ColDate)
	label := f.Get(ColLabel)
	if rawDate == "" && label == "" {
		return Empty()
	}

	date, ok := locale.ParseLocalDate(rawDate)
	if !ok {
		return Invalid(fmt.Sprintf("unparsable date %q", rawDate))
	}
	if label == "" {
		return Invalid(fmt.Sprintf("missing label for %s", date.Format(models.DateLayout)))
	}

	m := models.DailyMetric{
		Label:        label,
		WebRevenue:   locale.ParseDecimal(f.Get(ColWebRevenue)),
		AppRevenue:   locale.ParseDecimal(f.Get(ColAppRevenue)),
		Orders:       locale.ParseCount(f.Get(ColOrders)),
		AppOrders:    locale.ParseCount(f.Get(ColAppOrders)),
		GoogleSpend:  locale.ParseDecimal(f.Get(ColGoogleSpend)),
		MetaSpend:    locale.ParseDecimal(f.Get(ColMetaSpend)),
		GoogleClicks: locale.ParseCount(f.Get(ColGoogleClicks)),
		MetaClicks:   locale.ParseCount(f.Get(ColMetaClicks)),
		Source:       source,
	}
	m.SetDate(date)
	m.RecomputeWith(attr)
	return Valid(m)
}
