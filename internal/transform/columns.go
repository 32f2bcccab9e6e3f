package transform

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Column is a logical field of the feed. Upstream headers drift between spellings,
// so each column accepts several normalized header names.
type Column string

const (
	ColDate         Column = "date"
	ColLabel        Column = "label"
	ColWebRevenue   Column = "web_revenue"
	ColAppRevenue   Column = "app_revenue"
	ColOrders       Column = "orders"
	ColAppOrders    Column = "app_orders"
	ColGoogleClicks Column = "google_clicks"
	ColMetaClicks   Column = "meta_clicks"
	ColGoogleSpend  Column = "google_spend"
	ColMetaSpend    Column = "meta_spend"

	ColMonth         Column = "month"
	ColRevenueTarget Column = "revenue_target"
	ColOrdersTarget  Column = "orders_target"
	ColMERTarget     Column = "mer_target"

	ColTitle       Column = "title"
	ColDescription Column = "description"
	ColCategory    Column = "category"
)

// headerVariants holds normalized header names (see NormalizeHeader) per column.
var headerVariants = map[Column][]string{
	ColDate:         {"date", "datum", "day", "dag", "fecha"},
	ColLabel:        {"label", "brand", "merk", "store", "shop"},
	ColWebRevenue:   {"revenueweb", "webrevenue", "omzetweb", "webomzet", "revweb"},
	ColAppRevenue:   {"revenueapp", "apprevenue", "omzetapp", "appomzet", "revapp"},
	ColOrders:       {"orders", "totalorders", "orderstotal", "orderstotaal", "bestellingen"},
	ColAppOrders:    {"ordersapp", "apporders"},
	ColGoogleClicks: {"googleconversions", "conversionsgoogle", "googleclicks", "clicksgoogle"},
	ColMetaClicks:   {"metaconversions", "conversionsmeta", "metaclicks", "clicksmeta", "facebookconversions"},
	ColGoogleSpend:  {"googlespend", "spendgoogle", "googleads", "kostengoogle", "googlecost"},
	ColMetaSpend:    {"metaspend", "spendmeta", "facebookspend", "metaads", "kostenmeta", "metacost"},

	ColMonth:         {"month", "maand", "monthyear", "maandjaar", "period"},
	ColRevenueTarget: {"revtarget", "revenuetarget", "targetrevenue", "omzettarget", "targetomzet"},
	ColOrdersTarget:  {"orderstarget", "ordertarget", "targetorders"},
	ColMERTarget:     {"mertarget", "targetmer", "efficiencytarget"},

	ColTitle:       {"title", "titel", "event", "name"},
	ColDescription: {"description", "omschrijving", "details", "notes"},
	ColCategory:    {"category", "categorie", "type", "tag"},
}

// NormalizeHeader lowercases, folds accents and drops everything that is not a letter
// or digit, so "Rev_target", "Revenue Target" and "revenueTarget" compare equal.
func NormalizeHeader(h string) string {
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, h)
	if err != nil {
		folded = h
	}
	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Fields is a row re-keyed by normalized header.
type Fields map[string]string

// NewFields re-keys row by normalized header. When several raw headers normalize to
// the same key, the first non-empty cell in lexical header order wins.
func NewFields(row map[string]string) Fields {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	f := make(Fields, len(row))
	for _, k := range keys {
		n := NormalizeHeader(k)
		v := strings.TrimSpace(row[k])
		if cur, dup := f[n]; dup && (cur != "" || v == "") {
			continue
		}
		f[n] = v
	}
	return f
}

// Collision is a normalized key claimed by more than one raw header.
type Collision struct {
	Key     string
	Headers []string
}

// HeaderCollisions lists the collisions among headers, ordered by key. Headers are
// in lexical order, the order NewFields prefers them in.
func HeaderCollisions(headers []string) []Collision {
	byKey := map[string][]string{}
	for _, h := range headers {
		n := NormalizeHeader(h)
		if n == "" {
			continue
		}
		byKey[n] = append(byKey[n], h)
	}
	var out []Collision
	for k, hs := range byKey {
		if len(hs) < 2 {
			continue
		}
		sort.Strings(hs)
		out = append(out, Collision{Key: k, Headers: hs})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Get returns the first non-empty cell among the column's header variants.
func (f Fields) Get(c Column) string {
	for _, name := range headerVariants[c] {
		if v, ok := f[name]; ok && v != "" {
			return v
		}
	}
	return ""
}
