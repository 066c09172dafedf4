package suggestserver

import "github.com/atomicstack/select-autosuggest/internal/value"

var defaultCatalog = []string{
	"ams", "Amsterdam",
	"ath", "Athens",
	"bcn", "Barcelona",
	"ber", "Berlin",
	"bru", "Brussels",
	"bud", "Budapest",
	"cph", "Copenhagen",
	"dub", "Dublin",
	"edi", "Edinburgh",
	"hel", "Helsinki",
	"lis", "Lisbon",
	"lju", "Ljubljana",
	"lon", "London",
	"mad", "Madrid",
	"mil", "Milan",
	"osl", "Oslo",
	"par", "Paris",
	"prg", "Prague",
	"rey", "Reykjavik",
	"rig", "Riga",
	"rom", "Rome",
	"sto", "Stockholm",
	"tal", "Tallinn",
	"vie", "Vienna",
	"vil", "Vilnius",
	"war", "Warsaw",
	"zag", "Zagreb",
	"zrh", "Zurich",
}

// DefaultCatalog returns the built-in list of European cities.
func DefaultCatalog() value.Values {
	out := make(value.Values, 0, len(defaultCatalog)/2)
	for i := 0; i+1 < len(defaultCatalog); i += 2 {
		out = append(out, value.Pair{Value: defaultCatalog[i], Label: defaultCatalog[i+1]})
	}
	return out
}
