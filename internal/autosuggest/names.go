package autosuggest

// Names are the classes and attributes the scaffold uses, derived from the
// namespace.
type Names struct {
	Namespace string

	WrapperClass         string
	FilterWrapperClass   string
	FilterClass          string
	SuggestionsClass     string
	SuggestionsListClass string
	SuggestionClass      string
	SelectionsClass      string
	SelectionsListClass  string
	SelectionClass       string

	IDAttr            string
	WrapperIDAttr     string
	FilterIDAttr      string
	SuggestionsIDAttr string
	SelectionsIDAttr  string
	ValueAttr         string
	CachedValueAttr   string
	EndpointAttr      string
	PlaceholderAttr   string
	ConfigAttr        string
}

// NewNames derives every marker from ns.
func NewNames(ns string) Names {
	data := "data-" + ns
	return Names{
		Namespace: ns,

		WrapperClass:         ns + "-wrapper",
		FilterWrapperClass:   ns + "__filter-wrapper",
		FilterClass:          ns + "__filter",
		SuggestionsClass:     ns + "__suggestions",
		SuggestionsListClass: ns + "__suggestions-list",
		SuggestionClass:      ns + "__suggestion",
		SelectionsClass:      ns + "__selections",
		SelectionsListClass:  ns + "__selections-list",
		SelectionClass:       ns + "__selection",

		IDAttr:            data + "-id",
		WrapperIDAttr:     data + "-wrapper-id",
		FilterIDAttr:      data + "-filter-id",
		SuggestionsIDAttr: data + "-suggestions-id",
		SelectionsIDAttr:  data + "-selections-id",
		ValueAttr:         data + "-value",
		CachedValueAttr:   data + "-cached-value",
		EndpointAttr:      data + "-endpoint",
		PlaceholderAttr:   data + "-placeholder",
		ConfigAttr:        data + "-config",
	}
}

const hiddenStyle = "position: absolute; clip: rect(1px, 1px, 1px, 1px); overflow: hidden; " +
	"height: 1px; width: 1px; word-wrap: normal; text-transform: initial; " +
	"margin-top: -1px; margin-left: -1px"
