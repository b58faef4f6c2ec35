package enhancer

import "reflect"

// ScrollPane is a scrollable region whose content grows at the bottom.
type ScrollPane interface {
	ScrollHeight() int
	SetScrollTop(top int)
}

// TextSource exposes the text content of an element.
type TextSource interface {
	Text() string
}

// TextSink receives rendered text.
type TextSink interface {
	SetText(text string)
}

// Selector is a selection control with a current value.
type Selector interface {
	Value() string
}

// Location is the page address. Search returns the query string, with or
// without the leading '?'. SetSearch replaces it, which navigates.
type Location interface {
	Search() string
	SetSearch(query string)
}

// Page carries the elements the enhancer works on. Any field may be nil.
type Page struct {
	LogPane    ScrollPane
	Expiration TextSource
	Countdown  TextSink
	Repo       Selector
	Branch     Selector
	Path       Selector
	Location   Location
}

// present reports whether v holds a usable value. A typed nil pointer stored
// in an interface counts as absent.
func present(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return !rv.IsNil()
	}
	return true
}

// Markers the server-rendered page uses for the elements above.
const (
	ClassLogPane    = "logpane"
	ClassExpiration = "expiration"
	ClassCountdown  = "expirationCountdown"
	IDRepo          = "repo"
	IDBranch        = "branch"
	IDPath          = "path"
)
