package cache

import "strconv"

// Endpoint names one cached read endpoint. Together with a parameter
// it keys exactly one cache entry.
type Endpoint string

const (
	// EndpointArticles caches article list pages; the parameter is the
	// decimal page offset.
	EndpointArticles Endpoint = "getArticles"
	// EndpointArticle caches single articles; the parameter is the slug.
	EndpointArticle Endpoint = "getArticle"
	// EndpointUser caches the current user; the parameter is empty.
	EndpointUser Endpoint = "getUserDetails"
)

// Key identifies one cache entry.
type Key struct {
	Endpoint Endpoint
	Param    string
}

// ArticlesKey keys the list page at the given offset.
func ArticlesKey(offset int) Key {
	return Key{Endpoint: EndpointArticles, Param: strconv.Itoa(offset)}
}

// ArticleKey keys the detail entry for one slug.
func ArticleKey(slug string) Key {
	return Key{Endpoint: EndpointArticle, Param: slug}
}

// UserKey keys the current-user entry.
func UserKey() Key {
	return Key{Endpoint: EndpointUser}
}

// Status is the lifecycle state of a cache entry.
type Status uint8

const (
	StatusPending Status = iota
	StatusFulfilled
	StatusRejected
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusFulfilled:
		return "fulfilled"
	case StatusRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Entry is the last known result for one key. Entries are returned by
// value; holders read them but never write back into the store
// directly.
type Entry struct {
	Key    Key
	Status Status
	Value  interface{}
	Err    error

	stale bool
}

// Stale reports whether the entry has been invalidated and will be
// refetched on the next Read.
func (e Entry) Stale() bool {
	return e.stale
}
