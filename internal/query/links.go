package query

import (
	"net/url"
	"strconv"
)

// Links returns the absolute next/previous URLs for a page of total results.
// The previous link of page 2 drops the page parameter.
func Links(base *url.URL, p Page, total int64) (next, previous *string) {
	if int64(p.Number) < p.lastPage(total) {
		s := withPage(base, p.Number+1)
		next = &s
	}
	if p.Number > 1 {
		s := withPage(base, p.Number-1)
		previous = &s
	}
	return next, previous
}

func withPage(base *url.URL, page int) string {
	u := *base
	v := u.Query()
	if page <= 1 {
		v.Del(ParamPage)
	} else {
		v.Set(ParamPage, strconv.Itoa(page))
	}
	u.RawQuery = v.Encode()
	return u.String()
}
