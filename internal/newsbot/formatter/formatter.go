// Package formatter turns a news article into a Reddit link post title.
package formatter

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/RobinCoderZhao/newsbot/internal/newsbot/sources"
)

// ErrMalformedLink is returned when an article link is not an absolute URL.
var ErrMalformedLink = errors.New("malformed article link")

// MalformedLinkError carries the offending link.
type MalformedLinkError struct {
	Link string
	Err  error
}

func (e *MalformedLinkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %q: %v", ErrMalformedLink, e.Link, e.Err)
	}
	return fmt.Sprintf("%s %q", ErrMalformedLink, e.Link)
}

func (e *MalformedLinkError) Is(target error) bool { return target == ErrMalformedLink }

func (e *MalformedLinkError) Unwrap() error { return e.Err }

// Post is a formatted Reddit link post.
type Post struct {
	Title string
	URL   string
}

// Format builds the post for an article:
//
//	<title> | <site> #<first two words> #<site>
//
// Hashtags keep only ASCII letters and digits. An article without a
// description gets a bare "#" as its first hashtag.
func Format(a sources.Article) (Post, error) {
	site, err := SiteName(a.Link)
	if err != nil {
		return Post{}, err
	}

	words := FirstWords(a.Description, 2)
	title := fmt.Sprintf("%s | %s %s %s", a.Title, site, Hashtag(words), Hashtag(site))

	return Post{Title: title, URL: a.Link}, nil
}

// SiteName returns the link's lowercased hostname without a leading "www.".
func SiteName(link string) (string, error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", &MalformedLinkError{Link: link, Err: err}
	}
	if u.Scheme == "" || u.Hostname() == "" {
		return "", &MalformedLinkError{Link: link}
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www."), nil
}

// FirstWords returns the first n whitespace-separated words of s joined by a
// single space.
func FirstWords(s string, n int) string {
	fields := strings.Fields(s)
	if len(fields) > n {
		fields = fields[:n]
	}
	return strings.Join(fields, " ")
}

// Hashtag prefixes s with "#" after dropping everything but [A-Za-z0-9].
func Hashtag(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 1)
	sb.WriteByte('#')
	for i := 0; i < len(s); i++ {
		c := s[i]
		if ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9') {
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
