package formatter

import (
	"errors"
	"strings"
	"testing"

	"github.com/RobinCoderZhao/newsbot/internal/newsbot/sources"
)

func TestFormat_Scenario(t *testing.T) {
	post, err := Format(sources.Article{
		Title:       "Storm hits coast",
		Link:        "https://www.example.com/a",
		Description: "Severe storm warning issued",
	})
	if err != nil {
		t.Fatal(err)
	}
	want := "Storm hits coast | example.com #Severestorm #examplecom"
	if post.Title != want {
		t.Errorf("expected %q, got %q", want, post.Title)
	}
	if post.URL != "https://www.example.com/a" {
		t.Errorf("expected url to be kept verbatim, got %q", post.URL)
	}
}

func TestFormat_EmptyDescription(t *testing.T) {
	post, err := Format(sources.Article{Title: "Quiet day", Link: "https://news.test/x"})
	if err != nil {
		t.Fatal(err)
	}
	if post.Title != "Quiet day | news.test # #newstest" {
		t.Errorf("unexpected title %q", post.Title)
	}
}

func TestFormat_HashtagsAreAlphanumeric(t *testing.T) {
	tests := []sources.Article{
		{Title: "A", Link: "https://www.bbc.co.uk/news/1", Description: "U.S. officials say"},
		{Title: "B", Link: "http://edition.cnn.com/x?y=1", Description: "Breaking:   markets-tumble today"},
		{Title: "C", Link: "https://sub.site-name.org", Description: "Étude #1 released"},
		{Title: "D", Link: "https://example.com", Description: "single"},
	}
	for _, a := range tests {
		post, err := Format(a)
		if err != nil {
			t.Fatalf("%s: %v", a.Title, err)
		}
		_, tail, ok := strings.Cut(post.Title, " | ")
		if !ok {
			t.Fatalf("%s: missing separator in %q", a.Title, post.Title)
		}
		parts := strings.Fields(tail)
		if len(parts) != 3 {
			t.Fatalf("%s: expected site and two hashtags, got %q", a.Title, tail)
		}
		for _, tag := range parts[1:] {
			if !strings.HasPrefix(tag, "#") {
				t.Errorf("%s: hashtag %q missing '#'", a.Title, tag)
			}
			for _, c := range tag[1:] {
				if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
					t.Errorf("%s: hashtag %q has non-alphanumeric %q", a.Title, tag, c)
				}
			}
		}
	}
}

func TestFormat_SameHostSameSiteHashtag(t *testing.T) {
	a, _ := Format(sources.Article{Title: "1", Link: "https://www.reuters.com/world/a", Description: "one two"})
	b, _ := Format(sources.Article{Title: "2", Link: "https://www.reuters.com/markets/b?id=9", Description: "three four"})
	c, _ := Format(sources.Article{Title: "3", Link: "https://WWW.Reuters.COM/x", Description: "five six"})
	tagA := a.Title[strings.LastIndex(a.Title, " ")+1:]
	tagB := b.Title[strings.LastIndex(b.Title, " ")+1:]
	tagC := c.Title[strings.LastIndex(c.Title, " ")+1:]
	if tagA != tagB || tagA != tagC || tagA != "#reuterscom" {
		t.Errorf("expected matching #reuterscom, got %q, %q and %q", tagA, tagB, tagC)
	}
	if !strings.Contains(c.Title, " | reuters.com ") {
		t.Errorf("expected lowercased site name, got %q", c.Title)
	}
}

func TestFormat_MalformedLink(t *testing.T) {
	for _, link := range []string{"", "not a url", "/relative/path", "http://[::1"} {
		_, err := Format(sources.Article{Title: "x", Link: link})
		if err == nil {
			t.Errorf("expected error for %q", link)
			continue
		}
		if !errors.Is(err, ErrMalformedLink) {
			t.Errorf("expected ErrMalformedLink for %q, got %v", link, err)
		}
		var mle *MalformedLinkError
		if !errors.As(err, &mle) || mle.Link != link {
			t.Errorf("expected MalformedLinkError carrying %q, got %v", link, err)
		}
	}
}

func TestSiteName_StripWWWIdempotent(t *testing.T) {
	tests := []struct {
		link string
		want string
	}{
		{"https://www.example.com/a", "example.com"},
		{"https://example.com/a", "example.com"},
		{"https://news.www.example.com", "news.www.example.com"},
		{"https://www.example.com:8443/a", "example.com"},
		{"https://WWW.Example.com/a", "example.com"},
	}
	for _, tt := range tests {
		got, err := SiteName(tt.link)
		if err != nil {
			t.Fatalf("%s: %v", tt.link, err)
		}
		if got != tt.want {
			t.Errorf("SiteName(%q) = %q, want %q", tt.link, got, tt.want)
		}
		again, _ := SiteName("https://" + got)
		if again != got {
			t.Errorf("stripping not idempotent: %q -> %q", got, again)
		}
	}
}

func TestFirstWords(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"one", "one"},
		{"one two three", "one two"},
		{"  spaced\tout\nwords ", "spaced out"},
	}
	for _, tt := range tests {
		if got := FirstWords(tt.in, 2); got != tt.want {
			t.Errorf("FirstWords(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
