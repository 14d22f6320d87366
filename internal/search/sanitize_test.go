package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"script then paragraph", "<script>x</script><p>Hello &amp; world</p>", "Hello & world"},
		{"style with attributes, multi-line", "<STYLE type=\"text/css\">\nbody { color: red; }\n</Style><div>Text</div>", "Text"},
		{"script with attributes", `<script src="a.js" async>var a = "<b>";</script>ok`, "ok"},
		{"whitespace collapsed", "<p>a\n\n\t b</p>   <p>c</p>", "a b c"},
		{"entities", "&lt;tag&gt; &quot;q&quot; it&#39;s", `<tag> "q" it's`},
		{"nbsp decoded after collapse", "a&nbsp;b", "a b"},
		{"truncated inside script", "<p>Hi</p><script>var secret = 1; alert(x)", "Hi"},
		{"truncated inside style", "<p>Hi</p><style type=\"text/css\">\nbody { color", "Hi"},
		{"closed script before truncated one", "<script>a</script>ok<script>b", "ok"},
		{"plain text", "  just text  ", "just text"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestRegistrableDomain(t *testing.T) {
	assert.Equal(t, "example.com", RegistrableDomain("www.example.com"))
	assert.Equal(t, "example.com", RegistrableDomain("WWW.Example.com"))
	assert.Equal(t, "news.example.com", RegistrableDomain("news.example.com"))
}
