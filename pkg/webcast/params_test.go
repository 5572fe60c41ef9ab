package webcast

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeParams_SessionWins(t *testing.T) {
	client := map[string]string{"aid": "1988", "room_id": "1", "app_name": "tiktok_web"}
	session := map[string]string{"room_id": "2", "cursor": "c-1"}

	merged := mergeParams(client, session)

	assert.Equal(t, url.Values{
		"aid":      {"1988"},
		"room_id":  {"2"},
		"app_name": {"tiktok_web"},
		"cursor":   {"c-1"},
	}, merged)
}

func TestMergeParams_Nil(t *testing.T) {
	assert.Empty(t, mergeParams(nil, nil))
	assert.Equal(t, "x", mergeParams(nil, map[string]string{"a": "x"}).Get("a"))
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		name   string
		rawURL string
		params url.Values
		want   url.Values
	}{
		{
			name:   "no existing query",
			rawURL: "wss://push.example.com/ws",
			params: url.Values{"a": {"1"}},
			want:   url.Values{"a": {"1"}},
		},
		{
			name:   "keeps existing params",
			rawURL: "wss://push.example.com/ws?version=2",
			params: url.Values{"a": {"1"}},
			want:   url.Values{"a": {"1"}, "version": {"2"}},
		},
		{
			name:   "merged params override existing",
			rawURL: "wss://push.example.com/ws?a=0",
			params: url.Values{"a": {"1"}},
			want:   url.Values{"a": {"1"}},
		},
		{
			name:   "escapes values",
			rawURL: "wss://push.example.com/ws",
			params: url.Values{"ua": {"Mozilla/5.0 (X11)"}},
			want:   url.Values{"ua": {"Mozilla/5.0 (X11)"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildURL(tt.rawURL, tt.params)
			require.NoError(t, err)

			u, err := url.Parse(got)
			require.NoError(t, err)
			assert.Equal(t, "/ws", u.Path)
			assert.Equal(t, tt.want, u.Query())
		})
	}
}

func TestBuildURL_Invalid(t *testing.T) {
	_, err := buildURL("://nope", nil)
	assert.Error(t, err)
}

func TestBuildHeader(t *testing.T) {
	h := buildHeader(CookieString("sessionid=abc"), map[string]string{
		"User-Agent": "agent",
	})
	assert.Equal(t, "sessionid=abc", h.Get("Cookie"))
	assert.Equal(t, "agent", h.Get("User-Agent"))

	h = buildHeader(CookieString("sessionid=abc"), map[string]string{"cookie": "override=1"})
	assert.Equal(t, []string{"override=1"}, h.Values("Cookie"))

	h = buildHeader(nil, nil)
	assert.Empty(t, h)

	h = buildHeader(CookieString(""), nil)
	assert.Empty(t, h.Get("Cookie"))
}

func TestJarCookies(t *testing.T) {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	u, err := url.Parse("https://www.example.com/")
	require.NoError(t, err)

	jar.SetCookies(u, []*http.Cookie{
		{Name: "sessionid", Value: "abc"},
		{Name: "tt-target-idc", Value: "eu"},
	})

	src := JarCookies{Jar: jar, URL: u}
	assert.Equal(t, "sessionid=abc; tt-target-idc=eu", src.CookieString())

	assert.Empty(t, JarCookies{}.CookieString())
}
