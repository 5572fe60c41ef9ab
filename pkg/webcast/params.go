package webcast

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// CookieSource отдаёт значение заголовка Cookie для сессии.
type CookieSource interface {
	CookieString() string
}

// CookieString - готовая строка заголовка Cookie.
type CookieString string

func (c CookieString) CookieString() string {
	return string(c)
}

// JarCookies берёт куки для URL из http.CookieJar.
type JarCookies struct {
	Jar http.CookieJar
	URL *url.URL
}

func (j JarCookies) CookieString() string {
	if j.Jar == nil || j.URL == nil {
		return ""
	}

	cookies := j.Jar.Cookies(j.URL)
	parts := make([]string, 0, len(cookies))

	for _, c := range cookies {
		parts = append(parts, c.Name+"="+c.Value)
	}

	return strings.Join(parts, "; ")
}

// mergeParams объединяет параметры клиента и сессии, при совпадении ключей
// побеждает sessionParams.
func mergeParams(clientParams, sessionParams map[string]string) url.Values {
	values := make(url.Values, len(clientParams)+len(sessionParams))

	for k, v := range clientParams {
		values.Set(k, v)
	}

	for k, v := range sessionParams {
		values.Set(k, v)
	}

	return values
}

// buildURL добавляет параметры к query строке адреса. Параметры, уже
// присутствующие в адресе, сохраняются, если не переопределены.
func buildURL(rawURL string, params url.Values) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}

	query := u.Query()
	for k, vs := range params {
		query[k] = vs
	}

	u.RawQuery = query.Encode()

	return u.String(), nil
}

// buildHeader собирает заголовки запроса: Cookie, затем extra поверх.
func buildHeader(cookies CookieSource, extra map[string]string) http.Header {
	header := http.Header{}

	if cookies != nil {
		if c := cookies.CookieString(); c != "" {
			header.Set("Cookie", c)
		}
	}

	for k, v := range extra {
		header.Set(k, v)
	}

	return header
}
