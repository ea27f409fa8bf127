package web

import (
	"net/http"
	"strings"

	"golang.org/x/text/language"

	"github.com/urbanhaven/storefront/internal/platform/i18n"
)

// Cookie names for browser-side state.
const (
	sessionCookieName = "uh_session"
	langCookieName    = "uh_lang"
	themeCookieName   = "uh_theme"
)

// Theme values carried by the theme cookie.
const (
	themeLight = "light"
	themeDark  = "dark"
)

func readCookie(r *http.Request, name string) (string, bool) {
	if r == nil {
		return "", false
	}
	cookie, err := r.Cookie(name)
	if err != nil || cookie == nil {
		return "", false
	}
	value := strings.TrimSpace(cookie.Value)
	if value == "" {
		return "", false
	}
	return value, true
}

func writeSessionCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    strings.TrimSpace(token),
		Path:     "/",
		HttpOnly: true,
		Secure:   r != nil && r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   r != nil && r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func writeLangCookie(w http.ResponseWriter, tag language.Tag) {
	http.SetCookie(w, &http.Cookie{
		Name:     langCookieName,
		Value:    tag.String(),
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   365 * 24 * 60 * 60,
	})
}

func writeThemeCookie(w http.ResponseWriter, theme string) {
	http.SetCookie(w, &http.Cookie{
		Name:     themeCookieName,
		Value:    theme,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   365 * 24 * 60 * 60,
	})
}

// resolveTheme returns the visitor's theme, defaulting to light.
func resolveTheme(r *http.Request) string {
	if value, ok := readCookie(r, themeCookieName); ok && value == themeDark {
		return themeDark
	}
	return themeLight
}

// resolveLocale determines the best locale for the request: the lang query
// parameter wins (and should be persisted by the caller), then the locale
// cookie, then the stored preference, then Accept-Language, then default.
// The bool reports whether the value came from the query parameter.
func (h handlers) resolveLocale(r *http.Request) (language.Tag, bool) {
	if r == nil {
		return i18n.DefaultTag(), false
	}

	if value := strings.TrimSpace(r.URL.Query().Get("lang")); value != "" {
		if tag, ok := i18n.ParseTag(value); ok {
			return tag, true
		}
	}

	if value, ok := readCookie(r, langCookieName); ok {
		if tag, ok := i18n.ParseTag(value); ok {
			return tag, false
		}
	}

	if stored := h.storedLocale(r.Context()); stored != "" {
		if tag, ok := i18n.ParseTag(stored); ok {
			return tag, false
		}
	}

	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil {
			return i18n.MatchTags(tags), false
		}
	}

	return i18n.DefaultTag(), false
}
