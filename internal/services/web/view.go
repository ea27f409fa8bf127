package web

import (
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"

	"golang.org/x/text/language"

	"github.com/urbanhaven/storefront/internal/auth"
	"github.com/urbanhaven/storefront/internal/cart"
	"github.com/urbanhaven/storefront/internal/catalog"
	"github.com/urbanhaven/storefront/internal/platform/i18n"
)

//go:embed templates/*.html
var templatesFS embed.FS

// pageNames lists the renderable pages; each pairs layout.html with its own
// template file.
var pageNames = []string{"home", "shop", "product", "cart", "login", "signup", "checkout"}

// views renders the storefront pages.
type views struct {
	bundle *i18n.Bundle
	pages  map[string]*template.Template
}

func newViews(bundle *i18n.Bundle) (*views, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.ParseFS(templatesFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s templates: %w", name, err)
		}
		pages[name] = tmpl
	}
	return &views{bundle: bundle, pages: pages}, nil
}

func (v *views) render(w http.ResponseWriter, name string, data pageData) {
	v.renderStatus(w, http.StatusOK, name, data)
}

func (v *views) renderStatus(w http.ResponseWriter, status int, name string, data pageData) {
	tmpl, ok := v.pages[name]
	if !ok {
		log.Printf("unknown page template %q", name)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		log.Printf("render %s: %v", name, err)
	}
}

// pageData carries everything the layout and pages need per request.
type pageData struct {
	Loc   i18n.Localizer
	Lang  string
	Dir   string
	Theme string

	Session   *auth.Session
	CartCount int

	// Catalog pages.
	Products   []catalog.Product
	Product    *catalog.Product
	Categories []string
	Filter     catalog.Filter
	Sort       string
	NotFound   bool

	// Cart and checkout pages.
	Lines       []cart.Line
	Totals      cart.Totals
	OrderPlaced bool

	// Forms.
	Form        map[string]string
	FormError   string
	FieldErrors map[string]string
	Redirect    string
}

func newPageData(bundle *i18n.Bundle, tag language.Tag, theme string) pageData {
	return pageData{
		Loc:   bundle.Localizer(tag),
		Lang:  tag.String(),
		Dir:   i18n.Dir(tag),
		Theme: theme,
	}
}

// OtherLang returns the locale the toggle switches to.
func (d pageData) OtherLang() string {
	if d.Lang == "ar" {
		return "en-US"
	}
	return "ar"
}
