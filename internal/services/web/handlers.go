package web

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/urbanhaven/storefront/internal/auth"
	"github.com/urbanhaven/storefront/internal/cart"
	"github.com/urbanhaven/storefront/internal/catalog"
	"github.com/urbanhaven/storefront/internal/checkout"
	apperrors "github.com/urbanhaven/storefront/internal/platform/errors"
	"github.com/urbanhaven/storefront/internal/platform/httpx"
	"github.com/urbanhaven/storefront/internal/platform/i18n"
	"github.com/urbanhaven/storefront/internal/storage"
)

// featuredLimit caps the home page product strip.
const featuredLimit = 8

// catalogReader is the slice of the catalog client the handlers use.
type catalogReader interface {
	Products(ctx context.Context) ([]catalog.Product, error)
	Product(ctx context.Context, id int) (catalog.Product, error)
	Featured(ctx context.Context, limit int) ([]catalog.Product, error)
}

type handlers struct {
	catalog  catalogReader
	cart     *cart.Service
	auth     *auth.Service
	checkout *checkout.Service
	issuer   *auth.TokenIssuer
	store    storage.KV
	views    *views
}

// session resolves the visitor identity from the session cookie. Any
// verification failure is anonymous, never an error page.
func (h handlers) session(r *http.Request) (auth.Session, bool) {
	token, ok := readCookie(r, sessionCookieName)
	if !ok {
		return auth.Session{}, false
	}
	session, err := h.issuer.Verify(token)
	if err != nil {
		return auth.Session{}, false
	}
	return session, true
}

// storedLocale reads the persisted locale preference, degrading to empty.
func (h handlers) storedLocale(ctx context.Context) string {
	payload, err := h.store.Load(ctx, storage.KeyLocale)
	if err != nil {
		return ""
	}
	var locale string
	if err := json.Unmarshal(payload, &locale); err != nil {
		return ""
	}
	return locale
}

func (h handlers) page(w http.ResponseWriter, r *http.Request) pageData {
	tag, fromQuery := h.resolveLocale(r)
	if fromQuery {
		writeLangCookie(w, tag)
	}

	data := newPageData(h.views.bundle, tag, resolveTheme(r))
	if session, ok := h.session(r); ok {
		data.Session = &session
	}
	data.CartCount = h.cart.Totals().ItemCount
	return data
}

func (h handlers) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	ctx := httpx.RequestContext(r)
	data := h.page(w, r)

	// A failed catalog read leaves the sections empty; there is no retry
	// and no error banner.
	featured, err := h.catalog.Featured(ctx, featuredLimit)
	if err != nil {
		log.Printf("featured products unavailable: %v", err)
	}
	data.Products = featured
	data.Categories = catalog.Categories(featured)

	h.views.render(w, "home", data)
}

func (h handlers) handleShop(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.RequestContext(r)
	data := h.page(w, r)

	products, err := h.catalog.Products(ctx)
	if err != nil {
		log.Printf("product listing unavailable: %v", err)
	}

	query := r.URL.Query()
	filter := catalog.Filter{
		Query:    query.Get("q"),
		Category: query.Get("category"),
		MinPrice: parsePrice(query.Get("min")),
		MaxPrice: parsePrice(query.Get("max")),
	}
	order := catalog.ParseSortOrder(query.Get("sort"))

	data.Categories = catalog.Categories(products)
	data.Products = catalog.Sort(filter.Apply(products), order)
	data.Filter = filter
	data.Sort = string(order)

	h.views.render(w, "shop", data)
}

func (h handlers) handleProduct(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.RequestContext(r)
	data := h.page(w, r)

	id, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/product/"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	product, err := h.catalog.Product(ctx, id)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			data.NotFound = true
			h.views.renderStatus(w, http.StatusNotFound, "product", data)
			return
		}
		log.Printf("product %d unavailable: %v", id, err)
		data.NotFound = true
		h.views.render(w, "product", data)
		return
	}

	data.Product = &product
	h.views.render(w, "product", data)
}

func (h handlers) handleCart(w http.ResponseWriter, r *http.Request) {
	data := h.page(w, r)
	data.Lines = h.cart.Lines()
	data.Totals = h.cart.Totals()
	h.views.render(w, "cart", data)
}

func (h handlers) handleCartAdd(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.RequestContext(r)

	id, ok := formInt(r, "id")
	if !ok {
		httpx.WriteError(w, apperrors.E(apperrors.KindInvalidInput, "product id is required"))
		return
	}
	product, err := h.catalog.Product(ctx, id)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if err := h.cart.Add(ctx, product); err != nil {
		httpx.WriteError(w, err)
		return
	}
	redirectBack(w, r, "/cart")
}

func (h handlers) handleCartRemove(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.RequestContext(r)

	id, ok := formInt(r, "id")
	if !ok {
		httpx.WriteError(w, apperrors.E(apperrors.KindInvalidInput, "product id is required"))
		return
	}
	if err := h.cart.Remove(ctx, id); err != nil {
		httpx.WriteError(w, err)
		return
	}
	redirectBack(w, r, "/cart")
}

func (h handlers) handleCartQuantity(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.RequestContext(r)

	id, ok := formInt(r, "id")
	if !ok {
		httpx.WriteError(w, apperrors.E(apperrors.KindInvalidInput, "product id is required"))
		return
	}
	quantity, ok := formInt(r, "quantity")
	if !ok {
		httpx.WriteError(w, apperrors.E(apperrors.KindInvalidInput, "quantity is required"))
		return
	}
	if err := h.cart.SetQuantity(ctx, id, quantity); err != nil {
		httpx.WriteError(w, err)
		return
	}
	redirectBack(w, r, "/cart")
}

func (h handlers) handleLoginGet(w http.ResponseWriter, r *http.Request) {
	data := h.page(w, r)
	data.Redirect = safeRedirect(r.URL.Query().Get("redirect"))
	h.views.render(w, "login", data)
}

func (h handlers) handleLoginPost(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.RequestContext(r)
	if err := r.ParseForm(); err != nil {
		httpx.WriteError(w, apperrors.E(apperrors.KindInvalidInput, "failed to parse login form"))
		return
	}

	session, err := h.auth.Login(ctx, r.FormValue("email"), r.FormValue("password"))
	if err != nil {
		data := h.page(w, r)
		data.Form = map[string]string{"email": r.FormValue("email")}
		data.FormError = h.localizeError(data, err)
		data.Redirect = safeRedirect(r.FormValue("redirect"))
		h.views.renderStatus(w, apperrors.HTTPStatus(err), "login", data)
		return
	}

	h.startSession(w, r, session)
	http.Redirect(w, r, safeRedirectOr(r.FormValue("redirect"), "/"), http.StatusFound)
}

func (h handlers) handleSignupGet(w http.ResponseWriter, r *http.Request) {
	data := h.page(w, r)
	data.Redirect = safeRedirect(r.URL.Query().Get("redirect"))
	h.views.render(w, "signup", data)
}

func (h handlers) handleSignupPost(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.RequestContext(r)
	if err := r.ParseForm(); err != nil {
		httpx.WriteError(w, apperrors.E(apperrors.KindInvalidInput, "failed to parse signup form"))
		return
	}

	session, err := h.auth.Signup(ctx, r.FormValue("name"), r.FormValue("email"), r.FormValue("password"))
	if err != nil {
		data := h.page(w, r)
		data.Form = map[string]string{
			"name":  r.FormValue("name"),
			"email": r.FormValue("email"),
		}
		data.FormError = h.localizeError(data, err)
		data.Redirect = safeRedirect(r.FormValue("redirect"))
		h.views.renderStatus(w, apperrors.HTTPStatus(err), "signup", data)
		return
	}

	h.startSession(w, r, session)
	http.Redirect(w, r, safeRedirectOr(r.FormValue("redirect"), "/"), http.StatusFound)
}

func (h handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.RequestContext(r)
	if err := h.auth.Logout(ctx); err != nil {
		log.Printf("logout: %v", err)
	}
	clearSessionCookie(w, r)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h handlers) handleCheckoutGet(w http.ResponseWriter, r *http.Request) {
	data := h.page(w, r)
	if data.Session == nil {
		http.Redirect(w, r, "/login?redirect=/checkout", http.StatusFound)
		return
	}

	data.Lines = h.cart.Lines()
	data.Totals = h.cart.Totals()
	h.views.render(w, "checkout", data)
}

func (h handlers) handleCheckoutPost(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.RequestContext(r)
	data := h.page(w, r)
	if data.Session == nil {
		http.Redirect(w, r, "/login?redirect=/checkout", http.StatusFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.WriteError(w, apperrors.E(apperrors.KindInvalidInput, "failed to parse checkout form"))
		return
	}

	form := checkout.Form{
		Name:       r.FormValue("name"),
		Email:      r.FormValue("email"),
		Address:    r.FormValue("address"),
		City:       r.FormValue("city"),
		Zip:        checkout.Normalize(checkout.FieldZip, r.FormValue("zip")),
		CardNumber: checkout.Normalize(checkout.FieldCardNumber, r.FormValue("cardNumber")),
		Expiry:     checkout.Normalize(checkout.FieldExpiry, r.FormValue("expiry")),
		CVV:        checkout.Normalize(checkout.FieldCVV, r.FormValue("cvv")),
	}

	fieldErrors, err := h.checkout.Submit(ctx, form)
	if err != nil && len(fieldErrors) > 0 {
		data.Lines = h.cart.Lines()
		data.Totals = h.cart.Totals()
		data.Form = checkoutFormValues(form)
		data.FieldErrors = h.localizeFields(data, fieldErrors)
		h.views.renderStatus(w, http.StatusBadRequest, "checkout", data)
		return
	}
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	data.OrderPlaced = true
	data.Lines = nil
	data.Totals = cart.Totals{}
	data.CartCount = 0
	h.views.render(w, "checkout", data)
}

func (h handlers) handleLocale(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.RequestContext(r)
	if err := r.ParseForm(); err != nil {
		httpx.WriteError(w, apperrors.E(apperrors.KindInvalidInput, "failed to parse locale form"))
		return
	}

	tag, ok := i18n.ParseTag(r.FormValue("lang"))
	if !ok {
		httpx.WriteError(w, apperrors.E(apperrors.KindInvalidInput, "unsupported locale"))
		return
	}

	writeLangCookie(w, tag)
	payload, err := json.Marshal(tag.String())
	if err == nil {
		if err := h.store.Save(ctx, storage.KeyLocale, payload); err != nil {
			log.Printf("persist locale: %v", err)
		}
	}
	redirectBack(w, r, "/")
}

func (h handlers) handleTheme(w http.ResponseWriter, r *http.Request) {
	next := themeDark
	if resolveTheme(r) == themeDark {
		next = themeLight
	}
	writeThemeCookie(w, next)
	redirectBack(w, r, "/")
}

func (h handlers) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h handlers) startSession(w http.ResponseWriter, r *http.Request, session auth.Session) {
	token, err := h.issuer.Issue(session)
	if err != nil {
		log.Printf("issue session token: %v", err)
		return
	}
	writeSessionCookie(w, r, token)
}

func (h handlers) localizeError(data pageData, err error) string {
	if key := apperrors.LocalizationKey(err); key != "" {
		return data.Loc.T(key)
	}
	return err.Error()
}

func (h handlers) localizeFields(data pageData, fieldErrors map[string]string) map[string]string {
	localized := make(map[string]string, len(fieldErrors))
	for field, key := range fieldErrors {
		localized[field] = data.Loc.T(key)
	}
	return localized
}

func checkoutFormValues(form checkout.Form) map[string]string {
	return map[string]string{
		"name":       form.Name,
		"email":      form.Email,
		"address":    form.Address,
		"city":       form.City,
		"zip":        form.Zip,
		"cardNumber": form.CardNumber,
		"expiry":     form.Expiry,
		"cvv":        form.CVV,
	}
}

func formInt(r *http.Request, field string) (int, bool) {
	if err := r.ParseForm(); err != nil {
		return 0, false
	}
	value, err := strconv.Atoi(strings.TrimSpace(r.FormValue(field)))
	if err != nil {
		return 0, false
	}
	return value, true
}

func parsePrice(value string) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || parsed < 0 {
		return 0
	}
	return parsed
}

// safeRedirect keeps redirects on-site.
func safeRedirect(value string) string {
	value = strings.TrimSpace(value)
	if !strings.HasPrefix(value, "/") || strings.HasPrefix(value, "//") {
		return ""
	}
	return value
}

func safeRedirectOr(value, fallback string) string {
	if safe := safeRedirect(value); safe != "" {
		return safe
	}
	return fallback
}

func redirectBack(w http.ResponseWriter, r *http.Request, fallback string) {
	target := fallback
	if referer := safeRefererPath(r); referer != "" {
		target = referer
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func safeRefererPath(r *http.Request) string {
	if r == nil {
		return ""
	}
	referer := r.Header.Get("Referer")
	if referer == "" {
		return ""
	}
	parsed, err := r.URL.Parse(referer)
	if err != nil || parsed.Host != r.Host {
		return ""
	}
	return safeRedirect(parsed.RequestURI())
}
