// Package views renders the site pages. Each page is parsed together with the shared layout.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/gin-gonic/gin/render"

	"transfers/internal/domain/models"
	"transfers/internal/i18n"
	"transfers/internal/utils"
)

//go:embed templates/*.html
var templates embed.FS

var pages = []string{"home", "booking", "services", "fleet", "login", "register", "contact", "error"}

// Page is the data every template receives.
type Page struct {
	Lang        string
	Langs       []string
	Path        string
	Title       string
	Session     models.Session
	ShowConsent bool
	Notice      string
	Error       string
	ErrorField  string
	Form        map[string]string

	// AnalyticsURL is only set once the visitor accepted cookies.
	AnalyticsURL string

	Draft    *models.BookingDraft
	Services []models.Service
	Vehicles []models.Vehicle
	Steps    []models.Step

	GeoEnabled bool
}

// Renderer implements gin's HTMLRender over the embedded templates.
type Renderer struct {
	pages map[string]*template.Template
}

func New(tr *i18n.Translator, currency string) (*Renderer, error) {
	funcs := template.FuncMap{
		"t": func(lang, key string, args ...any) string { return tr.T(lang, key, args...) },
		"price": func(amount float64) string {
			return utils.FormatPrice(amount, currency)
		},
		"currency": func() string { return currency },
		"upper":    strings.ToUpper,
		"stepIndex": func(s models.Step) int {
			return s.Index()
		},
		"field": func(form map[string]string, name string) string {
			return form[name]
		},
		"list": func(items ...string) []string { return items },
		"dict": func(kv ...any) map[string]any {
			m := make(map[string]any, len(kv)/2)
			for i := 0; i+1 < len(kv); i += 2 {
				if k, ok := kv[i].(string); ok {
					m[k] = kv[i+1]
				}
			}
			return m
		},
		"deref": func(s *models.Service) models.Service {
			if s == nil {
				return models.Service{}
			}
			return *s
		},
	}
	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}
	for _, p := range pages {
		t, err := template.New(p).Funcs(funcs).ParseFS(templates, "templates/layout.html", "templates/"+p+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", p, err)
		}
		r.pages[p] = t
	}
	return r, nil
}

func (r *Renderer) Instance(name string, data any) render.Render {
	t, ok := r.pages[name]
	if !ok {
		t = r.pages["error"]
	}
	return render.HTML{Template: t, Name: "layout", Data: data}
}
