package mail

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Template names
const (
	TemplateEmailConfirmation  = "email_confirmation"
	TemplatePasswordReset      = "password_reset"
	TemplateOrderPlaced        = "order_placed"
	TemplateNewOrder           = "new_order"
	TemplateOrderStatusChanged = "order_status_changed"
	TemplateLowStockAlert      = "low_stock_alert"
)

// TokenEmail is the data for confirmation and password reset mails
type TokenEmail struct {
	Name      string
	Link      string
	ExpiresIn string
}

// OrderLine is one order item as shown in mail
type OrderLine struct {
	Name      string
	SKU       string
	Quantity  int
	UnitPrice string
	LineTotal string
}

// OrderEmail is the data for every order mail
type OrderEmail struct {
	CustomerName string
	StoreName    string
	OrderNumber  string
	Status       string
	Items        []OrderLine
	Subtotal     string
	Shipping     string
	Total        string
	Link         string
}

// StockAlertEmail is the data for low stock alerts
type StockAlertEmail struct {
	StoreName    string
	ProductName  string
	VariantTitle string
	SKU          string
	Available    int
	Threshold    int
	OutOfStock   bool
	Link         string
}

type compiled struct {
	html *htmltemplate.Template
	text *texttemplate.Template
}

// Renderer renders the embedded templates. Each file defines
// "subject", "text" and "html".
type Renderer struct {
	templates map[string]compiled
}

// NewRenderer parses every embedded template
func NewRenderer() (*Renderer, error) {
	names := []string{
		TemplateEmailConfirmation,
		TemplatePasswordReset,
		TemplateOrderPlaced,
		TemplateNewOrder,
		TemplateOrderStatusChanged,
		TemplateLowStockAlert,
	}
	r := &Renderer{templates: make(map[string]compiled, len(names))}
	for _, name := range names {
		path := "templates/" + name + ".tmpl"
		h, err := htmltemplate.ParseFS(templateFS, path)
		if err != nil {
			return nil, fmt.Errorf("parse html template %s: %w", name, err)
		}
		t, err := texttemplate.ParseFS(templateFS, path)
		if err != nil {
			return nil, fmt.Errorf("parse text template %s: %w", name, err)
		}
		r.templates[name] = compiled{html: h, text: t}
	}
	return r, nil
}

// Render produces a message addressed to to
func (r *Renderer) Render(name string, data any, to ...string) (Message, error) {
	tpl, ok := r.templates[name]
	if !ok {
		return Message{}, fmt.Errorf("unknown mail template %q", name)
	}

	var subject, text, html bytes.Buffer
	if err := tpl.text.ExecuteTemplate(&subject, "subject", data); err != nil {
		return Message{}, fmt.Errorf("render %s subject: %w", name, err)
	}
	if err := tpl.text.ExecuteTemplate(&text, "text", data); err != nil {
		return Message{}, fmt.Errorf("render %s text: %w", name, err)
	}
	if err := tpl.html.ExecuteTemplate(&html, "html", data); err != nil {
		return Message{}, fmt.Errorf("render %s html: %w", name, err)
	}

	return Message{
		To:      to,
		Subject: strings.TrimSpace(subject.String()),
		Text:    strings.TrimSpace(text.String()),
		HTML:    strings.TrimSpace(html.String()),
	}, nil
}
