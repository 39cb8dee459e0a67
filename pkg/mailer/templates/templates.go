package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
	"reflect"
	"strconv"
	"strings"
	texttpl "text/template"
	"time"

	"golang.org/x/text/currency"
)

//go:embed *.tmpl
var FS embed.FS

const (
	PaymentReceipt = "payment_receipt"
)

// ReceiptData is the data every payment template renders from.
type ReceiptData struct {
	AppName    string    `json:"AppName"`
	Email      string    `json:"Email"`
	PaymentID  string    `json:"PaymentID"`
	Amount     int64     `json:"Amount"`
	Currency   string    `json:"Currency"`
	PaidAt     time.Time `json:"PaidAt"`
	SupportURL string    `json:"SupportURL"`
}

// defaultFn supports pipe usage: {{ .Value | default "Fallback" }}
func defaultFn(fallback any, value any) any {
	switch x := value.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return fallback
		}
		return x
	case nil:
		return fallback
	default:
		rv := reflect.ValueOf(value)
		if !rv.IsValid() || rv.IsZero() {
			return fallback
		}
		return value
	}
}

// FormatAmount renders a minor-unit amount in the currency's standard scale,
// e.g. 5000 usd -> "USD 50.00", 5000 jpy -> "JPY 5000".
func FormatAmount(amount int64, code string) string {
	unit, err := currency.ParseISO(strings.ToUpper(code))
	if err != nil {
		return fmt.Sprintf("%d %s", amount, strings.ToUpper(code))
	}
	scale, _ := currency.Standard.Rounding(unit)

	sign := ""
	if amount < 0 {
		sign, amount = "-", -amount
	}
	digits := strconv.FormatInt(amount, 10)
	if scale > 0 {
		if len(digits) <= scale {
			digits = strings.Repeat("0", scale-len(digits)+1) + digits
		}
		cut := len(digits) - scale
		digits = digits[:cut] + "." + digits[cut:]
	}
	return unit.String() + " " + sign + digits
}

func baseFuncs() map[string]any {
	return map[string]any{
		"formatTime":   func(t time.Time, layout string) string { return t.UTC().Format(layout) },
		"formatAmount": FormatAmount,
		"upper":        strings.ToUpper,
		"default":      defaultFn,
	}
}

var (
	htmlFuncMap = htmpl.FuncMap(baseFuncs())
	textFuncMap = texttpl.FuncMap(baseFuncs())
)

func renderFile(filename string, isHTML bool, data any) (string, error) {
	var (
		buf bytes.Buffer
		err error
	)

	if isHTML {
		tpl, e := htmpl.New(filename).Funcs(htmlFuncMap).ParseFS(FS, filename)
		if e != nil {
			return "", fmt.Errorf("parse html %q: %w", filename, e)
		}
		err = tpl.Execute(&buf, data)
	} else {
		tpl, e := texttpl.New(filename).Funcs(textFuncMap).ParseFS(FS, filename)
		if e != nil {
			return "", fmt.Errorf("parse text %q: %w", filename, e)
		}
		err = tpl.Execute(&buf, data)
	}
	if err != nil {
		return "", fmt.Errorf("exec %q: %w", filename, err)
	}
	return buf.String(), nil
}

// Render loads and renders subject, text, and html templates for the given base name.
// Expects: <name>.subject.tmpl, <name>.text.tmpl, <name>.html.tmpl
func Render(name string, data any) (subject string, text string, html string, err error) {
	subject, err = renderFile(name+".subject.tmpl", false, data)
	if err != nil {
		return "", "", "", err
	}
	text, err = renderFile(name+".text.tmpl", false, data)
	if err != nil {
		return "", "", "", err
	}
	html, err = renderFile(name+".html.tmpl", true, data)
	if err != nil {
		return "", "", "", err
	}
	return strings.TrimSpace(subject), text, html, nil
}
