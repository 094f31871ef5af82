// Package pages holds the gomponents views rendered inside (or, for public pages, instead of) the shell.
package pages

import (
	"strconv"

	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"
)

// field renders a labelled input with its error message, if any.
func field(name, label, typ, value, errMsg string) g.Node {
	id := "field-" + name
	return html.Div(
		html.Class("field"),
		html.Label(html.For(id), g.Text(label)),
		html.Input(
			html.ID(id),
			html.Name(name),
			html.Type(typ),
			g.If(typ != "password", html.Value(value)),
			g.If(errMsg != "", g.Attr("aria-invalid", "true")),
		),
		fieldError(errMsg),
	)
}

func textarea(name, label, value, errMsg string, rows int) g.Node {
	id := "field-" + name
	return html.Div(
		html.Class("field"),
		html.Label(html.For(id), g.Text(label)),
		html.Textarea(
			html.ID(id),
			html.Name(name),
			g.Attr("rows", strconv.Itoa(rows)),
			g.If(errMsg != "", g.Attr("aria-invalid", "true")),
			g.Text(value),
		),
		fieldError(errMsg),
	)
}

func fieldError(msg string) g.Node {
	if msg == "" {
		return nil
	}
	return html.P(html.Class("field-error"), g.Attr("role", "alert"), g.Text(msg))
}

// Alert renders an inline error banner.
func Alert(msg string) g.Node {
	if msg == "" {
		return nil
	}
	return html.Div(html.Class("alert alert-error"), g.Attr("role", "alert"), g.Text(msg))
}

// inFlightDisable disables a form's buttons while its request is pending.
func inFlightDisable() g.Node { return g.Attr("hx-disabled-elt", "find button") }
