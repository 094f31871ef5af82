package pages

import (
	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"

	"github.com/stagepass/portal/internal/http/ui/shell"
)

// ContactFormID is the swap target for htmx contact posts.
const ContactFormID = "contact-form"

// ContactView is the contact form state.
type ContactView struct {
	Name, Email, Subject, Message string

	Fields    map[string]string
	Sent      bool
	CSRFToken string
}

// ContactPage renders the public contact document.
func ContactPage(v ContactView) g.Node {
	return shell.Document(shell.DocumentProps{Title: "Contact", CSRFToken: v.CSRFToken},
		html.Main(html.Class("contact"),
			html.H1(g.Text("Contact us")),
			ContactForm(v),
		),
	)
}

// ContactForm is the swappable form fragment. A sent form is replaced by a confirmation.
func ContactForm(v ContactView) g.Node {
	if v.Sent {
		return html.Div(html.ID(ContactFormID), html.Class("contact-sent"),
			html.P(g.Text("Thanks, your message is on its way. We'll reply by email.")),
		)
	}
	return html.Form(
		html.ID(ContactFormID),
		html.Method("post"),
		html.Action("/contact"),
		g.Attr("hx-post", "/contact"),
		g.Attr("hx-target", "#"+ContactFormID),
		g.Attr("hx-swap", "outerHTML"),
		inFlightDisable(),
		g.Attr("novalidate"),
		shell.CSRFField(v.CSRFToken),
		field("name", "Name", "text", v.Name, v.Fields["name"]),
		field("email", "Email", "email", v.Email, v.Fields["email"]),
		field("subject", "Subject", "text", v.Subject, v.Fields["subject"]),
		textarea("message", "Message", v.Message, v.Fields["message"], 6),
		html.Button(html.Type("submit"), g.Text("Send")),
	)
}
