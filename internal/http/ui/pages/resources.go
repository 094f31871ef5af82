package pages

import (
	"strconv"

	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"

	"github.com/stagepass/portal/internal/domain/billing"
	"github.com/stagepass/portal/internal/domain/resource"
	"github.com/stagepass/portal/internal/http/ui/shell"
)

// ResourceListID is the swap target for resource list updates.
const ResourceListID = "resource-list"

// ResourceView is a role's collection page.
type ResourceView struct {
	Base     string
	Resource resource.Resource
	Items    []resource.Item
	// Remaining is the free upload slots, billing.Unlimited, or 0 when full.
	Remaining int
	// Draft and Fields refill the create form after a rejected submit.
	Draft     resource.Draft
	Fields    map[string]string
	Error     string
	CSRFToken string
}

// ResourceList renders a collection with delete controls plus the upload or create form.
func ResourceList(v ResourceView) g.Node {
	path := v.Base + "/" + string(v.Resource.Kind)
	return html.Section(
		html.ID(ResourceListID),
		html.Class("resource"),
		html.H2(g.Text(v.Resource.Label)),
		Alert(v.Error),
		g.If(v.Resource.Uploadable, uploadForm(v, path)),
		g.If(v.Resource.Editable, createForm(v, path)),
		g.If(len(v.Items) == 0, html.P(html.Class("empty"), g.Textf("No %s yet.", lowerLabel(v.Resource)))),
		g.If(len(v.Items) > 0, html.Ul(
			html.Class("items"),
			g.Map(v.Items, func(it resource.Item) g.Node {
				return itemRow(it, path, v.Resource.Editable)
			}),
		)),
	)
}

func itemRow(it resource.Item, path string, editable bool) g.Node {
	title := it.Title
	if title == "" {
		title = it.ID
	}
	return html.Li(
		html.ID("item-"+it.ID),
		html.Span(html.Class("title"), g.Text(title)),
		g.If(editable, html.A(html.Class("btn-edit"), html.Href(path+"/"+it.ID), g.Text("Edit"))),
		html.Button(
			html.Type("button"),
			html.Class("btn-delete"),
			g.Attr("hx-delete", path+"/"+it.ID),
			g.Attr("hx-target", "#"+ResourceListID),
			g.Attr("hx-swap", "outerHTML"),
			g.Attr("hx-disabled-elt", "this"),
			g.Attr("hx-confirm", "Delete "+title+"?"),
			g.Text("Delete"),
		),
	)
}

func uploadForm(v ResourceView, path string) g.Node {
	full := v.Remaining == 0
	return html.Form(
		html.Class("upload"),
		html.Method("post"),
		html.Action(path),
		html.EncType("multipart/form-data"),
		g.Attr("hx-post", path),
		g.Attr("hx-encoding", "multipart/form-data"),
		g.Attr("hx-target", "#"+ResourceListID),
		g.Attr("hx-swap", "outerHTML"),
		inFlightDisable(),
		shell.CSRFField(v.CSRFToken),
		html.Input(html.Type("file"), html.Name("file"), g.If(full, html.Disabled())),
		html.Button(html.Type("submit"), g.If(full, html.Disabled()), g.Text("Upload")),
		html.P(html.Class("slots"), g.Text(slotsLabel(v.Remaining))),
	)
}

func createForm(v ResourceView, path string) g.Node {
	return html.Form(
		html.Class("create"),
		html.Method("post"),
		html.Action(path),
		g.Attr("hx-post", path),
		g.Attr("hx-target", "#"+ResourceListID),
		g.Attr("hx-swap", "outerHTML"),
		inFlightDisable(),
		shell.CSRFField(v.CSRFToken),
		draftFields(v.Draft, v.Fields),
		html.Button(html.Type("submit"), g.Text("Add")),
	)
}

func draftFields(d resource.Draft, errs map[string]string) g.Node {
	return g.Group{
		field("title", "Title", "text", d.Title, errs["title"]),
		textarea("details", "Details", d.Details, errs["details"], 4),
	}
}

// ResourceEditID is the swap target for the edit form.
const ResourceEditID = "resource-edit"

// ResourceEditView is the edit page for one record.
type ResourceEditView struct {
	Base      string
	Resource  resource.Resource
	ID        string
	Draft     resource.Draft
	Fields    map[string]string
	Error     string
	CSRFToken string
}

// ResourceEdit renders the title and details editor for one record.
func ResourceEdit(v ResourceEditView) g.Node {
	list := v.Base + "/" + string(v.Resource.Kind)
	path := list + "/" + v.ID
	return html.Form(
		html.ID(ResourceEditID),
		html.Class("resource-edit"),
		html.Method("post"),
		html.Action(path),
		g.Attr("hx-post", path),
		g.Attr("hx-target", "#"+ResourceEditID),
		g.Attr("hx-swap", "outerHTML"),
		inFlightDisable(),
		html.H2(g.Textf("Edit %s", lowerLabel(v.Resource))),
		Alert(v.Error),
		shell.CSRFField(v.CSRFToken),
		draftFields(v.Draft, v.Fields),
		html.Button(html.Type("submit"), g.Text("Save")),
		html.A(html.Href(list), g.Text("Cancel")),
	)
}

func slotsLabel(remaining int) string {
	switch {
	case remaining == billing.Unlimited:
		return "Unlimited uploads"
	case remaining == 0:
		return "Limit reached. Upgrade to Pro for more."
	case remaining == 1:
		return "1 slot left"
	default:
		return strconv.Itoa(remaining) + " slots left"
	}
}

func lowerLabel(r resource.Resource) string {
	b := []byte(r.Label)
	if len(b) > 0 && b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}
