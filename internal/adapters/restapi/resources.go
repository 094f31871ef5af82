package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/stagepass/portal/internal/domain/resource"
	"github.com/stagepass/portal/internal/ports"
)

var _ ports.ResourceClient = (*Client)(nil)

// List fetches a collection and normalizes its envelope.
func (c *Client) List(ctx context.Context, token string, res resource.Resource) ([]resource.Item, error) {
	doc, err := c.doJSON(ctx, call{method: http.MethodGet, path: res.APIPath, endpoint: res.APIPath, token: token})
	if err != nil {
		return nil, err
	}
	list, ok := extractList(doc, string(res.Kind))
	if !ok {
		return nil, fmt.Errorf("list %s: response has no %s array", res.Kind, res.Kind)
	}
	items := make([]resource.Item, 0, len(list))
	for _, raw := range list {
		item, err := toItem(raw)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", res.Kind, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// Get fetches one record.
func (c *Client) Get(ctx context.Context, token string, res resource.Resource, id string) (resource.Item, error) {
	doc, err := c.doJSON(ctx, call{
		method:   http.MethodGet,
		path:     idPath(res.APIPath, id),
		endpoint: res.APIPath + "/:id",
		token:    token,
	})
	if err != nil {
		return resource.Item{}, err
	}
	return singleItem(doc, res)
}

// Create posts body as JSON.
func (c *Client) Create(ctx context.Context, token string, res resource.Resource, body any) (resource.Item, error) {
	req, err := jsonCall(http.MethodPost, res.APIPath, token, body)
	if err != nil {
		return resource.Item{}, err
	}
	doc, err := c.doJSON(ctx, req)
	if err != nil {
		return resource.Item{}, err
	}
	return singleItem(doc, res)
}

// Update puts body as JSON.
func (c *Client) Update(ctx context.Context, token string, res resource.Resource, id string, body any) (resource.Item, error) {
	req, err := jsonCall(http.MethodPut, idPath(res.APIPath, id), token, body)
	if err != nil {
		return resource.Item{}, err
	}
	req.endpoint = res.APIPath + "/:id"
	doc, err := c.doJSON(ctx, req)
	if err != nil {
		return resource.Item{}, err
	}
	return singleItem(doc, res)
}

// Delete removes one record.
func (c *Client) Delete(ctx context.Context, token string, res resource.Resource, id string) error {
	_, err := c.do(ctx, call{
		method:   http.MethodDelete,
		path:     idPath(res.APIPath, id),
		endpoint: res.APIPath + "/:id",
		token:    token,
	})
	return err
}

// Upload sends file as multipart/form-data to the collection.
func (c *Client) Upload(ctx context.Context, token string, res resource.Resource, file ports.Upload) (resource.Item, error) {
	if !res.Uploadable {
		return resource.Item{}, fmt.Errorf("%s does not accept uploads", res.Kind)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	field := file.Field
	if field == "" {
		field = "file"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, file.Filename))
	ct := file.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)

	part, err := mw.CreatePart(h)
	if err != nil {
		return resource.Item{}, fmt.Errorf("create upload part: %w", err)
	}
	if _, err := io.Copy(part, file.Body); err != nil {
		return resource.Item{}, fmt.Errorf("copy upload body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return resource.Item{}, fmt.Errorf("close multipart writer: %w", err)
	}

	doc, err := c.doJSON(ctx, call{
		method:      http.MethodPost,
		path:        res.APIPath,
		endpoint:    res.APIPath,
		token:       token,
		body:        &buf,
		contentType: mw.FormDataContentType(),
	})
	if err != nil {
		return resource.Item{}, err
	}
	return singleItem(doc, res)
}

func singleItem(doc any, res resource.Resource) (resource.Item, error) {
	obj, ok := extractObject(doc, singular(string(res.Kind)))
	if !ok {
		return resource.Item{}, nil
	}
	return toItem(obj)
}

func toItem(raw any) (resource.Item, error) {
	b, err := json.Marshal(raw)
	if err != nil {
		return resource.Item{}, fmt.Errorf("encode item: %w", err)
	}
	var item resource.Item
	if err := json.Unmarshal(b, &item); err != nil {
		return resource.Item{}, err
	}
	return item, nil
}

func singular(name string) string {
	switch {
	case strings.HasSuffix(name, "ies"):
		return strings.TrimSuffix(name, "ies") + "y"
	case strings.HasSuffix(name, "s"):
		return strings.TrimSuffix(name, "s")
	default:
		return name
	}
}
