package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"crunchpunch/internal/composition"
)

// ValidationError reports a draft rejected locally before any request was made.
type ValidationError struct {
	Result composition.Result
}

func (e *ValidationError) Error() string {
	if e.Result.Index >= 0 {
		return fmt.Sprintf("client: %s at line %d: %s", e.Result.Code, e.Result.Index, e.Result.Message())
	}
	return fmt.Sprintf("client: %s: %s", e.Result.Code, e.Result.Message())
}

func basePath(kind composition.Kind) string {
	return "/api/" + string(kind)
}

// ValidateSalad runs the salad rules against foods without contacting the server.
func ValidateSalad(draft composition.Composition, foods []Food) composition.Result {
	return composition.Validate(composition.KindSalad, draft.Lines, Catalog(foods))
}

// ValidateMixture runs the mixture rules against foods without contacting the server.
func ValidateMixture(draft composition.Composition, foods []Food) composition.Result {
	return composition.Validate(composition.KindMixture, draft.Lines, Catalog(foods))
}

// checkDraft validates against the remembered catalog. With no catalog loaded
// the server is left to decide.
func (c *Client) checkDraft(kind composition.Kind, draft composition.Composition) error {
	foods := c.Foods()
	if foods == nil {
		return nil
	}
	if result := composition.Validate(kind, draft.Lines, Catalog(foods)); !result.OK() {
		return &ValidationError{Result: result}
	}
	return nil
}

func (c *Client) list(ctx context.Context, path string) ([]Composition, error) {
	var records []Composition
	if err := c.do(ctx, http.MethodGet, path, nil, &records, protectedRequest); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) get(ctx context.Context, kind composition.Kind, extID string) (Composition, error) {
	var record Composition
	err := c.do(ctx, http.MethodGet, basePath(kind)+"/"+url.PathEscape(extID), nil, &record, protectedRequest)
	return record, err
}

func (c *Client) create(ctx context.Context, kind composition.Kind, draft composition.Composition) (Composition, error) {
	draft.Kind = kind
	if err := c.checkDraft(kind, draft); err != nil {
		return Composition{}, err
	}
	var record Composition
	err := c.do(ctx, http.MethodPost, basePath(kind), bodyFor(draft), &record, protectedRequest)
	return record, err
}

func (c *Client) update(ctx context.Context, kind composition.Kind, extID string, draft composition.Composition) (Composition, error) {
	draft.Kind = kind
	if err := c.checkDraft(kind, draft); err != nil {
		return Composition{}, err
	}
	var record Composition
	err := c.do(ctx, http.MethodPut, basePath(kind)+"/"+url.PathEscape(extID), bodyFor(draft), &record, protectedRequest)
	return record, err
}

func (c *Client) remove(ctx context.Context, kind composition.Kind, extID string) error {
	return c.do(ctx, http.MethodDelete, basePath(kind)+"/"+url.PathEscape(extID), nil, nil, protectedRequest)
}

func (c *Client) duplicate(ctx context.Context, kind composition.Kind, extID string) (Composition, error) {
	var record Composition
	err := c.do(ctx, http.MethodPost, basePath(kind)+"/"+url.PathEscape(extID)+"/copy", nil, &record, protectedRequest)
	return record, err
}

func (c *Client) preview(ctx context.Context, kind composition.Kind, draft composition.Composition) (Preview, error) {
	draft.Kind = kind
	var preview Preview
	err := c.do(ctx, http.MethodPost, basePath(kind)+"/preview", bodyFor(draft), &preview, protectedRequest)
	return preview, err
}

// makeItMyOwn fetches src, clones it and saves the clone for the caller.
func (c *Client) makeItMyOwn(ctx context.Context, kind composition.Kind, extID string) (Composition, error) {
	src, err := c.get(ctx, kind, extID)
	if err != nil {
		return Composition{}, err
	}
	return c.create(ctx, kind, composition.Clone(src.Draft(kind)))
}

func (c *Client) ListSalads(ctx context.Context) ([]Composition, error) {
	return c.list(ctx, basePath(composition.KindSalad))
}

func (c *Client) ListUserSalads(ctx context.Context, userExtID string) ([]Composition, error) {
	return c.list(ctx, basePath(composition.KindSalad)+"/user/"+url.PathEscape(userExtID))
}

func (c *Client) GetSalad(ctx context.Context, extID string) (Composition, error) {
	return c.get(ctx, composition.KindSalad, extID)
}

func (c *Client) CreateSalad(ctx context.Context, draft composition.Composition) (Composition, error) {
	return c.create(ctx, composition.KindSalad, draft)
}

func (c *Client) UpdateSalad(ctx context.Context, extID string, draft composition.Composition) (Composition, error) {
	return c.update(ctx, composition.KindSalad, extID, draft)
}

func (c *Client) DeleteSalad(ctx context.Context, extID string) error {
	return c.remove(ctx, composition.KindSalad, extID)
}

// CopySalad asks the server to clone a salad into the caller's collection.
func (c *Client) CopySalad(ctx context.Context, extID string) (Composition, error) {
	return c.duplicate(ctx, composition.KindSalad, extID)
}

func (c *Client) PreviewSalad(ctx context.Context, draft composition.Composition) (Preview, error) {
	return c.preview(ctx, composition.KindSalad, draft)
}

// MakeItMyOwnSalad saves a "(My Version)" copy of a salad owned by the caller.
func (c *Client) MakeItMyOwnSalad(ctx context.Context, extID string) (Composition, error) {
	return c.makeItMyOwn(ctx, composition.KindSalad, extID)
}

func (c *Client) ListMixtures(ctx context.Context) ([]Composition, error) {
	return c.list(ctx, basePath(composition.KindMixture))
}

func (c *Client) ListUserMixtures(ctx context.Context, userExtID string) ([]Composition, error) {
	return c.list(ctx, basePath(composition.KindMixture)+"/user/"+url.PathEscape(userExtID))
}

func (c *Client) GetMixture(ctx context.Context, extID string) (Composition, error) {
	return c.get(ctx, composition.KindMixture, extID)
}

func (c *Client) CreateMixture(ctx context.Context, draft composition.Composition) (Composition, error) {
	return c.create(ctx, composition.KindMixture, draft)
}

func (c *Client) UpdateMixture(ctx context.Context, extID string, draft composition.Composition) (Composition, error) {
	return c.update(ctx, composition.KindMixture, extID, draft)
}

func (c *Client) DeleteMixture(ctx context.Context, extID string) error {
	return c.remove(ctx, composition.KindMixture, extID)
}

func (c *Client) CopyMixture(ctx context.Context, extID string) (Composition, error) {
	return c.duplicate(ctx, composition.KindMixture, extID)
}

func (c *Client) PreviewMixture(ctx context.Context, draft composition.Composition) (Preview, error) {
	return c.preview(ctx, composition.KindMixture, draft)
}

// MakeItMyOwnMixture saves a "(My Version)" copy of a mixture owned by the caller.
func (c *Client) MakeItMyOwnMixture(ctx context.Context, extID string) (Composition, error) {
	return c.makeItMyOwn(ctx, composition.KindMixture, extID)
}
