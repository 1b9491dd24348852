package layout

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const stylesheet = `body{font-family:system-ui,sans-serif;margin:0;background:#fafaf7;color:#1f2421}
main{max-width:960px;margin:0 auto;padding:1.5rem}
table{border-collapse:collapse;width:100%}
th,td{border-bottom:1px solid #d9d9d2;padding:.35rem .5rem;text-align:left}
.label{border:2px solid #1f2421;padding:.75rem;max-width:360px}
.num{text-align:right}`

// Base wraps body in the shared HTML document shell.
func Base(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<!DOCTYPE html><html lang=\"en\"><head><meta charset=\"utf-8\">"+
			"<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\"><title>"+
			templ.EscapeString(PageTitle(title))+"</title><style>"+stylesheet+"</style></head><body><main>"); err != nil {
			return err
		}
		if body != nil {
			if err := body.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</main></body></html>")
		return err
	})
}

// PageTitle appends the product name to a page title.
func PageTitle(title string) string {
	if title == "" {
		return "Crunch Punch"
	}
	return title + " · Crunch Punch"
}
