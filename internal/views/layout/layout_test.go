package layout

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/a-h/templ"
)

func TestPageTitle(t *testing.T) {
	if got := PageTitle(""); got != "Crunch Punch" {
		t.Fatalf("expected bare product name, got %q", got)
	}
	if got := PageTitle("Foods"); got != "Foods · Crunch Punch" {
		t.Fatalf("unexpected title %q", got)
	}
}

func TestBaseRendersBodyAndEscapesTitle(t *testing.T) {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<p>inner</p>")
		return err
	})

	var buf bytes.Buffer
	if err := Base("Salt & <Pepper>", body).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render base: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "<!DOCTYPE html>") {
		t.Fatalf("expected doctype prefix: %s", out)
	}
	if !strings.Contains(out, "<p>inner</p>") {
		t.Fatalf("expected body to be rendered: %s", out)
	}
	if strings.Contains(out, "<Pepper>") || !strings.Contains(out, "Salt &amp; &lt;Pepper&gt;") {
		t.Fatalf("expected escaped title: %s", out)
	}
}

func TestBaseWithoutBody(t *testing.T) {
	var buf bytes.Buffer
	if err := Base("Empty", nil).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render base: %v", err)
	}
	if !strings.HasSuffix(buf.String(), "</main></body></html>") {
		t.Fatalf("expected closed document: %s", buf.String())
	}
}
