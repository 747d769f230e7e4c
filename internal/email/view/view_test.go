package view

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/willemschots/newsroom/internal/email"
)

func Test_Parse(t *testing.T) {
	fullView := []byte(`{{define "subject"}}Hi!{{end}}
{{define "html"}}<p>Hello {{.Name}}</p>{{end}}
{{define "text"}}Hello {{.Name}}{{end}}`)

	t.Run("ok, parse and render all elements", func(t *testing.T) {
		fsys := fstest.MapFS{
			"welcome.tmpl": &fstest.MapFile{Data: fullView},
		}

		v, err := Parse(fsys, "welcome")
		if err != nil {
			t.Fatalf("failed to parse view: %v", err)
		}

		data := struct{ Name string }{"Alice Appleton"}

		for element, want := range map[email.TemplateElement]string{
			email.ElementSubject: "Hi!",
			email.ElementHTML:    "<p>Hello Alice Appleton</p>",
			email.ElementText:    "Hello Alice Appleton",
		} {
			var sb strings.Builder
			if err := v.Render(&sb, element, data); err != nil {
				t.Fatalf("failed to render %s: %v", element, err)
			}

			if sb.String() != want {
				t.Errorf("got %s %q, want %q", element, sb.String(), want)
			}
		}
	})

	failTests := map[string]fstest.MapFS{
		"unknown view": {},
		"missing subject": {
			"welcome.tmpl": &fstest.MapFile{
				Data: []byte(`{{define "html"}}x{{end}}{{define "text"}}x{{end}}`),
			},
		},
		"missing html": {
			"welcome.tmpl": &fstest.MapFile{
				Data: []byte(`{{define "subject"}}x{{end}}{{define "text"}}x{{end}}`),
			},
		},
		"missing text": {
			"welcome.tmpl": &fstest.MapFile{
				Data: []byte(`{{define "subject"}}x{{end}}{{define "html"}}x{{end}}`),
			},
		},
		"malformed template": {
			"welcome.tmpl": &fstest.MapFile{
				Data: []byte(`{{define "subject"}}`),
			},
		},
	}

	for name, fsys := range failTests {
		t.Run("fail, "+name, func(t *testing.T) {
			_, err := Parse(fsys, "welcome")
			if err == nil {
				t.Fatalf("expected error, got nil")
			}
		})
	}

	t.Run("fail, view name with path traversal", func(t *testing.T) {
		fsys := fstest.MapFS{
			"welcome.tmpl": &fstest.MapFile{Data: fullView},
		}

		_, err := Parse(fsys, "../welcome")
		if err == nil {
			t.Fatalf("expected error, got nil")
		}
	})
}
