package web

import (
	"bytes"
	"strings"
	"testing"

	"github.com/FooledKiwi/flighttrack/internal/storage"
)

func TestTemplates_PagesDefined(t *testing.T) {
	tmpl, err := Templates()
	if err != nil {
		t.Fatalf("Templates: %v", err)
	}
	for _, name := range []string{
		"dashboard.html", "create_route.html", "nth_node.html",
		"longest.html", "shortest.html", "route_list.html", "error.html",
	} {
		if tmpl.Lookup(name) == nil {
			t.Errorf("template %q not defined", name)
		}
	}
}

func TestTemplates_RouteRendersLabelOrNotFound(t *testing.T) {
	tmpl := MustTemplates()

	var buf bytes.Buffer
	rt := &storage.Route{ID: 7, AirportCode: "LAX", Position: storage.PositionRight, Duration: 10}
	if err := tmpl.ExecuteTemplate(&buf, "longest.html", map[string]any{"Title": "Longest route", "Route": rt}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "LAX") || !strings.Contains(out, "Right") {
		t.Errorf("rendered page missing route fields:\n%s", out)
	}

	buf.Reset()
	if err := tmpl.ExecuteTemplate(&buf, "longest.html", map[string]any{"Title": "Longest route"}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(buf.String(), "No such route") {
		t.Errorf("empty result should render \"No such route\":\n%s", buf.String())
	}
}
