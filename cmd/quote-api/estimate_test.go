package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestEstimateOptionsRequest(t *testing.T) {
	t.Parallel()

	var o estimateOptions
	cmd := &cobra.Command{}
	addEstimateFlags(cmd.Flags(), &o)

	if err := cmd.Flags().Parse([]string{"--acres", "2", "--package", "large", "--obstacle", "stumps,rocks"}); err != nil {
		t.Fatal(err)
	}
	if _, _, err := o.request(cmd); err == nil {
		t.Fatal("expected an error without a location")
	}

	if err := cmd.Flags().Parse([]string{"--lat", "35.4", "--lng", "-80.6"}); err != nil {
		t.Fatal(err)
	}
	q, params, err := o.request(cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Coordinates == nil || q.Coordinates.Lng != -80.6 {
		t.Errorf("coordinates = %+v", q.Coordinates)
	}
	if params.Acreage != 2 || params.Package != "large" || len(params.Obstacles) != 2 {
		t.Errorf("params = %+v", params)
	}
}

func TestWriteOutput(t *testing.T) {
	t.Parallel()

	v := map[string]any{"zone": "Core"}

	var buf bytes.Buffer
	if err := writeOutput(&buf, "yaml", v); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "zone: Core") {
		t.Errorf("yaml output = %q", buf.String())
	}

	buf.Reset()
	if err := writeOutput(&buf, "json", v); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"zone": "Core"`) {
		t.Errorf("json output = %q", buf.String())
	}

	if err := writeOutput(&buf, "toml", v); err == nil {
		t.Error("expected an error for an unknown format")
	}
}
