package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/credlib/report"
)

const scenarioYAML = `
name: acme-1y
valuation_date: 2024-01-01
contract:
  issuer: ACME
  premium: 0.01
  recovery: 0.4
  premium_start_date: 2024-01-01
  premium_pay_dates: [2024-07-01, 2025-01-01]
discount:
  day_count: 30E360
  flat: 0.98
survival:
  dates: [2024-01-02]
  values: [0.99]
  interpolation: CONSTANT
  extrapolation: CONSTANT
---
name: acme-bad-discount
valuation_date: 2024-01-01
contract:
  issuer: ACME
  premium: 0.01
  recovery: 0.4
  premium_start_date: 2024-01-01
  premium_pay_dates: [2025-01-01]
discount:
  flat: 1.1
survival:
  flat_rate: 0.02
`

type env struct {
	dir      string
	scenario string
	config   string
}

func newEnv(t *testing.T, body string) env {
	t.Helper()

	dir := t.TempDir()
	e := env{
		dir:      dir,
		scenario: filepath.Join(dir, "acme.yaml"),
		config:   filepath.Join(dir, "credlib.yaml"),
	}
	require.NoError(t, os.WriteFile(e.scenario, []byte(body), 0o600))
	cfg := fmt.Sprintf("log:\n  level: disabled\njournal:\n  path: %s\n", filepath.Join(dir, "runs.db"))
	require.NoError(t, os.WriteFile(e.config, []byte(cfg), 0o600))
	return e
}

func (e env) run(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(append([]string{"--config", e.config}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestPriceJSON(t *testing.T) {
	e := newEnv(t, scenarioYAML)

	code, out, _ := e.run("price", "-f", e.scenario, "--format", "json")
	assert.Equal(t, 1, code, "second scenario fails")

	var doc struct {
		SchemaVersion int              `json:"schema_version"`
		Runs          []map[string]any `json:"runs"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, 1, doc.SchemaVersion)
	require.Len(t, doc.Runs, 2)

	result := doc.Runs[0]["result"].(map[string]any)
	assert.InDelta(t, 0.00588, result["pv_protection_leg"], 1e-12)
	assert.InDelta(t, 0.009702, result["pv_premium_leg"], 1e-12)
	assert.Equal(t, "curve_data", doc.Runs[1]["kind"])
}

func TestPriceTable(t *testing.T) {
	e := newEnv(t, scenarioYAML)

	_, out, _ := e.run("price", "-f", e.scenario)
	assert.Contains(t, out, "SCENARIO")
	assert.Contains(t, out, "0.005880")
	assert.Contains(t, out, "0.009702")
	assert.Contains(t, out, "-0.003822")
	assert.Contains(t, out, "error: curve_data")
}

func TestPriceMsgpack(t *testing.T) {
	e := newEnv(t, scenarioYAML)

	_, out, _ := e.run("price", "-f", e.scenario, "--format", "msgpack")
	doc, err := report.DecodeMsgpack([]byte(out))
	require.NoError(t, err)
	assert.Len(t, doc["runs"], 2)
}

func TestPriceJournalAndRuns(t *testing.T) {
	e := newEnv(t, scenarioYAML)

	code, out, _ := e.run("price", "-f", e.scenario, "--format", "json", "--journal")
	assert.Equal(t, 1, code)

	var priced struct {
		Runs []map[string]any `json:"runs"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &priced))
	id, ok := priced.Runs[0]["run_id"].(string)
	require.True(t, ok)
	_, ok = priced.Runs[1]["run_id"]
	assert.False(t, ok, "failed runs are not journaled")

	code, out, _ = e.run("runs", "list", "--issuer", "ACME")
	require.Equal(t, 0, code)
	var list struct {
		Runs []map[string]any `json:"runs"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list.Runs, 1)
	assert.Equal(t, id, list.Runs[0]["run_id"])

	code, out, _ = e.run("runs", "show", id)
	require.Equal(t, 0, code)
	var shown map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	spec := shown["specification"].(map[string]any)
	assert.Equal(t, "ACME", spec["issuer"])

	code, _, _ = e.run("runs", "show", "01HZZZZZZZZZZZZZZZZZZZZZZZ")
	assert.Equal(t, 1, code)
}

func TestPriceUsageErrors(t *testing.T) {
	e := newEnv(t, scenarioYAML)

	code, _, _ := e.run("price")
	assert.Equal(t, 1, code, "missing --file")

	code, _, _ = e.run("price", "-f", e.scenario, "--format", "xml")
	assert.Equal(t, 1, code)

	code, _, _ = e.run("price", "-f", filepath.Join(e.dir, "missing.yaml"))
	assert.Equal(t, 1, code)
}
