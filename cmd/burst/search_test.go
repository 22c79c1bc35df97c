// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/autobrr/burst/internal/models"
)

func sampleResults() []models.Result {
	return []models.Result{{
		Name:        "Example.Movie.2019.1080p.WEB-DL",
		Provider:    "Alpha",
		SizeDisplay: "1.5 GB",
		Seeds:       12,
		Peers:       3,
		Resolution:  models.Resolution1080p,
		InfoHash:    strings.Repeat("a", 40),
	}}
}

func TestRenderResults(t *testing.T) {
	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, render(&buf, outputTable, sampleResults(), resultTable))

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 2)
		assert.True(t, strings.HasPrefix(lines[0], "NAME"))
		assert.Contains(t, lines[1], "Example.Movie.2019.1080p.WEB-DL")
		assert.Contains(t, lines[1], "1.5 GB")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, render(&buf, outputJSON, sampleResults(), resultTable))
		assert.Contains(t, buf.String(), `"info_hash": "`+strings.Repeat("a", 40)+`"`)
	})

	t.Run("yaml uses api field names", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, render(&buf, outputYAML, sampleResults(), resultTable))

		var decoded []map[string]any
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
		require.Len(t, decoded, 1)
		assert.Equal(t, "Alpha", decoded[0]["provider"])
		assert.Equal(t, 12, decoded[0]["seeds"])
	})
}

func TestIndexerTable(t *testing.T) {
	indexers := []models.Indexer{{
		ID:       "alpha",
		Name:     "Alpha",
		Search:   models.SearchCaps{Available: true, Params: models.ParseCapSet("q")},
		TVSearch: models.SearchCaps{Available: true, Params: models.ParseCapSet("q,season,ep")},
	}}

	var buf bytes.Buffer
	require.NoError(t, indexerTable(&buf, indexers))

	fields := strings.Fields(strings.Split(strings.TrimSpace(buf.String()), "\n")[1])
	assert.Equal(t, []string{"alpha", "Alpha", "q", "q,season,ep", "-"}, fields)
}

func TestCheckOutput(t *testing.T) {
	for _, ok := range []string{outputTable, outputJSON, outputYAML} {
		assert.NoError(t, checkOutput(ok))
	}
	assert.Error(t, checkOutput("xml"))
}

func TestProgressPrinter(t *testing.T) {
	var buf bytes.Buffer
	progress := progressPrinter(&buf)

	progress(1, 2, "Waiting for Beta")
	progress(2, 2, "")

	assert.Equal(t, "\r\033[K[1/2] Waiting for Beta\r\033[K[2/2] \n", buf.String())
}
