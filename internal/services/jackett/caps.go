// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package jackett

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/autobrr/burst/internal/models"
)

type searchTag struct {
	Available       string `xml:"available,attr"`
	SupportedParams string `xml:"supportedParams,attr"`
}

func (t *searchTag) caps() models.SearchCaps {
	if t == nil {
		return models.SearchCaps{}
	}
	return models.SearchCaps{
		Available: strings.EqualFold(strings.TrimSpace(t.Available), "yes"),
		Params:    models.ParseCapSet(t.SupportedParams),
	}
}

type capsDocument struct {
	Searching struct {
		Search      *searchTag `xml:"search"`
		TVSearch    *searchTag `xml:"tv-search"`
		MovieSearch *searchTag `xml:"movie-search"`
	} `xml:"searching"`
}

type indexersDocument struct {
	XMLName     xml.Name
	Code        string `xml:"code,attr"`
	Description string `xml:"description,attr"`
	Indexers    []struct {
		ID         string       `xml:"id,attr"`
		Configured string       `xml:"configured,attr"`
		Title      string       `xml:"title"`
		Caps       capsDocument `xml:"caps"`
	} `xml:"indexer"`
}

func (d capsDocument) apply(idx *models.Indexer) {
	idx.Search = d.Searching.Search.caps()
	idx.TVSearch = d.Searching.TVSearch.caps()
	idx.MovieSearch = d.Searching.MovieSearch.caps()
}

// decodeIndexers decodes the t=indexers document. Indexers explicitly marked
// as not configured are skipped.
func decodeIndexers(r io.Reader) ([]models.Indexer, error) {
	var doc indexersDocument
	if err := newXMLDecoder(r).Decode(&doc); err != nil {
		return nil, &ParseError{Err: err}
	}

	switch doc.XMLName.Local {
	case "error":
		return nil, &ProtocolError{Code: doc.Code, Description: doc.Description}
	case "indexers":
	default:
		return nil, &ParseError{Err: fmt.Errorf("unexpected root element <%s>", doc.XMLName.Local)}
	}

	indexers := make([]models.Indexer, 0, len(doc.Indexers))
	for _, raw := range doc.Indexers {
		id := strings.TrimSpace(raw.ID)
		if id == "" || strings.EqualFold(raw.Configured, "false") {
			continue
		}
		idx := models.Indexer{ID: id, Name: strings.TrimSpace(raw.Title)}
		raw.Caps.apply(&idx)
		indexers = append(indexers, idx)
	}
	return indexers, nil
}

// decodeCaps decodes a t=caps document, or its error envelope.
func decodeCaps(r io.Reader) (models.Indexer, error) {
	var doc struct {
		XMLName     xml.Name
		Code        string `xml:"code,attr"`
		Description string `xml:"description,attr"`
		capsDocument
	}
	if err := newXMLDecoder(r).Decode(&doc); err != nil {
		return models.Indexer{}, &ParseError{Err: err}
	}

	switch doc.XMLName.Local {
	case "error":
		return models.Indexer{}, &ProtocolError{Code: doc.Code, Description: doc.Description}
	case "caps":
	default:
		return models.Indexer{}, &ParseError{Err: fmt.Errorf("unexpected root element <%s>", doc.XMLName.Local)}
	}

	var idx models.Indexer
	doc.capsDocument.apply(&idx)
	return idx, nil
}

// EffectiveSearch resolves the search type and capabilities an indexer is queried with.
// Indexers that do not offer the requested type fall back to a plain query search.
func EffectiveSearch(idx models.Indexer, requested models.SearchType) (models.SearchType, models.CapSet) {
	if requested != models.SearchTypeCommon {
		if caps := idx.Caps(requested); caps.Available {
			return requested, caps.Params
		}
	}
	return models.SearchTypeCommon, models.NewCapSet(models.CapQuery)
}
