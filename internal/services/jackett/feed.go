// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package jackett

import (
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html/charset"

	"github.com/autobrr/burst/internal/models"
)

const torznabNamespace = "http://torznab.com/schemas/2015/feed"

// feedDocument covers both shapes an indexer answers with: an RSS feed or a
// bare <error code="" description=""/> root.
type feedDocument struct {
	XMLName     xml.Name
	Code        string `xml:"code,attr"`
	Description string `xml:"description,attr"`
	Channel     struct {
		Title string     `xml:"title"`
		Items []feedItem `xml:"item"`
	} `xml:"channel"`
}

type feedItem struct {
	Nodes []feedNode `xml:",any"`
}

type feedNode struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Text    string     `xml:",chardata"`
}

func (n feedNode) attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func (n feedNode) isTorznabAttr() bool {
	return n.XMLName.Local == "attr" && (n.XMLName.Space == torznabNamespace || n.XMLName.Space == "torznab")
}

func newXMLDecoder(r io.Reader) *xml.Decoder {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	dec.Entity = xml.HTMLEntity
	return dec
}

// decodeFeed decodes a search response. An error envelope is returned as *ProtocolError,
// anything else that is not a feed as *ParseError. Indexer is left for the caller to fill in.
func decodeFeed(r io.Reader) ([]models.Result, error) {
	var doc feedDocument
	if err := newXMLDecoder(r).Decode(&doc); err != nil {
		return nil, &ParseError{Err: err}
	}

	switch doc.XMLName.Local {
	case "error":
		return nil, &ProtocolError{Code: doc.Code, Description: doc.Description}
	case "rss", "feed":
	default:
		return nil, &ParseError{Err: fmt.Errorf("unexpected root element <%s>", doc.XMLName.Local)}
	}

	results := make([]models.Result, 0, len(doc.Channel.Items))
	for _, item := range doc.Channel.Items {
		if result, ok := parseItem(item); ok {
			results = append(results, result)
		}
	}

	log.Debug().
		Int("items", len(doc.Channel.Items)).
		Int("results", len(results)).
		Msg("Parsed torznab feed")

	return results, nil
}

// parseItem maps one feed item onto a Result. Items without a name or a download
// reference are rejected.
func parseItem(item feedItem) (models.Result, bool) {
	result := models.Result{
		Provider:  models.UnknownProvider,
		SizeBytes: -1,
	}

	var (
		seeds, peers string
		link         string
		enclosure    string
	)

	for _, node := range item.Nodes {
		if node.isTorznabAttr() {
			name, _ := node.attr("name")
			value, _ := node.attr("value")
			value = strings.TrimSpace(value)
			if name == "" || value == "" {
				continue
			}
			switch name {
			case "magneturl":
				result.DownloadRef = value
			case "seeders":
				seeds = value
			case "peers":
				peers = value
			case "infohash":
				result.InfoHash = normalizeInfoHash(value)
			}
			continue
		}

		if node.XMLName.Space != "" {
			continue
		}

		text := strings.TrimSpace(node.Text)
		switch node.XMLName.Local {
		case "title":
			if text != "" {
				result.Name = text
			}
		case "jackettindexer":
			if text != "" {
				result.Provider = text
			}
		case "size":
			if text != "" {
				if size, err := strconv.ParseInt(text, 10, 64); err == nil && size >= 0 {
					result.SizeBytes = size
				}
			}
		case "link":
			link = text
		case "enclosure":
			enclosure, _ = node.attr("url")
			enclosure = strings.TrimSpace(enclosure)
		}
	}

	if result.DownloadRef == "" {
		if link != "" {
			result.DownloadRef = link
		} else {
			result.DownloadRef = enclosure
		}
	}

	if result.Name == "" || result.DownloadRef == "" {
		log.Warn().
			Str("name", result.Name).
			Bool("has_download_ref", result.DownloadRef != "").
			Msg("Could not parse feed item")
		return models.Result{}, false
	}

	result.Seeds = nonNegativeInt(seeds)
	result.Peers = nonNegativeInt(peers)
	result.Resolution = ClassifyResolution(result.Name)
	result.ReleaseType = ClassifyReleaseType(result.Name)
	result.Language = detectLanguage(result.Name)
	result.Color = ProviderColor(result.Provider)
	if result.SizeKnown() {
		result.SizeDisplay = HumanSize(result.SizeBytes)
	}

	return result, true
}

func nonNegativeInt(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// normalizeInfoHash lowercases a v1 (40) or v2 (64) hex info hash and rejects anything else.
func normalizeInfoHash(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if len(value) != 40 && len(value) != 64 {
		return ""
	}
	if _, err := hex.DecodeString(value); err != nil {
		return ""
	}
	return value
}
