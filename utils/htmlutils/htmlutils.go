// Copyright 2025 The Landing Authors
// SPDX-License-Identifier: Apache-2.0

// Package htmlutils provides utility functions for working with HTML.
package htmlutils

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Node2string appends the text content of n to sb, one space between text
// nodes. Scripts and styles are not text.
func Node2string(n *html.Node, sb *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		tmp := strings.Join(strings.Fields(n.Data), " ")
		if len(tmp) > 0 {
			if sb.Len() != 0 {
				sb.WriteByte(' ')
			}

			sb.WriteString(tmp)
		}
	case html.ElementNode:
		if n.DataAtom == atom.Script || n.DataAtom == atom.Style {
			return
		}

		fallthrough
	default:
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			Node2string(child, sb)
		}
	}
}

// PlainText strips any markup out of user supplied text, collapsing
// whitespace and limiting the result to limit runes (0 means no limit).
func PlainText(s string, limit int) (string, error) {
	if !utf8.ValidString(s) {
		return "", fmt.Errorf("invalid UTF-8 text")
	}

	nodes, err := html.ParseFragment(strings.NewReader(s), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return "", fmt.Errorf("parsing text as HTML: %w", err)
	}

	sb := strings.Builder{}
	for _, n := range nodes {
		Node2string(n, &sb)
	}

	text := sb.String()
	if limit > 0 && utf8.RuneCountInString(text) > limit {
		text = string([]rune(text)[:limit]) + "…"
	}

	return text, nil
}
