// Package svg implements the overlay engine that layers two rendered SVG
// documents into a single composite image.
//
// The package only understands the SVG dialect produced by kicad-cli: an XML
// declaration, a single <svg ...> root tag, and flat element markup inside.
// Documents are processed as text with targeted regular expressions rather
// than a full XML parser, mirroring how the renderer itself writes them.
package svg

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tanakamasayuki/kicad-diff-visualizer/pkg/errors"
)

var (
	xmlDeclRe = regexp.MustCompile(`^<\?xml[^>]*>`)
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	svgEndRe  = regexp.MustCompile(`</svg>`)
)

// ExtractBody splits an SVG document into its head and inner body.
//
// The document must begin with an XML declaration, contain an <svg ...> root
// tag, and a matching </svg> later in the text; each missing piece produces
// a distinct MALFORMED_DOCUMENT error, checked in that order.
//
// When headOnly is false the head spans from the start of the document
// through the end of the <svg> tag (including the XML declaration); when
// true it is the <svg> tag alone. The body is everything strictly between
// the <svg> tag and the closing </svg>.
func ExtractBody(doc string, headOnly bool) (head, body string, err error) {
	m := xmlDeclRe.FindStringIndex(doc)
	if m == nil {
		return "", "", errors.New(errors.ErrCodeMalformedDocument, "document must start with <?xml")
	}
	xmlEnd := m[1]

	m = svgTagRe.FindStringIndex(doc[xmlEnd:])
	if m == nil {
		return "", "", errors.New(errors.ErrCodeMalformedDocument, "<svg> tag not found")
	}
	svgStart := xmlEnd + m[0]
	svgEnd := xmlEnd + m[1]

	if headOnly {
		head = doc[svgStart:svgEnd]
	} else {
		head = doc[:svgEnd]
	}

	m = svgEndRe.FindStringIndex(doc[svgEnd:])
	if m == nil {
		return "", "", errors.New(errors.ErrCodeMalformedDocument, "</svg> tag not found")
	}
	body = doc[svgEnd : svgEnd+m[0]]

	return head, body, nil
}

// WithRootID returns doc with an id attribute added to its <svg> root tag.
// The tag is rebuilt rather than spliced at a byte offset, so the attribute
// lands right after the tag name regardless of the tag's layout.
func WithRootID(doc, id string) (string, error) {
	loc := svgTagRe.FindStringIndex(doc)
	if loc == nil {
		return "", errors.New(errors.ErrCodeMalformedDocument, "<svg> tag not found")
	}
	tag := doc[loc[0]:loc[1]]
	rest := strings.TrimPrefix(tag, "<svg")
	rebuilt := fmt.Sprintf(`<svg id=%q%s`, id, rest)
	return doc[:loc[0]] + rebuilt + doc[loc[1]:], nil
}
