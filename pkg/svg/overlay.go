package svg

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
)

// Colors applied to the two layers of a composite. The base (old) render is
// pushed to red and the overlay (new) render to cyan so that unchanged
// geometry blends while additions and removals stand out.
const (
	BaseColor    = "#ff0000"
	OverlayColor = "#00ffff"
)

var (
	tagRe   = regexp.MustCompile(`<([^/ >]+)([^>]*)>`)
	styleRe = regexp.MustCompile(`style="([^"]*)"`)
)

// ApplyStyleOverrides rewrites every element start tag in body, merging
// overrides into its inline style attribute. Elements without a style
// attribute get one synthesized immediately after the tag name, containing
// exactly the override properties in override order. Text outside tags is
// copied through unchanged.
func ApplyStyleOverrides(body string, overrides *StyleMap) string {
	var out strings.Builder
	pos := 0
	for pos < len(body) {
		loc := tagRe.FindStringSubmatchIndex(body[pos:])
		if loc == nil {
			break
		}
		out.WriteString(body[pos : pos+loc[0]])

		tag := body[pos+loc[2] : pos+loc[3]]
		attr := body[pos+loc[4] : pos+loc[5]]
		pos += loc[1]

		var style *StyleMap
		var prefix, postfix string
		if m := styleRe.FindStringSubmatchIndex(attr); m != nil {
			style = DecodeStyle(attr[m[2]:m[3]])
			prefix = attr[:m[2]]
			postfix = attr[m[3]:]
		} else {
			style = NewStyleMap()
			prefix = ` style="`
			postfix = `"` + attr
		}

		style.Merge(overrides)

		out.WriteByte('<')
		out.WriteString(tag)
		out.WriteString(prefix)
		out.WriteString(style.Encode())
		out.WriteString(postfix)
		out.WriteByte('>')
	}
	out.WriteString(body[pos:])
	return out.String()
}

// Engine composes two SVG documents into a single overlaid image.
// The zero value is not usable; construct with NewEngine.
type Engine struct {
	logger *log.Logger
}

// NewEngine creates an overlay engine. A nil logger falls back to
// log.Default().
func NewEngine(logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{logger: logger}
}

// layerStyle builds the fixed fill/stroke override for one layer.
func layerStyle(color string) *StyleMap {
	m := NewStyleMap()
	m.Set("fill", color)
	m.Set("stroke", color)
	return m
}

// ComposeOverlay layers overlay on top of base. Both documents are split
// into head and body; the base body is recolored with BaseColor and the
// overlay body with OverlayColor, then each is wrapped in a <g> layer and
// joined under the base document's head.
//
// A head mismatch between the two documents is logged as a warning and the
// base head wins; it is never an error. headOnly controls whether the
// composite starts at the <svg> tag or keeps the base's XML declaration.
func (e *Engine) ComposeOverlay(base, overlay string, headOnly bool) (string, error) {
	baseHead, baseBody, err := ExtractBody(base, headOnly)
	if err != nil {
		return "", err
	}
	overlayHead, overlayBody, err := ExtractBody(overlay, headOnly)
	if err != nil {
		return "", err
	}

	if baseHead != overlayHead {
		e.logger.Warn("document heads differ, composite keeps the base head",
			"base", baseHead, "overlay", overlayHead)
	}

	bottom := ApplyStyleOverrides(baseBody, layerStyle(BaseColor))
	top := ApplyStyleOverrides(overlayBody, layerStyle(OverlayColor))

	return strings.Join([]string{
		baseHead,
		`<g id="bottom-g">`,
		bottom,
		`</g>`,
		`<g id="top-g" style="mix-blend-mode:normal;">`,
		top,
		`</g>`,
		`</svg>`,
	}, "\n"), nil
}
