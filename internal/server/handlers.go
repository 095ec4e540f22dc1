package server

import (
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tanakamasayuki/kicad-diff-visualizer/pkg/errors"
	"github.com/tanakamasayuki/kicad-diff-visualizer/pkg/sheet"
	"github.com/tanakamasayuki/kicad-diff-visualizer/pkg/vcs"
)

// diffPageData feeds the review page template.
type diffPageData struct {
	Base    string
	Target  string
	Object  string
	Objects []string
	HasSch  bool
}

// handleIndex redirects to the default review page: HEAD against the
// working tree on the first configured object.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	objects, err := s.orch.Objects()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(objects) == 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "project has nothing to diff"))
		return
	}

	location := "/diff/HEAD/" + vcs.WorkSentinel + "/" + url.PathEscape(objects[0])
	http.Redirect(w, r, location, http.StatusMovedPermanently)
}

// handleDiff serves the HTML review page for one object.
func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	base := pathParam(r, "base")
	target := pathParam(r, "target")
	object := pathParam(r, "object")

	objects, err := s.orch.Objects()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !slices.Contains(objects, object) {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "unknown object %q", object))
		return
	}

	data := diffPageData{
		Base:    base,
		Target:  target,
		Object:  object,
		Objects: objects,
		HasSch:  s.proj.HasSch(),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, "diff.html", data); err != nil {
		s.requestLogger(r).Error("render page", "err", err)
	}
}

// handleImage serves the composite SVG for one object. The object segment
// must carry a .svg extension; the extension is not part of the object name.
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "object")
	if !strings.HasSuffix(name, ".svg") {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "image %q is not an SVG", name))
		return
	}
	object := strings.TrimSuffix(name, ".svg")

	base := vcs.ParseSourceID(pathParam(r, "base"))
	target := vcs.ParseSourceID(pathParam(r, "target"))

	composite, err := s.orch.ComposeDiff(base, target, object)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write([]byte(composite))
}

// handleSheets serves the schematic sheet hierarchy as an SVG graph.
func (s *Server) handleSheets(w http.ResponseWriter, r *http.Request) {
	if !s.proj.HasSch() {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "project has no schematic"))
		return
	}

	dot, err := sheet.ToDOT(s.proj.Sch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rendered, err := sheet.RenderSVG(dot)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(rendered)
}

// pathParam returns a decoded chi URL parameter. Object names may contain
// characters the client escapes, dots and spaces in particular.
func pathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}
