package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/headfix/internal/doctree"
	"github.com/dgallion1/headfix/internal/heading"
	"github.com/dgallion1/headfix/internal/parser"
)

// fixRequest is the JSON body of /api/fix. Unset options fall back to the
// server configuration.
type fixRequest struct {
	HTML                string  `json:"html"`
	Delta               *int    `json:"delta,omitempty"`
	RelocateOrphans     *bool   `json:"relocate_orphans,omitempty"`
	AssignIDs           *bool   `json:"assign_ids,omitempty"`
	IDPrefix            *string `json:"id_prefix,omitempty"`
	PreserveExistingIDs *bool   `json:"preserve_existing_ids,omitempty"`
}

func (req fixRequest) options(base heading.Options) heading.Options {
	opts := base
	if req.Delta != nil {
		opts.Delta = *req.Delta
	}
	if req.RelocateOrphans != nil {
		opts.RelocateOrphans = *req.RelocateOrphans
	}
	if req.AssignIDs != nil {
		opts.AssignIDs = *req.AssignIDs
	}
	if req.IDPrefix != nil {
		opts.IDPrefix = *req.IDPrefix
	}
	if req.PreserveExistingIDs != nil {
		opts.PreserveExistingIDs = *req.PreserveExistingIDs
	}
	return opts
}

type fixResponse struct {
	Filename string             `json:"filename,omitempty"`
	Title    string             `json:"title,omitempty"`
	HTML     string             `json:"html"`
	Outline  []*doctree.DocNode `json:"outline"`
}

func newFixResponse(tree *doctree.DocTree, filename string) fixResponse {
	outline := tree.Children
	if outline == nil {
		outline = []*doctree.DocNode{}
	}
	return fixResponse{
		Filename: filename,
		Title:    tree.Title,
		HTML:     tree.HTML,
		Outline:  outline,
	}
}

func (s *Server) handleFix(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req fixRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return
	}

	opts := req.options(s.cfg.HeadingOptions())
	if opts.Delta < 0 {
		jsonError(w, "delta must not be negative", http.StatusBadRequest)
		return
	}

	p := &parser.HTMLParser{Options: opts}
	tree, err := p.Parse(strings.NewReader(req.HTML), "")
	if err != nil {
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	s.log.Debug("fixed headings", "bytes", len(req.HTML), "sections", len(tree.Flatten()))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(newFixResponse(tree, ""))
}

func (s *Server) handleFixFile(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	opts, err := formOptions(r, s.cfg.HeadingOptions())
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, err := parser.ForFile(filename, opts)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	tree, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		s.log.Warn("parse failed", "filename", filename, "error", err)
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(newFixResponse(tree, filename))
}

// formOptions reads correction options from multipart form values.
func formOptions(r *http.Request, base heading.Options) (heading.Options, error) {
	opts := base
	if v := r.FormValue("delta"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, fmt.Errorf("invalid delta: %q", v)
		}
		opts.Delta = n
	}
	bools := []struct {
		key string
		dst *bool
	}{
		{"relocate_orphans", &opts.RelocateOrphans},
		{"assign_ids", &opts.AssignIDs},
		{"preserve_existing_ids", &opts.PreserveExistingIDs},
	}
	for _, b := range bools {
		v := r.FormValue(b.key)
		if v == "" {
			continue
		}
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return opts, fmt.Errorf("invalid %s: %q", b.key, v)
		}
		*b.dst = parsed
	}
	if v := r.FormValue("id_prefix"); v != "" {
		opts.IDPrefix = v
	}
	return opts, nil
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
