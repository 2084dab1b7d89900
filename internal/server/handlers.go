package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pinboard/pkg/board"
	"github.com/matzehuels/pinboard/pkg/buildinfo"
	perrors "github.com/matzehuels/pinboard/pkg/errors"
	pio "github.com/matzehuels/pinboard/pkg/io"
	"github.com/matzehuels/pinboard/pkg/masonry"
	"github.com/matzehuels/pinboard/pkg/render/svg"
)

// boardRequest is the body of the POST routes: a board file plus an
// optional viewport.
type boardRequest struct {
	pio.File
	Viewport *masonry.Rect `json:"viewport,omitempty"`
}

// errorBody is the JSON error envelope.
type errorBody struct {
	Error struct {
		Code    perrors.Code `json:"code"`
		Message string       `json:"message"`
	} `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	b, _, err := s.decodeBoard(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b.Snapshot())
}

func (s *Server) handleVisible(w http.ResponseWriter, r *http.Request) {
	b, vp, err := s.decodeBoard(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if vp == nil {
		s.writeError(w, r, perrors.New(perrors.ErrCodeInvalidViewport, "viewport is required"))
		return
	}
	writeJSON(w, http.StatusOK, b.SnapshotVisible(*vp))
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	b, vp, err := s.decodeBoard(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	l := b.Snapshot()
	if vp != nil {
		l = b.SnapshotVisible(*vp)
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(svg.Render(l))
}

// decodeBoard reads a board request, resolves image heights and builds
// the board.
func (s *Server) decodeBoard(w http.ResponseWriter, r *http.Request) (*board.Board, *masonry.Rect, error) {
	ctx := r.Context()
	req := boardRequest{File: pio.File{Config: s.cfg.Defaults}}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "request body exceeds %d bytes", MaxBodyBytes)
		}
		return nil, nil, perrors.Wrap(perrors.ErrCodeInvalidFormat, err, "decode request")
	}
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}
	if vp := req.Viewport; vp != nil && (vp.Width < 0 || vp.Height < 0) {
		return nil, nil, perrors.New(perrors.ErrCodeInvalidViewport, "viewport size must be non-negative")
	}

	req.Config.Logger = log.FromContext(ctx)
	b, err := req.Board()
	if err != nil {
		return nil, nil, err
	}
	if err := s.resolveHeights(ctx, b, &req.File); err != nil {
		return nil, nil, err
	}
	return b, req.Viewport, nil
}

func (s *Server) resolveHeights(ctx context.Context, b *board.Board, f *pio.File) error {
	if s.cfg.ImageDir == "" {
		return nil
	}
	f.Dir = s.cfg.ImageDir
	stats, err := s.resolver.ResolveBoard(ctx, b, f.ImagePath)
	if err != nil {
		return perrors.Wrap(perrors.ErrCodeTimeout, err, "resolve image heights")
	}
	log.FromContext(ctx).Debug("resolved heights",
		"resolved", stats.Resolved, "failed", stats.Failed, "dur", stats.Duration)
	return nil
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := perrors.HTTPStatus(err)
	var body errorBody
	body.Error.Code = perrors.GetCode(err)
	if body.Error.Code == "" {
		body.Error.Code = perrors.ErrCodeInternal
	}
	body.Error.Message = perrors.UserMessage(err)
	if status >= http.StatusInternalServerError {
		log.FromContext(r.Context()).Error("request failed", "err", err)
		body.Error.Message = "internal error"
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
