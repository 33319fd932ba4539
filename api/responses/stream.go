package responses

import (
	"io"
	"net/http"
)

// TextStream writes a chunked text/plain body, flushing after every chunk so
// the caller can render partial output. Headers go out with the first write.
type TextStream struct {
	w        http.ResponseWriter
	rc       *http.ResponseController
	trailers []string
	started  bool
}

// NewTextStream announces the named trailers with the headers; their values
// are set with SetTrailer once the body is complete.
func NewTextStream(w http.ResponseWriter, trailers ...string) *TextStream {
	return &TextStream{w: w, rc: http.NewResponseController(w), trailers: trailers}
}

func (s *TextStream) start() {
	if s.started {
		return
	}
	s.started = true
	h := s.w.Header()
	h.Set("Content-Type", "text/plain; charset=utf-8")
	h.Set("Cache-Control", "no-cache")
	h.Set("X-Content-Type-Options", "nosniff")
	h.Del("Content-Length")
	for _, name := range s.trailers {
		h.Add("Trailer", name)
	}
	s.w.WriteHeader(http.StatusOK)
}

// Write sends one chunk. An error means the client is gone.
func (s *TextStream) Write(chunk string) error {
	s.start()
	if _, err := io.WriteString(s.w, chunk); err != nil {
		return err
	}
	if err := s.rc.Flush(); err != nil && err != http.ErrNotSupported {
		return err
	}
	return nil
}

// Started reports whether headers have been sent.
func (s *TextStream) Started() bool {
	return s.started
}

// SetTrailer records a value for an announced trailer. It is sent after the
// last chunk, so a truncated body never carries it.
func (s *TextStream) SetTrailer(name, value string) {
	s.start()
	s.w.Header().Set(name, value)
}

// Close sends headers for an empty body. The handler returning ends the
// chunked encoding cleanly.
func (s *TextStream) Close() {
	s.start()
}
