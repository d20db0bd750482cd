package worker

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/oxhq/ablfmt/abl"
	"github.com/oxhq/ablfmt/config"
	"github.com/oxhq/ablfmt/core"
	"github.com/oxhq/ablfmt/engine"
	"github.com/oxhq/ablfmt/internal/logging"
	"github.com/oxhq/ablfmt/syntax"
)

// ServeOptions configures Serve.
type ServeOptions struct {
	// Parser defaults to the built-in ABL parser.
	Parser syntax.Parser
	// Settings are the worker's base settings. Request settings win.
	Settings map[string]any
	// Logger must not write to the response stream. Defaults to stderr.
	Logger *log.Logger
}

type server struct {
	opts ServeOptions
	ctx  context.Context

	mu     sync.Mutex
	writer *bufio.Writer
}

// Serve reads requests from r and writes responses to w until a shutdown
// request, the end of r, or the cancellation of ctx. Requests are handled
// one at a time.
func Serve(ctx context.Context, r io.Reader, w io.Writer, opts ServeOptions) error {
	if opts.Parser == nil {
		opts.Parser = abl.NewParser()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	s := &server{opts: opts, ctx: ctx, writer: bufio.NewWriter(w)}

	if err := s.send(Response{Type: TypeReady, Success: true}); err != nil {
		return err
	}

	reader := bufio.NewReader(r)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, readErr := reader.ReadBytes('\n')
		if len(bytes.TrimSpace(line)) > 0 {
			stop, err := s.dispatch(line)
			if err != nil || stop {
				return err
			}
		}
		if errors.Is(readErr, io.EOF) {
			opts.Logger.Debug("worker input closed")
			return nil
		}
		if readErr != nil {
			return fmt.Errorf("reading request: %w", readErr)
		}
	}
}

// dispatch handles one request line and reports whether to stop.
func (s *server) dispatch(line []byte) (bool, error) {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		s.opts.Logger.Warn("malformed request", logging.FieldError, err)
		return false, s.send(Response{Type: TypeError, Error: err.Error()})
	}
	if req.Type == TypeShutdown {
		s.opts.Logger.Debug("worker shutting down")
		return true, nil
	}
	return false, s.send(s.handle(req))
}

func (s *server) send(resp Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encoding response: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.writer.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing response: %w", err)
	}
	return s.writer.Flush()
}

// handle answers one request. Failures, including panics, become an
// unsuccessful response.
func (s *server) handle(req Request) (resp Response) {
	start := time.Now()
	resp = Response{Type: resultType(req.Type), ID: req.ID, FileID: req.FileID}
	defer func() {
		if p := recover(); p != nil {
			resp.Success = false
			resp.Error = fmt.Sprint(p)
		}
		s.opts.Logger.Debug("request", logging.FieldRequest, req.Type, logging.FieldID, req.ID,
			logging.FieldDuration, time.Since(start), logging.FieldStatus, resp.Success)
	}()

	var err error
	switch req.Type {
	case TypeFormat:
		err = s.format(req, &resp)
	case TypeParse:
		err = s.parse(req, &resp)
	case TypeCompare:
		err = s.compare(req, &resp)
	case TypePing:
		resp.Timestamp = time.Now().UnixMilli()
	default:
		err = fmt.Errorf("unknown request type %q", req.Type)
	}
	if err != nil {
		resp.Error = err.Error()
		return resp
	}
	resp.Success = true
	return resp
}

func resultType(requestType string) string {
	switch requestType {
	case TypeFormat:
		return TypeFormatResult
	case TypeParse:
		return TypeParseResult
	case TypeCompare:
		return TypeCompareResult
	case TypePing:
		return TypePong
	default:
		return TypeError
	}
}

func (s *server) engine(req Request) *engine.Engine {
	settings := maps.Clone(s.opts.Settings)
	if settings == nil {
		settings = make(map[string]any)
	}
	if req.Options != nil {
		maps.Copy(settings, req.Options.Settings)
	}
	return engine.New(s.opts.Parser, config.New(settings), engine.WithLogger(s.opts.Logger))
}

func eolOf(req Request, text string) (core.EOL, error) {
	if req.Options == nil || req.Options.EOL == "" {
		return core.DetectEOL(text), nil
	}
	return core.ParseEOL(req.Options.EOL)
}

func (s *server) format(req Request, resp *Response) error {
	eol, err := eolOf(req, req.Text)
	if err != nil {
		return err
	}
	out, err := s.engine(req).FormatTextContext(s.ctx, req.Text, eol)
	if err != nil {
		return err
	}
	resp.FormattedText = out
	return nil
}

func (s *server) parse(req Request, resp *Response) error {
	eol, err := eolOf(req, req.Text)
	if err != nil {
		return err
	}
	result, err := s.opts.Parser.Parse(s.ctx, req.Text, nil)
	if err != nil {
		return err
	}
	resp.Tree = SerializeTree(result.Tree)
	resp.ErrorRanges = result.Tree.ErrorRanges()
	resp.EOL = eol.Delimiter()
	return nil
}

func (s *server) compare(req Request, resp *Response) error {
	mismatch, err := s.engine(req).CompareTextsContext(s.ctx, req.Text1, req.Text2)
	if err != nil {
		return err
	}
	resp.Result = mismatch == nil
	if mismatch != nil {
		resp.Mismatch = mismatch.String()
	}
	return nil
}
