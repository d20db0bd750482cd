package worker

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"
)

// ErrClosed is returned for requests made after the worker went away.
var ErrClosed = errors.New("worker: closed")

// RemoteError is a failure reported by the worker for one request.
type RemoteError struct {
	Type    string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("worker %s: %s", e.Type, e.Message)
}

// Client sends requests to a worker and matches responses to them by ID.
// It is safe for concurrent use; the worker still answers one request at a
// time.
type Client struct {
	writer io.Writer
	cmd    *exec.Cmd

	nextID atomic.Int64

	mu      sync.Mutex
	pending map[int64]chan Response
	closed  bool
	err     error

	writeMu   sync.Mutex
	ready     chan struct{}
	readyOnce sync.Once
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// NewClient talks to a worker reading requests from w and writing
// responses to r.
func NewClient(r io.Reader, w io.Writer) *Client {
	c := &Client{
		writer:  w,
		pending: make(map[int64]chan Response),
		ready:   make(chan struct{}),
		done:    make(chan struct{}),
	}
	go c.readLoop(r)
	return c
}

// Spawn starts path with args as a worker subprocess. The worker's stderr
// is passed through.
func Spawn(ctx context.Context, path string, args ...string) (*Client, error) {
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stderr = os.Stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("worker stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("worker stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting worker: %w", err)
	}
	c := NewClient(stdout, stdin)
	c.cmd = cmd
	return c, nil
}

func (c *Client) readLoop(r io.Reader) {
	reader := bufio.NewReader(r)
	var err error
	for {
		var line []byte
		line, err = reader.ReadBytes('\n')
		if len(line) > 0 {
			var resp Response
			if jsonErr := json.Unmarshal(line, &resp); jsonErr == nil {
				c.deliver(resp)
			}
		}
		if err != nil {
			break
		}
	}
	if errors.Is(err, io.EOF) {
		err = ErrClosed
	}
	c.mu.Lock()
	c.closed = true
	c.err = err
	c.mu.Unlock()
	close(c.done)
}

func (c *Client) deliver(resp Response) {
	if resp.Type == TypeReady {
		c.readyOnce.Do(func() { close(c.ready) })
		return
	}
	c.mu.Lock()
	ch, ok := c.pending[resp.ID]
	delete(c.pending, resp.ID)
	c.mu.Unlock()
	if ok {
		ch <- resp
	}
}

// Ready waits until the worker announced it is ready.
func (c *Client) Ready(ctx context.Context) error {
	select {
	case <-c.ready:
		return nil
	case <-c.done:
		return c.failure()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) failure() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil || errors.Is(c.err, ErrClosed) {
		return ErrClosed
	}
	return fmt.Errorf("%w: %w", ErrClosed, c.err)
}

func (c *Client) write(req Request) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, err := c.writer.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("%w: %w", ErrClosed, err)
	}
	return nil
}

// call sends req and waits for its response. A cancelled context abandons
// the request; a late response is dropped.
func (c *Client) call(ctx context.Context, req Request) (Response, error) {
	req.ID = c.nextID.Add(1)
	ch := make(chan Response, 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Response{}, c.failure()
	}
	c.pending[req.ID] = ch
	c.mu.Unlock()

	if err := c.write(req); err != nil {
		c.forget(req.ID)
		return Response{}, err
	}

	select {
	case resp := <-ch:
		if !resp.Success {
			return resp, &RemoteError{Type: resp.Type, Message: resp.Error}
		}
		return resp, nil
	case <-c.done:
		return Response{}, c.failure()
	case <-ctx.Done():
		c.forget(req.ID)
		return Response{}, ctx.Err()
	}
}

func (c *Client) forget(id int64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// Format formats text. opts may be nil.
func (c *Client) Format(ctx context.Context, text string, opts *Options) (string, error) {
	resp, err := c.call(ctx, Request{Type: TypeFormat, Text: text, Options: opts})
	if err != nil {
		return "", err
	}
	return resp.FormattedText, nil
}

// Parse returns the serialized tree of text with its error ranges.
func (c *Client) Parse(ctx context.Context, text string, opts *Options) (Response, error) {
	return c.call(ctx, Request{Type: TypeParse, Text: text, Options: opts})
}

// Compare reports whether two texts have equivalent trees, and describes
// the first difference when they do not.
func (c *Client) Compare(ctx context.Context, text1, text2 string, opts *Options) (bool, string, error) {
	resp, err := c.call(ctx, Request{Type: TypeCompare, Text1: text1, Text2: text2, Options: opts})
	if err != nil {
		return false, "", err
	}
	return resp.Result, resp.Mismatch, nil
}

// Ping returns the worker's clock.
func (c *Client) Ping(ctx context.Context) (time.Time, error) {
	resp, err := c.call(ctx, Request{Type: TypePing})
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(resp.Timestamp), nil
}

// Close asks the worker to shut down and releases the transport. For a
// spawned worker it waits for the process to exit.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		running := !c.closed
		c.closed = true
		c.mu.Unlock()

		if running {
			_ = c.write(Request{Type: TypeShutdown})
		}
		if closer, ok := c.writer.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				c.closeErr = fmt.Errorf("closing worker input: %w", err)
				return
			}
		}
		if c.cmd != nil {
			if err := c.cmd.Wait(); err != nil {
				c.closeErr = fmt.Errorf("worker exit: %w", err)
			}
		}
	})
	return c.closeErr
}
