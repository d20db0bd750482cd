package worker

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/ablfmt/abl"
	"github.com/oxhq/ablfmt/config"
	"github.com/oxhq/ablfmt/internal/logging"
)

func quietOptions() ServeOptions {
	return ServeOptions{Logger: logging.NewWriter(io.Discard, "error")}
}

// startWorker runs Serve over in-memory pipes and returns a client for it.
func startWorker(t *testing.T, opts ServeOptions) *Client {
	t.Helper()
	reqR, reqW := io.Pipe()
	respR, respW := io.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() {
		err := Serve(ctx, reqR, respW, opts)
		respW.Close()
		served <- err
	}()

	c := NewClient(respR, reqW)
	t.Cleanup(func() {
		assert.NoError(t, c.Close())
		cancel()
		assert.NoError(t, <-served)
	})

	ctxReady, cancelReady := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelReady()
	require.NoError(t, c.Ready(ctxReady))
	return c
}

func TestClientFormat(t *testing.T) {
	c := startWorker(t, quietOptions())
	ctx := context.Background()

	out, err := c.Format(ctx, "x  =  1.", nil)
	require.NoError(t, err)
	assert.Equal(t, "x = 1.", out)

	out, err = c.Format(ctx, "if a eq b then return b = c.", &Options{
		EOL:      "lf",
		Settings: map[string]any{"AblFormatter." + config.IfThenLocation: "New"},
	})
	require.NoError(t, err)
	assert.Equal(t, "if a eq b\nthen return b = c.", out)

	// request settings do not stick
	out, err = c.Format(ctx, "if a eq b then return b = c.", nil)
	require.NoError(t, err)
	assert.Equal(t, "if a eq b then return b = c.", out)
}

func TestClientWorkerSettings(t *testing.T) {
	opts := quietOptions()
	opts.Settings = map[string]any{config.KeyCasing: "upper"}
	c := startWorker(t, opts)

	out, err := c.Format(context.Background(), "display x.", nil)
	require.NoError(t, err)
	assert.Equal(t, "DISPLAY x.", out)
}

func TestClientParse(t *testing.T) {
	c := startWorker(t, quietOptions())

	resp, err := c.Parse(context.Background(), "x = 1.\r\nthen.", nil)
	require.NoError(t, err)
	require.NotNil(t, resp.Tree)
	assert.Equal(t, abl.SourceCode, resp.Tree.RootNode.Type)
	assert.True(t, resp.Tree.HasErrors)
	assert.Len(t, resp.Tree.RootNode.Children, 2)
	require.Len(t, resp.ErrorRanges, 1)
	assert.Equal(t, uint32(1), resp.ErrorRanges[0].StartPosition.Row)
	assert.Equal(t, "\r\n", resp.EOL)
}

func TestClientCompare(t *testing.T) {
	c := startWorker(t, quietOptions())
	ctx := context.Background()

	equal, mismatch, err := c.Compare(ctx, "x = 1.", "x   =   1.", nil)
	require.NoError(t, err)
	assert.True(t, equal)
	assert.Empty(t, mismatch)

	equal, mismatch, err = c.Compare(ctx, "x = 1.", "x = 2.", nil)
	require.NoError(t, err)
	assert.False(t, equal)
	assert.Contains(t, mismatch, abl.NumberLiteral)
}

func TestClientPingAndErrors(t *testing.T) {
	c := startWorker(t, quietOptions())
	ctx := context.Background()

	ts, err := c.Ping(ctx)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), ts, time.Minute)

	_, err = c.Format(ctx, "x = 1.", &Options{EOL: "lfcr"})
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, TypeFormatResult, remote.Type)
	assert.Contains(t, remote.Message, "lfcr")
}

func TestClientClosed(t *testing.T) {
	c := startWorker(t, quietOptions())
	require.NoError(t, c.Close())

	_, err := c.Format(context.Background(), "x = 1.", nil)
	assert.ErrorIs(t, err, ErrClosed)

	gone := NewClient(strings.NewReader(""), io.Discard)
	_, err = gone.Ping(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestClientContext(t *testing.T) {
	silent, _ := io.Pipe()
	c := NewClient(silent, io.Discard)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Ping(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestServeProtocol(t *testing.T) {
	in := strings.Join([]string{
		`{"type":"ping","id":1}`,
		`not json`,
		`{"type":"bogus","id":2}`,
		`{"type":"format","id":3,"text":"x  =  1.","fileId":"a.p"}`,
		`{"type":"shutdown"}`,
		`{"type":"ping","id":4}`,
	}, "\n") + "\n"
	var out bytes.Buffer
	require.NoError(t, Serve(context.Background(), strings.NewReader(in), &out, quietOptions()))

	var got []Response
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		var resp Response
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &resp))
		got = append(got, resp)
	}
	require.Len(t, got, 5)

	assert.Equal(t, TypeReady, got[0].Type)
	assert.Equal(t, TypePong, got[1].Type)
	assert.Equal(t, int64(1), got[1].ID)
	assert.Equal(t, TypeError, got[2].Type)
	assert.False(t, got[2].Success)
	assert.Equal(t, TypeError, got[3].Type)
	assert.Contains(t, got[3].Error, "bogus")
	assert.Equal(t, TypeFormatResult, got[4].Type)
	assert.True(t, got[4].Success)
	assert.Equal(t, "a.p", got[4].FileID)
	assert.Equal(t, "x = 1.", got[4].FormattedText)
}

func TestServeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Serve(ctx, strings.NewReader(`{"type":"ping","id":1}`+"\n"), io.Discard, quietOptions())
	assert.ErrorIs(t, err, context.Canceled)
}
