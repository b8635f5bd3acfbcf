package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	subject  string
	data     []byte
	flushed  bool
	closed   bool
	flushErr error
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	f.subject = subject
	f.data = data
	return nil
}

func (f *fakeConn) FlushTimeout(time.Duration) error {
	f.flushed = true
	return f.flushErr
}

func (f *fakeConn) Close() { f.closed = true }

func TestNATSPublisher_PublishBuilt(t *testing.T) {
	fc := &fakeConn{}
	p := &NATSPublisher{conn: fc, subject: "gazette.site.built"}

	built := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	err := p.PublishBuilt(t.Context(), BuildEvent{Site: "blog", Pages: 3, Files: 6, Generator: "gazette dev", BuildTime: built})
	require.NoError(t, err)
	require.True(t, fc.flushed)
	require.Equal(t, "gazette.site.built", fc.subject)

	var got map[string]any
	require.NoError(t, json.Unmarshal(fc.data, &got))
	require.Equal(t, "blog", got["site"])
	require.InDelta(t, 3, got["pages"], 0)
	require.Equal(t, "2024-05-02T10:00:00Z", got["build_time"])
	require.NotContains(t, got, "load_errors")

	require.NoError(t, p.Close())
	require.True(t, fc.closed)
}

func TestNATSPublisher_FlushError(t *testing.T) {
	p := &NATSPublisher{conn: &fakeConn{flushErr: errors.New("timeout")}, subject: "s"}

	ctx, cancel := context.WithTimeout(t.Context(), time.Second)
	defer cancel()
	err := p.PublishBuilt(ctx, BuildEvent{Site: "blog"})
	require.ErrorContains(t, err, "failed to flush event")
}

func TestNew_WithoutURLIsNoop(t *testing.T) {
	p, err := New("", "subject")
	require.NoError(t, err)
	require.Equal(t, Noop{}, p)
	require.NoError(t, p.PublishBuilt(t.Context(), BuildEvent{}))
	require.NoError(t, p.Close())
}

func TestNewNATSPublisher_Unreachable(t *testing.T) {
	_, err := NewNATSPublisher("nats://127.0.0.1:1", "subject")
	require.ErrorContains(t, err, "failed to connect to NATS")
}

func TestNewNATSPublisher_RequiresSubject(t *testing.T) {
	_, err := NewNATSPublisher("nats://127.0.0.1:4222", "")
	require.Error(t, err)
}
