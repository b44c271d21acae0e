package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileRecorder(t *testing.T) {
	dir := t.TempDir()
	answer := filepath.Join(dir, "answer.wav")
	require.NoError(t, os.WriteFile(answer, []byte("RIFF"), 0o600))
	silent := filepath.Join(dir, "silent.wav")
	require.NoError(t, os.WriteFile(silent, nil, 0o600))
	ctx := context.Background()

	r := &fileRecorder{}
	assert.Error(t, r.StartCapture(ctx), "nothing staged")

	r.Stage(answer)
	require.NoError(t, r.StartCapture(ctx))
	audio, err := r.StopCapture(ctx)
	require.NoError(t, err)
	assert.Equal(t, "answer.wav", audio.Filename)
	assert.Equal(t, []byte("RIFF"), audio.Data)
	assert.NotEmpty(t, audio.MIMEType)

	r.Stage(silent)
	require.NoError(t, r.StartCapture(ctx))
	audio, err = r.StopCapture(ctx)
	require.NoError(t, err)
	assert.Empty(t, audio.Data)

	audio, err = r.StopCapture(ctx)
	require.NoError(t, err)
	assert.Empty(t, audio.Data, "stopping without a capture yields no audio")
}

func TestTerminalVoice(t *testing.T) {
	var buf bytes.Buffer
	v := newTerminalVoice(&buf)
	require.NoError(t, v.Speak(context.Background(), "What is a goroutine?"))
	assert.Contains(t, buf.String(), "Interviewer: What is a goroutine?")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, v.Speak(ctx, "ignored"))
	assert.NotContains(t, buf.String(), "ignored")
}
