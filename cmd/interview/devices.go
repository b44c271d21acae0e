package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"sync"

	"github.com/hiremind/hiremind-api/internal/interview"
)

// fileRecorder stands in for a microphone: each capture is the audio file
// staged before it.
type fileRecorder struct {
	mu        sync.Mutex
	staged    string
	capturing string
}

func (r *fileRecorder) Stage(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.staged = path
}

func (r *fileRecorder) Acquire(context.Context) error {
	return nil
}

func (r *fileRecorder) StartCapture(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.staged == "" {
		return errors.New("no audio file staged")
	}
	r.capturing, r.staged = r.staged, ""
	return nil
}

func (r *fileRecorder) StopCapture(context.Context) (interview.Audio, error) {
	r.mu.Lock()
	path := r.capturing
	r.capturing = ""
	r.mu.Unlock()

	if path == "" {
		return interview.Audio{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return interview.Audio{}, fmt.Errorf("read audio file: %w", err)
	}
	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return interview.Audio{Filename: filepath.Base(path), MIMEType: mimeType, Data: data}, nil
}

func (r *fileRecorder) Release() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.staged, r.capturing = "", ""
	return nil
}

// terminalVoice prints what the interviewer says.
type terminalVoice struct {
	mu  sync.Mutex
	out io.Writer
}

func newTerminalVoice(out io.Writer) *terminalVoice {
	return &terminalVoice{out: out}
}

func (v *terminalVoice) Speak(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	_, err := fmt.Fprintf(v.out, "\nInterviewer: %s\n\n", text)
	return err
}

func (v *terminalVoice) Cancel() {}
