package hbao

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerDefaultSilent(t *testing.T) {
	l := Logger()
	if l == nil {
		t.Fatal("Logger() returned nil")
	}
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn} {
		if l.Enabled(context.Background(), level) {
			t.Errorf("default logger should not be enabled for %v", level)
		}
	}
}

func TestSetLoggerNilRestoresSilence(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	SetLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	SetLogger(nil)
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("SetLogger(nil) should restore the silent logger")
	}
}

func TestDoubleDestroyIsLogged(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	s := NewStage(&fakeBackend{}, noiseTex)
	s.Params().SetEnabled(true)
	if err := s.Execute(frame(4, 4), sceneColor, sceneDepth, false); err != nil {
		t.Fatal(err)
	}
	_ = s.Destroy()
	_ = s.Destroy()

	out := buf.String()
	if !strings.Contains(out, "targets allocated") {
		t.Errorf("missing allocation debug record in %q", out)
	}
	if !strings.Contains(out, "level=WARN") {
		t.Errorf("missing warning for double destroy in %q", out)
	}
}
