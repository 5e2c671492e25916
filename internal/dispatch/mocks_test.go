package dispatch

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/roach88/xpand/internal/event"
)

type mockKeyboard struct {
	mock.Mock
}

func (m *mockKeyboard) InjectText(ctx context.Context, text string) error {
	return m.Called(text).Error(0)
}

func (m *mockKeyboard) SendKeys(ctx context.Context, keys []event.Key) error {
	return m.Called(keys).Error(0)
}

type mockClipboard struct {
	mock.Mock
}

func (m *mockClipboard) PasteText(ctx context.Context, text string) error {
	return m.Called(text).Error(0)
}

func (m *mockClipboard) PasteHTML(ctx context.Context, html, fallback string) error {
	return m.Called(html, fallback).Error(0)
}

func (m *mockClipboard) PasteImage(ctx context.Context, path string) error {
	return m.Called(path).Error(0)
}

type mockUI struct {
	mock.Mock
}

func (m *mockUI) ShowNotification(ctx context.Context, message string) error {
	return m.Called(message).Error(0)
}

func (m *mockUI) SetIcon(ctx context.Context, status event.IconStatus) error {
	return m.Called(status).Error(0)
}

func (m *mockUI) OpenFolder(ctx context.Context, path string) error {
	return m.Called(path).Error(0)
}

// stubExecutor handles one kind and records what it saw.
type stubExecutor struct {
	name string
	kind event.Kind
	err  error
	seen []event.Event
}

func (s *stubExecutor) Name() string { return s.name }

func (s *stubExecutor) Execute(_ context.Context, ev event.Event) (bool, error) {
	if ev.Kind() != s.kind {
		return false, nil
	}
	s.seen = append(s.seen, ev)
	return true, s.err
}
