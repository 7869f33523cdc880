package session

import (
	"time"

	"github.com/avhold/capnode/internal/events"
)

// SetPreviewHost attaches a live preview to the given host surface, or
// detaches it when host is nil. Attaching requires a video device. The
// sub-graphs are rewired immediately, and a preview-only assembly starts
// running right away.
func (s *Session) SetPreviewHost(host PreviewHost) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateCapturing {
		return ErrCapturing
	}
	if host != nil && s.videoDev == nil && s.cfg.VideoDevice == "" {
		return ErrNoVideoDevice
	}

	if err := s.unwire(); err != nil {
		return err
	}
	s.previewHost = host
	s.wantPreview = host != nil
	if err := s.wire(); err != nil {
		return err
	}
	return s.startPreviewIfNeeded()
}

// PreviewHostAttached reports whether a preview host is currently set.
func (s *Session) PreviewHostAttached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.previewHost != nil
}

// onPreviewResize is the host's resize notification. It repositions the
// surface to cover the host's new client area. Notifications arriving
// while a transition is mid-flight are dropped: the transition either
// repositions the surface itself or removes it entirely, and re-entering
// the session from inside its own teardown would deadlock.
func (s *Session) onPreviewResize() {
	if s.transitioning.Load() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.surface == nil || s.previewHost == nil {
		return
	}
	w, h := s.previewHost.ClientSize()
	if err := s.surface.SetPosition(0, 0, w, h); err != nil {
		s.log.Warn("preview reposition failed", "width", w, "height", h, "error", err)
		return
	}
	if s.cfg.EventBus != nil {
		s.cfg.EventBus.Publish(events.PreviewResizedEvent{
			Width:     w,
			Height:    h,
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}
}
