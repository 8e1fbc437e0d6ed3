package app

import "sync"

// State is UI state shared between surfaces that is not persisted.
type State struct {
	mu       sync.Mutex
	menuOpen bool
}

func (s *State) MenuOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.menuOpen
}

func (s *State) SetMenuOpen(open bool) {
	s.mu.Lock()
	s.menuOpen = open
	s.mu.Unlock()
}

// CloseMenu closes the menu and reports whether it was open.
func (s *State) CloseMenu() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	was := s.menuOpen
	s.menuOpen = false
	return was
}

// MenuAccessor is the part of State a BackHandler needs.
type MenuAccessor interface {
	CloseMenu() bool
}

// BackHandler handles the platform back action. An open menu swallows the
// action and closes; otherwise the action falls through to fallback.
type BackHandler struct {
	menu     MenuAccessor
	fallback func()
}

func NewBackHandler(menu MenuAccessor, fallback func()) *BackHandler {
	return &BackHandler{menu: menu, fallback: fallback}
}

// Back reports whether the action was consumed by closing the menu.
func (h *BackHandler) Back() bool {
	if h.menu != nil && h.menu.CloseMenu() {
		return true
	}
	if h.fallback != nil {
		h.fallback()
	}
	return false
}
