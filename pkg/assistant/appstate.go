package assistant

import "sync"

// AppState holds the UI flags shared across components (panel visibility,
// image lightbox). It is passed by reference to the components that need it;
// the setters are the only mutation surface.
type AppState struct {
	mu            sync.Mutex
	signUpOpen    bool
	chatOpen      bool
	lightboxImage string
}

func NewAppState() *AppState {
	return &AppState{}
}

func (s *AppState) SetSignUpOpen(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signUpOpen = open
}

func (s *AppState) SignUpOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signUpOpen
}

func (s *AppState) SetChatOpen(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chatOpen = open
}

func (s *AppState) ChatOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chatOpen
}

// SetLightboxImage opens the lightbox on an image reference; empty closes it.
func (s *AppState) SetLightboxImage(ref string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lightboxImage = ref
}

func (s *AppState) LightboxImage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lightboxImage
}
