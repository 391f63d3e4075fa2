// Package session drives the screen flow of one reading session. All
// mutable session state lives behind a single mutex and changes only
// through named events applied by one dispatcher, so no partial state is
// ever observable.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"cuentomagico/internal/story"
)

// Screen is the active top-level screen. The paywall is an overlay on
// the reader, not a screen of its own.
type Screen string

const (
	ScreenLanding       Screen = "LANDING"
	ScreenCustomization Screen = "CUSTOMIZATION"
	ScreenGenerating    Screen = "GENERATING"
	ScreenCover         Screen = "COVER"
	ScreenReader        Screen = "READER"
	ScreenPayment       Screen = "PAYMENT"
	ScreenSuccess       Screen = "SUCCESS"
	ScreenLibrary       Screen = "LIBRARY"
)

var (
	// ErrInvalidEvent rejects an event the current screen does not accept.
	ErrInvalidEvent = errors.New("event not valid for current screen")
	// ErrConfirmationRequired guards destructive library operations.
	ErrConfirmationRequired = errors.New("confirmation required")
	// ErrUnknownStory is returned for a library selection that no longer exists.
	ErrUnknownStory = errors.New("story not found in library")
)

// Store is the durable per-profile storage the session writes through to.
type Store interface {
	Add(st story.Story) error
	Delete(id string) error
	Get(id string) (story.Story, bool)
	List() []story.Story
	SavePending(st story.Story) error
	TakePending() *story.Story
	SetBookmark(page int) error
	Bookmark() int
}

// Event is a named input to the state machine.
type Event interface{ eventName() string }

type (
	// Start begins a fresh customization, clearing any prior story.
	Start struct{}
	// OpenLibrary jumps to the library; valid from any screen.
	OpenLibrary struct{}
	// Back leaves customization or the library for the landing screen.
	Back struct{}
	// SubmitPreferences moves to the generating screen. The caller owns
	// the asynchronous generation and reports its outcome.
	SubmitPreferences struct{ Prefs story.UserPreferences }
	// GenerationSucceeded delivers the generated story.
	GenerationSucceeded struct{ Story story.Story }
	// GenerationFailed returns to customization with the error surfaced
	// and the preferences retained.
	GenerationFailed struct{ Err error }
	// StartReading opens the book at page zero.
	StartReading struct{}
	// NextPage advances one page, opens the paywall at the free-preview
	// boundary while unpaid, or completes reading on the last page.
	NextPage struct{}
	// PrevPage goes back one page, floored at zero.
	PrevPage struct{}
	// Purchase snapshots the story as pending and enters the payment screen.
	Purchase struct{}
	// CancelPaywall dismisses the overlay and stays on the reader.
	CancelPaywall struct{}
	// PaymentCompleted is the completion callback from the payment bridge.
	PaymentCompleted struct{}
	// FinishSuccess returns from the success screen to the reader.
	FinishSuccess struct{}
	// SelectStory opens a library story in the reader, marked paid.
	SelectStory struct{ ID string }
	// DeleteStory removes a library story; Confirmed must be true.
	DeleteStory struct {
		ID        string
		Confirmed bool
	}
	// PaymentRedirect is the startup recovery path for ?payment=success|cancel.
	PaymentRedirect struct{ Outcome string }
)

func (Start) eventName() string               { return "start" }
func (OpenLibrary) eventName() string         { return "open-library" }
func (Back) eventName() string                { return "back" }
func (SubmitPreferences) eventName() string   { return "submit-preferences" }
func (GenerationSucceeded) eventName() string { return "generation-succeeded" }
func (GenerationFailed) eventName() string    { return "generation-failed" }
func (StartReading) eventName() string        { return "start-reading" }
func (NextPage) eventName() string            { return "next-page" }
func (PrevPage) eventName() string            { return "prev-page" }
func (Purchase) eventName() string            { return "purchase" }
func (CancelPaywall) eventName() string       { return "cancel-paywall" }
func (PaymentCompleted) eventName() string    { return "payment-completed" }
func (FinishSuccess) eventName() string       { return "finish-success" }
func (SelectStory) eventName() string         { return "select-story" }
func (DeleteStory) eventName() string         { return "delete-story" }
func (PaymentRedirect) eventName() string     { return "payment-redirect" }

// Config carries the policy knobs the machine consults.
type Config struct {
	// FreePreviewPage is the zero-based page index at which an unpaid
	// reader is stopped. Independent from the pagination page size.
	FreePreviewPage int
	// AdminBypass marks every generated story paid immediately.
	AdminBypass bool
	// ExportDelay postpones the automatic document export after payment.
	ExportDelay time.Duration
}

// ExportFunc renders a story to a document; recipient may be empty.
type ExportFunc func(st story.Story, recipient string)

// State is an atomic snapshot of the session.
type State struct {
	Screen             Screen
	Story              *story.Story
	Prefs              *story.UserPreferences
	Paid               bool
	Page               int
	PaywallOpen        bool
	PendingPaywallPage int // page the open overlay stopped at; -1 otherwise
	LastError          string
}

// Session is one user's reading session.
type Session struct {
	id     string
	cfg    Config
	store  Store
	export ExportFunc
	log    zerolog.Logger

	mu    sync.Mutex
	state State
}

// New builds a session on the landing screen. The durable bookmark is
// consulted once here as a resume hint; afterwards in-memory state is
// authoritative and the bookmark is write-only.
func New(id string, cfg Config, store Store, export ExportFunc, log zerolog.Logger) *Session {
	return &Session{
		id:     id,
		cfg:    cfg,
		store:  store,
		export: export,
		log:    log.With().Str("session", id).Logger(),
		state: State{
			Screen:             ScreenLanding,
			Page:               store.Bookmark(),
			PendingPaywallPage: -1,
		},
	}
}

func (s *Session) ID() string { return s.id }

// State returns a copy of the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Library lists the stored stories in display order.
func (s *Session) Library() []story.Story {
	return s.store.List()
}

// FindStory resolves an id against the active story and the library.
func (s *Session) FindStory(id string) (story.Story, bool) {
	s.mu.Lock()
	if s.state.Story != nil && s.state.Story.ID == id {
		st := *s.state.Story
		s.mu.Unlock()
		return st, true
	}
	s.mu.Unlock()
	return s.store.Get(id)
}

// Apply dispatches one event, mutating the session atomically. An event
// the current screen does not accept returns ErrInvalidEvent and changes
// nothing.
func (s *Session) Apply(ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.dispatch(ev)
	if err != nil {
		s.log.Debug().Str("event", ev.eventName()).Str("screen", string(s.state.Screen)).Err(err).Msg("event rejected")
		return err
	}
	s.log.Debug().Str("event", ev.eventName()).Str("screen", string(s.state.Screen)).Msg("event applied")
	return nil
}

func (s *Session) dispatch(ev Event) error {
	switch e := ev.(type) {
	case Start:
		if s.state.Screen != ScreenLanding {
			return ErrInvalidEvent
		}
		s.state.Story = nil
		s.state.Paid = false
		s.state.LastError = ""
		s.state.Screen = ScreenCustomization
		return nil

	case OpenLibrary:
		s.closePaywall()
		s.state.Screen = ScreenLibrary
		return nil

	case Back:
		if s.state.Screen != ScreenCustomization && s.state.Screen != ScreenLibrary {
			return ErrInvalidEvent
		}
		s.state.Screen = ScreenLanding
		return nil

	case SubmitPreferences:
		if s.state.Screen != ScreenCustomization {
			return ErrInvalidEvent
		}
		prefs := e.Prefs
		s.state.Prefs = &prefs
		s.state.LastError = ""
		s.state.Page = 0
		s.bookmark(0)
		s.state.Screen = ScreenGenerating
		return nil

	case GenerationSucceeded:
		// A user who navigated away abandoned the pending result.
		if s.state.Screen != ScreenGenerating {
			return nil
		}
		st := e.Story
		s.state.Story = &st
		if s.cfg.AdminBypass {
			s.state.Paid = true
		}
		s.state.Screen = ScreenCover
		return nil

	case GenerationFailed:
		if s.state.Screen != ScreenGenerating {
			return nil
		}
		s.state.LastError = e.Err.Error()
		s.state.Screen = ScreenCustomization
		return nil

	case StartReading:
		if s.state.Screen != ScreenCover || s.state.Story == nil {
			return ErrInvalidEvent
		}
		s.state.Page = 0
		s.bookmark(0)
		s.state.Screen = ScreenReader
		return nil

	case NextPage:
		if s.state.Screen != ScreenReader || s.state.Story == nil || s.state.PaywallOpen {
			return ErrInvalidEvent
		}
		if !s.state.Paid && s.state.Page >= s.cfg.FreePreviewPage {
			s.state.PendingPaywallPage = s.state.Page
			s.state.PaywallOpen = true
			return nil
		}
		if s.state.Page < len(s.state.Story.Pages)-1 {
			s.state.Page++
			s.bookmark(s.state.Page)
			return nil
		}
		return s.finishReading()

	case PrevPage:
		if s.state.Screen != ScreenReader || s.state.PaywallOpen {
			return ErrInvalidEvent
		}
		if s.state.Page > 0 {
			s.state.Page--
			s.bookmark(s.state.Page)
		}
		return nil

	case Purchase:
		if s.state.Screen != ScreenReader || !s.state.PaywallOpen || s.state.Story == nil {
			return ErrInvalidEvent
		}
		if err := s.store.SavePending(*s.state.Story); err != nil {
			return fmt.Errorf("save pending story: %w", err)
		}
		s.closePaywall()
		s.state.Screen = ScreenPayment
		return nil

	case CancelPaywall:
		if s.state.Screen != ScreenReader || !s.state.PaywallOpen {
			return ErrInvalidEvent
		}
		s.closePaywall()
		return nil

	case PaymentCompleted:
		if s.state.Screen != ScreenPayment || s.state.Story == nil {
			return ErrInvalidEvent
		}
		s.state.Paid = true
		if err := s.store.Add(*s.state.Story); err != nil {
			return fmt.Errorf("persist story: %w", err)
		}
		s.scheduleExport(*s.state.Story)
		s.state.Screen = ScreenSuccess
		return nil

	case FinishSuccess:
		if s.state.Screen != ScreenSuccess {
			return ErrInvalidEvent
		}
		s.state.Screen = ScreenReader
		return nil

	case SelectStory:
		if s.state.Screen != ScreenLibrary {
			return ErrInvalidEvent
		}
		st, ok := s.store.Get(e.ID)
		if !ok {
			return ErrUnknownStory
		}
		s.state.Story = &st
		s.state.Paid = true
		s.state.Page = 0
		s.bookmark(0)
		s.state.Screen = ScreenReader
		return nil

	case DeleteStory:
		if s.state.Screen != ScreenLibrary {
			return ErrInvalidEvent
		}
		if !e.Confirmed {
			return ErrConfirmationRequired
		}
		return s.store.Delete(e.ID)

	case PaymentRedirect:
		switch e.Outcome {
		case "success":
			pending := s.store.TakePending()
			if pending == nil {
				return nil
			}
			s.state.Story = pending
			s.state.Paid = true
			if err := s.store.Add(*pending); err != nil {
				return fmt.Errorf("persist story: %w", err)
			}
			s.state.Page = 0
			s.bookmark(0)
			s.state.Screen = ScreenSuccess
			return nil
		case "cancel":
			s.closePaywall()
			s.state.Screen = ScreenReader
			return nil
		default:
			return fmt.Errorf("unknown payment outcome %q", e.Outcome)
		}

	default:
		return fmt.Errorf("unknown event %T", ev)
	}
}

// finishReading handles the forward action on the last page.
func (s *Session) finishReading() error {
	if s.state.Paid {
		if err := s.store.Add(*s.state.Story); err != nil {
			return fmt.Errorf("persist story: %w", err)
		}
		s.state.Screen = ScreenLibrary
		return nil
	}
	s.state.Screen = ScreenSuccess
	return nil
}

// closePaywall dismisses the overlay and clears the recorded stop page.
func (s *Session) closePaywall() {
	s.state.PaywallOpen = false
	s.state.PendingPaywallPage = -1
}

func (s *Session) bookmark(page int) {
	if err := s.store.SetBookmark(page); err != nil {
		s.log.Error().Err(err).Msg("writing bookmark")
	}
}

func (s *Session) scheduleExport(st story.Story) {
	if s.export == nil {
		return
	}
	recipient := ""
	if s.state.Prefs != nil {
		recipient = s.state.Prefs.Name
	}
	time.AfterFunc(s.cfg.ExportDelay, func() {
		s.export(st, recipient)
	})
}
