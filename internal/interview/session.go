package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hiremind/hiremind-api/internal/logger"
	"github.com/hiremind/hiremind-api/internal/model"
	"go.uber.org/zap"
)

type State int

const (
	NotStarted State = iota
	Idle
	Recording
	Transcribing
	AiSpeaking
	Ended
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Idle:
		return "idle"
	case Recording:
		return "recording"
	case Transcribing:
		return "transcribing"
	case AiSpeaking:
		return "ai_speaking"
	case Ended:
		return "ended"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// InProgress reports whether the interview has started and not yet ended.
func (s State) InProgress() bool {
	return s >= Idle && s <= AiSpeaking
}

var (
	ErrInvalidTransition = errors.New("invalid interview transition")
	// ErrEnded is returned by an action that was overtaken by End.
	ErrEnded = errors.New("interview ended")
)

const (
	DefaultDuration       = 15 * time.Minute
	defaultAnalyzeRetries = 3
	defaultAnalyzeBackoff = time.Second
	endTimeout            = 2 * time.Minute

	apologyText  = "Sorry, I had trouble processing that. Could you please answer again?"
	repromptText = "I didn't catch anything. Please try recording your answer again."
)

// Audio is one finished capture.
type Audio struct {
	Filename string
	MIMEType string
	Data     []byte
}

type Backend interface {
	StartInterview(ctx context.Context, applicationID string) error
	CompleteInterview(ctx context.Context, applicationID string) error
	NextQuestion(ctx context.Context, applicationID string, history []model.ConversationEntry) (string, error)
	Transcribe(ctx context.Context, audio Audio) (string, error)
	Analyze(ctx context.Context, applicationID, jobRole string, conversation []model.ConversationEntry) error
}

type Recorder interface {
	Acquire(ctx context.Context) error
	StartCapture(ctx context.Context) error
	StopCapture(ctx context.Context) (Audio, error)
	Release() error
}

// Voice plays text aloud. Speak blocks until playback completes or Cancel is called.
type Voice interface {
	Speak(ctx context.Context, text string) error
	Cancel()
}

type Timer interface {
	Stop() bool
}

// AfterFunc arms a countdown that calls f once d has elapsed.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type Options struct {
	ApplicationID  string
	JobRole        string
	Duration       time.Duration
	AnalyzeRetries int
	AnalyzeBackoff time.Duration
	AfterFunc      AfterFunc
	Log            *zap.Logger
}

// Session drives a single interview attempt. Listeners registered with
// Subscribe run while the session lock is held and must not call back into
// the Session.
type Session struct {
	backend  Backend
	recorder Recorder
	voice    Voice
	opts     Options
	log      *zap.Logger

	mu           sync.Mutex
	state        State
	starting     bool
	conversation []model.ConversationEntry
	listeners    map[int]func(State)
	nextListener int
	timer        Timer
	ending       bool
	endErr       error

	endCtx    context.Context
	endCancel context.CancelFunc
	done      chan struct{}
}

func NewSession(backend Backend, recorder Recorder, voice Voice, opts Options) *Session {
	if opts.Duration <= 0 {
		opts.Duration = DefaultDuration
	}
	if opts.AnalyzeRetries <= 0 {
		opts.AnalyzeRetries = defaultAnalyzeRetries
	}
	if opts.AnalyzeBackoff <= 0 {
		opts.AnalyzeBackoff = defaultAnalyzeBackoff
	}
	if opts.AfterFunc == nil {
		opts.AfterFunc = realAfterFunc
	}
	endCtx, endCancel := context.WithCancel(context.Background())
	return &Session{
		backend:   backend,
		recorder:  recorder,
		voice:     voice,
		opts:      opts,
		log:       logger.OrNop(opts.Log).With(zap.String("application_id", opts.ApplicationID)),
		listeners: make(map[int]func(State)),
		endCtx:    endCtx,
		endCancel: endCancel,
		done:      make(chan struct{}),
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Conversation returns a copy of the turns recorded so far.
func (s *Session) Conversation() []model.ConversationEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.ConversationEntry(nil), s.conversation...)
}

// Subscribe registers fn for every state change and returns a function that
// removes it.
func (s *Session) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Done is closed once End has finished, whether called explicitly or by the
// countdown.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Start acquires devices, notifies the backend and voices the first question.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != NotStarted || s.starting {
		s.mu.Unlock()
		return ErrInvalidTransition
	}
	s.starting = true
	s.mu.Unlock()

	ctx, cancel := s.bind(ctx)
	defer cancel()

	if err := s.recorder.Acquire(ctx); err != nil {
		s.abortStart()
		return fmt.Errorf("acquire devices: %w", err)
	}
	if err := s.backend.StartInterview(ctx, s.opts.ApplicationID); err != nil {
		if rerr := s.recorder.Release(); rerr != nil {
			s.log.Warn("Failed to release devices", zap.Error(rerr))
		}
		s.abortStart()
		return fmt.Errorf("start interview: %w", err)
	}

	s.mu.Lock()
	s.starting = false
	s.setState(Idle)
	s.timer = s.opts.AfterFunc(s.opts.Duration, s.expire)
	// the first question is generated before the candidate may answer
	s.setState(AiSpeaking)
	s.mu.Unlock()

	s.log.Info("Interview started", zap.Duration("duration", s.opts.Duration))
	return s.ask(ctx)
}

func (s *Session) abortStart() {
	s.mu.Lock()
	s.starting = false
	s.mu.Unlock()
}

// StartSpeaking opens a capture session for a spoken answer.
func (s *Session) StartSpeaking(ctx context.Context) error {
	if err := s.move(Idle, Recording); err != nil {
		return err
	}
	ctx, cancel := s.bind(ctx)
	defer cancel()

	if err := s.recorder.StartCapture(ctx); err != nil {
		if !s.settle(Idle) {
			return ErrEnded
		}
		return fmt.Errorf("start capture: %w", err)
	}
	return nil
}

// StopSpeaking finalises the capture, transcribes it and voices the next question.
func (s *Session) StopSpeaking(ctx context.Context) error {
	if err := s.move(Recording, Transcribing); err != nil {
		return err
	}
	ctx, cancel := s.bind(ctx)
	defer cancel()

	audio, err := s.recorder.StopCapture(ctx)
	if err != nil {
		return s.apologize(ctx, fmt.Errorf("stop capture: %w", err))
	}
	if len(audio.Data) == 0 {
		s.log.Debug("Empty capture, re-prompting")
		return s.reprompt(ctx)
	}

	text, err := s.backend.Transcribe(ctx, audio)
	if err != nil {
		return s.apologize(ctx, fmt.Errorf("transcribe: %w", err))
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return s.reprompt(ctx)
	}

	s.mu.Lock()
	if s.state == Ended {
		s.mu.Unlock()
		return ErrEnded
	}
	s.conversation = append(s.conversation, model.ConversationEntry{Role: "user", Text: text})
	s.mu.Unlock()

	return s.ask(ctx)
}

// SubmitText answers with typed text instead of a recording. Blank text is ignored.
func (s *Session) SubmitText(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	s.mu.Lock()
	if s.state != Idle {
		s.mu.Unlock()
		return ErrInvalidTransition
	}
	s.conversation = append(s.conversation, model.ConversationEntry{Role: "user", Text: text})
	s.setState(AiSpeaking)
	s.mu.Unlock()

	ctx, cancel := s.bind(ctx)
	defer cancel()
	return s.ask(ctx)
}

// End stops the interview, submits the transcript for analysis and marks the
// interview complete. Later calls wait for the first one and return its result.
func (s *Session) End(ctx context.Context) error {
	s.mu.Lock()
	if s.ending {
		s.mu.Unlock()
		select {
		case <-s.done:
			return s.endErr
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if !s.state.InProgress() {
		s.mu.Unlock()
		return ErrInvalidTransition
	}
	prev := s.state
	s.ending = true
	s.setState(Ended)
	if s.timer != nil {
		s.timer.Stop()
	}
	conversation := append([]model.ConversationEntry(nil), s.conversation...)
	s.mu.Unlock()

	s.endCancel()
	if prev == Recording {
		if _, err := s.recorder.StopCapture(ctx); err != nil {
			s.log.Warn("Failed to stop capture", zap.Error(err))
		}
	}
	s.voice.Cancel()
	if err := s.recorder.Release(); err != nil {
		s.log.Warn("Failed to release devices", zap.Error(err))
	}

	s.analyze(ctx, conversation)

	err := s.backend.CompleteInterview(ctx, s.opts.ApplicationID)
	if err != nil {
		err = fmt.Errorf("complete interview: %w", err)
		s.log.Error("Failed to complete interview", zap.Error(err))
	} else {
		s.log.Info("Interview completed", zap.Int("turns", len(conversation)))
	}

	s.mu.Lock()
	s.endErr = err
	s.mu.Unlock()
	close(s.done)
	return err
}

func (s *Session) expire() {
	s.log.Info("Interview time is up")
	ctx, cancel := context.WithTimeout(context.Background(), endTimeout)
	defer cancel()
	if err := s.End(ctx); err != nil && !errors.Is(err, ErrInvalidTransition) {
		s.log.Warn("Failed to end expired interview", zap.Error(err))
	}
}

// analyze retries with exponential backoff; a final failure is only logged.
func (s *Session) analyze(ctx context.Context, conversation []model.ConversationEntry) {
	if len(conversation) == 0 {
		s.log.Info("Skipping analysis of empty interview")
		return
	}
	backoff := s.opts.AnalyzeBackoff
	for attempt := 1; ; attempt++ {
		err := s.backend.Analyze(ctx, s.opts.ApplicationID, s.opts.JobRole, conversation)
		if err == nil {
			return
		}
		if attempt >= s.opts.AnalyzeRetries {
			s.log.Error("Interview analysis failed", zap.Int("attempts", attempt), zap.Error(err))
			return
		}
		s.log.Warn("Interview analysis failed, retrying", zap.Int("attempt", attempt), zap.Duration("backoff", backoff), zap.Error(err))
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			s.log.Error("Interview analysis abandoned", zap.Error(ctx.Err()))
			return
		}
		backoff *= 2
	}
}

// ask requests the next question and voices it, leaving the session Idle.
func (s *Session) ask(ctx context.Context) error {
	question, err := s.backend.NextQuestion(ctx, s.opts.ApplicationID, s.Conversation())
	if err != nil {
		return s.apologize(ctx, fmt.Errorf("next question: %w", err))
	}

	s.mu.Lock()
	if s.state == Ended {
		s.mu.Unlock()
		return ErrEnded
	}
	s.conversation = append(s.conversation, model.ConversationEntry{Role: "ai", Text: question})
	s.setState(AiSpeaking)
	s.mu.Unlock()

	s.speak(ctx, question)
	if !s.settle(Idle) {
		return ErrEnded
	}
	return nil
}

func (s *Session) apologize(ctx context.Context, cause error) error {
	s.log.Warn("Interview turn failed", zap.Error(cause))
	if err := s.say(ctx, apologyText); err != nil {
		return err
	}
	return cause
}

func (s *Session) reprompt(ctx context.Context) error {
	return s.say(ctx, repromptText)
}

// say voices a message outside the conversation and returns to Idle.
func (s *Session) say(ctx context.Context, text string) error {
	if !s.settle(AiSpeaking) {
		return ErrEnded
	}
	s.speak(ctx, text)
	if !s.settle(Idle) {
		return ErrEnded
	}
	return nil
}

func (s *Session) speak(ctx context.Context, text string) {
	if err := s.voice.Speak(ctx, text); err != nil && ctx.Err() == nil {
		s.log.Warn("Failed to speak", zap.Error(err))
	}
}

// move is a guarded transition that only applies from the given state.
func (s *Session) move(from, to State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != from {
		return ErrInvalidTransition
	}
	s.setState(to)
	return nil
}

// settle moves an in-flight action to the given state unless End overtook it.
func (s *Session) settle(to State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Ended {
		return false
	}
	s.setState(to)
	return true
}

// setState must be called with mu held.
func (s *Session) setState(to State) {
	if s.state == to {
		return
	}
	s.state = to
	for _, fn := range s.listeners {
		fn(to)
	}
}

// bind derives a context that is also cancelled when the session ends.
func (s *Session) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(s.endCtx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
