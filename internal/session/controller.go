package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/hirevox/hirevox/internal/hiring"
)

const (
	// DefaultReadingSeconds is the grace period for reading a question
	// before recording/answering goes live.
	DefaultReadingSeconds = 10
	// DefaultPauseSeconds is the fixed pause between questions.
	DefaultPauseSeconds = 3

	// NoSpokenResponse is recorded when the candidate said nothing during
	// a spoken answer window. Absence of speech is a scoreable outcome,
	// not an error.
	NoSpokenResponse = "No response recorded"
	// NoOptionSelected is recorded when a quiz question times out with no
	// selection.
	NoOptionSelected = "No answer selected"
)

// Config assembles one candidate's session.
type Config struct {
	JobID       string
	RoundID     string
	CandidateID string
	RoundType   hiring.RoundType
	RoundTitle  string
	Questions   []hiring.Question

	ReadingSeconds int           // 0 means DefaultReadingSeconds
	PauseSeconds   int           // 0 means DefaultPauseSeconds
	TickInterval   time.Duration // 0 means one second

	Gate    *Gate
	Source  Source // spoken variant only
	Mirror  Mirror
	Gateway Gateway
	Logger  *log.Logger
	Resume  bool // seed the ledger from the mirror and skip answered questions
}

// Snapshot is the presentation-layer view of the session at one instant.
type Snapshot struct {
	Phase         Phase             `json:"phase"`
	QuestionIndex int               `json:"questionIndex"`
	QuestionCount int               `json:"questionCount"`
	Remaining     int               `json:"remainingSeconds"`
	Selected      int               `json:"selectedOptionIndex"`
	Transcript    string            `json:"transcript,omitempty"`
	Answered      int               `json:"answeredCount"`
	Error         string            `json:"error,omitempty"`
	Result        *SubmissionResult `json:"result,omitempty"`
}

type actionKind int

const (
	actionStart actionKind = iota + 1
	actionSelect
	actionAdvance
	actionSubmit
)

type action struct {
	kind   actionKind
	option int
}

type submitOutcome struct {
	res SubmissionResult
	err error
}

// Controller is the assessment session state machine. All state mutations
// happen on the Run goroutine; public methods validate against a snapshot
// and enqueue an action for the loop.
type Controller struct {
	cfg    Config
	key    string
	logger *log.Logger

	mu        sync.RWMutex
	phase     Phase
	idx       int
	remaining int
	allotted  int
	selected  int
	perms     Permissions
	lastErr   error
	result    *SubmissionResult

	buf    Buffer
	ledger *Ledger
	mirror Mirror

	timer    *Timer
	timerGen int

	startIdx        int
	resumedComplete bool

	timerEvents chan TimerEvent
	actions     chan action
	submitDone  chan submitOutcome
	updates     chan Snapshot

	runCtx context.Context
}

// NewController validates the question sequence and wires the session's
// collaborators. It does not start anything; call Run and then Start.
func NewController(cfg Config) (*Controller, error) {
	if len(cfg.Questions) == 0 {
		return nil, errors.New("session requires at least one question")
	}
	for _, q := range cfg.Questions {
		if err := q.Validate(); err != nil {
			return nil, err
		}
	}
	switch cfg.RoundType {
	case hiring.RoundQuiz:
		for _, q := range cfg.Questions {
			if q.Kind != hiring.KindMultipleChoice {
				return nil, fmt.Errorf("quiz round cannot contain %s question %s", q.Kind, q.ID)
			}
		}
	case hiring.RoundInterview:
		// open-response and multiple-choice prompts are both readable aloud
	default:
		return nil, fmt.Errorf("unknown round type %q", cfg.RoundType)
	}
	if cfg.ReadingSeconds <= 0 {
		cfg.ReadingSeconds = DefaultReadingSeconds
	}
	if cfg.PauseSeconds <= 0 {
		cfg.PauseSeconds = DefaultPauseSeconds
	}
	if cfg.Gateway == nil {
		return nil, errors.New("session requires a submission gateway")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	mirror := cfg.Mirror
	if mirror == nil {
		mirror = NopMirror{}
	}

	key := SessionKey(string(cfg.RoundType), cfg.JobID, cfg.RoundID, cfg.CandidateID)
	ids := make([]string, len(cfg.Questions))
	for i, q := range cfg.Questions {
		ids[i] = q.ID
	}

	c := &Controller{
		cfg:         cfg,
		key:         key,
		logger:      logger,
		phase:       PhaseNotStarted,
		idx:         -1,
		selected:    -1,
		ledger:      NewLedger(ids, mirror, key, logger),
		mirror:      mirror,
		timerEvents: make(chan TimerEvent, 16),
		actions:     make(chan action, 8),
		submitDone:  make(chan submitOutcome, 1),
		updates:     make(chan Snapshot, 1),
	}
	c.timer = NewTimer(cfg.TickInterval, c.timerEvents)

	if cfg.Resume {
		c.restoreFromMirror()
	}
	return c, nil
}

// restoreFromMirror re-derives the resume position from mirrored records:
// the first unanswered question, always re-entered at its reading phase
// (phase-internal position is not persisted, so reading is the only safe
// re-entry point).
func (c *Controller) restoreFromMirror() {
	var saved []Record
	ok, err := c.mirror.Load(c.key, &saved)
	if err != nil {
		c.logger.Printf("session %s: mirror read failed, starting fresh: %v", c.key, err)
		return
	}
	if !ok || len(saved) == 0 {
		return
	}
	c.ledger.Seed(saved)
	for i, q := range c.cfg.Questions {
		if !c.ledger.Has(q.ID) {
			c.startIdx = i
			c.logger.Printf("session %s: resuming at question %d (%d answers restored)", c.key, i+1, len(saved))
			return
		}
	}
	c.startIdx = len(c.cfg.Questions) - 1
	c.resumedComplete = true
	c.logger.Printf("session %s: all %d answers restored, resuming at completion", c.key, len(saved))
}

// Run is the session's event loop. It owns all state transitions and
// exits when ctx is cancelled (page abandonment).
func (c *Controller) Run(ctx context.Context) {
	c.mu.Lock()
	c.runCtx = ctx
	c.mu.Unlock()

	var segments <-chan Segment
	if c.cfg.Source != nil {
		segments = c.cfg.Source.Segments()
	}

	for {
		select {
		case <-ctx.Done():
			c.timer.Stop()
			if c.cfg.Source != nil {
				c.cfg.Source.Stop()
			}
			return
		case ev := <-c.timerEvents:
			c.handleTimer(ev)
		case seg := <-segments:
			c.handleSegment(seg)
		case act := <-c.actions:
			c.handleAction(act)
		case out := <-c.submitDone:
			c.handleSubmitOutcome(out)
		}
	}
}

// Start requests media permissions and, when granted, enters the reading
// phase of the first (or first unanswered) question. Denial or a missing
// speech capability blocks the session.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.RLock()
	phase := c.phase
	c.mu.RUnlock()
	if phase != PhaseNotStarted {
		return fmt.Errorf("cannot start from phase %s", phase)
	}

	perms, err := c.cfg.Gate.Request(ctx)
	if err != nil {
		c.blockSession(perms, err)
		return err
	}
	if c.cfg.RoundType == hiring.RoundInterview && (c.cfg.Source == nil || !c.cfg.Source.Supported()) {
		c.blockSession(perms, ErrUnsupportedPlatform)
		return ErrUnsupportedPlatform
	}

	c.mu.Lock()
	c.perms = perms
	c.mu.Unlock()
	return c.enqueue(action{kind: actionStart})
}

// SelectOption records the candidate's current choice (quiz variant,
// answering phase only). Selection may change until the answer is locked.
func (c *Controller) SelectOption(i int) error {
	if c.cfg.RoundType != hiring.RoundQuiz {
		return errors.New("option selection only applies to quiz rounds")
	}
	c.mu.RLock()
	phase, idx := c.phase, c.idx
	c.mu.RUnlock()
	if phase != PhaseAnswering {
		return fmt.Errorf("cannot select an option during %s", phase)
	}
	if i < 0 || i >= len(c.cfg.Questions[idx].Options) {
		return fmt.Errorf("option %d out of range", i)
	}
	return c.enqueue(action{kind: actionSelect, option: i})
}

// Advance locks in the current answer before the countdown expires. The
// spoken variant disables this on the final question.
func (c *Controller) Advance() error {
	c.mu.RLock()
	phase, idx := c.phase, c.idx
	c.mu.RUnlock()
	if phase != PhaseAnswering {
		return fmt.Errorf("cannot advance during %s", phase)
	}
	if c.cfg.RoundType == hiring.RoundInterview && idx == len(c.cfg.Questions)-1 {
		return errors.New("manual advance is disabled on the final question")
	}
	return c.enqueue(action{kind: actionAdvance})
}

// Submit hands the full ledger to the scoring gateway. Only valid from
// completion or after a failed submission; retries reuse the ledger
// untouched.
func (c *Controller) Submit() error {
	c.mu.RLock()
	phase := c.phase
	c.mu.RUnlock()
	if phase != PhaseComplete && phase != PhaseSubmissionFailed {
		return fmt.Errorf("cannot submit from phase %s", phase)
	}
	return c.enqueue(action{kind: actionSubmit})
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.phase
}

// Snapshot returns the current presentation state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

// Updates delivers a snapshot after every observable change. The channel
// holds only the latest snapshot; a slow consumer sees the newest state,
// not a backlog.
func (c *Controller) Updates() <-chan Snapshot {
	return c.updates
}

// Responses exposes the ledger contents, ordered by question sequence.
func (c *Controller) Responses() []Record {
	return c.ledger.All()
}

func (c *Controller) enqueue(act action) error {
	select {
	case c.actions <- act:
		return nil
	default:
		return errors.New("session busy, action dropped")
	}
}

func (c *Controller) blockSession(perms Permissions, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.perms = perms
	c.lastErr = err
	if next, terr := Transition(c.phase, EventBlock); terr == nil {
		c.phase = next
	}
	c.logger.Printf("session %s: blocked: %v", c.key, err)
	c.publishLocked()
}

// --- event handlers (Run goroutine only) ---

func (c *Controller) handleTimer(ev TimerEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ev.Gen != c.timerGen {
		// A tick from a countdown this session already abandoned. Acting on
		// it could record a second, later answer for a finished question.
		return
	}
	if !ev.Expired {
		c.remaining = ev.Remaining
		c.publishLocked()
		return
	}
	c.remaining = 0
	switch c.phase {
	case PhaseReading:
		c.enterAnsweringLocked()
	case PhaseAnswering:
		c.finishAnswerLocked()
	case PhaseTransitioning:
		c.enterReadingLocked()
	default:
		c.logger.Printf("session %s: expiry ignored in phase %s", c.key, c.phase)
	}
}

func (c *Controller) handleSegment(seg Segment) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseAnswering {
		return
	}
	c.buf.Add(seg)
	c.publishLocked()
}

func (c *Controller) handleAction(act action) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch act.kind {
	case actionStart:
		if c.phase != PhaseNotStarted {
			return
		}
		c.beginLocked()
	case actionSelect:
		if c.phase != PhaseAnswering || c.cfg.RoundType != hiring.RoundQuiz {
			return
		}
		if act.option < 0 || act.option >= len(c.cfg.Questions[c.idx].Options) {
			return
		}
		c.selected = act.option
		c.publishLocked()
	case actionAdvance:
		if c.phase != PhaseAnswering {
			return
		}
		if c.cfg.RoundType == hiring.RoundInterview && c.idx == len(c.cfg.Questions)-1 {
			return
		}
		c.finishAnswerLocked()
	case actionSubmit:
		c.submitLocked()
	}
}

func (c *Controller) beginLocked() {
	if c.resumedComplete {
		if c.transitionLocked(EventRestore) {
			c.idx = c.startIdx
			c.publishLocked()
		}
		return
	}
	if !c.transitionLocked(EventBegin) {
		return
	}
	c.idx = c.startIdx
	c.startTimerLocked(c.cfg.ReadingSeconds)
	c.publishLocked()
}

func (c *Controller) enterReadingLocked() {
	if !c.transitionLocked(EventNext) {
		return
	}
	c.startTimerLocked(c.cfg.ReadingSeconds)
	c.publishLocked()
}

func (c *Controller) enterAnsweringLocked() {
	if !c.transitionLocked(EventRecord) {
		return
	}
	q := c.cfg.Questions[c.idx]
	c.buf.Reset()
	c.selected = -1
	c.allotted = q.TimeLimitSec
	c.startTimerLocked(q.TimeLimitSec)
	if c.cfg.RoundType == hiring.RoundInterview {
		// Started here and never earlier, so the source's restart reset is
		// anchored to this question's answer window.
		if err := c.cfg.Source.Start(); err != nil {
			c.timer.Stop()
			c.lastErr = err
			if next, terr := Transition(c.phase, EventBlock); terr == nil {
				c.phase = next
			}
			c.logger.Printf("session %s: transcription start failed: %v", c.key, err)
			c.publishLocked()
			return
		}
	}
	c.publishLocked()
}

// finishAnswerLocked is the only place response records are created. Both
// the timeout path and the manual-advance path funnel here; the phase
// guard makes the second arrival a no-op.
func (c *Controller) finishAnswerLocked() {
	if c.phase != PhaseAnswering {
		return
	}
	c.timer.Stop()
	if c.cfg.RoundType == hiring.RoundInterview && c.cfg.Source != nil {
		c.cfg.Source.Stop()
		c.drainSegmentsLocked()
	}

	q := c.cfg.Questions[c.idx]
	rec := Record{
		QuestionID:   q.ID,
		QuestionText: q.Text,
		ElapsedSec:   c.allotted - c.remaining,
	}
	if c.cfg.RoundType == hiring.RoundQuiz {
		sel := c.selected
		correct := false
		points := 0
		if sel >= 0 {
			rec.Answer = q.Options[sel]
			correct = sel == q.CorrectIndex
			if correct {
				points = q.Marks
			}
		} else {
			rec.Answer = NoOptionSelected
			sel = -1
		}
		rec.SelectedOption = &sel
		rec.Correct = &correct
		rec.PointsEarned = &points
	} else {
		text := strings.TrimSpace(c.buf.Commit())
		if text == "" {
			text = NoSpokenResponse
		}
		rec.Answer = text
	}
	c.ledger.Upsert(rec)

	if c.idx == len(c.cfg.Questions)-1 {
		if c.transitionLocked(EventFinish) {
			c.publishLocked()
		}
		return
	}
	if !c.transitionLocked(EventLock) {
		return
	}
	c.idx++
	c.startTimerLocked(c.cfg.PauseSeconds)
	c.publishLocked()
}

// drainSegmentsLocked folds any segments already relayed but not yet
// consumed into the buffer, so speech arriving right before the stop is
// part of the committed answer.
func (c *Controller) drainSegmentsLocked() {
	for {
		select {
		case seg := <-c.cfg.Source.Segments():
			c.buf.Add(seg)
		default:
			return
		}
	}
}

func (c *Controller) submitLocked() {
	if c.phase != PhaseComplete && c.phase != PhaseSubmissionFailed {
		return
	}
	if !c.transitionLocked(EventSubmit) {
		return
	}
	sub := c.buildSubmissionLocked()
	c.publishLocked()

	ctx := c.runCtx
	if ctx == nil {
		ctx = context.Background()
	}
	go func() {
		res, err := c.cfg.Gateway.Submit(ctx, sub)
		select {
		case c.submitDone <- submitOutcome{res: res, err: err}:
		case <-ctx.Done():
		}
	}()
}

func (c *Controller) buildSubmissionLocked() Submission {
	recs := c.ledger.All()
	total := 0
	for _, r := range recs {
		total += r.ElapsedSec
	}
	return Submission{
		JobID:       c.cfg.JobID,
		RoundID:     c.cfg.RoundID,
		CandidateID: c.cfg.CandidateID,
		RoundType:   string(c.cfg.RoundType),
		RoundTitle:  c.cfg.RoundTitle,
		Responses:   recs,
		TotalSec:    total,
	}
}

func (c *Controller) handleSubmitOutcome(out submitOutcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseSubmitting {
		return
	}
	if out.err != nil {
		c.lastErr = out.err
		c.logger.Printf("session %s: submission failed (ledger preserved): %v", c.key, out.err)
		if c.transitionLocked(EventSubmitErr) {
			c.publishLocked()
		}
		return
	}
	c.lastErr = nil
	res := out.res
	c.result = &res
	if c.transitionLocked(EventSubmitOK) {
		reportKey := SessionKey("report", c.cfg.JobID, c.cfg.RoundID, c.cfg.CandidateID)
		reportCopy := struct {
			Responses []Record         `json:"responses"`
			Result    SubmissionResult `json:"result"`
			SavedAt   int64            `json:"savedAt"`
		}{Responses: c.ledger.All(), Result: res, SavedAt: time.Now().Unix()}
		if err := c.mirror.Save(reportKey, reportCopy); err != nil {
			c.logger.Printf("session %s: report copy write failed: %v", c.key, err)
		}
		c.publishLocked()
	}
}

// --- helpers (c.mu held) ---

func (c *Controller) transitionLocked(ev Event) bool {
	next, err := Transition(c.phase, ev)
	if err != nil {
		c.lastErr = err
		c.logger.Printf("session %s: invariant violation: %v", c.key, err)
		c.publishLocked()
		return false
	}
	c.phase = next
	return true
}

func (c *Controller) startTimerLocked(seconds int) {
	c.timer.Stop()
	if err := c.timer.Start(seconds); err != nil {
		c.lastErr = fmt.Errorf("timer start: %w", err)
		c.logger.Printf("session %s: invariant violation: %v", c.key, c.lastErr)
		c.publishLocked()
		return
	}
	c.timerGen = c.timer.Gen()
	c.remaining = seconds
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		Phase:         c.phase,
		QuestionIndex: c.idx,
		QuestionCount: len(c.cfg.Questions),
		Remaining:     c.remaining,
		Selected:      c.selected,
		Answered:      c.ledger.Len(),
		Result:        c.result,
	}
	if c.cfg.RoundType == hiring.RoundInterview {
		s.Transcript = c.buf.Preview()
	}
	if c.lastErr != nil {
		s.Error = c.lastErr.Error()
	}
	return s
}

func (c *Controller) publishLocked() {
	snap := c.snapshotLocked()
	select {
	case c.updates <- snap:
	default:
		// Replace the stale pending snapshot with the newest one.
		select {
		case <-c.updates:
		default:
		}
		select {
		case c.updates <- snap:
		default:
		}
	}
}
