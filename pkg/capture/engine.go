package capture

import (
	"fmt"
	"sync"

	"github.com/tidwall/gjson"

	"xscraper/pkg/config"
	errs "xscraper/pkg/errors"
	"xscraper/pkg/logger"
	"xscraper/pkg/retry"
	"xscraper/pkg/session"
	"xscraper/pkg/store"
	"xscraper/pkg/timeline"
)

// Phase is the orchestrator state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseStarting
	PhaseScrolling
	PhaseFlushing
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseStarting:
		return "starting"
	case PhaseScrolling:
		return "scrolling"
	case PhaseFlushing:
		return "flushing"
	case PhaseDone:
		return "done"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// ProcessResult reports the outcome of one Process call.
type ProcessResult struct {
	// Accepted is false for unparseable or container-less payloads.
	Accepted bool `json:"accepted"`
	// Added is the number of records the call inserted.
	Added int `json:"added"`
	// Total is the store size after the call.
	Total int `json:"total"`
}

// Engine sequences capture phases across scopes: navigation, scroll start,
// accumulation, flush, advance. It is the sole owner of the phase state and
// the dedup store; every command handler is serialized by one mutex, so two
// in-flight Process calls can never interleave their store mutations.
type Engine struct {
	mu sync.Mutex

	cfg    *config.Config
	log    logger.Logger
	nav    Navigator
	scroll ScrollDriver
	sink   Sink
	store  *store.Store

	queue     []Scope
	current   Scope
	identity  string
	budget    int
	phase     Phase
	scrollRun uint64

	sessMgr *session.Manager
	sess    *session.Session
}

// New creates an engine wired to its collaborators.
func New(cfg *config.Config, nav Navigator, scroll ScrollDriver, sink Sink) *Engine {
	return &Engine{
		cfg:      cfg,
		log:      logger.GetLogger(),
		nav:      nav,
		scroll:   scroll,
		sink:     sink,
		store:    store.New(),
		identity: cfg.Capture.Account,
		phase:    PhaseIdle,
	}
}

// AttachSession makes the engine record its progress into a persisted
// session. Optional; session write failures are logged, never fatal.
func (e *Engine) AttachSession(mgr *session.Manager, sess *session.Session) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sessMgr = mgr
	e.sess = sess
	if sess != nil && sess.Identity != "" && e.identity == "" {
		e.identity = sess.Identity
	}
}

// Phase returns the current orchestrator phase.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Identity returns the cached account identity, if resolved.
func (e *Engine) Identity() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.identity
}

// Start clears the store, loads the scope queue and begins the first phase.
// An empty scope list defaults to the tweets scope.
func (e *Engine) Start(scopes []Scope, scrollBudget int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != PhaseIdle && e.phase != PhaseDone {
		return fmt.Errorf("capture already in progress (phase %s)", e.phase)
	}

	if len(scopes) == 0 {
		scopes = []Scope{ScopeTweets}
	}

	e.store.Clear()
	e.queue = append([]Scope(nil), scopes...)
	e.budget = scrollBudget

	e.captureIdentity()

	e.log.InfoWithFields("capture started", map[string]interface{}{
		"scopes":        len(e.queue),
		"scroll_budget": scrollBudget,
		"identity":      e.identity,
	})

	e.advance()
	return nil
}

// Stop ends the current scope early: the scroll driver is cancelled and the
// accumulated records are flushed. In the flushing phase, Stop retries a
// previously failed flush. The returned error is a surfaced sink failure;
// the store keeps its records in that case.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.phase {
	case PhaseScrolling, PhaseStarting:
		e.scroll.Stop()
		// Invalidate the run so a completion the driver committed just
		// before Stop cannot end a later scope's scrolling phase.
		e.scrollRun = 0
		return e.flush()
	case PhaseFlushing:
		return e.flush()
	default:
		e.log.WithField("phase", e.phase.String()).Debug("stop ignored")
		return nil
	}
}

// ScrollFinished is the scroll driver's completion signal. run is the token
// the driver's Start returned; a completion whose run does not match the
// engine's active scroll run is stale (it belongs to an earlier scope's
// cancelled or superseded run) and is ignored.
func (e *Engine) ScrollFinished(run uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.phase {
	case PhaseScrolling, PhaseFlushing:
		if run != e.scrollRun {
			e.log.WithFields(map[string]interface{}{
				"run":    run,
				"active": e.scrollRun,
			}).Debug("stale scroll completion ignored")
			return nil
		}
		return e.flush()
	default:
		e.log.WithField("phase", e.phase.String()).Debug("scroll finished signal ignored")
		return nil
	}
}

// PageReady signals that the destination of the starting phase has loaded;
// the engine asks the scroll driver to start with the phase's budget.
func (e *Engine) PageReady() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != PhaseStarting {
		e.log.WithField("phase", e.phase.String()).Debug("page ready signal ignored")
		return
	}
	e.phase = PhaseScrolling
	e.scrollRun = e.scroll.Start(e.budget)
}

// Clear empties the dedup store. Accepted in any state; the scope queue and
// the current scope are untouched.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.store.Clear()
	e.log.Debug("store cleared by command")
}

// Process ingests one intercepted response. Payloads are accumulated only
// while a scope is being captured (starting or scrolling phase); anything
// arriving outside those phases is ignored. A malformed or container-less
// payload is a soft per-call failure: logged, nothing added, phase state
// unaffected.
func (e *Engine) Process(rawPayload, sourceURL string) ProcessResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != PhaseStarting && e.phase != PhaseScrolling {
		e.log.WithFields(map[string]interface{}{
			"source": sourceURL,
			"phase":  e.phase.String(),
		}).Debug("payload ignored outside capture phase")
		return ProcessResult{Accepted: false, Total: e.store.Size()}
	}

	if !gjson.Valid(rawPayload) {
		e.log.WithFields(map[string]interface{}{
			"source": sourceURL,
			"kind":   string(errs.ErrorTypeParse),
		}).Warn("skipping unparseable payload")
		return ProcessResult{Accepted: false, Total: e.store.Size()}
	}

	payload := gjson.Parse(rawPayload)
	container, ok := timeline.Locate(payload)
	if !ok {
		e.log.WithFields(map[string]interface{}{
			"source": sourceURL,
			"kind":   string(errs.ErrorTypeLocator),
		}).Debug("payload has no timeline container")
		return ProcessResult{Accepted: false, Total: e.store.Size()}
	}

	added := timeline.Extract(container, e.store, e.log)

	e.log.DebugWithFields("payload processed", map[string]interface{}{
		"source": sourceURL,
		"added":  added,
		"total":  e.store.Size(),
	})
	return ProcessResult{Accepted: true, Added: added, Total: e.store.Size()}
}

// captureIdentity resolves the account identity once, from the first location
// whose leading path segment is not reserved. It is retained afterwards
// because some scope destinations (bookmarks) never expose it.
func (e *Engine) captureIdentity() {
	if e.identity != "" {
		return
	}
	loc, err := e.nav.Location()
	if err != nil {
		e.log.WithError(err).Debug("could not read current location")
		return
	}
	if id := identityFromLocation(loc); id != "" {
		e.identity = id
		e.log.WithField("identity", id).Info("account identity resolved")
		e.saveSessionIdentity()
	}
}

// advance pops scopes off the queue until one starts or the queue drains.
// Scopes that cannot be resolved or navigated to are skipped: unresolved
// identity degrades the run to identity-independent scopes, it does not
// abort it.
func (e *Engine) advance() {
	for len(e.queue) > 0 {
		scope := e.queue[0]
		e.queue = e.queue[1:]
		if e.beginScope(scope) {
			return
		}
	}

	e.phase = PhaseDone
	e.current = ""
	e.log.Info("all scopes processed")
	e.finishSession()
}

// beginScope enters the starting phase for a scope. It reports false when the
// scope had to be skipped.
func (e *Engine) beginScope(scope Scope) bool {
	e.captureIdentity()

	path, err := scope.destinationPath(e.identity)
	if err != nil {
		e.log.WithError(err).WithField("scope", string(scope)).Warn("skipping scope")
		return false
	}
	dest := e.cfg.Capture.BaseURL + path

	e.current = scope
	e.phase = PhaseStarting
	e.saveSessionScope(scope)

	loc, err := e.nav.Location()
	if err == nil && sameLocation(loc, dest) {
		// A same-location scope switch must regenerate response traffic;
		// the engine only observes new responses.
		e.log.WithField("dest", dest).Debug("already at destination, forcing reload")
		err = e.nav.Reload()
	} else {
		err = e.nav.Navigate(dest)
	}
	if err != nil {
		e.log.WithError(err).WithFields(map[string]interface{}{
			"scope": string(scope),
			"dest":  dest,
			"kind":  string(errs.ErrorTypeNavigation),
		}).Warn("navigation rejected, skipping scope")
		return false
	}

	e.log.InfoWithFields("scope phase starting", map[string]interface{}{
		"scope": string(scope),
		"dest":  dest,
	})
	return true
}

// flush emits the store contents for the active scope and clears the store
// only after the sink confirms. On failure the records are kept, the engine
// stays in the flushing phase and the error is surfaced; a later Stop or
// ScrollFinished retries.
func (e *Engine) flush() error {
	e.phase = PhaseFlushing
	records := e.store.Values()
	scope := e.current

	err := retry.Do(func() error {
		return e.sink.Emit(records, string(scope))
	}, e.retryConfig())
	if err != nil {
		e.log.WithError(err).WithFields(map[string]interface{}{
			"scope":   string(scope),
			"records": len(records),
			"kind":    string(errs.ErrorTypeSink),
		}).Error("flush rejected, keeping records")
		return errs.Wrap(errs.ErrorTypeSink, fmt.Sprintf("flush failed for scope %s", scope), err)
	}

	e.store.Clear()
	e.log.InfoWithFields("scope flushed", map[string]interface{}{
		"scope":   string(scope),
		"records": len(records),
	})
	e.completeSessionScope(scope, len(records))

	e.advance()
	return nil
}

func (e *Engine) retryConfig() *retry.Config {
	return &retry.Config{
		MaxAttempts: e.cfg.Retry.MaxAttempts,
		Backoff: &retry.ExponentialBackoff{
			BaseDelay:    e.cfg.Retry.RetryDelay,
			MaxDelay:     30 * e.cfg.Retry.RetryDelay,
			Multiplier:   e.cfg.Retry.BackoffMultiplier,
			JitterFactor: 0.1,
		},
		RetryIf: retry.DefaultRetryIf,
		Logger:  e.log,
	}
}

func (e *Engine) saveSessionScope(scope Scope) {
	if e.sessMgr == nil || e.sess == nil {
		return
	}
	pending := make([]string, len(e.queue))
	for i, s := range e.queue {
		pending[i] = string(s)
	}
	if err := e.sessMgr.BeginScope(e.sess, string(scope), pending); err != nil {
		e.log.WithError(err).Warn("failed to persist session scope")
	}
}

func (e *Engine) completeSessionScope(scope Scope, records int) {
	if e.sessMgr == nil || e.sess == nil {
		return
	}
	if err := e.sessMgr.CompleteScope(e.sess, string(scope), records); err != nil {
		e.log.WithError(err).Warn("failed to persist session progress")
	}
}

func (e *Engine) saveSessionIdentity() {
	if e.sessMgr == nil || e.sess == nil {
		return
	}
	if err := e.sessMgr.SetIdentity(e.sess, e.identity); err != nil {
		e.log.WithError(err).Warn("failed to persist session identity")
	}
}

func (e *Engine) finishSession() {
	if e.sessMgr == nil || e.sess == nil {
		return
	}
	if err := e.sessMgr.Delete(); err != nil {
		e.log.WithError(err).Warn("failed to delete finished session")
	}
}

// sameLocation compares two locations ignoring trailing slashes.
func sameLocation(a, b string) bool {
	trim := func(s string) string {
		for len(s) > 0 && s[len(s)-1] == '/' {
			s = s[:len(s)-1]
		}
		return s
	}
	return trim(a) == trim(b)
}
