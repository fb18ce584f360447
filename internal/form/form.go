package form

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/jask/confirmform/internal/json"
	loglib "github.com/jask/confirmform/internal/log"
	"github.com/jask/confirmform/internal/rules"
)

// DefaultNoticeTTL is how long the capacity notice stays up.
const DefaultNoticeTTL = 3 * time.Second

var ErrNotRemovable = errors.New("the first condition cannot be removed")

// Notice is a transient, self-dismissing message.
type Notice struct {
	ID        string
	Text      string
	ExpiresAt time.Time
}

type Options struct {
	Target      TargetType
	Conditional bool
	NoticeTTL   time.Duration
	Clock       clockwork.Clock
	Logger      loglib.Logger
}

// Form is the in-memory state of the confirmation form. It is not safe for
// concurrent use; every transition runs on the caller's event loop.
type Form struct {
	target      TargetType
	defaultVal  string
	alternate   string
	conditional bool
	rules       *rules.RuleSet

	notice *Notice
	// errors from the last failed save, nil when none are shown
	errors     *ValidationError
	rowFlags   map[string]bool
	fieldFlags map[Field]bool

	noticeTTL time.Duration
	clock     clockwork.Clock
	logger    loglib.Logger
}

func New(opts Options) *Form {
	f := &Form{
		target:      opts.Target,
		conditional: opts.Conditional,
		rules:       &rules.RuleSet{},
		rowFlags:    map[string]bool{},
		fieldFlags:  map[Field]bool{},
		noticeTTL:   opts.NoticeTTL,
		clock:       opts.Clock,
		logger:      loglib.NewLogger(opts.Logger).WithFields(loglib.Fields{loglib.ModuleField: "form"}),
	}
	if !f.target.Valid() {
		f.target = TargetRedirect
	}
	if f.noticeTTL <= 0 {
		f.noticeTTL = DefaultNoticeTTL
	}
	if f.clock == nil {
		f.clock = clockwork.NewRealClock()
	}
	f.Seed()
	return f
}

func (f *Form) Target() TargetType          { return f.target }
func (f *Form) Default() string             { return f.defaultVal }
func (f *Form) Alternate() string           { return f.alternate }
func (f *Form) Conditional() bool           { return f.conditional }
func (f *Form) Rows() []rules.ConditionRow  { return f.rules.Rows() }
func (f *Form) RuleCount() int              { return f.rules.Len() }
func (f *Form) Removable(i int) bool        { return f.rules.Removable(i) }
func (f *Form) Presentation() Presentation  { return f.target.Presentation() }
func (f *Form) NoticeTTL() time.Duration    { return f.noticeTTL }
func (f *Form) RowFlagged(id string) bool   { return f.rowFlags[id] }
func (f *Form) FieldFlagged(fl Field) bool  { return f.fieldFlags[fl] }
func (f *Form) Errors() *ValidationError    { return f.errors }

// Notice returns the capacity notice if one is showing.
func (f *Form) Notice() (Notice, bool) {
	if f.notice == nil {
		return Notice{}, false
	}
	return *f.notice, true
}

// Seed adds a first row when conditional logic is on and no rows exist, so
// the builder is never shown empty. It reports whether a row was added.
func (f *Form) Seed() bool {
	if !f.conditional || !f.rules.Empty() {
		return false
	}
	if _, err := f.AddCondition(); err != nil {
		return false
	}
	return true
}

// SetConditional shows or hides the rule builder. Turning it off keeps the
// rows.
func (f *Form) SetConditional(on bool) {
	f.conditional = on
	f.logger.Debug("conditional logic toggled", loglib.Fields{"enabled": on, "rows": f.rules.Len()})
	f.Seed()
}

func (f *Form) SetTarget(t TargetType) error {
	if !t.Valid() {
		return fmt.Errorf("%w %q", ErrUnknownTarget, t)
	}
	f.target = t
	f.logger.Debug("confirmation target changed", loglib.Fields{"target": string(t)})
	return nil
}

func (f *Form) SetDefault(s string)   { f.defaultVal = s }
func (f *Form) SetAlternate(s string) { f.alternate = s }

// AddCondition appends a row. At capacity it raises the capacity notice,
// unless one is already showing, and returns rules.ErrCapacityExceeded.
func (f *Form) AddCondition() (rules.ConditionRow, error) {
	row, err := f.rules.Add()
	if err != nil {
		if errors.Is(err, rules.ErrCapacityExceeded) && f.notice == nil {
			f.notice = &Notice{
				ID:        uuid.NewString(),
				Text:      capacityNoticeText(),
				ExpiresAt: f.clock.Now().Add(f.noticeTTL),
			}
			f.logger.Debug("condition limit reached", loglib.Fields{"max": rules.MaxConditions})
		}
		return rules.ConditionRow{}, err
	}
	f.notice = nil
	f.logger.Debug("condition added", loglib.Fields{"row": row.ID, "rows": f.rules.Len()})
	return row, nil
}

// RemoveCondition deletes a row and re-runs live validation. The first row
// has no remove affordance and is rejected.
func (f *Form) RemoveCondition(id string) error {
	i := f.rules.Index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", rules.ErrRowNotFound, id)
	}
	if !f.rules.Removable(i) {
		return ErrNotRemovable
	}
	if err := f.rules.Remove(id); err != nil {
		return err
	}
	delete(f.rowFlags, id)
	f.logger.Debug("condition removed", loglib.Fields{"row": id, "rows": f.rules.Len()})
	f.validateRows()
	return nil
}

func (f *Form) SetRowField(id, name string) error {
	if err := f.rules.SetFieldName(id, name); err != nil {
		return err
	}
	f.validateRows()
	return nil
}

func (f *Form) SetRowValue(id, value string) error {
	if err := f.rules.SetFieldValue(id, value); err != nil {
		return err
	}
	f.validateRows()
	return nil
}

func (f *Form) SetRowOperator(id string, op rules.Operator) error {
	return f.rules.SetOperator(id, op)
}

// ExpireNotice clears the notice only if it is still the one with the given
// ID. Timers for notices that are already gone are no-ops.
func (f *Form) ExpireNotice(id string) bool {
	if f.notice == nil || f.notice.ID != id {
		return false
	}
	f.notice = nil
	return true
}

// ExpireNotices clears the notice once its deadline has passed.
func (f *Form) ExpireNotices() bool {
	if f.notice == nil || f.clock.Now().Before(f.notice.ExpiresAt) {
		return false
	}
	f.notice = nil
	return true
}

// RowFlags returns the advisory per-row flags, keyed by row ID.
func (f *Form) RowFlags() map[string]bool {
	out := make(map[string]bool, len(f.rowFlags))
	for k, v := range f.rowFlags {
		out[k] = v
	}
	return out
}

// validateRows is the live pass: a row is flagged while exactly one of its
// two inputs is filled in.
func (f *Form) validateRows() bool {
	ok := true
	for _, r := range f.rules.Rows() {
		bad := r.Incomplete()
		f.rowFlags[r.ID] = bad
		if bad {
			ok = false
		}
	}
	return ok
}

// Validate runs the save-time checks without touching form state.
func (f *Form) Validate() []Issue {
	return validate(f.snapshot())
}

// Save validates the form. On failure the errors are kept for display and
// returned as a *ValidationError; on success the payload is logged and
// returned.
func (f *Form) Save() (Payload, error) {
	f.errors = nil
	st := f.snapshot()
	issues := validate(st)
	f.applyFlags(st, issues)

	if len(issues) > 0 {
		f.errors = &ValidationError{Issues: issues}
		f.logger.Debug("save rejected", loglib.Fields{"errors": len(issues)})
		return Payload{}, f.errors
	}

	p := serialize(st)
	if b, err := json.Marshal(p); err == nil {
		f.logger.Info("configuration saved", loglib.Fields{"config": b})
	} else {
		f.logger.Warn(err, "configuration saved but could not be encoded for the log")
	}
	return p, nil
}

// ClearErrors dismisses the error list and the save-time highlights. Rows
// fall back to their live flags.
func (f *Form) ClearErrors() {
	f.errors = nil
	f.fieldFlags = map[Field]bool{}
	f.validateRows()
}

func (f *Form) applyFlags(st state, issues []Issue) {
	f.fieldFlags = map[Field]bool{}
	for _, is := range issues {
		switch is.Field {
		case FieldDefault, FieldAlternate:
			f.fieldFlags[is.Field] = true
		}
	}
	if !st.conditional {
		return
	}
	for _, r := range st.rows {
		f.rowFlags[r.ID] = !r.Complete()
	}
}

// state is an immutable view of the form used by validation and
// serialization.
type state struct {
	target      TargetType
	defaultVal  string
	alternate   string
	conditional bool
	rows        []rules.ConditionRow
}

func (f *Form) snapshot() state {
	return state{
		target:      f.target,
		defaultVal:  f.defaultVal,
		alternate:   f.alternate,
		conditional: f.conditional,
		rows:        f.rules.Rows(),
	}
}

func capacityNoticeText() string {
	return fmt.Sprintf("Maximum %d conditions allowed", rules.MaxConditions)
}
