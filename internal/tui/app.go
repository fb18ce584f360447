package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/confirmform/internal/form"
	loglib "github.com/jask/confirmform/internal/log"
	"github.com/jask/confirmform/internal/rules"
)

// Options configures the editor.
type Options struct {
	Form form.Options
	// Document, when set, is loaded into the form on start and on cancel.
	Document *form.Payload
	Logger   loglib.Logger
	// OnSave is called with every successfully saved payload.
	OnSave func(form.Payload)
}

// App is the interactive confirmation form editor. Form state lives in
// form.Form; App only projects it and dispatches key presses.
type App struct {
	opts   Options
	form   *form.Form
	keys   *KeyRegistry
	input  textinput.Model
	logger loglib.Logger

	focus     int
	modal     modalState
	status    string
	statusErr bool
	// ID of the notice with a pending expiry tick
	scheduled string
	saved     *form.Payload

	width  int
	height int
}

type modalState string

const (
	modalNone          modalState = ""
	modalConfirmCancel modalState = "confirmCancel"
	modalConfirmClose  modalState = "confirmClose"
)

type controlKind int

const (
	controlTarget controlKind = iota
	controlDefault
	controlToggle
	controlOperator
	controlRowName
	controlRowValue
	controlRemove
	controlAdd
	controlAlternate
	controlSave
	controlCancel
)

// control is one focusable element. row is set for per-condition controls.
type control struct {
	kind controlKind
	row  string
}

func (c control) text() bool {
	switch c.kind {
	case controlDefault, controlAlternate, controlRowName, controlRowValue:
		return true
	}
	return false
}

type noticeExpiredMsg struct{ id string }

func New(opts Options) (*App, error) {
	a := &App{
		opts:   opts,
		keys:   NewKeyRegistry(),
		logger: loglib.NewLogger(opts.Logger).WithFields(loglib.Fields{loglib.ModuleField: "tui"}),
	}
	if a.opts.Form.Logger == nil {
		a.opts.Form.Logger = opts.Logger
	}
	f, err := a.freshForm()
	if err != nil {
		return nil, err
	}
	a.form = f

	a.input = textinput.New()
	a.input.Prompt = ""
	a.input.CharLimit = 2048
	a.input.Width = 48
	a.syncInput()
	return a, nil
}

func (a *App) freshForm() (*form.Form, error) {
	f := form.New(a.opts.Form)
	if a.opts.Document != nil {
		if err := f.Load(*a.opts.Document); err != nil {
			return nil, fmt.Errorf("load document: %w", err)
		}
		f.Seed()
	}
	return f, nil
}

// Form exposes the edited form.
func (a *App) Form() *form.Form { return a.form }

// Saved returns the last successfully saved payload.
func (a *App) Saved() (form.Payload, bool) {
	if a.saved == nil {
		return form.Payload{}, false
	}
	return *a.saved, true
}

func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		return a, nil
	case noticeExpiredMsg:
		a.form.ExpireNotice(m.id)
		if a.scheduled == m.id {
			a.scheduled = ""
		}
		return a, nil
	case tea.KeyMsg:
		// a missed tick must not leave the notice up past its deadline
		if a.form.ExpireNotices() {
			a.scheduled = ""
		}
		if a.modal != modalNone {
			return a.handleModalKey(m)
		}
		return a.handleFormKey(m)
	}
	if a.focused().text() {
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) handleFormKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := a.focused()
	scope := scopeForm
	if c.text() {
		scope = scopeText
	}
	b := a.keys.Lookup(m.String(), scope)
	if b == nil {
		if !c.text() {
			return a, nil
		}
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(m)
		a.commitInput(c)
		return a, cmd
	}

	switch b.Action {
	case actionQuit:
		return a, tea.Quit
	case actionNext:
		a.moveFocus(1)
	case actionPrev:
		a.moveFocus(-1)
	case actionActivate:
		return a, a.activate(c)
	case actionAdd:
		return a, a.addCondition()
	case actionRemove:
		if c.row == "" {
			a.setStatus("Focus a condition to remove it", true)
			break
		}
		a.removeRow(c.row)
	case actionSave:
		a.save()
	case actionClose:
		if a.form.Errors() != nil {
			a.form.ClearErrors()
			a.setStatus("Errors dismissed", false)
			break
		}
		a.modal = modalConfirmClose
	}
	return a, nil
}

func (a *App) handleModalKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	b := a.keys.Lookup(m.String(), scopeConfirm)
	if b == nil {
		return a, nil
	}
	switch b.Action {
	case actionQuit:
		return a, tea.Quit
	case actionCancel:
		a.modal = modalNone
	case actionConfirm:
		modal := a.modal
		a.modal = modalNone
		if modal == modalConfirmClose {
			a.logger.Debug("editor closed")
			return a, tea.Quit
		}
		a.reset()
	}
	return a, nil
}

// reset discards every edit and starts over from the initial document.
func (a *App) reset() {
	f, err := a.freshForm()
	if err != nil {
		a.setStatus(err.Error(), true)
		return
	}
	a.form = f
	a.focus = 0
	a.scheduled = ""
	a.setStatus("Changes discarded", false)
	a.logger.Debug("edits discarded")
	a.syncInput()
}

func (a *App) activate(c control) tea.Cmd {
	switch c.kind {
	case controlToggle:
		a.form.SetConditional(!a.form.Conditional())
	case controlTarget:
		if err := a.form.SetTarget(a.form.Target().Next()); err != nil {
			a.setStatus(err.Error(), true)
		}
	case controlOperator:
		row, ok := a.row(c.row)
		if !ok {
			return nil
		}
		if err := a.form.SetRowOperator(row.ID, row.Operator.Toggle()); err != nil {
			a.setStatus(err.Error(), true)
		}
	case controlRemove:
		a.removeRow(c.row)
	case controlAdd:
		return a.addCondition()
	case controlSave:
		a.save()
	case controlCancel:
		a.modal = modalConfirmCancel
	}
	a.clampFocus()
	a.syncInput()
	return nil
}

// addCondition appends a row and focuses its field name. At capacity it
// schedules expiry of the notice the form raised.
func (a *App) addCondition() tea.Cmd {
	if !a.form.Conditional() {
		// enabling seeds the first row
		a.form.SetConditional(true)
		if rows := a.form.Rows(); len(rows) > 0 {
			a.focusControl(control{kind: controlRowName, row: rows[0].ID})
		}
		return nil
	}
	row, err := a.form.AddCondition()
	if err != nil {
		if errors.Is(err, rules.ErrCapacityExceeded) {
			return a.scheduleNotice()
		}
		a.setStatus(err.Error(), true)
		return nil
	}
	a.focusControl(control{kind: controlRowName, row: row.ID})
	return nil
}

func (a *App) scheduleNotice() tea.Cmd {
	n, ok := a.form.Notice()
	if !ok || n.ID == a.scheduled {
		return nil
	}
	a.scheduled = n.ID
	id := n.ID
	return tea.Tick(a.form.NoticeTTL(), func(time.Time) tea.Msg {
		return noticeExpiredMsg{id: id}
	})
}

func (a *App) removeRow(id string) {
	if err := a.form.RemoveCondition(id); err != nil {
		if errors.Is(err, form.ErrNotRemovable) {
			a.setStatus("The first condition cannot be removed", true)
			return
		}
		a.setStatus(err.Error(), true)
		return
	}
	a.clampFocus()
	a.syncInput()
}

func (a *App) save() {
	p, err := a.form.Save()
	var verr *form.ValidationError
	switch {
	case errors.As(err, &verr):
		a.setStatus(fmt.Sprintf("%d error(s), nothing saved", len(verr.Issues)), true)
		return
	case err != nil:
		a.setStatus(err.Error(), true)
		return
	}
	a.saved = &p
	a.setStatus("Saved: "+p.String(), false)
	if a.opts.OnSave != nil {
		a.opts.OnSave(p)
	}
}

func (a *App) setStatus(s string, isErr bool) {
	a.status = s
	a.statusErr = isErr
}

// ---------------------------------------------------------------------------
// Focus
// ---------------------------------------------------------------------------

// controls lists the focusable elements in tab order for the current state.
func (a *App) controls() []control {
	cs := []control{
		{kind: controlTarget},
		{kind: controlDefault},
		{kind: controlToggle},
	}
	if a.form.Conditional() {
		for i, r := range a.form.Rows() {
			if i > 0 {
				cs = append(cs, control{kind: controlOperator, row: r.ID})
			}
			cs = append(cs,
				control{kind: controlRowName, row: r.ID},
				control{kind: controlRowValue, row: r.ID},
			)
			if a.form.Removable(i) {
				cs = append(cs, control{kind: controlRemove, row: r.ID})
			}
		}
		cs = append(cs, control{kind: controlAdd}, control{kind: controlAlternate})
	}
	return append(cs, control{kind: controlSave}, control{kind: controlCancel})
}

func (a *App) focused() control {
	cs := a.controls()
	if a.focus < 0 || a.focus >= len(cs) {
		return cs[len(cs)-1]
	}
	return cs[a.focus]
}

func (a *App) moveFocus(delta int) {
	n := len(a.controls())
	a.focus = ((a.focus+delta)%n + n) % n
	a.syncInput()
}

func (a *App) focusControl(target control) {
	for i, c := range a.controls() {
		if c == target {
			a.focus = i
			break
		}
	}
	a.syncInput()
}

func (a *App) clampFocus() {
	if n := len(a.controls()); a.focus >= n {
		a.focus = n - 1
	}
}

// syncInput binds the text input to the focused text control.
func (a *App) syncInput() {
	c := a.focused()
	if !c.text() {
		a.input.Blur()
		return
	}
	a.input.SetValue(a.valueOf(c))
	a.input.Placeholder = a.placeholderOf(c)
	a.input.CursorEnd()
	a.input.Focus()
}

func (a *App) commitInput(c control) {
	v := a.input.Value()
	var err error
	switch c.kind {
	case controlDefault:
		a.form.SetDefault(v)
	case controlAlternate:
		a.form.SetAlternate(v)
	case controlRowName:
		err = a.form.SetRowField(c.row, v)
	case controlRowValue:
		err = a.form.SetRowValue(c.row, v)
	}
	if err != nil {
		a.setStatus(err.Error(), true)
	}
}

func (a *App) valueOf(c control) string {
	switch c.kind {
	case controlDefault:
		return a.form.Default()
	case controlAlternate:
		return a.form.Alternate()
	case controlRowName, controlRowValue:
		r, ok := a.row(c.row)
		if !ok {
			return ""
		}
		if c.kind == controlRowName {
			return r.FieldName
		}
		return r.FieldValue
	}
	return ""
}

func (a *App) placeholderOf(c control) string {
	switch c.kind {
	case controlRowName:
		return "Field name"
	case controlRowValue:
		return "Value"
	}
	return a.form.Presentation().Placeholder
}

func (a *App) row(id string) (rules.ConditionRow, bool) {
	for _, r := range a.form.Rows() {
		if r.ID == id {
			return r, true
		}
	}
	return rules.ConditionRow{}, false
}

// ---------------------------------------------------------------------------
// View
// ---------------------------------------------------------------------------

func (a *App) View() string {
	var sections []string
	sections = append(sections, titleStyle.Render("Confirmation settings"))
	if errs := a.form.Errors(); errs != nil {
		sections = append(sections, a.renderErrors(errs))
	}
	sections = append(sections,
		a.renderTarget(),
		a.renderDefault(),
		sectionStyle.Render(a.renderToggle()),
	)
	if a.form.Conditional() {
		sections = append(sections, builderIndent.Render(a.renderBuilder()))
	}
	sections = append(sections, sectionStyle.Render(a.renderButton(controlSave, "Save")+" "+a.renderButton(controlCancel, "Cancel")))
	if a.status != "" {
		st := statusOKStyle
		if a.statusErr {
			st = statusErrStyle
		}
		sections = append(sections, st.Render(a.status))
	}
	sections = append(sections, helpStyle.Render(a.keys.HelpLine(a.scope())))

	body := lipgloss.JoinVertical(lipgloss.Left, sections...)
	if a.modal != modalNone {
		body = overlayCenter(body, modalStyle.Render(a.renderModal()), a.width, a.height)
	}
	return body
}

func (a *App) scope() keyScope {
	switch {
	case a.modal != modalNone:
		return scopeConfirm
	case a.focused().text():
		return scopeText
	}
	return scopeForm
}

func (a *App) renderErrors(errs *form.ValidationError) string {
	lines := []string{lipgloss.NewStyle().Bold(true).Render(form.ErrorTitle)}
	for _, msg := range errs.Messages() {
		lines = append(lines, "• "+msg)
	}
	return errorBoxStyle.Render(strings.Join(lines, "\n"))
}

func (a *App) renderTarget() string {
	c := control{kind: controlTarget}
	opts := make([]string, 0, len(form.Targets))
	for _, t := range form.Targets {
		label := "( ) " + string(t)
		st := mutedStyle
		if t == a.form.Target() {
			label = "(•) " + string(t)
			st = valueStyle
		}
		if a.isFocused(c) && t == a.form.Target() {
			st = focusStyle
		}
		opts = append(opts, st.Render(label))
	}
	return a.cursor(c) + labelStyle.Render("Confirmation type ") + strings.Join(opts, "  ")
}

func (a *App) renderDefault() string {
	pres := a.form.Presentation()
	label := a.fieldLabel(pres.DefaultLabel, form.FieldDefault)
	if pres.InputKind == form.InputFile {
		label += mutedStyle.Render(" (" + pres.Accept + ")")
	}
	return label + "\n" + a.renderField(control{kind: controlDefault}, 48)
}

func (a *App) renderAlternate() string {
	pres := a.form.Presentation()
	label := a.fieldLabel(pres.AlternateLabel, form.FieldAlternate)
	if pres.InputKind == form.InputFile {
		label += mutedStyle.Render(" (" + pres.Accept + ")")
	}
	return label + "\n" + a.renderField(control{kind: controlAlternate}, 48)
}

func (a *App) fieldLabel(text string, fl form.Field) string {
	if a.form.FieldFlagged(fl) {
		return invalidStyle.Render(text)
	}
	return labelStyle.Render(text)
}

func (a *App) renderToggle() string {
	c := control{kind: controlToggle}
	box := "[ ]"
	if a.form.Conditional() {
		box = "[x]"
	}
	st := valueStyle
	if a.isFocused(c) {
		st = focusStyle
	}
	return a.cursor(c) + st.Render(box+" Enable conditional logic")
}

func (a *App) renderBuilder() string {
	var lines []string
	for i, r := range a.form.Rows() {
		lines = append(lines, a.renderRow(i, r))
	}

	add := a.renderButton(controlAdd, fmt.Sprintf("+ Add Condition (%d/%d)", a.form.RuleCount(), rules.MaxConditions))
	if n, ok := a.form.Notice(); ok {
		add += " " + noticeStyle.Render(n.Text)
	}
	lines = append(lines, add, "", a.renderAlternate())
	return strings.Join(lines, "\n")
}

func (a *App) renderRow(i int, r rules.ConditionRow) string {
	var b strings.Builder
	if i > 0 {
		c := control{kind: controlOperator, row: r.ID}
		st := operatorStyle
		if a.isFocused(c) {
			st = focusStyle
		}
		b.WriteString(a.cursor(c) + st.Render(fmt.Sprintf("‹%s›", r.Operator.Label())) + "\n")
	}
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%2d. ", i+1)))
	b.WriteString(a.renderField(control{kind: controlRowName, row: r.ID}, 20))
	b.WriteString(mutedStyle.Render(" = "))
	b.WriteString(a.renderField(control{kind: controlRowValue, row: r.ID}, 20))
	if a.form.Removable(i) {
		b.WriteString(" " + a.renderButton(controlRemove, "✕", r.ID))
	}

	st := rowStyle
	if a.form.RowFlagged(r.ID) {
		st = rowInvalid
	}
	return st.Render(b.String())
}

func (a *App) renderField(c control, width int) string {
	if a.isFocused(c) {
		return focusStyle.Render("› ") + a.input.View()
	}
	v := a.valueOf(c)
	if v == "" {
		return "  " + mutedStyle.Render(truncate(a.placeholderOf(c), width))
	}
	return "  " + valueStyle.Render(truncate(v, width))
}

func (a *App) renderButton(kind controlKind, label string, row ...string) string {
	c := control{kind: kind}
	if len(row) > 0 {
		c.row = row[0]
	}
	if a.isFocused(c) {
		return buttonFocus.Render(label)
	}
	return buttonStyle.Render(label)
}

func (a *App) renderModal() string {
	switch a.modal {
	case modalConfirmCancel:
		return titleStyle.Render("Discard changes?") + "\nAll edits will be lost.\n[y] Yes  [n] No"
	case modalConfirmClose:
		return titleStyle.Render("Close without saving?") + "\nUnsaved edits will be lost.\n[y] Yes  [n] No"
	}
	return ""
}

func (a *App) isFocused(c control) bool {
	return a.modal == modalNone && a.focused() == c
}

func (a *App) cursor(c control) string {
	if a.isFocused(c) {
		return focusStyle.Render("▶ ")
	}
	return "  "
}
