package tui

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
)

type Action string

const (
	actionQuit     Action = "quit"
	actionNext     Action = "next"
	actionPrev     Action = "prev"
	actionActivate Action = "activate"
	actionAdd      Action = "add"
	actionRemove   Action = "remove"
	actionSave     Action = "save"
	actionClose    Action = "close"
	actionConfirm  Action = "confirm"
	actionCancel   Action = "cancel"
)

// keyScope selects the bindings in effect for the focused element.
type keyScope uint8

const (
	// scopeForm applies when a toggle, selector or button has focus.
	scopeForm keyScope = iota
	// scopeText applies while a text field has focus. Unbound keys are typed
	// into the field, so printable runes are never bound here.
	scopeText
	// scopeConfirm applies while a yes/no modal is open.
	scopeConfirm
)

type Binding struct {
	Action Action
	Keys   []string
	Help   string
}

// editing bindings shared by the form and text scopes
var editBindings = []Binding{
	{Action: actionAdd, Keys: []string{"ctrl+n"}, Help: "add condition"},
	{Action: actionRemove, Keys: []string{"ctrl+d"}, Help: "remove condition"},
	{Action: actionSave, Keys: []string{"ctrl+s"}, Help: "save"},
	{Action: actionClose, Keys: []string{"esc"}, Help: "close"},
	{Action: actionQuit, Keys: []string{"ctrl+c"}, Help: "quit"},
}

func defaultBindings(s keyScope) []Binding {
	switch s {
	case scopeForm:
		return append([]Binding{
			{Action: actionNext, Keys: []string{"tab", "down"}, Help: "next"},
			{Action: actionPrev, Keys: []string{"shift+tab", "up"}, Help: "prev"},
			{Action: actionActivate, Keys: []string{"space", "enter"}, Help: "toggle/select"},
		}, editBindings...)
	case scopeText:
		return append([]Binding{
			{Action: actionNext, Keys: []string{"tab", "down", "enter"}, Help: "next"},
			{Action: actionPrev, Keys: []string{"shift+tab", "up"}, Help: "prev"},
		}, editBindings...)
	case scopeConfirm:
		return []Binding{
			{Action: actionConfirm, Keys: []string{"y", "enter"}, Help: "yes"},
			{Action: actionCancel, Keys: []string{"n", "esc"}, Help: "no"},
			{Action: actionQuit, Keys: []string{"ctrl+c"}, Help: "quit"},
		}
	}
	return nil
}

// KeyRegistry resolves key presses to actions for each scope.
type KeyRegistry struct {
	ordered map[keyScope][]*Binding
	byKey   map[keyScope]map[string]*Binding
}

func NewKeyRegistry() *KeyRegistry {
	r := &KeyRegistry{
		ordered: make(map[keyScope][]*Binding),
		byKey:   make(map[keyScope]map[string]*Binding),
	}
	for _, s := range []keyScope{scopeForm, scopeText, scopeConfirm} {
		for _, b := range defaultBindings(s) {
			r.bind(s, b)
		}
	}
	return r
}

// bind adds b to scope s. A key already taken in s keeps its first binding;
// if every key of b is taken the binding is dropped.
func (r *KeyRegistry) bind(s keyScope, b Binding) {
	idx := r.byKey[s]
	if idx == nil {
		idx = make(map[string]*Binding)
		r.byKey[s] = idx
	}
	free := make([]string, 0, len(b.Keys))
	for _, k := range b.Keys {
		k = keyName(k, s)
		if _, taken := idx[k]; !taken && k != "" {
			free = append(free, k)
		}
	}
	if len(free) == 0 {
		return
	}
	nb := &Binding{Action: b.Action, Keys: free, Help: b.Help}
	for _, k := range free {
		idx[k] = nb
	}
	r.ordered[s] = append(r.ordered[s], nb)
}

// Lookup resolves a key name, as reported by tea.KeyMsg.String, in scope s.
func (r *KeyRegistry) Lookup(keyMsg string, s keyScope) *Binding {
	return r.byKey[s][keyName(keyMsg, s)]
}

func (r *KeyRegistry) BindingsForScope(s keyScope) []Binding {
	out := make([]Binding, 0, len(r.ordered[s]))
	for _, b := range r.ordered[s] {
		out = append(out, *b)
	}
	return out
}

func (r *KeyRegistry) HelpBindings(s keyScope) []key.Binding {
	items := r.BindingsForScope(s)
	out := make([]key.Binding, 0, len(items))
	for _, b := range items {
		out = append(out, key.NewBinding(key.WithKeys(b.Keys...), key.WithHelp(b.Keys[0], b.Help)))
	}
	return out
}

// HelpLine renders the scope's bindings as a single footer line.
func (r *KeyRegistry) HelpLine(s keyScope) string {
	help := r.HelpBindings(s)
	parts := make([]string, 0, len(help))
	for _, b := range help {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " · ")
}

// keyName maps a bubbletea key string to its registry name. Bubbletea
// reports the space bar as " ". The confirm prompt answers y/n regardless of
// shift or caps lock; elsewhere runes are matched exactly.
func keyName(k string, s keyScope) string {
	if k == " " {
		return "space"
	}
	if s == scopeConfirm && utf8.RuneCountInString(k) == 1 {
		return strings.ToLower(k)
	}
	return k
}
