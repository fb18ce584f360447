package tui

import "testing"

func TestKeyRegistryLookupByScope(t *testing.T) {
	r := NewKeyRegistry()

	act := r.Lookup(" ", scopeForm)
	if act == nil {
		t.Fatal("expected space binding in form scope")
	}
	if act.Action != actionActivate {
		t.Fatalf("space action = %q, want %q", act.Action, actionActivate)
	}

	if got := r.Lookup(" ", scopeText); got != nil {
		t.Fatalf("did not expect space binding in text scope, got %q", got.Action)
	}

	next := r.Lookup("enter", scopeText)
	if next == nil || next.Action != actionNext {
		t.Fatalf("enter in text scope = %v, want %q", next, actionNext)
	}

	yes := r.Lookup("y", scopeConfirm)
	if yes == nil || yes.Action != actionConfirm {
		t.Fatalf("y in confirm scope = %v, want %q", yes, actionConfirm)
	}
}

func TestKeyRegistryConfirmFoldsCase(t *testing.T) {
	r := NewKeyRegistry()

	for k, want := range map[string]Action{"Y": actionConfirm, "N": actionCancel} {
		if b := r.Lookup(k, scopeConfirm); b == nil || b.Action != want {
			t.Errorf("%q in confirm scope = %v, want %q", k, b, want)
		}
	}
	// typed text is never folded into a binding
	if b := r.Lookup("N", scopeText); b != nil {
		t.Errorf("N in text scope = %q, want unbound", b.Action)
	}
}

func TestKeyRegistryFirstBindingWins(t *testing.T) {
	r := &KeyRegistry{
		ordered: make(map[keyScope][]*Binding),
		byKey:   make(map[keyScope]map[string]*Binding),
	}

	r.bind(scopeForm, Binding{Action: actionAdd, Keys: []string{"x"}, Help: "first"})
	r.bind(scopeForm, Binding{Action: actionSave, Keys: []string{"x"}, Help: "duplicate"})
	r.bind(scopeForm, Binding{Action: actionRemove, Keys: []string{"x", "z"}, Help: "partial"})
	r.bind(scopeText, Binding{Action: actionSave, Keys: []string{"x"}, Help: "different scope"})

	form := r.BindingsForScope(scopeForm)
	if len(form) != 2 {
		t.Fatalf("form bindings = %+v, want 2", form)
	}
	if form[0].Action != actionAdd {
		t.Fatalf("x in form scope = %q, want %q", form[0].Action, actionAdd)
	}
	if got := form[1].Keys; len(got) != 1 || got[0] != "z" {
		t.Fatalf("partial binding keys = %v, want [z]", got)
	}

	text := r.BindingsForScope(scopeText)
	if len(text) != 1 || text[0].Action != actionSave {
		t.Fatalf("text bindings = %+v, want one %q", text, actionSave)
	}
}

func TestKeyName(t *testing.T) {
	tests := []struct {
		in    string
		scope keyScope
		want  string
	}{
		{" ", scopeForm, "space"},
		{" ", scopeText, "space"},
		{"Y", scopeConfirm, "y"},
		{"Y", scopeForm, "Y"},
		{"ctrl+s", scopeText, "ctrl+s"},
		{"shift+tab", scopeConfirm, "shift+tab"},
	}
	for _, tt := range tests {
		if got := keyName(tt.in, tt.scope); got != tt.want {
			t.Errorf("keyName(%q, %d) = %q, want %q", tt.in, tt.scope, got, tt.want)
		}
	}
}

func TestHelpLineListsScopeBindings(t *testing.T) {
	r := NewKeyRegistry()
	line := r.HelpLine(scopeConfirm)
	if line != "y yes · n no · ctrl+c quit" {
		t.Fatalf("confirm help = %q", line)
	}
}
