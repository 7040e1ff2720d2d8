package engine

import "golang.org/x/text/cases"

var scopeKeyCaser = cases.Fold()

func scopeKey(name string) string { return scopeKeyCaser.String(name) }

// frame is one entry in the call/block frame stack. Variables are stored
// case-insensitively, keeping the original spelling for re-emission by the
// renderer.
type frame struct {
	vars     map[string]Val
	names    map[string]string // folded -> original spelling
	funcs    map[string]*FunctionDecl
	funcKeys map[string]string
	isScriptScope bool
	isGlobalScope bool
}

func newFrame() *frame {
	return &frame{
		vars:     map[string]Val{},
		names:    map[string]string{},
		funcs:    map[string]*FunctionDecl{},
		funcKeys: map[string]string{},
	}
}

func (f *frame) set(name string, v Val) {
	k := scopeKey(name)
	if _, ok := f.names[k]; !ok {
		f.names[k] = name
	}
	f.vars[k] = v
}

func (f *frame) get(name string) (Val, bool) {
	v, ok := f.vars[scopeKey(name)]
	return v, ok
}

func (f *frame) setFunc(name string, decl *FunctionDecl) {
	k := scopeKey(name)
	f.funcKeys[k] = name
	f.funcs[k] = decl
}

func (f *frame) getFunc(name string) (*FunctionDecl, bool) {
	d, ok := f.funcs[scopeKey(name)]
	return d, ok
}

// scopeStack is the live call/block frame stack for one evaluation. Index 0
// is the global frame, which never pops.
type scopeStack struct {
	frames []*frame
	script *frame // the "script:" scope, distinct from global and from the local call stack
}

func newScopeStack() *scopeStack {
	global := newFrame()
	global.isGlobalScope = true
	script := newFrame()
	script.isScriptScope = true
	return &scopeStack{frames: []*frame{global}, script: script}
}

func (s *scopeStack) push() *frame {
	f := newFrame()
	s.frames = append(s.frames, f)
	return f
}

func (s *scopeStack) pop() {
	if len(s.frames) > 1 {
		s.frames = s.frames[:len(s.frames)-1]
	}
}

func (s *scopeStack) top() *frame { return s.frames[len(s.frames)-1] }
func (s *scopeStack) global() *frame { return s.frames[0] }

// resolveGet looks up a variable reference honoring an explicit scope
// prefix ("global:", "script:", "local:", "private:") or, with no prefix,
// walking the frame stack from the top down to global (spec.md §6 scope
// model). "env:" is handled by the caller via the session's environment
// map, not here.
func (s *scopeStack) resolveGet(scope, name string) (Val, bool) {
	switch scope {
	case "global":
		return s.global().get(name)
	case "script":
		return s.script.get(name)
	case "local", "private":
		return s.top().get(name)
	default:
		for i := len(s.frames) - 1; i >= 0; i-- {
			if v, ok := s.frames[i].get(name); ok {
				return v, ok
			}
		}
		return s.script.get(name)
	}
}

// resolveSet writes a variable honoring scope prefix; unprefixed writes
// land in the current top-of-stack frame (local scope), matching
// PowerShell's default assignment behavior.
func (s *scopeStack) resolveSet(scope, name string, v Val) {
	switch scope {
	case "global":
		s.global().set(name, v)
	case "script":
		s.script.set(name, v)
	default:
		s.top().set(name, v)
	}
}

func (s *scopeStack) resolveFunc(name string) (*FunctionDecl, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if d, ok := s.frames[i].getFunc(name); ok {
			return d, ok
		}
	}
	return s.script.getFunc(name)
}

func (s *scopeStack) defineFunc(decl *FunctionDecl) {
	s.top().setFunc(decl.Name, decl)
}

func (s *scopeStack) depth() int { return len(s.frames) }
