package screen

// Switch is an on/off widget. Like a platform switch it reports every change
// of value to its listeners, whether a user flipped it or code called
// SetChecked.
type Switch struct {
	listeners []func(bool)
	checked   bool
	enabled   bool
}

func NewSwitch(checked bool) *Switch {
	return &Switch{checked: checked, enabled: true}
}

func (s *Switch) Checked() bool { return s.checked }

func (s *Switch) Enabled() bool { return s.enabled }

func (s *Switch) SetEnabled(enabled bool) { s.enabled = enabled }

func (s *Switch) SetChecked(checked bool) {
	if s.checked == checked {
		return
	}
	s.checked = checked
	for _, fn := range s.listeners {
		fn(checked)
	}
}

// Press is a user gesture. It is ignored while the switch is disabled.
func (s *Switch) Press(checked bool) bool {
	if !s.enabled {
		return false
	}
	s.SetChecked(checked)
	return true
}

func (s *Switch) OnChange(fn func(bool)) {
	s.listeners = append(s.listeners, fn)
}
