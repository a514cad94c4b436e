package rules

const (
	AllDepartments = "All Departments"
	AllChannels    = "All Channels"
)

// ToggleDepartment checks or unchecks a department. "All Departments" is
// exclusive with every specific department.
func (s Scope) ToggleDepartment(name string, checked bool) Scope {
	out := s.clone()
	out.Departments = toggleExclusive(out.Departments, name, AllDepartments, checked)
	return out
}

// ToggleChannel is ToggleDepartment for channels.
func (s Scope) ToggleChannel(name string, checked bool) Scope {
	out := s.clone()
	out.Channels = toggleExclusive(out.Channels, name, AllChannels, checked)
	return out
}

func toggleExclusive(current []string, name, all string, checked bool) []string {
	if name == all {
		if checked {
			return []string{all}
		}
		return []string{}
	}
	out := make([]string, 0, len(current)+1)
	for _, v := range current {
		if v == name || (checked && v == all) {
			continue
		}
		out = append(out, v)
	}
	if checked {
		out = append(out, name)
	}
	return out
}
