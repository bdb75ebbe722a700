package prompt

// Snapshot payloads must never alias the live project's slices: mutating the
// project after a checkpoint must not change a past snapshot. The copy
// helpers below back every slice with fresh storage. Fragment and Parameter
// contain no reference fields, so element copies are full copies.

// CloneFragments returns a deep copy of a fragment slice.
func CloneFragments(in []Fragment) []Fragment {
	if in == nil {
		return nil
	}
	out := make([]Fragment, len(in))
	copy(out, in)
	return out
}

// CloneParameters returns a deep copy of a parameter slice.
func CloneParameters(in []Parameter) []Parameter {
	if in == nil {
		return nil
	}
	out := make([]Parameter, len(in))
	copy(out, in)
	return out
}

// CloneStrings returns a deep copy of a string slice.
func CloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneStringPtr(in *string) *string {
	if in == nil {
		return nil
	}
	s := *in
	return &s
}

// Clone returns a deep copy of the content.
func (c Content) Clone() Content {
	return Content{
		Positive: CloneFragments(c.Positive),
		Negative: CloneFragments(c.Negative),
		Params:   CloneParameters(c.Params),
	}
}

// Clone returns a deep copy of the project.
func (p Project) Clone() Project {
	out := p
	out.Description = cloneStringPtr(p.Description)
	out.Content = p.Content.Clone()
	out.Tags = CloneStrings(p.Tags)
	return out
}

// CapturePayload freezes the project's current content into a payload.
func (p Project) CapturePayload() Payload {
	return Payload{
		Title:       p.Title,
		Description: cloneStringPtr(p.Description),
		Positive:    CloneFragments(p.Content.Positive),
		Negative:    CloneFragments(p.Content.Negative),
		Params:      CloneParameters(p.Content.Params),
		Tags:        CloneStrings(p.Tags),
	}
}

// Clone returns a deep copy of the payload.
func (pl Payload) Clone() Payload {
	return Payload{
		Title:       pl.Title,
		Description: cloneStringPtr(pl.Description),
		Positive:    CloneFragments(pl.Positive),
		Negative:    CloneFragments(pl.Negative),
		Params:      CloneParameters(pl.Params),
		Tags:        CloneStrings(pl.Tags),
	}
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Payload = s.Payload.Clone()
	if s.Metrics != nil {
		m := *s.Metrics
		out.Metrics = &m
	}
	return out
}

// Clone returns a deep copy of the whole state.
func (st *State) Clone() *State {
	out := &State{
		Projects:  make([]Project, 0, len(st.Projects)),
		Snapshots: make([]Snapshot, 0, len(st.Snapshots)),
		Settings:  st.Settings,
	}
	for _, p := range st.Projects {
		out.Projects = append(out.Projects, p.Clone())
	}
	for _, s := range st.Snapshots {
		out.Snapshots = append(out.Snapshots, s.Clone())
	}
	return out
}
