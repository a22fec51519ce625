package quest

// ObjectiveView is a read-only snapshot of one objective's progress.
type ObjectiveView struct {
	ID          string
	Description string
	Current     int
	Required    int
	Completed   bool
}

// View is a read-only snapshot of one quest for presentation.
type View struct {
	ID          string
	Title       string
	Description string
	Chapter     int
	Category    string
	Faction     string
	Giver       string
	Status      Status
	Objectives  []ObjectiveView
}

// View returns a snapshot of one quest.
func (s *System) View(id string) (View, bool) {
	q, ok := s.quests[id]
	if !ok {
		return View{}, false
	}
	return s.view(q), true
}

// List returns snapshots of every quest in the given status, in
// declared content order. An empty status lists everything.
func (s *System) List(status Status) []View {
	var out []View
	for _, id := range s.order {
		q := s.quests[id]
		if status != "" && q.status != status {
			continue
		}
		out = append(out, s.view(q))
	}
	return out
}

func (s *System) view(q *quest) View {
	v := View{
		ID:          q.def.ID,
		Title:       q.def.Title,
		Description: q.def.Description,
		Chapter:     q.def.Chapter,
		Category:    string(q.def.Category),
		Faction:     q.def.Faction,
		Giver:       q.def.Giver,
		Status:      q.status,
	}
	for _, o := range q.objectives {
		v.Objectives = append(v.Objectives, ObjectiveView{
			ID:          o.def.ID,
			Description: o.def.Description,
			Current:     o.current,
			Required:    o.required(),
			Completed:   o.completed,
		})
	}
	return v
}
