package domain

// Persona is a themed profile used to name synthetic conversation
// counterparts so a decoy's chat list reads as authentic.
type Persona struct {
	ID          string `json:"id"`
	DisplayName string `json:"username"`
	Theme       string `json:"theme"`
}

// Personas is the fixed catalog selectable in duress settings.
var Personas = []Persona{
	{ID: "work-mentor", DisplayName: "Work Mentor", Theme: "work"},
	{ID: "study-buddy", DisplayName: "Study Buddy", Theme: "school"},
	{ID: "team-captain", DisplayName: "Team Captain", Theme: "sports"},
}

// PersonaByID looks up a catalog persona.
func PersonaByID(id string) (Persona, bool) {
	for _, p := range Personas {
		if p.ID == id {
			return p, true
		}
	}
	return Persona{}, false
}
