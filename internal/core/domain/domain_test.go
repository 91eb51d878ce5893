package domain

import "testing"

func TestValidReaction(t *testing.T) {
	for _, symbol := range []string{"❤️", "👍", "😊", "😂", "😮", "😢"} {
		if !ValidReaction(symbol) {
			t.Errorf("ValidReaction(%q) = false, want true", symbol)
		}
	}
	for _, symbol := range []string{"", "🤖", "heart", "👍👍"} {
		if ValidReaction(symbol) {
			t.Errorf("ValidReaction(%q) = true, want false", symbol)
		}
	}
}

func TestMessageKindValid(t *testing.T) {
	if !KindText.Valid() || !KindImage.Valid() {
		t.Error("text and image must be valid kinds")
	}
	if MessageKind("video").Valid() {
		t.Error("video is not a valid kind")
	}
}

func TestReadByContains(t *testing.T) {
	m := &Message{ReadBy: []string{"user-a", "user-b"}}
	if !m.ReadByContains("user-a") {
		t.Error("ReadByContains missed a present reader")
	}
	if m.ReadByContains("user-c") {
		t.Error("ReadByContains reported an absent reader")
	}
}

func TestDefaultDuressSettings(t *testing.T) {
	s := DefaultDuressSettings("owner-1")
	if !s.ShowTimestamps || s.MinTimeMinutes != 2 || s.MaxTimeMinutes != 1440 || s.NumFakeUsers != 5 {
		t.Errorf("unexpected defaults: %+v", s)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("defaults failed validation: %v", err)
	}
}

func TestDuressSettingsValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*DuressSettings)
		wantErr bool
	}{
		{"valid", func(*DuressSettings) {}, false},
		{"zero min", func(s *DuressSettings) { s.MinTimeMinutes = 0 }, true},
		{"max below min", func(s *DuressSettings) { s.MaxTimeMinutes = 1 }, true},
		{"zero fake users", func(s *DuressSettings) { s.NumFakeUsers = 0 }, true},
		{"too many fake users", func(s *DuressSettings) { s.NumFakeUsers = 21 }, true},
		{"unknown persona", func(s *DuressSettings) { s.Personas = []string{"imaginary-friend"} }, true},
		{"catalog personas", func(s *DuressSettings) { s.Personas = []string{"work-mentor", "team-captain"} }, false},
		{"too many personas", func(s *DuressSettings) {
			s.Personas = []string{"work-mentor", "study-buddy", "team-captain", "work-mentor", "study-buddy", "team-captain"}
		}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := DefaultDuressSettings("owner-1")
			tc.mutate(s)
			err := s.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestPersonaByID(t *testing.T) {
	p, ok := PersonaByID("study-buddy")
	if !ok || p.DisplayName != "Study Buddy" {
		t.Errorf("PersonaByID(study-buddy) = %+v, %v", p, ok)
	}
	if _, ok := PersonaByID("nobody"); ok {
		t.Error("PersonaByID found a persona that is not in the catalog")
	}
}
