package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ProjectMeta is the project metadata manifest carried in the bundle.
type ProjectMeta struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Scene is one entry of the ordered scene list. Each scene maps to exactly
// one voiceover clip and one or more images in the extracted bundle.
type Scene struct {
	ID        string `json:"id"`
	Narration string `json:"narration,omitempty"`
}

// UnmarshalJSON accepts both string and numeric scene ids; upstream tooling
// emits numbers.
func (s *Scene) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        json.Number `json:"id"`
		Narration string      `json:"narration"`
	}
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	s.ID = raw.ID.String()
	s.Narration = raw.Narration
	return nil
}

// ValidateScenes checks the decoded scene list is usable.
func ValidateScenes(scenes []Scene) error {
	if len(scenes) == 0 {
		return errors.New("scene list is empty")
	}
	seen := make(map[string]struct{}, len(scenes))
	for i, sc := range scenes {
		if strings.TrimSpace(sc.ID) == "" {
			return fmt.Errorf("scene[%d] has no id", i)
		}
		if _, dup := seen[sc.ID]; dup {
			return fmt.Errorf("duplicate scene id: %s", sc.ID)
		}
		seen[sc.ID] = struct{}{}
	}
	return nil
}
