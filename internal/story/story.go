package story

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Gender of the story's protagonist. The generated narrative keeps strict
// grammatical agreement with this value.
type Gender string

const (
	GenderBoy  Gender = "niño"
	GenderGirl Gender = "niña"
)

// StoryType is the theme tag selected on the customization form.
type StoryType string

const (
	TypeAdventure StoryType = "aventura"
	TypeMagic     StoryType = "mágica"
	TypeCalm      StoryType = "tranquila"
	TypeSpace     StoryType = "espacial"
	TypeAnimals   StoryType = "animales"
	TypeMystery   StoryType = "misterio"
)

const (
	MinAge = 2
	MaxAge = 10
)

// ErrIncompletePreferences blocks a form submission that is missing the
// name or the interests. The form stays open; nothing else happens.
var ErrIncompletePreferences = errors.New("name and interests are required")

// UserPreferences is the immutable input to story generation.
type UserPreferences struct {
	Name      string    `json:"name"`
	Age       int       `json:"age"`
	Gender    Gender    `json:"gender"`
	Interests []string  `json:"interests"`
	StoryType StoryType `json:"storyType"`
	Language  string    `json:"language"`
}

// NewPreferences validates and normalizes the raw form fields. Interests
// arrive as one comma-separated string and are split into trimmed,
// non-empty tokens.
func NewPreferences(name string, age int, gender Gender, interestsInput string, storyType StoryType, language string) (UserPreferences, error) {
	name = strings.TrimSpace(name)
	interests := SplitInterests(interestsInput)
	if name == "" || len(interests) == 0 {
		return UserPreferences{}, ErrIncompletePreferences
	}
	if age < MinAge || age > MaxAge {
		return UserPreferences{}, fmt.Errorf("age %d outside supported range %d-%d", age, MinAge, MaxAge)
	}
	switch gender {
	case GenderBoy, GenderGirl:
	default:
		return UserPreferences{}, fmt.Errorf("unknown gender %q", gender)
	}
	switch storyType {
	case TypeAdventure, TypeMagic, TypeCalm, TypeSpace, TypeAnimals, TypeMystery:
	default:
		return UserPreferences{}, fmt.Errorf("unknown story type %q", storyType)
	}
	if strings.TrimSpace(language) == "" {
		language = "Español"
	}
	return UserPreferences{
		Name:      name,
		Age:       age,
		Gender:    gender,
		Interests: interests,
		StoryType: storyType,
		Language:  language,
	}, nil
}

// SplitInterests splits on commas, trims each token and drops empties.
func SplitInterests(input string) []string {
	parts := strings.Split(input, ",")
	interests := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			interests = append(interests, t)
		}
	}
	return interests
}

// Story is one generated narrative. Pages group the paragraphs for the
// progressive-reveal reader; FullText keeps the raw model output.
type Story struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Pages     [][]string `json:"pages"`
	FullText  string     `json:"fullText"`
	CreatedAt time.Time  `json:"createdAt"`
}

// New assembles a Story with a fresh unique id and paginated pages.
func New(title string, paragraphs []string, fullText string, pageSize, maxPages int) Story {
	return Story{
		ID:        uuid.New().String(),
		Title:     title,
		Pages:     Paginate(paragraphs, pageSize, maxPages),
		FullText:  fullText,
		CreatedAt: time.Now().UTC(),
	}
}

// Paragraphs flattens the pages back into a single ordered sequence.
func (s Story) Paragraphs() []string {
	var out []string
	for _, page := range s.Pages {
		out = append(out, page...)
	}
	return out
}
