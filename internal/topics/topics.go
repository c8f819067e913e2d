// Package topics holds the panel content addressed by stair index.
package topics

import (
	"errors"
	"fmt"
	"os"

	qrcode "github.com/skip2/go-qrcode"
	"gopkg.in/yaml.v3"
)

var ErrNotFound = errors.New("topic not found")

type Link struct {
	Label string `json:"label" yaml:"label"`
	URL   string `json:"url" yaml:"url"`
}

type Topic struct {
	Title   string `json:"title" yaml:"title"`
	Content string `json:"content" yaml:"content"`
	Links   []Link `json:"links,omitempty" yaml:"links,omitempty"`
}

// Store is a read-only, index-addressed topic list.
type Store struct {
	items []Topic
}

func NewStore(items []Topic) *Store {
	cp := make([]Topic, len(items))
	copy(cp, items)
	return &Store{items: cp}
}

// Default returns the built-in portfolio list, one entry per stair.
func Default() *Store {
	return NewStore([]Topic{
		{Title: "About Me", Content: "I am a futuristic developer with cinematic vision."},
		{Title: "UG", Content: "BSc in Computer Science, 2018-2021"},
		{Title: "PG", Content: "MSc in Artificial Intelligence, 2021-2023"},
		{Title: "Internships", Content: "Worked on AI-driven cinematic experiences."},
		{Title: "Skills", Content: "Go, WebGL, WebSockets, LED hardware"},
		{Title: "Projects", Content: "Cinematic Spiral Portfolio, AI Art Generator"},
		{Title: "Interests", Content: "Space-time design, cinematic programming"},
		{Title: "Achievements", Content: "Top 10 WebGL Artists 2024"},
		{Title: "Links", Links: []Link{
			{Label: "Resume", URL: "#"},
			{Label: "GitHub", URL: "#"},
			{Label: "LinkedIn", URL: "#"},
		}},
		{Title: "Contact", Content: "Email me at example@example.com"},
		{Title: "Messaging", Content: "Live chat coming soon..."},
		{Title: "Extras", Content: "Bonus cinematic elements..."},
	})
}

// Load reads a yaml list of topics.
func Load(path string) (*Store, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []Topic
	if err := yaml.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return NewStore(items), nil
}

func (s *Store) Len() int { return len(s.items) }

// Valid reports whether id addresses a topic.
func (s *Store) Valid(id int) bool { return id >= 0 && id < len(s.items) }

func (s *Store) Get(id int) (Topic, error) {
	if !s.Valid(id) {
		return Topic{}, fmt.Errorf("topic %d: %w", id, ErrNotFound)
	}
	return s.items[id], nil
}

func (s *Store) All() []Topic {
	out := make([]Topic, len(s.items))
	copy(out, s.items)
	return out
}

// MaxQRSize bounds the edge of a rendered QR code in pixels.
const MaxQRSize = 1024

// QR renders a PNG QR code for link n of topic id. size is clamped to
// MaxQRSize; 0 or less uses 256.
func (s *Store) QR(id, n, size int) ([]byte, error) {
	t, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if n < 0 || n >= len(t.Links) {
		return nil, fmt.Errorf("topic %d link %d: %w", id, n, ErrNotFound)
	}
	if size <= 0 {
		size = 256
	}
	if size > MaxQRSize {
		size = MaxQRSize
	}
	return qrcode.Encode(t.Links[n].URL, qrcode.Medium, size)
}
