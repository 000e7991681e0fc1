// Package content holds the page copy, embedded and optionally overridden from disk.
package content

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var embedded []byte

// ErrInvalidContent reports a document that is missing required copy
var ErrInvalidContent = errors.New("invalid content")

// Color is a named palette entry; the renderer maps names to RGB
type Color string

const (
	ColorDefault Color = ""
	ColorCyan    Color = "cyan"
	ColorMagenta Color = "magenta"
	ColorYellow  Color = "yellow"
	ColorGreen   Color = "green"
	ColorRed     Color = "red"
)

func (c Color) valid() bool {
	switch c {
	case ColorDefault, ColorCyan, ColorMagenta, ColorYellow, ColorGreen, ColorRed:
		return true
	}
	return false
}

// Document is the full page copy
type Document struct {
	Hero      Hero      `yaml:"hero"`
	About     About     `yaml:"about"`
	Lore      Lore      `yaml:"lore"`
	Memes     Memes     `yaml:"memes"`
	Manifesto Manifesto `yaml:"manifesto"`
	Console   Console   `yaml:"console"`
	Contact   Contact   `yaml:"contact"`
}

type Hero struct {
	Title      string   `yaml:"title"`
	Tagline    string   `yaml:"tagline"`
	Emphasis   string   `yaml:"emphasis"`
	ScoreLabel string   `yaml:"score_label"`
	Actions    []Action `yaml:"actions"`
}

// Action is a hero button that scrolls to a section
type Action struct {
	Label  string `yaml:"label"`
	Target string `yaml:"target"`
}

type Card struct {
	Title string `yaml:"title"`
	Body  string `yaml:"body"`
	Color Color  `yaml:"color"`
}

type About struct {
	Title    string `yaml:"title"`
	Subtitle string `yaml:"subtitle"`
	Cards    []Card `yaml:"cards"`
}

type LoreEntry struct {
	Title string `yaml:"title"`
	Body  string `yaml:"body"`
	Log   string `yaml:"log"`
	Color Color  `yaml:"color"`
}

type Lore struct {
	Title    string      `yaml:"title"`
	Subtitle string      `yaml:"subtitle"`
	Entries  []LoreEntry `yaml:"entries"`
}

type Memes struct {
	Title    string   `yaml:"title"`
	Subtitle string   `yaml:"subtitle"`
	Items    []string `yaml:"items"`
}

// Block is one manifesto paragraph, optionally followed by a bullet list
type Block struct {
	Text  string   `yaml:"text"`
	Color Color    `yaml:"color"`
	List  []string `yaml:"list"`
}

type Manifesto struct {
	Title   string  `yaml:"title"`
	Command string  `yaml:"command"`
	Blocks  []Block `yaml:"blocks"`
}

type Console struct {
	Title    string   `yaml:"title"`
	Greeting string   `yaml:"greeting"`
	Connect  []string `yaml:"connect"`
}

type Channel struct {
	Title  string `yaml:"title"`
	Handle string `yaml:"handle"`
	Color  Color  `yaml:"color"`
}

// Fields holds the contact form placeholders
type Fields struct {
	Codename string `yaml:"codename"`
	Email    string `yaml:"email"`
	Message  string `yaml:"message"`
}

type Contact struct {
	Title        string    `yaml:"title"`
	Subtitle     string    `yaml:"subtitle"`
	Submit       string    `yaml:"submit"`
	SuccessTitle string    `yaml:"success_title"`
	Success      string    `yaml:"success"`
	Fields       Fields    `yaml:"fields"`
	Channels     []Channel `yaml:"channels"`
}

// Default returns the embedded document
func Default() *Document {
	doc, err := Parse(embedded)
	if err != nil {
		panic(fmt.Sprintf("embedded content: %v", err))
	}
	return doc
}

// Load reads a document from path, the embedded copy when path is empty
func Load(path string) (*Document, error) {
	if path == "" {
		return Parse(embedded)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML document
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse content: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks the copy every section needs to render
func (d *Document) Validate() error {
	var missing []string
	need := func(name, v string) {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}

	need("hero.title", d.Hero.Title)
	need("manifesto.title", d.Manifesto.Title)
	need("console.greeting", d.Console.Greeting)
	need("contact.submit", d.Contact.Submit)
	if len(d.Manifesto.Blocks) == 0 {
		missing = append(missing, "manifesto.blocks")
	}
	if len(d.Console.Connect) == 0 {
		missing = append(missing, "console.connect")
	}
	for i, b := range d.Manifesto.Blocks {
		need(fmt.Sprintf("manifesto.blocks[%d].text", i), b.Text)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidContent, strings.Join(missing, ", "))
	}

	for _, c := range d.colors() {
		if !c.valid() {
			return fmt.Errorf("%w: unknown color %q", ErrInvalidContent, c)
		}
	}
	return nil
}

func (d *Document) colors() []Color {
	var out []Color
	for _, c := range d.About.Cards {
		out = append(out, c.Color)
	}
	for _, e := range d.Lore.Entries {
		out = append(out, e.Color)
	}
	for _, b := range d.Manifesto.Blocks {
		out = append(out, b.Color)
	}
	for _, c := range d.Contact.Channels {
		out = append(out, c.Color)
	}
	return out
}
