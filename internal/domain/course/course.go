// Package course holds the catalog of courses and their par lists.
//
// A catalog is a YAML document:
//
//	courses:
//	  - name: Venice
//	    easy: [2, 3, ...]
//	    hard: [3, 4, ...]
//
// Each list must hold exactly one par per hole.
package course

import (
	_ "embed"
	"fmt"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/scorecard/internal/domain/round"
)

//go:embed courses.yaml
var defaultCatalog []byte

// Difficulty selects which par list of a course is played.
type Difficulty string

// Known difficulties.
const (
	Easy Difficulty = "easy"
	Hard Difficulty = "hard"
)

// ParseDifficulty maps user input to a Difficulty. Empty input means Easy.
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(strings.ToLower(strings.TrimSpace(s))) {
	case "", Easy:
		return Easy, nil
	case Hard:
		return Hard, nil
	}
	return "", fmt.Errorf("%w: unknown difficulty %q", ErrInvalidCourse, s)
}

// Course is a named course with par lists per difficulty.
type Course struct {
	Name string `koanf:"name" json:"name"`
	Easy []int  `koanf:"easy" json:"easy"`
	Hard []int  `koanf:"hard" json:"hard"`
}

// Pars returns a copy of the par list for d.
func (c Course) Pars(d Difficulty) []int {
	if d == Hard {
		return slices.Clone(c.Hard)
	}
	return slices.Clone(c.Easy)
}

// Catalog is a read-only set of courses. It is safe for concurrent use.
type Catalog struct {
	courses []Course
	index   map[string]int
}

// New validates courses and builds a catalog from them.
func New(courses []Course) (*Catalog, error) {
	c := &Catalog{
		courses: make([]Course, 0, len(courses)),
		index:   make(map[string]int, len(courses)),
	}
	for i, co := range courses {
		name := strings.TrimSpace(co.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: course %d has no name", ErrInvalidCourse, i+1)
		}
		key := strings.ToLower(name)
		if _, dup := c.index[key]; dup {
			return nil, fmt.Errorf("%w: duplicate course %q", ErrInvalidCourse, name)
		}
		if err := round.ValidatePars(co.Easy); err != nil {
			return nil, fmt.Errorf("%w: %s easy: %v", ErrInvalidCourse, name, err)
		}
		if err := round.ValidatePars(co.Hard); err != nil {
			return nil, fmt.Errorf("%w: %s hard: %v", ErrInvalidCourse, name, err)
		}
		c.index[key] = len(c.courses)
		c.courses = append(c.courses, Course{Name: name, Easy: slices.Clone(co.Easy), Hard: slices.Clone(co.Hard)})
	}
	return c, nil
}

// Load reads a catalog from a YAML file.
func Load(path string) (*Catalog, error) {
	return load(file.Provider(path))
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := load(bytesProvider(defaultCatalog))
	if err != nil {
		panic(fmt.Sprintf("course: built-in catalog: %v", err))
	}
	return c
}

func load(p koanf.Provider) (*Catalog, error) {
	k := koanf.New(".")
	if err := k.Load(p, yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCourse, err)
	}
	var courses []Course
	if err := k.UnmarshalWithConf("courses", &courses, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCourse, err)
	}
	return New(courses)
}

// Courses returns the catalog in its original order.
func (c *Catalog) Courses() []Course {
	out := make([]Course, len(c.courses))
	for i, co := range c.courses {
		out[i] = Course{Name: co.Name, Easy: slices.Clone(co.Easy), Hard: slices.Clone(co.Hard)}
	}
	return out
}

// Len is the number of courses.
func (c *Catalog) Len() int { return len(c.courses) }

// Lookup finds a course by name, ignoring case.
func (c *Catalog) Lookup(name string) (Course, bool) {
	i, ok := c.index[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Course{}, false
	}
	return c.courses[i], true
}

// Resolve returns the canonical course name and its pars for the difficulty.
func (c *Catalog) Resolve(name, difficulty string) (string, []int, error) {
	d, err := ParseDifficulty(difficulty)
	if err != nil {
		return "", nil, err
	}
	co, ok := c.Lookup(name)
	if !ok {
		return "", nil, fmt.Errorf("%w: %q", ErrCourseNotFound, name)
	}
	return co.Name, co.Pars(d), nil
}

// bytesProvider serves an in-memory document to koanf.
type bytesProvider []byte

func (b bytesProvider) ReadBytes() ([]byte, error) { return b, nil }

func (b bytesProvider) Read() (map[string]interface{}, error) {
	return nil, fmt.Errorf("course: bytes provider does not support Read")
}
