package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mrlokans/lending/internal/auth"
	"github.com/mrlokans/lending/internal/entities"
	"github.com/mrlokans/lending/internal/entrypoint"
)

// Fixture is the YAML document accepted by the seed command.
type Fixture struct {
	Admin      *FixtureUser      `yaml:"admin"`
	Users      []FixtureUser     `yaml:"users"`
	Categories []FixtureCategory `yaml:"categories"`
	Books      []FixtureBook     `yaml:"books"`
}

type FixtureUser struct {
	Username  string `yaml:"username"`
	Email     string `yaml:"email"`
	Password  string `yaml:"password"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
}

type FixtureCategory struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type FixtureBook struct {
	Title          string   `yaml:"title"`
	Author         string   `yaml:"author"`
	Publisher      string   `yaml:"publisher"`
	Description    string   `yaml:"description"`
	Type           string   `yaml:"type"`
	Copies         uint     `yaml:"copies"`
	ExternalSource string   `yaml:"external_source"`
	Featured       bool     `yaml:"featured"`
	Categories     []string `yaml:"categories"`
}

// SeedResult counts what a seed run created and skipped.
type SeedResult struct {
	Users        int
	SkippedUsers int
	Categories   int
	Books        int
	SkippedBooks bool
}

// LoadFixture reads a fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	return ParseFixture(data)
}

// ParseFixture decodes YAML bytes into a fixture. Unknown keys are rejected so typos
// do not silently drop data.
func ParseFixture(data []byte) (*Fixture, error) {
	var fixture Fixture
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fixture); err != nil {
		if errors.Is(err, io.EOF) {
			return &fixture, nil
		}
		return nil, fmt.Errorf("parsing fixture YAML: %w", err)
	}
	return &fixture, nil
}

// Validate checks the fixture before anything is written.
func (f *Fixture) Validate() error {
	known := make(map[string]bool, len(f.Categories))
	for _, c := range f.Categories {
		if strings.TrimSpace(c.Name) == "" {
			return errors.New("category without a name")
		}
		known[c.Name] = true
	}
	for i, b := range f.Books {
		if strings.TrimSpace(b.Title) == "" {
			return fmt.Errorf("book %d has no title", i+1)
		}
		if _, err := bookType(b.Type); err != nil {
			return fmt.Errorf("book %q: %w", b.Title, err)
		}
		for _, name := range b.Categories {
			if !known[name] {
				return fmt.Errorf("book %q references unknown category %q", b.Title, name)
			}
		}
	}
	return nil
}

func bookType(raw string) (entities.BookType, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "", string(entities.BookTypePhysical):
		return entities.BookTypePhysical, nil
	case string(entities.BookTypeEbook):
		return entities.BookTypeEbook, nil
	default:
		return "", fmt.Errorf("unknown book type %q", raw)
	}
}

// Apply writes the fixture. Users that already exist are skipped. Books are only
// inserted into an empty catalog unless force is set, so re-running a seed does not
// duplicate them.
func (f *Fixture) Apply(ctx context.Context, app *entrypoint.App, force bool) (SeedResult, error) {
	var result SeedResult
	if err := f.Validate(); err != nil {
		return result, err
	}

	accounts := make([]auth.NewUser, 0, len(f.Users)+1)
	if f.Admin != nil {
		accounts = append(accounts, f.Admin.newUser(entities.UserRoleAdmin))
	}
	for _, u := range f.Users {
		accounts = append(accounts, u.newUser(entities.UserRoleUser))
	}
	for _, account := range accounts {
		_, err := app.Auth.CreateUser(ctx, account)
		switch {
		case errors.Is(err, auth.ErrUserExists):
			result.SkippedUsers++
		case err != nil:
			return result, fmt.Errorf("creating user %q: %w", account.Username, err)
		default:
			result.Users++
		}
	}

	categories := make(map[string]entities.Category, len(f.Categories))
	for _, c := range f.Categories {
		category, err := app.Catalog.EnsureCategory(ctx, c.Name, c.Description)
		if err != nil {
			return result, err
		}
		categories[c.Name] = *category
		result.Categories++
	}

	existing, err := app.Catalog.CountBooks(ctx)
	if err != nil {
		return result, fmt.Errorf("counting books: %w", err)
	}
	if existing > 0 && !force {
		result.SkippedBooks = len(f.Books) > 0
		return result, nil
	}

	for _, b := range f.Books {
		kind, _ := bookType(b.Type)
		book := &entities.Book{
			Title:          b.Title,
			Author:         b.Author,
			Publisher:      b.Publisher,
			Description:    b.Description,
			BookType:       kind,
			ExternalSource: b.ExternalSource,
			IsFeatured:     b.Featured,
		}
		if kind == entities.BookTypePhysical {
			book.TotalCopies = b.Copies
			book.AvailableCopies = b.Copies
		}
		for _, name := range b.Categories {
			book.Categories = append(book.Categories, categories[name])
		}
		if err := app.Catalog.CreateBook(ctx, book); err != nil {
			return result, err
		}
		result.Books++
	}
	return result, nil
}

func (u FixtureUser) newUser(role entities.UserRole) auth.NewUser {
	return auth.NewUser{
		Username:  u.Username,
		Email:     u.Email,
		Password:  u.Password,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      role,
	}
}
