package shopping

import (
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"philcali.me/foodgram/internal/data"
)

const FILENAME = "shopping_list.txt"

type CartRecipe struct {
	Recipe         data.RecipeDTO
	AuthorUsername string
}

func (c CartRecipe) Label() string {
	return fmt.Sprintf("%s (author: %s)", c.Recipe.Name, c.AuthorUsername)
}

type Line struct {
	Name    string
	Unit    string
	Amount  int
	Recipes []string
}

type Report struct {
	Username string
	Lines    []Line
	Recipes  []string
}

type lineKey struct {
	name string
	unit string
}

// Canonical upper-cases the first letter of an ingredient name and
// lower-cases the rest.
func Canonical(name string) string {
	name = strings.TrimSpace(name)
	first, size := utf8.DecodeRuneInString(name)
	if first == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(first)) + strings.ToLower(name[size:])
}

// Aggregate merges the ingredient lines of every recipe by canonical name
// and unit. Lines keep the order in which they were first encountered.
func Aggregate(username string, recipes []CartRecipe) Report {
	report := Report{
		Username: username,
		Lines:    []Line{},
		Recipes:  make([]string, 0, len(recipes)),
	}
	positions := make(map[lineKey]int)
	labeled := make(map[lineKey]map[string]bool)
	for _, cr := range recipes {
		label := cr.Label()
		report.Recipes = append(report.Recipes, label)
		for _, ingredient := range cr.Recipe.Ingredients {
			key := lineKey{name: Canonical(ingredient.Name), unit: ingredient.MeasurementUnit}
			pos, ok := positions[key]
			if !ok {
				pos = len(report.Lines)
				positions[key] = pos
				labeled[key] = make(map[string]bool)
				report.Lines = append(report.Lines, Line{Name: key.name, Unit: key.unit})
			}
			line := &report.Lines[pos]
			line.Amount += ingredient.Amount
			if !labeled[key][label] {
				labeled[key][label] = true
				line.Recipes = append(line.Recipes, label)
			}
		}
	}
	return report
}

func (r Report) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Shopping list for %s:\n", r.Username)
	for i, line := range r.Lines {
		fmt.Fprintf(&b, "%d. %s - %d %s (for recipes: %s)\n", i+1, line.Name, line.Amount, line.Unit, strings.Join(line.Recipes, ", "))
	}
	b.WriteString("\nRecipes:\n")
	for _, label := range r.Recipes {
		fmt.Fprintf(&b, "- %s\n", label)
	}
	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

func (r Report) String() string {
	var b strings.Builder
	r.WriteTo(&b)
	return b.String()
}
