// Package memory keeps every repository in process, enforcing the same
// uniqueness and cascade rules as the DynamoDB stores.
package memory

import (
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slices"
	"philcali.me/foodgram/internal/data"
	"philcali.me/foodgram/internal/exceptions"
)

type relationKey struct {
	kind     data.RelationKind
	userId   string
	targetId string
}

type Store struct {
	mu          sync.RWMutex
	ingredients map[string]data.IngredientDTO
	users       map[string]data.UserDTO
	emails      map[string]string
	usernames   map[string]string
	recipes     map[string]data.RecipeDTO
	relations   map[relationKey]data.RelationDTO
	last        time.Time
	Now         func() time.Time
}

func NewStore() *Store {
	return &Store{
		ingredients: make(map[string]data.IngredientDTO),
		users:       make(map[string]data.UserDTO),
		emails:      make(map[string]string),
		usernames:   make(map[string]string),
		recipes:     make(map[string]data.RecipeDTO),
		relations:   make(map[relationKey]data.RelationDTO),
		Now:         time.Now,
	}
}

func (s *Store) Ingredients() data.IngredientRepository {
	return &IngredientStore{store: s}
}

func (s *Store) Users() data.UserRepository {
	return &UserStore{store: s}
}

func (s *Store) Recipes() data.RecipeRepository {
	return &RecipeStore{store: s}
}

func (s *Store) Relations() data.RelationRepository {
	return &RelationStore{store: s}
}

// tick returns a strictly increasing timestamp so creation order survives
// coarse clocks. Callers hold the write lock.
func (s *Store) tick() time.Time {
	now := s.Now()
	if !now.After(s.last) {
		now = s.last.Add(time.Nanosecond)
	}
	s.last = now
	return now
}

func newId() string {
	return uuid.Must(uuid.NewV7()).String()
}

func byCreateTime[T interface{}](items []T, created func(T) time.Time, id func(T) string) {
	slices.SortStableFunc(items, func(a, b T) int {
		if c := created(a).Compare(created(b)); c != 0 {
			return c
		}
		switch {
		case id(a) < id(b):
			return -1
		case id(a) > id(b):
			return 1
		}
		return 0
	})
}

func page[T interface{}](items []T, params data.QueryParams) (data.QueryResults[T], error) {
	offset := 0
	if params.NextToken != nil {
		parsed, err := strconv.Atoi(*params.NextToken)
		if err != nil || parsed < 0 {
			return data.QueryResults[T]{}, exceptions.InvalidInput("nextToken is invalid")
		}
		offset = parsed
	}
	results := data.QueryResults[T]{Items: []T{}}
	if offset >= len(items) {
		return results, nil
	}
	end := offset + int(*params.GetLimit())
	if end >= len(items) {
		results.Items = items[offset:]
		return results, nil
	}
	token := strconv.Itoa(end)
	results.Items = items[offset:end]
	results.NextToken = &token
	return results, nil
}

// deleteRecipeLocked removes the recipe with every favorite and cart entry
// pointing at it. Callers hold the write lock.
func (s *Store) deleteRecipeLocked(recipeId string) {
	delete(s.recipes, recipeId)
	for key := range s.relations {
		if key.kind.TargetsRecipe() && key.targetId == recipeId {
			delete(s.relations, key)
		}
	}
}
