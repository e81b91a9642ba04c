package memory

import (
	"context"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"philcali.me/foodgram/internal/data"
	"philcali.me/foodgram/internal/exceptions"
)

type UserStore struct {
	store *Store
}

func (us *UserStore) Create(ctx context.Context, input data.UserInputDTO) (data.UserDTO, error) {
	us.store.mu.Lock()
	defer us.store.mu.Unlock()
	if _, taken := us.store.emails[input.Email]; taken {
		return data.UserDTO{}, exceptions.Conflict("user", input.Email)
	}
	if _, taken := us.store.usernames[input.Username]; taken {
		return data.UserDTO{}, exceptions.Conflict("user", input.Username)
	}
	now := us.store.tick()
	user := data.UserDTO{
		PK:         data.GlobalKey("User"),
		SK:         newId(),
		FirstIndex: data.USER_INDEX,
		FirstSort:  input.Username,
		Email:      input.Email,
		Username:   input.Username,
		FirstName:  input.FirstName,
		LastName:   input.LastName,
		CreateTime: now,
		UpdateTime: now,
	}
	us.store.users[user.SK] = user
	us.store.emails[user.Email] = user.SK
	us.store.usernames[user.Username] = user.SK
	return user, nil
}

func (us *UserStore) Get(ctx context.Context, userId string) (data.UserDTO, error) {
	us.store.mu.RLock()
	defer us.store.mu.RUnlock()
	user, ok := us.store.users[userId]
	if !ok {
		return data.UserDTO{}, exceptions.NotFound("user", userId)
	}
	return user, nil
}

func (us *UserStore) GetByEmail(ctx context.Context, email string) (data.UserDTO, error) {
	us.store.mu.RLock()
	userId, ok := us.store.emails[email]
	us.store.mu.RUnlock()
	if !ok {
		return data.UserDTO{}, exceptions.NotFound("user", email)
	}
	return us.Get(ctx, userId)
}

func (us *UserStore) BatchGet(ctx context.Context, userIds []string) (map[string]data.UserDTO, error) {
	us.store.mu.RLock()
	defer us.store.mu.RUnlock()
	found := make(map[string]data.UserDTO, len(userIds))
	for _, id := range userIds {
		if user, ok := us.store.users[id]; ok {
			found[id] = user
		}
	}
	return found, nil
}

func (us *UserStore) List(ctx context.Context, params data.QueryParams) (data.QueryResults[data.UserDTO], error) {
	us.store.mu.RLock()
	users := maps.Values(us.store.users)
	us.store.mu.RUnlock()
	slices.SortFunc(users, func(a, b data.UserDTO) int {
		return strings.Compare(a.Username, b.Username)
	})
	return page(users, params)
}

func (us *UserStore) UpdateAvatar(ctx context.Context, userId string, avatar *string) (data.UserDTO, error) {
	us.store.mu.Lock()
	defer us.store.mu.Unlock()
	user, ok := us.store.users[userId]
	if !ok {
		return data.UserDTO{}, exceptions.NotFound("user", userId)
	}
	user.Avatar = avatar
	user.UpdateTime = us.store.tick()
	us.store.users[userId] = user
	return user, nil
}

func (us *UserStore) Delete(ctx context.Context, userId string) error {
	us.store.mu.Lock()
	defer us.store.mu.Unlock()
	user, ok := us.store.users[userId]
	if !ok {
		return exceptions.NotFound("user", userId)
	}
	for id, recipe := range us.store.recipes {
		if recipe.Author == userId {
			us.store.deleteRecipeLocked(id)
		}
	}
	for key := range us.store.relations {
		if key.userId == userId || (key.kind == data.SUBSCRIPTION && key.targetId == userId) {
			delete(us.store.relations, key)
		}
	}
	delete(us.store.emails, user.Email)
	delete(us.store.usernames, user.Username)
	delete(us.store.users, userId)
	return nil
}
