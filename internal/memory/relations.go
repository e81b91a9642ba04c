package memory

import (
	"context"
	"strings"
	"time"

	"philcali.me/foodgram/internal/data"
	"philcali.me/foodgram/internal/exceptions"
)

type RelationStore struct {
	store *Store
}

func (rs *RelationStore) Create(ctx context.Context, kind data.RelationKind, userId string, targetId string) (data.RelationDTO, error) {
	rs.store.mu.Lock()
	defer rs.store.mu.Unlock()
	key := relationKey{kind: kind, userId: userId, targetId: targetId}
	if _, exists := rs.store.relations[key]; exists {
		return data.RelationDTO{}, exceptions.Conflict(strings.ToLower(string(kind)), targetId)
	}
	relation := data.RelationDTO{
		PK:         data.RelationKey(kind, userId),
		SK:         targetId,
		FirstIndex: data.RelationTargetKey(kind, targetId),
		FirstSort:  data.RelationKey(kind, userId),
		Kind:       kind,
		UserId:     userId,
		TargetId:   targetId,
		CreateTime: rs.store.tick(),
	}
	rs.store.relations[key] = relation
	return relation, nil
}

func (rs *RelationStore) Delete(ctx context.Context, kind data.RelationKind, userId string, targetId string) error {
	rs.store.mu.Lock()
	defer rs.store.mu.Unlock()
	key := relationKey{kind: kind, userId: userId, targetId: targetId}
	if _, exists := rs.store.relations[key]; !exists {
		return exceptions.NotFound(strings.ToLower(string(kind)), targetId)
	}
	delete(rs.store.relations, key)
	return nil
}

func (rs *RelationStore) Exists(ctx context.Context, kind data.RelationKind, userId string, targetIds []string) (map[string]bool, error) {
	rs.store.mu.RLock()
	defer rs.store.mu.RUnlock()
	exists := make(map[string]bool, len(targetIds))
	for _, targetId := range targetIds {
		_, ok := rs.store.relations[relationKey{kind: kind, userId: userId, targetId: targetId}]
		exists[targetId] = ok
	}
	return exists, nil
}

func (rs *RelationStore) List(ctx context.Context, kind data.RelationKind, userId string, params data.QueryParams) (data.QueryResults[data.RelationDTO], error) {
	relations, err := rs.ListAll(ctx, kind, userId)
	if err != nil {
		return data.QueryResults[data.RelationDTO]{}, err
	}
	return page(relations, params)
}

func (rs *RelationStore) ListAll(ctx context.Context, kind data.RelationKind, userId string) ([]data.RelationDTO, error) {
	rs.store.mu.RLock()
	relations := []data.RelationDTO{}
	for key, relation := range rs.store.relations {
		if key.kind == kind && key.userId == userId {
			relations = append(relations, relation)
		}
	}
	rs.store.mu.RUnlock()
	byCreateTime(relations, func(r data.RelationDTO) time.Time { return r.CreateTime }, func(r data.RelationDTO) string { return r.TargetId })
	return relations, nil
}
