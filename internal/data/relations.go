package data

import (
	"context"
	"time"
)

type RelationKind string

const (
	FAVORITE      RelationKind = "Favorite"
	SHOPPING_CART RelationKind = "ShoppingCart"
	SUBSCRIPTION  RelationKind = "Subscription"
)

// TargetsRecipe reports whether the relation points at a recipe rather than
// a user.
func (k RelationKind) TargetsRecipe() bool {
	return k == FAVORITE || k == SHOPPING_CART
}

type RelationDTO struct {
	PK         string       `dynamodbav:"PK"`
	SK         string       `dynamodbav:"SK"`
	FirstIndex string       `dynamodbav:"GS1-PK"`
	FirstSort  string       `dynamodbav:"GS1-SK"`
	Kind       RelationKind `dynamodbav:"kind"`
	UserId     string       `dynamodbav:"userId"`
	TargetId   string       `dynamodbav:"targetId"`
	CreateTime time.Time    `dynamodbav:"createTime"`
}

type RelationRepository interface {
	// Create fails with a conflict when the pair already exists.
	Create(ctx context.Context, kind RelationKind, userId string, targetId string) (RelationDTO, error)
	// Delete fails with not found when the pair does not exist.
	Delete(ctx context.Context, kind RelationKind, userId string, targetId string) error
	Exists(ctx context.Context, kind RelationKind, userId string, targetIds []string) (map[string]bool, error)
	List(ctx context.Context, kind RelationKind, userId string, params QueryParams) (QueryResults[RelationDTO], error)
	// ListAll returns every relation of the kind held by the user, oldest
	// first.
	ListAll(ctx context.Context, kind RelationKind, userId string) ([]RelationDTO, error)
}
