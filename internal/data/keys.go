package data

import "fmt"

// Every item lives in one table. Global items share a partition per type,
// relations are partitioned by the user holding them and indexed by their
// target on GS1.
const (
	GLOBAL_ACCOUNT = "Global"

	INGREDIENT_INDEX = "Ingredient"
	USER_INDEX       = "User"
)

func GlobalKey(name string) string {
	return fmt.Sprintf("%s:%s", GLOBAL_ACCOUNT, name)
}

func AuthorRecipesKey(authorId string) string {
	return fmt.Sprintf("%s:Recipe", authorId)
}

func RelationKey(kind RelationKind, userId string) string {
	return fmt.Sprintf("%s:%s", userId, kind)
}

// RelationTargetKey is the GS1 partition of every relation pointing at the
// target, whatever its kind.
func RelationTargetKey(kind RelationKind, targetId string) string {
	if kind.TargetsRecipe() {
		return fmt.Sprintf("Recipe:%s", targetId)
	}
	return fmt.Sprintf("User:%s", targetId)
}
