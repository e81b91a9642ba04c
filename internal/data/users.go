package data

import (
	"context"
	"time"
)

type UserDTO struct {
	PK         string    `dynamodbav:"PK"`
	SK         string    `dynamodbav:"SK"`
	FirstIndex string    `dynamodbav:"GS1-PK"`
	FirstSort  string    `dynamodbav:"GS1-SK"`
	Email      string    `dynamodbav:"email"`
	Username   string    `dynamodbav:"username"`
	FirstName  string    `dynamodbav:"firstName"`
	LastName   string    `dynamodbav:"lastName"`
	Avatar     *string   `dynamodbav:"avatar,omitempty"`
	CreateTime time.Time `dynamodbav:"createTime"`
	UpdateTime time.Time `dynamodbav:"updateTime"`
}

func (u UserDTO) Id() string {
	return u.SK
}

type UserInputDTO struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,max=150,username"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
}

type UserRepository interface {
	// Create fails with a conflict when the email or username is taken.
	Create(ctx context.Context, input UserInputDTO) (UserDTO, error)
	Get(ctx context.Context, userId string) (UserDTO, error)
	GetByEmail(ctx context.Context, email string) (UserDTO, error)
	BatchGet(ctx context.Context, userIds []string) (map[string]UserDTO, error)
	// List pages through every user ordered by username.
	List(ctx context.Context, params QueryParams) (QueryResults[UserDTO], error)
	// UpdateAvatar sets the avatar reference, or clears it when nil.
	UpdateAvatar(ctx context.Context, userId string, avatar *string) (UserDTO, error)
	// Delete removes the user together with their recipes, relations and
	// every subscription pointing at them.
	Delete(ctx context.Context, userId string) error
}
