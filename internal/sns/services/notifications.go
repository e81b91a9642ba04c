package services

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"philcali.me/foodgram/internal/notifications"
)

// SNSPublisher is the part of the SNS client used to announce recipes.
type SNSPublisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type NotificationSNSService struct {
	Sns      SNSPublisher
	TopicArn string
}

// PublishRecipe sends the event with the author id as a message attribute,
// letting follower subscriptions filter on the authors they follow.
func (n *NotificationSNSService) PublishRecipe(ctx context.Context, event notifications.RecipePublished) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = n.Sns.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.TopicArn),
		Subject:  aws.String("New recipe: " + event.Name),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"authorId": {
				DataType:    aws.String("String"),
				StringValue: aws.String(event.AuthorId),
			},
		},
	})
	return err
}
