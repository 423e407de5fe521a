package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/finpal/backend/internal/domain"
)

// AchievementRepo provides read access to the achievement catalog table.
type AchievementRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewAchievementRepo(client *dynamodb.Client, tableName string) *AchievementRepo {
	return &AchievementRepo{client: client, tableName: tableName}
}

func (r *AchievementRepo) GetByKey(ctx context.Context, key string) (*domain.Achievement, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("key", key),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("achievement %s: %w", key, domain.ErrNotFound)
	}
	var a domain.Achievement
	if err := attributevalue.UnmarshalMap(out.Item, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AchievementRepo) List(ctx context.Context) ([]domain.Achievement, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	})
	if err != nil {
		return nil, err
	}
	var catalog []domain.Achievement
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &catalog); err != nil {
		return nil, err
	}
	return catalog, nil
}

// SeedIfAbsent inserts a catalog entry unless the key already exists.
// Called at bootstrap; existing entries are never overwritten.
func (r *AchievementRepo) SeedIfAbsent(ctx context.Context, a *domain.Achievement) error {
	item, err := attributevalue.MarshalMap(a)
	if err != nil {
		return fmt.Errorf("marshal achievement: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(#k)"),
		ExpressionAttributeNames: map[string]string{
			"#k": "key",
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil
		}
		return err
	}
	return nil
}

// UserAchievementRepo provides typed DynamoDB operations for unlocked
// achievements. The table key is (user_id, achievement_key), so a pair can
// exist at most once.
type UserAchievementRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewUserAchievementRepo(client *dynamodb.Client, tableName string) *UserAchievementRepo {
	return &UserAchievementRepo{client: client, tableName: tableName}
}

// PutIfAbsent records the unlock. Returns domain.ErrConflict when the pair
// already exists — the caller treats that as "already unlocked".
func (r *UserAchievementRepo) PutIfAbsent(ctx context.Context, ua *domain.UserAchievement) error {
	item, err := attributevalue.MarshalMap(ua)
	if err != nil {
		return fmt.Errorf("marshal user achievement: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(user_id) AND attribute_not_exists(achievement_key)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("already unlocked: %w", domain.ErrConflict)
		}
		return err
	}
	return nil
}

func (r *UserAchievementRepo) ListByUser(ctx context.Context, userID string) ([]domain.UserAchievement, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, err
	}
	var unlocked []domain.UserAchievement
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &unlocked); err != nil {
		return nil, err
	}
	return unlocked, nil
}
