package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/finpal/backend/internal/domain"
)

// BudgetRepo provides typed DynamoDB operations for the budgets table.
type BudgetRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewBudgetRepo(client *dynamodb.Client, tableName string) *BudgetRepo {
	return &BudgetRepo{client: client, tableName: tableName}
}

func (r *BudgetRepo) Put(ctx context.Context, b *domain.Budget) error {
	item, err := attributevalue.MarshalMap(b)
	if err != nil {
		return fmt.Errorf("marshal budget: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *BudgetRepo) Get(ctx context.Context, budgetID string) (*domain.Budget, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("budget_id", budgetID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("budget %s: %w", budgetID, domain.ErrNotFound)
	}
	var b domain.Budget
	if err := attributevalue.UnmarshalMap(out.Item, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BudgetRepo) HardDelete(ctx context.Context, budgetID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("budget_id", budgetID),
	})
	return err
}

// ListByUser returns all budgets belonging to the user.
func (r *BudgetRepo) ListByUser(ctx context.Context, userID string) ([]domain.Budget, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("user_id-index"),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, err
	}
	var budgets []domain.Budget
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &budgets); err != nil {
		return nil, err
	}
	return budgets, nil
}

// CountByUser returns the number of budgets the user has defined.
func (r *BudgetRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("user_id-index"),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
		Select: types.SelectCount,
	})
	if err != nil {
		return 0, err
	}
	return int(out.Count), nil
}
