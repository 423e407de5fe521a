package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/finpal/backend/internal/domain"
)

// AlertMarkerRepo records which alerts have already fired. A marker is keyed
// (user_id, marker) where marker encodes the alert identity and period, so a
// conditional put doubles as an atomic once-per-period check. This replaces
// scanning notification history and stays correct under concurrent checks.
type AlertMarkerRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewAlertMarkerRepo(client *dynamodb.Client, tableName string) *AlertMarkerRepo {
	return &AlertMarkerRepo{client: client, tableName: tableName}
}

// Claim inserts the marker. Returns domain.ErrConflict when it already
// exists, meaning this alert has fired this period.
func (r *AlertMarkerRepo) Claim(ctx context.Context, userID, marker string) error {
	now := time.Now().UTC()
	_, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item: map[string]types.AttributeValue{
			"user_id":    &types.AttributeValueMemberS{Value: userID},
			"marker":     &types.AttributeValueMemberS{Value: marker},
			"created_at": &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
			// TTL: markers only matter within their period, 60 days is ample.
			"expires_at": &types.AttributeValueMemberN{Value: strconv.FormatInt(now.AddDate(0, 2, 0).Unix(), 10)},
		},
		ConditionExpression: aws.String("attribute_not_exists(user_id) AND attribute_not_exists(marker)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("alert already sent: %w", domain.ErrConflict)
		}
		return err
	}
	return nil
}
