package repository

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"personal-website/internal/model"
	"personal-website/pkg/logger"
)

// DynamoDB ベースの記事テーブル
type DynamoTable struct {
	tableName string
	client    *dynamodb.Client
}

var _ Table = (*DynamoTable)(nil)

// DynamoDB テーブルのコンストラクタ
func NewDynamoTable(cfg aws.Config, tableName string, opts ...func(*dynamodb.Options)) *DynamoTable {
	return &DynamoTable{
		tableName: tableName,
		client:    dynamodb.NewFromConfig(cfg, opts...),
	}
}

// 一覧表示で読み出す属性
var listProjection = expression.NamesList(
	expression.Name("postId"),
	expression.Name("title"),
	expression.Name("html"),
	expression.Name("created"),
	expression.Name("tags"),
)

func postKey(postID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"postId": &types.AttributeValueMemberS{Value: postID},
	}
}

// 指定IDの記事を取得
func (d *DynamoTable) Get(ctx context.Context, postID string) (model.Post, error) {
	logger.Debug("getting post from DynamoDB", "postId", postID, "table", d.tableName)

	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.tableName),
		Key:       postKey(postID),
	})
	if err != nil {
		return model.Post{}, fmt.Errorf("retrieving item: %w", err)
	}
	if out.Item == nil {
		return model.Post{}, ErrNotFound
	}

	var post model.Post
	if err := attributevalue.UnmarshalMap(out.Item, &post); err != nil {
		return model.Post{}, fmt.Errorf("deserializing item: %w", err)
	}
	return post, nil
}

// 記事を保存 (全置換)
func (d *DynamoTable) Put(ctx context.Context, rec model.Record) error {
	post := rec.Post()
	item, err := attributevalue.MarshalMap(post)
	if err != nil {
		return fmt.Errorf("serializing item: %w", err)
	}

	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("storing item: %w", err)
	}

	logger.Info("successfully saved post", "postId", post.PostID, "table", d.tableName)
	return nil
}

// 記事一覧を取得 (1ページのみ)
func (d *DynamoTable) Scan(ctx context.Context, limit int) ([]model.Post, error) {
	expr, err := expression.NewBuilder().WithProjection(listProjection).Build()
	if err != nil {
		return nil, fmt.Errorf("building projection: %w", err)
	}

	out, err := d.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:                aws.String(d.tableName),
		Limit:                    aws.Int32(int32(limit)),
		ProjectionExpression:     expr.Projection(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		return nil, fmt.Errorf("scanning table: %w", err)
	}
	if out.Items == nil {
		return nil, ErrNoScanResult
	}

	posts := make([]model.Post, 0, len(out.Items))
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &posts); err != nil {
		return nil, fmt.Errorf("parsing scan response: %w", err)
	}

	logger.Debug("scanned posts", "count", len(posts), "table", d.tableName)
	return posts, nil
}
