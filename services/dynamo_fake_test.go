package services

import (
	"context"
	"strings"
	"sync"

	"takk_server/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamo is an in-memory DynamoAPI good enough for the expressions this
// server actually issues: equality filters, attribute_not_exists guards,
// compare-and-set conditions, and the summary append update.
type fakeDynamo struct {
	mu     sync.Mutex
	tables map[string]map[string]map[string]types.AttributeValue

	// test hooks
	beforeTransact func(f *fakeDynamo)
	failPutFor     map[string]error // matchId → error returned from TransactWriteItems
}

var tableKeys = map[string][]string{
	models.MatchesTable:            {"matchId"},
	models.UserCycleSummariesTable: {"userId", "cycleId"},
	models.UserProfilesTable:       {"userId"},
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{
		tables:     make(map[string]map[string]map[string]types.AttributeValue),
		failPutFor: make(map[string]error),
	}
}

func (f *fakeDynamo) table(name string) map[string]map[string]types.AttributeValue {
	if f.tables[name] == nil {
		f.tables[name] = make(map[string]map[string]types.AttributeValue)
	}
	return f.tables[name]
}

func avString(av types.AttributeValue) string {
	if s, ok := av.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func avEqual(a, b types.AttributeValue) bool {
	switch av := a.(type) {
	case *types.AttributeValueMemberS:
		bv, ok := b.(*types.AttributeValueMemberS)
		return ok && av.Value == bv.Value
	case *types.AttributeValueMemberN:
		bv, ok := b.(*types.AttributeValueMemberN)
		return ok && av.Value == bv.Value
	case *types.AttributeValueMemberBOOL:
		bv, ok := b.(*types.AttributeValueMemberBOOL)
		return ok && av.Value == bv.Value
	}
	return false
}

func canonicalKey(table string, attrs map[string]types.AttributeValue) string {
	parts := make([]string, 0, len(tableKeys[table]))
	for _, attr := range tableKeys[table] {
		parts = append(parts, avString(attrs[attr]))
	}
	return strings.Join(parts, "|")
}

// evalCondition evaluates the two condition shapes the services use.
func evalCondition(item map[string]types.AttributeValue, cond string, names map[string]string, values map[string]types.AttributeValue) bool {
	if strings.HasPrefix(cond, "attribute_not_exists(") {
		return item == nil
	}
	for _, clause := range strings.Split(cond, " AND ") {
		parts := strings.SplitN(strings.TrimSpace(clause), " = ", 2)
		if len(parts) != 2 {
			return false
		}
		lhs := parts[0]
		if resolved, ok := names[lhs]; ok {
			lhs = resolved
		}
		if item == nil || item[lhs] == nil {
			return false
		}
		if !avEqual(item[lhs], values[parts[1]]) {
			return false
		}
	}
	return true
}

// splitAssignments splits a SET clause list on commas outside parentheses.
func splitAssignments(expr string) []string {
	var parts []string
	depth, start := 0, 0
	for i, c := range expr {
		switch c {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(expr[start:i]))
				start = i + 1
			}
		}
	}
	return append(parts, strings.TrimSpace(expr[start:]))
}

// applyUpdate handles the update expressions issued by the services: plain
// SET assignments, the expiry status flip, and the summary append.
func applyUpdate(item map[string]types.AttributeValue, expr string, names map[string]string, values map[string]types.AttributeValue) {
	expr = strings.TrimPrefix(expr, "SET ")
	for _, assignment := range splitAssignments(expr) {
		parts := strings.SplitN(assignment, " = ", 2)
		lhs, rhs := parts[0], parts[1]
		if resolved, ok := names[lhs]; ok {
			lhs = resolved
		}
		switch {
		case strings.Contains(rhs, "list_append"):
			var list []types.AttributeValue
			if existing, ok := item[lhs].(*types.AttributeValueMemberL); ok {
				list = existing.Value
			}
			ref := rhs[strings.LastIndex(rhs, ":"):]
			ref = strings.TrimSuffix(ref, ")")
			appended := values[ref].(*types.AttributeValueMemberL)
			item[lhs] = &types.AttributeValueMemberL{Value: append(append([]types.AttributeValue{}, list...), appended.Value...)}
		case strings.Contains(rhs, "if_not_exists") && strings.Contains(rhs, "+"):
			current := 0
			if existing, ok := item[lhs].(*types.AttributeValueMemberN); ok {
				current = atoiOrZero(existing.Value)
			}
			ref := rhs[strings.LastIndex(rhs, ":"):]
			increment := atoiOrZero(values[ref].(*types.AttributeValueMemberN).Value)
			item[lhs] = &types.AttributeValueMemberN{Value: itoa(current + increment)}
		default:
			item[lhs] = values[rhs]
		}
	}
}

func atoiOrZero(s string) int {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	return n
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

func (f *fakeDynamo) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item := f.table(*params.TableName)[canonicalKey(*params.TableName, params.Key)]
	return &dynamodb.GetItemOutput{Item: item}, nil
}

func (f *fakeDynamo) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.table(*params.TableName)[canonicalKey(*params.TableName, params.Item)] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := canonicalKey(*params.TableName, params.Key)
	item := f.table(*params.TableName)[key]
	if item == nil {
		item = make(map[string]types.AttributeValue)
		for attr, value := range params.Key {
			item[attr] = value
		}
		f.table(*params.TableName)[key] = item
	}
	applyUpdate(item, *params.UpdateExpression, params.ExpressionAttributeNames, params.ExpressionAttributeValues)
	return &dynamodb.UpdateItemOutput{Attributes: item}, nil
}

func (f *fakeDynamo) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.table(*params.TableName), canonicalKey(*params.TableName, params.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeDynamo) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []map[string]types.AttributeValue
	for _, item := range f.table(*params.TableName) {
		if evalCondition(item, *params.KeyConditionExpression, params.ExpressionAttributeNames, params.ExpressionAttributeValues) {
			items = append(items, item)
		}
	}
	return &dynamodb.QueryOutput{Items: items}, nil
}

func (f *fakeDynamo) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []map[string]types.AttributeValue
	for _, item := range f.table(*params.TableName) {
		if params.FilterExpression == nil || evalCondition(item, *params.FilterExpression, params.ExpressionAttributeNames, params.ExpressionAttributeValues) {
			items = append(items, item)
		}
	}
	return &dynamodb.ScanOutput{Items: items}, nil
}

func (f *fakeDynamo) BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for tableName, requests := range params.RequestItems {
		for _, request := range requests {
			if request.DeleteRequest != nil {
				delete(f.table(tableName), canonicalKey(tableName, request.DeleteRequest.Key))
			}
			if request.PutRequest != nil {
				f.table(tableName)[canonicalKey(tableName, request.PutRequest.Item)] = request.PutRequest.Item
			}
		}
	}
	return &dynamodb.BatchWriteItemOutput{}, nil
}

func (f *fakeDynamo) TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.beforeTransact != nil {
		hook := f.beforeTransact
		f.beforeTransact = nil
		hook(f)
	}

	// Validate all conditions first; a transaction applies all or nothing.
	var reasons []types.CancellationReason
	failed := false
	for _, item := range params.TransactItems {
		reason := types.CancellationReason{Code: aws.String("None")}
		switch {
		case item.Put != nil:
			if err, injected := f.failPutFor[avString(item.Put.Item["matchId"])]; injected {
				return nil, err
			}
			existing := f.table(*item.Put.TableName)[canonicalKey(*item.Put.TableName, item.Put.Item)]
			if item.Put.ConditionExpression != nil &&
				!evalCondition(existing, *item.Put.ConditionExpression, item.Put.ExpressionAttributeNames, item.Put.ExpressionAttributeValues) {
				reason.Code = aws.String("ConditionalCheckFailed")
				failed = true
			}
		case item.Update != nil:
			existing := f.table(*item.Update.TableName)[canonicalKey(*item.Update.TableName, item.Update.Key)]
			if item.Update.ConditionExpression != nil &&
				!evalCondition(existing, *item.Update.ConditionExpression, item.Update.ExpressionAttributeNames, item.Update.ExpressionAttributeValues) {
				reason.Code = aws.String("ConditionalCheckFailed")
				failed = true
			}
		}
		reasons = append(reasons, reason)
	}
	if failed {
		return nil, &types.TransactionCanceledException{
			Message:             aws.String("Transaction cancelled"),
			CancellationReasons: reasons,
		}
	}

	for _, item := range params.TransactItems {
		switch {
		case item.Put != nil:
			f.table(*item.Put.TableName)[canonicalKey(*item.Put.TableName, item.Put.Item)] = item.Put.Item
		case item.Update != nil:
			key := canonicalKey(*item.Update.TableName, item.Update.Key)
			existing := f.table(*item.Update.TableName)[key]
			if existing == nil {
				existing = make(map[string]types.AttributeValue)
				for attr, value := range item.Update.Key {
					existing[attr] = value
				}
				f.table(*item.Update.TableName)[key] = existing
			}
			applyUpdate(existing, *item.Update.UpdateExpression, item.Update.ExpressionAttributeNames, item.Update.ExpressionAttributeValues)
		}
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}
