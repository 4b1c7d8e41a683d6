package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/joshrotenberg/redisctl/internal/errdefs"
	"github.com/joshrotenberg/redisctl/internal/platform"
	"github.com/joshrotenberg/redisctl/internal/task"
)

func init() { Register(&SubscriptionSetup{}) }

// SubscriptionSetup provisions a Cloud subscription carrying one region and
// one minimal database, waits for the creation task, and reports the
// connection details of what came up.
type SubscriptionSetup struct{}

func (*SubscriptionSetup) Name() string { return "subscription-setup" }

func (*SubscriptionSetup) Platform() string { return PlatformCloud }

func (*SubscriptionSetup) Description() string {
	return "Create a subscription with one database and wait until it is ready"
}

type subscriptionSetupInput struct {
	name            string
	provider        string
	region          string
	cidr            string
	databaseName    string
	memoryGB        float64
	paymentMethodID int
	dryRun          bool
}

func subscriptionSetupArgs(args Args) subscriptionSetupInput {
	in := subscriptionSetupInput{
		name:            args.StringOr("name", "redisctl-subscription"),
		provider:        args.StringOr("provider", "AWS"),
		region:          args.StringOr("region", "us-east-1"),
		cidr:            args.StringOr("deployment-cidr", "10.0.0.0/24"),
		memoryGB:        args.Float("memory-gb", 1),
		paymentMethodID: args.Int("payment-method-id", 0),
		dryRun:          args.Bool("dry-run"),
	}
	in.databaseName = args.StringOr("database-name", in.name+"-db")
	return in
}

// payload is the subscription create request body. The API requires at least
// one database at create time.
func (in subscriptionSetupInput) payload() map[string]any {
	p := map[string]any{
		"name": in.name,
		"cloudProviders": []any{map[string]any{
			"provider": in.provider,
			"regions": []any{map[string]any{
				"region":     in.region,
				"networking": map[string]any{"deploymentCIDR": in.cidr},
			}},
		}},
		"databases": []any{map[string]any{
			"name":            in.databaseName,
			"memoryLimitInGb": in.memoryGB,
		}},
	}
	if in.paymentMethodID > 0 {
		p["paymentMethodId"] = in.paymentMethodID
	}
	return p
}

func (s *SubscriptionSetup) Execute(ctx context.Context, wctx *Context, args Args) (*Result, error) {
	in := subscriptionSetupArgs(args)
	payload := in.payload()

	if in.dryRun {
		return &Result{
			Success: true,
			Message: "dry run: payload not submitted",
			Outputs: map[string]any{"payload": payload},
		}, nil
	}

	client, err := wctx.Conn.Cloud(ctx, wctx.Profile)
	if err != nil {
		return nil, err
	}

	var (
		rec *task.Record
		db  subscriptionDatabase
	)

	var steps []Step
	if in.paymentMethodID == 0 {
		steps = append(steps, Step{Name: "select payment method", Run: func(ctx context.Context) error {
			id, err := firstPaymentMethod(ctx, client)
			if err != nil {
				return err
			}
			wctx.stepf("using payment method %d", id)
			payload["paymentMethodId"] = id
			return nil
		}})
	}
	steps = append(steps,
		Step{Name: "create subscription", Run: func(ctx context.Context) error {
			raw, err := client.Post(ctx, "/subscriptions", payload)
			if err != nil {
				return err
			}
			var doc map[string]any
			_ = json.Unmarshal(raw, &doc)
			id, ok := task.ExtractTaskID(doc)
			if !ok {
				return errdefs.Validationf("subscription create returned no task id")
			}
			waiter := task.NewWaiter(client, task.CloudTasks, task.WithClock(wctx.clock()))
			if rec, err = waiter.Wait(ctx, id, wctx.waitOptions()); err != nil {
				return err
			}
			if rec.State == task.StateFailure {
				return &errdefs.APIError{TaskID: rec.ID, Detail: rec.Err}
			}
			if rec.ResourceID == "" {
				return errdefs.Validationf("task %s finished without a subscription id", rec.ID)
			}
			return nil
		}},
		Step{Name: "discover database", Run: func(ctx context.Context) error {
			raw, err := client.Get(ctx, "/subscriptions/"+rec.ResourceID+"/databases")
			if err != nil {
				return err
			}
			db = firstSubscriptionDatabase(raw)
			return nil
		}},
	)

	completed, err := runSteps(ctx, wctx, steps)
	if err != nil {
		return partialResult(completed, err), err
	}

	return &Result{
		Success: true,
		Message: fmt.Sprintf("subscription %s ready", rec.ResourceID),
		Outputs: map[string]any{
			"subscription_id":   rec.ResourceID,
			"subscription_name": in.name,
			"database_id":       db.ID,
			"database_name":     db.Name,
			"connection_string": db.connectionString(),
			"provider":          in.provider,
			"region":            in.region,
			"status":            db.Status,
		},
		StepsCompleted: completed,
	}, nil
}

// firstPaymentMethod picks the account's first credit card, or failing that
// the first payment method of any kind.
func firstPaymentMethod(ctx context.Context, client platform.RawAPI) (int, error) {
	raw, err := client.Get(ctx, "/payment-methods")
	if err != nil {
		return 0, err
	}
	var doc struct {
		PaymentMethods []struct {
			ID   json.Number `json:"id"`
			Type string      `json:"type"`
		} `json:"paymentMethods"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil || len(doc.PaymentMethods) == 0 {
		return 0, errdefs.Validationf("account has no payment methods; pass payment-method-id explicitly")
	}
	pick := doc.PaymentMethods[0]
	for _, pm := range doc.PaymentMethods {
		if strings.Contains(strings.ToLower(pm.Type), "credit") {
			pick = pm
			break
		}
	}
	id, err := pick.ID.Int64()
	if err != nil {
		return 0, errdefs.Validationf("payment method id %q is not numeric", pick.ID.String())
	}
	return int(id), nil
}

type subscriptionDatabase struct {
	ID       string
	Name     string
	Endpoint string
	Status   string
}

func (d subscriptionDatabase) connectionString() string {
	if d.Endpoint == "" {
		return ""
	}
	return "redis://" + d.Endpoint
}

// firstSubscriptionDatabase digs the first database out of the subscription
// databases listing. The endpoint nests the list under a subscription array;
// flat shapes are accepted too. Missing pieces come back empty rather than
// failing the workflow.
func firstSubscriptionDatabase(raw json.RawMessage) subscriptionDatabase {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return subscriptionDatabase{}
	}
	entry := firstDatabaseEntry(doc)
	if entry == nil {
		return subscriptionDatabase{}
	}
	return subscriptionDatabase{
		ID:       anyToString(entry["databaseId"]),
		Name:     anyToString(entry["name"]),
		Endpoint: anyToString(entry["publicEndpoint"]),
		Status:   anyToString(entry["status"]),
	}
}

func firstDatabaseEntry(doc any) map[string]any {
	switch v := doc.(type) {
	case []any:
		if len(v) == 0 {
			return nil
		}
		entry, _ := v[0].(map[string]any)
		return entry
	case map[string]any:
		if dbs, ok := v["databases"].([]any); ok {
			return firstDatabaseEntry(dbs)
		}
		if subs, ok := v["subscription"].([]any); ok && len(subs) > 0 {
			if sub, ok := subs[0].(map[string]any); ok {
				return firstDatabaseEntry(sub["databases"])
			}
		}
	}
	return nil
}

func anyToString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}
