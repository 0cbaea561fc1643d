package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/campaign-crm/internal/audience"
	"github.com/unclebandit/campaign-crm/internal/db"
	appErrors "github.com/unclebandit/campaign-crm/internal/errors"
	"github.com/unclebandit/campaign-crm/internal/model"
	"github.com/unclebandit/campaign-crm/internal/repository"
)

func getTestDB(t *testing.T) *db.Database {
	t.Helper()
	d, err := db.Open("sqlite://:memory:")
	require.NoError(t, err, "Failed to open test database")
	require.NoError(t, d.Migrate())
	t.Cleanup(func() { d.Close() })
	return d
}

func seed(t *testing.T, d *db.Database) {
	t.Helper()
	ctx := context.Background()

	customers := &repository.CustomerRepository{DB: d}
	n, err := customers.BulkInsert(ctx, []model.Customer{
		{Name: "Ann", Email: "ann@example.com", Age: 30, City: "NY"},
		{Name: "Bob", Email: "bob@example.com", Age: 17, City: "NY"},
		{Name: "Cy", Email: "cy@example.com", Age: 45, City: "LA"},
	})
	require.NoError(t, err)
	require.Equal(t, 3, n)

	orders := &repository.OrderRepository{DB: d}
	n, err = orders.BulkInsert(ctx, []model.Order{
		{OrderRef: "o1", Product: "Shoes", Amount: 120, CustomerID: 1},
		{OrderRef: "o2", Product: "Hat", Amount: 50, CustomerID: 2},
		{OrderRef: "o3", Product: "Shoes", Amount: 300, CustomerID: 1},
		{Product: "Bag", Amount: 80, CustomerID: 42},
	})
	require.NoError(t, err)
	require.Equal(t, 4, n)
}

func compile(t *testing.T, rules ...model.Rule) *audience.Filter {
	t.Helper()
	f, err := audience.Compile(rules)
	require.NoError(t, err)
	return f
}

func customerIDs(cs []model.Customer) []int {
	out := []int{}
	for _, c := range cs {
		out = append(out, c.ID)
	}
	return out
}

func TestCustomerRepository_FindMatching(t *testing.T) {
	d := getTestDB(t)
	seed(t, d)
	repo := &repository.CustomerRepository{DB: d}
	ctx := context.Background()

	tests := []struct {
		name       string
		rules      []model.Rule
		restrictTo []int
		want       []int
	}{
		{name: "no filter", want: []int{1, 2, 3}},
		{name: "age gt", rules: []model.Rule{{Entity: "customer", Field: "age", Operator: "gt", Value: "18"}}, want: []int{1, 3}},
		{name: "age lt", rules: []model.Rule{{Entity: "customer", Field: "age", Operator: "lt", Value: "30"}}, want: []int{2}},
		{name: "age eq decimal", rules: []model.Rule{{Entity: "customer", Field: "age", Operator: "eq", Value: "45.0"}}, want: []int{3}},
		{name: "city neq", rules: []model.Rule{{Entity: "customer", Field: "city", Operator: "neq", Value: "NY"}}, want: []int{3}},
		{
			name: "conjunction",
			rules: []model.Rule{
				{Entity: "customer", Field: "city", Operator: "eq", Value: "NY"},
				{Entity: "customer", Field: "age", Operator: "gt", Value: "18"},
			},
			want: []int{1},
		},
		{name: "restricted", restrictTo: []int{2, 3, 99}, want: []int{2, 3}},
		{name: "empty restriction", restrictTo: []int{}, want: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := compile(t, tt.rules...)
			got, err := repo.FindMatching(ctx, f.Customer, tt.restrictTo)
			require.NoError(t, err)
			assert.Equal(t, tt.want, customerIDs(got))
		})
	}
}

func TestOrderRepository_CustomerIDsMatching(t *testing.T) {
	d := getTestDB(t)
	seed(t, d)
	repo := &repository.OrderRepository{DB: d}
	ctx := context.Background()

	f := compile(t, model.Rule{Entity: "order", Field: "amount", Operator: "gt", Value: "100"})
	got, err := repo.CustomerIDsMatching(ctx, f.Order)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, got, "two matching orders yield one owner")

	f = compile(t, model.Rule{Entity: "order", Field: "product", Operator: "neq", Value: "Shoes"})
	got, err = repo.CustomerIDsMatching(ctx, f.Order)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 42}, got, "owners need not exist as customers")
}

func TestOrderRepository_BulkInsertDefaults(t *testing.T) {
	d := getTestDB(t)
	seed(t, d)
	repo := &repository.OrderRepository{DB: d}

	orders, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 4)
	assert.NotEmpty(t, orders[3].OrderRef)
	assert.WithinDuration(t, time.Now(), orders[3].Date, time.Minute)
}

func TestOrderRepository_BulkInsertIsAtomic(t *testing.T) {
	d := getTestDB(t)
	repo := &repository.OrderRepository{DB: d}
	ctx := context.Background()

	_, err := repo.BulkInsert(ctx, []model.Order{
		{OrderRef: "dup", Amount: 1, CustomerID: 1},
		{OrderRef: "dup", Amount: 2, CustomerID: 1},
	})
	var ve *appErrors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "order_ref", ve.Field)

	orders, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

// sqliteMaxVariables is the default bind parameter limit of sqlite.
const sqliteMaxVariables = 32766

// fillRows inserts n generated rows with a recursive CTE, bypassing the
// repositories under test.
func fillRows(t *testing.T, d *db.Database, n int, insert string) {
	t.Helper()
	_, err := d.Exec(`WITH RECURSIVE seq(n) AS (SELECT 1 UNION ALL SELECT n + 1 FROM seq WHERE n < ?) `+insert, n)
	require.NoError(t, err)
}

func TestResolverWithAudienceAboveParameterLimit(t *testing.T) {
	d := getTestDB(t)
	n := sqliteMaxVariables + 2000
	fillRows(t, d, n, `INSERT INTO customers (name, age, city) SELECT 'c' || n, 30, 'NY' FROM seq`)
	fillRows(t, d, n, `INSERT INTO orders (order_ref, amount, customer_id) SELECT 'o' || n, 200, n FROM seq`)

	r := audience.NewResolver(&repository.CustomerRepository{DB: d}, &repository.OrderRepository{DB: d})
	ctx := context.Background()

	all, err := r.ResolveRules(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, n)

	got, err := r.ResolveRules(ctx, []model.Rule{
		{Entity: "order", Field: "amount", Operator: "gt", Value: "100"},
		{Entity: "customer", Field: "city", Operator: "eq", Value: "NY"},
	})
	require.NoError(t, err)
	require.Len(t, got, n)
	assert.Equal(t, 1, got[0].ID)
	assert.Equal(t, n, got[n-1].ID)
	for i := 1; i < len(got); i++ {
		require.Less(t, got[i-1].ID, got[i].ID, "sorted without duplicates")
	}
}

func TestCustomerRepository_BulkInsertAcrossBatches(t *testing.T) {
	d := getTestDB(t)
	repo := &repository.CustomerRepository{DB: d}
	ctx := context.Background()

	rows := make([]model.Customer, 7000)
	for i := range rows {
		rows[i] = model.Customer{Name: fmt.Sprintf("c%d", i), Age: 20.5, City: "NY"}
	}
	n, err := repo.BulkInsert(ctx, rows)
	require.NoError(t, err)
	assert.Equal(t, 7000, n)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 7000)
	assert.Equal(t, 20.5, all[6999].Age)
}

func TestOrderRepository_BulkInsertAtomicAcrossBatches(t *testing.T) {
	d := getTestDB(t)
	repo := &repository.OrderRepository{DB: d}
	ctx := context.Background()

	rows := make([]model.Order, 1200)
	for i := range rows {
		rows[i] = model.Order{OrderRef: fmt.Sprintf("r%d", i), Amount: 1, CustomerID: 1}
	}
	// the last batch repeats a ref from the first
	rows[len(rows)-1].OrderRef = "r0"

	_, err := repo.BulkInsert(ctx, rows)
	assert.True(t, appErrors.IsValidation(err))

	var count int
	require.NoError(t, d.Get(&count, "SELECT COUNT(*) FROM orders"))
	assert.Zero(t, count, "earlier batches are rolled back")

	rows[len(rows)-1].OrderRef = "r-last"
	n, err := repo.BulkInsert(ctx, rows)
	require.NoError(t, err)
	assert.Equal(t, 1200, n)

	_, err = repo.BulkInsert(ctx, []model.Order{{OrderRef: "r5", Amount: 1, CustomerID: 1}})
	assert.True(t, appErrors.IsValidation(err), "a ref already stored is rejected")
}

func TestResolverAgainstSQLite(t *testing.T) {
	d := getTestDB(t)
	seed(t, d)
	r := audience.NewResolver(&repository.CustomerRepository{DB: d}, &repository.OrderRepository{DB: d})
	ctx := context.Background()

	got, err := r.ResolveRules(ctx, []model.Rule{
		{Entity: "order", Field: "amount", Operator: "gt", Value: "100"},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, customerIDs(got))

	got, err = r.ResolveRules(ctx, []model.Rule{
		{Entity: "order", Field: "product", Operator: "eq", Value: "Bag"},
	})
	require.NoError(t, err)
	assert.Empty(t, got, "order owner 42 is not a customer")
}

func TestCampaignRepository_CreateAndGet(t *testing.T) {
	d := getTestDB(t)
	seed(t, d)
	repo := &repository.CampaignRepository{DB: d}
	users := &repository.UserRepository{DB: d}
	ctx := context.Background()

	u, err := users.FindOrCreateByGoogleID(ctx, &model.User{GoogleID: "g-1", Email: "op@example.com", Name: "Op"})
	require.NoError(t, err)

	c := &model.Campaign{
		Name:          "Spring",
		Objective:     "win back",
		Rules:         []model.Rule{{Entity: "customer", Field: "city", Operator: "eq", Value: "NY"}},
		AudienceCount: 2,
		Logs: []model.DeliveryLog{
			{CustomerID: 1, Status: model.DeliverySent, Opened: true},
			{CustomerID: 2, Status: model.DeliveryFailed},
		},
		CreatedBy: u.ID,
	}
	require.NoError(t, repo.Create(ctx, c))
	require.NotZero(t, c.ID)

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Spring", got.Name)
	assert.Equal(t, c.Rules, got.Rules)
	assert.Equal(t, 2, got.AudienceCount)
	require.Len(t, got.Logs, 2)
	assert.Equal(t, "Ann", got.Logs[0].CustomerName)
	assert.True(t, got.Logs[0].Opened)
	assert.Equal(t, model.DeliveryFailed, got.Logs[1].Status)
	require.NotNil(t, got.Creator)
	assert.Equal(t, "op@example.com", got.Creator.Email)
}

func TestCampaignRepository_CreateRejectsMismatch(t *testing.T) {
	d := getTestDB(t)
	repo := &repository.CampaignRepository{DB: d}
	ctx := context.Background()

	err := repo.Create(ctx, &model.Campaign{Name: "x", Objective: "y", AudienceCount: 2, Logs: []model.DeliveryLog{{CustomerID: 1, Status: model.DeliverySent}}})
	require.Error(t, err)

	_, total, err := repo.ListCampaigns(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
}

func TestCampaignRepository_CreateIsAtomic(t *testing.T) {
	d := getTestDB(t)
	repo := &repository.CampaignRepository{DB: d}
	ctx := context.Background()

	// the duplicate customer violates the delivery_logs primary key
	err := repo.Create(ctx, &model.Campaign{
		Name:          "dup",
		Objective:     "o",
		AudienceCount: 2,
		Logs: []model.DeliveryLog{
			{CustomerID: 1, Status: model.DeliverySent},
			{CustomerID: 1, Status: model.DeliverySent},
		},
	})
	require.Error(t, err)
	assert.True(t, appErrors.IsStorage(err))

	campaigns, total, err := repo.ListCampaigns(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, campaigns)

	var logs int
	require.NoError(t, d.Get(&logs, "SELECT COUNT(*) FROM delivery_logs"))
	assert.Equal(t, 0, logs)
}

func TestCampaignRepository_GetMissing(t *testing.T) {
	d := getTestDB(t)
	repo := &repository.CampaignRepository{DB: d}

	_, err := repo.GetByID(context.Background(), 404)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestCampaignRepository_ListNewestFirst(t *testing.T) {
	d := getTestDB(t)
	repo := &repository.CampaignRepository{DB: d}
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		c := &model.Campaign{
			Name:          "C" + string(rune('1'+i)),
			Objective:     "o",
			AudienceCount: 1,
			Logs:          []model.DeliveryLog{{CustomerID: i + 1, Status: model.DeliverySent}},
			CreatedAt:     base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, repo.Create(ctx, c))
	}

	all, total, err := repo.ListCampaigns(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, all, 5)
	for i := 1; i < len(all); i++ {
		assert.True(t, all[i-1].CreatedAt.After(all[i].CreatedAt), "expected newest first")
	}
	for _, c := range all {
		assert.Len(t, c.Logs, c.AudienceCount)
	}

	page, _, err := repo.ListCampaigns(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, all[2].ID, page[0].ID)
}

func TestCampaignRepository_ListAllAboveParameterLimit(t *testing.T) {
	d := getTestDB(t)
	repo := &repository.CampaignRepository{DB: d}
	ctx := context.Background()

	n := sqliteMaxVariables + 1000
	fillRows(t, d, n, `INSERT INTO campaigns (name, objective, audience_count, created_by) SELECT 'c' || n, 'o', 1, 0 FROM seq`)
	fillRows(t, d, n, `INSERT INTO delivery_logs (campaign_id, customer_id, status, opened) SELECT n, 1, 'SENT', 0 FROM seq`)

	all, total, err := repo.ListCampaigns(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, n, total)
	require.Len(t, all, n)
	for _, c := range all {
		require.Len(t, c.Logs, 1, "campaign %d", c.ID)
		require.Equal(t, c.ID, c.Logs[0].CampaignID)
	}
}

func TestUserRepository_FindOrCreate(t *testing.T) {
	d := getTestDB(t)
	repo := &repository.UserRepository{DB: d}
	ctx := context.Background()

	first, err := repo.FindOrCreateByGoogleID(ctx, &model.User{GoogleID: "g-7", Email: "a@example.com", Name: "A"})
	require.NoError(t, err)

	again, err := repo.FindOrCreateByGoogleID(ctx, &model.User{GoogleID: "g-7", Email: "a2@example.com", Name: "A"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, "a2@example.com", again.Email)

	stored, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "a2@example.com", stored.Email)

	missing, err := repo.GetByID(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
