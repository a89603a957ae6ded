package lumina

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edwinlov3tt/report-ai-sub000/internal/domain"
	"github.com/edwinlov3tt/report-ai-sub000/internal/storage"
	"github.com/edwinlov3tt/report-ai-sub000/internal/storage/storagetest"
)

const orderID = "65a1b2c3d4e5f60718293a4b"

const orderJSON = `{
  "_id": "65a1b2c3d4e5f60718293a4b",
  "orderNumber": "ORD-1001",
  "name": "Spring Promo",
  "lineItems": [
    {"_id": "li1", "product": "Meta", "subProduct": "Link Click", "startDate": "2024-03-01", "endDate": "2024-03-31", "budget": 1500, "platform": "facebook"},
    {"_id": "li2", "product": "Meta", "subProduct": "Link Click", "startDate": "2024-03-05", "endDate": "2024-04-10", "budget": "$500.00", "platform": "instagram"},
    {"_id": "li3", "product": "SEM", "subProduct": "Brand (Exact)", "startDate": "2024-02-20", "endDate": "2024-03-31", "budget": 1000, "platform": "google"}
  ]
}`

func decode(t *testing.T, s string) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(s), &m))
	return m
}

func TestValidateOrderID(t *testing.T) {
	assert.NoError(t, ValidateOrderID(orderID))
	assert.NoError(t, ValidateOrderID("65A1B2C3D4E5F60718293A4B"))
	for _, bad := range []string{"", "65a1b2c3", orderID + "0", "65a1b2c3d4e5f60718293a4z", " 65a1b2c3d4e5f60718293a4"} {
		err := ValidateOrderID(bad)
		assert.True(t, domain.Is(err, domain.ErrorTypeValidation), bad)
	}
}

func TestNormalize(t *testing.T) {
	now := time.Date(2024, 3, 11, 15, 0, 0, 0, time.UTC)
	c := Normalize(decode(t, orderJSON), now)

	assert.Equal(t, orderID, c.ID)
	assert.Equal(t, "ORD-1001", c.OrderNumber)
	assert.Equal(t, "Spring Promo", c.Name)
	require.Len(t, c.LineItems, 3)
	assert.Equal(t, 500.0, c.LineItems[1].Budget)
	assert.Equal(t, 3000.0, c.TotalBudget)
	assert.Equal(t, []string{"Meta", "SEM"}, c.Products)
	assert.Equal(t, "2024-02-20", c.StartDate)
	assert.Equal(t, "2024-04-10", c.EndDate)
	assert.Equal(t, StatusOngoing, c.Status)
	assert.Equal(t, 21, c.DaysElapsed)
	assert.Equal(t, 30, c.DaysRemaining)
}

func TestNormalize_Status(t *testing.T) {
	raw := map[string]interface{}{"startDate": "2024-03-01", "endDate": "2024-03-10"}

	before := Normalize(raw, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, StatusUpcoming, before.Status)
	assert.Equal(t, 0, before.DaysElapsed)
	assert.Equal(t, 10, before.DaysRemaining)

	after := Normalize(raw, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, StatusCompleted, after.Status)
	assert.Equal(t, 10, after.DaysElapsed)
	assert.Equal(t, 0, after.DaysRemaining)

	undated := Normalize(map[string]interface{}{}, time.Now())
	assert.Equal(t, StatusOngoing, undated.Status)
	assert.Empty(t, undated.LineItems)
	assert.NotNil(t, undated.Products)
}

func TestGroupTactics(t *testing.T) {
	c := Normalize(decode(t, orderJSON), time.Now())
	tactics := GroupTactics(c.LineItems)

	require.Len(t, tactics, 2)
	assert.Equal(t, "Meta-LinkClick", tactics[0].ID)
	assert.Equal(t, "Meta - Link Click", tactics[0].Name)
	assert.Len(t, tactics[0].LineItems, 2)
	assert.Equal(t, 2000.0, tactics[0].TotalBudget)
	assert.Equal(t, "SEM-BrandExact", tactics[1].ID)

	assert.Empty(t, GroupTactics(nil))
	assert.Equal(t, "a-b_c", Sanitize("a -b_c!?"))
}

func extractor(path string, agg storage.AggregateType, when string) *storage.LuminaExtractor {
	e := &storage.LuminaExtractor{Name: "x", Path: path, AggregateType: agg}
	if when != "" {
		if err := json.Unmarshal([]byte(when), &e.WhenConditions); err != nil {
			panic(err)
		}
	}
	return e
}

func TestEvaluate(t *testing.T) {
	raw := decode(t, orderJSON)

	tests := []struct {
		name string
		e    *storage.LuminaExtractor
		want interface{}
		ok   bool
	}{
		{"scalar", extractor("orderNumber", "", ""), "ORD-1001", true},
		{"dollar prefix", extractor("$.name", "", ""), "Spring Promo", true},
		{"index", extractor("lineItems[2].platform", "", ""), "google", true},
		{"fan out first", extractor("lineItems[].platform", storage.AggregateFirst, ""), "facebook", true},
		{"fan out unique", extractor("lineItems[].product", storage.AggregateUnique, ""), []interface{}{"Meta", "SEM"}, true},
		{"fan out sum", extractor("lineItems[].budget", storage.AggregateSum, ""), 3000.0, true},
		{"fan out join", extractor("lineItems[].platform", storage.AggregateJoin, ""), "facebook, instagram, google", true},
		{"no aggregate keeps list", extractor("lineItems[].product", "", ""), []interface{}{"Meta", "Meta", "SEM"}, true},
		{"when eq", extractor("lineItems[].platform", storage.AggregateJoin, `{"product":"meta"}`), "facebook, instagram", true},
		{"when in", extractor("lineItems[]._id", storage.AggregateJoin, `{"platform":["google","instagram"]}`), "li2, li3", true},
		{"when contains", extractor("lineItems[].budget", storage.AggregateSum, `{"subProduct":{"contains":"brand"}}`), 1000.0, true},
		{"when filters all", extractor("lineItems[].budget", storage.AggregateSum, `{"product":"TikTok"}`), nil, false},
		{"missing path", extractor("campaign.owner", "", ""), nil, false},
		{"index out of range", extractor("lineItems[9].platform", "", ""), nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := Evaluate(tt.e, raw)
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluate_BadPath(t *testing.T) {
	for _, p := range []string{"", "lineItems[", "lineItems[x].a", "a..b"} {
		_, _, err := Evaluate(extractor(p, "", ""), map[string]interface{}{})
		assert.Error(t, err, p)
		assert.Error(t, ValidatePath(p), p)
	}
}

func TestClient_FetchOrder(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotAuth = r.URL.Path, r.Header.Get("Authorization")
		switch r.URL.Path {
		case "/orders/" + orderID:
			_, _ = w.Write([]byte(`{"data":` + orderJSON + `}`))
		case "/orders/aaaaaaaaaaaaaaaaaaaaaaaa":
			http.Error(w, "not here", http.StatusNotFound)
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL + "/", APIKey: "secret"})
	require.NoError(t, err)

	order, body, err := c.FetchOrder(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, "/orders/"+orderID, gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "Spring Promo", order["name"])
	assert.NotEmpty(t, body)

	_, _, err = c.FetchOrder(context.Background(), "aaaaaaaaaaaaaaaaaaaaaaaa")
	assert.True(t, domain.Is(err, domain.ErrorTypeNotFound))

	_, _, err = c.FetchOrder(context.Background(), "bbbbbbbbbbbbbbbbbbbbbbbb")
	assert.True(t, domain.Is(err, domain.ErrorTypeProvider))

	_, _, err = c.FetchOrder(context.Background(), "nope")
	assert.True(t, domain.Is(err, domain.ErrorTypeValidation))

	_, err = NewClient(Config{})
	assert.Error(t, err)
}

func TestUnwrapOrder(t *testing.T) {
	for _, body := range []string{
		`{"name":"A"}`,
		`{"order":{"_id":"1","name":"A"}}`,
		`[{"name":"A"}]`,
		`{"data":[{"_id":"1","name":"A"}]}`,
		`{"success":true,"data":{"orderNumber":"ORD-1","name":"A"}}`,
		`{"data":{"order":{"lineItems":[],"name":"A"}}}`,
	} {
		m, err := unwrapOrder([]byte(body))
		require.NoError(t, err, body)
		assert.Equal(t, "A", m["name"], body)
	}
	for _, body := range []string{`[]`, `"x"`, `nope`} {
		_, err := unwrapOrder([]byte(body))
		assert.Error(t, err, body)
	}
}

func TestUnwrapOrder_KeepsOrderOwnDataField(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"order with data object", `{"_id":"65f1c0ffee0123456789abcd","name":"A","data":{"source":"crm"}}`},
		{"order with data list", `{"orderNumber":"ORD-7","name":"A","data":[{"k":"v"}]}`},
		{"data without order identity", `{"name":"A","data":{"source":"crm"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := unwrapOrder([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, "A", m["name"])
			assert.Contains(t, m, "data")
		})
	}
}

type staticFetcher struct {
	raw  map[string]interface{}
	body []byte
}

func (f staticFetcher) FetchOrder(context.Context, string) (map[string]interface{}, []byte, error) {
	return f.raw, f.body, nil
}

func TestService_Lookup(t *testing.T) {
	ctx := context.Background()
	store := storagetest.NewStore(t)

	meta := &storage.Product{Name: "Meta", Slug: "meta"}
	require.NoError(t, store.Products.Create(ctx, meta))
	require.NoError(t, store.Extractors.Create(ctx, &storage.LuminaExtractor{
		ProductID: meta.ID, Name: "meta_budget", Path: "lineItems[].budget",
		AggregateType: storage.AggregateSum, WhenConditions: storage.Predicate{"product": {Eq: "Meta"}},
	}))
	other := &storage.Product{Name: "Display", Slug: "display"}
	require.NoError(t, store.Products.Create(ctx, other))
	require.NoError(t, store.Extractors.Create(ctx, &storage.LuminaExtractor{
		ProductID: other.ID, Name: "display_only", Path: "orderNumber",
	}))

	svc := NewService(staticFetcher{raw: decode(t, orderJSON), body: []byte(orderJSON)}, store, nil)
	c, err := svc.Lookup(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"meta_budget": 2000.0}, c.Derived)

	rec, err := store.Campaigns.GetByOrderID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, "Spring Promo", rec.Name)
	assert.Equal(t, "ORD-1001", rec.OrderNumber)

	_, err = svc.Lookup(ctx, orderID)
	require.NoError(t, err)

	_, err = svc.Lookup(ctx, "short")
	assert.True(t, domain.Is(err, domain.ErrorTypeValidation))
}
