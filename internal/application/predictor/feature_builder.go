package predictor

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/ai"
	"github.com/shopforge/backend/internal/domain/analytics"
	"github.com/shopforge/backend/internal/domain/catalog"
	"github.com/shopforge/backend/internal/domain/inventory"
	"github.com/shopforge/backend/internal/infrastructure/cache"
)

const (
	historyDays = 30
	// daysSinceRestock when a product has never been restocked
	unknownRestockDays = 365
)

// FeatureBuilder turns a product's recent history into the model's feature vector
type FeatureBuilder struct {
	statsRepo     analytics.Repository
	variantRepo   catalog.VariantRepository
	inventoryRepo inventory.Repository
	cache         *cache.TTLCache[uuid.UUID, ai.Features]
	now           func() time.Time
}

// NewFeatureBuilder creates a FeatureBuilder. features may be nil to disable caching.
func NewFeatureBuilder(
	statsRepo analytics.Repository,
	variantRepo catalog.VariantRepository,
	inventoryRepo inventory.Repository,
	features *cache.TTLCache[uuid.UUID, ai.Features],
) *FeatureBuilder {
	return &FeatureBuilder{
		statsRepo:     statsRepo,
		variantRepo:   variantRepo,
		inventoryRepo: inventoryRepo,
		cache:         features,
		now:           time.Now,
	}
}

// Build returns features for each product of one store, using cached
// vectors where they are still fresh
func (b *FeatureBuilder) Build(ctx context.Context, storeID uuid.UUID, products []*catalog.Product) (map[uuid.UUID]ai.Features, error) {
	out := make(map[uuid.UUID]ai.Features, len(products))
	var missing []*catalog.Product
	for _, p := range products {
		if b.cache != nil {
			if f, ok := b.cache.Get(p.ID); ok {
				out[p.ID] = f
				continue
			}
		}
		missing = append(missing, p)
	}
	if len(missing) == 0 {
		return out, nil
	}

	now := b.now()
	today := analytics.TruncateDay(now)
	from := today.AddDate(0, 0, -(historyDays - 1))

	ids := make([]uuid.UUID, len(missing))
	for i, p := range missing {
		ids[i] = p.ID
	}
	productStats, err := b.statsRepo.ProductStats(ctx, ids, from, today)
	if err != nil {
		return nil, err
	}
	storeStats, err := b.statsRepo.StoreStats(ctx, storeID, today.AddDate(0, 0, -6), today)
	if err != nil {
		return nil, err
	}
	variants, err := b.variantRepo.FindByProducts(ctx, ids)
	if err != nil {
		return nil, err
	}
	variantIDs := make([]uuid.UUID, len(variants))
	for i, v := range variants {
		variantIDs[i] = v.ID
	}
	stock, err := b.inventoryRepo.FindByVariants(ctx, variantIDs)
	if err != nil {
		return nil, err
	}

	statsByProduct := make(map[uuid.UUID][]analytics.DailyStat)
	for _, s := range productStats {
		statsByProduct[s.ProductID] = append(statsByProduct[s.ProductID], s.DailyStat)
	}
	variantsByProduct := make(map[uuid.UUID][]*catalog.ProductVariant)
	for _, v := range variants {
		variantsByProduct[v.ProductID] = append(variantsByProduct[v.ProductID], v)
	}
	stockByProduct := make(map[uuid.UUID][]*inventory.Inventory)
	for _, inv := range stock {
		stockByProduct[inv.ProductID] = append(stockByProduct[inv.ProductID], inv)
	}
	var storeViews, storePurchases int64
	for _, s := range storeStats {
		storeViews += s.Views
		storePurchases += s.Purchases
	}

	for _, p := range missing {
		f := ai.Features{}
		addSalesFeatures(f, statsByProduct[p.ID], today)
		addPriceFeatures(f, variantsByProduct[p.ID])
		addStockFeatures(f, stockByProduct[p.ID], today)
		avgRating, _ := p.AverageRating.Float64()
		f["avgRating"] = avgRating
		f["ratingCount"] = float64(p.ReviewCount)
		f["storeViews7d"] = float64(storeViews)
		f["storePurchases7d"] = float64(storePurchases)
		dow := (int(now.UTC().Weekday()) + 6) % 7
		f["dayOfWeek"] = float64(dow)
		f["isWeekend"] = 0
		if dow >= 5 {
			f["isWeekend"] = 1
		}

		out[p.ID] = f
		if b.cache != nil {
			b.cache.Set(p.ID, f)
		}
	}
	return out, nil
}

// Invalidate drops a product's cached vector
func (b *FeatureBuilder) Invalidate(productID uuid.UUID) {
	if b.cache != nil {
		b.cache.Delete(productID)
	}
}

func addSalesFeatures(f ai.Features, days []analytics.DailyStat, today time.Time) {
	var sales7, sales14, sales30, views7, views30, carts7 float64
	for _, d := range days {
		age := int(today.Sub(analytics.TruncateDay(d.Date)).Hours() / 24)
		if age < 0 || age >= historyDays {
			continue
		}
		sales30 += float64(d.Purchases)
		views30 += float64(d.Views)
		if age < 14 {
			sales14 += float64(d.Purchases)
		}
		if age < 7 {
			sales7 += float64(d.Purchases)
			views7 += float64(d.Views)
			carts7 += float64(d.AddToCarts)
		}
	}
	f["sales7d"] = sales7
	f["sales14d"] = sales14
	f["sales30d"] = sales30
	f["sales7dPerDay"] = sales7 / 7
	f["sales30dPerDay"] = sales30 / 30
	f["salesRatio7To30"] = ratio(sales7, sales30)
	f["views7d"] = views7
	f["views30d"] = views30
	f["addToCarts7d"] = carts7
	f["viewToPurchase7d"] = ratio(sales7, views7)
}

// addPriceFeatures uses active variants, falling back to all of them
func addPriceFeatures(f ai.Features, variants []*catalog.ProductVariant) {
	priced := make([]float64, 0, len(variants))
	for _, v := range variants {
		if v.IsActive {
			p, _ := v.Price.Float64()
			priced = append(priced, p)
		}
	}
	if len(priced) == 0 {
		for _, v := range variants {
			p, _ := v.Price.Float64()
			priced = append(priced, p)
		}
	}
	if len(priced) == 0 {
		f["avgPrice"], f["minPrice"], f["maxPrice"] = 0, 0, 0
		return
	}
	lo, hi, sum := math.Inf(1), math.Inf(-1), 0.0
	for _, p := range priced {
		lo = math.Min(lo, p)
		hi = math.Max(hi, p)
		sum += p
	}
	f["avgPrice"] = sum / float64(len(priced))
	f["minPrice"] = lo
	f["maxPrice"] = hi
}

func addStockFeatures(f ai.Features, stock []*inventory.Inventory, today time.Time) {
	qty := 0
	var lastRestock *time.Time
	for _, inv := range stock {
		qty += inv.Quantity
		if inv.LastRestockedAt != nil && (lastRestock == nil || inv.LastRestockedAt.After(*lastRestock)) {
			lastRestock = inv.LastRestockedAt
		}
	}
	f["inventoryQty"] = float64(qty)
	f["daysSinceRestock"] = unknownRestockDays
	if lastRestock != nil {
		restockDay := analytics.TruncateDay(*lastRestock)
		if !restockDay.After(today) {
			f["daysSinceRestock"] = math.Round(today.Sub(restockDay).Hours() / 24)
		}
	}
}

func ratio(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den
}
