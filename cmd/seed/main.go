// Package main fills a development database with fake shoppers, stores and
// catalog data, plus a few weeks of storefront traffic for the dashboard and
// the demand predictor.
//
// Usage:
//
//	go run ./cmd/seed -stores 3 -products 12 -users 20 -days 30 -seed 42
//
// Every seeded account uses the password given by -password.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/application/catalog"
	storeapp "github.com/shopforge/backend/internal/application/store"
	"github.com/shopforge/backend/internal/domain/analytics"
	"github.com/shopforge/backend/internal/domain/identity"
	"github.com/shopforge/backend/internal/infrastructure/config"
	"github.com/shopforge/backend/internal/infrastructure/event"
	"github.com/shopforge/backend/internal/infrastructure/logger"
	"github.com/shopforge/backend/internal/infrastructure/persistence"
	"github.com/shopforge/backend/internal/infrastructure/storage"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type options struct {
	stores   int
	products int
	users    int
	days     int
	seed     uint64
	password string
}

func main() {
	var opts options
	flag.IntVar(&opts.stores, "stores", 3, "number of stores")
	flag.IntVar(&opts.products, "products", 12, "products per store")
	flag.IntVar(&opts.users, "users", 20, "number of shopper accounts")
	flag.IntVar(&opts.days, "days", 30, "days of analytics history")
	flag.Uint64Var(&opts.seed, "seed", 0, "faker seed (0 picks a random one)")
	flag.StringVar(&opts.password, "password", "Password123!", "password for every seeded account")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	db, err := persistence.NewDatabase(&cfg.Database, log, cfg.Log.Level)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	s := newSeeder(db, cfg, opts, log)
	if err := s.run(context.Background()); err != nil {
		log.Fatal("Seeding failed", zap.Error(err))
	}
}

type seeder struct {
	opts   options
	faker  *gofakeit.Faker
	logger *zap.Logger

	users     identity.UserRepository
	analytics analytics.Repository

	storeService    *storeapp.StoreService
	categoryService *catalog.CategoryService
	productService  *catalog.ProductService
	variantService  *catalog.VariantService
}

func newSeeder(db *persistence.Database, cfg *config.Config, opts options, log *zap.Logger) *seeder {
	userRepo := persistence.NewGormUserRepository(db.DB)
	storeRepo := persistence.NewGormStoreRepository(db.DB)
	storeRoleRepo := persistence.NewGormStoreRoleRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	variantRepo := persistence.NewGormVariantRepository(db.DB)
	inventoryRepo := persistence.NewGormInventoryRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)

	// Nothing subscribes; events are dropped
	bus := event.NewInMemoryEventBus(log)

	return &seeder{
		opts:      opts,
		faker:     gofakeit.New(opts.seed),
		logger:    log,
		users:     userRepo,
		analytics: persistence.NewGormAnalyticsRepository(db.DB),
		storeService: storeapp.NewStoreService(
			storeRepo, storeRoleRepo, userRepo,
			persistence.NewCounterSource(productRepo, orderRepo),
			bus, log,
		),
		categoryService: catalog.NewCategoryService(categoryRepo, productRepo),
		productService: catalog.NewProductService(
			productRepo, categoryRepo, variantRepo,
			storage.NewMemoryObjectStorage(cfg.App.PublicURL), bus, log,
		),
		variantService: catalog.NewVariantService(productRepo, variantRepo, inventoryRepo, log),
	}
}

// seededProduct is what the traffic generator needs to know about a product
type seededProduct struct {
	id       uuid.UUID
	variants []catalog.VariantResponse
}

func (s *seeder) run(ctx context.Context) error {
	shoppers, err := s.seedUsers(ctx, s.opts.users)
	if err != nil {
		return err
	}

	for i := 0; i < s.opts.stores; i++ {
		owner, err := s.seedUser(ctx)
		if err != nil {
			return err
		}
		st, err := s.storeService.CreateStore(ctx, owner.ID, storeapp.CreateStoreInput{
			Name:        s.faker.Company(),
			Description: s.faker.Sentence(12),
		})
		if err != nil {
			return fmt.Errorf("create store: %w", err)
		}

		products, err := s.seedCatalog(ctx, st.ID)
		if err != nil {
			return fmt.Errorf("seed catalog for %s: %w", st.Slug, err)
		}
		events, err := s.seedTraffic(ctx, st.ID, products, shoppers)
		if err != nil {
			return fmt.Errorf("seed traffic for %s: %w", st.Slug, err)
		}
		if _, err := s.storeService.RecomputeCounters(ctx, st.ID); err != nil {
			return fmt.Errorf("recompute counters for %s: %w", st.Slug, err)
		}

		s.logger.Info("Store seeded",
			zap.String("store_id", st.ID.String()),
			zap.String("slug", st.Slug),
			zap.String("owner", owner.Email),
			zap.Int("products", len(products)),
			zap.Int("events", events),
		)
	}

	s.logger.Info("Seeding complete",
		zap.Int("stores", s.opts.stores),
		zap.Int("shoppers", len(shoppers)),
	)
	return nil
}

func (s *seeder) seedUsers(ctx context.Context, n int) ([]*identity.User, error) {
	users := make([]*identity.User, 0, n)
	for i := 0; i < n; i++ {
		u, err := s.seedUser(ctx)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

// seedUser creates a verified account, retrying on the rare duplicate email
func (s *seeder) seedUser(ctx context.Context) (*identity.User, error) {
	for attempt := 0; attempt < 5; attempt++ {
		email := s.faker.Email()
		exists, err := s.users.ExistsByEmail(ctx, identity.NormalizeEmail(email))
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}

		user, err := identity.NewUser(email, s.opts.password, s.faker.FirstName(), s.faker.LastName())
		if err != nil {
			return nil, err
		}
		if err := user.MarkEmailVerified(); err != nil {
			return nil, err
		}
		if err := s.users.Save(ctx, user); err != nil {
			return nil, fmt.Errorf("save user: %w", err)
		}
		return user, nil
	}
	return nil, fmt.Errorf("could not generate a unique email")
}

func (s *seeder) seedCatalog(ctx context.Context, storeID uuid.UUID) ([]seededProduct, error) {
	categories := make([]uuid.UUID, 0, 3)
	for len(categories) < 3 {
		cat, err := s.categoryService.Create(ctx, storeID, catalog.CreateCategoryRequest{
			Name:        fmt.Sprintf("%s %d", s.faker.ProductCategory(), len(categories)+1),
			Description: s.faker.Sentence(8),
		})
		if err != nil {
			return nil, fmt.Errorf("create category: %w", err)
		}
		categories = append(categories, cat.ID)
	}

	products := make([]seededProduct, 0, s.opts.products)
	for i := 0; i < s.opts.products; i++ {
		categoryID := categories[i%len(categories)]
		p, err := s.productService.Create(ctx, storeID, catalog.CreateProductRequest{
			Name:        fmt.Sprintf("%s %d", s.faker.ProductName(), i+1),
			Description: s.faker.Paragraph(2, 3, 12, " "),
			CategoryID:  &categoryID,
		})
		if err != nil {
			return nil, fmt.Errorf("create product: %w", err)
		}

		variants := make([]catalog.VariantResponse, 0, 3)
		for j, n := 0, s.faker.Number(1, 3); j < n; j++ {
			threshold := s.faker.Number(2, 10)
			v, err := s.variantService.Create(ctx, storeID, p.ID, catalog.CreateVariantRequest{
				SKU:               fmt.Sprintf("SKU-%s-%02d", p.ID.String()[:8], j+1),
				Title:             s.faker.Color(),
				Price:             decimal.NewFromFloat(s.faker.Price(5, 250)).Round(2),
				Attributes:        map[string]string{"color": s.faker.Color()},
				InitialQuantity:   s.faker.Number(0, 80),
				LowStockThreshold: &threshold,
			})
			if err != nil {
				return nil, fmt.Errorf("create variant: %w", err)
			}
			variants = append(variants, *v)
		}

		// Leave roughly one in five products as drafts
		if s.faker.Number(1, 5) > 1 {
			if _, err := s.productService.Publish(ctx, storeID, p.ID); err != nil {
				return nil, fmt.Errorf("publish product: %w", err)
			}
		}
		products = append(products, seededProduct{id: p.ID, variants: variants})
	}
	return products, nil
}

// seedTraffic writes backdated events straight to the repository so the
// daily stats cover the whole history window.
func (s *seeder) seedTraffic(ctx context.Context, storeID uuid.UUID, products []seededProduct, shoppers []*identity.User) (int, error) {
	if len(products) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	count := 0

	record := func(e *analytics.Event, at time.Time, userID *uuid.UUID) error {
		e.OccurredAt = at
		e.UserID = userID
		e.SessionID = s.faker.UUID()
		count++
		return s.analytics.RecordEvent(ctx, e)
	}

	for day := s.opts.days; day > 0; day-- {
		dayStart := now.AddDate(0, 0, -day).Truncate(24 * time.Hour)
		at := func() time.Time {
			return dayStart.Add(time.Duration(s.faker.Number(0, 86399)) * time.Second)
		}

		storeView, err := analytics.NewEvent(storeID, analytics.EventStoreView, nil)
		if err != nil {
			return count, err
		}
		if err := record(storeView, at(), nil); err != nil {
			return count, err
		}

		for _, p := range products {
			productID := p.id
			var userID *uuid.UUID
			if len(shoppers) > 0 && s.faker.Bool() {
				userID = &shoppers[s.faker.Number(0, len(shoppers)-1)].ID
			}

			for v := s.faker.Number(0, 6); v > 0; v-- {
				view, err := analytics.NewEvent(storeID, analytics.EventProductView, &productID)
				if err != nil {
					return count, err
				}
				if err := record(view, at(), userID); err != nil {
					return count, err
				}
			}

			if len(p.variants) == 0 || s.faker.Number(1, 4) > 1 {
				continue
			}
			variant := p.variants[s.faker.Number(0, len(p.variants)-1)]
			qty := s.faker.Number(1, 3)

			add, err := analytics.NewEvent(storeID, analytics.EventAddToCart, &productID)
			if err != nil {
				return count, err
			}
			add.VariantID = &variant.ID
			add.Quantity = qty
			if err := record(add, at(), userID); err != nil {
				return count, err
			}

			if s.faker.Bool() {
				continue
			}
			purchase, err := analytics.NewEvent(storeID, analytics.EventPurchase, &productID)
			if err != nil {
				return count, err
			}
			purchase.VariantID = &variant.ID
			purchase.Quantity = qty
			purchase.Revenue = variant.Price.Mul(decimal.NewFromInt(int64(qty)))
			if err := record(purchase, at(), userID); err != nil {
				return count, err
			}
		}
	}
	return count, nil
}
