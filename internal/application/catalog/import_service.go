package catalog

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopforge/backend/internal/domain/catalog"
	"github.com/shopforge/backend/internal/domain/shared"
	"github.com/shopforge/backend/internal/infrastructure/csvimport"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Import columns. Rows sharing a product (by slug, else by name) become
// variants of one product.
const (
	colProduct     = "product"
	colSlug        = "slug"
	colDescription = "description"
	colCategory    = "category"
	colSKU         = "sku"
	colTitle       = "variant_title"
	colPrice       = "price"
	colCompareAt   = "compare_at_price"
	colQuantity    = "quantity"
	colThreshold   = "low_stock_threshold"
	colPublish     = "publish"

	maxImportErrors = 100
)

func importRules() []*csvimport.Rule {
	return []*csvimport.Rule{
		csvimport.Column(colProduct).Required().MaxLength(200),
		csvimport.Column(colSlug).MaxLength(200),
		csvimport.Column(colDescription).MaxLength(5000),
		csvimport.Column(colCategory).MaxLength(100),
		csvimport.Column(colSKU).Required().MaxLength(64).Unique(),
		csvimport.Column(colTitle).MaxLength(200),
		csvimport.Column(colPrice).Required().Decimal().Min(0),
		csvimport.Column(colCompareAt).Decimal().Min(0),
		csvimport.Column(colQuantity).Int().Min(0).Max(1_000_000),
		csvimport.Column(colThreshold).Int().Min(0).Max(1_000_000),
		csvimport.Column(colPublish).Bool(),
	}
}

type productWriter interface {
	Create(ctx context.Context, storeID uuid.UUID, req CreateProductRequest) (*ProductResponse, error)
	Publish(ctx context.Context, storeID, productID uuid.UUID) (*ProductResponse, error)
}

type variantWriter interface {
	Create(ctx context.Context, storeID, productID uuid.UUID, req CreateVariantRequest) (*VariantResponse, error)
}

// ProductImporter creates products and variants from a CSV upload. The whole
// file is validated first; nothing is written while any row has errors.
type ProductImporter struct {
	products     productWriter
	variants     variantWriter
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	variantRepo  catalog.VariantRepository
	logger       *zap.Logger
}

// NewProductImporter creates a new ProductImporter
func NewProductImporter(
	products productWriter,
	variants variantWriter,
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	variantRepo catalog.VariantRepository,
	logger *zap.Logger,
) *ProductImporter {
	return &ProductImporter{
		products:     products,
		variants:     variants,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		variantRepo:  variantRepo,
		logger:       logger,
	}
}

// importGroup is one product and the rows that become its variants
type importGroup struct {
	key      string
	request  CreateProductRequest
	publish  bool
	rows     []*csvimport.Row
	variants []CreateVariantRequest
}

// Import validates the file and, unless dryRun is set or a row failed,
// creates the products it describes.
func (s *ProductImporter) Import(ctx context.Context, storeID uuid.UUID, r io.Reader, dryRun bool) (*ImportResult, error) {
	reader, err := csvimport.NewReader(r)
	if err != nil {
		return nil, importFileError(err)
	}

	errs := csvimport.NewErrors(maxImportErrors)
	validator := csvimport.NewValidator(errs, importRules()...)
	if missing := reader.Missing(validator.RequiredColumns()...); len(missing) > 0 {
		return nil, shared.NewDomainError("INVALID_IMPORT_FILE",
			"Missing required columns: "+strings.Join(missing, ", "))
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, importFileError(err)
	}
	if len(rows) == 0 {
		return nil, shared.NewDomainError("INVALID_IMPORT_FILE", "The file contains no data rows")
	}

	var valid []*csvimport.Row
	for _, row := range rows {
		if validator.Validate(row) {
			valid = append(valid, row)
		}
	}

	categories, err := s.categoryIndex(ctx, storeID)
	if err != nil {
		return nil, err
	}
	groups := s.group(valid, categories, errs)
	if err := s.checkExisting(ctx, storeID, groups, errs); err != nil {
		return nil, err
	}

	result := &ImportResult{
		DryRun:    dryRun,
		TotalRows: len(rows),
		Products:  len(groups),
	}
	if dryRun || !errs.Empty() {
		result.finish(errs)
		return result, nil
	}

	for _, g := range groups {
		s.create(ctx, storeID, g, result, errs)
	}
	result.finish(errs)

	s.logger.Info("Product import finished",
		zap.String("store_id", storeID.String()),
		zap.Int("rows", result.TotalRows),
		zap.Int("products_created", result.ProductsCreated),
		zap.Int("variants_created", result.VariantsCreated),
		zap.Int("errors", result.TotalErrors),
	)
	return result, nil
}

func importFileError(err error) error {
	switch {
	case errors.Is(err, csvimport.ErrEmptyFile),
		errors.Is(err, csvimport.ErrInvalidEncoding),
		errors.Is(err, csvimport.ErrMissingHeader),
		errors.Is(err, csvimport.ErrTooManyRows):
		return shared.NewDomainError("INVALID_IMPORT_FILE", err.Error())
	}
	return shared.NewDomainError("INVALID_IMPORT_FILE", "The file is not valid CSV: "+err.Error())
}

// categoryIndex maps lower-cased slugs and names to category IDs
func (s *ProductImporter) categoryIndex(ctx context.Context, storeID uuid.UUID) (map[string]uuid.UUID, error) {
	cats, err := s.categoryRepo.FindAllForStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	index := make(map[string]uuid.UUID, len(cats)*2)
	for _, c := range cats {
		index[strings.ToLower(c.Name)] = c.ID
		index[strings.ToLower(c.Slug)] = c.ID
	}
	return index, nil
}

func (s *ProductImporter) group(rows []*csvimport.Row, categories map[string]uuid.UUID, errs *csvimport.Errors) []*importGroup {
	var groups []*importGroup
	byKey := make(map[string]*importGroup)

	for _, row := range rows {
		slug := strings.ToLower(row.Get(colSlug))
		if slug == "" {
			slug = shared.Slugify(row.Get(colProduct))
		}
		if !shared.IsValidSlug(slug) {
			errs.Addf(row.Line, colSlug, csvimport.CodeInvalidType, "not a valid slug")
			continue
		}

		var categoryID *uuid.UUID
		if ref := row.Get(colCategory); ref != "" {
			id, ok := categories[strings.ToLower(ref)]
			if !ok {
				errs.Add(csvimport.RowError{Row: row.Line, Column: colCategory, Code: csvimport.CodeNotFound,
					Message: "category not found in this store", Value: ref})
				continue
			}
			categoryID = &id
		}
		publish, _ := csvimport.ParseBool(row.Get(colPublish))

		g, seen := byKey[slug]
		if !seen {
			g = &importGroup{
				key: slug,
				request: CreateProductRequest{
					Name:        row.Get(colProduct),
					Slug:        slug,
					Description: row.Get(colDescription),
					CategoryID:  categoryID,
				},
				publish: publish,
			}
			byKey[slug] = g
			groups = append(groups, g)
		} else if !sameCategory(g.request.CategoryID, categoryID) {
			errs.Addf(row.Line, colCategory, csvimport.CodeConflict,
				"differs from row %d for the same product", g.rows[0].Line)
			continue
		}

		g.rows = append(g.rows, row)
		g.variants = append(g.variants, variantRequest(row))
	}
	return groups
}

func sameCategory(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// variantRequest assumes the row already passed validation
func variantRequest(row *csvimport.Row) CreateVariantRequest {
	req := CreateVariantRequest{
		SKU:   row.Get(colSKU),
		Title: row.Get(colTitle),
		Price: decimal.RequireFromString(row.Get(colPrice)),
	}
	if v := row.Get(colCompareAt); v != "" {
		d := decimal.RequireFromString(v)
		req.CompareAtPrice = &d
	}
	if v := row.Get(colQuantity); v != "" {
		req.InitialQuantity, _ = strconv.Atoi(v)
	}
	if v := row.Get(colThreshold); v != "" {
		n, _ := strconv.Atoi(v)
		req.LowStockThreshold = &n
	}
	return req
}

// checkExisting rejects products and SKUs the store already has
func (s *ProductImporter) checkExisting(ctx context.Context, storeID uuid.UUID, groups []*importGroup, errs *csvimport.Errors) error {
	for _, g := range groups {
		exists, err := s.productRepo.ExistsBySlug(ctx, storeID, g.key)
		if err != nil {
			return err
		}
		if exists {
			errs.Add(csvimport.RowError{Row: g.rows[0].Line, Column: colSlug, Code: csvimport.CodeAlreadyExists,
				Message: "a product with this slug already exists", Value: g.key})
		}

		for i, row := range g.rows {
			sku := strings.ToUpper(g.variants[i].SKU)
			exists, err := s.variantRepo.ExistsBySKU(ctx, storeID, sku)
			if err != nil {
				return err
			}
			if exists {
				errs.Add(csvimport.RowError{Row: row.Line, Column: colSKU, Code: csvimport.CodeAlreadyExists,
					Message: "a variant with this SKU already exists", Value: sku})
			}
		}
	}
	return nil
}

// create writes one product. A failure stops that product only; rows already
// committed for it stay.
func (s *ProductImporter) create(ctx context.Context, storeID uuid.UUID, g *importGroup, result *ImportResult, errs *csvimport.Errors) {
	product, err := s.products.Create(ctx, storeID, g.request)
	if err != nil {
		s.reject(errs, g.rows[0], err)
		return
	}
	result.ProductsCreated++

	for i, req := range g.variants {
		if _, err := s.variants.Create(ctx, storeID, product.ID, req); err != nil {
			s.reject(errs, g.rows[i], err)
			return
		}
		result.VariantsCreated++
	}

	if g.publish {
		if _, err := s.products.Publish(ctx, storeID, product.ID); err != nil {
			s.reject(errs, g.rows[0], err)
			return
		}
		result.Published++
	}
}

func (s *ProductImporter) reject(errs *csvimport.Errors, row *csvimport.Row, err error) {
	msg := err.Error()
	var de *shared.DomainError
	if errors.As(err, &de) {
		msg = de.Message
	}
	errs.Add(csvimport.RowError{Row: row.Line, Code: csvimport.CodeRejected, Message: msg})
	s.logger.Warn("Import row rejected", zap.Int("row", row.Line), zap.Error(err))
}
