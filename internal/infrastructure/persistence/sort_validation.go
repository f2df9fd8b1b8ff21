package persistence

import (
	"strings"

	"gorm.io/gorm"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed != "" && allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

var UserSortFields = map[string]bool{
	"created_at":    true,
	"updated_at":    true,
	"email":         true,
	"first_name":    true,
	"last_name":     true,
	"last_login_at": true,
}

var StoreSortFields = map[string]bool{
	"created_at":    true,
	"name":          true,
	"product_count": true,
	"order_count":   true,
	"total_revenue": true,
}

var ProductSortFields = map[string]bool{
	"created_at":     true,
	"updated_at":     true,
	"name":           true,
	"average_rating": true,
	"review_count":   true,
}

var OrderSortFields = map[string]bool{
	"created_at": true,
	"total":      true,
	"status":     true,
}

var ReviewSortFields = map[string]bool{
	"created_at": true,
	"rating":     true,
}

var InventorySortFields = map[string]bool{
	"updated_at": true,
	"quantity":   true,
	"reserved":   true,
}

var AiLogSortFields = map[string]bool{
	"created_at": true,
	"latency_ms": true,
}

// orderAndPage applies a whitelisted ORDER BY plus LIMIT/OFFSET from the page fields
func orderAndPage(query *gorm.DB, orderBy, orderDir string, allowed map[string]bool, defaultField string, page, pageSize int) *gorm.DB {
	field := ValidateSortField(orderBy, allowed, defaultField)
	query = query.Order(field + " " + ValidateSortOrder(orderDir))
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return query.Offset((page - 1) * pageSize).Limit(pageSize)
}
