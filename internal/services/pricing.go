package services

import "storefront/internal/models/db_models"

// Retailers pay 90% of list price.
const retailerPricePercent = 90

// PriceForRole returns the charged unit price in minor units. The retailer
// price is base*90/100 rounded half away from zero, so 15 -> 14 and
// 5 -> 5; every other role pays the base price.
func PriceForRole(baseCents int64, role db_models.Role) int64 {
	if role != db_models.RoleRetailer {
		return baseCents
	}
	return roundDiv(baseCents*retailerPricePercent, 100)
}

// roundDiv divides num by a positive den, rounding half away from zero.
func roundDiv(num, den int64) int64 {
	if num >= 0 {
		return (num + den/2) / den
	}
	return -((-num + den/2) / den)
}
