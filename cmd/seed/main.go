package main

import (
	"log"
	"os"

	"ai-studyassistant-be/internal/model"
	"ai-studyassistant-be/pkg/database"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Seeding Plan Catalog...")

	plans := []model.Plan{
		{
			Sku:                    "freemium",
			Name:                   "Freemium",
			MonthlyUploadLimit:     3,
			MonthlyAssessmentLimit: 5,
			QuestionsPerAssessment: 10,
			FlashCardSetLimit:      3,
			CardsPerDeckLimit:      20,
			PagesPerUploadLimit:    20,
			SummaryDetail:          "limited_detail",
			AIFeedbackLevel:        "basic",
			IsActive:               true,
			SortOrder:              1,
		},
		{
			Sku:                    "scholar",
			Name:                   "Scholar",
			MonthlyUploadLimit:     30,
			MonthlyAssessmentLimit: 50,
			QuestionsPerAssessment: 25,
			FlashCardSetLimit:      30,
			CardsPerDeckLimit:      100,
			PagesPerUploadLimit:    100,
			SummaryDetail:          "deep_insights",
			AIFeedbackLevel:        "concise",
			IsActive:               true,
			SortOrder:              2,
		},
		{
			Sku:                    "dean",
			Name:                   "Dean's List",
			MonthlyUploadLimit:     -1,
			MonthlyAssessmentLimit: -1,
			QuestionsPerAssessment: 50,
			FlashCardSetLimit:      -1,
			CardsPerDeckLimit:      200,
			PagesPerUploadLimit:    300,
			SummaryDetail:          "deep_insights",
			AIFeedbackLevel:        "full_in_depth",
			IsActive:               true,
			SortOrder:              3,
		},
	}

	for i := range plans {
		var existing model.Plan
		if err := db.Where("sku = ?", plans[i].Sku).First(&existing).Error; err == nil {
			log.Printf("Plan '%s' already exists, skipping...", plans[i].Sku)
			plans[i].Id = existing.Id
			continue
		}

		if err := db.Create(&plans[i]).Error; err != nil {
			log.Printf("Error: Failed to seed plan '%s': %v", plans[i].Sku, err)
			continue
		}
		log.Printf("Seeded plan '%s'", plans[i].Sku)
	}

	log.Println("Seeding Plan Prices...")

	seedPrices(db, &plans[1], []model.PlanPrice{
		{Currency: "USD", Provider: "stripe", BillingInterval: "month", ScopeType: "global", PriceMinor: 999, ProviderPriceId: envOr("STRIPE_PRICE_SCHOLAR_USD_MONTH", "price_scholar_usd_month")},
		{Currency: "USD", Provider: "stripe", BillingInterval: "year", ScopeType: "global", PriceMinor: 9999, ProviderPriceId: envOr("STRIPE_PRICE_SCHOLAR_USD_YEAR", "price_scholar_usd_year")},
		{Currency: "GBP", Provider: "stripe", BillingInterval: "month", ScopeType: "continent", ScopeValue: "EU", PriceMinor: 799, ProviderPriceId: envOr("STRIPE_PRICE_SCHOLAR_GBP_MONTH", "price_scholar_gbp_month")},
		{Currency: "GBP", Provider: "stripe", BillingInterval: "year", ScopeType: "continent", ScopeValue: "EU", PriceMinor: 7999, ProviderPriceId: envOr("STRIPE_PRICE_SCHOLAR_GBP_YEAR", "price_scholar_gbp_year")},
		{Currency: "NGN", Provider: "paystack", BillingInterval: "month", ScopeType: "country", ScopeValue: "NG", PriceMinor: 500000, ProviderPriceId: envOr("PAYSTACK_PLAN_SCHOLAR_MONTH", "PLN_scholar_month")},
		{Currency: "NGN", Provider: "paystack", BillingInterval: "year", ScopeType: "country", ScopeValue: "NG", PriceMinor: 5000000, ProviderPriceId: envOr("PAYSTACK_PLAN_SCHOLAR_YEAR", "PLN_scholar_year")},
	})

	seedPrices(db, &plans[2], []model.PlanPrice{
		{Currency: "USD", Provider: "stripe", BillingInterval: "month", ScopeType: "global", PriceMinor: 1999, ProviderPriceId: envOr("STRIPE_PRICE_DEAN_USD_MONTH", "price_dean_usd_month")},
		{Currency: "USD", Provider: "stripe", BillingInterval: "year", ScopeType: "global", PriceMinor: 19999, ProviderPriceId: envOr("STRIPE_PRICE_DEAN_USD_YEAR", "price_dean_usd_year")},
		{Currency: "GBP", Provider: "stripe", BillingInterval: "month", ScopeType: "continent", ScopeValue: "EU", PriceMinor: 1599, ProviderPriceId: envOr("STRIPE_PRICE_DEAN_GBP_MONTH", "price_dean_gbp_month")},
		{Currency: "GBP", Provider: "stripe", BillingInterval: "year", ScopeType: "continent", ScopeValue: "EU", PriceMinor: 15999, ProviderPriceId: envOr("STRIPE_PRICE_DEAN_GBP_YEAR", "price_dean_gbp_year")},
		{Currency: "NGN", Provider: "paystack", BillingInterval: "month", ScopeType: "country", ScopeValue: "NG", PriceMinor: 1000000, ProviderPriceId: envOr("PAYSTACK_PLAN_DEAN_MONTH", "PLN_dean_month")},
		{Currency: "NGN", Provider: "paystack", BillingInterval: "year", ScopeType: "country", ScopeValue: "NG", PriceMinor: 10000000, ProviderPriceId: envOr("PAYSTACK_PLAN_DEAN_YEAR", "PLN_dean_year")},
	})

	log.Println("✅ Seeding complete.")
}

func seedPrices(db *gorm.DB, plan *model.Plan, prices []model.PlanPrice) {
	for _, p := range prices {
		p.PlanId = plan.Id
		p.IsActive = true

		var existing model.PlanPrice
		err := db.Where(
			"plan_id = ? AND provider = ? AND currency = ? AND billing_interval = ? AND scope_type = ? AND scope_value = ?",
			p.PlanId, p.Provider, p.Currency, p.BillingInterval, p.ScopeType, p.ScopeValue,
		).First(&existing).Error
		if err == nil {
			continue
		}

		if err := db.Create(&p).Error; err != nil {
			log.Printf("Error: Failed to seed price %s/%s for '%s': %v", p.Provider, p.Currency, plan.Sku, err)
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
