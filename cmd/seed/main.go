// Command seed populates the database with demo categories, farmers and
// products so the storefront has content out of the box.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"

	"github.com/Anasanas60/krishokbazar/internal/auth"
	"github.com/Anasanas60/krishokbazar/internal/categories"
	"github.com/Anasanas60/krishokbazar/internal/products"
	"github.com/Anasanas60/krishokbazar/internal/stores/postgres"
	"github.com/Anasanas60/krishokbazar/internal/users"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, relying on environment")
	}
	if err := run(); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	slog.Info("seeding completed")
}

type farmerSeed struct {
	user    users.NewUser
	profile users.UpdateFarmerProfile
}

func run() error {
	db, err := postgres.OpenDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.RunMigrations(db); err != nil {
		return err
	}

	ctx := context.Background()

	userConf, err := users.NewConf(db)
	if err != nil {
		return err
	}
	categoryConf, err := categories.NewConf(db)
	if err != nil {
		return err
	}
	productConf, err := products.NewConf(db)
	if err != nil {
		return err
	}

	categorySeeds := []categories.NewCategory{
		{Name: "Vegetables", Description: "Fresh seasonal vegetables", Icon: "🥕"},
		{Name: "Fruits", Description: "Juicy and nutritious fruits", Icon: "🍎"},
		{Name: "Dairy", Description: "Milk, cheese, and dairy products", Icon: "🥛"},
		{Name: "Grains", Description: "Rice, wheat, and other grains", Icon: "🌾"},
		{Name: "Herbs", Description: "Fresh herbs and spices", Icon: "🌿"},
	}
	catIDs := make(map[string]int64)
	existing, err := categoryConf.ListAll(ctx)
	if err != nil {
		return err
	}
	for _, cat := range existing {
		catIDs[cat.Name] = cat.ID
	}
	for _, seed := range categorySeeds {
		if _, ok := catIDs[seed.Name]; ok {
			continue
		}
		created, err := categoryConf.Insert(ctx, seed)
		if err != nil {
			return err
		}
		catIDs[created.Name] = created.ID
	}
	slog.Info("categories ready", slog.Int("count", len(catIDs)))

	years := func(n int) *int { return &n }
	farmerSeeds := []farmerSeed{
		{
			user: users.NewUser{Name: "Abdul Karim", Email: "abdul@example.com", Password: "password123", Role: auth.RoleFarmer, Phone: "8801712345678", City: "Dhaka", State: "Dhaka"},
			profile: users.UpdateFarmerProfile{FarmName: "Green Valley Farm", FarmDescription: "Organic farming since 2010", FarmLocation: "Dhaka, Bangladesh",
				YearsFarming: years(15), Certification: "Organic Certified", DeliveryOptions: []string{"Pickup", "Delivery"}, PaymentOptions: []string{"Cash", "Online"}},
		},
		{
			user: users.NewUser{Name: "Fatima Begum", Email: "fatima@example.com", Password: "password123", Role: auth.RoleFarmer, Phone: "8801812345678", City: "Chittagong", State: "Chittagong"},
			profile: users.UpdateFarmerProfile{FarmName: "Sunrise Orchards", FarmDescription: "Specializing in tropical fruits", FarmLocation: "Chittagong, Bangladesh",
				YearsFarming: years(10), Certification: "GAP Certified", DeliveryOptions: []string{"Delivery"}, PaymentOptions: []string{"Online"}},
		},
		{
			user: users.NewUser{Name: "Rahman Hossain", Email: "rahman@example.com", Password: "password123", Role: auth.RoleFarmer, Phone: "8801912345678", City: "Rajshahi", State: "Rajshahi"},
			profile: users.UpdateFarmerProfile{FarmName: "Golden Fields", FarmDescription: "Rice and grain specialists", FarmLocation: "Rajshahi, Bangladesh",
				YearsFarming: years(20), Certification: "ISO Certified", DeliveryOptions: []string{"Pickup"}, PaymentOptions: []string{"Cash"}},
		},
	}

	var farmers []int64
	for _, seed := range farmerSeeds {
		user, err := userConf.InsertUser(ctx, seed.user)
		if err != nil {
			if errors.Is(err, users.ErrEmailTaken) {
				slog.Info("farmer already exists, skipping", slog.String("email", seed.user.Email))
				continue
			}
			return err
		}
		if _, err := userConf.UpsertFarmerProfile(ctx, user.ID, seed.profile); err != nil {
			return err
		}
		farmers = append(farmers, user.ID)
	}
	slog.Info("farmers ready", slog.Int("count", len(farmers)))
	if len(farmers) == 0 {
		return nil
	}

	price := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }
	productSeeds := []struct {
		farmer int
		np     products.NewProduct
	}{
		{0, products.NewProduct{Name: "Organic Tomatoes", Description: "Fresh red tomatoes grown organically", CategoryID: catIDs["Vegetables"], Price: price("50.00"), Unit: "kg", QuantityAvailable: 100, IsOrganic: true, IsFeatured: true}},
		{0, products.NewProduct{Name: "Fresh Spinach", Description: "Nutrient-rich green spinach", CategoryID: catIDs["Vegetables"], Price: price("30.00"), Unit: "bunch", QuantityAvailable: 50, IsOrganic: true}},
		{0, products.NewProduct{Name: "Carrots", Description: "Crunchy orange carrots", CategoryID: catIDs["Vegetables"], Price: price("40.00"), Unit: "kg", QuantityAvailable: 80}},
		{1, products.NewProduct{Name: "Mangoes", Description: "Sweet Alphonso mangoes", CategoryID: catIDs["Fruits"], Price: price("150.00"), Unit: "kg", QuantityAvailable: 30, IsOrganic: true, IsFeatured: true}},
		{1, products.NewProduct{Name: "Bananas", Description: "Fresh yellow bananas", CategoryID: catIDs["Fruits"], Price: price("25.00"), Unit: "dozen", QuantityAvailable: 200}},
		{2, products.NewProduct{Name: "Basmati Rice", Description: "Premium long-grain basmati rice", CategoryID: catIDs["Grains"], Price: price("120.00"), Unit: "kg", QuantityAvailable: 500, IsFeatured: true}},
		{2, products.NewProduct{Name: "Whole Wheat Flour", Description: "Freshly milled whole wheat flour", CategoryID: catIDs["Grains"], Price: price("60.00"), Unit: "kg", QuantityAvailable: 300, IsOrganic: true}},
	}

	created := 0
	for _, seed := range productSeeds {
		if seed.farmer >= len(farmers) {
			continue
		}
		if _, err := productConf.InsertProduct(ctx, farmers[seed.farmer], seed.np); err != nil {
			return err
		}
		created++
	}
	slog.Info("products ready", slog.Int("count", created))
	return nil
}
