package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/locvowork/employee_directory/internal/bootstrap"
	"github.com/locvowork/employee_directory/internal/database"
	"github.com/locvowork/employee_directory/internal/domain"
	"github.com/locvowork/employee_directory/internal/logger"
)

func main() {
	// Define flags
	action := flag.String("action", "seed", "Action to perform: migrate, seed, clear")
	preset := flag.String("preset", "medium", "Data preset: small, medium, large")
	count := flag.Int("count", 0, "Number of employees (overrides preset)")
	seed := flag.Int64("seed", 42, "Random seed for generated data")
	fixtures := flag.String("fixtures", "", "JSON file of extra employees to seed")
	admin := flag.String("admin", "", "User id to grant the admin role after seeding")
	yes := flag.Bool("yes", false, "Skip the confirmation prompt for clear")

	flag.Parse()

	ctx := context.Background()

	fmt.Println("🚀 Employee Directory Seeder")
	fmt.Println(strings.Repeat("=", 50))

	// Initialize app
	fmt.Println("📡 Connecting to database...")
	app := bootstrap.NewApp()
	if err := app.InitDatabase(ctx); err != nil {
		logger.ErrorLog(ctx, "Failed to initialize database", err)
		log.Fatal(err)
	}
	defer app.DB.Close()

	seeder := database.NewDataSeeder(app.DB)

	// Execute action
	switch *action {
	case "migrate":
		performMigrate(ctx, app)

	case "seed":
		performMigrate(ctx, app)
		performSeed(ctx, seeder, *preset, *count, *seed, *fixtures)
		if *admin != "" {
			if err := seeder.GrantRole(ctx, *admin, domain.RoleAdmin); err != nil {
				log.Fatalf("❌ %v", err)
			}
		}

	case "clear":
		performClear(ctx, seeder, *yes)

	default:
		fmt.Printf("❌ Unknown action: %s\n", *action)
		flag.PrintDefaults()
		return
	}

	fmt.Println("\n✅ Done!")
}

func performMigrate(ctx context.Context, app *bootstrap.App) {
	fmt.Println("🧱 Applying schema...")
	if err := database.Migrate(ctx, app.DB); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}
}

func performSeed(ctx context.Context, seeder *database.DataSeeder, preset string, count int, seed int64, fixturesPath string) {
	numEmployees := count
	if numEmployees <= 0 {
		numEmployees = database.GetPresetConfig(database.SeedPreset(preset))
		fmt.Printf("📋 Using preset: %s\n", preset)
	} else {
		fmt.Println("📋 Using custom count")
	}

	var fixtures []domain.EmployeeInput
	if fixturesPath != "" {
		f, err := os.Open(fixturesPath)
		if err != nil {
			log.Fatalf("❌ Failed to open fixtures: %v", err)
		}
		fixtures, err = database.LoadFixtures(f)
		f.Close()
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		fmt.Printf("📄 Loaded %d fixtures from %s\n", len(fixtures), fixturesPath)
	}

	if err := seeder.SeedData(ctx, numEmployees, seed, fixtures...); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}
}

func performClear(ctx context.Context, seeder *database.DataSeeder, skipPrompt bool) {
	if !skipPrompt {
		fmt.Println("⚠️  This will delete all employees!")
		fmt.Print("Continue? (yes/no): ")

		var response string
		fmt.Scanln(&response)
		if response != "yes" {
			fmt.Println("Cancelled.")
			return
		}
	}

	if err := seeder.ClearData(ctx); err != nil {
		log.Fatalf("❌ Clear failed: %v", err)
	}
}
