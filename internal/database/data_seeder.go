package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/locvowork/employee_directory/internal/domain"
	"github.com/locvowork/employee_directory/internal/repository"
	"github.com/locvowork/employee_directory/pkg/dataflow"
)

type DataSeeder struct {
	db        *sql.DB
	employees domain.EmployeeRepository
	roles     *repository.RoleRepository
	workers   int
}

func NewDataSeeder(db *sql.DB) *DataSeeder {
	return &DataSeeder{
		db:        db,
		employees: repository.NewEmployeeRepository(db),
		roles:     repository.NewRoleRepository(db),
		workers:   4,
	}
}

var (
	firstNames = []string{"Jordan", "Avery", "Riley", "Morgan", "Casey", "Quinn", "Taylor", "Jamie", "Harper", "Rowan", "Sasha", "Devon"}
	lastNames  = []string{"Lee", "Nguyen", "Patel", "Garcia", "Kim", "Okafor", "Schmidt", "Rossi", "Tanaka", "Silva", "Novak", "Haddad"}
	classes    = []string{"Engineering", "Sales", "Marketing", "Finance", "Operations", "Support"}
	positions  = []string{"Associate", "Specialist", "Senior Specialist", "Lead", "Manager", "Director"}
	subjects   = []string{"Go", "SQL", "Negotiation", "Forecasting", "Design", "Kubernetes", "Accounting", "Customer Care", "Analytics", "Public Speaking"}
	streets    = []string{"Main St", "Oak Ave", "Pine Rd", "Maple Dr", "Cedar Ln", "Elm St"}
)

// SeedData inserts numEmployees generated employees plus any fixtures
// through a worker pool. Rows that fail validation are skipped and only the
// first row seen for an email is kept.
func (ds *DataSeeder) SeedData(ctx context.Context, numEmployees int, seed int64, fixtures ...domain.EmployeeInput) error {
	start := time.Now()
	fmt.Println("🚀 Seeding data...")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	generated := make(chan domain.EmployeeInput)
	go func() {
		defer close(generated)
		rng := rand.New(rand.NewSource(seed))
		for i := 0; i < numEmployees; i++ {
			select {
			case <-ctx.Done():
				return
			case generated <- randomEmployee(rng, i):
			}
		}
	}()

	var skipped int64
	source := dataflow.FanIn(ctx, dataflow.New[domain.EmployeeInput](generated), dataflow.From(ctx, fixtures...))
	valid := dataflow.Map(ctx, source, func(in domain.EmployeeInput) (domain.EmployeeInput, error) {
		return in, checkSeedInput(in)
	},
		dataflow.WithBufferSize(ds.workers),
		dataflow.WithErrorHandler(func(err error) bool {
			atomic.AddInt64(&skipped, 1)
			fmt.Printf("⚠️  Skipping row: %v\n", err)
			return true
		}),
	)
	seen := map[string]bool{}
	unique := dataflow.Filter(ctx, valid, func(in domain.EmployeeInput) bool {
		key := strings.ToLower(strings.TrimSpace(in.Email.Value))
		if seen[key] {
			atomic.AddInt64(&skipped, 1)
			fmt.Printf("⚠️  Skipping duplicate email %s\n", in.Email.Value)
			return false
		}
		seen[key] = true
		return true
	})

	inputs, err := dataflow.Collect(ctx, unique)
	if err != nil {
		return fmt.Errorf("failed to prepare employees: %w", err)
	}

	fmt.Printf("👥 Creating %d employees with %d workers (%d skipped)...\n", len(inputs), ds.workers, atomic.LoadInt64(&skipped))
	var created int64
	err = dataflow.ForEach(ctx, dataflow.From(ctx, inputs...), func(in domain.EmployeeInput) error {
		if _, err := ds.employees.Create(ctx, uuid.NewString(), in); err != nil {
			return fmt.Errorf("create %s: %w", in.Email.Value, err)
		}
		atomic.AddInt64(&created, 1)
		return nil
	},
		dataflow.WithWorkers(ds.workers),
		dataflow.WithRetry(3, dataflow.LinearBackoff(100*time.Millisecond)),
	)
	if err != nil {
		return fmt.Errorf("failed to insert employees after %d rows: %w", atomic.LoadInt64(&created), err)
	}
	fmt.Printf("✅ Created %d employees\n", created)

	elapsed := time.Since(start)
	fmt.Printf("🎉 Done in %v\n", elapsed)
	return nil
}

// LoadFixtures reads a JSON array of employee inputs.
func LoadFixtures(r io.Reader) ([]domain.EmployeeInput, error) {
	var fixtures []domain.EmployeeInput
	if err := json.NewDecoder(r).Decode(&fixtures); err != nil {
		return nil, fmt.Errorf("failed to decode fixtures: %w", err)
	}
	return fixtures, nil
}

func checkSeedInput(in domain.EmployeeInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	if !in.Name.Set || !in.Email.Set {
		return fmt.Errorf("name and email are required (email %q)", in.Email.Value)
	}
	return nil
}

// GrantRole stores role for userID.
func (ds *DataSeeder) GrantRole(ctx context.Context, userID, role string) error {
	if err := ds.roles.SetRole(ctx, userID, role); err != nil {
		return fmt.Errorf("failed to grant %s to %s: %w", role, userID, err)
	}
	fmt.Printf("🔑 Granted %s role to %s\n", role, userID)
	return nil
}

func (ds *DataSeeder) ClearData(ctx context.Context) error {
	fmt.Println("🗑️  Clearing data...")

	res, err := ds.db.ExecContext(ctx, "DELETE FROM employees")
	if err != nil {
		return fmt.Errorf("failed to delete employees: %w", err)
	}
	n, _ := res.RowsAffected()

	fmt.Printf("✅ Cleared %d employees\n", n)
	return nil
}

func randomEmployee(rng *rand.Rand, i int) domain.EmployeeInput {
	first := firstNames[rng.Intn(len(firstNames))]
	last := lastNames[rng.Intn(len(lastNames))]
	name := first + " " + last
	email := fmt.Sprintf("%s.%s.%d@example.com", strings.ToLower(first), strings.ToLower(last), i)

	in := domain.EmployeeInput{
		Name:       domain.Some(name),
		Email:      domain.Some(email),
		Age:        domain.Some(22 + rng.Intn(40)),
		Class:      domain.Some(classes[rng.Intn(len(classes))]),
		Subjects:   domain.Some(randomSelect(rng, subjects, 1+rng.Intn(4))),
		Attendance: domain.Some(70 + rng.Intn(31)),
		Position:   domain.Some(positions[rng.Intn(len(positions))]),
		Salary:     domain.Some(float64((3000+rng.Intn(9000))*100+rng.Intn(100)) / 100),
		HireDate:   domain.Some(domain.NewDate(2012+rng.Intn(13), time.Month(1+rng.Intn(12)), 1+rng.Intn(28))),
		IsActive:   domain.Some(rng.Intn(10) != 0),
		Flagged:    domain.Some(rng.Intn(8) == 0),
	}
	if rng.Intn(3) != 0 {
		in.Phone = domain.Some(fmt.Sprintf("555-%04d", rng.Intn(10000)))
	}
	if rng.Intn(2) == 0 {
		in.Address = domain.Some(fmt.Sprintf("%d %s", 1+rng.Intn(999), streets[rng.Intn(len(streets))]))
	}
	return in
}

// Presets
type SeedPreset string

const (
	PresetSmall  SeedPreset = "small"
	PresetMedium SeedPreset = "medium"
	PresetLarge  SeedPreset = "large"
)

// randomSelect randomly selects N items from a list
func randomSelect(rng *rand.Rand, items []string, count int) []string {
	if count > len(items) {
		count = len(items)
	}
	result := make([]string, count)
	perm := rng.Perm(len(items))
	for i := 0; i < count; i++ {
		result[i] = items[perm[i]]
	}
	return result
}

// GetPresetConfig returns the number of employees for a preset
func GetPresetConfig(preset SeedPreset) int {
	switch preset {
	case PresetSmall:
		return 25
	case PresetMedium:
		return 200
	case PresetLarge:
		return 2000
	default:
		return 200
	}
}
