// Package tools holds operator diagnostics shared by the command line tools.
package tools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/latoulicious/vtmsu/pkg/database"
	"github.com/latoulicious/vtmsu/pkg/database/models"
	"github.com/latoulicious/vtmsu/pkg/database/repository"
	"gorm.io/gorm"
)

var errRollbackProbe = errors.New("rollback probe")

// DBCheck runs a connectivity and schema check against the database behind
// manager and prints a report to out
func DBCheck(ctx context.Context, manager *database.DatabaseManager, out io.Writer) error {
	db := manager.DB()
	fmt.Fprintf(out, "=== %s Database Connectivity Check ===\n", db.Dialector.Name())

	fmt.Fprintln(out, "🏓 Testing database ping...")
	if err := manager.Ping(ctx); err != nil {
		fmt.Fprintf(out, "❌ Database ping failed: %v\n", err)
		return err
	}
	fmt.Fprintln(out, "✅ Database ping successful")

	fmt.Fprintln(out, "🔍 Checking server version...")
	version, err := manager.Version(ctx)
	if err != nil {
		fmt.Fprintf(out, "❌ %v\n", err)
		return err
	}
	fmt.Fprintf(out, "✅ Version: %s\n", version)

	fmt.Fprintln(out, "📊 Checking connection pool stats...")
	stats, err := manager.Stats()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "   - Open connections: %d\n", stats.OpenConnections)
	fmt.Fprintf(out, "   - In use: %d\n", stats.InUse)
	fmt.Fprintf(out, "   - Idle: %d\n", stats.Idle)

	fmt.Fprintln(out, "🗃️  Checking existing tables...")
	missing, err := missingTables(db)
	if err != nil {
		fmt.Fprintf(out, "❌ %v\n", err)
		return err
	}
	if len(missing) > 0 {
		fmt.Fprintf(out, "   ⚠️  Missing tables (will be created during migration): %v\n", missing)
	} else {
		fmt.Fprintln(out, "   ✅ All expected tables exist")
		counts, err := manager.GetTableStats(ctx)
		if err != nil {
			return err
		}
		names := make([]string, 0, len(counts))
		for name := range counts {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(out, "   📊 %s: %d rows\n", name, counts[name])
		}

		fmt.Fprintln(out, "🔄 Testing transaction capability...")
		if err := testTransactionCapability(ctx, db); err != nil {
			fmt.Fprintf(out, "❌ Transaction test failed: %v\n", err)
			return err
		}
		fmt.Fprintln(out, "✅ Transaction capability verified")
	}

	fmt.Fprintln(out, "⚡ Running performance test...")
	start := time.Now()
	var result int
	if err := db.WithContext(ctx).Raw("SELECT 1").Scan(&result).Error; err != nil {
		fmt.Fprintf(out, "❌ Performance test failed: %v\n", err)
		return err
	}
	duration := time.Since(start)
	fmt.Fprintf(out, "✅ Simple query completed in %v\n", duration)
	if duration > 5*time.Second {
		fmt.Fprintln(out, "⚠️  Query took longer than 5 seconds - check network latency")
	}

	fmt.Fprintln(out, "\n=== Database Connectivity Check Complete ===")
	return nil
}

// missingTables lists the tables of the schema that do not exist yet
func missingTables(db *gorm.DB) ([]string, error) {
	var missing []string
	for _, model := range models.All() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("failed to parse %T: %w", model, err)
		}
		if !db.Migrator().HasTable(stmt.Schema.Table) {
			missing = append(missing, stmt.Schema.Table)
		}
	}
	return missing, nil
}

// testTransactionCapability writes a faction inside a transaction that is
// rolled back and checks nothing was kept
func testTransactionCapability(ctx context.Context, db *gorm.DB) error {
	name := fmt.Sprintf("db-check-%d", time.Now().UnixNano())

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := repository.NewFactionRepository(tx)
		if err := repo.CreateFaction(ctx, &models.Faction{Name: name}); err != nil {
			return err
		}
		if _, err := repo.GetFactionByName(ctx, name); err != nil {
			return fmt.Errorf("row not visible inside transaction: %w", err)
		}
		return errRollbackProbe
	})
	if !errors.Is(err, errRollbackProbe) {
		return err
	}

	_, err = repository.NewFactionRepository(db).GetFactionByName(ctx, name)
	if !repository.IsNotFound(err) {
		return fmt.Errorf("rolled back row is still present: %v", err)
	}
	return nil
}
