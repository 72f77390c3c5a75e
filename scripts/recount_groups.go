package main

import (
	"fmt"
	"os"

	"github.com/dissertrack/backend/internal/config"
	"github.com/dissertrack/backend/internal/models"
)

// Reconciles the denormalized group_count column on supervisor accounts
// against the groups table. Run with --fix to write corrections.
func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := models.InitDB(&cfg.Database); err != nil {
		fmt.Printf("Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	db := models.GetDB()

	var supervisors []models.User
	if err := db.Where("role_id = ?", models.RoleSupervisor).Order("id").Find(&supervisors).Error; err != nil {
		fmt.Printf("Failed to load supervisors: %v\n", err)
		os.Exit(1)
	}

	fix := len(os.Args) > 1 && os.Args[1] == "--fix"
	drift := 0

	for _, s := range supervisors {
		var actual int64
		if err := db.Model(&models.Group{}).Where("supervisor_id = ?", s.ID).Count(&actual).Error; err != nil {
			fmt.Printf("Failed to count groups for %s: %v\n", s.Username, err)
			os.Exit(1)
		}

		if int64(s.GroupCount) == actual {
			continue
		}
		drift++
		fmt.Printf("%s (id=%d): group_count=%d, actual=%d\n", s.Username, s.ID, s.GroupCount, actual)

		if fix {
			if err := db.Model(&models.User{}).Where("id = ?", s.ID).
				Update("group_count", actual).Error; err != nil {
				fmt.Printf("Failed to fix %s: %v\n", s.Username, err)
				os.Exit(1)
			}
			fmt.Printf("  fixed\n")
		}
	}

	if drift == 0 {
		fmt.Printf("All %d supervisor counters consistent\n", len(supervisors))
	} else if !fix {
		fmt.Printf("\n%d counters out of sync, re-run with --fix to repair\n", drift)
	}
}
