package cmd

import (
	"fmt"
	"log"

	permissionDatamodel "github.com/clinicore/access-management/internal/core/datamodel/permission"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var clearData bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample permission records",
	Long:  `Seed the database with sample override records for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := gorm.Open(gormPostgres.Open(cfg.Database.Source), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}

		if clearData {
			if err := db.Exec("DELETE FROM permission_records").Error; err != nil {
				log.Fatalf("failed to clear permission records: %v", err)
			}
			fmt.Println("Cleared existing permission records")
		}

		records := []permissionDatamodel.PermissionRecord{
			// Doctors get reporting on top of their defaults.
			{Role: "DOCTOR", ModuleID: "reports", Type: "ADDED"},
			// Nurses handle lab results but not the doctor directory.
			{Role: "NURSE", ModuleID: "doctors", Type: "REMOVED"},
			// Receptionists lose billing by default in this sample clinic.
			{Role: "RECEPTIONIST", ModuleID: "billing", Type: "REMOVED"},
			// One receptionist keeps billing anyway.
			{Role: "RECEPTIONIST", Username: "mrivera", ModuleID: "billing", Type: "ADDED"},
			// One doctor is barred from prescriptions pending review.
			{Role: "DOCTOR", Username: "drsmith", ModuleID: "prescriptions", Type: "REMOVED"},
		}

		for _, rec := range records {
			var existing permissionDatamodel.PermissionRecord
			err := db.Where("role = ? AND username = ? AND module_id = ?", rec.Role, rec.Username, rec.ModuleID).
				First(&existing).Error
			if err == nil {
				continue
			}
			if err != gorm.ErrRecordNotFound {
				log.Fatalf("failed to check permission record: %v", err)
			}

			if err := db.Create(&rec).Error; err != nil {
				log.Fatalf("failed to seed permission record %s/%s/%s: %v", rec.Role, rec.Username, rec.ModuleID, err)
			}
			fmt.Printf("Seeded permission record: role=%s username=%s module=%s type=%s\n", rec.Role, rec.Username, rec.ModuleID, rec.Type)
		}

		fmt.Println("Seeding complete")
	},
}
