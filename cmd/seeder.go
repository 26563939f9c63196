package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/frahmantamala/drawing-management/internal/auth"
	"github.com/frahmantamala/drawing-management/internal/settings"
	"github.com/frahmantamala/drawing-management/internal/user"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, _, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		if clearData {
			for _, table := range []string{"activity_log", "files", "project_assignments", "projects", "system_settings", "users"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		password := "senha123"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		sampleUsers := []user.User{
			{Name: "Ana Administradora", Email: "ana@empresa.com.br", Role: auth.RoleAdministrador},
			{Name: "Gustavo Gestor", Email: "gustavo@empresa.com.br", Role: auth.RoleGestor},
			{Name: "Elisa Especialista", Email: "elisa@empresa.com.br", Role: auth.RoleEspecialista},
			{Name: "Andre Analista", Email: "andre@empresa.com.br", Role: auth.RoleAnalista},
			{Name: "Paula Projetista", Email: "paula@empresa.com.br", Role: auth.RoleProjetista},
			{Name: "Fernando Final", Email: "fernando@empresa.com.br", Role: auth.RoleGestorFinal},
		}

		now := time.Now()
		for _, u := range sampleUsers {
			var existing user.User
			err := db.Where("email = ?", u.Email).First(&existing).Error
			if err == nil {
				continue
			}
			if err != gorm.ErrRecordNotFound {
				log.Fatalf("failed to check user %s: %v", u.Email, err)
			}

			u.PasswordHash = string(hash)
			u.IsActive = true
			u.CreatedAt = now
			u.UpdatedAt = now
			if err := db.Create(&u).Error; err != nil {
				log.Fatalf("failed to seed user %s: %v", u.Email, err)
			}
			fmt.Println("Seeded user:", u.Email)
		}

		var domainSetting settings.SystemSetting
		err = db.Where("setting_key = ?", settings.KeyAllowedEmailDomains).First(&domainSetting).Error
		if err == gorm.ErrRecordNotFound {
			domainSetting = settings.SystemSetting{
				Key:       settings.KeyAllowedEmailDomains,
				Value:     `["empresa.com.br"]`,
				UpdatedAt: now,
			}
			if err := db.Create(&domainSetting).Error; err != nil {
				log.Fatalf("failed to seed email domain setting: %v", err)
			}
			fmt.Println("Seeded setting:", settings.KeyAllowedEmailDomains)
		} else if err != nil {
			log.Fatalf("failed to check settings: %v", err)
		}

		fmt.Println("Seeding complete. Sample password:", password)
	},
}
