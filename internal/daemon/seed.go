package daemon

import (
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/buildtrack/buildtrack/internal/authz"
	"github.com/buildtrack/buildtrack/internal/config"
	"github.com/buildtrack/buildtrack/internal/db/models"
)

// Seed materializes the grant matrix into permission rows, creates the system
// roles with their assignments and ensures the initial administrator account
// exists. It is idempotent: rows that already exist are left alone, missing
// matrix rows are restored on the next boot.
func Seed(cfg *config.Config, db *gorm.DB) error {
	if err := seedPermissions(db); err != nil {
		return err
	}

	if err := seedRoles(db); err != nil {
		return err
	}

	return seedAdmin(cfg, db)
}

// seedPermissions creates a permission row for every grant the matrix can
// express, including the approve grants.
func seedPermissions(db *gorm.DB) error {
	seen := make(map[string]bool)

	for _, grants := range authz.SeedGrants() {
		for _, grant := range grants {
			if seen[grant.String()] {
				continue
			}
			seen[grant.String()] = true

			perm := models.Permission{
				Name:        grant.String(),
				Action:      string(grant.Action),
				Resource:    grant.Resource,
				Description: describeGrant(grant),
			}

			err := db.Where("name = ?", perm.Name).FirstOrCreate(&perm).Error
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// seedRoles creates the system roles and their permission assignments.
func seedRoles(db *gorm.DB) error {
	grantsByRole := authz.SeedGrants()

	for _, name := range authz.SystemRoles() {
		role := models.Role{
			Name:        name,
			DisplayName: authz.RoleDisplayNames[name],
			IsSystem:    true,
		}

		err := db.Where("name = ?", name).
			Attrs(models.Role{DisplayName: role.DisplayName, IsSystem: true}).
			FirstOrCreate(&role).Error
		if err != nil {
			return err
		}

		// the bypass role holds no rows
		for _, grant := range grantsByRole[name] {
			var perm models.Permission

			err = db.Where("name = ?", grant.String()).First(&perm).Error
			if err != nil {
				return err
			}

			rp := models.RolePermission{RoleID: role.ID, PermissionID: perm.ID}

			err = db.Where("role_id = ? AND permission_id = ?", role.ID, perm.ID).
				FirstOrCreate(&rp).Error
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// seedAdmin creates the initial administrator account from the seed config
// when no account with that email exists yet.
func seedAdmin(cfg *config.Config, db *gorm.DB) error {
	if cfg.Seed.AdminEmail == "" {
		log.Debug().Msg("no admin seed configured, skipping")
		return nil
	}

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", cfg.Seed.AdminEmail).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	var superAdmin models.Role
	if err := db.Where("name = ?", authz.RoleSuperAdmin).First(&superAdmin).Error; err != nil {
		return err
	}

	admin := models.User{
		Email:    cfg.Seed.AdminEmail,
		Name:     cfg.Seed.AdminName,
		Password: models.HashPassword(cfg.Seed.AdminPassword),
		RoleID:   &superAdmin.ID,
	}

	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.Info().Str("email", admin.Email).Msg("created initial admin account")

	return nil
}

// describeGrant renders a short human readable description for a grant row.
func describeGrant(g authz.Grant) string {
	resource := strings.ReplaceAll(g.Resource, "_", " ")

	if g.Action == authz.ActionApprove {
		return "Approve " + resource + " items"
	}

	action := string(g.Action)

	return strings.ToUpper(action[:1]) + action[1:] + " " + resource + " rows"
}
