package seeder

import "careerboard/internal/config"

func Defaults(cfg config.AdminConfig) []Seeder {
	return []Seeder{
		AdminSeeder{Email: cfg.Email, Password: cfg.Password, AdminName: cfg.Name},
	}
}
