// devtoken emite un JWT firmado con el secreto configurado, para pruebas locales de la API.
//
// Uso: go run ./cmd/devtoken -user u-1 -role manager
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/pkg/config"
	"github.com/jhoicas/stockmaster-api/pkg/jwt"
)

func main() {
	user := flag.String("user", "dev-user", "user_id del token")
	role := flag.String("role", entity.RoleStaff, "rol: admin | manager | staff")
	minutes := flag.Int("exp", 0, "minutos de validez (0 = JWT_EXPIRATION_MINUTES)")
	flag.Parse()

	if !entity.ValidRole(*role) {
		fmt.Fprintf(os.Stderr, "rol desconocido: %q\n", *role)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	exp := cfg.JWT.Expiration
	if *minutes > 0 {
		exp = *minutes
	}

	token, err := jwt.Generate(cfg.JWT.Secret, *user, *role, cfg.JWT.Issuer, exp)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generar token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
