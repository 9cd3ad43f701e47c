package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/inmoportal/api-portal/internal/documentacion"
	"github.com/inmoportal/api-portal/internal/mantenimiento"
	"github.com/inmoportal/api-portal/internal/notificacion"
	"github.com/inmoportal/api-portal/internal/pago"
	"github.com/inmoportal/api-portal/internal/permisos"
	"github.com/inmoportal/api-portal/internal/propiedad"
	"github.com/inmoportal/api-portal/internal/usuario"
	"github.com/inmoportal/api-portal/internal/utils"
	"github.com/inmoportal/api-portal/internal/utils/db"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica el esquema a la base de datos",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := db.GetDB()
			if err != nil {
				return err
			}
			if err := database.AutoMigrate(
				&usuario.Usuario{},
				&propiedad.Propiedad{},
				&pago.Pago{},
				&mantenimiento.Mantenimiento{},
				&documentacion.Documentacion{},
				&notificacion.Notificacion{},
			); err != nil {
				return err
			}
			fmt.Println("Migración aplicada")
			return nil
		},
	}
}

func crearAdminCmd() *cobra.Command {
	var nombre, email, contrasena string

	cmd := &cobra.Command{
		Use:   "crear-admin",
		Short: "Crea (o informa que existe) el usuario administrador",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := db.GetDB()
			if err != nil {
				return err
			}

			repo := usuario.NewRepository()
			if _, err := repo.BuscarPorEmail(database, email); err == nil {
				fmt.Printf("El administrador %s ya existe\n", email)
				return nil
			}

			hash, err := utils.HashContrasena(contrasena)
			if err != nil {
				return err
			}
			admin := usuario.Usuario{
				Nombre:     nombre,
				Email:      email,
				Contrasena: hash,
				Rol:        permisos.RolAdmin,
				Estado:     usuario.EstadoAprobado,
			}
			if err := repo.Salvar(database, &admin); err != nil {
				return err
			}
			fmt.Printf("Administrador creado: %s\n", email)
			return nil
		},
	}

	cmd.Flags().StringVar(&nombre, "nombre", "Admin", "nombre del administrador")
	cmd.Flags().StringVar(&email, "email", "", "email del administrador")
	cmd.Flags().StringVar(&contrasena, "password", "", "contraseña del administrador")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "portalctl",
		Short: "Herramientas de administración del portal",
	}

	rootCmd.AddCommand(
		migrateCmd(),
		crearAdminCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
