package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/PhelGc/fieldops/internal/repository"
)

// ErrConfirmationRequired operación destructiva sin --yes
var ErrConfirmationRequired = errors.New("operación destructiva: confirme con --yes")

type runE func(cmd *cobra.Command, args []string) error

func newAdminCmd(a *app) *cobra.Command {
	var user, password string

	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administración: listas maestras, lista negra, usuarios y respaldos",
		Long: `Requiere credenciales con --user/--password o las variables
FIELDOPS_USER y FIELDOPS_PASSWORD.`,
	}
	cmd.PersistentFlags().StringVar(&user, "user", "", "usuario administrador (o FIELDOPS_USER)")
	cmd.PersistentFlags().StringVar(&password, "password", "", "contraseña (o FIELDOPS_PASSWORD)")

	// guard autentica antes de correr el comando
	guard := func(fn runE) runE {
		return func(cmd *cobra.Command, args []string) error {
			u, p := user, password
			if u == "" {
				u = os.Getenv("FIELDOPS_USER")
			}
			if p == "" {
				p = os.Getenv("FIELDOPS_PASSWORD")
			}
			account, err := a.repo.Authenticate(u, p)
			if err != nil {
				return err
			}
			a.logger.Debug("Acceso de administración", zap.String("username", account.Username))
			return fn(cmd, args)
		}
	}

	cmd.AddCommand(
		newVendorCmd(a, guard),
		newTechnicianCmd(a, guard),
		newBanCmd(a, guard),
		newUserCmd(a, guard),
		newBackupCmd(a, guard),
		newRecordsCmd(a, guard),
	)
	return cmd
}

func newVendorCmd(a *app, guard func(runE) runE) *cobra.Command {
	cmd := &cobra.Command{Use: "vendor", Short: "Lista maestra de proveedores"}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <name>",
			Short: "Agrega un proveedor",
			Args:  cobra.ExactArgs(1),
			RunE: guard(func(cmd *cobra.Command, args []string) error {
				v, err := a.repo.AddVendor(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Vendor %s added (%s).\n", v.Name, v.ID)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "remove <id>",
			Short: "Elimina un proveedor por id",
			Args:  cobra.ExactArgs(1),
			RunE: guard(func(cmd *cobra.Command, args []string) error {
				if err := a.repo.RemoveVendor(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Vendor %s removed.\n", args[0])
				return nil
			}),
		},
		&cobra.Command{
			Use:   "list",
			Short: "Lista los proveedores autorizados",
			Args:  cobra.NoArgs,
			RunE: guard(func(cmd *cobra.Command, args []string) error {
				tw := newTable(cmd.OutOrStdout())
				fmt.Fprintln(tw, "ID\tNAME")
				for _, v := range a.repo.Vendors() {
					fmt.Fprintf(tw, "%s\t%s\n", v.ID, v.Name)
				}
				return tw.Flush()
			}),
		},
	)
	return cmd
}

func newTechnicianCmd(a *app, guard func(runE) runE) *cobra.Command {
	var vendor string

	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Agrega un técnico a un proveedor",
		Args:  cobra.ExactArgs(1),
		RunE: guard(func(cmd *cobra.Command, args []string) error {
			t, err := a.repo.AddTechnician(cmd.Context(), args[0], vendor)
			if errors.Is(err, repository.ErrUnknownVendor) {
				return withOptions(err, a.repo.MasterVendorNames())
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Technician %s added to %s (%s).\n", t.Name, t.VendorName, t.ID)
			return nil
		}),
	}
	add.Flags().StringVar(&vendor, "vendor", "", "proveedor del técnico")
	_ = add.MarkFlagRequired("vendor")

	cmd := &cobra.Command{Use: "technician", Short: "Lista maestra de técnicos"}
	cmd.AddCommand(
		add,
		&cobra.Command{
			Use:   "remove <id>",
			Short: "Elimina un técnico por id",
			Args:  cobra.ExactArgs(1),
			RunE: guard(func(cmd *cobra.Command, args []string) error {
				if err := a.repo.RemoveTechnician(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Technician %s removed.\n", args[0])
				return nil
			}),
		},
		&cobra.Command{
			Use:   "list",
			Short: "Lista los técnicos autorizados",
			Args:  cobra.NoArgs,
			RunE: guard(func(cmd *cobra.Command, args []string) error {
				tw := newTable(cmd.OutOrStdout())
				fmt.Fprintln(tw, "ID\tNAME\tVENDOR")
				for _, t := range a.repo.Technicians() {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", t.ID, t.Name, t.VendorName)
				}
				return tw.Flush()
			}),
		},
	)
	return cmd
}

func newBanCmd(a *app, guard func(runE) runE) *cobra.Command {
	var vendor, customer, reason string

	add := &cobra.Command{
		Use:   "add <technician>",
		Short: "Agrega un técnico a la lista negra de un cliente",
		Args:  cobra.ExactArgs(1),
		RunE: guard(func(cmd *cobra.Command, args []string) error {
			b, err := a.repo.AddBanned(cmd.Context(), args[0], vendor, customer, reason)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s blacklisted for %s (%s).\n", b.Name, b.CustomerName, b.ID)
			return nil
		}),
	}
	add.Flags().StringVar(&vendor, "vendor", "", "proveedor del técnico")
	add.Flags().StringVar(&customer, "customer", "", "cliente que veta al técnico")
	add.Flags().StringVar(&reason, "reason", "", "motivo")
	_ = add.MarkFlagRequired("customer")

	cmd := &cobra.Command{Use: "ban", Short: "Lista negra de técnicos"}
	cmd.AddCommand(
		add,
		&cobra.Command{
			Use:   "remove <id>",
			Short: "Quita una entrada de la lista negra",
			Args:  cobra.ExactArgs(1),
			RunE: guard(func(cmd *cobra.Command, args []string) error {
				if err := a.repo.RemoveBanned(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Entry %s removed.\n", args[0])
				return nil
			}),
		},
		&cobra.Command{
			Use:   "list",
			Short: "Muestra la lista negra",
			Args:  cobra.NoArgs,
			RunE: guard(func(cmd *cobra.Command, args []string) error {
				tw := newTable(cmd.OutOrStdout())
				fmt.Fprintln(tw, "ID\tTECHNICIAN\tVENDOR\tCUSTOMER\tREASON\tDATE")
				for _, b := range a.repo.Banned() {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
						b.ID, b.Name, b.VendorName, b.CustomerName, b.Reason, b.DateAdded)
				}
				return tw.Flush()
			}),
		},
	)
	return cmd
}

func newUserCmd(a *app, guard func(runE) runE) *cobra.Command {
	cmd := &cobra.Command{Use: "user", Short: "Usuarios con acceso a la administración"}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <username> <password>",
			Short: "Crea un usuario",
			Args:  cobra.ExactArgs(2),
			RunE: guard(func(cmd *cobra.Command, args []string) error {
				u, err := a.repo.AddUser(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "User %s added (%s).\n", u.Username, u.ID)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "remove <id>",
			Short: "Elimina un usuario por id",
			Args:  cobra.ExactArgs(1),
			RunE: guard(func(cmd *cobra.Command, args []string) error {
				if err := a.repo.RemoveUser(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "User %s removed.\n", args[0])
				return nil
			}),
		},
		&cobra.Command{
			Use:   "list",
			Short: "Lista los usuarios",
			Args:  cobra.NoArgs,
			RunE: guard(func(cmd *cobra.Command, args []string) error {
				tw := newTable(cmd.OutOrStdout())
				fmt.Fprintln(tw, "ID\tUSERNAME")
				for _, u := range a.repo.Users() {
					fmt.Fprintf(tw, "%s\t%s\n", u.ID, u.Username)
				}
				return tw.Flush()
			}),
		},
	)
	return cmd
}

func newBackupCmd(a *app, guard func(runE) runE) *cobra.Command {
	var out string
	var yes bool

	export := &cobra.Command{
		Use:   "export",
		Short: "Exporta todos los datos a un archivo JSON (o a stdout con --out -)",
		Args:  cobra.NoArgs,
		RunE: guard(func(cmd *cobra.Command, args []string) error {
			data, err := a.repo.Export(true)
			if err != nil {
				return fmt.Errorf("error exportando datos: %w", err)
			}

			if out == "-" {
				_, err = cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}

			path := out
			if path == "" {
				path = repository.BackupFileName(a.now())
			}
			if err := os.WriteFile(path, data, 0600); err != nil {
				return fmt.Errorf("error escribiendo %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s\n", path)
			return nil
		}),
	}
	export.Flags().StringVar(&out, "out", "", "archivo destino (por defecto fieldops_backup_<fecha>.json)")

	restore := &cobra.Command{
		Use:   "restore <file>",
		Short: "Sobrescribe todos los datos con un respaldo",
		Args:  cobra.ExactArgs(1),
		RunE: guard(func(cmd *cobra.Command, args []string) error {
			if !yes {
				return ErrConfirmationRequired
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("error leyendo %s: %w", args[0], err)
			}
			if err := a.repo.Restore(cmd.Context(), data); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Restore complete!")
			return nil
		}),
	}
	restore.Flags().BoolVar(&yes, "yes", false, "confirma que se sobrescriben los datos actuales")

	cmd := &cobra.Command{Use: "backup", Short: "Respaldo y restauración"}
	cmd.AddCommand(export, restore)
	return cmd
}

func newRecordsCmd(a *app, guard func(runE) runE) *cobra.Command {
	var yes bool

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Borra todas las incidencias",
		Args:  cobra.NoArgs,
		RunE: guard(func(cmd *cobra.Command, args []string) error {
			if !yes {
				return ErrConfirmationRequired
			}
			if err := a.repo.ClearIncidents(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All records deleted.")
			return nil
		}),
	}
	clearCmd.Flags().BoolVar(&yes, "yes", false, "confirma el borrado")

	cmd := &cobra.Command{Use: "records", Short: "Base de incidencias"}
	cmd.AddCommand(clearCmd)
	return cmd
}
