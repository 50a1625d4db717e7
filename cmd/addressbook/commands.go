package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"addressbook/internal/contacts/importer"
	"addressbook/internal/contacts/models"
	jwttoken "addressbook/internal/jwt_token"
	"addressbook/internal/platform/config"
	id "addressbook/pkg/domain"
)

func newListCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every contact sorted by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close()
			return printEntries(cmd.OutOrStdout(), a.Contacts.List(cmd.Context()))
		},
	}
}

func newFindCmd(flags *globalFlags) *cobra.Command {
	var remote bool
	cmd := &cobra.Command{
		Use:   "find <prefix>",
		Short: "Find contacts whose last name starts with prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			if !remote {
				return printEntries(cmd.OutOrStdout(), a.Contacts.Find(cmd.Context(), args[0]))
			}
			found, err := a.Contacts.FindRemote(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printEntries(cmd.OutOrStdout(), found)
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "search the backing store instead of the loaded directory")
	return cmd
}

func newAddCmd(flags *globalFlags) *cobra.Command {
	var req models.ContactRequest
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a contact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			req.Normalize()
			created, err := a.Contacts.Create(cmd.Context(), req.ToEntry(id.ContactID{}))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), created.ID)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.FirstName, "first", "", "first name")
	f.StringVar(&req.LastName, "last", "", "last name")
	f.StringVar(&req.Street, "street", "", "street address")
	f.StringVar(&req.City, "city", "", "city")
	f.StringVar(&req.State, "state", "", "two letter state code")
	f.IntVar(&req.Zip, "zip", 0, "five digit zip code")
	f.StringVar(&req.Phone, "phone", "", "phone number")
	f.StringVar(&req.Email, "email", "", "email address")
	return cmd
}

func newDeleteCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a contact by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			contactID, err := id.ParseContactID(args[0])
			if err != nil {
				return err
			}
			a, err := openApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Contacts.Delete(cmd.Context(), contactID)
		},
	}
}

func newImportCmd(flags *globalFlags) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import contacts from a text file",
		Long: `Import contacts from a text file with one field per line.

The standard format has seven lines per contact: first name, last name,
street, city, "<state> <zip>", phone and email. --format split reads the
eight line layout with state and zip on their own lines and email before phone.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := importer.ParseFormat(format)
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			a, err := openApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.Contacts.Import(cmd.Context(), f, parsed)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "imported %d contacts\n", len(result.Imported))
			for _, r := range result.Rejected {
				fmt.Fprintf(out, "skipped record %d (%s): %s\n", r.Record, r.Name, r.Reason)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", "standard", "record layout: standard or split")
	return cmd
}

func newExportCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write every contact to a file in the standard import format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			entries := a.Contacts.List(cmd.Context())
			if err := importer.Write(f, entries); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d contacts\n", len(entries))
			return nil
		},
	}
}

func newTokenCmd() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the write endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			if cfg.Server.JWTSigningKey == "" {
				return fmt.Errorf("JWT_SIGNING_KEY is not set")
			}
			svc := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer, jwttoken.DefaultAudience)
			token, err := svc.GenerateAccessToken(subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "addressbook-cli", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}

func printEntries(w io.Writer, entries []models.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s, %s, %s %05d\t%s\t%s\n",
			e.ID, e.Name, e.Address.Street, e.Address.City, e.Address.State, e.Address.Zip, e.Phone, e.Email)
	}
	return tw.Flush()
}
