// Package cli 运维命令：迁移、角色调整、用户查询
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"community-events/internal/app"
	"community-events/internal/core/database"
	"community-events/internal/domain"
)

type runner struct {
	configPath string
	jsonOut    bool
	out        io.Writer
	open       func(path string) (*app.App, error)
}

// NewRoot out 便于测试捕获输出
func NewRoot(out io.Writer) *cobra.Command {
	r := &runner{out: out, open: app.Base}

	root := &cobra.Command{
		Use:           "ctl",
		Short:         "community-events operations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&r.configPath, "config", "", "config file (default: $CONFIG_PATH or ./configs/config.local.yaml)")
	root.PersistentFlags().BoolVar(&r.jsonOut, "json", false, "output as JSON")

	root.AddCommand(
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update database tables",
			Args:  cobra.NoArgs,
			RunE:  r.migrate,
		},
		&cobra.Command{
			Use:   "promote <email>",
			Short: "Grant the admin role to a user",
			Args:  cobra.ExactArgs(1),
			RunE:  r.setRole(domain.RoleAdmin),
		},
		&cobra.Command{
			Use:   "demote <email>",
			Short: "Revoke the admin role from a user",
			Args:  cobra.ExactArgs(1),
			RunE:  r.setRole(domain.RoleUser),
		},
		r.usersCmd(),
	)
	return root
}

func (r *runner) with(fn func(ctx context.Context, a *app.App) error) error {
	a, err := r.open(r.configPath)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(context.Background(), a)
}

func (r *runner) migrate(_ *cobra.Command, _ []string) error {
	return r.with(func(_ context.Context, a *app.App) error {
		if err := database.Migrate(a.DB); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		fmt.Fprintln(r.out, "migrated")
		return nil
	})
}

func (r *runner) setRole(role domain.Role) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, args []string) error {
		return r.with(func(ctx context.Context, a *app.App) error {
			u, err := a.Users.SetRoleByEmail(ctx, args[0], role)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			return r.print([]domain.User{*u})
		})
	}
}

func (r *runner) usersCmd() *cobra.Command {
	var (
		q     string
		limit int
	)
	c := &cobra.Command{
		Use:   "users",
		Short: "List users (newest first)",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return r.with(func(ctx context.Context, a *app.App) error {
				p, err := a.Users.List(ctx, 0, limit, q)
				if err != nil {
					return err
				}
				return r.print(p.Data)
			})
		},
	}
	c.Flags().StringVarP(&q, "query", "q", "", "filter by name or email")
	c.Flags().IntVar(&limit, "limit", 20, "max rows")
	return c
}

func (r *runner) print(us []domain.User) error {
	if r.jsonOut {
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		return enc.Encode(us)
	}
	tw := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE")
	for _, u := range us {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.ID, u.Name, u.EmailOrEmpty(), u.Role)
	}
	return tw.Flush()
}
