package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/l1jgo/charsync/internal/flush"
	"github.com/l1jgo/charsync/internal/handler"
	"github.com/l1jgo/charsync/internal/hydrate"
	"github.com/l1jgo/charsync/internal/persist"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending migrations to both stores",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		// opening the stores applies the migrations
		a, err := newApp(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer a.Close()
		fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
		return nil
	},
}

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage accounts in the session store",
}

var accountCreateCmd = &cobra.Command{
	Use:   "create <name> <password>",
	Short: "Create an account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer a.Close()
		acc, err := a.deps.AccountRepo.Create(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "account %s created (id %d)\n", acc.Name, acc.ID)
		return nil
	},
}

var banUntil int64
var banReason string

var accountBanCmd = &cobra.Command{
	Use:   "ban <name>",
	Short: "Ban an account until a unix time (-1 = permanent, 0 = lift)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer a.Close()
		acc, err := a.deps.AccountRepo.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if acc == nil {
			return fmt.Errorf("account %q not found", args[0])
		}
		return a.deps.AccountRepo.Ban(cmd.Context(), acc.ID, banUntil, banReason)
	},
}

var characterCmd = &cobra.Command{
	Use:   "character",
	Short: "Manage characters in the character store",
}

var newChar handler.NewCharacter

var characterCreateCmd = &cobra.Command{
	Use:   "create <account> <name>",
	Short: "Create a level 1 character",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer a.Close()
		acc, err := a.deps.AccountRepo.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if acc == nil {
			return fmt.Errorf("account %q not found", args[0])
		}
		req := newChar
		req.Name = args[1]
		guid, err := handler.CreateCharacter(cmd.Context(), a.deps, acc.ID, req)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "character %s created (guid %d)\n", hydrate.NormalizeName(req.Name), guid)
		return nil
	},
}

var characterListCmd = &cobra.Command{
	Use:   "list <account>",
	Short: "List an account's characters",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer a.Close()
		_, chars, err := handler.ListCharacters(cmd.Context(), a.deps, args[0])
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "GUID\tNAME\tRACE\tCLASS\tLEVEL")
		for _, c := range chars {
			fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\n", c.GUID, c.Name, c.Race, c.Class, c.Level)
		}
		return w.Flush()
	},
}

var loadCmd = &cobra.Command{
	Use:   "load <account> <character>",
	Short: "Load and repair a character, persist the cleanup and print the repairs",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, nil)
		if err != nil {
			return err
		}
		defer a.Close()
		accountID, guid, err := a.resolve(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		res, err := handler.EnterWorld(ctx, a.deps, accountID, guid)
		if err != nil {
			return err
		}
		printLoad(cmd, res)
		return nil
	},
}

var checkpointCmd = &cobra.Command{
	Use:   "checkpoint <account> <character>",
	Short: "Run a full load and logout cycle and print what each store received",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, nil)
		if err != nil {
			return err
		}
		defer a.Close()
		accountID, guid, err := a.resolve(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		res, err := handler.EnterWorld(ctx, a.deps, accountID, guid)
		if err != nil {
			return err
		}
		printLoad(cmd, res)

		pending := flush.Pending(res.Player)
		r, err := handler.SaveNow(ctx, a.deps, guid)
		if err != nil {
			return err
		}
		printFlush(cmd, r, pending)
		return handler.Logout(ctx, a.deps, guid)
	},
}

func init() {
	accountBanCmd.Flags().Int64Var(&banUntil, "until", persist.PermanentBan, "ban expiry as unix seconds")
	accountBanCmd.Flags().StringVar(&banReason, "reason", "", "ban reason")
	accountCmd.AddCommand(accountCreateCmd, accountBanCmd)

	characterCreateCmd.Flags().Uint8Var(&newChar.Race, "race", 1, "race id")
	characterCreateCmd.Flags().Uint8Var(&newChar.Class, "class", 1, "class id")
	characterCreateCmd.Flags().Uint8Var(&newChar.Gender, "gender", 0, "gender (0 or 1)")
	characterCmd.AddCommand(characterCreateCmd, characterListCmd)
}

func printLoad(cmd *cobra.Command, res *hydrate.Result) {
	out := cmd.OutOrStdout()
	p := res.Player
	fmt.Fprintf(out, "%s (guid %d) level %d, offline %s\n", p.Name(), p.GUID(), p.Level(), res.Derived.Elapsed)
	if len(res.Reports) == 0 {
		fmt.Fprintln(out, "no repairs")
		return
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tACTION\tCOLLECTION\tKEY\tREASON")
	for _, r := range res.Reports {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.Kind, r.Action, r.Collection, r.Key, r.Reason)
	}
	_ = w.Flush()
	if len(res.Mail) > 0 {
		fmt.Fprintf(out, "mail generated: %v\n", res.Mail)
	}
}

func printFlush(cmd *cobra.Command, r *flush.Report, pending int) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "flush %s: %d pending\n", r.CycleID, pending)
	for _, res := range r.Results {
		fmt.Fprintf(out, "  %-9s statements=%d committed=%t took=%s\n", res.Store, res.Statements, res.Committed, res.Duration)
	}
}
